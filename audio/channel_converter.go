// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelConverter changes the channel count of a source.
//
// Down-mixing to mono averages every input channel; up-mixing from mono
// duplicates the signal; any other conversion keeps the shared leading
// channels and fills the rest with silence.
type ChannelConverter struct {
	src      Source
	channels int
	tmp      []float32
}

// NewMonoMixer converts src to mono by averaging its channels.
func NewMonoMixer(src Source) *ChannelConverter {
	c, _ := NewChannelConverter(src, 1)
	return c
}

func NewChannelConverter(src Source, channels int) (*ChannelConverter, error) {
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}
	return &ChannelConverter{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}, nil
}

func (m *ChannelConverter) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelConverter) Channels() int   { return m.channels }
func (m *ChannelConverter) BufSize() int    { return m.src.BufSize() }
func (m *ChannelConverter) Close() error {
	err := m.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (m *ChannelConverter) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	in := m.src.Channels()
	if in == m.channels {
		return m.src.ReadSamples(dst)
	}
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	frames := len(dst) / m.channels
	samplesNeeded := frames * in

	// Grow tmp buffer if needed (but don't shrink to avoid thrashing)
	if cap(m.tmp) < samplesNeeded {
		m.tmp = make([]float32, max(samplesNeeded, 8192))
	}
	tmp := m.tmp[:samplesNeeded]

	n, err := m.src.ReadSamples(tmp)
	if n == 0 {
		return 0, err
	}
	frames = n / in

	switch {
	case m.channels == 1:
		inv := float32(1.0) / float32(in)
		for f := range frames {
			sum := float32(0)
			base := f * in
			for c := range in {
				sum += tmp[base+c]
			}
			dst[f] = sum * inv
		}
	case in == 1:
		for f := range frames {
			v := tmp[f]
			base := f * m.channels
			for c := range m.channels {
				dst[base+c] = v
			}
		}
	default:
		shared := min(in, m.channels)
		for f := range frames {
			out := dst[f*m.channels : (f+1)*m.channels]
			copy(out, tmp[f*in:f*in+shared])
			clear(out[shared:])
		}
	}

	return frames * m.channels, err
}
