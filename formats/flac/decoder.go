// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"fmt"
	"io"

	"github.com/ik5/audmix/audio"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// flacStream is the part of *flac.Stream the source needs, to allow testing.
type flacStream interface {
	ParseNext() (*frame.Frame, error)
	Seek(sampleNum uint64) (uint64, error)
	Close() error
}

var (
	_ audio.Source      = (*source)(nil)
	_ audio.FrameSeeker = (*source)(nil)
	_ audio.Lengther    = (*source)(nil)
	_ audio.BitDepther  = (*source)(nil)
)

type source struct {
	stream     flacStream
	seekable   bool
	sampleRate int
	channels   int
	bitDepth   int
	frames     int64 // 0 when the stream info does not say
	scale      float32

	// decoded samples of the current FLAC frame, interleaved
	pending []float32
	off     int
	skip    int // frames to drop from the next decoded block after a seek
	eof     bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BitDepth() int   { return s.bitDepth }
func (s *source) Length() int64   { return s.frames }
func (s *source) BufSize() int    { return max(cap(s.pending), 4096) }

func (s *source) Close() error {
	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *source) SeekFrame(frame int64) error {
	if !s.seekable {
		return audio.ErrNotSeekable
	}
	frame = max(frame, 0)
	if s.frames > 0 {
		frame = min(frame, s.frames)
	}

	s.pending, s.off, s.skip, s.eof = s.pending[:0], 0, 0, false
	if s.frames > 0 && frame == s.frames {
		s.eof = true
		return nil
	}

	// Seek lands on the start of the block holding frame.
	start, err := s.stream.Seek(uint64(frame))
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	s.skip = int(frame - int64(start))
	return nil
}

// decode parses the next FLAC frame into pending.
func (s *source) decode() error {
	f, err := s.stream.ParseNext()
	if err != nil {
		return err
	}

	blockSize := len(f.Subframes[0].Samples)
	s.pending = s.pending[:0]
	for i := range blockSize {
		for ch := range s.channels {
			s.pending = append(s.pending, float32(f.Subframes[ch].Samples[i])*s.scale)
		}
	}
	s.off = 0

	if s.skip > 0 {
		drop := min(s.skip, blockSize)
		s.off = drop * s.channels
		s.skip -= drop
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.channels
	n := 0

	for n < want {
		if s.off >= len(s.pending) {
			if s.eof {
				break
			}
			if err := s.decode(); err != nil {
				if err == io.EOF {
					s.eof = true
					break
				}
				return n, fmt.Errorf("%w", err)
			}
			continue
		}
		c := copy(dst[n:want], s.pending[s.off:])
		n += c
		s.off += c
	}

	if n == 0 && s.eof && want > 0 {
		return 0, io.EOF
	}
	if s.eof && s.off >= len(s.pending) {
		return n, io.EOF
	}
	return n, nil
}

// Decoder decodes FLAC through github.com/mewkiz/flac. When the reader is
// an io.ReadSeeker the stream is opened for seeking.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	var (
		stream   *flac.Stream
		err      error
		seekable bool
	)
	if rs, ok := r.(io.ReadSeeker); ok {
		stream, err = flac.NewSeek(rs)
		seekable = true
	} else {
		stream, err = flac.New(r)
	}
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	info := stream.Info
	if info.NChannels == 0 || info.SampleRate == 0 {
		stream.Close()
		return nil, ErrInvalidStreamInfo
	}

	return &source{
		stream:     stream,
		seekable:   seekable,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		bitDepth:   int(info.BitsPerSample),
		frames:     int64(info.NSamples),
		// FLAC allows any depth from 4 to 32 bit
		scale:      1 / float32(int64(1)<<(max(info.BitsPerSample, 1)-1)),
		pending:    make([]float32, 0, 4096*int(info.NChannels)),
	}, nil
}
