// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/utils"
)

// go-mp3 always produces 16-bit little-endian stereo.
const (
	channels      = 2
	bytesPerFrame = 4
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
	Length() int64
	Seek(offset int64, whence int) (int64, error)
}

var (
	_ audio.Source      = (*source)(nil)
	_ audio.FrameSeeker = (*source)(nil)
	_ audio.Lengther    = (*source)(nil)
	_ audio.BitDepther  = (*source)(nil)
)

type source struct {
	dec        mp3Reader
	sampleRate int
	seekable   bool
	buf        []byte
	carry      int // bytes of an incomplete frame kept at the start of buf
}

func newSource(dec mp3Reader) *source {
	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		// go-mp3 only knows the length, and can only seek, on io.Seeker input
		seekable: dec.Length() > 0,
		buf:      make([]byte, 8192),
	}
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) BitDepth() int   { return 16 }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 } // return sample capacity, not bytes

func (s *source) Length() int64 {
	if !s.seekable {
		return 0
	}
	return s.dec.Length() / bytesPerFrame
}

func (s *source) SeekFrame(frame int64) error {
	if !s.seekable {
		return audio.ErrNotSeekable
	}
	frame = min(max(frame, 0), s.Length())
	if _, err := s.dec.Seek(frame*bytesPerFrame, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	s.carry = 0
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	need := len(dst) / channels * bytesPerFrame
	if need == 0 {
		return 0, nil
	}
	if cap(s.buf) < need {
		buf := make([]byte, need)
		copy(buf, s.buf[:s.carry])
		s.buf = buf
	}
	s.buf = s.buf[:cap(s.buf)]

	n := s.carry
	var readErr error
	for n < need {
		m, err := s.dec.Read(s.buf[n:need])
		n += m
		if err != nil {
			readErr = err
			break
		}
		if m == 0 {
			break
		}
	}

	whole := n - n%bytesPerFrame
	samples := whole / 2
	for i := range samples {
		dst[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(s.buf[2*i:])))
	}
	s.carry = copy(s.buf, s.buf[whole:n])

	switch {
	case readErr == nil:
		return samples, nil
	case readErr == io.EOF:
		return samples, io.EOF
	default:
		return samples, fmt.Errorf("%w", readErr)
	}
}

// Decoder decodes MPEG-1/2 Layer III through github.com/hajimehoshi/go-mp3.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newSource(dec), nil
}
