// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/utils"
)

const (
	formatPCM        = 0x0001
	formatFloat      = 0x0003
	formatExtensible = 0xFFFE
)

var (
	_ audio.Source      = (*wavSource)(nil)
	_ audio.FrameSeeker = (*wavSource)(nil)
	_ audio.Lengther    = (*wavSource)(nil)
	_ audio.BitDepther  = (*wavSource)(nil)
)

type wavSource struct {
	r          io.Reader
	seeker     io.Seeker // nil when r cannot seek
	float      bool
	sampleRate int
	channels   int
	bitDepth   int
	blockAlign int
	dataStart  int64
	frames     int64
	pos        int64
	buf        []byte
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) BitDepth() int   { return s.bitDepth }
func (s *wavSource) Length() int64   { return s.frames }
func (s *wavSource) BufSize() int    { return cap(s.buf) / s.blockAlign * s.channels }
func (s *wavSource) Close() error    { return nil }

func (s *wavSource) SeekFrame(frame int64) error {
	if s.seeker == nil {
		return audio.ErrNotSeekable
	}
	frame = min(max(frame, 0), s.frames)
	if _, err := s.seeker.Seek(s.dataStart+frame*int64(s.blockAlign), io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	s.pos = frame
	return nil
}

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	frames := min(int64(len(dst)/s.channels), s.frames-s.pos)
	if frames <= 0 {
		if s.pos >= s.frames {
			return 0, io.EOF
		}
		return 0, nil
	}

	size := int(frames) * s.blockAlign
	if cap(s.buf) < size {
		s.buf = make([]byte, size)
	}
	n, err := io.ReadFull(s.r, s.buf[:size])
	switch err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		// data chunk shorter than declared, stop at the last whole frame
		s.frames = s.pos + int64(n/s.blockAlign)
	default:
		return 0, fmt.Errorf("%w", err)
	}

	got := n / s.blockAlign
	samples := got * s.channels
	raw := s.buf[:got*s.blockAlign]
	width := s.bitDepth / 8

	for i := range samples {
		b := raw[i*width : (i+1)*width]
		switch {
		case s.float:
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b))
		case width == 1:
			dst[i] = utils.Uint8ToFloat32(b[0])
		case width == 2:
			dst[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(b)))
		case width == 3:
			v := int32(uint32(b[0])<<8|uint32(b[1])<<16|uint32(b[2])<<24) >> 8
			dst[i] = utils.Int32ToFloat32(v, 24)
		default:
			dst[i] = utils.Int32ToFloat32(int32(binary.LittleEndian.Uint32(b)), 32)
		}
	}
	s.pos += int64(got)

	if s.pos >= s.frames {
		return samples, io.EOF
	}
	return samples, nil
}

// Decoder reads RIFF/WAVE data holding integer PCM (8, 16, 24 or 32 bit)
// or 32-bit IEEE float samples. Chunks other than "fmt " and "data" are
// skipped. When the reader is also an io.Seeker the returned source can
// seek to any frame.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	header := make([]byte, 12)

	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}

	if !bytes.Equal(header[:4], []byte("RIFF")) || !bytes.Equal(header[8:12], []byte("WAVE")) {
		return nil, ErrNotWavFile
	}

	s := &wavSource{r: r}
	if sk, ok := r.(io.Seeker); ok {
		s.seeker = sk
	}

	var haveFmt bool
	offset := int64(12)
	chunk := make([]byte, 8)

	for {
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
		}
		id := string(chunk[:4])
		size := int64(binary.LittleEndian.Uint32(chunk[4:8]))
		offset += 8

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, ErrUnsupportedWavLayout
			}
			body := make([]byte, size+size&1)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
			}
			if err := s.parseFormat(body); err != nil {
				return nil, err
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, ErrUnsupportedWavLayout
			}
			s.dataStart = offset
			s.frames = size / int64(s.blockAlign)
			s.buf = make([]byte, 0, 1024*s.blockAlign)
			return s, nil

		default:
			if _, err := io.CopyN(io.Discard, r, size+size&1); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
			}
		}
		offset += size + size&1
	}
}

func (s *wavSource) parseFormat(body []byte) error {
	tag := binary.LittleEndian.Uint16(body[0:2])
	s.channels = int(binary.LittleEndian.Uint16(body[2:4]))
	s.sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
	s.blockAlign = int(binary.LittleEndian.Uint16(body[12:14]))
	s.bitDepth = int(binary.LittleEndian.Uint16(body[14:16]))

	if tag == formatExtensible && len(body) >= 26 {
		tag = binary.LittleEndian.Uint16(body[24:26])
	}

	switch {
	case tag == formatPCM && (s.bitDepth == 8 || s.bitDepth == 16 || s.bitDepth == 24 || s.bitDepth == 32):
	case tag == formatFloat && s.bitDepth == 32:
		s.float = true
	default:
		return fmt.Errorf("%w: format %#04x, %d bit", ErrUnsupportedEncoding, tag, s.bitDepth)
	}

	if s.channels <= 0 || s.sampleRate <= 0 || s.blockAlign != s.channels*s.bitDepth/8 {
		return ErrUnsupportedWavLayout
	}
	return nil
}
