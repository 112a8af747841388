// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/audmix/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	// Read returns the number of values (frames * channels) decoded.
	Read([]float32) (int, error)
	Length() int64
	SetPosition(pos int64) error
}

var (
	_ audio.Source      = (*source)(nil)
	_ audio.FrameSeeker = (*source)(nil)
	_ audio.Lengther    = (*source)(nil)
)

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
	length     int64 // frames, 0 when unknown
}

func newSource(dec oggReader) *source {
	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
		length:     dec.Length(),
	}
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Length() int64   { return s.length }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

func (s *source) SeekFrame(frame int64) error {
	// oggvorbis only knows the length of seekable input
	if s.length <= 0 {
		return audio.ErrNotSeekable
	}
	if err := s.dec.SetPosition(min(max(frame, 0), s.length)); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}

	n := 0
	for n < want {
		m, err := s.dec.Read(dst[n:want])
		n += m
		if err == io.EOF {
			return n, io.EOF
		}
		if err != nil {
			return n, fmt.Errorf("%w", err)
		}
		if m == 0 {
			break
		}
	}

	return n, nil
}

// Decoder decodes Ogg Vorbis through github.com/jfreymuth/oggvorbis.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newSource(dec), nil
}
