// SPDX-License-Identifier: EPL-2.0

package wave

import (
	"io"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/pcm"
)

var (
	_ audio.Source      = (*bufferSource)(nil)
	_ audio.FrameSeeker = (*bufferSource)(nil)
	_ audio.Lengther    = (*bufferSource)(nil)
	_ audio.BitDepther  = (*bufferSource)(nil)
)

// bufferSource streams a retained buffer as an audio.Source.
type bufferSource struct {
	buf *pcm.Buffer
	pos int
}

func (s *bufferSource) format() pcm.Format {
	if s.buf == nil {
		return pcm.Format{}
	}
	return s.buf.Format()
}

func (s *bufferSource) SampleRate() int { return s.format().SampleRate }
func (s *bufferSource) Channels() int   { return s.format().Channels }
func (s *bufferSource) BitDepth() int   { return s.format().BitDepth }
func (s *bufferSource) BufSize() int    { return 4096 }

func (s *bufferSource) Length() int64 {
	if s.buf == nil {
		return 0
	}
	return int64(s.buf.Frames())
}

func (s *bufferSource) SeekFrame(frame int64) error {
	s.pos = int(min(max(frame, 0), s.Length()))
	return nil
}

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	if s.buf == nil || s.pos >= s.buf.Frames() {
		return 0, io.EOF
	}
	n := s.buf.Read(s.pos, len(dst)/s.Channels(), dst)
	s.pos += n
	if s.pos >= s.buf.Frames() {
		return n * s.Channels(), io.EOF
	}
	return n * s.Channels(), nil
}

// Close drops the reference taken when the source was created.
func (s *bufferSource) Close() error {
	if s.buf != nil {
		s.buf.Release()
		s.buf = nil
	}
	return nil
}
