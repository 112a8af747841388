// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"sync/atomic"

	"github.com/ik5/audmix/pcm"
)

// Callback fills samples with frames frames of interleaved audio. It runs on
// the audio callback goroutine and must not block.
type Callback func(samples []float32, frames int)

type streamSource struct {
	win  *window
	rate int

	cb    atomic.Pointer[Callback]
	cbBuf []float32
	cbLen int
	cbOff int
}

func (s *streamSource) format() (int, int) { return s.rate, s.win.channels }

func (s *streamSource) next(dst []float32, _ bool) fetch {
	cb := s.cb.Load()
	if cb == nil {
		return s.win.next(dst)
	}

	ch := s.win.channels
	if s.cbOff >= s.cbLen {
		clear(s.cbBuf)
		(*cb)(s.cbBuf, s.win.seg)
		s.cbLen, s.cbOff = s.win.seg, 0
	}
	copy(dst, s.cbBuf[s.cbOff*ch:(s.cbOff+1)*ch])
	s.cbOff++

	return fetchOK
}

func (s *streamSource) restart() {
	s.win.reset(0)
	s.cbLen, s.cbOff = 0, 0
}

func (s *streamSource) reload() error { return nil }

// Stream plays PCM supplied by the caller, either pushed with Update and
// UpdateSamples or pulled by a Callback. A stream never ends: when it runs
// dry it plays silence until fed again.
type Stream struct {
	*Voice
	src *streamSource
	format pcm.Format
}

// NewStream creates a stream whose window holds two segments of the
// mixer's segment size in format f.
func NewStream(m *Mixer, f pcm.Format) (*Stream, error) {
	if m == nil {
		return &Stream{}, fmt.Errorf("%w: stream needs a mixer", ErrInvalidOperation)
	}
	win, err := newWindow(f, m.segmentFrames, m.acct)
	if err != nil {
		return &Stream{}, fmt.Errorf("mixer: stream: %w", err)
	}

	src := &streamSource{
		win:   win,
		rate:  f.SampleRate,
		cbBuf: make([]float32, m.segmentFrames*f.Channels),
	}
	s := &Stream{Voice: newVoice(m, src), src: src, format: f}

	m.log.Debug().Str("voice", s.id.String()).Stringer("format", f).Msg("stream loaded")
	return s, nil
}

// Update copies raw data in the stream's own format into the next free
// segment and returns the number of frames taken, at most one segment.
func (s *Stream) Update(data []byte) (int, error) {
	if !s.IsReady() {
		return 0, fmt.Errorf("%w: update on a stream that is not ready", ErrInvalidOperation)
	}
	if !s.src.win.processed() {
		return 0, fmt.Errorf("%w: no processed segment", ErrInvalidOperation)
	}
	return s.src.win.pushRaw(data, 0)
}

// UpdateSamples is Update for interleaved float32 samples.
func (s *Stream) UpdateSamples(samples []float32) (int, error) {
	if !s.IsReady() {
		return 0, fmt.Errorf("%w: update on a stream that is not ready", ErrInvalidOperation)
	}
	if !s.src.win.processed() {
		return 0, fmt.Errorf("%w: no processed segment", ErrInvalidOperation)
	}
	return s.src.win.push(samples, 0)
}

// IsProcessed reports whether a segment is free for Update.
func (s *Stream) IsProcessed() bool {
	return s.IsReady() && s.src.win.processed()
}

// SetCallback makes the stream pull its audio from cb, one segment at a
// time, instead of the window. A nil cb returns to Update.
func (s *Stream) SetCallback(cb Callback) {
	if !s.IsReady() {
		return
	}
	if cb == nil {
		s.src.cb.Store(nil)
		return
	}
	s.src.cb.Store(&cb)
}

// Format is the format data passed to Update must be in.
func (s *Stream) Format() pcm.Format {
	if s == nil {
		return pcm.Format{}
	}
	return s.format
}

// SegmentFrames is the most frames one Update accepts.
func (s *Stream) SegmentFrames() int {
	if !s.IsReady() {
		return 0
	}
	return s.src.win.seg
}

func (s *Stream) Unload() {
	if !s.IsReady() {
		return
	}
	s.detach()
	s.src.win.release()

	s.m.log.Debug().Str("voice", s.id.String()).Msg("stream unloaded")
	s.Voice = nil
	s.src = nil
}

func (s *Stream) IsReady() bool {
	return s != nil && s.Voice != nil && s.src != nil
}
