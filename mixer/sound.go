// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"

	"github.com/ik5/audmix/pcm"
	"github.com/ik5/audmix/wave"
)

// soundSource walks a fully resident buffer.
type soundSource struct {
	buf *pcm.Buffer
	pos int
}

func (s *soundSource) format() (int, int) {
	f := s.buf.Format()
	return f.SampleRate, f.Channels
}

func (s *soundSource) next(dst []float32, loop bool) fetch {
	if s.pos >= s.buf.Frames() {
		if !loop {
			return fetchEnd
		}
		s.pos = 0
	}
	if s.buf.Read(s.pos, 1, dst) == 0 {
		return fetchEnd
	}
	s.pos++
	return fetchOK
}

func (s *soundSource) restart()      { s.pos = 0 }
func (s *soundSource) reload() error { return nil }

// Sound plays a fully resident buffer. Aliases share the buffer, each with
// its own voice, and the storage lives until the last of them is unloaded.
type Sound struct {
	*Voice
	src   *soundSource
	alias bool
}

// NewSound plays the data of w without copying it.
func NewSound(m *Mixer, w *wave.Wave) (*Sound, error) {
	if !w.IsReady() {
		return &Sound{}, fmt.Errorf("%w: %w", ErrInvalidOperation, wave.ErrNotReady)
	}
	return NewSoundFromBuffer(m, w.Buffer())
}

// NewSoundFromBuffer takes a reference to buf.
func NewSoundFromBuffer(m *Mixer, buf *pcm.Buffer) (*Sound, error) {
	if m == nil || buf == nil || buf.Released() || buf.IsRing() {
		return &Sound{}, fmt.Errorf("%w: sound needs a mixer and a loaded linear buffer", ErrInvalidOperation)
	}
	return newSound(m, buf.Retain(), false), nil
}

func newSound(m *Mixer, buf *pcm.Buffer, alias bool) *Sound {
	src := &soundSource{buf: buf}
	s := &Sound{Voice: newVoice(m, src), src: src, alias: alias}

	m.log.Debug().Str("voice", s.id.String()).Bool("alias", alias).
		Stringer("format", buf.Format()).Int("frames", buf.Frames()).Msg("sound loaded")
	return s
}

// Alias creates a sound sharing s's buffer with a fresh voice.
func (s *Sound) Alias() (*Sound, error) {
	if !s.IsReady() {
		return &Sound{}, fmt.Errorf("%w: alias of a sound that is not ready", ErrInvalidOperation)
	}
	return newSound(s.m, s.src.buf.Retain(), true), nil
}

// Bind switches the sound to buf and rewinds it. The previous buffer loses
// this sound's reference.
func (s *Sound) Bind(buf *pcm.Buffer) error {
	if !s.IsReady() {
		return fmt.Errorf("%w: bind on a sound that is not ready", ErrInvalidOperation)
	}
	if buf == nil || buf.Released() || buf.IsRing() {
		return fmt.Errorf("%w: bind needs a loaded linear buffer", ErrInvalidOperation)
	}

	buf.Retain()
	s.mu.Lock()
	old := s.src.buf
	s.src.buf = buf
	s.src.pos = 0
	s.resetCursor()
	s.mu.Unlock()
	old.Release()

	return nil
}

// Unload stops the sound and drops its buffer reference.
func (s *Sound) Unload() {
	if !s.IsReady() {
		return
	}
	s.detach()
	s.src.buf.Release()

	s.m.log.Debug().Str("voice", s.id.String()).Msg("sound unloaded")
	s.Voice = nil
	s.src = nil
}

func (s *Sound) IsReady() bool {
	return s != nil && s.Voice != nil && s.src != nil && !s.src.buf.Released()
}

// IsAlias reports whether the sound was made by Alias.
func (s *Sound) IsAlias() bool {
	return s != nil && s.alias
}

// Buffer returns the shared storage, nil when not ready.
func (s *Sound) Buffer() *pcm.Buffer {
	if !s.IsReady() {
		return nil
	}
	return s.src.buf
}

// Frames is the length of the sound in frames.
func (s *Sound) Frames() int {
	if !s.IsReady() {
		return 0
	}
	return s.src.buf.Frames()
}
