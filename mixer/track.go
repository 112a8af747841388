// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/pcm"
)

type trackSource struct {
	win    *window
	dec    *decodeContext
	voice  *Voice
	failed bool
}

func (t *trackSource) format() (int, int) { return t.dec.rate, t.dec.channels }

func (t *trackSource) next(dst []float32, _ bool) fetch { return t.win.next(dst) }

// restart only empties the window; the mixer plays silence until reload
// commits the first segment.
func (t *trackSource) restart() {
	t.win.reset(0)
	t.failed = false
}

func (t *trackSource) reload() error { return t.fillFrom(0) }

// fillFrom positions the decoder at frame and refills the window.
func (t *trackSource) fillFrom(frame int64) error {
	if err := t.dec.seek(frame); err != nil {
		t.failed = true
		t.win.eof.Store(true)
		return err
	}
	return t.refill()
}

// refill decodes into every free segment. At the end of the source a
// looping track seeks back to frame 0 and keeps filling the same segment.
func (t *trackSource) refill() error {
	w, d := t.win, t.dec
	loop := t.voice.looping.Load()

	// looping was enabled after the decoder already reached the end
	if loop && w.eof.Load() && !t.failed {
		if err := d.seek(0); err != nil {
			t.failed = true
			return fmt.Errorf("mixer: loop %s: %w", d.tag, err)
		}
		w.eof.Store(false)
	}

	ch := d.channels
	for w.processed() {
		start, total := d.pos, 0

		var err error
		for total < w.seg && err == nil {
			var n int
			n, err = d.read(d.scratch[total*ch : w.seg*ch])
			total += n
			if errors.Is(err, io.EOF) && loop && d.pos > 0 {
				err = d.seek(0)
			}
		}

		if total > 0 {
			if _, perr := w.push(d.scratch[:total*ch], start); perr != nil {
				return fmt.Errorf("mixer: %s window: %w", d.tag, perr)
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			w.eof.Store(true)
			return nil
		default:
			t.failed = true
			w.eof.Store(true)
			return fmt.Errorf("mixer: decode %s: %w", d.tag, err)
		}
	}

	return nil
}

// Track plays long audio decoded incrementally into a two segment window.
// The caller keeps it fed by calling Update at least once per segment of
// playback; when it does not the track plays silence until the next
// Update.
//
// Update, Seek and Unload belong to one application goroutine.
type Track struct {
	*Voice
	src *trackSource
}

// LoadTrack streams the file at path through the decoder its extension
// selects.
func LoadTrack(m *Mixer, reg *audio.Registry, path string) (*Track, error) {
	open := func() (audio.Source, io.Closer, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		src, err := reg.Decode(path, f)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		return src, f, nil
	}

	src, closer, err := open()
	if err != nil {
		return &Track{}, fmt.Errorf("mixer: track %s: %w", path, err)
	}
	return newTrack(m, audio.FormatTag(path), src, closer, open)
}

// LoadTrackFromMemory streams data with the decoder registered for tag.
// data must stay unchanged while the track is loaded.
func LoadTrackFromMemory(m *Mixer, reg *audio.Registry, tag string, data []byte) (*Track, error) {
	open := func() (audio.Source, io.Closer, error) {
		src, err := reg.Decode(tag, bytes.NewReader(data))
		return src, nil, err
	}

	src, _, err := open()
	if err != nil {
		return &Track{}, fmt.Errorf("mixer: track: %w", err)
	}
	return newTrack(m, audio.FormatTag(tag), src, nil, open)
}

// NewTrack streams from src, which the track closes on Unload. Looping and
// seeking need src to implement audio.FrameSeeker.
func NewTrack(m *Mixer, src audio.Source) (*Track, error) {
	if src == nil {
		return &Track{}, fmt.Errorf("%w: nil source", ErrInvalidOperation)
	}
	return newTrack(m, "source", src, nil, nil)
}

func newTrack(m *Mixer, tag string, src audio.Source, closer io.Closer, open opener) (*Track, error) {
	if m == nil {
		closeAll(src, closer)
		return &Track{}, fmt.Errorf("%w: track needs a mixer", ErrInvalidOperation)
	}

	dec, err := newDecodeContext(tag, src, closer, open, m.segmentFrames)
	if err != nil {
		return &Track{}, fmt.Errorf("mixer: track: %w", err)
	}
	win, err := newWindow(pcm.Format{SampleRate: dec.rate, BitDepth: 32, Channels: dec.channels}, m.segmentFrames, m.acct)
	if err != nil {
		dec.close()
		return &Track{}, fmt.Errorf("mixer: track: %w", err)
	}

	ts := &trackSource{win: win, dec: dec}
	t := &Track{Voice: newVoice(m, ts), src: ts}
	ts.voice = t.Voice

	if err := ts.refill(); err != nil {
		m.log.Warn().Err(err).Str("voice", t.id.String()).Msg("initial track fill")
	}

	m.log.Debug().Str("voice", t.id.String()).Str("codec", tag).
		Int("rate", dec.rate).Int("channels", dec.channels).Int64("frames", dec.length).Msg("track loaded")
	return t, nil
}

// Update refills every processed segment of the window.
func (t *Track) Update() error {
	if !t.IsReady() {
		return fmt.Errorf("%w: update on a track that is not ready", ErrInvalidOperation)
	}
	return t.src.refill()
}

// Seek moves playback to pos. The window is dropped under the voice lock
// and refilled after it; the mixer plays silence in between.
func (t *Track) Seek(pos time.Duration) error {
	if !t.IsReady() {
		return fmt.Errorf("%w: seek on a track that is not ready", ErrInvalidOperation)
	}

	d := t.src.dec
	frame := max(int64(pos.Seconds()*float64(d.rate)), 0)
	if d.length > 0 {
		frame = min(frame, d.length)
	}

	t.mu.Lock()
	t.finished.Store(false)
	t.src.win.reset(frame)
	t.src.failed = false
	t.resetCursor()
	t.mu.Unlock()

	if err := t.src.fillFrom(frame); err != nil {
		return fmt.Errorf("mixer: seek: %w", err)
	}
	return nil
}

// IsProcessed reports whether a window segment is waiting for Update.
func (t *Track) IsProcessed() bool {
	return t.IsReady() && t.src.win.processed()
}

// TimeLength is the duration of the source, zero when unknown.
func (t *Track) TimeLength() time.Duration {
	if !t.IsReady() {
		return 0
	}
	d := t.src.dec
	return frameDuration(d.length, d.rate)
}

// TimePlayed is the position of the last frame handed to the mixer.
func (t *Track) TimePlayed() time.Duration {
	if !t.IsReady() {
		return 0
	}
	d := t.src.dec
	played := t.src.win.played.Load()
	if d.length > 0 {
		played %= d.length
	}
	return frameDuration(played, d.rate)
}

// Unload stops the track and closes its decoder.
func (t *Track) Unload() {
	if !t.IsReady() {
		return
	}
	t.detach()
	if err := t.src.dec.close(); err != nil {
		t.m.log.Warn().Err(err).Str("voice", t.id.String()).Msg("closing track decoder")
	}
	t.src.win.release()

	t.m.log.Debug().Str("voice", t.id.String()).Msg("track unloaded")
	t.Voice = nil
	t.src = nil
}

func (t *Track) IsReady() bool {
	return t != nil && t.Voice != nil && t.src != nil
}

func frameDuration(frames int64, rate int) time.Duration {
	return time.Duration(frames) * time.Second / time.Duration(rate)
}
