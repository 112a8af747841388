// SPDX-License-Identifier: EPL-2.0

package wave

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/wav"
	"github.com/ik5/audmix/pcm"
)

// Wave is fully decoded sample data held in a pcm.Buffer.
//
// Editing operations never touch the existing storage: they build a new
// buffer and drop the wave's reference to the old one, so sounds already
// sharing the old buffer keep playing it unchanged.
//
// A Wave is meant for the application goroutine and is not safe for
// concurrent use.
type Wave struct {
	buf  *pcm.Buffer
	opts []pcm.Option
}

// Load decodes the file at path with the decoder its extension selects.
// On failure the returned wave is not ready.
func Load(reg *audio.Registry, path string, opts ...pcm.Option) (*Wave, error) {
	f, err := os.Open(path)
	if err != nil {
		return &Wave{}, fmt.Errorf("wave: %w", err)
	}
	defer f.Close()

	src, err := reg.Decode(path, f)
	if err != nil {
		return &Wave{}, fmt.Errorf("wave: %s: %w", path, err)
	}
	defer src.Close()

	return FromSource(src, opts...)
}

// LoadFromMemory decodes data with the decoder registered for tag
// (for example "wav" or ".ogg").
func LoadFromMemory(reg *audio.Registry, tag string, data []byte, opts ...pcm.Option) (*Wave, error) {
	src, err := reg.Decode(tag, bytes.NewReader(data))
	if err != nil {
		return &Wave{}, fmt.Errorf("wave: %w", err)
	}
	defer src.Close()

	return FromSource(src, opts...)
}

// FromSource reads src to the end. 8 and 16-bit sources keep their depth,
// everything else is stored as 32-bit float.
func FromSource(src audio.Source, opts ...pcm.Option) (*Wave, error) {
	samples, err := audio.ReadAll(src, src.BufSize())
	if err != nil {
		return &Wave{}, fmt.Errorf("wave: decode: %w", err)
	}

	depth := 32
	if bd, ok := src.(audio.BitDepther); ok && (bd.BitDepth() == 8 || bd.BitDepth() == 16) {
		depth = bd.BitDepth()
	}

	return FromSamples(pcm.Format{
		SampleRate: src.SampleRate(),
		BitDepth:   depth,
		Channels:   src.Channels(),
	}, samples, opts...)
}

// FromSamples stores interleaved samples in a new buffer of format f.
func FromSamples(f pcm.Format, samples []float32, opts ...pcm.Option) (*Wave, error) {
	if f.Channels > 0 && len(samples) < f.Channels {
		return &Wave{}, ErrEmpty
	}
	frames := 0
	if f.Channels > 0 {
		frames = len(samples) / f.Channels
	}

	buf, err := pcm.Allocate(frames, f, opts...)
	if err != nil {
		return &Wave{}, fmt.Errorf("wave: %w", err)
	}
	if _, err := buf.WriteSamples(0, samples[:frames*f.Channels]); err != nil {
		buf.Release()
		return &Wave{}, fmt.Errorf("wave: %w", err)
	}

	return &Wave{buf: buf, opts: opts}, nil
}

// IsReady reports whether the wave holds sample data.
func (w *Wave) IsReady() bool {
	return w != nil && w.buf != nil && !w.buf.Released()
}

// Unload drops the wave's reference to its buffer. Sounds created from the
// wave keep their own references.
func (w *Wave) Unload() {
	if !w.IsReady() {
		return
	}
	w.buf.Release()
	w.buf = nil
}

// Buffer returns the underlying storage, nil when not ready. Callers that
// keep it must Retain it.
func (w *Wave) Buffer() *pcm.Buffer {
	if !w.IsReady() {
		return nil
	}
	return w.buf
}

func (w *Wave) Format() pcm.Format {
	if !w.IsReady() {
		return pcm.Format{}
	}
	return w.buf.Format()
}

func (w *Wave) Frames() int {
	if !w.IsReady() {
		return 0
	}
	return w.buf.Frames()
}

func (w *Wave) Duration() time.Duration {
	if !w.IsReady() {
		return 0
	}
	return w.buf.Duration()
}

// Samples decodes the whole wave to interleaved float32.
func (w *Wave) Samples() []float32 {
	if !w.IsReady() {
		return nil
	}
	return w.buf.Samples()
}

// Copy returns an independent wave with its own storage.
func (w *Wave) Copy() (*Wave, error) {
	if !w.IsReady() {
		return &Wave{}, ErrNotReady
	}
	buf, err := w.buf.Clone(0, w.buf.Frames())
	if err != nil {
		return &Wave{}, fmt.Errorf("wave: %w", err)
	}
	return &Wave{buf: buf, opts: w.opts}, nil
}

// Crop keeps frames [init, final).
func (w *Wave) Crop(init, final int) error {
	if !w.IsReady() {
		return ErrNotReady
	}
	buf, err := w.buf.Clone(init, final)
	if err != nil {
		return fmt.Errorf("wave: crop: %w", err)
	}
	w.swap(buf)
	return nil
}

// Convert changes sample rate, channel count and bit depth to f.
func (w *Wave) Convert(f pcm.Format) error {
	if !w.IsReady() {
		return ErrNotReady
	}
	if err := f.Validate(); err != nil {
		return fmt.Errorf("wave: convert: %w", err)
	}
	if f == w.buf.Format() {
		return nil
	}

	src := w.Source()
	defer src.Close()

	samples, err := audio.Convert(src, f.SampleRate, f.Channels, 4096)
	if err != nil {
		return fmt.Errorf("wave: convert: %w", err)
	}
	converted, err := FromSamples(f, samples, w.opts...)
	if err != nil {
		return fmt.Errorf("wave: convert: %w", err)
	}
	w.swap(converted.buf)
	return nil
}

// Source streams the wave from its first frame. The source holds its own
// reference, released by Close.
func (w *Wave) Source() audio.Source {
	if !w.IsReady() {
		return &bufferSource{}
	}
	return &bufferSource{buf: w.buf.Retain()}
}

// Export writes the wave as a WAV file at its own rate, channel count and
// depth; 32-bit float data is written as 32-bit integer PCM.
func (w *Wave) Export(path string) error {
	if !w.IsReady() {
		return ErrNotReady
	}
	if tag := audio.FormatTag(path); tag != "wav" {
		return fmt.Errorf("wave: export %q: %w", tag, audio.ErrFormatUnsupported)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wave: %w", err)
	}

	f := w.buf.Format()
	if err := wav.Encode(out, f.SampleRate, f.Channels, f.BitDepth, w.buf.Samples()); err != nil {
		out.Close()
		return fmt.Errorf("wave: export: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("wave: %w", err)
	}
	return nil
}

func (w *Wave) swap(buf *pcm.Buffer) {
	w.buf.Release()
	w.buf = buf
}
