// SPDX-License-Identifier: EPL-2.0

package device

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/dsp"
	"github.com/ik5/audmix/formats"
	"github.com/ik5/audmix/internal/logger"
	"github.com/ik5/audmix/internal/monitoring"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/pcm"
	"github.com/ik5/audmix/wave"
)

type options struct {
	log      *logger.Logger
	metrics  *monitoring.Metrics
	registry *audio.Registry
	acct     *pcm.Accountant
}

// Option configures Open.
type Option func(*options)

func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithRegistry replaces the codec registry, formats.NewRegistry by default.
func WithRegistry(r *audio.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithAccountant charges every buffer the device allocates to a.
func WithAccountant(a *pcm.Accountant) Option {
	return func(o *options) { o.acct = a }
}

// Device owns a mixer and the backend driving it. Several devices may exist
// side by side; nothing is global.
type Device struct {
	mixer    *mixer.Mixer
	backend  Backend
	registry *audio.Registry
	acct     *pcm.Accountant
	limit    int64
	log      *logger.Logger

	mu    sync.Mutex
	ready atomic.Bool
}

// Open builds the mixer described by cfg and starts backend on it. It is
// the one failure reported to the caller as fatal: the returned error wraps
// ErrOpen.
func Open(cfg config.Audio, backend Backend, opts ...Option) (*Device, error) {
	start := time.Now()

	o := options{acct: &pcm.Accountant{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = formats.NewRegistry()
	}
	if backend == nil {
		return nil, fmt.Errorf("%w: no backend", ErrOpen)
	}

	m, err := mixer.New(mixer.Format{SampleRate: cfg.SampleRate, Channels: cfg.Channels},
		mixer.WithBlockFrames(cfg.BlockFrames),
		mixer.WithSegmentFrames(cfg.SegmentFrames),
		mixer.WithMaxVoices(cfg.MaxVoices),
		mixer.WithAccountant(o.acct),
		mixer.WithLogger(o.log),
		mixer.WithMetrics(o.metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	m.SetMasterVolume(float32(cfg.MasterVolume))

	d := &Device{
		mixer:    m,
		backend:  backend,
		registry: o.registry,
		acct:     o.acct,
		limit:    cfg.BufferLimit,
		log:      o.log,
	}
	if d.limit <= 0 {
		d.limit = pcm.DefaultLimit
	}

	if err := backend.Start(m.Format(), d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	d.ready.Store(true)

	d.log.Info().Int("rate", cfg.SampleRate).Int("channels", cfg.Channels).
		Int("block", m.BlockFrames()).Dur("took", logger.Since(start)).Msg("audio device open")
	return d, nil
}

// Close stops every voice and the backend. Closing twice is a no-op.
func (d *Device) Close() error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready.Swap(false) {
		return nil
	}
	d.mixer.StopAll()
	err := d.backend.Close()

	d.log.Info().Err(err).Int64("live_bytes", d.acct.Bytes()).Msg("audio device closed")
	return err
}

func (d *Device) IsReady() bool {
	return d != nil && d.ready.Load()
}

// Render is the backend callback. It can also drive the mixer by hand.
func (d *Device) Render(out []float32) {
	d.mixer.Mix(out)
}

// Mixer exposes the mixer for options the device does not wrap.
func (d *Device) Mixer() *mixer.Mixer { return d.mixer }

// Accountant reports the bytes held by buffers loaded through the device.
func (d *Device) Accountant() *pcm.Accountant { return d.acct }

func (d *Device) SetMasterVolume(v float32) {
	if d == nil {
		return
	}
	d.mixer.SetMasterVolume(v)
}

func (d *Device) MasterVolume() float32 {
	if d == nil {
		return 0
	}
	return d.mixer.MasterVolume()
}

// AttachProcessor adds p to the post-mix chain.
func (d *Device) AttachProcessor(p dsp.Processor) bool {
	return d != nil && d.mixer.AttachProcessor(p)
}

func (d *Device) DetachProcessor(p dsp.Processor) bool {
	return d != nil && d.mixer.DetachProcessor(p)
}

func (d *Device) bufferOptions() []pcm.Option {
	return []pcm.Option{pcm.WithAccountant(d.acct), pcm.WithLimit(d.limit)}
}

// LoadWave decodes a whole file into memory.
func (d *Device) LoadWave(path string) (*wave.Wave, error) {
	if !d.IsReady() {
		return &wave.Wave{}, ErrClosed
	}
	w, err := wave.Load(d.registry, path, d.bufferOptions()...)
	if err != nil {
		d.log.Warn().Err(err).Str("path", path).Msg("wave not loaded")
		return w, err
	}
	d.log.Debug().Str("path", path).Str("format", w.Format().String()).Dur("duration", w.Duration()).Msg("wave loaded")
	return w, nil
}

// LoadWaveFromMemory decodes data with the codec registered for tag.
func (d *Device) LoadWaveFromMemory(tag string, data []byte) (*wave.Wave, error) {
	if !d.IsReady() {
		return &wave.Wave{}, ErrClosed
	}
	w, err := wave.LoadFromMemory(d.registry, tag, data, d.bufferOptions()...)
	if err != nil {
		d.log.Warn().Err(err).Str("tag", tag).Msg("wave not loaded")
	}
	return w, err
}

// LoadSound plays w's data without copying it.
func (d *Device) LoadSound(w *wave.Wave) (*mixer.Sound, error) {
	if !d.IsReady() {
		return &mixer.Sound{}, ErrClosed
	}
	return mixer.NewSound(d.mixer, w)
}

// LoadSoundFromFile decodes path into a sound that owns the only reference
// to its data.
func (d *Device) LoadSoundFromFile(path string) (*mixer.Sound, error) {
	w, err := d.LoadWave(path)
	if err != nil {
		return &mixer.Sound{}, err
	}
	defer w.Unload()

	return d.LoadSound(w)
}

// LoadSoundAlias shares s's data with a new, independent sound.
func (d *Device) LoadSoundAlias(s *mixer.Sound) (*mixer.Sound, error) {
	if !d.IsReady() {
		return &mixer.Sound{}, ErrClosed
	}
	return s.Alias()
}

// LoadStream creates a caller-fed stream in format f.
func (d *Device) LoadStream(f pcm.Format) (*mixer.Stream, error) {
	if !d.IsReady() {
		return &mixer.Stream{}, ErrClosed
	}
	return mixer.NewStream(d.mixer, f)
}

// LoadTrack streams a file.
func (d *Device) LoadTrack(path string) (*mixer.Track, error) {
	if !d.IsReady() {
		return &mixer.Track{}, ErrClosed
	}
	t, err := mixer.LoadTrack(d.mixer, d.registry, path)
	if err != nil {
		d.log.Warn().Err(err).Str("path", path).Msg("track not loaded")
	}
	return t, err
}

// LoadTrackFromMemory streams data with the codec registered for tag.
func (d *Device) LoadTrackFromMemory(tag string, data []byte) (*mixer.Track, error) {
	if !d.IsReady() {
		return &mixer.Track{}, ErrClosed
	}
	return mixer.LoadTrackFromMemory(d.mixer, d.registry, tag, data)
}
