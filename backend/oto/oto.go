// SPDX-License-Identifier: EPL-2.0

//go:build !headless

// Package oto plays a device through the system audio output using
// ebitengine/oto.
package oto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/audmix/device"
	"github.com/ik5/audmix/mixer"
)

// DefaultLatency is the size of the hardware buffer.
const DefaultLatency = 40 * time.Millisecond

var (
	ErrStarted = errors.New("oto: already started")

	// ErrFormatChanged is returned when a second backend asks for another
	// format. The system context can be created once per process.
	ErrFormatChanged = errors.New("oto: context exists with another format")
)

var shared struct {
	sync.Mutex
	ctx    *oto.Context
	format mixer.Format
}

// sharedContext returns the process wide oto context, creating it for f.
func sharedContext(f mixer.Format, latency time.Duration) (*oto.Context, error) {
	shared.Lock()
	defer shared.Unlock()

	if shared.ctx != nil {
		if shared.format != f {
			return nil, fmt.Errorf("%w: have %+v, want %+v", ErrFormatChanged, shared.format, f)
		}
		if err := shared.ctx.Resume(); err != nil {
			return nil, fmt.Errorf("oto: resume: %w", err)
		}
		return shared.ctx, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   f.SampleRate,
		ChannelCount: f.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   latency,
	})
	if err != nil {
		return nil, fmt.Errorf("oto: new context: %w", err)
	}
	<-ready

	shared.ctx, shared.format = ctx, f
	return ctx, nil
}

type Option func(*Backend)

// WithLatency sets the hardware buffer duration.
func WithLatency(d time.Duration) Option {
	return func(b *Backend) {
		if d > 0 {
			b.latency = d
		}
	}
}

// Backend feeds an oto player from a Renderer. The player pulls through
// Read on oto's goroutine.
type Backend struct {
	latency time.Duration

	renderer atomic.Pointer[device.Renderer]
	channels int
	samples  []float32

	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
}

var _ device.Backend = (*Backend)(nil)

func New(opts ...Option) *Backend {
	b := &Backend{latency: DefaultLatency}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Start(f mixer.Format, r device.Renderer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.player != nil {
		return ErrStarted
	}
	ctx, err := sharedContext(f, b.latency)
	if err != nil {
		return err
	}

	b.channels = f.Channels
	frames := int(b.latency * time.Duration(f.SampleRate) / time.Second)
	b.samples = make([]float32, max(frames, 1)*f.Channels)
	b.renderer.Store(&r)

	b.ctx = ctx
	b.player = ctx.NewPlayer(b)
	b.player.Play()
	return nil
}

// Read renders whole frames into p.
func (b *Backend) Read(p []byte) (int, error) {
	r := b.renderer.Load()
	if r == nil {
		clear(p)
		return len(p), nil
	}
	return b.render(*r, p), nil
}

func (b *Backend) render(r device.Renderer, p []byte) int {
	frameSize := 4 * b.channels
	frames := len(p) / frameSize
	if frames == 0 {
		clear(p)
		return len(p)
	}

	n := frames * b.channels
	if len(b.samples) < n {
		b.samples = make([]float32, n)
	}
	samples := b.samples[:n]
	r.Render(samples)

	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return frames * frameSize
}

// Close stops the player and suspends the shared context.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.player == nil {
		return nil
	}
	b.renderer.Store(nil)
	err := b.player.Close()
	b.player = nil

	if serr := b.ctx.Suspend(); serr != nil {
		err = errors.Join(err, fmt.Errorf("oto: suspend: %w", serr))
	}
	return err
}
