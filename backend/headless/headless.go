// SPDX-License-Identifier: EPL-2.0

// Package headless drives a device from a timer instead of sound hardware.
// It keeps playback moving on machines without an audio device and can
// capture the rendered output.
package headless

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/ik5/audmix/device"
	"github.com/ik5/audmix/mixer"
)

// DefaultFrames is the block rendered per tick.
const DefaultFrames = 1024

var ErrStarted = errors.New("headless: already started")

type Option func(*Backend)

// WithSink writes every rendered block to w as little endian float32.
func WithSink(w io.Writer) Option {
	return func(b *Backend) { b.sink = w }
}

// WithFrames sets the frames rendered per tick.
func WithFrames(n int) Option {
	return func(b *Backend) {
		if n > 0 {
			b.frames = n
		}
	}
}

// Backend renders one block every frames/rate seconds.
type Backend struct {
	sink   io.Writer
	frames int

	mu      sync.Mutex
	done    chan struct{}
	wg      sync.WaitGroup
	sinkErr error
}

var _ device.Backend = (*Backend)(nil)

func New(opts ...Option) *Backend {
	b := &Backend{frames: DefaultFrames}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Start(f mixer.Format, r device.Renderer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done != nil {
		return ErrStarted
	}
	period := time.Duration(b.frames) * time.Second / time.Duration(f.SampleRate)
	b.done = make(chan struct{})

	b.wg.Add(1)
	go b.run(r, make([]float32, b.frames*f.Channels), period, b.done)
	return nil
}

func (b *Backend) run(r device.Renderer, out []float32, period time.Duration, done <-chan struct{}) {
	defer b.wg.Done()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			r.Render(out)
			if b.sink == nil {
				continue
			}
			if err := binary.Write(b.sink, binary.LittleEndian, out); err != nil {
				b.mu.Lock()
				b.sinkErr = err
				b.mu.Unlock()
				b.sink = nil
			}
		}
	}
}

// Close stops the timer and waits for the block in flight. It returns the
// first error the sink reported.
func (b *Backend) Close() error {
	b.mu.Lock()
	done := b.done
	b.done = nil
	b.mu.Unlock()

	if done == nil {
		return nil
	}
	close(done)
	b.wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sinkErr
}
