// SPDX-License-Identifier: EPL-2.0

package headless

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ik5/audmix/mixer"
)

type constant struct {
	v     float32
	calls atomic.Int64
}

func (c *constant) Render(out []float32) {
	for i := range out {
		out[i] = c.v
	}
	c.calls.Add(1)
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *lockedBuffer) Bytes() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return bytes.Clone(l.buf.Bytes())
}

type failing struct{}

func (failing) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestBackend_RendersIntoSink(t *testing.T) {
	t.Parallel()

	var sink lockedBuffer
	r := &constant{v: 0.5}
	b := New(WithSink(&sink), WithFrames(80))
	if err := b.Start(mixer.Format{SampleRate: 8000, Channels: 2}, r); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return r.calls.Load() >= 3 })
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	data := sink.Bytes()
	if len(data) == 0 || len(data)%(80*2*4) != 0 {
		t.Fatalf("sink holds %d bytes, want whole blocks of %d", len(data), 80*2*4)
	}
	for i := 0; i < len(data); i += 4 {
		if v := math.Float32frombits(binary.LittleEndian.Uint32(data[i:])); v != 0.5 {
			t.Fatalf("sample %d = %v, want 0.5", i/4, v)
		}
	}

	calls := r.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if r.calls.Load() != calls {
		t.Error("Render called after Close")
	}
}

func TestBackend_StartTwice(t *testing.T) {
	t.Parallel()

	b := New()
	f := mixer.Format{SampleRate: 44100, Channels: 2}
	if err := b.Start(f, &constant{}); err != nil {
		t.Fatal(err)
	}
	if err := b.Start(f, &constant{}); !errors.Is(err, ErrStarted) {
		t.Errorf("second Start() error = %v, want ErrStarted", err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestBackend_SinkError(t *testing.T) {
	t.Parallel()

	r := &constant{}
	b := New(WithSink(failing{}), WithFrames(16))
	if err := b.Start(mixer.Format{SampleRate: 8000, Channels: 1}, r); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return r.calls.Load() >= 2 })
	if err := b.Close(); err == nil {
		t.Error("Close() should report the sink error")
	}
}
