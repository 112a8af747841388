// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestAllocate_InvalidInput(t *testing.T) {
	t.Parallel()

	valid := Format{SampleRate: 44100, BitDepth: 16, Channels: 2}

	tests := []struct {
		name    string
		frames  int
		format  Format
		opts    []Option
		wantErr error
	}{
		{name: "zero frames", frames: 0, format: valid, wantErr: ErrAllocation},
		{name: "negative frames", frames: -10, format: valid, wantErr: ErrAllocation},
		{name: "over limit", frames: 1000, format: valid, opts: []Option{WithLimit(100)}, wantErr: ErrAllocation},
		{name: "bad depth", frames: 10, format: Format{SampleRate: 8000, BitDepth: 24, Channels: 1}, wantErr: ErrInvalidFormat},
		{name: "bad rate", frames: 10, format: Format{SampleRate: 0, BitDepth: 16, Channels: 1}, wantErr: ErrInvalidFormat},
		{name: "bad channels", frames: 10, format: Format{SampleRate: 8000, BitDepth: 16}, wantErr: ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var acct Accountant
			opts := append([]Option{WithAccountant(&acct)}, tt.opts...)
			b, err := Allocate(tt.frames, tt.format, opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Allocate() error = %v, want %v", err, tt.wantErr)
			}
			if b != nil {
				t.Error("Allocate() returned a buffer on failure")
			}
			if acct.Bytes() != 0 || acct.Buffers() != 0 {
				t.Errorf("failed allocation was accounted: %d bytes, %d buffers", acct.Bytes(), acct.Buffers())
			}
		})
	}
}

// Loading then unloading with no other owners must leave nothing behind.
func TestAllocate_AccountingBalances(t *testing.T) {
	t.Parallel()

	for _, rate := range []int{8000, 22050, 44100, 48000} {
		for _, depth := range []int{8, 16, 32} {
			for _, channels := range []int{1, 2, 6} {
				var acct Accountant
				f := Format{SampleRate: rate, BitDepth: depth, Channels: channels}

				b, err := Allocate(rate/10, f, WithAccountant(&acct))
				if err != nil {
					t.Fatalf("Allocate(%v) error = %v", f, err)
				}
				want := int64(rate / 10 * f.FrameSize())
				if acct.Bytes() != want || acct.Buffers() != 1 {
					t.Fatalf("%v: accounted %d bytes/%d buffers, want %d/1", f, acct.Bytes(), acct.Buffers(), want)
				}

				b.Release()
				if acct.Bytes() != 0 || acct.Buffers() != 0 {
					t.Errorf("%v: leaked %d bytes in %d buffers", f, acct.Bytes(), acct.Buffers())
				}
				if !b.Released() || b.Bytes() != nil {
					t.Errorf("%v: storage still held after last release", f)
				}
			}
		}
	}
}

func TestBuffer_RetainRelease(t *testing.T) {
	t.Parallel()

	var acct Accountant
	b, err := Allocate(100, Format{SampleRate: 8000, BitDepth: 16, Channels: 1}, WithAccountant(&acct))
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}

	b.Retain().Retain()
	if b.Refs() != 3 {
		t.Fatalf("Refs() = %d, want 3", b.Refs())
	}

	b.Release()
	b.Release()
	if b.Released() || acct.Buffers() != 1 {
		t.Fatal("storage freed while a reference remains")
	}

	b.Release()
	if !b.Released() || acct.Buffers() != 0 {
		t.Fatal("storage not freed by the last release")
	}
}

func TestBuffer_OverReleaseIsIgnored(t *testing.T) {
	if debug {
		t.Skip("over-release panics in debug builds")
	}
	t.Parallel()

	var acct Accountant
	b, _ := Allocate(10, Format{SampleRate: 8000, BitDepth: 16, Channels: 1}, WithAccountant(&acct))
	b.Release()
	b.Release()

	if b.Refs() != 0 {
		t.Errorf("Refs() = %d after over-release, want 0", b.Refs())
	}
	if acct.Bytes() != 0 || acct.Buffers() != 0 {
		t.Errorf("over-release disturbed accounting: %d bytes, %d buffers", acct.Bytes(), acct.Buffers())
	}
}

func TestBuffer_WriteReadFormats(t *testing.T) {
	t.Parallel()

	src := []float32{0, 0.5, -0.5, 0.25, -0.25, 0.75}

	tests := []struct {
		depth     int
		tolerance float64
	}{
		{8, 1.0 / 64},
		{16, 1.0 / 16384},
		{32, 0},
	}

	for _, tt := range tests {
		b, err := Allocate(3, Format{SampleRate: 8000, BitDepth: tt.depth, Channels: 2})
		if err != nil {
			t.Fatalf("Allocate() error = %v", err)
		}

		if n, err := b.WriteSamples(0, src); err != nil || n != 3 {
			t.Fatalf("%d-bit WriteSamples() = %d, %v", tt.depth, n, err)
		}

		dst := make([]float32, len(src))
		if n := b.Read(0, 3, dst); n != 3 {
			t.Fatalf("%d-bit Read() = %d, want 3", tt.depth, n)
		}
		for i := range src {
			if math.Abs(float64(dst[i]-src[i])) > tt.tolerance {
				t.Errorf("%d-bit sample %d = %v, want %v", tt.depth, i, dst[i], src[i])
			}
		}
	}
}

func TestBuffer_EightBitStartsSilent(t *testing.T) {
	t.Parallel()

	b, _ := Allocate(4, Format{SampleRate: 8000, BitDepth: 8, Channels: 1})
	dst := make([]float32, 4)
	b.Read(0, 4, dst)
	for i, v := range dst {
		if v != 0 {
			t.Errorf("dst[%d] = %v, want silence", i, v)
		}
	}
}

func TestBuffer_LinearBounds(t *testing.T) {
	t.Parallel()

	b, _ := Allocate(4, Format{SampleRate: 8000, BitDepth: 32, Channels: 1})

	if _, err := b.WriteSamples(3, []float32{1, 1}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("WriteSamples past end error = %v, want ErrOutOfRange", err)
	}
	if _, err := b.Write(-1, make([]byte, 4), 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Write at -1 error = %v, want ErrOutOfRange", err)
	}

	dst := make([]float32, 8)
	if n := b.Read(2, 8, dst); n != 2 {
		t.Errorf("Read() clamped to %d frames, want 2", n)
	}
	if n := b.Read(4, 1, dst); n != 0 {
		t.Errorf("Read() past end = %d, want 0", n)
	}
}

func TestBuffer_RingWraps(t *testing.T) {
	t.Parallel()

	b, _ := Allocate(4, Format{SampleRate: 8000, BitDepth: 32, Channels: 1}, WithRing())
	if !b.IsRing() {
		t.Fatal("IsRing() = false")
	}

	if n, err := b.WriteSamples(3, []float32{0.1, 0.2, 0.3}); err != nil || n != 3 {
		t.Fatalf("WriteSamples() = %d, %v", n, err)
	}

	dst := make([]float32, 3)
	b.Read(7, 3, dst)
	want := []float32{0.1, 0.2, 0.3}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}

	if _, err := b.WriteSamples(0, make([]float32, 5)); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("overfilling ring error = %v, want ErrOutOfRange", err)
	}
}

func TestBuffer_Clone(t *testing.T) {
	t.Parallel()

	var acct Accountant
	b, _ := Allocate(4, Format{SampleRate: 8000, BitDepth: 16, Channels: 1}, WithAccountant(&acct))
	b.WriteSamples(0, []float32{0.1, 0.2, 0.3, 0.4})

	c, err := b.Clone(1, 3)
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	if c.Frames() != 2 || acct.Buffers() != 2 {
		t.Fatalf("Clone() frames = %d, buffers = %d", c.Frames(), acct.Buffers())
	}

	got, want := c.Samples(), b.Samples()[1:3]
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("clone sample %d = %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := b.Clone(3, 3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("empty Clone() error = %v, want ErrOutOfRange", err)
	}

	b.Release()
	c.Release()
	if acct.Bytes() != 0 {
		t.Errorf("leaked %d bytes", acct.Bytes())
	}
}

func TestBuffer_Duration(t *testing.T) {
	t.Parallel()

	b, _ := Allocate(22050, Format{SampleRate: 44100, BitDepth: 16, Channels: 2})
	if got := b.Duration(); got != 500*time.Millisecond {
		t.Errorf("Duration() = %v, want 500ms", got)
	}
}

func TestBuffer_Read_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	b, _ := Allocate(1024, Format{SampleRate: 44100, BitDepth: 16, Channels: 2}, WithRing())
	dst := make([]float32, 512*2)

	allocs := testing.AllocsPerRun(100, func() {
		b.Read(900, 512, dst)
	})
	if allocs > 0 {
		t.Errorf("Read allocated %v times, want 0", allocs)
	}
}
