// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package oto

import (
	"encoding/binary"
	"math"
	"testing"
)

type counter struct{ next float32 }

func (c *counter) Render(out []float32) {
	for i := range out {
		out[i] = c.next
		c.next += 0.125
	}
}

func TestRead_WithoutRendererIsSilent(t *testing.T) {
	t.Parallel()

	b := New()
	p := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	n, err := b.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read() = %d, %v", n, err)
	}
	for i, v := range p {
		if v != 0 {
			t.Fatalf("byte %d = %d, want 0", i, v)
		}
	}
}

func TestRender_WholeFrames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		bytes    int
		want     int
	}{
		{"stereo exact", 2, 32, 32},
		{"stereo partial frame", 2, 36, 32},
		{"mono", 1, 12, 12},
		{"shorter than a frame", 2, 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := New()
			b.channels = tt.channels
			p := make([]byte, tt.bytes)
			r := &counter{}

			n := b.render(r, p)
			if n != tt.want {
				t.Fatalf("render() = %d bytes, want %d", n, tt.want)
			}
			if tt.bytes < 4*tt.channels {
				return
			}
			for i := 0; i < n/4; i++ {
				got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
				if want := float32(i) * 0.125; got != want {
					t.Errorf("sample %d = %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestClose_NotStarted(t *testing.T) {
	t.Parallel()

	if err := New().Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
