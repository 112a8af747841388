// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audmix/audio"
)

// mockAiffReader simulates the aiff.Decoder for testing
type mockAiffReader struct {
	sampleRate int
	channels   int
	samples    []int
	offset     int
	failWith   error
}

func (m *mockAiffReader) Format() *goaudio.Format {
	return &goaudio.Format{
		SampleRate:  m.sampleRate,
		NumChannels: m.channels,
	}
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := copy(buf.Data, m.samples[m.offset:])
	m.offset += n
	return n, nil
}

func newTestSource(bitDepth, channels int, frames int64, samples []int) *source {
	return &source{
		dec:        &mockAiffReader{sampleRate: 44100, channels: channels, samples: samples},
		sampleRate: 44100,
		channels:   channels,
		bitDepth:   bitDepth,
		frames:     frames,
	}
}

func readAll(t *testing.T, src audio.Source, bufSize int) []float32 {
	t.Helper()

	buf := make([]float32, bufSize)
	var out []float32
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		r    io.Reader
	}{
		{"garbage", bytes.NewReader([]byte("This is not AIFF data"))},
		{"empty", bytes.NewReader(nil)},
		{"plain reader", io.LimitReader(bytes.NewReader([]byte("FORM....AIFC")), 12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(tt.r); err == nil {
				t.Error("Decode() error = nil, want error")
			}
		})
	}
}

func TestSource_BitDepthNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		depth int
		raw   []int
		want  []float32
	}{
		{8, []int{64, -128, 0}, []float32{0.5, -1, 0}},
		{16, []int{16384, -32768, 0}, []float32{0.5, -1, 0}},
		{24, []int{4194304, -8388608, 0}, []float32{0.5, -1, 0}},
		{32, []int{1 << 30, -1 << 31, 0}, []float32{0.5, -1, 0}},
	}

	for _, tt := range tests {
		src := newTestSource(tt.depth, 1, int64(len(tt.raw)), tt.raw)
		if src.BitDepth() != tt.depth {
			t.Errorf("BitDepth() = %d, want %d", src.BitDepth(), tt.depth)
		}
		got := readAll(t, src, 16)
		if len(got) != len(tt.want) {
			t.Fatalf("%d bit: got %d samples, want %d", tt.depth, len(got), len(tt.want))
		}
		for i := range got {
			if math.Abs(float64(got[i]-tt.want[i])) > 1e-6 {
				t.Errorf("%d bit sample %d = %v, want %v", tt.depth, i, got[i], tt.want[i])
			}
		}
	}
}

func TestSource_ReadSamples_Frames(t *testing.T) {
	t.Parallel()

	raw := make([]int, 2*50)
	for i := range raw {
		raw[i] = i
	}
	src := newTestSource(16, 2, 50, raw)

	if src.Length() != 50 {
		t.Errorf("Length() = %d, want 50", src.Length())
	}

	// odd buffer sizes still yield whole frames
	got := readAll(t, src, 7)
	if len(got) != 100 {
		t.Fatalf("got %d samples, want 100", len(got))
	}
	for i := range got {
		if got[i] != float32(i)/32768 {
			t.Fatalf("sample %d = %v", i, got[i])
		}
	}
}

func TestSource_ReadSamples_ShortSoundData(t *testing.T) {
	t.Parallel()

	// COMM claims 10 frames, SSND holds 4
	src := newTestSource(16, 1, 10, []int{1, 2, 3, 4})
	if got := len(readAll(t, src, 3)); got != 4 {
		t.Errorf("got %d samples, want 4", got)
	}
	if src.Length() != 4 {
		t.Errorf("Length() after short read = %d, want 4", src.Length())
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	src := newTestSource(16, 1, 10, nil)
	src.dec.(*mockAiffReader).failWith = io.ErrUnexpectedEOF

	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestSource_ReadSamples_EmptyBuffer(t *testing.T) {
	t.Parallel()

	src := newTestSource(16, 1, 10, []int{1})
	if n, err := src.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v", n, err)
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	raw := make([]int, 2*44100)
	buf := make([]float32, 4096)
	b.ReportAllocs()

	for b.Loop() {
		src := newTestSource(16, 2, 44100, raw)
		for {
			if _, err := src.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
