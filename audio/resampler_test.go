package audio

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/audmix/internal/audiotest"
)

func drain(t *testing.T, src Source, bufSize int) []float32 {
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

func TestResampler_Metadata(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(44100, 2, 1000)
	resampler := NewResampler(src, 8000)

	if resampler.SampleRate() != 8000 {
		t.Errorf("Resampler.SampleRate() = %d, want 8000", resampler.SampleRate())
	}
	if resampler.Channels() != 2 {
		t.Errorf("Resampler.Channels() = %d, want 2", resampler.Channels())
	}
	if got := resampler.Ratio(); math.Abs(got-44100.0/8000.0) > 1e-12 {
		t.Errorf("Resampler.Ratio() = %v", got)
	}
}

func TestResampler_SameRateIsExact(t *testing.T) {
	t.Parallel()

	src := audiotest.NewRampSource(8000, 2, 777).WithMaxRead(13)
	got := drain(t, NewResampler(src, 8000), 64)

	if len(got) != 777*2 {
		t.Fatalf("len = %d, want %d", len(got), 777*2)
	}
	for f := range 777 {
		for c := range 2 {
			if got[f*2+c] != audiotest.Ramp(f, c) {
				t.Fatalf("frame %d ch %d = %v, want %v", f, c, got[f*2+c], audiotest.Ramp(f, c))
			}
		}
	}
}

func TestResampler_KeepsFirstFrame(t *testing.T) {
	t.Parallel()

	src := audiotest.NewRampSource(8000, 1, 100)
	got := drain(t, NewResampler(src, 16000), 32)

	if got[0] != audiotest.Ramp(0, 0) {
		t.Errorf("first sample = %v, want %v", got[0], audiotest.Ramp(0, 0))
	}
	if got[2] != audiotest.Ramp(1, 0) {
		t.Errorf("third sample = %v, want %v", got[2], audiotest.Ramp(1, 0))
	}
}

func TestResampler_DownsampleStartsAtFullLevel(t *testing.T) {
	t.Parallel()

	level := func(_, c int) float32 { return 0.5 - float32(c) }
	r := NewResampler(audiotest.NewMockSource(16000, 2, 400, level), 8000)
	got := drain(t, r, 64)

	for f := range 4 {
		if got[2*f] != 0.5 || got[2*f+1] != -0.5 {
			t.Fatalf("frame %d = %v %v, want 0.5 -0.5", f, got[2*f], got[2*f+1])
		}
	}
}

func TestResampler_FrameCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		from    int
		to      int
		frames  int
		want    int
		epsilon int
	}{
		{"upsample x2", 8000, 16000, 1000, 2000, 0},
		{"downsample x2", 16000, 8000, 1000, 500, 0},
		{"44.1k to 8k", 44100, 8000, 44100, 8000, 2},
		{"8k to 44.1k", 8000, 44100, 8000, 44100, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewSineSource(tt.from, 1, tt.frames, 440)
			got := len(drain(t, NewResampler(src, tt.to), 1024))
			if got < tt.want-tt.epsilon || got > tt.want+tt.epsilon {
				t.Errorf("frames = %d, want %d±%d", got, tt.want, tt.epsilon)
			}
		})
	}
}

func TestResampler_PreservesSine(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSineSource(8000, 1, 8000, 220)
	got := drain(t, NewResampler(src, 16000), 512)

	// skip the edges where the history is padded
	for i := 8; i < len(got)-8; i++ {
		want := math.Sin(2 * math.Pi * 220 * float64(i) / 16000)
		if math.Abs(float64(got[i])-want) > 0.01 {
			t.Fatalf("sample %d = %v, want ≈%v", i, got[i], want)
		}
	}
}

func TestResampler_InvalidDst(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewSilentSource(8000, 2, 10), 16000)
	if _, err := r.ReadSamples(make([]float32, 3)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples(odd) error = %v, want ErrInvalidDstSize", err)
	}
}

func TestResampler_PropagatesError(t *testing.T) {
	t.Parallel()

	src := audiotest.NewRampSource(8000, 1, 1000).FailAfter(50)
	r := NewResampler(src, 16000)

	buf := make([]float32, 4096)
	var err error
	total := 0
	for range 10 {
		var n int
		n, err = r.ReadSamples(buf)
		total += n
		if err != nil {
			break
		}
	}
	if !errors.Is(err, audiotest.ErrInjected) {
		t.Fatalf("error = %v, want ErrInjected", err)
	}
	if total == 0 {
		t.Error("no samples before the failure")
	}
}

func TestResampler_Reset(t *testing.T) {
	t.Parallel()

	src := audiotest.NewRampSource(8000, 1, 200)
	r := NewResampler(src, 8000)
	first := drain(t, r, 64)

	src.Reset()
	r.Reset()
	second := drain(t, r, 64)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sample %d differs after Reset: %v vs %v", i, first[i], second[i])
		}
	}
}

func BenchmarkResampler(b *testing.B) {
	buf := make([]float32, 4096)
	b.ReportAllocs()

	for b.Loop() {
		r := NewResampler(audiotest.NewSineSource(44100, 2, 44100, 440), 48000)
		for {
			if _, err := r.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
