// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audmix/audio"
)

func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	samples := []float32{0, 0.5, -0.5, 0.25, -1, 1, 0.125, -0.125}

	for _, depth := range []int{8, 16, 24, 32} {
		t.Run(fmt.Sprintf("%dbit", depth), func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "out.wav")
			f, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}
			if err := Encode(f, 22050, 2, depth, samples); err != nil {
				t.Fatalf("Encode(%d bit) error = %v", depth, err)
			}
			f.Close()

			in, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer in.Close()

			src, err := Decoder{}.Decode(in)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if src.SampleRate() != 22050 || src.Channels() != 2 {
				t.Errorf("format = %d Hz %d ch", src.SampleRate(), src.Channels())
			}
			if got := src.(audio.BitDepther).BitDepth(); got != depth {
				t.Errorf("BitDepth() = %d, want %d", got, depth)
			}

			got := readAll(t, src)
			if len(got) != len(samples) {
				t.Fatalf("got %d samples, want %d", len(got), len(samples))
			}
			tol := max(4/math.Pow(2, float64(depth)), 1e-6)
			for i := range got {
				if math.Abs(float64(got[i]-samples[i])) > tol {
					t.Errorf("sample %d = %v, want %v (±%v)", i, got[i], samples[i], tol)
				}
			}
		})
	}
}

func TestEncode_Empty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := Encode(f, 8000, 1, 16, nil); err != nil {
		t.Fatalf("Encode(nil) error = %v", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	src, err := Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := src.(audio.Lengther).Length(); got != 0 {
		t.Errorf("Length() = %d, want 0", got)
	}
}

func TestEncode_Invalid(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "x.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := Encode(f, 8000, 1, 12, nil); !errors.Is(err, ErrUnsupportedBitDepth) {
		t.Errorf("Encode(12 bit) error = %v, want ErrUnsupportedBitDepth", err)
	}
	if err := Encode(f, 8000, 0, 16, nil); !errors.Is(err, ErrUnsupportedWavLayout) {
		t.Errorf("Encode(0 channels) error = %v, want ErrUnsupportedWavLayout", err)
	}
}
