// SPDX-License-Identifier: EPL-2.0

package pcm

import "fmt"

// Format describes how samples are laid out in a Buffer.
type Format struct {
	SampleRate int
	BitDepth   int
	Channels   int
}

// Validate reports ErrInvalidFormat for values a Buffer cannot hold.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, f.SampleRate)
	}
	switch f.BitDepth {
	case 8, 16, 32:
	default:
		return fmt.Errorf("%w: bit depth %d", ErrInvalidFormat, f.BitDepth)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("%w: channels %d", ErrInvalidFormat, f.Channels)
	}
	return nil
}

// SampleSize is the number of bytes per sample.
func (f Format) SampleSize() int { return f.BitDepth / 8 }

// FrameSize is the number of bytes per frame (one sample for every channel).
func (f Format) FrameSize() int { return f.SampleSize() * f.Channels }

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dbit/%dch", f.SampleRate, f.BitDepth, f.Channels)
}
