// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// ReadAll drains src into a single interleaved slice, reading bufferSize
// samples at a time. It returns the samples collected before any error.
func ReadAll(src Source, bufferSize int) ([]float32, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}
	bufferSize = max(bufferSize-bufferSize%channels, channels)

	out := make([]float32, 0, bufferSize)
	if l, ok := src.(Lengther); ok && l.Length() > 0 {
		out = make([]float32, 0, int(l.Length())*channels)
	}
	buf := make([]float32, bufferSize)

	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)

		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("%w", err)
		}
		if n == 0 {
			// A source that neither advances nor reports EOF would spin forever.
			return out, nil
		}
	}
}

// Convert builds the processing pipeline resample -> channel conversion and
// collects everything src produces.
//
// This function creates a processing pipeline:
//  1. Resamples the source audio to targetRate using cubic interpolation
//  2. Converts the resampled audio to the requested channel count
//  3. Reads all samples from the pipeline
func Convert(src Source, targetRate, channels, bufferSize int) ([]float32, error) {
	var pipeline Source = src
	if src.SampleRate() != targetRate {
		pipeline = NewResampler(pipeline, targetRate)
	}
	if src.Channels() != channels {
		conv, err := NewChannelConverter(pipeline, channels)
		if err != nil {
			return nil, err
		}
		pipeline = conv
	}

	return ReadAll(pipeline, bufferSize)
}
