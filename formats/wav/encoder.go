// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audmix/utils"
)

// Encode writes interleaved float32 samples as integer PCM WAV.
// bitDepth must be 8, 16, 24 or 32. The writer must be seekable because
// the header sizes are patched once all data is written.
func Encode(w io.WriteSeeker, sampleRate, channels, bitDepth int, samples []float32) error {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	if channels <= 0 || sampleRate <= 0 {
		return ErrUnsupportedWavLayout
	}

	enc := gowav.NewEncoder(w, sampleRate, bitDepth, channels, formatPCM)

	// Write in chunks so large waves don't need a second full-size copy.
	const chunkFrames = 8192
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
		Data:           make([]int, 0, min(len(samples), chunkFrames*channels)),
	}

	for start := 0; start < len(samples) || start == 0; start += chunkFrames * channels {
		end := min(start+chunkFrames*channels, len(samples))
		buf.Data = buf.Data[:0]
		for _, x := range samples[start:end] {
			buf.Data = append(buf.Data, toInt(x, bitDepth))
		}
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("%w", err)
		}
		if end == len(samples) {
			break
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func toInt(x float32, bitDepth int) int {
	switch bitDepth {
	case 8:
		// the encoder writes uint8 as is, WAV stores 8-bit unsigned
		return int(utils.Float32ToUint8(x))
	case 16:
		return int(utils.Float32ToInt16(x))
	default:
		return int(utils.Float32ToInt32(x, bitDepth))
	}
}
