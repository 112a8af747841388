// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files.
//
// # Supported Formats
//
//   - Uncompressed AIFF
//   - 8, 16, 24 and 32-bit signed PCM
//   - Any channel count and sample rate
//
// # Decoding AIFF Files
//
//	file, _ := os.Open("audio.aif")
//	source, err := aiff.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// go-audio/aiff needs an io.ReadSeeker. Other readers are read into memory
// before decoding.
//
// The source reports its frame count (from the COMM chunk) and bit depth.
// It does not implement audio.FrameSeeker; the track streamer repositions
// it by reopening the input and skipping frames.
//
// # Error Handling
//
//   - ErrNotAiffFile: the input is not a FORM/AIFF container
//   - ErrUnsupportedBitDepth: sample size other than 8, 16, 24 or 32
//   - ErrUnsupportedAiffLayout: missing or inconsistent COMM information
package aiff
