// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// # Supported Formats
//
// Decoding:
//   - Integer PCM at 8 (unsigned), 16, 24 and 32 bit
//   - 32-bit IEEE float
//   - WAVE_FORMAT_EXTENSIBLE wrapping either of the above
//   - Any channel count and sample rate
//
// Chunks other than "fmt " and "data" (LIST, fact, cue ...) are skipped.
//
// # Decoding WAV Files
//
//	file, _ := os.Open("audio.wav")
//	source, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// The returned source reports its bit depth and frame count through
// audio.BitDepther and audio.Lengther. When the reader is an io.ReadSeeker
// it also implements audio.FrameSeeker.
//
// # Writing WAV Files
//
// Encode writes integer PCM through github.com/go-audio/wav:
//
//	file, _ := os.Create("output.wav")
//	err := wav.Encode(file, 44100, 2, 16, samples)
//
// The writer has to be seekable, the header sizes are patched on close.
//
// # Error Handling
//
//   - ErrNotWavFile: the input is not RIFF/WAVE
//   - ErrUnsupportedEncoding: compressed or otherwise unsupported sample format
//   - ErrUnsupportedWavLayout: inconsistent fmt chunk or data before fmt
//   - ErrUnsupportedWavChunks: no data chunk could be found
//   - ErrUnsupportedBitDepth: Encode was asked for a depth it cannot write
//
//	if errors.Is(err, wav.ErrNotWavFile) {
//	    fmt.Println("Not a WAV file")
//	}
package wav
