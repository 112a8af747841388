// SPDX-License-Identifier: EPL-2.0

// Package audio provides the streaming primitives every decoder and loader
// in this module is built from.
//
// This package contains:
//   - Source interface for decoded PCM input
//   - FrameSeeker, Lengther and BitDepther optional capabilities
//   - Resampler for sample rate conversion
//   - ChannelConverter for channel mixing
//   - Format registry for decoder registration
//
// # Source Interface
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// ReadSamples returns the number of float32 values written, always a whole
// number of frames, and io.EOF once the stream is finished. Sources that
// can reposition without being reopened also implement FrameSeeker; the
// track streamer in package mixer prefers it over reopening the input.
//
// # Resampling
//
// The Resampler changes the sample rate of audio using cubic interpolation:
//
//	resampler := audio.NewResampler(source, 48000)
//	buf := make([]float32, 4096)
//	n, err := resampler.ReadSamples(buf)
//
// The first output frame equals the first source frame, and at equal rates
// the output is bit-identical to the input. When downsampling a one-pole
// low-pass filter runs on the input first.
//
// # Channel Conversion
//
//	stereo, err := audio.NewChannelConverter(source, 2)
//	mono := audio.NewMonoMixer(source)
//
// Down-mixing to mono averages all channels, up-mixing from mono
// duplicates the signal.
//
// # Format Registry
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	src, err := registry.Decode("theme.WAV", file)
//
// Keys are case-insensitive and may be given as a bare tag, an extension
// or a file name. formats.NewRegistry returns one with every built-in
// decoder already registered.
//
// # Sample Format
//
// Audio samples are represented as float32 in the range [-1.0, 1.0]:
//   - 0.0 represents silence
//   - 1.0 represents maximum positive amplitude
//   - -1.0 represents maximum negative amplitude
//
// # Error Handling
//
// Sources return io.EOF when no more data is available, possibly together
// with the last samples:
//
//	for {
//	    n, err := src.ReadSamples(buf)
//	    process(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
//
// Decoder lookups and failures are reported as ErrFormatUnsupported.
package audio
