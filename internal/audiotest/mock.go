// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"io"
	"math"
)

// ErrInjected is returned by sources configured with FailAfter.
var ErrInjected = errors.New("audiotest: injected failure")

// MockSource is a test helper that generates audio data for testing.
// It implements the audio.Source interface (without importing it to avoid cycles)
// together with the optional SeekFrame and Length capabilities.
type MockSource struct {
	sampleRate  int
	channels    int
	totalFrames int
	generated   int
	waveform    func(frame int, channel int) float32

	maxRead   int // frames per ReadSamples call, 0 = unlimited
	failAfter int // frames before ErrInjected, -1 = never
	seekable  bool

	Reads  int
	Closed bool
}

// NewMockSource creates a new mock audio source.
// totalFrames is the number of frames to generate.
// waveform is a function that generates sample values given frame index and channel.
func NewMockSource(sampleRate, channels, totalFrames int, waveform func(frame int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    waveform,
		failAfter:   -1,
		seekable:    true,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(int, int) float32 {
		return 0.0
	})
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalFrames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalFrames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(int, int) float32 {
		return value
	})
}

// NewRampSource produces Ramp(frame, channel), which makes every frame of
// the stream identifiable in assertions.
func NewRampSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, Ramp)
}

// Ramp maps a frame index and channel to a distinct value in (-1, 1).
func Ramp(frame, channel int) float32 {
	return float32(frame%1000)/1000 - float32(channel)*0.25
}

// WithMaxRead limits every ReadSamples call to frames frames.
func (m *MockSource) WithMaxRead(frames int) *MockSource {
	m.maxRead = frames
	return m
}

// FailAfter makes ReadSamples fail with ErrInjected once frames frames were produced.
func (m *MockSource) FailAfter(frames int) *MockSource {
	m.failAfter = frames
	return m
}

// Unseekable makes SeekFrame fail, forcing callers onto their fallback path.
func (m *MockSource) Unseekable() *MockSource {
	m.seekable = false
	return m
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }
func (m *MockSource) Length() int64   { return int64(m.totalFrames) }
func (m *MockSource) Position() int   { return m.generated }

func (m *MockSource) Close() error {
	m.Closed = true
	return nil
}

// Reset resets the generated frame counter to allow re-reading
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) SeekFrame(frame int64) error {
	if !m.seekable {
		return errors.ErrUnsupported
	}
	m.generated = int(min(max(frame, 0), int64(m.totalFrames)))
	return nil
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	m.Reads++
	if m.failAfter >= 0 && m.generated >= m.failAfter {
		return 0, ErrInjected
	}
	if m.generated >= m.totalFrames {
		return 0, io.EOF
	}

	framesToWrite := min(len(dst)/m.channels, m.totalFrames-m.generated)
	if m.maxRead > 0 {
		framesToWrite = min(framesToWrite, m.maxRead)
	}
	if m.failAfter >= 0 {
		framesToWrite = min(framesToWrite, m.failAfter-m.generated)
	}

	for frame := range framesToWrite {
		idx := m.generated + frame
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(idx, ch)
		}
	}

	m.generated += framesToWrite
	samplesWritten := framesToWrite * m.channels

	if m.generated >= m.totalFrames {
		return samplesWritten, io.EOF
	}

	return samplesWritten, nil
}
