// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audmix/dsp"
	"github.com/ik5/audmix/internal/logger"
	"github.com/ik5/audmix/internal/monitoring"
	"github.com/ik5/audmix/pcm"
	"github.com/ik5/audmix/utils"
)

// Format is the mixer output: interleaved float32 at SampleRate with
// Channels channels.
type Format struct {
	SampleRate int
	Channels   int
}

// Mixer sums every playing voice into the output.
//
// Mix runs on the audio callback goroutine; everything else is called from
// application goroutines. Mix never blocks, allocates or performs I/O: the
// registry is an array of atomic slots, voice parameters are atomics and a
// voice whose lock is held by the application is skipped for that block.
type Mixer struct {
	format        Format
	blockFrames   int
	maxVoices     int
	segmentFrames int

	acct    *pcm.Accountant
	log     *logger.Logger
	metrics *monitoring.Metrics

	mu     sync.Mutex // slot allocation
	slots  []atomic.Pointer[Voice]
	master atomic.Uint32
	global dsp.Chain

	// owned by Mix
	acc     []float32
	scratch []float32
}

// New creates a mixer for output format f.
func New(f Format, opts ...Option) (*Mixer, error) {
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return nil, fmt.Errorf("%w: %d Hz, %d channels", ErrInvalidFormat, f.SampleRate, f.Channels)
	}

	m := &Mixer{
		format:        f,
		blockFrames:   DefaultBlockFrames,
		maxVoices:     DefaultMaxVoices,
		segmentFrames: DefaultSegmentFrames,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.slots = make([]atomic.Pointer[Voice], m.maxVoices)
	m.acc = make([]float32, m.blockFrames*f.Channels)
	m.scratch = make([]float32, m.blockFrames*f.Channels)
	m.master.Store(math.Float32bits(1))

	return m, nil
}

func (m *Mixer) Format() Format { return m.format }

// SegmentFrames is the window segment size given to new streams and tracks.
func (m *Mixer) SegmentFrames() int { return m.segmentFrames }

func (m *Mixer) BlockFrames() int { return m.blockFrames }

// SetMasterVolume sets the output gain, clamped to [0, 1]. It takes effect
// at the next block boundary.
func (m *Mixer) SetMasterVolume(v float32) {
	m.master.Store(math.Float32bits(clamp(v, 0, 1, 1)))
}

func (m *Mixer) MasterVolume() float32 {
	return math.Float32frombits(m.master.Load())
}

// AttachProcessor appends p to the post-mix chain.
func (m *Mixer) AttachProcessor(p dsp.Processor) bool { return m.global.Attach(p) }

// DetachProcessor removes p from the post-mix chain.
func (m *Mixer) DetachProcessor(p dsp.Processor) bool { return m.global.Detach(p) }

// ActiveVoices counts registered voices.
func (m *Mixer) ActiveVoices() int {
	n := 0
	for i := range m.slots {
		if m.slots[i].Load() != nil {
			n++
		}
	}
	return n
}

// StopAll stops every registered voice.
func (m *Mixer) StopAll() {
	for i := range m.slots {
		if v := m.slots[i].Load(); v != nil {
			v.Stop()
		}
	}
}

func (m *Mixer) register(v *Voice) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := v.slot.Load(); i >= 0 && m.slots[i].Load() == v {
		return nil
	}
	for i := range m.slots {
		if m.slots[i].CompareAndSwap(nil, v) {
			v.slot.Store(int32(i))
			return nil
		}
	}
	v.slot.Store(-1)

	return ErrRegistryFull
}

func (m *Mixer) unregister(v *Voice) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := v.slot.Swap(-1); i >= 0 {
		m.slots[i].CompareAndSwap(v, nil)
	}
}

// Mix renders len(out)/channels frames of interleaved output. Large buffers
// are rendered in blocks; a trailing partial frame is zeroed.
func (m *Mixer) Mix(out []float32) {
	ch := m.format.Channels
	frames := len(out) / ch

	for off := 0; off < frames; off += m.blockFrames {
		n := min(m.blockFrames, frames-off)
		m.mixBlock(out[off*ch:(off+n)*ch], n)
	}
	clear(out[frames*ch:])
}

func (m *Mixer) mixBlock(out []float32, frames int) {
	var start time.Time
	if m.metrics != nil {
		start = time.Now()
	}

	ch := m.format.Channels
	acc := m.acc[:frames*ch]
	scratch := m.scratch[:frames*ch]
	clear(acc)

	master := m.MasterVolume()
	active := 0

	for i := range m.slots {
		v := m.slots[i].Load()
		if v == nil || v.State() != Playing {
			continue
		}
		active++

		if !v.mu.TryLock() {
			continue
		}
		if v.State() != Playing {
			v.mu.Unlock()
			continue
		}
		starved, done := v.render(scratch, frames, ch, m.format.SampleRate)
		v.chain.Process(scratch, frames)
		if done {
			m.retire(i, v)
		}
		v.mu.Unlock()

		for j, s := range scratch {
			acc[j] += s
		}

		if starved {
			m.metrics.Underrun()
		}
	}

	m.global.Process(acc, frames)

	for j, s := range acc {
		out[j] = utils.Clamp(s * master)
	}

	if m.metrics != nil {
		m.metrics.Block(start, active)
	}
}

// retire stops a voice that ran out of data and frees its slot. The caller
// must hold v.mu.
func (m *Mixer) retire(i int, v *Voice) {
	if v.state.CompareAndSwap(int32(Playing), int32(Stopped)) {
		v.finished.Store(true)
	}
	if m.slots[i].CompareAndSwap(v, nil) {
		v.slot.CompareAndSwap(int32(i), -1)
	}
	m.metrics.Finished()
}

// clamp limits v to [lo, hi]; NaN becomes def.
func clamp(v, lo, hi, def float32) float32 {
	if v != v {
		return def
	}
	return min(max(v, lo), hi)
}
