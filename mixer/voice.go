// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ik5/audmix/dsp"
	"github.com/ik5/audmix/utils"
)

const (
	MinPitch float32 = 1.0 / 64
	MaxPitch float32 = 16
)

// State is the play state of a voice.
type State int32

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "unknown"
}

type fetch int8

const (
	fetchOK fetch = iota
	fetchStarved
	fetchEnd
)

// source feeds frames to a voice.
type source interface {
	format() (rate, channels int)
	// next copies the following frame into dst. Called by the mixer with
	// the voice lock held.
	next(dst []float32, loop bool) fetch
	// restart moves back to frame 0. Called by the application with the
	// voice lock held, so it must not decode.
	restart()
	// reload refills the source after restart, without the voice lock.
	reload() error
}

// Voice is one playback instance: play state, gain, pitch, pan, a processor
// chain and a cursor into its source. Sound, Stream and Track embed it.
//
// All methods are safe on a nil or unloaded voice and do nothing.
type Voice struct {
	id  uuid.UUID
	m   *Mixer
	src source

	mu       sync.Mutex // guards the cursor against the application
	slot     atomic.Int32
	state    atomic.Int32
	finished atomic.Bool
	looping  atomic.Bool
	keepPos  atomic.Bool
	volume   atomic.Uint32
	pitch    atomic.Uint32
	pan      atomic.Uint32
	chain    dsp.Chain

	// cursor: four frames of history around the play position
	hist   []float32
	out    []float32
	filled int
	frac   float64
	primed bool
	ended  bool
}

func newVoice(m *Mixer, src source) *Voice {
	v := &Voice{id: uuid.New(), m: m, src: src}
	v.slot.Store(-1)
	v.volume.Store(math.Float32bits(1))
	v.pitch.Store(math.Float32bits(1))
	v.pan.Store(math.Float32bits(0.5))
	v.resetCursor()
	return v
}

// ID identifies the voice in logs.
func (v *Voice) ID() uuid.UUID {
	if v == nil {
		return uuid.Nil
	}
	return v.id
}

func (v *Voice) State() State {
	if v == nil {
		return Stopped
	}
	return State(v.state.Load())
}

func (v *Voice) IsPlaying() bool { return v.State() == Playing }

// Play starts a stopped or paused voice from its current position. A voice
// that ran to the end of its data starts over. Playing a playing voice does
// nothing; use Restart for that.
func (v *Voice) Play() {
	if v == nil {
		return
	}
	if v.finished.Swap(false) {
		v.rewind()
	}
	if v.State() == Playing {
		return
	}
	v.start()
}

// Restart plays from frame 0 whatever the current state.
func (v *Voice) Restart() {
	if v == nil {
		return
	}
	v.finished.Store(false)
	v.rewind()
	if v.State() != Playing {
		v.start()
	}
}

// Pause keeps the position and leaves the registry.
func (v *Voice) Pause() {
	if v == nil {
		return
	}
	if v.state.CompareAndSwap(int32(Playing), int32(Paused)) {
		v.m.unregister(v)
	}
}

// Resume continues a paused voice.
func (v *Voice) Resume() {
	if v == nil || v.State() != Paused {
		return
	}
	v.start()
}

// Stop halts playback. The mixer observes it at its next block. The
// position goes back to frame 0 unless SetRewindOnStop(false) was called.
func (v *Voice) Stop() {
	if v == nil {
		return
	}
	v.state.Store(int32(Stopped))
	v.m.unregister(v)
	v.finished.Store(false)
	if !v.keepPos.Load() {
		v.rewind()
	}
}

// SetRewindOnStop selects whether Stop returns to frame 0 (the default) or
// keeps the position for the next Play.
func (v *Voice) SetRewindOnStop(rewind bool) {
	if v == nil {
		return
	}
	v.keepPos.Store(!rewind)
}

func (v *Voice) RewindOnStop() bool {
	return v != nil && !v.keepPos.Load()
}

func (v *Voice) SetLooping(loop bool) {
	if v == nil {
		return
	}
	v.looping.Store(loop)
}

func (v *Voice) IsLooping() bool {
	return v != nil && v.looping.Load()
}

// SetVolume sets the voice gain, clamped to [0, 1].
func (v *Voice) SetVolume(volume float32) {
	if v == nil {
		return
	}
	v.volume.Store(math.Float32bits(clamp(volume, 0, 1, 1)))
}

func (v *Voice) Volume() float32 {
	if v == nil {
		return 0
	}
	return math.Float32frombits(v.volume.Load())
}

// SetPitch sets the playback speed multiplier, clamped to
// [MinPitch, MaxPitch].
func (v *Voice) SetPitch(pitch float32) {
	if v == nil {
		return
	}
	v.pitch.Store(math.Float32bits(clamp(pitch, MinPitch, MaxPitch, 1)))
}

func (v *Voice) Pitch() float32 {
	if v == nil {
		return 0
	}
	return math.Float32frombits(v.pitch.Load())
}

// SetPan sets the stereo position, clamped to [0, 1] with 0.5 centred.
func (v *Voice) SetPan(pan float32) {
	if v == nil {
		return
	}
	v.pan.Store(math.Float32bits(clamp(pan, 0, 1, 0.5)))
}

func (v *Voice) Pan() float32 {
	if v == nil {
		return 0
	}
	return math.Float32frombits(v.pan.Load())
}

// AttachProcessor appends p to the voice chain. It runs on the voice output
// before mixing.
func (v *Voice) AttachProcessor(p dsp.Processor) bool {
	return v != nil && v.chain.Attach(p)
}

func (v *Voice) DetachProcessor(p dsp.Processor) bool {
	return v != nil && v.chain.Detach(p)
}

// start publishes Playing and takes a registry slot. The mixer retires a
// finished voice with the lock held, so the two never interleave.
func (v *Voice) start() {
	v.mu.Lock()
	v.state.Store(int32(Playing))
	err := v.m.register(v)
	if err != nil {
		v.state.Store(int32(Stopped))
	}
	v.mu.Unlock()

	if err != nil {
		v.m.log.Warn().Err(err).Str("voice", v.id.String()).Msg("voice not started")
	}
}

func (v *Voice) rewind() {
	v.mu.Lock()
	v.src.restart()
	v.resetCursor()
	v.mu.Unlock()

	if err := v.src.reload(); err != nil {
		v.m.log.Warn().Err(err).Str("voice", v.id.String()).Msg("rewind failed")
	}
}

// detach stops the voice and waits for an in-flight block to finish with
// it, after which the mixer never touches its source again.
func (v *Voice) detach() {
	v.state.Store(int32(Stopped))
	v.m.unregister(v)
	v.mu.Lock()
	// a block rendering this voice holds the lock until it is done
	v.mu.Unlock()
}

// resetCursor must be called with mu held or before the voice is shared.
func (v *Voice) resetCursor() {
	_, ch := v.src.format()
	if len(v.out) != ch {
		v.hist = make([]float32, 4*ch)
		v.out = make([]float32, ch)
	}
	v.filled, v.frac, v.primed, v.ended = 0, 0, false, false
}

// fill loads history frames until n of slots 1..3 hold data.
func (v *Voice) fill(n int, loop bool) fetch {
	ch := len(v.out)
	for v.filled < n {
		if v.ended {
			return fetchEnd
		}

		slot := v.hist[(1+v.filled)*ch : (2+v.filled)*ch]
		switch v.src.next(slot, loop) {
		case fetchStarved:
			return fetchStarved
		case fetchEnd:
			v.ended = true
			return fetchEnd
		}

		if !v.primed {
			copy(v.hist[:ch], slot)
			v.primed = true
		}
		v.filled++
	}
	return fetchOK
}

// frame interpolates the next output frame into v.out.
func (v *Voice) frame(loop bool, step float64) fetch {
	ch := len(v.out)

	for v.frac >= 1 {
		if r := v.fill(2, loop); r != fetchOK {
			return r
		}
		copy(v.hist, v.hist[ch:])
		v.filled--
		v.frac--
	}

	// a starved window keeps playing the frames it holds, padding the
	// missing lookahead
	r := v.fill(3, loop)
	if r == fetchStarved && (v.filled == 0 || v.filled == 1 && v.frac != 0) {
		return fetchStarved
	}
	if v.filled == 0 {
		return fetchEnd
	}
	for s := 1 + v.filled; s < 4; s++ {
		copy(v.hist[s*ch:(s+1)*ch], v.hist[(s-1)*ch:s*ch])
	}

	x := float32(v.frac)
	for c := range ch {
		v.out[c] = utils.CubicInterpolate(v.hist[c], v.hist[ch+c], v.hist[2*ch+c], v.hist[3*ch+c], x)
	}
	v.frac += step

	return fetchOK
}

// render writes frames frames of gained, panned output into dst. It
// reports whether the source starved and whether it ended.
func (v *Voice) render(dst []float32, frames, outCh, outRate int) (starved, done bool) {
	clear(dst[:frames*outCh])

	rate, inCh := v.src.format()
	step := float64(v.Pitch()) * float64(rate) / float64(outRate)
	loop := v.looping.Load()

	vol, pan := v.Volume(), v.Pan()
	gl := vol * min(1, 2*(1-pan))
	gr := vol * min(1, 2*pan)

	for f := range frames {
		switch v.frame(loop, step) {
		case fetchStarved:
			starved = true
			continue
		case fetchEnd:
			return starved, true
		}
		spread(dst[f*outCh:(f+1)*outCh], v.out, inCh, outCh, vol, gl, gr)
	}

	return starved, false
}

// spread maps one source frame onto the output channels. Stereo outputs
// take the pan gains on their first two channels.
func spread(dst, frame []float32, inCh, outCh int, vol, gl, gr float32) {
	switch {
	case outCh == 1:
		var sum float32
		for _, s := range frame {
			sum += s
		}
		dst[0] = sum / float32(inCh) * vol
	case inCh == 1:
		dst[0] = frame[0] * gl
		dst[1] = frame[0] * gr
		for c := 2; c < outCh; c++ {
			dst[c] = frame[0] * vol
		}
	default:
		dst[0] = frame[0] * gl
		dst[1] = frame[1] * gr
		for c := 2; c < min(inCh, outCh); c++ {
			dst[c] = frame[c] * vol
		}
	}
}
