// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"slices"
	"sync"
	"testing"
)

// recorder appends its tag to a shared log so tests can observe order.
type recorder struct {
	tag string
	log *[]string
}

func (r *recorder) Process(samples []float32, frames int) {
	*r.log = append(*r.log, r.tag)
}

// funcStage is deliberately not comparable.
type funcStage func([]float32, int)

func (f funcStage) Process(samples []float32, frames int) { f(samples, frames) }

func TestChain_InsertionOrder(t *testing.T) {
	t.Parallel()

	var log []string
	a, b, c := &recorder{"a", &log}, &recorder{"b", &log}, &recorder{"c", &log}

	var chain Chain
	for _, p := range []Processor{a, b, c} {
		if !chain.Attach(p) {
			t.Fatalf("Attach(%s) = false", p.(*recorder).tag)
		}
	}

	chain.Detach(b)
	chain.Attach(b)
	chain.Process(nil, 0)

	if want := []string{"a", "c", "b"}; !slices.Equal(log, want) {
		t.Errorf("stage order = %v, want %v", log, want)
	}
}

func TestChain_AttachDetachIdempotent(t *testing.T) {
	t.Parallel()

	var log []string
	a := &recorder{"a", &log}

	var chain Chain
	if !chain.Attach(a) {
		t.Fatal("first Attach() = false")
	}
	if chain.Attach(a) {
		t.Error("second Attach() = true, want no-op")
	}
	if chain.Len() != 1 {
		t.Errorf("Len() = %d, want 1", chain.Len())
	}

	if !chain.Detach(a) {
		t.Fatal("first Detach() = false")
	}
	if chain.Detach(a) {
		t.Error("second Detach() = true, want no-op")
	}
	if chain.Len() != 0 {
		t.Errorf("Len() = %d, want 0", chain.Len())
	}
}

func TestChain_RejectsInvalidStages(t *testing.T) {
	t.Parallel()

	var chain Chain
	if chain.Attach(nil) {
		t.Error("Attach(nil) = true")
	}
	if chain.Attach(funcStage(func([]float32, int) {})) {
		t.Error("Attach(non-comparable) = true")
	}
	if chain.Detach(nil) {
		t.Error("Detach(nil) = true")
	}
	if chain.Len() != 0 {
		t.Errorf("Len() = %d, want 0", chain.Len())
	}
}

// Attaching and immediately detaching a stage must leave the output
// bit-identical to never attaching it.
func TestChain_RoundTripIsTransparent(t *testing.T) {
	t.Parallel()

	input := []float32{0.1, -0.2, 0.3, -0.4, 0.5, -0.6}

	var plain Chain
	plain.Attach(NewGain(0.5))
	want := slices.Clone(input)
	plain.Process(want, 3)

	var chain Chain
	chain.Attach(NewGain(0.5))
	lp := NewLowPass(0.2, 2)
	chain.Attach(lp)
	chain.Detach(lp)
	got := slices.Clone(input)
	chain.Process(got, 3)

	if !slices.Equal(got, want) {
		t.Errorf("round trip output = %v, want %v", got, want)
	}
}

func TestChain_ConcurrentEdits(t *testing.T) {
	t.Parallel()

	var chain Chain
	stages := make([]*Gain, 8)
	for i := range stages {
		stages[i] = NewGain(1)
	}

	var wg sync.WaitGroup
	block := make([]float32, 64)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 1000 {
			chain.Process(block, 32)
		}
	}()

	for _, g := range stages {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				chain.Attach(g)
				chain.Detach(g)
			}
		}()
	}
	wg.Wait()

	if chain.Len() != 0 {
		t.Errorf("Len() = %d after balanced edits, want 0", chain.Len())
	}
}

func TestChain_Process_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	var chain Chain
	chain.Attach(NewGain(0.8))
	chain.Attach(NewLowPass(0.5, 2))
	chain.Attach(&PeakMeter{})
	block := make([]float32, 1024)

	allocs := testing.AllocsPerRun(100, func() {
		chain.Process(block, 512)
	})
	if allocs > 0 {
		t.Errorf("Process allocated %v times, want 0", allocs)
	}
}
