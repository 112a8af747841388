// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
)

// Chain is an insertion-ordered list of stages. The zero value is empty and
// ready to use.
type Chain struct {
	mu     sync.Mutex // serialises writers only
	stages atomic.Pointer[[]Processor]
}

func identifiable(p Processor) bool {
	if p == nil {
		return false
	}
	t := reflect.TypeOf(p)
	return t.Comparable()
}

// Attach appends p. It returns false, leaving the chain untouched, when p is
// nil, not comparable, or already attached.
func (c *Chain) Attach(p Processor) bool {
	if !identifiable(p) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.load()
	if slices.Contains(cur, p) {
		return false
	}

	next := make([]Processor, 0, len(cur)+1)
	next = append(next, cur...)
	next = append(next, p)
	c.stages.Store(&next)

	return true
}

// Detach removes p, keeping the order of the remaining stages. It returns
// false when p was not attached.
func (c *Chain) Detach(p Processor) bool {
	if !identifiable(p) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.load()
	idx := slices.Index(cur, p)
	if idx < 0 {
		return false
	}

	next := make([]Processor, 0, len(cur)-1)
	next = append(next, cur[:idx]...)
	next = append(next, cur[idx+1:]...)
	c.stages.Store(&next)

	return true
}

// Stages returns a copy of the current stage list.
func (c *Chain) Stages() []Processor {
	return slices.Clone(c.load())
}

func (c *Chain) Len() int { return len(c.load()) }

// Process runs every stage in order over samples.
func (c *Chain) Process(samples []float32, frames int) {
	for _, p := range c.load() {
		p.Process(samples, frames)
	}
}

func (c *Chain) load() []Processor {
	if s := c.stages.Load(); s != nil {
		return *s
	}
	return nil
}
