// SPDX-License-Identifier: EPL-2.0

package pcm

import "sync/atomic"

// Accountant tracks the storage held by live buffers. The zero value is
// ready to use and safe for concurrent use.
type Accountant struct {
	bytes   atomic.Int64
	buffers atomic.Int64
}

// Bytes is the number of sample bytes currently allocated.
func (a *Accountant) Bytes() int64 { return a.bytes.Load() }

// Buffers is the number of buffers whose storage has not been freed.
func (a *Accountant) Buffers() int64 { return a.buffers.Load() }

func (a *Accountant) alloc(n int) {
	if a == nil {
		return
	}
	a.bytes.Add(int64(n))
	a.buffers.Add(1)
}

func (a *Accountant) free(n int) {
	if a == nil {
		return
	}
	a.bytes.Add(-int64(n))
	a.buffers.Add(-1)
}
