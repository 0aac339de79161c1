// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package ringbuf provides delay-indexed accumulation buffers for discrete-time
simulation: incoming values (spike weights, currents) are added at a step
offset relative to the present, multiple arrivals for the same step sum, and
the consumer pops exactly one aggregated value per simulation step, which
zeroes the slot for reuse.
*/
package ringbuf

// Buffer accumulates float32 values by step offset.  Offset 0 is the value
// returned by the next Pop, offset 1 the one after, and so on.  The buffer
// grows as needed to hold the largest offset used.
type Buffer struct {

	// Vals are the pending values, Vals[off] pending for the Pop off steps ahead.
	Vals []float32

	// Off is the ring position of offset 0.
	Off int
}

// New returns a buffer with capacity for the given number of step offsets.
func New(n int) *Buffer {
	bf := &Buffer{}
	bf.Init(n)
	return bf
}

// Init sets the capacity to n step offsets and zeroes all pending values.
func (bf *Buffer) Init(n int) {
	if n < 1 {
		n = 1
	}
	if len(bf.Vals) != n {
		bf.Vals = make([]float32, n)
	} else {
		for i := range bf.Vals {
			bf.Vals[i] = 0
		}
	}
	bf.Off = 0
}

// Len returns the current capacity in step offsets.
func (bf *Buffer) Len() int {
	return len(bf.Vals)
}

// Add accumulates v into the slot delay steps ahead of the next Pop,
// growing the buffer if the delay exceeds its capacity.  A negative delay
// is clamped to 0 and delivers at the next Pop; callers with a scheduling
// contract should reject negative delays before adding.
func (bf *Buffer) Add(delay int64, v float32) {
	if delay < 0 {
		delay = 0
	}
	if int(delay) >= len(bf.Vals) {
		bf.grow(int(delay) + 1)
	}
	bf.Vals[(bf.Off+int(delay))%len(bf.Vals)] += v
}

// Pop returns the aggregated value for the current step, zeroes its slot,
// and advances the buffer by one step.
func (bf *Buffer) Pop() float32 {
	v := bf.Vals[bf.Off]
	bf.Vals[bf.Off] = 0
	bf.Off = (bf.Off + 1) % len(bf.Vals)
	return v
}

// grow re-linearizes pending values into a larger slice.
func (bf *Buffer) grow(n int) {
	nv := make([]float32, n)
	for i := range bf.Vals {
		nv[i] = bf.Vals[(bf.Off+i)%len(bf.Vals)]
	}
	bf.Vals = nv
	bf.Off = 0
}
