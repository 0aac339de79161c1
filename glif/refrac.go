// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glif

// Refrac is the refractory period countdown shared by all GLIF variants.
// While active, voltage integration and threshold checking are suspended
// and the membrane is held at the value from just before the period began;
// the step on which the countdown reaches zero applies the reset instead.
// Total is the configured duration in the same ms units as the step size,
// captured at calibration -- changing the resolution without recalibrating
// would make the countdown stale, so Calibrate always rebuilds it.
type Refrac struct {

	// time remaining in the current refractory period (ms) -- only
	// meaningful while > 0
	Remaining float32

	// total refractory duration applied at each spike (ms)
	Total float32
}

// Init sets the total duration and clears any active countdown.
func (rf *Refrac) Init(tref float32) {
	rf.Total = tref
	rf.Remaining = 0
}

// Active returns whether a refractory period is in progress.
func (rf *Refrac) Active() bool {
	return rf.Remaining > 0
}

// Start begins a refractory period, setting the countdown to the full
// duration.  Called exactly once per spike.
func (rf *Refrac) Start() {
	rf.Remaining = rf.Total
}

// Step counts down by one step of size h (ms), reporting true when the
// period ends on this step (reset applies now).
func (rf *Refrac) Step(h float32) bool {
	rf.Remaining -= h
	return rf.Remaining <= 0
}
