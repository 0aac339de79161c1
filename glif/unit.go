// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glif

// Unit is the steppable contract a host scheduler drives: one neuron
// advancing its own state over contiguous step ranges.  A unit's state is
// exclusively owned -- no two concurrent Update calls may run on the same
// unit, and units never touch each other's state; cross-unit traffic goes
// through the delivery methods into the unit's own delay buffers.
//
// Update processes unit time steps [from, to) in order; origin is the
// global step index of unit step 0, so recorded and emitted event steps are
// origin-relative the way the host counts them.  Calibrate must complete
// for the current resolution before the first Update of a run; SetParams
// marks the unit for automatic recalibration at the next Update.
//
// Spike delivery is not part of the shared contract because the port
// semantics differ per variant: LIFPSC and LIFASCPSC take
// HandleSpike(port, delay, weight) with receptor ports 1..N, registered
// via ConnectSpike.
type Unit interface {

	// Calibrate recomputes all cached propagator coefficients and
	// refractory bookkeeping for the given step size (ms).
	Calibrate(res float32)

	// InitState resets the dynamic state to its configured initial values,
	// leaving parameters and calibration untouched.
	InitState()

	// Update advances the unit over steps [from, to).
	Update(origin, from, to int64)

	// SetVm sets the membrane potential directly -- the one state variable
	// the configuration interface exposes for writing.
	SetVm(v float32)

	// HandleCurrent accumulates an external current contribution (pA) into
	// the step arriving delay steps from now.
	HandleCurrent(delay int64, i float32)

	// SetOnSpike installs the spike output callback.
	SetOnSpike(fn func(SpikeEvent))

	// SetMonitor installs a per-step variable recorder (nil to disable).
	SetMonitor(mn *Monitor)

	// UnitVarNames lists the recordable variable names for this unit type.
	UnitVarNames() []string

	// UnitVarByName returns the named recordable variable, or an error for
	// unknown names.
	UnitVarByName(vnm string) (float32, error)
}
