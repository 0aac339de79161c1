// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glif

import (
	"fmt"

	"github.com/goki/mat32"

	"github.com/emer/glif/propagator"
	"github.com/emer/glif/ringbuf"
)

// LIFState are the dynamic state variables of the LIF and LIFR variants,
// evolved once per step by the update drivers.
type LIFState struct {

	// membrane potential (mV)
	Vm float32

	// total external input current read from the delay buffer, applied on
	// the following step (pA)
	I float32

	// whether a spike was emitted on the last step (0 or 1)
	Spike float32
}

// glif.LIF implements GLIF model 1, the plain leaky integrate-and-fire
// neuron with point current injection: membrane voltage integrates external
// current under a selectable scheme, spikes when it exceeds the fixed
// threshold, and holds then resets through a refractory period.  A plain
// value-owning struct: the host scheduler drives it through the Unit
// contract, and no other goroutine may touch it during Update.
type LIF struct {

	// biophysical parameters -- set via SetParams only
	Params Params

	// dynamic state
	State LIFState

	// refractory countdown
	Refrac Refrac

	// cached exact-integration membrane coefficients, valid for Res
	Memb propagator.Membrane

	// step size the unit is calibrated for (ms)
	Res float32

	// delay buffer of incoming current contributions (pA)
	Currents ringbuf.Buffer

	// spike output callback
	OnSpike func(se SpikeEvent) `view:"-" json:"-"`

	// optional per-step variable recorder
	Mon *Monitor `view:"-" json:"-"`

	// whether cached values are current for Params and Res
	calibrated bool
}

// NewLIF returns a new LIF with default parameters, calibrated for the
// default 0.1 ms resolution.
func NewLIF() *LIF {
	nr := &LIF{}
	nr.Params.Defaults()
	nr.InitState()
	nr.Calibrate(DefRes)
	return nr
}

// DefRes is the default simulation step size in ms.
const DefRes float32 = 0.1

// SetParams validates the full parameter set and commits it atomically:
// on any error nothing changes.  The unit recalibrates on its next Update.
func (nr *LIF) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	nr.Params = p
	nr.Params.Update()
	nr.calibrated = false
	return nil
}

// InitState resets the dynamic state to initial values: voltage and current
// zero, no refractory period pending.
func (nr *LIF) InitState() {
	nr.State.Vm = 0
	nr.State.I = 0
	nr.State.Spike = 0
	nr.Refrac.Remaining = 0
	nr.Currents.Init(nr.Currents.Len())
}

// SetVm sets the membrane potential directly.
func (nr *LIF) SetVm(v float32) {
	nr.State.Vm = v
}

// Calibrate recomputes the propagator coefficients and refractory
// bookkeeping for step size res (ms).  Must complete before any step runs
// at that resolution; Update recalibrates automatically after SetParams.
func (nr *LIF) Calibrate(res float32) {
	nr.Res = res
	nr.Refrac.Init(nr.Params.TRef)
	nr.Memb.Build(nr.Params.G, nr.Params.CM, res)
	nr.calibrated = true
}

// SetOnSpike installs the spike output callback.
func (nr *LIF) SetOnSpike(fn func(se SpikeEvent)) {
	nr.OnSpike = fn
}

// SetMonitor installs a per-step variable recorder (nil to disable).
func (nr *LIF) SetMonitor(mn *Monitor) {
	nr.Mon = mn
}

// HandleCurrent accumulates an external current contribution (pA) into the
// step arriving delay steps from now.  Multiple contributions for the same
// step sum.
func (nr *LIF) HandleCurrent(delay int64, i float32) {
	nr.Currents.Add(delay, i)
}

// Update advances the unit over steps [from, to), in order: refractory
// countdown or voltage integration and threshold check, then the external
// current read for the next step.
func (nr *LIF) Update(origin, from, to int64) {
	if !nr.calibrated {
		nr.Calibrate(nr.Res)
	}
	h := nr.Res
	vOld := nr.State.Vm
	for lag := from; lag < to; lag++ {
		nr.State.Spike = 0
		if nr.Refrac.Active() {
			// count down while holding the voltage at the pre-refractory
			// value; the step the countdown ends applies the reset
			if nr.Refrac.Step(h) {
				nr.State.Vm = nr.Params.VReset
			} else {
				nr.State.Vm = vOld
			}
		} else {
			nr.State.Vm = nr.Params.VmStep(vOld, nr.State.I, h, nr.Memb)
			if nr.State.Vm > nr.Params.ThInf {
				nr.Refrac.Start()
				nr.State.Spike = 1
				off := SpikeOffset(vOld, nr.State.Vm, nr.Params.ThInf, h)
				nr.sendSpike(origin+lag+1, off)
			}
		}
		nr.State.I = nr.Currents.Pop()
		if nr.Mon != nil {
			nr.Mon.Record(nr, origin+lag)
		}
		vOld = nr.State.Vm
	}
}

func (nr *LIF) sendSpike(step int64, off float32) {
	if nr.OnSpike != nil {
		nr.OnSpike(SpikeEvent{Step: step, Offset: off})
	}
}

// Clone returns a deep copy with the same parameters and state and fresh,
// empty input buffers, requiring calibration before use.
func (nr *LIF) Clone() *LIF {
	cp := &LIF{}
	cp.Params = nr.Params
	cp.State = nr.State
	cp.Refrac = nr.Refrac
	cp.Res = nr.Res
	cp.Currents.Init(nr.Currents.Len())
	return cp
}

var lifVars = []string{"Vm", "I", "Spike"}

// UnitVarNames lists the recordable variables: Vm, I, Spike.
func (nr *LIF) UnitVarNames() []string {
	return lifVars
}

// UnitVarByName returns the named recordable variable, or an error for
// unknown names.
func (nr *LIF) UnitVarByName(vnm string) (float32, error) {
	switch vnm {
	case "Vm":
		return nr.State.Vm, nil
	case "I":
		return nr.State.I, nil
	case "Spike":
		return nr.State.Spike, nil
	}
	return mat32.NaN(), fmt.Errorf("glif.LIF UnitVarByName: variable name %v not valid", vnm)
}
