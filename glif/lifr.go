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

// RParams extend Params with the biologically defined reset rules of GLIF
// model 2: a spike-history threshold component and an affine voltage reset.
type RParams struct {
	Params

	// threshold addition following each spike (mV)
	ASpike float32 `def:"0" desc:"threshold addition following each spike (mV)"`

	// decay rate of the spike-induced threshold component (1/ms)
	BSpike float32 `def:"0" desc:"decay rate of the spike-induced threshold component (1/ms)"`

	// fraction of the spike-time voltage retained by the post-refractory reset
	ResetA float32 `def:"0" desc:"fraction of the spike-time voltage retained by the post-refractory reset"`

	// voltage addition applied by the post-refractory reset (mV)
	ResetB float32 `def:"0" desc:"voltage addition applied by the post-refractory reset (mV)"`
}

// Defaults sets the GLIF model 2 default parameter values.
func (pr *RParams) Defaults() {
	pr.Params.Defaults()
	pr.ASpike = 0
	pr.BSpike = 0
	pr.ResetA = 0
	pr.ResetB = 0
}

// Validate checks the shared membrane invariants plus the reset-rule ones.
func (pr *RParams) Validate() error {
	if err := pr.Params.Validate(); err != nil {
		return err
	}
	if pr.BSpike < 0 || mat32.IsNaN(pr.BSpike) {
		return fmt.Errorf("%w: spike-induced threshold decay rate must be non-negative, got %v", ErrConfig, pr.BSpike)
	}
	return nil
}

// RState are the LIFR dynamic state variables.
type RState struct {
	LIFState

	// spike-history component of the threshold, decaying at BSpike and
	// jumping by ASpike at each spike (mV)
	ThrSpike float32

	// effective threshold ThInf + ThrSpike (mV)
	Thr float32
}

// glif.LIFR implements GLIF model 2: LIF with biologically defined reset
// rules.  The threshold gains a decaying spike-history component, and the
// post-refractory voltage reset is the affine rule
// Vm = ResetA * V_spike + ResetB applied to the held spike-time voltage.
// The threshold component keeps decaying during the refractory period, the
// way the synaptic traces of the PSC variants do.
type LIFR struct {

	// biophysical parameters -- set via SetParams only
	Params RParams

	// dynamic state
	State RState

	// refractory countdown
	Refrac Refrac

	// cached exact-integration membrane coefficients, valid for Res
	Memb propagator.Membrane

	// cached per-step threshold component decay exp(-BSpike * Res)
	ThrDecay float32

	// step size the unit is calibrated for (ms)
	Res float32

	// delay buffer of incoming current contributions (pA)
	Currents ringbuf.Buffer

	// spike output callback
	OnSpike func(se SpikeEvent) `view:"-" json:"-"`

	// optional per-step variable recorder
	Mon *Monitor `view:"-" json:"-"`

	calibrated bool
}

// NewLIFR returns a new LIFR with default parameters, calibrated for the
// default 0.1 ms resolution.
func NewLIFR() *LIFR {
	nr := &LIFR{}
	nr.Params.Defaults()
	nr.InitState()
	nr.Calibrate(DefRes)
	return nr
}

// SetParams validates the full parameter set and commits it atomically:
// on any error nothing changes.  The unit recalibrates on its next Update.
func (nr *LIFR) SetParams(p RParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	nr.Params = p
	nr.Params.Update()
	nr.calibrated = false
	return nil
}

// InitState resets the dynamic state: voltage, current, and spike-history
// threshold component zero.
func (nr *LIFR) InitState() {
	nr.State.Vm = 0
	nr.State.I = 0
	nr.State.Spike = 0
	nr.State.ThrSpike = 0
	nr.State.Thr = nr.Params.ThInf
	nr.Refrac.Remaining = 0
	nr.Currents.Init(nr.Currents.Len())
}

// SetVm sets the membrane potential directly.
func (nr *LIFR) SetVm(v float32) {
	nr.State.Vm = v
}

// Calibrate recomputes cached coefficients for step size res (ms).
func (nr *LIFR) Calibrate(res float32) {
	nr.Res = res
	nr.Refrac.Init(nr.Params.TRef)
	nr.Memb.Build(nr.Params.G, nr.Params.CM, res)
	nr.ThrDecay = mat32.Exp(-nr.Params.BSpike * res)
	nr.calibrated = true
}

// SetOnSpike installs the spike output callback.
func (nr *LIFR) SetOnSpike(fn func(se SpikeEvent)) {
	nr.OnSpike = fn
}

// SetMonitor installs a per-step variable recorder (nil to disable).
func (nr *LIFR) SetMonitor(mn *Monitor) {
	nr.Mon = mn
}

// HandleCurrent accumulates an external current contribution (pA) into the
// step arriving delay steps from now.
func (nr *LIFR) HandleCurrent(delay int64, i float32) {
	nr.Currents.Add(delay, i)
}

// Update advances the unit over steps [from, to).  Per step: decay the
// spike-history threshold component, then refractory countdown (reset rule
// at exit) or voltage integration with threshold check against the dynamic
// threshold, then the external current read for the next step.
func (nr *LIFR) Update(origin, from, to int64) {
	if !nr.calibrated {
		nr.Calibrate(nr.Res)
	}
	h := nr.Res
	vOld := nr.State.Vm
	for lag := from; lag < to; lag++ {
		nr.State.Spike = 0
		nr.State.ThrSpike *= nr.ThrDecay
		nr.State.Thr = nr.Params.ThInf + nr.State.ThrSpike
		if nr.Refrac.Active() {
			if nr.Refrac.Step(h) {
				// affine reset applied to the held spike-time voltage
				nr.State.Vm = nr.Params.ResetA*vOld + nr.Params.ResetB
			} else {
				nr.State.Vm = vOld
			}
		} else {
			nr.State.Vm = nr.Params.VmStep(vOld, nr.State.I, h, nr.Memb)
			if nr.State.Vm > nr.State.Thr {
				nr.Refrac.Start()
				nr.State.Spike = 1
				off := SpikeOffset(vOld, nr.State.Vm, nr.State.Thr, h)
				nr.State.ThrSpike += nr.Params.ASpike
				nr.State.Thr = nr.Params.ThInf + nr.State.ThrSpike
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

func (nr *LIFR) sendSpike(step int64, off float32) {
	if nr.OnSpike != nil {
		nr.OnSpike(SpikeEvent{Step: step, Offset: off})
	}
}

// Clone returns a deep copy with fresh, empty input buffers, requiring
// calibration before use.
func (nr *LIFR) Clone() *LIFR {
	cp := &LIFR{}
	cp.Params = nr.Params
	cp.State = nr.State
	cp.Refrac = nr.Refrac
	cp.Res = nr.Res
	cp.Currents.Init(nr.Currents.Len())
	return cp
}

var lifrVars = []string{"Vm", "I", "Spike", "Thr", "ThrSpike"}

// UnitVarNames lists the recordable variables: Vm, I, Spike, Thr, ThrSpike.
func (nr *LIFR) UnitVarNames() []string {
	return lifrVars
}

// UnitVarByName returns the named recordable variable, or an error for
// unknown names.
func (nr *LIFR) UnitVarByName(vnm string) (float32, error) {
	switch vnm {
	case "Vm":
		return nr.State.Vm, nil
	case "I":
		return nr.State.I, nil
	case "Spike":
		return nr.State.Spike, nil
	case "Thr":
		return nr.State.Thr, nil
	case "ThrSpike":
		return nr.State.ThrSpike, nil
	}
	return mat32.NaN(), fmt.Errorf("glif.LIFR UnitVarByName: variable name %v not valid", vnm)
}
