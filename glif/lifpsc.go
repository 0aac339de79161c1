// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glif

import (
	"fmt"

	"github.com/goki/mat32"

	"github.com/emer/glif/alphasyn"
	"github.com/emer/glif/propagator"
	"github.com/emer/glif/ringbuf"
)

// PSCState are the LIFPSC dynamic state variables: the scalar membrane
// state plus the per-receptor alpha-synapse trace pairs.
type PSCState struct {
	LIFState

	// primary synaptic traces, one per receptor port
	Y1 []float32

	// secondary synaptic traces, one per receptor port -- the synaptic
	// current is the sum of these
	Y2 []float32
}

// glif.LIFPSC implements GLIF model 1 with alpha-shaped post-synaptic
// currents: the LIF membrane driven by external current plus multi-receptor
// alpha synapses advanced by exact propagators.  Spike input is routed by
// 1-based receptor port; each port has its own delay buffer of weighted
// spikes and its own synaptic time constant.
type LIFPSC struct {

	// biophysical parameters -- set via SetParams only
	Params PSCParams

	// dynamic state
	State PSCState

	// refractory countdown
	Refrac Refrac

	// cached exact-integration membrane coefficients, valid for Res
	Memb propagator.Membrane

	// cached per-receptor alpha-synapse propagators, valid for Res
	Syn alphasyn.Filter

	// step size the unit is calibrated for (ms)
	Res float32

	// delay buffer of incoming current contributions (pA)
	Currents ringbuf.Buffer

	// per-receptor delay buffers of accumulated incoming spike weights
	Spikes []ringbuf.Buffer

	// spike output callback
	OnSpike func(se SpikeEvent) `view:"-" json:"-"`

	// optional per-step variable recorder
	Mon *Monitor `view:"-" json:"-"`

	// scratch for popped per-receptor spike weights
	wts []float32

	calibrated bool
}

// NewLIFPSC returns a new LIFPSC with default parameters (one receptor
// port, tau_syn 2 ms), calibrated for the default 0.1 ms resolution.
func NewLIFPSC() *LIFPSC {
	nr := &LIFPSC{}
	nr.Params.Defaults()
	nr.InitState()
	nr.Calibrate(DefRes)
	return nr
}

// SetParams validates the full parameter set and commits it atomically:
// on any error nothing changes.  Shrinking the receptor-port count is
// rejected once spike connections exist.  The connection flag is owned by
// the unit, so the caller's copy of it is ignored.
func (nr *LIFPSC) SetParams(p PSCParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.HasConns = nr.Params.HasConns
	if err := p.CheckReceptors(&nr.Params); err != nil {
		return err
	}
	nr.Params = p
	nr.Params.Update()
	nr.calibrated = false
	return nil
}

// InitState resets the dynamic state: voltage, current, and all synaptic
// traces zero.  Receptor structure is preserved.
func (nr *LIFPSC) InitState() {
	nr.State.Vm = 0
	nr.State.I = 0
	nr.State.Spike = 0
	for i := range nr.State.Y1 {
		nr.State.Y1[i] = 0
		nr.State.Y2[i] = 0
	}
	nr.Refrac.Remaining = 0
	nr.Currents.Init(nr.Currents.Len())
	for i := range nr.Spikes {
		nr.Spikes[i].Init(nr.Spikes[i].Len())
	}
}

// SetVm sets the membrane potential directly.
func (nr *LIFPSC) SetVm(v float32) {
	nr.State.Vm = v
}

// Calibrate recomputes cached coefficients for step size res (ms) and
// resizes the per-receptor state to the current port count, preserving
// surviving trace values.
func (nr *LIFPSC) Calibrate(res float32) {
	nr.Res = res
	nr.Refrac.Init(nr.Params.TRef)
	nr.Memb.Build(nr.Params.G, nr.Params.CM, res)
	nr.Syn.Build(nr.Params.TauSyn, nr.Params.Tau(), nr.Params.CM, res)
	n := nr.Params.NReceptors()
	nr.State.Y1 = resizeF32(nr.State.Y1, n)
	nr.State.Y2 = resizeF32(nr.State.Y2, n)
	nr.wts = resizeF32(nr.wts, n)
	nr.Spikes = resizeSpikeBufs(nr.Spikes, n)
	nr.calibrated = true
}

// SetOnSpike installs the spike output callback.
func (nr *LIFPSC) SetOnSpike(fn func(se SpikeEvent)) {
	nr.OnSpike = fn
}

// SetMonitor installs a per-step variable recorder (nil to disable).
func (nr *LIFPSC) SetMonitor(mn *Monitor) {
	nr.Mon = mn
}

// HandleCurrent accumulates an external current contribution (pA) into the
// step arriving delay steps from now.
func (nr *LIFPSC) HandleCurrent(delay int64, i float32) {
	nr.Currents.Add(delay, i)
}

// ConnectSpike registers an incoming spike connection on 1-based receptor
// port rport.  Once any connection exists the port count can no longer
// shrink.
func (nr *LIFPSC) ConnectSpike(rport int64) error {
	if rport < 1 || rport > int64(nr.Params.NReceptors()) {
		return fmt.Errorf("%w: receptor port %d out of range 1..%d", ErrRouting, rport, nr.Params.NReceptors())
	}
	nr.Params.HasConns = true
	return nil
}

// HandleSpike accumulates a weighted spike on 1-based receptor port rport
// into the step arriving delay steps from now.  Ports are validated
// against the configured receptor count, so delivery works on ports added
// by SetParams before the next Calibrate.
func (nr *LIFPSC) HandleSpike(rport, delay int64, w float32) error {
	n := nr.Params.NReceptors()
	if rport < 1 || rport > int64(n) {
		return fmt.Errorf("%w: receptor port %d out of range 1..%d", ErrRouting, rport, n)
	}
	if delay < 0 {
		return fmt.Errorf("%w: spike delay %d must be non-negative", ErrRouting, delay)
	}
	if int(rport) > len(nr.Spikes) {
		nr.Spikes = resizeSpikeBufs(nr.Spikes, n)
	}
	nr.Spikes[rport-1].Add(delay, w)
	return nil
}

// Update advances the unit over steps [from, to).  Per step: refractory
// countdown (reset at exit) or membrane integration driven by injected
// current plus the synaptic current of the pre-update traces, then the
// threshold check, then the trace update from the popped spike weights,
// then the external current read for the next step.  The traces keep
// evolving during the refractory period.
func (nr *LIFPSC) Update(origin, from, to int64) {
	if !nr.calibrated {
		nr.Calibrate(nr.Res)
	}
	h := nr.Res
	vOld := nr.State.Vm
	for lag := from; lag < to; lag++ {
		nr.State.Spike = 0
		if nr.Refrac.Active() {
			if nr.Refrac.Step(h) {
				nr.State.Vm = nr.Params.VReset
			} else {
				nr.State.Vm = vOld
			}
		} else {
			vm := nr.Params.VmStep(vOld, nr.State.I, h, nr.Memb)
			vm += nr.Syn.VmDelta(nr.State.Y1, nr.State.Y2)
			nr.State.Vm = vm
			if nr.State.Vm > nr.Params.ThInf {
				nr.Refrac.Start()
				nr.State.Spike = 1
				off := SpikeOffset(vOld, nr.State.Vm, nr.Params.ThInf, h)
				nr.sendSpike(origin+lag+1, off)
			}
		}
		for i := range nr.Spikes {
			nr.wts[i] = nr.Spikes[i].Pop()
		}
		nr.Syn.Step(nr.State.Y1, nr.State.Y2, nr.wts)
		nr.State.I = nr.Currents.Pop()
		if nr.Mon != nil {
			nr.Mon.Record(nr, origin+lag)
		}
		vOld = nr.State.Vm
	}
}

func (nr *LIFPSC) sendSpike(step int64, off float32) {
	if nr.OnSpike != nil {
		nr.OnSpike(SpikeEvent{Step: step, Offset: off})
	}
}

// Clone returns a deep copy with fresh, empty input buffers, requiring
// calibration before use.
func (nr *LIFPSC) Clone() *LIFPSC {
	cp := &LIFPSC{}
	cp.Params = nr.Params.Clone()
	cp.State.LIFState = nr.State.LIFState
	cp.State.Y1 = append([]float32(nil), nr.State.Y1...)
	cp.State.Y2 = append([]float32(nil), nr.State.Y2...)
	cp.Refrac = nr.Refrac
	cp.Res = nr.Res
	cp.Currents.Init(nr.Currents.Len())
	cp.Spikes = make([]ringbuf.Buffer, len(nr.Spikes))
	for i := range nr.Spikes {
		cp.Spikes[i].Init(nr.Spikes[i].Len())
	}
	return cp
}

var lifpscVars = []string{"Vm", "I", "Spike"}

// UnitVarNames lists the recordable variables: Vm, I, Spike.
func (nr *LIFPSC) UnitVarNames() []string {
	return lifpscVars
}

// UnitVarByName returns the named recordable variable, or an error for
// unknown names.
func (nr *LIFPSC) UnitVarByName(vnm string) (float32, error) {
	switch vnm {
	case "Vm":
		return nr.State.Vm, nil
	case "I":
		return nr.State.I, nil
	case "Spike":
		return nr.State.Spike, nil
	}
	return mat32.NaN(), fmt.Errorf("glif.LIFPSC UnitVarByName: variable name %v not valid", vnm)
}

// resizeF32 returns a slice of length n, preserving the values of sl that
// fit.
func resizeF32(sl []float32, n int) []float32 {
	if len(sl) == n {
		return sl
	}
	ns := make([]float32, n)
	copy(ns, sl)
	return ns
}

// resizeSpikeBufs returns a buffer bank of length n, preserving pending
// values of the buffers that fit.
func resizeSpikeBufs(sb []ringbuf.Buffer, n int) []ringbuf.Buffer {
	if len(sb) == n {
		return sb
	}
	nb := make([]ringbuf.Buffer, n)
	copy(nb, sb)
	for i := len(sb); i < n; i++ {
		nb[i].Init(0)
	}
	return nb
}
