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

// ASCParams extend PSCParams with the after-spike current channels of GLIF
// model 3.  The four per-channel slices must have equal lengths.
type ASCParams struct {
	PSCParams

	// initial after-spike current values, one per channel (pA)
	AscInit []float32 `desc:"initial after-spike current values, one per channel (pA)"`

	// after-spike current decay rates, one per channel (1/ms)
	K []float32 `desc:"after-spike current decay rates, one per channel (1/ms)"`

	// after-spike current amplitudes added at each spike, one per channel (pA)
	Amps []float32 `desc:"after-spike current amplitudes added at each spike, one per channel (pA)"`

	// fraction of the prior after-spike current carried across a spike, one per channel
	R []float32 `desc:"fraction of the prior after-spike current carried across a spike, one per channel"`
}

// Defaults sets the GLIF model 3 default parameter values: one
// after-spike current channel with zero amplitude.
func (ap *ASCParams) Defaults() {
	ap.PSCParams.Defaults()
	ap.AscInit = []float32{0}
	ap.K = []float32{0.003}
	ap.Amps = []float32{0}
	ap.R = []float32{1}
}

// NChannels returns the number of after-spike current channels.
func (ap *ASCParams) NChannels() int {
	return len(ap.K)
}

// Validate checks the PSC invariants plus the after-spike current ones:
// equal channel slice lengths and strictly positive decay rates.
func (ap *ASCParams) Validate() error {
	if err := ap.PSCParams.Validate(); err != nil {
		return err
	}
	n := len(ap.K)
	if len(ap.AscInit) != n || len(ap.Amps) != n || len(ap.R) != n {
		return fmt.Errorf("%w: after-spike current channel slices must have equal lengths, got asc_init %d, k %d, amps %d, r %d", ErrConfig, len(ap.AscInit), n, len(ap.Amps), len(ap.R))
	}
	for i, k := range ap.K {
		if !(k > 0) || mat32.IsInf(k, 1) {
			return fmt.Errorf("%w: after-spike current decay rate %d must be positive and finite, got %v", ErrConfig, i, k)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (ap *ASCParams) Clone() ASCParams {
	cp := *ap
	cp.PSCParams = ap.PSCParams.Clone()
	cp.AscInit = append([]float32(nil), ap.AscInit...)
	cp.K = append([]float32(nil), ap.K...)
	cp.Amps = append([]float32(nil), ap.Amps...)
	cp.R = append([]float32(nil), ap.R...)
	return cp
}

// ASCState are the LIFASCPSC dynamic state variables: the PSC state plus
// the per-channel after-spike currents and the derived current sums.
type ASCState struct {
	PSCState

	// per-channel after-spike currents (pA)
	ASC []float32

	// sum of the after-spike currents (pA)
	ASCSum float32

	// total synaptic current from the alpha-synapse traces (pA)
	ISyn float32
}

// glif.LIFASCPSC implements GLIF model 3: LIF with after-spike currents
// and alpha-shaped post-synaptic currents.  Each after-spike current
// channel decays exponentially at rate K and is re-initialized at each
// spike to Amps + R * exp(-K * TRef) * prior value, the carried fraction
// accounting for the decay across the refractory period.
type LIFASCPSC struct {

	// biophysical parameters -- set via SetParams only
	Params ASCParams

	// dynamic state
	State ASCState

	// refractory countdown
	Refrac Refrac

	// cached exact-integration membrane coefficients, valid for Res
	Memb propagator.Membrane

	// cached per-receptor alpha-synapse propagators, valid for Res
	Syn alphasyn.Filter

	// cached per-channel decay exp(-K * Res)
	AscDecay []float32

	// cached per-channel spike carry factor R * exp(-K * TRef)
	AscRefresh []float32

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

// NewLIFASCPSC returns a new LIFASCPSC with default parameters, calibrated
// for the default 0.1 ms resolution.
func NewLIFASCPSC() *LIFASCPSC {
	nr := &LIFASCPSC{}
	nr.Params.Defaults()
	nr.InitState()
	nr.Calibrate(DefRes)
	return nr
}

// SetParams validates the full parameter set and commits it atomically:
// on any error nothing changes.  Shrinking the receptor-port count is
// rejected once spike connections exist.
func (nr *LIFASCPSC) SetParams(p ASCParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.HasConns = nr.Params.HasConns
	if err := p.CheckReceptors(&nr.Params.PSCParams); err != nil {
		return err
	}
	nr.Params = p
	nr.Params.Update()
	nr.calibrated = false
	return nil
}

// InitState resets the dynamic state: voltage, current, synaptic traces
// zero, and the after-spike currents back to their AscInit values.
func (nr *LIFASCPSC) InitState() {
	nr.State.Vm = 0
	nr.State.I = 0
	nr.State.Spike = 0
	for i := range nr.State.Y1 {
		nr.State.Y1[i] = 0
		nr.State.Y2[i] = 0
	}
	nr.State.ASC = resizeF32(nr.State.ASC, len(nr.Params.AscInit))
	copy(nr.State.ASC, nr.Params.AscInit)
	nr.State.ASCSum = sumF32(nr.State.ASC)
	nr.State.ISyn = 0
	nr.Refrac.Remaining = 0
	nr.Currents.Init(nr.Currents.Len())
	for i := range nr.Spikes {
		nr.Spikes[i].Init(nr.Spikes[i].Len())
	}
}

// SetVm sets the membrane potential directly.
func (nr *LIFASCPSC) SetVm(v float32) {
	nr.State.Vm = v
}

// Calibrate recomputes cached coefficients for step size res (ms) and
// resizes the per-receptor and per-channel state, preserving surviving
// values.
func (nr *LIFASCPSC) Calibrate(res float32) {
	nr.Res = res
	nr.Refrac.Init(nr.Params.TRef)
	nr.Memb.Build(nr.Params.G, nr.Params.CM, res)
	nr.Syn.Build(nr.Params.TauSyn, nr.Params.Tau(), nr.Params.CM, res)
	n := nr.Params.NReceptors()
	nr.State.Y1 = resizeF32(nr.State.Y1, n)
	nr.State.Y2 = resizeF32(nr.State.Y2, n)
	nr.wts = resizeF32(nr.wts, n)
	nr.Spikes = resizeSpikeBufs(nr.Spikes, n)
	nc := nr.Params.NChannels()
	nr.State.ASC = resizeF32(nr.State.ASC, nc)
	nr.AscDecay = resizeF32(nr.AscDecay, nc)
	nr.AscRefresh = resizeF32(nr.AscRefresh, nc)
	for i, k := range nr.Params.K {
		nr.AscDecay[i] = mat32.Exp(-k * res)
		nr.AscRefresh[i] = nr.Params.R[i] * mat32.Exp(-k*nr.Params.TRef)
	}
	nr.calibrated = true
}

// SetOnSpike installs the spike output callback.
func (nr *LIFASCPSC) SetOnSpike(fn func(se SpikeEvent)) {
	nr.OnSpike = fn
}

// SetMonitor installs a per-step variable recorder (nil to disable).
func (nr *LIFASCPSC) SetMonitor(mn *Monitor) {
	nr.Mon = mn
}

// HandleCurrent accumulates an external current contribution (pA) into the
// step arriving delay steps from now.
func (nr *LIFASCPSC) HandleCurrent(delay int64, i float32) {
	nr.Currents.Add(delay, i)
}

// ConnectSpike registers an incoming spike connection on 1-based receptor
// port rport.
func (nr *LIFASCPSC) ConnectSpike(rport int64) error {
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
func (nr *LIFASCPSC) HandleSpike(rport, delay int64, w float32) error {
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

// Update advances the unit over steps [from, to).  The membrane drive is
// the injected current plus the after-spike current sum plus the synaptic
// current of the pre-update traces.  After-spike currents decay each
// integration step but hold frozen through the refractory period: the
// exp(-K * TRef) factor in AscRefresh supplies the decay for that span
// when they are re-initialized at refractory exit.
func (nr *LIFASCPSC) Update(origin, from, to int64) {
	if !nr.calibrated {
		nr.Calibrate(nr.Res)
	}
	h := nr.Res
	vOld := nr.State.Vm
	for lag := from; lag < to; lag++ {
		nr.State.Spike = 0
		nr.State.ISyn = sumF32(nr.State.Y2)
		nr.State.ASCSum = sumF32(nr.State.ASC)
		if nr.Refrac.Active() {
			if nr.Refrac.Step(h) {
				nr.State.Vm = nr.Params.VReset
				for i := range nr.State.ASC {
					nr.State.ASC[i] = nr.Params.Amps[i] + nr.State.ASC[i]*nr.AscRefresh[i]
				}
			} else {
				nr.State.Vm = vOld
			}
		} else {
			drive := nr.State.I + nr.State.ASCSum
			vm := nr.Params.VmStep(vOld, drive, h, nr.Memb)
			vm += nr.Syn.VmDelta(nr.State.Y1, nr.State.Y2)
			nr.State.Vm = vm
			for i := range nr.State.ASC {
				nr.State.ASC[i] *= nr.AscDecay[i]
			}
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

func (nr *LIFASCPSC) sendSpike(step int64, off float32) {
	if nr.OnSpike != nil {
		nr.OnSpike(SpikeEvent{Step: step, Offset: off})
	}
}

// Clone returns a deep copy with fresh, empty input buffers, requiring
// calibration before use.
func (nr *LIFASCPSC) Clone() *LIFASCPSC {
	cp := &LIFASCPSC{}
	cp.Params = nr.Params.Clone()
	cp.State.LIFState = nr.State.LIFState
	cp.State.Y1 = append([]float32(nil), nr.State.Y1...)
	cp.State.Y2 = append([]float32(nil), nr.State.Y2...)
	cp.State.ASC = append([]float32(nil), nr.State.ASC...)
	cp.State.ASCSum = nr.State.ASCSum
	cp.State.ISyn = nr.State.ISyn
	cp.Refrac = nr.Refrac
	cp.Res = nr.Res
	cp.Currents.Init(nr.Currents.Len())
	cp.Spikes = make([]ringbuf.Buffer, len(nr.Spikes))
	for i := range nr.Spikes {
		cp.Spikes[i].Init(nr.Spikes[i].Len())
	}
	return cp
}

var lifascpscVars = []string{"Vm", "I", "Spike", "ISyn", "ASCSum"}

// UnitVarNames lists the recordable variables: Vm, I, Spike, ISyn, ASCSum.
func (nr *LIFASCPSC) UnitVarNames() []string {
	return lifascpscVars
}

// UnitVarByName returns the named recordable variable, or an error for
// unknown names.
func (nr *LIFASCPSC) UnitVarByName(vnm string) (float32, error) {
	switch vnm {
	case "Vm":
		return nr.State.Vm, nil
	case "I":
		return nr.State.I, nil
	case "Spike":
		return nr.State.Spike, nil
	case "ISyn":
		return nr.State.ISyn, nil
	case "ASCSum":
		return nr.State.ASCSum, nil
	}
	return mat32.NaN(), fmt.Errorf("glif.LIFASCPSC UnitVarByName: variable name %v not valid", vnm)
}

// sumF32 returns the sum of the slice values.
func sumF32(sl []float32) float32 {
	var s float32
	for _, v := range sl {
		s += v
	}
	return s
}
