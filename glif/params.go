// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glif

import (
	"errors"
	"fmt"

	"github.com/goki/ki/kit"
	"github.com/goki/mat32"

	"github.com/emer/glif/propagator"
)

// Sentinel errors for the two caller-visible failure classes.  All
// configuration rejections wrap ErrConfig, all bad-port deliveries wrap
// ErrRouting; internal arithmetic has no error path.
var (
	ErrConfig  = errors.New("glif: invalid configuration")
	ErrRouting = errors.New("glif: invalid receptor port")
)

// VmMethods are the available membrane voltage integration methods
type VmMethods int32

//go:generate stringer -type=VmMethods

var KiT_VmMethods = kit.Enums.AddEnum(VmMethodsN, kit.NotBitFlag, nil)

func (ev VmMethods) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *VmMethods) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The voltage integration methods
const (
	// LinearForwardEuler updates Vm with one forward-Euler (RK1) step --
	// accurate only while the step size is small relative to tau = C / G
	LinearForwardEuler VmMethods = iota

	// LinearExact updates Vm with the exact propagator of the linear
	// membrane equation -- unconditionally stable for any step size
	LinearExact

	VmMethodsN
)

// configuration-interface names of the integration methods
const (
	LinearForwardEulerName = "linear_forward_euler"
	LinearExactName        = "linear_exact"
)

// MethodFromString returns the integration method for its
// configuration-interface name, one of "linear_forward_euler" or
// "linear_exact".
func MethodFromString(nm string) (VmMethods, error) {
	switch nm {
	case LinearForwardEulerName:
		return LinearForwardEuler, nil
	case LinearExactName:
		return LinearExact, nil
	}
	return 0, fmt.Errorf("%w: unrecognized integration method %q", ErrConfig, nm)
}

// MethodName returns the configuration-interface name of the method.
func (ev VmMethods) MethodName() string {
	if ev == LinearExact {
		return LinearExactName
	}
	return LinearForwardEulerName
}

// glif.Params are the membrane and spiking parameters shared by all GLIF
// neuron variants, in the standard unit set mV, nS, pF, ms, pA (pF/nS = ms).
// Read-only during simulation: change them only through a neuron's
// SetParams, which validates all-or-nothing and marks the cached propagator
// coefficients for recomputation.
type Params struct {

	// instantaneous spiking threshold (mV)
	ThInf float32 `def:"26.5" desc:"instantaneous spiking threshold (mV)"`

	// membrane conductance (nS)
	G float32 `def:"4.6951" desc:"membrane conductance (nS)"`

	// resting membrane potential (mV)
	EL float32 `def:"-77.4" desc:"resting membrane potential (mV)"`

	// membrane capacitance (pF)
	CM float32 `def:"99.182" desc:"membrane capacitance (pF)"`

	// refractory period duration (ms)
	TRef float32 `def:"0.5" desc:"refractory period duration (ms)"`

	// membrane voltage applied when the refractory period ends (mV)
	VReset float32 `def:"0" desc:"membrane voltage applied when the refractory period ends (mV)"`

	// voltage dynamics integration method
	Method VmMethods `desc:"voltage dynamics integration method"`
}

// Defaults sets the GLIF model 1 default parameter values.
func (pr *Params) Defaults() {
	pr.ThInf = 26.5
	pr.G = 4.6951
	pr.EL = -77.4
	pr.CM = 99.182
	pr.TRef = 0.5
	pr.VReset = 0
	pr.Method = LinearForwardEuler
}

func (pr *Params) Update() {
}

// Tau returns the membrane time constant C / G in ms.
func (pr *Params) Tau() float32 {
	return pr.CM / pr.G
}

// Validate checks the invariants the configuration interface enforces.
// It never mutates, so callers can probe a scratch copy safely.
func (pr *Params) Validate() error {
	if !(pr.G > 0) || mat32.IsInf(pr.G, 1) {
		return fmt.Errorf("%w: membrane conductance must be strictly positive, got %v", ErrConfig, pr.G)
	}
	if !(pr.CM > 0) || mat32.IsInf(pr.CM, 1) {
		return fmt.Errorf("%w: membrane capacitance must be strictly positive, got %v", ErrConfig, pr.CM)
	}
	if pr.TRef < 0 || mat32.IsNaN(pr.TRef) {
		return fmt.Errorf("%w: refractory duration must be non-negative, got %v", ErrConfig, pr.TRef)
	}
	if pr.Method < 0 || pr.Method >= VmMethodsN {
		return fmt.Errorf("%w: unrecognized integration method %d", ErrConfig, pr.Method)
	}
	return nil
}

// VmStep advances the membrane potential one step of size h (ms) under the
// configured method, given prior voltage vOld (mV) and total current i (pA).
// mp must hold the propagator coefficients for (params, h) -- only the
// exact method reads it.
func (pr *Params) VmStep(vOld, i, h float32, mp propagator.Membrane) float32 {
	if pr.Method == LinearExact {
		return vOld*mp.Decay + (i+pr.G*pr.EL)*mp.Force
	}
	return vOld + h*(i-pr.G*(vOld-pr.EL))/pr.CM
}

//////////////////////////////////////////////////////////////////////////////////////
//  PSCParams

// PSCParams extend Params with the ordered per-receptor synaptic time
// constants of the alpha-shaped post-synaptic current variants.
type PSCParams struct {
	Params

	// ordered synaptic time constants, one receptor port per entry (ms)
	TauSyn []float32 `desc:"ordered synaptic time constants, one receptor port per entry (ms)"`

	// whether any incoming spike connection has been registered -- once set,
	// the receptor count can grow but never shrink
	HasConns bool `inactive:"+" desc:"whether any incoming spike connection has been registered -- once set, the receptor count can grow but never shrink"`
}

// Defaults sets the default PSC parameter values: one receptor
// with a 2 ms time constant.
func (pr *PSCParams) Defaults() {
	pr.Params.Defaults()
	pr.TauSyn = []float32{2}
	pr.HasConns = false
}

// NReceptors returns the configured receptor port count.
func (pr *PSCParams) NReceptors() int {
	return len(pr.TauSyn)
}

// Validate checks the shared membrane invariants plus the synaptic ones:
// every time constant strictly positive.
func (pr *PSCParams) Validate() error {
	if err := pr.Params.Validate(); err != nil {
		return err
	}
	for i, tau := range pr.TauSyn {
		if !(tau > 0) || mat32.IsInf(tau, 1) {
			return fmt.Errorf("%w: all synaptic time constants must be strictly positive, tau_syn[%d] = %v", ErrConfig, i, tau)
		}
	}
	return nil
}

// CheckReceptors enforces the receptor-count monotonicity rule against the
// currently active params: once connections exist, the port count may grow
// but never shrink.
func (pr *PSCParams) CheckReceptors(cur *PSCParams) error {
	if cur.HasConns && pr.NReceptors() < cur.NReceptors() {
		return fmt.Errorf("%w: the neuron has connections, the number of receptor ports cannot be reduced", ErrConfig)
	}
	return nil
}

// Clone returns a deep copy.
func (pr *PSCParams) Clone() PSCParams {
	np := *pr
	np.TauSyn = append([]float32(nil), pr.TauSyn...)
	return np
}
