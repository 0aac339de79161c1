// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package propagator computes the exact one-step solution coefficients for the
linear ODE systems used by the GLIF neuron models: the passive membrane
equation and the alpha-shaped post-synaptic current system.

A propagator maps the state of a linear time-invariant system at step t to
its state at step t+1 for a fixed step size h, so the discrete update is
exact regardless of h (unconditionally stable), in contrast to forward-Euler
integration which is only accurate for h small relative to the time
constants.  Units follow the standard set used throughout: mV, pA, nS, pF,
ms -- note that pF / nS = ms, so time constants come out in ms directly.

Coefficients must be rebuilt whenever the parameters or the step size
change -- the neuron Calibrate methods do this.
*/
package propagator

import (
	"math"

	"github.com/goki/mat32"
)

// Membrane holds the exact propagator coefficients for the passive membrane
// equation C dV/dt = -G (V - E_L) + I with fixed current over one step.
type Membrane struct {

	// Decay is the voltage decay factor exp(-h / tau) where tau = C / G.
	Decay float32

	// Force is the forcing coefficient (1/C) (1 - Decay) tau, multiplying
	// the total current term (I + G E_L) in the exact update.
	Force float32
}

// Build computes the coefficients for membrane conductance g (nS),
// capacitance cm (pF), and step size h (ms).
func (mp *Membrane) Build(g, cm, h float32) {
	tau := cm / g
	mp.Decay = mat32.Exp(-h / tau)
	mp.Force = (1 / cm) * (1 - mp.Decay) * tau
}

// singularX is the |beta * h| window within which AlphaCoeffs switches from
// the closed-form expressions to their series expansions.  The closed forms
// lose their leading digits to cancellation as tau_syn approaches tau_m; at
// this window edge the truncation error of the 4-term series and the
// cancellation error of the closed form are both a few parts in 1e6 at
// float32 precision.
const singularX = 0.05

// AlphaCoeffs computes the exact propagator coefficients for one
// alpha-shaped synaptic receptor coupled to the membrane:
//
//	y1' = -y1 / tauSyn
//	y2' = y1 - y2 / tauSyn
//	V'  = -V / tauMem + y2 / cm
//
// Returned are p11 (= p22) the trace self-decay, p21 the y1 -> y2 coupling,
// and p31, p32 the one-step voltage contributions of the y1, y2 traces.
// tauSyn and tauMem in ms, cm in pF, h in ms.  Near tauSyn == tauMem the
// closed forms for p31/p32 cancel catastrophically, so a series expansion
// in beta*h is used instead, where beta = 1/tauSyn - 1/tauMem.
func AlphaCoeffs(tauSyn, tauMem, cm, h float32) (p11, p21, p31, p32 float32) {
	p11 = mat32.Exp(-h / tauSyn)
	p21 = h * p11

	em := mat32.Exp(-h / tauMem)
	beta := 1/tauSyn - 1/tauMem
	x := beta * h
	if mat32.Abs(x) < singularX {
		// (1 - e^-x) / x       = 1 - x/2 + x^2/6 - x^3/24 + ...
		// (1 - e^-x (1+x))/x^2 = 1/2 - x/3 + x^2/8 - x^3/30 + ...
		p32 = (h / cm) * em * (1 - x/2 + x*x/6 - x*x*x/24)
		p31 = (h * h / (2 * cm)) * em * (1 - 2*x/3 + x*x/4 - x*x*x/15)
		return
	}
	es := p11 // exp(-h / tauSyn)
	p32 = (em - es) / (cm * beta)
	p31 = (em - es*(1+x)) / (cm * beta * beta)
	return
}

// AlphaInit returns the initial-value scale e / tauSyn applied to an
// incoming spike weight, normalizing a unit-weight spike to an alpha
// current with peak amplitude 1 pA (at t = tauSyn after arrival).
func AlphaInit(tauSyn float32) float32 {
	return float32(math.E) / tauSyn
}
