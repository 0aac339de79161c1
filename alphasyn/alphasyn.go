// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package alphasyn implements the alpha-shaped post-synaptic current filter
used by the PSC variants of the GLIF neuron models.

Each receptor port i carries an independent alpha current
w (e/tau_i) t exp(-t/tau_i), represented by two coupled first-order traces
(y1, y2) advanced by exact propagator coefficients, so the filter is exact
at any step size.  An incoming spike weight jumps y1 by the initial-value
scale e/tau_i, which normalizes a unit weight to a 1 pA current peak.

The voltage contribution of the traces lags their spike-induced jump by one
step: the per-step membrane current is computed from the trace values before
that step's update.
*/
package alphasyn

import "github.com/emer/glif/propagator"

// Filter holds the precomputed propagator coefficients for a bank of
// alpha-current receptors.  Build it once per (parameters, step size)
// combination; the trace state itself lives with the neuron.
type Filter struct {

	// P11 is the per-receptor y1 self-decay exp(-h / tau).
	P11 []float32

	// P21 is the per-receptor y1 -> y2 coupling h * P11.
	P21 []float32

	// P22 is the per-receptor y2 self-decay, equal to P11.
	P22 []float32

	// P31 is the per-receptor one-step voltage contribution of y1.
	P31 []float32

	// P32 is the per-receptor one-step voltage contribution of y2.
	P32 []float32

	// InitVals is the per-receptor initial-value scale e / tau applied to
	// incoming spike weights.
	InitVals []float32
}

// N returns the number of receptors the filter was built for.
func (fl *Filter) N() int {
	return len(fl.P11)
}

// Build computes coefficients for the given synaptic time constants (ms),
// membrane time constant tauMem (ms), capacitance cm (pF), and step h (ms).
func (fl *Filter) Build(tauSyn []float32, tauMem, cm, h float32) {
	n := len(tauSyn)
	fl.P11 = resize(fl.P11, n)
	fl.P21 = resize(fl.P21, n)
	fl.P22 = resize(fl.P22, n)
	fl.P31 = resize(fl.P31, n)
	fl.P32 = resize(fl.P32, n)
	fl.InitVals = resize(fl.InitVals, n)
	for i, tau := range tauSyn {
		p11, p21, p31, p32 := propagator.AlphaCoeffs(tau, tauMem, cm, h)
		fl.P11[i] = p11
		fl.P21[i] = p21
		fl.P22[i] = p11
		fl.P31[i] = p31
		fl.P32[i] = p32
		fl.InitVals[i] = propagator.AlphaInit(tau)
	}
}

// VmDelta returns the summed one-step voltage contribution of the given
// traces (mV).  Call before Step for a given step: the contribution uses
// the pre-update trace values.
func (fl *Filter) VmDelta(y1, y2 []float32) float32 {
	var sum float32
	for i := range fl.P31 {
		sum += fl.P31[i]*y1[i] + fl.P32[i]*y2[i]
	}
	return sum
}

// Step advances the traces one step in place, injecting the per-receptor
// aggregated spike weights delivered at this step.  The y2 update must use
// the pre-update y1, so order matters here.
func (fl *Filter) Step(y1, y2, wts []float32) {
	for i := range fl.P11 {
		y2[i] = fl.P21[i]*y1[i] + fl.P22[i]*y2[i]
		y1[i] = fl.P11[i]*y1[i] + fl.InitVals[i]*wts[i]
	}
}

// resize returns a slice of length n, preserving existing leading values.
func resize(sl []float32, n int) []float32 {
	if len(sl) == n {
		return sl
	}
	ns := make([]float32, n)
	copy(ns, sl)
	return ns
}
