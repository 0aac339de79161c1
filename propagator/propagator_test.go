// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package propagator

import (
	"math"
	"testing"

	"github.com/chewxy/math32"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-6)

func TestMembrane(t *testing.T) {
	// tau = 100 / 5 = 20 ms, h = 0.1 ms
	mp := Membrane{}
	mp.Build(5, 100, 0.1)

	corDecay := math32.Exp(-0.1 / 20.0)
	corForce := (1.0 / 100.0) * (1 - corDecay) * 20.0
	if dif := math32.Abs(mp.Decay - corDecay); dif > difTol {
		t.Errorf("Decay err: %v, cor: %v, dif: %v\n", mp.Decay, corDecay, dif)
	}
	if dif := math32.Abs(mp.Force - corForce); dif > difTol {
		t.Errorf("Force err: %v, cor: %v, dif: %v\n", mp.Force, corForce, dif)
	}
}

func TestAlphaCoeffsFarFromSingular(t *testing.T) {
	// tauSyn = 1, tauMem = 20, h = 0.1: beta*h = 0.095, outside the series
	// window, so this exercises the closed forms.
	tauSyn, tauMem, cm, h := float32(1), float32(20), float32(100), float32(0.1)
	p11, p21, p31, p32 := AlphaCoeffs(tauSyn, tauMem, cm, h)

	corP11 := math32.Exp(-h / tauSyn)
	if dif := math32.Abs(p11 - corP11); dif > difTol {
		t.Errorf("p11 err: %v, cor: %v\n", p11, corP11)
	}
	if dif := math32.Abs(p21 - h*corP11); dif > difTol {
		t.Errorf("p21 err: %v, cor: %v\n", p21, h*corP11)
	}

	em := math32.Exp(-h / tauMem)
	es := math32.Exp(-h / tauSyn)
	beta := 1/tauSyn - 1/tauMem
	corP32 := (em - es) / (cm * beta)
	corP31 := (em - es*(1+beta*h)) / (cm * beta * beta)
	if dif := math32.Abs(p32 - corP32); dif > difTol {
		t.Errorf("p32 err: %v, cor: %v\n", p32, corP32)
	}
	if dif := math32.Abs(p31 - corP31); dif > difTol {
		t.Errorf("p31 err: %v, cor: %v\n", p31, corP31)
	}
}

func TestAlphaCoeffsSingularLimit(t *testing.T) {
	// exactly at tauSyn == tauMem the analytic limits are
	// p32 = (h/cm) exp(-h/tau), p31 = (h^2/(2 cm)) exp(-h/tau)
	tau, cm, h := float32(10), float32(100), float32(0.1)
	_, _, p31, p32 := AlphaCoeffs(tau, tau, cm, h)

	em := math32.Exp(-h / tau)
	corP32 := (h / cm) * em
	corP31 := (h * h / (2 * cm)) * em
	if dif := math32.Abs(p32 - corP32); dif > difTol {
		t.Errorf("singular p32 err: %v, cor: %v\n", p32, corP32)
	}
	if dif := math32.Abs(p31 - corP31); dif > difTol {
		t.Errorf("singular p31 err: %v, cor: %v\n", p31, corP31)
	}
}

func TestAlphaCoeffsSeriesVsClosed(t *testing.T) {
	// inside the singular window the series fallback must agree with the
	// closed form evaluated at float64 precision, where the cancellation
	// that motivates the fallback does not yet bite.
	tauMem, cm, h := float32(20), float32(100), float32(1.0)
	relTol := float32(2.0e-5)
	for _, tauSyn := range []float32{16.6667, 14.2857, 11.1111} { // beta*h ~ .01, .02, .04
		_, _, p31, p32 := AlphaCoeffs(tauSyn, tauMem, cm, h)

		em := math.Exp(-float64(h) / float64(tauMem))
		es := math.Exp(-float64(h) / float64(tauSyn))
		beta := 1/float64(tauSyn) - 1/float64(tauMem)
		corP32 := float32((em - es) / (float64(cm) * beta))
		corP31 := float32((em - es*(1+beta*float64(h))) / (float64(cm) * beta * beta))

		if dif := math32.Abs(p32 - corP32); dif > relTol*math32.Abs(corP32) {
			t.Errorf("series p32 err: tauSyn: %v, %v, cor: %v\n", tauSyn, p32, corP32)
		}
		if dif := math32.Abs(p31 - corP31); dif > relTol*math32.Abs(corP31) {
			t.Errorf("series p31 err: tauSyn: %v, %v, cor: %v\n", tauSyn, p31, corP31)
		}
	}
}

func TestAlphaInit(t *testing.T) {
	// a unit-weight spike must peak at 1 pA: the alpha current is
	// w (e/tau) t exp(-t/tau), maximal at t = tau with value w
	tau := float32(2)
	iv := AlphaInit(tau)
	peak := iv * tau * math32.Exp(-1)
	if dif := math32.Abs(peak - 1); dif > difTol {
		t.Errorf("unit spike peak err: %v, cor: 1\n", peak)
	}
}
