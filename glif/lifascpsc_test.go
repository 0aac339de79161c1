// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glif

import (
	"testing"

	"github.com/chewxy/math32"
)

func baseASCParams() ASCParams {
	p := ASCParams{}
	p.Defaults()
	p.ThInf = 20
	p.G = 5
	p.EL = -70
	p.CM = 100
	p.TRef = 1.25
	p.VReset = -65
	p.Method = LinearExact
	return p
}

// TestLIFASCPSCReducesToLIFPSC checks that with zero-amplitude after-spike
// currents the model reproduces the plain PSC trajectory step for step.
func TestLIFASCPSCReducesToLIFPSC(t *testing.T) {
	pa := baseASCParams()
	pa.AscInit = []float32{0}
	pa.Amps = []float32{0}
	an := NewLIFASCPSC()
	if err := an.SetParams(pa); err != nil {
		t.Fatal(err)
	}
	an.InitState()
	an.SetVm(-70)
	an.Calibrate(0.125)

	pn := NewLIFPSC()
	if err := pn.SetParams(pa.PSCParams); err != nil {
		t.Fatal(err)
	}
	pn.InitState()
	pn.SetVm(-70)
	pn.Calibrate(0.125)

	steps := int64(1200)
	an.State.I = 500
	pn.State.I = 500
	for s := int64(0); s < steps; s++ {
		an.HandleCurrent(s, 500)
		pn.HandleCurrent(s, 500)
	}
	if err := an.HandleSpike(1, 100, 50); err != nil {
		t.Fatal(err)
	}
	if err := pn.HandleSpike(1, 100, 50); err != nil {
		t.Fatal(err)
	}
	for s := int64(0); s < steps; s++ {
		an.Update(0, s, s+1)
		pn.Update(0, s, s+1)
		if an.State.Vm != pn.State.Vm {
			t.Fatalf("step %v: LIFASCPSC Vm %v != LIFPSC Vm %v\n", s, an.State.Vm, pn.State.Vm)
		}
	}
	if an.State.ASCSum != 0 {
		t.Errorf("zero-amplitude ASC sum moved: %v\n", an.State.ASCSum)
	}
}

// TestLIFASCPSCDecay checks the per-step exponential decay of a channel's
// after-spike current between spikes.
func TestLIFASCPSCDecay(t *testing.T) {
	p := baseASCParams()
	p.ThInf = 1000 // no spikes
	p.AscInit = []float32{-20, 10}
	p.K = []float32{0.2, 0.05}
	p.Amps = []float32{-100, 50}
	p.R = []float32{1, 1}
	nr := NewLIFASCPSC()
	if err := nr.SetParams(p); err != nil {
		t.Fatal(err)
	}
	nr.InitState()
	h := float32(0.125)
	nr.Calibrate(h)

	if dif := math32.Abs(nr.State.ASCSum - (-10)); dif > 1.0e-5 {
		t.Errorf("initial ASC sum: got %v, want -10\n", nr.State.ASCSum)
	}
	nr.Update(0, 0, 1)
	cor0 := -20 * math32.Exp(-p.K[0]*h)
	cor1 := 10 * math32.Exp(-p.K[1]*h)
	if dif := math32.Abs(nr.State.ASC[0] - cor0); dif > 1.0e-4 {
		t.Errorf("channel 0 decay: got %v, cor %v\n", nr.State.ASC[0], cor0)
	}
	if dif := math32.Abs(nr.State.ASC[1] - cor1); dif > 1.0e-4 {
		t.Errorf("channel 1 decay: got %v, cor %v\n", nr.State.ASC[1], cor1)
	}
}

// TestLIFASCPSCSpikeRefresh checks the re-initialization at refractory
// exit: ASC = Amps + R * exp(-K t_ref) * held value.
func TestLIFASCPSCSpikeRefresh(t *testing.T) {
	p := baseASCParams()
	p.AscInit = []float32{-30}
	p.K = []float32{0.2}
	p.Amps = []float32{-80}
	p.R = []float32{0.5}
	nr := NewLIFASCPSC()
	if err := nr.SetParams(p); err != nil {
		t.Fatal(err)
	}
	nr.InitState()
	nr.SetVm(-70)
	h := float32(0.125)
	nr.Calibrate(h)

	steps := int64(2000)
	nr.State.I = 600
	for s := int64(0); s < steps; s++ {
		nr.HandleCurrent(s, 600)
	}
	var spikeStep int64 = -1
	for s := int64(0); s < steps; s++ {
		nr.Update(0, s, s+1)
		if nr.State.Spike == 1 {
			spikeStep = s
			break
		}
	}
	if spikeStep < 0 {
		t.Fatal("no spike emitted")
	}
	// ASC holds frozen through the 9 held steps, the exp(-K t_ref) in the
	// exit carry supplies the decay for that span
	ascHeld := nr.State.ASC[0]
	for k := int64(1); k <= 9; k++ {
		nr.Update(0, spikeStep+k, spikeStep+k+1)
	}
	if nr.State.ASC[0] != ascHeld {
		t.Errorf("ASC moved during refractory: got %v, want %v\n", nr.State.ASC[0], ascHeld)
	}
	// refresh applies at the reset step
	cor := p.Amps[0] + ascHeld*p.R[0]*math32.Exp(-p.K[0]*p.TRef)
	nr.Update(0, spikeStep+10, spikeStep+11)
	if dif := math32.Abs(nr.State.ASC[0] - cor); dif > 1.0e-3 {
		t.Errorf("ASC refresh: got %v, cor %v\n", nr.State.ASC[0], cor)
	}
	if nr.State.Vm != p.VReset {
		t.Errorf("reset voltage: got %v, want %v\n", nr.State.Vm, p.VReset)
	}
	// the negative after-spike current now opposes the drive
	if nr.State.ASCSum >= 0 {
		t.Errorf("ASC sum not hyperpolarizing after spike: %v\n", nr.State.ASCSum)
	}
}

// TestLIFASCPSCRefractoryCarry checks the total after-spike current carry
// across one refractory period.  With unit R and zero amplitude the value
// after the reset must be the held value times exp(-K t_ref), not a
// doubly-decayed one.
func TestLIFASCPSCRefractoryCarry(t *testing.T) {
	p := baseASCParams()
	p.AscInit = []float32{-100}
	p.K = []float32{0.5}
	p.Amps = []float32{0}
	p.R = []float32{1}
	nr := NewLIFASCPSC()
	if err := nr.SetParams(p); err != nil {
		t.Fatal(err)
	}
	nr.InitState()
	nr.SetVm(-70)
	nr.Calibrate(0.125)

	steps := int64(2000)
	nr.State.I = 600
	for s := int64(0); s < steps; s++ {
		nr.HandleCurrent(s, 600)
	}
	var spikeStep int64 = -1
	for s := int64(0); s < steps; s++ {
		nr.Update(0, s, s+1)
		if nr.State.Spike == 1 {
			spikeStep = s
			break
		}
	}
	if spikeStep < 0 {
		t.Fatal("no spike emitted")
	}
	held := nr.State.ASC[0]
	for k := int64(1); k <= 10; k++ {
		nr.Update(0, spikeStep+k, spikeStep+k+1)
	}
	if nr.State.Vm != p.VReset {
		t.Fatalf("expected reset by step %v, Vm %v\n", spikeStep+10, nr.State.Vm)
	}
	cor := held * math32.Exp(-p.K[0]*p.TRef)
	if dif := math32.Abs(nr.State.ASC[0] - cor); dif > 1.0e-4 {
		t.Errorf("refractory carry: got %v, cor %v\n", nr.State.ASC[0], cor)
	}
}

// TestLIFASCPSCHyperpolarizing checks that a negative after-spike current
// slows the climb back to threshold, lengthening the second inter-spike
// interval relative to a model without it.
func TestLIFASCPSCHyperpolarizing(t *testing.T) {
	run := func(amp float32) []int64 {
		p := baseASCParams()
		p.AscInit = []float32{0}
		p.K = []float32{0.01}
		p.Amps = []float32{amp}
		p.R = []float32{1}
		nr := NewLIFASCPSC()
		if err := nr.SetParams(p); err != nil {
			t.Fatal(err)
		}
		nr.InitState()
		nr.SetVm(-70)
		nr.Calibrate(0.125)
		steps := int64(8000)
		nr.State.I = 600
		for s := int64(0); s < steps; s++ {
			nr.HandleCurrent(s, 600)
		}
		var spikes []int64
		nr.SetOnSpike(func(se SpikeEvent) {
			spikes = append(spikes, se.Step)
		})
		nr.Update(0, 0, steps)
		return spikes
	}
	plain := run(0)
	adapted := run(-200)
	if len(plain) < 2 || len(adapted) < 2 {
		t.Fatalf("need at least 2 spikes each: plain %v, adapted %v\n", len(plain), len(adapted))
	}
	isiPlain := plain[1] - plain[0]
	isiAdapted := adapted[1] - adapted[0]
	if isiAdapted <= isiPlain {
		t.Errorf("after-spike current did not lengthen interval: plain %v, adapted %v\n", isiPlain, isiAdapted)
	}
	if len(adapted) >= len(plain) {
		t.Errorf("after-spike current did not reduce spike count: plain %v, adapted %v\n", len(plain), len(adapted))
	}
}
