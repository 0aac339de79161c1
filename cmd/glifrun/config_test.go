// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/emer/glif/glif"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	fnm := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(fnm, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return fnm
}

const lifConfig = `
model: lif
resolution: 0.1
steps: 600
init_vm: -70
params:
  th_inf: 20
  g: 5
  e_l: -70
  c_m: 100
  t_ref: 2
  v_reset: -65
  method: linear_exact
currents:
  - {start: 0, stop: 600, amp: 500}
`

func TestLoadConfig(t *testing.T) {
	cf, err := LoadConfig(writeConfig(t, lifConfig))
	if err != nil {
		t.Fatal(err)
	}
	if cf.Model != "lif" || cf.Steps != 600 {
		t.Errorf("config fields: model %v, steps %v\n", cf.Model, cf.Steps)
	}
	if cf.Slice == 0 {
		t.Errorf("slice default not applied\n")
	}
	if cf.InitVm == nil || *cf.InitVm != -70 {
		t.Errorf("init_vm not read\n")
	}
	if len(cf.Currents) != 1 || cf.Currents[0].Amp != 500 {
		t.Errorf("currents not read: %v\n", cf.Currents)
	}
}

func TestLoadConfigBadYaml(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "model: [unclosed"))
	if err == nil {
		t.Fatal("malformed yaml accepted")
	}
	if !errors.Is(err, glif.ErrConfig) {
		t.Errorf("error not ErrConfig: %v\n", err)
	}
}

func TestBuildRejectsBadModel(t *testing.T) {
	cf, err := LoadConfig(writeConfig(t, "model: hodgkin_huxley\nsteps: 10\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cf.Build(); err == nil {
		t.Fatal("unknown model accepted")
	}
}

func TestBuildRejectsBadParams(t *testing.T) {
	cf, err := LoadConfig(writeConfig(t, "model: lif\nsteps: 10\nparams:\n  g: -1\n"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = cf.Build()
	if err == nil {
		t.Fatal("negative conductance accepted")
	}
	if !errors.Is(err, glif.ErrConfig) {
		t.Errorf("error not ErrConfig: %v\n", err)
	}
}

func TestBuildRejectsSpikesOnLIF(t *testing.T) {
	cf, err := LoadConfig(writeConfig(t, "model: lif\nsteps: 10\nspikes:\n  - {step: 1, port: 1, weight: 5}\n"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = cf.Build()
	if err == nil {
		t.Fatal("spike drive on lif accepted")
	}
	if !errors.Is(err, glif.ErrRouting) {
		t.Errorf("error not ErrRouting: %v\n", err)
	}
}

func TestSimulateLIF(t *testing.T) {
	cf, err := LoadConfig(writeConfig(t, lifConfig))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Simulate(cf)
	if err != nil {
		t.Fatal(err)
	}
	if res.Monitor.Rows() != 600 {
		t.Errorf("rows: got %v, want 600\n", res.Monitor.Rows())
	}
	if len(res.Spikes) != 1 {
		t.Errorf("spikes: got %v, want 1\n", len(res.Spikes))
	}
	if len(res.Spikes) == 1 {
		s := res.Spikes[0]
		if s.Step < 456 || s.Step > 469 {
			t.Errorf("spike step %v outside expected window near 461\n", s.Step)
		}
	}
}

func TestSimulatePSCSpikes(t *testing.T) {
	body := `
model: lif_psc
resolution: 0.1
steps: 100
init_vm: -70
params:
  th_inf: 20
  g: 5
  e_l: -70
  c_m: 100
  tau_syn: [2, 5]
spikes:
  - {step: 10, port: 1, weight: 100}
  - {step: 10, port: 2, weight: 100}
`
	cf, err := LoadConfig(writeConfig(t, body))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Simulate(cf)
	if err != nil {
		t.Fatal(err)
	}
	if res.Monitor.Rows() != 100 {
		t.Errorf("rows: got %v, want 100\n", res.Monitor.Rows())
	}
	// voltage depolarized above rest after the spike drives arrive
	var peak float64 = -100
	for row := 0; row < res.Monitor.Rows(); row++ {
		if v := res.Monitor.Table.CellFloat("Vm", row); v > peak {
			peak = v
		}
	}
	if peak <= -70 {
		t.Errorf("spike drive did not depolarize: peak Vm %v\n", peak)
	}
}

func TestPlotVar(t *testing.T) {
	cf, err := LoadConfig(writeConfig(t, lifConfig))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Simulate(cf)
	if err != nil {
		t.Fatal(err)
	}
	p, err := PlotVar(res, cf.Resolution, "Vm")
	if err != nil {
		t.Fatal(err)
	}
	if p == nil {
		t.Fatal("nil plot")
	}
	if _, err := PlotVar(res, cf.Resolution, "NotRecorded"); err == nil {
		t.Errorf("unrecorded variable accepted\n")
	}
}
