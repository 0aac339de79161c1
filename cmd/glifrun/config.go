// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/emer/glif/glif"
)

// ModelParams holds the per-model parameter fields of a run config.
// Fields beyond what the selected model uses are rejected at Build.
type ModelParams struct {
	ThInf  *float32 `yaml:"th_inf"`
	G      *float32 `yaml:"g"`
	EL     *float32 `yaml:"e_l"`
	CM     *float32 `yaml:"c_m"`
	TRef   *float32 `yaml:"t_ref"`
	VReset *float32 `yaml:"v_reset"`
	Method string   `yaml:"method"`

	TauSyn []float32 `yaml:"tau_syn"`

	ASpike *float32 `yaml:"a_spike"`
	BSpike *float32 `yaml:"b_spike"`
	ResetA *float32 `yaml:"voltage_reset_a"`
	ResetB *float32 `yaml:"voltage_reset_b"`

	AscInit []float32 `yaml:"asc_init"`
	K       []float32 `yaml:"k"`
	Amps    []float32 `yaml:"asc_amps"`
	R       []float32 `yaml:"asc_r"`
}

// CurrentDrive is a constant current applied over a step interval
// [Start, Stop).
type CurrentDrive struct {
	Start int64   `yaml:"start"`
	Stop  int64   `yaml:"stop"`
	Amp   float32 `yaml:"amp"`
}

// SpikeDrive is a weighted spike delivered to a receptor port at a step.
type SpikeDrive struct {
	Step   int64   `yaml:"step"`
	Port   int64   `yaml:"port"`
	Weight float32 `yaml:"weight"`
}

// Config is the yaml run configuration for glifrun.
type Config struct {

	// model selects the neuron variant: lif, lif_r, lif_psc, lif_asc_psc
	Model string `yaml:"model"`

	// simulation step size in ms
	Resolution float32 `yaml:"resolution"`

	// number of steps to simulate
	Steps int64 `yaml:"steps"`

	// steps per Update call
	Slice int64 `yaml:"slice"`

	// initial membrane potential in mV
	InitVm *float32 `yaml:"init_vm"`

	// variables to record, defaulting to the model's full recordable set
	Record []string `yaml:"record"`

	Params   ModelParams    `yaml:"params"`
	Currents []CurrentDrive `yaml:"currents"`
	Spikes   []SpikeDrive   `yaml:"spikes"`
}

// Defaults fills unset scalar run settings.
func (cf *Config) Defaults() {
	if cf.Model == "" {
		cf.Model = "lif"
	}
	if cf.Resolution == 0 {
		cf.Resolution = glif.DefRes
	}
	if cf.Slice == 0 {
		cf.Slice = 100
	}
}

// LoadConfig reads and decodes a yaml run configuration.
func LoadConfig(fnm string) (*Config, error) {
	b, err := os.ReadFile(fnm)
	if err != nil {
		return nil, err
	}
	cf := &Config{}
	if err := yaml.Unmarshal(b, cf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", glif.ErrConfig, fnm, err)
	}
	cf.Defaults()
	return cf, nil
}

// Validate checks the run settings that Build does not cover.
func (cf *Config) Validate() error {
	if !(cf.Resolution > 0) {
		return fmt.Errorf("%w: resolution must be positive, got %v", glif.ErrConfig, cf.Resolution)
	}
	if cf.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %v", glif.ErrConfig, cf.Steps)
	}
	if cf.Slice <= 0 {
		return fmt.Errorf("%w: slice must be positive, got %v", glif.ErrConfig, cf.Slice)
	}
	for _, cd := range cf.Currents {
		if cd.Start < 0 || cd.Stop > cf.Steps || cd.Start >= cd.Stop {
			return fmt.Errorf("%w: current interval [%d, %d) out of range", glif.ErrConfig, cd.Start, cd.Stop)
		}
	}
	for _, sd := range cf.Spikes {
		if sd.Step < 0 || sd.Step >= cf.Steps {
			return fmt.Errorf("%w: spike step %d out of range", glif.ErrConfig, sd.Step)
		}
	}
	return nil
}

func setF32(dst *float32, src *float32) {
	if src != nil {
		*dst = *src
	}
}

// apply overlays the config fields onto a validated-default Params.
func (mp *ModelParams) apply(p *glif.Params) error {
	setF32(&p.ThInf, mp.ThInf)
	setF32(&p.G, mp.G)
	setF32(&p.EL, mp.EL)
	setF32(&p.CM, mp.CM)
	setF32(&p.TRef, mp.TRef)
	setF32(&p.VReset, mp.VReset)
	if mp.Method != "" {
		mth, err := glif.MethodFromString(mp.Method)
		if err != nil {
			return err
		}
		p.Method = mth
	}
	return nil
}

func (mp *ModelParams) applyPSC(p *glif.PSCParams) error {
	if err := mp.apply(&p.Params); err != nil {
		return err
	}
	if mp.TauSyn != nil {
		p.TauSyn = mp.TauSyn
	}
	return nil
}

// Build constructs and configures the neuron the config selects.
// Parameters are committed through SetParams, so an invalid config fails
// here rather than mid-run.
func (cf *Config) Build() (glif.Unit, error) {
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	var u glif.Unit
	switch cf.Model {
	case "lif":
		nr := glif.NewLIF()
		p := nr.Params
		if err := cf.Params.apply(&p); err != nil {
			return nil, err
		}
		if err := nr.SetParams(p); err != nil {
			return nil, err
		}
		u = nr
	case "lif_r":
		nr := glif.NewLIFR()
		p := nr.Params
		if err := cf.Params.apply(&p.Params); err != nil {
			return nil, err
		}
		setF32(&p.ASpike, cf.Params.ASpike)
		setF32(&p.BSpike, cf.Params.BSpike)
		setF32(&p.ResetA, cf.Params.ResetA)
		setF32(&p.ResetB, cf.Params.ResetB)
		if err := nr.SetParams(p); err != nil {
			return nil, err
		}
		u = nr
	case "lif_psc":
		nr := glif.NewLIFPSC()
		p := nr.Params.Clone()
		if err := cf.Params.applyPSC(&p); err != nil {
			return nil, err
		}
		if err := nr.SetParams(p); err != nil {
			return nil, err
		}
		u = nr
	case "lif_asc_psc":
		nr := glif.NewLIFASCPSC()
		p := nr.Params.Clone()
		if err := cf.Params.applyPSC(&p.PSCParams); err != nil {
			return nil, err
		}
		if cf.Params.AscInit != nil {
			p.AscInit = cf.Params.AscInit
		}
		if cf.Params.K != nil {
			p.K = cf.Params.K
		}
		if cf.Params.Amps != nil {
			p.Amps = cf.Params.Amps
		}
		if cf.Params.R != nil {
			p.R = cf.Params.R
		}
		if err := nr.SetParams(p); err != nil {
			return nil, err
		}
		u = nr
	default:
		return nil, fmt.Errorf("%w: unknown model %q", glif.ErrConfig, cf.Model)
	}
	u.InitState()
	if cf.InitVm != nil {
		u.SetVm(*cf.InitVm)
	}
	u.Calibrate(cf.Resolution)
	if err := cf.applyDrives(u); err != nil {
		return nil, err
	}
	return u, nil
}

// spikeHandler is satisfied by the PSC variants, which accept routed
// spike input.
type spikeHandler interface {
	ConnectSpike(rport int64) error
	HandleSpike(rport, delay int64, w float32) error
}

// applyDrives preloads the configured current and spike drives into the
// unit's input buffers, relative to step 0.
func (cf *Config) applyDrives(u glif.Unit) error {
	for _, cd := range cf.Currents {
		for s := cd.Start; s < cd.Stop; s++ {
			u.HandleCurrent(s, cd.Amp)
		}
	}
	if len(cf.Spikes) == 0 {
		return nil
	}
	sh, ok := u.(spikeHandler)
	if !ok {
		return fmt.Errorf("%w: model %q does not accept spike input", glif.ErrRouting, cf.Model)
	}
	for _, sd := range cf.Spikes {
		if err := sh.ConnectSpike(sd.Port); err != nil {
			return err
		}
		if err := sh.HandleSpike(sd.Port, sd.Step, sd.Weight); err != nil {
			return err
		}
	}
	return nil
}
