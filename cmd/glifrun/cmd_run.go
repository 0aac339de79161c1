// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/emer/etable/v2/etable"
	"github.com/spf13/cobra"

	"github.com/emer/glif/glif"
)

// RunResult is the outcome of a simulation: the recorded table and the
// emitted spikes.
type RunResult struct {
	Monitor *glif.Monitor
	Spikes  []glif.SpikeEvent
}

// Simulate builds the configured unit and steps it over the full run,
// recording the configured variables and collecting spike events.
func Simulate(cf *Config) (*RunResult, error) {
	u, err := cf.Build()
	if err != nil {
		return nil, err
	}
	vars := cf.Record
	if len(vars) == 0 {
		vars = u.UnitVarNames()
	}
	mn := glif.NewMonitor(vars...)
	u.SetMonitor(mn)
	res := &RunResult{Monitor: mn}
	u.SetOnSpike(func(se glif.SpikeEvent) {
		res.Spikes = append(res.Spikes, se)
	})
	for from := int64(0); from < cf.Steps; from += cf.Slice {
		to := from + cf.Slice
		if to > cf.Steps {
			to = cf.Steps
		}
		u.Update(0, from, to)
	}
	return res, nil
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <config.yaml>",
		Short: "Simulate a configured neuron and write the recorded table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFnm, _ := cmd.Flags().GetString("output")
			cf, err := LoadConfig(args[0])
			if err != nil {
				return err
			}
			res, err := Simulate(cf)
			if err != nil {
				return err
			}
			out := os.Stdout
			if outFnm != "" {
				f, err := os.Create(outFnm)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if err := res.Monitor.Table.WriteCSV(out, etable.Tab, etable.Headers); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d steps, %d spikes\n", res.Monitor.Rows(), len(res.Spikes))
			for _, se := range res.Spikes {
				t := float64(se.Step)*float64(cf.Resolution) - float64(se.Offset)
				fmt.Fprintf(cmd.ErrOrStderr(), "spike at step %d, t = %.4f ms\n", se.Step, t)
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output file for the recorded table (default stdout)")
	return cmd
}
