// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/emer/glif/glif"
)

// PlotVar renders one recorded variable against time into a plot.
func PlotVar(res *RunResult, resolution float32, vnm string) (*plot.Plot, error) {
	tbl := res.Monitor.Table
	ci := tbl.ColIdx(vnm)
	if ci < 0 {
		return nil, fmt.Errorf("%w: variable %q not recorded", glif.ErrConfig, vnm)
	}
	pts := make(plotter.XYs, tbl.Rows)
	for row := 0; row < tbl.Rows; row++ {
		pts[row].X = tbl.CellFloat("Step", row) * float64(resolution)
		pts[row].Y = tbl.CellFloat(vnm, row)
	}
	p := plot.New()
	p.Title.Text = vnm
	p.X.Label.Text = "t (ms)"
	p.Y.Label.Text = vnm
	ln, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	p.Add(plotter.NewGrid(), ln)
	return p, nil
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot <config.yaml>",
		Short: "Simulate a configured neuron and plot a recorded variable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFnm, _ := cmd.Flags().GetString("output")
			vnm, _ := cmd.Flags().GetString("var")
			cf, err := LoadConfig(args[0])
			if err != nil {
				return err
			}
			res, err := Simulate(cf)
			if err != nil {
				return err
			}
			p, err := PlotVar(res, cf.Resolution, vnm)
			if err != nil {
				return err
			}
			if err := p.Save(8*vg.Inch, 4*vg.Inch, outFnm); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", outFnm)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "glif.png", "Output image file (png, pdf, svg by extension)")
	cmd.Flags().StringP("var", "v", "Vm", "Recorded variable to plot")
	return cmd
}
