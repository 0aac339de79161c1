// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// glifrun simulates a single GLIF neuron from a yaml run configuration,
// writing the recorded variables as a tab-separated table and optionally
// plotting the voltage trace.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "glifrun",
		Short: "Single-neuron GLIF model simulator",
		Long: `glifrun steps a generalized leaky integrate and fire (GLIF) neuron
through a configured drive protocol.

The run configuration selects one of the model variants (lif, lif_r,
lif_psc, lif_asc_psc), its parameters, the step resolution, and the
current and spike drives to deliver.`,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newPlotCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("glifrun version %s\n", version)
		},
	}
}
