// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glif

import (
	"log"
	"strconv"

	"github.com/emer/etable/v2/etable"
	"github.com/emer/etable/v2/etensor"
	"github.com/emer/etable/v2/minmax"
)

// LogPrec is precision for saving float values in logs
const LogPrec = 6

// Monitor records named unit variables once per step into an etable.Table,
// one row per step with a leading Step column, tracking the observed range
// of each variable.  Install on a unit with SetMonitor; the step driver
// records after each step's state update.
type Monitor struct {

	// names of the unit variables to record
	Vars []string

	// recorded data, one row per step
	Table *etable.Table

	// observed range per recorded variable
	Ranges []minmax.F32
}

// NewMonitor returns a monitor recording the given unit variables.
func NewMonitor(vars ...string) *Monitor {
	mn := &Monitor{Vars: vars}
	mn.Config()
	return mn
}

// Config (re)builds the table schema and resets recorded data and ranges.
func (mn *Monitor) Config() {
	mn.Table = &etable.Table{}
	mn.Table.SetMetaData("name", "GlifMonitor")
	mn.Table.SetMetaData("read-only", "true")
	mn.Table.SetMetaData("precision", strconv.Itoa(LogPrec))

	sch := etable.Schema{
		{Name: "Step", Type: etensor.INT64, CellShape: nil, DimNames: nil},
	}
	for _, vr := range mn.Vars {
		sch = append(sch, etable.Column{Name: vr, Type: etensor.FLOAT64, CellShape: nil, DimNames: nil})
	}
	mn.Table.SetFromSchema(sch, 0)

	mn.Ranges = make([]minmax.F32, len(mn.Vars))
	for i := range mn.Ranges {
		mn.Ranges[i].SetInfinity()
	}
}

// Rows returns the number of recorded steps.
func (mn *Monitor) Rows() int {
	if mn.Table == nil {
		return 0
	}
	return mn.Table.Rows
}

// Record appends one row for the given step, reading each configured
// variable from the unit.  Unknown variable names record as 0 and are
// logged once via the unit's error return.
func (mn *Monitor) Record(u Unit, step int64) {
	row := mn.Table.Rows
	mn.Table.SetNumRows(row + 1)
	mn.Table.SetCellFloat("Step", row, float64(step))
	for i, vr := range mn.Vars {
		val, err := u.UnitVarByName(vr)
		if err != nil {
			if row == 0 {
				log.Println(err)
			}
			val = 0
		}
		mn.Table.SetCellFloat(vr, row, float64(val))
		mn.Ranges[i].FitValInRange(val)
	}
}
