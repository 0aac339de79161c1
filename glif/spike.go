// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package glif

// SpikeEvent is emitted when the membrane potential crosses threshold.
// At most one is emitted per unit per step.
type SpikeEvent struct {

	// nominal event step: the crossing was detected on step Step-1, and the
	// event is stamped at the following step boundary minus Offset
	Step int64

	// sub-step timing offset (ms), in [0, h]: how far before the nominal
	// step boundary the interpolated crossing occurred
	Offset float32
}

// SpikeOffset linearly interpolates the threshold-crossing time within a
// step of size h (ms): the fraction of the step already elapsed at crossing
// is (thr - vOld) / (vNew - vOld), and the returned offset is the remainder
// of the step, (1 - frac) * h.  A flat step (vNew == vOld) would divide by
// zero; it is only reachable with vOld exactly at threshold, and is treated
// as a crossing at the start of the step (offset 0).  The result is clamped
// to [0, h]: vOld exactly at threshold gives h.
func SpikeOffset(vOld, vNew, thr, h float32) float32 {
	dv := vNew - vOld
	if dv <= 0 {
		return 0
	}
	off := (1 - (thr-vOld)/dv) * h
	if off < 0 {
		return 0
	}
	if off > h {
		return h
	}
	return off
}
