// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package glif is the overall repository for the generalized leaky
integrate-and-fire (GLIF) point-neuron models implemented in the Go language
(golang), after the Allen Institute GLIF model series (Teeter et al. 2018).

This top-level of the repository has no functional code -- everything is
organized into the following sub-repositories:

* glif: the neuron models themselves -- LIF (GLIF model 1), LIFR (model 2,
biologically-defined reset rules), LIFPSC (model 1 with alpha-shaped
post-synaptic currents over multiple receptor ports), and LIFASCPSC (model 3,
adding after-spike currents) -- along with parameters, refractory and
threshold handling, the per-step update drivers, and variable recording.

* propagator: exact one-step solution coefficients for the linear membrane
and alpha-synapse ODE systems, including the cancellation-safe evaluation
near the tau_syn == tau_m singularity.

* alphasyn: the per-receptor alpha-shaped post-synaptic current filter,
built on the propagator coefficients.

* ringbuf: delay-indexed accumulation buffers carrying incoming spike
weights and currents to the step at which they take effect.

* cmd/glifrun: a runnable command-line driver for single-unit simulations,
configured from YAML files, recording voltage traces to tabular output and
optional plots.
*/
package glif
