// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package phi computes integrated information (Phi) for discrete dynamical
systems: binary elements, a row-stochastic transition probability matrix
(TPM) over joint states, and an element-level connectivity mask.

The System is an immutable container constructed once per analysis.  From
it the engine derives cause and effect repertoires (probability
distributions over subsets of elements, constrained by the mechanism's
current state), enumerates bipartitions of a mechanism, and finds the
Minimum Information Partition (MIP): the bipartition whose partitioned
repertoires are closest (in earth mover's distance) to the whole ones.
Phi is that minimum distance, and is 0 exactly when some partition
reproduces the whole repertoires, i.e., the mechanism is reducible.

Joint states are integer bitmasks: bit i of a state index holds the state
of element i.  Mechanisms, purviews and partition parts are likewise
bitmasks, so subset and partition enumeration is iterative integer
arithmetic, which parallelizes cleanly.

The exact search is exponential and refuses mechanisms larger than
Config.MaxExact.  Polynomial-time approximations (Geometric, Spectral,
MeanField, MutualInfo) are selected explicitly through Config.Method --
there is never an implicit fallback from one method to another.  See
Methods.Info for each method's operating range and accuracy.

All transition probabilities are treated per-element: the engine derives
P(next_j = 1 | current state) tables from the joint TPM and assumes
next-state elements are conditionally independent given the current joint
state (the standard state-by-node form).  The joint matrix remains the
input contract.
*/
package phi
