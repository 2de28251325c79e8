// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package phi is the overall repository for integrated-information (Phi)
analysis of discrete dynamical systems, implemented in the Go language
(golang).

This top-level of the repository has no functional code -- everything is
organized into the following sub-repositories:

* phi: the core engine -- the immutable System model (state, transition
probability matrix, connectivity), cause and effect repertoire computation,
the bounded concurrent repertoire cache, bipartition enumeration, the exact
minimum-information-partition (MIP) search, and the polynomial-time
approximation methods (Geometric, Spectral, MeanField, MutualInfo).

* emd: the earth mover's (optimal transport) distance between probability
distributions over binary state spaces, solved as a transportation linear
program, plus the L1 / KL / JS divergence measures.

* ces: the cause-effect structure builder, which computes Phi for every
candidate mechanism of a System and assembles the resulting set of concepts,
with summary statistics and tabular export.

* examples: runnable programs demonstrating the engine on small gate
networks -- examples/basic is the place to start.
*/
package phi
