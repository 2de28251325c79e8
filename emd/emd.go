// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package emd computes the earth mover's (optimal transport) distance
between probability distributions over binary joint states, used as the
repertoire distance in integrated-information calculations.

The distance is solved exactly as the transportation linear program with
the Hamming distance between state indices as the ground cost, so it is
symmetric, non-negative, and satisfies the triangle inequality.  States
carrying no mass in either distribution are pruned before the solve.
Near-degenerate inputs that fail to converge are retried once at a
relaxed tolerance before surfacing an error.
*/
package emd

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

var (
	// ErrSupport indicates distributions of different support sizes.
	ErrSupport = errors.New("emd: support size mismatch")

	// ErrNonConvergence indicates the transport solver failed even at
	// the relaxed tolerance.
	ErrNonConvergence = errors.New("emd: transport solver failed to converge")
)

const (
	// SolveTol is the default simplex convergence tolerance.
	SolveTol = 1e-10

	// RelaxedTol is the tolerance for the single retry after a failed
	// solve on near-degenerate input.
	RelaxedTol = 1e-6

	// massEps is the mass below which a state is pruned from the
	// transport problem.
	massEps = 1e-14
)

// Hamming returns the Hamming distance between two joint state indices:
// the number of elements whose binary states differ.
func Hamming(a, b int) float64 {
	return float64(bits.OnesCount(uint(a ^ b)))
}

// Distance returns the earth mover's distance between p and q, two
// probability vectors over the same 2^nbits binary state space, with
// Hamming ground cost.  One retry at RelaxedTol is attempted on solver
// failure before ErrNonConvergence is returned.
func Distance(p, q []float64, nbits int) (float64, error) {
	n := 1 << nbits
	if len(p) != n || len(q) != n {
		return 0, fmt.Errorf("%w: got %d and %d, want %d (2^%d)", ErrSupport, len(p), len(q), n, nbits)
	}
	d, err := solve(p, q, SolveTol)
	if err != nil {
		d, err = solve(p, q, RelaxedTol)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrNonConvergence, err)
		}
	}
	return d, nil
}

func solve(p, q []float64, tol float64) (float64, error) {
	// prune states without mass and renormalize the kept mass so supply
	// and demand balance exactly
	var supIdx, demIdx []int
	var sup, dem []float64
	for i, v := range p {
		if v > massEps {
			supIdx = append(supIdx, i)
			sup = append(sup, v)
		}
	}
	for i, v := range q {
		if v > massEps {
			demIdx = append(demIdx, i)
			dem = append(dem, v)
		}
	}
	if len(sup) == 0 || len(dem) == 0 {
		return 0, nil
	}
	floats.Scale(1/floats.Sum(sup), sup)
	floats.Scale(1/floats.Sum(dem), dem)

	if len(sup) == 1 && len(dem) == 1 {
		return Hamming(supIdx[0], demIdx[0]), nil
	}
	if same(supIdx, demIdx) && floats.EqualApprox(sup, dem, tol) {
		return 0, nil
	}

	// transportation LP: minimize sum c_ij x_ij subject to row sums =
	// supply, column sums = demand, x >= 0.  The last demand constraint
	// is redundant and dropped to keep the constraint matrix full rank.
	ns, nd := len(sup), len(dem)
	nv := ns * nd
	c := make([]float64, nv)
	for i := 0; i < ns; i++ {
		for j := 0; j < nd; j++ {
			c[i*nd+j] = Hamming(supIdx[i], demIdx[j])
		}
	}
	m := ns + nd - 1
	A := mat.NewDense(m, nv, nil)
	b := make([]float64, m)
	for i := 0; i < ns; i++ {
		for j := 0; j < nd; j++ {
			A.Set(i, i*nd+j, 1)
		}
		b[i] = sup[i]
	}
	for j := 0; j < nd-1; j++ {
		for i := 0; i < ns; i++ {
			A.Set(ns+j, i*nd+j, 1)
		}
		b[ns+j] = dem[j]
	}

	opt, _, err := lp.Simplex(c, A, b, tol, nil)
	if err != nil {
		return 0, err
	}
	if opt < 0 {
		if opt < -RelaxedTol {
			return 0, fmt.Errorf("negative transport cost %g", opt)
		}
		opt = 0
	}
	if math.IsNaN(opt) || math.IsInf(opt, 0) {
		return 0, fmt.Errorf("non-finite transport cost %g", opt)
	}
	return opt, nil
}

func same(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
