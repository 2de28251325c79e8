// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emd

import (
	"fmt"
	"math"
)

// Alternative divergence measures between distributions over the same
// support.  These are not transport distances (KL is not even symmetric)
// but are useful as cheap comparisons and in entropy-based
// approximations.

// L1 returns the total variation distance 0.5 * sum |p - q|.  It is a
// lower bound on the earth mover's distance under Hamming cost.
func L1(p, q []float64) (float64, error) {
	if len(p) != len(q) {
		return 0, fmt.Errorf("%w: got %d and %d", ErrSupport, len(p), len(q))
	}
	d := 0.0
	for i := range p {
		d += math.Abs(p[i] - q[i])
	}
	return 0.5 * d, nil
}

// KLDivergence returns the Kullback-Leibler divergence KL(p || q) in
// bits.  Returns +Inf when q has zero mass where p does not.
func KLDivergence(p, q []float64) (float64, error) {
	if len(p) != len(q) {
		return 0, fmt.Errorf("%w: got %d and %d", ErrSupport, len(p), len(q))
	}
	kl := 0.0
	for i := range p {
		if p[i] <= 0 {
			continue
		}
		if q[i] <= 0 {
			return math.Inf(1), nil
		}
		kl += p[i] * math.Log2(p[i]/q[i])
	}
	return kl, nil
}

// JSDivergence returns the Jensen-Shannon divergence in bits: the
// symmetrized, bounded (<= 1) form of KL against the mixture.
func JSDivergence(p, q []float64) (float64, error) {
	if len(p) != len(q) {
		return 0, fmt.Errorf("%w: got %d and %d", ErrSupport, len(p), len(q))
	}
	m := make([]float64, len(p))
	for i := range p {
		m[i] = 0.5 * (p[i] + q[i])
	}
	kpm, err := KLDivergence(p, m)
	if err != nil {
		return 0, err
	}
	kqm, err := KLDivergence(q, m)
	if err != nil {
		return 0, err
	}
	return 0.5*kpm + 0.5*kqm, nil
}

// EffectiveInformation returns how far the effect distribution sits
// below maximum entropy, in bits: log2(len(p)) - H(p).  A uniform
// effect carries no information about its cause (0 bits); a
// deterministic one carries the full log2(len(p)).
func EffectiveInformation(p []float64) float64 {
	if len(p) == 0 {
		return 0
	}
	return math.Log2(float64(len(p))) - Entropy(p)
}

// Entropy returns the Shannon entropy of p in bits.
func Entropy(p []float64) float64 {
	h := 0.0
	for _, v := range p {
		if v > 0 {
			h -= v * math.Log2(v)
		}
	}
	return h
}
