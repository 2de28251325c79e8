// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phi

import (
	"fmt"
	"math"
	"time"

	"github.com/emer/etable/v2/etensor"
	"github.com/emer/phi/emd"
	"gonum.org/v1/gonum/mat"
)

// Polynomial-time approximations of Phi.  Each is an explicit,
// caller-selected substitute for the exact search -- there is no
// automatic fallback in either direction.  See Methods.Info for each
// method's operating range and expected accuracy.

// geometricPhi approximates Phi from connectivity alone: the Fiedler
// vector (second-smallest eigenvector) of the symmetrized graph
// Laplacian over the mechanism's elements splits them into the spectral
// bipartition, and Phi is the cut weight normalized by the product of
// the two volumes.  Tracks the exact value well for sparse, modular
// connectivity; weak for dense or adversarial structure.
func (sy *System) geometricPhi(mech int) (*PhiResult, error) {
	start := time.Now()
	if err := sy.checkMask("mechanism", mech); err != nil {
		return nil, err
	}
	res := &PhiResult{Mechanism: mech, Method: Geometric}
	k := NBits(mech)
	if k < 2 {
		res.Time = time.Since(start)
		return res, nil
	}
	elems := make([]int, 0, k)
	for m := mech; m != 0; m &= m - 1 {
		elems = append(elems, LowBitIndex(m))
	}

	// symmetrized weights: 1 for a reciprocal pair, 0.5 for a single
	// direction, self-connections ignored
	w := mat.NewSymDense(k, nil)
	for a := 0; a < k; a++ {
		for b := a + 1; b < k; b++ {
			i, j := elems[a], elems[b]
			wt := 0.0
			if sy.srcs[j]&(1<<i) != 0 {
				wt += 0.5
			}
			if sy.srcs[i]&(1<<j) != 0 {
				wt += 0.5
			}
			w.SetSym(a, b, wt)
		}
	}
	lap := mat.NewSymDense(k, nil)
	deg := make([]float64, k)
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			if b != a {
				deg[a] += w.At(a, b)
			}
		}
	}
	for a := 0; a < k; a++ {
		lap.SetSym(a, a, deg[a])
		for b := a + 1; b < k; b++ {
			lap.SetSym(a, b, -w.At(a, b))
		}
	}

	var es mat.EigenSym
	if !es.Factorize(lap, true) {
		return nil, fmt.Errorf("%w: Laplacian eigendecomposition failed for mechanism %s", emd.ErrNonConvergence, MaskString(mech))
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)
	// eigenvalues ascending: column 1 is the Fiedler vector
	aMask, bMask := 0, 0
	for a := 0; a < k; a++ {
		if vecs.At(a, 1) >= 0 {
			aMask |= 1 << elems[a]
		} else {
			bMask |= 1 << elems[a]
		}
	}
	if aMask == 0 || bMask == 0 {
		res.Time = time.Since(start)
		return res, nil
	}
	cut, volA, volB := 0.0, 0.0, 0.0
	for a := 0; a < k; a++ {
		if aMask&(1<<elems[a]) != 0 {
			volA += deg[a]
		} else {
			volB += deg[a]
		}
		for b := a + 1; b < k; b++ {
			if (aMask>>elems[a])&1 != (aMask>>elems[b])&1 {
				cut += w.At(a, b)
			}
		}
	}
	if volA > 0 && volB > 0 {
		res.Phi = cut / (volA * volB)
	}
	res.MIP = &PartitionInfo{Part: canonPartition(aMask, bMask), Phi: res.Phi}
	res.Time = time.Since(start)
	return res, nil
}

// spectralPhi approximates Phi as the negentropy of the eigenvalue
// spectrum of the mechanism's reduced transition matrix: log2 of the
// state count minus the entropy of the normalized eigenvalue moduli.
// Captures global mixing but ignores fine causal structure.
func (sy *System) spectralPhi(mech int) (*PhiResult, error) {
	start := time.Now()
	if err := sy.checkMask("mechanism", mech); err != nil {
		return nil, err
	}
	res := &PhiResult{Mechanism: mech, Method: Spectral}
	if NBits(mech) < 2 {
		res.Time = time.Since(start)
		return res, nil
	}
	tm := sy.ReducedTPM(mech)
	n := tm.Dim(0)
	var eig mat.Eigen
	if !eig.Factorize(mat.NewDense(n, n, tm.Values), mat.EigenNone) {
		return nil, fmt.Errorf("%w: eigendecomposition failed for mechanism %s", emd.ErrNonConvergence, MaskString(mech))
	}
	vals := eig.Values(nil)
	mod := make([]float64, len(vals))
	tot := 0.0
	for i, v := range vals {
		mod[i] = cmplxAbs(v)
		tot += mod[i]
	}
	if tot > 0 {
		for i := range mod {
			mod[i] /= tot
		}
		res.Phi = math.Log2(float64(n)) - emd.Entropy(mod)
		if res.Phi < 0 {
			res.Phi = 0
		}
	}
	res.Time = time.Since(start)
	return res, nil
}

// meanFieldPhi approximates Phi as the total correlation of the
// mechanism's one-step state distribution: the sum of per-element
// marginal entropies minus the joint entropy.  Fastest method, least
// accurate for strongly coupled systems.
func (sy *System) meanFieldPhi(mech int) (*PhiResult, error) {
	start := time.Now()
	if err := sy.checkMask("mechanism", mech); err != nil {
		return nil, err
	}
	res := &PhiResult{Mechanism: mech, Method: MeanField}
	k := NBits(mech)
	if k < 2 {
		res.Time = time.Since(start)
		return res, nil
	}
	dm := sy.oneStepDist(mech)
	hsum := 0.0
	for b := 0; b < k; b++ {
		m1 := 0.0
		for p, v := range dm {
			if p&(1<<b) != 0 {
				m1 += v
			}
		}
		hsum += binaryEntropy(m1)
	}
	res.Phi = hsum - emd.Entropy(dm)
	if res.Phi < 0 {
		res.Phi = 0
	}
	res.Time = time.Since(start)
	return res, nil
}

// mutualInfoPhi is the simplified bipartition measure: the minimum over
// bipartitions of the mutual information I(A;B) in the mechanism's
// one-step state distribution.  This is a distinct mode, not the
// cause+effect distance of the exact search; the two are not
// equivalent and are never mixed.
func (sy *System) mutualInfoPhi(mech int) (*PhiResult, error) {
	start := time.Now()
	if err := sy.checkMask("mechanism", mech); err != nil {
		return nil, err
	}
	res := &PhiResult{Mechanism: mech, Method: MutualInfo}
	k := NBits(mech)
	if k < 2 {
		res.Time = time.Since(start)
		return res, nil
	}
	dm := sy.oneStepDist(mech)
	hJoint := emd.Entropy(dm)
	local := (1 << k) - 1
	parts := Bipartitions(local)
	minMI := math.Inf(1)
	var minPart Partition
	for _, pt := range parts {
		mi := margEntropy(dm, pt.A) + margEntropy(dm, pt.B) - hJoint
		if mi < minMI-sy.Config.Tol {
			minMI = mi
			minPart = pt
		}
	}
	if minMI < 0 {
		minMI = 0
	}
	res.Phi = minMI
	// bipartition masks are over local bits 0..k-1, which are also the
	// dense indices into mech
	res.MIP = &PartitionInfo{
		Part: Partition{A: ExpandBits(minPart.A, mech), B: ExpandBits(minPart.B, mech)},
		Phi:  minMI,
	}
	res.NParts = len(parts)
	res.Time = time.Since(start)
	return res, nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  Shared derivations

// ReducedTPM returns the [2^k, 2^k] transition matrix over the
// mechanism's own joint states, with every element outside the
// mechanism held at maximum entropy.  For the full element set this
// reproduces the per-element form of the input TPM.
func (sy *System) ReducedTPM(mech int) *etensor.Float64 {
	ns := sy.NStates()
	full := sy.FullMask()
	k := NBits(mech)
	kn := 1 << k
	// p1[j][p]: P(next_j = 1 | mechanism state p, rest maximum entropy)
	p1 := make([][]float64, k)
	vec := make([]float64, ns)
	ji := 0
	for m := mech; m != 0; m &= m - 1 {
		j := LowBitIndex(m)
		copy(vec, sy.pe.Values[j*ns:(j+1)*ns])
		avgBits(vec, full&^(mech&sy.srcs[j]))
		p1[ji] = make([]float64, kn)
		for p := 0; p < kn; p++ {
			p1[ji][p] = vec[ExpandBits(p, mech)]
		}
		ji++
	}
	tm := etensor.NewFloat64([]int{kn, kn}, nil, []string{"Cur", "Next"})
	for p := 0; p < kn; p++ {
		for pn := 0; pn < kn; pn++ {
			v := 1.0
			for b := 0; b < k; b++ {
				if pn&(1<<b) != 0 {
					v *= p1[b][p]
				} else {
					v *= 1 - p1[b][p]
				}
			}
			tm.Values[p*kn+pn] = v
		}
	}
	return tm
}

// oneStepDist returns the mechanism's one-step state distribution: the
// distribution over the mechanism's next joint states from a
// maximum-entropy current state (column means of the reduced TPM).
func (sy *System) oneStepDist(mech int) []float64 {
	tm := sy.ReducedTPM(mech)
	kn := tm.Dim(0)
	dm := make([]float64, kn)
	for p := 0; p < kn; p++ {
		for pn := 0; pn < kn; pn++ {
			dm[pn] += tm.Values[p*kn+pn]
		}
	}
	for pn := range dm {
		dm[pn] /= float64(kn)
	}
	return dm
}

// margEntropy returns the entropy in bits of dm marginalized onto the
// local element mask keep.
func margEntropy(dm []float64, keep int) float64 {
	mg := make([]float64, 1<<NBits(keep))
	for p, v := range dm {
		mg[CompressBits(p, keep)] += v
	}
	return emd.Entropy(mg)
}

func binaryEntropy(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return -p*math.Log2(p) - (1-p)*math.Log2(1-p)
}

func cmplxAbs(v complex128) float64 {
	return math.Hypot(real(v), imag(v))
}

// canonPartition orders a bipartition so A holds the lowest element.
func canonPartition(a, b int) Partition {
	if LowBit(a|b)&a != 0 {
		return Partition{A: a, B: b}
	}
	return Partition{A: b, B: a}
}
