// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phi

import (
	"fmt"
	"math"

	"github.com/emer/etable/v2/etensor"
	"gonum.org/v1/gonum/floats"
)

// Repertoire is a probability distribution over the joint states of a
// purview (a subset of elements), tagged as constraining past (Cause) or
// future (Effect) states.  Dist is indexed densely over the purview's
// elements: bit k of the index is the state of the k-th lowest element in
// the purview mask (see CompressBits).  Repertoires returned by a System
// may be shared through the cache and must not be modified.
type Repertoire struct {
	Dist    *etensor.Float64 `desc:"probability over the 2^k purview states, sums to 1"`
	Purview int              `desc:"bitmask of the purview elements"`
	Dir     Directions       `desc:"cause or effect"`
}

// NewRepertoire returns a zeroed repertoire over the given purview.
func NewRepertoire(purview int, dir Directions) *Repertoire {
	k := NBits(purview)
	return &Repertoire{
		Dist:    etensor.NewFloat64([]int{1 << k}, nil, []string{"State"}),
		Purview: purview,
		Dir:     dir,
	}
}

// UniformRepertoire returns the maximum-entropy repertoire over the
// purview: every joint state equally likely.
func UniformRepertoire(purview int, dir Directions) *Repertoire {
	rp := NewRepertoire(purview, dir)
	p := 1.0 / float64(len(rp.Dist.Values))
	for i := range rp.Dist.Values {
		rp.Dist.Values[i] = p
	}
	return rp
}

// NStates returns the number of joint states of the purview.
func (rp *Repertoire) NStates() int {
	return len(rp.Dist.Values)
}

// NElems returns the number of elements in the purview.
func (rp *Repertoire) NElems() int {
	return NBits(rp.Purview)
}

// Entropy returns the Shannon entropy of the distribution in bits.
func (rp *Repertoire) Entropy() float64 {
	h := 0.0
	for _, p := range rp.Dist.Values {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}

// Marginalize sums the distribution onto the elements in keep, which
// must be a non-empty subset of the purview.
func (rp *Repertoire) Marginalize(keep int) (*Repertoire, error) {
	if keep == 0 {
		return nil, fmt.Errorf("%w: cannot marginalize onto an empty purview", ErrDimension)
	}
	if keep&^rp.Purview != 0 {
		return nil, fmt.Errorf("%w: elements %s not in purview %s", ErrDimension, MaskString(keep&^rp.Purview), MaskString(rp.Purview))
	}
	mg := NewRepertoire(keep, rp.Dir)
	for p, v := range rp.Dist.Values {
		s := ExpandBits(p, rp.Purview)
		mg.Dist.Values[CompressBits(s, keep)] += v
	}
	return mg, nil
}

// Product returns the outer-product repertoire of two repertoires over
// disjoint purviews: the joint distribution under the hypothesis that
// the two parts are independent.  This is the partitioned repertoire of
// a bidirectional cut.
func Product(ra, rb *Repertoire) (*Repertoire, error) {
	if ra.Purview&rb.Purview != 0 {
		return nil, fmt.Errorf("%w: product purviews overlap on %s", ErrDimension, MaskString(ra.Purview&rb.Purview))
	}
	if ra.Dir != rb.Dir {
		return nil, fmt.Errorf("%w: product of cause and effect repertoires", ErrDimension)
	}
	ab := ra.Purview | rb.Purview
	pr := NewRepertoire(ab, ra.Dir)
	for p := range pr.Dist.Values {
		s := ExpandBits(p, ab)
		pr.Dist.Values[p] = ra.Dist.Values[CompressBits(s, ra.Purview)] * rb.Dist.Values[CompressBits(s, rb.Purview)]
	}
	return pr, nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  Repertoire engine

// CauseRepertoire returns the cause repertoire of the mechanism over the
// purview: the distribution over the purview's past states obtained by
// Bayes inversion of the transition model with a maximum-entropy prior,
// conditioned on the mechanism's current state.  Memoized through the
// System's cache.
func (sy *System) CauseRepertoire(mech, purview int) (*Repertoire, error) {
	return sy.repertoire(Cause, mech, purview, 0, 0)
}

// EffectRepertoire returns the effect repertoire of the mechanism over
// the purview: the distribution over the purview's next states with the
// mechanism fixed at its current state and all other elements maximum
// entropy.  Memoized through the System's cache.
func (sy *System) EffectRepertoire(mech, purview int) (*Repertoire, error) {
	return sy.repertoire(Effect, mech, purview, 0, 0)
}

// RepertoireOf returns the cause or effect repertoire per dir.
func (sy *System) RepertoireOf(dir Directions, mech, purview int) (*Repertoire, error) {
	return sy.repertoire(dir, mech, purview, 0, 0)
}

// CutRepertoire returns the repertoire computed with the directed cut
// cutA -> cutB applied: every input from an element of cutA to an
// element of cutB is replaced by maximum-entropy noise before the
// repertoire is derived.  A zero cut returns the whole repertoire.
func (sy *System) CutRepertoire(dir Directions, mech, purview, cutA, cutB int) (*Repertoire, error) {
	return sy.repertoire(dir, mech, purview, cutA, cutB)
}

// PartitionedRepertoire returns the outer product of the two parts'
// independent repertoires, each part serving as both mechanism and
// purview: the "if the partition held" hypothesis of a bidirectional
// cut.  a and b must be disjoint and non-empty.
func (sy *System) PartitionedRepertoire(dir Directions, a, b int) (*Repertoire, error) {
	ra, err := sy.repertoire(dir, a, a, 0, 0)
	if err != nil {
		return nil, err
	}
	rb, err := sy.repertoire(dir, b, b, 0, 0)
	if err != nil {
		return nil, err
	}
	return Product(ra, rb)
}

func (sy *System) checkMask(name string, mask int) error {
	if mask == 0 {
		return fmt.Errorf("%w: empty %s", ErrDimension, name)
	}
	if mask&^sy.FullMask() != 0 {
		return fmt.Errorf("%w: %s %s exceeds the %d-element system", ErrDimension, name, MaskString(mask), sy.N)
	}
	return nil
}

func (sy *System) repertoire(dir Directions, mech, purview, cutA, cutB int) (*Repertoire, error) {
	if err := sy.checkMask("mechanism", mech); err != nil {
		return nil, err
	}
	if err := sy.checkMask("purview", purview); err != nil {
		return nil, err
	}
	key := cacheKey{Dir: dir, Mech: mech, Purview: purview, State: sy.stateIdx, CutA: cutA, CutB: cutB}
	if rp, ok := sy.cache.Get(key); ok {
		return rp, nil
	}
	var rp *Repertoire
	if dir == Effect {
		rp = sy.effectImpl(mech, purview, cutA, cutB)
	} else {
		rp = sy.causeImpl(mech, purview, cutA, cutB)
	}
	sy.cache.Add(key, rp)
	return rp, nil
}

// effectImpl computes the effect repertoire directly: each purview
// element's next-state probability is its conditional table averaged
// over every current state consistent with the mechanism's state on the
// element's intact inputs, then the repertoire is the product over
// purview elements (next states are conditionally independent given the
// current joint state).
func (sy *System) effectImpl(mech, purview, cutA, cutB int) *Repertoire {
	ns := sy.NStates()
	full := sy.FullMask()
	k := NBits(purview)
	p1 := make([]float64, k)
	vec := make([]float64, ns)
	ji := 0
	for pm := purview; pm != 0; pm &= pm - 1 {
		j := LowBitIndex(pm)
		copy(vec, sy.pe.Values[j*ns:(j+1)*ns])
		fixed := mech & sy.srcs[j]
		if cutB&(1<<j) != 0 {
			fixed &^= cutA
		}
		avgBits(vec, full&^fixed)
		p1[ji] = vec[sy.stateIdx]
		ji++
	}
	rp := NewRepertoire(purview, Effect)
	for p := range rp.Dist.Values {
		v := 1.0
		for b := 0; b < k; b++ {
			if p&(1<<b) != 0 {
				v *= p1[b]
			} else {
				v *= 1 - p1[b]
			}
		}
		rp.Dist.Values[p] = v
	}
	return rp
}

// causeImpl computes the cause repertoire by Bayes inversion: the
// likelihood of the mechanism's current state is accumulated over every
// past joint state (maximum-entropy prior), marginalized onto the
// purview, and normalized.  If the current mechanism state has zero
// probability under every past state, the repertoire carries no
// information and the maximum-entropy distribution is returned.
func (sy *System) causeImpl(mech, purview, cutA, cutB int) *Repertoire {
	ns := sy.NStates()
	full := sy.FullMask()
	w := make([]float64, ns)
	for u := range w {
		w[u] = 1
	}
	lj := make([]float64, ns)
	for mm := mech; mm != 0; mm &= mm - 1 {
		j := LowBitIndex(mm)
		pv := sy.pe.Values[j*ns : (j+1)*ns]
		if sy.State[j] == 1 {
			copy(lj, pv)
		} else {
			for u := range lj {
				lj[u] = 1 - pv[u]
			}
		}
		// inputs outside the connectivity mask carry no influence;
		// cut inputs are noisified the same way
		noise := full &^ sy.srcs[j]
		if cutB&(1<<j) != 0 {
			noise |= cutA & sy.srcs[j]
		}
		avgBits(lj, noise)
		for u := range w {
			w[u] *= lj[u]
		}
	}
	rp := NewRepertoire(purview, Cause)
	for u, v := range w {
		rp.Dist.Values[CompressBits(u, purview)] += v
	}
	sum := floats.Sum(rp.Dist.Values)
	if sum <= 0 {
		return UniformRepertoire(purview, Cause)
	}
	floats.Scale(1/sum, rp.Dist.Values)
	return rp
}
