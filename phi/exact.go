// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phi

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/emer/phi/emd"
	"github.com/goki/ki/ints"
)

// exactPhi runs the exhaustive MIP search for one mechanism: every
// bipartition is scored as cause distance + effect distance between the
// whole and partitioned repertoires, in parallel worker goroutines, and
// the minimum is reduced afterwards with the deterministic tie-break
// (lexicographically smallest A mask within Config.Tol), so the result
// is identical regardless of which worker finishes first.
func (sy *System) exactPhi(mech int) (*PhiResult, error) {
	start := time.Now()
	if err := sy.checkMask("mechanism", mech); err != nil {
		return nil, err
	}
	k := NBits(mech)
	if k > sy.Config.MaxExact {
		return nil, fmt.Errorf("%w: mechanism %s has %d elements, ceiling is %d -- select an approximation method explicitly",
			ErrTooLarge, MaskString(mech), k, sy.Config.MaxExact)
	}
	res := &PhiResult{Mechanism: mech, Method: Exact}
	if k < 2 {
		// single elements have no bipartitions
		res.Time = time.Since(start)
		return res, nil
	}

	wholeCause, err := sy.CauseRepertoire(mech, mech)
	if err != nil {
		return nil, err
	}
	wholeEffect, err := sy.EffectRepertoire(mech, mech)
	if err != nil {
		return nil, err
	}

	parts := Bipartitions(mech)
	neval := len(parts)
	if sy.Config.MaxEvals > 0 && neval > sy.Config.MaxEvals {
		if sy.Config.OnBudget == BudgetError {
			return nil, fmt.Errorf("%w: mechanism %s has %d bipartitions, budget is %d",
				ErrBudget, MaskString(mech), neval, sy.Config.MaxEvals)
		}
		neval = sy.Config.MaxEvals
		res.Partial = true
	}

	phis := make([]float64, neval)
	errs := make([]error, neval)
	eval := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			phis[i], errs[i] = sy.partitionPhi(mech, parts[i], wholeCause, wholeEffect)
		}
	}
	nthr := ints.MinInt(sy.Config.Threads(), neval)
	if nthr <= 1 {
		eval(0, neval)
	} else {
		var wg sync.WaitGroup
		chunk := (neval + nthr - 1) / nthr
		for th := 0; th < nthr; th++ {
			lo := th * chunk
			hi := ints.MinInt(lo+chunk, neval)
			wg.Add(1)
			go func(lo, hi int) {
				eval(lo, hi)
				wg.Done()
			}(lo, hi)
		}
		wg.Wait()
	}
	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}

	// reduce after the join: minimum phi, then smallest A among ties.
	// parts is in ascending A order, so the first within-tolerance
	// candidate wins.
	minPhi := math.Inf(1)
	for _, p := range phis {
		if p < minPhi {
			minPhi = p
		}
	}
	best := -1
	for i, p := range phis {
		if p <= minPhi+sy.Config.Tol {
			best = i
			break
		}
	}
	res.Phi = minPhi
	if res.Phi < sy.Config.Tol {
		res.Phi = 0
	}
	res.MIP = &PartitionInfo{Part: parts[best], Phi: phis[best]}
	res.NParts = neval
	res.Time = time.Since(start)
	return res, nil
}

// partitionPhi scores one bipartition: the summed cause and effect
// distances between the whole repertoires and the partitioned ones.
// Unidirectional cuts evaluate both directions and keep the cheaper;
// bidirectional cuts use the outer-product factorization.
func (sy *System) partitionPhi(mech int, pt Partition, wholeCause, wholeEffect *Repertoire) (float64, error) {
	if sy.Config.CutType == Bidirectional {
		return sy.cutPhiProduct(mech, pt, wholeCause, wholeEffect)
	}
	dab, err := sy.cutPhiDir(mech, pt.A, pt.B, wholeCause, wholeEffect)
	if err != nil {
		return 0, err
	}
	dba, err := sy.cutPhiDir(mech, pt.B, pt.A, wholeCause, wholeEffect)
	if err != nil {
		return 0, err
	}
	return math.Min(dab, dba), nil
}

// cutPhiDir scores one directed cut a -> b over the whole mechanism.
func (sy *System) cutPhiDir(mech, a, b int, wholeCause, wholeEffect *Repertoire) (float64, error) {
	k := NBits(mech)
	cutCause, err := sy.CutRepertoire(Cause, mech, mech, a, b)
	if err != nil {
		return 0, err
	}
	cutEffect, err := sy.CutRepertoire(Effect, mech, mech, a, b)
	if err != nil {
		return 0, err
	}
	dc, err := emd.Distance(wholeCause.Dist.Values, cutCause.Dist.Values, k)
	if err != nil {
		return 0, err
	}
	de, err := emd.Distance(wholeEffect.Dist.Values, cutEffect.Dist.Values, k)
	if err != nil {
		return 0, err
	}
	return dc + de, nil
}

// cutPhiProduct scores a bidirectional cut via the outer product of the
// parts' independent repertoires.
func (sy *System) cutPhiProduct(mech int, pt Partition, wholeCause, wholeEffect *Repertoire) (float64, error) {
	k := NBits(mech)
	partCause, err := sy.PartitionedRepertoire(Cause, pt.A, pt.B)
	if err != nil {
		return 0, err
	}
	partEffect, err := sy.PartitionedRepertoire(Effect, pt.A, pt.B)
	if err != nil {
		return 0, err
	}
	dc, err := emd.Distance(wholeCause.Dist.Values, partCause.Dist.Values, k)
	if err != nil {
		return 0, err
	}
	de, err := emd.Distance(wholeEffect.Dist.Values, partEffect.Dist.Values, k)
	if err != nil {
		return 0, err
	}
	return dc + de, nil
}
