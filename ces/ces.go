// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ces

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/emer/phi/phi"
)

// Config parameterizes a cause-effect structure build.
type Config struct {
	MinPhi   float64 `def:"0" desc:"concepts with phi at or below this threshold are dropped from the structure"`
	MaxSize  int     `def:"0" desc:"largest mechanism size to consider, 0 = all sizes up to the system size"`
	Parallel bool    `def:"true" desc:"evaluate mechanisms on parallel worker goroutines"`
	NThreads int     `def:"0" desc:"number of worker goroutines when Parallel -- 0 = GOMAXPROCS"`
}

// Defaults sets default values.
func (cf *Config) Defaults() {
	cf.MinPhi = 0
	cf.MaxSize = 0
	cf.Parallel = true
	cf.NThreads = 0
}

// Threads returns the effective worker count.
func (cf *Config) Threads() int {
	if !cf.Parallel {
		return 1
	}
	if cf.NThreads <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return cf.NThreads
}

// Concept is one irreducible mechanism in the structure: its phi, the
// minimum information partition that certifies it, and its cause and
// effect repertoires over the full element set.
type Concept struct {
	Mechanism int                `desc:"element mask of the mechanism"`
	Phi       float64            `desc:"integrated information of the mechanism in bits"`
	MIP       *phi.PartitionInfo `desc:"minimum information partition"`
	Cause     *phi.Repertoire    `desc:"cause repertoire of the mechanism over all elements"`
	Effect    *phi.Repertoire    `desc:"effect repertoire of the mechanism over all elements"`
}

// Size returns the number of elements in the concept's mechanism.
func (co *Concept) Size() int {
	return phi.NBits(co.Mechanism)
}

func (co *Concept) String() string {
	return fmt.Sprintf("mech: %s  phi: %.6g", phi.MaskString(co.Mechanism), co.Phi)
}

// Structure is a system's cause-effect structure: every concept that
// survived the MinPhi filter, in ascending mechanism-mask order.
type Structure struct {
	Concepts []Concept     `desc:"concepts in ascending mechanism-mask order"`
	N        int           `desc:"number of elements of the analyzed system"`
	State    []int         `desc:"system state the structure was computed at"`
	Phi      float64       `desc:"system-level Phi: the maximum concept phi"`
	NMechs   int           `desc:"number of candidate mechanisms evaluated"`
	Time     time.Duration `desc:"wall-clock duration of the build"`
}

// Build computes the cause-effect structure of the system: Phi for
// every candidate mechanism (all nonempty element subsets, up to
// MaxSize elements), keeping those with phi above MinPhi as concepts.
// Mechanisms are evaluated on parallel workers; the result is
// deterministic regardless of worker count.
func Build(sy *phi.System, cfg *Config) (*Structure, error) {
	start := time.Now()
	cf := Config{}
	cf.Defaults()
	if cfg != nil {
		cf = *cfg
	}
	maxSz := cf.MaxSize
	if maxSz <= 0 || maxSz > sy.N {
		maxSz = sy.N
	}
	full := sy.FullMask()
	mechs := make([]int, 0, full)
	for m := 1; m <= full; m++ {
		if phi.NBits(m) <= maxSz {
			mechs = append(mechs, m)
		}
	}

	cos := make([]*Concept, len(mechs))
	errs := make([]error, len(mechs))
	nthr := cf.Threads()
	if nthr > len(mechs) {
		nthr = len(mechs)
	}
	chunk := (len(mechs) + nthr - 1) / nthr
	var wg sync.WaitGroup
	for th := 0; th < nthr; th++ {
		st := th * chunk
		ed := st + chunk
		if ed > len(mechs) {
			ed = len(mechs)
		}
		wg.Add(1)
		go func(st, ed int) {
			defer wg.Done()
			for i := st; i < ed; i++ {
				cos[i], errs[i] = buildConcept(sy, mechs[i], cf.MinPhi)
			}
		}(st, ed)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	st := &Structure{N: sy.N, State: append([]int{}, sy.State...), NMechs: len(mechs)}
	for _, co := range cos {
		if co == nil {
			continue
		}
		st.Concepts = append(st.Concepts, *co)
		if co.Phi > st.Phi {
			st.Phi = co.Phi
		}
	}
	st.Time = time.Since(start)
	return st, nil
}

// buildConcept computes one candidate mechanism, returning nil for
// mechanisms at or below the phi threshold.
func buildConcept(sy *phi.System, mech int, minPhi float64) (*Concept, error) {
	pr, err := sy.CalculatePhiMech(mech)
	if err != nil {
		return nil, fmt.Errorf("mechanism %s: %w", phi.MaskString(mech), err)
	}
	if pr.Phi <= minPhi {
		return nil, nil
	}
	full := sy.FullMask()
	cr, err := sy.CauseRepertoire(mech, full)
	if err != nil {
		return nil, err
	}
	er, err := sy.EffectRepertoire(mech, full)
	if err != nil {
		return nil, err
	}
	return &Concept{Mechanism: mech, Phi: pr.Phi, MIP: pr.MIP, Cause: cr, Effect: er}, nil
}

// SumPhi returns the sum of all concept phis.
func (st *Structure) SumPhi() float64 {
	sum := 0.0
	for i := range st.Concepts {
		sum += st.Concepts[i].Phi
	}
	return sum
}

// Significant returns the concepts with phi strictly above the
// threshold, in structure order.
func (st *Structure) Significant(thr float64) []Concept {
	var cs []Concept
	for _, co := range st.Concepts {
		if co.Phi > thr {
			cs = append(cs, co)
		}
	}
	return cs
}

// BySize returns the concepts whose mechanisms have exactly k elements.
func (st *Structure) BySize(k int) []Concept {
	var cs []Concept
	for _, co := range st.Concepts {
		if co.Size() == k {
			cs = append(cs, co)
		}
	}
	return cs
}

// MaxConcept returns the concept with the highest phi, or nil for an
// empty structure.  Ties go to the smallest mechanism mask.
func (st *Structure) MaxConcept() *Concept {
	var mx *Concept
	for i := range st.Concepts {
		if mx == nil || st.Concepts[i].Phi > mx.Phi {
			mx = &st.Concepts[i]
		}
	}
	return mx
}

// Containing returns the concepts whose mechanism includes the given
// element index.
func (st *Structure) Containing(elem int) []Concept {
	var cs []Concept
	for _, co := range st.Concepts {
		if co.Mechanism&(1<<elem) != 0 {
			cs = append(cs, co)
		}
	}
	return cs
}

// Core returns the k highest-phi concepts (all of them if the
// structure has fewer, none for k <= 0), highest first.  Ties break
// toward the smaller mechanism mask.
func (st *Structure) Core(k int) []Concept {
	if k < 0 {
		k = 0
	}
	cs := append([]Concept{}, st.Concepts...)
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].Phi > cs[j].Phi
	})
	if k < len(cs) {
		cs = cs[:k]
	}
	return cs
}

// Compare returns the Jaccard distance between the two structures'
// concept sets (mechanisms compared by mask): 0 = identical sets,
// 1 = disjoint.  Two empty structures compare as identical.
func (st *Structure) Compare(ot *Structure) float64 {
	ms := map[int]bool{}
	for _, co := range st.Concepts {
		ms[co.Mechanism] = true
	}
	inter, union := 0, len(ms)
	for _, co := range ot.Concepts {
		if ms[co.Mechanism] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return 1 - float64(inter)/float64(union)
}
