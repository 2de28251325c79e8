// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phi

import (
	"runtime"

	"github.com/goki/ki/kit"
)

// Config parameterizes a Phi computation.  It is part of the System and
// is read-only once the System is built.
type Config struct {
	Method   Methods        `desc:"calculation method -- Exact or one of the approximations, selected explicitly, never by fallback"`
	CutType  CutTypes       `desc:"how a bipartition severs the mechanism -- Unidirectional evaluates both cut directions and takes the cheaper one, Bidirectional severs both at once (outer-product factorization)"`
	MaxExact int            `def:"15" desc:"element-count ceiling for the exact search -- exact requests on larger mechanisms are refused with ErrTooLarge, not attempted"`
	MaxEvals int            `def:"0" desc:"bipartition evaluation budget for one mechanism, 0 = unlimited -- on exhaustion OnBudget decides between a partial result and an error"`
	OnBudget BudgetPolicies `desc:"policy when MaxEvals is exhausted: BudgetError fails, BudgetPartial returns the best partition found over the evaluated prefix, tagged Partial"`
	Parallel bool           `def:"true" desc:"evaluate bipartitions (and mechanisms, in ces) on parallel worker goroutines"`
	NThreads int            `def:"0" desc:"number of worker goroutines when Parallel -- 0 = GOMAXPROCS"`
	CacheSize int           `def:"4096" desc:"capacity of the repertoire cache in entries -- 0 disables caching entirely (results are identical either way)"`
	Tol      float64        `def:"1e-9" desc:"numerical tolerance for the MIP tie-break and for treating distances as zero"`
}

// Defaults sets default values.
func (cf *Config) Defaults() {
	cf.Method = Exact
	cf.CutType = Unidirectional
	cf.MaxExact = 15
	cf.MaxEvals = 0
	cf.OnBudget = BudgetError
	cf.Parallel = true
	cf.NThreads = 0
	cf.CacheSize = 4096
	cf.Tol = 1e-9
}

// Update is called after any config change.
func (cf *Config) Update() {
	if cf.Tol <= 0 {
		cf.Tol = 1e-9
	}
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

//////////////////////////////////////////////////////////////////////////////////////
//  Enums

// Methods are the Phi calculation methods.  The set is closed: every
// method implements the same calculate contract and the caller selects
// one explicitly in Config.
type Methods int

//go:generate stringer -type=Methods

var KiT_Methods = kit.Enums.AddEnum(MethodsN, kit.NotBitFlag, nil)

func (ev Methods) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Methods) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Exact is the exhaustive bipartition search.  Exponential: only
	// valid up to Config.MaxExact elements per mechanism.
	Exact Methods = iota

	// Geometric partitions elements by the sign of the Fiedler vector
	// of the connectivity Laplacian and scores the resulting cut.
	Geometric

	// Spectral measures the negentropy of the transition matrix
	// eigenvalue spectrum.
	Spectral

	// MeanField is the total correlation of the one-step state
	// distribution: sum of element marginal entropies minus the joint
	// entropy.
	MeanField

	// MutualInfo is the simplified bipartition measure min over
	// bipartitions of I(A;B) in the one-step state distribution.  It is
	// NOT equivalent to the exact cause+effect distance and is kept as
	// a distinct, separately labeled mode.
	MutualInfo

	MethodsN
)

// Info describes a method's documented operating range and accuracy, so
// callers can make an informed, explicit choice.
type Info struct {
	Name string `desc:"method name"`
	MaxN int    `desc:"maximum practical number of elements per mechanism"`
	Cost string `desc:"asymptotic cost in the mechanism size k and system size n"`
	Err  string `desc:"expected accuracy relative to the exact search"`
}

// Info returns the documented operating range and expected accuracy of
// the method.
func (m Methods) Info() Info {
	switch m {
	case Exact:
		return Info{"Exact", 15, "O(2^(k-1)) partitions x O(4^k) per distance", "exact by definition"}
	case Geometric:
		return Info{"Geometric", 100, "O(n^3) eigendecomposition of the n x n Laplacian", "tracks exact Phi well for sparse, modular connectivity; weak for dense or adversarial structure"}
	case Spectral:
		return Info{"Spectral", 12, "O(8^k) eigendecomposition of the 2^k x 2^k reduced TPM", "captures global mixing; ignores fine causal structure"}
	case MeanField:
		return Info{"MeanField", 20, "O(4^n) pass over the TPM, then O(2^k) per mechanism", "fastest; least accurate for strongly coupled systems"}
	case MutualInfo:
		return Info{"MutualInfo", 20, "O(2^(k-1)) partitions x O(2^k) entropy sums", "information-theoretic lower-bound style proxy; not the cause+effect distance"}
	}
	return Info{}
}

// Directions tags a repertoire as constraining past (Cause) or future
// (Effect) states.
type Directions int

//go:generate stringer -type=Directions

var KiT_Directions = kit.Enums.AddEnum(DirectionsN, kit.NotBitFlag, nil)

func (ev Directions) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Directions) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Cause repertoires constrain past states via Bayes inversion.
	Cause Directions = iota

	// Effect repertoires constrain future states via forward
	// marginalization.
	Effect

	DirectionsN
)

// CutTypes are the ways a bipartition severs cross-partition
// connections.
type CutTypes int

//go:generate stringer -type=CutTypes

var KiT_CutTypes = kit.Enums.AddEnum(CutTypesN, kit.NotBitFlag, nil)

func (ev CutTypes) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *CutTypes) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Unidirectional severs connections in one direction only (A to B),
	// evaluates both directions, and scores the partition by the
	// cheaper one.  This is the default: it is what makes feed-forward
	// structures fully reducible (Phi = 0).
	Unidirectional CutTypes = iota

	// Bidirectional severs both directions at once, which factorizes
	// the partitioned repertoire into the outer product of the two
	// parts' independent repertoires.
	Bidirectional

	CutTypesN
)

// BudgetPolicies decide what happens when the bipartition evaluation
// budget is exhausted.
type BudgetPolicies int

//go:generate stringer -type=BudgetPolicies

var KiT_BudgetPolicies = kit.Enums.AddEnum(BudgetPoliciesN, kit.NotBitFlag, nil)

func (ev BudgetPolicies) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *BudgetPolicies) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// BudgetError surfaces ErrBudget with no result.
	BudgetError BudgetPolicies = iota

	// BudgetPartial returns the minimum over the evaluated prefix of
	// partitions, with PhiResult.Partial = true.
	BudgetPartial

	BudgetPoliciesN
)
