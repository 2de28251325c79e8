// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phi

import "errors"

// Error kinds returned by the engine.  All returned errors wrap one of
// these sentinels, so callers can test with errors.Is, and carry the
// offending dimension or value in their message.
var (
	// ErrDimension indicates a shape mismatch: zero elements, a TPM or
	// connectivity matrix whose shape does not match the element count,
	// or an empty / out-of-range mechanism or purview mask.
	ErrDimension = errors.New("phi: dimension error")

	// ErrNonStochastic indicates a TPM row that does not sum to 1
	// within tolerance, or a negative probability entry.
	ErrNonStochastic = errors.New("phi: non-stochastic transition row")

	// ErrTooLarge indicates an exact search request on a mechanism
	// above the configured element-count ceiling (Config.MaxExact).
	// The request is refused up front; select an approximation method
	// explicitly instead.
	ErrTooLarge = errors.New("phi: mechanism too large for exact search")

	// ErrBudget indicates the bipartition-evaluation budget
	// (Config.MaxEvals) was exhausted under the BudgetError policy.
	ErrBudget = errors.New("phi: bipartition evaluation budget exhausted")

	// ErrMethod indicates an unrecognized calculation method.
	ErrMethod = errors.New("phi: unknown calculation method")
)
