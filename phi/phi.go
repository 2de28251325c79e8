// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phi

import (
	"fmt"
	"time"
)

// PhiResult is the outcome of one integration computation for one
// mechanism.  Phi is 0 and MIP is nil for mechanisms that cannot be
// partitioned (fewer than two elements) or that are reducible.
type PhiResult struct {
	Phi       float64        `desc:"integrated information in bits (0 = fully reducible)"`
	MIP       *PartitionInfo `desc:"minimum information partition, nil when no partition was searched"`
	Mechanism int            `desc:"element mask this result was computed for"`
	Method    Methods        `desc:"method that produced this result"`
	NParts    int            `desc:"number of partitions actually evaluated"`
	Partial   bool           `desc:"true when the evaluation budget was exhausted and the result covers only a prefix of the partition space"`
	Time      time.Duration  `desc:"wall-clock duration of the computation"`
}

func (pr *PhiResult) String() string {
	s := fmt.Sprintf("Phi: %.6g  mech: %s  method: %d  parts: %d", pr.Phi, MaskString(pr.Mechanism), pr.Method, pr.NParts)
	if pr.Partial {
		s += "  (partial)"
	}
	return s
}

// CalculatePhi computes Phi for the whole system (all elements as the
// mechanism) using the configured method.
func (sy *System) CalculatePhi() (*PhiResult, error) {
	return sy.CalculatePhiMech(sy.FullMask())
}

// CalculatePhiMech computes Phi for the given mechanism mask using the
// configured method.  The method is honored exactly: no method ever
// silently substitutes for another.
func (sy *System) CalculatePhiMech(mech int) (*PhiResult, error) {
	switch sy.Config.Method {
	case Exact:
		return sy.exactPhi(mech)
	case Geometric:
		return sy.geometricPhi(mech)
	case Spectral:
		return sy.spectralPhi(mech)
	case MeanField:
		return sy.meanFieldPhi(mech)
	case MutualInfo:
		return sy.mutualInfoPhi(mech)
	}
	return nil, fmt.Errorf("%w: %d", ErrMethod, sy.Config.Method)
}

// Calculator computes Phi for mechanisms of a System with one fixed
// method, independent of the System's own Config.Method.
type Calculator interface {
	// Method returns the fixed method this calculator applies.
	Method() Methods

	// Phi computes Phi for the given mechanism of the system.
	Phi(sy *System, mech int) (*PhiResult, error)
}

type calculator struct {
	method Methods
}

// NewCalculator returns a Calculator bound to the given method.
func NewCalculator(method Methods) (Calculator, error) {
	if method < Exact || method >= MethodsN {
		return nil, fmt.Errorf("%w: %d", ErrMethod, method)
	}
	return &calculator{method: method}, nil
}

func (ca *calculator) Method() Methods {
	return ca.method
}

func (ca *calculator) Phi(sy *System, mech int) (*PhiResult, error) {
	switch ca.method {
	case Exact:
		return sy.exactPhi(mech)
	case Geometric:
		return sy.geometricPhi(mech)
	case Spectral:
		return sy.spectralPhi(mech)
	case MeanField:
		return sy.meanFieldPhi(mech)
	case MutualInfo:
		return sy.mutualInfoPhi(mech)
	}
	return nil, fmt.Errorf("%w: %d", ErrMethod, ca.method)
}
