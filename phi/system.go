// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phi

import (
	"fmt"
	"math"

	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/v2/prjn"
	"github.com/emer/etable/v2/etensor"
	"gonum.org/v1/gonum/floats"
)

// StochTol is the tolerance for a TPM row to count as a probability
// distribution (row sum within StochTol of 1).
const StochTol = 1e-6

// System is the immutable model of one discrete dynamical system under
// analysis: element count, current binary state, joint transition
// probability matrix, connectivity mask, and calculation configuration.
// It is read-only during any Phi computation; the only mutation is
// SetTPM, which atomically clears the repertoire cache.
type System struct {
	N      int              `desc:"number of elements"`
	State  []int            `desc:"current binary state of each element, in element order"`
	TPM    *etensor.Float64 `desc:"joint transition probability matrix, [2^N, 2^N] row-stochastic: TPM[s,s'] = P(next = s' | current = s)"`
	Conn   *etensor.Bits    `desc:"connectivity mask, [N, N]: Conn[i,j] = element i is an input to element j"`
	Config Config           `desc:"calculation configuration"`

	stateIdx int              // State as a joint state index (bit i = State[i])
	srcs     []int            // srcs[j] = bitmask of input elements of j
	pe       *etensor.Float64 // [N, 2^N] per-element conditionals: pe[j,u] = P(next_j = 1 | current = u)
	cache    *Cache
}

// NewSystem validates the inputs and builds a System.  state holds the
// binary state of each element; tpm is the [2^n, 2^n] row-stochastic
// joint transition matrix; conn is the [n, n] connectivity mask (nil =
// fully connected, including self-connections); cfg is copied (nil =
// defaults).  Fails fast with ErrDimension or ErrNonStochastic; no
// partial construction.
func NewSystem(state []int, tpm *etensor.Float64, conn *etensor.Bits, cfg *Config) (*System, error) {
	n := len(state)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty state vector (0 elements)", ErrDimension)
	}
	if n > 30 {
		return nil, fmt.Errorf("%w: %d elements exceeds the 2^n joint state representation limit (30)", ErrDimension, n)
	}
	sy := &System{N: n}
	if cfg != nil {
		sy.Config = *cfg
	} else {
		sy.Config.Defaults()
	}
	sy.Config.Update()

	sy.State = make([]int, n)
	for i, st := range state {
		if st != 0 && st != 1 {
			return nil, fmt.Errorf("%w: element %d has state %d, must be binary (0 or 1)", ErrDimension, i, st)
		}
		sy.State[i] = st
		sy.stateIdx |= st << i
	}

	if conn == nil {
		conn = FullConn(n)
	}
	if conn.NumDims() != 2 || conn.Dim(0) != n || conn.Dim(1) != n {
		return nil, fmt.Errorf("%w: connectivity must be [%d, %d] for %d elements", ErrDimension, n, n, n)
	}
	sy.Conn = conn
	sy.srcs = make([]int, n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			if conn.Values.Index(i*n + j) {
				sy.srcs[j] |= 1 << i
			}
		}
	}

	if err := sy.setTPM(tpm); err != nil {
		return nil, err
	}
	sy.cache = NewCache(sy.Config.CacheSize)
	return sy, nil
}

// setTPM validates tpm and rebuilds the per-element conditional table.
func (sy *System) setTPM(tpm *etensor.Float64) error {
	ns := 1 << sy.N
	if tpm == nil || tpm.NumDims() != 2 || tpm.Dim(0) != ns || tpm.Dim(1) != ns {
		return fmt.Errorf("%w: TPM must be [%d, %d] for %d elements", ErrDimension, ns, ns, sy.N)
	}
	for u := 0; u < ns; u++ {
		row := tpm.Values[u*ns : (u+1)*ns]
		sum := floats.Sum(row)
		if math.Abs(sum-1) > StochTol {
			return fmt.Errorf("%w: row %d sums to %g", ErrNonStochastic, u, sum)
		}
		for s, p := range row {
			if p < -StochTol || p > 1+StochTol {
				return fmt.Errorf("%w: row %d entry %d is %g, outside [0,1]", ErrNonStochastic, u, s, p)
			}
		}
	}
	sy.TPM = tpm
	pe := etensor.NewFloat64([]int{sy.N, ns}, nil, []string{"Elem", "State"})
	for j := 0; j < sy.N; j++ {
		jb := 1 << j
		pv := pe.Values[j*ns : (j+1)*ns]
		for u := 0; u < ns; u++ {
			row := tpm.Values[u*ns : (u+1)*ns]
			p1 := 0.0
			for s, p := range row {
				if s&jb != 0 {
					p1 += p
				}
			}
			pv[u] = p1
		}
	}
	sy.pe = pe
	return nil
}

// SetTPM replaces the transition matrix.  The new matrix is validated
// first (same errors as NewSystem, with no change on failure), then the
// repertoire cache is cleared atomically before any new computation can
// read stale entries.
func (sy *System) SetTPM(tpm *etensor.Float64) error {
	if err := sy.setTPM(tpm); err != nil {
		return err
	}
	sy.cache.Clear()
	return nil
}

// StateIndex returns the current state as a joint state index
// (bit i = State[i]).
func (sy *System) StateIndex() int {
	return sy.stateIdx
}

// NStates returns the number of joint states, 2^N.
func (sy *System) NStates() int {
	return 1 << sy.N
}

// FullMask returns the bitmask of all elements.
func (sy *System) FullMask() int {
	return (1 << sy.N) - 1
}

// Srcs returns the bitmask of input elements of element j.
func (sy *System) Srcs(j int) int {
	return sy.srcs[j]
}

// Cache returns the repertoire cache owned by this System.
func (sy *System) Cache() *Cache {
	return sy.cache
}

// SizeReport returns a human-readable summary of the memory held by the
// model and its cache.
func (sy *System) SizeReport() string {
	ns := 1 << sy.N
	tpmMem := uint64(ns) * uint64(ns) * 8
	peMem := uint64(sy.N) * uint64(ns) * 8
	return fmt.Sprintf("%d elems, %d states\t TPM: %v \t Cond: %v \t Cache: %s",
		sy.N, ns, (datasize.ByteSize)(tpmMem).HumanReadable(),
		(datasize.ByteSize)(peMem).HumanReadable(), sy.cache.SizeReport())
}

//////////////////////////////////////////////////////////////////////////////////////
//  Connectivity builders

// FullConn returns an [n, n] mask with every connection present,
// including self-connections.
func FullConn(n int) *etensor.Bits {
	cb := etensor.NewBits([]int{n, n}, nil, []string{"Send", "Recv"})
	for i := 0; i < n*n; i++ {
		cb.Values.Set(i, true)
	}
	return cb
}

// ChainConn returns an [n, n] mask for the strict feed-forward chain
// 0 -> 1 -> ... -> n-1.
func ChainConn(n int) *etensor.Bits {
	cb := etensor.NewBits([]int{n, n}, nil, []string{"Send", "Recv"})
	for i := 0; i < n-1; i++ {
		cb.Values.Set(i*n+(i+1), true)
	}
	return cb
}

// ConnFromPattern builds the [n, n] mask from a standard emergent
// projection pattern (prjn.NewFull, NewOneToOne, NewCircle, NewUnifRnd,
// etc.) connecting the element set to itself.
func ConnFromPattern(pat prjn.Pattern, n int) *etensor.Bits {
	shp := etensor.Shape{}
	shp.SetShape([]int{n}, nil, []string{"Elem"})
	_, _, cons := pat.Connect(&shp, &shp, true)
	cb := etensor.NewBits([]int{n, n}, nil, []string{"Send", "Recv"})
	for ri := 0; ri < n; ri++ {
		for si := 0; si < n; si++ {
			if cons.Values.Index(ri*n + si) {
				cb.Values.Set(si*n+ri, true)
			}
		}
	}
	return cb
}
