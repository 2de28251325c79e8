// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phi

import (
	"errors"
	"testing"

	"github.com/emer/emergent/v2/prjn"
	"github.com/emer/etable/v2/etensor"
)

// detTPM builds a deterministic [2^n, 2^n] joint transition matrix from
// a next-state function over joint state indices.
func detTPM(n int, next func(u int) int) *etensor.Float64 {
	ns := 1 << n
	tpm := etensor.NewFloat64([]int{ns, ns}, nil, []string{"Cur", "Next"})
	for u := 0; u < ns; u++ {
		tpm.Values[u*ns+next(u)] = 1
	}
	return tpm
}

// orSystem: both elements compute OR of both current values.
func orSystem(t *testing.T, state []int, cfg *Config) *System {
	tpm := detTPM(2, func(u int) int {
		if u != 0 {
			return 3
		}
		return 0
	})
	sy, err := NewSystem(state, tpm, nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return sy
}

// xorSystem: both elements compute XOR of both current values.
func xorSystem(t *testing.T, state []int, cfg *Config) *System {
	tpm := detTPM(2, func(u int) int {
		x := (u & 1) ^ ((u >> 1) & 1)
		return x | x<<1
	})
	sy, err := NewSystem(state, tpm, nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return sy
}

// chainSystem: 3-element feed-forward copy chain 0 -> 1 -> 2, with
// element 0 clamped to 0.
func chainSystem(t *testing.T, state []int, cfg *Config) *System {
	tpm := detTPM(3, func(u int) int {
		return (u&1)<<1 | ((u>>1)&1)<<2
	})
	sy, err := NewSystem(state, tpm, ChainConn(3), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return sy
}

// paritySystem: 3 elements, each computing the parity of all three.
func paritySystem(t *testing.T, state []int, cfg *Config) *System {
	tpm := detTPM(3, func(u int) int {
		p := (u ^ u>>1 ^ u>>2) & 1
		return p | p<<1 | p<<2
	})
	sy, err := NewSystem(state, tpm, nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return sy
}

func TestNewSystemValidation(t *testing.T) {
	good := detTPM(2, func(u int) int { return u })

	if _, err := NewSystem([]int{}, good, nil, nil); !errors.Is(err, ErrDimension) {
		t.Errorf("empty state: %v is not ErrDimension", err)
	}
	if _, err := NewSystem([]int{0, 2}, good, nil, nil); !errors.Is(err, ErrDimension) {
		t.Errorf("non-binary state: %v is not ErrDimension", err)
	}
	if _, err := NewSystem([]int{0, 0, 0}, good, nil, nil); !errors.Is(err, ErrDimension) {
		t.Errorf("TPM shape mismatch: %v is not ErrDimension", err)
	}
	if _, err := NewSystem([]int{0, 0}, nil, nil, nil); !errors.Is(err, ErrDimension) {
		t.Errorf("nil TPM: %v is not ErrDimension", err)
	}
	if _, err := NewSystem([]int{0, 0}, good, FullConn(3), nil); !errors.Is(err, ErrDimension) {
		t.Errorf("conn shape mismatch: %v is not ErrDimension", err)
	}

	bad := detTPM(2, func(u int) int { return u })
	bad.Values[0] = 0.5 // row 0 now sums to 0.5
	if _, err := NewSystem([]int{0, 0}, bad, nil, nil); !errors.Is(err, ErrNonStochastic) {
		t.Errorf("bad row sum: %v is not ErrNonStochastic", err)
	}
	neg := detTPM(2, func(u int) int { return u })
	neg.Values[1] = -0.5
	neg.Values[0] = 1.5
	if _, err := NewSystem([]int{0, 0}, neg, nil, nil); !errors.Is(err, ErrNonStochastic) {
		t.Errorf("negative entry: %v is not ErrNonStochastic", err)
	}
}

func TestSystemBasics(t *testing.T) {
	sy := orSystem(t, []int{1, 1}, nil)
	if sy.StateIndex() != 3 {
		t.Errorf("StateIndex: %v != 3", sy.StateIndex())
	}
	if sy.NStates() != 4 || sy.FullMask() != 3 {
		t.Errorf("NStates/FullMask: %v, %v", sy.NStates(), sy.FullMask())
	}
	if sy.Srcs(0) != 3 || sy.Srcs(1) != 3 {
		t.Errorf("full conn srcs: %v, %v", sy.Srcs(0), sy.Srcs(1))
	}
	if sy.SizeReport() == "" {
		t.Errorf("empty SizeReport")
	}
}

func TestSetTPM(t *testing.T) {
	sy := orSystem(t, []int{1, 1}, nil)
	if _, err := sy.CauseRepertoire(3, 3); err != nil {
		t.Fatal(err)
	}
	if sy.Cache().Len() == 0 {
		t.Errorf("cache empty after repertoire computation")
	}
	bad := detTPM(3, func(u int) int { return u })
	if err := sy.SetTPM(bad); !errors.Is(err, ErrDimension) {
		t.Errorf("SetTPM bad shape: %v is not ErrDimension", err)
	}
	if sy.Cache().Len() == 0 {
		t.Errorf("failed SetTPM must not clear the cache")
	}
	xor := detTPM(2, func(u int) int {
		x := (u & 1) ^ ((u >> 1) & 1)
		return x | x<<1
	})
	if err := sy.SetTPM(xor); err != nil {
		t.Fatal(err)
	}
	if sy.Cache().Len() != 0 {
		t.Errorf("cache not cleared after SetTPM: %v entries", sy.Cache().Len())
	}
}

func TestConnBuilders(t *testing.T) {
	ch := ChainConn(3)
	sy, err := NewSystem([]int{0, 0, 0}, detTPM(3, func(u int) int {
		return (u&1)<<1 | ((u>>1)&1)<<2
	}), ch, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sy.Srcs(0) != 0 || sy.Srcs(1) != 0b001 || sy.Srcs(2) != 0b010 {
		t.Errorf("chain srcs: %v, %v, %v", sy.Srcs(0), sy.Srcs(1), sy.Srcs(2))
	}

	fp := ConnFromPattern(prjn.NewFull(), 3)
	fc := FullConn(3)
	for i := 0; i < 9; i++ {
		if fp.Values.Index(i) != fc.Values.Index(i) {
			t.Errorf("ConnFromPattern(Full) differs from FullConn at %v", i)
		}
	}
	oo := ConnFromPattern(prjn.NewOneToOne(), 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := i == j
			if oo.Values.Index(i*3+j) != want {
				t.Errorf("ConnFromPattern(OneToOne) at %v,%v: %v != %v", i, j, oo.Values.Index(i*3+j), want)
			}
		}
	}
}
