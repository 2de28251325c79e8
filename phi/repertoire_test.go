// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phi

import (
	"errors"
	"math"
	"testing"
)

func ckDist(t *testing.T, name string, rp *Repertoire, cor []float64) {
	t.Helper()
	if len(rp.Dist.Values) != len(cor) {
		t.Errorf("%v: %v states != %v", name, len(rp.Dist.Values), len(cor))
		return
	}
	for i, v := range rp.Dist.Values {
		if math.Abs(v-cor[i]) > difTol {
			t.Errorf("%v: state %v: %v != %v", name, i, v, cor[i])
		}
	}
}

func TestORRepertoires(t *testing.T) {
	sy := orSystem(t, []int{1, 1}, nil)

	cr, err := sy.CauseRepertoire(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	ckDist(t, "OR cause mech={0,1}", cr, []float64{0, 1.0 / 3, 1.0 / 3, 1.0 / 3})

	er, err := sy.EffectRepertoire(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	ckDist(t, "OR effect mech={0,1}", er, []float64{0, 0, 0, 1})

	// single-element mechanism, single-element purview
	cr0, err := sy.CauseRepertoire(0b01, 0b01)
	if err != nil {
		t.Fatal(err)
	}
	ckDist(t, "OR cause mech={0} purv={0}", cr0, []float64{1.0 / 3, 2.0 / 3})

	er1, err := sy.EffectRepertoire(0b01, 0b10)
	if err != nil {
		t.Fatal(err)
	}
	ckDist(t, "OR effect mech={0} purv={1}", er1, []float64{0, 1})
}

func TestXORRepertoires(t *testing.T) {
	sy := xorSystem(t, []int{0, 0}, nil)

	cr, err := sy.CauseRepertoire(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	ckDist(t, "XOR cause", cr, []float64{0.5, 0, 0, 0.5})

	er, err := sy.EffectRepertoire(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	ckDist(t, "XOR effect", er, []float64{1, 0, 0, 0})

	// directed cut {0} -> {1}: element 1 loses its input from 0
	ce, err := sy.CutRepertoire(Effect, 3, 3, 0b01, 0b10)
	if err != nil {
		t.Fatal(err)
	}
	ckDist(t, "XOR cut effect", ce, []float64{0.5, 0, 0.5, 0})

	cc, err := sy.CutRepertoire(Cause, 3, 3, 0b01, 0b10)
	if err != nil {
		t.Fatal(err)
	}
	ckDist(t, "XOR cut cause unchanged", cc, []float64{0.5, 0, 0, 0.5})
}

func TestRepertoireOps(t *testing.T) {
	un := UniformRepertoire(0b11, Cause)
	if math.Abs(un.Entropy()-2) > difTol {
		t.Errorf("uniform entropy: %v != 2", un.Entropy())
	}
	if un.NStates() != 4 || un.NElems() != 2 {
		t.Errorf("uniform NStates/NElems: %v, %v", un.NStates(), un.NElems())
	}
	mg, err := un.Marginalize(0b10)
	if err != nil {
		t.Fatal(err)
	}
	ckDist(t, "uniform marginal", mg, []float64{0.5, 0.5})

	if _, err := un.Marginalize(0); !errors.Is(err, ErrDimension) {
		t.Errorf("empty marginalize: %v is not ErrDimension", err)
	}
	if _, err := un.Marginalize(0b100); !errors.Is(err, ErrDimension) {
		t.Errorf("out-of-purview marginalize: %v is not ErrDimension", err)
	}

	ra := NewRepertoire(0b001, Effect)
	ra.Dist.Values[0] = 0
	ra.Dist.Values[1] = 1
	rb := NewRepertoire(0b010, Effect)
	rb.Dist.Values[0] = 1.0 / 3
	rb.Dist.Values[1] = 2.0 / 3
	pr, err := Product(ra, rb)
	if err != nil {
		t.Fatal(err)
	}
	ckDist(t, "product", pr, []float64{0, 1.0 / 3, 0, 2.0 / 3})

	if _, err := Product(ra, ra); !errors.Is(err, ErrDimension) {
		t.Errorf("overlapping product: %v is not ErrDimension", err)
	}
	rc := NewRepertoire(0b010, Cause)
	if _, err := Product(ra, rc); !errors.Is(err, ErrDimension) {
		t.Errorf("mixed-direction product: %v is not ErrDimension", err)
	}
}

func TestRepertoireMaskErrors(t *testing.T) {
	sy := orSystem(t, []int{1, 1}, nil)
	if _, err := sy.CauseRepertoire(0, 3); !errors.Is(err, ErrDimension) {
		t.Errorf("empty mechanism: %v is not ErrDimension", err)
	}
	if _, err := sy.EffectRepertoire(3, 0); !errors.Is(err, ErrDimension) {
		t.Errorf("empty purview: %v is not ErrDimension", err)
	}
	if _, err := sy.CauseRepertoire(0b100, 3); !errors.Is(err, ErrDimension) {
		t.Errorf("out-of-range mechanism: %v is not ErrDimension", err)
	}
	if _, err := sy.RepertoireOf(Effect, 3, 0b111); !errors.Is(err, ErrDimension) {
		t.Errorf("out-of-range purview: %v is not ErrDimension", err)
	}
}

func TestPartitionedRepertoire(t *testing.T) {
	sy := xorSystem(t, []int{0, 0}, nil)
	// each part's independent cause repertoire is uniform, so the
	// product is uniform over the joint states
	pc, err := sy.PartitionedRepertoire(Cause, 0b01, 0b10)
	if err != nil {
		t.Fatal(err)
	}
	ckDist(t, "XOR partitioned cause", pc, []float64{0.25, 0.25, 0.25, 0.25})
}
