// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ces

import (
	"math"
	"testing"

	"github.com/emer/etable/v2/etensor"
	"github.com/emer/phi/phi"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = 1.0e-6

// xorSystem: two elements, each computing XOR of both current values,
// observed at state (0, 0).
func xorSystem(t *testing.T) *phi.System {
	t.Helper()
	tpm := etensor.NewFloat64([]int{4, 4}, nil, []string{"Cur", "Next"})
	for u := 0; u < 4; u++ {
		x := (u & 1) ^ ((u >> 1) & 1)
		tpm.Values[u*4+(x|x<<1)] = 1
	}
	sy, err := phi.NewSystem([]int{0, 0}, tpm, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return sy
}

func TestBuildXOR(t *testing.T) {
	sy := xorSystem(t)
	st, err := Build(sy, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st.NMechs != 3 {
		t.Errorf("NMechs: %v != 3", st.NMechs)
	}
	// only the joint mechanism is irreducible; singletons have phi 0
	if len(st.Concepts) != 1 {
		t.Fatalf("concepts: %v != 1", len(st.Concepts))
	}
	co := st.Concepts[0]
	if co.Mechanism != 3 || co.Size() != 2 {
		t.Errorf("concept mechanism: %v size %v", co.Mechanism, co.Size())
	}
	if math.Abs(co.Phi-0.5) > difTol {
		t.Errorf("concept phi: %v != 0.5", co.Phi)
	}
	if math.Abs(st.Phi-0.5) > difTol {
		t.Errorf("structure Phi: %v != 0.5", st.Phi)
	}
	if math.Abs(st.SumPhi()-0.5) > difTol {
		t.Errorf("SumPhi: %v != 0.5", st.SumPhi())
	}
	ckVals(t, "concept cause", co.Cause.Dist.Values, []float64{0.5, 0, 0, 0.5})
	ckVals(t, "concept effect", co.Effect.Dist.Values, []float64{1, 0, 0, 0})
	if co.MIP == nil || co.MIP.Part.A != 1 || co.MIP.Part.B != 2 {
		t.Errorf("concept MIP: %+v", co.MIP)
	}
}

func ckVals(t *testing.T, name string, vals, cor []float64) {
	t.Helper()
	if len(vals) != len(cor) {
		t.Errorf("%v: %v values != %v", name, len(vals), len(cor))
		return
	}
	for i := range vals {
		if math.Abs(vals[i]-cor[i]) > difTol {
			t.Errorf("%v: idx %v: %v != %v", name, i, vals[i], cor[i])
		}
	}
}

func TestQueries(t *testing.T) {
	sy := xorSystem(t)
	st, err := Build(sy, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(st.Significant(0.4)); n != 1 {
		t.Errorf("Significant(0.4): %v != 1", n)
	}
	if n := len(st.Significant(0.6)); n != 0 {
		t.Errorf("Significant(0.6): %v != 0", n)
	}
	if n := len(st.BySize(2)); n != 1 {
		t.Errorf("BySize(2): %v != 1", n)
	}
	if n := len(st.BySize(1)); n != 0 {
		t.Errorf("BySize(1): %v != 0", n)
	}
	mx := st.MaxConcept()
	if mx == nil || mx.Mechanism != 3 {
		t.Errorf("MaxConcept: %+v", mx)
	}
	if n := len(st.Containing(0)); n != 1 {
		t.Errorf("Containing(0): %v != 1", n)
	}
	if n := len(st.Containing(2)); n != 0 {
		t.Errorf("Containing(2): %v != 0", n)
	}
	if n := len(st.Core(5)); n != 1 {
		t.Errorf("Core(5): %v != 1", n)
	}
	if n := len(st.Core(0)); n != 0 {
		t.Errorf("Core(0): %v != 0", n)
	}
	if n := len(st.Core(-1)); n != 0 {
		t.Errorf("Core(-1): %v != 0", n)
	}
}

func TestStatsAndTable(t *testing.T) {
	sy := xorSystem(t)
	st, err := Build(sy, nil)
	if err != nil {
		t.Fatal(err)
	}
	ss := st.Stats()
	if ss.NConcepts != 1 || ss.MaxSize != 2 {
		t.Errorf("Stats counts: %+v", ss)
	}
	if math.Abs(ss.MeanPhi-0.5) > difTol || ss.StdPhi > difTol {
		t.Errorf("Stats phi: mean %v std %v", ss.MeanPhi, ss.StdPhi)
	}
	if math.Abs(ss.MeanSize-2) > difTol {
		t.Errorf("Stats MeanSize: %v != 2", ss.MeanSize)
	}

	dt := st.Table()
	if dt.Rows != 1 {
		t.Fatalf("table rows: %v != 1", dt.Rows)
	}
	if dt.CellString("Mechanism", 0) != "{0,1}" {
		t.Errorf("table mechanism: %v", dt.CellString("Mechanism", 0))
	}
	if math.Abs(dt.CellFloat("Phi", 0)-0.5) > difTol {
		t.Errorf("table phi: %v", dt.CellFloat("Phi", 0))
	}
	if dt.CellString("MIPA", 0) != "{0}" || dt.CellString("MIPB", 0) != "{1}" {
		t.Errorf("table MIP: %v | %v", dt.CellString("MIPA", 0), dt.CellString("MIPB", 0))
	}
}

func TestCompare(t *testing.T) {
	sy := xorSystem(t)
	st, err := Build(sy, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d := st.Compare(st); d != 0 {
		t.Errorf("self compare: %v != 0", d)
	}
	hi := &Config{}
	hi.Defaults()
	hi.MinPhi = 10
	empty, err := Build(sy, hi)
	if err != nil {
		t.Fatal(err)
	}
	if len(empty.Concepts) != 0 {
		t.Fatalf("MinPhi 10 left %v concepts", len(empty.Concepts))
	}
	if d := st.Compare(empty); d != 1 {
		t.Errorf("disjoint compare: %v != 1", d)
	}
	if d := empty.Compare(empty); d != 0 {
		t.Errorf("empty vs empty: %v != 0", d)
	}
	es := empty.Stats()
	if es.NConcepts != 0 || es.SumPhi != 0 || es.MeanPhi != 0 {
		t.Errorf("empty stats: %+v", es)
	}
	if empty.MaxConcept() != nil {
		t.Errorf("empty MaxConcept not nil")
	}
}

func TestBuildOptions(t *testing.T) {
	sy := xorSystem(t)
	cf := &Config{}
	cf.Defaults()
	cf.MaxSize = 1
	st, err := Build(sy, cf)
	if err != nil {
		t.Fatal(err)
	}
	if st.NMechs != 2 || len(st.Concepts) != 0 {
		t.Errorf("MaxSize 1: NMechs %v concepts %v", st.NMechs, len(st.Concepts))
	}

	ser := &Config{}
	ser.Defaults()
	ser.Parallel = false
	s1, err := Build(sy, ser)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := Build(sy, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(s1.Concepts) != len(s2.Concepts) || s1.Phi != s2.Phi {
		t.Errorf("serial vs parallel differ: %v/%v vs %v/%v", len(s1.Concepts), s1.Phi, len(s2.Concepts), s2.Phi)
	}
	for i := range s1.Concepts {
		if s1.Concepts[i].Mechanism != s2.Concepts[i].Mechanism || s1.Concepts[i].Phi != s2.Concepts[i].Phi {
			t.Errorf("concept %v differs: %v vs %v", i, s1.Concepts[i], s2.Concepts[i])
		}
	}
}
