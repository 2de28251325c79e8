// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ces

import (
	"github.com/emer/etable/v2/etable"
	"github.com/emer/etable/v2/etensor"
	"github.com/emer/phi/phi"
	"gonum.org/v1/gonum/stat"
)

// Stats are summary statistics over a structure's concepts.
type Stats struct {
	NConcepts int     `desc:"number of concepts"`
	Phi       float64 `desc:"system-level Phi (maximum concept phi)"`
	SumPhi    float64 `desc:"sum of concept phis"`
	MeanPhi   float64 `desc:"mean concept phi"`
	StdPhi    float64 `desc:"population standard deviation of concept phi"`
	MeanSize  float64 `desc:"mean mechanism size in elements"`
	MaxSize   int     `desc:"largest mechanism size among the concepts"`
}

// Stats computes summary statistics over the concepts.  All phi fields
// are zero for an empty structure.
func (st *Structure) Stats() Stats {
	ss := Stats{NConcepts: len(st.Concepts), Phi: st.Phi}
	if len(st.Concepts) == 0 {
		return ss
	}
	phis := make([]float64, len(st.Concepts))
	szs := make([]float64, len(st.Concepts))
	for i := range st.Concepts {
		phis[i] = st.Concepts[i].Phi
		sz := st.Concepts[i].Size()
		szs[i] = float64(sz)
		if sz > ss.MaxSize {
			ss.MaxSize = sz
		}
	}
	ss.SumPhi = st.SumPhi()
	ss.MeanPhi = stat.Mean(phis, nil)
	ss.StdPhi = stat.PopStdDev(phis, nil)
	ss.MeanSize = stat.Mean(szs, nil)
	return ss
}

// Table exports the structure as an etable.Table with one row per
// concept: mechanism mask string, size, phi, and the MIP's two part
// masks (empty strings when no partition was searched).
func (st *Structure) Table() *etable.Table {
	sch := etable.Schema{
		{Name: "Mechanism", Type: etensor.STRING, CellShape: nil, DimNames: nil},
		{Name: "Size", Type: etensor.INT64, CellShape: nil, DimNames: nil},
		{Name: "Phi", Type: etensor.FLOAT64, CellShape: nil, DimNames: nil},
		{Name: "MIPA", Type: etensor.STRING, CellShape: nil, DimNames: nil},
		{Name: "MIPB", Type: etensor.STRING, CellShape: nil, DimNames: nil},
	}
	dt := &etable.Table{}
	dt.SetMetaData("name", "CauseEffectStructure")
	dt.SetMetaData("read-only", "true")
	dt.SetFromSchema(sch, len(st.Concepts))
	for i := range st.Concepts {
		co := &st.Concepts[i]
		dt.SetCellString("Mechanism", i, phi.MaskString(co.Mechanism))
		dt.SetCellFloat("Size", i, float64(co.Size()))
		dt.SetCellFloat("Phi", i, co.Phi)
		if co.MIP != nil {
			dt.SetCellString("MIPA", i, phi.MaskString(co.MIP.Part.A))
			dt.SetCellString("MIPB", i, phi.MaskString(co.MIP.Part.B))
		}
	}
	return dt
}
