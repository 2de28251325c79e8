// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phi

// Partition is an ordered pair of disjoint non-empty element subsets
// whose union is a mechanism.  A always contains the mechanism's lowest
// element, which canonicalizes the unordered bipartition (the mirror
// (B, A) is the same partition).
type Partition struct {
	A int `desc:"bitmask of the first part -- holds the mechanism's lowest element"`
	B int `desc:"bitmask of the second part"`
}

// PartitionInfo is a partition together with its phi value: the distance
// between the whole and partitioned repertoires.  The MIP is the
// PartitionInfo minimizing Phi.
type PartitionInfo struct {
	Part Partition `desc:"the bipartition"`
	Phi  float64   `desc:"cause distance + effect distance for this partition"`
}

// CountBipartitions returns the number of distinct bipartitions of a
// k-element mechanism: 2^(k-1) - 1 (mirrors and the trivial empty part
// excluded).
func CountBipartitions(k int) int {
	if k < 2 {
		return 0
	}
	return 1<<(k-1) - 1
}

// Bipartitions enumerates every bipartition of the mechanism mask, in
// ascending order of the A bitmask.  The enumeration is iterative over
// integer submasks, so the order is a fixed total order independent of
// any scheduling.  Returns nil for mechanisms of fewer than 2 elements.
func Bipartitions(mech int) []Partition {
	k := NBits(mech)
	if k < 2 {
		return nil
	}
	low := LowBit(mech)
	rest := mech ^ low
	parts := make([]Partition, 0, CountBipartitions(k))
	sub := 0
	for {
		if sub != rest {
			parts = append(parts, Partition{A: low | sub, B: rest ^ sub})
		}
		sub = (sub - rest) & rest
		if sub == 0 {
			break
		}
	}
	return parts
}
