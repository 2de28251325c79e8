// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phi

import (
	"math/bits"
	"strconv"
)

// Bitmask helpers for joint-state and element-subset indexing.
// Bit i of a state index (or mask) corresponds to element i.

// NBits returns the number of set bits (elements) in mask.
func NBits(mask int) int {
	return bits.OnesCount(uint(mask))
}

// LowBit returns a mask holding only the lowest set bit of mask
// (0 if mask is 0).
func LowBit(mask int) int {
	return mask & -mask
}

// LowBitIndex returns the element index of the lowest set bit of mask
// (0 if mask is 0).
func LowBitIndex(mask int) int {
	if mask == 0 {
		return 0
	}
	return bits.TrailingZeros(uint(mask))
}

// CompressBits gathers the bits of state s at the positions set in mask
// into a dense index over the mask's elements: the k-th lowest set bit of
// mask becomes bit k of the result.
func CompressBits(s, mask int) int {
	c := 0
	k := 0
	for m := mask; m != 0; m &= m - 1 {
		if s&LowBit(m) != 0 {
			c |= 1 << k
		}
		k++
	}
	return c
}

// ExpandBits scatters the low bits of dense index c onto the positions
// set in mask: bit k of c becomes the k-th lowest set bit of mask.
// Inverse of CompressBits.
func ExpandBits(c, mask int) int {
	s := 0
	k := 0
	for m := mask; m != 0; m &= m - 1 {
		if c&(1<<k) != 0 {
			s |= LowBit(m)
		}
		k++
	}
	return s
}

// avgBits replaces vals, a vector indexed by joint states, with its
// average over the state bits set in mask: after the call, vals[u] is the
// mean of the original values over all states agreeing with u outside
// mask.  vals must have power-of-two length covering all bits of mask.
func avgBits(vals []float64, mask int) {
	for m := mask; m != 0; m &= m - 1 {
		b := LowBit(m)
		for u := range vals {
			if u&b == 0 {
				v := 0.5 * (vals[u] + vals[u|b])
				vals[u] = v
				vals[u|b] = v
			}
		}
	}
}

// MaskString renders a bitmask of elements as e.g. "{0,2,3}" for
// error messages and table export.
func MaskString(mask int) string {
	s := "{"
	first := true
	for i := 0; mask>>i != 0; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		if !first {
			s += ","
		}
		s += strconv.Itoa(i)
		first = false
	}
	return s + "}"
}
