// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"sort"
)

// Median - the median (rounded down to the nearest integral value)
// of an unsorted list of values
//
// an empty list yields zero
//
// this is the numeric consensus primitive: with an honest majority
// the result always lies within the range of the honest inputs
func Median(values []uint64) uint64 {

	switch n := len(values); n {

	case 0:
		return 0

	case 1:
		return values[0]

	default:
		sorted := make([]uint64, n)
		copy(sorted, values)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i] < sorted[j]
		})
		if 0 == n%2 {
			lower := sorted[n/2-1]
			upper := sorted[n/2]
			// upper >= lower, so this cannot overflow
			return lower + (upper-lower)/2
		}
		return sorted[n/2]
	}
}
