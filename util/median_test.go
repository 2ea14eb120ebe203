// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/vaultd/util"
)

func TestMedian(t *testing.T) {

	testData := []struct {
		values   []uint64
		expected uint64
	}{
		{[]uint64{}, 0},
		{[]uint64{9}, 9},
		{[]uint64{1, 0}, 0},
		{[]uint64{1, 0, 9}, 1},
		{[]uint64{1, 0, 9, 10}, 5},
		{[]uint64{20, 1, 0, 9}, 5},
		{[]uint64{20, 1, 0, 10}, 5},
		{[]uint64{20, 1, 0, 11}, 6},
	}

	for i, item := range testData {
		actual := util.Median(item.values)
		assert.Equal(t, item.expected, actual, "%d: wrong median for %v", i, item.values)
	}
}

// central values whose sum exceeds 64 bits must not wrap
func TestMedianLargeValues(t *testing.T) {

	testData := []struct {
		values   []uint64
		expected uint64
	}{
		{[]uint64{math.MaxUint64 - 1, math.MaxUint64 - 3}, math.MaxUint64 - 2},
		{[]uint64{math.MaxUint64, math.MaxUint64}, math.MaxUint64},
		{[]uint64{0, math.MaxUint64}, math.MaxUint64 / 2},
		{[]uint64{math.MaxUint64, math.MaxUint64 - 1, math.MaxUint64 - 2}, math.MaxUint64 - 1},
	}

	for i, item := range testData {
		actual := util.Median(item.values)
		assert.Equal(t, item.expected, actual, "%d: wrong median for %v", i, item.values)
	}
}

// input order must not matter and input must not be modified
func TestMedianLeavesInputIntact(t *testing.T) {

	values := []uint64{30, 10, 20}
	actual := util.Median(values)
	assert.Equal(t, uint64(20), actual, "wrong median")
	assert.Equal(t, []uint64{30, 10, 20}, values, "input was reordered")
}

// result is always inside the input range
func TestMedianBounds(t *testing.T) {

	testData := [][]uint64{
		{5, 5, 5},
		{1, 1000000, 3},
		{42, 7, 7, 99, 12},
	}

	for i, values := range testData {
		min := values[0]
		max := values[0]
		for _, v := range values {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		m := util.Median(values)
		assert.True(t, m >= min && m <= max, "%d: median %d outside [%d, %d]", i, m, min, max)
	}
}
