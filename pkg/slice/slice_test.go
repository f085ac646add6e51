// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/bookshelf/pkg/slice"
)

func TestMap(t *testing.T) {
	assert.Equal(t, []int{2, 4}, slice.Map([]int{1, 2}, func(v int) int { return v * 2 }))
	assert.Nil(t, slice.Map[int, int](nil, func(v int) int { return v }))
}

func TestContains(t *testing.T) {
	isEven := func(v int) bool { return v%2 == 0 }
	assert.True(t, slice.Contains([]int{1, 3, 4}, isEven))
	assert.False(t, slice.Contains([]int{1, 3}, isEven))
}

func TestReduce(t *testing.T) {
	sum := slice.Reduce([]int{1, 2, 3}, 0, func(acc, v int) int { return acc + v })
	assert.Equal(t, 6, sum)
}
