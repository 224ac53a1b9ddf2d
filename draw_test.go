/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectUniqueRanked(t *testing.T) {
	for total := 0; total <= 20; total++ {
		picked, err := selectUniqueRanked(total, maxWinners)
		require.NoError(t, err)

		assert.Len(t, picked, min(total, maxWinners), "total=%d", total)

		seen := make(map[int]bool, len(picked))
		for _, i := range picked {
			assert.GreaterOrEqual(t, i, 0)
			assert.Less(t, i, total)
			assert.False(t, seen[i], "index %d repeated for total=%d", i, total)
			seen[i] = true
		}
	}
}

func TestSelectUniqueRankedEdgeCases(t *testing.T) {
	picked, err := selectUniqueRanked(0, maxWinners)
	require.NoError(t, err)
	assert.Empty(t, picked)

	picked, err = selectUniqueRanked(3, 0)
	require.NoError(t, err)
	assert.Empty(t, picked)

	picked, err = selectUniqueRanked(-1, maxWinners)
	require.NoError(t, err)
	assert.Empty(t, picked)

	picked, err = selectUniqueRanked(3, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1, 2}, picked)
}

func TestSelectUniqueRankedFromReader(t *testing.T) {
	// An all-zero source always swaps with index 0.
	picked, err := selectUniqueRankedFrom(bytes.NewReader(make([]byte, 64)), 5, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 0}, picked)

	_, err = selectUniqueRankedFrom(bytes.NewReader(nil), 5, 5)
	assert.Error(t, err)

	// A single candidate needs no randomness at all.
	picked, err = selectUniqueRankedFrom(bytes.NewReader(nil), 1, maxWinners)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, picked)
}

func TestSelectUniqueRankedUniformity(t *testing.T) {
	const (
		total  = 5
		trials = 50000
		// Well past the 99.99th percentile of chi-square with 4 degrees of freedom.
		critical = 30.0
	)

	var counts [total][total]int

	for n := 0; n < trials; n++ {
		picked, err := selectUniqueRanked(total, total)
		require.NoError(t, err)

		for rank, i := range picked {
			counts[rank][i]++
		}
	}

	expected := float64(trials) / total

	for rank := 0; rank < total; rank++ {
		chi := 0.0
		for i := 0; i < total; i++ {
			diff := float64(counts[rank][i]) - expected
			chi += diff * diff / expected
		}

		assert.Less(t, chi, critical, "rank %d counts %v", rank+1, counts[rank])
	}
}

func TestDrawSeed(t *testing.T) {
	seed, err := drawSeed(bytes.NewReader([]byte{1, 0, 0, 0}))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), seed)

	_, err = drawSeed(bytes.NewReader([]byte{1, 2}))
	assert.Error(t, err)
}

func TestRankWinners(t *testing.T) {
	names := []string{"Alice", "Bob", "Carol"}

	winners := rankWinners([]int{2, 0, 1}, names)

	assert.Equal(t, []Winner{
		{Rank: 1, Index: 2, Name: "Carol"},
		{Rank: 2, Index: 0, Name: "Alice"},
		{Rank: 3, Index: 1, Name: "Bob"},
	}, winners)
}

func TestRandIntn(t *testing.T) {
	// 0xff.. is past the accepted range for n=3 and must be skipped.
	src := append(bytes.Repeat([]byte{0xff}, 8), 5, 0, 0, 0, 0, 0, 0, 0)

	n, err := randIntn(bytes.NewReader(src), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
