/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"math"
)

// maxWinners is the number of ranked places awarded by a draw.
const maxWinners = 7

type Winner struct {
	Rank  int    `json:"rank"`
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// selectUniqueRanked returns min(total, k) distinct indices in [0, total),
// where position i holds the index awarded rank i+1.
func selectUniqueRanked(total, k int) ([]int, error) {
	return selectUniqueRankedFrom(rand.Reader, total, k)
}

// selectUniqueRankedFrom shuffles the identity permutation end-to-start,
// drawing each swap partner uniformly from the unprocessed prefix.
func selectUniqueRankedFrom(r io.Reader, total, k int) ([]int, error) {
	if total <= 0 || k <= 0 {
		return []int{}, nil
	}

	idx := make([]int, total)
	for i := range idx {
		idx[i] = i
	}

	for i := total - 1; i > 0; i-- {
		j, err := randIntn(r, i+1)
		if err != nil {
			return nil, err
		}
		idx[i], idx[j] = idx[j], idx[i]
	}

	return idx[:min(k, total)], nil
}

// randIntn returns an integer in [0, n) read from r, discarding samples
// from the uneven tail of the 64-bit range.
func randIntn(r io.Reader, n int) (int, error) {
	bound := uint64(n)
	limit := math.MaxUint64 - math.MaxUint64%bound

	var b [8]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}

		if v := binary.LittleEndian.Uint64(b[:]); v < limit {
			return int(v % bound), nil
		}
	}
}

// drawSeed is published with each result for display only; it plays
// no part in choosing winners.
func drawSeed(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b[:]), nil
}

// rankWinners maps selected indices onto the names they were drawn from.
func rankWinners(picked []int, names []string) []Winner {
	winners := make([]Winner, 0, len(picked))
	for rank, i := range picked {
		winners = append(winners, Winner{
			Rank:  rank + 1,
			Index: i,
			Name:  names[i],
		})
	}

	return winners
}
