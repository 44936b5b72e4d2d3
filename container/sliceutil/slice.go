// Package sliceutil implements set operations on integer slices used
// throughout the pipeline for timestamp and id bookkeeping.
package sliceutil

import "sort"

// IntersectionInt64 of any number of int64 slices with time
// complexity of approximately O(n) leveraging a map to
// check for element existence off by a constant factor
// of underlying map efficiency. The result is sorted ascending
// and free of duplicates.
func IntersectionInt64(s ...[]int64) []int64 {
	if len(s) == 0 {
		return []int64{}
	}
	if len(s) == 1 {
		out := dedupInt64(s[0])
		sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
		return out
	}

	counts := make(map[int64]int)
	for _, slice := range s {
		seen := make(map[int64]bool, len(slice))
		for _, v := range slice {
			if seen[v] {
				continue
			}
			seen[v] = true
			counts[v]++
		}
	}

	set := make([]int64, 0)
	for v, c := range counts {
		if c == len(s) {
			set = append(set, v)
		}
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set
}

// UnionInt64 of any number of int64 slices with time
// complexity of approximately O(n). The result keeps first-seen order.
func UnionInt64(s ...[]int64) []int64 {
	set := make([]int64, 0)
	m := make(map[int64]bool)
	for _, slice := range s {
		for _, v := range slice {
			if !m[v] {
				m[v] = true
				set = append(set, v)
			}
		}
	}
	return set
}

// NotInt64 returns the int64 in slice b that are not in slice a.
func NotInt64(a, b []int64) []int64 {
	set := make([]int64, 0)
	m := make(map[int64]bool)
	for _, v := range a {
		m[v] = true
	}
	for _, v := range b {
		if !m[v] {
			set = append(set, v)
		}
	}
	return set
}

// IsInInt64 returns true if a is in b and false otherwise.
func IsInInt64(a int64, b []int64) bool {
	for _, v := range b {
		if a == v {
			return true
		}
	}
	return false
}

// UniqueInt64 removes duplicates keeping first-seen order.
func UniqueInt64(a []int64) []int64 {
	return dedupInt64(a)
}

func dedupInt64(a []int64) []int64 {
	m := make(map[int64]bool, len(a))
	out := make([]int64, 0, len(a))
	for _, v := range a {
		if !m[v] {
			m[v] = true
			out = append(out, v)
		}
	}
	return out
}
