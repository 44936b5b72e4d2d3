package sliceutil

import (
	"reflect"
	"testing"
)

func TestIntersectionInt64(t *testing.T) {
	testCases := []struct {
		setA []int64
		setB []int64
		setC []int64
		out  []int64
	}{
		{[]int64{2, 3, 5}, []int64{3}, []int64{3}, []int64{3}},
		{[]int64{2, 3, 5}, []int64{3, 5}, []int64{5}, []int64{5}},
		{[]int64{2, 3, 5}, []int64{5, 3, 2}, []int64{3, 2, 5}, []int64{2, 3, 5}},
		{[]int64{3, 2, 5}, []int64{5, 3, 2}, []int64{2, 3, 5}, []int64{2, 3, 5}},
		{[]int64{2, 3, 5}, []int64{}, []int64{2}, []int64{}},
		{[]int64{}, []int64{2, 3, 5}, []int64{5}, []int64{}},
		{[]int64{}, []int64{}, []int64{}, []int64{}},
		{[]int64{1}, []int64{1}, []int64{1}, []int64{1}},
		{[]int64{1, 1, 1}, []int64{1, 2}, []int64{1, 3}, []int64{1}},
	}
	for _, tt := range testCases {
		result := IntersectionInt64(tt.setA, tt.setB, tt.setC)
		if !reflect.DeepEqual(result, tt.out) {
			t.Errorf("IntersectionInt64(%v, %v, %v) = %v, wanted %v",
				tt.setA, tt.setB, tt.setC, result, tt.out)
		}
	}
}

func TestIntersectionInt64_SingleSlice(t *testing.T) {
	result := IntersectionInt64([]int64{5, 3, 3, 2})
	if !reflect.DeepEqual(result, []int64{2, 3, 5}) {
		t.Errorf("IntersectionInt64 single slice = %v, wanted [2 3 5]", result)
	}
}

func TestIntersectionInt64_NoArgs(t *testing.T) {
	result := IntersectionInt64()
	if len(result) != 0 {
		t.Errorf("IntersectionInt64() = %v, wanted []", result)
	}
}

func TestUnionInt64(t *testing.T) {
	testCases := []struct {
		setA []int64
		setB []int64
		out  []int64
	}{
		{[]int64{2, 3, 5}, []int64{4, 6}, []int64{2, 3, 5, 4, 6}},
		{[]int64{2, 3, 5}, []int64{3, 5}, []int64{2, 3, 5}},
		{[]int64{}, []int64{}, []int64{}},
		{[]int64{1}, []int64{1}, []int64{1}},
	}
	for _, tt := range testCases {
		result := UnionInt64(tt.setA, tt.setB)
		if !reflect.DeepEqual(result, tt.out) {
			t.Errorf("UnionInt64(%v, %v) = %v, wanted %v", tt.setA, tt.setB, result, tt.out)
		}
	}
}

func TestNotInt64(t *testing.T) {
	testCases := []struct {
		setA []int64
		setB []int64
		out  []int64
	}{
		{[]int64{4, 6}, []int64{2, 3, 5, 4, 6}, []int64{2, 3, 5}},
		{[]int64{3, 5}, []int64{2, 3, 5}, []int64{2}},
		{[]int64{2, 3, 5}, []int64{2, 3, 5}, []int64{}},
		{[]int64{2}, []int64{}, []int64{}},
	}
	for _, tt := range testCases {
		result := NotInt64(tt.setA, tt.setB)
		if !reflect.DeepEqual(result, tt.out) {
			t.Errorf("NotInt64(%v, %v) = %v, wanted %v", tt.setA, tt.setB, result, tt.out)
		}
	}
}

func TestIsInInt64(t *testing.T) {
	testCases := []struct {
		a      int64
		b      []int64
		result bool
	}{
		{0, []int64{}, false},
		{0, []int64{0}, true},
		{4, []int64{2, 3, 5, 4, 6}, true},
		{100, []int64{2, 3, 5, 4, 6}, false},
	}
	for _, tt := range testCases {
		result := IsInInt64(tt.a, tt.b)
		if result != tt.result {
			t.Errorf("IsInInt64(%d, %v) = %v, wanted %v", tt.a, tt.b, result, tt.result)
		}
	}
}

func TestUniqueInt64(t *testing.T) {
	result := UniqueInt64([]int64{3, 3, 1, 2, 1})
	if !reflect.DeepEqual(result, []int64{3, 1, 2}) {
		t.Errorf("UniqueInt64 = %v, wanted [3 1 2]", result)
	}
}
