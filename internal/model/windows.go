package model

import (
	"fmt"
	"sort"
)

// NormalizeWindows validates SMA window sizes, drops duplicates and sorts them descending.
func NormalizeWindows(windows []int) ([]int, error) {
	if len(windows) == 0 {
		return nil, fmt.Errorf("no sma windows given")
	}
	seen := make(map[int]bool, len(windows))
	out := make([]int, 0, len(windows))
	for _, w := range windows {
		if w <= 0 {
			return nil, fmt.Errorf("sma window must be positive, got %d", w)
		}
		if seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out, nil
}
