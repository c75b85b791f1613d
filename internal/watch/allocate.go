/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package watch

import (
	"fmt"
	"sort"
)

// Range is a half-open [Start, End) range of slot indexes owned by one squad.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len is the number of slots in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether slot index i falls in the range.
func (r Range) Contains(i int) bool {
	return i >= r.Start && i < r.End
}

// Slots returns the slots covered by r. The result shares backing storage
// with slots and must not be modified.
func (r Range) Slots(slots []Slot) []Slot {
	return slots[r.Start:r.End:r.End]
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Allocate returns the contiguous range of slots owned by the squad at
// target. The whole platoon is partitioned and checked on every call, so a
// range is only handed out when all squads' ranges tile the slots exactly.
func Allocate(slots []Slot, squadSizes []int, target int) (Range, error) {
	if target < 0 || target >= len(squadSizes) {
		return Range{}, configErrorf("squad index %d out of range for %d squads", target, len(squadSizes))
	}
	ranges, err := Partition(slots, squadSizes)
	if err != nil {
		return Range{}, err
	}
	return ranges[target], nil
}

// Partition computes every squad's range, indexed like squadSizes.
func Partition(slots []Slot, squadSizes []int) ([]Range, error) {
	if len(squadSizes) == 0 {
		return nil, configErrorf("platoon has no squads")
	}
	for i, size := range squadSizes {
		if size <= 0 {
			return nil, configErrorf("squad %d has non-positive size %d", i, size)
		}
	}

	n := len(slots)
	var ranges []Range
	switch len(squadSizes) {
	case 1:
		ranges = []Range{{Start: 0, End: n}}
	case 2:
		ranges = splitPair(n, squadSizes[0], squadSizes[1])
	default:
		ranges = splitProportional(n, squadSizes)
	}

	if err := VerifyPartition(ranges, n); err != nil {
		return nil, err
	}
	return ranges, nil
}

// Skewed reports whether one of two squads is at least twice the other.
func Skewed(a, b int) bool {
	return !(a*2 > b && a < b*2)
}

func splitPair(n, first, second int) []Range {
	if !Skewed(first, second) {
		// Squad 0 takes the odd slot.
		head := n - n/2
		return []Range{{0, head}, {head, n}}
	}

	lesser := n / 3
	if first*2 <= second {
		return []Range{{0, lesser}, {lesser, n}}
	}
	return []Range{{0, n - lesser}, {n - lesser, n}}
}

type rankedSquad struct {
	index int
	size  int
}

// splitProportional divides n hourly slots into len(sizes) nearly equal
// shares and hands the smaller shares to the smaller squads.
func splitProportional(n int, sizes []int) []Range {
	k := len(sizes)
	shares := make([]int, k)
	for i := range shares {
		shares[i] = n / k
		if i < n%k {
			shares[i]++
		}
	}
	sort.Ints(shares)

	ranked := make([]rankedSquad, k)
	for i, size := range sizes {
		ranked[i] = rankedSquad{index: i, size: size}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].size < ranked[j].size
	})

	ranges := make([]Range, k)
	cursor := 0
	for pos, sq := range ranked {
		ranges[sq.index] = Range{Start: cursor, End: cursor + shares[pos]}
		cursor += shares[pos]
	}
	return ranges
}

// VerifyPartition checks that ranges cover [0, n) exactly once.
func VerifyPartition(ranges []Range, n int) error {
	owner := make([]int, n)
	for i := range owner {
		owner[i] = -1
	}
	for squad, r := range ranges {
		if r.Start < 0 || r.End > n || r.Start > r.End {
			return &AllocationOverflowError{Slots: n, Ranges: ranges, Reason: fmt.Sprintf("squad %d range %s outside [0,%d)", squad, r, n)}
		}
		for i := r.Start; i < r.End; i++ {
			if owner[i] != -1 {
				return &AllocationOverflowError{Slots: n, Ranges: ranges, Reason: fmt.Sprintf("slot %d assigned to squads %d and %d", i, owner[i], squad)}
			}
			owner[i] = squad
		}
	}
	for i, o := range owner {
		if o == -1 {
			return &AllocationOverflowError{Slots: n, Ranges: ranges, Reason: fmt.Sprintf("slot %d assigned to no squad", i)}
		}
	}
	return nil
}
