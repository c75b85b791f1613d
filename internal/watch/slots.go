/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package watch

import "time"

// Slot is one duty period of the night.
type Slot struct {
	Index  int           `json:"index"`
	Start  ClockTime     `json:"start"`
	Offset time.Duration `json:"offset"`
	Length time.Duration `json:"length"`
}

// End is the clock time the slot hands over to the next one.
func (s Slot) End() ClockTime {
	return s.Start.Add(int(s.Length / time.Minute))
}

// GenerateSlots slices the rounded window of iv into duty slots.
//
// A platoon of one squad splits the raw night evenly per soldier; any larger
// platoon uses fixed one-hour slots. Slot starts are computed from integer
// minute offsets against the window start, so a share that does not divide
// evenly never accumulates drift and the loop always ends at the window end.
func GenerateSlots(iv Interval, squadSize, squadCount int) ([]Slot, error) {
	if squadCount <= 0 {
		return nil, configErrorf("squad count must be positive, got %d", squadCount)
	}
	if squadSize <= 0 {
		return nil, configErrorf("squad size must be positive, got %d", squadSize)
	}
	if err := iv.Validate(); err != nil {
		return nil, err
	}

	windowStart, _ := iv.Window()
	window := iv.WindowMinutes()
	if window == 0 {
		return nil, configErrorf("interval %s rounds to an empty slot window", iv)
	}

	offset := hourlyOffset
	if squadCount == 1 {
		offset = perCapitaOffset(iv.DurationMinutes(), squadSize)
	}

	var slots []Slot
	for k := 0; ; k++ {
		at := offset(k)
		if at >= window {
			break
		}
		next := offset(k + 1)
		if next > window {
			next = window
		}
		slots = append(slots, Slot{
			Index:  k,
			Start:  windowStart.Add(at),
			Offset: time.Duration(at) * time.Minute,
			Length: time.Duration(next-at) * time.Minute,
		})
	}
	return slots, nil
}

// SlotLength returns the nominal slot length for the platoon shape.
func SlotLength(iv Interval, squadSize, squadCount int) time.Duration {
	if squadCount == 1 && squadSize > 0 {
		return iv.Duration() / time.Duration(squadSize)
	}
	return time.Hour
}

func hourlyOffset(k int) int {
	return k * minutesPerHour
}

// perCapitaOffset returns floor(k*total/size); the offset sequence is strictly
// increasing as long as total >= size.
func perCapitaOffset(total, size int) func(int) int {
	if total < size {
		// Shares below one minute collapse to one-minute slots.
		return func(k int) int { return k }
	}
	return func(k int) int {
		return k * total / size
	}
}
