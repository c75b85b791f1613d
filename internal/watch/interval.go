/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package watch

import "time"

// Rounding thresholds for the slot window. The start snaps to the next hour
// only when it is within ten minutes of it, the end snaps up as soon as it
// is ten minutes past. Both drop the minutes.
const (
	startRoundUpMinute = 50
	endRoundUpMinute   = 10
)

// Interval is the night routine, from Start until End. An End earlier than
// Start means the routine runs past midnight.
type Interval struct {
	Start ClockTime `json:"start" yaml:"start"`
	End   ClockTime `json:"end" yaml:"end"`
}

// ParseInterval parses the "HH:MM,HH:MM" form used by roster files.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: s, End: e}, nil
}

// DurationMinutes is the elapsed time from Start to End, crossing midnight
// when Start is later in the day than End.
func (iv Interval) DurationMinutes() int {
	return spanMinutes(iv.Start, iv.End)
}

// DurationHours is DurationMinutes as a fraction of hours.
func (iv Interval) DurationHours() float64 {
	return float64(iv.DurationMinutes()) / minutesPerHour
}

// Duration is DurationMinutes as a time.Duration.
func (iv Interval) Duration() time.Duration {
	return time.Duration(iv.DurationMinutes()) * time.Minute
}

// Validate rejects an interval with no duration.
func (iv Interval) Validate() error {
	if iv.DurationMinutes() == 0 {
		return configErrorf("interval %s-%s has zero duration", iv.Start, iv.End)
	}
	return nil
}

// Window returns the rounded slot window [start, end).
func (iv Interval) Window() (ClockTime, ClockTime) {
	start := Clock(iv.Start.Hour, 0)
	if iv.Start.Minute >= startRoundUpMinute {
		start = Clock(iv.Start.Hour+1, 0)
	}
	end := Clock(iv.End.Hour, 0)
	if iv.End.Minute >= endRoundUpMinute {
		end = Clock(iv.End.Hour+1, 0)
	}
	return start, end
}

// WindowMinutes is the length of the rounded slot window.
func (iv Interval) WindowMinutes() int {
	start, end := iv.Window()
	return spanMinutes(start, end)
}

func (iv Interval) String() string {
	return iv.Start.String() + "-" + iv.End.String()
}

func spanMinutes(start, end ClockTime) int {
	endMinutes := end.Minutes()
	if start.Minutes() > endMinutes {
		endMinutes += minutesPerDay
	}
	return endMinutes - start.Minutes()
}
