/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package watch

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
)

// ClockTime is a wall-clock time of day without a date.
type ClockTime struct {
	Hour   int
	Minute int
}

// Clock builds a ClockTime, normalizing the value into a single day.
func Clock(hour, minute int) ClockTime {
	return fromMinutes(hour*minutesPerHour + minute)
}

// ParseClock parses "HH:MM" or "H:MM".
func ParseClock(s string) (ClockTime, error) {
	raw := strings.TrimSpace(s)
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return ClockTime{}, &FormatError{Input: s, Reason: "expected HH:MM"}
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return ClockTime{}, &FormatError{Input: s, Reason: "hour is not a number"}
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return ClockTime{}, &FormatError{Input: s, Reason: "minute is not a number"}
	}
	if hour < 0 || hour > 23 {
		return ClockTime{}, &FormatError{Input: s, Reason: "hour out of range 0-23"}
	}
	if minute < 0 || minute > 59 {
		return ClockTime{}, &FormatError{Input: s, Reason: "minute out of range 0-59"}
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// MustParseClock is ParseClock for literals; it panics on malformed input.
func MustParseClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Minutes returns minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*minutesPerHour + c.Minute
}

// Add returns c shifted by the given number of minutes, wrapping past midnight.
func (c ClockTime) Add(minutes int) ClockTime {
	return fromMinutes(c.Minutes() + minutes)
}

// Before reports whether c is earlier in the day than other.
func (c ClockTime) Before(other ClockTime) bool {
	return c.Minutes() < other.Minutes()
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%d:%02d", c.Hour, c.Minute)
}

// MarshalText renders the time as "HH:MM".
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)), nil
}

// UnmarshalText parses "HH:MM".
func (c *ClockTime) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalJSON renders the time as a JSON string.
func (c ClockTime) MarshalJSON() ([]byte, error) {
	text, _ := c.MarshalText()
	return json.Marshal(string(text))
}

// UnmarshalJSON parses a JSON "HH:MM" string.
func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &FormatError{Input: string(data), Reason: "expected a string"}
	}
	return c.UnmarshalText([]byte(s))
}

func fromMinutes(total int) ClockTime {
	total %= minutesPerDay
	if total < 0 {
		total += minutesPerDay
	}
	return ClockTime{Hour: total / minutesPerHour, Minute: total % minutesPerHour}
}
