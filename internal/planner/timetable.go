/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package planner

import (
	"time"

	"github.com/friendsincode/nightwatch/internal/assignment"
	"github.com/friendsincode/nightwatch/internal/watch"
)

// Timetable is the planned night for a whole platoon.
type Timetable struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Interval  watch.Interval   `json:"interval"`
	Seed      int64            `json:"seed"`
	Digest    string           `json:"digest,omitempty"`
	Slots     []watch.Slot     `json:"slots"`
	Squads    []SquadTimetable `json:"squads"`
}

// SquadTimetable is one squad's share of the night. Every squad stands the
// stove watch across all slots and patrols only its own range.
type SquadTimetable struct {
	Position   int                          `json:"position"`
	Name       string                       `json:"name"`
	Size       int                          `json:"size"`
	Patrol     watch.Range                  `json:"patrol"`
	StoveWatch []assignment.Duty            `json:"stove_watch"`
	Patrols    []assignment.Duty            `json:"patrols"`
	Drivers    assignment.DriverEligibility `json:"drivers"`
	Error      string                       `json:"error,omitempty"`

	// Err is the planning failure for this squad; it is not persisted.
	Err error `json:"-"`
}

// Failed reports whether the squad could not be planned.
func (s SquadTimetable) Failed() bool {
	return s.Error != ""
}

// FailedSquads counts squads with a planning error.
func (t *Timetable) FailedSquads() int {
	n := 0
	for _, sq := range t.Squads {
		if sq.Failed() {
			n++
		}
	}
	return n
}

// Summary is a short listing entry for a stored plan.
type Summary struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	Interval   watch.Interval `json:"interval"`
	SquadCount int            `json:"squad_count"`
	SlotCount  int            `json:"slot_count"`
}

// Duration is the length of the configured night.
func (t *Timetable) Duration() time.Duration {
	return t.Interval.Duration()
}
