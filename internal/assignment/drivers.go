/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package assignment

import (
	"github.com/friendsincode/nightwatch/internal/roster"
	"github.com/friendsincode/nightwatch/internal/watch"
)

// DriverRestHours is the uninterrupted sleep a driver needs before driving.
const DriverRestHours = 6

// DriverEligibility says which duties a squad's drivers can take without
// losing their rest.
type DriverEligibility struct {
	Drivers       int      `json:"drivers"`
	CanPatrol     bool     `json:"can_patrol"`
	CanWatchStove bool     `json:"can_watch_stove"`
	Reasons       []string `json:"reasons,omitempty"`
}

// EvaluateDrivers applies the driver rest rules to one squad. A patrol
// costs a driver two hours and a stove watch one, so the night must leave
// DriverRestHours after that. Patrol is only possible when the squad's
// patrol range opens or closes the night, keeping the rest contiguous.
func EvaluateDrivers(squad roster.Squad, night watch.Interval, slotCount int, patrol watch.Range) DriverEligibility {
	el := DriverEligibility{
		Drivers:       len(squad.Drivers()),
		CanPatrol:     true,
		CanWatchStove: true,
	}
	if el.Drivers == 0 {
		el.CanPatrol = false
		el.CanWatchStove = false
		el.Reasons = append(el.Reasons, "squad has no drivers")
		return el
	}

	if patrol.Len() == 0 || (patrol.Start != 0 && patrol.End != slotCount) {
		el.CanPatrol = false
		el.Reasons = append(el.Reasons, "patrol range does not open or close the night")
	}

	hours := night.DurationHours()
	if hours-2 < DriverRestHours {
		el.CanPatrol = false
		el.Reasons = append(el.Reasons, "night too short to patrol and rest")
	}
	if hours-1 < DriverRestHours {
		el.CanWatchStove = false
		el.Reasons = append(el.Reasons, "night too short to watch the stove and rest")
	}
	return el
}
