/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package roster loads and validates the platoon that stands the night watch.
package roster

import (
	"fmt"
	"strings"

	"github.com/friendsincode/nightwatch/internal/watch"
)

// Platoon shape limits enforced on input.
const (
	MinSquads          = 1
	MaxSquads          = 4
	MinSquadSize       = 5
	MaxSquadSize       = 12
	MaxDriversPerSquad = 2
)

// Soldier is one member of a squad.
type Soldier struct {
	Rank   string `json:"rank" yaml:"rank"`
	Name   string `json:"name" yaml:"name"`
	Driver bool   `json:"driver" yaml:"driver"`
}

func (s Soldier) String() string {
	if s.Rank == "" {
		return s.Name
	}
	return s.Rank + " " + s.Name
}

// Squad is an ordered group of soldiers.
type Squad struct {
	Name     string    `json:"name,omitempty" yaml:"name,omitempty"`
	Soldiers []Soldier `json:"soldiers" yaml:"soldiers"`
}

// Size is the member count of the squad.
func (s Squad) Size() int {
	return len(s.Soldiers)
}

// Drivers returns the squad members flagged as drivers, in roster order.
func (s Squad) Drivers() []Soldier {
	var drivers []Soldier
	for _, soldier := range s.Soldiers {
		if soldier.Driver {
			drivers = append(drivers, soldier)
		}
	}
	return drivers
}

// Label is the squad name, or its 1-based position when unnamed.
func (s Squad) Label(position int) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("Squad #%d", position+1)
}

// Roster is the configured night: when it runs and who stands it.
// Squad order is significant and identifies each squad in allocation.
type Roster struct {
	Interval watch.Interval `json:"interval" yaml:"interval"`
	Squads   []Squad        `json:"squads" yaml:"squads"`
}

// Sizes returns the platoon as ordered squad sizes.
func (r *Roster) Sizes() []int {
	sizes := make([]int, len(r.Squads))
	for i, sq := range r.Squads {
		sizes[i] = sq.Size()
	}
	return sizes
}

// Validate applies the input rules for a platoon: 1-4 squads of 5-12
// soldiers with at most two drivers each, over a non-empty night.
func (r *Roster) Validate() error {
	var problems []string

	if err := r.Interval.Validate(); err != nil {
		return err
	}
	if n := len(r.Squads); n < MinSquads || n > MaxSquads {
		problems = append(problems, fmt.Sprintf("platoon must have %d to %d squads, got %d", MinSquads, MaxSquads, n))
	}
	for i, sq := range r.Squads {
		if n := sq.Size(); n < MinSquadSize || n > MaxSquadSize {
			problems = append(problems, fmt.Sprintf("%s must have %d to %d soldiers, got %d", sq.Label(i), MinSquadSize, MaxSquadSize, n))
		}
		if n := len(sq.Drivers()); n > MaxDriversPerSquad {
			problems = append(problems, fmt.Sprintf("%s has %d drivers, at most %d allowed", sq.Label(i), n, MaxDriversPerSquad))
		}
		for j, soldier := range sq.Soldiers {
			if strings.TrimSpace(soldier.Name) == "" {
				problems = append(problems, fmt.Sprintf("%s soldier %d has no name", sq.Label(i), j+1))
			}
		}
	}

	if len(problems) > 0 {
		return &watch.ConfigurationError{Reason: strings.Join(problems, "; ")}
	}
	return nil
}
