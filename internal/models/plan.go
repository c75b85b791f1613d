/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"time"
)

// DutyKind enumerates the duties a squad stands during the night.
type DutyKind string

const (
	DutyStoveWatch DutyKind = "stove_watch"
	DutyPatrol     DutyKind = "patrol"
)

// Plan is a stored night timetable for one platoon.
type Plan struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	Digest     string `gorm:"type:varchar(64);index"` // blake2b-256 of the roster and seed
	StartsAt   string `gorm:"type:varchar(5)"`        // HH:MM
	EndsAt     string `gorm:"type:varchar(5)"`        // HH:MM
	SquadCount int
	SlotCount  int
	Seed       int64
	Slots      []SlotRecord `gorm:"serializer:json"`
	Squads     []SquadPlan  `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
}

// SlotRecord is one stove-watch slot as stored with the plan.
type SlotRecord struct {
	Index         int    `json:"index"`
	Start         string `json:"start"`
	OffsetMinutes int    `json:"offset_minutes"`
	LengthMinutes int    `json:"length_minutes"`
}

// SquadPlan holds one squad's patrol range and duties.
type SquadPlan struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	PlanID      string `gorm:"type:uuid;index"`
	Position    int
	Name        string
	Size        int
	PatrolStart int
	PatrolEnd   int
	Error       string `gorm:"type:text"` // Set when the squad could not be planned

	DriverCount      int
	DriversCanPatrol bool
	DriversCanWatch  bool
	DriverNotes      []string `gorm:"serializer:json"`
	Duties           []Duty   `gorm:"foreignKey:SquadPlanID;constraint:OnDelete:CASCADE"`
}

// Duty is one slot of a squad's stove watch or patrol with its crew.
type Duty struct {
	ID          string   `gorm:"type:uuid;primaryKey"`
	SquadPlanID string   `gorm:"type:uuid;index"`
	Kind        DutyKind `gorm:"type:varchar(16);index"`
	SlotIndex   int
	Start       string       `gorm:"type:varchar(5)"`
	Crew        []CrewMember `gorm:"serializer:json"`
}

// CrewMember is a soldier on a duty.
type CrewMember struct {
	Rank   string `json:"rank"`
	Name   string `json:"name"`
	Driver bool   `json:"driver"`
}

// All lists every model for migration.
func All() []any {
	return []any{&Plan{}, &SquadPlan{}, &Duty{}}
}
