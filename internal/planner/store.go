/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/friendsincode/nightwatch/internal/assignment"
	"github.com/friendsincode/nightwatch/internal/models"
	"github.com/friendsincode/nightwatch/internal/roster"
	"github.com/friendsincode/nightwatch/internal/watch"
)

const defaultListLimit = 20

func (s *Service) save(ctx context.Context, tt *Timetable) error {
	if s.db == nil {
		return nil
	}
	plan := toModel(tt)
	if err := s.db.WithContext(ctx).Create(plan).Error; err != nil {
		return fmt.Errorf("store plan %s: %w", tt.ID, err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, id string) (*Timetable, error) {
	var plan models.Plan
	err := s.db.WithContext(ctx).
		Preload("Squads", func(tx *gorm.DB) *gorm.DB { return tx.Order("position") }).
		Preload("Squads.Duties", func(tx *gorm.DB) *gorm.DB { return tx.Order("slot_index") }).
		First(&plan, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load plan %s: %w", id, err)
	}
	return fromModel(&plan)
}

func (s *Service) list(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var plans []models.Plan
	if err := s.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	out := make([]Summary, 0, len(plans))
	for _, p := range plans {
		iv, err := watch.ParseInterval(p.StartsAt, p.EndsAt)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", p.ID, err)
		}
		out = append(out, Summary{
			ID:         p.ID,
			CreatedAt:  p.CreatedAt,
			Interval:   iv,
			SquadCount: p.SquadCount,
			SlotCount:  p.SlotCount,
		})
	}
	return out, nil
}

func toModel(tt *Timetable) *models.Plan {
	plan := &models.Plan{
		ID:         tt.ID,
		Digest:     tt.Digest,
		StartsAt:   formatClock(tt.Interval.Start),
		EndsAt:     formatClock(tt.Interval.End),
		SquadCount: len(tt.Squads),
		SlotCount:  len(tt.Slots),
		Seed:       tt.Seed,
		CreatedAt:  tt.CreatedAt,
	}
	for _, slot := range tt.Slots {
		plan.Slots = append(plan.Slots, models.SlotRecord{
			Index:         slot.Index,
			Start:         formatClock(slot.Start),
			OffsetMinutes: int(slot.Offset / time.Minute),
			LengthMinutes: int(slot.Length / time.Minute),
		})
	}

	for _, sq := range tt.Squads {
		sp := models.SquadPlan{
			ID:               uuid.NewString(),
			PlanID:           tt.ID,
			Position:         sq.Position,
			Name:             sq.Name,
			Size:             sq.Size,
			PatrolStart:      sq.Patrol.Start,
			PatrolEnd:        sq.Patrol.End,
			Error:            sq.Error,
			DriverCount:      sq.Drivers.Drivers,
			DriversCanPatrol: sq.Drivers.CanPatrol,
			DriversCanWatch:  sq.Drivers.CanWatchStove,
			DriverNotes:      sq.Drivers.Reasons,
		}
		sp.Duties = append(sp.Duties, dutyModels(sp.ID, sq.StoveWatch)...)
		sp.Duties = append(sp.Duties, dutyModels(sp.ID, sq.Patrols)...)
		plan.Squads = append(plan.Squads, sp)
	}
	return plan
}

func dutyModels(squadPlanID string, duties []assignment.Duty) []models.Duty {
	out := make([]models.Duty, 0, len(duties))
	for _, d := range duties {
		crew := make([]models.CrewMember, 0, len(d.Soldiers))
		for _, so := range d.Soldiers {
			crew = append(crew, models.CrewMember{Rank: so.Rank, Name: so.Name, Driver: so.Driver})
		}
		out = append(out, models.Duty{
			ID:          uuid.NewString(),
			SquadPlanID: squadPlanID,
			Kind:        models.DutyKind(d.Kind),
			SlotIndex:   d.Slot.Index,
			Start:       formatClock(d.Slot.Start),
			Crew:        crew,
		})
	}
	return out
}

func fromModel(plan *models.Plan) (*Timetable, error) {
	iv, err := watch.ParseInterval(plan.StartsAt, plan.EndsAt)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", plan.ID, err)
	}
	tt := &Timetable{
		ID:        plan.ID,
		CreatedAt: plan.CreatedAt,
		Interval:  iv,
		Seed:      plan.Seed,
		Digest:    plan.Digest,
		Slots:     make([]watch.Slot, 0, len(plan.Slots)),
		Squads:    make([]SquadTimetable, 0, len(plan.Squads)),
	}
	for _, rec := range plan.Slots {
		start, err := watch.ParseClock(rec.Start)
		if err != nil {
			return nil, fmt.Errorf("plan %s slot %d: %w", plan.ID, rec.Index, err)
		}
		tt.Slots = append(tt.Slots, watch.Slot{
			Index:  rec.Index,
			Start:  start,
			Offset: time.Duration(rec.OffsetMinutes) * time.Minute,
			Length: time.Duration(rec.LengthMinutes) * time.Minute,
		})
	}

	for _, sp := range plan.Squads {
		st := SquadTimetable{
			Position: sp.Position,
			Name:     sp.Name,
			Size:     sp.Size,
			Patrol:   watch.Range{Start: sp.PatrolStart, End: sp.PatrolEnd},
			Error:    sp.Error,
			Drivers: assignment.DriverEligibility{
				Drivers:       sp.DriverCount,
				CanPatrol:     sp.DriversCanPatrol,
				CanWatchStove: sp.DriversCanWatch,
				Reasons:       sp.DriverNotes,
			},
		}
		for _, d := range sp.Duties {
			if d.SlotIndex < 0 || d.SlotIndex >= len(tt.Slots) {
				return nil, fmt.Errorf("plan %s: duty references slot %d of %d", plan.ID, d.SlotIndex, len(tt.Slots))
			}
			duty := assignment.Duty{
				Kind: assignment.Kind(d.Kind),
				Slot: tt.Slots[d.SlotIndex],
			}
			for _, c := range d.Crew {
				duty.Soldiers = append(duty.Soldiers, roster.Soldier{Rank: c.Rank, Name: c.Name, Driver: c.Driver})
			}
			if d.Kind == models.DutyPatrol {
				st.Patrols = append(st.Patrols, duty)
			} else {
				st.StoveWatch = append(st.StoveWatch, duty)
			}
		}
		tt.Squads = append(tt.Squads, st)
	}
	return tt, nil
}

// formatClock renders the zero-padded HH:MM form used in storage.
func formatClock(c watch.ClockTime) string {
	text, _ := c.MarshalText()
	return string(text)
}
