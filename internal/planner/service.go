/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package planner turns a roster into a night timetable: stove watch
// slots, each squad's patrol range and the crews standing them.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/friendsincode/nightwatch/internal/assignment"
	"github.com/friendsincode/nightwatch/internal/cache"
	"github.com/friendsincode/nightwatch/internal/events"
	"github.com/friendsincode/nightwatch/internal/roster"
	"github.com/friendsincode/nightwatch/internal/telemetry"
	"github.com/friendsincode/nightwatch/internal/watch"
)

const tracerName = "nightwatch/planner"

// ErrNotFound is returned when a plan does not exist.
var ErrNotFound = errors.New("plan not found")

// AssignerFactory builds the assigner used for one plan.
type AssignerFactory func(seed int64) assignment.Assigner

// Service plans nights and keeps the results. The database, cache and
// event publisher are all optional.
type Service struct {
	db          *gorm.DB
	bus         events.Publisher
	cache       *cache.Cache
	newAssigner AssignerFactory
	seed        int64
	logger      zerolog.Logger
	now         func() time.Time
}

// NewService creates a planner. db and bus may be nil.
func NewService(db *gorm.DB, bus events.Publisher, logger zerolog.Logger) *Service {
	return &Service{
		db:  db,
		bus: bus,
		newAssigner: func(seed int64) assignment.Assigner {
			return assignment.NewRandomAssigner(seed)
		},
		logger: logger.With().Str("component", "planner").Logger(),
		now:    time.Now,
	}
}

// SetCache enables plan caching.
func (s *Service) SetCache(c *cache.Cache) {
	s.cache = c
}

// SetSeed fixes the assignment seed for every plan. Zero draws a fresh
// seed per plan.
func (s *Service) SetSeed(seed int64) {
	s.seed = seed
}

// SetAssignerFactory replaces the random assigner.
func (s *Service) SetAssignerFactory(f AssignerFactory) {
	if f != nil {
		s.newAssigner = f
	}
}

// Plan computes the timetable for ro using the service seed.
func (s *Service) Plan(ctx context.Context, ro *roster.Roster) (*Timetable, error) {
	return s.PlanWithSeed(ctx, ro, s.seed)
}

// PlanWithSeed computes the timetable for ro. A non-zero seed makes the
// crews reproducible and lets an identical earlier request be served from
// cache.
//
// Roster and slot errors fail the whole plan. Allocation and assignment
// errors are recorded on the squad they belong to and the remaining squads
// are still planned.
func (s *Service) PlanWithSeed(ctx context.Context, ro *roster.Roster, seed int64) (*Timetable, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "planner.Plan")
	defer span.End()
	start := time.Now()

	if ro == nil {
		return nil, s.fail(span, &watch.ConfigurationError{Reason: "no roster"})
	}
	if err := ro.Validate(); err != nil {
		return nil, s.fail(span, err)
	}
	span.SetAttributes(attribute.Int("squads", len(ro.Squads)), attribute.String("interval", ro.Interval.String()))

	fixedSeed := seed != 0
	if !fixedSeed {
		seed = s.now().UnixNano()
	}

	var digest string
	if fixedSeed {
		d, err := Digest(ro, seed)
		if err != nil {
			return nil, s.fail(span, fmt.Errorf("digest roster: %w", err))
		}
		digest = d
		if tt, ok := s.cached(ctx, digest); ok {
			telemetry.PlansTotal.WithLabelValues("cached").Inc()
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return tt, nil
		}
	}

	// Stove watch slots are shared by the platoon and sized for the first squad.
	slots, err := watch.GenerateSlots(ro.Interval, ro.Squads[0].Size(), len(ro.Squads))
	if err != nil {
		return nil, s.fail(span, err)
	}

	tt := &Timetable{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Interval:  ro.Interval,
		Seed:      seed,
		Digest:    digest,
		Slots:     slots,
		Squads:    make([]SquadTimetable, 0, len(ro.Squads)),
	}

	sizes := ro.Sizes()
	assigner := s.newAssigner(seed)
	for i, squad := range ro.Squads {
		tt.Squads = append(tt.Squads, s.planSquad(i, squad, ro.Interval, slots, sizes, assigner))
	}

	if err := s.save(ctx, tt); err != nil {
		return nil, s.fail(span, err)
	}
	if err := s.cache.SetPlan(ctx, tt.ID, tt.Digest, tt); err != nil {
		s.logger.Debug().Err(err).Str("plan_id", tt.ID).Msg("cache plan")
	}

	telemetry.PlansTotal.WithLabelValues("created").Inc()
	telemetry.PlanDuration.Observe(time.Since(start).Seconds())
	telemetry.SlotsPerPlan.Observe(float64(len(slots)))
	span.SetAttributes(attribute.String("plan_id", tt.ID), attribute.Int("slots", len(slots)))

	s.publishCreated(tt)
	s.logger.Info().
		Str("plan_id", tt.ID).
		Str("interval", tt.Interval.String()).
		Int("squads", len(tt.Squads)).
		Int("slots", len(slots)).
		Int("failed_squads", tt.FailedSquads()).
		Msg("timetable planned")

	return tt, nil
}

func (s *Service) planSquad(pos int, squad roster.Squad, night watch.Interval, slots []watch.Slot, sizes []int, assigner assignment.Assigner) SquadTimetable {
	st := SquadTimetable{
		Position: pos,
		Name:     squad.Label(pos),
		Size:     squad.Size(),
	}

	patrol, err := watch.Allocate(slots, sizes, pos)
	if err != nil {
		return s.squadError(st, err)
	}
	st.Patrol = patrol
	st.Drivers = assignment.EvaluateDrivers(squad, night, len(slots), patrol)

	if st.StoveWatch, err = assigner.Assign(squad, assignment.KindStoveWatch, slots); err != nil {
		return s.squadError(st, err)
	}
	if st.Patrols, err = assigner.Assign(squad, assignment.KindPatrol, patrol.Slots(slots)); err != nil {
		return s.squadError(st, err)
	}
	return st
}

func (s *Service) squadError(st SquadTimetable, err error) SquadTimetable {
	st.Err = err
	st.Error = err.Error()
	telemetry.SquadErrorsTotal.WithLabelValues(errorKind(err)).Inc()
	s.logger.Warn().Err(err).Int("squad", st.Position).Str("name", st.Name).Msg("squad could not be planned")
	return st
}

// Get loads a plan by ID.
func (s *Service) Get(ctx context.Context, id string) (*Timetable, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "planner.Get", attribute.String("plan_id", id))
	defer span.End()

	var tt Timetable
	if s.cache.GetPlan(ctx, id, &tt) {
		return &tt, nil
	}
	if s.db == nil {
		return nil, ErrNotFound
	}

	loaded, err := s.load(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			telemetry.RecordError(span, err)
		}
		return nil, err
	}
	if err := s.cache.SetPlan(ctx, loaded.ID, loaded.Digest, loaded); err != nil {
		s.logger.Debug().Err(err).Str("plan_id", loaded.ID).Msg("cache plan")
	}
	return loaded, nil
}

// List returns the most recent stored plans, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Summary, error) {
	if s.db == nil {
		return []Summary{}, nil
	}
	return s.list(ctx, limit)
}

func (s *Service) cached(ctx context.Context, digest string) (*Timetable, bool) {
	id, ok := s.cache.LookupDigest(ctx, digest)
	if !ok {
		return nil, false
	}
	var tt Timetable
	if !s.cache.GetPlan(ctx, id, &tt) {
		return nil, false
	}
	s.logger.Debug().Str("plan_id", id).Msg("serving plan from cache")
	return &tt, true
}

func (s *Service) fail(span trace.Span, err error) error {
	telemetry.RecordError(span, err)
	telemetry.PlansTotal.WithLabelValues("failed").Inc()
	s.logger.Warn().Err(err).Msg("planning failed")
	if s.bus != nil {
		s.bus.Publish(events.EventPlanFailed, events.Payload{
			"error": err.Error(),
			"kind":  errorKind(err),
		})
	}
	return err
}

func (s *Service) publishCreated(tt *Timetable) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.EventPlanCreated, events.Payload{
		"plan_id":       tt.ID,
		"interval":      tt.Interval.String(),
		"squads":        len(tt.Squads),
		"slots":         len(tt.Slots),
		"failed_squads": tt.FailedSquads(),
	})
	for _, sq := range tt.Squads {
		if !sq.Failed() {
			continue
		}
		s.bus.Publish(events.EventSquadFailed, events.Payload{
			"plan_id": tt.ID,
			"squad":   sq.Position,
			"name":    sq.Name,
			"error":   sq.Error,
		})
	}
}

// errorKind labels an error for metrics and events.
func errorKind(err error) string {
	switch {
	case errors.Is(err, watch.ErrFormat):
		return "format"
	case errors.Is(err, watch.ErrConfiguration):
		return "configuration"
	case errors.Is(err, watch.ErrAllocationOverflow):
		return "allocation_overflow"
	default:
		return "internal"
	}
}
