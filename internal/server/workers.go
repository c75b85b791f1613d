/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"time"

	"github.com/friendsincode/nightwatch/internal/db"
	"github.com/friendsincode/nightwatch/internal/events"
)

const poolMetricsInterval = 30 * time.Second

func (s *Server) startBackgroundWorkers() {
	if s.autoExport == "" && s.db == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	if s.db != nil {
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			s.runPoolMetrics(ctx)
		}()
	}

	if s.autoExport != "" {
		// Subscribe before returning so no plan created afterwards is missed.
		sub := s.bus.Subscribe(events.EventPlanCreated)
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			defer s.bus.Unsubscribe(events.EventPlanCreated, sub)
			s.runAutoExport(ctx, sub)
		}()
	}
}

func (s *Server) runPoolMetrics(ctx context.Context) {
	ticker := time.NewTicker(poolMetricsInterval)
	defer ticker.Stop()

	db.UpdateConnectionMetrics(s.db)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			db.UpdateConnectionMetrics(s.db)
		}
	}
}

// runAutoExport uploads every newly created plan in the configured format.
func (s *Server) runAutoExport(ctx context.Context, sub events.Subscriber) {
	s.logger.Info().Str("format", string(s.autoExport)).Msg("auto export started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("auto export stopped")
			return

		case payload, ok := <-sub:
			if !ok {
				return
			}
			planID, _ := payload["plan_id"].(string)
			if planID == "" {
				continue
			}
			s.exportPlan(ctx, planID)
		}
	}
}

func (s *Server) exportPlan(ctx context.Context, planID string) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tt, err := s.planner.Get(ctx, planID)
	if err != nil {
		s.logger.Warn().Err(err).Str("plan_id", planID).Msg("auto export: load plan failed")
		return
	}
	loc := s.cfg.Location()
	now := time.Now().In(loc)
	night := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if _, err := s.uploader.Upload(ctx, tt, s.autoExport, night); err != nil {
		s.logger.Warn().Err(err).Str("plan_id", planID).Msg("auto export failed")
	}
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel == nil {
		return
	}
	s.bgCancel()
	s.bgWG.Wait()
	s.bgCancel = nil
}
