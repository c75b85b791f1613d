/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/nightwatch/internal/auth"
	"github.com/friendsincode/nightwatch/internal/events"
	"github.com/friendsincode/nightwatch/internal/export"
	"github.com/friendsincode/nightwatch/internal/planner"
	"github.com/friendsincode/nightwatch/internal/roster"
	"github.com/friendsincode/nightwatch/internal/watch"
)

const maxRosterBytes = 1 << 20

// API exposes HTTP handlers.
type API struct {
	planner   *planner.Service
	uploader  *export.Uploader
	bus       events.Broker
	jwtSecret []byte
	location  *time.Location
	logger    zerolog.Logger
	now       func() time.Time
}

// New creates the API router wrapper.
func New(svc *planner.Service, bus events.Broker, jwtSecret []byte, logger zerolog.Logger) *API {
	return &API{
		planner:   svc,
		bus:       bus,
		jwtSecret: jwtSecret,
		location:  time.UTC,
		logger:    logger.With().Str("component", "api").Logger(),
		now:       time.Now,
	}
}

// SetUploader enables the exports endpoint.
func (a *API) SetUploader(u *export.Uploader) {
	a.uploader = u
}

// SetLocation sets the time zone used to anchor calendar exports.
func (a *API) SetLocation(loc *time.Location) {
	if loc != nil {
		a.location = loc
	}
}

// Routes registers API routes on the provided router.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		r.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(a.jwtSecret))

			pr.Route("/plans", func(r chi.Router) {
				r.With(auth.RequireRole(auth.RoleViewer)).Get("/", a.handlePlansList)
				r.With(auth.RequireRole(auth.RolePlanner)).Post("/", a.handlePlansCreate)
				r.Route("/{planID}", func(r chi.Router) {
					r.With(auth.RequireRole(auth.RoleViewer)).Get("/", a.handlePlansGet)
					r.With(auth.RequireRole(auth.RoleViewer)).Get("/ical", a.handlePlansICal)
					r.With(auth.RequireRole(auth.RolePlanner)).Post("/exports", a.handlePlansExport)
				})
			})

			pr.With(auth.RequireRole(auth.RoleViewer)).Get("/events", a.handleEvents)
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handlePlansCreate(w http.ResponseWriter, r *http.Request) {
	ro, err := decodeRoster(r)
	if err != nil {
		a.logger.Debug().Err(err).Msg("decode roster failed")
		writeError(w, http.StatusBadRequest, "invalid_roster")
		return
	}

	var seed int64
	if raw := r.URL.Query().Get("seed"); raw != "" {
		seed, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_seed")
			return
		}
	}

	var tt *planner.Timetable
	if seed != 0 {
		tt, err = a.planner.PlanWithSeed(r.Context(), ro, seed)
	} else {
		tt, err = a.planner.Plan(r.Context(), ro)
	}
	if err != nil {
		a.writePlanError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tt)
}

func (a *API) handlePlansList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = n
	}

	plans, err := a.planner.List(r.Context(), limit)
	if err != nil {
		a.logger.Error().Err(err).Msg("list plans failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (a *API) handlePlansGet(w http.ResponseWriter, r *http.Request) {
	tt, ok := a.loadPlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, tt)
}

func (a *API) handlePlansICal(w http.ResponseWriter, r *http.Request) {
	tt, ok := a.loadPlan(w, r)
	if !ok {
		return
	}
	night, err := a.nightParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}

	result := export.ICal(tt, night, a.location)
	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.Filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

func (a *API) handlePlansExport(w http.ResponseWriter, r *http.Request) {
	if a.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "exports_disabled")
		return
	}
	format := export.FormatJSON
	if raw := r.URL.Query().Get("format"); raw != "" {
		f, err := export.ParseFormat(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_format")
			return
		}
		format = f
	}
	night, err := a.nightParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	tt, ok := a.loadPlan(w, r)
	if !ok {
		return
	}

	location, err := a.uploader.Upload(r.Context(), tt, format, night)
	if err != nil {
		a.logger.Error().Err(err).Str("plan_id", tt.ID).Msg("export failed")
		writeError(w, http.StatusBadGateway, "export_failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"plan_id":  tt.ID,
		"format":   string(format),
		"key":      export.Key(tt.ID, format),
		"location": location,
	})
}

func (a *API) loadPlan(w http.ResponseWriter, r *http.Request) (*planner.Timetable, bool) {
	id := chi.URLParam(r, "planID")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id_required")
		return nil, false
	}
	tt, err := a.planner.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, planner.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return nil, false
		}
		a.logger.Error().Err(err).Str("plan_id", id).Msg("load plan failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return nil, false
	}
	return tt, true
}

// nightParam reads ?date=YYYY-MM-DD, defaulting to today.
func (a *API) nightParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		now := a.now().In(a.location)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.location), nil
	}
	return time.ParseInLocation("2006-01-02", raw, a.location)
}

func (a *API) writePlanError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, watch.ErrFormat):
		writeErrorDetail(w, http.StatusBadRequest, "invalid_time", err)
	case errors.Is(err, watch.ErrConfiguration):
		writeErrorDetail(w, http.StatusUnprocessableEntity, "invalid_configuration", err)
	case errors.Is(err, watch.ErrAllocationOverflow):
		writeErrorDetail(w, http.StatusUnprocessableEntity, "allocation_overflow", err)
	default:
		a.logger.Error().Err(err).Msg("plan failed")
		writeError(w, http.StatusInternalServerError, "plan_failed")
	}
}

// decodeRoster reads a roster body. JSON is the default; YAML and the
// plain text roster format are chosen by Content-Type.
func decodeRoster(r *http.Request) (*roster.Roster, error) {
	data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxRosterBytes))
	if err != nil {
		return nil, err
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case strings.Contains(mediaType, "yaml"):
		return roster.ParseYAML(data)
	case mediaType == "text/plain":
		return roster.Parse(strings.NewReader(string(data)))
	default:
		return roster.ParseJSON(data)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func writeErrorDetail(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, map[string]string{"error": code, "detail": err.Error()})
}
