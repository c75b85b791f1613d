/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/nightwatch/internal/events"
	"github.com/friendsincode/nightwatch/internal/planner"
	"github.com/friendsincode/nightwatch/internal/storage"
	"github.com/friendsincode/nightwatch/internal/telemetry"
)

// Key is the storage key of an exported timetable.
func Key(planID string, f Format) string {
	return "timetables/" + planID + f.Ext()
}

// Uploader renders timetables and keeps them in an object store.
type Uploader struct {
	store  storage.ObjectStore
	bus    events.Publisher
	logger zerolog.Logger
}

// NewUploader creates an uploader. bus may be nil.
func NewUploader(store storage.ObjectStore, bus events.Publisher, logger zerolog.Logger) *Uploader {
	return &Uploader{
		store:  store,
		bus:    bus,
		logger: logger.With().Str("component", "export_upload").Logger(),
	}
}

// Upload renders tt in format f and stores it. night anchors iCal output.
// It returns the location of the stored object.
func (u *Uploader) Upload(ctx context.Context, tt *planner.Timetable, f Format, night time.Time) (string, error) {
	var buf bytes.Buffer
	if f == FormatICal {
		buf.Write(ICal(tt, night, night.Location()).Data)
	} else if err := Render(&buf, tt, f); err != nil {
		return "", err
	}

	key := Key(tt.ID, f)
	backend := u.store.Backend()
	if err := u.store.Put(ctx, key, buf.Bytes(), f.ContentType()); err != nil {
		telemetry.ExportUploadsTotal.WithLabelValues(backend, "error").Inc()
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	telemetry.ExportUploadsTotal.WithLabelValues(backend, "ok").Inc()

	location := u.store.URL(key)
	u.logger.Info().Str("plan_id", tt.ID).Str("format", string(f)).Str("location", location).Msg("timetable exported")
	if u.bus != nil {
		u.bus.Publish(events.EventExportUploaded, events.Payload{
			"plan_id":  tt.ID,
			"format":   string(f),
			"backend":  backend,
			"location": location,
		})
	}
	return location, nil
}
