/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/nightwatch/internal/events"
	"github.com/friendsincode/nightwatch/internal/planner"
	"github.com/friendsincode/nightwatch/internal/roster"
	"github.com/friendsincode/nightwatch/internal/storage"
	"github.com/friendsincode/nightwatch/internal/watch"
)

func plannedNight(t *testing.T, start, end string, sizes ...int) *planner.Timetable {
	t.Helper()
	iv, err := watch.ParseInterval(start, end)
	if err != nil {
		t.Fatalf("interval: %v", err)
	}
	ro := &roster.Roster{Interval: iv}
	for i, size := range sizes {
		sq := roster.Squad{Name: fmt.Sprintf("Squad %d", i+1)}
		for j := 0; j < size; j++ {
			sq.Soldiers = append(sq.Soldiers, roster.Soldier{Rank: "PVT", Name: fmt.Sprintf("S%d-%d", i+1, j+1)})
		}
		ro.Squads = append(ro.Squads, sq)
	}
	tt, err := planner.NewService(nil, nil, zerolog.Nop()).PlanWithSeed(context.Background(), ro, 11)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	return tt
}

func TestWriteJSON(t *testing.T) {
	tt := plannedNight(t, "22:00", "06:00", 5, 6)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, tt); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.PlanID != tt.ID || got.Interval != "22:00-6:00" || len(got.Squads) != 2 {
		t.Fatalf("report = %+v", got)
	}
	if n := len(got.Squads[0].StoveWatch); n != 8 {
		t.Fatalf("stove watch entries = %d, want 8", n)
	}
	first := got.Squads[0].StoveWatch[0]
	if first.Start != "22:00" || first.End != "23:00" || len(first.Crew) != 1 {
		t.Fatalf("first entry = %+v", first)
	}
	if n := len(got.Squads[0].Patrol) + len(got.Squads[1].Patrol); n != 8 {
		t.Fatalf("patrol entries = %d, want 8", n)
	}
}

func TestWriteText(t *testing.T) {
	tt := plannedNight(t, "22:00", "06:00", 5, 6)

	var buf bytes.Buffer
	if err := WriteText(&buf, tt); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Night 22:00-6:00 (8 slots)", "Squad 1 (5 soldiers)", "Stove watch", "Patrol [0,4)", "Patrol [4,8)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestICal(t *testing.T) {
	tt := plannedNight(t, "22:00", "06:00", 5, 6)
	night := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	res := ICal(tt, night, time.UTC)
	data := string(res.Data)

	if res.Filename != "nightwatch-2026-03-01.ics" {
		t.Fatalf("filename = %q", res.Filename)
	}
	if got, want := strings.Count(data, "BEGIN:VEVENT"), 2*8+8; got != want {
		t.Fatalf("events = %d, want %d", got, want)
	}
	for _, want := range []string{"DTSTART:20260301T220000Z", "DTEND:20260302T060000Z", "SUMMARY:Patrol: PVT "} {
		if !strings.Contains(data, want) {
			t.Errorf("calendar missing %q", want)
		}
	}
	if !strings.HasSuffix(data, "END:VCALENDAR\r\n") {
		t.Fatal("calendar not terminated")
	}
}

func TestWindowStart(t *testing.T) {
	night := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		start, end string
		want       time.Time
	}{
		{"22:00", "06:00", time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)},
		{"22:30", "06:00", time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)},
		{"21:55", "06:00", time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)},
		{"23:50", "06:00", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		iv, _ := watch.ParseInterval(tt.start, tt.end)
		if got := WindowStart(iv, night, time.UTC); !got.Equal(tt.want) {
			t.Errorf("%s: window start = %v, want %v", tt.start, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": FormatJSON, "TEXT": FormatText, "ics": FormatICal, " ical ": FormatICal} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatal("expected error for pdf")
	}
	if err := Render(&bytes.Buffer{}, &planner.Timetable{}, FormatICal); err == nil {
		t.Fatal("expected Render to refuse ical")
	}
}

func TestEscapeICalText(t *testing.T) {
	if got := escapeICalText("a;b,c\nd"); got != `a\;b\,c\nd` {
		t.Fatalf("escaped = %q", got)
	}
}

func TestUploaderStoresAndPublishes(t *testing.T) {
	tt := plannedNight(t, "22:00", "06:00", 6)
	dir := t.TempDir()
	bus := events.NewBus()
	uploaded := bus.Subscribe(events.EventExportUploaded)

	up := NewUploader(storage.NewFilesystemStorage(dir, zerolog.Nop()), bus, zerolog.Nop())
	night := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, f := range []Format{FormatJSON, FormatText, FormatICal} {
		location, err := up.Upload(context.Background(), tt, f, night)
		if err != nil {
			t.Fatalf("upload %s: %v", f, err)
		}
		if location != filepath.Join(dir, "timetables", tt.ID+f.Ext()) {
			t.Fatalf("location = %q", location)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "timetables", tt.ID+".ics"))
	if err != nil {
		t.Fatalf("read ics: %v", err)
	}
	if !strings.HasPrefix(string(data), "BEGIN:VCALENDAR") {
		t.Fatalf("ics content = %q", data[:20])
	}
	if len(uploaded) != 3 {
		t.Fatalf("export.uploaded events = %d, want 3", len(uploaded))
	}
}
