/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/friendsincode/nightwatch/internal/config"
)

const platoonFile = "../../internal/roster/testdata/platoon.txt"

func cliConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "test",
		DBBackend:   config.DatabaseSQLite,
		OutputDir:   t.TempDir(),
		Timezone:    "UTC",
	}
}

func TestPlanNightText(t *testing.T) {
	var out bytes.Buffer
	opts := planOptions{file: platoonFile, format: "text", output: "-", seed: 4}
	if err := planNight(context.Background(), cliConfig(t), opts, strings.NewReader(""), &out, zerolog.Nop()); err != nil {
		t.Fatalf("plan: %v", err)
	}
	text := out.String()
	for _, want := range []string{"Night 22:00-6:00", "Squad #1", "Squad #2", "Stove watch", "Patrol [0,"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestPlanNightInteractiveJSON(t *testing.T) {
	answers := []string{"23:00", "05:00", "1", "5"}
	for i := 0; i < 5; i++ {
		answers = append(answers, "PVT", "Soldier"+string(rune('A'+i)), "no")
	}
	in := strings.NewReader(strings.Join(answers, "\n") + "\n")

	var out bytes.Buffer
	opts := planOptions{format: "json", output: filepath.Join(t.TempDir(), "plan.json"), seed: 9}
	if err := planNight(context.Background(), cliConfig(t), opts, in, &out, zerolog.Nop()); err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(out.String(), "How many squads") {
		t.Fatalf("prompts missing from output:\n%s", out.String())
	}

	data, err := os.ReadFile(opts.output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var report map[string]any
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, data)
	}
	if len(report) == 0 {
		t.Fatal("empty report")
	}
}

func TestPlanNightUploadICal(t *testing.T) {
	cfg := cliConfig(t)
	var out bytes.Buffer
	opts := planOptions{file: platoonFile, format: "ical", date: "2026-01-31", output: "-", seed: 2, upload: true}
	if err := planNight(context.Background(), cfg, opts, strings.NewReader(""), &out, zerolog.Nop()); err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(out.String(), "DTSTART:20260131T220000Z") {
		t.Fatalf("calendar does not start on the given night:\n%s", out.String())
	}

	matches, err := filepath.Glob(filepath.Join(cfg.OutputDir, "timetables", "*.ics"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("uploaded files = %v (err %v), want one .ics", matches, err)
	}
}

func TestPlanNightRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name string
		opts planOptions
	}{
		{"format", planOptions{file: platoonFile, format: "pdf"}},
		{"date", planOptions{file: platoonFile, format: "text", date: "31.1.2026"}},
		{"missing file", planOptions{file: "does-not-exist.txt", format: "text"}},
	}
	for _, tt := range tests {
		err := planNight(context.Background(), cliConfig(t), tt.opts, strings.NewReader(""), &bytes.Buffer{}, zerolog.Nop())
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}
