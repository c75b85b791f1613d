/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package export renders timetables for people: a JSON summary, a console
// listing and an iCal calendar.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/friendsincode/nightwatch/internal/assignment"
	"github.com/friendsincode/nightwatch/internal/planner"
)

// Format selects an output rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatICal Format = "ical"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatText, FormatICal:
		return f, nil
	case "ics":
		return FormatICal, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json, text or ical)", s)
	}
}

// Ext is the file extension for the format.
func (f Format) Ext() string {
	switch f {
	case FormatText:
		return ".txt"
	case FormatICal:
		return ".ics"
	default:
		return ".json"
	}
}

// ContentType is the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatICal:
		return "text/calendar; charset=utf-8"
	default:
		return "application/json"
	}
}

// Report is the per-squad summary written as JSON.
type Report struct {
	PlanID   string        `json:"plan_id"`
	Interval string        `json:"interval"`
	Seed     int64         `json:"seed"`
	Squads   []SquadReport `json:"squads"`
}

// SquadReport lists one squad's duties as clock time and names.
type SquadReport struct {
	Squad      string      `json:"squad"`
	Soldiers   int         `json:"soldiers"`
	StoveWatch []DutyEntry `json:"stove_watch"`
	Patrol     []DutyEntry `json:"patrol"`
	Drivers    []string    `json:"driver_notes,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// DutyEntry is one slot of a duty.
type DutyEntry struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	Crew  []string `json:"crew"`
}

// NewReport flattens a timetable.
func NewReport(tt *planner.Timetable) Report {
	r := Report{
		PlanID:   tt.ID,
		Interval: tt.Interval.String(),
		Seed:     tt.Seed,
		Squads:   make([]SquadReport, 0, len(tt.Squads)),
	}
	for _, sq := range tt.Squads {
		r.Squads = append(r.Squads, SquadReport{
			Squad:      sq.Name,
			Soldiers:   sq.Size,
			StoveWatch: entries(sq.StoveWatch),
			Patrol:     entries(sq.Patrols),
			Drivers:    sq.Drivers.Reasons,
			Error:      sq.Error,
		})
	}
	return r
}

func entries(duties []assignment.Duty) []DutyEntry {
	out := make([]DutyEntry, 0, len(duties))
	for _, d := range duties {
		out = append(out, DutyEntry{
			Start: d.Slot.Start.String(),
			End:   d.Slot.End().String(),
			Crew:  crewNames(d),
		})
	}
	return out
}

func crewNames(d assignment.Duty) []string {
	names := make([]string, 0, len(d.Soldiers))
	for _, s := range d.Soldiers {
		names = append(names, s.String())
	}
	return names
}

// WriteJSON writes the indented JSON report.
func WriteJSON(w io.Writer, tt *planner.Timetable) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewReport(tt)); err != nil {
		return fmt.Errorf("encode timetable: %w", err)
	}
	return nil
}

// WriteText writes a console listing, one block per squad.
func WriteText(w io.Writer, tt *planner.Timetable) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Night %s (%d slots)\n", tt.Interval, len(tt.Slots))
	for _, sq := range tt.Squads {
		fmt.Fprintf(tw, "\n%s (%d soldiers)\n", sq.Name, sq.Size)
		if sq.Failed() {
			fmt.Fprintf(tw, "  not planned: %s\n", sq.Error)
			continue
		}
		fmt.Fprintln(tw, "  Stove watch")
		writeDuties(tw, sq.StoveWatch)
		fmt.Fprintf(tw, "  Patrol %s\n", sq.Patrol)
		writeDuties(tw, sq.Patrols)
		for _, reason := range sq.Drivers.Reasons {
			fmt.Fprintf(tw, "  drivers: %s\n", reason)
		}
	}
	return tw.Flush()
}

func writeDuties(w io.Writer, duties []assignment.Duty) {
	if len(duties) == 0 {
		fmt.Fprintln(w, "    -")
		return
	}
	for _, d := range duties {
		fmt.Fprintf(w, "    %s\t-\t%s\t%s\n", d.Slot.Start, d.Slot.End(), strings.Join(crewNames(d), ", "))
	}
}

// Render writes tt in the given format. iCal output needs a date and is
// produced by ICal instead.
func Render(w io.Writer, tt *planner.Timetable, f Format) error {
	switch f {
	case FormatText:
		return WriteText(w, tt)
	case FormatJSON:
		return WriteJSON(w, tt)
	default:
		return fmt.Errorf("format %q cannot be rendered without a date", f)
	}
}
