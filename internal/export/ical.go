/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/friendsincode/nightwatch/internal/assignment"
	"github.com/friendsincode/nightwatch/internal/planner"
	"github.com/friendsincode/nightwatch/internal/watch"
)

// ICalResult contains the iCal export data.
type ICalResult struct {
	Data        []byte
	Filename    string
	ContentType string
}

// ICal renders every duty of tt as a calendar event. night is the date the
// watch begins; its clock part is ignored and loc decides the time zone.
func ICal(tt *planner.Timetable, night time.Time, loc *time.Location) *ICalResult {
	if loc == nil {
		loc = time.UTC
	}
	windowStart := WindowStart(tt.Interval, night, loc)
	stamp := formatICalTime(tt.CreatedAt)

	var buf bytes.Buffer
	buf.WriteString("BEGIN:VCALENDAR\r\n")
	buf.WriteString("VERSION:2.0\r\n")
	buf.WriteString("PRODID:-//Nightwatch//Timetable Export//EN\r\n")
	buf.WriteString(fmt.Sprintf("X-WR-CALNAME:Night watch %s\r\n", escapeICalText(night.Format("2006-01-02"))))
	buf.WriteString("CALSCALE:GREGORIAN\r\n")
	buf.WriteString("METHOD:PUBLISH\r\n")

	for _, sq := range tt.Squads {
		for _, d := range sq.StoveWatch {
			writeEvent(&buf, tt.ID, sq, d, windowStart, stamp)
		}
		for _, d := range sq.Patrols {
			writeEvent(&buf, tt.ID, sq, d, windowStart, stamp)
		}
	}

	buf.WriteString("END:VCALENDAR\r\n")

	return &ICalResult{
		Data:        buf.Bytes(),
		Filename:    fmt.Sprintf("nightwatch-%s.ics", night.Format("2006-01-02")),
		ContentType: FormatICal.ContentType(),
	}
}

func writeEvent(buf *bytes.Buffer, planID string, sq planner.SquadTimetable, d assignment.Duty, windowStart time.Time, stamp string) {
	start := windowStart.Add(d.Slot.Offset)
	title := "Stove watch"
	if d.Kind == assignment.KindPatrol {
		title = "Patrol"
	}

	buf.WriteString("BEGIN:VEVENT\r\n")
	buf.WriteString(fmt.Sprintf("UID:%s-%d-%s-%d@nightwatch\r\n", planID, sq.Position, d.Kind, d.Slot.Index))
	buf.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", stamp))
	buf.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICalTime(start)))
	buf.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICalTime(start.Add(d.Slot.Length))))
	buf.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICalText(title+": "+strings.Join(crewNames(d), ", "))))
	buf.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICalText(sq.Name)))
	buf.WriteString("END:VEVENT\r\n")
}

// WindowStart places the rounded slot window of iv on the calendar. The
// window may start up to ten minutes after midnight when the night starts
// late on the given date.
func WindowStart(iv watch.Interval, night time.Time, loc *time.Location) time.Time {
	y, m, d := night.Date()
	start := time.Date(y, m, d, iv.Start.Hour, iv.Start.Minute, 0, 0, loc)

	ws, _ := iv.Window()
	delta := ws.Minutes() - iv.Start.Minutes()
	switch {
	case delta > 12*60:
		delta -= 24 * 60
	case delta < -12*60:
		delta += 24 * 60
	}
	return start.Add(time.Duration(delta) * time.Minute)
}

func formatICalTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func escapeICalText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
