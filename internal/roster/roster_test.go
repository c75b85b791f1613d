/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package roster

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/friendsincode/nightwatch/internal/watch"
)

func squadOf(n, drivers int) Squad {
	var sq Squad
	for i := 0; i < n; i++ {
		sq.Soldiers = append(sq.Soldiers, Soldier{Rank: "PVT", Name: "Soldier" + string(rune('A'+i)), Driver: i < drivers})
	}
	return sq
}

func TestLoadFileText(t *testing.T) {
	ro, err := LoadFile("testdata/platoon.txt")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ro.Interval.Start != watch.Clock(22, 0) || ro.Interval.End != watch.Clock(6, 0) {
		t.Fatalf("interval = %v, want 22:00-06:00", ro.Interval)
	}
	if got := ro.Sizes(); !reflect.DeepEqual(got, []int{5, 6}) {
		t.Fatalf("sizes = %v, want [5 6]", got)
	}
	first := ro.Squads[0].Soldiers[0]
	if first.Rank != "SGT" || first.Name != "Virtanen" || !first.Driver {
		t.Fatalf("first soldier = %+v", first)
	}
	if got := len(ro.Squads[0].Drivers()); got != 2 {
		t.Fatalf("squad 0 drivers = %d, want 2", got)
	}
	if err := ro.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadFileYAML(t *testing.T) {
	ro, err := LoadFile("testdata/platoon.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ro.Interval.Start != watch.Clock(21, 30) || ro.Interval.End != watch.Clock(5, 15) {
		t.Fatalf("interval = %v, want 21:30-05:15", ro.Interval)
	}
	if got := ro.Sizes(); !reflect.DeepEqual(got, []int{5, 5, 6}) {
		t.Fatalf("sizes = %v, want [5 5 6]", got)
	}
	if ro.Squads[1].Label(1) != "Bravo" {
		t.Fatalf("squad 1 label = %q, want Bravo", ro.Squads[1].Label(1))
	}
	if err := ro.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestParseJSON(t *testing.T) {
	doc := `{"interval":{"start":"22:00","end":"06:00"},"squads":[{"soldiers":[{"rank":"PVT","name":"A","driver":true}]}]}`
	ro, err := ParseJSON([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ro.Squads) != 1 || !ro.Squads[0].Soldiers[0].Driver {
		t.Fatalf("roster = %+v", ro)
	}
}

func TestParseRejectsMalformedLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"bad clock", "22:00,6:75\n", watch.ErrFormat},
		{"missing end", "22:00\n", watch.ErrFormat},
		{"short soldier line", "22:00,06:00\nPVT,Korhonen\n", watch.ErrConfiguration},
		{"bad driver flag", "22:00,06:00\nPVT,Korhonen,maybe\n", watch.ErrConfiguration},
		{"empty", "\n\n", watch.ErrConfiguration},
	}
	for _, tt := range tests {
		_, err := Parse(strings.NewReader(tt.input))
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestParseCollapsesRepeatedBlankLines(t *testing.T) {
	input := "22:00,06:00\n\nPVT,A,no\n\n\n\nPVT,B,no\n"
	ro, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := ro.Sizes(); !reflect.DeepEqual(got, []int{1, 1}) {
		t.Fatalf("sizes = %v, want [1 1]", got)
	}
}

func TestValidate(t *testing.T) {
	night := watch.Interval{Start: watch.Clock(22, 0), End: watch.Clock(6, 0)}
	tests := []struct {
		name    string
		roster  Roster
		wantErr bool
	}{
		{"ok", Roster{Interval: night, Squads: []Squad{squadOf(5, 1), squadOf(12, 2)}}, false},
		{"no squads", Roster{Interval: night}, true},
		{"too many squads", Roster{Interval: night, Squads: []Squad{squadOf(5, 0), squadOf(5, 0), squadOf(5, 0), squadOf(5, 0), squadOf(5, 0)}}, true},
		{"squad too small", Roster{Interval: night, Squads: []Squad{squadOf(4, 0)}}, true},
		{"squad too large", Roster{Interval: night, Squads: []Squad{squadOf(13, 0)}}, true},
		{"three drivers", Roster{Interval: night, Squads: []Squad{squadOf(6, 3)}}, true},
		{"zero night", Roster{Interval: watch.Interval{Start: watch.Clock(22, 0), End: watch.Clock(22, 0)}, Squads: []Squad{squadOf(6, 0)}}, true},
	}
	for _, tt := range tests {
		err := tt.roster.Validate()
		if tt.wantErr && !errors.Is(err, watch.ErrConfiguration) {
			t.Errorf("%s: err = %v, want ErrConfiguration", tt.name, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
	}
}

func TestPrompterCollect(t *testing.T) {
	var answers []string
	answers = append(answers,
		"25:00", "22:00", // bad start, then good
		"06:00",
		"0", "x", "1", // squad count: out of range, not a number, ok
		"5",
	)
	for i := 0; i < 5; i++ {
		answers = append(answers, "PVT", "Soldier"+string(rune('A'+i)))
		if i < 3 {
			answers = append(answers, "perhaps", "yes") // third "yes" is refused below
		} else {
			answers = append(answers, "no")
		}
	}
	// The third soldier's "yes" exceeds the driver limit and must be re-asked.
	answers = insertAfterNth(answers, "yes", 3, "no")

	var out strings.Builder
	ro, err := NewPrompter(strings.NewReader(strings.Join(answers, "\n")+"\n"), &out).Collect()
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if ro.Interval.Start != watch.Clock(22, 0) || ro.Interval.End != watch.Clock(6, 0) {
		t.Fatalf("interval = %v", ro.Interval)
	}
	if got := ro.Sizes(); !reflect.DeepEqual(got, []int{5}) {
		t.Fatalf("sizes = %v, want [5]", got)
	}
	if got := len(ro.Squads[0].Drivers()); got != 2 {
		t.Fatalf("drivers = %d, want 2", got)
	}
	if !strings.Contains(out.String(), "maximum of 2 drivers") {
		t.Fatalf("driver limit message missing from output:\n%s", out.String())
	}
	if err := ro.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestPrompterInputClosed(t *testing.T) {
	_, err := NewPrompter(strings.NewReader("22:00\n"), &strings.Builder{}).Collect()
	if !errors.Is(err, ErrInputClosed) {
		t.Fatalf("err = %v, want ErrInputClosed", err)
	}
}

// insertAfterNth inserts value after the nth occurrence of match.
func insertAfterNth(in []string, match string, nth int, value string) []string {
	seen := 0
	for i, s := range in {
		if s != match {
			continue
		}
		seen++
		if seen == nth {
			out := append([]string(nil), in[:i+1]...)
			out = append(out, value)
			return append(out, in[i+1:]...)
		}
	}
	return in
}
