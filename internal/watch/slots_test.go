/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package watch

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateSlotsSingleSquadEvenShare(t *testing.T) {
	iv := mustInterval(t, "22:00", "06:00")
	slots, err := GenerateSlots(iv, 8, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(slots) != 8 {
		t.Fatalf("slots len = %d, want 8", len(slots))
	}
	for i, slot := range slots {
		want := Clock(22+i, 0)
		if slot.Start != want {
			t.Errorf("slot[%d].Start = %v, want %v", i, slot.Start, want)
		}
		if slot.Length != time.Hour {
			t.Errorf("slot[%d].Length = %v, want 1h", i, slot.Length)
		}
		if slot.Index != i {
			t.Errorf("slot[%d].Index = %d", i, slot.Index)
		}
	}
}

func TestGenerateSlotsSingleSquadFractionalShare(t *testing.T) {
	iv := mustInterval(t, "22:00", "06:00")
	slots, err := GenerateSlots(iv, 5, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	wantStarts := []ClockTime{{22, 0}, {23, 36}, {1, 12}, {2, 48}, {4, 24}}
	if len(slots) != len(wantStarts) {
		t.Fatalf("slots len = %d, want %d", len(slots), len(wantStarts))
	}
	for i, slot := range slots {
		if slot.Start != wantStarts[i] {
			t.Errorf("slot[%d].Start = %v, want %v", i, slot.Start, wantStarts[i])
		}
	}
}

func TestGenerateSlotsNonDividingShareTerminates(t *testing.T) {
	iv := mustInterval(t, "22:00", "06:00")
	slots, err := GenerateSlots(iv, 7, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(slots) != 7 {
		t.Fatalf("slots len = %d, want 7", len(slots))
	}
	if slots[0].Start != (ClockTime{22, 0}) {
		t.Fatalf("first slot = %v, want 22:00", slots[0].Start)
	}

	share := SlotLength(iv, 7, 1)
	var total time.Duration
	for i, slot := range slots {
		if diff := slot.Length - share; diff > time.Minute || diff < -time.Minute {
			t.Errorf("slot[%d].Length = %v, want %v within 1m", i, slot.Length, share)
		}
		if slot.Offset != total {
			t.Errorf("slot[%d].Offset = %v, want %v", i, slot.Offset, total)
		}
		total += slot.Length
	}
	if total != 8*time.Hour {
		t.Fatalf("slots cover %v, want 8h", total)
	}
	if last := slots[len(slots)-1]; last.End() != (ClockTime{6, 0}) {
		t.Fatalf("last slot ends %v, want 6:00", last.End())
	}
}

func TestGenerateSlotsSingleSquadRoundedWindow(t *testing.T) {
	// The raw night is 7.5h but the window rounds to 8h, so the per-head
	// share leaves a short tail slot before the window closes.
	iv := mustInterval(t, "22:30", "06:00")
	slots, err := GenerateSlots(iv, 8, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(slots) != 9 {
		t.Fatalf("slots len = %d, want 9", len(slots))
	}
	last := slots[len(slots)-1]
	if last.Length != 30*time.Minute {
		t.Fatalf("tail slot length = %v, want 30m", last.Length)
	}
	if last.End() != (ClockTime{6, 0}) {
		t.Fatalf("tail slot ends %v, want 6:00", last.End())
	}
}

func TestGenerateSlotsMultiSquadHourly(t *testing.T) {
	iv := mustInterval(t, "21:30", "05:15")
	slots, err := GenerateSlots(iv, 6, 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(slots) != 9 {
		t.Fatalf("slots len = %d, want 9", len(slots))
	}
	_, end := iv.Window()
	for i, slot := range slots {
		if slot.Length != time.Hour {
			t.Errorf("slot[%d].Length = %v, want 1h", i, slot.Length)
		}
		if i > 0 && slot.Start != slots[i-1].Start.Add(60) {
			t.Errorf("slot[%d].Start = %v, not one hour after %v", i, slot.Start, slots[i-1].Start)
		}
		if slot.Start == end {
			t.Errorf("slot[%d] starts at window end %v", i, end)
		}
	}
	if slots[0].Start != (ClockTime{21, 0}) {
		t.Fatalf("first slot = %v, want 21:00", slots[0].Start)
	}
}

func TestGenerateSlotsCrossesMidnightFromLateStart(t *testing.T) {
	iv := mustInterval(t, "23:55", "03:00")
	slots, err := GenerateSlots(iv, 6, 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := []ClockTime{{0, 0}, {1, 0}, {2, 0}}
	if len(slots) != len(want) {
		t.Fatalf("slots len = %d, want %d", len(slots), len(want))
	}
	for i := range want {
		if slots[i].Start != want[i] {
			t.Errorf("slot[%d].Start = %v, want %v", i, slots[i].Start, want[i])
		}
	}
}

func TestGenerateSlotsErrors(t *testing.T) {
	night := mustInterval(t, "22:00", "06:00")
	tests := []struct {
		name       string
		iv         Interval
		size, sqds int
	}{
		{"no squads", night, 6, 0},
		{"empty squad", night, 0, 1},
		{"zero interval", mustInterval(t, "22:00", "22:00"), 6, 1},
		{"empty window", mustInterval(t, "22:00", "22:05"), 6, 2},
	}
	for _, tt := range tests {
		_, err := GenerateSlots(tt.iv, tt.size, tt.sqds)
		var ce *ConfigurationError
		if !errors.As(err, &ce) {
			t.Errorf("%s: err = %v, want *ConfigurationError", tt.name, err)
		}
	}
}
