/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package assignment puts soldiers into the slots a squad has been given.
//
// Only a uniform random assigner exists. A fair assigner (rest between
// shifts, driver rotation) is a separate component that implements Assigner;
// nothing in the planner depends on how names are chosen.
package assignment

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/friendsincode/nightwatch/internal/roster"
	"github.com/friendsincode/nightwatch/internal/watch"
)

// Kind is the type of duty.
type Kind string

const (
	KindStoveWatch Kind = "stove_watch"
	KindPatrol     Kind = "patrol"
)

// CrewSize is how many soldiers stand one slot of the duty.
func (k Kind) CrewSize() int {
	if k == KindPatrol {
		return 2
	}
	return 1
}

// Duty is one slot with the soldiers standing it.
type Duty struct {
	Kind     Kind             `json:"kind"`
	Slot     watch.Slot       `json:"slot"`
	Soldiers []roster.Soldier `json:"soldiers"`
}

// Assigner fills slots with squad members. Implementations must return one
// Duty per slot, in slot order, and must not modify slots.
//
// TODO: add a rest-aware Assigner that honours DriverEligibility and spreads
// duties so nobody stands consecutive slots.
type Assigner interface {
	Assign(squad roster.Squad, kind Kind, slots []watch.Slot) ([]Duty, error)
}

// RandomAssigner picks crews uniformly at random. It is safe for concurrent use.
type RandomAssigner struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomAssigner seeds the assigner; the same seed yields the same crews.
func NewRandomAssigner(seed int64) *RandomAssigner {
	return &RandomAssigner{rng: rand.New(rand.NewSource(seed))}
}

// Assign draws a crew for every slot. Crew members within one slot are
// distinct whenever the squad is large enough.
func (a *RandomAssigner) Assign(squad roster.Squad, kind Kind, slots []watch.Slot) ([]Duty, error) {
	if squad.Size() == 0 {
		return nil, fmt.Errorf("assign %s: squad has no soldiers", kind)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	crew := kind.CrewSize()
	duties := make([]Duty, 0, len(slots))
	for _, slot := range slots {
		duties = append(duties, Duty{
			Kind:     kind,
			Slot:     slot,
			Soldiers: a.pick(squad.Soldiers, crew),
		})
	}
	return duties, nil
}

func (a *RandomAssigner) pick(soldiers []roster.Soldier, crew int) []roster.Soldier {
	out := make([]roster.Soldier, 0, crew)
	if crew <= len(soldiers) {
		for _, i := range a.rng.Perm(len(soldiers))[:crew] {
			out = append(out, soldiers[i])
		}
		return out
	}
	for len(out) < crew {
		out = append(out, soldiers[a.rng.Intn(len(soldiers))])
	}
	return out
}
