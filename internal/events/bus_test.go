/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package events

import "testing"

func TestBusDeliversToSubscribersOfType(t *testing.T) {
	bus := NewBus()
	created := bus.Subscribe(EventPlanCreated)
	failed := bus.Subscribe(EventPlanFailed)

	bus.Publish(EventPlanCreated, Payload{"plan_id": "p1"})

	select {
	case p := <-created:
		if p["plan_id"] != "p1" {
			t.Fatalf("unexpected payload: %v", p)
		}
	default:
		t.Fatal("expected plan.created payload")
	}
	select {
	case p := <-failed:
		t.Fatalf("plan.failed subscriber got %v", p)
	default:
	}
}

func TestBusDropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventPlanCreated)
	for i := 0; i < cap(sub)+4; i++ {
		bus.Publish(EventPlanCreated, Payload{"n": i})
	}
	if len(sub) != cap(sub) {
		t.Fatalf("buffered = %d, want %d", len(sub), cap(sub))
	}
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(EventExportUploaded)
	bus.Unsubscribe(EventExportUploaded, sub)
	if _, ok := <-sub; ok {
		t.Fatal("expected closed channel")
	}
	// Unsubscribing twice must not panic on a closed channel.
	bus.Unsubscribe(EventExportUploaded, sub)
	bus.Publish(EventExportUploaded, Payload{})
}
