/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package eventbus

import (
	"testing"
	"time"

	"github.com/friendsincode/nightwatch/internal/events"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

func TestNATSBusWithoutURLDeliversLocally(t *testing.T) {
	bus := NewNATSBus(NATSConfig{}, zerolog.Nop())
	defer bus.Close()

	if bus.Connected() {
		t.Fatal("expected bus without URL to be disconnected")
	}
	sub := bus.Subscribe(events.EventPlanCreated)
	bus.Publish(events.EventPlanCreated, events.Payload{"plan_id": "p1"})

	select {
	case p := <-sub:
		if p["plan_id"] != "p1" {
			t.Fatalf("unexpected payload: %v", p)
		}
	default:
		t.Fatal("expected local delivery")
	}
}

func TestNATSBusUnreachableServerFallsBack(t *testing.T) {
	cfg := DefaultNATSConfig()
	cfg.URL = "nats://127.0.0.1:1"
	cfg.Timeout = 50 * time.Millisecond
	bus := NewNATSBus(cfg, zerolog.Nop())
	if bus.Connected() {
		t.Fatal("expected fallback when server is unreachable")
	}
}

func TestNATSMessageRoundTrip(t *testing.T) {
	data, err := marshalNATSMessage(events.EventSquadFailed, events.Payload{"squad": float64(2)}, "node-a")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	msg, err := unmarshalNATSMessage(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.EventType != events.EventSquadFailed || msg.NodeID != "node-a" || msg.MessageID == "" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if _, err := unmarshalNATSMessage([]byte(`{"payload":{}}`)); err == nil {
		t.Fatal("expected error for message without event type")
	}
}

func TestReceiveSkipsOwnMessages(t *testing.T) {
	bus := NewNATSBus(NATSConfig{}, zerolog.Nop())
	sub := bus.Subscribe(events.EventPlanCreated)

	own, _ := marshalNATSMessage(events.EventPlanCreated, events.Payload{"from": "self"}, bus.nodeID)
	bus.receive(&nats.Msg{Subject: SubjectPrefix + "plan.created", Data: own})
	other, _ := marshalNATSMessage(events.EventPlanCreated, events.Payload{"from": "peer"}, "node-b")
	bus.receive(&nats.Msg{Subject: SubjectPrefix + "plan.created", Data: other})

	select {
	case p := <-sub:
		if p["from"] != "peer" {
			t.Fatalf("got %v, want peer message", p)
		}
	default:
		t.Fatal("expected relayed peer message")
	}
	if len(sub) != 0 {
		t.Fatalf("own message was re-delivered")
	}
}
