package protocol

import (
	"encoding/json"
	"testing"

	"tressette-client/internal/session"
)

func TestNewMessage_WrapsPayload(t *testing.T) {
	data, err := NewMessage("play_card", PlayCardPayload{Suit: session.Kope, Rank: "3"})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}

	msg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if msg.Type != "play_card" {
		t.Fatalf("type %q", msg.Type)
	}
	var p PlayCardPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.Suit != session.Kope || p.Rank != "3" {
		t.Fatalf("payload %+v", p)
	}
}

func TestNewMessage_NilPayloadOmitsField(t *testing.T) {
	data, err := NewMessage("ping", nil)
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if string(data) != `{"type":"ping"}` {
		t.Fatalf("frame %s", data)
	}
}

func TestParse_ToleratesUnknownFields(t *testing.T) {
	frame := `{"type":"your_turn","payload":{"player_id":"p1","deadline":"soon"},"trace_id":"x"}`
	msg, err := Parse([]byte(frame))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var p YourTurnPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.PlayerID != "p1" {
		t.Fatalf("player id %q", p.PlayerID)
	}
}

func TestParse_RejectsNonJSON(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatalf("garbage frame parsed")
	}
}

// Server card payloads use the Go-style field names of the origin server.
func TestCardWireNames(t *testing.T) {
	raw := `{"hand":[{"Suit":"Bastoni","Rank":"3","Value":0.33,"Order":10}]}`
	var p DealHandPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Hand) != 1 {
		t.Fatalf("hand %v", p.Hand)
	}
	c := p.Hand[0]
	if c.Suit != session.Bastoni || c.Rank != "3" || c.Order != 10 {
		t.Fatalf("card %+v", c)
	}
}
