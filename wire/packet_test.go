// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/json"
	"testing"
)

func TestPacketPayloadDecoding(t *testing.T) {
	raw := `{
		"id": "7",
		"type": "send-reply",
		"data": {
			"id": "msg-1",
			"parent": "msg-0",
			"time": 1700000000,
			"sender": {"id": "bot:b1", "name": "Echo", "session_id": "s1"},
			"content": "hello"
		}
	}`
	var packet Packet
	if err := json.Unmarshal([]byte(raw), &packet); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	if packet.ID != "7" || packet.Type != SendReplyType {
		t.Fatalf("envelope = %+v", packet)
	}

	payload, err := packet.Payload()
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	reply, ok := payload.(*SendReply)
	if !ok {
		t.Fatalf("Payload() = %T, want *SendReply", payload)
	}
	if reply.Content != "hello" || reply.Parent != "msg-0" {
		t.Errorf("reply = %+v", reply)
	}
	if reply.Sender.Name != "Echo" || reply.Sender.SessionType() != "bot" {
		t.Errorf("sender = %+v", reply.Sender)
	}
}

func TestPacketPayloadUnknownType(t *testing.T) {
	packet := &Packet{Type: "totally-new-event", Data: json.RawMessage(`{"x":1}`)}
	payload, err := packet.Payload()
	if err != nil {
		t.Fatalf("unknown type returned error: %v", err)
	}
	if payload != nil {
		t.Errorf("unknown type returned %T, want nil", payload)
	}
}

func TestPacketPayloadMalformedData(t *testing.T) {
	packet := &Packet{Type: SnapshotEventType, Data: json.RawMessage(`"not an object"`)}
	if _, err := packet.Payload(); err == nil {
		t.Errorf("malformed data decoded without error")
	}
}

func TestNewPacketRoundTrip(t *testing.T) {
	packet, err := NewPacket("3", SendType, SendCommand{Content: "hi", Parent: "msg-9"})
	if err != nil {
		t.Fatalf("NewPacket: %v", err)
	}
	data, err := json.Marshal(packet)
	if err != nil {
		t.Fatalf("encoding: %v", err)
	}

	var decoded Packet
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	payload, err := decoded.Payload()
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	command := payload.(*SendCommand)
	if command.Content != "hi" || command.Parent != "msg-9" {
		t.Errorf("command = %+v", command)
	}
}

func TestNewPacketNilPayload(t *testing.T) {
	packet, err := NewPacket("1", WhoType, nil)
	if err != nil {
		t.Fatalf("NewPacket: %v", err)
	}
	if len(packet.Data) != 0 {
		t.Errorf("nil payload produced data %s", packet.Data)
	}
}

func TestErrorReply(t *testing.T) {
	raw := `{"id": "4", "type": "send-reply", "error": "room is read-only"}`
	var packet Packet
	if err := json.Unmarshal([]byte(raw), &packet); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if packet.Error != "room is read-only" {
		t.Errorf("Error = %q", packet.Error)
	}
}

func TestSessionView(t *testing.T) {
	tests := []struct {
		userID string
		want   string
	}{
		{"account:a1b2", "account"},
		{"agent:x", "agent"},
		{"bot:echo", "bot"},
		{"weird:thing", ""},
		{"noprefix", ""},
	}
	for _, test := range tests {
		view := SessionView{UserID: test.userID}
		if got := view.SessionType(); got != test.want {
			t.Errorf("SessionType(%q) = %q, want %q", test.userID, got, test.want)
		}
	}

	if !(SessionView{}).IsLurker() {
		t.Errorf("nameless session is not a lurker")
	}
	if (SessionView{Name: "x"}).IsLurker() {
		t.Errorf("named session reported as lurker")
	}
}

func TestMentionHelpers(t *testing.T) {
	tests := []struct {
		nick string
		want string
	}{
		{"example bot", "examplebot"},
		{"Dr. Who?", "DrWho"},
		{"it's-fine", "its-fine"},
		{"plain", "plain"},
	}
	for _, test := range tests {
		if got := Mentionable(test.nick); got != test.want {
			t.Errorf("Mentionable(%q) = %q, want %q", test.nick, got, test.want)
		}
	}

	if NormalizeNick("Example Bot!") != "examplebot" {
		t.Errorf("NormalizeNick did not casefold and strip")
	}
	if !SimilarNicks("ExampleBot", "example bot.") {
		t.Errorf("SimilarNicks missed equivalent nicks")
	}
	if SimilarNicks("alpha", "beta") {
		t.Errorf("SimilarNicks matched distinct nicks")
	}
}
