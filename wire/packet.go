// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/json"
	"fmt"
)

// PacketType identifies the kind of a packet. Client-initiated commands
// have a bare name ("nick", "send"); the server's acknowledgement appends
// "-reply"; asynchronous server notifications append "-event".
type PacketType string

// Client-to-server command types.
const (
	AuthType      PacketType = "auth"
	NickType      PacketType = "nick"
	PingReplyType PacketType = "ping-reply"
	SendType      PacketType = "send"
	WhoType       PacketType = "who"
)

// Server-to-client reply types.
const (
	AuthReplyType PacketType = "auth-reply"
	NickReplyType PacketType = "nick-reply"
	SendReplyType PacketType = "send-reply"
	WhoReplyType  PacketType = "who-reply"
)

// Server-to-client event types.
const (
	BounceEventType     PacketType = "bounce-event"
	DisconnectEventType PacketType = "disconnect-event"
	HelloEventType      PacketType = "hello-event"
	JoinEventType       PacketType = "join-event"
	NetworkEventType    PacketType = "network-event"
	NickEventType       PacketType = "nick-event"
	PartEventType       PacketType = "part-event"
	PingEventType       PacketType = "ping-event"
	SendEventType       PacketType = "send-event"
	SnapshotEventType   PacketType = "snapshot-event"
)

// Packet is the envelope framing every message on the wire. Data holds the
// payload for the packet's Type, decoded on demand via Payload.
type Packet struct {
	// ID correlates a command with its reply. The client assigns IDs to
	// the commands it sends; the server echoes the ID on the reply.
	// Server-initiated events have no ID.
	ID string `json:"id,omitempty"`

	// Type tags the payload carried in Data.
	Type PacketType `json:"type"`

	// Data is the raw payload. Decode it with Payload.
	Data json.RawMessage `json:"data,omitempty"`

	// Error is set on replies when the command failed. The reply's Data
	// is empty in that case.
	Error string `json:"error,omitempty"`

	// Throttled indicates the server is rate-limiting this connection.
	// ThrottledReason says why.
	Throttled       bool   `json:"throttled,omitempty"`
	ThrottledReason string `json:"throttled_reason,omitempty"`
}

// NewPacket builds a packet of the given type, marshaling payload into
// Data. A nil payload produces a packet with no Data.
func NewPacket(id string, packetType PacketType, payload any) (*Packet, error) {
	packet := &Packet{ID: id, Type: packetType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("wire: encoding %s payload: %w", packetType, err)
		}
		packet.Data = data
	}
	return packet, nil
}

// AuthCommand authenticates to a private room with a passcode.
type AuthCommand struct {
	Type     string `json:"type"` // always "passcode"
	Passcode string `json:"passcode"`
}

// AuthReply reports whether passcode authentication succeeded.
type AuthReply struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// NickCommand requests a nick change.
type NickCommand struct {
	Name string `json:"name"`
}

// NickReply confirms the requested nick, possibly adjusted by the server.
type NickReply struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// SendCommand posts a message to the room. Parent threads the message
// under an existing one when set.
type SendCommand struct {
	Content string `json:"content"`
	Parent  string `json:"parent,omitempty"`
}

// SendReply echoes the posted message with its server-assigned ID.
type SendReply Message

// WhoReply lists the sessions currently present in the room.
type WhoReply struct {
	Listing []SessionView `json:"listing"`
}

// BounceEvent indicates the connection may not proceed to the room until
// it authenticates.
type BounceEvent struct {
	Reason      string   `json:"reason,omitempty"`
	AuthOptions []string `json:"auth_options,omitempty"`
}

// DisconnectEvent instructs the client to disconnect and reconnect, for
// example because the room's era is ending.
type DisconnectEvent struct {
	Reason string `json:"reason"`
}

// HelloEvent is the first event after connecting. It describes the
// connection's own session.
type HelloEvent struct {
	UserID        string      `json:"id"`
	Session       SessionView `json:"session"`
	RoomIsPrivate bool        `json:"room_is_private"`
	Version       string      `json:"version"`
}

// JoinEvent announces a session joining the room.
type JoinEvent SessionView

// PartEvent announces a session leaving the room.
type PartEvent SessionView

// NetworkEvent announces a server-side network change. A "partition" event
// means every session hosted on the given server instance is gone; the
// roster drops them all at once.
type NetworkEvent struct {
	Type      string `json:"type"`
	ServerID  string `json:"server_id"`
	ServerEra string `json:"server_era"`
}

// NickEvent announces another session's nick change.
type NickEvent struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// PingEvent is the server's keepalive probe. Clients must answer with a
// ping-reply carrying the same time, or the server drops the connection.
type PingEvent struct {
	// UnixTime is the server time of this ping, in seconds.
	UnixTime int64 `json:"time"`
	// NextUnixTime is when the next ping is expected.
	NextUnixTime int64 `json:"next"`
}

// PingReply answers a PingEvent.
type PingReply struct {
	UnixTime int64 `json:"time"`
}

// SendEvent delivers a message posted by another session.
type SendEvent Message

// SnapshotEvent delivers the full room state upon joining: the roster
// listing, this connection's session ID, and the nick the server has on
// record (empty when the connection has not identified yet).
type SnapshotEvent struct {
	Identity  string        `json:"identity"`
	SessionID string        `json:"session_id"`
	Version   string        `json:"version"`
	Listing   []SessionView `json:"listing"`
	Nick      string        `json:"nick,omitempty"`
}

// Payload decodes Data into the typed struct for the packet's Type.
// Unknown packet types return (nil, nil) so new server events degrade to
// no-ops instead of errors.
func (p *Packet) Payload() (any, error) {
	var payload any
	switch p.Type {
	case AuthType:
		payload = &AuthCommand{}
	case AuthReplyType:
		payload = &AuthReply{}
	case BounceEventType:
		payload = &BounceEvent{}
	case DisconnectEventType:
		payload = &DisconnectEvent{}
	case HelloEventType:
		payload = &HelloEvent{}
	case JoinEventType:
		payload = &JoinEvent{}
	case NetworkEventType:
		payload = &NetworkEvent{}
	case NickType:
		payload = &NickCommand{}
	case NickReplyType:
		payload = &NickReply{}
	case NickEventType:
		payload = &NickEvent{}
	case PartEventType:
		payload = &PartEvent{}
	case PingEventType:
		payload = &PingEvent{}
	case PingReplyType:
		payload = &PingReply{}
	case SendType:
		payload = &SendCommand{}
	case SendReplyType:
		payload = &SendReply{}
	case SendEventType:
		payload = &SendEvent{}
	case SnapshotEventType:
		payload = &SnapshotEvent{}
	case WhoType:
		payload = &struct{}{}
	case WhoReplyType:
		payload = &WhoReply{}
	default:
		return nil, nil
	}
	if len(p.Data) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(p.Data, payload); err != nil {
		return nil, fmt.Errorf("wire: decoding %s payload: %w", p.Type, err)
	}
	return payload, nil
}
