// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"strings"
	"unicode"
)

// SessionView describes one session's presence in a room, as captured at a
// point in time. SessionID is unique across the platform for the lifetime
// of the underlying connection; UserID is stable across reconnects of the
// same account or agent and may appear under several simultaneous sessions.
type SessionView struct {
	// UserID identifies the account or agent behind the session. It is
	// prefixed with its type: "account:", "agent:", or "bot:".
	UserID string `json:"id"`

	// Name is the session's nick at capture time. Empty for lurkers
	// that have not identified.
	Name string `json:"name"`

	// ServerID and ServerEra locate the server instance hosting the
	// session. A network partition drops every session sharing both.
	ServerID  string `json:"server_id"`
	ServerEra string `json:"server_era"`

	// SessionID uniquely identifies this connection instance.
	SessionID string `json:"session_id"`

	IsStaff   bool `json:"is_staff,omitempty"`
	IsManager bool `json:"is_manager,omitempty"`
}

// SessionType classifies the session as "account", "agent", or "bot"
// based on its UserID prefix. Unknown or malformed IDs return "".
func (v SessionView) SessionType() string {
	prefix, _, found := strings.Cut(v.UserID, ":")
	if !found {
		return ""
	}
	switch prefix {
	case "account", "agent", "bot":
		return prefix
	}
	return ""
}

// IsLurker reports whether the session has never set a nick. Lurkers are
// present in the roster but invisible in the room's nick list.
func (v SessionView) IsLurker() bool {
	return v.Name == ""
}

// Message is a single room message. Messages are immutable once received;
// edits and deletions arrive as metadata timestamps, not mutations.
type Message struct {
	// ID is unique within the room and reflects server send order.
	ID string `json:"id"`

	// Parent is the ID of the message this one replies to, or empty for
	// a top-level message. Parents form a reply tree by reference.
	Parent string `json:"parent,omitempty"`

	// UnixTime is the server receive time, in seconds.
	UnixTime int64 `json:"time"`

	// Sender is a snapshot of the sending session at send time.
	Sender SessionView `json:"sender"`

	// Content is the raw message text.
	Content string `json:"content"`

	Truncated bool  `json:"truncated,omitempty"`
	Edited    int64 `json:"edited,omitempty"`
	Deleted   int64 `json:"deleted,omitempty"`
}

// mentionBreaking characters terminate an @-mention in the platform UI, so
// they are stripped when turning a nick into its mentionable form.
const mentionBreaking = `.,!?;&<'"`

// Mentionable strips mention-breaking characters and whitespace from a
// nick. Prefixing the result with "@" mentions the session in a room.
func Mentionable(nick string) string {
	var builder strings.Builder
	builder.Grow(len(nick))
	for _, r := range nick {
		if unicode.IsSpace(r) || strings.ContainsRune(mentionBreaking, r) {
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

// NormalizeNick reduces a nick to its canonical comparison form:
// mentionable and case-folded.
func NormalizeNick(nick string) string {
	return strings.ToLower(Mentionable(nick))
}

// SimilarNicks reports whether two nicks are equivalent under mention
// matching: "@ExampleBot" addresses sessions named "example bot" or
// "examplebot." equally.
func SimilarNicks(a, b string) bool {
	return NormalizeNick(a) == NormalizeNick(b)
}
