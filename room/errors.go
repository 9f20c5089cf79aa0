// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"errors"
	"fmt"

	"github.com/hallway-project/hallway/wire"
)

// Handshake stages, used in HandshakeError.Stage.
const (
	StageAuth     = "auth"
	StageIdentify = "identify"
)

// HandshakeError reports a rejected handshake step: the server refused the
// passcode, or rejected the identify (nick) command. On the first join
// attempt it surfaces from Start; on later reconnects it is logged and the
// connection retried.
type HandshakeError struct {
	Stage  string
	Reason string
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("room: handshake %s rejected: %s", e.Stage, e.Reason)
}

// ServerError is the error field of a command reply: the connection and
// handshake are fine, but the server refused this particular command.
type ServerError struct {
	Command wire.PacketType
	Reason  string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("room: %s failed: %s", e.Command, e.Reason)
}

var (
	// ErrNotJoined is returned by outbound operations before the
	// handshake has completed or while the connection is down.
	ErrNotJoined = errors.New("room: not joined")

	// ErrLeft is returned by operations on a room after Leave.
	ErrLeft = errors.New("room: left")

	// ErrConnectionLost aborts a command whose reply never arrived
	// because the transport dropped. The command may or may not have
	// taken effect server-side; delivery is best-effort.
	ErrConnectionLost = errors.New("room: connection lost awaiting reply")

	// errAlreadyStarted guards against double Start.
	errAlreadyStarted = errors.New("room: already started")
)
