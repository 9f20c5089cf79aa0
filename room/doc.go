// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

// Package room maintains one persistent, self-healing connection per room.
//
// A Room owns the full connection lifecycle. Starting from Disconnected it
// dials the transport (Connecting), answers an authentication bounce with
// the configured passcode (Authenticating), claims the desired nick
// (Identifying), and reaches Joined when the server's snapshot arrives.
// The snapshot atomically seeds the Roster; from then on join, part, nick,
// and network events keep the roster current, and send events fan out to
// registered message callbacks.
//
// When a joined connection drops, the Room reconnects with capped
// exponential backoff and repeats the whole handshake. Two pieces of state
// deliberately survive the reconnect: the desired nick (the most recent
// explicit intent, re-sent during every identify step) and the registered
// callbacks. The roster does not survive; it is cleared on disconnect and
// rebuilt only from the next snapshot, never from stale pre-disconnect
// entries. A failure on the very first attempt is different: it surfaces
// as the return value of Start, and the room shuts down rather than
// retrying, so a misconfigured passcode or unreachable server is reported
// to the caller immediately.
//
// Concurrency follows a reader/processor split. A reader goroutine owns
// socket reads; it answers server pings inline and routes command replies
// (matched by packet ID) straight to the goroutine waiting in Send,
// SetNick, or Who. Everything else flows through a buffered channel to a
// single event-processing goroutine, which mutates the roster and invokes
// callbacks strictly in arrival order. Because replies bypass the event
// channel, a callback may synchronously issue commands and wait for their
// replies without deadlocking the event loop it runs on.
package room
