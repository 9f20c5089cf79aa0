// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"

	"github.com/hallway-project/hallway/wire"
)

// LiveMessage is a received message plus a non-owning reference back to
// the connection it arrived on. The reference is the handle, not the
// connection itself: every operation re-resolves the handle, so a
// LiveMessage kept across a reconnect acts on the new session, and one
// kept past Leave fails with ErrDetached.
type LiveMessage struct {
	wire.Message

	manager *Manager
	handle  Handle
}

// Handle returns the handle of the connection the message arrived on.
func (lm LiveMessage) Handle() Handle { return lm.handle }

// Reply posts content as a child of this message and returns the server's
// copy as another LiveMessage on the same handle.
func (lm LiveMessage) Reply(ctx context.Context, content string) (LiveMessage, error) {
	connection, ok := lm.manager.Get(lm.handle)
	if !ok {
		return LiveMessage{}, ErrDetached
	}
	sent, err := connection.Send(ctx, content, lm.ID)
	if err != nil {
		return LiveMessage{}, err
	}
	return LiveMessage{Message: sent, manager: lm.manager, handle: lm.handle}, nil
}

// Sender returns a live reference to the sending session.
func (lm LiveMessage) Sender() LiveSession {
	return LiveSession{
		SessionView: lm.Message.Sender,
		manager:     lm.manager,
		handle:      lm.handle,
	}
}

// LiveSession is a point-in-time session snapshot plus a handle for
// re-resolving it against the current roster.
type LiveSession struct {
	wire.SessionView

	manager *Manager
	handle  Handle
}

// Handle returns the handle of the connection the snapshot came from.
func (ls LiveSession) Handle() Handle { return ls.handle }

// Current re-resolves the session against the live roster. It reports
// ok=false when the session has left, the connection is down (the roster
// is empty between disconnect and the next snapshot), or the handle is
// detached.
func (ls LiveSession) Current() (wire.SessionView, bool) {
	connection, ok := ls.manager.Get(ls.handle)
	if !ok {
		return wire.SessionView{}, false
	}
	return connection.Roster().Get(ls.SessionID)
}
