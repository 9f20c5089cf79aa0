// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hallway-project/hallway/lib/clock"
	"github.com/hallway-project/hallway/room"
	"github.com/hallway-project/hallway/wire"
)

// Handle identifies one managed room connection. Handles are opaque and
// unique across the Manager's lifetime; a handle stays valid across the
// connection's reconnects and dies with Leave.
type Handle string

// JoinError reports a failed first join attempt.
type JoinError struct {
	Room string
	Err  error
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("client: joining %q: %v", e.Room, e.Err)
}

func (e *JoinError) Unwrap() error { return e.Err }

var (
	// ErrDetached is returned when a handle no longer resolves to a
	// connection, after Leave or Close.
	ErrDetached = errors.New("client: handle detached")

	// ErrClosed is returned by Join after Close.
	ErrClosed = errors.New("client: manager closed")
)

// Config describes a Manager. Dialer is required; everything else has
// working defaults.
type Config struct {
	Dialer wire.Dialer

	// DefaultNick is used for rooms joined without an explicit nick.
	DefaultNick string

	// Logger receives structured logs. Nil uses slog.Default().
	Logger *slog.Logger

	// Clock schedules reconnect backoff. Nil uses the real clock.
	Clock clock.Clock

	// InitialBackoff and MaxBackoff are passed through to every room
	// connection.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// RoomOptions customizes a single Join.
type RoomOptions struct {
	// Nick overrides the Manager's DefaultNick for this connection.
	Nick string

	// Passcode authenticates to a private room.
	Passcode string
}

// Manager owns a set of room connections keyed by handle.
type Manager struct {
	dialer         wire.Dialer
	defaultNick    string
	logger         *slog.Logger
	clock          clock.Clock
	initialBackoff time.Duration
	maxBackoff     time.Duration

	mu     sync.Mutex
	rooms  map[Handle]*room.Room
	closed bool

	callbackMu     sync.Mutex
	onJoined       []func(Handle)
	onDisconnected []func(Handle)
	onMessage      []func(Handle, LiveMessage)
	onSessionJoin  []func(Handle, wire.SessionView)
	onSessionPart  []func(Handle, wire.SessionView)
	onNickChange   []func(Handle, wire.NickEvent)
}

// NewManager creates a Manager.
func NewManager(config Config) (*Manager, error) {
	if config.Dialer == nil {
		return nil, fmt.Errorf("client: Dialer is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &Manager{
		dialer:         config.Dialer,
		defaultNick:    config.DefaultNick,
		logger:         logger,
		clock:          clk,
		initialBackoff: config.InitialBackoff,
		maxBackoff:     config.MaxBackoff,
		rooms:          make(map[Handle]*room.Room),
	}, nil
}

// OnJoined registers a callback fired whenever any managed connection
// completes a handshake, including reconnects.
func (m *Manager) OnJoined(f func(Handle)) { addCallback(m, &m.onJoined, f) }

// OnDisconnected registers a callback fired whenever a joined connection
// drops or is left.
func (m *Manager) OnDisconnected(f func(Handle)) { addCallback(m, &m.onDisconnected, f) }

// OnMessage registers a callback for messages arriving in any managed room.
func (m *Manager) OnMessage(f func(Handle, LiveMessage)) { addCallback(m, &m.onMessage, f) }

// OnSessionJoin registers a callback for sessions joining any managed room.
func (m *Manager) OnSessionJoin(f func(Handle, wire.SessionView)) {
	addCallback(m, &m.onSessionJoin, f)
}

// OnSessionPart registers a callback for sessions leaving any managed room.
func (m *Manager) OnSessionPart(f func(Handle, wire.SessionView)) {
	addCallback(m, &m.onSessionPart, f)
}

// OnNickChange registers a callback for nick changes in any managed room.
func (m *Manager) OnNickChange(f func(Handle, wire.NickEvent)) {
	addCallback(m, &m.onNickChange, f)
}

func addCallback[T any](m *Manager, list *[]T, f T) {
	m.callbackMu.Lock()
	defer m.callbackMu.Unlock()
	*list = append(*list, f)
}

// Join connects to a room and blocks until the first handshake resolves.
// On success the connection is registered under the returned handle and
// keeps itself alive (reconnecting as needed) until Leave or Close. On
// failure nothing is registered and the error is a *JoinError.
func (m *Manager) Join(ctx context.Context, roomName string, options RoomOptions) (Handle, error) {
	nick := options.Nick
	if nick == "" {
		nick = m.defaultNick
	}
	connection, err := room.New(room.Config{
		Name:           roomName,
		Nick:           nick,
		Passcode:       options.Passcode,
		Dialer:         m.dialer,
		Clock:          m.clock,
		Logger:         m.logger,
		InitialBackoff: m.initialBackoff,
		MaxBackoff:     m.maxBackoff,
	})
	if err != nil {
		return "", &JoinError{Room: roomName, Err: err}
	}

	handle := Handle(uuid.NewString())
	m.bind(handle, connection)

	// Register before Start so that events fired during the first
	// handshake already resolve the handle.
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", &JoinError{Room: roomName, Err: ErrClosed}
	}
	m.rooms[handle] = connection
	m.mu.Unlock()

	if err := connection.Start(ctx); err != nil {
		m.mu.Lock()
		delete(m.rooms, handle)
		m.mu.Unlock()
		return "", &JoinError{Room: roomName, Err: err}
	}
	m.logger.Info("joined room", "room", roomName, "handle", string(handle))
	return handle, nil
}

// bind re-emits the connection's events through the manager's callback
// slots, tagged with the handle.
func (m *Manager) bind(handle Handle, connection *room.Room) {
	connection.OnJoined(func() {
		fanOut(m, snapshotCallbacks(m, &m.onJoined), func(f func(Handle)) { f(handle) })
	})
	connection.OnDisconnected(func() {
		fanOut(m, snapshotCallbacks(m, &m.onDisconnected), func(f func(Handle)) { f(handle) })
	})
	connection.OnMessage(func(message wire.Message) {
		live := LiveMessage{Message: message, manager: m, handle: handle}
		fanOut(m, snapshotCallbacks(m, &m.onMessage), func(f func(Handle, LiveMessage)) { f(handle, live) })
	})
	connection.OnSessionJoin(func(view wire.SessionView) {
		fanOut(m, snapshotCallbacks(m, &m.onSessionJoin), func(f func(Handle, wire.SessionView)) { f(handle, view) })
	})
	connection.OnSessionPart(func(view wire.SessionView) {
		fanOut(m, snapshotCallbacks(m, &m.onSessionPart), func(f func(Handle, wire.SessionView)) { f(handle, view) })
	})
	connection.OnNickChange(func(event wire.NickEvent) {
		fanOut(m, snapshotCallbacks(m, &m.onNickChange), func(f func(Handle, wire.NickEvent)) { f(handle, event) })
	})
}

func snapshotCallbacks[T any](m *Manager, list *[]T) []T {
	m.callbackMu.Lock()
	defer m.callbackMu.Unlock()
	return slices.Clone(*list)
}

// Get resolves a handle to its connection.
func (m *Manager) Get(handle Handle) (*room.Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	connection, ok := m.rooms[handle]
	return connection, ok
}

// Handles returns the handles currently connected to the named room,
// sorted for deterministic iteration.
func (m *Manager) Handles(roomName string) []Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	var handles []Handle
	for handle, connection := range m.rooms {
		if connection.Name() == roomName {
			handles = append(handles, handle)
		}
	}
	slices.Sort(handles)
	return handles
}

// Leave terminally disconnects the handle's connection and forgets it.
// The handle detaches immediately; the connection finishes tearing down
// in the background, so Leave is safe to call from an event callback
// running on that very connection. Close waits for all teardowns.
func (m *Manager) Leave(handle Handle) error {
	m.mu.Lock()
	connection, ok := m.rooms[handle]
	delete(m.rooms, handle)
	m.mu.Unlock()
	if !ok {
		return ErrDetached
	}
	connection.Leave()
	return nil
}

// Close leaves every room and rejects future Joins. Idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	connections := make([]*room.Room, 0, len(m.rooms))
	for handle, connection := range m.rooms {
		connections = append(connections, connection)
		delete(m.rooms, handle)
	}
	m.mu.Unlock()

	for _, connection := range connections {
		connection.Leave()
	}
	for _, connection := range connections {
		<-connection.Done()
	}
}

// fanOut invokes callbacks in registration order, recovering panics so a
// broken handler cannot take down the emitting room's event loop.
func fanOut[T any](m *Manager, callbacks []T, invoke func(T)) {
	for _, callback := range callbacks {
		func() {
			defer func() {
				if v := recover(); v != nil {
					m.logger.Error("manager callback panicked", "panic", v)
				}
			}()
			invoke(callback)
		}()
	}
}
