// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hallway-project/hallway/lib/clock"
	"github.com/hallway-project/hallway/wire"
)

// State is the connection's position in the handshake lifecycle.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateIdentifying
	StateJoined
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateIdentifying:
		return "identifying"
	case StateJoined:
		return "joined"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

const (
	// eventBufferSize bounds how far the reader may run ahead of event
	// processing. A slow command handler backpressures its own room's
	// reads; other rooms are unaffected.
	eventBufferSize = 64

	defaultInitialBackoff = time.Second
	defaultMaxBackoff     = time.Minute
)

// Config describes one room connection.
type Config struct {
	// Name is the room to join.
	Name string

	// Nick is the initial desired nick. SetNick changes the desire;
	// whatever the current desire is gets re-sent on every reconnect.
	Nick string

	// Passcode authenticates to a private room. Leave empty for public
	// rooms; a bounce from the server with no passcode configured is a
	// handshake failure.
	Passcode string

	// Dialer opens the transport. Required.
	Dialer wire.Dialer

	// Clock schedules reconnect backoff. Nil uses the real clock.
	Clock clock.Clock

	// Logger receives structured logs. Nil uses slog.Default().
	Logger *slog.Logger

	// InitialBackoff and MaxBackoff tune the reconnect delay schedule.
	// Zero values use 1s and 1m.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Room is one persistent connection to one room: it runs the
// connect → authenticate → identify handshake, keeps the roster current,
// fans inbound events out to registered callbacks, and reconnects with
// capped exponential backoff when the transport fails, preserving the
// desired nick across every reconnect.
//
// A Room's inbound events are processed strictly in arrival order by a
// single goroutine; callbacks run on that goroutine, so one room's slow
// handler never delays another room. Outbound commands (Send, SetNick,
// Who) are safe to call from any goroutine, including from inside
// callbacks: replies are correlated by packet ID on the reader goroutine,
// which is never blocked by callback execution.
type Room struct {
	name     string
	passcode string
	dialer   wire.Dialer
	clock    clock.Clock
	logger   *slog.Logger

	initialBackoff time.Duration
	maxBackoff     time.Duration

	mu          sync.Mutex
	state       State
	desiredNick string
	currentNick string
	conn        wire.Conn
	started     bool

	roster *Roster

	pendingMu sync.Mutex
	pending   map[string]chan *wire.Packet
	nextID    atomic.Uint64

	callbackMu     sync.Mutex
	onJoined       []func()
	onDisconnected []func()
	onMessage      []func(wire.Message)
	onSessionJoin  []func(wire.SessionView)
	onSessionPart  []func(wire.SessionView)
	onNickChange   []func(wire.NickEvent)

	lifetime    context.Context
	cancel      context.CancelFunc
	leaveOnce   sync.Once
	firstOnce   sync.Once
	firstResult chan error
	done        chan struct{}
}

// New creates a Room. Call Start to connect.
func New(config Config) (*Room, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("room: Name is required")
	}
	if config.Dialer == nil {
		return nil, fmt.Errorf("room: Dialer is required")
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	initialBackoff := config.InitialBackoff
	if initialBackoff == 0 {
		initialBackoff = defaultInitialBackoff
	}
	maxBackoff := config.MaxBackoff
	if maxBackoff == 0 {
		maxBackoff = defaultMaxBackoff
	}

	lifetime, cancel := context.WithCancel(context.Background())
	return &Room{
		name:           config.Name,
		passcode:       config.Passcode,
		dialer:         config.Dialer,
		clock:          clk,
		logger:         logger,
		initialBackoff: initialBackoff,
		maxBackoff:     maxBackoff,
		desiredNick:    config.Nick,
		roster:         NewRoster(),
		pending:        make(map[string]chan *wire.Packet),
		lifetime:       lifetime,
		cancel:         cancel,
		firstResult:    make(chan error, 1),
		done:           make(chan struct{}),
	}, nil
}

// Name returns the room name.
func (r *Room) Name() string { return r.name }

// State returns a snapshot of the connection state.
func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Roster returns the room's roster tracker. The returned value stays
// valid across reconnects; it is cleared on disconnect and repopulated
// from the next snapshot.
func (r *Room) Roster() *Roster { return r.roster }

// DesiredNick returns the nick this connection wants, which survives
// reconnects independently of what the server currently has on record.
func (r *Room) DesiredNick() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.desiredNick
}

// CurrentNick returns the nick the server most recently confirmed, or the
// desired nick when no confirmation has arrived yet. The confirmation dies
// with its connection, so a disconnected room reports the desired nick.
func (r *Room) CurrentNick() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.currentNick != "" {
		return r.currentNick
	}
	return r.desiredNick
}

// Done is closed once the room has shut down, either after Leave or after
// a failed first join attempt.
func (r *Room) Done() <-chan struct{} { return r.done }

// Callback registration. Register everything before Start; callbacks fire
// in registration order on the room's event-processing goroutine, and a
// panicking callback is logged and isolated from the others.

// OnJoined registers a callback fired each time the handshake completes
// (including after reconnects), once the snapshot has populated the roster.
func (r *Room) OnJoined(f func()) { addCallback(r, &r.onJoined, f) }

// OnDisconnected registers a callback fired each time a joined connection
// is lost or the room is left.
func (r *Room) OnDisconnected(f func()) { addCallback(r, &r.onDisconnected, f) }

// OnMessage registers a callback for messages sent by other sessions.
func (r *Room) OnMessage(f func(wire.Message)) { addCallback(r, &r.onMessage, f) }

// OnSessionJoin registers a callback for sessions joining the room.
func (r *Room) OnSessionJoin(f func(wire.SessionView)) { addCallback(r, &r.onSessionJoin, f) }

// OnSessionPart registers a callback for sessions leaving the room,
// including sessions dropped by a network partition.
func (r *Room) OnSessionPart(f func(wire.SessionView)) { addCallback(r, &r.onSessionPart, f) }

// OnNickChange registers a callback for other sessions' nick changes.
func (r *Room) OnNickChange(f func(wire.NickEvent)) { addCallback(r, &r.onNickChange, f) }

func addCallback[T any](r *Room, list *[]T, f T) {
	r.callbackMu.Lock()
	defer r.callbackMu.Unlock()
	*list = append(*list, f)
}

// Start launches the connection and blocks until the first handshake
// completes or fails. A first-attempt failure is returned here and the
// room shuts down; once the first join has succeeded, subsequent failures
// are the room's own responsibility and are retried with backoff.
func (r *Room) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return errAlreadyStarted
	}
	r.started = true
	r.mu.Unlock()

	go r.run()

	select {
	case err := <-r.firstResult:
		return err
	case <-ctx.Done():
		r.Leave()
		return ctx.Err()
	}
}

// Leave disconnects terminally: it cancels any pending reconnect backoff,
// aborts a mid-flight handshake, and closes the transport. Idempotent.
func (r *Room) Leave() {
	r.leaveOnce.Do(r.cancel)
}

// Send posts a message to the room, optionally as a reply to parent.
// It returns the server's copy of the message, with ID and timestamp
// assigned. Requires the Joined state.
func (r *Room) Send(ctx context.Context, content, parent string) (wire.Message, error) {
	conn, err := r.joinedConn()
	if err != nil {
		return wire.Message{}, err
	}
	reply, err := r.request(ctx, conn, wire.SendType, wire.SendCommand{Content: content, Parent: parent})
	if err != nil {
		return wire.Message{}, err
	}
	if reply.Error != "" {
		return wire.Message{}, &ServerError{Command: wire.SendType, Reason: reply.Error}
	}
	payload, err := reply.Payload()
	if err != nil {
		return wire.Message{}, err
	}
	sendReply, ok := payload.(*wire.SendReply)
	if !ok {
		return wire.Message{}, fmt.Errorf("room: unexpected %s payload in send reply", reply.Type)
	}
	return wire.Message(*sendReply), nil
}

// SetNick records name as the new desired nick and, when joined, requests
// the change from the server. The desire is recorded even when the
// connection is down; it is applied during the next handshake.
func (r *Room) SetNick(ctx context.Context, name string) error {
	r.mu.Lock()
	r.desiredNick = name
	conn := r.conn
	joined := r.state == StateJoined
	r.mu.Unlock()

	if !joined || conn == nil {
		return nil
	}
	reply, err := r.request(ctx, conn, wire.NickType, wire.NickCommand{Name: name})
	if err != nil {
		return err
	}
	if reply.Error != "" {
		return &ServerError{Command: wire.NickType, Reason: reply.Error}
	}
	r.recordConfirmedNick(reply)
	return nil
}

// Who asks the server for the current roster listing. The local roster is
// usually sufficient; Who is the authoritative check.
func (r *Room) Who(ctx context.Context) ([]wire.SessionView, error) {
	conn, err := r.joinedConn()
	if err != nil {
		return nil, err
	}
	reply, err := r.request(ctx, conn, wire.WhoType, nil)
	if err != nil {
		return nil, err
	}
	if reply.Error != "" {
		return nil, &ServerError{Command: wire.WhoType, Reason: reply.Error}
	}
	payload, err := reply.Payload()
	if err != nil {
		return nil, err
	}
	whoReply, ok := payload.(*wire.WhoReply)
	if !ok {
		return nil, fmt.Errorf("room: unexpected %s payload in who reply", reply.Type)
	}
	return whoReply.Listing, nil
}

// run is the connection supervisor: one connectOnce per attempt, with
// capped exponential backoff between attempts. It exits on Leave, or when
// the very first attempt fails (that failure is reported from Start).
func (r *Room) run() {
	defer close(r.done)
	defer r.reportFirst(ErrLeft)
	defer r.setState(StateDisconnected)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initialBackoff
	policy.MaxInterval = r.maxBackoff
	policy.MaxElapsedTime = 0
	policy.Reset()

	first := true
	for {
		joined, err := r.connectOnce()
		if joined {
			policy.Reset()
		}
		if r.lifetime.Err() != nil {
			return
		}
		if first && !joined {
			r.reportFirst(err)
			return
		}
		first = false

		delay := policy.NextBackOff()
		r.logger.Warn("room connection lost, reconnecting",
			"room", r.name,
			"delay", delay,
			"error", err,
		)
		select {
		case <-r.clock.After(delay):
		case <-r.lifetime.Done():
			return
		}
	}
}

// connectOnce dials, runs the handshake and event loop until the
// connection fails or the room is left, then tears everything down.
// It reports whether this attempt reached the Joined state.
func (r *Room) connectOnce() (bool, error) {
	r.setState(StateConnecting)
	conn, err := r.dialer.DialRoom(r.lifetime, r.name)
	if err != nil {
		return false, fmt.Errorf("room: connecting to %q: %w", r.name, err)
	}
	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()

	events := make(chan *wire.Packet, eventBufferSize)
	readErr := make(chan error, 1)
	connDone := make(chan struct{})
	go r.readLoop(conn, events, readErr, connDone)

	joined, err := r.serve(conn, events, readErr)

	close(connDone)
	r.mu.Lock()
	r.conn = nil
	r.currentNick = ""
	r.mu.Unlock()
	conn.Close()
	r.failPending()
	r.roster.Clear()
	r.setState(StateDisconnected)
	if joined {
		fire(r, "disconnected", r.onDisconnectedSnapshot(), func(f func()) { f() })
	}
	return joined, err
}

// serve processes inbound events in arrival order: handshake steps first,
// then the steady-state fan-out. It returns when the reader fails, the
// server orders a disconnect, a handshake step is rejected, or the room
// is left.
func (r *Room) serve(conn wire.Conn, events <-chan *wire.Packet, readErr <-chan error) (joined bool, err error) {
	for {
		select {
		case <-r.lifetime.Done():
			return joined, ErrLeft
		case readErrValue := <-readErr:
			return joined, fmt.Errorf("room: transport: %w", readErrValue)
		case packet := <-events:
			if packet.Throttled {
				r.logger.Warn("server is throttling this connection",
					"room", r.name, "reason", packet.ThrottledReason)
			}
			payload, payloadErr := packet.Payload()
			if payloadErr != nil {
				r.logger.Warn("dropping malformed packet",
					"room", r.name, "type", packet.Type, "error", payloadErr)
				continue
			}

			switch event := payload.(type) {
			case *wire.BounceEvent:
				if authErr := r.authenticate(conn, event); authErr != nil {
					return joined, authErr
				}
			case *wire.HelloEvent:
				if identifyErr := r.identify(conn); identifyErr != nil {
					return joined, identifyErr
				}
			case *wire.SnapshotEvent:
				r.roster.ApplySnapshot(event.Listing, event.SessionID)
				if event.Nick != "" {
					r.mu.Lock()
					r.currentNick = event.Nick
					r.mu.Unlock()
				}
				r.setState(StateJoined)
				joined = true
				r.reportFirst(nil)
				r.logger.Info("joined room",
					"room", r.name,
					"nick", r.CurrentNick(),
					"roster_size", r.roster.Len(),
				)
				fire(r, "joined", r.onJoinedSnapshot(), func(f func()) { f() })
			case *wire.JoinEvent:
				view := wire.SessionView(*event)
				r.roster.Add(view)
				fire(r, "session-join", r.onSessionJoinSnapshot(), func(f func(wire.SessionView)) { f(view) })
			case *wire.PartEvent:
				if removed, ok := r.roster.Remove(event.SessionID); ok {
					fire(r, "session-part", r.onSessionPartSnapshot(), func(f func(wire.SessionView)) { f(removed) })
				}
			case *wire.NickEvent:
				if _, ok := r.roster.Rename(event.SessionID, event.To); ok {
					nickEvent := *event
					fire(r, "nick-change", r.onNickChangeSnapshot(), func(f func(wire.NickEvent)) { f(nickEvent) })
				}
			case *wire.NetworkEvent:
				if event.Type != "partition" {
					continue
				}
				for _, view := range r.roster.RemovePartition(event.ServerID, event.ServerEra) {
					removed := view
					fire(r, "session-part", r.onSessionPartSnapshot(), func(f func(wire.SessionView)) { f(removed) })
				}
			case *wire.SendEvent:
				message := wire.Message(*event)
				fire(r, "message", r.onMessageSnapshot(), func(f func(wire.Message)) { f(message) })
			case *wire.DisconnectEvent:
				return joined, fmt.Errorf("room: server requested disconnect: %s", event.Reason)
			}
		}
	}
}

// authenticate answers a bounce with the configured passcode.
func (r *Room) authenticate(conn wire.Conn, bounce *wire.BounceEvent) error {
	if r.passcode == "" {
		reason := bounce.Reason
		if reason == "" {
			reason = "room requires authentication and no passcode is configured"
		}
		return &HandshakeError{Stage: StageAuth, Reason: reason}
	}
	r.setState(StateAuthenticating)
	reply, err := r.request(r.lifetime, conn, wire.AuthType, wire.AuthCommand{Type: "passcode", Passcode: r.passcode})
	if err != nil {
		return err
	}
	if reply.Error != "" {
		return &HandshakeError{Stage: StageAuth, Reason: reply.Error}
	}
	payload, err := reply.Payload()
	if err != nil {
		return err
	}
	authReply, ok := payload.(*wire.AuthReply)
	if !ok {
		return fmt.Errorf("room: unexpected %s payload in auth reply", reply.Type)
	}
	if !authReply.Success {
		reason := authReply.Reason
		if reason == "" {
			reason = "passcode rejected"
		}
		return &HandshakeError{Stage: StageAuth, Reason: reason}
	}
	return nil
}

// identify sends the desired nick. The server confirms with a nick-reply,
// possibly adjusting the name; the confirmed form is recorded as the
// current nick while the desire stays untouched.
func (r *Room) identify(conn wire.Conn) error {
	r.setState(StateIdentifying)
	r.mu.Lock()
	nick := r.desiredNick
	r.mu.Unlock()
	if nick == "" {
		// No nick desired: remain a lurker. The snapshot still
		// completes the join.
		return nil
	}
	reply, err := r.request(r.lifetime, conn, wire.NickType, wire.NickCommand{Name: nick})
	if err != nil {
		return err
	}
	if reply.Error != "" {
		return &HandshakeError{Stage: StageIdentify, Reason: reply.Error}
	}
	r.recordConfirmedNick(reply)
	return nil
}

func (r *Room) recordConfirmedNick(reply *wire.Packet) {
	payload, err := reply.Payload()
	if err != nil {
		return
	}
	if nickReply, ok := payload.(*wire.NickReply); ok && nickReply.To != "" {
		r.mu.Lock()
		r.currentNick = nickReply.To
		r.mu.Unlock()
	}
}

// readLoop owns the socket reads. It answers pings inline, routes replies
// to the command that is waiting on them, and forwards everything else to
// the event loop in arrival order. It never blocks on callback execution,
// so a command issued from inside a callback always sees its reply.
//
// connDone is closed once serve has returned: nothing drains events after
// that, so a reader parked on a full buffer exits through it instead.
func (r *Room) readLoop(conn wire.Conn, events chan<- *wire.Packet, readErr chan<- error, connDone <-chan struct{}) {
	for {
		packet, err := conn.ReadPacket()
		if err != nil {
			readErr <- err
			return
		}

		if packet.Type == wire.PingEventType {
			if err := r.answerPing(conn, packet); err != nil {
				readErr <- err
				return
			}
			continue
		}

		if packet.ID != "" {
			if replyCh := r.takePending(packet.ID); replyCh != nil {
				replyCh <- packet
				continue
			}
		}

		select {
		case events <- packet:
		case <-connDone:
			return
		}
	}
}

// answerPing replies to a server keepalive probe. Pings are answered from
// the reader so that a slow event handler cannot starve the keepalive.
func (r *Room) answerPing(conn wire.Conn, packet *wire.Packet) error {
	payload, err := packet.Payload()
	if err != nil {
		r.logger.Warn("dropping malformed ping", "room", r.name, "error", err)
		return nil
	}
	ping, ok := payload.(*wire.PingEvent)
	if !ok {
		return nil
	}
	pong, err := wire.NewPacket(r.newPacketID(), wire.PingReplyType, wire.PingReply{UnixTime: ping.UnixTime})
	if err != nil {
		return err
	}
	return conn.WritePacket(pong)
}

func (r *Room) newPacketID() string {
	return strconv.FormatUint(r.nextID.Add(1), 10)
}

// request writes a command and blocks until its reply arrives, the
// context is cancelled, or the connection is torn down. The reply is
// matched by packet ID on the reader goroutine.
func (r *Room) request(ctx context.Context, conn wire.Conn, packetType wire.PacketType, payload any) (*wire.Packet, error) {
	id := r.newPacketID()
	packet, err := wire.NewPacket(id, packetType, payload)
	if err != nil {
		return nil, err
	}

	replyCh := make(chan *wire.Packet, 1)
	r.addPending(id, replyCh)
	defer r.removePending(id)

	if err := conn.WritePacket(packet); err != nil {
		return nil, fmt.Errorf("room: sending %s: %w", packetType, err)
	}

	select {
	case reply, ok := <-replyCh:
		if !ok {
			return nil, ErrConnectionLost
		}
		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.lifetime.Done():
		return nil, ErrLeft
	}
}

func (r *Room) joinedConn() (wire.Conn, error) {
	if r.lifetime.Err() != nil {
		return nil, ErrLeft
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateJoined || r.conn == nil {
		return nil, ErrNotJoined
	}
	return r.conn, nil
}

func (r *Room) addPending(id string, replyCh chan *wire.Packet) {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	r.pending[id] = replyCh
}

// takePending removes and returns the reply channel for id, so that every
// channel has exactly one eventual sender or closer.
func (r *Room) takePending(id string) chan *wire.Packet {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	replyCh := r.pending[id]
	delete(r.pending, id)
	return replyCh
}

func (r *Room) removePending(id string) {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	delete(r.pending, id)
}

// failPending aborts every command still waiting for a reply. Their
// request calls observe the closed channel and return ErrConnectionLost.
func (r *Room) failPending() {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	for id, replyCh := range r.pending {
		close(replyCh)
		delete(r.pending, id)
	}
}

func (r *Room) setState(state State) {
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()
}

func (r *Room) reportFirst(err error) {
	r.firstOnce.Do(func() { r.firstResult <- err })
}

// Callback snapshot helpers: firing iterates over a copy so that
// registration during fan-out cannot corrupt the slice.

func (r *Room) onJoinedSnapshot() []func() { return snapshotCallbacks(r, &r.onJoined) }
func (r *Room) onDisconnectedSnapshot() []func() {
	return snapshotCallbacks(r, &r.onDisconnected)
}
func (r *Room) onMessageSnapshot() []func(wire.Message) { return snapshotCallbacks(r, &r.onMessage) }
func (r *Room) onSessionJoinSnapshot() []func(wire.SessionView) {
	return snapshotCallbacks(r, &r.onSessionJoin)
}
func (r *Room) onSessionPartSnapshot() []func(wire.SessionView) {
	return snapshotCallbacks(r, &r.onSessionPart)
}
func (r *Room) onNickChangeSnapshot() []func(wire.NickEvent) {
	return snapshotCallbacks(r, &r.onNickChange)
}

func snapshotCallbacks[T any](r *Room, list *[]T) []T {
	r.callbackMu.Lock()
	defer r.callbackMu.Unlock()
	return slices.Clone(*list)
}

// fire invokes each callback in registration order, recovering panics so
// one broken callback cannot take down the connection's event loop.
func fire[T any](r *Room, event string, callbacks []T, invoke func(T)) {
	for _, callback := range callbacks {
		func() {
			defer func() {
				if v := recover(); v != nil {
					r.logger.Error("event callback panicked",
						"room", r.name, "event", event, "panic", v)
				}
			}()
			invoke(callback)
		}()
	}
}
