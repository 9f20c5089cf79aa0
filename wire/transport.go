// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is one message-framed connection to a room. ReadPacket may be
// called from one goroutine while WritePacket is called from others;
// implementations serialize writes internally. Close unblocks a pending
// ReadPacket.
type Conn interface {
	ReadPacket() (*Packet, error)
	WritePacket(*Packet) error
	Close() error
}

// Dialer opens connections to rooms. The production implementation is
// WebsocketDialer; tests substitute scripted fakes.
type Dialer interface {
	DialRoom(ctx context.Context, room string) (Conn, error)
}

// Transport tuning shared by all websocket connections.
const (
	// maxPacketSize bounds a single inbound frame. Room snapshots with
	// large rosters are the biggest legitimate packets; 16 MiB leaves
	// ample headroom.
	maxPacketSize = 16 << 20

	defaultDialTimeout  = 30 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// WebsocketDialer dials rooms at BaseURL + "/room/" + name + "/ws" and
// frames packets as JSON text messages.
type WebsocketDialer struct {
	// BaseURL is the platform endpoint, e.g. "wss://hallway.example".
	BaseURL string

	// DialTimeout bounds the websocket handshake. Zero uses a 30s default.
	DialTimeout time.Duration

	// WriteTimeout bounds each outbound frame. Zero uses a 10s default.
	WriteTimeout time.Duration

	// Cookie, when set, is sent on the handshake request. The platform
	// uses it to keep a stable agent identity across connections.
	Cookie string

	// Human appends the human-client query flag to the room URL. Bots
	// leave this unset.
	Human bool
}

// RoomURL returns the websocket URL for a room name.
func (d *WebsocketDialer) RoomURL(room string) string {
	url := d.BaseURL + "/room/" + room + "/ws"
	if d.Human {
		url += "?h=1"
	}
	return url
}

// DialRoom opens a websocket to the named room. The returned Conn is
// ready for the handshake; no packets have been consumed.
func (d *WebsocketDialer) DialRoom(ctx context.Context, room string) (Conn, error) {
	timeout := d.DialTimeout
	if timeout == 0 {
		timeout = defaultDialTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var header http.Header
	if d.Cookie != "" {
		header = http.Header{"Cookie": []string{d.Cookie}}
	}

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, d.RoomURL(room), header)
	if err != nil {
		return nil, fmt.Errorf("wire: dialing room %q: %w", room, err)
	}
	conn.SetReadLimit(maxPacketSize)

	writeTimeout := d.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &websocketConn{conn: conn, writeTimeout: writeTimeout}, nil
}

// websocketConn adapts a gorilla websocket connection to Conn. A single
// mutex serializes writes; gorilla connections support one concurrent
// reader and one concurrent writer, and the room's reader goroutine is
// the only caller of ReadPacket.
type websocketConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	writeMu sync.Mutex
}

func (c *websocketConn) ReadPacket() (*Packet, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var packet Packet
	if err := json.Unmarshal(data, &packet); err != nil {
		return nil, fmt.Errorf("wire: decoding packet: %w", err)
	}
	return &packet, nil
}

func (c *websocketConn) WritePacket(packet *Packet) error {
	data, err := json.Marshal(packet)
	if err != nil {
		return fmt.Errorf("wire: encoding packet: %w", err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *websocketConn) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "closing"),
		time.Now().Add(500*time.Millisecond))
	c.writeMu.Unlock()
	return c.conn.Close()
}
