// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestRoomURL(t *testing.T) {
	dialer := &WebsocketDialer{BaseURL: "wss://hallway.example"}
	if got := dialer.RoomURL("test"); got != "wss://hallway.example/room/test/ws" {
		t.Errorf("RoomURL = %q", got)
	}
	dialer.Human = true
	if got := dialer.RoomURL("test"); got != "wss://hallway.example/room/test/ws?h=1" {
		t.Errorf("human RoomURL = %q", got)
	}
}

func TestWebsocketDialerRoundTrip(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/room/test/ws" {
			http.NotFound(writer, request)
			return
		}
		gotCookie = request.Header.Get("Cookie")
		serverConn, err := upgrader.Upgrade(writer, request, nil)
		if err != nil {
			t.Errorf("upgrading: %v", err)
			return
		}
		defer serverConn.Close()

		// Echo one packet back with an ID, as a reply would carry.
		_, data, err := serverConn.ReadMessage()
		if err != nil {
			t.Errorf("server read: %v", err)
			return
		}
		reply := append([]byte(nil), data...)
		if err := serverConn.WriteMessage(websocket.TextMessage, reply); err != nil {
			t.Errorf("server write: %v", err)
		}
	}))
	defer server.Close()

	dialer := &WebsocketDialer{
		BaseURL: "ws" + strings.TrimPrefix(server.URL, "http"),
		Cookie:  "a=1",
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := dialer.DialRoom(ctx, "test")
	if err != nil {
		t.Fatalf("DialRoom: %v", err)
	}
	defer conn.Close()

	sent, err := NewPacket("1", NickType, NickCommand{Name: "Echo"})
	if err != nil {
		t.Fatalf("NewPacket: %v", err)
	}
	if err := conn.WritePacket(sent); err != nil {
		t.Fatalf("WritePacket: %v", err)
	}
	received, err := conn.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if received.ID != "1" || received.Type != NickType {
		t.Errorf("received %+v", received)
	}
	if gotCookie != "a=1" {
		t.Errorf("handshake cookie = %q, want a=1", gotCookie)
	}
}

func TestWebsocketDialerRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	dialer := &WebsocketDialer{
		BaseURL:     "ws" + strings.TrimPrefix(server.URL, "http"),
		DialTimeout: time.Second,
	}
	if _, err := dialer.DialRoom(context.Background(), "test"); err == nil {
		t.Fatalf("DialRoom succeeded against a closed server")
	}
}
