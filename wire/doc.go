// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire defines the Hallway client-server protocol: the JSON packet
// envelope, the typed payloads carried by each packet kind, the SessionView
// and Message data model, and the websocket transport boundary.
//
// A [Packet] is the unit of framing. Every packet carries a type tag and a
// raw JSON payload; packets sent by the client carry an ID that the server
// echoes on the matching reply, which is how commands are correlated with
// their asynchronous replies. [Packet.Payload] decodes the payload into the
// typed struct for the packet's kind; unknown kinds decode to nil rather
// than an error so that new server event types never break old clients.
//
// [Conn] and [Dialer] form the transport boundary. [WebsocketDialer] is the
// production implementation (one websocket per room, JSON text frames);
// tests substitute scripted in-memory implementations. The room package
// owns everything above this boundary: handshake sequencing, reply
// correlation, roster tracking, and reconnects.
//
// Mention helpers ([Mentionable], [NormalizeNick], [SimilarNicks]) implement
// the platform's @-mention matching rules: mention-breaking characters are
// stripped and comparison is case-insensitive. Command dispatch uses these
// to decide whether a "!command @Nick" invocation addresses this bot.
package wire
