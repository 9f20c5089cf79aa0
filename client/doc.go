// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

// Package client multiplexes any number of room connections behind opaque
// handles.
//
// A Manager owns a table of handle → connection. Join creates and starts a
// connection and blocks until its first handshake resolves; the returned
// Handle is the caller's only grip on it. Several handles may point at the
// same room name, which is how one process runs several presences in one
// room. Manager-level callbacks re-emit every connection's events tagged
// with the originating handle, so a single handler serves all rooms.
//
// LiveMessage and LiveSession are non-owning back-references. They carry a
// handle rather than a connection pointer, and re-resolve it on every use:
// a Reply issued after a reconnect transparently goes out on the new
// session, and a Reply issued after Leave fails with ErrDetached instead
// of touching a dead connection.
package client
