// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

// Package bot turns room messages into command dispatch.
//
// A message is a command when its first non-whitespace character is "!"
// or "/" followed by a name. A mention directly after the name ("!kill
// @Echo") makes it a specific command, addressed to one bot; without the
// mention it is general, addressed to every bot listening in the room.
// Everything after the name (and mention) is the argument string, handed
// to handlers verbatim for lazy parsing under either argparse grammar.
//
// A Registry maps names and aliases to handlers, separately for the
// general and specific forms. Dispatch runs at most one handler: a
// specific command runs only when the mentioned nick is similar (under
// mention normalization) to this bot's current nick, so "!ping @Echo" is
// silently ignored by every bot not named Echo. Handler errors and panics
// are logged at the dispatch boundary and never reach the room's event
// loop.
//
// Bot is the composition root: it binds a Registry to a client.Manager's
// message stream and registers the platform's customary commands (help,
// ping, uptime, and optionally kill) according to its configuration.
package bot
