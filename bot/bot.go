// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hallway-project/hallway/client"
	"github.com/hallway-project/hallway/lib/clock"
)

// handlerTimeout bounds one command handler's outbound calls. A handler
// stuck on a dead connection must not wedge the room's event loop forever.
const handlerTimeout = 30 * time.Second

// StandardCommands selects which of the platform's customary commands the
// bot registers. Kill lets anyone in the room shut the bot's presence
// down, so it stays off unless deliberately enabled.
type StandardCommands struct {
	Help   bool
	Ping   bool
	Uptime bool
	Kill   bool
}

// DefaultStandardCommands enables everything except Kill.
func DefaultStandardCommands() StandardCommands {
	return StandardCommands{Help: true, Ping: true, Uptime: true}
}

// Config describes a Bot.
type Config struct {
	// Manager supplies the message stream and room connections. Required.
	Manager *client.Manager

	// Registry holds the command handlers. Nil creates a fresh
	// case-insensitive registry.
	Registry *Registry

	// ShortHelp answers the general "!help"; LongHelp answers the
	// specific "!help @Nick". Empty strings fall back to terse defaults.
	ShortHelp string
	LongHelp  string

	// Standard selects the customary commands to register.
	Standard StandardCommands

	// Logger receives structured logs. Nil uses slog.Default().
	Logger *slog.Logger

	// Clock supplies the start time and uptime arithmetic. Nil uses the
	// real clock.
	Clock clock.Clock
}

// Bot binds a Registry to a Manager's message stream. Every message from
// every managed room is screened for command syntax; commands dispatch
// against the nick the originating connection currently holds, so two
// presences with different nicks answer to different mentions.
type Bot struct {
	manager  *client.Manager
	registry *Registry
	logger   *slog.Logger
	clock    clock.Clock
	started  time.Time
}

// New creates a Bot, registers its standard commands, and subscribes it
// to the manager's message stream.
func New(config Config) (*Bot, error) {
	if config.Manager == nil {
		return nil, fmt.Errorf("bot: Manager is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	registry := config.Registry
	if registry == nil {
		registry = NewRegistry(RegistryOptions{Logger: logger, CaseInsensitive: true})
	}

	b := &Bot{
		manager:  config.Manager,
		registry: registry,
		logger:   logger,
		clock:    clk,
		started:  clk.Now(),
	}
	b.registerStandard(config)
	config.Manager.OnMessage(b.handleMessage)
	return b, nil
}

// Registry returns the bot's command registry, for registering further
// commands after construction.
func (b *Bot) Registry() *Registry { return b.registry }

// Started returns the bot's start time.
func (b *Bot) Started() time.Time { return b.started }

func (b *Bot) handleMessage(handle client.Handle, message client.LiveMessage) {
	command, ok := ParseCommand(message.Content)
	if !ok {
		return
	}
	connection, ok := b.manager.Get(handle)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	if b.registry.Dispatch(ctx, connection.CurrentNick(), message, command) {
		b.logger.Debug("dispatched command",
			"command", command.Name,
			"specific", command.Specific(),
			"room", connection.Name(),
		)
	}
}
