// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/hallway-project/hallway/client"
	"github.com/hallway-project/hallway/lib/argparse"
	"github.com/hallway-project/hallway/wire"
)

// HandlerFunc handles one dispatched command. The message is the command
// message itself; replying to it threads the response under the command.
// A returned error is logged, never shown to the room.
type HandlerFunc func(ctx context.Context, message client.LiveMessage, args *argparse.Arguments) error

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// Logger receives structured logs. Nil uses slog.Default().
	Logger *slog.Logger

	// CaseInsensitive matches command names ignoring case, so "!Ping"
	// dispatches the "ping" handler.
	CaseInsensitive bool
}

// Registry maps command names to handlers, keeping the general and
// specific forms separate. Registration is expected at startup; Dispatch
// may run concurrently with late registrations.
type Registry struct {
	logger          *slog.Logger
	caseInsensitive bool

	mu       sync.Mutex
	general  map[string]HandlerFunc
	specific map[string]HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry(options RegistryOptions) *Registry {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:          logger,
		caseInsensitive: options.CaseInsensitive,
		general:         make(map[string]HandlerFunc),
		specific:        make(map[string]HandlerFunc),
	}
}

// General registers a handler for the general form of a command, under
// its name and any aliases. Re-registering a name overwrites the previous
// handler with a log line.
func (r *Registry) General(name string, handler HandlerFunc, aliases ...string) {
	r.register(r.general, "general", name, handler, aliases)
}

// Specific registers a handler for the specific (mentioned) form of a
// command, under its name and any aliases.
func (r *Registry) Specific(name string, handler HandlerFunc, aliases ...string) {
	r.register(r.specific, "specific", name, handler, aliases)
}

func (r *Registry) register(table map[string]HandlerFunc, form, name string, handler HandlerFunc, aliases []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, alias := range append([]string{name}, aliases...) {
		key := r.key(alias)
		if _, exists := table[key]; exists {
			r.logger.Warn("replacing command handler", "command", alias, "form", form)
		}
		table[key] = handler
	}
}

func (r *Registry) key(name string) string {
	if r.caseInsensitive {
		return strings.ToLower(name)
	}
	return name
}

// Dispatch runs the single handler matching the command, if any, and
// reports whether one ran. A specific command dispatches only when its
// mention addresses botNick under mention similarity; a specific command
// for another bot is silently ignored, never downgraded to the general
// form. Handler errors and panics are logged here and do not propagate.
func (r *Registry) Dispatch(ctx context.Context, botNick string, message client.LiveMessage, command Command) bool {
	var handler HandlerFunc
	r.mu.Lock()
	if command.Specific() {
		if wire.SimilarNicks(command.Mention, botNick) {
			handler = r.specific[r.key(command.Name)]
		}
	} else {
		handler = r.general[r.key(command.Name)]
	}
	r.mu.Unlock()

	if handler == nil {
		return false
	}
	r.invoke(ctx, handler, message, command)
	return true
}

func (r *Registry) invoke(ctx context.Context, handler HandlerFunc, message client.LiveMessage, command Command) {
	defer func() {
		if v := recover(); v != nil {
			r.logger.Error("command handler panicked",
				"command", command.Name, "panic", v)
		}
	}()
	if err := handler(ctx, message, command.Args); err != nil {
		r.logger.Error("command handler failed",
			"command", command.Name, "error", err)
	}
}
