// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/hallway-project/hallway/client"
	"github.com/hallway-project/hallway/lib/argparse"
)

const (
	defaultShortHelp = "I am a bot. Mention me with !help @Nick for details."
	defaultLongHelp  = "I am a bot with no further documentation."
)

// registerStandard installs the platform's customary commands according
// to config.Standard.
func (b *Bot) registerStandard(config Config) {
	shortHelp := config.ShortHelp
	if shortHelp == "" {
		shortHelp = defaultShortHelp
	}
	longHelp := config.LongHelp
	if longHelp == "" {
		longHelp = defaultLongHelp
	}

	if config.Standard.Help {
		b.registry.General("help", replyWith(shortHelp))
		b.registry.Specific("help", replyWith(longHelp))
	}
	if config.Standard.Ping {
		b.registry.General("ping", replyWith("Pong!"))
		b.registry.Specific("ping", replyWith("Pong!"))
	}
	if config.Standard.Uptime {
		b.registry.Specific("uptime", b.uptimeCommand)
	}
	if config.Standard.Kill {
		b.registry.Specific("kill", b.killCommand)
	}
}

// replyWith builds a handler that answers with fixed text.
func replyWith(text string) HandlerFunc {
	return func(ctx context.Context, message client.LiveMessage, args *argparse.Arguments) error {
		_, err := message.Reply(ctx, text)
		return err
	}
}

func (b *Bot) uptimeCommand(ctx context.Context, message client.LiveMessage, args *argparse.Arguments) error {
	elapsed := b.clock.Now().Sub(b.started).Round(time.Second)
	text := fmt.Sprintf("/me has been up since %s (%s)",
		b.started.UTC().Format("2006-01-02 15:04:05 UTC"), elapsed)
	_, err := message.Reply(ctx, text)
	return err
}

// killCommand leaves the room the command arrived in. Only this handle's
// presence drops; other rooms, and other presences in the same room, stay.
func (b *Bot) killCommand(ctx context.Context, message client.LiveMessage, args *argparse.Arguments) error {
	if _, err := message.Reply(ctx, "/me dies"); err != nil {
		b.logger.Warn("kill acknowledgement failed", "error", err)
	}
	return b.manager.Leave(message.Handle())
}
