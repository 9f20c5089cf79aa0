// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

// hallway-bot runs a Hallway chat bot from a YAML configuration: it joins
// the configured rooms, keeps every presence connected across transport
// failures, and answers the standard commands plus a simple echo command.
//
// Configuration comes from --config or the HALLWAY_CONFIG environment
// variable; see lib/config for the file format.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/hallway-project/hallway/bot"
	"github.com/hallway-project/hallway/client"
	"github.com/hallway-project/hallway/lib/argparse"
	"github.com/hallway-project/hallway/lib/config"
	"github.com/hallway-project/hallway/wire"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var logLevel string

	flagSet := pflag.NewFlagSet("hallway-bot", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to hallway.yaml (default: $HALLWAY_CONFIG)")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	level, err := parseLogLevel(logLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var configuration *config.Config
	if configPath != "" {
		configuration, err = config.LoadFile(configPath)
	} else {
		configuration, err = config.Load()
	}
	if err != nil {
		return err
	}
	if err := configuration.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dialTimeout, err := time.ParseDuration(configuration.Server.DialTimeout)
	if err != nil {
		return fmt.Errorf("invalid server.dial_timeout: %w", err)
	}

	manager, err := client.NewManager(client.Config{
		Dialer: &wire.WebsocketDialer{
			BaseURL:     configuration.Server.URL,
			DialTimeout: dialTimeout,
			Cookie:      configuration.Server.Cookie,
		},
		DefaultNick: configuration.Bot.Nick,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer manager.Close()

	commandBot, err := bot.New(bot.Config{
		Manager:   manager,
		ShortHelp: configuration.Bot.ShortHelp,
		LongHelp:  configuration.Bot.LongHelp,
		Standard: bot.StandardCommands{
			Help:   configuration.Commands.Help,
			Ping:   configuration.Commands.Ping,
			Uptime: configuration.Commands.Uptime,
			Kill:   configuration.Commands.Kill,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}
	commandBot.Registry().General("echo", echoCommand)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(configuration.Rooms) == 0 {
		return fmt.Errorf("no rooms configured")
	}
	for _, roomConfig := range configuration.Rooms {
		handle, err := manager.Join(ctx, roomConfig.Name, client.RoomOptions{
			Nick:     roomConfig.Nick,
			Passcode: roomConfig.Passcode,
		})
		if err != nil {
			return err
		}
		logger.Info("presence established", "room", roomConfig.Name, "handle", string(handle))
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

func echoCommand(ctx context.Context, message client.LiveMessage, args *argparse.Arguments) error {
	if args.Empty() {
		return nil
	}
	_, err := message.Reply(ctx, args.Raw())
	return err
}

func parseLogLevel(name string) (slog.Level, error) {
	switch name {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}
