// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for Hallway bots.
//
// Configuration is loaded from a single file specified by either the
// HALLWAY_CONFIG environment variable (via Load) or a --config flag
// (via LoadFile). There are no fallbacks, no ~/.config discovery, and no
// automatic file search. This ensures deterministic, auditable
// configuration with no hidden overrides.
//
// Variable expansion is performed on credential-bearing fields after
// loading: ${VAR} and ${VAR:-default} patterns are replaced from the
// environment, so passcodes and cookies can stay out of the file itself.
// No other environment variables override config values.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for a Hallway bot process.
type Config struct {
	// Server configures the platform connection.
	Server ServerConfig `yaml:"server"`

	// Bot configures the bot's identity and help text.
	Bot BotConfig `yaml:"bot"`

	// Rooms lists the rooms to join at startup. The same room may appear
	// more than once for multiple presences.
	Rooms []RoomConfig `yaml:"rooms"`

	// Commands toggles the standard commands.
	Commands CommandsConfig `yaml:"commands"`
}

// ServerConfig configures the platform connection.
type ServerConfig struct {
	// URL is the websocket endpoint, e.g. "wss://hallway.example".
	URL string `yaml:"url"`

	// Cookie, when set, is sent on every connection handshake to keep a
	// stable identity. Supports ${VAR} expansion.
	Cookie string `yaml:"cookie"`

	// DialTimeout bounds each connection attempt, as a duration string.
	// Default: 30s
	DialTimeout string `yaml:"dial_timeout"`
}

// BotConfig configures the bot's identity.
type BotConfig struct {
	// Nick is the default nick, used for rooms without their own.
	Nick string `yaml:"nick"`

	// ShortHelp answers the general "!help"; LongHelp answers the
	// specific form.
	ShortHelp string `yaml:"short_help"`
	LongHelp  string `yaml:"long_help"`
}

// RoomConfig configures one room to join.
type RoomConfig struct {
	// Name is the room name, without "&" or URL decoration.
	Name string `yaml:"name"`

	// Nick overrides the bot's default nick in this room.
	Nick string `yaml:"nick,omitempty"`

	// Passcode authenticates to a private room. Supports ${VAR}
	// expansion so the secret can live in the environment.
	Passcode string `yaml:"passcode,omitempty"`
}

// CommandsConfig toggles the standard commands.
type CommandsConfig struct {
	Help   bool `yaml:"help"`
	Ping   bool `yaml:"ping"`
	Uptime bool `yaml:"uptime"`

	// Kill lets anyone in a room drop the bot's presence there, so it is
	// off unless deliberately enabled.
	Kill bool `yaml:"kill"`
}

// Default returns the default configuration. These defaults are a base
// for the loaded file, not a substitute for it: the file (with at least
// server.url and bot.nick) is required.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			DialTimeout: "30s",
		},
		Commands: CommandsConfig{
			Help:   true,
			Ping:   true,
			Uptime: true,
			Kill:   false,
		},
	}
}

// Load loads configuration from the path in HALLWAY_CONFIG.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks: if HALLWAY_CONFIG is not set, this fails.
func Load() (*Config, error) {
	configPath := os.Getenv("HALLWAY_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("HALLWAY_CONFIG environment variable not set; " +
			"set it to the path of your hallway.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables do
// not override config values; the only expansion performed is ${VAR} and
// ${VAR:-default} in credential fields.
func LoadFile(path string) (*Config, error) {
	configuration := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, configuration); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	configuration.expandVariables()
	return configuration, nil
}

// expandVariables expands ${VAR} patterns in the credential fields.
func (c *Config) expandVariables() {
	c.Server.Cookie = expandVars(c.Server.Cookie)
	for i := range c.Rooms {
		c.Rooms[i].Passcode = expandVars(c.Rooms[i].Passcode)
	}
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	switch {
	case c.Server.URL == "":
		errs = append(errs, fmt.Errorf("server.url is required"))
	case !strings.HasPrefix(c.Server.URL, "ws://") && !strings.HasPrefix(c.Server.URL, "wss://"):
		errs = append(errs, fmt.Errorf("server.url must be a ws:// or wss:// URL, got %q", c.Server.URL))
	}

	if c.Bot.Nick == "" {
		errs = append(errs, fmt.Errorf("bot.nick is required"))
	}

	for i, roomConfig := range c.Rooms {
		if roomConfig.Name == "" {
			errs = append(errs, fmt.Errorf("rooms[%d].name is required", i))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
