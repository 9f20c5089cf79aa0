// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"strings"
	"unicode"

	"github.com/hallway-project/hallway/lib/argparse"
)

// Command is a recognized command line.
type Command struct {
	// Name is the command name, without its "!" or "/" sigil.
	Name string

	// Mention is the nick addressed by a specific command, without its
	// "@". Empty for the general form.
	Mention string

	// Args is the rest of the line, whitespace-trimmed at the edges but
	// otherwise verbatim.
	Args *argparse.Arguments
}

// Specific reports whether the command addresses a particular bot.
func (c Command) Specific() bool { return c.Mention != "" }

// ParseCommand recognizes a command line in a message. Non-commands
// report ok=false; they are ordinary conversation and must stay silent.
func ParseCommand(content string) (Command, bool) {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) < 2 {
		return Command{}, false
	}
	if trimmed[0] != '!' && trimmed[0] != '/' {
		return Command{}, false
	}

	name, rest := splitWord(trimmed[1:])
	if name == "" || strings.HasPrefix(name, "@") {
		return Command{}, false
	}

	mention := ""
	if after := strings.TrimLeftFunc(rest, unicode.IsSpace); strings.HasPrefix(after, "@") {
		word, tail := splitWord(after)
		if len(word) > 1 {
			mention = word[1:]
			rest = tail
		}
	}

	return Command{
		Name:    name,
		Mention: mention,
		Args:    argparse.New(strings.TrimSpace(rest)),
	}, true
}

// splitWord cuts s at its first whitespace rune.
func splitWord(s string) (word, rest string) {
	index := strings.IndexFunc(s, unicode.IsSpace)
	if index < 0 {
		return s, ""
	}
	return s[:index], s[index:]
}
