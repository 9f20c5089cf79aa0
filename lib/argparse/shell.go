// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package argparse

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseError describes a malformed argument string. It is returned by both
// grammars; Offset locates shell-grammar errors in the raw string, Flag
// names the offending token for flag-grammar errors.
type ParseError struct {
	// Offset is the byte offset of the error in the raw string, or -1
	// when the error is not positional.
	Offset int

	// Flag is the unrecognized or malformed flag token, when the error
	// came from flag classification.
	Flag string

	// Reason is a human-readable description.
	Reason string
}

func (e *ParseError) Error() string {
	switch {
	case e.Flag != "":
		return fmt.Sprintf("argparse: %s: %s", e.Reason, e.Flag)
	case e.Offset >= 0:
		return fmt.Sprintf("argparse: %s at offset %d", e.Reason, e.Offset)
	}
	return "argparse: " + e.Reason
}

// Split breaks raw into words under the shell grammar. A backslash escapes
// the character after it; double quotes group characters while still
// honoring backslash escapes; single quotes group characters literally.
// Words are separated by unescaped Unicode whitespace.
//
// An unterminated quote or a trailing backslash returns a *ParseError
// whose Offset points at the opening quote or the backslash.
func Split(raw string) ([]string, error) {
	tokens := []string{}
	var word strings.Builder
	inWord := false

	var (
		backslash       bool
		backslashOffset int
		quote           rune
		quoteOffset     int
	)

	for offset, r := range raw {
		switch {
		case backslash:
			backslash = false
			word.WriteRune(r)
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				word.WriteRune(r)
			}
		case quote == '"':
			switch r {
			case '\\':
				backslash = true
				backslashOffset = offset
			case '"':
				quote = 0
			default:
				word.WriteRune(r)
			}
		case r == '\\':
			backslash = true
			backslashOffset = offset
			inWord = true
		case r == '\'' || r == '"':
			quote = r
			quoteOffset = offset
			inWord = true
		case unicode.IsSpace(r):
			if inWord {
				tokens = append(tokens, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}

	if backslash {
		return nil, &ParseError{Offset: backslashOffset, Reason: "trailing backslash"}
	}
	if quote != 0 {
		return nil, &ParseError{Offset: quoteOffset, Reason: fmt.Sprintf("unterminated %c-quote", quote)}
	}
	if inWord {
		tokens = append(tokens, word.String())
	}
	return tokens, nil
}

// plainToken reports whether token survives Split unchanged with no
// quoting: non-empty, and free of whitespace, quotes, and backslashes.
func plainToken(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if unicode.IsSpace(r) || r == '\'' || r == '"' || r == '\\' {
			return false
		}
	}
	return true
}

// Quote renders a single token so that Split recovers it exactly. Plain
// tokens are returned as-is; anything else is double-quoted with inner
// backslashes and double quotes escaped.
func Quote(token string) string {
	if plainToken(token) {
		return token
	}
	var builder strings.Builder
	builder.Grow(len(token) + 2)
	builder.WriteByte('"')
	for _, r := range token {
		if r == '"' || r == '\\' {
			builder.WriteByte('\\')
		}
		builder.WriteRune(r)
	}
	builder.WriteByte('"')
	return builder.String()
}

// Join renders tokens into a single string such that Split(Join(tokens))
// returns tokens.
func Join(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, token := range tokens {
		quoted[i] = Quote(token)
	}
	return strings.Join(quoted, " ")
}
