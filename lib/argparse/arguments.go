// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package argparse

import "strings"

// Arguments is a lazy view over a raw argument string. The raw string is
// preserved verbatim regardless of which grammar a caller asks for, and
// each grammar is evaluated at most once.
//
// Arguments is not safe for concurrent use; command handlers receive
// their own instance.
type Arguments struct {
	raw string

	tokens    []string
	tokensErr error
	split     bool
}

// New wraps a raw argument string.
func New(raw string) *Arguments {
	return &Arguments{raw: raw}
}

// Raw returns the original string, untouched.
func (a *Arguments) Raw() string { return a.raw }

// Empty reports whether the string contains no arguments at all. It does
// not tokenize, so it never fails on malformed quoting.
func (a *Arguments) Empty() bool { return strings.TrimSpace(a.raw) == "" }

// Tokens splits the raw string under the shell grammar. The result is
// memoized.
func (a *Arguments) Tokens() ([]string, error) {
	if !a.split {
		a.tokens, a.tokensErr = Split(a.raw)
		a.split = true
	}
	return a.tokens, a.tokensErr
}

// Parse tokenizes and classifies flags under the given spec (nil for
// freeform flag parsing). Tokenization errors surface here as well.
func (a *Arguments) Parse(spec *Spec) (*FlagSet, error) {
	tokens, err := a.Tokens()
	if err != nil {
		return nil, err
	}
	return ParseFlags(tokens, spec)
}
