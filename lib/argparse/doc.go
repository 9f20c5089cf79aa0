// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

// Package argparse parses command argument strings under two independent
// grammars.
//
// The shell grammar ([Split]) breaks a string into words on unescaped
// whitespace, honoring single quotes (literal), double quotes (backslash
// escapes apply inside), and backslash escaping. An unterminated quote or
// trailing backslash is a [*ParseError]. [Quote] and [Join] are the
// inverse: Split(Join(tokens)) returns the original tokens.
//
// The flag grammar ([ParseFlags]) runs over shell tokens and classifies
// leading "-x" / "--long" tokens against an enumerated [Spec]. Boolean
// flags count repetitions; value flags take "--name=value" or the
// following token, controlled by [ValueStyle]. Classification halts at the
// first non-flag token or a literal "--"; the remainder is positional. An
// unrecognized flag-like token is a ParseError naming the flag. With a nil
// Spec the grammar is freeform: any flag token is accepted unvalidated.
//
// [Arguments] wraps a raw string and exposes both grammars lazily. Raw is
// always preserved verbatim; a handler that only wants the raw text never
// pays tokenization costs or sees tokenization errors.
package argparse
