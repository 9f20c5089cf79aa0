// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package argparse

import "strings"

// ValueStyle controls how a value-taking flag receives its value.
type ValueStyle int

const (
	// ValueEither accepts both "--name=value" and "--name value".
	ValueEither ValueStyle = iota
	// ValueEqualsOnly accepts only "--name=value".
	ValueEqualsOnly
	// ValueSpaceOnly accepts only "--name value".
	ValueSpaceOnly
)

// Flag declares one recognized flag. Short is a single character matched
// as "-x"; Long is matched as "--long". When both are empty, the Spec map
// key is used: as the short form if it is one character, as the long form
// otherwise.
type Flag struct {
	Short      string
	Long       string
	TakesValue bool
}

// Spec enumerates the flags a command recognizes.
type Spec struct {
	Flags map[string]Flag

	// ValueStyle applies to every value-taking flag in the spec.
	ValueStyle ValueStyle
}

// FlagSet is the result of flag classification.
type FlagSet struct {
	counts     map[string]int
	values     map[string]string
	positional []string
}

// Has reports whether the named flag appeared at least once.
func (s *FlagSet) Has(name string) bool { return s.counts[name] > 0 || s.hasValue(name) }

// Count returns how many times a boolean flag appeared.
func (s *FlagSet) Count(name string) int { return s.counts[name] }

// Value returns the value of a value-taking flag and whether it appeared.
// When a flag repeats, the last value wins.
func (s *FlagSet) Value(name string) (string, bool) {
	value, ok := s.values[name]
	return value, ok
}

// Positional returns the tokens left after flag classification, in order.
func (s *FlagSet) Positional() []string { return s.positional }

func (s *FlagSet) hasValue(name string) bool {
	_, ok := s.values[name]
	return ok
}

func (s *FlagSet) addCount(name string) {
	if s.counts == nil {
		s.counts = make(map[string]int)
	}
	s.counts[name]++
}

func (s *FlagSet) setValue(name, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[name] = value
}

// lookupLong finds the spec entry matched by a "--name" token.
func (spec *Spec) lookupLong(long string) (string, Flag, bool) {
	for name, flag := range spec.Flags {
		effective := flag.Long
		if effective == "" && flag.Short == "" && len(name) > 1 {
			effective = name
		}
		if effective == long {
			return name, flag, true
		}
	}
	return "", Flag{}, false
}

// lookupShort finds the spec entry matched by a "-x" character.
func (spec *Spec) lookupShort(short string) (string, Flag, bool) {
	for name, flag := range spec.Flags {
		effective := flag.Short
		if effective == "" && flag.Long == "" && len(name) == 1 {
			effective = name
		}
		if effective == short {
			return name, flag, true
		}
	}
	return "", Flag{}, false
}

// ParseFlags classifies leading flag tokens and returns the resulting
// FlagSet. With a nil spec, classification is freeform: any flag-like
// token is accepted without validation. With a spec, an unrecognized or
// malformed flag is a *ParseError naming the token.
//
// A literal "--" ends classification and is not included in the
// positionals; so does the first non-flag token (which is included). A
// bare "-" is a positional token, not a flag.
func ParseFlags(tokens []string, spec *Spec) (*FlagSet, error) {
	set := &FlagSet{positional: []string{}}

	i := 0
	for ; i < len(tokens); i++ {
		token := tokens[i]
		switch {
		case token == "--":
			i++
			goto done
		case token == "-" || !strings.HasPrefix(token, "-"):
			goto done
		case strings.HasPrefix(token, "--"):
			consumed, err := parseLong(set, tokens, i, spec)
			if err != nil {
				return nil, err
			}
			i += consumed
		default:
			consumed, err := parseShort(set, tokens, i, spec)
			if err != nil {
				return nil, err
			}
			i += consumed
		}
	}
done:
	set.positional = append(set.positional, tokens[i:]...)
	return set, nil
}

// parseLong handles a "--name" token at tokens[i]. Returns how many extra
// tokens were consumed beyond the flag itself.
func parseLong(set *FlagSet, tokens []string, i int, spec *Spec) (int, error) {
	token := tokens[i]
	body := token[2:]
	long, inline, hasInline := strings.Cut(body, "=")

	if spec == nil {
		if hasInline {
			set.setValue(long, inline)
		} else {
			set.addCount(long)
		}
		return 0, nil
	}

	name, flag, ok := spec.lookupLong(long)
	if !ok {
		return 0, &ParseError{Offset: -1, Flag: token, Reason: "unknown flag"}
	}
	if !flag.TakesValue {
		if hasInline {
			return 0, &ParseError{Offset: -1, Flag: token, Reason: "flag does not take a value"}
		}
		set.addCount(name)
		return 0, nil
	}
	return takeValue(set, tokens, i, name, token, inline, hasInline, spec.ValueStyle)
}

// parseShort handles a "-x" or bundled "-xyz" token at tokens[i]. Returns
// how many extra tokens were consumed beyond the flag itself.
func parseShort(set *FlagSet, tokens []string, i int, spec *Spec) (int, error) {
	token := tokens[i]
	body := token[1:]
	short, inline, hasInline := strings.Cut(body, "=")

	if spec == nil {
		if hasInline {
			set.setValue(short, inline)
			return 0, nil
		}
		for _, r := range body {
			set.addCount(string(r))
		}
		return 0, nil
	}

	// A value-taking short flag must stand alone in its token.
	if len([]rune(short)) == 1 {
		name, flag, ok := spec.lookupShort(short)
		if !ok {
			return 0, &ParseError{Offset: -1, Flag: token, Reason: "unknown flag"}
		}
		if flag.TakesValue {
			return takeValue(set, tokens, i, name, token, inline, hasInline, spec.ValueStyle)
		}
		if hasInline {
			return 0, &ParseError{Offset: -1, Flag: token, Reason: "flag does not take a value"}
		}
		set.addCount(name)
		return 0, nil
	}

	// Bundled booleans: every character must be a recognized boolean flag.
	if hasInline {
		return 0, &ParseError{Offset: -1, Flag: token, Reason: "bundled flags cannot take a value"}
	}
	for _, r := range body {
		name, flag, ok := spec.lookupShort(string(r))
		if !ok || flag.TakesValue {
			return 0, &ParseError{Offset: -1, Flag: token, Reason: "unknown flag"}
		}
		set.addCount(name)
	}
	return 0, nil
}

// takeValue resolves the value for a value-taking flag under the
// configured ValueStyle. Returns how many extra tokens were consumed.
func takeValue(set *FlagSet, tokens []string, i int, name, token, inline string, hasInline bool, style ValueStyle) (int, error) {
	if hasInline {
		if style == ValueSpaceOnly {
			return 0, &ParseError{Offset: -1, Flag: token, Reason: "flag takes its value as a separate token"}
		}
		set.setValue(name, inline)
		return 0, nil
	}
	if style == ValueEqualsOnly {
		return 0, &ParseError{Offset: -1, Flag: token, Reason: "flag requires =value"}
	}
	if i+1 >= len(tokens) {
		return 0, &ParseError{Offset: -1, Flag: token, Reason: "flag requires a value"}
	}
	set.setValue(name, tokens[i+1])
	return 1, nil
}
