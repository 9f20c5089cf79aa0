// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package argparse

import (
	"errors"
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"only whitespace", "   \t  ", []string{}},
		{"plain words", "a b c", []string{"a", "b", "c"}},
		{"collapsed whitespace", "  a   b\tc  ", []string{"a", "b", "c"}},
		{"double quotes group", `a "b c" d`, []string{"a", "b c", "d"}},
		{"single quotes group", "a 'b c' d", []string{"a", "b c", "d"}},
		{"quotes join adjacent text", `a"b c"d`, []string{"ab cd"}},
		{"empty quoted word", `a "" b`, []string{"a", "", "b"}},
		{"backslash escapes space", `a\ b`, []string{"a b"}},
		{"backslash escapes quote", `\"a`, []string{`"a`}},
		{"backslash in double quotes", `"a\"b"`, []string{`a"b`}},
		{"single quotes are literal", `'a\b"c'`, []string{`a\b"c`}},
		{"unicode whitespace separates", "a\u00a0b", []string{"a", "b"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Split(test.raw)
			if err != nil {
				t.Fatalf("Split(%q): %v", test.raw, err)
			}
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("Split(%q) = %#v, want %#v", test.raw, got, test.want)
			}
		})
	}
}

func TestSplitErrors(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantOffset int
	}{
		{"unterminated double quote", `a "b`, 2},
		{"unterminated single quote", "a 'b c", 2},
		{"trailing backslash", `a b\`, 3},
		{"backslash inside open quote", `"a\`, 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Split(test.raw)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Split(%q) = %v, want ParseError", test.raw, err)
			}
			if parseErr.Offset != test.wantOffset {
				t.Errorf("Offset = %d, want %d", parseErr.Offset, test.wantOffset)
			}
		})
	}
}

func TestJoinRoundTrip(t *testing.T) {
	tests := [][]string{
		{"a", "b", "c"},
		{"has space", "plain"},
		{`quo"te`, `back\slash`},
		{"", "empty-neighbor"},
		{"it's", "fine"},
	}
	for _, tokens := range tests {
		joined := Join(tokens)
		got, err := Split(joined)
		if err != nil {
			t.Fatalf("Split(Join(%#v)) = %q: %v", tokens, joined, err)
		}
		if !reflect.DeepEqual(got, tokens) {
			t.Errorf("Split(Join(%#v)) = %#v via %q", tokens, got, joined)
		}
	}
}

func commandSpec() *Spec {
	return &Spec{Flags: map[string]Flag{
		"verbose": {Short: "v", Long: "verbose"},
		"force":   {Short: "f", Long: "force"},
		"count":   {Short: "n", Long: "count", TakesValue: true},
	}}
}

func TestParseFlags(t *testing.T) {
	spec := commandSpec()

	t.Run("long and short mix", func(t *testing.T) {
		set, err := ParseFlags([]string{"--verbose", "-n", "3", "file"}, spec)
		if err != nil {
			t.Fatalf("ParseFlags: %v", err)
		}
		if !set.Has("verbose") {
			t.Errorf("verbose not recognized")
		}
		if value, ok := set.Value("count"); !ok || value != "3" {
			t.Errorf("count = %q, %v; want 3", value, ok)
		}
		if !reflect.DeepEqual(set.Positional(), []string{"file"}) {
			t.Errorf("Positional() = %#v, want [file]", set.Positional())
		}
	})

	t.Run("equals value", func(t *testing.T) {
		set, err := ParseFlags([]string{"--count=7"}, spec)
		if err != nil {
			t.Fatalf("ParseFlags: %v", err)
		}
		if value, _ := set.Value("count"); value != "7" {
			t.Errorf("count = %q, want 7", value)
		}
	})

	t.Run("repeated boolean counts", func(t *testing.T) {
		set, err := ParseFlags([]string{"-v", "-v", "--verbose"}, spec)
		if err != nil {
			t.Fatalf("ParseFlags: %v", err)
		}
		if got := set.Count("verbose"); got != 3 {
			t.Errorf("Count(verbose) = %d, want 3", got)
		}
	})

	t.Run("repeated value keeps last", func(t *testing.T) {
		set, err := ParseFlags([]string{"-n", "1", "--count=2"}, spec)
		if err != nil {
			t.Fatalf("ParseFlags: %v", err)
		}
		if value, _ := set.Value("count"); value != "2" {
			t.Errorf("count = %q, want 2", value)
		}
	})

	t.Run("bundled shorts", func(t *testing.T) {
		set, err := ParseFlags([]string{"-vf"}, spec)
		if err != nil {
			t.Fatalf("ParseFlags: %v", err)
		}
		if !set.Has("verbose") || !set.Has("force") {
			t.Errorf("bundle did not set both flags")
		}
	})

	t.Run("double dash halts", func(t *testing.T) {
		set, err := ParseFlags([]string{"-v", "--", "--notaflag", "-x"}, spec)
		if err != nil {
			t.Fatalf("ParseFlags: %v", err)
		}
		if !reflect.DeepEqual(set.Positional(), []string{"--notaflag", "-x"}) {
			t.Errorf("Positional() = %#v, want [--notaflag -x]", set.Positional())
		}
	})

	t.Run("first non-flag halts", func(t *testing.T) {
		set, err := ParseFlags([]string{"-v", "target", "--count=1"}, spec)
		if err != nil {
			t.Fatalf("ParseFlags: %v", err)
		}
		if !reflect.DeepEqual(set.Positional(), []string{"target", "--count=1"}) {
			t.Errorf("Positional() = %#v; flag after positional must stay positional", set.Positional())
		}
	})

	t.Run("bare dash is positional", func(t *testing.T) {
		set, err := ParseFlags([]string{"-", "-v"}, spec)
		if err != nil {
			t.Fatalf("ParseFlags: %v", err)
		}
		if !reflect.DeepEqual(set.Positional(), []string{"-", "-v"}) {
			t.Errorf("Positional() = %#v, want [- -v]", set.Positional())
		}
	})
}

func TestParseFlagsErrors(t *testing.T) {
	spec := commandSpec()
	tests := []struct {
		name     string
		tokens   []string
		wantFlag string
	}{
		{"unknown long", []string{"--bogus"}, "--bogus"},
		{"unknown short", []string{"-x"}, "-x"},
		{"boolean with value", []string{"--verbose=yes"}, "--verbose=yes"},
		{"missing value", []string{"--count"}, "--count"},
		{"bundle with value-taking flag", []string{"-vn"}, "-vn"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseFlags(test.tokens, spec)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("ParseFlags(%v) = %v, want ParseError", test.tokens, err)
			}
			if parseErr.Flag != test.wantFlag {
				t.Errorf("Flag = %q, want %q", parseErr.Flag, test.wantFlag)
			}
		})
	}
}

func TestParseFlagsValueStyle(t *testing.T) {
	equalsOnly := commandSpec()
	equalsOnly.ValueStyle = ValueEqualsOnly
	if _, err := ParseFlags([]string{"--count", "3"}, equalsOnly); err == nil {
		t.Errorf("ValueEqualsOnly accepted a space-separated value")
	}
	if set, err := ParseFlags([]string{"--count=3"}, equalsOnly); err != nil {
		t.Errorf("ValueEqualsOnly rejected =value: %v", err)
	} else if value, _ := set.Value("count"); value != "3" {
		t.Errorf("count = %q, want 3", value)
	}

	spaceOnly := commandSpec()
	spaceOnly.ValueStyle = ValueSpaceOnly
	if _, err := ParseFlags([]string{"--count=3"}, spaceOnly); err == nil {
		t.Errorf("ValueSpaceOnly accepted =value")
	}
	if set, err := ParseFlags([]string{"--count", "3"}, spaceOnly); err != nil {
		t.Errorf("ValueSpaceOnly rejected a space-separated value: %v", err)
	} else if value, _ := set.Value("count"); value != "3" {
		t.Errorf("count = %q, want 3", value)
	}
}

func TestParseFlagsFreeform(t *testing.T) {
	set, err := ParseFlags([]string{"-abc", "--anything=x", "--switch", "rest"}, nil)
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	for _, short := range []string{"a", "b", "c"} {
		if set.Count(short) != 1 {
			t.Errorf("freeform bundle missed -%s", short)
		}
	}
	if value, ok := set.Value("anything"); !ok || value != "x" {
		t.Errorf("anything = %q, %v; want x", value, ok)
	}
	if !set.Has("switch") {
		t.Errorf("freeform long switch not counted")
	}
	if !reflect.DeepEqual(set.Positional(), []string{"rest"}) {
		t.Errorf("Positional() = %#v, want [rest]", set.Positional())
	}
}

func TestArguments(t *testing.T) {
	arguments := New(`  -v "two words"  `)
	if arguments.Raw() != `  -v "two words"  ` {
		t.Errorf("Raw() altered the input")
	}
	if arguments.Empty() {
		t.Errorf("Empty() = true for non-empty input")
	}
	tokens, err := arguments.Tokens()
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	if !reflect.DeepEqual(tokens, []string{"-v", "two words"}) {
		t.Errorf("Tokens() = %#v", tokens)
	}

	set, err := arguments.Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if set.Count("v") != 1 {
		t.Errorf("Parse did not classify -v")
	}

	if !New("").Empty() || !New("  \t ").Empty() {
		t.Errorf("Empty() = false for blank input")
	}
	// Empty never tokenizes, so malformed quoting does not trip it.
	malformed := New(`"unterminated`)
	if malformed.Empty() {
		t.Errorf("Empty() = true for malformed but non-blank input")
	}
	if _, err := malformed.Tokens(); err == nil {
		t.Errorf("Tokens() accepted an unterminated quote")
	}
}
