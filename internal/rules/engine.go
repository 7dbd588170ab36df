// Package rules loads WINNER:VERB:LOSER rule tables and adjudicates
// token pairs against them.
//
// An Engine is built once by one of the Load functions and never changes
// afterwards, so a single Engine can be shared by any number of
// concurrent matches.
package rules

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

const fieldSep = ":"

// pairKey indexes a rule by its two tokens regardless of order.
type pairKey struct {
	lo, hi string
}

func keyOf(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// Engine resolves token pairs against a loaded rule table.
type Engine struct {
	tokens   map[string]struct{}
	outcomes map[pairKey]Outcome
}

// Load parses one rule per line from r. A failed load returns a nil
// Engine.
func Load(r io.Reader) (*Engine, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return LoadLines(lines)
}

// LoadFile opens path and loads its rules.
func LoadFile(path string) (*Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules: %w", err)
	}
	defer f.Close()

	e, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return e, nil
}

// LoadLines builds an Engine from rule lines. Later rules for the same
// pair of tokens replace earlier ones.
func LoadLines(lines []string) (*Engine, error) {
	e := &Engine{
		tokens:   map[string]struct{}{},
		outcomes: map[pairKey]Outcome{},
	}
	for i, line := range lines {
		o, err := parseRule(line)
		if err != nil {
			return nil, &MalformedRuleError{Line: i + 1, Text: line}
		}
		e.tokens[o.Winner] = struct{}{}
		e.tokens[o.Loser] = struct{}{}
		e.outcomes[keyOf(o.Winner, o.Loser)] = o
	}
	return e, nil
}

func parseRule(line string) (Outcome, error) {
	line = strings.TrimSuffix(line, "\r")
	fields := strings.Split(line, fieldSep)
	if len(fields) != 3 {
		return Outcome{}, ErrMalformedRule
	}
	for _, f := range fields {
		if f == "" {
			return Outcome{}, ErrMalformedRule
		}
	}
	return Outcome{Winner: fields[0], Verb: fields[1], Loser: fields[2]}, nil
}

// Tokens returns the vocabulary, sorted. The slice is a copy.
func (e *Engine) Tokens() []string {
	out := make([]string, 0, len(e.tokens))
	for t := range e.tokens {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Has reports whether token belongs to the vocabulary.
func (e *Engine) Has(token string) bool {
	_, ok := e.tokens[token]
	return ok
}

// Len is the vocabulary size.
func (e *Engine) Len() int {
	return len(e.tokens)
}

// Resolve adjudicates t1 against t2. The result does not depend on the
// argument order.
func (e *Engine) Resolve(t1, t2 string) (Outcome, error) {
	var unknown []string
	for _, t := range []string{t1, t2} {
		if !e.Has(t) && (len(unknown) == 0 || unknown[0] != t) {
			unknown = append(unknown, t)
		}
	}
	if len(unknown) > 0 {
		return Outcome{}, &UnknownTokenError{Tokens: unknown}
	}

	if t1 == t2 {
		return Draw(t1), nil
	}

	o, ok := e.outcomes[keyOf(t1, t2)]
	if !ok {
		return Outcome{}, &UnresolvedPairError{A: t1, B: t2}
	}
	return o, nil
}
