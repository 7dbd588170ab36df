package rules

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedRule  = errors.New("malformed rule detected")
	ErrUnknownToken   = errors.New("unknown token")
	ErrUnresolvedPair = errors.New("unresolved token pair")
)

// MalformedRuleError reports a rule line that does not split into three
// non-empty fields. Line is 1-based.
type MalformedRuleError struct {
	Line int
	Text string
}

func (e *MalformedRuleError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: line %d: %q", ErrMalformedRule.Error(), e.Line, e.Text)
}

func (e *MalformedRuleError) Unwrap() error { return ErrMalformedRule }

// UnknownTokenError lists every argument of a Resolve call that is not
// part of the vocabulary.
type UnknownTokenError struct {
	Tokens []string
}

func (e *UnknownTokenError) Error() string {
	if e == nil {
		return ""
	}
	quoted := make([]string, len(e.Tokens))
	for i, t := range e.Tokens {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return fmt.Sprintf("%s: %s", ErrUnknownToken.Error(), strings.Join(quoted, ", "))
}

func (e *UnknownTokenError) Unwrap() error { return ErrUnknownToken }

// UnresolvedPairError means both tokens are known but no rule covers them.
type UnresolvedPairError struct {
	A, B string
}

func (e *UnresolvedPairError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %q vs %q", ErrUnresolvedPair.Error(), e.A, e.B)
}

func (e *UnresolvedPairError) Unwrap() error { return ErrUnresolvedPair }
