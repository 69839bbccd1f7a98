package extract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies extraction failures so callers can branch on them.
type ErrorKind string

const (
	// ErrEmptyResponse means the provider returned no text at all.
	ErrEmptyResponse ErrorKind = "empty_response"
	// ErrNoJSONFound means no candidate {...} span could be located.
	ErrNoJSONFound ErrorKind = "no_json_found"
	// ErrJSONDecode means a candidate span was found but did not parse.
	ErrJSONDecode ErrorKind = "json_decode"
)

// snippetLimit bounds diagnostic snippets carried on errors.
const snippetLimit = 300

// Error is a typed extraction failure: kind, message, and an optional
// truncated snippet of the offending text for diagnostics.
type Error struct {
	Kind    ErrorKind
	Msg     string
	Snippet string
	Err     error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("extract: %s: %s", e.Kind, e.Msg)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	if e.Snippet != "" {
		s += fmt.Sprintf(" (snippet: %s)", e.Snippet)
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is, or wraps, an extraction Error of the given
// kind.
func IsKind(err error, kind ErrorKind) bool {
	var ee *Error
	return errors.As(err, &ee) && ee.Kind == kind
}

// snippet truncates s to snippetLimit characters and flattens newlines so the
// result is safe to embed in a single log line.
func snippet(s string) string {
	if len(s) > snippetLimit {
		s = s[:snippetLimit]
	}
	return strings.ReplaceAll(s, "\n", `\n`)
}
