package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// ScanMode selects how ExtractObject locates the JSON object span inside
// free-form model output.
type ScanMode int

const (
	// ScanBalanced finds the first top-level well-formed object using a
	// brace-depth counter that tracks string literals and escapes. This is
	// the default.
	ScanBalanced ScanMode = iota

	// ScanLegacy reproduces the historical behavior: the span between the
	// first "{" and the first subsequent "}", non-greedy. It truncates
	// nested objects and exists for compatibility testing only.
	ScanLegacy
)

// ErrNoJSONObject reports that the output contains no JSON object span at
// all. This is "absent", not a malformed response.
var ErrNoJSONObject = errors.New("no JSON object in model output")

// MalformedOutputError reports that an object span was found but does not
// parse as JSON. It is deliberately distinct from ErrNoJSONObject.
type MalformedOutputError struct {
	Snippet string
	Err     error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed model output: %v (snippet: %s)", e.Err, e.Snippet)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

var legacyObjectRegex = regexp.MustCompile(`(?s)\{.*?\}`)

// ExtractObject scans raw for a single JSON object and returns its bytes.
// Absent span: ErrNoJSONObject. Span present but unparsable:
// *MalformedOutputError.
func ExtractObject(raw string, mode ScanMode) ([]byte, error) {
	if mode == ScanLegacy {
		span := legacyObjectRegex.FindString(raw)
		if span == "" {
			return nil, ErrNoJSONObject
		}
		if !json.Valid([]byte(span)) {
			return nil, &MalformedOutputError{Snippet: clip(span), Err: errors.New("invalid JSON")}
		}
		return []byte(span), nil
	}

	// Prose before the object may itself contain braces, often inside
	// quotes the scanner cannot see as quotes. An invalid span is skipped
	// and the scan resumes one byte past its opening brace, so a
	// well-formed object later in the output still wins.
	first := ""
	for rest := raw; ; {
		span, start, ok := balancedObjectSpan(rest)
		if !ok {
			break
		}
		if json.Valid([]byte(span)) {
			return []byte(span), nil
		}
		if first == "" {
			first = span
		}
		rest = rest[start+1:]
	}

	if first == "" {
		return nil, ErrNoJSONObject
	}
	return nil, &MalformedOutputError{Snippet: clip(first), Err: errors.New("invalid JSON")}
}

// balancedObjectSpan walks from the first "{" counting brace depth, skipping
// braces inside string literals and honoring backslash escapes. It reports
// the span and the index of its opening brace; false means no "{" exists at
// all. An opening brace that never closes yields the tail, which fails
// validation and lets the caller retry or surface it as malformed.
func balancedObjectSpan(s string) (string, int, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], start, true
				}
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}

	if start >= 0 {
		return s[start:], start, true
	}
	return "", -1, false
}

func clip(s string) string {
	const max = 200
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
