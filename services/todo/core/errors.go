package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidArgs = errors.New("invalid args")

// Tasks errors
var (
	ErrTaskNotFound = errors.New("task not found")
)

// Context entries errors
var (
	ErrContextEntryNotFound = errors.New("context entry not found")
)

// Text completion errors
var (
	ErrQuotaExceeded     = errors.New("completion quota exceeded")
	ErrService           = errors.New("completion service error")
	ErrMalformedResponse = errors.New("malformed completion response")
)

// ValidationError carries per-field messages. It is returned before any
// write happens.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Err returns nil when no field failed, so callers can write
// `return v.Err()`.
func (e *ValidationError) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidArgs
}

const (
	msgRequired = "This field is required."
	msgBlank    = "This field may not be blank."
)
