package sde

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSourceUnreadable     = errors.New("source unreadable")
	ErrSourceMalformed      = errors.New("source malformed")
	ErrMissingRequiredField = errors.New("missing required field")
)

// SourceError describes a failure tied to a source document and, when known,
// the record and field that caused it. It matches both its Kind and its
// underlying cause with errors.Is.
type SourceError struct {
	Kind  error
	Path  string
	Key   string
	Field string
	Err   error
}

func (e *SourceError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Path != "" {
		fmt.Fprintf(&b, ": %s", e.Path)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, ": record %q", e.Key)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *SourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// MissingField builds the error reported when a required key is absent from
// the record identified by key.
func MissingField(key, field string) error {
	return &SourceError{Kind: ErrMissingRequiredField, Key: key, Field: field}
}
