package jmaxml

import (
	"errors"
	"fmt"
)

// sentinel errors, check with errors.Is on *ParseError
var (
	ErrMissingField    = errors.New("missing required field")
	ErrMalformed       = errors.New("malformed value")
	ErrUnsupportedKind = errors.New("unsupported bulletin kind")
)

// ParseError reports a bulletin which can't be turned into a record
type ParseError struct {
	Field string // path of the offending element, e.g. Head/ReportDateTime
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("parse bulletin: %v", e.Err)
	}
	return fmt.Sprintf("parse bulletin: %s: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func missing(field string) error {
	return &ParseError{Field: field, Err: ErrMissingField}
}

func malformed(field string, err error) error {
	return &ParseError{Field: field, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
}
