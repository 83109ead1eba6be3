package core

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks against the typed errors below.
var (
	ErrParse        = errors.New("parse error")
	ErrLoad         = errors.New("load error")
	ErrMissingField = errors.New("missing field")
	ErrNotFound     = errors.New("not found")
)

// ParseError reports bad numeric or date text coming from user input or a
// CSV row. Only the record being parsed is affected.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// LoadError reports a store document that could not be read or decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// MissingFieldError reports a record object lacking a required key. It is a
// load failure as well.
type MissingFieldError struct {
	Record string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Record, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField || target == ErrLoad
}

// NotFoundError reports an ID that does not resolve to a stored record.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
