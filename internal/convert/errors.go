// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a conversion failure by the step that failed.
type ErrorKind string

const (
	KindRead  ErrorKind = "read"
	KindParse ErrorKind = "parse"
	KindWrite ErrorKind = "write"
)

// Sentinel errors matched by errors.Is against an *Error of the same kind.
var (
	ErrRead  = errors.New("read error")
	ErrParse = errors.New("parse error")
	ErrWrite = errors.New("write error")
)

// Error wraps the cause of a failed conversion step with its kind and the
// location involved.
type Error struct {
	Op   string
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrRead:
		return e.Kind == KindRead
	case ErrParse:
		return e.Kind == KindParse
	case ErrWrite:
		return e.Kind == KindWrite
	}
	return false
}

// IsKind reports whether err is a conversion error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// KindOf returns the kind of a conversion error, or "" when err is not one.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
