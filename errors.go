package rlisp

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an evaluation failure.
type ErrorKind int

const (
	SyntaxError ErrorKind = iota + 1
	NameError
	AttributeError
	AssertionError
	IncludeError
	MalformedFormError
	ResourceError
	RuntimeError
)

var kindStr = [...]string{
	"", "syntax error", "name error", "attribute error", "assertion error",
	"include error", "malformed form", "resource error", "runtime error",
}

func (k ErrorKind) String() string {
	if k <= 0 || int(k) >= len(kindStr) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return kindStr[k]
}

// Error is a failure of lexing, parsing, validation or evaluation.
// Form is the offending form; it may be nil for errors with no source.
type Error struct {
	Kind ErrorKind
	Hint string
	Form *Form
	Err  error
}

func (e *Error) Error() string {
	s := e.Kind.String() + ": " + e.Hint
	if e.Form != nil {
		s += fmt.Sprintf(" in line %d", e.Form.Line)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Detail returns the offending form, shortened for a diagnostic line.
func (e *Error) Detail() string {
	if e.Form == nil {
		return ""
	}
	s := e.Form.String()
	if r := []rune(s); len(r) > 54 {
		s = string(r[:54]) + "..."
	}
	return s
}

func newError(kind ErrorKind, hint string, form *Form) *Error {
	return &Error{Kind: kind, Hint: hint, Form: form}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// ExitError is returned when a program calls (exit n).
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }
