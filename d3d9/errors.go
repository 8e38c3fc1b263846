// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package d3d9

import (
	"fmt"

	"golang.org/x/xerrors"
)

// ErrorKind categorizes translation errors.
type ErrorKind uint8

const (
	// ErrInvalidShader indicates a version the translator does not accept,
	// an opcode used outside its stage or version range, or a truncated stream.
	ErrInvalidShader ErrorKind = iota

	// ErrStageMismatch indicates the header names a different stage than requested.
	ErrStageMismatch

	// ErrNotImplemented indicates a legacy opcode the translator deliberately
	// does not support.
	ErrNotImplemented
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidShader:
		return "InvalidShader"
	case ErrStageMismatch:
		return "StageMismatch"
	case ErrNotImplemented:
		return "NotImplemented"
	default:
		return "Unknown"
	}
}

// ErrInvalidCall is matched by every reportable translation error, in the
// sense of D3DERR_INVALIDCALL.
var ErrInvalidCall = xerrors.New("invalid call")

// Error represents a reportable translation error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string

	// Offset is the byte offset of the offending token, or -1.
	Offset int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("d3d9 %s at byte %d: %s", e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("d3d9 %s: %s", e.Kind, e.Message)
}

// Is reports whether target is ErrInvalidCall or an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if target == ErrInvalidCall {
		return true
	}
	if t, ok := target.(*Error); ok {
		return t.Kind == e.Kind
	}
	return false
}

// NewError creates a new error without offset information.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message, Offset: -1}
}

// IsNotImplemented returns true if the error is ErrNotImplemented.
func (e *Error) IsNotImplemented() bool {
	return e.Kind == ErrNotImplemented
}
