// Package errs holds the sentinel error taxonomy shared by the resource
// store and the backend adapters (spec.md §7). Call sites wrap a sentinel
// with context via fmt.Errorf("...: %w", ErrNotFound) so errors.Is still
// matches at the HTTP boundary (out of scope here) while carrying a useful
// message through the logs.
package errs

import "errors"

var (
	// ErrNotFound means a resource id/link has no matching entry.
	ErrNotFound = errors.New("resource not found")
	// ErrV1NotFound means a legacy numeric id has no mapping.
	ErrV1NotFound = errors.New("legacy id not found")
	// ErrTypeMismatch means Get[T] was called against a different variant.
	ErrTypeMismatch = errors.New("resource type mismatch")
	// ErrFull means a bounded resource (scene index, …) is exhausted.
	ErrFull = errors.New("resource space full")
	// ErrCreateNotAllowed / ErrUpdateNotAllowed / ErrDeleteNotAllowed are
	// protocol-level refusals for a resource type.
	ErrCreateNotAllowed = errors.New("create not allowed for this resource type")
	ErrUpdateNotAllowed = errors.New("update not allowed for this resource type")
	ErrDeleteNotAllowed = errors.New("delete not allowed for this resource type")
	// ErrCreateNotYetSupported / ErrUpdateNotYetSupported mark
	// implementation gaps rather than protocol refusals.
	ErrCreateNotYetSupported = errors.New("create not yet supported for this resource type")
	ErrUpdateNotYetSupported = errors.New("update not yet supported for this resource type")
	// ErrService wraps configuration or remote-backend failures.
	ErrService = errors.New("service error")
	// ErrParse wraps body/path parsing failures.
	ErrParse = errors.New("parse error")
)
