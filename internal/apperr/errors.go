// Package apperr defines sentinel errors shared across layers.
package apperr

import "errors"

var (
	// ErrNotFound signals that a trail or mark id resolved to nothing.
	ErrNotFound = errors.New("not found")
	// ErrNotLoaded signals that Save was called before any Load.
	// This is a calling-sequence bug, not a data condition.
	ErrNotLoaded = errors.New("document not loaded")
)
