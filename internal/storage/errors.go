package storage

import "errors"

var (
	ErrStoreUnavailable  = errors.New("vector store unavailable")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
