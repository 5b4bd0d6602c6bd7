package storage

import "errors"

var (
	ErrQdrantUnreachable = errors.New("qdrant server unreachable")
	ErrSchemaConflict    = errors.New("collection schema conflict")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrWriteFailed       = errors.New("vector store write failed")
	ErrQueryFailed       = errors.New("vector store query failed")
)
