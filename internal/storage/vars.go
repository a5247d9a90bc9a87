package storage

import (
	"errors"
	"fmt"
)

const (
	TablesFile    = "tables.json"
	SchemasFile   = "schemas.json"
	SequencesFile = "sequences.json"
)

const (
	FileMode0644 = 0o644
	FileMode0755 = 0o755
)

var (
	// ErrPersistence is matched by every failure to write a snapshot.
	ErrPersistence = errors.New("storage: persistence failed")

	// ErrCorruptSnapshot is returned by Load when a snapshot document
	// exists but cannot be decoded.
	ErrCorruptSnapshot = errors.New("storage: snapshot is corrupted")
)

// PersistenceError describes a failed filesystem step. It matches both
// ErrPersistence and the underlying cause with errors.Is.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}
