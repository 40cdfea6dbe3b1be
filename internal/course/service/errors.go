package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by read operations for unknown identities.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a document already exists for the identity
	// and the submission did not allow overwriting. Nothing is written.
	ErrConflict = errors.New("document already exists and overwrite was not requested")
)

// StorageWriteError reports a failed blob store operation. When it occurs
// during the body write nothing has been persisted, so there is nothing to
// compensate.
type StorageWriteError struct {
	Op  string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("blob %s: %v", e.Op, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// MetadataWriteError reports a failed index upsert after the blob body was
// already written. CompensateErr carries the failure of the compensating blob
// delete when that too went wrong; in that case a document body exists with no
// matching index entry and the degraded state has been surfaced, not swallowed.
type MetadataWriteError struct {
	Err           error
	CompensateErr error
}

func (e *MetadataWriteError) Error() string {
	if e.CompensateErr != nil {
		return fmt.Sprintf("metadata upsert failed (%v); compensating blob delete also failed (%v): orphaned blob left behind", e.Err, e.CompensateErr)
	}
	return fmt.Sprintf("metadata upsert failed (%v); blob write rolled back", e.Err)
}

func (e *MetadataWriteError) Unwrap() error { return e.Err }

// Orphaned reports whether the compensating delete failed, leaving a blob
// with no index entry.
func (e *MetadataWriteError) Orphaned() bool { return e.CompensateErr != nil }
