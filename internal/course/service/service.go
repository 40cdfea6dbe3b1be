package service

import (
	"context"
	"errors"

	"github.com/coursepub/coursepub/internal/course"
	"github.com/coursepub/coursepub/internal/course/repository"
	"github.com/coursepub/coursepub/internal/frontmatter"
	"github.com/coursepub/coursepub/pkg/logger"
	"github.com/coursepub/coursepub/pkg/metrics"
)

// BlobStore is the document body collaborator. Implemented by
// storage.MinIOStore and storage.MemoryStore.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
	Exists(ctx context.Context, name string) (bool, error)
	Get(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}

// Records is the metadata table collaborator, keyed by (courseId, format).
type Records interface {
	Upsert(ctx context.Context, rec *course.CourseRecord) (*course.CourseRecord, error)
	Get(ctx context.Context, courseID, format string) (*course.CourseRecord, error)
	List(ctx context.Context) ([]*course.CourseRecord, error)
}

// Service owns the durable write sequence for course documents. No other
// component mutates blob or table state.
type Service struct {
	blobs   BlobStore
	records Records
}

func New(blobs BlobStore, records Records) *Service {
	return &Service{blobs: blobs, records: records}
}

// Persist runs the two-phase write: blob body first, then the index upsert.
// If the upsert fails, the just-written blob is deleted (single best-effort
// attempt) so a blob never silently exists without an index entry.
//
// The existence check before the write is best-effort only: two concurrent
// submissions for the same identity can race past it. This is a documented
// limitation, not something the service tries to lock away.
func (s *Service) Persist(ctx context.Context, courseID, format string, doc *frontmatter.Document, overwrite bool) (*course.CourseRecord, error) {
	blobName := course.BlobName(courseID, format)

	exists, err := s.blobs.Exists(ctx, blobName)
	if err != nil {
		return nil, &StorageWriteError{Op: "stat", Err: err}
	}
	if exists && !overwrite {
		return nil, ErrConflict
	}

	body, err := doc.Render()
	if err != nil {
		return nil, &StorageWriteError{Op: "render", Err: err}
	}
	if err := s.blobs.Put(ctx, blobName, body, "text/markdown"); err != nil {
		return nil, &StorageWriteError{Op: "put", Err: err}
	}

	rec := &course.CourseRecord{
		CourseID:    courseID,
		Format:      format,
		Title:       doc.Meta.Title,
		BlobRef:     blobName,
		LastUpdated: doc.Meta.LastUpdated,
	}
	stored, err := s.records.Upsert(ctx, rec)
	if err != nil {
		merr := &MetadataWriteError{Err: err}
		if derr := s.blobs.Delete(ctx, blobName); derr != nil {
			merr.CompensateErr = derr
			metrics.OrphanedBlobs.Inc()
			logger.Errorf("orphaned blob %q: metadata upsert failed (%v) and compensating delete failed (%v)", blobName, err, derr)
		} else {
			logger.Warnf("metadata upsert for %q failed (%v); blob write rolled back", blobName, err)
		}
		return nil, merr
	}
	return stored, nil
}

// Get returns the index entry for an identity.
func (s *Service) Get(ctx context.Context, courseID, format string) (*course.CourseRecord, error) {
	rec, err := s.records.Get(ctx, courseID, format)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List returns all index entries.
func (s *Service) List(ctx context.Context) ([]*course.CourseRecord, error) {
	return s.records.List(ctx)
}

// Content returns the stored document body for an identity.
func (s *Service) Content(ctx context.Context, courseID, format string) ([]byte, error) {
	rec, err := s.Get(ctx, courseID, format)
	if err != nil {
		return nil, err
	}
	data, err := s.blobs.Get(ctx, rec.BlobRef)
	if err != nil {
		return nil, &StorageWriteError{Op: "get", Err: err}
	}
	return data, nil
}
