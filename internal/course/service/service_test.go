package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursepub/coursepub/internal/course"
	"github.com/coursepub/coursepub/internal/course/repository"
	"github.com/coursepub/coursepub/internal/frontmatter"
	"github.com/coursepub/coursepub/internal/storage"
)

// faultBlobs wraps the in-memory blob store with injectable failures.
type faultBlobs struct {
	*storage.MemoryStore
	putErr    error
	deleteErr error
}

func (f *faultBlobs) Put(ctx context.Context, name string, data []byte, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.MemoryStore.Put(ctx, name, data, contentType)
}

func (f *faultBlobs) Delete(ctx context.Context, name string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.MemoryStore.Delete(ctx, name)
}

// faultRecords wraps the in-memory repository with an injectable upsert failure.
type faultRecords struct {
	*repository.MemoryRepo
	upsertErr error
}

func (f *faultRecords) Upsert(ctx context.Context, rec *course.CourseRecord) (*course.CourseRecord, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	return f.MemoryRepo.Upsert(ctx, rec)
}

func testDoc(t *testing.T, stamp time.Time) *frontmatter.Document {
	t.Helper()
	raw := `---
course_id: cs101
title: Intro
format: md
published: "2026-01-15"
---
# Week 1
`
	doc, err := frontmatter.Process([]byte(raw), stamp)
	require.NoError(t, err)
	return doc
}

func TestPersistFirstUpload(t *testing.T) {
	blobs := storage.NewMemoryStore()
	repo := repository.NewMemoryRepo()
	svc := New(blobs, repo)

	stamp := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	rec, err := svc.Persist(context.Background(), "cs101", "md", testDoc(t, stamp), false)
	require.NoError(t, err)
	assert.Equal(t, "cs101-md.md", rec.BlobRef)
	assert.Equal(t, stamp, rec.LastUpdated)
	assert.False(t, rec.CreatedAt.IsZero())

	exists, err := blobs.Exists(context.Background(), "cs101-md.md")
	require.NoError(t, err)
	assert.True(t, exists)

	stored, err := repo.Get(context.Background(), "cs101", "md")
	require.NoError(t, err)
	// the index entry and the front matter stamp must never diverge
	assert.Equal(t, stamp, stored.LastUpdated)
}

func TestPersistConflictNeverMutatesStorage(t *testing.T) {
	blobs := storage.NewMemoryStore()
	repo := repository.NewMemoryRepo()
	svc := New(blobs, repo)
	ctx := context.Background()

	stamp := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	first, err := svc.Persist(ctx, "cs101", "md", testDoc(t, stamp), false)
	require.NoError(t, err)

	_, err = svc.Persist(ctx, "cs101", "md", testDoc(t, stamp.Add(time.Hour)), false)
	require.ErrorIs(t, err, ErrConflict)

	// neither the blob nor the record changed
	after, err := repo.Get(ctx, "cs101", "md")
	require.NoError(t, err)
	assert.Equal(t, first.LastUpdated, after.LastUpdated)
	assert.Equal(t, 1, blobs.Len())
}

func TestPersistOverwriteIsIdempotent(t *testing.T) {
	blobs := storage.NewMemoryStore()
	repo := repository.NewMemoryRepo()
	svc := New(blobs, repo)
	ctx := context.Background()

	stamp := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	first, err := svc.Persist(ctx, "cs101", "md", testDoc(t, stamp), false)
	require.NoError(t, err)

	second, err := svc.Persist(ctx, "cs101", "md", testDoc(t, stamp.Add(time.Hour)), true)
	require.NoError(t, err)
	assert.Equal(t, first.BlobRef, second.BlobRef)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, stamp.Add(time.Hour), second.LastUpdated)
	assert.Equal(t, 1, blobs.Len())
}

func TestPersistBlobWriteFailure(t *testing.T) {
	blobs := &faultBlobs{MemoryStore: storage.NewMemoryStore(), putErr: errors.New("bucket offline")}
	repo := repository.NewMemoryRepo()
	svc := New(blobs, repo)

	_, err := svc.Persist(context.Background(), "cs101", "md", testDoc(t, time.Now()), false)
	var swe *StorageWriteError
	require.ErrorAs(t, err, &swe)
	assert.Equal(t, "put", swe.Op)

	// nothing was written, so nothing to compensate
	_, err = repo.Get(context.Background(), "cs101", "md")
	require.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 0, blobs.Len())
}

func TestPersistMetadataFailureCompensatesBlob(t *testing.T) {
	blobs := &faultBlobs{MemoryStore: storage.NewMemoryStore()}
	records := &faultRecords{MemoryRepo: repository.NewMemoryRepo(), upsertErr: errors.New("table offline")}
	svc := New(blobs, records)

	_, err := svc.Persist(context.Background(), "cs101", "md", testDoc(t, time.Now()), false)
	var merr *MetadataWriteError
	require.ErrorAs(t, err, &merr)
	assert.False(t, merr.Orphaned())

	// the just-written blob must be gone again
	exists, statErr := blobs.Exists(context.Background(), "cs101-md.md")
	require.NoError(t, statErr)
	assert.False(t, exists)
}

func TestPersistCompensatingDeleteFailureReportsBoth(t *testing.T) {
	blobs := &faultBlobs{MemoryStore: storage.NewMemoryStore(), deleteErr: errors.New("delete refused")}
	records := &faultRecords{MemoryRepo: repository.NewMemoryRepo(), upsertErr: errors.New("table offline")}
	svc := New(blobs, records)

	_, err := svc.Persist(context.Background(), "cs101", "md", testDoc(t, time.Now()), false)
	var merr *MetadataWriteError
	require.ErrorAs(t, err, &merr)
	assert.True(t, merr.Orphaned())
	assert.Contains(t, merr.Error(), "table offline")
	assert.Contains(t, merr.Error(), "delete refused")
	assert.Contains(t, merr.Error(), "orphaned")
}

func TestContentRoundTrip(t *testing.T) {
	blobs := storage.NewMemoryStore()
	svc := New(blobs, repository.NewMemoryRepo())
	ctx := context.Background()

	_, err := svc.Persist(ctx, "cs101", "md", testDoc(t, time.Now()), false)
	require.NoError(t, err)

	body, err := svc.Content(ctx, "cs101", "md")
	require.NoError(t, err)
	assert.Contains(t, string(body), "# Week 1")
	assert.Contains(t, string(body), "last_updated:")
}

func TestGetUnknownIdentity(t *testing.T) {
	svc := New(storage.NewMemoryStore(), repository.NewMemoryRepo())
	_, err := svc.Get(context.Background(), "nope", "md")
	require.ErrorIs(t, err, ErrNotFound)
}
