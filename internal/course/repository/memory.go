package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/coursepub/coursepub/internal/course"
)

var (
	ErrNotFound = errors.New("course record not found")
)

// MemoryRepo is an in-memory course record repository used for unit tests and
// development runs without MongoDB.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*course.CourseRecord
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*course.CourseRecord)}
}

func key(courseID, format string) string {
	return courseID + "/" + format
}

// Upsert creates or replaces the record for the given identity and returns the
// persisted copy. CreatedAt survives overwrites.
func (m *MemoryRepo) Upsert(ctx context.Context, rec *course.CourseRecord) (*course.CourseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *rec
	if prev, ok := m.store[key(rec.CourseID, rec.Format)]; ok {
		stored.CreatedAt = prev.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	m.store[key(rec.CourseID, rec.Format)] = &stored
	out := stored
	return &out, nil
}

func (m *MemoryRepo) Get(ctx context.Context, courseID, format string) (*course.CourseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.store[key(courseID, format)]; ok {
		out := *r
		return &out, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) List(ctx context.Context) ([]*course.CourseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*course.CourseRecord, 0, len(m.store))
	for _, r := range m.store {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CourseID != out[j].CourseID {
			return out[i].CourseID < out[j].CourseID
		}
		return out[i].Format < out[j].Format
	})
	return out, nil
}
