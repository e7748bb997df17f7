package store

import (
	"context"
	"sync"
	"time"

	"hallpass-backend/internal/pass"
)

// memoryHistoryStore is an in-process archive, sufficient where
// durability is not required (single-node deployments, tests).
type memoryHistoryStore struct {
	mu        sync.RWMutex
	byStudent map[string][]pass.HistoryRecord
}

// NewMemoryHistoryStore creates an in-process append-only archive.
func NewMemoryHistoryStore() pass.HistoryStore {
	return &memoryHistoryStore{byStudent: make(map[string][]pass.HistoryRecord)}
}

func (s *memoryHistoryStore) Append(ctx context.Context, rec pass.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byStudent[rec.StudentID] {
		if existing.PassID == rec.PassID {
			return nil
		}
	}
	s.byStudent[rec.StudentID] = append(s.byStudent[rec.StudentID], rec)
	return nil
}

func (s *memoryHistoryStore) ListByStudent(ctx context.Context, studentID string) ([]pass.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]pass.HistoryRecord(nil), s.byStudent[studentID]...), nil
}

func (s *memoryHistoryStore) CountSince(ctx context.Context, studentID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, rec := range s.byStudent[studentID] {
		if !rec.StartTime.Before(since) {
			count++
		}
	}
	return count, nil
}
