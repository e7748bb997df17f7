package store

import (
	"fmt"
	"sync"

	"hallpass-backend/internal/pass"
)

// memoryActiveStore keeps the active passes in a mutex-guarded map. The
// hot set is small (bounded by enrolled students) and must never evict on
// its own: a pass only leaves through Delete at completion.
type memoryActiveStore struct {
	mu        sync.RWMutex
	byID      map[string]*pass.Pass
	byStudent map[string]string // studentID -> passID
}

// NewMemoryActiveStore creates an in-process active pass repository.
func NewMemoryActiveStore() pass.ActiveStore {
	return &memoryActiveStore{
		byID:      make(map[string]*pass.Pass),
		byStudent: make(map[string]string),
	}
}

func (s *memoryActiveStore) Get(id string) (*pass.Pass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id], nil
}

func (s *memoryActiveStore) GetByStudent(studentID string) (*pass.Pass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byStudent[studentID]
	if !ok {
		return nil, nil
	}
	return s.byID[id], nil
}

func (s *memoryActiveStore) Put(p *pass.Pass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byStudent[p.StudentID]; ok && existing != p.ID {
		return fmt.Errorf("student %s already has active pass %s", p.StudentID, existing)
	}
	s.byID[p.ID] = p
	s.byStudent[p.StudentID] = p.ID
	return nil
}

func (s *memoryActiveStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil
	}
	delete(s.byID, id)
	if s.byStudent[p.StudentID] == id {
		delete(s.byStudent, p.StudentID)
	}
	return nil
}

func (s *memoryActiveStore) List() ([]*pass.Pass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	passes := make([]*pass.Pass, 0, len(s.byID))
	for _, p := range s.byID {
		passes = append(passes, p)
	}
	return passes, nil
}
