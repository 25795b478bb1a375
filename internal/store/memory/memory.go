package memory

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"docqa/internal/domain"
)

// Storage is an in-memory notebook store. Notebooks live for the lifetime of
// the process. Callers always receive copies, so mutating a returned notebook
// does not change the stored one.
type Storage struct {
	mu        sync.RWMutex
	notebooks map[string]*domain.Notebook
	now       func() time.Time
}

func NewStorage() *Storage {
	return &Storage{notebooks: make(map[string]*domain.Notebook), now: time.Now}
}

func (s *Storage) Put(nb *domain.Notebook) error {
	if nb == nil || nb.ID == "" {
		return errors.New("notebook id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notebooks[nb.ID] = clone(nb)
	return nil
}

func (s *Storage) Get(id string) (*domain.Notebook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nb, ok := s.notebooks[id]
	if !ok {
		return nil, fmt.Errorf("notebook %s: %w", id, domain.ErrNotFound)
	}
	return clone(nb), nil
}

// List returns all notebooks, most recently created first.
func (s *Storage) List() ([]*domain.Notebook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Notebook, 0, len(s.notebooks))
	for _, nb := range s.notebooks {
		out = append(out, clone(nb))
	}
	slices.SortFunc(out, func(a, b *domain.Notebook) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		// stable output for notebooks created in the same instant
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (s *Storage) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notebooks[id]; !ok {
		return fmt.Errorf("notebook %s: %w", id, domain.ErrNotFound)
	}
	delete(s.notebooks, id)
	return nil
}

// AppendQA adds qa to the notebook, assigning the next question id and
// bumping UpdatedAt, and returns the updated notebook.
func (s *Storage) AppendQA(id string, qa domain.QA) (*domain.Notebook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nb, ok := s.notebooks[id]
	if !ok {
		return nil, fmt.Errorf("notebook %s: %w", id, domain.ErrNotFound)
	}
	now := s.now()
	qa.QuestionID = len(nb.QAs) + 1
	if qa.CreatedAt.IsZero() {
		qa.CreatedAt = now
	}
	nb.QAs = append(nb.QAs, qa)
	nb.UpdatedAt = now
	return clone(nb), nil
}

func (s *Storage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notebooks)
}

func clone(nb *domain.Notebook) *domain.Notebook {
	cp := *nb
	cp.Chunks = slices.Clone(nb.Chunks)
	cp.QAs = slices.Clone(nb.QAs)
	return &cp
}
