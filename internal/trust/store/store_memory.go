package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"trustgraph/internal/trust/models"
	"trustgraph/pkg/platform/sentinel"
)

// InMemoryStore keeps records in process memory. State is lost on restart.
type InMemoryStore struct {
	mu           sync.RWMutex
	records      map[models.DID]*models.TrustRecord
	endorsements map[string]models.Endorsement
}

// NewInMemory constructs an empty in-memory trust store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		records:      make(map[models.DID]*models.TrustRecord),
		endorsements: make(map[string]models.Endorsement),
	}
}

func (s *InMemoryStore) Get(_ context.Context, subject models.DID) (*models.TrustRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[subject]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *InMemoryStore) Put(_ context.Context, rec *models.TrustRecord) error {
	if rec == nil || rec.Subject.IsZero() {
		return sentinel.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Subject] = rec.Clone()
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, subject models.DID, fn UpdateFunc) (*models.TrustRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.records[subject]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	s.records[subject] = working
	return working.Clone(), nil
}

func (s *InMemoryStore) SaveEndorsement(_ context.Context, e models.Endorsement) error {
	if e.ID == "" {
		return sentinel.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endorsements[e.ID] = e
	return nil
}

func (s *InMemoryStore) GetEndorsement(_ context.Context, id string) (*models.Endorsement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.endorsements[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &e, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.TrustRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.TrustRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	slices.SortFunc(out, func(a, b *models.TrustRecord) int {
		return strings.Compare(string(a.Subject), string(b.Subject))
	})
	return out, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}
