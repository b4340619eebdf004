package store

import (
	"context"
	"sync"

	"collegedesk/internal/collegedata/models"
	"collegedesk/pkg/platform/sentinel"
)

// InMemoryStore keeps documents in a map. It is the default backend for
// local development and the fixture for unit tests. It intentionally favors
// clarity over performance.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*models.Record)}
}

func (s *InMemoryStore) Find(_ context.Context, phone string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.records[phone]; ok {
		return record.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Create(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Phone] = record.Clone()
	return nil
}

func (s *InMemoryStore) UpdateFields(_ context.Context, phone string, fields FieldSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[phone]
	if !ok {
		return sentinel.ErrNotFound
	}
	applyFields(record, fields)
	return nil
}

func (s *InMemoryStore) Health(_ context.Context) error {
	return nil
}

func applyFields(record *models.Record, fields FieldSet) {
	if fields.CollegeOrder != nil {
		record.CollegeOrder = append([]string{}, *fields.CollegeOrder...)
	}
	if fields.Notes != nil {
		notes := make(map[string][]string, len(*fields.Notes))
		for college, facts := range *fields.Notes {
			notes[college] = append([]string{}, facts...)
		}
		record.Notes = notes
	}
	if fields.LikedColleges != nil {
		record.LikedColleges = append([]string{}, *fields.LikedColleges...)
	}
}
