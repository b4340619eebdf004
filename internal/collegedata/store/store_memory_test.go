package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"collegedesk/internal/collegedata/models"
	"collegedesk/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) newRecord(phone string) *models.Record {
	return &models.Record{
		Phone:        phone,
		CollegeOrder: []string{"mit", "stanford"},
		Notes: map[string][]string{
			"mit": {"Great CS program"},
		},
		LikedColleges: []string{"mit"},
	}
}

func (s *MemoryStoreSuite) TestCreateAndFind() {
	s.Run("creates and finds record by phone", func() {
		record := s.newRecord("5551234567")
		s.Require().NoError(s.store.Create(s.ctx, record))

		found, err := s.store.Find(s.ctx, "5551234567")
		s.Require().NoError(err)
		s.Equal(record.CollegeOrder, found.CollegeOrder)
		s.Equal(record.Notes, found.Notes)
		s.Equal(record.LikedColleges, found.LikedColleges)
	})

	s.Run("returns ErrNotFound for unknown phone", func() {
		_, err := s.store.Find(s.ctx, "0000000000")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("found record does not alias stored state", func() {
		record := s.newRecord("5550001111")
		s.Require().NoError(s.store.Create(s.ctx, record))

		found, err := s.store.Find(s.ctx, "5550001111")
		s.Require().NoError(err)
		found.CollegeOrder[0] = "mutated"
		found.Notes["mit"][0] = "mutated"

		again, err := s.store.Find(s.ctx, "5550001111")
		s.Require().NoError(err)
		s.Equal("mit", again.CollegeOrder[0])
		s.Equal("Great CS program", again.Notes["mit"][0])
	})
}

func (s *MemoryStoreSuite) TestUpdateFields() {
	s.Run("updates only the given fields", func() {
		record := s.newRecord("5552223333")
		s.Require().NoError(s.store.Create(s.ctx, record))

		newOrder := []string{"stanford", "mit"}
		err := s.store.UpdateFields(s.ctx, "5552223333", FieldSet{CollegeOrder: &newOrder})
		s.Require().NoError(err)

		found, err := s.store.Find(s.ctx, "5552223333")
		s.Require().NoError(err)
		s.Equal(newOrder, found.CollegeOrder)
		s.Equal(record.Notes, found.Notes, "notes must stay untouched")
		s.Equal(record.LikedColleges, found.LikedColleges, "liked colleges must stay untouched")
	})

	s.Run("returns ErrNotFound for absent record", func() {
		order := []string{"mit"}
		err := s.store.UpdateFields(s.ctx, "0000000000", FieldSet{CollegeOrder: &order})
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("replaces notes wholesale when set", func() {
		record := s.newRecord("5554445555")
		s.Require().NoError(s.store.Create(s.ctx, record))

		notes := map[string][]string{"harvard": {"Strong alumni network"}}
		err := s.store.UpdateFields(s.ctx, "5554445555", FieldSet{Notes: &notes})
		s.Require().NoError(err)

		found, err := s.store.Find(s.ctx, "5554445555")
		s.Require().NoError(err)
		s.Equal(notes, found.Notes)
		s.Equal(record.CollegeOrder, found.CollegeOrder)
	})
}

func (s *MemoryStoreSuite) TestHealth() {
	s.NoError(s.store.Health(s.ctx))
}
