//go:build integration

package store_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"collegedesk/internal/collegedata/models"
	"collegedesk/internal/collegedata/store"
	"collegedesk/pkg/platform/sentinel"
	"collegedesk/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "user_college_data")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestCreateAndFindRoundTrip() {
	ctx := context.Background()

	record := &models.Record{
		Phone:         "5551234567",
		CollegeOrder:  []string{"mit", "stanford"},
		Notes:         map[string][]string{"mit": {"Great CS program"}},
		LikedColleges: []string{"mit"},
	}
	s.Require().NoError(s.store.Create(ctx, record))

	found, err := s.store.Find(ctx, "5551234567")
	s.Require().NoError(err)
	s.Equal([]string{"mit", "stanford"}, found.CollegeOrder)
	s.Equal(map[string][]string{"mit": {"Great CS program"}}, found.Notes)
	s.Equal([]string{"mit"}, found.LikedColleges)
}

func (s *PostgresStoreSuite) TestFindUnknownPhone() {
	_, err := s.store.Find(context.Background(), "5550000000")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestNilFieldsStoredAsEmptyJSON() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, &models.Record{Phone: "5551110000"}))

	found, err := s.store.Find(ctx, "5551110000")
	s.Require().NoError(err)
	s.Equal([]string{}, found.CollegeOrder)
	s.Equal(map[string][]string{}, found.Notes)
	s.Equal([]string{}, found.LikedColleges)
}

// TestPartialUpdateKeepsOtherColumns verifies the COALESCE behavior: an
// order-only update must not touch notes or liked colleges.
func (s *PostgresStoreSuite) TestPartialUpdateKeepsOtherColumns() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, &models.Record{
		Phone:         "5551234567",
		CollegeOrder:  []string{"mit"},
		Notes:         map[string][]string{"mit": {"Great CS program"}},
		LikedColleges: []string{"mit"},
	}))

	order := []string{"stanford", "mit"}
	err := s.store.UpdateFields(ctx, "5551234567", store.FieldSet{CollegeOrder: &order})
	s.Require().NoError(err)

	found, err := s.store.Find(ctx, "5551234567")
	s.Require().NoError(err)
	s.Equal([]string{"stanford", "mit"}, found.CollegeOrder)
	s.Equal(map[string][]string{"mit": {"Great CS program"}}, found.Notes)
	s.Equal([]string{"mit"}, found.LikedColleges)
}

// TestDuplicateCreateReportsConflict verifies the unique-violation mapping
// that lets the service retry a lost create race as an update.
func (s *PostgresStoreSuite) TestDuplicateCreateReportsConflict() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, &models.Record{Phone: "5551234567"}))

	err := s.store.Create(ctx, &models.Record{Phone: "5551234567", CollegeOrder: []string{"mit"}})
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUpdateUnknownPhone() {
	order := []string{"mit"}
	err := s.store.UpdateFields(context.Background(), "5559999999", store.FieldSet{CollegeOrder: &order})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentUpdatesLastWriteWins verifies that racing full updates all
// succeed and leave one writer's complete document behind.
func (s *PostgresStoreSuite) TestConcurrentUpdatesLastWriteWins() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, &models.Record{Phone: "5551234567"}))

	const goroutines = 50
	var wg sync.WaitGroup
	var updateErrors atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			order := []string{fmt.Sprintf("college-%d", idx)}
			notes := map[string][]string{fmt.Sprintf("college-%d", idx): {"fact"}}
			err := s.store.UpdateFields(ctx, "5551234567", store.FieldSet{
				CollegeOrder: &order,
				Notes:        &notes,
			})
			if err != nil {
				updateErrors.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int32(0), updateErrors.Load(), "all updates should succeed (last write wins)")

	found, err := s.store.Find(ctx, "5551234567")
	s.Require().NoError(err)
	s.Require().Len(found.CollegeOrder, 1)

	// The surviving order and notes must come from the same writer.
	winner := found.CollegeOrder[0]
	s.Contains(found.Notes, winner, "order and notes must reflect one complete write")
}

func (s *PostgresStoreSuite) TestHealth() {
	s.NoError(s.store.Health(context.Background()))
}
