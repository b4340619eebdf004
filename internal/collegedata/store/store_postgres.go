package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"collegedesk/internal/collegedata/models"
	"collegedesk/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

// PostgresStore persists documents as jsonb columns, one row per phone
// number. Partial updates use COALESCE so unspecified fields stay untouched.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed document store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the backing table when it does not exist yet. There is
// no migration strategy beyond this; the document shape is owned by the
// service's normalization.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS user_college_data (
			phone          text PRIMARY KEY,
			college_order  jsonb NOT NULL DEFAULT '[]',
			notes          jsonb NOT NULL DEFAULT '{}',
			liked_colleges jsonb NOT NULL DEFAULT '[]',
			created_at     timestamptz NOT NULL DEFAULT now(),
			updated_at     timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure user_college_data schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, phone string) (*models.Record, error) {
	var orderRaw, notesRaw, likedRaw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT college_order, notes, liked_colleges FROM user_college_data WHERE phone = $1`,
		phone,
	).Scan(&orderRaw, &notesRaw, &likedRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find college data: %w", err)
	}

	record := models.Empty(phone)
	if err := json.Unmarshal(orderRaw, &record.CollegeOrder); err != nil {
		return nil, fmt.Errorf("decode college_order: %w", err)
	}
	if err := json.Unmarshal(notesRaw, &record.Notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	if err := json.Unmarshal(likedRaw, &record.LikedColleges); err != nil {
		return nil, fmt.Errorf("decode liked_colleges: %w", err)
	}
	return record.Normalize(), nil
}

func (s *PostgresStore) Create(ctx context.Context, record *models.Record) error {
	orderRaw, notesRaw, likedRaw, err := marshalFields(record)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_college_data (phone, college_order, notes, liked_colleges)
		 VALUES ($1, $2, $3, $4)`,
		record.Phone, orderRaw, notesRaw, likedRaw,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// Another request created the row between the caller's existence
			// check and this insert.
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create college data: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateFields(ctx context.Context, phone string, fields FieldSet) error {
	orderRaw, err := marshalOptional(fields.CollegeOrder)
	if err != nil {
		return err
	}
	notesRaw, err := marshalOptional(fields.Notes)
	if err != nil {
		return err
	}
	likedRaw, err := marshalOptional(fields.LikedColleges)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE user_college_data
		 SET college_order  = COALESCE($2, college_order),
		     notes          = COALESCE($3, notes),
		     liked_colleges = COALESCE($4, liked_colleges),
		     updated_at     = now()
		 WHERE phone = $1`,
		phone, orderRaw, notesRaw, likedRaw,
	)
	if err != nil {
		return fmt.Errorf("update college data: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update college data: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func marshalFields(record *models.Record) (order, notes, liked []byte, err error) {
	record.Normalize()
	if order, err = json.Marshal(record.CollegeOrder); err != nil {
		return nil, nil, nil, fmt.Errorf("encode college_order: %w", err)
	}
	if notes, err = json.Marshal(record.Notes); err != nil {
		return nil, nil, nil, fmt.Errorf("encode notes: %w", err)
	}
	if liked, err = json.Marshal(record.LikedColleges); err != nil {
		return nil, nil, nil, fmt.Errorf("encode liked_colleges: %w", err)
	}
	return order, notes, liked, nil
}

// marshalOptional returns nil for unset fields so COALESCE keeps the stored
// value.
func marshalOptional(v any) ([]byte, error) {
	switch field := v.(type) {
	case *[]string:
		if field == nil {
			return nil, nil
		}
		return json.Marshal(models.NormalizeOrder(*field))
	case *map[string][]string:
		if field == nil {
			return nil, nil
		}
		return json.Marshal(models.NormalizeNotes(*field))
	default:
		return nil, fmt.Errorf("unsupported field type %T", v)
	}
}
