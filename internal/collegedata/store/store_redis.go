package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"collegedesk/internal/collegedata/models"
	"collegedesk/pkg/platform/sentinel"
)

// Redis key prefix for college-data documents.
const recordKeyPrefix = "college:data:"

// RedisStore persists each document as a single JSON value. Redis has no
// partial field update for opaque values, so UpdateFields is itself a
// read-merge-write; that matches the last-write-wins semantics the service
// already accepts on every backend.
type RedisStore struct {
	client *goredis.Client
}

// NewRedis constructs a Redis-backed document store. The client lifecycle is
// managed externally.
func NewRedis(client *goredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

type redisDocument struct {
	CollegeOrder  []string            `json:"collegeOrder"`
	Notes         map[string][]string `json:"notes"`
	LikedColleges []string            `json:"likedColleges"`
}

func (s *RedisStore) Find(ctx context.Context, phone string) (*models.Record, error) {
	raw, err := s.client.Get(ctx, recordKeyPrefix+phone).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find college data: %w", err)
	}

	var doc redisDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode college data: %w", err)
	}
	record := &models.Record{
		Phone:         phone,
		CollegeOrder:  doc.CollegeOrder,
		Notes:         doc.Notes,
		LikedColleges: doc.LikedColleges,
	}
	return record.Normalize(), nil
}

func (s *RedisStore) Create(ctx context.Context, record *models.Record) error {
	return s.write(ctx, record)
}

func (s *RedisStore) UpdateFields(ctx context.Context, phone string, fields FieldSet) error {
	record, err := s.Find(ctx, phone)
	if err != nil {
		return err
	}
	applyFields(record, fields)
	return s.write(ctx, record)
}

func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) write(ctx context.Context, record *models.Record) error {
	record.Normalize()
	raw, err := json.Marshal(redisDocument{
		CollegeOrder:  record.CollegeOrder,
		Notes:         record.Notes,
		LikedColleges: record.LikedColleges,
	})
	if err != nil {
		return fmt.Errorf("encode college data: %w", err)
	}
	// No TTL: records persist until externally removed.
	if err := s.client.Set(ctx, recordKeyPrefix+record.Phone, raw, 0).Err(); err != nil {
		return fmt.Errorf("write college data: %w", err)
	}
	return nil
}
