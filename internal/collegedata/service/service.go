// Package service owns the create-vs-update branching and nested-field merge
// logic for per-user college documents.
//
// Every write is a read-modify-write against a single-document store with no
// optimistic concurrency check: two racing writes for the same phone number
// resolve as last-write-wins, and a concurrent AppendFact can lose a fact.
// That is a deliberate, documented limitation; "at most one writer per phone
// number at a time" is the caller's responsibility.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"collegedesk/internal/audit"
	"collegedesk/internal/collegedata/metrics"
	"collegedesk/internal/collegedata/models"
	"collegedesk/internal/collegedata/store"
	dErrors "collegedesk/pkg/domain-errors"
	"collegedesk/pkg/platform/sentinel"
)

// DocumentStore is the slice of the store contract the service needs.
type DocumentStore interface {
	Find(ctx context.Context, phone string) (*models.Record, error)
	Create(ctx context.Context, record *models.Record) error
	UpdateFields(ctx context.Context, phone string, fields store.FieldSet) error
}

// Service mediates all reads and writes of user college documents.
type Service struct {
	store   DocumentStore
	logger  *slog.Logger
	audit   *audit.Publisher
	metrics *metrics.Metrics
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithAudit attaches an audit publisher; writes emit events through it.
func WithAudit(publisher *audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

// WithMetrics attaches the module metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the college-data service.
func New(documents DocumentStore, logger *slog.Logger, opts ...Option) (*Service, error) {
	if documents == nil {
		return nil, fmt.Errorf("document store is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	s := &Service{store: documents, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Fetch returns the stored document for a phone number. A missing document is
// indistinguishable from an empty one: both come back as the default empty
// shape. Store failures return a coded unavailable error; the transport layer
// decides how to surface it (the GET path reports it inside a 200 body to
// preserve the original observable contract).
func (s *Service) Fetch(ctx context.Context, phone string) (*models.Record, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Phone number is required")
	}

	record, err := s.findTimed(ctx, phone)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.RecordFetch("empty")
			return models.Empty(phone), nil
		}
		s.metrics.RecordFetch("error")
		s.logger.ErrorContext(ctx, "failed to load college data",
			"phone", phone,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load college data")
	}

	s.metrics.RecordFetch("ok")
	return record, nil
}

// Save upserts the ranked order, notes and liked colleges for a phone number.
// Existing documents get a field-level merge (fields not in this call stay
// untouched); absent documents are created with exactly the normalized
// fields. Last write wins when two saves race.
func (s *Service) Save(ctx context.Context, phone string, order []string, notes map[string][]string, liked []string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return dErrors.New(dErrors.CodeValidation, "Phone number is required")
	}

	order = models.NormalizeOrder(order)
	notes = models.NormalizeNotes(notes)
	liked = models.NormalizeOrder(liked)

	err := s.upsert(ctx, phone,
		&models.Record{Phone: phone, CollegeOrder: order, Notes: notes, LikedColleges: liked},
		store.FieldSet{CollegeOrder: &order, Notes: &notes, LikedColleges: &liked},
	)
	if err != nil {
		s.metrics.RecordWrite("save", "error")
		s.logger.ErrorContext(ctx, "failed to save college data",
			"phone", phone,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to save college data")
	}

	s.metrics.RecordWrite("save", "ok")
	s.emitAudit(ctx, audit.Event{Phone: phone, Action: audit.ActionSave})
	return nil
}

// UpdateOrder replaces only the ranking. An absent document is created with
// the given order and empty notes.
func (s *Service) UpdateOrder(ctx context.Context, phone string, order []string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return dErrors.New(dErrors.CodeValidation, "Phone number is required")
	}
	if order == nil {
		return dErrors.New(dErrors.CodeValidation, "College order must be an array")
	}

	err := s.upsert(ctx, phone,
		&models.Record{Phone: phone, CollegeOrder: order, Notes: map[string][]string{}, LikedColleges: []string{}},
		store.FieldSet{CollegeOrder: &order},
	)
	if err != nil {
		s.metrics.RecordWrite("update_order", "error")
		s.logger.ErrorContext(ctx, "failed to update college order",
			"phone", phone,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to update college order")
	}

	s.metrics.RecordWrite("update_order", "ok")
	s.emitAudit(ctx, audit.Event{Phone: phone, Action: audit.ActionUpdateOrder})
	return nil
}

// AppendFact appends one free-text fact to a college's note list, creating
// the list (and the document) on first use.
//
// This is a read-append-write, not a store-level atomic append: of two
// concurrent appends for the same phone, one fact can be lost.
func (s *Service) AppendFact(ctx context.Context, phone, collegeID, fact string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return dErrors.New(dErrors.CodeValidation, "Phone number is required")
	}
	if strings.TrimSpace(collegeID) == "" {
		return dErrors.New(dErrors.CodeValidation, "College ID is required")
	}
	if strings.TrimSpace(fact) == "" {
		return dErrors.New(dErrors.CodeValidation, "Fact is required")
	}

	record, err := s.findTimed(ctx, phone)
	exists := true
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.RecordWrite("append_fact", "error")
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load college data")
		}
		exists = false
		record = models.Empty(phone)
	}

	notes := models.NormalizeNotes(record.Notes)
	notes[collegeID] = append(notes[collegeID], fact)

	if exists {
		err = s.updateTimed(ctx, phone, store.FieldSet{Notes: &notes})
	} else {
		err = s.createTimed(ctx, &models.Record{
			Phone:         phone,
			CollegeOrder:  []string{},
			Notes:         notes,
			LikedColleges: []string{},
		})
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost the create race; write the notes over the fresh document.
			// The concurrent creator's facts can be overwritten here, which
			// is the documented lost-update behavior.
			err = s.updateTimed(ctx, phone, store.FieldSet{Notes: &notes})
		}
	}
	if err != nil {
		s.metrics.RecordWrite("append_fact", "error")
		s.logger.ErrorContext(ctx, "failed to append college fact",
			"phone", phone,
			"college_id", collegeID,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to append college fact")
	}

	s.metrics.RecordWrite("append_fact", "ok")
	s.emitAudit(ctx, audit.Event{Phone: phone, Action: audit.ActionAppendFact, CollegeID: collegeID})
	return nil
}

// upsert runs the shared read-then-write sequence: update the existing
// document's fields, or create a fresh one when none exists. When two
// requests race past the existence check and the create loses to a
// concurrent insert, the write falls back to an update, keeping
// last-write-wins intact.
func (s *Service) upsert(ctx context.Context, phone string, created *models.Record, fields store.FieldSet) error {
	_, err := s.findTimed(ctx, phone)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		err = s.createTimed(ctx, created)
		if errors.Is(err, sentinel.ErrConflict) {
			return s.updateTimed(ctx, phone, fields)
		}
		return err
	}
	return s.updateTimed(ctx, phone, fields)
}

func (s *Service) findTimed(ctx context.Context, phone string) (*models.Record, error) {
	start := time.Now()
	record, err := s.store.Find(ctx, phone)
	s.metrics.ObserveStoreOp("find", time.Since(start))
	return record, err
}

func (s *Service) createTimed(ctx context.Context, record *models.Record) error {
	start := time.Now()
	err := s.store.Create(ctx, record)
	s.metrics.ObserveStoreOp("create", time.Since(start))
	return err
}

func (s *Service) updateTimed(ctx context.Context, phone string, fields store.FieldSet) error {
	start := time.Now()
	err := s.store.UpdateFields(ctx, phone, fields)
	s.metrics.ObserveStoreOp("update_fields", time.Since(start))
	return err
}

// emitAudit is fail-open: a broken audit sink is logged, never surfaced.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"phone", event.Phone,
			"action", event.Action,
			"error", err,
		)
	}
}
