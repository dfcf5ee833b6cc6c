package memory

import (
	"context"
	"sort"
	"time"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

func (r *OutboxRepository) Create(_ context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return r.store.write(tx, func(s *state) error {
		s.outbox = append(s.outbox, *event)
		return nil
	})
}

// GetUnpublished returns the oldest unpublished events.
func (r *OutboxRepository) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var events []*domain.OutboxEvent
	_ = r.store.read(func(s *state) error {
		for i := range s.outbox {
			if !s.outbox[i].Published {
				e := s.outbox[i]
				events = append(events, &e)
			}
		}
		return nil
	})
	return page(events, limit, 0), nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return r.store.autocommit(ctx, func(s *state) error {
		for i := range s.outbox {
			if s.outbox[i].ID == id {
				s.outbox[i].Published = true
				s.outbox[i].PublishedAt = &publishedAt
				return nil
			}
		}
		return nil
	})
}

func (r *OutboxRepository) GetByAggregate(_ context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	var events []*domain.OutboxEvent
	_ = r.store.read(func(s *state) error {
		for i := range s.outbox {
			if s.outbox[i].AggregateType == aggregateType && s.outbox[i].AggregateID == aggregateID {
				e := s.outbox[i]
				events = append(events, &e)
			}
		}
		return nil
	})
	sort.SliceStable(events, func(i, j int) bool { return events[i].CreatedAt.After(events[j].CreatedAt) })
	return page(events, limit, offset), nil
}

func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return r.store.autocommit(ctx, func(s *state) error {
		kept := s.outbox[:0]
		for _, e := range s.outbox {
			if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
				continue
			}
			kept = append(kept, e)
		}
		s.outbox = kept
		return nil
	})
}

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	store *Store
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(store *Store) *AuditRepository {
	return &AuditRepository{store: store}
}

func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	return r.store.autocommit(ctx, func(s *state) error {
		s.audit = append(s.audit, *log)
		return nil
	})
}

func (r *AuditRepository) CreateTx(_ context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return r.store.write(tx, func(s *state) error {
		s.audit = append(s.audit, *log)
		return nil
	})
}

// List returns audit rows, newest first.
func (r *AuditRepository) List(_ context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	_ = r.store.read(func(s *state) error {
		for i := len(s.audit) - 1; i >= 0; i-- {
			l := s.audit[i]
			if filter.UserID != "" && l.UserID != filter.UserID {
				continue
			}
			if filter.Action != "" && l.Action != filter.Action {
				continue
			}
			if filter.ResourceType != "" && l.ResourceType != filter.ResourceType {
				continue
			}
			if filter.ResourceID != "" && l.ResourceID != filter.ResourceID {
				continue
			}
			if !inPeriod(l.CreatedAt, filter.StartDate, filter.EndDate) {
				continue
			}
			logs = append(logs, &l)
		}
		return nil
	})
	return page(logs, filter.Limit, filter.Offset), nil
}
