package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/yndnr/notechain-go/internal/core/domain"
	"github.com/yndnr/notechain-go/internal/telemetry/metric"
)

// NoteRepository defines the storage interface for note operations.
// *notetable.Table satisfies it.
type NoteRepository interface {
	// AllocateID reserves the next unused note id.
	AllocateID() uint64

	// Insert stores a note under its id.
	Insert(ctx context.Context, note *domain.Note)

	// Get returns a copy of the note, without ownership checks.
	Get(ctx context.Context, id uint64) (*domain.Note, bool)

	// ListByOwner returns copies of every note created by owner.
	ListByOwner(ctx context.Context, owner domain.Owner) []*domain.Note

	// Update changes title and content if owner created the note.
	Update(ctx context.Context, id uint64, title, content string, owner domain.Owner) error

	// Remove deletes the note if owner created it.
	Remove(ctx context.Context, id uint64, owner domain.Owner) error
}

// Clock returns the current time in nanoseconds since the Unix epoch.
type Clock func() uint64

// MonotonicClock returns a Clock that never goes backwards, even if the
// wall clock is stepped back.
func MonotonicClock() Clock {
	var last atomic.Uint64
	return func() uint64 {
		now := uint64(time.Now().UnixNano())
		for {
			prev := last.Load()
			if now <= prev {
				return prev
			}
			if last.CompareAndSwap(prev, now) {
				return now
			}
		}
	}
}

// NoteService handles the note operations exposed to callers.
type NoteService struct {
	repo    NoteRepository
	clock   Clock
	metrics *metric.Registry
}

// NoteServiceOption configures a NoteService.
type NoteServiceOption func(*NoteService)

// WithClock sets the clock used for created_at.
func WithClock(clock Clock) NoteServiceOption {
	return func(s *NoteService) {
		s.clock = clock
	}
}

// WithMetrics counts operations in registry.
func WithMetrics(registry *metric.Registry) NoteServiceOption {
	return func(s *NoteService) {
		s.metrics = registry
	}
}

// NewNoteService creates a new NoteService.
func NewNoteService(repo NoteRepository, opts ...NoteServiceOption) *NoteService {
	s := &NoteService{
		repo:  repo,
		clock: MonotonicClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the content and stores a new note owned by owner.
// Rejected content consumes no id.
func (s *NoteService) Create(ctx context.Context, owner domain.Owner, title, content string) (id uint64, err error) {
	defer func() { s.metrics.ObserveNoteOp("create", err) }()

	if err := domain.ValidateContent(title, content); err != nil {
		return 0, err
	}

	id = s.repo.AllocateID()
	s.repo.Insert(ctx, &domain.Note{
		ID:        id,
		Owner:     owner,
		Title:     title,
		Content:   content,
		CreatedAt: s.clock(),
	})
	return id, nil
}

// Update validates the content and replaces title and content of a note
// created by owner.
func (s *NoteService) Update(ctx context.Context, id uint64, owner domain.Owner, title, content string) (err error) {
	defer func() { s.metrics.ObserveNoteOp("update", err) }()

	if err := domain.ValidateContent(title, content); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, title, content, owner)
}

// Delete removes a note created by owner.
func (s *NoteService) Delete(ctx context.Context, id uint64, owner domain.Owner) (err error) {
	defer func() { s.metrics.ObserveNoteOp("delete", err) }()

	return s.repo.Remove(ctx, id, owner)
}

// List returns every note created by owner, in no particular order.
func (s *NoteService) List(ctx context.Context, owner domain.Owner) []*domain.Note {
	s.metrics.ObserveNoteOp("list", nil)
	return s.repo.ListByOwner(ctx, owner)
}

// Fetch returns any note by id, regardless of owner.
func (s *NoteService) Fetch(ctx context.Context, id uint64) (*domain.Note, bool) {
	s.metrics.ObserveNoteOp("fetch", nil)
	return s.repo.Get(ctx, id)
}
