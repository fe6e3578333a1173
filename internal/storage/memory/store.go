// Package memory keeps the pedalboard collection in process memory.
package memory

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"pedalboard/internal/models"
	"pedalboard/internal/pedals"
)

// Store holds pedalboards in insertion order. Every method is one unit of
// work under the store mutex, and callers only ever see deep copies.
type Store struct {
	mu     sync.RWMutex
	boards []models.Pedalboard
	now    func() time.Time
	logger *slog.Logger
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now as the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty store.
func New(logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		boards: []models.Pedalboard{},
		now:    time.Now,
		logger: logger.With("component", "memory-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close is a no-op; it exists so both backends share one interface.
func (s *Store) Close() error { return nil }

// List returns every pedalboard in insertion order.
func (s *Store) List(ctx context.Context) ([]models.Pedalboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Pedalboard, len(s.boards))
	for i, b := range s.boards {
		out[i] = b.Clone()
	}
	return out, nil
}

// Get returns the pedalboard with the given id.
func (s *Store) Get(ctx context.Context, id string) (models.Pedalboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.find(id)
	if idx < 0 {
		return models.Pedalboard{}, models.PedalboardNotFound(id)
	}
	return s.boards[idx].Clone(), nil
}

// Create validates the input and appends a new pedalboard.
func (s *Store) Create(ctx context.Context, in models.CreatePedalboardInput) (models.Pedalboard, error) {
	if err := in.Validate(); err != nil {
		return models.Pedalboard{}, err
	}

	seq := models.NormalizePedals(in.Pedals)
	pedals.Renumber(seq)
	pedals.AssertPositions(seq)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	board := models.Pedalboard{
		ID:          models.NewID(),
		Name:        strings.TrimSpace(in.Name),
		Description: models.TrimOrNil(in.Description),
		Pedals:      seq,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.boards = append(s.boards, board)

	s.logger.InfoContext(ctx, "pedalboard created",
		slog.String("pedalboard_id", board.ID),
		slog.Int("pedals", len(seq)),
	)
	return board.Clone(), nil
}

// Update applies the present fields of the patch.
func (s *Store) Update(ctx context.Context, id string, in models.UpdatePedalboardInput) (models.Pedalboard, error) {
	if err := in.Validate(); err != nil {
		return models.Pedalboard{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.find(id)
	if idx < 0 {
		return models.Pedalboard{}, models.PedalboardNotFound(id)
	}

	b := &s.boards[idx]
	if in.Name != nil {
		b.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		b.Description = models.TrimOrNil(in.Description)
	}
	b.UpdatedAt = s.now()

	s.logger.InfoContext(ctx, "pedalboard updated", slog.String("pedalboard_id", id))
	return b.Clone(), nil
}

// Delete removes the pedalboard and the pedals it owns.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.find(id)
	if idx < 0 {
		return models.PedalboardNotFound(id)
	}
	s.boards = slices.Delete(s.boards, idx, idx+1)

	s.logger.InfoContext(ctx, "pedalboard deleted", slog.String("pedalboard_id", id))
	return nil
}

// ToggleFavorite flips the favorite flag.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (models.Pedalboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.find(id)
	if idx < 0 {
		return models.Pedalboard{}, models.PedalboardNotFound(id)
	}

	b := &s.boards[idx]
	b.Favorite = !b.Favorite
	b.UpdatedAt = s.now()

	s.logger.InfoContext(ctx, "pedalboard favorite toggled",
		slog.String("pedalboard_id", id),
		slog.Bool("favorite", b.Favorite),
	)
	return b.Clone(), nil
}

// SetPedals replaces the pedal sequence wholesale. Positions are rewritten
// from sequence order whatever the caller supplied.
func (s *Store) SetPedals(ctx context.Context, id string, seq []models.Pedal) (models.Pedalboard, error) {
	return s.EditPedals(ctx, id, pedals.Replace(seq))
}

// EditPedals runs edit against a copy of the board's pedals and commits the
// result under the store lock. An unknown board is reported before edit runs.
func (s *Store) EditPedals(ctx context.Context, id string, edit pedals.Edit) (models.Pedalboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.find(id)
	if idx < 0 {
		return models.Pedalboard{}, models.PedalboardNotFound(id)
	}

	b := &s.boards[idx]
	seq, err := edit(models.ClonePedals(b.Pedals))
	if err != nil {
		return models.Pedalboard{}, err
	}
	if err := models.ValidatePedals(seq); err != nil {
		return models.Pedalboard{}, err
	}

	normalized := models.NormalizePedals(seq)
	pedals.Renumber(normalized)
	pedals.AssertPositions(normalized)

	b.Pedals = normalized
	b.UpdatedAt = s.now()

	s.logger.InfoContext(ctx, "pedalboard pedals replaced",
		slog.String("pedalboard_id", id),
		slog.Int("pedals", len(normalized)),
	)
	return b.Clone(), nil
}

func (s *Store) find(id string) int {
	return slices.IndexFunc(s.boards, func(b models.Pedalboard) bool { return b.ID == id })
}
