// Package storetest holds the behavioural suite every pedalboard store
// backend must pass.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pedalboard/internal/models"
	"pedalboard/internal/pedals"
)

// Store is the surface under test.
type Store interface {
	List(ctx context.Context) ([]models.Pedalboard, error)
	Get(ctx context.Context, id string) (models.Pedalboard, error)
	Create(ctx context.Context, in models.CreatePedalboardInput) (models.Pedalboard, error)
	Update(ctx context.Context, id string, in models.UpdatePedalboardInput) (models.Pedalboard, error)
	Delete(ctx context.Context, id string) error
	ToggleFavorite(ctx context.Context, id string) (models.Pedalboard, error)
	SetPedals(ctx context.Context, id string, seq []models.Pedal) (models.Pedalboard, error)
	EditPedals(ctx context.Context, id string, edit pedals.Edit) (models.Pedalboard, error)
}

// Clock hands out strictly increasing timestamps, one second apart.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at a fixed UTC instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)}
}

// Now returns the current instant and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(time.Second)
	return t
}

// Factory builds an empty store that takes its timestamps from clock.
type Factory func(t *testing.T, clock func() time.Time) Store

func ptr(s string) *string { return &s }

func pedal(name, brand string, pos int) models.Pedal {
	return models.Pedal{Name: name, Brand: brand, Type: models.PedalTypeOverdrive, Position: pos}
}

func pedalIDs(seq []models.Pedal) []string {
	out := make([]string, len(seq))
	for i, p := range seq {
		out[i] = p.ID
	}
	return out
}

func positions(seq []models.Pedal) []int {
	out := make([]int, len(seq))
	for i, p := range seq {
		out[i] = p.Position
	}
	return out
}

// Run executes the suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateDefaults", func(t *testing.T) {
		s := newStore(t, NewClock().Now)
		ctx := context.Background()

		b, err := s.Create(ctx, models.CreatePedalboardInput{Name: "  Blues Rig  ", Description: ptr("   ")})
		require.NoError(t, err)

		assert.NotEmpty(t, b.ID)
		assert.Equal(t, "Blues Rig", b.Name)
		assert.Nil(t, b.Description)
		assert.Empty(t, b.Pedals)
		assert.NotNil(t, b.Pedals)
		assert.False(t, b.Favorite)
		assert.True(t, b.CreatedAt.Equal(b.UpdatedAt))
	})

	t.Run("CreateBlankNameFails", func(t *testing.T) {
		s := newStore(t, NewClock().Now)
		ctx := context.Background()

		_, err := s.Create(ctx, models.CreatePedalboardInput{Name: "  "})
		require.ErrorIs(t, err, models.ErrValidation)

		all, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("CreateRenumbersSuppliedPedals", func(t *testing.T) {
		s := newStore(t, NewClock().Now)
		ctx := context.Background()

		b, err := s.Create(ctx, models.CreatePedalboardInput{
			Name:   "Rock",
			Pedals: []models.Pedal{pedal("Rat", "ProCo", 7), pedal("CE-2", "Boss", 3)},
		})
		require.NoError(t, err)
		require.Len(t, b.Pedals, 2)
		assert.Equal(t, []int{1, 2}, positions(b.Pedals))
		assert.Equal(t, "Rat", b.Pedals[0].Name)
		assert.NotEmpty(t, b.Pedals[0].ID)
	})

	t.Run("ListKeepsInsertionOrder", func(t *testing.T) {
		s := newStore(t, NewClock().Now)
		ctx := context.Background()

		for _, name := range []string{"Zeta", "Alpha", "Mid"} {
			_, err := s.Create(ctx, models.CreatePedalboardInput{Name: name})
			require.NoError(t, err)
		}

		all, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "Zeta", all[0].Name)
		assert.Equal(t, "Alpha", all[1].Name)
		assert.Equal(t, "Mid", all[2].Name)
	})

	t.Run("GetUnknown", func(t *testing.T) {
		s := newStore(t, NewClock().Now)

		_, err := s.Get(context.Background(), "missing")
		require.ErrorIs(t, err, models.ErrNotFound)
		var nf *models.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "missing", nf.ID)
	})

	t.Run("UpdateAppliesPresentFields", func(t *testing.T) {
		s := newStore(t, NewClock().Now)
		ctx := context.Background()

		b, err := s.Create(ctx, models.CreatePedalboardInput{Name: "Old", Description: ptr("keep me")})
		require.NoError(t, err)

		u, err := s.Update(ctx, b.ID, models.UpdatePedalboardInput{Name: ptr(" New ")})
		require.NoError(t, err)
		assert.Equal(t, "New", u.Name)
		require.NotNil(t, u.Description)
		assert.Equal(t, "keep me", *u.Description)
		assert.True(t, u.UpdatedAt.After(b.UpdatedAt))
		assert.True(t, u.CreatedAt.Equal(b.CreatedAt))

		u, err = s.Update(ctx, b.ID, models.UpdatePedalboardInput{Description: ptr("")})
		require.NoError(t, err)
		assert.Nil(t, u.Description)
		assert.Equal(t, "New", u.Name)
	})

	t.Run("UpdateErrors", func(t *testing.T) {
		s := newStore(t, NewClock().Now)
		ctx := context.Background()

		b, err := s.Create(ctx, models.CreatePedalboardInput{Name: "Board"})
		require.NoError(t, err)

		_, err = s.Update(ctx, b.ID, models.UpdatePedalboardInput{Name: ptr(" ")})
		require.ErrorIs(t, err, models.ErrValidation)

		got, err := s.Get(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "Board", got.Name)

		_, err = s.Update(ctx, "missing", models.UpdatePedalboardInput{Name: ptr("x")})
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t, NewClock().Now)
		ctx := context.Background()

		a, err := s.Create(ctx, models.CreatePedalboardInput{Name: "A", Pedals: []models.Pedal{pedal("TS9", "Ibanez", 1)}})
		require.NoError(t, err)
		b, err := s.Create(ctx, models.CreatePedalboardInput{Name: "B"})
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, a.ID))
		_, err = s.Get(ctx, a.ID)
		require.ErrorIs(t, err, models.ErrNotFound)

		all, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, b.ID, all[0].ID)

		require.ErrorIs(t, s.Delete(ctx, a.ID), models.ErrNotFound)
	})

	t.Run("ToggleFavoriteTwice", func(t *testing.T) {
		s := newStore(t, NewClock().Now)
		ctx := context.Background()

		b, err := s.Create(ctx, models.CreatePedalboardInput{Name: "Fav"})
		require.NoError(t, err)

		once, err := s.ToggleFavorite(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, once.Favorite)
		assert.True(t, once.UpdatedAt.After(b.UpdatedAt))

		twice, err := s.ToggleFavorite(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.Favorite, twice.Favorite)
		assert.True(t, twice.UpdatedAt.After(once.UpdatedAt))

		_, err = s.ToggleFavorite(ctx, "missing")
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("SetPedalsRenumbers", func(t *testing.T) {
		s := newStore(t, NewClock().Now)
		ctx := context.Background()

		b, err := s.Create(ctx, models.CreatePedalboardInput{Name: "Chain"})
		require.NoError(t, err)

		notes := "keep it low"
		in := []models.Pedal{pedal("A", "X", 5), pedal("B", "Y", 9), pedal("C", "Z", 2)}
		in[1].Notes = &notes
		in[1].Settings = models.Settings{
			Knobs:    []models.Knob{{ID: "k1", Name: "Drive", Value: 7, Min: 0, Max: 10}},
			Switches: []models.Switch{{ID: "s1", Name: "Mod", Options: []string{"On", "Off"}, Value: "Off"}},
		}

		u, err := s.SetPedals(ctx, b.ID, in)
		require.NoError(t, err)
		require.Len(t, u.Pedals, 3)
		assert.Equal(t, []int{1, 2, 3}, positions(u.Pedals))
		assert.Equal(t, "A", u.Pedals[0].Name)
		assert.Equal(t, "B", u.Pedals[1].Name)
		assert.Equal(t, "C", u.Pedals[2].Name)
		require.NotNil(t, u.Pedals[1].Notes)
		assert.Equal(t, notes, *u.Pedals[1].Notes)
		assert.Equal(t, in[1].Settings, u.Pedals[1].Settings)
		assert.True(t, u.UpdatedAt.After(b.UpdatedAt))

		got, err := s.Get(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Pedals, got.Pedals)
		assert.Equal(t, 5, in[0].Position, "input must not be modified")
	})

	t.Run("SetPedalsErrors", func(t *testing.T) {
		s := newStore(t, NewClock().Now)
		ctx := context.Background()

		b, err := s.Create(ctx, models.CreatePedalboardInput{Name: "Chain", Pedals: []models.Pedal{pedal("A", "X", 1)}})
		require.NoError(t, err)

		_, err = s.SetPedals(ctx, b.ID, []models.Pedal{pedal(" ", "X", 1)})
		require.ErrorIs(t, err, models.ErrValidation)

		got, err := s.Get(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, pedalIDs(b.Pedals), pedalIDs(got.Pedals))

		_, err = s.SetPedals(ctx, "missing", nil)
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("SetPedalsUnknownBoardBeforeValidation", func(t *testing.T) {
		s := newStore(t, NewClock().Now)

		_, err := s.SetPedals(context.Background(), "missing", []models.Pedal{pedal(" ", "", 1)})
		require.ErrorIs(t, err, models.ErrNotFound)
		assert.NotErrorIs(t, err, models.ErrValidation)
	})

	t.Run("EditPedalsUnknownBoardSkipsEdit", func(t *testing.T) {
		s := newStore(t, NewClock().Now)

		called := false
		_, err := s.EditPedals(context.Background(), "missing", func(seq []models.Pedal) ([]models.Pedal, error) {
			called = true
			return seq, nil
		})
		require.ErrorIs(t, err, models.ErrNotFound)
		assert.False(t, called)
	})

	t.Run("EditPedalsErrorKeepsSequence", func(t *testing.T) {
		s := newStore(t, NewClock().Now)
		ctx := context.Background()

		b, err := s.Create(ctx, models.CreatePedalboardInput{Name: "Chain", Pedals: []models.Pedal{pedal("A", "X", 1), pedal("B", "X", 2)}})
		require.NoError(t, err)

		_, err = s.EditPedals(ctx, b.ID, func(seq []models.Pedal) ([]models.Pedal, error) {
			return nil, models.PedalNotFound("zz")
		})
		require.ErrorIs(t, err, models.ErrNotFound)

		_, err = s.EditPedals(ctx, b.ID, func(seq []models.Pedal) ([]models.Pedal, error) {
			seq[0].Name = ""
			return seq, nil
		})
		require.ErrorIs(t, err, models.ErrValidation)

		got, err := s.Get(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.Pedals, got.Pedals)
		assert.True(t, got.UpdatedAt.Equal(b.UpdatedAt))
	})

	t.Run("EditPedalsSeesCurrentSequence", func(t *testing.T) {
		s := newStore(t, NewClock().Now)
		ctx := context.Background()

		b, err := s.Create(ctx, models.CreatePedalboardInput{Name: "Chain", Pedals: []models.Pedal{pedal("A", "X", 1), pedal("B", "X", 2)}})
		require.NoError(t, err)

		u, err := s.EditPedals(ctx, b.ID, func(seq []models.Pedal) ([]models.Pedal, error) {
			assert.Equal(t, pedalIDs(b.Pedals), pedalIDs(seq))
			return pedals.Move(seq, seq[1].ID, pedals.Up), nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{b.Pedals[1].ID, b.Pedals[0].ID}, pedalIDs(u.Pedals))
		assert.Equal(t, []int{1, 2}, positions(u.Pedals))
		assert.True(t, u.UpdatedAt.After(b.UpdatedAt))
	})

	t.Run("ConcurrentAddsAreAllKept", func(t *testing.T) {
		s := newStore(t, NewClock().Now)
		ctx := context.Background()

		b, err := s.Create(ctx, models.CreatePedalboardInput{Name: "Chain"})
		require.NoError(t, err)

		const workers = 40
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.EditPedals(ctx, b.ID, func(seq []models.Pedal) ([]models.Pedal, error) {
					next, _, err := pedals.Add(seq, models.NewPedalInput{Name: "Fuzz", Brand: "Z"})
					return next, err
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := s.Get(ctx, b.ID)
		require.NoError(t, err)
		require.Len(t, got.Pedals, workers)
		require.NoError(t, pedals.CheckPositions(got.Pedals))
	})

	t.Run("ReturnedValuesAreCopies", func(t *testing.T) {
		s := newStore(t, NewClock().Now)
		ctx := context.Background()

		b, err := s.Create(ctx, models.CreatePedalboardInput{Name: "Mine", Pedals: []models.Pedal{pedal("A", "X", 1)}})
		require.NoError(t, err)

		b.Name = "mutated"
		b.Pedals[0].Name = "mutated"

		got, err := s.Get(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "Mine", got.Name)
		assert.Equal(t, "A", got.Pedals[0].Name)
	})

	t.Run("ManagePedalsScenario", func(t *testing.T) {
		s := newStore(t, NewClock().Now)
		ctx := context.Background()

		b, err := s.Create(ctx, models.CreatePedalboardInput{
			Name:   "P",
			Pedals: []models.Pedal{pedal("A", "X", 1), pedal("B", "X", 2), pedal("C", "X", 3)},
		})
		require.NoError(t, err)
		a, bb, c := b.Pedals[0].ID, b.Pedals[1].ID, b.Pedals[2].ID

		local := pedals.Move(b.Pedals, bb, pedals.Up)
		local = pedals.Remove(local, a)
		local, added, err := pedals.Add(local, models.NewPedalInput{Name: "D", Brand: "Y", Type: "Fuzz"})
		require.NoError(t, err)

		u, err := s.SetPedals(ctx, b.ID, local)
		require.NoError(t, err)
		assert.Equal(t, []string{bb, c, added.ID}, pedalIDs(u.Pedals))
		assert.Equal(t, []int{1, 2, 3}, positions(u.Pedals))
		assert.Equal(t, models.PedalTypeFuzz, u.Pedals[2].Type)
	})

	t.Run("PedalIDsMayRepeatAcrossBoards", func(t *testing.T) {
		s := newStore(t, NewClock().Now)
		ctx := context.Background()

		shared := pedal("TS9", "Ibanez", 1)
		shared.ID = "p1"

		a, err := s.Create(ctx, models.CreatePedalboardInput{Name: "A", Pedals: []models.Pedal{shared}})
		require.NoError(t, err)
		b, err := s.Create(ctx, models.CreatePedalboardInput{Name: "B", Pedals: []models.Pedal{shared}})
		require.NoError(t, err)

		_, err = s.SetPedals(ctx, a.ID, nil)
		require.NoError(t, err)

		got, err := s.Get(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"p1"}, pedalIDs(got.Pedals))
	})
}
