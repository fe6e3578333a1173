// Package pedals edits the ordered pedal sequence of a single pedalboard.
//
// Every function returns a fresh slice and leaves its input untouched, so the
// stores can run them inside EditPedals as one unit of work per pedalboard.
// Positions always come back as exactly 1..n.
package pedals

import (
	"fmt"
	"strings"

	"pedalboard/internal/models"
)

// Direction is the way a pedal moves in the signal chain.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Edit turns the current pedal sequence of a board into its next one.
// Stores call it while holding the board, so the read and the write that
// follows cannot interleave with another edit.
type Edit func(seq []models.Pedal) ([]models.Pedal, error)

// Replace is the Edit that discards the current sequence for next.
func Replace(next []models.Pedal) Edit {
	return func([]models.Pedal) ([]models.Pedal, error) { return next, nil }
}

// ParseDirection accepts "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	}
	return "", models.NewValidationError("direction", "must be up or down")
}

// Add appends a new pedal with empty settings at the end of the sequence.
func Add(seq []models.Pedal, in models.NewPedalInput) ([]models.Pedal, models.Pedal, error) {
	if err := in.Validate(); err != nil {
		return nil, models.Pedal{}, err
	}
	typ, err := models.ParsePedalType(in.Type)
	if err != nil {
		return nil, models.Pedal{}, err
	}

	pedal := models.Pedal{
		ID:       models.NewID(),
		Name:     strings.TrimSpace(in.Name),
		Brand:    strings.TrimSpace(in.Brand),
		Type:     typ,
		Position: len(seq) + 1,
		Settings: models.Settings{Knobs: []models.Knob{}, Switches: []models.Switch{}},
		Notes:    models.TrimOrNil(in.Notes),
	}

	out := append(models.ClonePedals(seq), pedal)
	AssertPositions(out)
	return out, pedal.Clone(), nil
}

// Remove drops the pedal with the given id and renumbers the rest.
// An unknown id leaves the sequence as it was.
func Remove(seq []models.Pedal, pedalID string) []models.Pedal {
	out := make([]models.Pedal, 0, len(seq))
	for _, p := range seq {
		if p.ID == pedalID {
			continue
		}
		out = append(out, p.Clone())
	}
	Renumber(out)
	AssertPositions(out)
	return out
}

// Move swaps the pedal with its neighbour in the given direction.
// Moving the first pedal up, the last pedal down, or an unknown id is a no-op.
func Move(seq []models.Pedal, pedalID string, dir Direction) []models.Pedal {
	out := models.ClonePedals(seq)
	idx := Index(out, pedalID)
	if idx >= 0 {
		switch {
		case dir == Up && idx > 0:
			out[idx-1], out[idx] = out[idx], out[idx-1]
		case dir == Down && idx < len(out)-1:
			out[idx], out[idx+1] = out[idx+1], out[idx]
		}
	}
	Renumber(out)
	AssertPositions(out)
	return out
}

// Renumber sets every position to its 1-based index, in place.
func Renumber(seq []models.Pedal) {
	for i := range seq {
		seq[i].Position = i + 1
	}
}

// Index returns the index of the pedal with the given id, or -1.
func Index(seq []models.Pedal, pedalID string) int {
	for i, p := range seq {
		if p.ID == pedalID {
			return i
		}
	}
	return -1
}

// AssertPositions panics unless positions are exactly 1..n in order.
// A violation means the sequence-editing code is broken.
func AssertPositions(seq []models.Pedal) {
	if err := CheckPositions(seq); err != nil {
		panic(err)
	}
}

// CheckPositions reports whether the set of positions is exactly {1..n}
// with each pedal at index position-1.
func CheckPositions(seq []models.Pedal) error {
	for i, p := range seq {
		if p.Position != i+1 {
			return fmt.Errorf("pedal %s at index %d has position %d", p.ID, i, p.Position)
		}
	}
	return nil
}
