// Package seed fills an empty store with the sample pedalboards shipped in
// catalogue.yaml.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"pedalboard/internal/models"
)

//go:embed catalogue.yaml
var catalogue []byte

type catalogueFile struct {
	Pedalboards []boardEntry          `yaml:"pedalboards"`
	Pedals      map[string]pedalEntry `yaml:"pedals"`
}

type boardEntry struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Favorite    bool     `yaml:"favorite"`
	Pedals      []string `yaml:"pedals"`
}

type pedalEntry struct {
	Name     string        `yaml:"name"`
	Brand    string        `yaml:"brand"`
	Type     string        `yaml:"type"`
	Notes    string        `yaml:"notes"`
	Knobs    []knobEntry   `yaml:"knobs"`
	Switches []switchEntry `yaml:"switches"`
}

type knobEntry struct {
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
}

type switchEntry struct {
	Name    string   `yaml:"name"`
	Options []string `yaml:"options"`
	Value   string   `yaml:"value"`
}

// Board is a parsed catalogue entry ready to be created in a store.
type Board struct {
	Input    models.CreatePedalboardInput
	Favorite bool
}

type store interface {
	Create(ctx context.Context, in models.CreatePedalboardInput) (models.Pedalboard, error)
	ToggleFavorite(ctx context.Context, id string) (models.Pedalboard, error)
}

// Parse decodes a catalogue. Pedals referenced by several boards are copied
// per board; ids are left empty so the store assigns them.
func Parse(data []byte) ([]Board, error) {
	var file catalogueFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}

	boards := make([]Board, 0, len(file.Pedalboards))
	for _, entry := range file.Pedalboards {
		seq := make([]models.Pedal, 0, len(entry.Pedals))
		for _, ref := range entry.Pedals {
			p, ok := file.Pedals[ref]
			if !ok {
				return nil, fmt.Errorf("pedalboard %q: unknown pedal %q", entry.Name, ref)
			}
			seq = append(seq, p.toModel())
		}

		in := models.CreatePedalboardInput{Name: entry.Name, Pedals: seq}
		if entry.Description != "" {
			desc := entry.Description
			in.Description = &desc
		}
		boards = append(boards, Board{Input: in, Favorite: entry.Favorite})
	}
	return boards, nil
}

func (p pedalEntry) toModel() models.Pedal {
	out := models.Pedal{
		Name:  p.Name,
		Brand: p.Brand,
		Type:  models.PedalType(p.Type),
		Settings: models.Settings{
			Knobs:    make([]models.Knob, 0, len(p.Knobs)),
			Switches: make([]models.Switch, 0, len(p.Switches)),
		},
	}
	if p.Notes != "" {
		notes := p.Notes
		out.Notes = &notes
	}
	for _, k := range p.Knobs {
		out.Settings.Knobs = append(out.Settings.Knobs, models.Knob{Name: k.Name, Value: k.Value, Min: k.Min, Max: k.Max})
	}
	for _, sw := range p.Switches {
		out.Settings.Switches = append(out.Settings.Switches, models.Switch{Name: sw.Name, Options: sw.Options, Value: sw.Value})
	}
	return out
}

// Load creates the embedded sample pedalboards in s and returns how many were added.
func Load(ctx context.Context, s store, logger *slog.Logger) (int, error) {
	return LoadData(ctx, s, catalogue, logger)
}

// LoadData creates the pedalboards described by data in s.
func LoadData(ctx context.Context, s store, data []byte, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	boards, err := Parse(data)
	if err != nil {
		return 0, err
	}

	for i, b := range boards {
		created, err := s.Create(ctx, b.Input)
		if err != nil {
			return i, fmt.Errorf("seed %q: %w", b.Input.Name, err)
		}
		if b.Favorite {
			if _, err := s.ToggleFavorite(ctx, created.ID); err != nil {
				return i, fmt.Errorf("seed %q favorite: %w", b.Input.Name, err)
			}
		}
	}

	logger.InfoContext(ctx, "sample pedalboards loaded", slog.Int("count", len(boards)))
	return len(boards), nil
}
