package models

import (
	"time"

	"github.com/google/uuid"
)

// Pedalboard is a named, ordered collection of effect pedals.
type Pedalboard struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Pedals      []Pedal   `json:"pedals"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Favorite    bool      `json:"favorite"`
}

// Pedal is a single effect unit owned by exactly one pedalboard.
type Pedal struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Brand    string    `json:"brand"`
	Type     PedalType `json:"type"`
	Position int       `json:"position"`
	Settings Settings  `json:"settings"`
	Notes    *string   `json:"notes,omitempty"`
}

// Settings holds the knob and switch state of a pedal.
type Settings struct {
	Knobs    []Knob   `json:"knobs"`
	Switches []Switch `json:"switches"`
}

// Knob is a bounded numeric control.
type Knob struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Switch selects one value from a fixed option set.
type Switch struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Options []string `json:"options"`
	Value   string   `json:"value"`
}

// PedalType is the kind of effect a pedal produces.
type PedalType string

const (
	PedalTypeOverdrive   PedalType = "Overdrive"
	PedalTypeDistortion  PedalType = "Distortion"
	PedalTypeFuzz        PedalType = "Fuzz"
	PedalTypeDelay       PedalType = "Delay"
	PedalTypeReverb      PedalType = "Reverb"
	PedalTypeChorus      PedalType = "Chorus"
	PedalTypePhaser      PedalType = "Phaser"
	PedalTypeFlanger     PedalType = "Flanger"
	PedalTypeTremolo     PedalType = "Tremolo"
	PedalTypeCompressor  PedalType = "Compressor"
	PedalTypeEQ          PedalType = "EQ"
	PedalTypeWah         PedalType = "Wah"
	PedalTypeTuner       PedalType = "Tuner"
	PedalTypeVolume      PedalType = "Volume"
	PedalTypeLooper      PedalType = "Looper"
	PedalTypeMultiEffect PedalType = "Multi-effect"
	PedalTypeOther       PedalType = "Other"
)

var pedalTypes = []PedalType{
	PedalTypeOverdrive, PedalTypeDistortion, PedalTypeFuzz, PedalTypeDelay, PedalTypeReverb,
	PedalTypeChorus, PedalTypePhaser, PedalTypeFlanger, PedalTypeTremolo, PedalTypeCompressor,
	PedalTypeEQ, PedalTypeWah, PedalTypeTuner, PedalTypeVolume, PedalTypeLooper,
	PedalTypeMultiEffect, PedalTypeOther,
}

// validPedalTypes enumerates the pedal types accepted on input.
var validPedalTypes = func() map[PedalType]struct{} {
	m := make(map[PedalType]struct{}, len(pedalTypes))
	for _, t := range pedalTypes {
		m[t] = struct{}{}
	}
	return m
}()

// PedalTypes returns every supported pedal type in display order.
func PedalTypes() []PedalType {
	out := make([]PedalType, len(pedalTypes))
	copy(out, pedalTypes)
	return out
}

// ParsePedalType resolves a type name. An empty name yields Overdrive,
// the type preselected by the pedal form.
func ParsePedalType(s string) (PedalType, error) {
	if s == "" {
		return PedalTypeOverdrive, nil
	}
	t := PedalType(s)
	if _, ok := validPedalTypes[t]; !ok {
		return "", NewValidationError("type", "unknown pedal type "+s)
	}
	return t, nil
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// Clone returns a deep copy of the pedal.
func (p Pedal) Clone() Pedal {
	out := p
	if p.Notes != nil {
		notes := *p.Notes
		out.Notes = &notes
	}
	out.Settings = p.Settings.Clone()
	return out
}

// Clone returns a deep copy of the settings with non-nil slices.
func (s Settings) Clone() Settings {
	out := Settings{
		Knobs:    make([]Knob, len(s.Knobs)),
		Switches: make([]Switch, len(s.Switches)),
	}
	copy(out.Knobs, s.Knobs)
	for i, sw := range s.Switches {
		sw.Options = append([]string(nil), sw.Options...)
		if sw.Options == nil {
			sw.Options = []string{}
		}
		out.Switches[i] = sw
	}
	return out
}

// Clone returns a deep copy of the pedalboard, including its pedals.
func (b Pedalboard) Clone() Pedalboard {
	out := b
	if b.Description != nil {
		desc := *b.Description
		out.Description = &desc
	}
	out.Pedals = ClonePedals(b.Pedals)
	return out
}

// ClonePedals deep-copies a pedal sequence. The result is never nil.
func ClonePedals(seq []Pedal) []Pedal {
	out := make([]Pedal, len(seq))
	for i, p := range seq {
		out[i] = p.Clone()
	}
	return out
}
