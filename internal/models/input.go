package models

import (
	"fmt"
	"slices"
	"strings"
)

// CreatePedalboardInput holds the parameters for creating a pedalboard.
type CreatePedalboardInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Pedals      []Pedal `json:"pedals"`
}

// Validate checks all fields and collects all errors.
func (i CreatePedalboardInput) Validate() error {
	var errs []FieldError
	if strings.TrimSpace(i.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	errs = append(errs, pedalErrors(i.Pedals)...)
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// UpdatePedalboardInput is a partial update; nil fields are left unchanged.
type UpdatePedalboardInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"` // ptr("") clears
}

// Validate checks all fields and collects all errors.
func (i UpdatePedalboardInput) Validate() error {
	if i.Name != nil && strings.TrimSpace(*i.Name) == "" {
		return NewValidationError("name", "required")
	}
	return nil
}

// NewPedalInput holds the fields a user enters when adding a pedal.
type NewPedalInput struct {
	Name  string  `json:"name"`
	Brand string  `json:"brand"`
	Type  string  `json:"type"`
	Notes *string `json:"notes"`
}

// Validate checks all fields and collects all errors.
func (i NewPedalInput) Validate() error {
	var errs []FieldError
	if strings.TrimSpace(i.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if strings.TrimSpace(i.Brand) == "" {
		errs = append(errs, FieldError{Field: "brand", Message: "required"})
	}
	if _, err := ParsePedalType(i.Type); err != nil {
		errs = append(errs, FieldError{Field: "type", Message: "unknown pedal type " + i.Type})
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// ValidatePedals checks a full pedal sequence before it replaces a board's pedals.
func ValidatePedals(seq []Pedal) error {
	if errs := pedalErrors(seq); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func pedalErrors(seq []Pedal) []FieldError {
	var errs []FieldError
	seen := make(map[string]struct{}, len(seq))
	for i, p := range seq {
		prefix := fmt.Sprintf("pedals[%d]", i)
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, FieldError{Field: prefix + ".name", Message: "required"})
		}
		if strings.TrimSpace(p.Brand) == "" {
			errs = append(errs, FieldError{Field: prefix + ".brand", Message: "required"})
		}
		if _, err := ParsePedalType(string(p.Type)); err != nil {
			errs = append(errs, FieldError{Field: prefix + ".type", Message: "unknown pedal type " + string(p.Type)})
		}
		if p.ID != "" {
			if _, dup := seen[p.ID]; dup {
				errs = append(errs, FieldError{Field: prefix + ".id", Message: "duplicate id " + p.ID})
			}
			seen[p.ID] = struct{}{}
		}
		errs = append(errs, settingsErrors(prefix+".settings", p.Settings)...)
	}
	return errs
}

func settingsErrors(prefix string, s Settings) []FieldError {
	var errs []FieldError
	for i, k := range s.Knobs {
		field := fmt.Sprintf("%s.knobs[%d]", prefix, i)
		if k.Min > k.Max {
			errs = append(errs, FieldError{Field: field + ".min", Message: "must not exceed max"})
			continue
		}
		if k.Value < k.Min || k.Value > k.Max {
			errs = append(errs, FieldError{
				Field:   field + ".value",
				Message: fmt.Sprintf("must be between %g and %g", k.Min, k.Max),
			})
		}
	}
	for i, sw := range s.Switches {
		if len(sw.Options) > 0 && !slices.Contains(sw.Options, sw.Value) {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("%s.switches[%d].value", prefix, i),
				Message: "must be one of " + strings.Join(sw.Options, ", "),
			})
		}
	}
	return errs
}

// NormalizePedals returns a trimmed deep copy of seq. Missing ids and
// types are filled in; knob and switch ids are filled the same way.
// Positions are left to the caller.
func NormalizePedals(seq []Pedal) []Pedal {
	out := ClonePedals(seq)
	for i := range out {
		p := &out[i]
		if p.ID == "" {
			p.ID = NewID()
		}
		p.Name = strings.TrimSpace(p.Name)
		p.Brand = strings.TrimSpace(p.Brand)
		if p.Type == "" {
			p.Type = PedalTypeOverdrive
		}
		p.Notes = TrimOrNil(p.Notes)
		for k := range p.Settings.Knobs {
			if p.Settings.Knobs[k].ID == "" {
				p.Settings.Knobs[k].ID = NewID()
			}
		}
		for s := range p.Settings.Switches {
			if p.Settings.Switches[s].ID == "" {
				p.Settings.Switches[s].ID = NewID()
			}
		}
	}
	return out
}

// TrimOrNil trims whitespace. Returns nil if the result is empty.
func TrimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
