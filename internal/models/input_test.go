package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func fields(t *testing.T, err error) []string {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	out := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		out[i] = fe.Field
	}
	return out
}

func TestCreatePedalboardInput_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CreatePedalboardInput{Name: "Blues Rig"}.Validate())

	err := CreatePedalboardInput{Name: "  "}.Validate()
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []string{"name"}, fields(t, err))
}

func TestCreatePedalboardInput_ValidatesPedals(t *testing.T) {
	t.Parallel()

	err := CreatePedalboardInput{
		Name: "Rig",
		Pedals: []Pedal{
			{Name: "TS9", Brand: "Ibanez"},
			{Name: " ", Brand: "Boss", Type: "Banjo"},
		},
	}.Validate()
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []string{"pedals[1].name", "pedals[1].type"}, fields(t, err))
}

func TestUpdatePedalboardInput_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, UpdatePedalboardInput{}.Validate())
	assert.NoError(t, UpdatePedalboardInput{Description: ptr("")}.Validate())
	assert.ErrorIs(t, UpdatePedalboardInput{Name: ptr("\t")}.Validate(), ErrValidation)
}

func TestNewPedalInput_Validate_CollectsAllFields(t *testing.T) {
	t.Parallel()

	err := NewPedalInput{Type: "Kazoo"}.Validate()
	assert.Equal(t, []string{"name", "brand", "type"}, fields(t, err))
}

func TestValidatePedals_Settings(t *testing.T) {
	t.Parallel()

	seq := []Pedal{{
		ID:    "p1",
		Name:  "Carbon Copy",
		Brand: "MXR",
		Type:  PedalTypeDelay,
		Settings: Settings{
			Knobs: []Knob{
				{Name: "Regen", Value: 11, Min: 0, Max: 10},
				{Name: "Mix", Value: 4, Min: 5, Max: 1},
				{Name: "Delay", Value: 2, Min: 0, Max: 10},
			},
			Switches: []Switch{
				{Name: "Mod", Options: []string{"On", "Off"}, Value: "Maybe"},
				{Name: "Free", Value: "anything"},
			},
		},
	}}

	err := ValidatePedals(seq)
	assert.Equal(t, []string{
		"pedals[0].settings.knobs[0].value",
		"pedals[0].settings.knobs[1].min",
		"pedals[0].settings.switches[0].value",
	}, fields(t, err))
}

func TestValidatePedals_DuplicateIDs(t *testing.T) {
	t.Parallel()

	err := ValidatePedals([]Pedal{
		{ID: "x", Name: "A", Brand: "B"},
		{ID: "x", Name: "C", Brand: "D"},
	})
	assert.Equal(t, []string{"pedals[1].id"}, fields(t, err))
}

func TestNormalizePedals(t *testing.T) {
	t.Parallel()

	in := []Pedal{{
		Name:     " Rat ",
		Brand:    " ProCo ",
		Notes:    ptr("   "),
		Settings: Settings{Knobs: []Knob{{Name: "Filter", Value: 4, Max: 10}}},
	}}
	out := NormalizePedals(in)

	require.Len(t, out, 1)
	assert.NotEmpty(t, out[0].ID)
	assert.Equal(t, "Rat", out[0].Name)
	assert.Equal(t, "ProCo", out[0].Brand)
	assert.Equal(t, PedalTypeOverdrive, out[0].Type)
	assert.Nil(t, out[0].Notes)
	assert.NotEmpty(t, out[0].Settings.Knobs[0].ID)
	assert.NotNil(t, out[0].Settings.Switches)

	assert.Empty(t, in[0].ID, "input must not be modified")
	assert.Empty(t, in[0].Settings.Knobs[0].ID)
}

func TestParsePedalType(t *testing.T) {
	t.Parallel()

	for _, typ := range PedalTypes() {
		got, err := ParsePedalType(string(typ))
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	assert.Len(t, PedalTypes(), 17)

	_, err := ParsePedalType("overdrive")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPedalboardClone_IsDeep(t *testing.T) {
	t.Parallel()

	b := Pedalboard{
		ID:          "pb1",
		Name:        "Blues",
		Description: ptr("gigs"),
		Pedals: []Pedal{{
			ID:    "p1",
			Notes: ptr("n"),
			Settings: Settings{
				Knobs:    []Knob{{ID: "k1", Value: 1}},
				Switches: []Switch{{ID: "s1", Options: []string{"On", "Off"}, Value: "On"}},
			},
		}},
	}
	c := b.Clone()

	*c.Description = "changed"
	*c.Pedals[0].Notes = "changed"
	c.Pedals[0].Settings.Knobs[0].Value = 9
	c.Pedals[0].Settings.Switches[0].Options[0] = "Bypass"
	c.Pedals[0].Position = 7

	assert.Equal(t, "gigs", *b.Description)
	assert.Equal(t, "n", *b.Pedals[0].Notes)
	assert.Equal(t, float64(1), b.Pedals[0].Settings.Knobs[0].Value)
	assert.Equal(t, "On", b.Pedals[0].Settings.Switches[0].Options[0])
	assert.Equal(t, 0, b.Pedals[0].Position)
}

func TestErrors(t *testing.T) {
	t.Parallel()

	nf := PedalboardNotFound("pb9")
	assert.ErrorIs(t, nf, ErrNotFound)
	assert.Equal(t, `pedalboard "pb9" not found`, nf.Error())

	ve := NewValidationError("name", "required")
	assert.Equal(t, "validation: name: required", ve.Error())
	assert.Equal(t, "validation: 2 errors", (&ValidationError{Errors: []FieldError{{}, {}}}).Error())
}
