package search

import (
	"strings"

	"pedalboard/internal/models"
)

// Search returns the pedalboards whose name, description, or any pedal's
// name or brand contains term, ignoring case. A blank term returns boards as is.
func Search(boards []models.Pedalboard, term string) []models.Pedalboard {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return boards
	}

	out := make([]models.Pedalboard, 0, len(boards))
	for _, b := range boards {
		if matches(b, needle) {
			out = append(out, b)
		}
	}
	return out
}

// Favorites returns only the boards flagged as favorite, keeping their order.
func Favorites(boards []models.Pedalboard) []models.Pedalboard {
	out := make([]models.Pedalboard, 0, len(boards))
	for _, b := range boards {
		if b.Favorite {
			out = append(out, b)
		}
	}
	return out
}

func matches(b models.Pedalboard, needle string) bool {
	if contains(b.Name, needle) {
		return true
	}
	if b.Description != nil && contains(*b.Description, needle) {
		return true
	}
	for _, p := range b.Pedals {
		if contains(p.Name, needle) || contains(p.Brand, needle) {
			return true
		}
	}
	return false
}

func contains(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
