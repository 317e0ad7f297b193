package query

import (
	"strings"
	"time"

	"github.com/text-materials-api/internal/models"
)

// Every filter returns its input unchanged when its parameter is absent.
// Otherwise it returns a new slice and leaves the input untouched.

// FilterByDateRange keeps materials published between start and end,
// both inclusive, comparing calendar dates only
func FilterByDateRange(materials []models.TextMaterial, start, end *time.Time) []models.TextMaterial {
	if start == nil && end == nil {
		return materials
	}
	var from, to time.Time
	if start != nil {
		from = dateOf(*start)
	}
	if end != nil {
		to = dateOf(*end)
	}
	return keep(materials, func(m *models.TextMaterial) bool {
		published := dateOf(m.DatePublished)
		if start != nil && published.Before(from) {
			return false
		}
		if end != nil && published.After(to) {
			return false
		}
		return true
	})
}

// SearchByTitle keeps materials whose title contains term, ignoring case
func SearchByTitle(materials []models.TextMaterial, term string) []models.TextMaterial {
	return searchBy(materials, term, func(m *models.TextMaterial) string { return m.Title })
}

// SearchByCategory keeps materials whose category title contains term
func SearchByCategory(materials []models.TextMaterial, term string) []models.TextMaterial {
	return searchBy(materials, term, func(m *models.TextMaterial) string { return m.CategoryTitle })
}

// SearchByAuthor keeps materials whose author name contains term.
// Orphaned materials have no author name and never match a non-empty term.
func SearchByAuthor(materials []models.TextMaterial, term string) []models.TextMaterial {
	return searchBy(materials, term, func(m *models.TextMaterial) string { return m.AuthorName })
}

// FilterByApprovalStatus keeps materials whose status is in allowed.
// A nil allow-list disables the filter; an empty one matches nothing.
func FilterByApprovalStatus(materials []models.TextMaterial, allowed []models.ApprovalStatus) []models.TextMaterial {
	if allowed == nil {
		return materials
	}
	set := make(map[models.ApprovalStatus]struct{}, len(allowed))
	for _, s := range allowed {
		set[s] = struct{}{}
	}
	return keep(materials, func(m *models.TextMaterial) bool {
		_, ok := set[m.ApprovalStatus]
		return ok
	})
}

func searchBy(materials []models.TextMaterial, term string, field func(*models.TextMaterial) string) []models.TextMaterial {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return materials
	}
	return keep(materials, func(m *models.TextMaterial) bool {
		return strings.Contains(strings.ToLower(field(m)), term)
	})
}

func keep(materials []models.TextMaterial, pred func(*models.TextMaterial) bool) []models.TextMaterial {
	out := make([]models.TextMaterial, 0, len(materials))
	for i := range materials {
		if pred(&materials[i]) {
			out = append(out, materials[i])
		}
	}
	return out
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
