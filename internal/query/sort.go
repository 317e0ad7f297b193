package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/text-materials-api/internal/models"
)

type comparator func(a, b *models.TextMaterial) int

type sortKey struct {
	compare    comparator
	descending bool
}

// sortFields maps lowercased field names to comparators
var sortFields = map[string]comparator{
	"id":              func(a, b *models.TextMaterial) int { return cmp.Compare(a.ID, b.ID) },
	"title":           func(a, b *models.TextMaterial) int { return compareFold(a.Title, b.Title) },
	"content":         func(a, b *models.TextMaterial) int { return compareFold(a.Content, b.Content) },
	"category":        func(a, b *models.TextMaterial) int { return compareFold(a.CategoryTitle, b.CategoryTitle) },
	"categoryid":      func(a, b *models.TextMaterial) int { return cmp.Compare(a.CategoryID, b.CategoryID) },
	"author":          func(a, b *models.TextMaterial) int { return compareFold(a.AuthorName, b.AuthorName) },
	"authorid":        func(a, b *models.TextMaterial) int { return compareOptionalID(a.AuthorID, b.AuthorID) },
	"approvalstatus":  func(a, b *models.TextMaterial) int { return cmp.Compare(a.ApprovalStatus, b.ApprovalStatus) },
	"rejectcount":     func(a, b *models.TextMaterial) int { return cmp.Compare(a.RejectCount, b.RejectCount) },
	"datepublished":   func(a, b *models.TextMaterial) int { return a.DatePublished.Compare(b.DatePublished) },
	"datelastchanged": func(a, b *models.TextMaterial) int { return a.DateLastChanged.Compare(b.DateLastChanged) },
	"dateapproved":    func(a, b *models.TextMaterial) int { return compareOptionalTime(a.DateApproved, b.DateApproved) },
}

var defaultSort = []sortKey{{compare: sortFields["datepublished"]}}

// parseOrderBy resolves an order-by string such as "title asc, category desc"
// into sort keys. Unknown fields are skipped. When nothing resolves the
// result is ascending by publish date.
func parseOrderBy(orderBy string) []sortKey {
	var keys []sortKey
	for _, token := range strings.Split(orderBy, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		name := token
		if i := strings.IndexByte(token, ' '); i >= 0 {
			name = token[:i]
		}
		compare, ok := sortFields[strings.ToLower(name)]
		if !ok {
			continue
		}
		keys = append(keys, sortKey{
			compare:    compare,
			descending: strings.HasSuffix(strings.ToLower(token), " desc"),
		})
	}
	if len(keys) == 0 {
		return defaultSort
	}
	return keys
}

// ApplySort returns a copy of materials ordered by orderBy. Each key
// breaks ties left by the previous one; remaining ties keep input order.
func ApplySort(materials []models.TextMaterial, orderBy string) []models.TextMaterial {
	keys := parseOrderBy(orderBy)
	sorted := slices.Clone(materials)
	slices.SortStableFunc(sorted, func(a, b models.TextMaterial) int {
		for _, k := range keys {
			c := k.compare(&a, &b)
			if k.descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return sorted
}

// compareFold orders strings ignoring case, matching how search matches them
func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareOptionalID(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(*a, *b)
}

func compareOptionalTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}
