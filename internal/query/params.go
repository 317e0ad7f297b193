// Package query implements the listing pipeline for text materials:
// request parameters, filter and search predicates, the order-by sort
// engine and page slicing.
package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/text-materials-api/internal/models"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 20
	DefaultOrderBy    = "datePublished desc"
)

const dateLayout = "2006-01-02"

// Params holds the listing parameters of a single request.
//
// ApprovalStatus distinguishes nil (no filtering) from an empty, non-nil
// slice (nothing matches).
type Params struct {
	PageNumber     int
	PageSize       int
	StartDate      *time.Time
	EndDate        *time.Time
	SearchTitle    string
	SearchCategory string
	SearchAuthor   string
	ApprovalStatus []models.ApprovalStatus
	OrderBy        string
}

// NewParams returns parameters with defaults applied and the page size
// clamped to MaxPageSize
func NewParams(pageNumber, pageSize int) Params {
	p := Params{OrderBy: DefaultOrderBy}
	p.SetPage(pageNumber, pageSize)
	return p
}

// SetPage normalises page number and size. Oversized pages are clamped,
// not rejected.
func (p *Params) SetPage(pageNumber, pageSize int) {
	if pageNumber < 1 {
		pageNumber = DefaultPageNumber
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	p.PageNumber = pageNumber
	p.PageSize = pageSize
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC3339 timestamp.
// An empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", s)
	}
	return &t, nil
}

// ParseStatuses converts raw status codes into an allow-list. A nil input
// stays nil; blank entries are ignored, so a present but empty parameter
// produces an empty allow-list.
func ParseStatuses(raw []string) ([]models.ApprovalStatus, error) {
	if raw == nil {
		return nil, nil
	}
	statuses := make([]models.ApprovalStatus, 0, len(raw))
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			code, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid approval status %q", part)
			}
			status := models.ApprovalStatus(code)
			if !status.Valid() {
				return nil, fmt.Errorf("unknown approval status %d", code)
			}
			statuses = append(statuses, status)
		}
	}
	return statuses, nil
}
