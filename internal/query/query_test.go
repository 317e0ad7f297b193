package query

import (
	"math"
	"testing"
	"time"

	"github.com/text-materials-api/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func int64Ptr(v int64) *int64 { return &v }

// sampleMaterials returns the three-material fixture used across tests
func sampleMaterials() []models.TextMaterial {
	return []models.TextMaterial{
		{
			ID: 1, Title: "firstMaterial", ApprovalStatus: models.StatusPending,
			CategoryID: 1, CategoryTitle: "Science", AuthorID: int64Ptr(1), AuthorName: "alice",
			DatePublished: date(2000, 3, 12),
		},
		{
			ID: 2, Title: "secondMaterial", ApprovalStatus: models.StatusApproved,
			CategoryID: 2, CategoryTitle: "History", AuthorID: int64Ptr(2), AuthorName: "bob",
			DatePublished: date(2003, 4, 23),
		},
		{
			ID: 3, Title: "thirdMaterial", ApprovalStatus: models.StatusApproved,
			CategoryID: 1, CategoryTitle: "Science", AuthorID: int64Ptr(1), AuthorName: "alice",
			DatePublished: date(2004, 1, 1),
		},
	}
}

func titles(materials []models.TextMaterial) []string {
	out := make([]string, len(materials))
	for i, m := range materials {
		out[i] = m.Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewParams(t *testing.T) {
	tests := []struct {
		name         string
		pageNumber   int
		pageSize     int
		wantNumber   int
		wantPageSize int
	}{
		{"defaults for zero values", 0, 0, 1, DefaultPageSize},
		{"page size within bounds", 3, 15, 3, 15},
		{"page size clamped to max", 1, 500, 1, MaxPageSize},
		{"negative page number", -4, 5, 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParams(tt.pageNumber, tt.pageSize)
			if p.PageNumber != tt.wantNumber {
				t.Errorf("PageNumber = %d, want %d", p.PageNumber, tt.wantNumber)
			}
			if p.PageSize != tt.wantPageSize {
				t.Errorf("PageSize = %d, want %d", p.PageSize, tt.wantPageSize)
			}
			if p.OrderBy != DefaultOrderBy {
				t.Errorf("OrderBy = %q, want %q", p.OrderBy, DefaultOrderBy)
			}
			if p.ApprovalStatus != nil {
				t.Error("ApprovalStatus should default to nil")
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2003-04-23")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if !got.Equal(date(2003, 4, 23)) {
		t.Errorf("ParseDate = %v", got)
	}

	if got, err := ParseDate("  "); err != nil || got != nil {
		t.Errorf("blank date should be nil, got %v, %v", got, err)
	}

	if _, err := ParseDate("23/04/2003"); err == nil {
		t.Error("expected error for unsupported layout")
	}
}

func TestParseStatuses(t *testing.T) {
	got, err := ParseStatuses(nil)
	if err != nil || got != nil {
		t.Errorf("nil input should stay nil, got %v, %v", got, err)
	}

	got, err = ParseStatuses([]string{""})
	if err != nil {
		t.Fatalf("ParseStatuses failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("present but empty parameter should give empty allow-list, got %v", got)
	}

	got, err = ParseStatuses([]string{"0,2", "1"})
	if err != nil {
		t.Fatalf("ParseStatuses failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 statuses, got %v", got)
	}

	if _, err := ParseStatuses([]string{"7"}); err == nil {
		t.Error("expected error for unknown status")
	}
	if _, err := ParseStatuses([]string{"1x"}); err == nil {
		t.Error("expected error for malformed status")
	}
}

func TestFiltersAreIdentityWhenAbsent(t *testing.T) {
	in := sampleMaterials()
	want := titles(in)

	checks := map[string][]models.TextMaterial{
		"date range":      FilterByDateRange(in, nil, nil),
		"title":           SearchByTitle(in, ""),
		"category":        SearchByCategory(in, "   "),
		"author":          SearchByAuthor(in, ""),
		"approval status": FilterByApprovalStatus(in, nil),
		"all filters":     Filter(in, NewParams(1, 10)),
	}
	for name, got := range checks {
		if !equalStrings(titles(got), want) {
			t.Errorf("%s: got %v, want %v", name, titles(got), want)
		}
	}
}

func TestFilterByDateRange(t *testing.T) {
	in := sampleMaterials()
	start := date(2003, 4, 23)
	end := date(2003, 4, 23)
	lateEnd := time.Date(2003, 4, 23, 0, 0, 1, 0, time.UTC)
	earlyStart := time.Date(2004, 1, 1, 23, 59, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start *time.Time
		end   *time.Time
		want  []string
	}{
		{"start only", &start, nil, []string{"secondMaterial", "thirdMaterial"}},
		{"end only", nil, &end, []string{"firstMaterial", "secondMaterial"}},
		{"inclusive single day", &start, &end, []string{"secondMaterial"}},
		{"time of day ignored on end", nil, &lateEnd, []string{"firstMaterial", "secondMaterial"}},
		{"time of day ignored on start", &earlyStart, nil, []string{"thirdMaterial"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titles(FilterByDateRange(in, tt.start, tt.end))
			if !equalStrings(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	in := sampleMaterials()

	tests := []struct {
		name string
		got  []models.TextMaterial
		want []string
	}{
		{"title case insensitive", SearchByTitle(in, "MATERIAL"), []string{"firstMaterial", "secondMaterial", "thirdMaterial"}},
		{"title contains", SearchByTitle(in, "se"), []string{"secondMaterial"}},
		{"title trimmed", SearchByTitle(in, "  third "), []string{"thirdMaterial"}},
		{"category", SearchByCategory(in, "hist"), []string{"secondMaterial"}},
		{"author", SearchByAuthor(in, "ALI"), []string{"firstMaterial", "thirdMaterial"}},
		{"no match", SearchByTitle(in, "zzz"), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !equalStrings(titles(tt.got), tt.want) {
				t.Errorf("got %v, want %v", titles(tt.got), tt.want)
			}
		})
	}
}

func TestSearchByAuthorSkipsOrphans(t *testing.T) {
	in := sampleMaterials()
	in[1].AuthorID = nil
	in[1].AuthorName = ""

	got := titles(SearchByAuthor(in, "b"))
	if len(got) != 0 {
		t.Errorf("orphaned material should not match, got %v", got)
	}
}

func TestFilterByApprovalStatus(t *testing.T) {
	in := sampleMaterials()

	got := titles(FilterByApprovalStatus(in, []models.ApprovalStatus{models.StatusApproved}))
	if !equalStrings(got, []string{"secondMaterial", "thirdMaterial"}) {
		t.Errorf("approved only: got %v", got)
	}

	got = titles(FilterByApprovalStatus(in, []models.ApprovalStatus{}))
	if len(got) != 0 {
		t.Errorf("empty allow-list should match nothing, got %v", got)
	}
}

func TestApplySort(t *testing.T) {
	in := []models.TextMaterial{
		{ID: 1, Title: "b", CategoryTitle: "x", DatePublished: date(2001, 1, 1)},
		{ID: 2, Title: "a", CategoryTitle: "x", DatePublished: date(2003, 1, 1)},
		{ID: 3, Title: "b", CategoryTitle: "z", DatePublished: date(2000, 1, 1)},
		{ID: 4, Title: "a", CategoryTitle: "y", DatePublished: date(2002, 1, 1)},
	}

	tests := []struct {
		name    string
		orderBy string
		want    []int64
	}{
		{"multi key with tie break", "title asc, category desc", []int64{4, 2, 3, 1}},
		{"case insensitive field names", "TITLE, Category DESC", []int64{4, 2, 3, 1}},
		{"missing direction is ascending", "id", []int64{1, 2, 3, 4}},
		{"descending date", "datePublished desc", []int64{2, 4, 1, 3}},
		{"unknown fields fall back to date asc", "bogus desc, nope", []int64{3, 1, 4, 2}},
		{"empty falls back to date asc", "", []int64{3, 1, 4, 2}},
		{"unknown fields skipped among known", "bogus, id desc", []int64{4, 3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplySort(in, tt.orderBy)
			for i, m := range got {
				if m.ID != tt.want[i] {
					t.Fatalf("position %d: got id %d, want %d (full order %v)", i, m.ID, tt.want[i], ids(got))
				}
			}
		})
	}

	if in[0].ID != 1 || in[3].ID != 4 {
		t.Error("ApplySort must not reorder its input")
	}
}

func TestApplySortIgnoresCase(t *testing.T) {
	in := []models.TextMaterial{
		{ID: 1, Title: "Zebra", AuthorName: "bob"},
		{ID: 2, Title: "apple", AuthorName: "Alice"},
		{ID: 3, Title: "Mango", AuthorName: "alice"},
		{ID: 4, Title: "APPLE", AuthorName: "Bob"},
	}

	tests := []struct {
		orderBy string
		want    []int64
	}{
		{"title", []int64{2, 4, 3, 1}},
		{"title desc", []int64{1, 3, 2, 4}},
		{"author, id desc", []int64{3, 2, 4, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.orderBy, func(t *testing.T) {
			if got := ids(ApplySort(in, tt.orderBy)); !equalIDs(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplySortIsStable(t *testing.T) {
	in := []models.TextMaterial{
		{ID: 1, Title: "same"},
		{ID: 2, Title: "same"},
		{ID: 3, Title: "same"},
	}
	got := ApplySort(in, "title desc")
	if !equalIDs(ids(got), []int64{1, 2, 3}) {
		t.Errorf("equal keys should keep input order, got %v", ids(got))
	}
}

func TestApplySortOptionalFields(t *testing.T) {
	approved := date(2005, 5, 5)
	in := []models.TextMaterial{
		{ID: 1, DateApproved: &approved, AuthorID: int64Ptr(9)},
		{ID: 2},
	}
	if got := ids(ApplySort(in, "dateApproved")); !equalIDs(got, []int64{2, 1}) {
		t.Errorf("nil approval date should sort first, got %v", got)
	}
	if got := ids(ApplySort(in, "authorId desc")); !equalIDs(got, []int64{1, 2}) {
		t.Errorf("authorId desc: got %v", got)
	}
}

func ids(materials []models.TextMaterial) []int64 {
	out := make([]int64, len(materials))
	for i, m := range materials {
		out[i] = m.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestToPagedListInvariant(t *testing.T) {
	for count := 0; count <= 25; count++ {
		source := make([]int, count)
		for i := range source {
			source[i] = i
		}
		for pageSize := 1; pageSize <= 7; pageSize++ {
			for pageNumber := 1; pageNumber <= 8; pageNumber++ {
				page := ToPagedList(source, pageNumber, pageSize)

				wantPages := (count + pageSize - 1) / pageSize
				if page.TotalPages != wantPages {
					t.Fatalf("count=%d size=%d: TotalPages = %d, want %d", count, pageSize, page.TotalPages, wantPages)
				}

				remaining := count - (pageNumber-1)*pageSize
				if remaining < 0 {
					remaining = 0
				}
				wantLen := pageSize
				if remaining < wantLen {
					wantLen = remaining
				}
				if len(page.Items) != wantLen {
					t.Fatalf("count=%d size=%d page=%d: len = %d, want %d", count, pageSize, pageNumber, len(page.Items), wantLen)
				}
				if wantLen > 0 && page.Items[0] != (pageNumber-1)*pageSize {
					t.Fatalf("count=%d size=%d page=%d: first item = %d", count, pageSize, pageNumber, page.Items[0])
				}
				if page.HasPrevious() != (pageNumber > 1) {
					t.Fatalf("HasPrevious wrong for page %d", pageNumber)
				}
				if page.HasNext() != (pageNumber < wantPages) {
					t.Fatalf("HasNext wrong for page %d of %d", pageNumber, wantPages)
				}
				if page.TotalCount != count {
					t.Fatalf("TotalCount = %d, want %d", page.TotalCount, count)
				}
			}
		}
	}
}

func TestToPagedListHugePageNumber(t *testing.T) {
	tests := []struct {
		name       string
		pageNumber int
		pageSize   int
	}{
		{"product wraps to zero", 1<<62 + 1, 16},
		{"product wraps negative", 1<<59 + 1, 16},
		{"max int", math.MaxInt, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := ToPagedList([]int{1, 2}, tt.pageNumber, tt.pageSize)
			if len(page.Items) != 0 {
				t.Errorf("Expected empty page, got %v", page.Items)
			}
			if page.TotalPages != 1 || page.HasNext() || !page.HasPrevious() {
				t.Errorf("Unexpected metadata %+v", page.Metadata())
			}
		})
	}

	got := Apply(sampleMaterials(), NewParams(1<<62+1, 16))
	if len(got.Items) != 0 || got.TotalCount != 3 {
		t.Errorf("Apply: items = %d, TotalCount = %d", len(got.Items), got.TotalCount)
	}
}

func TestPagedListMetadataHeader(t *testing.T) {
	page := ToPagedList([]int{1, 2, 3, 4, 5}, 2, 2)
	want := `{"total_count":5,"page_size":2,"current_page":2,"total_pages":3,"has_next":true,"has_previous":true}`
	if got := page.HeaderValue(); got != want {
		t.Errorf("HeaderValue = %s, want %s", got, want)
	}
}

func TestApplyScenarios(t *testing.T) {
	in := sampleMaterials()

	approvedOnly := NewParams(1, 10)
	approvedOnly.ApprovalStatus = []models.ApprovalStatus{models.StatusApproved}
	approvedOnly.OrderBy = "datePublished desc"

	page := Apply(in, approvedOnly)
	if got := titles(page.Items); !equalStrings(got, []string{"thirdMaterial", "secondMaterial"}) {
		t.Errorf("approved desc: got %v", got)
	}
	if page.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", page.TotalCount)
	}

	search := NewParams(1, 10)
	search.SearchTitle = "material"
	if got := Apply(in, search); got.TotalCount != 3 {
		t.Errorf("search 'material': TotalCount = %d, want 3", got.TotalCount)
	}

	search.SearchTitle = "se"
	if got := titles(Apply(in, search).Items); !equalStrings(got, []string{"secondMaterial"}) {
		t.Errorf("search 'se': got %v", got)
	}

	paged := NewParams(2, 2)
	page = Apply(in, paged)
	if got := titles(page.Items); !equalStrings(got, []string{"firstMaterial"}) {
		t.Errorf("second page: got %v", got)
	}
	if page.HasNext() || !page.HasPrevious() {
		t.Error("second page of two should have previous and no next")
	}
}
