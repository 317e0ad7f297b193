package query

import (
	"github.com/text-materials-api/internal/models"
)

// Filter runs the predicates in their fixed order: date range, title,
// category, author, approval status
func Filter(materials []models.TextMaterial, p Params) []models.TextMaterial {
	materials = FilterByDateRange(materials, p.StartDate, p.EndDate)
	materials = SearchByTitle(materials, p.SearchTitle)
	materials = SearchByCategory(materials, p.SearchCategory)
	materials = SearchByAuthor(materials, p.SearchAuthor)
	materials = FilterByApprovalStatus(materials, p.ApprovalStatus)
	return materials
}

// Apply filters, sorts and pages materials
func Apply(materials []models.TextMaterial, p Params) *PagedList[models.TextMaterial] {
	filtered := Filter(materials, p)
	sorted := ApplySort(filtered, p.OrderBy)
	return ToPagedList(sorted, p.PageNumber, p.PageSize)
}
