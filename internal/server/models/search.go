package models

import "math"

// MaxPageSize caps the number of items returned per page.
const MaxPageSize = 100

// SearchQuery filters a recipe listing. Empty Query, nil CategoryID and nil
// OwnerID mean "no filter".
type SearchQuery struct {
	Query      string
	CategoryID *int64
	OwnerID    *int64
	Page       int `json:"page" validate:"min=1"`
	PageSize   int `json:"pageSize" validate:"min=1,max=100"`
}

// Offset is the number of rows skipped before the requested page. It
// saturates at math.MaxInt instead of overflowing.
func (q SearchQuery) Offset() int {
	if q.Page <= 1 || q.PageSize <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.PageSize {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PageSize
}

// Page is one page of a filtered listing. TotalCount is the size of the
// whole filtered set.
type Page[T any] struct {
	Items      []T
	TotalCount int
	Page       int
	PageSize   int
}
