package model

// PageInfo accompanies every paginated list response.
type PageInfo struct {
	Page        int   `json:"page"`
	PageSize    int   `json:"pageSize"`
	TotalCount  int64 `json:"totalCount"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// NewPageInfo clamps nothing; callers normalize page/pageSize first.
// TotalPages is floored at 1 so an empty result still renders page 1 of 1.
func NewPageInfo(page, pageSize int, totalCount int64) PageInfo {
	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	return PageInfo{
		Page:        page,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
