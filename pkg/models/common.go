package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// InsufficientCreditsResponse is the 402 body of a purchase the balance cannot cover
type InsufficientCreditsResponse struct {
	Error          string `json:"error"`
	Message        string `json:"message"`
	CurrentBalance int    `json:"current_balance"`
	Required       int    `json:"required"`
}

// PaginationInfo represents pagination metadata
type PaginationInfo struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewPaginationInfo computes page metadata for a result of total rows
func NewPaginationInfo(page, limit, total int) PaginationInfo {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PaginationInfo{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
