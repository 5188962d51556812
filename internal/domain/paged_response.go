package domain

// PagedResponse представляет ответ с пагинацией для API
type PagedResponse struct {
	Items      interface{} `json:"items"`
	TotalItems int         `json:"total_items"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// NewPagedResponse собирает ответ с пагинацией по общему количеству элементов
func NewPagedResponse(items interface{}, totalItems, page, pageSize int) PagedResponse {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalItems + pageSize - 1) / pageSize
	}
	return PagedResponse{
		Items:      items,
		TotalItems: totalItems,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
