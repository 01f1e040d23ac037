package pagination

// Meta describes the selected window of a row list.
type Meta struct {
	CurrentPage int  `json:"current_page" yaml:"current_page"`
	PageSize    int  `json:"page_size"    yaml:"page_size"`
	TotalPages  int  `json:"total_pages"  yaml:"total_pages"`
	TotalItems  int  `json:"total_items"  yaml:"total_items"`
	HasPrevious bool `json:"has_previous" yaml:"has_previous"`
	HasNext     bool `json:"has_next"     yaml:"has_next"`
}

// NewMeta builds the metadata for params over total items. Offset mode is
// reported as pages of Limit rows; no selection is a single page.
func NewMeta(params Params, total int) Meta {
	pageSize := params.PageSize
	if pageSize == 0 && params.Limit > 0 {
		pageSize = params.Limit
	}
	if pageSize == 0 {
		pageSize = total
	}

	current := params.Page
	if current == 0 && params.Offset > 0 && pageSize > 0 {
		current = params.Offset/pageSize + 1
	}
	if current == 0 {
		current = 1
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	return Meta{
		CurrentPage: current,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasPrevious: current > 1,
		HasNext:     current < totalPages,
	}
}
