package pagination

// Meta describes the page that was returned.
type Meta struct {
	CurrentPage int  `json:"current_page"`
	PageSize    int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// NewMeta computes page metadata for total items.
func NewMeta(p Params, total int) Meta {
	if !p.IsEnabled() {
		return Meta{CurrentPage: 1, PageSize: total, TotalPages: 1, TotalItems: total}
	}
	size := p.pageSize()
	pages := (total + size - 1) / size
	current := min(p.Page, max(pages, 1))
	return Meta{
		CurrentPage: current,
		PageSize:    size,
		TotalPages:  pages,
		TotalItems:  total,
		HasPrevious: current > 1,
		HasNext:     current < pages,
	}
}
