package ticket

const DefaultPageSize = 10

type PagedResult struct {
	Items      []*Ticket `json:"items"`
	TotalCount int64     `json:"total_count"`
	PageNumber int       `json:"page_number"`
	PageSize   int       `json:"page_size"`
}

func (p *PagedResult) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return int((p.TotalCount + int64(p.PageSize) - 1) / int64(p.PageSize))
}

func (p *PagedResult) HasPrevious() bool {
	return p.PageNumber > 1
}

func (p *PagedResult) HasNext() bool {
	return p.PageNumber < p.TotalPages()
}

// ClampPage normalizes paging input: page below 1 becomes 1 and size below 1
// becomes DefaultPageSize.
func ClampPage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return page, size
}
