package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Page describes one page of results for response envelopes.
type Page struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Normalize clamps page and limit into their allowed ranges.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// NewPage builds the page descriptor for a total row count.
func NewPage(params Params, total int64) Page {
	n := params.Normalize()
	pages := int((total + int64(n.Limit) - 1) / int64(n.Limit))
	return Page{
		Page:       n.Page,
		Limit:      n.Limit,
		Total:      total,
		TotalPages: pages,
	}
}
