package shared

// Page size bounds applied by Filter.Normalize
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter is a tenant-scoped list query. Equals holds column equality
// constraints; repositories ignore columns they do not know.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Equals   map[string]string
}

// Where returns a copy of f constrained to column = value. An empty value
// leaves f unconstrained.
func (f Filter) Where(column, value string) Filter {
	if value == "" {
		return f
	}
	eq := make(map[string]string, len(f.Equals)+1)
	for k, v := range f.Equals {
		eq[k] = v
	}
	eq[column] = value
	f.Equals = eq
	return f
}

// Normalize clamps paging into [1, MaxPageSize]
func (f Filter) Normalize() Filter {
	f.Page, f.PageSize = PageOf(f.Page, f.PageSize)
	return f
}

// Offset returns the row offset of the page
func (f Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// PageOf normalizes a requested page and page size
func PageOf(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case size < 1:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return page, size
}
