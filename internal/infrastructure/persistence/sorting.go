package persistence

import "strings"

// sortColumns whitelists the columns a list may be ordered by. Anything else
// falls back to the default column, so ORDER BY never sees caller text.
type sortColumns struct {
	allowed  map[string]struct{}
	fallback string
}

func newSortColumns(fallback string, columns ...string) sortColumns {
	s := sortColumns{allowed: make(map[string]struct{}, len(columns)+1), fallback: fallback}
	s.allowed[fallback] = struct{}{}
	for _, c := range columns {
		s.allowed[c] = struct{}{}
	}
	return s
}

func (s sortColumns) column(requested string) string {
	requested = strings.TrimSpace(requested)
	if _, ok := s.allowed[requested]; ok {
		return requested
	}
	return s.fallback
}

// clause returns "<column> ASC|DESC"; the direction defaults to DESC
func (s sortColumns) clause(orderBy, orderDir string) string {
	return s.column(orderBy) + " " + sortDirection(orderDir)
}

func sortDirection(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

var (
	templateSort = newSortColumns("created_at", "updated_at", "name", "category", "template_type")
	letterSort   = newSortColumns("created_at", "member_id", "template_id", "file_name")
)
