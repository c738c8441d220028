package store

import (
	"sort"
	"strings"
)

// DefaultLimit caps list results when the caller does not ask for a page size.
const DefaultLimit = 100

// Filter is a case-insensitive substring match on one permitted column.
type Filter struct {
	Column string
	Value  string
}

// Filters are ANDed together. Build them with NewFilters.
type Filters []Filter

// NewFilters keeps the entries of raw whose key is one of columns and
// returns the rejected keys separately. The result is ordered by column so
// the generated SQL is stable.
func NewFilters(columns []string, raw map[string]string) (Filters, []string) {
	permitted := make(map[string]bool, len(columns))
	for _, c := range columns {
		permitted[c] = true
	}

	var filters Filters
	var ignored []string
	for column, value := range raw {
		if !permitted[column] {
			ignored = append(ignored, column)
			continue
		}
		filters = append(filters, Filter{Column: column, Value: value})
	}

	sort.Slice(filters, func(i, j int) bool { return filters[i].Column < filters[j].Column })
	sort.Strings(ignored)
	return filters, ignored
}

// where renders the filters as a WHERE clause whose first argument is
// numbered from.
func (f Filters) where(d Dialect, from int) (string, []interface{}) {
	if len(f) == 0 {
		return "", nil
	}

	clauses := make([]string, len(f))
	args := make([]interface{}, len(f))
	for i, filter := range f {
		clauses[i] = "CAST(" + filter.Column + " AS TEXT) " + d.likeOperator + " " + d.Placeholder(from+i) + ` ESCAPE '\'`
		args[i] = "%" + escapeLike(filter.Value) + "%"
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes wildcard characters in a filter value match literally.
func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}

// Page selects a window of an ordered listing.
type Page struct {
	Offset int
	Limit  int
}

func (p Page) normalize() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	return p
}
