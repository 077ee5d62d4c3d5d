package postgres

import (
	"fmt"
	"strings"

	"github.com/flexprice/leasebill/internal/types"
)

// where accumulates positional filter clauses ($1, $2, ...)
type where struct {
	clauses []string
	args    []interface{}
}

func newWhere() *where {
	return &where{}
}

// add appends a clause containing a single ? placeholder
func (w *where) add(clause string, arg interface{}) *where {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, strings.Replace(clause, "?", fmt.Sprintf("$%d", len(w.args)), 1))
	return w
}

// in appends `column IN (...)` for a non-empty list
func (w *where) in(column string, values []string) *where {
	if len(values) == 0 {
		return w
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		w.args = append(w.args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(w.args))
	}
	w.clauses = append(w.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	return w
}

func (w *where) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// page renders ORDER BY, LIMIT and OFFSET for a query filter
func page(f *types.QueryFilter, orderColumn string) string {
	order := "DESC"
	if f.GetOrder() == types.OrderAsc {
		order = "ASC"
	}
	s := fmt.Sprintf(" ORDER BY %s %s, id %s", orderColumn, order, order)
	if f.IsUnlimited() {
		return s
	}
	return s + fmt.Sprintf(" LIMIT %d OFFSET %d", f.GetLimit(), f.GetOffset())
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
