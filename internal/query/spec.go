// Package query holds the declarative filter specification shared by the
// local and remote adapters. Each repository search builds one Spec and
// renders it twice: once as the row-page predicate and once for the matching
// count, so the two can never drift apart. The adapters supply their own
// column spellings; the Spec owns the combination semantics: AND across all
// supplied filters, OR across keyword columns, exact tag coverage via a
// count-distinct subquery, and limit/offset pagination.
package query

import (
	"fmt"
	"strings"
)

// DefaultLimit applies when a Spec carries no explicit page limit. It
// matches model.DefaultPageLimit.
const DefaultLimit = 50

// Equal is one exact-match predicate.
type Equal struct {
	Column string
	Value  any
}

// TagMatch configures the exact-coverage tag predicate. An entity matches
// only when its count of distinct requested tags equals the size of the
// requested set.
type TagMatch struct {
	// Table is the join table, e.g. "review_tags".
	Table string
	// EntityColumn is the join table's entity reference, e.g. "review_id".
	EntityColumn string
	// IDExpr is the base query's entity id expression, e.g. "r.id" for SQL
	// or "record::id(id)" for SurrealQL.
	IDExpr string
	Tags   []string
}

// Spec is one search's complete filter set.
type Spec struct {
	// Keyword matches case-insensitively as a substring of any of
	// KeywordColumns (OR semantics across columns).
	Keyword        string
	KeywordColumns []string
	// Equals apply in order, each as column = value.
	Equals []Equal
	// MinRating is an inclusive lower bound on MinRatingColumn.
	MinRating       *int
	MinRatingColumn string
	// Tags, when it has entries, applies exact-coverage matching.
	Tags *TagMatch
	// Extra predicates are appended verbatim; the adapter owns their
	// syntax and any variables they reference.
	Extra []string

	// OrderBy is the backend-spelled ordering clause body, e.g.
	// "r.created_at DESC" or "name ASC".
	OrderBy string
	Limit   int
	Offset  int
}

// Eq appends an exact-match predicate and returns the spec for chaining.
func (s *Spec) Eq(column string, value any) *Spec {
	s.Equals = append(s.Equals, Equal{Column: column, Value: value})
	return s
}

// SQL renders the WHERE clause and its ordered arguments for database/sql
// placeholders. The same clause and arguments serve both the page query and
// the count query. An empty filter set renders an empty clause.
func (s *Spec) SQL() (where string, args []any) {
	var conds []string

	if s.Keyword != "" && len(s.KeywordColumns) > 0 {
		kw := strings.ToLower(s.Keyword)
		parts := make([]string, 0, len(s.KeywordColumns))
		for _, col := range s.KeywordColumns {
			parts = append(parts, fmt.Sprintf("instr(lower(coalesce(%s, '')), ?) > 0", col))
			args = append(args, kw)
		}
		conds = append(conds, "("+strings.Join(parts, " OR ")+")")
	}

	for _, eq := range s.Equals {
		conds = append(conds, eq.Column+" = ?")
		args = append(args, eq.Value)
	}

	if s.MinRating != nil {
		conds = append(conds, s.MinRatingColumn+" >= ?")
		args = append(args, *s.MinRating)
	}

	if s.Tags != nil && len(s.Tags.Tags) > 0 {
		t := s.Tags
		ph := strings.TrimSuffix(strings.Repeat("?,", len(t.Tags)), ",")
		conds = append(conds, fmt.Sprintf(
			"%s IN (SELECT %s FROM %s WHERE tag IN (%s) GROUP BY %s HAVING COUNT(DISTINCT tag) = ?)",
			t.IDExpr, t.EntityColumn, t.Table, ph, t.EntityColumn))
		for _, tag := range t.Tags {
			args = append(args, tag)
		}
		args = append(args, len(t.Tags))
	}

	conds = append(conds, s.Extra...)

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// SQLPage renders the ordering and pagination tail plus its arguments,
// applying the default limit when none is set.
func (s *Spec) SQLPage() (tail string, args []any) {
	limit, offset := s.normalizePage()
	tail = ""
	if s.OrderBy != "" {
		tail = "ORDER BY " + s.OrderBy + " "
	}
	return tail + "LIMIT ? OFFSET ?", []any{limit, offset}
}

// SurrealQL renders the WHERE clause and its named variables. Variable names
// are deterministic so repeated renders are stable.
func (s *Spec) SurrealQL() (where string, vars map[string]any) {
	var conds []string
	vars = map[string]any{}

	if s.Keyword != "" && len(s.KeywordColumns) > 0 {
		vars["keyword"] = strings.ToLower(s.Keyword)
		parts := make([]string, 0, len(s.KeywordColumns))
		for _, col := range s.KeywordColumns {
			parts = append(parts, fmt.Sprintf("string::contains(string::lowercase(%s ?? ''), $keyword)", col))
		}
		conds = append(conds, "("+strings.Join(parts, " OR ")+")")
	}

	for i, eq := range s.Equals {
		name := fmt.Sprintf("eq_%d", i)
		conds = append(conds, fmt.Sprintf("%s = $%s", eq.Column, name))
		vars[name] = eq.Value
	}

	if s.MinRating != nil {
		conds = append(conds, s.MinRatingColumn+" >= $min_rating")
		vars["min_rating"] = *s.MinRating
	}

	if s.Tags != nil && len(s.Tags.Tags) > 0 {
		t := s.Tags
		conds = append(conds, fmt.Sprintf(
			"%s INSIDE (SELECT VALUE %s FROM (SELECT %s, count() AS cnt FROM %s WHERE tag INSIDE $tags GROUP BY %s) WHERE cnt = $tag_count)",
			t.IDExpr, t.EntityColumn, t.EntityColumn, t.Table, t.EntityColumn))
		vars["tags"] = t.Tags
		vars["tag_count"] = len(t.Tags)
	}

	conds = append(conds, s.Extra...)

	if len(conds) == 0 {
		return "", vars
	}
	return "WHERE " + strings.Join(conds, " AND "), vars
}

// SurrealPage renders the ordering and pagination tail, adding $limit and
// $start to vars.
func (s *Spec) SurrealPage(vars map[string]any) string {
	limit, offset := s.normalizePage()
	vars["limit"] = limit
	vars["start"] = offset
	tail := ""
	if s.OrderBy != "" {
		tail = "ORDER BY " + s.OrderBy + " "
	}
	return tail + "LIMIT $limit START $start"
}

func (s *Spec) normalizePage() (limit, offset int) {
	limit = s.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset = s.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
