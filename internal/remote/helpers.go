package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/forgo/travelog/api/internal/database"
)

// recordKey extracts the bare id part from a record id value. Stored
// references are already bare strings; `id` fields on SELECT * come back as
// models.RecordID.
func recordKey(v interface{}) string {
	switch t := v.(type) {
	case string:
		if i := strings.IndexByte(t, ':'); i >= 0 {
			return strings.Trim(t[i+1:], "⟨⟩")
		}
		return t
	case models.RecordID:
		return fmt.Sprintf("%v", t.ID)
	case *models.RecordID:
		if t != nil {
			return fmt.Sprintf("%v", t.ID)
		}
	}
	return ""
}

// statementResult unwraps one statement's result list from a Query response.
func statementResult(results []interface{}, idx int) []interface{} {
	if idx >= len(results) {
		return nil
	}
	resp, ok := results[idx].(map[string]interface{})
	if !ok {
		return nil
	}
	list, _ := resp["result"].([]interface{})
	return list
}

// statementRows is statementResult with each entry cast to a record map.
func statementRows(results []interface{}, idx int) []map[string]interface{} {
	raw := statementResult(results, idx)
	rows := make([]map[string]interface{}, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]interface{}); ok {
			rows = append(rows, m)
		}
	}
	return rows
}

// countTotal runs a `SELECT count() AS total ... GROUP ALL` query. GROUP ALL
// yields no row at all when nothing matches, which QueryOne surfaces as
// ErrNotFound; that maps to zero here.
func countTotal(ctx context.Context, db database.Database, ql string, vars map[string]interface{}) (int, error) {
	res, err := db.QueryOne(ctx, ql, vars)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if m, ok := res.(map[string]interface{}); ok {
		return getInt(m, "total"), nil
	}
	return 0, nil
}

// tagStatements renders one CREATE statement per tag against the given join
// table, binding each tag to its own variable. The caller's $id variable
// names the owning entity.
func tagStatements(table, column string, tags []string, vars map[string]interface{}) string {
	var b strings.Builder
	for i, tag := range tags {
		name := fmt.Sprintf("tag_%d", i)
		vars[name] = tag
		fmt.Fprintf(&b, "CREATE %s CONTENT { %s: $id, tag: $%s };\n", table, column, name)
	}
	return b.String()
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getStringPtr(m map[string]interface{}, key string) *string {
	if v, ok := m[key].(string); ok && v != "" {
		return &v
	}
	return nil
}

func getInt(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case float32:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	}
	return 0
}

func getFloat(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func getBool(m map[string]interface{}, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

func getTime(m map[string]interface{}, key string) time.Time {
	switch v := m[key].(type) {
	case time.Time:
		return v
	case models.CustomDateTime:
		return v.Time
	case *models.CustomDateTime:
		if v != nil {
			return v.Time
		}
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func getStringSlice(m map[string]interface{}, key string) []string {
	v, ok := m[key].([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(v))
	for _, item := range v {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func getMap(m map[string]interface{}, key string) map[string]interface{} {
	if v, ok := m[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}
