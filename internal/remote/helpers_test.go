package remote

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/forgo/travelog/api/internal/database"
)

func TestRecordKey(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"bare string", "abc-123", "abc-123"},
		{"table prefix", "reviews:abc-123", "abc-123"},
		{"bracketed id", "reviews:⟨abc-123⟩", "abc-123"},
		{"record id struct", models.RecordID{Table: "reviews", ID: "abc-123"}, "abc-123"},
		{"record id pointer", &models.RecordID{Table: "reviews", ID: "abc-123"}, "abc-123"},
		{"nil pointer", (*models.RecordID)(nil), ""},
		{"unsupported", 42, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recordKey(tt.in); got != tt.want {
				t.Errorf("recordKey(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTagStatements(t *testing.T) {
	vars := map[string]interface{}{"id": "r1"}
	ql := tagStatements("review_tags", "review_id", []string{"sunrise", "ramp"}, vars)

	if !strings.Contains(ql, "CREATE review_tags CONTENT { review_id: $id, tag: $tag_0 };") {
		t.Errorf("missing first tag statement in %q", ql)
	}
	if !strings.Contains(ql, "tag: $tag_1") {
		t.Errorf("missing second tag statement in %q", ql)
	}
	if vars["tag_0"] != "sunrise" || vars["tag_1"] != "ramp" {
		t.Errorf("tag vars not bound: %v", vars)
	}

	if got := tagStatements("review_tags", "review_id", nil, vars); got != "" {
		t.Errorf("expected no statements for empty tag set, got %q", got)
	}
}

func TestCountTotal(t *testing.T) {
	db := &mockDB{queryOneFn: func(string, map[string]interface{}) (interface{}, error) {
		return map[string]interface{}{"total": float64(7)}, nil
	}}
	total, err := countTotal(context.Background(), db, "SELECT count() AS total FROM reviews GROUP ALL", nil)
	if err != nil || total != 7 {
		t.Fatalf("countTotal = %d, %v", total, err)
	}

	// GROUP ALL yields no row when nothing matches; that is zero, not an error.
	db = &mockDB{queryOneFn: func(string, map[string]interface{}) (interface{}, error) {
		return nil, database.ErrNotFound
	}}
	total, err = countTotal(context.Background(), db, "SELECT count() AS total FROM reviews GROUP ALL", nil)
	if err != nil || total != 0 {
		t.Fatalf("empty countTotal = %d, %v", total, err)
	}
}

func TestGetTime(t *testing.T) {
	want := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	cases := []map[string]interface{}{
		{"at": want},
		{"at": models.CustomDateTime{Time: want}},
		{"at": &models.CustomDateTime{Time: want}},
		{"at": "2026-03-14T09:26:53Z"},
	}
	for i, m := range cases {
		if got := getTime(m, "at"); !got.Equal(want) {
			t.Errorf("case %d: getTime = %v, want %v", i, got, want)
		}
	}
	if got := getTime(map[string]interface{}{}, "at"); !got.IsZero() {
		t.Errorf("missing key should yield zero time, got %v", got)
	}
}

func TestGetStringSlice(t *testing.T) {
	m := map[string]interface{}{"tags": []interface{}{"ramp", "sunrise"}}
	got := getStringSlice(m, "tags")
	if len(got) != 2 || got[0] != "ramp" {
		t.Errorf("getStringSlice = %v", got)
	}

	empty := getStringSlice(map[string]interface{}{}, "tags")
	if empty == nil || len(empty) != 0 {
		t.Errorf("missing key should yield an empty non-nil slice, got %v", empty)
	}
}

func TestStatementRows(t *testing.T) {
	results := queryResults(
		map[string]interface{}{"id": "a"},
		map[string]interface{}{"id": "b"},
	)
	rows := statementRows(results, 0)
	if len(rows) != 2 || rows[1]["id"] != "b" {
		t.Errorf("statementRows = %v", rows)
	}

	if rows := statementRows(results, 5); len(rows) != 0 {
		t.Errorf("out-of-range statement should yield no rows, got %v", rows)
	}
}
