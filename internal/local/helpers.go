package local

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// Timestamps are stored as RFC 3339 text, which sorts chronologically.
const timeLayout = time.RFC3339Nano

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return time.Time{}
		}
	}
	return t
}

// nullable converts an optional string into a driver value.
func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// isUniqueViolation reports whether err is a unique-constraint failure on
// the index identified by hint, e.g. "members.email".
func isUniqueViolation(err error, hint string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, hint)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func joinSets(sets []string) string {
	return strings.Join(sets, ", ")
}

// loadTagSets fetches the tag sets for a batch of entity ids from one join
// table, keyed by entity id. Missing entries simply have no tags.
func loadTagSets(ctx context.Context, db *sql.DB, table, entityCol string, ids []string) (map[string][]string, error) {
	if len(ids) == 0 {
		return map[string][]string{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := "SELECT " + entityCol + ", tag FROM " + table +
		" WHERE " + entityCol + " IN (" + placeholders(len(ids)) + ") ORDER BY tag"
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sets := make(map[string][]string, len(ids))
	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, err
		}
		sets[id] = append(sets[id], tag)
	}
	return sets, rows.Err()
}

// replaceTagSet swaps an entity's complete tag set inside the given
// transaction. Duplicate tags in the request collapse to one row.
func replaceTagSet(ctx context.Context, tx *sql.Tx, table, entityCol, entityID string, tags []string) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM "+table+" WHERE "+entityCol+" = ?", entityID); err != nil {
		return err
	}
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO "+table+" ("+entityCol+", tag) VALUES (?, ?)",
			entityID, tag); err != nil {
			return err
		}
	}
	return nil
}
