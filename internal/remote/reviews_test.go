package remote

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/travelog/api/internal/model"
)

func reviewRow(id string) map[string]interface{} {
	return map[string]interface{}{
		"id":         "reviews:" + id,
		"member_id":  "m1",
		"location":   "Seongsan",
		"rating":     float64(5),
		"comment":    "great sunrise",
		"like_count": float64(0),
		"tags":       []interface{}{"ramp", "sunrise"},
		"author": map[string]interface{}{
			"nickname": "island-walker",
		},
		"place": map[string]interface{}{
			"id":     "places:p1",
			"name":   "Seongsan Ilchulbong",
			"region": "Jeju",
		},
	}
}

func TestRemoteReviews_CreateWritesTagsAtomically(t *testing.T) {
	db := &mockDB{
		queryOneFn: func(string, map[string]interface{}) (interface{}, error) {
			return reviewRow("r1"), nil
		},
	}
	s := New(db)

	r, err := s.Reviews().Create(context.Background(), model.CreateReviewParams{
		MemberID: "m1",
		Location: "Seongsan",
		Rating:   5,
		Comment:  "great sunrise",
		Tags:     []string{"ramp", "sunrise"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ramp", "sunrise"}, r.Tags)
	require.NotNil(t, r.Author)
	assert.Equal(t, "island-walker", r.Author.Nickname)
	require.NotNil(t, r.Place)
	assert.Equal(t, "p1", r.Place.ID)

	writes := db.callsTo("Execute")
	require.Len(t, writes, 1, "row and tags go in one round trip")
	ql := writes[0].query
	assert.Contains(t, ql, "BEGIN TRANSACTION")
	assert.Contains(t, ql, "CREATE type::thing('reviews', $id)")
	assert.Contains(t, ql, "CREATE review_tags CONTENT { review_id: $id, tag: $tag_0 }")
	assert.Contains(t, ql, "COMMIT TRANSACTION")
	assert.Equal(t, "ramp", writes[0].vars["tag_0"])
	assert.Equal(t, "sunrise", writes[0].vars["tag_1"])
}

func TestRemoteReviews_SearchQueryShape(t *testing.T) {
	db := &mockDB{
		queryOneFn: func(string, map[string]interface{}) (interface{}, error) {
			return map[string]interface{}{"total": float64(2)}, nil
		},
		queryFn: func(string, map[string]interface{}) ([]interface{}, error) {
			return queryResults(reviewRow("r1"), reviewRow("r2")), nil
		},
	}
	s := New(db)

	min := 4
	res, err := s.Reviews().Search(context.Background(), model.ReviewFilter{
		Keyword:   "Seongsan",
		MemberID:  "m1",
		MinRating: &min,
		Tags:      []string{"ramp", "sunrise"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "r1", res.Items[0].ID)

	count := db.callsTo("QueryOne")[0]
	assert.Contains(t, count.query, "GROUP ALL")
	assert.Contains(t, count.query, "status = 'ACTIVE'", "withdrawn authors are excluded from counts")
	assert.Equal(t, "seongsan", count.vars["keyword"])
	assert.Equal(t, "m1", count.vars["eq_0"])
	assert.Equal(t, 4, count.vars["min_rating"])
	assert.Equal(t, []string{"ramp", "sunrise"}, count.vars["tags"])
	assert.Equal(t, 2, count.vars["tag_count"])

	page := db.callsTo("Query")[0]
	assert.Contains(t, page.query, "ORDER BY created_at DESC")
	assert.Contains(t, page.query, "LIMIT $limit START $start")
	assert.Contains(t, page.query, "cnt = $tag_count", "tag filters require exact coverage")
}

func TestRemoteReviews_UpdateNonOwnerSkipsTagReplacement(t *testing.T) {
	db := &mockDB{
		queryFn: func(string, map[string]interface{}) ([]interface{}, error) {
			return queryResults(), nil
		},
		queryOneFn: func(string, map[string]interface{}) (interface{}, error) {
			return reviewRow("r1"), nil
		},
	}
	s := New(db)

	r, err := s.Reviews().Update(context.Background(), "r1", "intruder", model.ReviewUpdate{
		Location: strp("hijacked"),
		Tags:     []string{"hijack"},
	})
	require.NoError(t, err)
	require.NotNil(t, r)

	update := db.callsTo("Query")[0]
	assert.Contains(t, update.query, "WHERE member_id = $member_id")
	assert.Empty(t, db.callsTo("Execute"), "no matched row means no tag rewrite")
}

func TestRemoteReviews_UpdateOwnerReplacesTags(t *testing.T) {
	db := &mockDB{
		queryFn: func(string, map[string]interface{}) ([]interface{}, error) {
			return queryResults(reviewRow("r1")), nil
		},
		queryOneFn: func(string, map[string]interface{}) (interface{}, error) {
			return reviewRow("r1"), nil
		},
	}
	s := New(db)

	_, err := s.Reviews().Update(context.Background(), "r1", "m1", model.ReviewUpdate{
		Tags: []string{"cafe"},
	})
	require.NoError(t, err)

	writes := db.callsTo("Execute")
	require.Len(t, writes, 1)
	assert.Contains(t, writes[0].query, "DELETE review_tags WHERE review_id = $id")
	assert.Contains(t, writes[0].query, "tag: $tag_0")
	assert.Equal(t, "cafe", writes[0].vars["tag_0"])
}

func TestRemoteReviews_DeleteScopedToOwner(t *testing.T) {
	// The delete matched nothing: tags stay.
	db := &mockDB{
		queryFn: func(string, map[string]interface{}) ([]interface{}, error) {
			return queryResults(), nil
		},
	}
	s := New(db)
	require.NoError(t, s.Reviews().Delete(context.Background(), "r1", "intruder"))
	assert.Empty(t, db.callsTo("Execute"))

	// The delete matched: orphaned tag rows are swept.
	db = &mockDB{
		queryFn: func(query string, vars map[string]interface{}) ([]interface{}, error) {
			if !strings.Contains(query, "RETURN BEFORE") {
				t.Errorf("owner check relies on RETURN BEFORE, got %q", query)
			}
			return queryResults(reviewRow("r1")), nil
		},
	}
	s = New(db)
	require.NoError(t, s.Reviews().Delete(context.Background(), "r1", "m1"))

	writes := db.callsTo("Execute")
	require.Len(t, writes, 1)
	assert.Contains(t, writes[0].query, "DELETE review_tags WHERE review_id = $id")
}

func TestRemoteReviews_IncrementLikes(t *testing.T) {
	db := &mockDB{}
	s := New(db)

	require.NoError(t, s.Reviews().IncrementLikes(context.Background(), "r1"))

	writes := db.callsTo("Execute")
	require.Len(t, writes, 1)
	assert.Contains(t, writes[0].query, "SET like_count += 1")
}

func strp(s string) *string { return &s }
