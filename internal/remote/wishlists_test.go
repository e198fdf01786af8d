package remote

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/travelog/api/internal/database"
	"github.com/forgo/travelog/api/internal/model"
	"github.com/forgo/travelog/api/internal/repository"
)

func TestRemoteWishlists_InvalidTargetType(t *testing.T) {
	s := New(&mockDB{})
	ctx := context.Background()
	bad := model.TargetType("CAFE")

	_, err := s.Wishlists().Add(ctx, "m1", bad, "t1")
	assert.ErrorIs(t, err, repository.ErrInvalidTargetType)
	assert.ErrorIs(t, s.Wishlists().Remove(ctx, "m1", bad, "t1"), repository.ErrInvalidTargetType)
	_, err = s.Wishlists().IsWishlisted(ctx, "m1", bad, "t1")
	assert.ErrorIs(t, err, repository.ErrInvalidTargetType)
	_, err = s.Wishlists().TargetIDs(ctx, "m1", bad)
	assert.ErrorIs(t, err, repository.ErrInvalidTargetType)
	_, err = s.Wishlists().List(ctx, "m1", bad, model.Page{})
	assert.ErrorIs(t, err, repository.ErrInvalidTargetType)
}

func TestRemoteWishlists_Add(t *testing.T) {
	db := &mockDB{
		queryOneFn: func(query string, vars map[string]interface{}) (interface{}, error) {
			return map[string]interface{}{
				"id":          "wishlists:" + vars["id"].(string),
				"member_id":   vars["member_id"],
				"target_type": vars["target_type"],
				"target_id":   vars["target_id"],
			}, nil
		},
	}
	s := New(db)

	w, err := s.Wishlists().Add(context.Background(), "m1", model.TargetPlace, "p1")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, model.TargetPlace, w.TargetType)
	assert.Equal(t, "p1", w.TargetID)
}

func TestRemoteWishlists_AddDuplicate(t *testing.T) {
	db := &mockDB{
		queryOneFn: func(string, map[string]interface{}) (interface{}, error) {
			return nil, fmt.Errorf("%w: index `idx_wishlists_unique` already contains ['m1', 'PLACE', 'p1']", database.ErrDuplicate)
		},
	}
	s := New(db)

	_, err := s.Wishlists().Add(context.Background(), "m1", model.TargetPlace, "p1")
	assert.ErrorIs(t, err, repository.ErrAlreadyWishlisted)
}

func TestRemoteWishlists_TargetIDs(t *testing.T) {
	db := &mockDB{
		queryFn: func(string, map[string]interface{}) ([]interface{}, error) {
			return queryResults("p2", "p1"), nil
		},
	}
	s := New(db)

	ids, err := s.Wishlists().TargetIDs(context.Background(), "m1", model.TargetPlace)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids)

	reads := db.callsTo("Query")
	require.Len(t, reads, 1)
	assert.Contains(t, reads[0].query, "ORDER BY created_at DESC")
}

func wishlistReviewRow(wid, rid string, hydrated bool) map[string]interface{} {
	row := map[string]interface{}{
		"id":          "wishlists:" + wid,
		"member_id":   "m1",
		"target_type": "REVIEW",
		"target_id":   rid,
	}
	if hydrated {
		row["review"] = reviewRow(rid)
	}
	return row
}

func TestRemoteWishlists_ListPagesOverVisibleRowsOnly(t *testing.T) {
	db := &mockDB{
		queryOneFn: func(string, map[string]interface{}) (interface{}, error) {
			return map[string]interface{}{"total": float64(2)}, nil
		},
		queryFn: func(string, map[string]interface{}) ([]interface{}, error) {
			return queryResults(
				wishlistReviewRow("w1", "r1", true),
				wishlistReviewRow("w2", "r2", true),
			), nil
		},
	}
	s := New(db)

	res, err := s.Wishlists().List(context.Background(), "m1", model.TargetReview, model.Page{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Items, 2, "a full page of visible rows fills every slot")
	assert.Equal(t, "r1", res.Items[0].Review.ID)
	assert.Equal(t, "r2", res.Items[1].Review.ID)

	// Page and count share the visibility predicate, so hidden targets never
	// consume page slots and pagination matches the total.
	visibility := "target_id INSIDE (SELECT VALUE record::id(id) FROM reviews WHERE " + activeAuthors + ")"
	count := db.callsTo("QueryOne")[0]
	page := db.callsTo("Query")[0]
	assert.Contains(t, count.query, "target_type = 'REVIEW'")
	assert.Contains(t, squash(count.query), squash(visibility))
	assert.Contains(t, squash(page.query), squash(visibility))
	assert.Contains(t, page.query, "LIMIT $limit START $start")
}

func TestRemoteWishlists_ListDropsRowsThatLostTheirTarget(t *testing.T) {
	// The target disappeared between the count and page round trips: the row
	// comes back without its nested record and must not surface half-empty.
	db := &mockDB{
		queryOneFn: func(string, map[string]interface{}) (interface{}, error) {
			return map[string]interface{}{"total": float64(2)}, nil
		},
		queryFn: func(string, map[string]interface{}) ([]interface{}, error) {
			return queryResults(
				wishlistReviewRow("w1", "r1", true),
				wishlistReviewRow("w2", "r2", false),
			), nil
		},
	}
	s := New(db)

	res, err := s.Wishlists().List(context.Background(), "m1", model.TargetReview, model.Page{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "r1", res.Items[0].Review.ID)
}

// squash collapses whitespace so query-shape assertions survive the layout of
// multi-line query literals.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
