package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/travelog/api/internal/model"
)

func TestReviews_CreateHydratesEverything(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := createTestMember(t, s, "a@x.com", "island-walker")
	p := createTestPlace(t, s, "Seongsan Ilchulbong", "Jeju")

	r := createTestReview(t, s, m.ID, &p.ID, "Seongsan", 5, []string{"sunrise", "ramp"})

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, 5, r.Rating)
	assert.Equal(t, []string{"ramp", "sunrise"}, r.Tags, "tags come back sorted")
	require.NotNil(t, r.Author)
	assert.Equal(t, "island-walker", r.Author.Nickname)
	require.NotNil(t, r.Place)
	assert.Equal(t, "Seongsan Ilchulbong", r.Place.Name)
	assert.Equal(t, "Jeju", r.Place.Region)

	found, err := s.Reviews().FindByID(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, r.Tags, found.Tags)
}

func TestReviews_RatingBoundsEnforced(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := createTestMember(t, s, "a@x.com", "island-walker")

	for _, rating := range []int{0, 6, -1} {
		_, err := s.Reviews().Create(ctx, model.CreateReviewParams{
			MemberID: m.ID,
			Location: "Seongsan",
			Rating:   rating,
		})
		assert.Error(t, err, "rating %d must be rejected", rating)
	}
}

func TestReviews_SearchTagExactCoverage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := createTestMember(t, s, "a@x.com", "island-walker")
	both := createTestReview(t, s, m.ID, nil, "Seongsan", 5, []string{"ramp", "sunrise"})
	createTestReview(t, s, m.ID, nil, "Hallasan", 4, []string{"ramp"})
	createTestReview(t, s, m.ID, nil, "Udo", 3, []string{"sunrise", "cafe"})

	// A single tag matches every review carrying it.
	res, err := s.Reviews().Search(ctx, model.ReviewFilter{Tags: []string{"ramp"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)

	// Multiple tags require the full set on one review.
	res, err = s.Reviews().Search(ctx, model.ReviewFilter{Tags: []string{"ramp", "sunrise"}})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, both.ID, res.Items[0].ID)

	// No review carries both ramp and cafe.
	res, err = s.Reviews().Search(ctx, model.ReviewFilter{Tags: []string{"ramp", "cafe"}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	assert.Empty(t, res.Items)
}

func TestReviews_SearchKeywordRatingAndFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := createTestMember(t, s, "a@x.com", "island-walker")
	other := createTestMember(t, s, "b@x.com", "reef-diver")
	p := createTestPlace(t, s, "Seongsan Ilchulbong", "Jeju")

	createTestReview(t, s, m.ID, &p.ID, "Seongsan sunrise peak", 5, nil)
	createTestReview(t, s, m.ID, nil, "Hallasan trail", 3, nil)
	createTestReview(t, s, other.ID, nil, "Seongsan at dusk", 4, nil)

	res, err := s.Reviews().Search(ctx, model.ReviewFilter{Keyword: "SEONGSAN"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total, "keyword matching ignores case")

	res, err = s.Reviews().Search(ctx, model.ReviewFilter{Keyword: "seongsan", MemberID: m.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total, "filters combine with AND")

	res, err = s.Reviews().Search(ctx, model.ReviewFilter{MinRating: intp(4)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total, "minimum rating is inclusive")

	res, err = s.Reviews().Search(ctx, model.ReviewFilter{PlaceID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
}

func TestReviews_SearchOrdersNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := createTestMember(t, s, "a@x.com", "island-walker")
	first := createTestReview(t, s, m.ID, nil, "first", 3, nil)
	time.Sleep(2 * time.Millisecond)
	second := createTestReview(t, s, m.ID, nil, "second", 3, nil)

	res, err := s.Reviews().Search(ctx, model.ReviewFilter{})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, second.ID, res.Items[0].ID)
	assert.Equal(t, first.ID, res.Items[1].ID)
}

func TestReviews_UpdateScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := createTestMember(t, s, "a@x.com", "owner")
	intruder := createTestMember(t, s, "b@x.com", "intruder")
	r := createTestReview(t, s, owner.ID, nil, "Seongsan", 5, []string{"ramp"})

	// A non-owner's update affects nothing, including tags.
	unchanged, err := s.Reviews().Update(ctx, r.ID, intruder.ID, model.ReviewUpdate{
		Location: strp("hijacked"),
		Tags:     []string{"hijack"},
	})
	require.NoError(t, err)
	require.NotNil(t, unchanged)
	assert.Equal(t, "Seongsan", unchanged.Location)
	assert.Equal(t, []string{"ramp"}, unchanged.Tags)

	// The owner's update lands; nil Tags keeps the existing set.
	updated, err := s.Reviews().Update(ctx, r.ID, owner.ID, model.ReviewUpdate{
		Location: strp("Seongsan Ilchulbong"),
		Rating:   intp(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "Seongsan Ilchulbong", updated.Location)
	assert.Equal(t, 4, updated.Rating)
	assert.Equal(t, []string{"ramp"}, updated.Tags)

	// A non-nil empty Tags clears the set.
	updated, err = s.Reviews().Update(ctx, r.ID, owner.ID, model.ReviewUpdate{Tags: []string{}})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)
}

func TestReviews_DeleteScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := createTestMember(t, s, "a@x.com", "owner")
	intruder := createTestMember(t, s, "b@x.com", "intruder")
	r := createTestReview(t, s, owner.ID, nil, "Seongsan", 5, nil)

	require.NoError(t, s.Reviews().Delete(ctx, r.ID, intruder.ID))
	still, err := s.Reviews().FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.NotNil(t, still, "non-owner delete is a no-op")

	require.NoError(t, s.Reviews().Delete(ctx, r.ID, owner.ID))
	gone, err := s.Reviews().FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestReviews_PlaceDeleteClearsReference(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := createTestMember(t, s, "a@x.com", "island-walker")
	p := createTestPlace(t, s, "Seongsan Ilchulbong", "Jeju")
	r := createTestReview(t, s, m.ID, &p.ID, "Seongsan", 5, nil)

	require.NoError(t, s.Places().Delete(ctx, p.ID))

	kept, err := s.Reviews().FindByID(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, kept, "review outlives its place")
	assert.Nil(t, kept.PlaceID)
	assert.Nil(t, kept.Place)
}

func TestReviews_HiddenWhenAuthorWithdrawn(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := createTestMember(t, s, "a@x.com", "island-walker")
	r := createTestReview(t, s, m.ID, nil, "Seongsan", 5, nil)

	require.NoError(t, s.Members().Delete(ctx, m.ID))

	hidden, err := s.Reviews().FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, hidden, "withdrawn author suppresses the review")

	res, err := s.Reviews().Search(ctx, model.ReviewFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total, "suppressed rows are excluded from totals too")
}

func TestReviews_IncrementLikes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := createTestMember(t, s, "a@x.com", "island-walker")
	r := createTestReview(t, s, m.ID, nil, "Seongsan", 5, nil)

	require.NoError(t, s.Reviews().IncrementLikes(ctx, r.ID))
	require.NoError(t, s.Reviews().IncrementLikes(ctx, r.ID))

	found, err := s.Reviews().FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.LikeCount)
}
