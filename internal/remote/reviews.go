package remote

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/forgo/travelog/api/internal/database"
	"github.com/forgo/travelog/api/internal/model"
	"github.com/forgo/travelog/api/internal/query"
)

type reviewRepo struct {
	s *Store
}

// activeAuthors restricts member-authored rows to those whose author profile
// is still ACTIVE. Soft-deleted members keep their rows but every read
// through this predicate suppresses them.
const activeAuthors = `member_id INSIDE (SELECT VALUE record::id(id) FROM profiles WHERE status = 'ACTIVE')`

// reviewFields hydrates the author summary, the ordered tag set and the
// optional place summary in the same round trip as the row itself.
const reviewFields = `*,
	(SELECT nickname, profile_image FROM type::thing('profiles', $parent.member_id))[0] AS author,
	(SELECT VALUE tag FROM review_tags WHERE review_id = record::id($parent.id) ORDER BY tag) AS tags,
	(SELECT record::id(id) AS id, name, region FROM places WHERE record::id(id) = $parent.place_id)[0] AS place`

const reviewCreateQL = `
CREATE type::thing('reviews', $id) CONTENT {
	member_id: $member_id,
	place_id: $place_id,
	location: $location,
	rating: $rating,
	comment: $comment,
	image_url: $image_url,
	like_count: 0,
	reply_count: 0,
	created_at: time::now(),
	updated_at: time::now()
};`

func (r *reviewRepo) Create(ctx context.Context, params model.CreateReviewParams) (*model.Review, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	vars := map[string]interface{}{
		"id":        id,
		"member_id": params.MemberID,
		"place_id":  params.PlaceID,
		"location":  params.Location,
		"rating":    params.Rating,
		"comment":   params.Comment,
		"image_url": params.ImageURL,
	}
	ql := "BEGIN TRANSACTION;\n" + reviewCreateQL +
		tagStatements("review_tags", "review_id", params.Tags, vars) +
		"COMMIT TRANSACTION;"
	if err := db.Execute(ctx, ql, vars); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *reviewRepo) FindByID(ctx context.Context, id string) (*model.Review, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}
	res, err := db.QueryOne(ctx,
		`SELECT `+reviewFields+` FROM type::thing('reviews', $id) WHERE `+activeAuthors,
		map[string]interface{}{"id": id})
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m, ok := res.(map[string]interface{})
	if !ok {
		return nil, database.ErrQuery
	}
	return parseReview(m), nil
}

func (r *reviewRepo) Search(ctx context.Context, filter model.ReviewFilter) (*model.SearchResult[model.Review], error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}

	spec := &query.Spec{
		Keyword:         filter.Keyword,
		KeywordColumns:  []string{"location", "comment"},
		MinRating:       filter.MinRating,
		MinRatingColumn: "rating",
		Extra:           []string{activeAuthors},
		OrderBy:         "created_at DESC",
	}
	if filter.MemberID != "" {
		spec.Eq("member_id", filter.MemberID)
	}
	if filter.PlaceID != "" {
		spec.Eq("place_id", filter.PlaceID)
	}
	if len(filter.Tags) > 0 {
		spec.Tags = &query.TagMatch{
			Table:        "review_tags",
			EntityColumn: "review_id",
			IDExpr:       "record::id(id)",
			Tags:         filter.Tags,
		}
	}
	spec.Limit, spec.Offset = filter.Page.Normalize()

	where, vars := spec.SurrealQL()
	total, err := countTotal(ctx, db,
		`SELECT count() AS total FROM reviews `+where+` GROUP ALL`, vars)
	if err != nil {
		return nil, err
	}

	tail := spec.SurrealPage(vars)
	results, err := db.Query(ctx,
		`SELECT `+reviewFields+` FROM reviews `+where+` `+tail, vars)
	if err != nil {
		return nil, err
	}

	rows := statementRows(results, 0)
	items := make([]model.Review, 0, len(rows))
	for _, row := range rows {
		items = append(items, *parseReview(row))
	}
	return &model.SearchResult[model.Review]{Items: items, Total: total}, nil
}

func (r *reviewRepo) Update(ctx context.Context, id, memberID string, update model.ReviewUpdate) (*model.Review, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	sets := []string{"updated_at = time::now()"}
	vars := map[string]interface{}{"id": id, "member_id": memberID}
	if update.Location != nil {
		sets = append(sets, "location = $location")
		vars["location"] = *update.Location
	}
	if update.Rating != nil {
		sets = append(sets, "rating = $rating")
		vars["rating"] = *update.Rating
	}
	if update.Comment != nil {
		sets = append(sets, "comment = $comment")
		vars["comment"] = *update.Comment
	}
	if update.ImageURL != nil {
		sets = append(sets, "image_url = $image_url")
		vars["image_url"] = *update.ImageURL
	}

	// Ownership is enforced by the WHERE clause; the returned row set tells
	// whether anything matched, gating the tag replacement.
	results, err := db.Query(ctx,
		`UPDATE type::thing('reviews', $id) SET `+strings.Join(sets, ", ")+` WHERE member_id = $member_id`,
		vars)
	if err != nil {
		return nil, err
	}
	affected := len(statementResult(results, 0))

	if affected > 0 && update.Tags != nil {
		tagVars := map[string]interface{}{"id": id}
		ql := "BEGIN TRANSACTION;\nDELETE review_tags WHERE review_id = $id;\n" +
			tagStatements("review_tags", "review_id", update.Tags, tagVars) +
			"COMMIT TRANSACTION;"
		if err := db.Execute(ctx, ql, tagVars); err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

func (r *reviewRepo) Delete(ctx context.Context, id, memberID string) error {
	db, err := r.s.conn()
	if err != nil {
		return err
	}

	results, err := db.Query(ctx,
		`DELETE type::thing('reviews', $id) WHERE member_id = $member_id RETURN BEFORE`,
		map[string]interface{}{"id": id, "member_id": memberID})
	if err != nil {
		return err
	}
	if len(statementResult(results, 0)) == 0 {
		return nil
	}
	return db.Execute(ctx, `DELETE review_tags WHERE review_id = $id`,
		map[string]interface{}{"id": id})
}

func (r *reviewRepo) IncrementLikes(ctx context.Context, id string) error {
	db, err := r.s.conn()
	if err != nil {
		return err
	}
	return db.Execute(ctx, `UPDATE type::thing('reviews', $id) SET like_count += 1`,
		map[string]interface{}{"id": id})
}

func parseReview(m map[string]interface{}) *model.Review {
	out := &model.Review{
		ID:         recordKey(m["id"]),
		MemberID:   getString(m, "member_id"),
		PlaceID:    getStringPtr(m, "place_id"),
		Location:   getString(m, "location"),
		Rating:     getInt(m, "rating"),
		Comment:    getString(m, "comment"),
		ImageURL:   getStringPtr(m, "image_url"),
		LikeCount:  getInt(m, "like_count"),
		ReplyCount: getInt(m, "reply_count"),
		Tags:       getStringSlice(m, "tags"),
		CreatedAt:  getTime(m, "created_at"),
		UpdatedAt:  getTime(m, "updated_at"),
	}
	if author := getMap(m, "author"); author != nil {
		out.Author = &model.AuthorSummary{
			Nickname:     getString(author, "nickname"),
			ProfileImage: getStringPtr(author, "profile_image"),
		}
	}
	if place := getMap(m, "place"); place != nil {
		out.Place = &model.PlaceSummary{
			ID:     recordKey(place["id"]),
			Name:   getString(place, "name"),
			Region: getString(place, "region"),
		}
	}
	return out
}
