package local

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/forgo/travelog/api/internal/model"
	"github.com/forgo/travelog/api/internal/query"
)

type reviewRepo struct {
	s *Store
}

// reviewSelect hydrates every review read: author summary from the ACTIVE
// owning member, optional place summary, counters. Rows whose author is
// WITHDRAWN fall out of the inner join and become invisible.
const (
	reviewSelect = `SELECT r.id, r.member_id, r.place_id, r.location, r.rating, r.comment,
		r.image_url, r.like_count, r.reply_count, r.created_at, r.updated_at,
		m.nickname, m.profile_image, p.id, p.name, p.region `

	reviewBase = `FROM reviews r
		JOIN members m ON m.id = r.member_id AND m.status = 'ACTIVE'
		LEFT JOIN places p ON p.id = r.place_id `
)

func (r *reviewRepo) Create(ctx context.Context, params model.CreateReviewParams) (*model.Review, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	ts := now()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO reviews
		(id, member_id, place_id, location, rating, comment, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, params.MemberID, nullable(params.PlaceID), params.Location,
		params.Rating, params.Comment, nullable(params.ImageURL), ts, ts)
	if err == nil {
		err = replaceTagSet(ctx, tx, "review_tags", "review_id", id, params.Tags)
	}
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	r.s.mutated()
	return r.FindByID(ctx, id)
}

func (r *reviewRepo) FindByID(ctx context.Context, id string) (*model.Review, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}
	rev, err := scanReview(db.QueryRowContext(ctx, reviewSelect+reviewBase+`WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tags, err := loadTagSets(ctx, db, "review_tags", "review_id", []string{id})
	if err != nil {
		return nil, err
	}
	rev.Tags = tagsOrEmpty(tags[id])
	return rev, nil
}

func (r *reviewRepo) Search(ctx context.Context, filter model.ReviewFilter) (*model.SearchResult[model.Review], error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}

	spec := &query.Spec{
		Keyword:         filter.Keyword,
		KeywordColumns:  []string{"r.location", "r.comment"},
		MinRating:       filter.MinRating,
		MinRatingColumn: "r.rating",
		OrderBy:         "r.created_at DESC",
	}
	if filter.MemberID != "" {
		spec.Eq("r.member_id", filter.MemberID)
	}
	if filter.PlaceID != "" {
		spec.Eq("r.place_id", filter.PlaceID)
	}
	if len(filter.Tags) > 0 {
		spec.Tags = &query.TagMatch{
			Table:        "review_tags",
			EntityColumn: "review_id",
			IDExpr:       "r.id",
			Tags:         filter.Tags,
		}
	}
	spec.Limit, spec.Offset = filter.Page.Normalize()

	where, args := spec.SQL()
	var total int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) "+reviewBase+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	tail, pageArgs := spec.SQLPage()
	rows, err := db.QueryContext(ctx,
		reviewSelect+reviewBase+where+" "+tail, append(args, pageArgs...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Review, 0)
	ids := make([]string, 0)
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rev)
		ids = append(ids, rev.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := loadTagSets(ctx, db, "review_tags", "review_id", ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Tags = tagsOrEmpty(tags[items[i].ID])
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

	sets := []string{"updated_at = ?"}
	args := []any{now()}
	if update.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *update.Location)
	}
	if update.Rating != nil {
		sets = append(sets, "rating = ?")
		args = append(args, *update.Rating)
	}
	if update.Comment != nil {
		sets = append(sets, "comment = ?")
		args = append(args, *update.Comment)
	}
	if update.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, *update.ImageURL)
	}
	args = append(args, id, memberID)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	// Scoping by both id and owner makes a non-owner's update affect zero
	// rows; the row is then returned unchanged.
	res, err := tx.ExecContext(ctx,
		"UPDATE reviews SET "+joinSets(sets)+" WHERE id = ? AND member_id = ?", args...)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	affected, _ := res.RowsAffected()
	if affected > 0 && update.Tags != nil {
		if err := replaceTagSet(ctx, tx, "review_tags", "review_id", id, update.Tags); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	if affected > 0 {
		r.s.mutated()
	}
	return r.FindByID(ctx, id)
}

func (r *reviewRepo) Delete(ctx context.Context, id, memberID string) error {
	db, err := r.s.conn()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = ? AND member_id = ?`, id, memberID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		r.s.mutated()
	}
	return nil
}

func (r *reviewRepo) IncrementLikes(ctx context.Context, id string) error {
	db, err := r.s.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx,
		`UPDATE reviews SET like_count = like_count + 1 WHERE id = ?`, id); err != nil {
		return err
	}
	r.s.mutated()
	return nil
}

func scanReview(row rowScanner) (*model.Review, error) {
	var rev model.Review
	var placeID, imageURL, profileImage sql.NullString
	var placeRefID, placeName, placeRegion sql.NullString
	var nickname string
	var createdAt, updatedAt string
	err := row.Scan(&rev.ID, &rev.MemberID, &placeID, &rev.Location, &rev.Rating,
		&rev.Comment, &imageURL, &rev.LikeCount, &rev.ReplyCount,
		&createdAt, &updatedAt,
		&nickname, &profileImage, &placeRefID, &placeName, &placeRegion)
	if err != nil {
		return nil, err
	}
	rev.PlaceID = strPtr(placeID)
	rev.ImageURL = strPtr(imageURL)
	rev.CreatedAt = parseTime(createdAt)
	rev.UpdatedAt = parseTime(updatedAt)
	rev.Author = &model.AuthorSummary{Nickname: nickname, ProfileImage: strPtr(profileImage)}
	if placeRefID.Valid {
		rev.Place = &model.PlaceSummary{
			ID:     placeRefID.String,
			Name:   placeName.String,
			Region: placeRegion.String,
		}
	}
	return &rev, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
