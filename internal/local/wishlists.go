package local

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/forgo/travelog/api/internal/model"
	"github.com/forgo/travelog/api/internal/repository"
)

type wishlistRepo struct {
	s *Store
}

const wishlistColumns = `w.id, w.member_id, w.target_type, w.target_id, w.created_at`

// wishlistJoin is one target type's join shape: how to page the member's
// rows with the target hydrated, how to count them, and how to scan one row.
// The three shapes live in one dispatch table so no call site branches on
// the discriminator.
type wishlistJoin struct {
	pageSQL  string
	countSQL string
	scan     func(rows *sql.Rows) (*model.Wishlist, error)
	// tagTable is set for targets carrying tag sets.
	tagTable, tagColumn string
}

var wishlistJoins = map[model.TargetType]wishlistJoin{
	model.TargetReview: {
		pageSQL: `SELECT ` + wishlistColumns + `,
			r.id, r.member_id, r.place_id, r.location, r.rating, r.comment, r.image_url,
			r.like_count, r.reply_count, r.created_at, r.updated_at,
			m.nickname, m.profile_image, p.id, p.name, p.region
			FROM wishlists w
			JOIN reviews r ON r.id = w.target_id
			JOIN members m ON m.id = r.member_id AND m.status = 'ACTIVE'
			LEFT JOIN places p ON p.id = r.place_id
			WHERE w.member_id = ? AND w.target_type = ?
			ORDER BY w.created_at DESC LIMIT ? OFFSET ?`,
		countSQL: `SELECT COUNT(*) FROM wishlists w
			JOIN reviews r ON r.id = w.target_id
			JOIN members m ON m.id = r.member_id AND m.status = 'ACTIVE'
			WHERE w.member_id = ? AND w.target_type = ?`,
		scan:      scanWishlistReview,
		tagTable:  "review_tags",
		tagColumn: "review_id",
	},
	model.TargetPost: {
		pageSQL: `SELECT ` + wishlistColumns + `,
			b.id, b.member_id, b.category, b.title, b.content, b.image_url,
			b.view_count, b.like_count, b.comment_count, b.created_at, b.updated_at,
			m.nickname, m.profile_image
			FROM wishlists w
			JOIN posts b ON b.id = w.target_id
			JOIN members m ON m.id = b.member_id AND m.status = 'ACTIVE'
			WHERE w.member_id = ? AND w.target_type = ?
			ORDER BY w.created_at DESC LIMIT ? OFFSET ?`,
		countSQL: `SELECT COUNT(*) FROM wishlists w
			JOIN posts b ON b.id = w.target_id
			JOIN members m ON m.id = b.member_id AND m.status = 'ACTIVE'
			WHERE w.member_id = ? AND w.target_type = ?`,
		scan:      scanWishlistPost,
		tagTable:  "post_tags",
		tagColumn: "post_id",
	},
	model.TargetPlace: {
		pageSQL: `SELECT ` + wishlistColumns + `,
			p.id, p.region, p.latitude, p.longitude, p.name, p.detail_info,
			p.disabled_info, p.is_recommended, p.data_quality, p.modified_at
			FROM wishlists w
			JOIN places p ON p.id = w.target_id
			WHERE w.member_id = ? AND w.target_type = ?
			ORDER BY w.created_at DESC LIMIT ? OFFSET ?`,
		countSQL: `SELECT COUNT(*) FROM wishlists w
			JOIN places p ON p.id = w.target_id
			WHERE w.member_id = ? AND w.target_type = ?`,
		scan: scanWishlistPlace,
	},
}

func (r *wishlistRepo) Add(ctx context.Context, memberID string, target model.TargetType, targetID string) (*model.Wishlist, error) {
	if !target.Valid() {
		return nil, repository.ErrInvalidTargetType
	}
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err = db.ExecContext(ctx, `INSERT INTO wishlists
		(id, member_id, target_type, target_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, memberID, string(target), targetID, now())
	if err != nil {
		if isUniqueViolation(err, "wishlists.member_id") {
			return nil, repository.ErrAlreadyWishlisted
		}
		return nil, err
	}
	r.s.mutated()

	var w model.Wishlist
	var createdAt string
	err = db.QueryRowContext(ctx,
		`SELECT `+wishlistColumns+` FROM wishlists w WHERE w.id = ?`, id).
		Scan(&w.ID, &w.MemberID, &w.TargetType, &w.TargetID, &createdAt)
	if err != nil {
		return nil, err
	}
	w.CreatedAt = parseTime(createdAt)
	return &w, nil
}

func (r *wishlistRepo) Remove(ctx context.Context, memberID string, target model.TargetType, targetID string) error {
	if !target.Valid() {
		return repository.ErrInvalidTargetType
	}
	db, err := r.s.conn()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`DELETE FROM wishlists WHERE member_id = ? AND target_type = ? AND target_id = ?`,
		memberID, string(target), targetID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		r.s.mutated()
	}
	return nil
}

func (r *wishlistRepo) IsWishlisted(ctx context.Context, memberID string, target model.TargetType, targetID string) (bool, error) {
	if !target.Valid() {
		return false, repository.ErrInvalidTargetType
	}
	db, err := r.s.conn()
	if err != nil {
		return false, err
	}
	var one int
	err = db.QueryRowContext(ctx,
		`SELECT 1 FROM wishlists WHERE member_id = ? AND target_type = ? AND target_id = ? LIMIT 1`,
		memberID, string(target), targetID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *wishlistRepo) TargetIDs(ctx context.Context, memberID string, target model.TargetType) ([]string, error) {
	if !target.Valid() {
		return nil, repository.ErrInvalidTargetType
	}
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT target_id FROM wishlists WHERE member_id = ? AND target_type = ?
		ORDER BY created_at DESC`, memberID, string(target))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *wishlistRepo) List(ctx context.Context, memberID string, target model.TargetType, page model.Page) (*model.SearchResult[model.Wishlist], error) {
	join, ok := wishlistJoins[target]
	if !ok {
		return nil, repository.ErrInvalidTargetType
	}
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}

	var total int
	if err := db.QueryRowContext(ctx, join.countSQL, memberID, string(target)).Scan(&total); err != nil {
		return nil, err
	}

	limit, offset := page.Normalize()
	rows, err := db.QueryContext(ctx, join.pageSQL, memberID, string(target), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Wishlist, 0)
	targetIDs := make([]string, 0)
	for rows.Next() {
		w, err := join.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *w)
		targetIDs = append(targetIDs, w.TargetID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if join.tagTable != "" {
		tags, err := loadTagSets(ctx, db, join.tagTable, join.tagColumn, targetIDs)
		if err != nil {
			return nil, err
		}
		for i := range items {
			switch target {
			case model.TargetReview:
				items[i].Review.Tags = tagsOrEmpty(tags[items[i].TargetID])
			case model.TargetPost:
				items[i].Post.Tags = tagsOrEmpty(tags[items[i].TargetID])
			}
		}
	}
	return &model.SearchResult[model.Wishlist]{Items: items, Total: total}, nil
}

func scanWishlistHead(w *model.Wishlist, createdAt *string) []any {
	return []any{&w.ID, &w.MemberID, &w.TargetType, &w.TargetID, createdAt}
}

func scanWishlistReview(rows *sql.Rows) (*model.Wishlist, error) {
	var w model.Wishlist
	var wCreated string
	var rev model.Review
	var placeID, imageURL, profileImage sql.NullString
	var placeRefID, placeName, placeRegion sql.NullString
	var nickname string
	var createdAt, updatedAt string

	dest := scanWishlistHead(&w, &wCreated)
	dest = append(dest, &rev.ID, &rev.MemberID, &placeID, &rev.Location, &rev.Rating,
		&rev.Comment, &imageURL, &rev.LikeCount, &rev.ReplyCount, &createdAt, &updatedAt,
		&nickname, &profileImage, &placeRefID, &placeName, &placeRegion)
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	rev.PlaceID = strPtr(placeID)
	rev.ImageURL = strPtr(imageURL)
	rev.CreatedAt = parseTime(createdAt)
	rev.UpdatedAt = parseTime(updatedAt)
	rev.Author = &model.AuthorSummary{Nickname: nickname, ProfileImage: strPtr(profileImage)}
	if placeRefID.Valid {
		rev.Place = &model.PlaceSummary{ID: placeRefID.String, Name: placeName.String, Region: placeRegion.String}
	}
	w.CreatedAt = parseTime(wCreated)
	w.Review = &rev
	return &w, nil
}

func scanWishlistPost(rows *sql.Rows) (*model.Wishlist, error) {
	var w model.Wishlist
	var wCreated string
	var p model.Post
	var imageURL, profileImage sql.NullString
	var nickname string
	var createdAt, updatedAt string

	dest := scanWishlistHead(&w, &wCreated)
	dest = append(dest, &p.ID, &p.MemberID, &p.Category, &p.Title, &p.Content, &imageURL,
		&p.ViewCount, &p.LikeCount, &p.CommentCount, &createdAt, &updatedAt,
		&nickname, &profileImage)
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	p.ImageURL = strPtr(imageURL)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	p.Author = &model.AuthorSummary{Nickname: nickname, ProfileImage: strPtr(profileImage)}
	w.CreatedAt = parseTime(wCreated)
	w.Post = &p
	return &w, nil
}

func scanWishlistPlace(rows *sql.Rows) (*model.Wishlist, error) {
	var w model.Wishlist
	var wCreated string
	var p model.Place
	var detail, disabled, quality sql.NullString
	var recommended int
	var modifiedAt string

	dest := scanWishlistHead(&w, &wCreated)
	dest = append(dest, &p.ID, &p.Region, &p.Latitude, &p.Longitude, &p.Name,
		&detail, &disabled, &recommended, &quality, &modifiedAt)
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	p.DetailInfo = strPtr(detail)
	p.DisabledInfo = strPtr(disabled)
	p.DataQuality = strPtr(quality)
	p.IsRecommended = recommended != 0
	p.ModifiedAt = parseTime(modifiedAt)
	w.CreatedAt = parseTime(wCreated)
	w.Place = &p
	return &w, nil
}
