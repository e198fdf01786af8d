package remote

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/forgo/travelog/api/internal/database"
	"github.com/forgo/travelog/api/internal/model"
	"github.com/forgo/travelog/api/internal/repository"
)

type wishlistRepo struct {
	s *Store
}

// wishlistJoin is one target type's hydration shape: how to page the
// member's rows with the target nested, how to count them, and how to attach
// the parsed target. Page and count queries restrict to rows whose target is
// visible, so LIMIT/START apply to visible rows and a page never under-fills
// against the total. The three shapes live in one dispatch table so no call
// site branches on the discriminator.
type wishlistJoin struct {
	pageQL  string
	countQL string
	attach  func(w *model.Wishlist, m map[string]interface{}) bool
}

var wishlistJoins = map[model.TargetType]wishlistJoin{
	model.TargetReview: {
		pageQL: `SELECT *,
			(SELECT ` + reviewFields + `
				FROM reviews WHERE record::id(id) = $parent.target_id AND ` + activeAuthors + `)[0] AS review
			FROM wishlists
			WHERE member_id = $member_id AND target_type = 'REVIEW'
			AND target_id INSIDE (SELECT VALUE record::id(id) FROM reviews WHERE ` + activeAuthors + `)
			ORDER BY created_at DESC LIMIT $limit START $start`,
		countQL: `SELECT count() AS total FROM wishlists
			WHERE member_id = $member_id AND target_type = 'REVIEW'
			AND target_id INSIDE (SELECT VALUE record::id(id) FROM reviews WHERE ` + activeAuthors + `)
			GROUP ALL`,
		attach: func(w *model.Wishlist, m map[string]interface{}) bool {
			target := getMap(m, "review")
			if target == nil {
				return false
			}
			w.Review = parseReview(target)
			return true
		},
	},
	model.TargetPost: {
		pageQL: `SELECT *,
			(SELECT ` + postFields + `
				FROM posts WHERE record::id(id) = $parent.target_id AND ` + activeAuthors + `)[0] AS post
			FROM wishlists
			WHERE member_id = $member_id AND target_type = 'POST'
			AND target_id INSIDE (SELECT VALUE record::id(id) FROM posts WHERE ` + activeAuthors + `)
			ORDER BY created_at DESC LIMIT $limit START $start`,
		countQL: `SELECT count() AS total FROM wishlists
			WHERE member_id = $member_id AND target_type = 'POST'
			AND target_id INSIDE (SELECT VALUE record::id(id) FROM posts WHERE ` + activeAuthors + `)
			GROUP ALL`,
		attach: func(w *model.Wishlist, m map[string]interface{}) bool {
			target := getMap(m, "post")
			if target == nil {
				return false
			}
			w.Post = parsePost(target)
			return true
		},
	},
	model.TargetPlace: {
		pageQL: `SELECT *,
			(SELECT * FROM places WHERE record::id(id) = $parent.target_id)[0] AS place
			FROM wishlists
			WHERE member_id = $member_id AND target_type = 'PLACE'
			AND target_id INSIDE (SELECT VALUE record::id(id) FROM places)
			ORDER BY created_at DESC LIMIT $limit START $start`,
		countQL: `SELECT count() AS total FROM wishlists
			WHERE member_id = $member_id AND target_type = 'PLACE'
			AND target_id INSIDE (SELECT VALUE record::id(id) FROM places)
			GROUP ALL`,
		attach: func(w *model.Wishlist, m map[string]interface{}) bool {
			target := getMap(m, "place")
			if target == nil {
				return false
			}
			w.Place = parsePlace(target)
			return true
		},
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

	res, err := db.QueryOne(ctx, `CREATE type::thing('wishlists', $id) CONTENT {
		member_id: $member_id,
		target_type: $target_type,
		target_id: $target_id,
		created_at: time::now()
	}`, map[string]interface{}{
		"id":          uuid.NewString(),
		"member_id":   memberID,
		"target_type": string(target),
		"target_id":   targetID,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, repository.ErrAlreadyWishlisted
		}
		return nil, err
	}
	m, ok := res.(map[string]interface{})
	if !ok {
		return nil, database.ErrQuery
	}
	return parseWishlist(m), nil
}

func (r *wishlistRepo) Remove(ctx context.Context, memberID string, target model.TargetType, targetID string) error {
	if !target.Valid() {
		return repository.ErrInvalidTargetType
	}
	db, err := r.s.conn()
	if err != nil {
		return err
	}
	return db.Execute(ctx,
		`DELETE wishlists WHERE member_id = $member_id AND target_type = $target_type AND target_id = $target_id`,
		map[string]interface{}{
			"member_id":   memberID,
			"target_type": string(target),
			"target_id":   targetID,
		})
}

func (r *wishlistRepo) IsWishlisted(ctx context.Context, memberID string, target model.TargetType, targetID string) (bool, error) {
	if !target.Valid() {
		return false, repository.ErrInvalidTargetType
	}
	db, err := r.s.conn()
	if err != nil {
		return false, err
	}
	total, err := countTotal(ctx, db,
		`SELECT count() AS total FROM wishlists WHERE member_id = $member_id AND target_type = $target_type AND target_id = $target_id GROUP ALL`,
		map[string]interface{}{
			"member_id":   memberID,
			"target_type": string(target),
			"target_id":   targetID,
		})
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *wishlistRepo) TargetIDs(ctx context.Context, memberID string, target model.TargetType) ([]string, error) {
	if !target.Valid() {
		return nil, repository.ErrInvalidTargetType
	}
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}
	results, err := db.Query(ctx,
		`SELECT VALUE target_id FROM wishlists WHERE member_id = $member_id AND target_type = $target_type ORDER BY created_at DESC`,
		map[string]interface{}{
			"member_id":   memberID,
			"target_type": string(target),
		})
	if err != nil {
		return nil, err
	}

	raw := statementResult(results, 0)
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
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

	total, err := countTotal(ctx, db, join.countQL,
		map[string]interface{}{"member_id": memberID})
	if err != nil {
		return nil, err
	}

	limit, offset := page.Normalize()
	results, err := db.Query(ctx, join.pageQL, map[string]interface{}{
		"member_id": memberID,
		"limit":     limit,
		"start":     offset,
	})
	if err != nil {
		return nil, err
	}

	rows := statementRows(results, 0)
	items := make([]model.Wishlist, 0, len(rows))
	for _, row := range rows {
		w := parseWishlist(row)
		// The page query already filtered to visible targets; a row can
		// still lose its nested record between the count and page round
		// trips, so drop it rather than return an empty shell.
		if !join.attach(w, row) {
			continue
		}
		items = append(items, *w)
	}
	return &model.SearchResult[model.Wishlist]{Items: items, Total: total}, nil
}

func parseWishlist(m map[string]interface{}) *model.Wishlist {
	return &model.Wishlist{
		ID:         recordKey(m["id"]),
		MemberID:   getString(m, "member_id"),
		TargetType: model.TargetType(getString(m, "target_type")),
		TargetID:   getString(m, "target_id"),
		CreatedAt:  getTime(m, "created_at"),
	}
}
