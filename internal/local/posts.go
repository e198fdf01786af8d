package local

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/forgo/travelog/api/internal/model"
	"github.com/forgo/travelog/api/internal/query"
)

type postRepo struct {
	s *Store
}

const (
	postSelect = `SELECT b.id, b.member_id, b.category, b.title, b.content, b.image_url,
		b.view_count, b.like_count, b.comment_count, b.created_at, b.updated_at,
		m.nickname, m.profile_image `

	postBase = `FROM posts b
		JOIN members m ON m.id = b.member_id AND m.status = 'ACTIVE' `
)

func (r *postRepo) Create(ctx context.Context, params model.CreatePostParams) (*model.Post, error) {
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
	_, err = tx.ExecContext(ctx, `INSERT INTO posts
		(id, member_id, category, title, content, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, params.MemberID, params.Category, params.Title, params.Content,
		nullable(params.ImageURL), ts, ts)
	if err == nil {
		err = replaceTagSet(ctx, tx, "post_tags", "post_id", id, params.Tags)
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

func (r *postRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}
	p, err := scanPost(db.QueryRowContext(ctx, postSelect+postBase+`WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tags, err := loadTagSets(ctx, db, "post_tags", "post_id", []string{id})
	if err != nil {
		return nil, err
	}
	p.Tags = tagsOrEmpty(tags[id])
	return p, nil
}

func (r *postRepo) Search(ctx context.Context, filter model.PostFilter) (*model.SearchResult[model.Post], error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}

	spec := &query.Spec{
		Keyword:        filter.Keyword,
		KeywordColumns: []string{"b.title", "b.content"},
		OrderBy:        "b.created_at DESC",
	}
	if filter.Category != "" {
		spec.Eq("b.category", filter.Category)
	}
	if filter.MemberID != "" {
		spec.Eq("b.member_id", filter.MemberID)
	}
	if len(filter.Tags) > 0 {
		spec.Tags = &query.TagMatch{
			Table:        "post_tags",
			EntityColumn: "post_id",
			IDExpr:       "b.id",
			Tags:         filter.Tags,
		}
	}
	spec.Limit, spec.Offset = filter.Page.Normalize()

	where, args := spec.SQL()
	var total int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) "+postBase+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	tail, pageArgs := spec.SQLPage()
	rows, err := db.QueryContext(ctx,
		postSelect+postBase+where+" "+tail, append(args, pageArgs...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Post, 0)
	ids := make([]string, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := loadTagSets(ctx, db, "post_tags", "post_id", ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Tags = tagsOrEmpty(tags[items[i].ID])
	}
	return &model.SearchResult[model.Post]{Items: items, Total: total}, nil
}

func (r *postRepo) Update(ctx context.Context, id, memberID string, update model.PostUpdate) (*model.Post, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	sets := []string{"updated_at = ?"}
	args := []any{now()}
	if update.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *update.Category)
	}
	if update.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *update.Content)
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
	res, err := tx.ExecContext(ctx,
		"UPDATE posts SET "+joinSets(sets)+" WHERE id = ? AND member_id = ?", args...)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	affected, _ := res.RowsAffected()
	if affected > 0 && update.Tags != nil {
		if err := replaceTagSet(ctx, tx, "post_tags", "post_id", id, update.Tags); err != nil {
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

func (r *postRepo) Delete(ctx context.Context, id, memberID string) error {
	db, err := r.s.conn()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`DELETE FROM posts WHERE id = ? AND member_id = ?`, id, memberID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		r.s.mutated()
	}
	return nil
}

func (r *postRepo) IncrementViews(ctx context.Context, id string) error {
	return r.increment(ctx, id, "view_count")
}

func (r *postRepo) IncrementLikes(ctx context.Context, id string) error {
	return r.increment(ctx, id, "like_count")
}

func (r *postRepo) increment(ctx context.Context, id, column string) error {
	db, err := r.s.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx,
		"UPDATE posts SET "+column+" = "+column+" + 1 WHERE id = ?", id); err != nil {
		return err
	}
	r.s.mutated()
	return nil
}

func scanPost(row rowScanner) (*model.Post, error) {
	var p model.Post
	var imageURL, profileImage sql.NullString
	var nickname string
	var createdAt, updatedAt string
	err := row.Scan(&p.ID, &p.MemberID, &p.Category, &p.Title, &p.Content, &imageURL,
		&p.ViewCount, &p.LikeCount, &p.CommentCount, &createdAt, &updatedAt,
		&nickname, &profileImage)
	if err != nil {
		return nil, err
	}
	p.ImageURL = strPtr(imageURL)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	p.Author = &model.AuthorSummary{Nickname: nickname, ProfileImage: strPtr(profileImage)}
	return &p, nil
}
