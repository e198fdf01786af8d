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

type postRepo struct {
	s *Store
}

const postFields = `*,
	(SELECT nickname, profile_image FROM type::thing('profiles', $parent.member_id))[0] AS author,
	(SELECT VALUE tag FROM post_tags WHERE post_id = record::id($parent.id) ORDER BY tag) AS tags`

const postCreateQL = `
CREATE type::thing('posts', $id) CONTENT {
	member_id: $member_id,
	category: $category,
	title: $title,
	content: $content,
	image_url: $image_url,
	view_count: 0,
	like_count: 0,
	comment_count: 0,
	created_at: time::now(),
	updated_at: time::now()
};`

func (r *postRepo) Create(ctx context.Context, params model.CreatePostParams) (*model.Post, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	vars := map[string]interface{}{
		"id":        id,
		"member_id": params.MemberID,
		"category":  params.Category,
		"title":     params.Title,
		"content":   params.Content,
		"image_url": params.ImageURL,
	}
	ql := "BEGIN TRANSACTION;\n" + postCreateQL +
		tagStatements("post_tags", "post_id", params.Tags, vars) +
		"COMMIT TRANSACTION;"
	if err := db.Execute(ctx, ql, vars); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *postRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}
	res, err := db.QueryOne(ctx,
		`SELECT `+postFields+` FROM type::thing('posts', $id) WHERE `+activeAuthors,
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
	return parsePost(m), nil
}

func (r *postRepo) Search(ctx context.Context, filter model.PostFilter) (*model.SearchResult[model.Post], error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}

	spec := &query.Spec{
		Keyword:        filter.Keyword,
		KeywordColumns: []string{"title", "content"},
		Extra:          []string{activeAuthors},
		OrderBy:        "created_at DESC",
	}
	if filter.Category != "" {
		spec.Eq("category", filter.Category)
	}
	if filter.MemberID != "" {
		spec.Eq("member_id", filter.MemberID)
	}
	if len(filter.Tags) > 0 {
		spec.Tags = &query.TagMatch{
			Table:        "post_tags",
			EntityColumn: "post_id",
			IDExpr:       "record::id(id)",
			Tags:         filter.Tags,
		}
	}
	spec.Limit, spec.Offset = filter.Page.Normalize()

	where, vars := spec.SurrealQL()
	total, err := countTotal(ctx, db,
		`SELECT count() AS total FROM posts `+where+` GROUP ALL`, vars)
	if err != nil {
		return nil, err
	}

	tail := spec.SurrealPage(vars)
	results, err := db.Query(ctx,
		`SELECT `+postFields+` FROM posts `+where+` `+tail, vars)
	if err != nil {
		return nil, err
	}

	rows := statementRows(results, 0)
	items := make([]model.Post, 0, len(rows))
	for _, row := range rows {
		items = append(items, *parsePost(row))
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

	sets := []string{"updated_at = time::now()"}
	vars := map[string]interface{}{"id": id, "member_id": memberID}
	if update.Category != nil {
		sets = append(sets, "category = $category")
		vars["category"] = *update.Category
	}
	if update.Title != nil {
		sets = append(sets, "title = $title")
		vars["title"] = *update.Title
	}
	if update.Content != nil {
		sets = append(sets, "content = $content")
		vars["content"] = *update.Content
	}
	if update.ImageURL != nil {
		sets = append(sets, "image_url = $image_url")
		vars["image_url"] = *update.ImageURL
	}

	results, err := db.Query(ctx,
		`UPDATE type::thing('posts', $id) SET `+strings.Join(sets, ", ")+` WHERE member_id = $member_id`,
		vars)
	if err != nil {
		return nil, err
	}
	affected := len(statementResult(results, 0))

	if affected > 0 && update.Tags != nil {
		tagVars := map[string]interface{}{"id": id}
		ql := "BEGIN TRANSACTION;\nDELETE post_tags WHERE post_id = $id;\n" +
			tagStatements("post_tags", "post_id", update.Tags, tagVars) +
			"COMMIT TRANSACTION;"
		if err := db.Execute(ctx, ql, tagVars); err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

func (r *postRepo) Delete(ctx context.Context, id, memberID string) error {
	db, err := r.s.conn()
	if err != nil {
		return err
	}

	results, err := db.Query(ctx,
		`DELETE type::thing('posts', $id) WHERE member_id = $member_id RETURN BEFORE`,
		map[string]interface{}{"id": id, "member_id": memberID})
	if err != nil {
		return err
	}
	if len(statementResult(results, 0)) == 0 {
		return nil
	}
	return db.Execute(ctx, `DELETE post_tags WHERE post_id = $id`,
		map[string]interface{}{"id": id})
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
	return db.Execute(ctx,
		`UPDATE type::thing('posts', $id) SET `+column+` += 1`,
		map[string]interface{}{"id": id})
}

func parsePost(m map[string]interface{}) *model.Post {
	out := &model.Post{
		ID:           recordKey(m["id"]),
		MemberID:     getString(m, "member_id"),
		Category:     getString(m, "category"),
		Title:        getString(m, "title"),
		Content:      getString(m, "content"),
		ImageURL:     getStringPtr(m, "image_url"),
		ViewCount:    getInt(m, "view_count"),
		LikeCount:    getInt(m, "like_count"),
		CommentCount: getInt(m, "comment_count"),
		Tags:         getStringSlice(m, "tags"),
		CreatedAt:    getTime(m, "created_at"),
		UpdatedAt:    getTime(m, "updated_at"),
	}
	if author := getMap(m, "author"); author != nil {
		out.Author = &model.AuthorSummary{
			Nickname:     getString(author, "nickname"),
			ProfileImage: getStringPtr(author, "profile_image"),
		}
	}
	return out
}
