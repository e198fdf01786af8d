package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/travelog/api/internal/database"
	"github.com/forgo/travelog/api/internal/model"
	"github.com/forgo/travelog/api/internal/query"
	"github.com/forgo/travelog/api/internal/repository"
)

type memberRepo struct {
	s *Store
}

// memberFields hydrates the credential-side record onto a profile row. The
// two tables share one record id.
const memberFields = `*,
	(SELECT email, password_hash FROM type::thing('members', record::id($parent.id)))[0] AS account`

// memberCreateQL writes both halves of an account in one transaction. The
// unique email index on members rejects the whole batch on a duplicate.
const memberCreateQL = `
BEGIN TRANSACTION;
CREATE type::thing('members', $id) CONTENT {
	email: $email,
	password_hash: $password_hash,
	created_at: time::now()
};
CREATE type::thing('profiles', $id) CONTENT {
	nickname: $nickname,
	profile_image: $profile_image,
	role: $role,
	status: 'ACTIVE',
	created_at: time::now(),
	updated_at: time::now()
};
COMMIT TRANSACTION;`

func (r *memberRepo) Create(ctx context.Context, params model.CreateMemberParams) (*model.Member, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := params.Role
	if role == "" {
		role = model.RoleUser
	}

	id := uuid.NewString()
	err = db.Execute(ctx, memberCreateQL, map[string]interface{}{
		"id":            id,
		"email":         params.Email,
		"password_hash": string(hash),
		"nickname":      params.Nickname,
		"profile_image": params.ProfileImage,
		"role":          role,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, repository.ErrEmailExists
		}
		return nil, err
	}
	return r.FindByID(ctx, id, false)
}

func (r *memberRepo) FindByID(ctx context.Context, id string, includeInactive bool) (*model.Member, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}

	ql := `SELECT ` + memberFields + ` FROM type::thing('profiles', $id)`
	if !includeInactive {
		ql += ` WHERE status = 'ACTIVE'`
	}
	res, err := db.QueryOne(ctx, ql, map[string]interface{}{"id": id})
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
	return parseMember(m), nil
}

func (r *memberRepo) FindByEmail(ctx context.Context, email string) (*model.Member, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}

	res, err := db.QueryOne(ctx,
		`SELECT record::id(id) AS id FROM members WHERE email = $email LIMIT 1`,
		map[string]interface{}{"email": email})
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
	return r.FindByID(ctx, getString(m, "id"), true)
}

func (r *memberRepo) Search(ctx context.Context, filter model.MemberFilter) (*model.SearchResult[model.Member], error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}

	// Email lives on the credential table, so the keyword predicate is
	// hand-built instead of using Spec keyword columns.
	spec := &query.Spec{OrderBy: "created_at DESC"}
	if filter.Keyword != "" {
		spec.Extra = append(spec.Extra,
			`(string::contains(string::lowercase(nickname ?? ''), $kw) OR `+
				`record::id(id) INSIDE (SELECT VALUE record::id(id) FROM members WHERE string::contains(string::lowercase(email ?? ''), $kw)))`)
	}
	if !filter.IncludeInactive {
		spec.Eq("status", model.StatusActive)
	}
	spec.Limit, spec.Offset = filter.Page.Normalize()

	where, vars := spec.SurrealQL()
	if filter.Keyword != "" {
		vars["kw"] = strings.ToLower(filter.Keyword)
	}

	total, err := countTotal(ctx, db,
		`SELECT count() AS total FROM profiles `+where+` GROUP ALL`, vars)
	if err != nil {
		return nil, err
	}

	tail := spec.SurrealPage(vars)
	results, err := db.Query(ctx,
		`SELECT `+memberFields+` FROM profiles `+where+` `+tail, vars)
	if err != nil {
		return nil, err
	}

	rows := statementRows(results, 0)
	items := make([]model.Member, 0, len(rows))
	for _, row := range rows {
		items = append(items, *parseMember(row))
	}
	return &model.SearchResult[model.Member]{Items: items, Total: total}, nil
}

func (r *memberRepo) Update(ctx context.Context, id string, update model.MemberUpdate) (*model.Member, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return r.FindByID(ctx, id, true)
	}

	sets := []string{"updated_at = time::now()"}
	vars := map[string]interface{}{"id": id}
	if update.Nickname != nil {
		sets = append(sets, "nickname = $nickname")
		vars["nickname"] = *update.Nickname
	}
	if update.ProfileImage != nil {
		sets = append(sets, "profile_image = $profile_image")
		vars["profile_image"] = *update.ProfileImage
	}

	err = db.Execute(ctx,
		`UPDATE type::thing('profiles', $id) SET `+strings.Join(sets, ", "), vars)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id, true)
}

func (r *memberRepo) Delete(ctx context.Context, id string) error {
	db, err := r.s.conn()
	if err != nil {
		return err
	}
	return db.Execute(ctx,
		`UPDATE type::thing('profiles', $id) SET status = 'WITHDRAWN', updated_at = time::now() WHERE status = 'ACTIVE'`,
		map[string]interface{}{"id": id})
}

func parseMember(m map[string]interface{}) *model.Member {
	out := &model.Member{
		ID:           recordKey(m["id"]),
		Nickname:     getString(m, "nickname"),
		ProfileImage: getStringPtr(m, "profile_image"),
		Role:         getString(m, "role"),
		Status:       getString(m, "status"),
		CreatedAt:    getTime(m, "created_at"),
		UpdatedAt:    getTime(m, "updated_at"),
	}
	if account := getMap(m, "account"); account != nil {
		out.Email = getString(account, "email")
		out.PasswordHash = getString(account, "password_hash")
	}
	return out
}
