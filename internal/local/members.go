package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/travelog/api/internal/model"
	"github.com/forgo/travelog/api/internal/query"
	"github.com/forgo/travelog/api/internal/repository"
)

type memberRepo struct {
	s *Store
}

const memberColumns = `id, email, password_hash, nickname, profile_image, role, status, created_at, updated_at`

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
	ts := now()
	_, err = db.ExecContext(ctx, `INSERT INTO members
		(id, email, password_hash, nickname, profile_image, role, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, params.Email, string(hash), params.Nickname, nullable(params.ProfileImage),
		role, model.StatusActive, ts, ts)
	if err != nil {
		if isUniqueViolation(err, "members.email") {
			return nil, repository.ErrEmailExists
		}
		return nil, err
	}
	r.s.mutated()
	return r.FindByID(ctx, id, false)
}

func (r *memberRepo) FindByID(ctx context.Context, id string, includeInactive bool) (*model.Member, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + memberColumns + ` FROM members WHERE id = ?`
	args := []any{id}
	if !includeInactive {
		q += ` AND status = ?`
		args = append(args, model.StatusActive)
	}
	return scanMemberRow(db.QueryRowContext(ctx, q, args...))
}

func (r *memberRepo) FindByEmail(ctx context.Context, email string) (*model.Member, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}
	return scanMemberRow(db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE email = ?`, email))
}

func (r *memberRepo) Search(ctx context.Context, filter model.MemberFilter) (*model.SearchResult[model.Member], error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}

	spec := &query.Spec{
		Keyword:        filter.Keyword,
		KeywordColumns: []string{"nickname", "email"},
		OrderBy:        "created_at DESC",
	}
	if !filter.IncludeInactive {
		spec.Eq("status", model.StatusActive)
	}
	spec.Limit, spec.Offset = filter.Page.Normalize()

	where, args := spec.SQL()
	var total int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM members "+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	tail, pageArgs := spec.SQLPage()
	rows, err := db.QueryContext(ctx,
		"SELECT "+memberColumns+" FROM members "+where+" "+tail,
		append(args, pageArgs...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
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

	sets := []string{"updated_at = ?"}
	args := []any{now()}
	if update.Nickname != nil {
		sets = append(sets, "nickname = ?")
		args = append(args, *update.Nickname)
	}
	if update.ProfileImage != nil {
		sets = append(sets, "profile_image = ?")
		args = append(args, *update.ProfileImage)
	}
	args = append(args, id)

	res, err := db.ExecContext(ctx,
		"UPDATE members SET "+joinSets(sets)+" WHERE id = ?", args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		r.s.mutated()
	}
	return r.FindByID(ctx, id, true)
}

func (r *memberRepo) Delete(ctx context.Context, id string) error {
	db, err := r.s.conn()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`UPDATE members SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		model.StatusWithdrawn, now(), id, model.StatusActive)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		r.s.mutated()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*model.Member, error) {
	var m model.Member
	var profileImage sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&m.ID, &m.Email, &m.PasswordHash, &m.Nickname, &profileImage,
		&m.Role, &m.Status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	m.ProfileImage = strPtr(profileImage)
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)
	return &m, nil
}

// scanMemberRow maps sql.ErrNoRows to the contract's (nil, nil).
func scanMemberRow(row *sql.Row) (*model.Member, error) {
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}
