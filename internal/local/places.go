package local

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/forgo/travelog/api/internal/model"
	"github.com/forgo/travelog/api/internal/query"
)

type placeRepo struct {
	s *Store
}

const placeColumns = `id, region, latitude, longitude, name, detail_info, disabled_info, is_recommended, data_quality, modified_at`

func (r *placeRepo) Create(ctx context.Context, params model.CreatePlaceParams) (*model.Place, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	_, err = db.ExecContext(ctx, `INSERT INTO places
		(id, region, latitude, longitude, name, detail_info, disabled_info, is_recommended, data_quality, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, params.Region, params.Latitude, params.Longitude, params.Name,
		nullable(params.DetailInfo), nullable(params.DisabledInfo),
		boolInt(params.IsRecommended), nullable(params.DataQuality), now())
	if err != nil {
		return nil, err
	}
	r.s.mutated()
	return r.FindByID(ctx, id)
}

func (r *placeRepo) FindByID(ctx context.Context, id string) (*model.Place, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}
	p, err := scanPlace(db.QueryRowContext(ctx,
		`SELECT `+placeColumns+` FROM places WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *placeRepo) Search(ctx context.Context, filter model.PlaceFilter) (*model.SearchResult[model.Place], error) {
	spec := &query.Spec{
		Keyword:        filter.Keyword,
		KeywordColumns: []string{"name", "detail_info", "disabled_info"},
		// Places order alphabetically, unlike the other entities.
		OrderBy: "name ASC",
	}
	if filter.Region != "" {
		spec.Eq("region", filter.Region)
	}
	if filter.RecommendedOnly {
		spec.Eq("is_recommended", 1)
	}
	spec.Limit, spec.Offset = filter.Page.Normalize()
	return r.search(ctx, spec)
}

func (r *placeRepo) FindByRegion(ctx context.Context, region string, page model.Page) (*model.SearchResult[model.Place], error) {
	spec := &query.Spec{OrderBy: "name ASC"}
	spec.Eq("region", region)
	spec.Limit, spec.Offset = page.Normalize()
	return r.search(ctx, spec)
}

func (r *placeRepo) FindRecommended(ctx context.Context, page model.Page) (*model.SearchResult[model.Place], error) {
	spec := &query.Spec{OrderBy: "name ASC"}
	spec.Eq("is_recommended", 1)
	spec.Limit, spec.Offset = page.Normalize()
	return r.search(ctx, spec)
}

func (r *placeRepo) search(ctx context.Context, spec *query.Spec) (*model.SearchResult[model.Place], error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}

	where, args := spec.SQL()
	var total int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM places "+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	tail, pageArgs := spec.SQLPage()
	rows, err := db.QueryContext(ctx,
		"SELECT "+placeColumns+" FROM places "+where+" "+tail,
		append(args, pageArgs...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Place, 0)
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &model.SearchResult[model.Place]{Items: items, Total: total}, nil
}

func (r *placeRepo) Update(ctx context.Context, id string, update model.PlaceUpdate) (*model.Place, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	sets := []string{"modified_at = ?"}
	args := []any{now()}
	if update.Region != nil {
		sets = append(sets, "region = ?")
		args = append(args, *update.Region)
	}
	if update.Latitude != nil {
		sets = append(sets, "latitude = ?")
		args = append(args, *update.Latitude)
	}
	if update.Longitude != nil {
		sets = append(sets, "longitude = ?")
		args = append(args, *update.Longitude)
	}
	if update.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}
	if update.DetailInfo != nil {
		sets = append(sets, "detail_info = ?")
		args = append(args, *update.DetailInfo)
	}
	if update.DisabledInfo != nil {
		sets = append(sets, "disabled_info = ?")
		args = append(args, *update.DisabledInfo)
	}
	if update.IsRecommended != nil {
		sets = append(sets, "is_recommended = ?")
		args = append(args, boolInt(*update.IsRecommended))
	}
	if update.DataQuality != nil {
		sets = append(sets, "data_quality = ?")
		args = append(args, *update.DataQuality)
	}
	args = append(args, id)

	res, err := db.ExecContext(ctx,
		"UPDATE places SET "+joinSets(sets)+" WHERE id = ?", args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		r.s.mutated()
	}
	return r.FindByID(ctx, id)
}

// Delete removes the place. Reviews referencing it keep their rows with the
// reference cleared by the schema's ON DELETE SET NULL action.
func (r *placeRepo) Delete(ctx context.Context, id string) error {
	db, err := r.s.conn()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM places WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		r.s.mutated()
	}
	return nil
}

func scanPlace(row rowScanner) (*model.Place, error) {
	var p model.Place
	var detail, disabled, quality sql.NullString
	var recommended int
	var modifiedAt string
	err := row.Scan(&p.ID, &p.Region, &p.Latitude, &p.Longitude, &p.Name,
		&detail, &disabled, &recommended, &quality, &modifiedAt)
	if err != nil {
		return nil, err
	}
	p.DetailInfo = strPtr(detail)
	p.DisabledInfo = strPtr(disabled)
	p.DataQuality = strPtr(quality)
	p.IsRecommended = recommended != 0
	p.ModifiedAt = parseTime(modifiedAt)
	return &p, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
