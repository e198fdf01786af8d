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

type placeRepo struct {
	s *Store
}

const placeCreateQL = `
CREATE type::thing('places', $id) CONTENT {
	region: $region,
	latitude: $latitude,
	longitude: $longitude,
	name: $name,
	detail_info: $detail_info,
	disabled_info: $disabled_info,
	is_recommended: $is_recommended,
	data_quality: $data_quality,
	modified_at: time::now()
}`

// placeDeleteQL clears review references before removing the place, so a
// review outlives its place with the link set to NONE.
const placeDeleteQL = `
BEGIN TRANSACTION;
UPDATE reviews SET place_id = NONE WHERE place_id = $id;
DELETE type::thing('places', $id);
COMMIT TRANSACTION;`

func (r *placeRepo) Create(ctx context.Context, params model.CreatePlaceParams) (*model.Place, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	err = db.Execute(ctx, placeCreateQL, map[string]interface{}{
		"id":             id,
		"region":         params.Region,
		"latitude":       params.Latitude,
		"longitude":      params.Longitude,
		"name":           params.Name,
		"detail_info":    params.DetailInfo,
		"disabled_info":  params.DisabledInfo,
		"is_recommended": params.IsRecommended,
		"data_quality":   params.DataQuality,
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *placeRepo) FindByID(ctx context.Context, id string) (*model.Place, error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}
	res, err := db.QueryOne(ctx, `SELECT * FROM type::thing('places', $id)`,
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
	return parsePlace(m), nil
}

func (r *placeRepo) Search(ctx context.Context, filter model.PlaceFilter) (*model.SearchResult[model.Place], error) {
	spec := &query.Spec{
		Keyword:        filter.Keyword,
		KeywordColumns: []string{"name", "detail_info", "disabled_info"},
		OrderBy:        "name ASC",
	}
	if filter.Region != "" {
		spec.Eq("region", filter.Region)
	}
	if filter.RecommendedOnly {
		spec.Eq("is_recommended", true)
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
	spec.Eq("is_recommended", true)
	spec.Limit, spec.Offset = page.Normalize()
	return r.search(ctx, spec)
}

func (r *placeRepo) search(ctx context.Context, spec *query.Spec) (*model.SearchResult[model.Place], error) {
	db, err := r.s.conn()
	if err != nil {
		return nil, err
	}

	where, vars := spec.SurrealQL()
	total, err := countTotal(ctx, db,
		`SELECT count() AS total FROM places `+where+` GROUP ALL`, vars)
	if err != nil {
		return nil, err
	}

	tail := spec.SurrealPage(vars)
	results, err := db.Query(ctx, `SELECT * FROM places `+where+` `+tail, vars)
	if err != nil {
		return nil, err
	}

	rows := statementRows(results, 0)
	items := make([]model.Place, 0, len(rows))
	for _, row := range rows {
		items = append(items, *parsePlace(row))
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

	sets := []string{"modified_at = time::now()"}
	vars := map[string]interface{}{"id": id}
	set := func(column string, value interface{}) {
		sets = append(sets, column+" = $"+column)
		vars[column] = value
	}
	if update.Region != nil {
		set("region", *update.Region)
	}
	if update.Latitude != nil {
		set("latitude", *update.Latitude)
	}
	if update.Longitude != nil {
		set("longitude", *update.Longitude)
	}
	if update.Name != nil {
		set("name", *update.Name)
	}
	if update.DetailInfo != nil {
		set("detail_info", *update.DetailInfo)
	}
	if update.DisabledInfo != nil {
		set("disabled_info", *update.DisabledInfo)
	}
	if update.IsRecommended != nil {
		set("is_recommended", *update.IsRecommended)
	}
	if update.DataQuality != nil {
		set("data_quality", *update.DataQuality)
	}

	err = db.Execute(ctx,
		`UPDATE type::thing('places', $id) SET `+strings.Join(sets, ", "), vars)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *placeRepo) Delete(ctx context.Context, id string) error {
	db, err := r.s.conn()
	if err != nil {
		return err
	}
	return db.Execute(ctx, placeDeleteQL, map[string]interface{}{"id": id})
}

func parsePlace(m map[string]interface{}) *model.Place {
	return &model.Place{
		ID:            recordKey(m["id"]),
		Region:        getString(m, "region"),
		Latitude:      getFloat(m, "latitude"),
		Longitude:     getFloat(m, "longitude"),
		Name:          getString(m, "name"),
		DetailInfo:    getStringPtr(m, "detail_info"),
		DisabledInfo:  getStringPtr(m, "disabled_info"),
		IsRecommended: getBool(m, "is_recommended"),
		DataQuality:   getStringPtr(m, "data_quality"),
		ModifiedAt:    getTime(m, "modified_at"),
	}
}
