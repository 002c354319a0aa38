package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/geoengine/internal/core/domain"
)

// LayerRepo implements ports.LayerRepository.
type LayerRepo struct {
	db *DB
}

func NewLayerRepo(db *DB) *LayerRepo {
	return &LayerRepo{db: db}
}

func (r *LayerRepo) ListRaster(ctx context.Context, view string) ([]domain.RasterLayer, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, view, name, type, url, matrix_set, format, params,
		       opacity, overlay, sequence, mapbox_style, created_at
		FROM raster_layers
		WHERE $1 = '' OR view = $1
		ORDER BY sequence, id
	`, view)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var layers []domain.RasterLayer
	for rows.Next() {
		var l domain.RasterLayer
		if err := rows.Scan(
			&l.ID, &l.View, &l.Name, &l.Type, &l.URL, &l.MatrixSet, &l.Format, &l.Params,
			&l.Opacity, &l.Overlay, &l.Sequence, &l.MapboxStyle, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}
	return layers, rows.Err()
}

const vectorColumns = `
	id::text, view, name, geo_field, representation, attribute_field,
	begin_color, end_color, classification, classes, active, sequence, created_at`

func scanVector(row pgx.Row) (*domain.VectorLayer, error) {
	var l domain.VectorLayer
	err := row.Scan(
		&l.ID, &l.View, &l.Name, &l.GeoField, &l.Representation, &l.AttributeField,
		&l.BeginColor, &l.EndColor, &l.Classification, &l.Classes, &l.Active, &l.Sequence, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LayerRepo) ListVector(ctx context.Context, view string) ([]domain.VectorLayer, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+vectorColumns+`
		FROM vector_layers
		WHERE $1 = '' OR view = $1
		ORDER BY sequence, id
	`, view)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var layers []domain.VectorLayer
	for rows.Next() {
		l, err := scanVector(rows)
		if err != nil {
			return nil, err
		}
		layers = append(layers, *l)
	}
	return layers, rows.Err()
}

func (r *LayerRepo) GetVector(ctx context.Context, id string) (*domain.VectorLayer, error) {
	l, err := scanVector(r.db.Pool.QueryRow(ctx, `SELECT `+vectorColumns+` FROM vector_layers WHERE id::text = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

// UpsertRaster inserts a layer, or updates the one with the same view and name.
func (r *LayerRepo) UpsertRaster(ctx context.Context, l *domain.RasterLayer) error {
	if l.Params == nil {
		l.Params = map[string]string{}
	}
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO raster_layers (view, name, type, url, matrix_set, format, params, opacity, overlay, sequence, mapbox_style)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (view, name) DO UPDATE
		SET type = EXCLUDED.type, url = EXCLUDED.url, matrix_set = EXCLUDED.matrix_set,
		    format = EXCLUDED.format, params = EXCLUDED.params, opacity = EXCLUDED.opacity,
		    overlay = EXCLUDED.overlay, sequence = EXCLUDED.sequence, mapbox_style = EXCLUDED.mapbox_style
		RETURNING id::text, created_at
	`, l.View, l.Name, l.Type, l.URL, l.MatrixSet, l.Format, l.Params,
		l.Opacity, l.Overlay, l.Sequence, l.MapboxStyle,
	).Scan(&l.ID, &l.CreatedAt)
}

// UpsertVector inserts a layer, or updates the one with the same view and name.
func (r *LayerRepo) UpsertVector(ctx context.Context, l *domain.VectorLayer) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO vector_layers (view, name, geo_field, representation, attribute_field,
		                           begin_color, end_color, classification, classes, active, sequence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (view, name) DO UPDATE
		SET geo_field = EXCLUDED.geo_field, representation = EXCLUDED.representation,
		    attribute_field = EXCLUDED.attribute_field, begin_color = EXCLUDED.begin_color,
		    end_color = EXCLUDED.end_color, classification = EXCLUDED.classification,
		    classes = EXCLUDED.classes, active = EXCLUDED.active, sequence = EXCLUDED.sequence
		RETURNING id::text, created_at
	`, l.View, l.Name, l.GeoField, l.Representation, l.AttributeField,
		l.BeginColor, l.EndColor, l.Classification, l.Classes, l.Active, l.Sequence,
	).Scan(&l.ID, &l.CreatedAt)
}
