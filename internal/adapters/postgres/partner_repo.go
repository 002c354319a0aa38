package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/geoengine/internal/core/domain"
)

// PartnerRepo implements ports.PartnerRepository with pgx and PostGIS.
type PartnerRepo struct {
	db *DB
}

// NewPartnerRepo creates a new PartnerRepo.
func NewPartnerRepo(db *DB) *PartnerRepo {
	return &PartnerRepo{db: db}
}

const partnerColumns = `
	id, name, street, street2, zip, city, state_name, country_name, country_code,
	latitude, longitude, date_localization,
	encode(ST_AsEWKB(location), 'hex'),
	created_at, updated_at`

func scanPartner(row pgx.Row) (*domain.Partner, error) {
	var (
		p   domain.Partner
		hex *string
	)
	if err := row.Scan(
		&p.ID, &p.Name, &p.Street, &p.Street2, &p.Zip, &p.City, &p.StateName, &p.CountryName, &p.CountryCode,
		&p.Latitude, &p.Longitude, &p.DateLocalization,
		&hex,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	loc, err := scanGeom(hex)
	if err != nil {
		return nil, fmt.Errorf("partner %s location: %w", p.ID, err)
	}
	p.Location = loc
	return &p, nil
}

func collectPartners(rows pgx.Rows) ([]domain.Partner, error) {
	defer rows.Close()
	var out []domain.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// GetByID returns a partner by id.
func (r *PartnerRepo) GetByID(ctx context.Context, id string) (*domain.Partner, error) {
	p, err := scanPartner(r.db.Pool.QueryRow(ctx, `SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// UpsertBatch inserts or updates many partners using pgx.Batch. A blank id
// gets a generated one.
func (r *PartnerRepo) UpsertBatch(ctx context.Context, partners []domain.Partner) error {
	batch := &pgx.Batch{}
	for _, p := range partners {
		loc, err := geomParam(p.Location)
		if err != nil {
			return fmt.Errorf("partner %q location: %w", p.Name, err)
		}
		batch.Queue(`
			INSERT INTO partners (id, name, street, street2, zip, city, state_name, country_name, country_code,
			                      latitude, longitude, date_localization, location)
			VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3, $4, $5, $6, $7, $8, $9,
			        $10, $11, $12, ST_GeomFromEWKB(decode($13, 'hex')))
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, street = EXCLUDED.street, street2 = EXCLUDED.street2,
			    zip = EXCLUDED.zip, city = EXCLUDED.city, state_name = EXCLUDED.state_name,
			    country_name = EXCLUDED.country_name, country_code = EXCLUDED.country_code,
			    latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude,
			    location = EXCLUDED.location, updated_at = now()
		`, p.ID, p.Name, p.Street, p.Street2, p.Zip, p.City, p.StateName, p.CountryName, p.CountryCode,
			p.Latitude, p.Longitude, p.DateLocalization, loc)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range partners {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// UpdateLocation writes coordinates, localization date and geometry in one statement.
func (r *PartnerRepo) UpdateLocation(ctx context.Context, id string, upd domain.LocationUpdate) error {
	loc, err := geomParam(upd.Location)
	if err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE partners
		SET latitude = $2, longitude = $3, date_localization = $4,
		    location = ST_GeomFromEWKB(decode($5, 'hex')), updated_at = now()
		WHERE id = $1
	`, id, upd.Latitude, upd.Longitude, upd.DateLocalization, loc)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindWithin returns located partners whose location falls in b, nearest to
// center first. Both the box filter and the KNN ordering use the GiST index on
// location.
func (r *PartnerRepo) FindWithin(ctx context.Context, center domain.GeoPoint, b domain.Bounds, limit int) ([]domain.Partner, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+partnerColumns+`
		FROM partners
		WHERE location && ST_MakeEnvelope($1, $2, $3, $4, 4326)
		ORDER BY location <-> ST_SetSRID(ST_MakePoint($5, $6), 4326), id
		LIMIT $7
	`, b.MinLon, b.MinLat, b.MaxLon, b.MaxLat, center.Lon, center.Lat, limit)
	if err != nil {
		return nil, err
	}
	return collectPartners(rows)
}

// ListLocated returns partners with a location, most recently localized first.
func (r *PartnerRepo) ListLocated(ctx context.Context, limit int) ([]domain.Partner, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+partnerColumns+`
		FROM partners
		WHERE location IS NOT NULL
		ORDER BY date_localization DESC NULLS LAST, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectPartners(rows)
}
