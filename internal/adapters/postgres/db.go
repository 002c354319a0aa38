package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/geoengine/internal/core/domain"
	"github.com/samirrijal/geoengine/internal/core/geo"
)

// DB wraps pgxpool.Pool and provides a shared connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB connection pool.
func New(ctx context.Context, dsn string, maxConns int32) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close releases pool resources.
func (db *DB) Close() {
	db.Pool.Close()
}

// CheckPostGIS fails when the postgis extension is not installed.
func (db *DB) CheckPostGIS(ctx context.Context) (string, error) {
	var version string
	err := db.Pool.QueryRow(ctx, `SELECT extversion FROM pg_extension WHERE extname = 'postgis'`).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: postgis extension is not installed", domain.ErrGeometryUnavailable)
	}
	if err != nil {
		return "", err
	}
	return version, nil
}

// geomParam encodes g for ST_GeomFromEWKB(decode($n, 'hex')). Empty
// geometries are stored as NULL.
func geomParam(g geo.Geometry) (*string, error) {
	if g.IsEmpty() {
		return nil, nil
	}
	s, err := g.HexEWKB()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// scanGeom decodes encode(ST_AsEWKB(col), 'hex') output.
func scanGeom(hex *string) (geo.Geometry, error) {
	if hex == nil {
		return geo.Empty(), nil
	}
	return geo.Normalize(*hex, true)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}
