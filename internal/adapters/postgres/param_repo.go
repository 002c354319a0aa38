package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ParamRepo implements ports.ParameterRepository over config_parameters.
type ParamRepo struct {
	db *DB
}

func NewParamRepo(db *DB) *ParamRepo {
	return &ParamRepo{db: db}
}

// Get returns "" when key is unset.
func (r *ParamRepo) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := r.db.Pool.QueryRow(ctx, `SELECT value FROM config_parameters WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (r *ParamRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO config_parameters (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, value)
	return err
}
