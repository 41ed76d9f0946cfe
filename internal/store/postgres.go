package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	selectSettingsSQL = `SELECT settings FROM store_settings WHERE store_id = $1`
	listStoresSQL     = `SELECT store_id FROM store_settings ORDER BY store_id`
)

// Querier is the subset of *pgxpool.Pool the repository uses.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository reads settings from the store_settings table, where each
// row holds a store's settings record as jsonb.
type PostgresRepository struct {
	db Querier
}

// NewPostgresRepository creates a repository over db.
func NewPostgresRepository(db Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get loads the settings row of storeID.
func (r *PostgresRepository) Get(ctx context.Context, storeID string) (*Settings, error) {
	id, err := NormalizeStoreID(storeID)
	if err != nil {
		return nil, err
	}

	var raw []byte
	if err := r.db.QueryRow(ctx, selectSettingsSQL, id).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, id)
		}
		return nil, fmt.Errorf("querying settings of %s: %w", id, err)
	}

	s, err := Decode(raw, FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", id, err)
	}
	return withStoreID(s, id)
}

// List returns every store ID in the table.
func (r *PostgresRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, listStoresSQL)
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}
	return ids, nil
}

// OpenPool connects to Postgres and verifies the connection.
func OpenPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}
