package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/shiprate/internal/store"
)

type fakeRow struct {
	data []byte
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*[]byte) = r.data
	return nil
}

type fakeRows struct {
	ids []string
	pos int
	err error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.ids) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	*dest[0].(*string) = r.ids[r.pos-1]
	return nil
}

func (r *fakeRows) Values() ([]any, error) {
	return []any{r.ids[r.pos-1]}, nil
}

type fakeDB struct {
	rows     map[string][]byte
	queryErr error
	lastArgs []any
}

func (db *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	db.lastArgs = args
	data, ok := db.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{data: data}
}

func (db *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if db.queryErr != nil {
		return nil, db.queryErr
	}
	return &fakeRows{ids: []string{"acme", "north"}}, nil
}

func TestPostgresRepository_Get(t *testing.T) {
	db := &fakeDB{rows: map[string][]byte{"acme": []byte(acmeJSON)}}
	repo := store.NewPostgresRepository(db)

	s, err := repo.Get(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, []any{"acme"}, db.lastArgs)
	assert.Equal(t, "acme", s.StoreID)
	assert.Len(t, s.Shipping.Zones, 2)
}

func TestPostgresRepository_Get_NoRows(t *testing.T) {
	repo := store.NewPostgresRepository(&fakeDB{})
	_, err := repo.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, store.ErrStoreNotFound)
}

func TestPostgresRepository_Get_BadJSON(t *testing.T) {
	repo := store.NewPostgresRepository(&fakeDB{rows: map[string][]byte{"bad": []byte(`{"currency": 5}`)}})
	_, err := repo.Get(context.Background(), "bad")
	assert.ErrorIs(t, err, store.ErrInvalidSettings)
}

func TestPostgresRepository_List(t *testing.T) {
	ids, err := store.NewPostgresRepository(&fakeDB{}).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "north"}, ids)

	boom := errors.New("connection refused")
	_, err = store.NewPostgresRepository(&fakeDB{queryErr: boom}).List(context.Background())
	assert.ErrorIs(t, err, boom)
}
