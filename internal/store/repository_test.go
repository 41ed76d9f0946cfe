package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/shiprate/internal/store"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFileRepository_Get(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "acme.json", acmeJSON)
	writeFile(t, dir, "north.yaml", "currency: EUR\ncountry: DE\n")

	repo := store.NewFileRepository(dir)
	ctx := context.Background()

	s, err := repo.Get(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, "acme", s.StoreID)
	assert.Len(t, s.Shipping.Zones, 2)

	s, err = repo.Get(ctx, "north")
	require.NoError(t, err)
	assert.Equal(t, "north", s.StoreID, "store id comes from the file name when the record has none")
	assert.Equal(t, "EUR", s.Currency)
	assert.Empty(t, s.Shipping.Zones)
}

func TestFileRepository_Get_NotFound(t *testing.T) {
	repo := store.NewFileRepository(t.TempDir())
	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrStoreNotFound)
}

func TestFileRepository_Get_InvalidID(t *testing.T) {
	repo := store.NewFileRepository(t.TempDir())
	_, err := repo.Get(context.Background(), "../secrets")
	assert.ErrorIs(t, err, store.ErrInvalidStoreID)
}

func TestFileRepository_Get_MismatchedStoreID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "other.json", acmeJSON)

	_, err := store.NewFileRepository(dir).Get(context.Background(), "other")
	assert.ErrorIs(t, err, store.ErrInvalidSettings)
}

func TestFileRepository_Get_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yml", "shipping: [\n")

	_, err := store.NewFileRepository(dir).Get(context.Background(), "broken")
	assert.ErrorIs(t, err, store.ErrInvalidSettings)
	assert.Contains(t, err.Error(), "broken.yml")
}

func TestFileRepository_List(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zeta.yml", "")
	writeFile(t, dir, "acme.json", "{}")
	writeFile(t, dir, "acme.yaml", "")
	writeFile(t, dir, "notes.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

	ids, err := store.NewFileRepository(dir).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "zeta"}, ids)
}

func TestFileRepository_List_MissingDir(t *testing.T) {
	_, err := store.NewFileRepository(filepath.Join(t.TempDir(), "nope")).List(context.Background())
	assert.Error(t, err)
}

func TestMemoryRepository(t *testing.T) {
	repo := store.NewMemoryRepository(
		&store.Settings{StoreID: "b", Currency: "USD"},
		&store.Settings{StoreID: "A", Currency: "EUR"},
	)
	ctx := context.Background()

	ids, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	s, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "EUR", s.Currency)

	s.Currency = "GBP"
	again, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "EUR", again.Currency, "callers get a copy")

	repo.Delete("a")
	_, err = repo.Get(ctx, "a")
	assert.ErrorIs(t, err, store.ErrStoreNotFound)
}
