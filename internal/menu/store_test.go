package menu

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const menuSchema = `
CREATE TABLE menu (
    key   TEXT PRIMARY KEY,
    name  TEXT NOT NULL,
    price INTEGER NOT NULL
);`

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	db.MustExec(menuSchema)
	return db
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Latte":        "latte",
		"Flat White":   "flat_white",
		"  Espresso  ": "espresso",
		"iced latte":   "iced_latte",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in))
	}
}

func TestUpsertAndGet(t *testing.T) {
	s := NewStore(newTestDB(t))
	ctx := context.Background()

	key, err := s.Upsert(ctx, "Latte", 45)
	require.NoError(t, err)
	assert.Equal(t, "latte", key)

	item, err := s.Get(ctx, "latte")
	require.NoError(t, err)
	assert.Equal(t, Item{Key: "latte", Name: "Latte", Price: 45}, item)
}

func TestUpsertOverwritesSameKey(t *testing.T) {
	s := NewStore(newTestDB(t))
	ctx := context.Background()

	_, err := s.Upsert(ctx, "Latte", 45)
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "Latte", 50)
	require.NoError(t, err)

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 50, items[0].Price)
}

func TestUpsertRejectsNegativePrice(t *testing.T) {
	s := NewStore(newTestDB(t))

	_, err := s.Upsert(context.Background(), "Latte", -1)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestGetMissing(t *testing.T) {
	s := NewStore(newTestDB(t))

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := NewStore(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.Remove(ctx, "absent"))

	_, err := s.Upsert(ctx, "Latte", 45)
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, "latte"))

	_, err = s.Get(ctx, "latte")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Remove(ctx, "latte"))
}

func TestListOrdersByName(t *testing.T) {
	s := NewStore(newTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"Mocha", "Americano", "Latte"} {
		_, err := s.Upsert(ctx, name, 40)
		require.NoError(t, err)
	}

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Americano", items[0].Name)
	assert.Equal(t, "Latte", items[1].Name)
	assert.Equal(t, "Mocha", items[2].Name)
}

func TestFindByNameIsCaseInsensitive(t *testing.T) {
	s := NewStore(newTestDB(t))
	ctx := context.Background()

	_, err := s.Upsert(ctx, "Flat White", 55)
	require.NoError(t, err)

	item, err := s.FindByName(ctx, "flat white")
	require.NoError(t, err)
	assert.Equal(t, "flat_white", item.Key)

	item, err = s.FindByName(ctx, "  FLAT WHITE ")
	require.NoError(t, err)
	assert.Equal(t, "flat_white", item.Key)

	_, err = s.FindByName(ctx, "cortado")
	assert.ErrorIs(t, err, ErrNotFound)
}
