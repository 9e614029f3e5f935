// Package menu provides the durable drink menu: a mapping from a
// normalized drink key to its display name and price in minor currency
// units.
package menu

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"kavapos/internal/logger"
)

var (
	// ErrNotFound is returned when no menu item exists for a key.
	ErrNotFound = errors.New("menu: item not found")
	// ErrInvalidPrice is returned for negative prices.
	ErrInvalidPrice = errors.New("menu: price must be a non-negative integer")
)

// Item is a single drink on the menu. Price is in minor currency units.
type Item struct {
	Key   string `db:"key"`
	Name  string `db:"name"`
	Price int    `db:"price"`
}

// Slugify derives the stable key for a drink name: lower-cased, spaces
// replaced with underscores. Two names that normalize to the same key
// address the same menu item.
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Store reads and writes menu items.
type Store struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewStore wraps the given database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, log: logger.Component("svc.menu")}
}

// Upsert inserts or overwrites the item keyed by the normalized name and
// returns the key. Repeated identical calls are idempotent.
func (s *Store) Upsert(ctx context.Context, name string, price int) (string, error) {
	if price < 0 {
		return "", ErrInvalidPrice
	}
	key := Slugify(name)
	name = strings.TrimSpace(name)

	start := time.Now()
	query := s.db.Rebind(`
		INSERT INTO menu (key, name, price) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET name = excluded.name, price = excluded.price`)
	_, err := s.db.ExecContext(ctx, query, key, name, price)
	if err != nil {
		return "", fmt.Errorf("menu upsert %q: %w", key, err)
	}
	if s.log != nil {
		s.log.Debug("item upserted",
			slog.String("event", "menu.upsert"),
			slog.String("key", key),
			slog.Int("price", price),
			slog.Duration("duration", logger.Took(start)),
		)
	}
	return key, nil
}

// Remove deletes the item if present. Removing an absent key is a no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	query := s.db.Rebind(`DELETE FROM menu WHERE key = ?`)
	res, err := s.db.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("menu remove %q: %w", key, err)
	}
	if s.log != nil {
		affected, _ := res.RowsAffected()
		s.log.Debug("item removed",
			slog.String("event", "menu.remove"),
			slog.String("key", key),
			slog.Int64("rows", affected),
		)
	}
	return nil
}

// Get returns the item for a key or ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (Item, error) {
	var item Item
	query := s.db.Rebind(`SELECT key, name, price FROM menu WHERE key = ?`)
	err := s.db.GetContext(ctx, &item, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("menu get %q: %w", key, err)
	}
	return item, nil
}

// List returns all items ordered by name. The ordering is for display;
// callers must not rely on it for correctness.
func (s *Store) List(ctx context.Context) ([]Item, error) {
	var items []Item
	err := s.db.SelectContext(ctx, &items, `SELECT key, name, price FROM menu ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("menu list: %w", err)
	}
	return items, nil
}

// FindByName looks up an item by display name, case-insensitively.
func (s *Store) FindByName(ctx context.Context, name string) (Item, error) {
	var item Item
	query := s.db.Rebind(`SELECT key, name, price FROM menu WHERE LOWER(name) = LOWER(?)`)
	err := s.db.GetContext(ctx, &item, query, strings.TrimSpace(name))
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("menu find %q: %w", name, err)
	}
	return item, nil
}
