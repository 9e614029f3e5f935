// Package ledger keeps the date-partitioned aggregation of orders and
// revenue by drink and payment method. Rows live in the stats relation
// keyed by (date, drink_key, payment).
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"kavapos/internal/logger"
)

// ErrRecordNotFound is returned by corrective operations when no row
// matches the requested key.
var ErrRecordNotFound = errors.New("ledger: record not found")

// Payment method identifiers stored in the stats relation.
const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

// Row is one aggregated stats record.
type Row struct {
	Date     string `db:"date"`
	DrinkKey string `db:"drink_key"`
	Payment  string `db:"payment"`
	Count    int    `db:"count"`
	Revenue  int    `db:"revenue"`
}

// Today returns the current ledger date in UTC, formatted YYYY-MM-DD.
func Today() string {
	return time.Now().UTC().Format("2006-01-02")
}

// Ledger records sales and corrections.
type Ledger struct {
	db  *sqlx.DB
	log *slog.Logger
}

// New wraps the given database handle.
func New(db *sqlx.DB) *Ledger {
	return &Ledger{db: db, log: logger.Component("svc.ledger")}
}

// RecordSale adds one sale of a drink for the given date and payment
// method. The write is a single conditional upsert so concurrent sales
// of the same (date, drink, payment) key never lose updates.
func (l *Ledger) RecordSale(ctx context.Context, date, drinkKey, payment string, unitPrice int) error {
	query := l.db.Rebind(`
		INSERT INTO stats (date, drink_key, payment, count, revenue)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (date, drink_key, payment)
		DO UPDATE SET count = count + 1, revenue = revenue + excluded.revenue`)
	_, err := l.db.ExecContext(ctx, query, date, drinkKey, payment, unitPrice)
	if err != nil {
		return fmt.Errorf("ledger record sale %s/%s/%s: %w", date, drinkKey, payment, err)
	}
	if l.log != nil {
		l.log.Debug("sale recorded",
			slog.String("event", "ledger.sale"),
			slog.String("date", date),
			slog.String("drink", drinkKey),
			slog.String("payment", payment),
			slog.Int("unit_price", unitPrice),
		)
	}
	return nil
}

// Decrement reduces a record by the given count and by count*unitPrice
// revenue. When by meets or exceeds the current count the record is
// deleted outright; a count can never go negative. Returns
// ErrRecordNotFound when no row matches.
func (l *Ledger) Decrement(ctx context.Context, date, drinkKey, payment string, by, unitPrice int) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger decrement begin: %w", err)
	}
	defer tx.Rollback()

	var count int
	query := tx.Rebind(`SELECT count FROM stats WHERE date = ? AND drink_key = ? AND payment = ?`)
	err = tx.GetContext(ctx, &count, query, date, drinkKey, payment)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRecordNotFound
	}
	if err != nil {
		return fmt.Errorf("ledger decrement read: %w", err)
	}

	if by >= count {
		query = tx.Rebind(`DELETE FROM stats WHERE date = ? AND drink_key = ? AND payment = ?`)
		if _, err := tx.ExecContext(ctx, query, date, drinkKey, payment); err != nil {
			return fmt.Errorf("ledger decrement delete: %w", err)
		}
	} else {
		query = tx.Rebind(`
			UPDATE stats SET count = count - ?, revenue = revenue - ?
			WHERE date = ? AND drink_key = ? AND payment = ?`)
		if _, err := tx.ExecContext(ctx, query, by, by*unitPrice, date, drinkKey, payment); err != nil {
			return fmt.Errorf("ledger decrement update: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ledger decrement commit: %w", err)
	}
	if l.log != nil {
		l.log.Debug("record decremented",
			slog.String("event", "ledger.decrement"),
			slog.String("date", date),
			slog.String("drink", drinkKey),
			slog.String("payment", payment),
			slog.Int("by", by),
			slog.Bool("deleted", by >= count),
		)
	}
	return nil
}

// DecrementOne reverses a single sale. Used by undo.
func (l *Ledger) DecrementOne(ctx context.Context, date, drinkKey, payment string, unitPrice int) error {
	return l.Decrement(ctx, date, drinkKey, payment, 1, unitPrice)
}

// DecrementDrink reduces a drink's records across all payment methods by
// the given total count, valued at unitPrice per order. When by meets or
// exceeds the drink's total count every row is deleted and zeroed
// reports true. Otherwise rows are consumed in payment order, deleting
// any row that reaches zero. Returns ErrRecordNotFound when the drink
// has no rows for the date.
func (l *Ledger) DecrementDrink(ctx context.Context, date, drinkKey string, by, unitPrice int) (zeroed bool, err error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("ledger drink decrement begin: %w", err)
	}
	defer tx.Rollback()

	var rows []Row
	query := tx.Rebind(`
		SELECT date, drink_key, payment, count, revenue FROM stats
		WHERE date = ? AND drink_key = ? ORDER BY payment`)
	if err := tx.SelectContext(ctx, &rows, query, date, drinkKey); err != nil {
		return false, fmt.Errorf("ledger drink decrement read: %w", err)
	}
	if len(rows) == 0 {
		return false, ErrRecordNotFound
	}

	total := 0
	for _, r := range rows {
		total += r.Count
	}

	if by >= total {
		query = tx.Rebind(`DELETE FROM stats WHERE date = ? AND drink_key = ?`)
		if _, err := tx.ExecContext(ctx, query, date, drinkKey); err != nil {
			return false, fmt.Errorf("ledger drink decrement delete: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("ledger drink decrement commit: %w", err)
		}
		return true, nil
	}

	remaining := by
	for _, r := range rows {
		if remaining <= 0 {
			break
		}
		take := remaining
		if take > r.Count {
			take = r.Count
		}
		if take == r.Count {
			query = tx.Rebind(`DELETE FROM stats WHERE date = ? AND drink_key = ? AND payment = ?`)
			if _, err := tx.ExecContext(ctx, query, date, drinkKey, r.Payment); err != nil {
				return false, fmt.Errorf("ledger drink decrement delete row: %w", err)
			}
		} else {
			query = tx.Rebind(`
				UPDATE stats SET count = count - ?, revenue = revenue - ?
				WHERE date = ? AND drink_key = ? AND payment = ?`)
			if _, err := tx.ExecContext(ctx, query, take, take*unitPrice, date, drinkKey, r.Payment); err != nil {
				return false, fmt.Errorf("ledger drink decrement update row: %w", err)
			}
		}
		remaining -= take
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("ledger drink decrement commit: %w", err)
	}
	if l.log != nil {
		l.log.Debug("drink decremented",
			slog.String("event", "ledger.decrement_drink"),
			slog.String("date", date),
			slog.String("drink", drinkKey),
			slog.Int("by", by),
		)
	}
	return false, nil
}

// Query returns the full snapshot of a date.
func (l *Ledger) Query(ctx context.Context, date string) ([]Row, error) {
	var rows []Row
	query := l.db.Rebind(`
		SELECT date, drink_key, payment, count, revenue FROM stats
		WHERE date = ? ORDER BY drink_key, payment`)
	if err := l.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("ledger query %s: %w", date, err)
	}
	return rows, nil
}

// Total sums the revenue of a snapshot.
func Total(rows []Row) int {
	total := 0
	for _, r := range rows {
		total += r.Revenue
	}
	return total
}
