package engine

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kavapos/internal/ledger"
	"kavapos/internal/menu"
	"kavapos/internal/session"
)

const (
	testSchema = `
CREATE TABLE menu (
    key   TEXT PRIMARY KEY,
    name  TEXT NOT NULL,
    price INTEGER NOT NULL
);
CREATE TABLE stats (
    date      TEXT NOT NULL,
    drink_key TEXT NOT NULL,
    payment   TEXT NOT NULL,
    count     INTEGER NOT NULL,
    revenue   INTEGER NOT NULL,
    PRIMARY KEY (date, drink_key, payment)
);`

	testDate     = "2026-08-31"
	testPassword = "espresso-route"
	barista      = int64(1001)
)

type fixture struct {
	engine *Engine
	menu   *menu.Store
	ledger *ledger.Ledger
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	db.MustExec(testSchema)

	menuStore := menu.NewStore(db)
	led := ledger.New(db)
	e := New(menuStore, led, session.NewMemoryStore(), testPassword)
	e.SetClock(func() string { return testDate })
	return fixture{engine: e, menu: menuStore, ledger: led}
}

func (f fixture) addDrink(t *testing.T, name string, price int) string {
	t.Helper()
	key, err := f.menu.Upsert(context.Background(), name, price)
	require.NoError(t, err)
	return key
}

func (f fixture) becomeAdmin(t *testing.T, userID int64) {
	t.Helper()
	f.engine.RequestPassword(userID)
	res, err := f.engine.HandleText(context.Background(), userID, testPassword)
	require.NoError(t, err)
	require.Equal(t, PasswordAccepted, res.Kind)
}

func TestIdleTextIgnored(t *testing.T) {
	f := newFixture(t)

	res, err := f.engine.HandleText(context.Background(), barista, "hello?")
	require.NoError(t, err)
	assert.Equal(t, TextIgnored, res.Kind)
	assert.Equal(t, session.AwaitNone, f.engine.Session(barista).Awaiting)
}

func TestPasswordFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.engine.RequestPassword(barista)
	res, err := f.engine.HandleText(ctx, barista, "wrong")
	require.NoError(t, err)
	assert.Equal(t, PasswordRejected, res.Kind)
	assert.False(t, f.engine.IsAdmin(barista))

	// A failed attempt disarms the prompt; the next text is idle again.
	res, err = f.engine.HandleText(ctx, barista, testPassword)
	require.NoError(t, err)
	assert.Equal(t, TextIgnored, res.Kind)

	f.engine.RequestPassword(barista)
	res, err = f.engine.HandleText(ctx, barista, testPassword)
	require.NoError(t, err)
	assert.Equal(t, PasswordAccepted, res.Kind)
	assert.True(t, f.engine.IsAdmin(barista))
}

func TestAdminGating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.engine.RequestNewDrink(barista), ErrNotAdmin)
	assert.ErrorIs(t, f.engine.RequestEditStats(barista), ErrNotAdmin)
	assert.ErrorIs(t, f.engine.Undo(ctx, barista), ErrNotAdmin)
	assert.ErrorIs(t, f.engine.RemoveDrink(ctx, barista, "latte"), ErrNotAdmin)

	f.becomeAdmin(t, barista)
	assert.NoError(t, f.engine.RequestNewDrink(barista))
	assert.NoError(t, f.engine.RequestEditStats(barista))
}

func TestAddDrink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.becomeAdmin(t, barista)

	require.NoError(t, f.engine.RequestNewDrink(barista))
	res, err := f.engine.HandleText(ctx, barista, "Flat White - 55")
	require.NoError(t, err)
	assert.Equal(t, DrinkAdded, res.Kind)
	assert.Equal(t, menu.Item{Key: "flat_white", Name: "Flat White", Price: 55}, res.Item)

	drinks, err := f.engine.Drinks(ctx)
	require.NoError(t, err)
	require.Len(t, drinks, 1)
}

func TestAddDrinkBadFormat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.becomeAdmin(t, barista)

	require.NoError(t, f.engine.RequestNewDrink(barista))
	_, err := f.engine.HandleText(ctx, barista, "Flat White 55")
	assert.ErrorIs(t, err, ErrBadFormat)

	// The prompt is disarmed and the menu untouched.
	assert.Equal(t, session.AwaitNone, f.engine.Session(barista).Awaiting)
	drinks, err := f.engine.Drinks(ctx)
	require.NoError(t, err)
	assert.Empty(t, drinks)
}

func TestAddDrinkBadPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.becomeAdmin(t, barista)

	for _, spec := range []string{"Latte - free", "Latte - -5", "Latte -"} {
		require.NoError(t, f.engine.RequestNewDrink(barista))
		_, err := f.engine.HandleText(ctx, barista, spec)
		assert.ErrorIs(t, err, ErrBadPrice, "spec %q", spec)
	}
}

func TestOrderFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDrink(t, "Latte", 45)

	item, err := f.engine.SelectDrink(ctx, barista, "latte")
	require.NoError(t, err)
	assert.Equal(t, 45, item.Price)

	order, err := f.engine.Pay(ctx, barista, ledger.PaymentCard)
	require.NoError(t, err)
	assert.Equal(t, "latte", order.Item.Key)
	assert.Equal(t, testDate, order.Date)

	rows, total, err := f.engine.StatsToday(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ledger.Row{Date: testDate, DrinkKey: "latte", Payment: ledger.PaymentCard, Count: 1, Revenue: 45}, rows[0])
	assert.Equal(t, 45, total)

	// Payment consumed the selection.
	assert.Empty(t, f.engine.Session(barista).SelectedDrink)
	_, err = f.engine.Pay(ctx, barista, ledger.PaymentCard)
	assert.ErrorIs(t, err, ErrNoDrinkSelected)
}

func TestPayValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Pay(ctx, barista, "crypto")
	assert.ErrorIs(t, err, ErrUnknownPayment)

	_, err = f.engine.Pay(ctx, barista, ledger.PaymentCash)
	assert.ErrorIs(t, err, ErrNoDrinkSelected)
}

func TestPayAfterDrinkRemoved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDrink(t, "Latte", 45)

	_, err := f.engine.SelectDrink(ctx, barista, "latte")
	require.NoError(t, err)
	require.NoError(t, f.menu.Remove(ctx, "latte"))

	_, err = f.engine.Pay(ctx, barista, ledger.PaymentCash)
	assert.ErrorIs(t, err, ErrDrinkNotFound)
	assert.Empty(t, f.engine.Session(barista).SelectedDrink)
}

func TestSelectUnknownDrink(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.SelectDrink(context.Background(), barista, "nope")
	assert.ErrorIs(t, err, ErrDrinkNotFound)
}

func TestUndoSingleShot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDrink(t, "Latte", 45)
	f.becomeAdmin(t, barista)

	for i := 0; i < 2; i++ {
		_, err := f.engine.SelectDrink(ctx, barista, "latte")
		require.NoError(t, err)
		_, err = f.engine.Pay(ctx, barista, ledger.PaymentCard)
		require.NoError(t, err)
	}

	require.NoError(t, f.engine.Undo(ctx, barista))
	rows, total, err := f.engine.StatsToday(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Count)
	assert.Equal(t, 45, total)

	// The snapshot is spent; a second undo has nothing to reverse.
	assert.ErrorIs(t, f.engine.Undo(ctx, barista), ErrNoLastOrder)
}

func TestUndoUsesSalePrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDrink(t, "Latte", 45)
	f.becomeAdmin(t, barista)

	for i := 0; i < 2; i++ {
		_, err := f.engine.SelectDrink(ctx, barista, "latte")
		require.NoError(t, err)
		_, err = f.engine.Pay(ctx, barista, ledger.PaymentCard)
		require.NoError(t, err)
	}

	// A later price change must not skew the reversal.
	f.addDrink(t, "Latte", 60)
	require.NoError(t, f.engine.Undo(ctx, barista))

	rows, total, err := f.engine.StatsToday(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Count)
	assert.Equal(t, 45, total)
}

func TestUndoAfterRowCorrectedAway(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDrink(t, "Latte", 45)
	f.becomeAdmin(t, barista)

	_, err := f.engine.SelectDrink(ctx, barista, "latte")
	require.NoError(t, err)
	_, err = f.engine.Pay(ctx, barista, ledger.PaymentCard)
	require.NoError(t, err)

	_, err = f.ledger.DecrementDrink(ctx, testDate, "latte", 1, 45)
	require.NoError(t, err)

	assert.ErrorIs(t, f.engine.Undo(ctx, barista), ledger.ErrRecordNotFound)
	// The snapshot is cleared either way.
	assert.ErrorIs(t, f.engine.Undo(ctx, barista), ErrNoLastOrder)
}

func TestEditStatsFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDrink(t, "Latte", 45)
	f.becomeAdmin(t, barista)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.ledger.RecordSale(ctx, testDate, "latte", ledger.PaymentCash, 45))
	}

	require.NoError(t, f.engine.RequestEditStats(barista))
	res, err := f.engine.HandleText(ctx, barista, "latte")
	require.NoError(t, err)
	assert.Equal(t, EditDrinkFound, res.Kind)
	assert.Equal(t, "latte", res.Item.Key)

	res, err = f.engine.HandleText(ctx, barista, "2")
	require.NoError(t, err)
	assert.Equal(t, StatsReduced, res.Kind)
	assert.Equal(t, 2, res.Count)

	rows, total, err := f.engine.StatsToday(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Count)
	assert.Equal(t, 45, total)
}

func TestEditStatsZeroes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDrink(t, "Latte", 45)
	f.becomeAdmin(t, barista)
	require.NoError(t, f.ledger.RecordSale(ctx, testDate, "latte", ledger.PaymentCash, 45))

	require.NoError(t, f.engine.RequestEditStats(barista))
	_, err := f.engine.HandleText(ctx, barista, "Latte")
	require.NoError(t, err)

	res, err := f.engine.HandleText(ctx, barista, "5")
	require.NoError(t, err)
	assert.Equal(t, StatsZeroed, res.Kind)

	rows, _, err := f.engine.StatsToday(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestEditStatsUnknownDrink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.becomeAdmin(t, barista)

	require.NoError(t, f.engine.RequestEditStats(barista))
	_, err := f.engine.HandleText(ctx, barista, "cortado")
	assert.ErrorIs(t, err, ErrDrinkNotFound)
	assert.Equal(t, session.AwaitNone, f.engine.Session(barista).Awaiting)
}

func TestEditStatsInvalidCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDrink(t, "Latte", 45)
	f.becomeAdmin(t, barista)

	for _, raw := range []string{"zero", "0", "-3"} {
		require.NoError(t, f.engine.RequestEditStats(barista))
		_, err := f.engine.HandleText(ctx, barista, "latte")
		require.NoError(t, err)

		_, err = f.engine.HandleText(ctx, barista, raw)
		assert.ErrorIs(t, err, ErrInvalidCount, "count %q", raw)
		assert.Equal(t, session.AwaitNone, f.engine.Session(barista).Awaiting)
	}
}

func TestEditStatsNoRecordsToday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDrink(t, "Latte", 45)
	f.becomeAdmin(t, barista)

	require.NoError(t, f.engine.RequestEditStats(barista))
	_, err := f.engine.HandleText(ctx, barista, "latte")
	require.NoError(t, err)

	_, err = f.engine.HandleText(ctx, barista, "1")
	assert.ErrorIs(t, err, ledger.ErrRecordNotFound)
}

func TestResetClearsPendingQuestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.engine.RequestPassword(barista)
	f.engine.Reset(barista)

	res, err := f.engine.HandleText(ctx, barista, testPassword)
	require.NoError(t, err)
	assert.Equal(t, TextIgnored, res.Kind)
	assert.False(t, f.engine.IsAdmin(barista))
}

func TestRemoveDrink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDrink(t, "Latte", 45)
	f.becomeAdmin(t, barista)

	require.NoError(t, f.engine.RemoveDrink(ctx, barista, "latte"))
	drinks, err := f.engine.Drinks(ctx)
	require.NoError(t, err)
	assert.Empty(t, drinks)

	// Removing an absent key is fine.
	assert.NoError(t, f.engine.RemoveDrink(ctx, barista, "latte"))
}
