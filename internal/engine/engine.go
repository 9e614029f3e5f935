// Package engine interprets inbound chat events against per-user
// sessions and the menu and ledger stores. It owns every state
// transition of the conversation and never talks to the transport: each
// operation returns an outcome for the caller to render.
//
// Sessions are handled fetch-mutate-store per event. When a persistence
// call fails the mutated session is not saved, so the user can retry the
// same input.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"kavapos/internal/ledger"
	"kavapos/internal/logger"
	"kavapos/internal/menu"
	"kavapos/internal/session"
)

// TextKind classifies the outcome of a free-text message.
type TextKind int

const (
	// TextIgnored means idle free text matched nothing; no reply is owed.
	TextIgnored TextKind = iota
	// PasswordAccepted means the admin password matched.
	PasswordAccepted
	// PasswordRejected means the password attempt failed.
	PasswordRejected
	// DrinkAdded means a "Name - Price" spec was stored.
	DrinkAdded
	// EditDrinkFound means the edit-stats flow resolved a drink and now
	// awaits the correction amount.
	EditDrinkFound
	// StatsReduced means the correction subtracted Count orders.
	StatsReduced
	// StatsZeroed means the correction exhausted the drink's records for
	// today and they were deleted.
	StatsZeroed
)

// TextResult describes what a free-text message meant.
type TextResult struct {
	Kind  TextKind
	Item  menu.Item // DrinkAdded, EditDrinkFound
	Count int       // StatsReduced
}

// Order describes a completed sale.
type Order struct {
	Item    menu.Item
	Payment string
	Date    string
}

// Engine is the conversation state machine.
type Engine struct {
	menu          *menu.Store
	ledger        *ledger.Ledger
	sessions      session.Store
	adminPassword string
	today         func() string
	log           *slog.Logger
}

// New builds an Engine over the given collaborators.
func New(menuStore *menu.Store, led *ledger.Ledger, sessions session.Store, adminPassword string) *Engine {
	return &Engine{
		menu:          menuStore,
		ledger:        led,
		sessions:      sessions,
		adminPassword: adminPassword,
		today:         ledger.Today,
		log:           logger.Component("engine"),
	}
}

// SetClock overrides the ledger date source. Intended for tests.
func (e *Engine) SetClock(today func() string) {
	e.today = today
}

// Session exposes the current session snapshot for a user.
func (e *Engine) Session(userID int64) session.Session {
	return e.sessions.GetOrCreate(userID)
}

// IsAdmin reports whether the user's session has a verified password.
func (e *Engine) IsAdmin(userID int64) bool {
	return e.sessions.GetOrCreate(userID).IsAdmin
}

// Reset discards any pending question or selection, returning the user
// to idle. Used by /start and the back button.
func (e *Engine) Reset(userID int64) {
	sess := e.sessions.GetOrCreate(userID)
	sess.ResetPending()
	e.sessions.Save(userID, sess)
}

// RequestPassword arms the password prompt. Open to everyone.
func (e *Engine) RequestPassword(userID int64) {
	sess := e.sessions.GetOrCreate(userID)
	sess.ResetPending()
	sess.Awaiting = session.AwaitPassword
	e.sessions.Save(userID, sess)
}

// RequestNewDrink arms the "Name - Price" prompt. Admin only.
func (e *Engine) RequestNewDrink(userID int64) error {
	sess := e.sessions.GetOrCreate(userID)
	if !sess.IsAdmin {
		return ErrNotAdmin
	}
	sess.ResetPending()
	sess.Awaiting = session.AwaitNewDrinkSpec
	e.sessions.Save(userID, sess)
	return nil
}

// RequestEditStats arms the first step of the correction flow. Admin only.
func (e *Engine) RequestEditStats(userID int64) error {
	sess := e.sessions.GetOrCreate(userID)
	if !sess.IsAdmin {
		return ErrNotAdmin
	}
	sess.ResetPending()
	sess.Awaiting = session.AwaitEditStatsName
	e.sessions.Save(userID, sess)
	return nil
}

// HandleText routes a free-text message through the pending question of
// the user's session. Idle text that matches nothing is ignored by
// policy, not an error.
func (e *Engine) HandleText(ctx context.Context, userID int64, text string) (TextResult, error) {
	sess := e.sessions.GetOrCreate(userID)
	text = strings.TrimSpace(text)

	switch sess.Awaiting {
	case session.AwaitPassword:
		sess.Awaiting = session.AwaitNone
		if text == e.adminPassword {
			sess.IsAdmin = true
			e.sessions.Save(userID, sess)
			e.debug(ctx, "password accepted", slog.Int64("user_id", userID))
			return TextResult{Kind: PasswordAccepted}, nil
		}
		e.sessions.Save(userID, sess)
		e.debug(ctx, "password rejected", slog.Int64("user_id", userID))
		return TextResult{Kind: PasswordRejected}, nil

	case session.AwaitNewDrinkSpec:
		return e.handleNewDrinkSpec(ctx, userID, sess, text)

	case session.AwaitEditStatsName:
		return e.handleEditStatsName(ctx, userID, sess, text)

	case session.AwaitEditStatsCount:
		return e.handleEditStatsCount(ctx, userID, sess, text)
	}

	e.debug(ctx, "idle text ignored", slog.Int64("user_id", userID))
	return TextResult{Kind: TextIgnored}, nil
}

func (e *Engine) handleNewDrinkSpec(ctx context.Context, userID int64, sess session.Session, text string) (TextResult, error) {
	sess.Awaiting = session.AwaitNone

	name, priceRaw, found := strings.Cut(text, "-")
	if !found {
		e.sessions.Save(userID, sess)
		return TextResult{}, ErrBadFormat
	}
	price, err := strconv.Atoi(strings.TrimSpace(priceRaw))
	if err != nil || price < 0 {
		e.sessions.Save(userID, sess)
		return TextResult{}, ErrBadPrice
	}

	key, err := e.menu.Upsert(ctx, strings.TrimSpace(name), price)
	if errors.Is(err, menu.ErrInvalidPrice) {
		e.sessions.Save(userID, sess)
		return TextResult{}, ErrBadPrice
	}
	if err != nil {
		// Session untouched so the admin can resend the same spec.
		return TextResult{}, err
	}
	item, err := e.menu.Get(ctx, key)
	if err != nil {
		return TextResult{}, err
	}
	e.sessions.Save(userID, sess)
	return TextResult{Kind: DrinkAdded, Item: item}, nil
}

func (e *Engine) handleEditStatsName(ctx context.Context, userID int64, sess session.Session, text string) (TextResult, error) {
	item, err := e.menu.FindByName(ctx, text)
	if errors.Is(err, menu.ErrNotFound) {
		sess.Awaiting = session.AwaitNone
		e.sessions.Save(userID, sess)
		return TextResult{}, ErrDrinkNotFound
	}
	if err != nil {
		return TextResult{}, err
	}

	sess.Awaiting = session.AwaitEditStatsCount
	sess.EditTargetDrink = item.Key
	e.sessions.Save(userID, sess)
	return TextResult{Kind: EditDrinkFound, Item: item}, nil
}

func (e *Engine) handleEditStatsCount(ctx context.Context, userID int64, sess session.Session, text string) (TextResult, error) {
	target := sess.EditTargetDrink
	sess.Awaiting = session.AwaitNone
	sess.EditTargetDrink = ""

	count, err := strconv.Atoi(text)
	if err != nil || count <= 0 {
		e.sessions.Save(userID, sess)
		return TextResult{}, ErrInvalidCount
	}
	if target == "" {
		e.sessions.Save(userID, sess)
		return TextResult{}, ErrDrinkNotFound
	}

	item, err := e.menu.Get(ctx, target)
	if errors.Is(err, menu.ErrNotFound) {
		e.sessions.Save(userID, sess)
		return TextResult{}, ErrDrinkNotFound
	}
	if err != nil {
		return TextResult{}, err
	}

	// Corrections are valued at the current menu price by policy: the
	// operator removes N of today's orders at what the drink costs now.
	zeroed, err := e.ledger.DecrementDrink(ctx, e.today(), target, count, item.Price)
	if errors.Is(err, ledger.ErrRecordNotFound) {
		e.sessions.Save(userID, sess)
		return TextResult{}, err
	}
	if err != nil {
		return TextResult{}, err
	}

	e.sessions.Save(userID, sess)
	if zeroed {
		return TextResult{Kind: StatsZeroed, Item: item}, nil
	}
	return TextResult{Kind: StatsReduced, Item: item, Count: count}, nil
}

// Drinks lists the current menu for browsing.
func (e *Engine) Drinks(ctx context.Context) ([]menu.Item, error) {
	return e.menu.List(ctx)
}

// SelectDrink marks a drink as the pending order for the user.
func (e *Engine) SelectDrink(ctx context.Context, userID int64, key string) (menu.Item, error) {
	item, err := e.menu.Get(ctx, key)
	if errors.Is(err, menu.ErrNotFound) {
		return menu.Item{}, ErrDrinkNotFound
	}
	if err != nil {
		return menu.Item{}, err
	}

	sess := e.sessions.GetOrCreate(userID)
	sess.SelectedDrink = item.Key
	e.sessions.Save(userID, sess)
	return item, nil
}

// Pay finalizes the pending order with the given payment method,
// records the sale at the current menu price, and snapshots the order
// for undo.
func (e *Engine) Pay(ctx context.Context, userID int64, payment string) (Order, error) {
	if payment != ledger.PaymentCash && payment != ledger.PaymentCard {
		return Order{}, ErrUnknownPayment
	}

	sess := e.sessions.GetOrCreate(userID)
	if sess.SelectedDrink == "" {
		return Order{}, ErrNoDrinkSelected
	}

	item, err := e.menu.Get(ctx, sess.SelectedDrink)
	if errors.Is(err, menu.ErrNotFound) {
		// The drink was removed mid-order; abandon the selection.
		sess.SelectedDrink = ""
		e.sessions.Save(userID, sess)
		return Order{}, ErrDrinkNotFound
	}
	if err != nil {
		return Order{}, err
	}

	date := e.today()
	if err := e.ledger.RecordSale(ctx, date, item.Key, payment, item.Price); err != nil {
		return Order{}, err
	}

	sess.LastOrder = &session.OrderRef{
		Date:      date,
		DrinkKey:  item.Key,
		Payment:   payment,
		UnitPrice: item.Price,
	}
	sess.SelectedDrink = ""
	e.sessions.Save(userID, sess)

	e.debug(ctx, "order recorded",
		slog.Int64("user_id", userID),
		slog.String("drink", item.Key),
		slog.String("payment", payment),
	)
	return Order{Item: item, Payment: payment, Date: date}, nil
}

// Undo reverses exactly one unit of this session's most recent sale, at
// the price snapshotted when the sale happened. Single-shot: the
// snapshot is cleared on completion. Admin only.
func (e *Engine) Undo(ctx context.Context, userID int64) error {
	sess := e.sessions.GetOrCreate(userID)
	if !sess.IsAdmin {
		return ErrNotAdmin
	}
	if sess.LastOrder == nil {
		return ErrNoLastOrder
	}

	ref := *sess.LastOrder
	err := e.ledger.DecrementOne(ctx, ref.Date, ref.DrinkKey, ref.Payment, ref.UnitPrice)
	if errors.Is(err, ledger.ErrRecordNotFound) {
		// The row was already corrected away; the snapshot is spent.
		sess.LastOrder = nil
		e.sessions.Save(userID, sess)
		return err
	}
	if err != nil {
		return err
	}

	sess.LastOrder = nil
	e.sessions.Save(userID, sess)
	e.debug(ctx, "order undone",
		slog.Int64("user_id", userID),
		slog.String("drink", ref.DrinkKey),
	)
	return nil
}

// RemoveDrink deletes a drink from the menu. Admin only; removing an
// absent key succeeds.
func (e *Engine) RemoveDrink(ctx context.Context, userID int64, key string) error {
	if !e.IsAdmin(userID) {
		return ErrNotAdmin
	}
	return e.menu.Remove(ctx, key)
}

// StatsToday returns today's ledger snapshot and its total revenue.
func (e *Engine) StatsToday(ctx context.Context) ([]ledger.Row, int, error) {
	rows, err := e.ledger.Query(ctx, e.today())
	if err != nil {
		return nil, 0, err
	}
	return rows, ledger.Total(rows), nil
}

func (e *Engine) debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	if e.log == nil {
		return
	}
	if rid := logger.RIDFrom(ctx); rid != "" {
		attrs = append(attrs, slog.String("rid", rid))
	}
	e.log.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}
