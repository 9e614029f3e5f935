package engine

import "errors"

// User-input validation failures. Reported back to the sender as a
// corrective prompt; the session returns to idle.
var (
	// ErrBadFormat means a drink spec was missing the "Name - Price" dash.
	ErrBadFormat = errors.New("engine: expected format 'Name - Price'")
	// ErrBadPrice means the price part did not parse as a non-negative integer.
	ErrBadPrice = errors.New("engine: price must be a non-negative integer")
	// ErrInvalidCount means a correction amount was not a positive integer.
	ErrInvalidCount = errors.New("engine: count must be a positive integer")
)

// State-consistency failures. Reported as a plain failure message.
var (
	// ErrDrinkNotFound means the named or selected drink is not on the menu.
	ErrDrinkNotFound = errors.New("engine: drink not found")
	// ErrNoDrinkSelected means payment arrived without a pending drink selection.
	ErrNoDrinkSelected = errors.New("engine: no drink selected")
	// ErrNoLastOrder means undo was requested with nothing to reverse.
	ErrNoLastOrder = errors.New("engine: no last order to undo")
	// ErrNotAdmin means an admin-only transition was attempted without
	// a verified password in this session.
	ErrNotAdmin = errors.New("engine: admin access required")
	// ErrUnknownPayment means the payment action id named no known method.
	ErrUnknownPayment = errors.New("engine: unknown payment method")
)
