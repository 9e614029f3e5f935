// Package session holds per-user conversation state. Sessions are
// transient by design: they live only in process memory and represent an
// in-flight dialogue, not business state. A restart drops them all.
package session

// Awaiting enumerates the pending question a session may have. At most
// one mode is active at a time; that invariant is structural because the
// modes share a single field.
type Awaiting int

const (
	// AwaitNone means no question is pending.
	AwaitNone Awaiting = iota
	// AwaitPassword means the next text message is an admin password attempt.
	AwaitPassword
	// AwaitNewDrinkSpec means the next text message is a "Name - Price" spec.
	AwaitNewDrinkSpec
	// AwaitEditStatsName means the next text message names the drink to correct.
	AwaitEditStatsName
	// AwaitEditStatsCount means the next text message is the correction amount.
	AwaitEditStatsCount
)

// OrderRef snapshots a completed sale for undo. UnitPrice is the price
// at the time of sale, so a later menu price change cannot skew the
// reversal.
type OrderRef struct {
	Date      string
	DrinkKey  string
	Payment   string
	UnitPrice int
}

// Session is the conversation state of one user.
type Session struct {
	Awaiting        Awaiting
	IsAdmin         bool
	SelectedDrink   string
	EditTargetDrink string
	LastOrder       *OrderRef
}

// ResetPending clears the pending question and any in-progress
// selections, returning the session toward idle. Admin status and the
// undo snapshot survive a reset.
func (s *Session) ResetPending() {
	s.Awaiting = AwaitNone
	s.SelectedDrink = ""
	s.EditTargetDrink = ""
}
