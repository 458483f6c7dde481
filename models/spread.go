package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LockedSpread is the points handicap frozen for an event before kickoff.
// Spreads are signed from each team's own perspective: negative = favorite.
// By convention AwaySpread == -HomeSpread, but both are stored and carried
// independently. Immutable once LockedAt is set; the lines collaborator is
// the only writer.
type LockedSpread struct {
	EventID    int             `json:"event_id"`
	HomeSpread decimal.Decimal `json:"home_spread"`
	AwaySpread decimal.Decimal `json:"away_spread"`
	LockedAt   time.Time       `json:"locked_at"`
}
