package models

import "time"

type MatchupStatus string

const (
	// MatchupStatusPending — создан при построении сетки, ещё не решён.
	MatchupStatusPending MatchupStatus = "pending"
	// MatchupStatusResolved — решён (обычным проходом или ручным override).
	MatchupStatusResolved MatchupStatus = "resolved"
	// MatchupStatusAwaitingManual — push по спреду, ждёт ручного решения.
	MatchupStatusAwaitingManual MatchupStatus = "awaiting_manual"
)

type DecisionMethod string

const (
	DecidedByStraight DecisionMethod = "straight"
	DecidedByATS      DecisionMethod = "ats"
	// Ручной override комиссионера хранится как NULL в decided_by.
)

// Matchup is one round-specific pairing of two owned teams inside a pool,
// settled by exactly one real-world event.
//
// HomeParticipantID/AwayParticipantID are frozen at first resolution: they
// record who held the two teams when the game was settled, so the history
// stays legible after later captures move the teams to other owners. They
// are never overwritten by corrections.
type Matchup struct {
	ID                  int             `json:"id"`
	PoolID              int             `json:"pool_id"`
	Round               int             `json:"round"`
	EventID             int             `json:"event_id"`
	HomeTeamCode        string          `json:"home_team_code"`
	AwayTeamCode        string          `json:"away_team_code"`
	HomeParticipantID   *int            `json:"home_participant_id,omitempty"`
	AwayParticipantID   *int            `json:"away_participant_id,omitempty"`
	WinnerParticipantID *int            `json:"winner_participant_id,omitempty"`
	Status              MatchupStatus   `json:"status"`
	DecidedBy           *DecisionMethod `json:"decided_by,omitempty"`
	DecidedAt           *time.Time      `json:"decided_at,omitempty"`
	Note                *string         `json:"note,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

func (m *Matchup) IsResolved() bool {
	return m.Status == MatchupStatusResolved
}
