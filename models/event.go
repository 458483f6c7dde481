package models

import "time"

type EventStatus string

const (
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusLive      EventStatus = "live"
	EventStatusFinal     EventStatus = "final"
)

// Event is one real-world contest. The schedule collaborator owns it; the
// resolution engine only reads it and writes final scores/status back.
type Event struct {
	ID             int         `json:"id"`
	HomeTeamCode   string      `json:"home_team_code"`
	AwayTeamCode   string      `json:"away_team_code"`
	FinalHomeScore *int        `json:"final_home_score,omitempty"`
	FinalAwayScore *int        `json:"final_away_score,omitempty"`
	Status         EventStatus `json:"status"`
	StartTime      time.Time   `json:"start_time"`
	CreatedAt      time.Time   `json:"created_at"`
}

func (e *Event) HasFinalScore() bool {
	return e.FinalHomeScore != nil && e.FinalAwayScore != nil
}
