package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type AuditActionType string

const (
	AuditActionMatchupResolved AuditActionType = "matchup_resolved"
)

// AuditLogEntry is one append-only domain event. Payload is stored as JSON
// but always marshalled from (and unmarshalled into) a typed variant per
// action type; loose blobs are rejected at write and read time.
type AuditLogEntry struct {
	ID         int             `json:"id"`
	PoolID     int             `json:"pool_id"`
	ActionType AuditActionType `json:"action_type"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Result types recorded in matchup_resolved payloads.
const (
	ResultAdvances = "advances"
	ResultUpset    = "upset"
	ResultCaptured = "captured"
	ResultPush     = "push"
	ResultManual   = "manual"
)

var ErrInvalidAuditPayload = errors.New("invalid audit payload")

// MatchupResolvedPayload carries everything a correction needs to locate the
// entry and everything description rendering needs, without re-reading the
// matchup: ids, the result category, both raw scores and the spread snapshot
// the decision used.
type MatchupResolvedPayload struct {
	MatchupID           int              `json:"matchup_id"`
	EventID             int              `json:"event_id"`
	PoolID              int              `json:"pool_id"`
	WinnerParticipantID *int             `json:"winner_participant_id"`
	LoserParticipantID  *int             `json:"loser_participant_id"`
	ResultType          string           `json:"result_type"`
	HomeTeamCode        string           `json:"home_team_code"`
	AwayTeamCode        string           `json:"away_team_code"`
	HomeScore           int              `json:"home_score"`
	AwayScore           int              `json:"away_score"`
	HomeSpread          *decimal.Decimal `json:"home_spread,omitempty"`
	AwaySpread          *decimal.Decimal `json:"away_spread,omitempty"`
	CapturedTeamCode    *string          `json:"captured_team_code,omitempty"`
	EliminatedTeamCode  *string          `json:"eliminated_team_code,omitempty"`
}

func (p *MatchupResolvedPayload) Validate() error {
	if p.MatchupID <= 0 {
		return fmt.Errorf("%w: matchup_id is required", ErrInvalidAuditPayload)
	}
	if p.EventID <= 0 {
		return fmt.Errorf("%w: event_id is required", ErrInvalidAuditPayload)
	}
	if p.HomeTeamCode == "" || p.AwayTeamCode == "" {
		return fmt.Errorf("%w: team codes are required", ErrInvalidAuditPayload)
	}
	if p.HomeScore < 0 || p.AwayScore < 0 {
		return fmt.Errorf("%w: scores must be non-negative", ErrInvalidAuditPayload)
	}
	switch p.ResultType {
	case ResultAdvances, ResultUpset, ResultCaptured, ResultPush, ResultManual:
	default:
		return fmt.Errorf("%w: unknown result type %q", ErrInvalidAuditPayload, p.ResultType)
	}
	return nil
}

func (p *MatchupResolvedPayload) Marshal() (json.RawMessage, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal matchup_resolved payload: %w", err)
	}
	return raw, nil
}

// ParseMatchupResolvedPayload decodes and re-validates a stored payload.
func ParseMatchupResolvedPayload(raw json.RawMessage) (*MatchupResolvedPayload, error) {
	var p MatchupResolvedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAuditPayload, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
