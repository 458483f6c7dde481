package models

import "time"

type PoolMode string

const (
	PoolModeCapture  PoolMode = "capture"
	PoolModeStandard PoolMode = "standard"
)

type ScoringRule string

const (
	ScoringRuleStraight ScoringRule = "straight"
	ScoringRuleATS      ScoringRule = "ats"
)

type PoolStatus string

const (
	PoolStatusDraft     PoolStatus = "draft"
	PoolStatusActive    PoolStatus = "active"
	PoolStatusCompleted PoolStatus = "completed"
)

type Pool struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Mode        PoolMode    `json:"mode"`
	ScoringRule ScoringRule `json:"scoring_rule"`
	Status      PoolStatus  `json:"status"`
	TeamCount   int         `json:"team_count"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CaptureATS reports whether the pool runs with spread-based capture
// semantics. Every other mode/rule combination falls back to straight
// win/loss scoring.
func (p *Pool) CaptureATS() bool {
	return p.Mode == PoolModeCapture && p.ScoringRule == ScoringRuleATS
}
