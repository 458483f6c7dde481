package models

import "time"

type AcquisitionKind string

const (
	AcquiredInitial AcquisitionKind = "initial"
	AcquiredCapture AcquisitionKind = "capture"
)

// OwnershipRecord maps (pool, team) to the participant currently holding the
// team. At most one live record exists per (pool, team); a team with no
// record is eliminated and no longer in play. Records are created at pool
// start (initial) and afterwards mutated only by the resolution and
// correction orchestrators.
type OwnershipRecord struct {
	ID            int             `json:"id"`
	PoolID        int             `json:"pool_id"`
	TeamCode      string          `json:"team_code"`
	ParticipantID int             `json:"participant_id"`
	AcquiredVia   AcquisitionKind `json:"acquired_via"`
	FromMatchupID *int            `json:"from_matchup_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
