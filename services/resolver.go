package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dosada05/bracket-pools/models"
	"github.com/Dosada05/bracket-pools/outcome"
	"github.com/Dosada05/bracket-pools/repositories"
)

// TxManager runs a resolution or correction pass as one atomic unit of work.
// Satisfied by db.TxRunner.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// Notifier pushes committed results to pool viewers. Satisfied by live.Hub.
type Notifier interface {
	BroadcastToRoom(roomID string, message interface{})
}

type ResolutionResult struct {
	MatchupID           int              `json:"matchup_id"`
	PoolID              int              `json:"pool_id"`
	EventID             int              `json:"event_id"`
	WinnerParticipantID *int             `json:"winner_participant_id"`
	ResultType          string           `json:"result_type"`
	DecidedBy           *models.DecisionMethod `json:"decided_by"`
	HomeScore           int              `json:"home_score"`
	AwayScore           int              `json:"away_score"`
	HomeSpread          *decimal.Decimal `json:"home_spread,omitempty"`
	AwaySpread          *decimal.Decimal `json:"away_spread,omitempty"`
	CapturedTeamCode    *string          `json:"captured_team_code,omitempty"`
	EliminatedTeamCode  *string          `json:"eliminated_team_code,omitempty"`
	// UnaffiliatedWinner flags that the winning side had no owner: the
	// round settled, but nobody advances from it. A warning, not an error.
	UnaffiliatedWinner bool `json:"unaffiliated_winner,omitempty"`
}

// resolverCore holds the data access both orchestrators share and applies
// one classification + ownership-delta pass inside a caller-owned
// transaction. The caller is responsible for having locked the matchup row.
type resolverCore struct {
	poolRepo        repositories.PoolRepository
	eventRepo       repositories.EventRepository
	spreadRepo      repositories.SpreadRepository
	matchupRepo     repositories.MatchupRepository
	ownershipRepo   repositories.OwnershipRepository
	auditRepo       repositories.AuditRepository
	participantRepo repositories.ParticipantRepository
	logger          *slog.Logger
}

func (c *resolverCore) lockMatchup(ctx context.Context, tx *sql.Tx, matchupID int) (*models.Matchup, error) {
	matchup, err := c.matchupRepo.GetByIDForUpdate(ctx, tx, matchupID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchupNotFound) {
			return nil, fmt.Errorf("%w: matchup %d", ErrMatchupNotFound, matchupID)
		}
		return nil, err
	}
	return matchup, nil
}

// apply runs steps 2–9 of a resolution pass: classify, move ownership,
// write the matchup record, append the audit entry, propagate the event
// score. The matchup row must already be locked in tx.
func (c *resolverCore) apply(
	ctx context.Context,
	tx *sql.Tx,
	matchup *models.Matchup,
	suppliedHome, suppliedAway *int,
	manualWinnerID *int,
	note *string,
) (*ResolutionResult, error) {
	pool, err := c.poolRepo.GetByID(ctx, matchup.PoolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, fmt.Errorf("%w: pool %d (matchup %d)", ErrPoolNotFound, matchup.PoolID, matchup.ID)
		}
		return nil, err
	}

	event, err := c.eventRepo.GetByID(ctx, matchup.EventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, fmt.Errorf("%w: event %d (matchup %d)", ErrEventNotFound, matchup.EventID, matchup.ID)
		}
		return nil, err
	}

	homeScore, awayScore, haveScores, err := resolveScores(suppliedHome, suppliedAway, event)
	if err != nil {
		return nil, err
	}
	if haveScores && (homeScore < 0 || awayScore < 0) {
		return nil, fmt.Errorf("%w: scores must be non-negative", ErrValidationFailed)
	}

	if manualWinnerID != nil {
		return c.applyManualOverride(ctx, tx, matchup, pool, event, *manualWinnerID, homeScore, awayScore, haveScores, note)
	}

	if !haveScores {
		return nil, fmt.Errorf("%w: event %d (matchup %d)", ErrIncompleteScore, event.ID, matchup.ID)
	}

	classifyInput := outcome.Input{
		HomeScore: homeScore,
		AwayScore: awayScore,
		Mode:      pool.Mode,
		Rule:      pool.ScoringRule,
	}

	var spread *models.LockedSpread
	if pool.CaptureATS() {
		spread, err = c.spreadRepo.GetLockedSpread(ctx, tx, event.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrSpreadNotFound) {
				return nil, fmt.Errorf("%w: event %d (matchup %d)", ErrMissingSpread, event.ID, matchup.ID)
			}
			return nil, err
		}
		classifyInput.HomeSpread = spread.HomeSpread
		classifyInput.AwaySpread = spread.AwaySpread
	}

	out, err := outcome.Classify(classifyInput)
	if err != nil {
		if errors.Is(err, outcome.ErrTiedScore) {
			return nil, fmt.Errorf("%w: tied score %d-%d (matchup %d)", ErrIncompleteScore, homeScore, awayScore, matchup.ID)
		}
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	homeOwner, err := c.currentOwner(ctx, tx, pool.ID, matchup.HomeTeamCode)
	if err != nil {
		return nil, err
	}
	awayOwner, err := c.currentOwner(ctx, tx, pool.ID, matchup.AwayTeamCode)
	if err != nil {
		return nil, err
	}

	// Snapshot who held the teams when the game settled. Write-once: a
	// correction never disturbs the original snapshot.
	if err := c.matchupRepo.FreezeParticipants(ctx, tx, matchup.ID, ownerID(homeOwner), ownerID(awayOwner)); err != nil {
		return nil, err
	}

	result := &ResolutionResult{
		MatchupID:  matchup.ID,
		PoolID:     pool.ID,
		EventID:    event.ID,
		ResultType: string(out.ResultType),
		HomeScore:  homeScore,
		AwayScore:  awayScore,
	}
	if spread != nil {
		result.HomeSpread = &spread.HomeSpread
		result.AwaySpread = &spread.AwaySpread
	}

	payload := &models.MatchupResolvedPayload{
		MatchupID:    matchup.ID,
		EventID:      event.ID,
		PoolID:       pool.ID,
		ResultType:   string(out.ResultType),
		HomeTeamCode: matchup.HomeTeamCode,
		AwayTeamCode: matchup.AwayTeamCode,
		HomeScore:    homeScore,
		AwayScore:    awayScore,
		HomeSpread:   result.HomeSpread,
		AwaySpread:   result.AwaySpread,
	}

	if out.IsPush() {
		// No decision, no ownership change. The matchup parks in an
		// explicit awaiting-manual state until a commissioner overrides it
		// or a spread correction re-resolves it.
		if err := c.matchupRepo.SetResolution(ctx, tx, matchup.ID, nil, models.MatchupStatusAwaitingManual, nil, nil, note); err != nil {
			return nil, err
		}
		if err := c.appendAudit(ctx, tx, pool.ID, payload); err != nil {
			return nil, err
		}
		if err := c.propagateEventScore(ctx, tx, event, homeScore, awayScore); err != nil {
			return nil, err
		}
		return result, nil
	}

	winnerOwner, loserOwner := sideOwners(out.WinningSide, homeOwner, awayOwner)
	losingTeam := sideTeam(out.WinningSide.Opposite(), matchup)

	result.WinnerParticipantID = ownerID(winnerOwner)
	result.UnaffiliatedWinner = winnerOwner == nil
	payload.WinnerParticipantID = ownerID(winnerOwner)
	payload.LoserParticipantID = ownerID(loserOwner)

	if result.UnaffiliatedWinner {
		c.logger.Warn("winning side has no owner",
			slog.Int("matchup_id", matchup.ID),
			slog.String("result_type", string(out.ResultType)),
		)
	}

	// Ownership deltas apply only in capture-mode pools; standard pools use
	// the ledger as a static assignment.
	if pool.Mode == models.PoolModeCapture {
		switch out.ResultType {
		case outcome.Captured:
			// The favorite won the game but its team changes hands. A
			// winning-side owner is required; the losing team may already
			// be unowned (correction re-runs), in which case the transfer
			// simply re-assigns it.
			if winnerOwner != nil {
				if err := c.ownershipRepo.Transfer(ctx, tx, pool.ID, losingTeam, winnerOwner.ParticipantID, models.AcquiredCapture, &matchup.ID); err != nil {
					return nil, err
				}
				result.CapturedTeamCode = &losingTeam
				payload.CapturedTeamCode = &losingTeam
			}
		case outcome.Advances, outcome.Upset:
			// Decisive loss: the losing team is out of play.
			if err := c.ownershipRepo.Remove(ctx, tx, pool.ID, losingTeam); err != nil {
				return nil, err
			}
			result.EliminatedTeamCode = &losingTeam
			payload.EliminatedTeamCode = &losingTeam
		}
	}

	decidedBy := models.DecidedByStraight
	if pool.CaptureATS() {
		decidedBy = models.DecidedByATS
	}
	result.DecidedBy = &decidedBy

	now := time.Now().UTC()
	if err := c.matchupRepo.SetResolution(ctx, tx, matchup.ID, result.WinnerParticipantID, models.MatchupStatusResolved, &decidedBy, &now, note); err != nil {
		return nil, err
	}
	if err := c.appendAudit(ctx, tx, pool.ID, payload); err != nil {
		return nil, err
	}
	if err := c.propagateEventScore(ctx, tx, event, homeScore, awayScore); err != nil {
		return nil, err
	}

	return result, nil
}

// applyManualOverride records a commissioner decision verbatim: classifier
// skipped, ownership untouched, decided_by stored as NULL.
func (c *resolverCore) applyManualOverride(
	ctx context.Context,
	tx *sql.Tx,
	matchup *models.Matchup,
	pool *models.Pool,
	event *models.Event,
	winnerID int,
	homeScore, awayScore int,
	haveScores bool,
	note *string,
) (*ResolutionResult, error) {
	participant, err := c.participantRepo.GetByID(ctx, winnerID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, fmt.Errorf("%w: participant %d", ErrParticipantNotFound, winnerID)
		}
		return nil, err
	}
	if participant.PoolID != pool.ID {
		return nil, fmt.Errorf("%w: participant %d belongs to pool %d, matchup is in pool %d",
			ErrManualWinnerNotInPool, winnerID, participant.PoolID, pool.ID)
	}

	homeOwner, err := c.currentOwner(ctx, tx, pool.ID, matchup.HomeTeamCode)
	if err != nil {
		return nil, err
	}
	awayOwner, err := c.currentOwner(ctx, tx, pool.ID, matchup.AwayTeamCode)
	if err != nil {
		return nil, err
	}
	if err := c.matchupRepo.FreezeParticipants(ctx, tx, matchup.ID, ownerID(homeOwner), ownerID(awayOwner)); err != nil {
		return nil, err
	}

	if !haveScores {
		homeScore, awayScore = 0, 0
	}

	now := time.Now().UTC()
	if err := c.matchupRepo.SetResolution(ctx, tx, matchup.ID, &winnerID, models.MatchupStatusResolved, nil, &now, note); err != nil {
		return nil, err
	}

	payload := &models.MatchupResolvedPayload{
		MatchupID:           matchup.ID,
		EventID:             event.ID,
		PoolID:              pool.ID,
		WinnerParticipantID: &winnerID,
		ResultType:          models.ResultManual,
		HomeTeamCode:        matchup.HomeTeamCode,
		AwayTeamCode:        matchup.AwayTeamCode,
		HomeScore:           homeScore,
		AwayScore:           awayScore,
	}
	if err := c.appendAudit(ctx, tx, pool.ID, payload); err != nil {
		return nil, err
	}
	if haveScores {
		if err := c.propagateEventScore(ctx, tx, event, homeScore, awayScore); err != nil {
			return nil, err
		}
	}

	return &ResolutionResult{
		MatchupID:           matchup.ID,
		PoolID:              pool.ID,
		EventID:             event.ID,
		WinnerParticipantID: &winnerID,
		ResultType:          models.ResultManual,
		HomeScore:           homeScore,
		AwayScore:           awayScore,
	}, nil
}

func (c *resolverCore) currentOwner(ctx context.Context, tx *sql.Tx, poolID int, teamCode string) (*models.OwnershipRecord, error) {
	record, err := c.ownershipRepo.GetOwner(ctx, tx, poolID, teamCode)
	if err != nil {
		if errors.Is(err, repositories.ErrOwnershipNotFound) {
			// Eliminated team; legal, the side just has no winner candidate.
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func (c *resolverCore) appendAudit(ctx context.Context, tx *sql.Tx, poolID int, payload *models.MatchupResolvedPayload) error {
	raw, err := payload.Marshal()
	if err != nil {
		return err
	}
	entry := &models.AuditLogEntry{
		PoolID:     poolID,
		ActionType: models.AuditActionMatchupResolved,
		Payload:    raw,
	}
	return c.auditRepo.Append(ctx, tx, entry)
}

func (c *resolverCore) propagateEventScore(ctx context.Context, tx *sql.Tx, event *models.Event, homeScore, awayScore int) error {
	if event.Status == models.EventStatusFinal {
		return nil
	}
	return c.eventRepo.SetFinalScore(ctx, tx, event.ID, homeScore, awayScore)
}
