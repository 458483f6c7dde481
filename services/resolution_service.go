package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/bracket-pools/live"
	"github.com/Dosada05/bracket-pools/metrics"
	"github.com/Dosada05/bracket-pools/models"
	"github.com/Dosada05/bracket-pools/repositories"
)

// maxConcurrentResolutions bounds the fan-out when one event feeds matchups
// in many pools at once.
const maxConcurrentResolutions = 4

type ResolveMatchupInput struct {
	MatchupID int
	HomeScore *int
	AwayScore *int
	// ManualWinnerParticipantID bypasses the classifier entirely
	// (commissioner override).
	ManualWinnerParticipantID *int
	Note                      *string
}

type BatchFailure struct {
	MatchupID int    `json:"matchup_id"`
	Reason    string `json:"reason"`
}

type BatchResult struct {
	EventID     int                 `json:"event_id"`
	Resolutions []*ResolutionResult `json:"resolutions"`
	Failures    []BatchFailure      `json:"failures,omitempty"`
}

type ResolutionService interface {
	// ResolveMatchup settles one matchup from authoritative scores. The
	// whole pass (ownership deltas, matchup record, audit entry, event
	// propagation) commits atomically or not at all.
	ResolveMatchup(ctx context.Context, input ResolveMatchupInput) (*ResolutionResult, error)
	// ResolveEvent writes the event's final score and settles every
	// still-unresolved matchup linked to it, across all pools. Per-matchup
	// failures are isolated and reported, never abort the batch.
	ResolveEvent(ctx context.Context, eventID int, homeScore, awayScore int, note *string) (*BatchResult, error)
}

type resolutionService struct {
	core resolverCore
	txm  TxManager
	hub  Notifier
}

func NewResolutionService(
	txm TxManager,
	poolRepo repositories.PoolRepository,
	eventRepo repositories.EventRepository,
	spreadRepo repositories.SpreadRepository,
	matchupRepo repositories.MatchupRepository,
	ownershipRepo repositories.OwnershipRepository,
	auditRepo repositories.AuditRepository,
	participantRepo repositories.ParticipantRepository,
	hub Notifier,
	logger *slog.Logger,
) ResolutionService {
	return &resolutionService{
		core: resolverCore{
			poolRepo:        poolRepo,
			eventRepo:       eventRepo,
			spreadRepo:      spreadRepo,
			matchupRepo:     matchupRepo,
			ownershipRepo:   ownershipRepo,
			auditRepo:       auditRepo,
			participantRepo: participantRepo,
			logger:          logger,
		},
		txm: txm,
		hub: hub,
	}
}

func (s *resolutionService) ResolveMatchup(ctx context.Context, input ResolveMatchupInput) (*ResolutionResult, error) {
	var result *ResolutionResult

	err := s.txm.RunInTx(ctx, func(tx *sql.Tx) error {
		matchup, err := s.core.lockMatchup(ctx, tx, input.MatchupID)
		if err != nil {
			return err
		}

		switch matchup.Status {
		case models.MatchupStatusResolved:
			return fmt.Errorf("%w: matchup %d", ErrAlreadyResolved, matchup.ID)
		case models.MatchupStatusAwaitingManual:
			// Push: only a commissioner override moves this forward here.
			// Score or spread corrections go through the correction flow.
			if input.ManualWinnerParticipantID == nil {
				return fmt.Errorf("%w: matchup %d", ErrAwaitingManualDecision, matchup.ID)
			}
		}

		result, err = s.core.apply(ctx, tx, matchup, input.HomeScore, input.AwayScore, input.ManualWinnerParticipantID, input.Note)
		return err
	})
	if err != nil {
		metrics.ResolutionFailed(failureReason(err))
		return nil, err
	}

	metrics.ResolutionApplied(result.ResultType)
	if s.hub != nil {
		room := live.PoolRoom(result.PoolID)
		s.hub.BroadcastToRoom(room, live.Message{Type: live.TypeMatchupResolved, Payload: result, RoomID: room})
	}
	return result, nil
}

func (s *resolutionService) ResolveEvent(ctx context.Context, eventID int, homeScore, awayScore int, note *string) (*BatchResult, error) {
	if homeScore < 0 || awayScore < 0 {
		return nil, fmt.Errorf("%w: scores must be non-negative", ErrValidationFailed)
	}

	event, err := s.core.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, fmt.Errorf("%w: event %d", ErrEventNotFound, eventID)
		}
		return nil, err
	}

	// Make the score authoritative first, in its own transaction, so every
	// matchup pass reads a final event.
	if event.Status != models.EventStatusFinal {
		err = s.txm.RunInTx(ctx, func(tx *sql.Tx) error {
			return s.core.eventRepo.SetFinalScore(ctx, tx, eventID, homeScore, awayScore)
		})
		if err != nil {
			return nil, err
		}
	}

	ids, err := s.core.matchupRepo.ListIDsByEvent(ctx, eventID, []models.MatchupStatus{models.MatchupStatusPending})
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{EventID: eventID, Resolutions: make([]*ResolutionResult, 0, len(ids))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentResolutions)
	for _, matchupID := range ids {
		matchupID := matchupID
		g.Go(func() error {
			result, resErr := s.ResolveMatchup(gctx, ResolveMatchupInput{
				MatchupID: matchupID,
				HomeScore: &homeScore,
				AwayScore: &awayScore,
				Note:      note,
			})

			mu.Lock()
			defer mu.Unlock()
			if resErr != nil {
				// Один неудачный матчап не валит весь батч.
				s.core.logger.Warn("batch resolution: matchup failed",
					slog.Int("event_id", eventID),
					slog.Int("matchup_id", matchupID),
					slog.Any("error", resErr),
				)
				batch.Failures = append(batch.Failures, BatchFailure{MatchupID: matchupID, Reason: resErr.Error()})
				return nil
			}
			batch.Resolutions = append(batch.Resolutions, result)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return batch, nil
}
