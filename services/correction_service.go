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

type CorrectionService interface {
	// ReResolveMatchup reverses a prior resolution and re-applies it with
	// corrected inputs, all inside one transaction: the audit entries the
	// prior pass wrote and the capture rows it created are deleted first,
	// then the full resolution runs again. Calling it twice with the same
	// inputs leaves the ledger and matchup in the same state as calling it
	// once.
	ReResolveMatchup(ctx context.Context, matchupID int, correctedHomeScore, correctedAwayScore *int) (*ResolutionResult, error)
	// ReResolveEvent corrects every already-settled matchup linked to the
	// event (including push-parked ones) using the event's current final
	// score and current locked spread.
	ReResolveEvent(ctx context.Context, eventID int) (*BatchResult, error)
}

type correctionService struct {
	core resolverCore
	txm  TxManager
	hub  Notifier
}

func NewCorrectionService(
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
) CorrectionService {
	return &correctionService{
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

func (s *correctionService) ReResolveMatchup(ctx context.Context, matchupID int, correctedHomeScore, correctedAwayScore *int) (*ResolutionResult, error) {
	var result *ResolutionResult

	err := s.txm.RunInTx(ctx, func(tx *sql.Tx) error {
		matchup, err := s.core.lockMatchup(ctx, tx, matchupID)
		if err != nil {
			return err
		}

		if matchup.Status == models.MatchupStatusPending {
			return fmt.Errorf("%w: matchup %d", ErrMatchupNotResolved, matchupID)
		}

		// Undo exactly what prior passes wrote for this matchup. Clearing
		// first is what makes repeated corrections idempotent.
		auditDeleted, err := s.core.auditRepo.DeleteByMatchup(ctx, tx, matchupID)
		if err != nil {
			return err
		}
		capturesDeleted, err := s.core.ownershipRepo.DeleteCaptureByMatchup(ctx, tx, matchupID)
		if err != nil {
			return err
		}
		s.core.logger.Info("correction: cleared prior effects",
			slog.Int("matchup_id", matchupID),
			slog.Int64("audit_entries_deleted", auditDeleted),
			slog.Int64("captures_deleted", capturesDeleted),
		)

		// Keep the original note unless the caller replaces it later via a
		// fresh resolve; the correction itself is about scores and spreads.
		result, err = s.core.apply(ctx, tx, matchup, correctedHomeScore, correctedAwayScore, nil, matchup.Note)
		return err
	})
	if err != nil {
		metrics.CorrectionFailed(failureReason(err))
		return nil, err
	}

	metrics.CorrectionApplied()
	if s.hub != nil {
		room := live.PoolRoom(result.PoolID)
		s.hub.BroadcastToRoom(room, live.Message{Type: live.TypeMatchupCorrected, Payload: result, RoomID: room})
	}
	return result, nil
}

func (s *correctionService) ReResolveEvent(ctx context.Context, eventID int) (*BatchResult, error) {
	event, err := s.core.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, fmt.Errorf("%w: event %d", ErrEventNotFound, eventID)
		}
		return nil, err
	}
	if !event.HasFinalScore() {
		return nil, fmt.Errorf("%w: event %d has no final score to correct from", ErrIncompleteScore, eventID)
	}

	// Push-parked matchups are included: a corrected spread can turn a push
	// into a decision.
	ids, err := s.core.matchupRepo.ListIDsByEvent(ctx, eventID, []models.MatchupStatus{
		models.MatchupStatusResolved,
		models.MatchupStatusAwaitingManual,
	})
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
			result, resErr := s.ReResolveMatchup(gctx, matchupID, nil, nil)

			mu.Lock()
			defer mu.Unlock()
			if resErr != nil {
				s.core.logger.Warn("batch correction: matchup failed",
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
