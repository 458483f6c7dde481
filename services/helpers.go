package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-pools/models"
	"github.com/Dosada05/bracket-pools/outcome"
)

func ownerID(record *models.OwnershipRecord) *int {
	if record == nil {
		return nil
	}
	id := record.ParticipantID
	return &id
}

func resolveScores(suppliedHome, suppliedAway *int, event *models.Event) (int, int, bool, error) {
	// A lone score is a caller mistake, not a request to fall back to the
	// event; falling through would silently resolve off stale data.
	if (suppliedHome == nil) != (suppliedAway == nil) {
		return 0, 0, false, fmt.Errorf("%w: home_score and away_score must be supplied together", ErrValidationFailed)
	}
	if suppliedHome != nil {
		return *suppliedHome, *suppliedAway, true, nil
	}
	if event.HasFinalScore() {
		return *event.FinalHomeScore, *event.FinalAwayScore, true, nil
	}
	return 0, 0, false, nil
}

func sideOwners(winningSide outcome.Side, homeOwner, awayOwner *models.OwnershipRecord) (winner, loser *models.OwnershipRecord) {
	if winningSide == outcome.SideHome {
		return homeOwner, awayOwner
	}
	return awayOwner, homeOwner
}

func sideTeam(side outcome.Side, matchup *models.Matchup) string {
	if side == outcome.SideHome {
		return matchup.HomeTeamCode
	}
	return matchup.AwayTeamCode
}

// failureReason buckets a pass error for metrics labels.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrIncompleteScore):
		return "incomplete_score"
	case errors.Is(err, ErrMissingSpread):
		return "missing_spread"
	case errors.Is(err, ErrAlreadyResolved):
		return "already_resolved"
	case errors.Is(err, ErrAwaitingManualDecision):
		return "awaiting_manual"
	case errors.Is(err, ErrMatchupNotResolved):
		return "not_resolved"
	case errors.Is(err, ErrMatchupNotFound),
		errors.Is(err, ErrEventNotFound),
		errors.Is(err, ErrPoolNotFound),
		errors.Is(err, ErrParticipantNotFound):
		return "not_found"
	case errors.Is(err, ErrValidationFailed), errors.Is(err, ErrManualWinnerNotInPool):
		return "validation"
	default:
		return "internal"
	}
}
