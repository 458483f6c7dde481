package services

import "errors"

// Общие ошибки сервисного слоя и маппинга HTTP.
var (
	// Ресурсы
	ErrMatchupNotFound     = errors.New("matchup not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrPoolNotFound        = errors.New("pool not found")
	ErrParticipantNotFound = errors.New("participant not found")

	// Ошибки бизнес-правил разрешения матчапов
	//
	// ErrIncompleteScore: no final score is available (neither supplied nor
	// on the event), or straight scoring got a tied score. Not retryable
	// until the data is fixed.
	ErrIncompleteScore = errors.New("no final score available for resolution")
	// ErrMissingSpread: the pool scores against the spread but the event has
	// no locked spread. Retryable once the lines collaborator locks one.
	ErrMissingSpread = errors.New("event has no locked spread")
	// ErrAlreadyResolved: resolve called on a resolved matchup outside a
	// correction flow. Idempotency guard, surfaced as a conflict.
	ErrAlreadyResolved = errors.New("matchup is already resolved")
	// ErrAwaitingManualDecision: the matchup pushed; only a commissioner
	// override or a correction pass can move it forward.
	ErrAwaitingManualDecision = errors.New("matchup pushed and awaits a manual decision")
	// ErrMatchupNotResolved: correction requested for a matchup that was
	// never resolved in the first place.
	ErrMatchupNotResolved = errors.New("matchup has not been resolved yet")

	// Валидация
	ErrValidationFailed      = errors.New("validation failed")
	ErrManualWinnerNotInPool = errors.New("manual winner does not belong to the matchup's pool")
)
