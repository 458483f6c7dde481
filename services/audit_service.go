package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/bracket-pools/metrics"
	"github.com/Dosada05/bracket-pools/models"
	"github.com/Dosada05/bracket-pools/repositories"
	"github.com/Dosada05/bracket-pools/storage"
)

// AuditTrailEntry pairs a raw audit entry with a rendered human-readable
// description.
type AuditTrailEntry struct {
	Entry       *models.AuditLogEntry `json:"entry"`
	Description string                `json:"description"`
}

type AuditService interface {
	ListPoolTrail(ctx context.Context, poolID int) ([]AuditTrailEntry, error)
	// ArchivePoolTrail exports the pool's full audit trail as a JSON
	// snapshot to object storage and returns where it landed.
	ArchivePoolTrail(ctx context.Context, poolID int) (*storage.UploadResult, error)
}

type auditService struct {
	poolRepo        repositories.PoolRepository
	auditRepo       repositories.AuditRepository
	participantRepo repositories.ParticipantRepository
	uploader        storage.FileUploader
	logger          *slog.Logger
}

func NewAuditService(
	poolRepo repositories.PoolRepository,
	auditRepo repositories.AuditRepository,
	participantRepo repositories.ParticipantRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) AuditService {
	return &auditService{
		poolRepo:        poolRepo,
		auditRepo:       auditRepo,
		participantRepo: participantRepo,
		uploader:        uploader,
		logger:          logger,
	}
}

func (s *auditService) ListPoolTrail(ctx context.Context, poolID int) ([]AuditTrailEntry, error) {
	if _, err := s.poolRepo.GetByID(ctx, poolID); err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, fmt.Errorf("%w: pool %d", ErrPoolNotFound, poolID)
		}
		return nil, err
	}

	entries, err := s.auditRepo.ListByPool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	participants, err := s.participantRepo.ListByPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.DisplayName
	}

	trail := make([]AuditTrailEntry, 0, len(entries))
	for _, entry := range entries {
		description, err := describeEntry(entry, names)
		if err != nil {
			// Payloads are validated on write; a bad one here means shape
			// drift and must surface, not render silently wrong.
			return nil, fmt.Errorf("audit entry %d: %w", entry.ID, err)
		}
		trail = append(trail, AuditTrailEntry{Entry: entry, Description: description})
	}
	return trail, nil
}

func describeEntry(entry *models.AuditLogEntry, names map[int]string) (string, error) {
	switch entry.ActionType {
	case models.AuditActionMatchupResolved:
		payload, err := models.ParseMatchupResolvedPayload(entry.Payload)
		if err != nil {
			return "", err
		}
		return describeResolution(payload, names), nil
	default:
		return "", fmt.Errorf("%w: unknown action type %q", models.ErrInvalidAuditPayload, entry.ActionType)
	}
}

func describeResolution(p *models.MatchupResolvedPayload, names map[int]string) string {
	score := fmt.Sprintf("%s %d — %s %d", p.HomeTeamCode, p.HomeScore, p.AwayTeamCode, p.AwayScore)

	switch p.ResultType {
	case models.ResultManual:
		return fmt.Sprintf("Commissioner override: %s declared winner of %s.", participantName(names, p.WinnerParticipantID), score)
	case models.ResultPush:
		return fmt.Sprintf("%s pushed against the spread (%s); awaiting manual decision.", score, spreadLabel(p))
	case models.ResultCaptured:
		captured := ""
		if p.CapturedTeamCode != nil {
			captured = *p.CapturedTeamCode
		}
		return fmt.Sprintf("%s captured %s from %s: %s covered %s while losing (%s).",
			participantName(names, p.WinnerParticipantID), captured,
			participantName(names, p.LoserParticipantID), winningTeam(p), spreadLabel(p), score)
	case models.ResultUpset:
		return fmt.Sprintf("Upset: %s won outright with %s (%s); %s is out.",
			participantName(names, p.WinnerParticipantID), winningTeam(p), score, losingTeam(p))
	default: // advances
		return fmt.Sprintf("%s advanced with %s (%s); %s is eliminated.",
			participantName(names, p.WinnerParticipantID), winningTeam(p), score, losingTeam(p))
	}
}

func participantName(names map[int]string, id *int) string {
	if id == nil {
		return "an unowned side"
	}
	if name, ok := names[*id]; ok {
		return name
	}
	return fmt.Sprintf("participant %d", *id)
}

func spreadLabel(p *models.MatchupResolvedPayload) string {
	if p.HomeSpread == nil {
		return "no line"
	}
	return fmt.Sprintf("%s %s", p.HomeTeamCode, p.HomeSpread.StringFixed(1))
}

func winningTeam(p *models.MatchupResolvedPayload) string {
	// The covered/winning side's own team: the one not captured/eliminated.
	if p.CapturedTeamCode != nil && *p.CapturedTeamCode == p.HomeTeamCode {
		return p.AwayTeamCode
	}
	if p.EliminatedTeamCode != nil && *p.EliminatedTeamCode == p.HomeTeamCode {
		return p.AwayTeamCode
	}
	return p.HomeTeamCode
}

func losingTeam(p *models.MatchupResolvedPayload) string {
	if p.EliminatedTeamCode != nil {
		return *p.EliminatedTeamCode
	}
	if p.CapturedTeamCode != nil {
		return *p.CapturedTeamCode
	}
	return p.AwayTeamCode
}

type auditArchiveDocument struct {
	PoolID      int                     `json:"pool_id"`
	PoolName    string                  `json:"pool_name"`
	GeneratedAt time.Time               `json:"generated_at"`
	Entries     []*models.AuditLogEntry `json:"entries"`
}

func (s *auditService) ArchivePoolTrail(ctx context.Context, poolID int) (*storage.UploadResult, error) {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, fmt.Errorf("%w: pool %d", ErrPoolNotFound, poolID)
		}
		return nil, err
	}

	entries, err := s.auditRepo.ListByPool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	doc := auditArchiveDocument{
		PoolID:      pool.ID,
		PoolName:    pool.Name,
		GeneratedAt: time.Now().UTC(),
		Entries:     entries,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit archive for pool %d: %w", poolID, err)
	}

	key := fmt.Sprintf("audit/pool_%d/%s.json", poolID, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to upload audit archive for pool %d: %w", poolID, err)
	}

	metrics.AuditArchived()
	s.logger.Info("audit trail archived",
		slog.Int("pool_id", poolID),
		slog.String("key", result.Key),
		slog.Int("entries", len(entries)),
	)
	return result, nil
}
