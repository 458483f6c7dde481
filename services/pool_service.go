package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-pools/models"
	"github.com/Dosada05/bracket-pools/repositories"
)

// PoolService serves the read-side views of a pool: its matchup records and
// the live ownership ledger.
type PoolService interface {
	GetPool(ctx context.Context, poolID int) (*models.Pool, error)
	ListMatchups(ctx context.Context, poolID int) ([]*models.Matchup, error)
	ListOwnership(ctx context.Context, poolID int) ([]*models.OwnershipRecord, error)
}

type poolService struct {
	poolRepo      repositories.PoolRepository
	matchupRepo   repositories.MatchupRepository
	ownershipRepo repositories.OwnershipRepository
}

func NewPoolService(
	poolRepo repositories.PoolRepository,
	matchupRepo repositories.MatchupRepository,
	ownershipRepo repositories.OwnershipRepository,
) PoolService {
	return &poolService{
		poolRepo:      poolRepo,
		matchupRepo:   matchupRepo,
		ownershipRepo: ownershipRepo,
	}
}

func (s *poolService) GetPool(ctx context.Context, poolID int) (*models.Pool, error) {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, fmt.Errorf("%w: pool %d", ErrPoolNotFound, poolID)
		}
		return nil, err
	}
	return pool, nil
}

func (s *poolService) ListMatchups(ctx context.Context, poolID int) ([]*models.Matchup, error) {
	if _, err := s.GetPool(ctx, poolID); err != nil {
		return nil, err
	}
	matchups, err := s.matchupRepo.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matchups for pool %d: %w", poolID, err)
	}
	return matchups, nil
}

func (s *poolService) ListOwnership(ctx context.Context, poolID int) ([]*models.OwnershipRecord, error) {
	if _, err := s.GetPool(ctx, poolID); err != nil {
		return nil, err
	}
	records, err := s.ownershipRepo.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ownership for pool %d: %w", poolID, err)
	}
	return records, nil
}
