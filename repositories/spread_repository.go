package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-pools/models"
)

// ErrSpreadNotFound: the event has no locked spread yet. The lines
// collaborator owns locking; this engine only reads.
var ErrSpreadNotFound = errors.New("locked spread not found")

type SpreadRepository interface {
	GetLockedSpread(ctx context.Context, exec SQLExecutor, eventID int) (*models.LockedSpread, error)
}

type postgresSpreadRepository struct {
	db *sql.DB
}

func NewPostgresSpreadRepository(db *sql.DB) SpreadRepository {
	return &postgresSpreadRepository{db: db}
}

func (r *postgresSpreadRepository) GetLockedSpread(ctx context.Context, exec SQLExecutor, eventID int) (*models.LockedSpread, error) {
	if exec == nil {
		exec = r.db
	}
	query := `
		SELECT event_id, home_spread, away_spread, locked_at
		FROM locked_spreads
		WHERE event_id = $1 AND locked_at IS NOT NULL`

	spread := &models.LockedSpread{}
	err := exec.QueryRowContext(ctx, query, eventID).Scan(
		&spread.EventID,
		&spread.HomeSpread,
		&spread.AwaySpread,
		&spread.LockedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSpreadNotFound
		}
		return nil, fmt.Errorf("failed to scan locked spread for event %d: %w", eventID, err)
	}
	return spread, nil
}
