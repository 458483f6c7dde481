package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-pools/models"
)

var ErrPoolNotFound = errors.New("pool not found")

type PoolRepository interface {
	GetByID(ctx context.Context, id int) (*models.Pool, error)
}

type postgresPoolRepository struct {
	db *sql.DB
}

func NewPostgresPoolRepository(db *sql.DB) PoolRepository {
	return &postgresPoolRepository{db: db}
}

func (r *postgresPoolRepository) GetByID(ctx context.Context, id int) (*models.Pool, error) {
	query := `
		SELECT id, name, mode, scoring_rule, status, team_count, created_at
		FROM pools
		WHERE id = $1`

	pool := &models.Pool{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&pool.ID,
		&pool.Name,
		&pool.Mode,
		&pool.ScoringRule,
		&pool.Status,
		&pool.TeamCount,
		&pool.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to scan pool by id %d: %w", id, err)
	}
	return pool, nil
}
