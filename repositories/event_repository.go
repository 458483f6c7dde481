package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-pools/models"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository interface {
	GetByID(ctx context.Context, id int) (*models.Event, error)
	// SetFinalScore propagates an authoritative final score and flips the
	// event to final. Part of the resolution transaction.
	SetFinalScore(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore int) error
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `
		SELECT id, home_team_code, away_team_code, final_home_score, final_away_score,
		       status, start_time, created_at
		FROM events
		WHERE id = $1`

	event := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.HomeTeamCode,
		&event.AwayTeamCode,
		&event.FinalHomeScore,
		&event.FinalAwayScore,
		&event.Status,
		&event.StartTime,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event by id %d: %w", id, err)
	}
	return event, nil
}

func (r *postgresEventRepository) SetFinalScore(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore int) error {
	query := `
		UPDATE events
		SET final_home_score = $1, final_away_score = $2, status = $3
		WHERE id = $4`

	result, err := exec.ExecContext(ctx, query, homeScore, awayScore, models.EventStatusFinal, id)
	if err != nil {
		return fmt.Errorf("SetFinalScore: failed to execute query for event %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}
