package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Dosada05/bracket-pools/models"
)

var (
	ErrMatchupNotFound           = errors.New("matchup not found")
	ErrMatchupPoolInvalid        = errors.New("matchup pool conflict or invalid")
	ErrMatchupEventInvalid       = errors.New("matchup event conflict or invalid")
	ErrMatchupParticipantInvalid = errors.New("matchup winner participant conflict or invalid")
)

const matchupColumns = `id, pool_id, round, event_id, home_team_code, away_team_code,
	       home_participant_id, away_participant_id, winner_participant_id,
	       status, decided_by, decided_at, note, created_at`

type MatchupRepository interface {
	GetByID(ctx context.Context, id int) (*models.Matchup, error)
	// GetByIDForUpdate locks the matchup row for the rest of the pass.
	// Two concurrent passes over the same matchup serialize here.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Matchup, error)
	ListByPool(ctx context.Context, poolID int) ([]*models.Matchup, error)
	ListIDsByEvent(ctx context.Context, eventID int, statuses []models.MatchupStatus) ([]int, error)
	// FreezeParticipants records who held the two teams at resolution time.
	// Write-once: a no-op when the snapshot is already taken.
	FreezeParticipants(ctx context.Context, exec SQLExecutor, id int, homeParticipantID, awayParticipantID *int) error
	SetResolution(ctx context.Context, exec SQLExecutor, id int, winnerParticipantID *int, status models.MatchupStatus, decidedBy *models.DecisionMethod, decidedAt *time.Time, note *string) error
}

type postgresMatchupRepository struct {
	db *sql.DB
}

func NewPostgresMatchupRepository(db *sql.DB) MatchupRepository {
	return &postgresMatchupRepository{db: db}
}

func (r *postgresMatchupRepository) GetByID(ctx context.Context, id int) (*models.Matchup, error) {
	query := `SELECT ` + matchupColumns + ` FROM matchups WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

func (r *postgresMatchupRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Matchup, error) {
	query := `SELECT ` + matchupColumns + ` FROM matchups WHERE id = $1 FOR UPDATE`
	return r.scanOne(exec.QueryRowContext(ctx, query, id), id)
}

func (r *postgresMatchupRepository) scanOne(row *sql.Row, id int) (*models.Matchup, error) {
	matchup := &models.Matchup{}
	err := row.Scan(
		&matchup.ID,
		&matchup.PoolID,
		&matchup.Round,
		&matchup.EventID,
		&matchup.HomeTeamCode,
		&matchup.AwayTeamCode,
		&matchup.HomeParticipantID,
		&matchup.AwayParticipantID,
		&matchup.WinnerParticipantID,
		&matchup.Status,
		&matchup.DecidedBy,
		&matchup.DecidedAt,
		&matchup.Note,
		&matchup.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchupNotFound
		}
		return nil, fmt.Errorf("failed to scan matchup by id %d: %w", id, err)
	}
	return matchup, nil
}

func (r *postgresMatchupRepository) ListByPool(ctx context.Context, poolID int) ([]*models.Matchup, error) {
	query := `SELECT ` + matchupColumns + ` FROM matchups WHERE pool_id = $1 ORDER BY round ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matchups for pool %d: %w", poolID, err)
	}
	defer rows.Close()

	matchups := make([]*models.Matchup, 0)
	for rows.Next() {
		var m models.Matchup
		if scanErr := rows.Scan(
			&m.ID,
			&m.PoolID,
			&m.Round,
			&m.EventID,
			&m.HomeTeamCode,
			&m.AwayTeamCode,
			&m.HomeParticipantID,
			&m.AwayParticipantID,
			&m.WinnerParticipantID,
			&m.Status,
			&m.DecidedBy,
			&m.DecidedAt,
			&m.Note,
			&m.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan matchup row: %w", scanErr)
		}
		matchups = append(matchups, &m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during matchup rows iteration: %w", err)
	}
	return matchups, nil
}

func (r *postgresMatchupRepository) ListIDsByEvent(ctx context.Context, eventID int, statuses []models.MatchupStatus) ([]int, error) {
	query := `SELECT id FROM matchups WHERE event_id = $1 AND status = ANY($2) ORDER BY pool_id ASC, id ASC`

	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	rows, err := r.db.QueryContext(ctx, query, eventID, pq.Array(statusStrings))
	if err != nil {
		return nil, fmt.Errorf("failed to query matchup ids for event %d: %w", eventID, err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("failed to scan matchup id: %w", scanErr)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during matchup id rows iteration: %w", err)
	}
	return ids, nil
}

func (r *postgresMatchupRepository) FreezeParticipants(ctx context.Context, exec SQLExecutor, id int, homeParticipantID, awayParticipantID *int) error {
	// Только первый проход фиксирует владельцев; коррекции не трогают снимок.
	query := `
		UPDATE matchups
		SET home_participant_id = $1, away_participant_id = $2
		WHERE id = $3 AND home_participant_id IS NULL AND away_participant_id IS NULL`

	if _, err := exec.ExecContext(ctx, query, homeParticipantID, awayParticipantID, id); err != nil {
		return fmt.Errorf("FreezeParticipants: failed to execute query for matchup %d: %w", id, err)
	}
	return nil
}

func (r *postgresMatchupRepository) SetResolution(ctx context.Context, exec SQLExecutor, id int, winnerParticipantID *int, status models.MatchupStatus, decidedBy *models.DecisionMethod, decidedAt *time.Time, note *string) error {
	query := `
		UPDATE matchups
		SET winner_participant_id = $1, status = $2, decided_by = $3, decided_at = $4, note = $5
		WHERE id = $6`

	result, err := exec.ExecContext(ctx, query, winnerParticipantID, status, decidedBy, decidedAt, note, id)
	if err != nil {
		return r.handleMatchupError(err)
	}
	return checkAffectedRows(result, ErrMatchupNotFound)
}

func (r *postgresMatchupRepository) handleMatchupError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matchups_pool_id_fkey":
			return ErrMatchupPoolInvalid
		case "matchups_event_id_fkey":
			return ErrMatchupEventInvalid
		case "matchups_winner_participant_id_fkey",
			"matchups_home_participant_id_fkey",
			"matchups_away_participant_id_fkey":
			return ErrMatchupParticipantInvalid
		}
	}
	return err
}
