package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dosada05/bracket-pools/models"
)

var (
	// ErrOwnershipNotFound: no live record for (pool, team). Not always an
	// error for callers — an absent record means the team is eliminated.
	ErrOwnershipNotFound           = errors.New("ownership record not found")
	ErrOwnershipParticipantInvalid = errors.New("ownership participant conflict or invalid")
	ErrOwnershipDuplicate          = errors.New("team already has a live ownership record in this pool")
)

type OwnershipRepository interface {
	GetOwner(ctx context.Context, exec SQLExecutor, poolID int, teamCode string) (*models.OwnershipRecord, error)
	ListByPool(ctx context.Context, poolID int) ([]*models.OwnershipRecord, error)
	// Transfer replaces whatever live record (pool, team) has with a new one
	// for toParticipantID. The previous owner's record, if any, is removed in
	// the same statement pair; the invariant of at most one live record per
	// (pool, team) is also enforced by a unique constraint.
	Transfer(ctx context.Context, exec SQLExecutor, poolID int, teamCode string, toParticipantID int, via models.AcquisitionKind, fromMatchupID *int) error
	// Remove eliminates the team: its live record is deleted and nothing
	// replaces it. Removing an already-unowned team is a no-op, which keeps
	// correction re-runs idempotent.
	Remove(ctx context.Context, exec SQLExecutor, poolID int, teamCode string) error
	// DeleteCaptureByMatchup undoes the ownership rows a specific matchup
	// resolution created. Returns the number of rows removed.
	DeleteCaptureByMatchup(ctx context.Context, exec SQLExecutor, matchupID int) (int64, error)
}

type postgresOwnershipRepository struct {
	db *sql.DB
}

func NewPostgresOwnershipRepository(db *sql.DB) OwnershipRepository {
	return &postgresOwnershipRepository{db: db}
}

func (r *postgresOwnershipRepository) GetOwner(ctx context.Context, exec SQLExecutor, poolID int, teamCode string) (*models.OwnershipRecord, error) {
	if exec == nil {
		exec = r.db
	}
	query := `
		SELECT id, pool_id, team_code, participant_id, acquired_via, from_matchup_id, created_at
		FROM ownership_records
		WHERE pool_id = $1 AND team_code = $2`

	record := &models.OwnershipRecord{}
	err := exec.QueryRowContext(ctx, query, poolID, teamCode).Scan(
		&record.ID,
		&record.PoolID,
		&record.TeamCode,
		&record.ParticipantID,
		&record.AcquiredVia,
		&record.FromMatchupID,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOwnershipNotFound
		}
		return nil, fmt.Errorf("failed to scan ownership for pool %d team %s: %w", poolID, teamCode, err)
	}
	return record, nil
}

func (r *postgresOwnershipRepository) ListByPool(ctx context.Context, poolID int) ([]*models.OwnershipRecord, error) {
	query := `
		SELECT id, pool_id, team_code, participant_id, acquired_via, from_matchup_id, created_at
		FROM ownership_records
		WHERE pool_id = $1
		ORDER BY team_code ASC`

	rows, err := r.db.QueryContext(ctx, query, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ownership records for pool %d: %w", poolID, err)
	}
	defer rows.Close()

	records := make([]*models.OwnershipRecord, 0)
	for rows.Next() {
		var rec models.OwnershipRecord
		if scanErr := rows.Scan(
			&rec.ID,
			&rec.PoolID,
			&rec.TeamCode,
			&rec.ParticipantID,
			&rec.AcquiredVia,
			&rec.FromMatchupID,
			&rec.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan ownership row: %w", scanErr)
		}
		records = append(records, &rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during ownership rows iteration: %w", err)
	}
	return records, nil
}

func (r *postgresOwnershipRepository) Transfer(ctx context.Context, exec SQLExecutor, poolID int, teamCode string, toParticipantID int, via models.AcquisitionKind, fromMatchupID *int) error {
	deleteQuery := `DELETE FROM ownership_records WHERE pool_id = $1 AND team_code = $2`
	if _, err := exec.ExecContext(ctx, deleteQuery, poolID, teamCode); err != nil {
		return fmt.Errorf("Transfer: failed to clear prior ownership of team %s in pool %d: %w", teamCode, poolID, err)
	}

	insertQuery := `
		INSERT INTO ownership_records (pool_id, team_code, participant_id, acquired_via, from_matchup_id)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := exec.ExecContext(ctx, insertQuery, poolID, teamCode, toParticipantID, via, fromMatchupID); err != nil {
		return r.handleOwnershipError(err)
	}
	return nil
}

func (r *postgresOwnershipRepository) Remove(ctx context.Context, exec SQLExecutor, poolID int, teamCode string) error {
	query := `DELETE FROM ownership_records WHERE pool_id = $1 AND team_code = $2`
	if _, err := exec.ExecContext(ctx, query, poolID, teamCode); err != nil {
		return fmt.Errorf("Remove: failed to delete ownership of team %s in pool %d: %w", teamCode, poolID, err)
	}
	return nil
}

func (r *postgresOwnershipRepository) DeleteCaptureByMatchup(ctx context.Context, exec SQLExecutor, matchupID int) (int64, error) {
	query := `DELETE FROM ownership_records WHERE acquired_via = $1 AND from_matchup_id = $2`
	result, err := exec.ExecContext(ctx, query, models.AcquiredCapture, matchupID)
	if err != nil {
		return 0, fmt.Errorf("DeleteCaptureByMatchup: failed to execute query for matchup %d: %w", matchupID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteCaptureByMatchup: failed to check affected rows: %w", err)
	}
	return rowsAffected, nil
}

func (r *postgresOwnershipRepository) handleOwnershipError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "ownership_records_participant_id_fkey":
			return ErrOwnershipParticipantInvalid
		case "ownership_records_pool_id_team_code_key":
			return ErrOwnershipDuplicate
		}
	}
	return err
}
