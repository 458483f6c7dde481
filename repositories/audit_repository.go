package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/bracket-pools/models"
)

type AuditRepository interface {
	Append(ctx context.Context, exec SQLExecutor, entry *models.AuditLogEntry) error
	ListByPool(ctx context.Context, poolID int) ([]*models.AuditLogEntry, error)
	// DeleteByMatchup removes every matchup_resolved entry a prior pass wrote
	// for this matchup, so a correction replaces exactly its own trail.
	DeleteByMatchup(ctx context.Context, exec SQLExecutor, matchupID int) (int64, error)
}

type postgresAuditRepository struct {
	db *sql.DB
}

func NewPostgresAuditRepository(db *sql.DB) AuditRepository {
	return &postgresAuditRepository{db: db}
}

func (r *postgresAuditRepository) Append(ctx context.Context, exec SQLExecutor, entry *models.AuditLogEntry) error {
	query := `
		INSERT INTO audit_log (pool_id, action_type, payload)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		entry.PoolID,
		entry.ActionType,
		[]byte(entry.Payload),
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append audit entry for pool %d: %w", entry.PoolID, err)
	}
	return nil
}

func (r *postgresAuditRepository) ListByPool(ctx context.Context, poolID int) ([]*models.AuditLogEntry, error) {
	query := `
		SELECT id, pool_id, action_type, payload, created_at
		FROM audit_log
		WHERE pool_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries for pool %d: %w", poolID, err)
	}
	defer rows.Close()

	entries := make([]*models.AuditLogEntry, 0)
	for rows.Next() {
		var entry models.AuditLogEntry
		var payload []byte
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.PoolID,
			&entry.ActionType,
			&payload,
			&entry.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", scanErr)
		}
		entry.Payload = payload
		entries = append(entries, &entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during audit rows iteration: %w", err)
	}
	return entries, nil
}

func (r *postgresAuditRepository) DeleteByMatchup(ctx context.Context, exec SQLExecutor, matchupID int) (int64, error) {
	// Payload shapes are validated on write, so the jsonb lookup is safe.
	query := `
		DELETE FROM audit_log
		WHERE action_type = $1 AND (payload ->> 'matchup_id')::int = $2`

	result, err := exec.ExecContext(ctx, query, models.AuditActionMatchupResolved, matchupID)
	if err != nil {
		return 0, fmt.Errorf("DeleteByMatchup: failed to execute query for matchup %d: %w", matchupID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteByMatchup: failed to check affected rows: %w", err)
	}
	return rowsAffected, nil
}
