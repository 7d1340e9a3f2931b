package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/keyward/keyward/models"
	"github.com/keyward/keyward/repositories"
)

// DecisionLogRepository implements repositories.DecisionLogRepository
type DecisionLogRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDecisionLogRepository creates a new decision log repository
func NewDecisionLogRepository(db *DB, logger *zap.Logger) repositories.DecisionLogRepository {
	return &DecisionLogRepository{
		db:     db,
		logger: logger,
	}
}

// Insert writes one decision record
func (r *DecisionLogRepository) Insert(ctx context.Context, log *models.DecisionLog) error {
	query := `
		INSERT INTO decision_logs (
			id, request_kind, profile_id, device_id, verdict, reason, request_id, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.RequestKind,
		log.ProfileID,
		log.DeviceID,
		log.Verdict,
		log.Reason,
		log.RequestID,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert decision log: %w", err)
	}

	r.logger.Debug("decision log inserted",
		zap.String("id", log.ID.String()),
		zap.String("verdict", log.Verdict))
	return nil
}

// ListRecent returns the most recent decision records, newest first
func (r *DecisionLogRepository) ListRecent(ctx context.Context, limit int) ([]*models.DecisionLog, error) {
	query := `
		SELECT id, request_kind, profile_id, device_id, verdict, reason, request_id, created_at
		FROM decision_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list decision logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.DecisionLog
	for rows.Next() {
		log := &models.DecisionLog{}
		if err := rows.Scan(
			&log.ID,
			&log.RequestKind,
			&log.ProfileID,
			&log.DeviceID,
			&log.Verdict,
			&log.Reason,
			&log.RequestID,
			&log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan decision log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decision logs: %w", err)
	}

	return logs, nil
}
