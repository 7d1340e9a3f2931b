// Package repositories defines the persistence interfaces used by the
// services layer.
package repositories

import (
	"context"

	"github.com/keyward/keyward/models"
)

// DecisionLogRepository persists the decision audit trail.
type DecisionLogRepository interface {
	// Insert writes one decision record.
	Insert(ctx context.Context, log *models.DecisionLog) error

	// ListRecent returns the most recent decision records, newest first.
	ListRecent(ctx context.Context, limit int) ([]*models.DecisionLog, error)
}
