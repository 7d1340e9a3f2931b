package models

import (
	"time"

	"github.com/google/uuid"
)

// DecisionLog is one persisted record of a decision produced by the rule
// engine, written by the audit service. Byte identities are stored hex
// encoded so rows remain greppable.
type DecisionLog struct {
	ID          uuid.UUID
	RequestKind string
	ProfileID   string
	DeviceID    string
	Verdict     string
	Reason      string
	RequestID   string
	CreatedAt   time.Time
}
