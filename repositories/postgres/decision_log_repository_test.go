package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/keyward/keyward/models"
)

func newMockRepo(t *testing.T) (*DecisionLogRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := &DecisionLogRepository{db: &DB{DB: db}, logger: zap.NewNop()}
	return repo, mock
}

func sampleLog() *models.DecisionLog {
	return &models.DecisionLog{
		ID:          uuid.New(),
		RequestKind: "decrypt",
		ProfileID:   "706964",
		DeviceID:    "646964",
		Verdict:     "deny",
		Reason:      "no rule set approved",
		RequestID:   "req-123",
		CreatedAt:   time.Now().UTC(),
	}
}

func TestInsert(t *testing.T) {
	repo, mock := newMockRepo(t)
	log := sampleLog()

	mock.ExpectExec("INSERT INTO decision_logs").
		WithArgs(log.ID, log.RequestKind, log.ProfileID, log.DeviceID,
			log.Verdict, log.Reason, log.RequestID, log.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), log))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertError(t *testing.T) {
	repo, mock := newMockRepo(t)
	log := sampleLog()

	mock.ExpectExec("INSERT INTO decision_logs").
		WillReturnError(assert.AnError)

	assert.Error(t, repo.Insert(context.Background(), log))
}

func TestListRecent(t *testing.T) {
	repo, mock := newMockRepo(t)
	log := sampleLog()

	rows := sqlmock.NewRows([]string{
		"id", "request_kind", "profile_id", "device_id", "verdict", "reason", "request_id", "created_at",
	}).AddRow(log.ID, log.RequestKind, log.ProfileID, log.DeviceID,
		log.Verdict, log.Reason, log.RequestID, log.CreatedAt)

	mock.ExpectQuery("SELECT (.+) FROM decision_logs").
		WithArgs(10).
		WillReturnRows(rows)

	logs, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, log.ID, logs[0].ID)
	assert.Equal(t, "deny", logs[0].Verdict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
