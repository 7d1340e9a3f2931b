// Package audit persists decision outcomes asynchronously so the decision
// path never blocks on the audit store.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/keyward/keyward/models"
	"github.com/keyward/keyward/repositories"
)

// Config holds configuration for the Service
type Config struct {
	BufferSize   int           // Size of the event buffer channel
	WorkerCount  int           // Number of concurrent workers
	InsertWindow time.Duration // Per-insert timeout
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:   4096,
		WorkerCount:  2,
		InsertWindow: 5 * time.Second,
	}
}

// Service buffers decision records and writes them through the repository
// from background workers. Records are dropped with a warning when the
// buffer is full: auditing must never stall or fail a decision.
type Service struct {
	repo   repositories.DecisionLogRepository
	logger *zap.Logger
	cfg    Config

	events  chan *models.DecisionLog
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	stopped bool
}

// NewService creates a new audit Service
func NewService(repo repositories.DecisionLogRepository, logger *zap.Logger, cfg Config) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		cfg:    cfg,
		events: make(chan *models.DecisionLog, cfg.BufferSize),
	}
}

// Start starts the background workers
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	for i := 0; i < s.cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
	s.started = true

	s.logger.Info("started audit service",
		zap.Int("worker_count", s.cfg.WorkerCount),
		zap.Int("buffer_size", s.cfg.BufferSize))
	return nil
}

// Stop drains pending records and stops the workers, waiting at most the
// given timeout.
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return fmt.Errorf("audit service not running")
	}
	s.stopped = true
	s.mu.Unlock()

	s.logger.Info("stopping audit service", zap.Int("pending", len(s.events)))
	close(s.events)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("audit service stopped")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("audit service stop timed out after %v", timeout)
	}
}

// Record queues one decision record. It never blocks; when the buffer is
// full the record is dropped and counted in the logs.
func (s *Service) Record(log *models.DecisionLog) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	select {
	case s.events <- log:
		s.mu.Unlock()
	default:
		s.mu.Unlock()
		s.logger.Warn("audit buffer full, dropping decision record",
			zap.String("id", log.ID.String()),
			zap.String("verdict", log.Verdict))
	}
}

func (s *Service) worker(id int) {
	defer s.wg.Done()

	for log := range s.events {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.InsertWindow)
		if err := s.repo.Insert(ctx, log); err != nil {
			s.logger.Error("failed to insert decision log",
				zap.Int("worker", id),
				zap.String("id", log.ID.String()),
				zap.Error(err))
		}
		cancel()
	}
}
