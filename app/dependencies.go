// Package app wires the application's dependencies together.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/keyward/keyward/config"
	"github.com/keyward/keyward/internal/observability"
	"github.com/keyward/keyward/middleware"
	"github.com/keyward/keyward/repositories"
	"github.com/keyward/keyward/repositories/postgres"
	"github.com/keyward/keyward/services/audit"
	"github.com/keyward/keyward/services/rules"
	"github.com/keyward/keyward/services/rules/accesscount"
	"github.com/keyward/keyward/services/rules/devicegrant"
	"github.com/keyward/keyward/services/rules/pathmatch"
)

// Dependencies holds all constructed application components
type Dependencies struct {
	Config         *config.Config
	Logger         *zap.Logger
	Registry       *rules.Registry
	Handle         *rules.Handle
	Audit          *audit.Service // nil when auditing is disabled
	AuditRepo      repositories.DecisionLogRepository
	AuthMiddleware *middleware.AuthMiddleware

	db *postgres.DB
}

// New builds the dependency graph: logger, rule registry with the built-in
// evaluators, the policy engine from the configured file, and (when
// configured) the audit trail.
func New(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		return nil, err
	}

	registry := rules.NewRegistry()
	if err := registerBuiltins(registry); err != nil {
		return nil, fmt.Errorf("register built-in rules: %w", err)
	}

	doc, err := rules.LoadPolicyFile(cfg.Policy.Path)
	if err != nil {
		return nil, err
	}
	engine, err := rules.NewEngine(doc, registry, logger)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Config:         cfg,
		Logger:         logger,
		Registry:       registry,
		Handle:         rules.NewHandle(engine),
		AuthMiddleware: middleware.NewAuthMiddleware(middleware.NewHMACValidator(cfg.Auth.JWTSecret), logger),
	}

	if cfg.AuditDatabase != nil {
		db, err := postgres.NewConnection(ctx, cfg.AuditDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect audit database: %w", err)
		}
		deps.db = db
		deps.AuditRepo = postgres.NewDecisionLogRepository(db, logger)
		deps.Audit = audit.NewService(deps.AuditRepo, logger, audit.DefaultConfig())
		if err := deps.Audit.Start(); err != nil {
			return nil, err
		}
	}

	logger.Info("dependencies initialized",
		zap.String("policy_path", cfg.Policy.Path),
		zap.Strings("rules", registry.Names()),
		zap.Bool("audit_enabled", deps.Audit != nil))
	return deps, nil
}

// Close releases held resources, draining the audit pipeline first.
func (d *Dependencies) Close(timeout time.Duration) {
	if d.Audit != nil {
		if err := d.Audit.Stop(timeout); err != nil {
			d.Logger.Warn("audit service shutdown", zap.Error(err))
		}
	}
	if d.db != nil {
		_ = d.db.Close()
	}
	_ = d.Logger.Sync()
}

func registerBuiltins(registry *rules.Registry) error {
	for _, register := range []func(*rules.Registry) error{
		devicegrant.Register,
		pathmatch.Register,
		accesscount.Register,
	} {
		if err := register(registry); err != nil {
			return err
		}
	}
	return nil
}
