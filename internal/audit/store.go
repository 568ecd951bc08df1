package audit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/sportx-platform/access-gateway/internal/config"
)

const migrationsDir = "migrations"

// Store persists audit events in Postgres. A Store with a nil pool is a
// valid no-op target (no DSN configured).
type Store struct {
	pool *pgxpool.Pool
}

// NewStore establishes a connection pool when DSN is provided.
func NewStore(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Store, error) {
	if cfg.DSN == "" {
		logger.Warn("POSTGRES_DSN not provided; audit trail disabled")
		return &Store{}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres")
	return &Store{pool: pool}, nil
}

// Enabled reports whether a database is attached.
func (s *Store) Enabled() bool {
	return s != nil && s.pool != nil
}

// Insert writes one audit event.
func (s *Store) Insert(ctx context.Context, event Event) error {
	if !s.Enabled() {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO auth_audit_events
		 (id, occurred_at, family, outcome, path, method, subject, role, client_ip)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, event.OccurredAt, event.Family, string(event.Outcome),
		event.Path, event.Method, event.Subject, string(event.Role), event.ClientIP,
	)
	return err
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return errors.New("postgres pool not configured")
	}
	return s.pool.Ping(ctx)
}

// Close releases pool resources.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// RunMigrations executes the SQL migrations located in the /migrations directory.
func (s *Store) RunMigrations(ctx context.Context, logger *zap.Logger) error {
	if !s.Enabled() {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	filenames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filenames = append(filenames, entry.Name())
	}

	sort.Strings(filenames)

	for _, name := range filenames {
		path := filepath.Join(migrationsDir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		logger.Info("applying migration", zap.String("file", name))
		if _, err := s.pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}

	logger.Info("migrations applied", zap.Int("count", len(filenames)))
	return nil
}
