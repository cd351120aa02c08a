package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/lib/pq"

	"github.com/harry7799/heng-studio/internal/logging"
	"github.com/harry7799/heng-studio/internal/models"
)

// OpenPostgres opens and pings a lib/pq connection pool.
func OpenPostgres(connectionString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// PostgresProjectStore keeps the project list in a table ordered by
// position. WriteAll replaces every row inside one transaction, so readers
// see either the old list or the new one.
type PostgresProjectStore struct {
	db        *sql.DB
	retention int
	mu        sync.Mutex
}

func NewPostgresProjectStore(db *sql.DB, retention int) *PostgresProjectStore {
	if retention <= 0 {
		retention = DefaultBackupRetention
	}
	return &PostgresProjectStore{db: db, retention: retention}
}

func (s *PostgresProjectStore) ReadAll(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, selectProjectsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]models.Project, 0, 16)
	for rows.Next() {
		var r projectRow
		if err := rows.Scan(&r.ID, &r.Title, &r.Category, &r.ImageURL, &r.Metadata); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p, err := r.toModel()
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *PostgresProjectStore) ReadOne(ctx context.Context, id string) (models.Project, error) {
	var r projectRow
	err := s.db.QueryRowContext(ctx, selectProjectSQL, id).
		Scan(&r.ID, &r.Title, &r.Category, &r.ImageURL, &r.Metadata)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Project{}, models.ErrNotFound
		}
		return models.Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	return r.toModel()
}

func (s *PostgresProjectStore) WriteAll(ctx context.Context, projects []models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(ctx, projects)
}

func (s *PostgresProjectStore) Update(ctx context.Context, fn func([]models.Project) ([]models.Project, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.ReadAll(ctx)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.writeLocked(ctx, next)
}

func (s *PostgresProjectStore) Snapshot(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backup(ctx)
}

func (s *PostgresProjectStore) Close() error {
	return s.db.Close()
}

func (s *PostgresProjectStore) writeLocked(ctx context.Context, projects []models.Project) error {
	if err := s.backup(ctx); err != nil {
		logging.NewLogger(ctx).LogWarnf("backup", "store=postgres error=%v", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteAllProjectsSQL); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear projects: %w", err)
	}
	for i, p := range projects {
		meta, err := metadataParam(p.Metadata)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, insertProjectSQL,
			p.ID, i, p.Title, string(p.Category), p.ImageURL, meta); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert project %s: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit projects: %w", err)
	}
	return nil
}

func (s *PostgresProjectStore) backup(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, insertBackupSQL); err != nil {
		return fmt.Errorf("failed to snapshot projects: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, pruneBackupsSQL, s.retention); err != nil {
		return fmt.Errorf("failed to prune project backups: %w", err)
	}
	return nil
}
