package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

const planFilesSchema = `
CREATE TABLE IF NOT EXISTS plan_files (
    id SERIAL PRIMARY KEY,
    plan_id TEXT NOT NULL,
    name TEXT NOT NULL,
    content BYTEA NOT NULL DEFAULT ''::bytea,
    size BIGINT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    UNIQUE(plan_id, name)
);
CREATE INDEX IF NOT EXISTS idx_plan_files_plan_id ON plan_files(plan_id);
`

// PostgresStore keeps plan files in a single table. The db handle is
// expected to use the pgx stdlib driver.
type PostgresStore struct {
	db         *sql.DB
	now        func() time.Time
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		if _, err := s.db.ExecContext(ctx, planFilesSchema); err != nil {
			s.schemaErr = fmt.Errorf("ensure plan_files schema: %w", err)
		}
	})
	return s.schemaErr
}

func (s *PostgresStore) Put(ctx context.Context, planID, name string, content []byte) error {
	planID, name, err := normalize(planID, name)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	if content == nil {
		content = []byte{}
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO plan_files (plan_id, name, content, size, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (plan_id, name)
DO UPDATE SET content=EXCLUDED.content, size=EXCLUDED.size, updated_at=EXCLUDED.updated_at
`, planID, name, content, int64(len(content)), s.now())
	return err
}

func (s *PostgresStore) Get(ctx context.Context, planID, name string) ([]byte, error) {
	planID, name, err := normalize(planID, name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	var content []byte
	err = s.db.QueryRowContext(ctx, `SELECT content FROM plan_files WHERE plan_id=$1 AND name=$2`, planID, name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return content, err
}

func (s *PostgresStore) List(ctx context.Context, planID string) ([]string, error) {
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return nil, fmt.Errorf("plan_id is required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM plan_files WHERE plan_id=$1 ORDER BY name`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// GetURL always returns "": content lives in the database.
func (s *PostgresStore) GetURL(context.Context, string, string) (string, error) {
	return "", nil
}
