package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

type PostgresStore struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewPostgresStore(connStr string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	logger.Info("Successfully connected to the database")
	return &PostgresStore{DB: db, logger: logger}, nil
}

// EnsureSchema creates the required tables if they do not already exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rfps (
            id UUID PRIMARY KEY,
            title TEXT NOT NULL,
            scope TEXT DEFAULT '',
            requirements TEXT[] DEFAULT '{}'::TEXT[],
            budget TEXT DEFAULT 'TBD',
            currency TEXT DEFAULT 'USD',
            timeline_start TEXT DEFAULT '',
            timeline_end TEXT DEFAULT '',
            status TEXT DEFAULT 'draft',
            form_schema JSONB,
            form_rows JSONB,
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS proposals (
            id UUID PRIMARY KEY,
            rfp_id UUID REFERENCES rfps(id) ON DELETE CASCADE,
            contractor TEXT NOT NULL,
            contractor_email TEXT DEFAULT '',
            price DOUBLE PRECISION,
            currency TEXT DEFAULT 'USD',
            start_date TEXT DEFAULT '',
            summary TEXT DEFAULT '',
            experience TEXT[] DEFAULT '{}'::TEXT[],
            methodology TEXT[] DEFAULT '{}'::TEXT[],
            warranties TEXT[] DEFAULT '{}'::TEXT[],
            timeline_details TEXT[] DEFAULT '{}'::TEXT[],
            status TEXT DEFAULT 'pending',
            extracted_text TEXT DEFAULT '',
            form_data JSONB,
            grand_total DOUBLE PRECISION,
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_proposals_rfp_id ON proposals(rfp_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rfps_created_at ON rfps(created_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.DB.Close()
}
