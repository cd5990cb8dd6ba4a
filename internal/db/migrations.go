package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'attempt_outcome') THEN
			CREATE TYPE attempt_outcome AS ENUM ('SUCCEEDED', 'FAILED', 'TRANSPORT_ERROR');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS validation_attempts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		plate TEXT NOT NULL,
		compact_plate TEXT NOT NULL,
		variant VARCHAR(16) NOT NULL,
		outcome attempt_outcome NOT NULL,
		result TEXT,
		message TEXT,
		requested_at TIMESTAMPTZ NOT NULL,
		duration_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	// free-form plates have no length cap
	`ALTER TABLE validation_attempts ALTER COLUMN plate TYPE TEXT;`,
	`ALTER TABLE validation_attempts ALTER COLUMN compact_plate TYPE TEXT;`,
	`CREATE INDEX IF NOT EXISTS idx_validation_attempts_compact_plate ON validation_attempts (compact_plate);`,
	`CREATE INDEX IF NOT EXISTS idx_validation_attempts_requested_at ON validation_attempts (requested_at DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
