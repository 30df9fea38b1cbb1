package store

import (
	"fmt"
	"log"
	"time"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Create subscribers table",
		SQL: `
			CREATE TABLE IF NOT EXISTS subscribers (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				subscribed_at DATETIME NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				location_city TEXT,
				location_state TEXT,
				location_country TEXT,
				last_email_sent DATETIME
			);
			CREATE INDEX IF NOT EXISTS idx_subscribers_email ON subscribers(email);
			CREATE INDEX IF NOT EXISTS idx_subscribers_active ON subscribers(is_active);
		`,
	},
	{
		Version:     2,
		Description: "Create newsletter_runs audit table",
		SQL: `
			CREATE TABLE IF NOT EXISTS newsletter_runs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				started_at DATETIME NOT NULL,
				completed_at DATETIME,
				status TEXT NOT NULL DEFAULT 'running',
				subscribers_total INTEGER NOT NULL DEFAULT 0,
				sent INTEGER NOT NULL DEFAULT 0,
				failed INTEGER NOT NULL DEFAULT 0,
				error TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_newsletter_runs_started ON newsletter_runs(started_at);
		`,
	},
}

// Migrate applies any pending schema migrations in version order.
func (s *Store) Migrate() error {
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("get applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		log.Printf("migrations: applying %d - %s", m.Version, m.Description)

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(
			`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
			m.Version, m.Description, time.Now().UTC(),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}

		log.Printf("migrations: completed %d", m.Version)
	}

	return nil
}

func (s *Store) ensureMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME
		)
	`)
	return err
}

func (s *Store) getAppliedMigrations() (map[int]bool, error) {
	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}
