package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Pegasus1106/Ecohealth/internal/models"
)

// StartNewsletterRun records the beginning of a send-to-all pass and
// returns the audit row to fill in once the pass finishes.
func (s *Store) StartNewsletterRun(subscribersTotal int) (*models.NewsletterRun, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(`
		INSERT INTO newsletter_runs (started_at, status, subscribers_total)
		VALUES (?, 'running', ?)`, now, subscribersTotal)
	if err != nil {
		return nil, fmt.Errorf("starting newsletter run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("newsletter run id: %w", err)
	}
	return &models.NewsletterRun{
		ID:               id,
		StartedAt:        now,
		Status:           "running",
		SubscribersTotal: subscribersTotal,
	}, nil
}

// CompleteNewsletterRun closes the audit row with final counts. Status
// and Error should already be set on the run.
func (s *Store) CompleteNewsletterRun(run *models.NewsletterRun) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(`
		UPDATE newsletter_runs
		SET completed_at = ?,
		    status = ?,
		    subscribers_total = ?,
		    sent = ?,
		    failed = ?,
		    error = ?
		WHERE id = ?`,
		now, run.Status, run.SubscribersTotal, run.Sent, run.Failed, run.Error, run.ID)
	if err != nil {
		return fmt.Errorf("completing newsletter run %d: %w", run.ID, err)
	}
	run.CompletedAt = sql.NullTime{Time: now, Valid: true}
	return nil
}

// LatestNewsletterRun returns the most recently started run, or nil if
// no newsletter has ever been sent.
func (s *Store) LatestNewsletterRun() (*models.NewsletterRun, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, completed_at, status, subscribers_total, sent, failed, error
		FROM newsletter_runs
		ORDER BY started_at DESC, id DESC
		LIMIT 1`)

	var run models.NewsletterRun
	err := row.Scan(&run.ID, &run.StartedAt, &run.CompletedAt, &run.Status,
		&run.SubscribersTotal, &run.Sent, &run.Failed, &run.Error)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.StartedAt = run.StartedAt.UTC()
	return &run, nil
}
