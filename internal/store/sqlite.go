// Package store persists newsletter subscribers and send-run audit
// records in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Pegasus1106/Ecohealth/internal/models"
)

type Store struct {
	db  *sql.DB
	loc *time.Location
}

func New(db *sql.DB, loc *time.Location) *Store {
	return &Store{db: db, loc: loc}
}

// Result carries the user-facing outcome of a subscription operation.
// Message is rendered verbatim on the subscribe and unsubscribe pages.
type Result struct {
	Success bool
	Message string
}

// Subscribe registers an email for the weekly newsletter. A previously
// unsubscribed address is reactivated in place, keeping its row ID. An
// address that is already active is rejected.
func (s *Store) Subscribe(name, email, city, state, country string) (Result, error) {
	email = normalizeEmail(email)
	if email == "" {
		return Result{Success: false, Message: "Email is required"}, nil
	}

	existing, err := s.GetSubscriber(email)
	if err != nil {
		return Result{}, fmt.Errorf("looking up subscriber: %w", err)
	}

	if existing != nil {
		if existing.IsActive {
			return Result{Success: false, Message: "Email already subscribed"}, nil
		}
		_, err := s.db.Exec(`
			UPDATE subscribers
			SET is_active = TRUE,
			    name = ?,
			    location_city = ?,
			    location_state = ?,
			    location_country = ?,
			    subscribed_at = ?
			WHERE email = ?`,
			name, nullString(city), nullString(state), nullString(country),
			time.Now().UTC(), email)
		if err != nil {
			return Result{}, fmt.Errorf("reactivating subscriber: %w", err)
		}
		return Result{Success: true, Message: "Subscription reactivated successfully!"}, nil
	}

	_, err = s.db.Exec(`
		INSERT INTO subscribers (name, email, subscribed_at, is_active, location_city, location_state, location_country)
		VALUES (?, ?, ?, TRUE, ?, ?, ?)`,
		name, email, time.Now().UTC(),
		nullString(city), nullString(state), nullString(country))
	if err != nil {
		return Result{}, fmt.Errorf("inserting subscriber: %w", err)
	}
	return Result{Success: true, Message: "Subscribed successfully!"}, nil
}

// Unsubscribe deactivates an email. The row is kept so a later
// subscribe reactivates it instead of creating a duplicate.
func (s *Store) Unsubscribe(email string) (Result, error) {
	email = normalizeEmail(email)

	res, err := s.db.Exec(`UPDATE subscribers SET is_active = FALSE WHERE email = ?`, email)
	if err != nil {
		return Result{}, fmt.Errorf("deactivating subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Result{}, fmt.Errorf("deactivating subscriber: %w", err)
	}
	if n == 0 {
		return Result{Success: false, Message: "Email not found"}, nil
	}
	return Result{Success: true, Message: "Unsubscribed successfully"}, nil
}

// GetSubscriber returns the subscriber with the given email, active or
// not, or nil if the address has never subscribed.
func (s *Store) GetSubscriber(email string) (*models.Subscriber, error) {
	email = normalizeEmail(email)

	row := s.db.QueryRow(`
		SELECT id, name, email, subscribed_at, is_active,
		       location_city, location_state, location_country, last_email_sent
		FROM subscribers
		WHERE email = ?`, email)

	sub, err := scanSubscriber(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// ActiveSubscribers returns every active subscriber in subscription
// order.
func (s *Store) ActiveSubscribers() ([]models.Subscriber, error) {
	rows, err := s.db.Query(`
		SELECT id, name, email, subscribed_at, is_active,
		       location_city, location_state, location_country, last_email_sent
		FROM subscribers
		WHERE is_active = TRUE
		ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// UpdateLastEmailSent stamps the time the latest newsletter was
// delivered to the address.
func (s *Store) UpdateLastEmailSent(email string, sentAt time.Time) error {
	_, err := s.db.Exec(`UPDATE subscribers SET last_email_sent = ? WHERE email = ?`,
		sentAt.UTC(), normalizeEmail(email))
	return err
}

// DeleteSubscriber permanently removes a subscriber row. Unlike
// Unsubscribe this forgets the address entirely.
func (s *Store) DeleteSubscriber(email string) (Result, error) {
	email = normalizeEmail(email)

	res, err := s.db.Exec(`DELETE FROM subscribers WHERE email = ?`, email)
	if err != nil {
		return Result{}, fmt.Errorf("deleting subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Result{}, fmt.Errorf("deleting subscriber: %w", err)
	}
	if n == 0 {
		return Result{Success: false, Message: fmt.Sprintf("No subscriber found with email: %s", email)}, nil
	}
	return Result{Success: true, Message: fmt.Sprintf("Subscriber %s has been permanently deleted", email)}, nil
}

// CountSubscribers reports total, active and inactive subscriber counts.
func (s *Store) CountSubscribers() (models.SubscriberCounts, error) {
	var c models.SubscriberCounts
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0)
		FROM subscribers`).Scan(&c.Total, &c.Active)
	if err != nil {
		return models.SubscriberCounts{}, err
	}
	c.Inactive = c.Total - c.Active
	return c, nil
}

// ClearSubscribers deletes every subscriber row and reports how many
// were removed.
func (s *Store) ClearSubscribers() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM subscribers`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Ping checks database liveness for the health endpoint.
func (s *Store) Ping() error {
	return s.db.Ping()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(row scanner) (*models.Subscriber, error) {
	var sub models.Subscriber
	err := row.Scan(&sub.ID, &sub.Name, &sub.Email, &sub.SubscribedAt, &sub.IsActive,
		&sub.LocationCity, &sub.LocationState, &sub.LocationCountry, &sub.LastEmailSent)
	if err != nil {
		return nil, err
	}
	sub.SubscribedAt = sub.SubscribedAt.UTC()
	return &sub, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nullString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	return sql.NullString{String: v, Valid: v != ""}
}
