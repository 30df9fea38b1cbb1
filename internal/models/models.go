package models

import (
	"database/sql"
	"strings"
	"time"
)

type Subscriber struct {
	ID              int64
	Name            string
	Email           string
	SubscribedAt    time.Time
	IsActive        bool
	LocationCity    sql.NullString
	LocationState   sql.NullString
	LocationCountry sql.NullString
	LastEmailSent   sql.NullTime
}

// Location joins the non-empty location parts as "City, State, Country".
func (s Subscriber) Location() string {
	parts := make([]string, 0, 3)
	for _, p := range []sql.NullString{s.LocationCity, s.LocationState, s.LocationCountry} {
		if p.Valid && p.String != "" {
			parts = append(parts, p.String)
		}
	}
	return strings.Join(parts, ", ")
}

type NewsletterRun struct {
	ID               int64
	StartedAt        time.Time
	CompletedAt      sql.NullTime
	Status           string // "running", "completed", "failed"
	SubscribersTotal int
	Sent             int
	Failed           int
	Error            sql.NullString
}

type SubscriberCounts struct {
	Total    int
	Active   int
	Inactive int
}
