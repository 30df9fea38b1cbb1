// Package newsletter composes and delivers the weekly weather digest
// and the welcome email for new subscribers.
package newsletter

import (
	"context"
	"database/sql"
	"fmt"
	"html/template"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/Pegasus1106/Ecohealth/internal/metrics"
	"github.com/Pegasus1106/Ecohealth/internal/models"
	"github.com/Pegasus1106/Ecohealth/internal/store"
)

type Service struct {
	store   *store.Store
	geo     Geocoder
	weather WeatherService
	mailer  Mailer
	baseURL string
	loc     *time.Location
	tmpl    *template.Template
	now     func() time.Time
}

// New builds the newsletter service. baseURL is the public address
// used for unsubscribe links, without a trailing slash.
func New(st *store.Store, geo Geocoder, ws WeatherService, mailer Mailer, baseURL string, loc *time.Location) *Service {
	return &Service{
		store:   st,
		geo:     geo,
		weather: ws,
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
		loc:     loc,
		tmpl:    newTemplates(),
		now:     time.Now,
	}
}

// SendAll delivers the weekly digest to every active subscriber and
// records the run in the audit table. Per-subscriber failures are
// logged and counted, never aborting the run.
func (s *Service) SendAll(ctx context.Context) (*models.NewsletterRun, error) {
	subs, err := s.store.ActiveSubscribers()
	if err != nil {
		return nil, fmt.Errorf("listing subscribers: %w", err)
	}

	run, err := s.store.StartNewsletterRun(len(subs))
	if err != nil {
		return nil, fmt.Errorf("starting run: %w", err)
	}

	log.Printf("newsletter: sending digest to %d subscribers", len(subs))

	india := s.gatherCities(ctx, indiaCities)
	global := s.gatherCities(ctx, globalCities)

	for _, sub := range subs {
		if err := s.sendDigest(ctx, sub, india, global); err != nil {
			log.Printf("newsletter: send to %s: %v", sub.Email, err)
			metrics.NewsletterSendsTotal.WithLabelValues("digest", "error").Inc()
			run.Failed++
			continue
		}
		metrics.NewsletterSendsTotal.WithLabelValues("digest", "ok").Inc()
		run.Sent++
	}

	run.Status = "completed"
	if len(subs) > 0 && run.Sent == 0 {
		run.Status = "failed"
		run.Error = sql.NullString{String: "all sends failed", Valid: true}
	}
	if err := s.store.CompleteNewsletterRun(run); err != nil {
		return run, fmt.Errorf("completing run: %w", err)
	}

	log.Printf("newsletter: run %d finished, sent %d, failed %d", run.ID, run.Sent, run.Failed)
	return run, nil
}

func (s *Service) sendDigest(ctx context.Context, sub models.Subscriber, india, global []cityWeather) error {
	subject, body, err := s.composeDigest(ctx, sub, india, global)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, sub.Email, subject, body); err != nil {
		return err
	}
	if err := s.store.UpdateLastEmailSent(sub.Email, s.now()); err != nil {
		log.Printf("newsletter: update last_email_sent for %s: %v", sub.Email, err)
	}
	return nil
}

// SendWelcome delivers the welcome email to a new subscriber.
func (s *Service) SendWelcome(ctx context.Context, sub models.Subscriber) error {
	subject, body, err := s.composeWelcome(ctx, sub)
	if err != nil {
		metrics.NewsletterSendsTotal.WithLabelValues("welcome", "error").Inc()
		return err
	}
	if err := s.mailer.Send(ctx, sub.Email, subject, body); err != nil {
		metrics.NewsletterSendsTotal.WithLabelValues("welcome", "error").Inc()
		return fmt.Errorf("welcome email: %w", err)
	}
	metrics.NewsletterSendsTotal.WithLabelValues("welcome", "ok").Inc()
	log.Printf("newsletter: welcome email sent to %s", sub.Email)
	return nil
}

func (s *Service) unsubscribeURL(email string) string {
	return s.baseURL + "/unsubscribe?email=" + url.QueryEscape(email)
}
