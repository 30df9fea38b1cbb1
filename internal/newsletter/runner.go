package newsletter

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Runner owns the weekly send schedule. The digest goes out every
// Sunday at 08:00 in the service's location.
type Runner struct {
	scheduler *gocron.Scheduler
	svc       *Service
}

func NewRunner(svc *Service) *Runner {
	return &Runner{
		scheduler: gocron.NewScheduler(svc.loc),
		svc:       svc,
	}
}

// Start registers the weekly job and starts the scheduler without
// blocking.
func (r *Runner) Start() error {
	_, err := r.scheduler.Every(1).Week().Weekday(time.Sunday).At("08:00").Do(r.run)
	if err != nil {
		return fmt.Errorf("schedule weekly newsletter: %w", err)
	}
	r.scheduler.StartAsync()
	log.Println("newsletter: scheduler started, sending Sundays at 08:00")
	return nil
}

func (r *Runner) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if _, err := r.svc.SendAll(ctx); err != nil {
		log.Printf("newsletter: weekly send: %v", err)
	}
}

// Stop halts the scheduler and cancels future sends.
func (r *Runner) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
	log.Println("newsletter: scheduler stopped")
}
