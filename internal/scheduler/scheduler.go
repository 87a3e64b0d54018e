// Package scheduler is the external trigger for the settlement coordinator:
// a daily cron plus a fixed-delay retry on fatal runs. Retry policy lives
// here, one layer above the coordinator, which stays idempotent-safe.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/config"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/domain"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/service"
)

type Scheduler struct {
	cron       *cron.Cron
	settlement *service.SettlementService
	cfg        config.SettlementConfig
	ctx        context.Context
}

func New(ctx context.Context, settlement *service.SettlementService, cfg config.SettlementConfig, loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		settlement: settlement,
		cfg:        cfg,
		ctx:        ctx,
	}
}

// Register adds the daily settlement job.
func (s *Scheduler) Register() error {
	if _, err := s.cron.AddFunc(s.cfg.CronSpec, s.runWithRetry); err != nil {
		return fmt.Errorf("register settlement cron %q: %w", s.cfg.CronSpec, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("[scheduler] started, settlement at %q (%s)", s.cfg.CronSpec, s.cfg.Timezone)
	if s.cfg.RunOnStart {
		go s.runWithRetry()
	}
}

// Stop stops the cron loop. Jobs already running finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] stopped")
}

// runWithRetry invokes the coordinator and retries fatal outcomes with a
// fixed delay. A fatal run writes no marker, so re-invoking is always safe;
// skips and per-investment failures are never retried here.
func (s *Scheduler) runWithRetry() {
	attempts := s.cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		summary, err := s.settlement.Run(s.ctx, domain.RunModeScheduled)
		if err == nil {
			log.Printf("[scheduler] run %s: %s", summary.Date, summary.Status)
			return
		}
		log.Printf("[scheduler] run attempt %d/%d failed: %v", attempt, attempts, err)
		if attempt == attempts {
			return
		}
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(s.cfg.RetryDelay):
		}
	}
}
