package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/config"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/commission"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/domain"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/metrics"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/models"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/repository"
)

// ErrNotEligible marks a unit-of-work skip: the investment was filtered out
// between load and settle (already credited today, term exhausted). A skip is
// not a failure.
var ErrNotEligible = errors.New("investment not eligible this cycle")

// RunSummary is what admin tooling sees after a settlement run.
type RunSummary struct {
	Status                      string          `json:"status"`
	Date                        string          `json:"date"`
	Mode                        string          `json:"mode"`
	InvestmentsProcessed        int             `json:"investments_processed"`
	InvestmentsFailed           []uint          `json:"investments_failed"`
	TotalROIDistributed         decimal.Decimal `json:"total_roi_distributed"`
	TotalCommissionsDistributed decimal.Decimal `json:"total_commissions_distributed"`
	ExecutedAt                  time.Time       `json:"executed_at"`
}

// SettlementService owns the daily run: the idempotency gate, the eligible
// set, the per-investment unit-of-work and the run marker.
type SettlementService struct {
	db          *gorm.DB
	investments *repository.InvestmentRepository
	runs        *repository.RunRepository
	notifier    *NotificationService
	cfg         config.SettlementConfig
	loc         *time.Location
	now         func() time.Time
}

func NewSettlementService(
	db *gorm.DB,
	investments *repository.InvestmentRepository,
	runs *repository.RunRepository,
	notifier *NotificationService,
	cfg config.SettlementConfig,
) (*SettlementService, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("settlement timezone %q: %w", cfg.Timezone, err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.UnitTimeout <= 0 {
		cfg.UnitTimeout = 15 * time.Second
	}
	return &SettlementService{
		db:          db,
		investments: investments,
		runs:        runs,
		notifier:    notifier,
		cfg:         cfg,
		loc:         loc,
		now:         time.Now,
	}, nil
}

// Today returns the current settlement date key in the configured timezone.
func (s *SettlementService) Today() string {
	return s.now().In(s.loc).Format(domain.DateLayout)
}

// unitOutcome is the per-investment result collected by the coordinator.
type unitOutcome struct {
	id          uint
	credited    bool
	roi         decimal.Decimal
	commissions decimal.Decimal
	err         error
}

// Run executes one full settlement pass for today. Both the scheduled and the
// manual admin trigger funnel through here and through the same run-marker
// gate. A per-investment failure never aborts the run; only failing to read
// the gate or the eligible set does.
func (s *SettlementService) Run(ctx context.Context, mode string) (*RunSummary, error) {
	day := s.Today()
	started := s.now()

	if existing, err := s.runs.GetByDate(day); err == nil {
		log.Printf("[settlement] %s already settled (run #%d), skipping", day, existing.ID)
		metrics.ObserveRun(domain.RunStatusSkipped, time.Since(started).Seconds())
		return &RunSummary{
			Status:                      domain.RunStatusSkipped,
			Date:                        day,
			Mode:                        mode,
			InvestmentsProcessed:        existing.InvestmentsProcessed,
			InvestmentsFailed:           existing.FailedIDs,
			TotalROIDistributed:         existing.TotalROI,
			TotalCommissionsDistributed: existing.TotalCommissions,
			ExecutedAt:                  existing.ExecutedAt,
		}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.ObserveRun(domain.RunStatusFatal, time.Since(started).Seconds())
		return s.fatal(day, mode), fmt.Errorf("check run marker: %w", err)
	}

	ids, err := s.investments.ListEligibleIDs(day)
	if err != nil {
		metrics.ObserveRun(domain.RunStatusFatal, time.Since(started).Seconds())
		return s.fatal(day, mode), fmt.Errorf("load eligible investments: %w", err)
	}
	log.Printf("[settlement] %s run (%s): %d eligible investments", day, mode, len(ids))

	outcomes := s.process(ctx, ids, day)

	if err := ctx.Err(); err != nil {
		// Cancelled between units. No marker is written so a later trigger
		// can settle the remainder; already-settled investments skip via
		// their last-credit-date guard.
		metrics.ObserveRun(domain.RunStatusFatal, time.Since(started).Seconds())
		return s.fatal(day, mode), fmt.Errorf("run cancelled after %d units: %w", len(outcomes), err)
	}

	summary := &RunSummary{
		Status:                      domain.RunStatusCompleted,
		Date:                        day,
		Mode:                        mode,
		InvestmentsFailed:           []uint{},
		TotalROIDistributed:         decimal.Zero,
		TotalCommissionsDistributed: decimal.Zero,
		ExecutedAt:                  s.now(),
	}
	skipped := 0
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			summary.InvestmentsFailed = append(summary.InvestmentsFailed, o.id)
			log.Printf("[settlement] investment %d failed: %v", o.id, o.err)
		case o.credited:
			summary.InvestmentsProcessed++
			summary.TotalROIDistributed = summary.TotalROIDistributed.Add(o.roi)
			summary.TotalCommissionsDistributed = summary.TotalCommissionsDistributed.Add(o.commissions)
		default:
			skipped++
		}
	}
	sort.Slice(summary.InvestmentsFailed, func(i, j int) bool {
		return summary.InvestmentsFailed[i] < summary.InvestmentsFailed[j]
	})

	marker := &models.SettlementRun{
		RunDate:              day,
		Mode:                 mode,
		Status:               domain.RunStatusCompleted,
		InvestmentsProcessed: summary.InvestmentsProcessed,
		FailedIDs:            models.UintList(summary.InvestmentsFailed),
		TotalROI:             summary.TotalROIDistributed,
		TotalCommissions:     summary.TotalCommissionsDistributed,
		ExecutedAt:           summary.ExecutedAt,
	}
	if err := s.runs.Create(marker); err != nil {
		if errors.Is(err, repository.ErrRunExists) {
			// A concurrent trigger wrote the marker first. The credits are
			// still exactly-once thanks to the per-investment guards, so the
			// run stands; the other marker holds the day.
			log.Printf("[settlement] %s marker already written by a concurrent run", day)
		} else {
			metrics.ObserveRun(domain.RunStatusFatal, time.Since(started).Seconds())
			return s.fatal(day, mode), fmt.Errorf("write run marker: %w", err)
		}
	}

	metrics.ObserveRun(domain.RunStatusCompleted, time.Since(started).Seconds())
	metrics.RecordSettlement(summary.InvestmentsProcessed, len(summary.InvestmentsFailed),
		summary.TotalROIDistributed.InexactFloat64(), summary.TotalCommissionsDistributed.InexactFloat64())
	log.Printf("[settlement] %s done: %d credited, %d failed, %d skipped, roi=%s commissions=%s",
		day, summary.InvestmentsProcessed, len(summary.InvestmentsFailed), skipped,
		summary.TotalROIDistributed.StringFixed(2), summary.TotalCommissionsDistributed.StringFixed(2))
	return summary, nil
}

func (s *SettlementService) fatal(day, mode string) *RunSummary {
	return &RunSummary{
		Status:                      domain.RunStatusFatal,
		Date:                        day,
		Mode:                        mode,
		InvestmentsFailed:           []uint{},
		TotalROIDistributed:         decimal.Zero,
		TotalCommissionsDistributed: decimal.Zero,
		ExecutedAt:                  s.now(),
	}
}

// process fans the eligible ids over a bounded worker pool. Cancellation is
// cooperative: once ctx is done no new unit starts, but a unit mid-transaction
// always finishes.
func (s *SettlementService) process(ctx context.Context, ids []uint, day string) []unitOutcome {
	if len(ids) == 0 {
		return nil
	}
	workers := s.cfg.Workers
	if workers > len(ids) {
		workers = len(ids)
	}

	work := make(chan uint)
	outcomes := make([]unitOutcome, 0, len(ids))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range work {
				o := s.settleOne(ctx, id, day)
				mu.Lock()
				outcomes = append(outcomes, o)
				mu.Unlock()
			}
		}()
	}

feed:
	for _, id := range ids {
		select {
		case <-ctx.Done():
			log.Printf("[settlement] %s cancelled, not dispatching further investments", day)
			break feed
		case work <- id:
		}
	}
	close(work)
	wg.Wait()
	return outcomes
}

// settleOne is the unit-of-work: everything for one investment happens inside
// a single transaction with a bounded timeout. A timeout or storage error
// rolls the unit back and is reported as that investment's failure only.
func (s *SettlementService) settleOne(ctx context.Context, id uint, day string) unitOutcome {
	out := unitOutcome{id: id, roi: decimal.Zero, commissions: decimal.Zero}

	// Detached from run cancellation: once a unit is dispatched it runs to
	// commit or rollback on its own timeout budget. Cancellation only stops
	// dispatch, in process.
	uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.UnitTimeout)
	defer cancel()

	var owner *models.Account
	var paid []commission.Entry

	err := repository.InSettlementTx(uctx, s.db, func(tx *repository.SettlementTx) error {
		inv, err := tx.InvestmentForUpdate(id)
		if err != nil {
			return fmt.Errorf("reload investment: %w", err)
		}
		// Re-check eligibility under the row lock; a concurrent run may have
		// credited this investment after the load.
		if inv.Status != domain.InvestmentStatusActive || inv.DaysRemaining <= 0 {
			return ErrNotEligible
		}
		if inv.LastCreditedOn != nil && *inv.LastCreditedOn >= day {
			return ErrNotEligible
		}

		owner, err = tx.AccountByID(inv.AccountID)
		if err != nil {
			return fmt.Errorf("load owner account: %w", err)
		}

		amount := inv.DailyReturn
		if err := tx.CreditAccount(owner.ID, amount); err != nil {
			return err
		}
		if err := tx.AppendCreditHistory(&models.CreditHistory{
			InvestmentID: inv.ID,
			AccountID:    owner.ID,
			Amount:       amount,
			CreditedOn:   day,
		}); err != nil {
			return fmt.Errorf("append credit history: %w", err)
		}
		if err := tx.AppendTransaction(&models.Transaction{
			AccountID:   owner.ID,
			Type:        domain.TxTypeROI,
			Amount:      amount,
			Description: fmt.Sprintf("Daily return on investment #%d", inv.ID),
			Status:      domain.TxStatusCompleted,
			ReferenceID: inv.ID,
			Metadata:    models.Metadata{"plan_id": inv.PlanID, "order_id": inv.OrderID, "credited_on": day},
		}); err != nil {
			return fmt.Errorf("append roi transaction: %w", err)
		}

		inv.DaysRemaining--
		inv.TotalEarned = inv.TotalEarned.Add(amount)
		inv.LastCreditedOn = &day
		if inv.DaysRemaining == 0 {
			inv.Status = domain.InvestmentStatusCompleted
		}
		if err := tx.SaveSettledInvestment(inv); err != nil {
			return fmt.Errorf("advance investment term: %w", err)
		}

		entries, err := commission.Resolve(amount, owner, tx.AccountByReferralCode)
		if err != nil {
			return err
		}
		paid = paid[:0]
		for _, e := range entries {
			if e.Amount.IsZero() {
				continue // valid entry, nothing to pay
			}
			if err := tx.CreditAccount(e.Account.ID, e.Amount); err != nil {
				return err
			}
			if err := tx.AppendCommission(&models.Commission{
				AccountID:       e.Account.ID,
				SourceAccountID: owner.ID,
				InvestmentID:    inv.ID,
				Level:           e.Level,
				Percent:         e.Percent,
				Amount:          e.Amount,
				CreditedOn:      day,
			}); err != nil {
				return fmt.Errorf("append commission: %w", err)
			}
			if err := tx.AppendTransaction(&models.Transaction{
				AccountID:   e.Account.ID,
				Type:        domain.TxTypeReferral,
				Amount:      e.Amount,
				Description: fmt.Sprintf("Level %d referral commission from investment #%d", e.Level, inv.ID),
				Status:      domain.TxStatusCompleted,
				ReferenceID: inv.ID,
				Metadata:    models.Metadata{"level": e.Level, "source_account_id": owner.ID, "percent": e.Percent.String()},
			}); err != nil {
				return fmt.Errorf("append referral transaction: %w", err)
			}
			out.commissions = out.commissions.Add(e.Amount)
			paid = append(paid, e)
		}

		out.roi = amount
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrNotEligible) {
			return unitOutcome{id: id, roi: decimal.Zero, commissions: decimal.Zero}
		}
		return unitOutcome{id: id, err: err, roi: decimal.Zero, commissions: decimal.Zero}
	}

	// Committed. Notifications are best-effort and outside the atomic
	// boundary; a sink failure never rolls back the ledger.
	out.credited = true
	s.notifier.NotifyROICredit(owner.ID, out.roi, id)
	for _, e := range paid {
		s.notifier.NotifyReferralCommission(e.Account.ID, e.Amount, id, e.Level)
	}
	return out
}
