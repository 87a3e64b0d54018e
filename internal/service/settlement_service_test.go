package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/config"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/database"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/domain"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/models"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/repository"
)

const testDay = "2026-08-29"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // single in-memory database
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newTestService(t *testing.T, db *gorm.DB, workers int) *SettlementService {
	t.Helper()
	svc, err := NewSettlementService(
		db,
		repository.NewInvestmentRepository(db),
		repository.NewRunRepository(db),
		NewNotificationService(repository.NewNotificationRepository(db)),
		config.SettlementConfig{
			Timezone:    "UTC",
			Workers:     workers,
			UnitTimeout: 5 * time.Second,
		},
	)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2026, time.August, 29, 10, 0, 0, 0, time.UTC) }
	return svc
}

func seedAccount(t *testing.T, db *gorm.DB, name, code string, referredBy *string) *models.Account {
	t.Helper()
	acc := &models.Account{
		Name:         name,
		Email:        name + "@example.com",
		ReferralCode: code,
		ReferredBy:   referredBy,
	}
	require.NoError(t, db.Create(acc).Error)
	return acc
}

var orderSeq atomic.Uint64

func seedInvestment(t *testing.T, db *gorm.DB, accountID uint, daily string, daysRemaining int) *models.Investment {
	t.Helper()
	inv := &models.Investment{
		AccountID:     accountID,
		PlanID:        1,
		Amount:        decimal.NewFromInt(100),
		DailyReturn:   decimal.RequireFromString(daily),
		DurationDays:  daysRemaining,
		DaysRemaining: daysRemaining,
		Status:        domain.InvestmentStatusActive,
		OrderID:       fmt.Sprintf("ord-%d", orderSeq.Add(1)),
	}
	require.NoError(t, db.Create(inv).Error)
	return inv
}

func reload[T any](t *testing.T, db *gorm.DB, id uint) *T {
	t.Helper()
	var v T
	require.NoError(t, db.First(&v, id).Error)
	return &v
}

func ref(s string) *string { return &s }

func TestRunScenarioTwoLevelChain(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, 1)

	r2 := seedAccount(t, db, "r2", "R2", nil)
	r1 := seedAccount(t, db, "r1", "R1", ref("R2"))
	owner := seedAccount(t, db, "owner", "OWN", ref("R1"))
	inv := seedInvestment(t, db, owner.ID, "15", 1)

	summary, err := svc.Run(context.Background(), domain.RunModeManual)
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusCompleted, summary.Status)
	assert.Equal(t, testDay, summary.Date)
	assert.Equal(t, 1, summary.InvestmentsProcessed)
	assert.Empty(t, summary.InvestmentsFailed)
	assert.True(t, summary.TotalROIDistributed.Equal(decimal.NewFromInt(15)))
	assert.True(t, summary.TotalCommissionsDistributed.Equal(decimal.RequireFromString("2.25")))

	gotOwner := reload[models.Account](t, db, owner.ID)
	assert.True(t, gotOwner.Balance.Equal(decimal.NewFromInt(15)), "owner balance %s", gotOwner.Balance)
	assert.True(t, gotOwner.TotalEarnings.Equal(decimal.NewFromInt(15)))

	gotInv := reload[models.Investment](t, db, inv.ID)
	assert.Equal(t, domain.InvestmentStatusCompleted, gotInv.Status)
	assert.Equal(t, 0, gotInv.DaysRemaining)
	require.NotNil(t, gotInv.LastCreditedOn)
	assert.Equal(t, testDay, *gotInv.LastCreditedOn)
	assert.True(t, gotInv.TotalEarned.Equal(decimal.NewFromInt(15)))

	gotR1 := reload[models.Account](t, db, r1.ID)
	assert.True(t, gotR1.Balance.Equal(decimal.RequireFromString("1.50")), "r1 balance %s", gotR1.Balance)
	gotR2 := reload[models.Account](t, db, r2.ID)
	assert.True(t, gotR2.Balance.Equal(decimal.RequireFromString("0.75")), "r2 balance %s", gotR2.Balance)

	var histories, roiTxs, commissions, refTxs, notifs int64
	db.Model(&models.CreditHistory{}).Count(&histories)
	db.Model(&models.Transaction{}).Where("type = ?", domain.TxTypeROI).Count(&roiTxs)
	db.Model(&models.Commission{}).Count(&commissions)
	db.Model(&models.Transaction{}).Where("type = ?", domain.TxTypeReferral).Count(&refTxs)
	db.Model(&models.Notification{}).Count(&notifs)
	assert.EqualValues(t, 1, histories)
	assert.EqualValues(t, 1, roiTxs)
	assert.EqualValues(t, 2, commissions)
	assert.EqualValues(t, 2, refTxs)
	assert.EqualValues(t, 3, notifs, "one ROI plus two commission events")

	marker, err := repository.NewRunRepository(db).GetByDate(testDay)
	require.NoError(t, err)
	assert.Equal(t, 1, marker.InvestmentsProcessed)
	assert.Empty(t, marker.FailedIDs)
	assert.True(t, marker.TotalROI.Equal(decimal.NewFromInt(15)))
}

func TestRunIdempotentSameDay(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, 1)

	owner := seedAccount(t, db, "owner", "OWN", nil)
	seedInvestment(t, db, owner.ID, "15", 10)

	first, err := svc.Run(context.Background(), domain.RunModeScheduled)
	require.NoError(t, err)
	require.Equal(t, domain.RunStatusCompleted, first.Status)

	second, err := svc.Run(context.Background(), domain.RunModeManual)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusSkipped, second.Status)
	assert.Equal(t, first.InvestmentsProcessed, second.InvestmentsProcessed)

	// No mutations on the second call.
	gotOwner := reload[models.Account](t, db, owner.ID)
	assert.True(t, gotOwner.Balance.Equal(decimal.NewFromInt(15)))
	var histories, runs int64
	db.Model(&models.CreditHistory{}).Count(&histories)
	db.Model(&models.SettlementRun{}).Count(&runs)
	assert.EqualValues(t, 1, histories)
	assert.EqualValues(t, 1, runs)
}

func TestPartialFailureIsolation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, 1)

	a := seedAccount(t, db, "a", "AAA", nil)
	b := seedAccount(t, db, "b", "BBB", nil)
	c := seedAccount(t, db, "c", "CCC", nil)
	invA := seedInvestment(t, db, a.ID, "10", 5)
	invB := seedInvestment(t, db, b.ID, "20", 5)
	invC := seedInvestment(t, db, c.ID, "30", 5)

	// Trip the once-per-day unique index for invB: its unit-of-work fails on
	// the credit-history insert and rolls back; the other two must settle.
	require.NoError(t, db.Create(&models.CreditHistory{
		InvestmentID: invB.ID,
		AccountID:    b.ID,
		Amount:       decimal.NewFromInt(20),
		CreditedOn:   testDay,
	}).Error)

	summary, err := svc.Run(context.Background(), domain.RunModeScheduled)
	require.NoError(t, err)

	assert.Equal(t, domain.RunStatusCompleted, summary.Status)
	assert.Equal(t, 2, summary.InvestmentsProcessed)
	assert.Equal(t, []uint{invB.ID}, summary.InvestmentsFailed)
	assert.True(t, summary.TotalROIDistributed.Equal(decimal.NewFromInt(40)))

	// invB rolled back completely: no balance, no term advance.
	gotB := reload[models.Account](t, db, b.ID)
	assert.True(t, gotB.Balance.IsZero())
	gotInvB := reload[models.Investment](t, db, invB.ID)
	assert.Equal(t, 5, gotInvB.DaysRemaining)
	assert.Nil(t, gotInvB.LastCreditedOn)

	gotA := reload[models.Account](t, db, a.ID)
	assert.True(t, gotA.Balance.Equal(decimal.NewFromInt(10)))
	gotInvA := reload[models.Investment](t, db, invA.ID)
	assert.Equal(t, 4, gotInvA.DaysRemaining)
	gotC := reload[models.Account](t, db, c.ID)
	assert.True(t, gotC.Balance.Equal(decimal.NewFromInt(30)))
	gotInvC := reload[models.Investment](t, db, invC.ID)
	assert.Equal(t, 4, gotInvC.DaysRemaining)

	// The marker carries the failed id through its JSON column.
	marker, err := repository.NewRunRepository(db).GetByDate(testDay)
	require.NoError(t, err)
	assert.Equal(t, models.UintList{invB.ID}, marker.FailedIDs)
	assert.Equal(t, 2, marker.InvestmentsProcessed)
}

func TestCompletedInvestmentLeavesEligibleSet(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, 1)

	owner := seedAccount(t, db, "owner", "OWN", nil)
	last := seedInvestment(t, db, owner.ID, "15", 1)
	ongoing := seedInvestment(t, db, owner.ID, "5", 3)

	_, err := svc.Run(context.Background(), domain.RunModeScheduled)
	require.NoError(t, err)

	gotLast := reload[models.Investment](t, db, last.ID)
	assert.Equal(t, domain.InvestmentStatusCompleted, gotLast.Status)
	assert.Equal(t, 0, gotLast.DaysRemaining)
	gotOngoing := reload[models.Investment](t, db, ongoing.ID)
	assert.Equal(t, domain.InvestmentStatusActive, gotOngoing.Status)
	assert.Equal(t, 2, gotOngoing.DaysRemaining)

	// Next day: only the ongoing investment is eligible.
	ids, err := repository.NewInvestmentRepository(db).ListEligibleIDs("2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, []uint{ongoing.ID}, ids)

	// Same day: nothing is eligible, both were handled.
	ids, err = repository.NewInvestmentRepository(db).ListEligibleIDs(testDay)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestConservationOfEarnings(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, 4)

	r1 := seedAccount(t, db, "r1", "R1", nil)
	// Three investors share the same upstream referrer; their units may run
	// concurrently and must not lose R1's commission increments.
	for i, daily := range []string{"10", "20", "30"} {
		acc := seedAccount(t, db, "inv"+string(rune('a'+i)), "C"+string(rune('A'+i)), ref("R1"))
		seedInvestment(t, db, acc.ID, daily, 5)
	}

	summary, err := svc.Run(context.Background(), domain.RunModeScheduled)
	require.NoError(t, err)
	require.Equal(t, 3, summary.InvestmentsProcessed)

	// 10% of (10+20+30) = 6.00
	gotR1 := reload[models.Account](t, db, r1.ID)
	assert.True(t, gotR1.Balance.Equal(decimal.NewFromInt(6)), "r1 balance %s", gotR1.Balance)

	// Conservation: every account's lifetime earnings equal the sum of its
	// credit-history and commission amounts.
	var accounts []models.Account
	require.NoError(t, db.Find(&accounts).Error)
	for _, acc := range accounts {
		total := decimal.Zero
		var histories []models.CreditHistory
		require.NoError(t, db.Where("account_id = ?", acc.ID).Find(&histories).Error)
		for _, h := range histories {
			total = total.Add(h.Amount)
		}
		var commissions []models.Commission
		require.NoError(t, db.Where("account_id = ?", acc.ID).Find(&commissions).Error)
		for _, cm := range commissions {
			total = total.Add(cm.Amount)
		}
		assert.True(t, acc.TotalEarnings.Equal(total),
			"account %s earnings %s != ledger sum %s", acc.ReferralCode, acc.TotalEarnings, total)
	}
}

func TestZeroCommissionEntriesNotPaid(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, 1)

	// Five-level chain; with a 0.10 daily return levels 3..5 round to zero
	// and must produce no commission or transaction rows.
	codes := []string{"L5", "L4", "L3", "L2", "L1"}
	var prev *string
	for _, code := range codes {
		seedAccount(t, db, code, code, prev)
		prev = ref(code)
	}
	owner := seedAccount(t, db, "owner", "OWN", ref("L1"))
	seedInvestment(t, db, owner.ID, "0.10", 5)

	summary, err := svc.Run(context.Background(), domain.RunModeScheduled)
	require.NoError(t, err)
	require.Equal(t, 1, summary.InvestmentsProcessed)

	var commissions, refTxs int64
	db.Model(&models.Commission{}).Count(&commissions)
	db.Model(&models.Transaction{}).Where("type = ?", domain.TxTypeReferral).Count(&refTxs)
	assert.EqualValues(t, 2, commissions, "levels 1 and 2 only")
	assert.EqualValues(t, 2, refTxs)
	assert.True(t, summary.TotalCommissionsDistributed.Equal(decimal.RequireFromString("0.02")))
}

func TestRunFatalWhenEligibleLoadFails(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, 1)
	require.NoError(t, db.Migrator().DropTable(&models.Investment{}))

	summary, err := svc.Run(context.Background(), domain.RunModeScheduled)
	require.Error(t, err)
	assert.Equal(t, domain.RunStatusFatal, summary.Status)

	// Fatal runs persist no marker, so a retry is safe.
	_, err = repository.NewRunRepository(db).GetByDate(testDay)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRunCancelledWritesNoMarker(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, 1)

	owner := seedAccount(t, db, "owner", "OWN", nil)
	seedInvestment(t, db, owner.ID, "15", 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := svc.Run(ctx, domain.RunModeScheduled)
	require.Error(t, err)
	assert.Equal(t, domain.RunStatusFatal, summary.Status)
	_, err = repository.NewRunRepository(db).GetByDate(testDay)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCancelledRunFinishesInFlightUnit(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, 1)

	owner := seedAccount(t, db, "owner", "OWN", nil)
	inv := seedInvestment(t, db, owner.ID, "15", 5)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Cancel the run while the unit sits between its in-transaction writes.
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("cancel_mid_unit", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*models.CreditHistory); ok {
			cancel()
		}
	}))
	t.Cleanup(func() { _ = db.Callback().Create().Remove("cancel_mid_unit") })

	summary, err := svc.Run(ctx, domain.RunModeScheduled)
	require.Error(t, err)
	assert.Equal(t, domain.RunStatusFatal, summary.Status)

	// The in-flight unit committed in full despite the cancellation.
	gotInv := reload[models.Investment](t, db, inv.ID)
	assert.Equal(t, 4, gotInv.DaysRemaining)
	require.NotNil(t, gotInv.LastCreditedOn)
	assert.Equal(t, testDay, *gotInv.LastCreditedOn)
	gotOwner := reload[models.Account](t, db, owner.ID)
	assert.True(t, gotOwner.Balance.Equal(decimal.NewFromInt(15)), "owner balance %s", gotOwner.Balance)

	// Still no marker: the cancelled run does not claim the day.
	_, err = repository.NewRunRepository(db).GetByDate(testDay)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUnitTimeoutMapsToInvestmentFailure(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewSettlementService(
		db,
		repository.NewInvestmentRepository(db),
		repository.NewRunRepository(db),
		NewNotificationService(repository.NewNotificationRepository(db)),
		config.SettlementConfig{Timezone: "UTC", Workers: 1, UnitTimeout: time.Nanosecond},
	)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2026, time.August, 29, 10, 0, 0, 0, time.UTC) }

	owner := seedAccount(t, db, "owner", "OWN", nil)
	inv := seedInvestment(t, db, owner.ID, "15", 5)

	summary, err := svc.Run(context.Background(), domain.RunModeScheduled)
	require.NoError(t, err)

	// An expired unit budget is that investment's failure, not the run's.
	assert.Equal(t, domain.RunStatusCompleted, summary.Status)
	assert.Equal(t, 0, summary.InvestmentsProcessed)
	assert.Equal(t, []uint{inv.ID}, summary.InvestmentsFailed)

	// Fully rolled back: no balance, no term advance, no history.
	gotInv := reload[models.Investment](t, db, inv.ID)
	assert.Equal(t, 5, gotInv.DaysRemaining)
	assert.Nil(t, gotInv.LastCreditedOn)
	gotOwner := reload[models.Account](t, db, owner.ID)
	assert.True(t, gotOwner.Balance.IsZero())
	var histories int64
	db.Model(&models.CreditHistory{}).Count(&histories)
	assert.EqualValues(t, 0, histories)

	marker, err := repository.NewRunRepository(db).GetByDate(testDay)
	require.NoError(t, err)
	assert.Equal(t, models.UintList{inv.ID}, marker.FailedIDs)
}

func TestSkipAlreadyCreditedToday(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, 1)

	owner := seedAccount(t, db, "owner", "OWN", nil)
	inv := seedInvestment(t, db, owner.ID, "15", 5)
	day := testDay
	require.NoError(t, db.Model(inv).Update("last_credited_on", &day).Error)

	summary, err := svc.Run(context.Background(), domain.RunModeScheduled)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCompleted, summary.Status)
	assert.Equal(t, 0, summary.InvestmentsProcessed)
	assert.Empty(t, summary.InvestmentsFailed)

	gotOwner := reload[models.Account](t, db, owner.ID)
	assert.True(t, gotOwner.Balance.IsZero())
}
