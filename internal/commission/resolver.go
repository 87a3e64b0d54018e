// Package commission computes the multi-level referral payouts cascaded from
// one settled investment. The resolver is pure over the account snapshot its
// lookup provides; writing the payouts is the caller's job.
package commission

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/models"
)

// MaxLevels caps the upstream walk regardless of chain length.
const MaxLevels = 5

// levelPercents maps level (1-based) to the fixed commission percentage.
var levelPercents = [MaxLevels]int64{10, 5, 3, 2, 1}

var hundred = decimal.NewFromInt(100)

// Entry is one resolved payout: who gets what at which level.
type Entry struct {
	Account *models.Account
	Level   int
	Percent decimal.Decimal
	Amount  decimal.Decimal
}

// AccountLookup resolves a referral code to its account. A broken chain link
// is signalled by (nil, nil), not an error.
type AccountLookup func(code string) (*models.Account, error)

// PercentForLevel returns the fixed percentage paid at a level, or zero for
// levels outside 1..MaxLevels.
func PercentForLevel(level int) decimal.Decimal {
	if level < 1 || level > MaxLevels {
		return decimal.Zero
	}
	return decimal.NewFromInt(levelPercents[level-1])
}

// Resolve walks origin's upstream referral chain and returns the payouts for
// a base amount, direct referrer first. The walk stops at MaxLevels, at the
// first account without a referrer, or at a code that no longer resolves.
// Zero-amount entries (base small enough that percent rounds to zero) are
// included; callers decide whether to pay them.
func Resolve(base decimal.Decimal, origin *models.Account, lookup AccountLookup) ([]Entry, error) {
	entries := make([]Entry, 0, MaxLevels)
	next := origin.ReferredBy
	for level := 1; level <= MaxLevels && next != nil && *next != ""; level++ {
		acc, err := lookup(*next)
		if err != nil {
			return nil, fmt.Errorf("resolve level %d referrer %q: %w", level, *next, err)
		}
		if acc == nil {
			break // broken chain, stop cleanly
		}
		percent := PercentForLevel(level)
		entries = append(entries, Entry{
			Account: acc,
			Level:   level,
			Percent: percent,
			Amount:  base.Mul(percent).Div(hundred).Round(2),
		})
		next = acc.ReferredBy
	}
	return entries, nil
}
