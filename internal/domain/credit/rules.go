package credit

import (
	"math"
	"sort"
	"time"

	"github.com/BruksfildServices01/playpark/internal/models"
)

// ===============================
// Eligibility
// ===============================

// IsEligible reports whether c can pay for a play_time visit on asOf.
// asOf and the expiry date are both calendar dates at midnight UTC.
func IsEligible(c models.Credit, asOf time.Time) bool {
	if c.MinutesRemaining <= 0 {
		return false
	}
	return c.ExpiryDate == nil || !c.ExpiryDate.Before(asOf)
}

func IsExpired(c models.Credit, asOf time.Time) bool {
	return c.ExpiryDate != nil && c.ExpiryDate.Before(asOf)
}

// IsMalformed flags rows the sweep must not touch.
func IsMalformed(c models.Credit) bool {
	return c.MinutesRemaining < 0
}

// Less orders credits for selection: earliest expiry first, credits that
// never expire last, then lowest id.
func Less(a, b models.Credit) bool {
	switch {
	case a.ExpiryDate == nil && b.ExpiryDate == nil:
		return a.ID < b.ID
	case a.ExpiryDate == nil:
		return false
	case b.ExpiryDate == nil:
		return true
	case !a.ExpiryDate.Equal(*b.ExpiryDate):
		return a.ExpiryDate.Before(*b.ExpiryDate)
	default:
		return a.ID < b.ID
	}
}

// SelectEligible returns the first eligible credit in selection order, or
// nil when none qualifies.
func SelectEligible(credits []models.Credit, asOf time.Time) *models.Credit {
	eligible := make([]models.Credit, 0, len(credits))
	for _, c := range credits {
		if IsEligible(c, asOf) {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return Less(eligible[i], eligible[j])
	})

	picked := eligible[0]
	return &picked
}

// ===============================
// Balance arithmetic
// ===============================

// ClampDeduct never returns a negative balance.
func ClampDeduct(remaining, minutes int) int {
	if minutes < 0 {
		minutes = 0
	}
	if remaining-minutes < 0 {
		return 0
	}
	return remaining - minutes
}

// MergeExpiry keeps the later of two expiry dates. A nil date means
// "no expiry set" and never overrides a concrete one.
func MergeExpiry(current, next *time.Time) *time.Time {
	switch {
	case current == nil:
		return next
	case next == nil:
		return current
	case next.After(*current):
		return next
	default:
		return current
	}
}

// DaysExpired counts whole days between the expiry date and asOf.
func DaysExpired(c models.Credit, asOf time.Time) int {
	if !IsExpired(c, asOf) {
		return 0
	}
	return int(asOf.Sub(*c.ExpiryDate).Hours() / 24)
}

// Hours renders minutes as hours with two decimals.
func Hours(minutes int) float64 {
	return math.Round(float64(minutes)/60*100) / 100
}
