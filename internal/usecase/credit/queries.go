package credit

import (
	"context"

	domain "github.com/BruksfildServices01/playpark/internal/domain/credit"
	"github.com/BruksfildServices01/playpark/internal/models"
	"github.com/BruksfildServices01/playpark/internal/timezone"
)

const recentVisitsPerCredit = 5

// ======================================================
// GUARDIAN SUMMARY
// ======================================================

type CreditSummary struct {
	Credit         models.Credit
	HoursRemaining float64
	IsExpired      bool
	RecentVisits   []models.Visit
}

type ListGuardianCredits struct {
	repo  domain.Repository
	clock timezone.Clock
}

func NewListGuardianCredits(repo domain.Repository, clock timezone.Clock) *ListGuardianCredits {
	return &ListGuardianCredits{repo: repo, clock: clock}
}

func (uc *ListGuardianCredits) Execute(
	ctx context.Context,
	guardianID uint,
) ([]CreditSummary, error) {

	credits, err := uc.repo.ListCreditsForGuardian(ctx, guardianID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	out := make([]CreditSummary, 0, len(credits))
	for _, c := range credits {
		tz := timezone.DefaultTimezone
		if c.Location != nil {
			tz = c.Location.Timezone
		}

		visits, err := uc.repo.ListRecentVisitsForCredit(ctx, c.ID, recentVisitsPerCredit)
		if err != nil {
			return nil, err
		}

		out = append(out, CreditSummary{
			Credit:         c,
			HoursRemaining: domain.Hours(c.MinutesRemaining),
			IsExpired:      domain.IsExpired(c, timezone.DateIn(now, tz)),
			RecentVisits:   visits,
		})
	}
	return out, nil
}

// ======================================================
// EXPIRED, NOT YET SWEPT
// ======================================================

type ExpiredCredit struct {
	Credit      models.Credit
	DaysExpired int
}

type ListExpiredCredits struct {
	repo  domain.Repository
	clock timezone.Clock
}

func NewListExpiredCredits(repo domain.Repository, clock timezone.Clock) *ListExpiredCredits {
	return &ListExpiredCredits{repo: repo, clock: clock}
}

// Execute lists credits past expiry that still hold minutes. "Today" is the
// location's date when filtering by location, else the default timezone's.
func (uc *ListExpiredCredits) Execute(
	ctx context.Context,
	locationID *uint,
) ([]ExpiredCredit, error) {

	tz := timezone.DefaultTimezone
	if locationID != nil {
		location, err := uc.repo.GetLocation(ctx, *locationID)
		if err != nil {
			return nil, err
		}
		tz = location.Timezone
	}
	asOf := timezone.DateIn(uc.clock.Now(), tz)

	credits, err := uc.repo.ListExpiredCredits(ctx, asOf, locationID)
	if err != nil {
		return nil, err
	}

	out := make([]ExpiredCredit, 0, len(credits))
	for _, c := range credits {
		out = append(out, ExpiredCredit{
			Credit:      c,
			DaysExpired: domain.DaysExpired(c, asOf),
		})
	}
	return out, nil
}
