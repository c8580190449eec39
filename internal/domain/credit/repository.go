package credit

import (
	"context"
	"time"

	"github.com/BruksfildServices01/playpark/internal/models"
)

type Repository interface {
	// -------- Directory --------
	GetLocation(ctx context.Context, id uint) (*models.Location, error)

	// -------- Balance --------
	GetCredit(ctx context.Context, id uint) (*models.Credit, error)

	ListEligibleCredits(
		ctx context.Context,
		guardianID uint,
		locationID uint,
		asOf time.Time,
	) ([]models.Credit, error)

	// UpsertTopUp adds minutes to the (guardian, location) credit, or creates
	// it, as one atomic statement. The expiry only ever moves later.
	UpsertTopUp(
		ctx context.Context,
		guardianID uint,
		locationID uint,
		minutes int,
		expiry *time.Time,
	) (*models.Credit, error)

	// DeductMinutes clamps at zero and returns the new balance.
	DeductMinutes(ctx context.Context, creditID uint, minutes int) (int, error)

	// -------- Sweep --------
	ListSweepCandidates(
		ctx context.Context,
		asOf time.Time,
		afterID uint,
		limit int,
	) ([]models.Credit, error)

	// ZeroExpiredCredit zeroes the credit only if it is still expired on asOf
	// and still holds minutes. It reports whether a row changed.
	ZeroExpiredCredit(ctx context.Context, id uint, asOf time.Time) (bool, error)

	// -------- Reporting --------
	ListCreditsForGuardian(ctx context.Context, guardianID uint) ([]models.Credit, error)

	ListRecentVisitsForCredit(
		ctx context.Context,
		creditID uint,
		limit int,
	) ([]models.Visit, error)

	ListExpiredCredits(
		ctx context.Context,
		asOf time.Time,
		locationID *uint,
	) ([]models.Credit, error)
}
