package memory

import (
	"context"
	"sort"
	"time"

	domain "github.com/BruksfildServices01/playpark/internal/domain/credit"
	"github.com/BruksfildServices01/playpark/internal/models"
)

type CreditRepository struct {
	s    *Store
	inTx bool
}

func NewCreditRepository(s *Store) *CreditRepository {
	return &CreditRepository{s: s}
}

var _ domain.Repository = (*CreditRepository)(nil)

func (r *CreditRepository) GetLocation(ctx context.Context, id uint) (*models.Location, error) {
	var out *models.Location
	err := r.s.guard(r.inTx, func() error {
		l, err := r.s.getLocation(id)
		out = l
		return err
	})
	return out, err
}

func (r *CreditRepository) GetCredit(ctx context.Context, id uint) (*models.Credit, error) {
	var out *models.Credit
	err := r.s.guard(r.inTx, func() error {
		c, err := r.s.getCredit(id)
		out = c
		return err
	})
	return out, err
}

func (r *CreditRepository) ListEligibleCredits(
	ctx context.Context,
	guardianID uint,
	locationID uint,
	asOf time.Time,
) ([]models.Credit, error) {
	var out []models.Credit
	err := r.s.guard(r.inTx, func() error {
		out = r.s.eligibleCredits(guardianID, locationID, asOf)
		return nil
	})
	return out, err
}

func (r *CreditRepository) UpsertTopUp(
	ctx context.Context,
	guardianID uint,
	locationID uint,
	minutes int,
	expiry *time.Time,
) (*models.Credit, error) {
	var out *models.Credit
	err := r.s.guard(r.inTx, func() error {
		c, err := r.s.upsertTopUp(guardianID, locationID, minutes, expiry)
		out = c
		return err
	})
	return out, err
}

func (r *CreditRepository) DeductMinutes(ctx context.Context, creditID uint, minutes int) (int, error) {
	var remaining int
	err := r.s.guard(r.inTx, func() error {
		var err error
		remaining, err = r.s.deduct(creditID, minutes)
		return err
	})
	return remaining, err
}

// --------------------------------------------------
// Sweep
// --------------------------------------------------

func (r *CreditRepository) ListSweepCandidates(
	ctx context.Context,
	asOf time.Time,
	afterID uint,
	limit int,
) ([]models.Credit, error) {
	var out []models.Credit
	err := r.s.guard(r.inTx, func() error {
		for _, c := range r.s.credits {
			if c.ID > afterID && c.MinutesRemaining != 0 && domain.IsExpired(c, asOf) {
				out = append(out, c)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		out = page(out, 0, limit)
		return nil
	})
	return out, err
}

func (r *CreditRepository) ZeroExpiredCredit(ctx context.Context, id uint, asOf time.Time) (bool, error) {
	var changed bool
	err := r.s.guard(r.inTx, func() error {
		if err := r.s.fault("ZeroExpiredCredit"); err != nil {
			return err
		}
		c, ok := r.s.credits[id]
		if !ok || c.MinutesRemaining <= 0 || !domain.IsExpired(c, asOf) {
			return nil
		}
		c.MinutesRemaining = 0
		c.UpdatedAt = time.Now()
		r.s.credits[id] = c
		changed = true
		return nil
	})
	return changed, err
}

// --------------------------------------------------
// Reporting
// --------------------------------------------------

func (r *CreditRepository) ListCreditsForGuardian(ctx context.Context, guardianID uint) ([]models.Credit, error) {
	var out []models.Credit
	err := r.s.guard(r.inTx, func() error {
		for _, c := range r.s.credits {
			if c.GuardianID == guardianID {
				out = append(out, r.s.withLocation(c))
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].LocationID != out[j].LocationID {
				return out[i].LocationID < out[j].LocationID
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}

func (r *CreditRepository) ListRecentVisitsForCredit(
	ctx context.Context,
	creditID uint,
	limit int,
) ([]models.Visit, error) {
	var out []models.Visit
	err := r.s.guard(r.inTx, func() error {
		for _, v := range r.s.visits {
			if v.CreditID != nil && *v.CreditID == creditID {
				out = append(out, r.s.withChild(v))
			}
		}
		sort.Slice(out, func(i, j int) bool {
			return checkInBefore(out[j], out[i])
		})
		out = page(out, 0, limit)
		return nil
	})
	return out, err
}

func (r *CreditRepository) ListExpiredCredits(
	ctx context.Context,
	asOf time.Time,
	locationID *uint,
) ([]models.Credit, error) {
	var out []models.Credit
	err := r.s.guard(r.inTx, func() error {
		for _, c := range r.s.credits {
			if c.MinutesRemaining <= 0 || !domain.IsExpired(c, asOf) {
				continue
			}
			if locationID != nil && c.LocationID != *locationID {
				continue
			}
			out = append(out, r.s.withLocation(c))
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].ExpiryDate.Equal(*out[j].ExpiryDate) {
				return out[i].ExpiryDate.Before(*out[j].ExpiryDate)
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}
