package memory

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/playpark/internal/domain/settlement"
	"github.com/BruksfildServices01/playpark/internal/models"
)

type SettlementRepository struct {
	s    *Store
	inTx bool
}

func NewSettlementRepository(s *Store) *SettlementRepository {
	return &SettlementRepository{s: s}
}

var _ domain.Repository = (*SettlementRepository)(nil)

func (r *SettlementRepository) WithTx(ctx context.Context, fn func(tx domain.Repository) error) error {
	return r.s.withTx(r.inTx, func() error {
		return fn(&SettlementRepository{s: r.s, inTx: true})
	})
}

func (r *SettlementRepository) ClaimTransaction(ctx context.Context, ap *models.AppliedPurchase) (bool, error) {
	var claimed bool
	err := r.s.guard(r.inTx, func() error {
		if err := r.s.fault("ClaimTransaction"); err != nil {
			return err
		}
		if _, ok := r.s.applied[ap.TransactionID]; ok {
			return nil
		}
		if ap.AppliedAt.IsZero() {
			ap.AppliedAt = time.Now()
		}
		r.s.applied[ap.TransactionID] = *ap
		claimed = true
		return nil
	})
	return claimed, err
}

func (r *SettlementRepository) FindApplied(ctx context.Context, transactionID string) (*models.AppliedPurchase, error) {
	var out *models.AppliedPurchase
	err := r.s.guard(r.inTx, func() error {
		if ap, ok := r.s.applied[transactionID]; ok {
			out = &ap
		}
		return nil
	})
	return out, err
}

func (r *SettlementRepository) MarkApplied(ctx context.Context, transactionID string, creditID uint) error {
	return r.s.guard(r.inTx, func() error {
		ap, ok := r.s.applied[transactionID]
		if !ok {
			return nil
		}
		ap.CreditID = &creditID
		r.s.applied[transactionID] = ap
		return nil
	})
}

func (r *SettlementRepository) UpsertTopUp(
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
