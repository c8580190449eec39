package visit

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/playpark/internal/audit"
	domain "github.com/BruksfildServices01/playpark/internal/domain/visit"
	"github.com/BruksfildServices01/playpark/internal/logger"
	"github.com/BruksfildServices01/playpark/internal/models"
	"github.com/BruksfildServices01/playpark/internal/retry"
	"github.com/BruksfildServices01/playpark/internal/timezone"
)

type CheckOutResult struct {
	Visit *models.Visit

	// CreditRemaining is set when the visit was settled against a credit.
	CreditRemaining *int
}

type CheckOut struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock timezone.Clock
	log   *zap.Logger
}

func NewCheckOut(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
	log *zap.Logger,
) *CheckOut {
	return &CheckOut{
		repo:  repo,
		audit: audit,
		clock: clock,
		log:   logger.OrNop(log),
	}
}

// Execute closes the visit and settles its credit in the same transaction.
func (uc *CheckOut) Execute(
	ctx context.Context,
	visitID uint,
	actorID uint,
) (*CheckOutResult, error) {

	var res *CheckOutResult
	err := retry.Once(ctx, func(ctx context.Context) error {
		return uc.repo.WithTx(ctx, func(tx domain.Repository) error {
			v, err := tx.LockVisit(ctx, visitID)
			if err != nil {
				return err
			}

			if err := domain.Close(v, actorID, uc.clock.Now()); err != nil {
				return err
			}

			if err := tx.UpdateVisit(ctx, v); err != nil {
				return err
			}

			out := &CheckOutResult{Visit: v}
			if domain.NeedsSettlement(v) {
				remaining, err := tx.DeductMinutes(ctx, *v.CreditID, *v.MinutesUsed)
				if err != nil {
					return err
				}
				out.CreditRemaining = &remaining
			}

			res = out
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	v := res.Visit
	fields := []zap.Field{
		zap.Uint("visit_id", v.ID),
		zap.Uint("child_id", v.ChildID),
	}
	if v.MinutesUsed != nil {
		fields = append(fields, zap.Int("minutes_used", *v.MinutesUsed))
	}
	if res.CreditRemaining != nil {
		fields = append(fields,
			zap.Uint("credit_id", *v.CreditID),
			zap.Int("credit_remaining", *res.CreditRemaining),
		)
	}
	uc.log.Info("visit checked out", fields...)

	uc.audit.Dispatch(audit.Event{
		LocationID: &v.LocationID,
		UserID:     &actorID,
		Action:     audit.ActionVisitCheckedOut,
		Entity:     "visit",
		EntityID:   &v.ID,
		Metadata: map[string]any{
			"minutes_used":     v.MinutesUsed,
			"credit_id":        v.CreditID,
			"credit_remaining": res.CreditRemaining,
		},
	})

	return res, nil
}
