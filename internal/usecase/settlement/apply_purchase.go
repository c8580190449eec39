package settlement

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/playpark/internal/audit"
	domain "github.com/BruksfildServices01/playpark/internal/domain/settlement"
	"github.com/BruksfildServices01/playpark/internal/logger"
	"github.com/BruksfildServices01/playpark/internal/models"
	"github.com/BruksfildServices01/playpark/internal/retry"
)

type ApplyResult struct {
	Applied models.AppliedPurchase

	// Credit is nil when Duplicate is true.
	Credit    *models.Credit
	Duplicate bool
}

type ApplyPurchase struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	log   *zap.Logger
}

func NewApplyPurchase(repo domain.Repository, audit *audit.Dispatcher, log *zap.Logger) *ApplyPurchase {
	return &ApplyPurchase{repo: repo, audit: audit, log: logger.OrNop(log)}
}

// Execute turns a purchase-completed event into a credit top-up exactly
// once per transaction id. The marker row and the top-up commit together;
// a redelivered event finds the marker and changes nothing.
func (uc *ApplyPurchase) Execute(
	ctx context.Context,
	ev domain.PurchaseCompleted,
) (*ApplyResult, error) {

	if err := ev.Validate(); err != nil {
		return nil, err
	}
	expiry, err := ev.Expiry()
	if err != nil {
		return nil, err
	}

	var res *ApplyResult
	err = retry.Once(ctx, func(ctx context.Context) error {
		return uc.repo.WithTx(ctx, func(tx domain.Repository) error {
			marker := &models.AppliedPurchase{
				TransactionID:   ev.TransactionID,
				OrderID:         ev.OrderID,
				GuardianID:      ev.GuardianID,
				LocationID:      ev.LocationID,
				MinutesCredited: ev.Minutes,
				AmountPaid:      ev.AmountPaid,
			}

			claimed, err := tx.ClaimTransaction(ctx, marker)
			if err != nil {
				return err
			}
			if !claimed {
				existing, err := tx.FindApplied(ctx, ev.TransactionID)
				if err != nil {
					return err
				}
				if existing == nil {
					existing = marker
				}
				res = &ApplyResult{Applied: *existing, Duplicate: true}
				return nil
			}

			c, err := tx.UpsertTopUp(ctx, ev.GuardianID, ev.LocationID, ev.Minutes, expiry)
			if err != nil {
				return err
			}
			if err := tx.MarkApplied(ctx, ev.TransactionID, c.ID); err != nil {
				return err
			}

			marker.CreditID = &c.ID
			res = &ApplyResult{Applied: *marker, Credit: c}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if res.Duplicate {
		uc.log.Info("purchase already applied",
			zap.String("transaction_id", ev.TransactionID),
		)
		return res, nil
	}

	uc.log.Info("purchase applied",
		zap.String("transaction_id", ev.TransactionID),
		zap.Uint("credit_id", res.Credit.ID),
		zap.Int("minutes", ev.Minutes),
		zap.String("amount_paid", ev.AmountPaid.StringFixed(2)),
	)

	uc.audit.Dispatch(audit.Event{
		LocationID: &res.Credit.LocationID,
		UserID:     &ev.GuardianID,
		Action:     audit.ActionPurchaseApplied,
		Entity:     "credit",
		EntityID:   &res.Credit.ID,
		Metadata: map[string]any{
			"transaction_id": ev.TransactionID,
			"order_id":       ev.OrderID,
			"minutes":        ev.Minutes,
			"amount_paid":    ev.AmountPaid.StringFixed(2),
		},
	})

	return res, nil
}
