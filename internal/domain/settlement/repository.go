package settlement

import (
	"context"
	"time"

	"github.com/BruksfildServices01/playpark/internal/models"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error

	// ClaimTransaction inserts the applied-purchase marker. It returns false
	// when the transaction id was already recorded.
	ClaimTransaction(ctx context.Context, ap *models.AppliedPurchase) (bool, error)

	// FindApplied returns nil, nil when the transaction id is unknown.
	FindApplied(ctx context.Context, transactionID string) (*models.AppliedPurchase, error)

	MarkApplied(ctx context.Context, transactionID string, creditID uint) error

	UpsertTopUp(
		ctx context.Context,
		guardianID uint,
		locationID uint,
		minutes int,
		expiry *time.Time,
	) (*models.Credit, error)
}
