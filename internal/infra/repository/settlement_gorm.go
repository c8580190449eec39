package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/playpark/internal/domain/settlement"
	"github.com/BruksfildServices01/playpark/internal/models"
)

type SettlementGormRepository struct {
	db *gorm.DB
}

func NewSettlementGormRepository(db *gorm.DB) *SettlementGormRepository {
	return &SettlementGormRepository{db: db}
}

var _ domain.Repository = (*SettlementGormRepository)(nil)

func (r *SettlementGormRepository) WithTx(ctx context.Context, fn func(tx domain.Repository) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&SettlementGormRepository{db: tx})
	})
	return classify(err)
}

// ClaimTransaction relies on the primary key: a concurrent claim of the
// same id waits for the first transaction and then inserts nothing.
func (r *SettlementGormRepository) ClaimTransaction(ctx context.Context, ap *models.AppliedPurchase) (bool, error) {
	if ap.AppliedAt.IsZero() {
		ap.AppliedAt = time.Now()
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(ap)
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *SettlementGormRepository) FindApplied(ctx context.Context, transactionID string) (*models.AppliedPurchase, error) {
	var rows []models.AppliedPurchase
	if err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, classify(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *SettlementGormRepository) MarkApplied(ctx context.Context, transactionID string, creditID uint) error {
	return classify(r.db.WithContext(ctx).
		Model(&models.AppliedPurchase{}).
		Where("transaction_id = ?", transactionID).
		Update("credit_id", creditID).Error)
}

func (r *SettlementGormRepository) UpsertTopUp(
	ctx context.Context,
	guardianID uint,
	locationID uint,
	minutes int,
	expiry *time.Time,
) (*models.Credit, error) {
	return upsertTopUp(ctx, r.db, guardianID, locationID, minutes, expiry)
}
