package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/playpark/internal/domain/credit"
	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/models"
)

type CreditGormRepository struct {
	db *gorm.DB
}

func NewCreditGormRepository(db *gorm.DB) *CreditGormRepository {
	return &CreditGormRepository{db: db}
}

var _ domain.Repository = (*CreditGormRepository)(nil)

// --------------------------------------------------
// Directory
// --------------------------------------------------

func (r *CreditGormRepository) GetLocation(ctx context.Context, id uint) (*models.Location, error) {
	return getLocation(ctx, r.db, id)
}

// --------------------------------------------------
// Balance
// --------------------------------------------------

func (r *CreditGormRepository) GetCredit(ctx context.Context, id uint) (*models.Credit, error) {
	return getCredit(ctx, r.db, id)
}

func (r *CreditGormRepository) ListEligibleCredits(
	ctx context.Context,
	guardianID uint,
	locationID uint,
	asOf time.Time,
) ([]models.Credit, error) {
	return listEligibleCredits(ctx, r.db, guardianID, locationID, asOf)
}

func (r *CreditGormRepository) UpsertTopUp(
	ctx context.Context,
	guardianID uint,
	locationID uint,
	minutes int,
	expiry *time.Time,
) (*models.Credit, error) {
	return upsertTopUp(ctx, r.db, guardianID, locationID, minutes, expiry)
}

func (r *CreditGormRepository) DeductMinutes(ctx context.Context, creditID uint, minutes int) (int, error) {
	return deductMinutes(ctx, r.db, creditID, minutes)
}

// --------------------------------------------------
// Sweep
// --------------------------------------------------

func (r *CreditGormRepository) ListSweepCandidates(
	ctx context.Context,
	asOf time.Time,
	afterID uint,
	limit int,
) ([]models.Credit, error) {

	var credits []models.Credit
	if err := r.db.WithContext(ctx).
		Where("expiry_date < ? AND minutes_remaining <> 0 AND id > ?", asOf, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&credits).Error; err != nil {
		return nil, classify(err)
	}
	return credits, nil
}

func (r *CreditGormRepository) ZeroExpiredCredit(ctx context.Context, id uint, asOf time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Credit{}).
		Where("id = ? AND expiry_date < ? AND minutes_remaining > 0", id, asOf).
		Updates(map[string]any{
			"minutes_remaining": 0,
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// --------------------------------------------------
// Reporting
// --------------------------------------------------

func (r *CreditGormRepository) ListCreditsForGuardian(ctx context.Context, guardianID uint) ([]models.Credit, error) {
	var credits []models.Credit
	if err := r.db.WithContext(ctx).
		Preload("Location").
		Where("guardian_id = ?", guardianID).
		Order("location_id ASC, id ASC").
		Find(&credits).Error; err != nil {
		return nil, classify(err)
	}
	return credits, nil
}

func (r *CreditGormRepository) ListRecentVisitsForCredit(
	ctx context.Context,
	creditID uint,
	limit int,
) ([]models.Visit, error) {

	var visits []models.Visit
	if err := r.db.WithContext(ctx).
		Preload("Child").
		Where("credit_id = ?", creditID).
		Order("check_in_time DESC, id DESC").
		Limit(limit).
		Find(&visits).Error; err != nil {
		return nil, classify(err)
	}
	return visits, nil
}

func (r *CreditGormRepository) ListExpiredCredits(
	ctx context.Context,
	asOf time.Time,
	locationID *uint,
) ([]models.Credit, error) {

	q := r.db.WithContext(ctx).
		Preload("Location").
		Where("expiry_date < ? AND minutes_remaining > 0", asOf)
	if locationID != nil {
		q = q.Where("location_id = ?", *locationID)
	}

	var credits []models.Credit
	if err := q.Order("expiry_date ASC, id ASC").Find(&credits).Error; err != nil {
		return nil, classify(err)
	}
	return credits, nil
}

// --------------------------------------------------
// Shared with the visit and settlement repositories
// --------------------------------------------------

func getLocation(ctx context.Context, db *gorm.DB, id uint) (*models.Location, error) {
	var l models.Location
	if err := db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, notFound(err, "location_not_found")
	}
	return &l, nil
}

func getCredit(ctx context.Context, db *gorm.DB, id uint) (*models.Credit, error) {
	var c models.Credit
	if err := db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "credit_not_found")
	}
	return &c, nil
}

// listEligibleCredits applies the selection order in SQL: earliest expiry
// first, never-expiring last, then id.
func listEligibleCredits(
	ctx context.Context,
	db *gorm.DB,
	guardianID uint,
	locationID uint,
	asOf time.Time,
) ([]models.Credit, error) {

	var credits []models.Credit
	if err := db.WithContext(ctx).
		Where(
			"guardian_id = ? AND location_id = ? AND minutes_remaining > 0 AND (expiry_date IS NULL OR expiry_date >= ?)",
			guardianID, locationID, asOf,
		).
		Order("expiry_date ASC NULLS LAST, id ASC").
		Find(&credits).Error; err != nil {
		return nil, classify(err)
	}
	return credits, nil
}

// upsertTopUp is a single INSERT ... ON CONFLICT statement, so concurrent
// top-ups for the same pair serialize on the row and none is lost.
// GREATEST skips NULLs, so an unset expiry never replaces a real one.
func upsertTopUp(
	ctx context.Context,
	db *gorm.DB,
	guardianID uint,
	locationID uint,
	minutes int,
	expiry *time.Time,
) (*models.Credit, error) {

	c := models.Credit{
		GuardianID:       guardianID,
		LocationID:       locationID,
		MinutesRemaining: minutes,
		ExpiryDate:       expiry,
	}

	if err := db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "guardian_id"}, {Name: "location_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"minutes_remaining": gorm.Expr("credits.minutes_remaining + EXCLUDED.minutes_remaining"),
					"expiry_date":       gorm.Expr("GREATEST(credits.expiry_date, EXCLUDED.expiry_date)"),
					"updated_at":        gorm.Expr("EXCLUDED.updated_at"),
				}),
			},
			clause.Returning{},
		).
		Create(&c).Error; err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

func deductMinutes(ctx context.Context, db *gorm.DB, creditID uint, minutes int) (int, error) {
	var remaining []int
	res := db.WithContext(ctx).Raw(`
        UPDATE credits
        SET minutes_remaining = GREATEST(minutes_remaining - ?, 0),
            updated_at = NOW()
        WHERE id = ?
        RETURNING minutes_remaining
    `, minutes, creditID).Scan(&remaining)
	if res.Error != nil {
		return 0, classify(res.Error)
	}
	if len(remaining) == 0 {
		return 0, httperr.ErrNotFound("credit_not_found")
	}
	return remaining[0], nil
}
