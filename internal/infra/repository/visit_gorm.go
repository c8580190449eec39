package repository

import (
	"context"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/playpark/internal/domain/visit"
	"github.com/BruksfildServices01/playpark/internal/models"
)

type VisitGormRepository struct {
	db *gorm.DB
}

func NewVisitGormRepository(db *gorm.DB) *VisitGormRepository {
	return &VisitGormRepository{db: db}
}

var _ domain.Repository = (*VisitGormRepository)(nil)

func (r *VisitGormRepository) WithTx(ctx context.Context, fn func(tx domain.Repository) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&VisitGormRepository{db: tx})
	})
	return classify(err)
}

// --------------------------------------------------
// Directory
// --------------------------------------------------

func (r *VisitGormRepository) LockChild(ctx context.Context, childID uint) (*models.Child, error) {
	var child models.Child
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&child, childID).Error; err != nil {
		return nil, notFound(err, "child_not_found")
	}
	return &child, nil
}

func (r *VisitGormRepository) GetLocation(ctx context.Context, id uint) (*models.Location, error) {
	return getLocation(ctx, r.db, id)
}

// LockZone serializes admissions into the zone for the rest of the
// transaction.
func (r *VisitGormRepository) LockZone(ctx context.Context, id uint) (*models.Zone, error) {
	var zone models.Zone
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&zone, id).Error; err != nil {
		return nil, notFound(err, "zone_not_found")
	}
	return &zone, nil
}

func (r *VisitGormRepository) LockSession(ctx context.Context, id uint) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&session, id).Error; err != nil {
		return nil, notFound(err, "session_not_found")
	}
	return &session, nil
}

// --------------------------------------------------
// Capacity
// --------------------------------------------------

func (r *VisitGormRepository) CountOpenVisitsInZone(ctx context.Context, zoneID uint) (int, error) {
	return countOpenVisits(ctx, r.db, "zone_id", zoneID)
}

func (r *VisitGormRepository) CountOpenVisitsInSession(ctx context.Context, sessionID uint) (int, error) {
	return countOpenVisits(ctx, r.db, "session_id", sessionID)
}

// --------------------------------------------------
// Credit
// --------------------------------------------------

func (r *VisitGormRepository) GetCredit(ctx context.Context, id uint) (*models.Credit, error) {
	return getCredit(ctx, r.db, id)
}

func (r *VisitGormRepository) ListEligibleCredits(
	ctx context.Context,
	guardianID uint,
	locationID uint,
	asOf time.Time,
) ([]models.Credit, error) {
	return listEligibleCredits(ctx, r.db, guardianID, locationID, asOf)
}

func (r *VisitGormRepository) DeductMinutes(ctx context.Context, creditID uint, minutes int) (int, error) {
	return deductMinutes(ctx, r.db, creditID, minutes)
}

// --------------------------------------------------
// Visit (state change)
// --------------------------------------------------

func (r *VisitGormRepository) FindActiveVisit(ctx context.Context, childID uint) (*models.Visit, error) {
	var visits []models.Visit
	if err := r.db.WithContext(ctx).
		Where("child_id = ? AND check_out_time IS NULL", childID).
		Limit(1).
		Find(&visits).Error; err != nil {
		return nil, classify(err)
	}
	if len(visits) == 0 {
		return nil, nil
	}
	return &visits[0], nil
}

func (r *VisitGormRepository) CreateVisit(ctx context.Context, v *models.Visit) error {
	return classify(r.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error)
}

func (r *VisitGormRepository) LockVisit(ctx context.Context, id uint) (*models.Visit, error) {
	var v models.Visit
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&v, id).Error; err != nil {
		return nil, notFound(err, "visit_not_found")
	}
	return &v, nil
}

func (r *VisitGormRepository) UpdateVisit(ctx context.Context, v *models.Visit) error {
	return classify(r.db.WithContext(ctx).Omit(clause.Associations).Save(v).Error)
}

// --------------------------------------------------
// Visit (reporting)
// --------------------------------------------------

func (r *VisitGormRepository) ListActiveVisits(ctx context.Context, f domain.ActiveFilter) ([]models.Visit, error) {
	q := r.db.WithContext(ctx).
		Preload("Child").
		Where("location_id = ? AND check_out_time IS NULL", f.LocationID)
	if f.ZoneID != nil {
		q = q.Where("zone_id = ?", *f.ZoneID)
	}

	var visits []models.Visit
	if err := q.Order("check_in_time ASC, id ASC").Find(&visits).Error; err != nil {
		return nil, classify(err)
	}
	return visits, nil
}

func (r *VisitGormRepository) ListVisitHistory(ctx context.Context, f domain.HistoryFilter) ([]models.Visit, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Visit{})
		if f.ChildID != nil {
			q = q.Where("visits.child_id = ?", *f.ChildID)
		}
		if f.GuardianID != nil {
			q = q.Joins("JOIN children ON children.id = visits.child_id").
				Where("children.guardian_id = ? AND children.is_active = ?", *f.GuardianID, true)
		}
		if f.ActiveOnly {
			q = q.Where("visits.check_out_time IS NULL")
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}

	var visits []models.Visit
	if err := base().
		Select("visits.*").
		Preload("Child").
		Order("visits.check_in_time DESC, visits.id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&visits).Error; err != nil {
		return nil, 0, classify(err)
	}

	return visits, total, nil
}

func (r *VisitGormRepository) VisitStats(ctx context.Context, f domain.StatsFilter) (domain.Stats, error) {
	type row struct {
		VisitType  string
		Total      int64
		Active     int64
		SumMinutes int64
		Closed     int64
	}

	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Visit{}).
		Select(`
            visit_type,
            COUNT(*) AS total,
            COUNT(*) FILTER (WHERE check_out_time IS NULL) AS active,
            COALESCE(SUM(minutes_used), 0) AS sum_minutes,
            COUNT(minutes_used) AS closed
        `).
		Where("location_id = ? AND check_in_time >= ? AND check_in_time < ?", f.LocationID, f.From, f.To).
		Group("visit_type").
		Scan(&rows).Error; err != nil {
		return domain.Stats{}, classify(err)
	}

	stats := domain.Stats{ByType: make(map[string]int64, len(rows))}
	var sum, closed int64
	for _, rw := range rows {
		stats.Total += rw.Total
		stats.Active += rw.Active
		stats.ByType[rw.VisitType] = rw.Total
		sum += rw.SumMinutes
		closed += rw.Closed
	}
	if closed > 0 {
		stats.AverageDurationMinutes = int(math.Round(float64(sum) / float64(closed)))
	}

	return stats, nil
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

func countOpenVisits(ctx context.Context, db *gorm.DB, column string, id uint) (int, error) {
	var n int64
	if err := db.WithContext(ctx).
		Model(&models.Visit{}).
		Where(column+" = ? AND check_out_time IS NULL", id).
		Count(&n).Error; err != nil {
		return 0, classify(err)
	}
	return int(n), nil
}
