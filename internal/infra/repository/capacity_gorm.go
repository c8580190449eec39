package repository

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/playpark/internal/domain/capacity"
	"github.com/BruksfildServices01/playpark/internal/models"
)

type CapacityGormRepository struct {
	db *gorm.DB
}

func NewCapacityGormRepository(db *gorm.DB) *CapacityGormRepository {
	return &CapacityGormRepository{db: db}
}

var _ domain.Repository = (*CapacityGormRepository)(nil)

func (r *CapacityGormRepository) GetZone(ctx context.Context, id uint) (*models.Zone, error) {
	var zone models.Zone
	if err := r.db.WithContext(ctx).First(&zone, id).Error; err != nil {
		return nil, notFound(err, "zone_not_found")
	}
	return &zone, nil
}

func (r *CapacityGormRepository) GetSession(ctx context.Context, id uint) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, notFound(err, "session_not_found")
	}
	return &session, nil
}

func (r *CapacityGormRepository) CountOpenVisitsInZone(ctx context.Context, zoneID uint) (int, error) {
	return countOpenVisits(ctx, r.db, "zone_id", zoneID)
}

func (r *CapacityGormRepository) CountOpenVisitsInSession(ctx context.Context, sessionID uint) (int, error) {
	return countOpenVisits(ctx, r.db, "session_id", sessionID)
}
