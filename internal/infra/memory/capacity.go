package memory

import (
	"context"

	domain "github.com/BruksfildServices01/playpark/internal/domain/capacity"
	"github.com/BruksfildServices01/playpark/internal/models"
)

type CapacityRepository struct {
	s *Store
}

func NewCapacityRepository(s *Store) *CapacityRepository {
	return &CapacityRepository{s: s}
}

var _ domain.Repository = (*CapacityRepository)(nil)

func (r *CapacityRepository) GetZone(ctx context.Context, id uint) (*models.Zone, error) {
	var out *models.Zone
	err := r.s.guard(false, func() error {
		z, err := r.s.getZone(id)
		out = z
		return err
	})
	return out, err
}

func (r *CapacityRepository) GetSession(ctx context.Context, id uint) (*models.Session, error) {
	var out *models.Session
	err := r.s.guard(false, func() error {
		ss, err := r.s.getSession(id)
		out = ss
		return err
	})
	return out, err
}

func (r *CapacityRepository) CountOpenVisitsInZone(ctx context.Context, zoneID uint) (int, error) {
	var n int
	err := r.s.guard(false, func() error {
		n = r.s.countOpenInZone(zoneID)
		return nil
	})
	return n, err
}

func (r *CapacityRepository) CountOpenVisitsInSession(ctx context.Context, sessionID uint) (int, error) {
	var n int
	err := r.s.guard(false, func() error {
		n = r.s.countOpenInSession(sessionID)
		return nil
	})
	return n, err
}
