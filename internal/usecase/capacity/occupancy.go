package capacity

import (
	"context"

	domain "github.com/BruksfildServices01/playpark/internal/domain/capacity"
	"github.com/BruksfildServices01/playpark/internal/httperr"
)

type GetOccupancy struct {
	repo domain.Repository
}

func NewGetOccupancy(repo domain.Repository) *GetOccupancy {
	return &GetOccupancy{repo: repo}
}

// Execute derives the current occupancy of a zone or session from its open
// visits. A session is measured against its own maximum, not its zone's.
func (uc *GetOccupancy) Execute(
	ctx context.Context,
	kind domain.TargetKind,
	id uint,
) (*domain.Occupancy, error) {

	switch kind {
	case domain.TargetZone:
		zone, err := uc.repo.GetZone(ctx, id)
		if err != nil {
			return nil, err
		}
		n, err := uc.repo.CountOpenVisitsInZone(ctx, zone.ID)
		if err != nil {
			return nil, err
		}
		return &domain.Occupancy{
			Kind:        kind,
			ID:          zone.ID,
			LocationID:  zone.LocationID,
			Current:     n,
			MaxCapacity: zone.MaxCapacity,
		}, nil

	case domain.TargetSession:
		session, err := uc.repo.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		n, err := uc.repo.CountOpenVisitsInSession(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		return &domain.Occupancy{
			Kind:        kind,
			ID:          session.ID,
			LocationID:  session.LocationID,
			Current:     n,
			MaxCapacity: session.MaxCapacity,
		}, nil

	default:
		return nil, httperr.ErrBusiness("invalid_capacity_target")
	}
}

// HasRoom is a convenience over Execute for callers that only need the
// admission answer.
func (uc *GetOccupancy) HasRoom(
	ctx context.Context,
	kind domain.TargetKind,
	id uint,
) (bool, error) {
	occ, err := uc.Execute(ctx, kind, id)
	if err != nil {
		return false, err
	}
	return occ.HasRoom(), nil
}
