package memory

import (
	"context"
	"math"
	"sort"
	"time"

	domain "github.com/BruksfildServices01/playpark/internal/domain/visit"
	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/models"
)

type VisitRepository struct {
	s    *Store
	inTx bool
}

func NewVisitRepository(s *Store) *VisitRepository {
	return &VisitRepository{s: s}
}

var _ domain.Repository = (*VisitRepository)(nil)

func (r *VisitRepository) WithTx(ctx context.Context, fn func(tx domain.Repository) error) error {
	return r.s.withTx(r.inTx, func() error {
		return fn(&VisitRepository{s: r.s, inTx: true})
	})
}

// --------------------------------------------------
// Directory
// --------------------------------------------------

func (r *VisitRepository) LockChild(ctx context.Context, childID uint) (*models.Child, error) {
	var out *models.Child
	err := r.s.guard(r.inTx, func() error {
		c, ok := r.s.children[childID]
		if !ok {
			return httperr.ErrNotFound("child_not_found")
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *VisitRepository) GetLocation(ctx context.Context, id uint) (*models.Location, error) {
	var out *models.Location
	err := r.s.guard(r.inTx, func() error {
		l, err := r.s.getLocation(id)
		out = l
		return err
	})
	return out, err
}

func (r *VisitRepository) LockZone(ctx context.Context, id uint) (*models.Zone, error) {
	var out *models.Zone
	err := r.s.guard(r.inTx, func() error {
		z, err := r.s.getZone(id)
		out = z
		return err
	})
	return out, err
}

func (r *VisitRepository) LockSession(ctx context.Context, id uint) (*models.Session, error) {
	var out *models.Session
	err := r.s.guard(r.inTx, func() error {
		ss, err := r.s.getSession(id)
		out = ss
		return err
	})
	return out, err
}

// --------------------------------------------------
// Capacity
// --------------------------------------------------

func (r *VisitRepository) CountOpenVisitsInZone(ctx context.Context, zoneID uint) (int, error) {
	var n int
	err := r.s.guard(r.inTx, func() error {
		n = r.s.countOpenInZone(zoneID)
		return nil
	})
	return n, err
}

func (r *VisitRepository) CountOpenVisitsInSession(ctx context.Context, sessionID uint) (int, error) {
	var n int
	err := r.s.guard(r.inTx, func() error {
		n = r.s.countOpenInSession(sessionID)
		return nil
	})
	return n, err
}

// --------------------------------------------------
// Credit
// --------------------------------------------------

func (r *VisitRepository) GetCredit(ctx context.Context, id uint) (*models.Credit, error) {
	var out *models.Credit
	err := r.s.guard(r.inTx, func() error {
		c, err := r.s.getCredit(id)
		out = c
		return err
	})
	return out, err
}

func (r *VisitRepository) ListEligibleCredits(
	ctx context.Context,
	guardianID uint,
	locationID uint,
	asOf time.Time,
) ([]models.Credit, error) {
	var out []models.Credit
	err := r.s.guard(r.inTx, func() error {
		out = r.s.eligibleCredits(guardianID, locationID, asOf)
		return nil
	})
	return out, err
}

func (r *VisitRepository) DeductMinutes(ctx context.Context, creditID uint, minutes int) (int, error) {
	var remaining int
	err := r.s.guard(r.inTx, func() error {
		var err error
		remaining, err = r.s.deduct(creditID, minutes)
		return err
	})
	return remaining, err
}

// --------------------------------------------------
// Visit (state change)
// --------------------------------------------------

func (r *VisitRepository) FindActiveVisit(ctx context.Context, childID uint) (*models.Visit, error) {
	var out *models.Visit
	err := r.s.guard(r.inTx, func() error {
		for _, v := range r.s.visits {
			if v.ChildID == childID && v.CheckOutTime == nil {
				v := v
				out = &v
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *VisitRepository) CreateVisit(ctx context.Context, v *models.Visit) error {
	return r.s.guard(r.inTx, func() error {
		if err := r.s.fault("CreateVisit"); err != nil {
			return err
		}

		// Mirrors ux_visits_child_active.
		for _, existing := range r.s.visits {
			if existing.ChildID == v.ChildID && existing.CheckOutTime == nil {
				return RetryableFault("ux_visits_child_active")
			}
		}

		now := time.Now()
		v.ID = r.s.newID()
		v.CreatedAt = now
		v.UpdatedAt = now

		row := *v
		row.Child = nil
		r.s.visits[v.ID] = row
		return nil
	})
}

func (r *VisitRepository) LockVisit(ctx context.Context, id uint) (*models.Visit, error) {
	var out *models.Visit
	err := r.s.guard(r.inTx, func() error {
		v, ok := r.s.visits[id]
		if !ok {
			return httperr.ErrNotFound("visit_not_found")
		}
		out = &v
		return nil
	})
	return out, err
}

func (r *VisitRepository) UpdateVisit(ctx context.Context, v *models.Visit) error {
	return r.s.guard(r.inTx, func() error {
		if err := r.s.fault("UpdateVisit"); err != nil {
			return err
		}
		if _, ok := r.s.visits[v.ID]; !ok {
			return httperr.ErrNotFound("visit_not_found")
		}

		v.UpdatedAt = time.Now()
		row := *v
		row.Child = nil
		r.s.visits[v.ID] = row
		return nil
	})
}

// --------------------------------------------------
// Visit (reporting)
// --------------------------------------------------

func (r *VisitRepository) ListActiveVisits(ctx context.Context, f domain.ActiveFilter) ([]models.Visit, error) {
	var out []models.Visit
	err := r.s.guard(r.inTx, func() error {
		for _, v := range r.s.visits {
			if v.CheckOutTime != nil || v.LocationID != f.LocationID {
				continue
			}
			if f.ZoneID != nil && (v.ZoneID == nil || *v.ZoneID != *f.ZoneID) {
				continue
			}
			out = append(out, r.s.withChild(v))
		}
		sort.Slice(out, func(i, j int) bool {
			return checkInBefore(out[i], out[j])
		})
		return nil
	})
	return out, err
}

func (r *VisitRepository) ListVisitHistory(ctx context.Context, f domain.HistoryFilter) ([]models.Visit, int64, error) {
	var (
		out   []models.Visit
		total int64
	)
	err := r.s.guard(r.inTx, func() error {
		var matched []models.Visit
		for _, v := range r.s.visits {
			if f.ChildID != nil && v.ChildID != *f.ChildID {
				continue
			}
			if f.GuardianID != nil {
				c, ok := r.s.children[v.ChildID]
				if !ok || c.GuardianID != *f.GuardianID || !c.IsActive {
					continue
				}
			}
			if f.ActiveOnly && v.CheckOutTime != nil {
				continue
			}
			matched = append(matched, r.s.withChild(v))
		}

		sort.Slice(matched, func(i, j int) bool {
			return checkInBefore(matched[j], matched[i])
		})

		total = int64(len(matched))
		out = page(matched, f.Offset, f.Limit)
		return nil
	})
	return out, total, err
}

func (r *VisitRepository) VisitStats(ctx context.Context, f domain.StatsFilter) (domain.Stats, error) {
	stats := domain.Stats{ByType: map[string]int64{}}
	err := r.s.guard(r.inTx, func() error {
		var (
			sum    int
			closed int
		)
		for _, v := range r.s.visits {
			if v.LocationID != f.LocationID || v.CheckInTime == nil {
				continue
			}
			if v.CheckInTime.Before(f.From) || !v.CheckInTime.Before(f.To) {
				continue
			}

			stats.Total++
			stats.ByType[v.VisitType]++
			if v.CheckOutTime == nil {
				stats.Active++
			}
			if v.MinutesUsed != nil {
				sum += *v.MinutesUsed
				closed++
			}
		}
		if closed > 0 {
			stats.AverageDurationMinutes = int(math.Round(float64(sum) / float64(closed)))
		}
		return nil
	})
	return stats, err
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

func checkInBefore(a, b models.Visit) bool {
	switch {
	case a.CheckInTime == nil || b.CheckInTime == nil:
		return a.ID < b.ID
	case a.CheckInTime.Equal(*b.CheckInTime):
		return a.ID < b.ID
	default:
		return a.CheckInTime.Before(*b.CheckInTime)
	}
}

func page[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
