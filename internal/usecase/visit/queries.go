package visit

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/playpark/internal/domain/visit"
	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/models"
	"github.com/BruksfildServices01/playpark/internal/timezone"
)

// ======================================================
// ACTIVE VISITS
// ======================================================

type ActiveVisit struct {
	Visit                  models.Visit
	CurrentDurationMinutes int
}

type ListActiveVisits struct {
	repo  domain.Repository
	clock timezone.Clock
}

func NewListActiveVisits(repo domain.Repository, clock timezone.Clock) *ListActiveVisits {
	return &ListActiveVisits{repo: repo, clock: clock}
}

func (uc *ListActiveVisits) Execute(
	ctx context.Context,
	locationID uint,
	zoneID *uint,
) ([]ActiveVisit, error) {

	if _, err := uc.repo.GetLocation(ctx, locationID); err != nil {
		return nil, err
	}

	visits, err := uc.repo.ListActiveVisits(ctx, domain.ActiveFilter{
		LocationID: locationID,
		ZoneID:     zoneID,
	})
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	out := make([]ActiveVisit, 0, len(visits))
	for _, v := range visits {
		av := ActiveVisit{Visit: v}
		if v.CheckInTime != nil {
			av.CurrentDurationMinutes = domain.MinutesBetween(*v.CheckInTime, now)
		}
		out = append(out, av)
	}
	return out, nil
}

// ======================================================
// HISTORY
// ======================================================

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

type HistoryInput struct {
	ChildID    *uint
	GuardianID *uint
	ActiveOnly bool
	Page       int
	Limit      int
}

type HistoryPage struct {
	Visits []models.Visit
	Total  int64
	Page   int
	Limit  int
}

type VisitHistory struct {
	repo domain.Repository
}

func NewVisitHistory(repo domain.Repository) *VisitHistory {
	return &VisitHistory{repo: repo}
}

// Execute lists visits newest first, by child or by guardian.
func (uc *VisitHistory) Execute(
	ctx context.Context,
	in HistoryInput,
) (*HistoryPage, error) {

	if in.ChildID == nil && in.GuardianID == nil {
		return nil, httperr.ErrBusiness("missing_history_owner")
	}

	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	visits, total, err := uc.repo.ListVisitHistory(ctx, domain.HistoryFilter{
		ChildID:    in.ChildID,
		GuardianID: in.GuardianID,
		ActiveOnly: in.ActiveOnly,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	return &HistoryPage{
		Visits: visits,
		Total:  total,
		Page:   page,
		Limit:  limit,
	}, nil
}

// ======================================================
// STATS
// ======================================================

type StatsInput struct {
	LocationID uint
	FromDate   string
	ToDate     string
}

type StatsResult struct {
	domain.Stats
	From time.Time
	To   time.Time
}

type VisitStats struct {
	repo  domain.Repository
	clock timezone.Clock
}

func NewVisitStats(repo domain.Repository, clock timezone.Clock) *VisitStats {
	return &VisitStats{repo: repo, clock: clock}
}

// Execute aggregates visits checked in between FromDate and ToDate
// inclusive, read as calendar dates in the location's timezone. Both
// default to today.
func (uc *VisitStats) Execute(
	ctx context.Context,
	in StatsInput,
) (*StatsResult, error) {

	location, err := uc.repo.GetLocation(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(location.Timezone)

	today := uc.clock.Now().In(loc)
	from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)
	if in.FromDate != "" {
		if from, err = time.ParseInLocation("2006-01-02", in.FromDate, loc); err != nil {
			return nil, httperr.ErrBusiness("invalid_date")
		}
	}

	lastDay := from
	if in.ToDate != "" {
		if lastDay, err = time.ParseInLocation("2006-01-02", in.ToDate, loc); err != nil {
			return nil, httperr.ErrBusiness("invalid_date")
		}
	}
	if lastDay.Before(from) {
		return nil, httperr.ErrBusiness("invalid_date_range")
	}
	to := lastDay.AddDate(0, 0, 1)

	stats, err := uc.repo.VisitStats(ctx, domain.StatsFilter{
		LocationID: location.ID,
		From:       from,
		To:         to,
	})
	if err != nil {
		return nil, err
	}

	return &StatsResult{Stats: stats, From: from, To: to}, nil
}
