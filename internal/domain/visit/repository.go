package visit

import (
	"context"
	"time"

	"github.com/BruksfildServices01/playpark/internal/domain/capacity"
	"github.com/BruksfildServices01/playpark/internal/models"
)

// ===============================
// Query filters
// ===============================

type ActiveFilter struct {
	LocationID uint
	ZoneID     *uint
}

type HistoryFilter struct {
	ChildID    *uint
	GuardianID *uint
	ActiveOnly bool
	Limit      int
	Offset     int
}

type StatsFilter struct {
	LocationID uint
	From       time.Time
	To         time.Time
}

type Stats struct {
	Total                  int64
	Active                 int64
	ByType                 map[string]int64
	AverageDurationMinutes int
}

// ===============================
// Repository
// ===============================

// Repository methods return httperr not-found errors carrying the entity
// code (child_not_found, visit_not_found, ...) when a row is missing.
type Repository interface {
	// WithTx runs fn in one transaction. fn receives a repository bound to
	// that transaction; returning an error rolls everything back.
	WithTx(ctx context.Context, fn func(tx Repository) error) error

	// -------- Directory (locked reads inside WithTx) --------
	LockChild(ctx context.Context, childID uint) (*models.Child, error)
	GetLocation(ctx context.Context, id uint) (*models.Location, error)
	LockZone(ctx context.Context, id uint) (*models.Zone, error)
	LockSession(ctx context.Context, id uint) (*models.Session, error)

	// -------- Capacity --------
	capacity.Counter

	// -------- Credit --------
	GetCredit(ctx context.Context, id uint) (*models.Credit, error)
	ListEligibleCredits(
		ctx context.Context,
		guardianID uint,
		locationID uint,
		asOf time.Time,
	) ([]models.Credit, error)
	DeductMinutes(ctx context.Context, creditID uint, minutes int) (int, error)

	// -------- Visit (state change) --------
	// FindActiveVisit returns nil, nil when the child has no open visit.
	FindActiveVisit(ctx context.Context, childID uint) (*models.Visit, error)
	CreateVisit(ctx context.Context, v *models.Visit) error
	LockVisit(ctx context.Context, id uint) (*models.Visit, error)
	UpdateVisit(ctx context.Context, v *models.Visit) error

	// -------- Visit (reporting) --------
	ListActiveVisits(ctx context.Context, f ActiveFilter) ([]models.Visit, error)
	ListVisitHistory(ctx context.Context, f HistoryFilter) ([]models.Visit, int64, error)
	VisitStats(ctx context.Context, f StatsFilter) (Stats, error)
}
