package capacity

import (
	"context"

	"github.com/BruksfildServices01/playpark/internal/models"
)

// ===============================
// Targets
// ===============================

type TargetKind string

const (
	TargetZone    TargetKind = "zone"
	TargetSession TargetKind = "session"
)

// Occupancy is always derived from open visit rows, never stored.
type Occupancy struct {
	Kind        TargetKind
	ID          uint
	LocationID  uint
	Current     int
	MaxCapacity int
}

func (o Occupancy) HasRoom() bool {
	return HasRoom(o.Current, o.MaxCapacity)
}

func (o Occupancy) Available() int {
	if o.Current >= o.MaxCapacity {
		return 0
	}
	return o.MaxCapacity - o.Current
}

// HasRoom reports whether one more visit fits. A maximum of zero admits
// nobody.
func HasRoom(current, max int) bool {
	return current < max
}

// ===============================
// Ports
// ===============================

// Counter counts visits whose check_out_time is still null.
type Counter interface {
	CountOpenVisitsInZone(ctx context.Context, zoneID uint) (int, error)
	CountOpenVisitsInSession(ctx context.Context, sessionID uint) (int, error)
}

type Repository interface {
	Counter

	GetZone(ctx context.Context, id uint) (*models.Zone, error)
	GetSession(ctx context.Context, id uint) (*models.Session, error)
}
