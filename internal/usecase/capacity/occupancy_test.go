package capacity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/playpark/internal/domain/capacity"
	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/infra/memory"
	"github.com/BruksfildServices01/playpark/internal/models"
)

func TestGetOccupancy(t *testing.T) {
	store := memory.NewStore()
	location := store.AddLocation(models.Location{Name: "Centro", IsActive: true})
	zone := store.AddZone(models.Zone{LocationID: location.ID, Name: "Ball pit", MaxCapacity: 3, IsActive: true})
	session := store.AddSession(models.Session{LocationID: location.ID, ZoneID: &zone.ID, MaxCapacity: 1})

	now := time.Now()
	store.AddVisit(models.Visit{ChildID: 1, LocationID: location.ID, ZoneID: &zone.ID, SessionID: &session.ID, CheckInTime: &now})
	store.AddVisit(models.Visit{ChildID: 2, LocationID: location.ID, ZoneID: &zone.ID, CheckInTime: &now})
	store.AddVisit(models.Visit{ChildID: 3, LocationID: location.ID, ZoneID: &zone.ID, CheckInTime: &now, CheckOutTime: &now})

	uc := NewGetOccupancy(memory.NewCapacityRepository(store))
	ctx := context.Background()

	z, err := uc.Execute(ctx, domain.TargetZone, zone.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, z.Current, "closed visits do not count")
	assert.Equal(t, 3, z.MaxCapacity)
	assert.Equal(t, location.ID, z.LocationID)
	assert.True(t, z.HasRoom())

	s, err := uc.Execute(ctx, domain.TargetSession, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Current)
	assert.Equal(t, 1, s.MaxCapacity)
	assert.False(t, s.HasRoom())

	ok, err := uc.HasRoom(ctx, domain.TargetSession, session.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = uc.Execute(ctx, domain.TargetZone, 9999)
	assert.True(t, httperr.IsBusiness(err, "zone_not_found"))

	_, err = uc.Execute(ctx, domain.TargetSession, 9999)
	assert.True(t, httperr.IsBusiness(err, "session_not_found"))

	_, err = uc.Execute(ctx, "room", zone.ID)
	assert.True(t, httperr.IsBusiness(err, "invalid_capacity_target"))
}
