package visit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/models"
)

func TestListActiveVisits(t *testing.T) {
	f := newFixture(t)
	f.addCredit(600, nil)
	other := f.addChild("Mia Ruiz")
	slides := f.store.AddZone(models.Zone{LocationID: f.location.ID, Name: "Slides", MaxCapacity: 5, IsActive: true})
	ctx := context.Background()

	_, err := f.checkIn.Execute(ctx, f.playTime(f.child.ID))
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)
	in := f.playTime(other.ID)
	in.ZoneID = &slides.ID
	_, err = f.checkIn.Execute(ctx, in)
	require.NoError(t, err)

	f.clock.Advance(5 * time.Minute)

	uc := NewListActiveVisits(f.repo, f.clock)

	all, err := uc.Execute(ctx, f.location.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, f.child.ID, all[0].Visit.ChildID, "oldest check-in first")
	assert.Equal(t, 15, all[0].CurrentDurationMinutes)
	assert.Equal(t, 5, all[1].CurrentDurationMinutes)
	require.NotNil(t, all[0].Visit.Child)
	assert.Equal(t, "Leo Ruiz", all[0].Visit.Child.FullName)

	onlySlides, err := uc.Execute(ctx, f.location.ID, &slides.ID)
	require.NoError(t, err)
	require.Len(t, onlySlides, 1)
	assert.Equal(t, other.ID, onlySlides[0].Visit.ChildID)

	_, err = uc.Execute(ctx, 9999, nil)
	assert.True(t, httperr.IsBusiness(err, "location_not_found"))
}

func TestVisitHistory(t *testing.T) {
	f := newFixture(t)
	f.addCredit(6000, nil)
	sibling := f.addChild("Mia Ruiz")
	ctx := context.Background()

	var lastID uint
	for i := 0; i < 3; i++ {
		v, err := f.checkIn.Execute(ctx, f.playTime(f.child.ID))
		require.NoError(t, err)
		f.clock.Advance(30 * time.Minute)
		_, err = f.checkOut.Execute(ctx, v.ID, 1)
		require.NoError(t, err)
		f.clock.Advance(time.Hour)
	}
	v, err := f.checkIn.Execute(ctx, f.playTime(sibling.ID))
	require.NoError(t, err)
	lastID = v.ID

	uc := NewVisitHistory(f.repo)

	byChild, err := uc.Execute(ctx, HistoryInput{ChildID: &f.child.ID, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), byChild.Total)
	assert.Len(t, byChild.Visits, 2)

	second, err := uc.Execute(ctx, HistoryInput{ChildID: &f.child.ID, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, second.Visits, 1)

	byGuardian, err := uc.Execute(ctx, HistoryInput{GuardianID: &f.guardian.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(4), byGuardian.Total)
	assert.Equal(t, lastID, byGuardian.Visits[0].ID, "newest first")
	assert.Equal(t, DefaultPageSize, byGuardian.Limit)

	activeOnly, err := uc.Execute(ctx, HistoryInput{GuardianID: &f.guardian.ID, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, activeOnly.Visits, 1)
	assert.Equal(t, sibling.ID, activeOnly.Visits[0].ChildID)

	capped, err := uc.Execute(ctx, HistoryInput{GuardianID: &f.guardian.ID, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, capped.Limit)

	_, err = uc.Execute(ctx, HistoryInput{})
	assert.True(t, httperr.IsBusiness(err, "missing_history_owner"))
}

func TestVisitStats(t *testing.T) {
	f := newFixture(t)
	f.addCredit(6000, nil)
	other := f.addChild("Mia Ruiz")
	ctx := context.Background()

	v1, err := f.checkIn.Execute(ctx, f.playTime(f.child.ID))
	require.NoError(t, err)
	f.clock.Advance(20 * time.Minute)
	_, err = f.checkOut.Execute(ctx, v1.ID, 1)
	require.NoError(t, err)

	v2, err := f.checkIn.Execute(ctx, f.playTime(f.child.ID))
	require.NoError(t, err)
	f.clock.Advance(45 * time.Minute)
	_, err = f.checkOut.Execute(ctx, v2.ID, 1)
	require.NoError(t, err)

	_, err = f.checkIn.Execute(ctx, CheckInInput{ChildID: other.ID, LocationID: f.location.ID, VisitType: "service"})
	require.NoError(t, err)

	// Yesterday, outside the default range.
	yesterday := fixtureNow.Add(-24 * time.Hour)
	f.store.AddVisit(models.Visit{ChildID: other.ID, LocationID: f.location.ID, VisitType: "play_time", CheckInTime: &yesterday, CheckOutTime: &yesterday})

	uc := NewVisitStats(f.repo, f.clock)

	today, err := uc.Execute(ctx, StatsInput{LocationID: f.location.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), today.Total)
	assert.Equal(t, int64(1), today.Active)
	assert.Equal(t, int64(2), today.ByType["play_time"])
	assert.Equal(t, int64(1), today.ByType["service"])
	assert.Equal(t, 33, today.AverageDurationMinutes)

	both, err := uc.Execute(ctx, StatsInput{LocationID: f.location.ID, FromDate: "2026-03-09", ToDate: "2026-03-10"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), both.Total)

	_, err = uc.Execute(ctx, StatsInput{LocationID: f.location.ID, FromDate: "10/03/2026"})
	assert.True(t, httperr.IsBusiness(err, "invalid_date"))

	_, err = uc.Execute(ctx, StatsInput{LocationID: f.location.ID, FromDate: "2026-03-10", ToDate: "2026-03-01"})
	assert.True(t, httperr.IsBusiness(err, "invalid_date_range"))
}
