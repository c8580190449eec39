package visit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/infra/memory"
	"github.com/BruksfildServices01/playpark/internal/models"
)

func TestCheckIn_PlayTimeThenDuplicate(t *testing.T) {
	f := newFixture(t)
	credit := f.addCredit(60, day(2026, 4, 1))
	ctx := context.Background()

	v, err := f.checkIn.Execute(ctx, f.playTime(f.child.ID))
	require.NoError(t, err)

	require.NotNil(t, v.CreditID)
	assert.Equal(t, credit.ID, *v.CreditID)
	assert.Equal(t, fixtureNow, *v.CheckInTime)
	assert.Nil(t, v.CheckOutTime)
	assert.Nil(t, v.MinutesUsed)
	assert.Equal(t, uint(99), *v.CheckInBy)

	_, err = f.checkIn.Execute(ctx, f.playTime(f.child.ID))
	assert.True(t, httperr.IsBusiness(err, "active_visit_exists"))
	assert.True(t, httperr.Is(err, httperr.KindConflict))
	assert.Equal(t, 1, f.openVisits(f.child.ID))
}

func TestCheckIn_ZoneFull(t *testing.T) {
	f := newFixture(t)
	small := f.store.AddZone(models.Zone{LocationID: f.location.ID, Name: "Baby corner", MaxCapacity: 1, IsActive: true})
	f.addCredit(600, nil)
	other := f.addChild("Mia Ruiz")
	ctx := context.Background()

	in := f.playTime(f.child.ID)
	in.ZoneID = &small.ID
	_, err := f.checkIn.Execute(ctx, in)
	require.NoError(t, err)

	in = f.playTime(other.ID)
	in.ZoneID = &small.ID
	_, err = f.checkIn.Execute(ctx, in)
	assert.True(t, httperr.IsBusiness(err, "zone_full"))
	assert.True(t, httperr.Is(err, httperr.KindCapacity))
}

func TestCheckIn_ZeroCapacityZoneAdmitsNobody(t *testing.T) {
	f := newFixture(t)
	closed := f.store.AddZone(models.Zone{LocationID: f.location.ID, Name: "Closed", MaxCapacity: 0, IsActive: true})

	_, err := f.checkIn.Execute(context.Background(), CheckInInput{
		ChildID:    f.child.ID,
		LocationID: f.location.ID,
		ZoneID:     &closed.ID,
		VisitType:  "service",
	})
	assert.True(t, httperr.IsBusiness(err, "zone_full"))
}

func TestCheckIn_SessionUsesOwnCapacity(t *testing.T) {
	f := newFixture(t)
	session := f.store.AddSession(models.Session{
		LocationID:  f.location.ID,
		ZoneID:      &f.zone.ID,
		MaxCapacity: 1,
		StartTime:   fixtureNow,
		EndTime:     fixtureNow.Add(45 * time.Minute),
	})
	other := f.addChild("Mia Ruiz")
	ctx := context.Background()

	in := CheckInInput{ChildID: f.child.ID, LocationID: f.location.ID, ZoneID: &f.zone.ID, SessionID: &session.ID, VisitType: "service"}
	_, err := f.checkIn.Execute(ctx, in)
	require.NoError(t, err)

	in.ChildID = other.ID
	_, err = f.checkIn.Execute(ctx, in)
	assert.True(t, httperr.IsBusiness(err, "session_full"), "zone has room but the session does not")
}

func TestCheckIn_NotFound(t *testing.T) {
	f := newFixture(t)
	f.addCredit(60, nil)

	otherLocation := f.store.AddLocation(models.Location{Name: "Norte", Timezone: "America/Bogota", IsActive: true})
	foreignZone := f.store.AddZone(models.Zone{LocationID: otherLocation.ID, Name: "Slides", MaxCapacity: 5, IsActive: true})
	inactiveZone := f.store.AddZone(models.Zone{LocationID: f.location.ID, Name: "Old", MaxCapacity: 5, IsActive: false})
	canceled := f.store.AddSession(models.Session{LocationID: f.location.ID, MaxCapacity: 5, IsCanceled: true})
	foreignSession := f.store.AddSession(models.Session{LocationID: otherLocation.ID, MaxCapacity: 5})
	inactiveChild := f.store.AddChild(models.Child{GuardianID: f.guardian.ID, FullName: "Gone", IsActive: false})

	cases := []struct {
		name   string
		mutate func(in *CheckInInput)
		code   string
	}{
		{"missing child", func(in *CheckInInput) { in.ChildID = 9999 }, "child_not_found"},
		{"inactive child", func(in *CheckInInput) { in.ChildID = inactiveChild.ID }, "child_not_found"},
		{"missing location", func(in *CheckInInput) { in.LocationID = 9999 }, "location_not_found"},
		{"missing zone", func(in *CheckInInput) { in.ZoneID = uptr(9999) }, "zone_not_found"},
		{"zone of another location", func(in *CheckInInput) { in.ZoneID = &foreignZone.ID }, "zone_not_found"},
		{"inactive zone", func(in *CheckInInput) { in.ZoneID = &inactiveZone.ID }, "zone_not_found"},
		{"missing session", func(in *CheckInInput) { in.SessionID = uptr(9999) }, "session_not_found"},
		{"canceled session", func(in *CheckInInput) { in.SessionID = &canceled.ID }, "session_not_found"},
		{"session of another location", func(in *CheckInInput) { in.SessionID = &foreignSession.ID }, "session_not_found"},
		{"missing credit", func(in *CheckInInput) { in.CreditID = uptr(9999) }, "credit_not_found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := f.playTime(f.child.ID)
			tc.mutate(&in)

			_, err := f.checkIn.Execute(context.Background(), in)
			assert.True(t, httperr.IsBusiness(err, tc.code), "got %v", err)
			assert.True(t, httperr.Is(err, httperr.KindNotFound))
			assert.Empty(t, f.store.Visits())
		})
	}
}

func TestCheckIn_PaymentRequired(t *testing.T) {
	f := newFixture(t)
	f.addCredit(30, day(2026, 3, 9))
	f.addCredit(0, nil)

	_, err := f.checkIn.Execute(context.Background(), f.playTime(f.child.ID))
	assert.True(t, httperr.IsBusiness(err, "no_eligible_credit"))
	assert.True(t, httperr.Is(err, httperr.KindPaymentRequired))
}

func TestCheckIn_CreditExpiringTodayIsEligible(t *testing.T) {
	f := newFixture(t)
	c := f.addCredit(30, day(2026, 3, 10))

	v, err := f.checkIn.Execute(context.Background(), f.playTime(f.child.ID))
	require.NoError(t, err)
	assert.Equal(t, c.ID, *v.CreditID)
}

func TestCheckIn_PicksEarliestExpiry(t *testing.T) {
	f := newFixture(t)
	f.addCredit(30, nil)
	f.addCredit(30, day(2026, 6, 1))
	early := f.addCredit(30, day(2026, 4, 1))

	v, err := f.checkIn.Execute(context.Background(), f.playTime(f.child.ID))
	require.NoError(t, err)
	assert.Equal(t, early.ID, *v.CreditID)
}

func TestCheckIn_ExplicitCredit(t *testing.T) {
	f := newFixture(t)
	own := f.addCredit(5, nil)

	stranger := f.store.AddUser(models.User{FullName: "Someone Else", Email: "x@example.com", Role: models.RoleParent, IsActive: true})
	foreign := f.store.AddCredit(models.Credit{GuardianID: stranger.ID, LocationID: f.location.ID, MinutesRemaining: 500})

	in := f.playTime(f.child.ID)
	in.CreditID = &foreign.ID
	_, err := f.checkIn.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, "credit_not_found"))

	in.CreditID = &own.ID
	v, err := f.checkIn.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, own.ID, *v.CreditID)
}

func TestCheckIn_ServiceNeedsNoCredit(t *testing.T) {
	f := newFixture(t)

	v, err := f.checkIn.Execute(context.Background(), CheckInInput{
		ChildID:    f.child.ID,
		LocationID: f.location.ID,
		VisitType:  "service",
		ActorID:    1,
	})
	require.NoError(t, err)
	assert.Nil(t, v.CreditID)
	assert.Nil(t, v.ZoneID)
}

func TestCheckIn_InvalidType(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkIn.Execute(context.Background(), CheckInInput{
		ChildID:    f.child.ID,
		LocationID: f.location.ID,
		VisitType:  "party",
	})
	assert.True(t, httperr.IsBusiness(err, "invalid_visit_type"))
}

func TestCheckIn_RetriesRaceGuardOnce(t *testing.T) {
	f := newFixture(t)
	f.addCredit(60, nil)
	f.store.FailNext("CreateVisit", memory.RetryableFault("serialization failure"))

	v, err := f.checkIn.Execute(context.Background(), f.playTime(f.child.ID))
	require.NoError(t, err)
	assert.NotZero(t, v.ID)
	assert.Len(t, f.store.Visits(), 1)
}

func TestCheckIn_SecondRaceGuardFailureIsTransient(t *testing.T) {
	f := newFixture(t)
	f.addCredit(60, nil)
	f.store.FailNext("CreateVisit",
		memory.RetryableFault("deadlock"),
		memory.RetryableFault("deadlock"),
	)

	_, err := f.checkIn.Execute(context.Background(), f.playTime(f.child.ID))
	assert.True(t, httperr.IsBusiness(err, "storage_contention"))
	assert.True(t, httperr.Is(err, httperr.KindTransient))
	assert.Empty(t, f.store.Visits())
}

func TestCheckIn_StorageErrorIsNotRetried(t *testing.T) {
	f := newFixture(t)
	f.addCredit(60, nil)
	boom := errors.New("connection reset")
	f.store.FailNext("CreateVisit", boom)

	_, err := f.checkIn.Execute(context.Background(), f.playTime(f.child.ID))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, f.store.Visits())
}

func TestCheckIn_ConcurrentSameChild(t *testing.T) {
	f := newFixture(t)
	f.addCredit(600, nil)

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.checkIn.Execute(context.Background(), f.playTime(f.child.ID))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case httperr.IsBusiness(err, "active_visit_exists"):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, 1, f.openVisits(f.child.ID))
}

func TestCheckIn_ConcurrentNearFullZone(t *testing.T) {
	f := newFixture(t)
	zone := f.store.AddZone(models.Zone{LocationID: f.location.ID, Name: "Trampolines", MaxCapacity: 3, IsActive: true})

	const kids = 12
	children := make([]models.Child, kids)
	for i := range children {
		children[i] = f.addChild(fmt.Sprintf("Kid %d", i))
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
		rejected int
	)
	for _, c := range children {
		wg.Add(1)
		go func(childID uint) {
			defer wg.Done()
			_, err := f.checkIn.Execute(context.Background(), CheckInInput{
				ChildID:    childID,
				LocationID: f.location.ID,
				ZoneID:     &zone.ID,
				VisitType:  "service",
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case httperr.IsBusiness(err, "zone_full"):
				rejected++
			}
		}(c.ID)
	}
	wg.Wait()

	assert.Equal(t, 3, admitted)
	assert.Equal(t, kids-3, rejected)

	open := 0
	for _, v := range f.store.Visits() {
		if v.ZoneID != nil && *v.ZoneID == zone.ID && v.CheckOutTime == nil {
			open++
		}
	}
	assert.Equal(t, 3, open)
}
