package visit

import (
	"sync"
	"testing"
	"time"

	"github.com/BruksfildServices01/playpark/internal/infra/memory"
	"github.com/BruksfildServices01/playpark/internal/models"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store *memory.Store
	repo  *memory.VisitRepository
	clock *testClock

	guardian models.User
	child    models.Child
	location models.Location
	zone     models.Zone

	checkIn  *CheckIn
	checkOut *CheckOut
}

// 15:00 UTC is 10:00 in Bogota, same calendar day.
var fixtureNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func uptr(v uint) *uint { return &v }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	repo := memory.NewVisitRepository(store)
	clock := &testClock{now: fixtureNow}

	f := &fixture{
		store: store,
		repo:  repo,
		clock: clock,
	}

	f.guardian = store.AddUser(models.User{FullName: "Ana Ruiz", Email: "ana@example.com", Role: models.RoleParent, IsActive: true})
	f.child = store.AddChild(models.Child{GuardianID: f.guardian.ID, FullName: "Leo Ruiz", IsActive: true})
	f.location = store.AddLocation(models.Location{Name: "Centro", Timezone: "America/Bogota", IsActive: true})
	f.zone = store.AddZone(models.Zone{LocationID: f.location.ID, Name: "Ball pit", MaxCapacity: 10, IsActive: true})

	f.checkIn = NewCheckIn(repo, nil, clock, nil)
	f.checkOut = NewCheckOut(repo, nil, clock, nil)
	return f
}

func (f *fixture) addChild(name string) models.Child {
	return f.store.AddChild(models.Child{GuardianID: f.guardian.ID, FullName: name, IsActive: true})
}

func (f *fixture) addCredit(minutes int, expiry *time.Time) models.Credit {
	return f.store.AddCredit(models.Credit{
		GuardianID:       f.guardian.ID,
		LocationID:       f.location.ID,
		MinutesRemaining: minutes,
		ExpiryDate:       expiry,
	})
}

func (f *fixture) playTime(childID uint) CheckInInput {
	return CheckInInput{
		ChildID:    childID,
		LocationID: f.location.ID,
		ZoneID:     &f.zone.ID,
		VisitType:  "play_time",
		ActorID:    99,
	}
}

func (f *fixture) openVisits(childID uint) int {
	n := 0
	for _, v := range f.store.Visits() {
		if v.ChildID == childID && v.CheckOutTime == nil {
			n++
		}
	}
	return n
}
