package visit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/infra/memory"
)

func TestCheckOut_SettlesCredit(t *testing.T) {
	f := newFixture(t)
	credit := f.addCredit(60, nil)
	ctx := context.Background()

	v, err := f.checkIn.Execute(ctx, f.playTime(f.child.ID))
	require.NoError(t, err)

	f.clock.Advance(25*time.Minute + 40*time.Second)

	res, err := f.checkOut.Execute(ctx, v.ID, 7)
	require.NoError(t, err)

	require.NotNil(t, res.Visit.MinutesUsed)
	assert.Equal(t, 25, *res.Visit.MinutesUsed)
	assert.Equal(t, uint(7), *res.Visit.CheckOutBy)
	require.NotNil(t, res.CreditRemaining)
	assert.Equal(t, 35, *res.CreditRemaining)

	stored, _ := f.store.Credit(credit.ID)
	assert.Equal(t, 35, stored.MinutesRemaining)
	assert.Zero(t, f.openVisits(f.child.ID))
}

func TestCheckOut_ClampsAtZero(t *testing.T) {
	f := newFixture(t)
	credit := f.addCredit(10, nil)
	ctx := context.Background()

	v, err := f.checkIn.Execute(ctx, f.playTime(f.child.ID))
	require.NoError(t, err)

	f.clock.Advance(25 * time.Minute)

	res, err := f.checkOut.Execute(ctx, v.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 25, *res.Visit.MinutesUsed)
	assert.Equal(t, 0, *res.CreditRemaining)

	stored, _ := f.store.Credit(credit.ID)
	assert.Equal(t, 0, stored.MinutesRemaining)
}

func TestCheckOut_Twice(t *testing.T) {
	f := newFixture(t)
	credit := f.addCredit(60, nil)
	ctx := context.Background()

	v, err := f.checkIn.Execute(ctx, f.playTime(f.child.ID))
	require.NoError(t, err)

	f.clock.Advance(20 * time.Minute)
	_, err = f.checkOut.Execute(ctx, v.ID, 7)
	require.NoError(t, err)

	f.clock.Advance(30 * time.Minute)
	_, err = f.checkOut.Execute(ctx, v.ID, 8)
	assert.True(t, httperr.IsBusiness(err, "already_checked_out"))
	assert.True(t, httperr.Is(err, httperr.KindConflict))

	stored, _ := f.store.Visit(v.ID)
	assert.Equal(t, 20, *stored.MinutesUsed)
	assert.Equal(t, uint(7), *stored.CheckOutBy)

	c, _ := f.store.Credit(credit.ID)
	assert.Equal(t, 40, c.MinutesRemaining)
}

func TestCheckOut_MissingVisit(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkOut.Execute(context.Background(), 4242, 7)
	assert.True(t, httperr.IsBusiness(err, "visit_not_found"))
	assert.True(t, httperr.Is(err, httperr.KindNotFound))
}

func TestCheckOut_ServiceVisitLeavesCreditsAlone(t *testing.T) {
	f := newFixture(t)
	credit := f.addCredit(60, nil)
	ctx := context.Background()

	v, err := f.checkIn.Execute(ctx, CheckInInput{
		ChildID:    f.child.ID,
		LocationID: f.location.ID,
		CreditID:   &credit.ID,
		VisitType:  "service",
	})
	require.NoError(t, err)

	f.clock.Advance(45 * time.Minute)
	res, err := f.checkOut.Execute(ctx, v.ID, 7)
	require.NoError(t, err)
	assert.Nil(t, res.CreditRemaining)

	c, _ := f.store.Credit(credit.ID)
	assert.Equal(t, 60, c.MinutesRemaining)
}

func TestCheckOut_DeductionFailureRollsBackCheckout(t *testing.T) {
	f := newFixture(t)
	credit := f.addCredit(60, nil)
	ctx := context.Background()

	v, err := f.checkIn.Execute(ctx, f.playTime(f.child.ID))
	require.NoError(t, err)
	f.clock.Advance(15 * time.Minute)

	boom := errors.New("disk full")
	f.store.FailNext("DeductMinutes", boom)

	_, err = f.checkOut.Execute(ctx, v.ID, 7)
	assert.ErrorIs(t, err, boom)

	stored, _ := f.store.Visit(v.ID)
	assert.Nil(t, stored.CheckOutTime, "checkout must not survive a failed deduction")
	assert.Nil(t, stored.MinutesUsed)

	c, _ := f.store.Credit(credit.ID)
	assert.Equal(t, 60, c.MinutesRemaining)

	res, err := f.checkOut.Execute(ctx, v.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 45, *res.CreditRemaining)
}

func TestCheckOut_RetryDeductsOnce(t *testing.T) {
	f := newFixture(t)
	credit := f.addCredit(60, nil)
	ctx := context.Background()

	v, err := f.checkIn.Execute(ctx, f.playTime(f.child.ID))
	require.NoError(t, err)
	f.clock.Advance(15 * time.Minute)

	f.store.FailNext("DeductMinutes", memory.RetryableFault("lock timeout"))

	res, err := f.checkOut.Execute(ctx, v.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 45, *res.CreditRemaining)

	c, _ := f.store.Credit(credit.ID)
	assert.Equal(t, 45, c.MinutesRemaining)
}

func TestCheckOut_CheckInFreesZoneSlot(t *testing.T) {
	f := newFixture(t)
	f.zone.MaxCapacity = 1
	small := f.store.AddZone(f.zone)
	f.addCredit(600, nil)
	other := f.addChild("Mia Ruiz")
	ctx := context.Background()

	in := f.playTime(f.child.ID)
	in.ZoneID = &small.ID
	v, err := f.checkIn.Execute(ctx, in)
	require.NoError(t, err)

	in.ChildID = other.ID
	_, err = f.checkIn.Execute(ctx, in)
	require.True(t, httperr.IsBusiness(err, "zone_full"))

	_, err = f.checkOut.Execute(ctx, v.ID, 7)
	require.NoError(t, err)

	_, err = f.checkIn.Execute(ctx, in)
	assert.NoError(t, err)
}
