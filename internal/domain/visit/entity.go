package visit

import (
	"time"

	"github.com/BruksfildServices01/playpark/internal/models"
)

// ===============================
// Domain Actions
// ===============================

type OpenInput struct {
	ChildID    uint
	LocationID uint
	ZoneID     *uint
	SessionID  *uint
	CreditID   *uint
	Type       Type
	ActorID    uint
}

// Open builds a new active visit. Visits are only ever created here.
func Open(in OpenInput, now time.Time) *models.Visit {
	checkIn := now
	actor := in.ActorID

	return &models.Visit{
		ChildID:     in.ChildID,
		LocationID:  in.LocationID,
		ZoneID:      in.ZoneID,
		SessionID:   in.SessionID,
		CreditID:    in.CreditID,
		VisitType:   string(in.Type),
		CheckInTime: &checkIn,
		CheckInBy:   &actor,
	}
}

// Close stamps the check-out and computes minutes_used in whole minutes.
// A visit without a check-in time is closed with minutes_used left nil.
func Close(v *models.Visit, actorID uint, now time.Time) error {
	if err := CanClose(StatusOf(v)); err != nil {
		return err
	}

	checkOut := now
	actor := actorID
	v.CheckOutTime = &checkOut
	v.CheckOutBy = &actor

	if v.CheckInTime != nil {
		minutes := MinutesBetween(*v.CheckInTime, checkOut)
		v.MinutesUsed = &minutes
	}

	return nil
}

// MinutesBetween floors the elapsed seconds to whole minutes and never
// returns a negative value.
func MinutesBetween(from, to time.Time) int {
	seconds := int64(to.Sub(from) / time.Second)
	if seconds <= 0 {
		return 0
	}
	return int(seconds / 60)
}

// NeedsSettlement reports whether closing v must deduct from its credit.
func NeedsSettlement(v *models.Visit) bool {
	return Type(v.VisitType) == TypePlayTime &&
		v.CreditID != nil &&
		v.MinutesUsed != nil
}
