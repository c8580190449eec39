package visit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/playpark/internal/audit"
	"github.com/BruksfildServices01/playpark/internal/domain/capacity"
	"github.com/BruksfildServices01/playpark/internal/domain/credit"
	domain "github.com/BruksfildServices01/playpark/internal/domain/visit"
	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/logger"
	"github.com/BruksfildServices01/playpark/internal/models"
	"github.com/BruksfildServices01/playpark/internal/retry"
	"github.com/BruksfildServices01/playpark/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CheckInInput struct {
	ChildID    uint
	LocationID uint
	ZoneID     *uint
	SessionID  *uint
	CreditID   *uint
	VisitType  string
	ActorID    uint
}

// ======================================================
// USE CASE
// ======================================================

type CheckIn struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock timezone.Clock
	log   *zap.Logger
}

func NewCheckIn(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
	log *zap.Logger,
) *CheckIn {
	return &CheckIn{
		repo:  repo,
		audit: audit,
		clock: clock,
		log:   logger.OrNop(log),
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute admits the child. The duplicate check, the capacity checks and
// the insert run in one transaction, retried once on a race-guard error.
func (uc *CheckIn) Execute(
	ctx context.Context,
	in CheckInInput,
) (*models.Visit, error) {

	typ, err := domain.ParseType(in.VisitType)
	if err != nil {
		return nil, err
	}

	var created *models.Visit
	err = retry.Once(ctx, func(ctx context.Context) error {
		return uc.repo.WithTx(ctx, func(tx domain.Repository) error {
			v, err := uc.admit(ctx, tx, in, typ, uc.clock.Now())
			created = v
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info("visit checked in",
		zap.Uint("visit_id", created.ID),
		zap.Uint("child_id", created.ChildID),
		zap.Uint("location_id", created.LocationID),
		zap.String("visit_type", created.VisitType),
	)

	uc.audit.Dispatch(audit.Event{
		LocationID: &created.LocationID,
		UserID:     &in.ActorID,
		Action:     audit.ActionVisitCheckedIn,
		Entity:     "visit",
		EntityID:   &created.ID,
		Metadata: map[string]any{
			"child_id":   created.ChildID,
			"zone_id":    created.ZoneID,
			"session_id": created.SessionID,
			"credit_id":  created.CreditID,
		},
	})

	return created, nil
}

func (uc *CheckIn) admit(
	ctx context.Context,
	tx domain.Repository,
	in CheckInInput,
	typ domain.Type,
	now time.Time,
) (*models.Visit, error) {

	// --------------------------------------------------
	// 1️⃣ Child + location
	// --------------------------------------------------
	child, err := tx.LockChild(ctx, in.ChildID)
	if err != nil {
		return nil, err
	}
	if !child.IsActive {
		return nil, httperr.ErrNotFound("child_not_found")
	}

	location, err := tx.GetLocation(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}
	if !location.IsActive {
		return nil, httperr.ErrNotFound("location_not_found")
	}

	// --------------------------------------------------
	// 2️⃣ No duplicate active visit
	// --------------------------------------------------
	active, err := tx.FindActiveVisit(ctx, child.ID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, httperr.ErrConflict("active_visit_exists")
	}

	// --------------------------------------------------
	// 3️⃣ Zone capacity
	// --------------------------------------------------
	if in.ZoneID != nil {
		zone, err := tx.LockZone(ctx, *in.ZoneID)
		if err != nil {
			return nil, err
		}
		if !zone.IsActive || zone.LocationID != location.ID {
			return nil, httperr.ErrNotFound("zone_not_found")
		}

		open, err := tx.CountOpenVisitsInZone(ctx, zone.ID)
		if err != nil {
			return nil, err
		}
		if !capacity.HasRoom(open, zone.MaxCapacity) {
			return nil, httperr.ErrCapacity("zone_full")
		}
	}

	// --------------------------------------------------
	// 4️⃣ Session capacity (the session's own maximum)
	// --------------------------------------------------
	if in.SessionID != nil {
		session, err := tx.LockSession(ctx, *in.SessionID)
		if err != nil {
			return nil, err
		}
		if session.IsCanceled || session.LocationID != location.ID {
			return nil, httperr.ErrNotFound("session_not_found")
		}

		open, err := tx.CountOpenVisitsInSession(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		if !capacity.HasRoom(open, session.MaxCapacity) {
			return nil, httperr.ErrCapacity("session_full")
		}
	}

	// --------------------------------------------------
	// 5️⃣ Credit
	// --------------------------------------------------
	creditID, err := uc.resolveCredit(ctx, tx, in, typ, child, location, now)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 6️⃣ Persist
	// --------------------------------------------------
	v := domain.Open(domain.OpenInput{
		ChildID:    child.ID,
		LocationID: location.ID,
		ZoneID:     in.ZoneID,
		SessionID:  in.SessionID,
		CreditID:   creditID,
		Type:       typ,
		ActorID:    in.ActorID,
	}, now)

	if err := tx.CreateVisit(ctx, v); err != nil {
		return nil, err
	}

	return v, nil
}

// resolveCredit validates an explicit credit, or picks one for play_time.
func (uc *CheckIn) resolveCredit(
	ctx context.Context,
	tx domain.Repository,
	in CheckInInput,
	typ domain.Type,
	child *models.Child,
	location *models.Location,
	now time.Time,
) (*uint, error) {

	if in.CreditID != nil {
		c, err := tx.GetCredit(ctx, *in.CreditID)
		if err != nil {
			return nil, err
		}
		if c.GuardianID != child.GuardianID || c.LocationID != location.ID {
			return nil, httperr.ErrNotFound("credit_not_found")
		}
		return &c.ID, nil
	}

	if typ != domain.TypePlayTime {
		return nil, nil
	}

	asOf := timezone.DateIn(now, location.Timezone)
	candidates, err := tx.ListEligibleCredits(ctx, child.GuardianID, location.ID, asOf)
	if err != nil {
		return nil, err
	}

	picked := credit.SelectEligible(candidates, asOf)
	if picked == nil {
		return nil, httperr.ErrPaymentRequired("no_eligible_credit")
	}
	return &picked.ID, nil
}
