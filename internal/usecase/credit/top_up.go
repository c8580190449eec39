package credit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/playpark/internal/audit"
	domain "github.com/BruksfildServices01/playpark/internal/domain/credit"
	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/logger"
	"github.com/BruksfildServices01/playpark/internal/models"
	"github.com/BruksfildServices01/playpark/internal/retry"
)

type TopUpInput struct {
	GuardianID uint
	LocationID uint
	Minutes    int
	ExpiryDate *time.Time
	ActorID    *uint
}

type TopUp struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	log   *zap.Logger
}

func NewTopUp(repo domain.Repository, audit *audit.Dispatcher, log *zap.Logger) *TopUp {
	return &TopUp{repo: repo, audit: audit, log: logger.OrNop(log)}
}

// Execute merges the minutes into the guardian's credit at the location,
// or creates it.
func (uc *TopUp) Execute(
	ctx context.Context,
	in TopUpInput,
) (*models.Credit, error) {

	if in.Minutes <= 0 {
		return nil, httperr.ErrBusiness("invalid_minutes")
	}

	if _, err := uc.repo.GetLocation(ctx, in.LocationID); err != nil {
		return nil, err
	}

	var c *models.Credit
	err := retry.Once(ctx, func(ctx context.Context) error {
		var err error
		c, err = uc.repo.UpsertTopUp(ctx, in.GuardianID, in.LocationID, in.Minutes, in.ExpiryDate)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info("credit topped up",
		zap.Uint("credit_id", c.ID),
		zap.Uint("guardian_id", c.GuardianID),
		zap.Uint("location_id", c.LocationID),
		zap.Int("minutes_added", in.Minutes),
		zap.Int("minutes_remaining", c.MinutesRemaining),
	)

	uc.audit.Dispatch(audit.Event{
		LocationID: &c.LocationID,
		UserID:     in.ActorID,
		Action:     audit.ActionCreditToppedUp,
		Entity:     "credit",
		EntityID:   &c.ID,
		Metadata: map[string]any{
			"minutes_added": in.Minutes,
			"expiry_date":   c.ExpiryDate,
		},
	})

	return c, nil
}

// ======================================================
// DEDUCT
// ======================================================

type Deduct struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	log   *zap.Logger
}

func NewDeduct(repo domain.Repository, audit *audit.Dispatcher, log *zap.Logger) *Deduct {
	return &Deduct{repo: repo, audit: audit, log: logger.OrNop(log)}
}

// Execute is the manual adjustment path; check-out deducts inside its own
// transaction. It never fails for over-deduction: the balance stops at zero.
func (uc *Deduct) Execute(
	ctx context.Context,
	creditID uint,
	minutes int,
	actorID *uint,
) (int, error) {

	if minutes < 0 {
		return 0, httperr.ErrBusiness("invalid_minutes")
	}

	c, err := uc.repo.GetCredit(ctx, creditID)
	if err != nil {
		return 0, err
	}

	var remaining int
	err = retry.Once(ctx, func(ctx context.Context) error {
		var err error
		remaining, err = uc.repo.DeductMinutes(ctx, c.ID, minutes)
		return err
	})
	if err != nil {
		return 0, err
	}

	uc.log.Info("credit deducted",
		zap.Uint("credit_id", c.ID),
		zap.Int("minutes_deducted", minutes),
		zap.Int("minutes_remaining", remaining),
	)

	uc.audit.Dispatch(audit.Event{
		LocationID: &c.LocationID,
		UserID:     actorID,
		Action:     audit.ActionCreditDeducted,
		Entity:     "credit",
		EntityID:   &c.ID,
		Metadata: map[string]any{
			"minutes_deducted":  minutes,
			"minutes_remaining": remaining,
		},
	})

	return remaining, nil
}
