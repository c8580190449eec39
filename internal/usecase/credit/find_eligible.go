package credit

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/playpark/internal/domain/credit"
	"github.com/BruksfildServices01/playpark/internal/models"
	"github.com/BruksfildServices01/playpark/internal/timezone"
)

type FindEligibleInput struct {
	GuardianID uint
	LocationID uint

	// AsOf defaults to today in the location's timezone.
	AsOf *time.Time
}

type FindEligibleCredit struct {
	repo  domain.Repository
	clock timezone.Clock
}

func NewFindEligibleCredit(repo domain.Repository, clock timezone.Clock) *FindEligibleCredit {
	return &FindEligibleCredit{repo: repo, clock: clock}
}

// Execute returns nil, nil when the guardian has no eligible credit.
func (uc *FindEligibleCredit) Execute(
	ctx context.Context,
	in FindEligibleInput,
) (*models.Credit, error) {

	location, err := uc.repo.GetLocation(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}

	asOf := timezone.DateIn(uc.clock.Now(), location.Timezone)
	if in.AsOf != nil {
		asOf = *in.AsOf
	}

	candidates, err := uc.repo.ListEligibleCredits(ctx, in.GuardianID, location.ID, asOf)
	if err != nil {
		return nil, err
	}

	return domain.SelectEligible(candidates, asOf), nil
}
