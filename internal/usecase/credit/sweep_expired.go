package credit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/playpark/internal/audit"
	domain "github.com/BruksfildServices01/playpark/internal/domain/credit"
	"github.com/BruksfildServices01/playpark/internal/logger"
	"github.com/BruksfildServices01/playpark/internal/timezone"
)

const DefaultSweepBatchSize = 500

type SweepInput struct {
	// AsOf defaults to today in timezone.DefaultTimezone.
	AsOf    *time.Time
	ActorID *uint
}

type SweepResult struct {
	AsOf    time.Time
	Zeroed  int
	Skipped int
}

type SweepExpired struct {
	repo      domain.Repository
	audit     *audit.Dispatcher
	clock     timezone.Clock
	log       *zap.Logger
	batchSize int
}

func NewSweepExpired(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
	log *zap.Logger,
	batchSize int,
) *SweepExpired {
	if batchSize <= 0 {
		batchSize = DefaultSweepBatchSize
	}
	return &SweepExpired{
		repo:      repo,
		audit:     audit,
		clock:     clock,
		log:       logger.OrNop(log),
		batchSize: batchSize,
	}
}

// Execute zeroes every credit that expired before AsOf and still holds
// minutes. Rows are read in id-ordered batches and each is zeroed with a
// conditional update, so running it again on the same date changes nothing.
// A row that cannot be processed is logged and counted as skipped.
func (uc *SweepExpired) Execute(
	ctx context.Context,
	in SweepInput,
) (*SweepResult, error) {

	asOf := timezone.DateIn(uc.clock.Now(), timezone.DefaultTimezone)
	if in.AsOf != nil {
		asOf = *in.AsOf
	}

	res := &SweepResult{AsOf: asOf}
	var afterID uint

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		batch, err := uc.repo.ListSweepCandidates(ctx, asOf, afterID, uc.batchSize)
		if err != nil {
			return res, err
		}

		for _, c := range batch {
			afterID = c.ID

			if domain.IsMalformed(c) {
				res.Skipped++
				uc.log.Warn("sweep skipped malformed credit",
					zap.Uint("credit_id", c.ID),
					zap.Int("minutes_remaining", c.MinutesRemaining),
				)
				continue
			}

			changed, err := uc.repo.ZeroExpiredCredit(ctx, c.ID, asOf)
			if err != nil {
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				res.Skipped++
				uc.log.Warn("sweep skipped credit",
					zap.Uint("credit_id", c.ID),
					zap.Error(err),
				)
				continue
			}
			if changed {
				res.Zeroed++
			}
		}

		if len(batch) < uc.batchSize {
			break
		}
	}

	uc.log.Info("expired credits swept",
		zap.String("as_of", asOf.Format("2006-01-02")),
		zap.Int("zeroed", res.Zeroed),
		zap.Int("skipped", res.Skipped),
	)

	uc.audit.Dispatch(audit.Event{
		UserID: in.ActorID,
		Action: audit.ActionCreditsSwept,
		Entity: "credit",
		Metadata: map[string]any{
			"as_of":   asOf.Format("2006-01-02"),
			"zeroed":  res.Zeroed,
			"skipped": res.Skipped,
		},
	})

	return res, nil
}
