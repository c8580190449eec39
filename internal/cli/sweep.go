package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/playpark/internal/audit"
	infraRepo "github.com/BruksfildServices01/playpark/internal/infra/repository"
	"github.com/BruksfildServices01/playpark/internal/timezone"
	ucCredit "github.com/BruksfildServices01/playpark/internal/usecase/credit"
)

func newSweepExpiredCmd() *cobra.Command {
	var asOfFlag string

	cmd := &cobra.Command{
		Use:   "sweep-expired",
		Short: "Zero the balance of every expired credit",
		Long: "Zero the balance of every credit whose expiry date is before --as-of " +
			"(default: today in " + timezone.DefaultTimezone + "). Running it twice on the same date changes nothing.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var asOf *time.Time
			if asOfFlag != "" {
				d, err := timezone.ParseDate(asOfFlag)
				if err != nil {
					return fmt.Errorf("invalid --as-of %q: expected YYYY-MM-DD", asOfFlag)
				}
				asOf = &d
			}

			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			dispatcher := audit.NewDispatcher(audit.New(rt.db), rt.log)
			defer dispatcher.Close()

			sweep := ucCredit.NewSweepExpired(
				infraRepo.NewCreditGormRepository(rt.db),
				dispatcher,
				timezone.SystemClock{},
				rt.log,
				rt.cfg.SweepBatchSize,
			)

			res, err := sweep.Execute(cmd.Context(), ucCredit.SweepInput{AsOf: asOf})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "as_of=%s zeroed=%d skipped=%d\n",
				res.AsOf.Format("2006-01-02"), res.Zeroed, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&asOfFlag, "as-of", "", "sweep date (YYYY-MM-DD)")

	return cmd
}
