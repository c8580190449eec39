package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/playpark/internal/audit"
	"github.com/BruksfildServices01/playpark/internal/config"
	"github.com/BruksfildServices01/playpark/internal/domain/settlement"
	infraRepo "github.com/BruksfildServices01/playpark/internal/infra/repository"
	"github.com/BruksfildServices01/playpark/internal/queue"
	ucSettlement "github.com/BruksfildServices01/playpark/internal/usecase/settlement"
)

func newConsumePurchasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consume-purchases",
		Short: "Apply purchase-completed events from the queue until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dispatcher := audit.NewDispatcher(audit.New(rt.db), rt.log)
			defer dispatcher.Close()

			apply := ucSettlement.NewApplyPurchase(
				infraRepo.NewSettlementGormRepository(rt.db),
				dispatcher,
				rt.log,
			)

			return queue.NewPurchaseConsumer(rt.cfg.RabbitMQURL, rt.cfg.PurchaseQueue, apply, rt.log).Run(ctx)
		},
	}
}

func newPublishPurchaseCmd() *cobra.Command {
	var (
		ev     settlement.PurchaseCompleted
		amount string
	)

	cmd := &cobra.Command{
		Use:   "publish-purchase",
		Short: "Publish one purchase-completed event, e.g. to replay a missed delivery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paid, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q", amount)
			}
			ev.AmountPaid = paid
			if err := ev.Validate(); err != nil {
				return err
			}

			cfg := config.Load()
			if err := queue.PublishPurchaseCompleted(cmd.Context(), cfg.RabbitMQURL, cfg.PurchaseQueue, ev); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %s to %s\n", ev.TransactionID, cfg.PurchaseQueue)
			return nil
		},
	}

	cmd.Flags().StringVar(&ev.TransactionID, "transaction-id", "", "payment transaction id (required)")
	cmd.Flags().UintVar(&ev.GuardianID, "guardian", 0, "guardian id (required)")
	cmd.Flags().UintVar(&ev.LocationID, "location", 0, "location id (required)")
	cmd.Flags().IntVar(&ev.Minutes, "minutes", 0, "minutes purchased (required)")
	cmd.Flags().StringVar(&ev.ExpiryDate, "expiry", "", "credit expiry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&amount, "amount", "0", "amount paid")

	return cmd
}
