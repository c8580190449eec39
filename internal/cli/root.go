// Package cli defines the parkctl command tree: schema migration, the
// expiry sweeper and the purchase-event consumer.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/playpark/internal/config"
	dbpkg "github.com/BruksfildServices01/playpark/internal/db"
	"github.com/BruksfildServices01/playpark/internal/logger"
)

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "parkctl",
		Short:         "Operate the play-park visit and credit engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(),
		newSweepExpiredCmd(),
		newConsumePurchasesCmd(),
		newPublishPurchaseCmd(),
	)

	return root
}

type runtime struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

// bootstrap loads configuration, builds the logger and opens the database.
func bootstrap() (*runtime, error) {
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		return nil, err
	}

	return &runtime{cfg: cfg, log: log, db: db}, nil
}

func (rt *runtime) close() {
	_ = rt.log.Sync()
	if sqlDB, err := rt.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
