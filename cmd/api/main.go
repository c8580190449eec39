package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/playpark/internal/audit"
	"github.com/BruksfildServices01/playpark/internal/config"
	dbpkg "github.com/BruksfildServices01/playpark/internal/db"
	"github.com/BruksfildServices01/playpark/internal/logger"
	"github.com/BruksfildServices01/playpark/internal/queue"
	"github.com/BruksfildServices01/playpark/internal/routes"
	"github.com/BruksfildServices01/playpark/internal/timezone"
	ucSettlement "github.com/BruksfildServices01/playpark/internal/usecase/settlement"
)

func main() {

	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	if err := dbpkg.Migrate(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	repos := routes.GormRepositories(db)

	auditDispatcher := audit.NewDispatcher(audit.New(db), log)
	defer auditDispatcher.Close()

	deps := routes.Deps{
		Config: cfg,
		DB:     db,
		Repos:  repos,
		Audit:  auditDispatcher,
		Clock:  timezone.SystemClock{},
		Log:    log,
	}

	rdb, err := dbpkg.NewRedis(ctx, cfg)
	switch {
	case err != nil:
		log.Warn("redis unavailable, idempotent replay disabled", zap.Error(err))
	case rdb == nil:
		log.Info("REDIS_ADDR not set, idempotent replay disabled")
	default:
		defer func() { _ = rdb.Close() }()
		deps.Redis = rdb
	}

	if cfg.RunPurchaseConsumer {
		apply := ucSettlement.NewApplyPurchase(repos.Settlement, auditDispatcher, log)
		consumer := queue.NewPurchaseConsumer(cfg.RabbitMQURL, cfg.PurchaseQueue, apply, log)
		go func() {
			if err := consumer.Run(ctx); err != nil {
				log.Error("purchase consumer stopped", zap.Error(err))
			}
		}()
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
