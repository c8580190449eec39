package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/playpark/internal/audit"
	"github.com/BruksfildServices01/playpark/internal/config"
	domainCapacity "github.com/BruksfildServices01/playpark/internal/domain/capacity"
	domainCredit "github.com/BruksfildServices01/playpark/internal/domain/credit"
	domainSettlement "github.com/BruksfildServices01/playpark/internal/domain/settlement"
	domainVisit "github.com/BruksfildServices01/playpark/internal/domain/visit"
	"github.com/BruksfildServices01/playpark/internal/handlers"
	infraRepo "github.com/BruksfildServices01/playpark/internal/infra/repository"
	"github.com/BruksfildServices01/playpark/internal/middleware"
	"github.com/BruksfildServices01/playpark/internal/timezone"
	ucCapacity "github.com/BruksfildServices01/playpark/internal/usecase/capacity"
	ucCredit "github.com/BruksfildServices01/playpark/internal/usecase/credit"
	ucSettlement "github.com/BruksfildServices01/playpark/internal/usecase/settlement"
	ucVisit "github.com/BruksfildServices01/playpark/internal/usecase/visit"
)

type Repositories struct {
	Visits     domainVisit.Repository
	Credits    domainCredit.Repository
	Capacity   domainCapacity.Repository
	Settlement domainSettlement.Repository
}

func GormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Visits:     infraRepo.NewVisitGormRepository(db),
		Credits:    infraRepo.NewCreditGormRepository(db),
		Capacity:   infraRepo.NewCapacityGormRepository(db),
		Settlement: infraRepo.NewSettlementGormRepository(db),
	}
}

// Deps holds the singletons the routes are built from. DB is only needed by
// the profile and audit log listings; without it those routes are not
// registered. Redis is optional and disables idempotent replay when nil.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Repos  Repositories
	Audit  *audit.Dispatcher
	Redis  middleware.RedisClient
	Clock  timezone.Clock
	Log    *zap.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Log))
	r.Use(middleware.CORSMiddleware())

	clock := d.Clock
	if clock == nil {
		clock = timezone.SystemClock{}
	}

	// ======================================================
	// 🧠 USE CASES
	// ======================================================
	checkInUC := ucVisit.NewCheckIn(d.Repos.Visits, d.Audit, clock, d.Log)
	checkOutUC := ucVisit.NewCheckOut(d.Repos.Visits, d.Audit, clock, d.Log)
	activeVisitsUC := ucVisit.NewListActiveVisits(d.Repos.Visits, clock)
	visitHistoryUC := ucVisit.NewVisitHistory(d.Repos.Visits)
	visitStatsUC := ucVisit.NewVisitStats(d.Repos.Visits, clock)

	eligibleUC := ucCredit.NewFindEligibleCredit(d.Repos.Credits, clock)
	topUpUC := ucCredit.NewTopUp(d.Repos.Credits, d.Audit, d.Log)
	deductUC := ucCredit.NewDeduct(d.Repos.Credits, d.Audit, d.Log)
	sweepUC := ucCredit.NewSweepExpired(d.Repos.Credits, d.Audit, clock, d.Log, d.Config.SweepBatchSize)
	guardianCreditsUC := ucCredit.NewListGuardianCredits(d.Repos.Credits, clock)
	expiredCreditsUC := ucCredit.NewListExpiredCredits(d.Repos.Credits, clock)

	occupancyUC := ucCapacity.NewGetOccupancy(d.Repos.Capacity)
	applyPurchaseUC := ucSettlement.NewApplyPurchase(d.Repos.Settlement, d.Audit, d.Log)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	visitHandler := handlers.NewVisitHandler(
		checkInUC,
		checkOutUC,
		activeVisitsUC,
		visitHistoryUC,
		visitStatsUC,
	)

	creditHandler := handlers.NewCreditHandler(
		eligibleUC,
		topUpUC,
		deductUC,
		sweepUC,
		guardianCreditsUC,
		expiredCreditsUC,
	)

	occupancyHandler := handlers.NewOccupancyHandler(occupancyUC)
	settlementHandler := handlers.NewSettlementHandler(applyPurchaseUC)

	idempotent := middleware.Idempotency(d.Redis, d.Config.IdempotencyTTL)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(d.Config))
	{
		// ------------------------------
		// 👤 ANY AUTHENTICATED ACTOR
		// ------------------------------
		api.GET("/me/visits", visitHandler.MyHistory)
		api.GET("/me/credits", creditHandler.Mine)

		if d.DB != nil {
			meHandler := handlers.NewMeHandler(d.DB)
			api.GET("/me", meHandler.GetMe)
		}

		// ------------------------------
		// 🔐 STAFF
		// ------------------------------
		staff := api.Group("/")
		staff.Use(middleware.RequireStaff())
		{
			staff.POST("/visits/check-in", idempotent, visitHandler.CheckIn)
			staff.POST("/visits/:id/check-out", idempotent, visitHandler.CheckOut)
			staff.GET("/visits/active", visitHandler.ListActive)
			staff.GET("/visits/stats", visitHandler.Stats)
			staff.GET("/children/:id/visits", visitHandler.ChildHistory)

			staff.GET("/occupancy/zones/:id", occupancyHandler.Zone)
			staff.GET("/occupancy/sessions/:id", occupancyHandler.Session)

			staff.GET("/credits/eligible", creditHandler.Eligible)
			staff.GET("/credits/expired", creditHandler.Expired)
			staff.POST("/credits/top-up", idempotent, creditHandler.TopUp)
			staff.POST("/credits/:id/deduct", idempotent, creditHandler.Deduct)
			staff.POST("/credits/sweep", creditHandler.Sweep)

			staff.POST("/settlements", settlementHandler.Apply)

			if d.DB != nil {
				auditLogsHandler := handlers.NewAuditLogsHandler(d.DB)
				staff.GET("/audit-logs", auditLogsHandler.List)
			}
		}
	}
}
