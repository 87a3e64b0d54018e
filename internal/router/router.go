package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/config"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/handler"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/middleware"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/repository"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/service"
)

func Setup(cfg *config.Config, db *gorm.DB, settlementSvc *service.SettlementService) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	accountRepo := repository.NewAccountRepository(db)
	investmentRepo := repository.NewInvestmentRepository(db)
	planRepo := repository.NewPlanRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	runRepo := repository.NewRunRepository(db)

	// Handlers
	settlementHandler := handler.NewSettlementHandler(settlementSvc, runRepo)
	ledgerHandler := handler.NewLedgerHandler(accountRepo, ledgerRepo)
	accountHandler := handler.NewAccountHandler(accountRepo, investmentRepo, planRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.AdminRequired()

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	api := r.Group("/api/v1")
	{
		api.GET("/plans", accountHandler.ListPlans)

		accounts := api.Group("/accounts", authMw)
		{
			accounts.GET("/:id", ledgerHandler.GetAccount)
			accounts.GET("/:id/transactions", ledgerHandler.ListTransactions)
			accounts.GET("/:id/credit-history", ledgerHandler.ListCreditHistory)
			accounts.GET("/:id/commissions", ledgerHandler.ListCommissions)
			accounts.GET("/:id/investments", accountHandler.ListInvestments)
		}

		admin := api.Group("/admin", authMw, adminMw)
		{
			admin.POST("/accounts", accountHandler.CreateAccount)
			admin.POST("/investments", accountHandler.CreateInvestment)
			admin.POST("/settlement/run", settlementHandler.TriggerRun)
			admin.GET("/settlement/runs", settlementHandler.ListRuns)
			admin.GET("/settlement/runs/:date", settlementHandler.GetRun)
		}
	}

	return r
}
