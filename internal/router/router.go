package router

import (
	"net/http"

	"finflow/internal/auth"
	"finflow/internal/config"
	"finflow/internal/handler"
	"finflow/internal/logging"
	"finflow/internal/middleware"
	"finflow/internal/report"
	"finflow/internal/store"
	"finflow/internal/util"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Config  config.Config
	Store   *store.Store
	Auth    *auth.Service
	Reports report.Reporter
	Log     *logging.Logger
}

// SetupRouter builds the gin engine with every API route.
func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	log := d.Log
	if log == nil {
		log = logging.Discard()
	}
	pageSize := cfg.App.DefaultPageSize

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS(cfg.Server.CORSOrigins))

	r.GET("/", func(c *gin.Context) {
		util.Success(c, http.StatusOK, gin.H{
			"name":    cfg.App.Name,
			"version": cfg.App.Version,
			"docs":    "/api",
		})
	})
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := d.Store.DB().DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			log.Error("health check failed", "error", err)
			util.Error(c, http.StatusServiceUnavailable, util.CodeUnavailable, "database unreachable")
			return
		}
		util.Success(c, http.StatusOK, gin.H{"status": "healthy"})
	})

	// ====== API ======
	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(d.Store.Users, d.Auth, log)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.Auth(d.Auth, log),
		middleware.Audit(d.Store.Audit, cfg.Security.EncryptionKey, log),
	)

	backups := handler.NewBackupHandler(d.Store.Backups, cfg.Security.EncryptionKey, cfg.Backup.Dir, log, pageSize)
	profileHandler := handler.NewProfileHandler(d.Store.Users, d.Auth, backups, log)
	protected.GET("/auth/me", authHandler.Me)
	protected.PUT("/auth/me", profileHandler.Update)
	protected.DELETE("/auth/me", profileHandler.Delete)
	protected.POST("/auth/password", profileHandler.ChangePassword)
	protected.POST("/auth/logout", authHandler.Logout)

	accounts := handler.NewAccountHandler(d.Store.Accounts, d.Reports, log, pageSize)
	protected.GET("/accounts/summary/total-balance", accounts.TotalBalance)
	protected.GET("/accounts", accounts.List)
	protected.POST("/accounts", accounts.Create)
	protected.GET("/accounts/:id", accounts.Get)
	protected.PUT("/accounts/:id", accounts.Update)
	protected.DELETE("/accounts/:id", accounts.Delete)

	categories := handler.NewCategoryHandler(d.Store.Categories, log, pageSize)
	protected.GET("/categories", categories.List)
	protected.POST("/categories", categories.Create)
	protected.GET("/categories/:id", categories.Get)
	protected.PUT("/categories/:id", categories.Update)
	protected.DELETE("/categories/:id", categories.Delete)

	tags := handler.NewTagHandler(d.Store.Tags, log, pageSize)
	protected.GET("/tags", tags.List)
	protected.POST("/tags", tags.Create)
	protected.GET("/tags/:id", tags.Get)
	protected.PUT("/tags/:id", tags.Update)
	protected.DELETE("/tags/:id", tags.Delete)

	budgets := handler.NewBudgetHandler(d.Store.Budgets, d.Reports, log, pageSize)
	protected.GET("/budgets/reports/status", budgets.Status)
	protected.GET("/budgets", budgets.List)
	protected.POST("/budgets", budgets.Create)
	protected.GET("/budgets/:id", budgets.Get)
	protected.PUT("/budgets/:id", budgets.Update)
	protected.DELETE("/budgets/:id", budgets.Delete)

	goals := handler.NewGoalHandler(d.Store.Goals, d.Reports, log, pageSize)
	protected.GET("/goals", goals.List)
	protected.POST("/goals", goals.Create)
	protected.GET("/goals/:id", goals.Get)
	protected.GET("/goals/:id/progress", goals.Progress)
	protected.PUT("/goals/:id", goals.Update)
	protected.DELETE("/goals/:id", goals.Delete)

	recurring := handler.NewRecurringHandler(d.Store.Recurring, log, pageSize)
	protected.GET("/recurring-transactions", recurring.List)
	protected.POST("/recurring-transactions", recurring.Create)
	protected.GET("/recurring-transactions/:id", recurring.Get)
	protected.PUT("/recurring-transactions/:id", recurring.Update)
	protected.DELETE("/recurring-transactions/:id", recurring.Delete)
	protected.POST("/recurring-transactions/:id/materialize", recurring.Materialize)

	transactions := handler.NewTransactionHandler(d.Store.Transactions, d.Reports, log, pageSize)
	export := handler.NewExportHandler(d.Store, log)
	protected.GET("/transactions", transactions.List)
	protected.POST("/transactions", transactions.Create)
	protected.POST("/transactions/batch-import", transactions.BatchImport)
	protected.GET("/transactions/reports/financial", transactions.FinancialReport)
	protected.GET("/transactions/reports/top-expenses", transactions.TopExpenses)
	protected.GET("/transactions/export/csv", export.CSV)
	protected.GET("/transactions/export/xlsx", export.XLSX)
	protected.GET("/transactions/:id", transactions.Get)
	protected.PUT("/transactions/:id", transactions.Update)
	protected.DELETE("/transactions/:id", transactions.Delete)

	protected.GET("/backups", backups.List)
	protected.POST("/backups", backups.Create)
	protected.GET("/backups/:id/download", backups.Download)
	protected.GET("/backups/:id/content", backups.Content)
	protected.DELETE("/backups/:id", backups.Delete)

	auditHandler := handler.NewAuditHandler(d.Store.Audit, cfg.Security.EncryptionKey, log, pageSize)
	protected.GET("/audit-logs", auditHandler.List)

	return r
}
