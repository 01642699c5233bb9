package router

import (
	"github.com/Alishanbouraa/chickensap/internal/config"
	"github.com/Alishanbouraa/chickensap/internal/handler"
	"github.com/Alishanbouraa/chickensap/internal/infra"
	"github.com/Alishanbouraa/chickensap/internal/middleware"
	"github.com/Alishanbouraa/chickensap/internal/model"
	"github.com/Alishanbouraa/chickensap/internal/repository"
	"github.com/Alishanbouraa/chickensap/internal/service"
	"github.com/Alishanbouraa/chickensap/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App bundles the HTTP engine with the services the scheduler needs outside
// the request path (nightly reconciliation and reporting).
type App struct {
	Engine         *gin.Engine
	Reconciliation service.ReconciliationService
	Reports        service.ReportService
}

// New wires all dependencies and returns the configured application.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, locker infra.Locker, dispatcher *worker.Dispatcher) *App {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter())

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	truckRepo := repository.NewTruckRepository(db)
	reconciliationRepo := repository.NewReconciliationRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	customerSvc := service.NewCustomerService(customerRepo, invoiceRepo, paymentRepo)
	settlementSvc := service.NewSettlementService(invoiceRepo, customerRepo, truckRepo, locker, dispatcher)
	paymentSvc := service.NewPaymentService(paymentRepo, customerRepo, invoiceRepo, locker, dispatcher)
	reconciliationSvc := service.NewReconciliationService(reconciliationRepo, truckRepo, invoiceRepo, locker, dispatcher)
	truckSvc := service.NewTruckService(truckRepo, dispatcher)
	reportSvc := service.NewReportService(invoiceRepo, paymentRepo, reconciliationRepo, dispatcher, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	invoicesH := handler.NewInvoicesHandler(settlementSvc, reportSvc)
	paymentsH := handler.NewPaymentsHandler(paymentSvc)
	trucksH := handler.NewTrucksHandler(truckSvc)
	reconciliationH := handler.NewReconciliationHandler(reconciliationSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleCashier)
	managerUp := middleware.RequireRole(model.RoleAdmin, model.RoleManager)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		// Invoices — cashiers issue, managers amend/void
		v1.POST("/invoices", anyRole, invoicesH.Create)
		v1.GET("/invoices", anyRole, invoicesH.List)
		v1.GET("/invoices/:id", anyRole, invoicesH.Get)
		v1.GET("/invoices/:id/pdf", anyRole, invoicesH.PDF)
		v1.GET("/invoices/:id/integrity", managerUp, invoicesH.Integrity)
		v1.PATCH("/invoices/:id/amount", managerUp, invoicesH.Amend)
		v1.DELETE("/invoices/:id", managerUp, invoicesH.Void)

		// Payments — cashiers apply, managers reverse
		v1.POST("/payments", anyRole, paymentsH.Apply)
		v1.GET("/payments", anyRole, paymentsH.List)
		v1.GET("/payments/:id", anyRole, paymentsH.Get)
		v1.DELETE("/payments/:id", managerUp, paymentsH.Reverse)

		// Customers — all read, managers write
		v1.GET("/customers", anyRole, customersH.List)
		v1.GET("/customers/:id", anyRole, customersH.Get)
		v1.GET("/customers/:id/statement", anyRole, customersH.Statement)
		customers := v1.Group("/customers", managerUp)
		{
			customers.POST("", customersH.Create)
			customers.PUT("/:id", customersH.Update)
			customers.DELETE("/:id", customersH.Deactivate)
			customers.PATCH("/:id/reactivate", customersH.Reactivate)
		}

		// Trucks and loads
		v1.GET("/trucks", anyRole, trucksH.List)
		v1.POST("/trucks", adminOnly, trucksH.Create)
		v1.DELETE("/trucks/:id", adminOnly, trucksH.Deactivate)
		v1.POST("/loads", managerUp, trucksH.RegisterLoad)
		v1.GET("/loads", anyRole, trucksH.ListLoads)
		v1.PATCH("/loads/:id/status", managerUp, trucksH.AdvanceLoadStatus)

		// Daily reconciliation — managers only
		recs := v1.Group("/reconciliations", managerUp)
		{
			recs.POST("", reconciliationH.Reconcile)
			recs.GET("", reconciliationH.List)
			recs.GET("/:truck_id/:date", reconciliationH.Get)
		}

		// Reports
		reports := v1.Group("/reports", managerUp)
		{
			reports.GET("/daily-summary", reportsH.DailySummary)
			reports.GET("/wastage.xlsx", reportsH.WastageExcel)
		}

		// User administration
		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	return &App{
		Engine:         r,
		Reconciliation: reconciliationSvc,
		Reports:        reportSvc,
	}
}
