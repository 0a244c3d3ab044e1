package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"sstcore/internal/analytics"
	"sstcore/internal/caching"
	"sstcore/internal/config"
	"sstcore/internal/handlers"
	"sstcore/internal/jobs/background"
	"sstcore/internal/logger"
	"sstcore/internal/middleware"
	"sstcore/internal/models"
	"sstcore/internal/repositories"
	"sstcore/internal/services"
	"sstcore/internal/store"
	"sstcore/internal/tenancy"
	"sstcore/internal/workflow"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	lg := logger.New(cfg.App.Env, cfg.App.Log)

	if cfg.Database.URL == "" {
		lg.Fatal().Msg("database url is required (DATABASE_URL or [database] url)")
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.URL)
	if err != nil {
		lg.Fatal().Err(err).Msg("could not connect to database")
	}
	defer pool.Close()

	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		jwtSecret = random.String(32)
		lg.Warn().Msg("no JWT secret configured, using a generated one; sessions will not survive restarts")
	}

	// Storage and repositories.
	docs := store.NewPostgres(pool)
	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(docs)
	clientRepo := repositories.NewClientRepo(docs)
	formatRepo := repositories.NewFormatRepo(docs)
	recordRepo := repositories.NewFormRecordRepo(docs)
	actionRepo := repositories.NewManagementActionRepo(docs)
	findingRepo := repositories.NewFindingRepo(docs)
	attendanceRepo := repositories.NewAttendanceRepo(docs)

	router := tenancy.NewRouter(tenantRepo, lg)
	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, lg)

	evidenceSvc, err := services.NewEvidenceService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL)
	if err != nil {
		lg.Fatal().Err(err).Msg("could not initialize evidence storage")
	}
	if err := evidenceSvc.EnsureBucket(context.Background()); err != nil {
		lg.Warn().Err(err).Msg("could not ensure evidence bucket, uploads may fail")
	}

	// Services.
	hasher := services.NewBcryptHasher()
	identitySvc := services.NewIdentityService(userRepo, clientRepo, cacheSvc, hasher, cfg.Cache.ParamTTL(), lg)
	catalogSvc := services.NewCatalogService(clientRepo, formatRepo, userRepo, cacheSvc, cfg.Cache.ParamTTL(), lg)
	attendanceSvc := services.NewAttendanceService(attendanceRepo, userRepo, lg)
	engine := workflow.NewEngine(recordRepo, actionRepo, findingRepo, formatRepo, userRepo, lg)
	analyticsSvc := analytics.NewService(recordRepo, actionRepo, cacheSvc, cfg.Cache.ReportTTL(), lg)

	scheduler, err := background.NewJobScheduler(analyticsSvc, tenantRepo, actionRepo, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("could not create job scheduler")
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			lg.Warn().Err(err).Msg("scheduler shutdown failed")
		}
	}()

	// Handlers.
	authH := handlers.NewAuthHandlers(identitySvc, tenantRepo, router, jwtSecret, cfg.JWT.TTL(), lg)
	userH := handlers.NewUserHandlers(identitySvc, lg)
	catalogH := handlers.NewCatalogHandlers(catalogSvc, lg)
	workflowH := handlers.NewWorkflowHandlers(engine, evidenceSvc, lg)
	attendanceH := handlers.NewAttendanceHandlers(attendanceSvc, lg)
	metricsH := handlers.NewMetricsHandlers(analyticsSvc, lg)
	adminH := handlers.NewAdminHandlers(cacheSvc, lg)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.CORS())

	e.GET("/health", adminH.Health)
	e.POST("/api/auth/login", authH.Login)

	api := e.Group("/api", middleware.Auth(router, jwtSecret))

	api.GET("/me", userH.Me)

	adminOnly := middleware.RequireRole(models.RoleAdmin)
	supervisorUp := middleware.RequireRole(models.RoleAdmin, models.RoleSupervisor)

	// Identity administration.
	api.GET("/users", userH.List, adminOnly)
	api.POST("/users", userH.Create, adminOnly)
	api.GET("/users/clients", userH.ClientsForUsers, adminOnly)
	api.GET("/users/:email", userH.Get, adminOnly)
	api.PUT("/users/:email", userH.Update, adminOnly)
	api.DELETE("/users/:email", userH.Delete, adminOnly)

	// Client and format catalogs.
	api.GET("/clients", catalogH.ListRegisteredClients)
	api.GET("/clients/all", catalogH.ListClientsForAdmin, adminOnly)
	api.POST("/clients", catalogH.SaveClient, adminOnly)
	api.DELETE("/clients/:id", catalogH.DeleteClient, adminOnly)
	api.GET("/clients/:clientId/formats", catalogH.ListFormatsByClient)
	api.GET("/formats", catalogH.ListMyFormats)
	api.GET("/formats/all", catalogH.ListFormatsForAdmin, adminOnly)
	api.POST("/formats", catalogH.CreateFormat, adminOnly)
	api.PUT("/formats/:id", catalogH.UpdateFormat, adminOnly)
	api.DELETE("/formats/:id", catalogH.DeleteFormat, adminOnly)

	// Form record workflow.
	api.POST("/records", workflowH.Submit)
	api.GET("/records/pending", workflowH.ListPending)
	api.POST("/records/:id/actions", workflowH.RecordAction, supervisorUp)
	api.GET("/records/:id/actions", workflowH.ListActions)
	api.POST("/records/:id/close", workflowH.Close, supervisorUp)

	// Findings.
	api.POST("/findings", workflowH.SaveFinding)
	api.GET("/findings", workflowH.FindingsGallery, adminOnly)

	// Attendance.
	api.GET("/attendance/status", attendanceH.Status)
	api.POST("/attendance/checkin", attendanceH.CheckIn)
	api.POST("/attendance/checkout", attendanceH.CheckOut)
	api.GET("/attendance", attendanceH.ListAll, adminOnly)

	// Reports.
	api.GET("/metrics/supervisors", metricsH.SupervisorMetrics, supervisorUp)
	api.GET("/metrics/performance", metricsH.PerformanceReport, adminOnly)

	// Cache administration.
	api.POST("/admin/cache/invalidate", adminH.InvalidateCache, adminOnly)

	go func() {
		lg.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")
		if err := e.Start(cfg.HTTP.Addr); err != nil && err != http.ErrServerClosed {
			lg.Fatal().Err(err).Msg("http server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		lg.Error().Err(err).Msg("graceful shutdown failed")
	}
}
