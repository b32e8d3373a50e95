package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/tirs/dashboard/internal/handler"
	"github.com/tirs/dashboard/internal/middleware"
	"github.com/tirs/dashboard/internal/models"
	"github.com/tirs/dashboard/internal/repository"
	"github.com/tirs/dashboard/internal/service"
	"github.com/tirs/dashboard/pkg/cache"
	"github.com/tirs/dashboard/pkg/config"
	"github.com/tirs/dashboard/pkg/database"
	"github.com/tirs/dashboard/pkg/logger"
	corsmiddleware "github.com/tirs/dashboard/pkg/middleware/cors"
	reqidmiddleware "github.com/tirs/dashboard/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The dashboard works without its cache; summaries just hit the
		// database every time.
		logr.Sugar().Warnw("redis unavailable, summary caching disabled", "error", err)
		redisClient = nil
	}

	userRepo := repository.NewUserRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	productRepo := repository.NewProductRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := service.NewValidator()
	metricsSvc := service.NewMetricsService()

	auditSvc := service.NewAuditService(auditRepo, logr, metricsSvc, service.AuditConfig{
		ListLimit:        cfg.Audit.ListLimit,
		RetentionHorizon: cfg.Audit.RetentionHorizon,
	})
	authSvc := service.NewAuthService(userRepo, auditSvc, validate, logr, metricsSvc, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, auditSvc, validate, logr)
	salesSvc := service.NewSalesService(saleRepo, cacheRepo, metricsSvc, logr, cfg.Dashboard.CacheTTL)
	exportSvc := service.NewExportService(salesSvc)
	productSvc := service.NewProductService(productRepo)
	importSvc := service.NewImportService(saleRepo, userRepo, auditSvc, metricsSvc, logr)
	healthSvc := service.NewHealthService(userRepo, saleRepo, productRepo, logr)

	if cfg.Seed.Enabled {
		seedSvc := service.NewSeedService(userRepo, productRepo, saleRepo, logr)
		seedSvc.Run(context.Background())
	}

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	salesHandler := handler.NewSalesHandler(salesSvc, exportSvc)
	productHandler := handler.NewProductHandler(productSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)
	importHandler := handler.NewImportHandler(importSvc)
	healthHandler := handler.NewHealthHandler(db, healthSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", healthHandler.Live)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/sales", salesHandler.List)
		authed.GET("/sales/summary", salesHandler.Summary)
		authed.GET("/sales/export", salesHandler.Export)
		authed.GET("/products", productHandler.List)
		authed.GET("/health/data", healthHandler.Data)
	}

	admin := api.Group("")
	admin.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/users", userHandler.List)
		admin.GET("/users/:id", userHandler.Get)
		admin.PUT("/users/:id/role", userHandler.UpdateRole)
		admin.PUT("/users/:id/status", userHandler.UpdateStatus)
		admin.GET("/audit-logs", auditHandler.List)
		admin.POST("/audit-logs/sweep", auditHandler.Sweep)
		admin.POST("/imports/sales", importHandler.Sales)
		admin.POST("/imports/users", importHandler.Users)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
