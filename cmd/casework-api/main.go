package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/fc-casework/felling-licence-api/api/swagger"
	"github.com/fc-casework/felling-licence-api/internal/handler"
	"github.com/fc-casework/felling-licence-api/internal/middleware"
	"github.com/fc-casework/felling-licence-api/internal/models"
	"github.com/fc-casework/felling-licence-api/internal/repository"
	"github.com/fc-casework/felling-licence-api/internal/service"
	rediscache "github.com/fc-casework/felling-licence-api/pkg/cache"
	"github.com/fc-casework/felling-licence-api/pkg/config"
	"github.com/fc-casework/felling-licence-api/pkg/database"
	"github.com/fc-casework/felling-licence-api/pkg/jobs"
	"github.com/fc-casework/felling-licence-api/pkg/logger"
	corsmiddleware "github.com/fc-casework/felling-licence-api/pkg/middleware/cors"
	reqidmiddleware "github.com/fc-casework/felling-licence-api/pkg/middleware/requestid"
	"github.com/fc-casework/felling-licence-api/pkg/storage"
)

// @title Felling Licence Casework API
// @version 1.0.0
// @description Casework service for felling licence applications
// @BasePath /api/v1
// @schemes http

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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := rediscache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	documentStorage, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare document storage", "error", err)
	}
	documentSigner := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)

	appRepo := repository.NewApplicationRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "felling-licence-api",
	})
	userSvc := service.NewUserService(userRepo, nil, logr)

	applicationSvc := service.NewApplicationService(appRepo, appRepo, cacheSvc, userRepo, logr)
	assigneeSvc := service.NewAssigneeService(appRepo, userRepo, userRepo, logr)
	adminOfficerSvc := service.NewAdminOfficerReviewService(appRepo, userRepo, logr)
	woodlandOfficerSvc := service.NewWoodlandOfficerReviewService(appRepo, userRepo, logr)
	fellingSvc := service.NewFellingReconciliationService(appRepo, userRepo, nil, logr)
	approverSvc := service.NewApproverReviewService(appRepo, userRepo, logr)
	amendmentSvc := service.NewAmendmentReviewService(appRepo, appRepo, userRepo, logr)
	documentSvc := service.NewDocumentService(appRepo, documentStorage, documentSigner, userRepo, logr, service.DocumentServiceConfig{
		MaxFileSize:  cfg.Documents.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Documents.AllowedMIMEs,
		APIPrefix:    cfg.APIPrefix,
	})

	notifier := service.NewLoggingNotifier(logr)

	var timerSvc *service.AmendmentTimerService
	sweepQueue := jobs.NewQueue("amendment-sweeps", func(ctx context.Context, job jobs.Job) error {
		return timerSvc.Handle(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Amendments.WorkerConcurrency,
		MaxRetries: cfg.Amendments.WorkerRetries,
		Logger:     logr,
	})
	timerSvc = service.NewAmendmentTimerService(amendmentSvc, applicationSvc, notifier, sweepQueue, metricsSvc, cfg.Amendments.ReminderWindow, logr)

	sweepQueue.Start(context.Background())
	defer sweepQueue.Stop()
	go runSweepTicker(timerSvc, cfg.Amendments.SweepInterval, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	applicationHandler := handler.NewApplicationHandler(applicationSvc)
	assigneeHandler := handler.NewAssigneeHandler(assigneeSvc)
	adminOfficerHandler := handler.NewAdminOfficerHandler(adminOfficerSvc)
	woodlandOfficerHandler := handler.NewWoodlandOfficerHandler(woodlandOfficerSvc, cfg.PublicRegister.DefaultPeriodDays)
	fellingHandler := handler.NewFellingHandler(fellingSvc)
	approverHandler := handler.NewApproverHandler(approverSvc)
	amendmentHandler := handler.NewAmendmentHandler(amendmentSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)
	authed := auth.Group("", middleware.JWT(authSvc))
	authed.POST("/logout", authHandler.Logout)
	authed.POST("/change-password", authHandler.ChangePassword)
	authed.GET("/me", authHandler.Me)

	users := api.Group("/users", middleware.JWT(authSvc))
	users.GET("", middleware.RequireRoles(models.RoleAccountAdmin), userHandler.List)
	users.GET("/:id", middleware.RBAC(string(models.RoleAccountAdmin), "SELF"), userHandler.Get)
	users.POST("", middleware.RequireRoles(models.RoleAccountAdmin), userHandler.Create)
	users.PUT("/:id", middleware.RequireRoles(models.RoleAccountAdmin), userHandler.Update)
	users.DELETE("/:id", middleware.RequireRoles(models.RoleAccountAdmin), userHandler.Delete)

	officerRoles := middleware.RequireRoles(models.RoleAccountAdmin, models.RoleAdminOfficer, models.RoleWoodlandOfficer)
	anyStaff := middleware.RequireRoles(models.RoleAccountAdmin, models.RoleAdminOfficer, models.RoleWoodlandOfficer, models.RoleFieldManager)

	apps := api.Group("/applications", middleware.JWT(authSvc))
	apps.GET("", anyStaff, applicationHandler.List)
	apps.GET("/:id", applicationHandler.Get)
	apps.GET("/:id/summary", applicationHandler.Summary)
	apps.GET("/:id/status-history", applicationHandler.StatusHistory)
	apps.POST("/:id/withdraw", applicationHandler.Withdraw)
	apps.POST("/:id/revert-withdrawal", officerRoles, applicationHandler.RevertWithdrawal)

	apps.POST("/:id/assignees", officerRoles, assigneeHandler.Assign)
	apps.DELETE("/:id/assignees", officerRoles, assigneeHandler.Unassign)

	adminReview := apps.Group("/:id/admin-officer-review", middleware.RequireRoles(models.RoleAccountAdmin, models.RoleAdminOfficer))
	adminReview.GET("", adminOfficerHandler.Summary)
	adminReview.PUT("/checks/:check", adminOfficerHandler.UpdateCheck)
	adminReview.PUT("/larch", adminOfficerHandler.UpdateLarchCheck)
	adminReview.POST("/complete", adminOfficerHandler.Complete)

	woReview := apps.Group("/:id/woodland-officer-review", middleware.RequireRoles(models.RoleAccountAdmin, models.RoleWoodlandOfficer))
	woReview.GET("", woodlandOfficerHandler.Summary)
	woReview.PUT("/public-register/exemption", woodlandOfficerHandler.SetPublicRegisterExempt)
	woReview.POST("/public-register/publish", woodlandOfficerHandler.PublishToPublicRegister)
	woReview.POST("/public-register/remove", woodlandOfficerHandler.RemoveFromPublicRegister)
	woReview.PUT("/site-visit/not-needed", woodlandOfficerHandler.SetSiteVisitNotNeeded)
	woReview.PUT("/site-visit/arranged", woodlandOfficerHandler.SetSiteVisitArranged)
	woReview.POST("/site-visit/complete", woodlandOfficerHandler.CompleteSiteVisit)
	woReview.PUT("/pw14", woodlandOfficerHandler.UpdatePw14)
	woReview.PUT("/consultations", woodlandOfficerHandler.UpdateConsultations)
	woReview.POST("/consultations/invites", woodlandOfficerHandler.AddConsulteeInvite)
	woReview.POST("/consultations/invites/:inviteId/response", woodlandOfficerHandler.RecordConsulteeResponse)
	woReview.PUT("/eia-screening", woodlandOfficerHandler.UpdateEIAScreening)
	woReview.POST("/felling-and-restocking/confirm", woodlandOfficerHandler.ConfirmFellingAndRestocking)
	woReview.PUT("/conditions", woodlandOfficerHandler.UpdateConditions)
	woReview.POST("/complete", woodlandOfficerHandler.Complete)

	felling := apps.Group("/:id/confirmed-felling", officerRoles)
	felling.POST("/convert", fellingHandler.Convert)
	felling.PUT("", fellingHandler.Save)
	felling.GET("/amended-properties", fellingHandler.AmendedProperties)
	felling.DELETE("/:detailId", fellingHandler.DeleteFellingDetail)
	felling.POST("/revert/:proposedId", fellingHandler.RevertAmendments)

	approver := apps.Group("/:id/approver-review", middleware.RequireRoles(models.RoleAccountAdmin, models.RoleFieldManager))
	approver.PUT("", approverHandler.Update)
	approver.DELETE("", approverHandler.Delete)
	approver.POST("/complete", approverHandler.Complete)

	amendments := apps.Group("/:id/amendment-reviews")
	amendments.POST("", officerRoles, amendmentHandler.Create)
	amendments.POST("/response", amendmentHandler.Respond)
	amendments.POST("/complete", officerRoles, amendmentHandler.Complete)

	documents := apps.Group("/:id/documents")
	documents.GET("", documentHandler.List)
	documents.POST("", documentHandler.Upload)
	documents.GET("/:documentId/url", documentHandler.GetDownloadURL)
	documents.GET("/:documentId/download", middleware.Audit(userRepo, models.AuditActionDocumentDownload, "documents"), documentHandler.Download)
	documents.DELETE("/:documentId", documentHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// runSweepTicker enqueues the amendment deadline sweeps on a fixed interval.
func runSweepTicker(timer *service.AmendmentTimerService, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		if err := timer.EnqueueSweeps(); err != nil {
			logr.Warn("failed to enqueue amendment sweeps", zap.Error(err))
		}
	}
}
