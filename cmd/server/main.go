// Package main runs the course platform HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lumora-academy/backend/config"
	"github.com/lumora-academy/backend/internal/access"
	"github.com/lumora-academy/backend/internal/assistant"
	"github.com/lumora-academy/backend/internal/auth"
	"github.com/lumora-academy/backend/internal/catalog"
	"github.com/lumora-academy/backend/internal/courses"
	"github.com/lumora-academy/backend/internal/delivery"
	"github.com/lumora-academy/backend/internal/entitlement"
	"github.com/lumora-academy/backend/internal/enrollments"
	"github.com/lumora-academy/backend/internal/middleware"
	"github.com/lumora-academy/backend/internal/streamtoken"
	"github.com/lumora-academy/backend/internal/worker"
	"github.com/lumora-academy/backend/pkg/database"
	"github.com/lumora-academy/backend/pkg/queue"
	"github.com/lumora-academy/backend/pkg/redis"
	"github.com/lumora-academy/backend/pkg/response"
	"github.com/lumora-academy/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.Storage.Backend == "s3" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			VideosBucket:         cfg.AWS.VideosBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Fatal("s3", zap.Error(err))
		}
	}
	var blobStore storage.BlobStore
	if s3Client != nil {
		blobStore = s3Client
	} else {
		blobStore = storage.NewLocalStore(cfg.Storage.LocalDir)
		logger.Info("serving videos from local storage", zap.String("dir", cfg.Storage.LocalDir))
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Courses
	courseRepo := courses.NewRepository(pool)
	courseHandler := courses.NewHandler(courseRepo, logger)

	// Video catalog (read-through cache over Postgres, warmed at boot)
	catalogRepo := catalog.NewRepository(pool)
	cachedCatalog := catalog.NewCached(catalogRepo, cfg.StreamToken.CacheTTL())
	if assets, err := catalogRepo.ListAll(ctx); err != nil {
		logger.Warn("catalog warm failed", zap.Error(err))
	} else {
		cachedCatalog.Warm(assets)
	}
	catalogHandler := catalog.NewHandler(cachedCatalog, catalogRepo, s3Client, logger)

	// Entitlement (Redis-cached enrollment facts, fail closed)
	enrollmentSource := entitlement.NewCachedSource(entitlement.NewRepository(pool), rdb.Client, cfg.StreamToken.CacheTTL(), logger)
	checker := entitlement.NewChecker(cachedCatalog, enrollmentSource, cfg.StreamToken.LookupTimeout(), logger)

	// Stream tokens and delivery
	issuer := streamtoken.NewIssuer(cfg.StreamToken.Secret, cfg.StreamToken.TTL())
	orchestrator := access.NewOrchestrator(cachedCatalog, checker, issuer, cfg.Server.BaseURL, logger)
	accessHandler := access.NewHandler(orchestrator)
	deliveryHandler := delivery.NewHandler(issuer, cachedCatalog, blobStore, logger)

	// Enrollments
	jobQueue := queue.NewQueue(rdb.Client, logger)
	enrollmentRepo := enrollments.NewRepository(pool)
	enrollmentHandler := enrollments.NewHandler(enrollmentRepo, courseRepo, enrollmentSource, jobQueue, logger)

	// Support assistant
	matcher := assistant.NewMatcher(assistant.DefaultRules())

	emailProcessor := worker.NewEmailProcessor(cfg.Email, jobQueue, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Video metadata: anonymous requests see public assets, signed-in users see
	// everything their role allows.
	router.GET("/videos/metadata/:videoId", middleware.OptionalJWT(jwtService), catalogHandler.GetMetadata)

	// Stream endpoints carry their own credential (the stream token) or serve
	// public assets, so no JWT middleware here.
	router.GET("/video-stream/public/:videoId", deliveryHandler.StreamPublic)
	router.GET("/video-stream/:token", deliveryHandler.Stream)

	// Payment provider webhook (no JWT; provider signature checked in handler when configured)
	router.POST("/webhooks/payment-confirmation", enrollmentHandler.ConfirmPayment)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Users (admin only)
		api.GET("/users", middleware.RequireRole("admin"), authHandler.List)

		// Courses
		api.GET("/courses", courseHandler.List)
		api.POST("/courses", middleware.RequireRole("admin", "instructor"), courseHandler.Create)
		api.GET("/courses/:id", courseHandler.GetByID)
		api.PATCH("/courses/:id", middleware.RequireRole("admin", "instructor"), courseHandler.Update)
		api.DELETE("/courses/:id", middleware.RequireRole("admin", "instructor"), courseHandler.Delete)
		api.POST("/courses/:id/lessons", middleware.RequireRole("admin", "instructor"), courseHandler.CreateLesson)
		api.GET("/courses/:id/lessons", courseHandler.ListLessons)

		// Catalog management
		api.POST("/courses/:id/videos", middleware.RequireRole("admin", "instructor"), catalogHandler.CreateVideo)
		api.GET("/courses/:id/videos", catalogHandler.ListByCourse)
		api.POST("/courses/:id/videos/generate-upload-url", middleware.RequireRole("admin", "instructor"), catalogHandler.GenerateUploadURL)
		api.POST("/courses/:id/videos/upload", middleware.RequireRole("admin", "instructor"), catalogHandler.UploadVideo)
		api.DELETE("/videos/:id", middleware.RequireRole("admin", "instructor"), catalogHandler.DeleteVideo)

		// Enrollments
		api.POST("/enrollments", enrollmentHandler.Enroll)
		api.GET("/enrollments/me", enrollmentHandler.ListMine)
		api.DELETE("/enrollments/:id", enrollmentHandler.Unenroll)

		// Secure stream URL issuance (rate limited per client IP)
		api.POST("/video-stream/secure-url", middleware.RateLimit(10, 20), accessHandler.SecureURL)
	}

	// WebSocket assistant (token in query; no Authorization header required)
	router.GET("/ws/assistant", assistant.ServeWs(matcher, jwtService, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (enrollment confirmation emails)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go emailProcessor.Run(workerCtx)
	logger.Info("email worker started")

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
