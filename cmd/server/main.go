// Package main runs the community event listing HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cmh-events/backend/config"
	"github.com/cmh-events/backend/internal/auth"
	"github.com/cmh-events/backend/internal/emaillog"
	"github.com/cmh-events/backend/internal/events"
	"github.com/cmh-events/backend/internal/middleware"
	"github.com/cmh-events/backend/internal/moderation"
	"github.com/cmh-events/backend/pkg/database"
	"github.com/cmh-events/backend/pkg/queue"
	"github.com/cmh-events/backend/pkg/redis"
	"github.com/cmh-events/backend/pkg/response"
	"github.com/cmh-events/backend/pkg/storage"
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

	s3Client, err := storage.NewS3(ctx, storage.S3Config{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		ImagesBucket:    cfg.AWS.ImagesBucket,
	}, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	sessions := auth.NewRedisSessions(rdb.Client)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Identity
	profileRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(profileRepo, jwtService, sessions, sessions, jobQueue, cfg.Email.ResetURL, logger)

	// Events
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, s3Client, logger)

	// Moderation
	moderationHandler := moderation.NewHandler(eventRepo, logger)

	// Reset-email activity
	emailLogRepo := emaillog.NewRepository(pool)
	emailLogHandler := emaillog.NewHandler(emailLogRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())

	// Health and metrics
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public listing
	router.GET("/events", eventHandler.ListPublic)
	router.GET("/events/:id", eventHandler.GetPublic)

	// Identity (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/password-reset", authHandler.RequestPasswordReset)
		authGroup.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)
	}
	router.POST("/admin/login", authHandler.AdminLogin)

	// Organizer API (session required)
	session := router.Group("")
	session.Use(middleware.RequireSession(jwtService, sessions))
	{
		session.POST("/auth/logout", authHandler.Logout)
		session.GET("/auth/session", authHandler.Session)

		session.GET("/me/events", eventHandler.ListMine)
		session.GET("/me/events/:id", eventHandler.GetMine)
		session.POST("/events", eventHandler.Create)
		session.PUT("/events/:id", eventHandler.Update)
		session.DELETE("/events/:id", eventHandler.Delete)
	}

	// Moderation API (administrator flag checked live per request)
	admin := router.Group("/admin")
	admin.Use(middleware.RequireSession(jwtService, sessions), middleware.RequireAdmin(profileRepo))
	{
		admin.GET("/events", moderationHandler.List)
		admin.PATCH("/events/:id/approve", moderationHandler.Approve)
		admin.DELETE("/events/:id", moderationHandler.Delete)
		admin.GET("/emails", emailLogHandler.List)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

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
