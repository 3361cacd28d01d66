package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"

	"github.com/resqnow/emergency-dispatch/internal/config"
	"github.com/resqnow/emergency-dispatch/internal/dispatch"
	v1 "github.com/resqnow/emergency-dispatch/internal/handler/http/v1"
	"github.com/resqnow/emergency-dispatch/internal/repository"
	"github.com/resqnow/emergency-dispatch/internal/service"
	"github.com/resqnow/emergency-dispatch/pkg/blobstore"
	"github.com/resqnow/emergency-dispatch/pkg/logger"
	"github.com/resqnow/emergency-dispatch/pkg/postgres"
	redisclient "github.com/resqnow/emergency-dispatch/pkg/redis"

	_ "github.com/resqnow/emergency-dispatch/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Emergency Dispatch API
// @version 1.0
// @description Emergency dispatch and assignment engine: public accident reporting, responder feeds and the claim protocol.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	blobs, err := blobstore.NewFSStore(cfg.BlobDir, cfg.BlobPublicBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize blob store: %v", err)
	}

	ticketPublisher := dispatch.NewRedisTicketPublisher(redisClient)

	notifyWorker := dispatch.NewNotifyWorker(redisClient, log, cfg)
	notifyWorker.Start(ctx)

	incidentRepo := repository.NewIncidentRepository(dbpool, log)
	responderRepo := repository.NewResponderRepository(dbpool, redisClient, log)
	userRepo := repository.NewUserRepository(dbpool)
	sessionStore := repository.NewSessionStore(redisClient)

	incidentService := service.NewIncidentService(incidentRepo, responderRepo, blobs, ticketPublisher, log, cfg)
	authService := service.NewAuthService(userRepo, responderRepo, sessionStore, log, cfg)

	handler := v1.NewHandler(incidentService, authService, log, cfg)

	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Serve uploaded report images under their public URLs.
	router.Static("/blobs", cfg.BlobDir)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
