package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisclient "github.com/siplanskills/backend/internal/clients/redis"
	"github.com/siplanskills/backend/internal/db"
	"github.com/siplanskills/backend/internal/handlers"
	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/middleware"
	"github.com/siplanskills/backend/internal/repos"
	"github.com/siplanskills/backend/internal/server"
	"github.com/siplanskills/backend/internal/services"
	"github.com/siplanskills/backend/internal/sse"
	"github.com/siplanskills/backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	httpAddr := utils.GetEnv("HTTP_ADDR", ":8080", log)
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	heartbeatInterval := utils.GetEnvAsInt("HEARTBEAT_INTERVAL_SECONDS", 60, log)
	sessionIdleTimeout := utils.GetEnvAsInt("SESSION_IDLE_TIMEOUT_SECONDS", 1800, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	accountRepo := repos.NewAccountRepo(thePG, log)
	accountTokenRepo := repos.NewAccountTokenRepo(thePG, log)
	systemRepo := repos.NewSystemRepo(thePG, log)
	productRepo := repos.NewProductRepo(thePG, log)
	lessonRepo := repos.NewLessonRepo(thePG, log)
	completionRepo := repos.NewCompletionRecordRepo(thePG, log)
	quizRepo := repos.NewQuizRepo(thePG, log)
	quizQuestionRepo := repos.NewQuizQuestionRepo(thePG, log)
	quizAttemptRepo := repos.NewQuizAttemptRepo(thePG, log)
	trackCompletionRepo := repos.NewTrackCompletionRepo(thePG, log)

	// Redis refresh bus
	refreshBus, err := redisclient.NewRefreshBus(log)
	if err != nil {
		log.Error("Could not init refresh bus", "error", err)
		os.Exit(1)
	}
	defer func() { _ = refreshBus.Close() }()

	// Services
	log.Info("Setting up services from main...")
	authService := services.NewAuthService(thePG, log, accountRepo, accountTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	catalogService := services.NewCatalogService(thePG, log, systemRepo, productRepo, lessonRepo)
	progressService := services.NewProgressService(thePG, log, lessonRepo, completionRepo)
	lessonGateService := services.NewLessonGateService(thePG, log, lessonRepo, completionRepo, refreshBus)
	quizService := services.NewQuizService(thePG, log, quizRepo, quizQuestionRepo, quizAttemptRepo, trackCompletionRepo, refreshBus)
	certificationService := services.NewCertificationService(thePG, log, quizRepo, quizAttemptRepo, trackCompletionRepo)
	heartbeatService := services.NewHeartbeatService(thePG, log, accountTokenRepo)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	stopSweeper := heartbeatService.StartSweeper(
		rootCtx,
		time.Duration(heartbeatInterval)*time.Second,
		time.Duration(sessionIdleTimeout)*time.Second,
	)
	defer stopSweeper()

	// Push-side fanout: redis bumps flow through the hub to the
	// progress event streams.
	progressHub := sse.NewHub()
	if err := refreshBus.StartForwarder(rootCtx, progressHub.Publish); err != nil {
		log.Error("Could not start refresh forwarder", "error", err)
		os.Exit(1)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(log, authService)
	catalogHandler := handlers.NewCatalogHandler(log, catalogService)
	lessonHandler := handlers.NewLessonHandler(log, lessonGateService, progressService)
	quizHandler := handlers.NewQuizHandler(log, quizService)
	certificationHandler := handlers.NewCertificationHandler(log, certificationService)
	sessionHandler := handlers.NewSessionHandler(log, heartbeatService, refreshBus, progressHub)
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	router := server.NewRouter(server.RouterConfig{
		AuthHandler:          authHandler,
		AuthMiddleware:       authMiddleware,
		CatalogHandler:       catalogHandler,
		LessonHandler:        lessonHandler,
		QuizHandler:          quizHandler,
		CertificationHandler: certificationHandler,
		SessionHandler:       sessionHandler,
	})

	srv := &http.Server{
		Addr:    httpAddr,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server listening", "addr", httpAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", "error", err)
			rootCancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-rootCtx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown error", "error", err)
	}
}
