package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/rating-system/config"
	"github.com/Dosada05/rating-system/db"
	"github.com/Dosada05/rating-system/handlers"
	"github.com/Dosada05/rating-system/middleware"
	"github.com/Dosada05/rating-system/platform"
	"github.com/Dosada05/rating-system/ranking"
	"github.com/Dosada05/rating-system/repositories"
	api "github.com/Dosada05/rating-system/routes"
	"github.com/Dosada05/rating-system/services"
	"github.com/Dosada05/rating-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация WebSocket Hub
	wsHub := ranking.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	compRepo := repositories.NewPostgresCompetitionRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	rankRepo := repositories.NewPostgresRankRepository(dbConn)
	adjRepo := repositories.NewPostgresAdjustmentRepository(dbConn)
	logger.Info("Repositories initialized")

	// Клиент внешней платформы (роли и никнеймы)
	platformClient := platform.NewClient(cfg.PlatformAPIBaseURL, cfg.PlatformBotToken)

	// Инициализация сервисов
	locks := services.NewPlayerLocks()
	authService := services.NewAuthService(cfg.AdminUser, cfg.AdminPasswordHash, []byte(cfg.JWTSecretKey))
	syncService := services.NewSyncService(rankRepo, platformClient, wsHub, logger)
	scoringService := services.NewScoringService(dbConn, locks, compRepo, playerRepo, rankRepo, adjRepo, logger)
	resultService := services.NewResultService(compRepo, scoringService, syncService, wsHub, logger)
	adjustmentService := services.NewAdjustmentService(dbConn, adjRepo, compRepo, resultService, logger)
	registrationService := services.NewRegistrationService(
		dbConn,
		locks,
		compRepo,
		playerRepo,
		rankRepo,
		services.StaticLimitProvider{Limit: cfg.DefaultRegistrationLimit},
		platformClient,
		syncService,
		logger,
	)
	competitionService := services.NewCompetitionService(dbConn, compRepo, rankRepo, logger)
	logger.Info("Services initialized")

	// Планировщик выгрузки срезов лидерборда в R2 (опционально)
	if cfg.SnapshotsEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")

		snapshotService := services.NewSnapshotService(compRepo, playerRepo, uploader, logger)
		go func() {
			ticker := time.NewTicker(cfg.SnapshotInterval)
			defer ticker.Stop()
			logger.Info("Leaderboard snapshot scheduler started", slog.Duration("interval", cfg.SnapshotInterval))

			for range ticker.C {
				if err := snapshotService.SnapshotAll(context.Background()); err != nil {
					logger.Error("Scheduler: snapshot run failed", slog.Any("error", err))
				}
			}
		}()
	} else {
		logger.Info("R2 configuration incomplete, leaderboard snapshots disabled")
	}

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService)
	competitionHandler := handlers.NewCompetitionHandler(competitionService)
	playerHandler := handlers.NewPlayerHandler(registrationService)
	resultHandler := handlers.NewResultHandler(resultService)
	rankHandler := handlers.NewRankHandler(competitionService)
	adjustmentHandler := handlers.NewAdjustmentHandler(adjustmentService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		middleware.NewAuthenticator([]byte(cfg.JWTSecretKey)),
		authHandler,
		competitionHandler,
		playerHandler,
		resultHandler,
		rankHandler,
		adjustmentHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
