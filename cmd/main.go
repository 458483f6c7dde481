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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/Dosada05/bracket-pools/config"
	"github.com/Dosada05/bracket-pools/db"
	"github.com/Dosada05/bracket-pools/handlers"
	"github.com/Dosada05/bracket-pools/live"
	"github.com/Dosada05/bracket-pools/middleware"
	"github.com/Dosada05/bracket-pools/repositories"
	api "github.com/Dosada05/bracket-pools/routes"
	"github.com/Dosada05/bracket-pools/services"
	"github.com/Dosada05/bracket-pools/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

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

	// Инициализация загрузчика файлов (Cloudflare R2) для архивов аудита
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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

	// Инициализация WebSocket Hub
	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	poolRepo := repositories.NewPostgresPoolRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	spreadRepo := repositories.NewPostgresSpreadRepository(dbConn)
	matchupRepo := repositories.NewPostgresMatchupRepository(dbConn)
	ownershipRepo := repositories.NewPostgresOwnershipRepository(dbConn)
	auditRepo := repositories.NewPostgresAuditRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	logger.Info("repositories initialized")

	// Менеджер транзакций: один проход разрешения = одна транзакция
	txRunner := db.NewTxRunner(dbConn, logger)

	// Инициализация сервисов
	resolutionService := services.NewResolutionService(
		txRunner,
		poolRepo,
		eventRepo,
		spreadRepo,
		matchupRepo,
		ownershipRepo,
		auditRepo,
		participantRepo,
		wsHub,
		logger,
	)
	correctionService := services.NewCorrectionService(
		txRunner,
		poolRepo,
		eventRepo,
		spreadRepo,
		matchupRepo,
		ownershipRepo,
		auditRepo,
		participantRepo,
		wsHub,
		logger,
	)
	poolService := services.NewPoolService(poolRepo, matchupRepo, ownershipRepo)
	auditService := services.NewAuditService(poolRepo, auditRepo, participantRepo, cloudflareUploader, logger)
	logger.Info("services initialized")

	// Инициализация обработчиков HTTP
	auth := middleware.NewAuth(cfg.JWTSecretKey)
	resolutionHandler := handlers.NewResolutionHandler(resolutionService, correctionService)
	poolHandler := handlers.NewPoolHandler(poolService, auditService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, poolService)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		auth,
		resolutionHandler,
		poolHandler,
		webSocketHandler,
		cfg.CORSAllowedOrigins,
	)
	logger.Info("routes configured")

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
		}
		logger.Info("server stopped gracefully")
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
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
