package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dkoroteev/eventcrew-backend/internal/config"
	"github.com/dkoroteev/eventcrew-backend/internal/db"
	"github.com/dkoroteev/eventcrew-backend/internal/goroutine"
	httpHandlers "github.com/dkoroteev/eventcrew-backend/internal/http/handlers"
	httpRouter "github.com/dkoroteev/eventcrew-backend/internal/http/router"
	"github.com/dkoroteev/eventcrew-backend/internal/logger"
	"github.com/dkoroteev/eventcrew-backend/internal/repository"
	"github.com/dkoroteev/eventcrew-backend/internal/service"
	"github.com/dkoroteev/eventcrew-backend/internal/storage"
	"github.com/dkoroteev/eventcrew-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}
	goroutine.SetLogger(logger.Log)

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	fileStorage, err := storage.NewFileStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	cache := service.NewCacheService()

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	bookingRepo := repository.NewBookingRepository(dbConn)
	disputeRepo := repository.NewDisputeRepository(dbConn, bookingRepo)
	reviewRepo := repository.NewReviewRepository(dbConn)
	messageRepo := repository.NewMessageRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	mediaRepo := repository.NewMediaRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	profileService := service.NewProfileService(userRepo, cache)
	notificationService := service.NewNotificationService(notificationRepo)
	bookingService := service.NewBookingService(bookingRepo, notificationService)
	disputeService := service.NewDisputeService(disputeRepo, bookingRepo, notificationService)
	reviewService := service.NewReviewService(reviewRepo, bookingRepo, cache)
	messageService := service.NewMessageService(messageRepo, bookingRepo, notificationService)

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	go hub.Run()

	bookingService.SetHub(hub)
	disputeService.SetHub(hub)
	messageService.SetHub(hub)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	profileHandler := httpHandlers.NewProfileHandler(profileService)
	bookingHandler := httpHandlers.NewBookingHandler(bookingService)
	disputeHandler := httpHandlers.NewDisputeHandler(disputeService)
	reviewHandler := httpHandlers.NewReviewHandler(reviewService)
	messageHandler := httpHandlers.NewMessageHandler(messageService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	mediaHandler := httpHandlers.NewMediaHandler(mediaRepo, fileStorage)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		profileHandler,
		bookingHandler,
		disputeHandler,
		reviewHandler,
		messageHandler,
		notificationHandler,
		mediaHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
