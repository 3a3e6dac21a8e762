package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/maslovdev/jobmarket-backend/internal/config"
	"github.com/maslovdev/jobmarket-backend/internal/db"
	"github.com/maslovdev/jobmarket-backend/internal/goroutine"
	httpHandlers "github.com/maslovdev/jobmarket-backend/internal/http/handlers"
	httpRouter "github.com/maslovdev/jobmarket-backend/internal/http/router"
	"github.com/maslovdev/jobmarket-backend/internal/logger"
	"github.com/maslovdev/jobmarket-backend/internal/repository"
	"github.com/maslovdev/jobmarket-backend/internal/service"
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
		logger.Init(cfg.LogLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL, cfg.StoreTimeout)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret)

	// Репозитории.
	jobRepo := repository.NewJobRepository(dbConn)
	responseRepo := repository.NewResponseRepository(dbConn)
	assignmentRepo := repository.NewAssignmentRepository(dbConn)
	ledgerRepo := repository.NewLedgerRepository(dbConn)
	ratingRepo := repository.NewRatingRepository(dbConn)
	userRepo := repository.NewUserRepository(dbConn)

	// Сервисы.
	ledgerService := service.NewLedgerService(ledgerRepo, assignmentRepo, jobRepo, cfg.PlatformFeeRate, cfg.StoreTimeout)
	jobService := service.NewJobService(jobRepo, assignmentRepo, ledgerService, cfg.StoreTimeout)
	responseService := service.NewResponseService(responseRepo, jobRepo, assignmentRepo, cfg.StoreTimeout)
	assignmentService := service.NewAssignmentService(assignmentRepo, jobRepo, cfg.StoreTimeout)
	ratingService := service.NewRatingService(ratingRepo, assignmentRepo, jobRepo, cfg.RatingEditWindow, cfg.StoreTimeout)
	userService := service.NewUserService(userRepo, cfg.StoreTimeout)

	// Фоновая сверка счётчиков «полезно»: денормализованный счётчик на оценке
	// может разъехаться при сбое между вставкой голоса и пересчётом.
	recovery := goroutine.NewRecoveryHandler(logger.Log)
	recovery.SafeGoWithContext(ctx, func(ctx context.Context) {
		ticker := time.NewTicker(cfg.HelpfulReconcileInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fixed, err := ratingRepo.ReconcileHelpfulCounts(ctx)
				if err != nil {
					logger.Log.WithError(err).Error("сверка счётчиков не удалась")
					continue
				}
				if fixed > 0 {
					logger.Log.WithField("fixed", fixed).Warn("счётчики полезности выправлены")
				}
			}
		}
	})

	// HTTP хэндлеры.
	jobHandler := httpHandlers.NewJobHandler(jobService)
	responseHandler := httpHandlers.NewResponseHandler(responseService)
	assignmentHandler := httpHandlers.NewAssignmentHandler(assignmentService)
	ledgerHandler := httpHandlers.NewLedgerHandler(ledgerService)
	ratingHandler := httpHandlers.NewRatingHandler(ratingService)
	userHandler := httpHandlers.NewUserHandler(userService)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	engine := httpRouter.SetupRouter(cfg, jobHandler, responseHandler, assignmentHandler, ledgerHandler, ratingHandler, userHandler, healthHandler, tokenManager)

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

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
