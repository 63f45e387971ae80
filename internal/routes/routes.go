package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"onboarding-system/internal/repositories"
	"onboarding-system/internal/services"
	"onboarding-system/pkg/config"
	"onboarding-system/pkg/filestorage"
	"onboarding-system/pkg/middleware"
	"onboarding-system/pkg/service"
	"onboarding-system/pkg/ticketstore"
)

func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	tickets *ticketstore.Store,
	logger *zap.Logger,
	cfg *config.Config,
) {
	logger.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)
	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Storage.RootDir)
	if err != nil {
		logger.Fatal("не удалось создать файловое хранилище", zap.Error(err))
	}

	// --- 1. РЕПОЗИТОРИИ ---
	attachmentRepo := repositories.NewAttachmentRepository(dbConn, logger)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- 2. СЕРВИСЫ ---
	attachmentService := services.NewAttachmentService(
		attachmentRepo,
		cacheRepo,
		fileStorage,
		tickets,
		&cfg.Storage,
		logger,
	)

	// --- 3. МАРШРУТЫ ---
	runAttachmentRouter(api, attachmentService, authMW, logger)
	runUploadRouter(api, attachmentService, logger)
}
