// Точка входа Dashboard Module — модуль дашборда системы Face Watch.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// инициализирует blob-хранилище и сервисный слой (резолвер, кэш превью,
// фасад выдачи), запускает фоновые задачи (janitor, topologymetrics),
// HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/facewatch/dashboard-module/internal/api/handlers"
	"github.com/bigkaa/facewatch/dashboard-module/internal/api/middleware"
	"github.com/bigkaa/facewatch/dashboard-module/internal/config"
	"github.com/bigkaa/facewatch/dashboard-module/internal/database"
	"github.com/bigkaa/facewatch/dashboard-module/internal/repository"
	"github.com/bigkaa/facewatch/dashboard-module/internal/server"
	"github.com/bigkaa/facewatch/dashboard-module/internal/service"
	"github.com/bigkaa/facewatch/dashboard-module/internal/storage/blobstore"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Dashboard Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// Предупреждение о дефолтном значении topologymetrics
	if os.Getenv("DM_DEPHEALTH_GROUP") == "" {
		logger.Warn("DM_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
	// Проверка здоровья PostgreSQL будет идти через существующий пул соединений,
	// что позволяет обнаружить его исчерпание.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Repositories
	alertRepo := repository.NewAlertRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)
	blobMetaRepo := repository.NewBlobMetadataRepository(pool)

	// 6. Blob-хранилище (payload на диске, метаданные в PostgreSQL)
	store, err := blobstore.NewDiskStore(cfg.DataDir, blobMetaRepo, logger)
	if err != nil {
		logger.Error("Ошибка инициализации blob-хранилища", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Blob-хранилище инициализировано", slog.String("data_dir", cfg.DataDir))

	// 7. Services
	cache := service.NewCacheService(cfg.CacheSize, cfg.CacheTTL)
	resolver := service.NewResolverService(store, cache, logger)
	rendition := service.NewRenditionService(cfg.ThumbWidth, cfg.ThumbHeight, cfg.ThumbQuality, logger)
	thumbnailSvc := service.NewThumbnailService(store, rendition, logger)
	imageSvc := service.NewImageService(store, resolver, thumbnailSvc, logger)
	alertSvc := service.NewAlertService(alertRepo, statsRepo, logger)

	// 8. Фоновая очистка хранилища
	janitor := service.NewJanitorService(store, cfg.JanitorInterval, cfg.JanitorGrace, logger)
	janitor.Start(ctx)
	defer janitor.Stop()

	// 9. topologymetrics — мониторинг зависимостей (PostgreSQL)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		cfg.DephealthServiceID,
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.DephealthCheckInterval,
		cfg.DephealthIsEntry,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
			defer dephealthSvc.Stop()
		}
	}

	// 10. Handlers
	pgChecker := database.NewReadinessChecker(pool)
	h := server.Handlers{
		Health:  handlers.NewHealthHandler(pgChecker, store),
		Alerts:  handlers.NewAlertsHandler(alertSvc),
		Images:  handlers.NewImagesHandler(imageSvc, cfg.MaxUploadSize, logger),
		Stats:   handlers.NewStatsHandler(alertSvc),
		People:  handlers.NewPeopleHandler(alertSvc),
		Cameras: handlers.NewCamerasHandler(alertSvc),
	}

	// 11. HTTP-сервер с middleware (метрики, логирование)
	srv := server.New(cfg, logger, h,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)

	// 12. Запуск сервера (блокирующий вызов с graceful shutdown)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Dashboard Module остановлен")
}
