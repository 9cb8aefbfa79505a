// Пакет server — HTTP-сервер Dashboard Module с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на API Gateway.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/facewatch/dashboard-module/internal/api/handlers"
	"github.com/bigkaa/facewatch/dashboard-module/internal/config"
)

// Handlers — обработчики, регистрируемые на маршрутах сервера.
type Handlers struct {
	Health  *handlers.HealthHandler
	Alerts  *handlers.AlertsHandler
	Images  *handlers.ImagesHandler
	Stats   *handlers.StatsHandler
	People  *handlers.PeopleHandler
	Cameras *handlers.CamerasHandler
}

// Server — HTTP-сервер Dashboard Module.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// middlewares — дополнительные middleware (metrics, logging), добавляются в порядке переданного среза.
func New(cfg *config.Config, logger *slog.Logger, h Handlers, middlewares ...func(http.Handler) http.Handler) *Server {
	router := chi.NewRouter()

	// Применяем переданные middleware
	for _, mw := range middlewares {
		router.Use(mw)
	}

	// Health и метрики
	router.Get("/health/live", h.Health.HealthLive)
	router.Get("/health/ready", h.Health.HealthReady)
	router.Get("/metrics", h.Health.GetMetrics)

	// API v1
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/alerts", h.Alerts.ListAlerts)
		r.Get("/alerts/{alert_id}", h.Alerts.GetAlert)

		r.Post("/images", h.Images.UploadImage)
		r.Get("/images/by-image-id/{image_id}", h.Images.GetImageByImageID)
		r.Get("/images/{identifier}", h.Images.GetImage)
		r.Get("/images/{identifier}/bytes", h.Images.GetImageBytes)
		r.Get("/images/{identifier}/thumb", h.Images.GetImageThumb)

		r.Get("/stats", h.Stats.GetStats)
		r.Get("/stats/over-time", h.Stats.GetAlertsOverTime)

		r.Get("/people", h.People.ListPeople)
		r.Get("/people/{person_id}", h.People.GetPerson)
		r.Get("/people/{person_id}/images", h.People.GetPersonImages)

		r.Get("/cameras", h.Cameras.ListCameras)
		r.Get("/cameras/{camera_id}/people", h.Cameras.GetCameraPeople)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
