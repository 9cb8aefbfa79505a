// janitor.go — фоновая очистка blob-хранилища.
//
// Janitor периодически удаляет осиротевшие payload-файлы: остатки
// упавших записей и превью, проигравших гонку записи. Файлы моложе
// grace-периода не трогаются — запись могла ещё не зафиксировать
// метаданные.
//
// Запускается как горутина с периодическим тикером (DM_JANITOR_INTERVAL).
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/facewatch/dashboard-module/internal/domain/model"
)

// Prometheus-метрики janitor.
var (
	janitorRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dm_janitor_runs_total",
		Help: "Общее количество запусков очистки хранилища",
	})
	janitorRemovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dm_janitor_files_removed_total",
		Help: "Общее количество удалённых осиротевших файлов",
	})
	janitorDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dm_janitor_duration_seconds",
		Help:    "Длительность выполнения очистки в секундах",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
)

// OrphanSweeper — часть blob-хранилища, выполняющая очистку namespace.
// Реализуется DiskStore.
type OrphanSweeper interface {
	SweepOrphans(ctx context.Context, ns model.BlobNamespace, grace time.Duration) (int, error)
}

// JanitorResult — результат одного запуска очистки.
type JanitorResult struct {
	// RemovedCount — количество удалённых файлов
	RemovedCount int
	// Errors — количество namespace, завершившихся ошибкой
	Errors int
	// Duration — длительность выполнения
	Duration time.Duration
}

// JanitorService — сервис фоновой очистки хранилища.
type JanitorService struct {
	sweeper  OrphanSweeper
	interval time.Duration
	grace    time.Duration
	logger   *slog.Logger

	mu     sync.Mutex // защита от параллельного запуска RunOnce
	cancel context.CancelFunc
}

// NewJanitorService создаёт сервис очистки.
func NewJanitorService(sweeper OrphanSweeper, interval, grace time.Duration, logger *slog.Logger) *JanitorService {
	return &JanitorService{
		sweeper:  sweeper,
		interval: interval,
		grace:    grace,
		logger:   logger.With(slog.String("component", "janitor")),
	}
}

// Start запускает фоновую горутину очистки с периодическим тикером.
// Вызывается один раз при старте приложения.
func (js *JanitorService) Start(ctx context.Context) {
	jCtx, cancel := context.WithCancel(ctx)
	js.cancel = cancel

	go js.run(jCtx)

	js.logger.Info("Очистка хранилища запущена",
		slog.String("interval", js.interval.String()),
		slog.String("grace", js.grace.String()),
	)
}

// Stop останавливает фоновый процесс очистки.
func (js *JanitorService) Stop() {
	if js.cancel != nil {
		js.cancel()
	}
	js.logger.Info("Очистка хранилища остановлена")
}

// run — основной цикл фоновой горутины.
func (js *JanitorService) run(ctx context.Context) {
	// Первый запуск — сразу после старта
	js.RunOnce(ctx)

	ticker := time.NewTicker(js.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			js.RunOnce(ctx)
		}
	}
}

// RunOnce выполняет один проход очистки по обоим namespace.
// Защищён мьютексом от параллельного запуска.
func (js *JanitorService) RunOnce(ctx context.Context) JanitorResult {
	js.mu.Lock()
	defer js.mu.Unlock()

	start := time.Now()
	janitorRunsTotal.Inc()

	var result JanitorResult
	for _, ns := range []model.BlobNamespace{model.NamespaceOriginals, model.NamespaceThumbnails} {
		removed, err := js.sweeper.SweepOrphans(ctx, ns, js.grace)
		if err != nil {
			result.Errors++
			js.logger.Error("Ошибка очистки namespace",
				slog.String("namespace", string(ns)),
				slog.String("error", err.Error()),
			)
			continue
		}
		result.RemovedCount += removed
	}

	result.Duration = time.Since(start)
	janitorRemovedTotal.Add(float64(result.RemovedCount))
	janitorDurationSeconds.Observe(result.Duration.Seconds())

	if result.RemovedCount > 0 || result.Errors > 0 {
		js.logger.Info("Очистка завершена",
			slog.Int("removed", result.RemovedCount),
			slog.Int("errors", result.Errors),
			slog.Duration("duration", result.Duration),
		)
	}

	return result
}
