// thumbnail.go — кэш превью поверх blob-хранилища.
//
// ThumbnailService отдаёт превью оригинала, генерируя его при первом
// обращении (lazy population). Гарантия кэша: на один оригинал
// существует не более одного превью. Гарантию обеспечивают два уровня:
//   - singleflight схлопывает конкурентные генерации внутри процесса
//   - уникальный индекс (namespace, back_reference) в PostgreSQL
//     разрешает гонку между экземплярами модуля
//
// Экземпляр, проигравший гонку записи, получает ErrDuplicateKey,
// выбрасывает свой результат и перечитывает запись победителя.
// Ошибки генерации и чтения не кэшируются: следующий запрос
// повторяет попытку.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/bigkaa/facewatch/dashboard-module/internal/domain/model"
	"github.com/bigkaa/facewatch/dashboard-module/internal/storage/blobstore"
)

// Prometheus-метрики кэша превью.
var (
	thumbHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dm_thumbnail_hits_total",
		Help: "Количество запросов превью, закрытых существующей записью.",
	})
	thumbGenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dm_thumbnail_generations_total",
		Help: "Количество генераций превью (по результату).",
	}, []string{"status"})
	thumbGenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dm_thumbnail_generation_duration_seconds",
		Help:    "Длительность генерации превью (чтение, масштабирование, запись).",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
)

// ThumbnailService — кэш превью с генерацией при первом обращении.
type ThumbnailService struct {
	store     blobstore.Store
	rendition *RenditionService
	group     singleflight.Group
	logger    *slog.Logger
}

// NewThumbnailService создаёт кэш превью.
func NewThumbnailService(store blobstore.Store, rendition *RenditionService, logger *slog.Logger) *ThumbnailService {
	return &ThumbnailService{
		store:     store,
		rendition: rendition,
		logger:    logger.With(slog.String("component", "thumbnail_cache")),
	}
}

// GetOrCreate возвращает запись превью для оригинала, генерируя его
// при отсутствии. Конкурентные вызовы для одного оригинала получают
// один и тот же результат.
//
// Оригинал, который не декодируется, превью не получает:
// возвращается ErrUnsupportedFormat, в кэше ничего не остаётся.
func (ts *ThumbnailService) GetOrCreate(ctx context.Context, original *model.BlobRecord) (*model.BlobRecord, error) {
	// Быстрый путь: превью уже есть
	rec, err := ts.store.FindByBackReference(ctx, model.NamespaceThumbnails, original.BlobID)
	if err == nil {
		thumbHitsTotal.Inc()
		return rec, nil
	}
	if !errors.Is(err, blobstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: поиск превью для %s: %w", ErrStorageUnavailable, original.BlobID, err)
	}

	// Конкурентные генерации одного оригинала схлопываются в одну.
	// Генерация выполняется на контексте, отвязанном от инициатора:
	// отмена первого вызова не должна ронять ожидающие вызовы
	// с живыми контекстами, а готовый результат нужен следующим
	// запросам в любом случае.
	flightCtx := context.WithoutCancel(ctx)
	result, err, _ := ts.group.Do(original.BlobID, func() (any, error) {
		return ts.populate(flightCtx, original)
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.BlobRecord), nil
}

// populate генерирует превью и записывает его в хранилище.
// Выполняется внутри singleflight: на один оригинал — не более
// одного активного вызова в процессе. Контекст уже отвязан от
// отмены инициатора, генерация всегда доводится до конца.
func (ts *ThumbnailService) populate(ctx context.Context, original *model.BlobRecord) (*model.BlobRecord, error) {
	start := time.Now()

	// Повторная проверка: пока вызов ждал singleflight, превью
	// мог записать другой экземпляр модуля
	if rec, err := ts.store.FindByBackReference(ctx, model.NamespaceThumbnails, original.BlobID); err == nil {
		thumbHitsTotal.Inc()
		return rec, nil
	} else if !errors.Is(err, blobstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: поиск превью для %s: %w", ErrStorageUnavailable, original.BlobID, err)
	}

	rc, _, err := ts.store.OpenRead(ctx, original.BlobID)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			thumbGenerationsTotal.WithLabelValues("original_missing").Inc()
			return nil, ErrNotFound
		}
		thumbGenerationsTotal.WithLabelValues("read_error").Inc()
		return nil, fmt.Errorf("%w: чтение оригинала %s: %w", ErrStorageUnavailable, original.BlobID, err)
	}
	defer rc.Close()

	data, err := ts.rendition.Generate(rc)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			thumbGenerationsTotal.WithLabelValues("unsupported").Inc()
			ts.logger.Warn("Оригинал не декодируется, превью не создано",
				slog.String("blob_id", original.BlobID),
				slog.String("content_type", original.ContentType),
			)
			return nil, err
		}
		thumbGenerationsTotal.WithLabelValues("generate_error").Inc()
		return nil, fmt.Errorf("генерация превью для %s: %w", original.BlobID, err)
	}

	rec, err := ts.store.Write(ctx, model.NamespaceThumbnails, bytes.NewReader(data), blobstore.WriteMeta{
		Filename:      thumbnailFilename(original.Filename),
		ContentType:   "image/jpeg",
		BackReference: &original.BlobID,
		EventTS:       original.EventTS,
	})
	if err != nil {
		// Проигранная гонка между экземплярами: перечитываем победителя
		if errors.Is(err, blobstore.ErrDuplicateKey) {
			thumbGenerationsTotal.WithLabelValues("lost_race").Inc()
			ts.logger.Debug("Гонка записи превью проиграна, используется запись победителя",
				slog.String("blob_id", original.BlobID),
			)
			return ts.store.FindByBackReference(ctx, model.NamespaceThumbnails, original.BlobID)
		}
		thumbGenerationsTotal.WithLabelValues("write_error").Inc()
		return nil, fmt.Errorf("%w: запись превью для %s: %w", ErrStorageUnavailable, original.BlobID, err)
	}

	thumbGenerationsTotal.WithLabelValues("success").Inc()
	thumbGenerationDuration.Observe(time.Since(start).Seconds())

	ts.logger.Info("Превью создано",
		slog.String("original_id", original.BlobID),
		slog.String("thumbnail_id", rec.BlobID),
		slog.Int64("bytes", rec.Size),
		slog.Duration("duration", time.Since(start)),
	)

	return rec, nil
}

// OpenThumbnail открывает содержимое превью для выдачи клиенту.
func (ts *ThumbnailService) OpenThumbnail(ctx context.Context, rec *model.BlobRecord) (io.ReadCloser, error) {
	rc, _, err := ts.store.OpenRead(ctx, rec.BlobID)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: чтение превью %s: %w", ErrStorageUnavailable, rec.BlobID, err)
	}
	return rc, nil
}

// thumbnailFilename строит имя файла превью из имени оригинала.
func thumbnailFilename(original string) string {
	if original == "" {
		return "thumbnail.jpg"
	}
	return "thumb_" + original
}
