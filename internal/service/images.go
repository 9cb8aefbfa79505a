// images.go — фасад выдачи снимков.
//
// Единая точка входа HTTP-слоя: принимает пользовательский
// идентификатор, разрешает его в оригинал и отдаёт метаданные,
// содержимое оригинала или превью. Выдача — streaming, содержимое
// оригинала не буферизуется.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/facewatch/dashboard-module/internal/domain/model"
	"github.com/bigkaa/facewatch/dashboard-module/internal/storage/blobstore"
)

// Prometheus-метрики фасада выдачи.
var (
	imageServesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dm_image_serves_total",
		Help: "Количество выдач содержимого (по виду и результату).",
	}, []string{"kind", "status"})

	imageUploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dm_image_uploads_total",
		Help: "Количество загрузок оригиналов (по результату).",
	}, []string{"status"})

	imageUploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dm_image_upload_bytes_total",
		Help: "Общее количество принятых байт оригиналов.",
	})
)

// UploadParams — параметры загрузки оригинала.
type UploadParams struct {
	// Filename — имя файла из multipart-формы
	Filename string
	// ContentType — MIME-тип из multipart-формы (может быть пустым)
	ContentType string
	// ImageID — бизнес-идентификатор события детекции (опционально)
	ImageID string
	// EventTS — время события детекции (опционально)
	EventTS *time.Time
}

// ImageService — фасад выдачи и загрузки снимков.
type ImageService struct {
	store     blobstore.Store
	resolver  *ResolverService
	thumbnail *ThumbnailService
	logger    *slog.Logger
}

// NewImageService создаёт фасад выдачи снимков.
func NewImageService(
	store blobstore.Store,
	resolver *ResolverService,
	thumbnail *ThumbnailService,
	logger *slog.Logger,
) *ImageService {
	return &ImageService{
		store:     store,
		resolver:  resolver,
		thumbnail: thumbnail,
		logger:    logger.With(slog.String("component", "image_service")),
	}
}

// Metadata возвращает метаданные оригинала по идентификатору.
func (is *ImageService) Metadata(ctx context.Context, identifier string) (*model.BlobRecord, error) {
	return is.resolver.Resolve(ctx, identifier)
}

// OpenOriginal открывает содержимое оригинала по идентификатору.
// Вызывающий код обязан закрыть ReadCloser.
func (is *ImageService) OpenOriginal(ctx context.Context, identifier string) (io.ReadCloser, *model.BlobRecord, error) {
	record, err := is.resolver.Resolve(ctx, identifier)
	if err != nil {
		imageServesTotal.WithLabelValues("original", "resolve_error").Inc()
		return nil, nil, err
	}

	rc, _, err := is.store.OpenRead(ctx, record.BlobID)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			imageServesTotal.WithLabelValues("original", "not_found").Inc()
			return nil, nil, ErrNotFound
		}
		imageServesTotal.WithLabelValues("original", "error").Inc()
		return nil, nil, fmt.Errorf("%w: чтение оригинала %s: %w", ErrStorageUnavailable, record.BlobID, err)
	}

	imageServesTotal.WithLabelValues("original", "success").Inc()
	return rc, record, nil
}

// OpenThumbnail открывает превью оригинала по идентификатору,
// генерируя его при необходимости. Вызывающий код обязан закрыть
// ReadCloser.
func (is *ImageService) OpenThumbnail(ctx context.Context, identifier string) (io.ReadCloser, *model.BlobRecord, error) {
	record, err := is.resolver.Resolve(ctx, identifier)
	if err != nil {
		imageServesTotal.WithLabelValues("thumbnail", "resolve_error").Inc()
		return nil, nil, err
	}

	thumb, err := is.thumbnail.GetOrCreate(ctx, record)
	if err != nil {
		imageServesTotal.WithLabelValues("thumbnail", "generate_error").Inc()
		return nil, nil, err
	}

	rc, err := is.thumbnail.OpenThumbnail(ctx, thumb)
	if err != nil {
		imageServesTotal.WithLabelValues("thumbnail", "error").Inc()
		return nil, nil, err
	}

	imageServesTotal.WithLabelValues("thumbnail", "success").Inc()
	return rc, thumb, nil
}

// Upload сохраняет оригинал из reader и возвращает созданную запись.
func (is *ImageService) Upload(ctx context.Context, r io.Reader, params UploadParams) (*model.BlobRecord, error) {
	if params.Filename == "" {
		return nil, fmt.Errorf("%w: не указано имя файла", ErrValidation)
	}

	meta := blobstore.WriteMeta{
		Filename:    params.Filename,
		ContentType: params.ContentType,
		EventTS:     params.EventTS,
	}
	if params.ImageID != "" {
		meta.ImageID = &params.ImageID
	}

	record, err := is.store.Write(ctx, model.NamespaceOriginals, r, meta)
	if err != nil {
		imageUploadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: запись оригинала: %w", ErrStorageUnavailable, err)
	}

	imageUploadsTotal.WithLabelValues("success").Inc()
	imageUploadBytesTotal.Add(float64(record.Size))

	is.logger.Info("Оригинал загружен",
		slog.String("blob_id", record.BlobID),
		slog.String("filename", record.Filename),
		slog.Int64("size", record.Size),
	)

	return record, nil
}
