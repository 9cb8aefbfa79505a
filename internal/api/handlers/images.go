// images.go — HTTP handlers снимков и превью.
// POST /api/v1/images — загрузка оригинала (multipart)
// GET /api/v1/images/{identifier} — метаданные
// GET /api/v1/images/by-image-id/{image_id} — метаданные по бизнес-идентификатору
// GET /api/v1/images/{identifier}/bytes — содержимое оригинала (streaming)
// GET /api/v1/images/{identifier}/thumb — превью (генерация при первом обращении)
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/facewatch/dashboard-module/internal/api/errors"
	"github.com/bigkaa/facewatch/dashboard-module/internal/service"
)

// ImagesHandler — обработчик endpoints снимков.
type ImagesHandler struct {
	images        *service.ImageService
	maxUploadSize int64
	logger        *slog.Logger
}

// NewImagesHandler создаёт обработчик снимков.
func NewImagesHandler(images *service.ImageService, maxUploadSize int64, logger *slog.Logger) *ImagesHandler {
	return &ImagesHandler{
		images:        images,
		maxUploadSize: maxUploadSize,
		logger:        logger.With(slog.String("component", "images_handler")),
	}
}

// UploadImage обрабатывает POST /api/v1/images.
// Multipart form: file (обязательно), image_id (опционально),
// event_ts (опционально, RFC3339).
func (h *ImagesHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.FileTooLarge(w, fmt.Sprintf("Файл превышает лимит %d байт", h.maxUploadSize))
			return
		}
		apierrors.ValidationError(w, fmt.Sprintf("Ошибка парсинга multipart: %s", err.Error()))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.ValidationError(w, "Поле 'file' обязательно")
		return
	}
	defer file.Close()

	params := service.UploadParams{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		ImageID:     r.FormValue("image_id"),
	}

	if raw := r.FormValue("event_ts"); raw != "" {
		ts, parseErr := time.Parse(time.RFC3339, raw)
		if parseErr != nil {
			apierrors.ValidationError(w, "Параметр event_ts должен быть в формате RFC3339")
			return
		}
		params.EventTS = &ts
	}

	record, err := h.images.Upload(r.Context(), file, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// GetImage обрабатывает GET /api/v1/images/{identifier}.
// Возвращает метаданные оригинала.
func (h *ImagesHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	record, err := h.images.Metadata(r.Context(), identifier)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// GetImageByImageID обрабатывает GET /api/v1/images/by-image-id/{image_id}.
// Явный поиск по бизнес-идентификатору без UUID-эвристики.
func (h *ImagesHandler) GetImageByImageID(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "image_id")

	record, err := h.images.Metadata(r.Context(), imageID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// GetImageBytes обрабатывает GET /api/v1/images/{identifier}/bytes.
// Отдаёт содержимое оригинала потоком.
func (h *ImagesHandler) GetImageBytes(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	rc, record, err := h.images.OpenOriginal(r.Context(), identifier)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer rc.Close()

	h.serveBlob(w, r, rc, record.ContentType, record.Filename, record.Size)
}

// GetImageThumb обрабатывает GET /api/v1/images/{identifier}/thumb.
// Отдаёт превью, генерируя его при первом обращении.
func (h *ImagesHandler) GetImageThumb(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	rc, record, err := h.images.OpenThumbnail(r.Context(), identifier)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer rc.Close()

	h.serveBlob(w, r, rc, record.ContentType, record.Filename, record.Size)
}

// serveBlob записывает содержимое объекта в ответ с нужными заголовками.
// Ошибка streaming после отправки заголовков только логируется.
func (h *ImagesHandler) serveBlob(w http.ResponseWriter, r *http.Request, rc io.Reader, contentType, filename string, size int64) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error("Ошибка streaming содержимого",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}
