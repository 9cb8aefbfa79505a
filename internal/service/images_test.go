package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/bigkaa/facewatch/dashboard-module/internal/storage/blobstore"
)

func newTestImageService(store blobstore.Store) *ImageService {
	cache := NewCacheService(100, 5*time.Minute)
	resolver := NewResolverService(store, cache, testLogger())
	rendition := NewRenditionService(200, 200, 90, testLogger())
	thumbnail := NewThumbnailService(store, rendition, testLogger())
	return NewImageService(store, resolver, thumbnail, testLogger())
}

// TestImageService_UploadAndServe проверяет полный цикл:
// загрузка оригинала, метаданные, выдача содержимого и превью.
func TestImageService_UploadAndServe(t *testing.T) {
	store := blobstore.NewMemoryStore()
	is := newTestImageService(store)
	ctx := context.Background()

	src := makeJPEG(t, 800, 600)
	eventTS := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	rec, err := is.Upload(ctx, bytes.NewReader(src), UploadParams{
		Filename: "camera-01.jpg",
		ImageID:  "evt-100",
		EventTS:  &eventTS,
	})
	if err != nil {
		t.Fatalf("ошибка загрузки: %v", err)
	}
	if rec.ImageID == nil || *rec.ImageID != "evt-100" {
		t.Errorf("ImageID = %v, ожидался evt-100", rec.ImageID)
	}

	// Метаданные по бизнес-идентификатору
	meta, err := is.Metadata(ctx, "evt-100")
	if err != nil {
		t.Fatalf("ошибка получения метаданных: %v", err)
	}
	if meta.BlobID != rec.BlobID {
		t.Errorf("метаданные ссылаются на %q, ожидался %q", meta.BlobID, rec.BlobID)
	}

	// Оригинал по нативному идентификатору
	rc, got, err := is.OpenOriginal(ctx, rec.BlobID)
	if err != nil {
		t.Fatalf("ошибка выдачи оригинала: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(data, src) {
		t.Error("содержимое оригинала не совпадает")
	}
	if got.ContentType != "image/jpeg" {
		t.Errorf("content_type = %q", got.ContentType)
	}

	// Превью по бизнес-идентификатору
	trc, thumb, err := is.OpenThumbnail(ctx, "evt-100")
	if err != nil {
		t.Fatalf("ошибка выдачи превью: %v", err)
	}
	tdata, _ := io.ReadAll(trc)
	trc.Close()

	w, h := decodeJPEGSize(t, tdata)
	if w != 200 || h != 150 {
		t.Errorf("размер превью %dx%d, ожидался 200x150", w, h)
	}
	if thumb.BackReference == nil || *thumb.BackReference != rec.BlobID {
		t.Errorf("BackReference превью = %v, ожидался %q", thumb.BackReference, rec.BlobID)
	}

	// Повторная выдача превью возвращает ту же запись
	trc2, thumb2, err := is.OpenThumbnail(ctx, rec.BlobID)
	if err != nil {
		t.Fatalf("ошибка повторной выдачи превью: %v", err)
	}
	trc2.Close()
	if thumb2.BlobID != thumb.BlobID {
		t.Errorf("повторная выдача вернула другое превью: %q != %q", thumb2.BlobID, thumb.BlobID)
	}
}

// TestImageService_UploadValidation проверяет валидацию параметров загрузки.
func TestImageService_UploadValidation(t *testing.T) {
	is := newTestImageService(blobstore.NewMemoryStore())

	_, err := is.Upload(context.Background(), bytes.NewReader([]byte("данные")), UploadParams{})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("ожидался ErrValidation, получено: %v", err)
	}
}

// TestImageService_NotFound проверяет выдачу для неизвестного
// идентификатора.
func TestImageService_NotFound(t *testing.T) {
	is := newTestImageService(blobstore.NewMemoryStore())
	ctx := context.Background()

	if _, _, err := is.OpenOriginal(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("OpenOriginal: ожидался ErrNotFound, получено %v", err)
	}
	if _, _, err := is.OpenThumbnail(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("OpenThumbnail: ожидался ErrNotFound, получено %v", err)
	}
	if _, err := is.Metadata(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Metadata: ожидался ErrNotFound, получено %v", err)
	}
}
