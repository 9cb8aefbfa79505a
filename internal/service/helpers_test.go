package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/bigkaa/facewatch/dashboard-module/internal/domain/model"
	"github.com/bigkaa/facewatch/dashboard-module/internal/storage/blobstore"
)

// testLogger — логгер для тестов, вывод отбрасывается.
func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// makeJPEG генерирует тестовый JPEG указанного размера.
func makeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("ошибка кодирования тестового JPEG: %v", err)
	}
	return buf.Bytes()
}

// makePNG генерирует тестовый PNG указанного размера.
func makePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("ошибка кодирования тестового PNG: %v", err)
	}
	return buf.Bytes()
}

// decodeJPEGSize декодирует JPEG и возвращает его размеры.
func decodeJPEGSize(t *testing.T, data []byte) (int, int) {
	t.Helper()

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("результат не декодируется как JPEG: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

// uploadOriginal записывает оригинал в хранилище и возвращает запись.
func uploadOriginal(t *testing.T, store blobstore.Store, data []byte, filename, imageID string) *model.BlobRecord {
	t.Helper()

	meta := blobstore.WriteMeta{Filename: filename}
	if imageID != "" {
		meta.ImageID = &imageID
	}
	rec, err := store.Write(context.Background(), model.NamespaceOriginals, bytes.NewReader(data), meta)
	if err != nil {
		t.Fatalf("ошибка записи оригинала: %v", err)
	}
	return rec
}

// countingStore — декоратор Store, считающий обращения к хранилищу.
// Используется для проверки, что превью генерируется один раз
// и что кэш резолвера действительно закрывает повторные запросы.
type countingStore struct {
	blobstore.Store

	mu            sync.Mutex
	openReads     map[string]int
	imageIDLookup int
}

func newCountingStore(inner blobstore.Store) *countingStore {
	return &countingStore{Store: inner, openReads: make(map[string]int)}
}

func (c *countingStore) OpenRead(ctx context.Context, blobID string) (io.ReadCloser, *model.BlobRecord, error) {
	c.mu.Lock()
	c.openReads[blobID]++
	c.mu.Unlock()
	return c.Store.OpenRead(ctx, blobID)
}

func (c *countingStore) FindByImageID(ctx context.Context, ns model.BlobNamespace, imageID string) ([]*model.BlobRecord, error) {
	c.mu.Lock()
	c.imageIDLookup++
	c.mu.Unlock()
	return c.Store.FindByImageID(ctx, ns, imageID)
}

func (c *countingStore) readsOf(blobID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.openReads[blobID]
}

func (c *countingStore) imageIDLookups() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.imageIDLookup
}
