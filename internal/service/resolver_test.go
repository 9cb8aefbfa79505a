package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bigkaa/facewatch/dashboard-module/internal/domain/model"
	"github.com/bigkaa/facewatch/dashboard-module/internal/storage/blobstore"
)

func newTestResolver(store blobstore.Store) *ResolverService {
	cache := NewCacheService(100, 5*time.Minute)
	return NewResolverService(store, cache, testLogger())
}

// TestResolverService_NativeID проверяет разрешение по нативному BlobID.
func TestResolverService_NativeID(t *testing.T) {
	store := blobstore.NewMemoryStore()
	resolver := newTestResolver(store)

	rec := uploadOriginal(t, store, []byte("данные"), "a.jpg", "")

	got, err := resolver.Resolve(context.Background(), rec.BlobID)
	if err != nil {
		t.Fatalf("ошибка разрешения: %v", err)
	}
	if got.BlobID != rec.BlobID {
		t.Errorf("BlobID = %q, ожидался %q", got.BlobID, rec.BlobID)
	}
}

// TestResolverService_ImageID проверяет fallback на бизнес-идентификатор.
func TestResolverService_ImageID(t *testing.T) {
	store := blobstore.NewMemoryStore()
	resolver := newTestResolver(store)

	rec := uploadOriginal(t, store, []byte("данные"), "a.jpg", "evt-42")

	got, err := resolver.Resolve(context.Background(), "evt-42")
	if err != nil {
		t.Fatalf("ошибка разрешения: %v", err)
	}
	if got.BlobID != rec.BlobID {
		t.Errorf("BlobID = %q, ожидался %q", got.BlobID, rec.BlobID)
	}
}

// TestResolverService_NativePrecedence проверяет приоритет нативного
// идентификатора: если строка — существующий BlobID, поиск по image_id
// не выполняется даже при совпадении.
func TestResolverService_NativePrecedence(t *testing.T) {
	store := blobstore.NewMemoryStore()
	resolver := newTestResolver(store)

	native := uploadOriginal(t, store, []byte("native"), "a.jpg", "")
	// Второй оригинал использует BlobID первого как image_id
	uploadOriginal(t, store, []byte("business"), "b.jpg", native.BlobID)

	got, err := resolver.Resolve(context.Background(), native.BlobID)
	if err != nil {
		t.Fatalf("ошибка разрешения: %v", err)
	}
	if got.BlobID != native.BlobID {
		t.Errorf("разрешился %q, ожидался нативный %q", got.BlobID, native.BlobID)
	}
}

// TestResolverService_Ambiguous проверяет ErrAmbiguousIdentifier
// при нескольких оригиналах с одним image_id.
func TestResolverService_Ambiguous(t *testing.T) {
	store := blobstore.NewMemoryStore()
	resolver := newTestResolver(store)

	uploadOriginal(t, store, []byte("один"), "a.jpg", "evt-dup")
	uploadOriginal(t, store, []byte("два"), "b.jpg", "evt-dup")

	_, err := resolver.Resolve(context.Background(), "evt-dup")
	if !errors.Is(err, ErrAmbiguousIdentifier) {
		t.Fatalf("ожидался ErrAmbiguousIdentifier, получено: %v", err)
	}
}

// TestResolverService_NotFound проверяет ErrNotFound
// для неизвестного идентификатора.
func TestResolverService_NotFound(t *testing.T) {
	store := blobstore.NewMemoryStore()
	resolver := newTestResolver(store)

	_, err := resolver.Resolve(context.Background(), "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидался ErrNotFound, получено: %v", err)
	}
}

// TestResolverService_EmptyIdentifier проверяет валидацию пустого
// идентификатора.
func TestResolverService_EmptyIdentifier(t *testing.T) {
	resolver := newTestResolver(blobstore.NewMemoryStore())

	_, err := resolver.Resolve(context.Background(), "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("ожидался ErrValidation, получено: %v", err)
	}
}

// TestResolverService_CachesPositive проверяет, что успешное разрешение
// кэшируется и повторный вызов не обращается к хранилищу.
func TestResolverService_CachesPositive(t *testing.T) {
	inner := blobstore.NewMemoryStore()
	store := newCountingStore(inner)
	resolver := newTestResolver(store)

	rec := uploadOriginal(t, inner, []byte("данные"), "a.jpg", "evt-1")

	if _, err := resolver.Resolve(context.Background(), "evt-1"); err != nil {
		t.Fatalf("ошибка первого разрешения: %v", err)
	}
	// Повторное разрешение идёт из LRU-кэша
	got, err := resolver.Resolve(context.Background(), "evt-1")
	if err != nil {
		t.Fatalf("ошибка второго разрешения: %v", err)
	}
	if got.BlobID != rec.BlobID {
		t.Errorf("BlobID = %q, ожидался %q", got.BlobID, rec.BlobID)
	}
	if n := store.imageIDLookups(); n != 1 {
		t.Errorf("обращений к хранилищу: %d, ожидалось 1 (кэш не сработал)", n)
	}
}

// brokenStore имитирует недоступное хранилище метаданных.
type brokenStore struct {
	blobstore.Store
	failure error
}

func (b *brokenStore) FindByImageID(_ context.Context, _ model.BlobNamespace, _ string) ([]*model.BlobRecord, error) {
	return nil, b.failure
}

// TestResolverService_StorageFailure проверяет, что отказ хранилища
// типизируется как ErrStorageUnavailable, а не возвращается
// анонимной ошибкой.
func TestResolverService_StorageFailure(t *testing.T) {
	store := &brokenStore{
		Store:   blobstore.NewMemoryStore(),
		failure: errors.New("connection refused"),
	}
	resolver := newTestResolver(store)

	_, err := resolver.Resolve(context.Background(), "img-001")
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("ошибка = %v, ожидалась ErrStorageUnavailable", err)
	}
}
