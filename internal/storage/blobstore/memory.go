// memory.go — MemoryStore: in-memory реализация Store для тестов.
// Повторяет контракт DiskStore, включая уникальность
// (namespace, back_reference) и ErrDuplicateKey.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/facewatch/dashboard-module/internal/domain/model"
)

// MemoryStore — потокобезопасное in-memory blob-хранилище.
type MemoryStore struct {
	mu       sync.Mutex
	records  map[string]*model.BlobRecord // blob_id → запись
	payloads map[string][]byte            // blob_id → содержимое
	backrefs map[string]string            // namespace/back_reference → blob_id
}

// NewMemoryStore создаёт пустое in-memory хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:  make(map[string]*model.BlobRecord),
		payloads: make(map[string][]byte),
		backrefs: make(map[string]string),
	}
}

func backrefKey(ns model.BlobNamespace, originalID string) string {
	return string(ns) + "/" + originalID
}

// OpenRead открывает объект для чтения.
func (s *MemoryStore) OpenRead(_ context.Context, blobID string) (io.ReadCloser, *model.BlobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[blobID]
	if !ok {
		return nil, nil, ErrNotFound
	}
	copied := *rec
	return io.NopCloser(bytes.NewReader(s.payloads[blobID])), &copied, nil
}

// Write сохраняет объект и возвращает запись со свежим BlobID.
// Уникальность (namespace, back_reference) проверяется под мьютексом —
// аналог уникального индекса PostgreSQL.
func (s *MemoryStore) Write(_ context.Context, ns model.BlobNamespace, r io.Reader, meta WriteMeta) (*model.BlobRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if meta.BackReference != nil {
		if _, exists := s.backrefs[backrefKey(ns, *meta.BackReference)]; exists {
			return nil, ErrDuplicateKey
		}
	}

	contentType := meta.ContentType
	if contentType == "" {
		contentType = ContentTypeForFilename(meta.Filename)
	}

	sum := sha256.Sum256(data)
	rec := &model.BlobRecord{
		BlobID:        uuid.New().String(),
		Namespace:     ns,
		Filename:      meta.Filename,
		ContentType:   contentType,
		Size:          int64(len(data)),
		Checksum:      hex.EncodeToString(sum[:]),
		ImageID:       meta.ImageID,
		BackReference: meta.BackReference,
		EventTS:       meta.EventTS,
		UploadedAt:    time.Now().UTC(),
	}

	s.records[rec.BlobID] = rec
	s.payloads[rec.BlobID] = data
	if meta.BackReference != nil {
		s.backrefs[backrefKey(ns, *meta.BackReference)] = rec.BlobID
	}

	copied := *rec
	return &copied, nil
}

// GetMetadata возвращает запись по BlobID или ErrNotFound.
func (s *MemoryStore) GetMetadata(_ context.Context, blobID string) (*model.BlobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[blobID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

// FindByImageID возвращает записи namespace с указанным image_id
// в порядке загрузки.
func (s *MemoryStore) FindByImageID(_ context.Context, ns model.BlobNamespace, imageID string) ([]*model.BlobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*model.BlobRecord
	for _, rec := range s.records {
		if rec.Namespace == ns && rec.ImageID != nil && *rec.ImageID == imageID {
			copied := *rec
			result = append(result, &copied)
		}
	}
	return result, nil
}

// FindByBackReference возвращает запись превью по BlobID оригинала.
func (s *MemoryStore) FindByBackReference(_ context.Context, ns model.BlobNamespace, originalID string) (*model.BlobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.backrefs[backrefKey(ns, originalID)]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s.records[id]
	return &copied, nil
}

// CountByNamespace возвращает количество записей в namespace.
func (s *MemoryStore) CountByNamespace(ns model.BlobNamespace) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, rec := range s.records {
		if rec.Namespace == ns {
			count++
		}
	}
	return count
}

// Проверка на этапе компиляции
var _ Store = (*MemoryStore)(nil)
var _ Store = (*DiskStore)(nil)
