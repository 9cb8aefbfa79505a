// disk.go — DiskStore: payload на локальном диске, метаданные в PostgreSQL.
//
// Payload хранится как DM_DATA_DIR/{namespace}/{blob_id} без расширения,
// streaming-запись с подсчётом SHA-256 на лету.
// Паттерн: temp файл → запись + SHA-256 → fsync → atomic rename → INSERT.
// Уникальность (namespace, back_reference) обеспечивает частичный
// уникальный индекс в PostgreSQL; при 23505 свежезаписанный payload
// удаляется и возвращается ErrDuplicateKey.
package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/facewatch/dashboard-module/internal/domain/model"
	"github.com/bigkaa/facewatch/dashboard-module/internal/repository"
)

// DiskStore — blob-хранилище с payload на диске и метаданными в PostgreSQL.
type DiskStore struct {
	// dataDir — корневая директория хранения payload (DM_DATA_DIR)
	dataDir string
	meta    repository.BlobMetadataRepository
	logger  *slog.Logger
}

// NewDiskStore создаёт DiskStore. Проверяет и создаёт директории
// namespace, если они не существуют.
func NewDiskStore(dataDir string, meta repository.BlobMetadataRepository, logger *slog.Logger) (*DiskStore, error) {
	for _, ns := range []model.BlobNamespace{model.NamespaceOriginals, model.NamespaceThumbnails} {
		dir := filepath.Join(dataDir, string(ns))
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("не удалось создать директорию данных %s: %w", dir, err)
		}
	}

	return &DiskStore{
		dataDir: dataDir,
		meta:    meta,
		logger:  logger.With(slog.String("component", "blobstore")),
	}, nil
}

// payloadPath возвращает путь payload на диске.
func (s *DiskStore) payloadPath(ns model.BlobNamespace, blobID string) string {
	return filepath.Join(s.dataDir, string(ns), blobID)
}

// OpenRead открывает объект для чтения.
// Метаданные — из PostgreSQL, payload — с диска.
func (s *DiskStore) OpenRead(ctx context.Context, blobID string) (io.ReadCloser, *model.BlobRecord, error) {
	rec, err := s.GetMetadata(ctx, blobID)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(s.payloadPath(rec.Namespace, rec.BlobID))
	if err != nil {
		if os.IsNotExist(err) {
			// Метаданные есть, payload отсутствует — рассинхронизация
			// (например, ручное вмешательство в DM_DATA_DIR)
			s.logger.Error("Payload не найден на диске",
				slog.String("blob_id", blobID),
				slog.String("namespace", string(rec.Namespace)),
			)
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("ошибка открытия payload %s: %w", blobID, err)
	}

	return f, rec, nil
}

// Write сохраняет объект из reader с подсчётом SHA-256 на лету
// и создаёт запись метаданных. При ErrDuplicateKey (проигранная гонка
// записи превью) свежезаписанный payload удаляется.
func (s *DiskStore) Write(ctx context.Context, ns model.BlobNamespace, r io.Reader, meta WriteMeta) (*model.BlobRecord, error) {
	blobID := uuid.New().String()
	fullPath := s.payloadPath(ns, blobID)
	tmpPath := fullPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	// Streaming запись с одновременным подсчётом SHA-256
	hasher := sha256.New()
	tee := io.TeeReader(r, hasher)

	size, err := io.Copy(f, tee)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	// fsync для гарантии записи на диск
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	// Атомарный rename
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	contentType := meta.ContentType
	if contentType == "" {
		contentType = ContentTypeForFilename(meta.Filename)
	}

	rec := &model.BlobRecord{
		BlobID:        blobID,
		Namespace:     ns,
		Filename:      meta.Filename,
		ContentType:   contentType,
		Size:          size,
		Checksum:      hex.EncodeToString(hasher.Sum(nil)),
		ImageID:       meta.ImageID,
		BackReference: meta.BackReference,
		EventTS:       meta.EventTS,
		UploadedAt:    time.Now().UTC(),
	}

	if err := s.meta.Insert(ctx, rec); err != nil {
		// Payload без метаданных бесполезен — убираем сразу,
		// не дожидаясь janitor'а
		os.Remove(fullPath)
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("ошибка записи метаданных: %w", err)
	}

	s.logger.Debug("Blob записан",
		slog.String("blob_id", blobID),
		slog.String("namespace", string(ns)),
		slog.Int64("size", size),
	)

	return rec, nil
}

// GetMetadata возвращает запись по BlobID или ErrNotFound.
func (s *DiskStore) GetMetadata(ctx context.Context, blobID string) (*model.BlobRecord, error) {
	rec, err := s.meta.GetByID(ctx, blobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения метаданных: %w", err)
	}
	return rec, nil
}

// FindByImageID возвращает записи namespace с указанным image_id.
func (s *DiskStore) FindByImageID(ctx context.Context, ns model.BlobNamespace, imageID string) ([]*model.BlobRecord, error) {
	return s.meta.FindByImageID(ctx, ns, imageID)
}

// FindByBackReference возвращает запись превью по BlobID оригинала.
func (s *DiskStore) FindByBackReference(ctx context.Context, ns model.BlobNamespace, originalID string) (*model.BlobRecord, error) {
	rec, err := s.meta.FindByBackReference(ctx, ns, originalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска по back_reference: %w", err)
	}
	return rec, nil
}

// SweepOrphans удаляет из namespace осиротевшие payload-файлы:
// файлы без записи метаданных старше grace (остатки упавших записей
// и проигранных гонок) и застрявшие *.tmp файлы.
// Возвращает количество удалённых файлов.
func (s *DiskStore) SweepOrphans(ctx context.Context, ns model.BlobNamespace, grace time.Duration) (int, error) {
	known, err := s.meta.ListIDs(ctx, ns)
	if err != nil {
		return 0, fmt.Errorf("ошибка получения списка идентификаторов: %w", err)
	}
	knownSet := make(map[string]struct{}, len(known))
	for _, id := range known {
		knownSet[id] = struct{}{}
	}

	dir := filepath.Join(s.dataDir, string(ns))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("ошибка сканирования директории %s: %w", dir, err)
	}

	cutoff := time.Now().Add(-grace)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		id := name
		if ext := filepath.Ext(name); ext == ".tmp" {
			id = name[:len(name)-len(ext)]
		}
		if _, ok := knownSet[id]; ok && id == name {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		// Grace-период защищает запись, которая ещё не успела
		// вставить метаданные
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			s.logger.Error("Ошибка удаления осиротевшего payload",
				slog.String("file", name),
				slog.String("error", err.Error()),
			)
			continue
		}
		removed++
		s.logger.Info("Осиротевший payload удалён",
			slog.String("file", name),
			slog.String("namespace", string(ns)),
		)
	}

	return removed, nil
}

// CheckReady проверяет доступность директории данных.
// Используется readiness probe.
func (s *DiskStore) CheckReady() (status, message string) {
	for _, ns := range []model.BlobNamespace{model.NamespaceOriginals, model.NamespaceThumbnails} {
		info, err := os.Stat(filepath.Join(s.dataDir, string(ns)))
		if err != nil {
			return "fail", fmt.Sprintf("директория %s недоступна: %s", ns, err)
		}
		if !info.IsDir() {
			return "fail", fmt.Sprintf("%s не является директорией", ns)
		}
	}
	return "ok", ""
}
