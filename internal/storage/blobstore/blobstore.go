// Пакет blobstore — хранилище бинарных объектов (снимков и превью).
//
// Store — абстракция, через которую работают резолвер идентификаторов,
// кэш превью и фасад выдачи. Реализации: DiskStore (payload на диске,
// метаданные в PostgreSQL) и MemoryStore (in-memory, для тестов).
//
// Ключевой контракт: запись превью с back_reference на оригинал,
// для которого превью уже существует, завершается ErrDuplicateKey —
// хранилище никогда молча не перезаписывает объект.
package blobstore

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bigkaa/facewatch/dashboard-module/internal/domain/model"
)

// Ошибки blob-хранилища.
var (
	// ErrNotFound — объект не найден.
	ErrNotFound = errors.New("blob не найден")
	// ErrDuplicateKey — превью для этого оригинала уже записано
	// (проигранная гонка записи). Обрабатывается кэшем превью.
	ErrDuplicateKey = errors.New("превью для оригинала уже существует")
)

// WriteMeta — метаданные, передаваемые при записи объекта.
type WriteMeta struct {
	// Filename — имя файла, источник content-type при выдаче
	Filename string
	// ContentType — MIME-тип содержимого
	ContentType string
	// ImageID — бизнес-идентификатор снимка (только для оригиналов)
	ImageID *string
	// BackReference — BlobID оригинала (только для превью)
	BackReference *string
	// EventTS — время события детекции (опционально)
	EventTS *time.Time
}

// Store — хранилище бинарных объектов с метаданными.
// Все операции потокобезопасны; чтение и запись — streaming,
// содержимое оригинала никогда не буферизуется целиком.
type Store interface {
	// OpenRead открывает объект для чтения.
	// Возвращает ErrNotFound, если объекта нет.
	// Вызывающий код обязан закрыть ReadCloser.
	OpenRead(ctx context.Context, blobID string) (io.ReadCloser, *model.BlobRecord, error)

	// Write сохраняет объект из reader и возвращает запись
	// со свежим BlobID. Запись долговечна на момент возврата.
	// Для превью (meta.BackReference != nil) возвращает ErrDuplicateKey,
	// если превью для оригинала уже существует.
	Write(ctx context.Context, ns model.BlobNamespace, r io.Reader, meta WriteMeta) (*model.BlobRecord, error)

	// GetMetadata возвращает запись по BlobID или ErrNotFound.
	GetMetadata(ctx context.Context, blobID string) (*model.BlobRecord, error)

	// FindByImageID возвращает записи namespace с указанным
	// бизнес-идентификатором. Ноль и более совпадений — не ошибка.
	FindByImageID(ctx context.Context, ns model.BlobNamespace, imageID string) ([]*model.BlobRecord, error)

	// FindByBackReference возвращает запись превью по BlobID оригинала
	// или ErrNotFound.
	FindByBackReference(ctx context.Context, ns model.BlobNamespace, originalID string) (*model.BlobRecord, error)
}

// DefaultContentType — тип по умолчанию для нераспознанных расширений.
// Снимки пайплайна — JPEG, поэтому generic-тип именно такой.
const DefaultContentType = "image/jpeg"

// ContentTypeForFilename определяет MIME-тип по расширению имени файла.
func ContentTypeForFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return DefaultContentType
	}
}
