// blobmeta.go — репозиторий метаданных blob-хранилища.
// Таблица blob_metadata хранит записи оригиналов и превью;
// частичный уникальный индекс на (namespace, back_reference)
// гарантирует не более одной записи превью на оригинал —
// это опора протокола lookup-or-generate кэша превью.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/facewatch/dashboard-module/internal/domain/model"
)

// blobColumns — список столбцов таблицы blob_metadata для SELECT-запросов.
const blobColumns = `blob_id, namespace, filename, content_type, size, checksum,
	image_id, back_reference, event_ts, uploaded_at`

// BlobMetadataRepository — доступ к метаданным blob-хранилища.
// Записи создаются один раз и не обновляются.
type BlobMetadataRepository interface {
	// Insert добавляет запись. Возвращает ErrDuplicateKey при нарушении
	// уникальности (namespace, back_reference).
	Insert(ctx context.Context, rec *model.BlobRecord) error
	// GetByID возвращает запись по BlobID или ErrNotFound.
	GetByID(ctx context.Context, blobID string) (*model.BlobRecord, error)
	// FindByImageID возвращает записи с указанным бизнес-идентификатором
	// в namespace. Ноль и более совпадений — не ошибка.
	FindByImageID(ctx context.Context, ns model.BlobNamespace, imageID string) ([]*model.BlobRecord, error)
	// FindByBackReference возвращает запись превью по BlobID оригинала
	// или ErrNotFound.
	FindByBackReference(ctx context.Context, ns model.BlobNamespace, originalID string) (*model.BlobRecord, error)
	// Delete удаляет запись по BlobID. Возвращает ErrNotFound, если
	// записи нет. Используется только janitor'ом при откате
	// незавершённой записи.
	Delete(ctx context.Context, blobID string) error
	// ListIDs возвращает BlobID всех записей namespace.
	// Используется janitor'ом для поиска осиротевших файлов.
	ListIDs(ctx context.Context, ns model.BlobNamespace) ([]string, error)
}

// blobMetaRepo — реализация BlobMetadataRepository через pgx.
type blobMetaRepo struct {
	db DBTX
}

// NewBlobMetadataRepository создаёт репозиторий метаданных blob-хранилища.
func NewBlobMetadataRepository(db DBTX) BlobMetadataRepository {
	return &blobMetaRepo{db: db}
}

// Insert добавляет запись метаданных.
// Нарушение уникального индекса (namespace, back_reference)
// транслируется в ErrDuplicateKey — сигнал проигранной гонки
// записи превью, обрабатывается кэшем, не вызывающим кодом.
func (r *blobMetaRepo) Insert(ctx context.Context, rec *model.BlobRecord) error {
	query := `
		INSERT INTO blob_metadata
			(blob_id, namespace, filename, content_type, size, checksum,
			 image_id, back_reference, event_ts, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		rec.BlobID, rec.Namespace, rec.Filename, rec.ContentType, rec.Size, rec.Checksum,
		rec.ImageID, rec.BackReference, rec.EventTS, rec.UploadedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("ошибка вставки метаданных blob: %w", err)
	}
	return nil
}

// GetByID возвращает запись по BlobID или ErrNotFound.
func (r *blobMetaRepo) GetByID(ctx context.Context, blobID string) (*model.BlobRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM blob_metadata WHERE blob_id = $1`, blobColumns)

	rec := &model.BlobRecord{}
	err := r.db.QueryRow(ctx, query, blobID).Scan(
		&rec.BlobID, &rec.Namespace, &rec.Filename, &rec.ContentType, &rec.Size, &rec.Checksum,
		&rec.ImageID, &rec.BackReference, &rec.EventTS, &rec.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения метаданных blob: %w", err)
	}
	return rec, nil
}

// FindByImageID возвращает записи с указанным image_id в namespace.
// Порядок детерминированный (по времени загрузки), чтобы диагностика
// дубликатов была воспроизводимой.
func (r *blobMetaRepo) FindByImageID(ctx context.Context, ns model.BlobNamespace, imageID string) ([]*model.BlobRecord, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM blob_metadata WHERE namespace = $1 AND image_id = $2 ORDER BY uploaded_at`,
		blobColumns,
	)

	rows, err := r.db.Query(ctx, query, ns, imageID)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска по image_id: %w", err)
	}
	defer rows.Close()

	var result []*model.BlobRecord
	for rows.Next() {
		rec := &model.BlobRecord{}
		if err := rows.Scan(
			&rec.BlobID, &rec.Namespace, &rec.Filename, &rec.ContentType, &rec.Size, &rec.Checksum,
			&rec.ImageID, &rec.BackReference, &rec.EventTS, &rec.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования метаданных: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// FindByBackReference возвращает запись превью по BlobID оригинала.
// Уникальный индекс гарантирует не более одной записи.
func (r *blobMetaRepo) FindByBackReference(ctx context.Context, ns model.BlobNamespace, originalID string) (*model.BlobRecord, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM blob_metadata WHERE namespace = $1 AND back_reference = $2`,
		blobColumns,
	)

	rec := &model.BlobRecord{}
	err := r.db.QueryRow(ctx, query, ns, originalID).Scan(
		&rec.BlobID, &rec.Namespace, &rec.Filename, &rec.ContentType, &rec.Size, &rec.Checksum,
		&rec.ImageID, &rec.BackReference, &rec.EventTS, &rec.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска по back_reference: %w", err)
	}
	return rec, nil
}

// Delete удаляет запись по BlobID или возвращает ErrNotFound.
func (r *blobMetaRepo) Delete(ctx context.Context, blobID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM blob_metadata WHERE blob_id = $1`, blobID)
	if err != nil {
		return fmt.Errorf("ошибка удаления метаданных blob: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListIDs возвращает BlobID всех записей namespace.
func (r *blobMetaRepo) ListIDs(ctx context.Context, ns model.BlobNamespace) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT blob_id FROM blob_metadata WHERE namespace = $1`, ns)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки идентификаторов: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования идентификатора: %w", err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}
