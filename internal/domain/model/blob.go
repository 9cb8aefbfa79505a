// blob.go — модель записи blob-хранилища.
// BlobRecord — метаданные бинарного объекта (снимка или его превью).
// Запись создаётся один раз при загрузке и далее не изменяется;
// превью создаёт новую запись в отдельном namespace со ссылкой
// на оригинал (BackReference).
package model

import (
	"time"
)

// BlobNamespace — логический раздел blob-хранилища.
// Оригиналы и превью хранятся в разных namespace, чтобы записи
// одинаковой формы не пересекались.
type BlobNamespace string

const (
	// NamespaceOriginals — оригинальные снимки с камер
	NamespaceOriginals BlobNamespace = "originals"
	// NamespaceThumbnails — кэшированные превью
	NamespaceThumbnails BlobNamespace = "thumbnails"
)

// BlobRecord — метаданные бинарного объекта в хранилище.
type BlobRecord struct {
	// BlobID — уникальный идентификатор объекта (UUID v4)
	BlobID string `json:"blob_id"`

	// Namespace — раздел хранилища (originals, thumbnails)
	Namespace BlobNamespace `json:"namespace"`

	// Filename — имя файла при загрузке, источник content-type
	Filename string `json:"filename"`

	// ContentType — MIME-тип содержимого
	ContentType string `json:"content_type"`

	// Size — размер объекта в байтах
	Size int64 `json:"size"`

	// Checksum — SHA-256 хэш содержимого
	Checksum string `json:"checksum"`

	// ImageID — бизнес-идентификатор снимка из события детекции.
	// nil для превью и объектов без привязки к событию.
	ImageID *string `json:"image_id,omitempty"`

	// BackReference — BlobID оригинала, из которого получено превью.
	// nil для оригиналов. Для пары (namespace, back_reference)
	// хранилище гарантирует не более одной записи.
	BackReference *string `json:"back_reference,omitempty"`

	// EventTS — время события детекции, передаётся пайплайном при загрузке.
	// nil если при загрузке не указано.
	EventTS *time.Time `json:"event_ts,omitempty"`

	// UploadedAt — время создания записи (UTC)
	UploadedAt time.Time `json:"uploaded_at"`
}

// IsRendition сообщает, является ли запись превью (имеет обратную ссылку).
func (b *BlobRecord) IsRendition() bool {
	return b.BackReference != nil
}
