// resolver.go — разрешение пользовательских идентификаторов снимков.
//
// Клиенты дашборда ссылаются на снимок двумя способами:
//   - нативный BlobID хранилища (UUID, выдаётся при загрузке)
//   - бизнес-идентификатор image_id из события детекции
//
// Резолвер приводит оба вида к одной записи оригинала. Приоритет —
// нативный идентификатор: если UUID найден в хранилище, поиск по
// image_id не выполняется. Успешные разрешения кэшируются в LRU.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bigkaa/facewatch/dashboard-module/internal/domain/model"
	"github.com/bigkaa/facewatch/dashboard-module/internal/storage/blobstore"
)

// ResolverService — сервис разрешения идентификаторов оригиналов.
type ResolverService struct {
	store  blobstore.Store
	cache  *CacheService
	logger *slog.Logger
}

// NewResolverService создаёт резолвер идентификаторов.
func NewResolverService(store blobstore.Store, cache *CacheService, logger *slog.Logger) *ResolverService {
	return &ResolverService{
		store:  store,
		cache:  cache,
		logger: logger.With(slog.String("component", "resolver")),
	}
}

// Resolve возвращает запись оригинала по идентификатору.
//
// Порядок разрешения:
//  1. LRU-кэш
//  2. Нативный BlobID (только если идентификатор — синтаксически UUID)
//  3. Бизнес-идентификатор image_id в namespace оригиналов
//
// Возвращает ErrNotFound, если идентификатор не разрешается,
// и ErrAmbiguousIdentifier, если image_id соответствует нескольким
// оригиналам. Ошибки не кэшируются.
func (rs *ResolverService) Resolve(ctx context.Context, identifier string) (*model.BlobRecord, error) {
	if identifier == "" {
		return nil, ErrValidation
	}

	if record, ok := rs.cache.Get(identifier); ok {
		return record, nil
	}

	// Нативный идентификатор имеет приоритет
	if _, err := uuid.Parse(identifier); err == nil {
		record, err := rs.store.GetMetadata(ctx, identifier)
		switch {
		case err == nil:
			// Превью не разрешаются как оригиналы
			if record.Namespace == model.NamespaceOriginals {
				rs.cache.Set(identifier, record)
				return record, nil
			}
		case !errors.Is(err, blobstore.ErrNotFound):
			return nil, fmt.Errorf("%w: поиск по BlobID %s: %w", ErrStorageUnavailable, identifier, err)
		}
	}

	// Fallback: бизнес-идентификатор image_id
	records, err := rs.store.FindByImageID(ctx, model.NamespaceOriginals, identifier)
	if err != nil {
		return nil, fmt.Errorf("%w: поиск по image_id %s: %w", ErrStorageUnavailable, identifier, err)
	}

	switch len(records) {
	case 0:
		return nil, ErrNotFound
	case 1:
		rs.cache.Set(identifier, records[0])
		return records[0], nil
	default:
		rs.logger.Warn("Неоднозначный идентификатор",
			slog.String("identifier", identifier),
			slog.Int("matches", len(records)),
		)
		return nil, ErrAmbiguousIdentifier
	}
}
