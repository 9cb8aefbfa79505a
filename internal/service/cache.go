// Пакет service — бизнес-логика Dashboard Module.
// CacheService — LRU-кэш результатов разрешения идентификаторов с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/facewatch/dashboard-module/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dm_resolver_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш резолвера.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dm_resolver_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша резолвера.",
	})
)

// CacheService — LRU-кэш записей blob-метаданных с автоматическим TTL.
// Каждый экземпляр модуля имеет собственный in-memory кэш
// (per-instance, stateless архитектура). Кэшируются только успешные
// разрешения: записи неизменяемы после создания, поэтому инвалидация
// по времени достаточна.
type CacheService struct {
	cache *expirable.LRU[string, *model.BlobRecord]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
// maxSize — максимальное количество записей в кэше.
// ttl — время жизни записи после добавления.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	cache := expirable.NewLRU[string, *model.BlobRecord](maxSize, nil, ttl)
	return &CacheService{cache: cache}
}

// Get возвращает BlobRecord из кэша по ключу разрешения.
// Возвращает (запись, true) при hit или (nil, false) при miss.
// Обновляет Prometheus-метрики hit/miss.
func (c *CacheService) Get(key string) (*model.BlobRecord, bool) {
	val, ok := c.cache.Get(key)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет запись в кэше.
func (c *CacheService) Set(key string, record *model.BlobRecord) {
	c.cache.Add(key, record)
}

// Delete удаляет запись из кэша.
func (c *CacheService) Delete(key string) {
	c.cache.Remove(key)
}
