// alerts.go — сервис запросов по событиям детекции.
//
// Тонкая обёртка над репозиториями: валидация входных параметров,
// маппинг ошибок хранилища в ошибки бизнес-слоя. Данные только
// читаются — события пишет пайплайн распознавания напрямую в БД.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bigkaa/facewatch/dashboard-module/internal/domain/model"
	"github.com/bigkaa/facewatch/dashboard-module/internal/repository"
)

// Ограничения пагинации списка событий.
const (
	// DefaultAlertLimit — размер страницы по умолчанию
	DefaultAlertLimit = 50
	// MaxAlertLimit — максимальный размер страницы
	MaxAlertLimit = 500
)

// AlertService — сервис запросов по событиям детекции и агрегатам.
type AlertService struct {
	alerts repository.AlertRepository
	stats  repository.StatsRepository
	logger *slog.Logger
}

// NewAlertService создаёт сервис запросов по событиям.
func NewAlertService(alerts repository.AlertRepository, stats repository.StatsRepository, logger *slog.Logger) *AlertService {
	return &AlertService{
		alerts: alerts,
		stats:  stats,
		logger: logger.With(slog.String("component", "alert_service")),
	}
}

// List возвращает страницу событий по фильтру.
// Пустой limit заменяется значением по умолчанию, превышение
// максимума — ошибка валидации.
func (as *AlertService) List(ctx context.Context, filter repository.AlertFilter) ([]*model.Alert, error) {
	if filter.Limit == 0 {
		filter.Limit = DefaultAlertLimit
	}
	if filter.Limit < 0 || filter.Limit > MaxAlertLimit {
		return nil, fmt.Errorf("%w: limit должен быть в диапазоне 1..%d", ErrValidation, MaxAlertLimit)
	}
	if filter.Offset < 0 {
		return nil, fmt.Errorf("%w: offset не может быть отрицательным", ErrValidation)
	}
	if filter.Level != nil && !model.ValidLevel(*filter.Level) {
		return nil, fmt.Errorf("%w: недопустимый level %q", ErrValidation, *filter.Level)
	}

	alerts, err := as.alerts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("список событий: %w", err)
	}
	return alerts, nil
}

// GetByID возвращает событие по идентификатору.
func (as *AlertService) GetByID(ctx context.Context, alertID string) (*model.Alert, error) {
	alert, err := as.alerts.GetByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение события %s: %w", alertID, err)
	}
	return alert, nil
}

// Stats возвращает сводные показатели дашборда.
func (as *AlertService) Stats(ctx context.Context) (*model.Stats, error) {
	stats, err := as.stats.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("сводные показатели: %w", err)
	}
	return stats, nil
}

// AlertsOverTime возвращает распределение событий по времени.
// days — глубина выборки в днях, buckets — количество интервалов.
func (as *AlertService) AlertsOverTime(ctx context.Context, days, buckets int) ([]*model.TimeBucket, error) {
	if days <= 0 || days > 365 {
		return nil, fmt.Errorf("%w: days должен быть в диапазоне 1..365", ErrValidation)
	}
	if buckets <= 0 || buckets > 500 {
		return nil, fmt.Errorf("%w: buckets должен быть в диапазоне 1..500", ErrValidation)
	}

	series, err := as.stats.AlertsOverTime(ctx, days, buckets)
	if err != nil {
		return nil, fmt.Errorf("распределение событий: %w", err)
	}
	return series, nil
}

// People возвращает сводку по распознанным персонам.
func (as *AlertService) People(ctx context.Context) ([]*model.PersonSummary, error) {
	people, err := as.stats.People(ctx)
	if err != nil {
		return nil, fmt.Errorf("список персон: %w", err)
	}
	return people, nil
}

// PersonByID возвращает детальную сводку по персоне.
func (as *AlertService) PersonByID(ctx context.Context, personID string) (*model.PersonDetail, error) {
	person, err := as.stats.PersonByID(ctx, personID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение персоны %s: %w", personID, err)
	}
	return person, nil
}

// PersonImages возвращает снимки, связанные с персоной.
func (as *AlertService) PersonImages(ctx context.Context, personID string) ([]*model.PersonImage, error) {
	images, err := as.stats.PersonImages(ctx, personID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("снимки персоны %s: %w", personID, err)
	}
	return images, nil
}

// Cameras возвращает сводку по камерам.
func (as *AlertService) Cameras(ctx context.Context) ([]*model.CameraSummary, error) {
	cameras, err := as.stats.Cameras(ctx)
	if err != nil {
		return nil, fmt.Errorf("список камер: %w", err)
	}
	return cameras, nil
}

// CameraPeople возвращает персон, замеченных камерой.
func (as *AlertService) CameraPeople(ctx context.Context, cameraID string, limit int) ([]*model.CameraPerson, error) {
	if limit <= 0 {
		limit = DefaultAlertLimit
	}
	if limit > MaxAlertLimit {
		return nil, fmt.Errorf("%w: limit должен быть в диапазоне 1..%d", ErrValidation, MaxAlertLimit)
	}

	people, err := as.stats.CameraPeople(ctx, cameraID, limit)
	if err != nil {
		return nil, fmt.Errorf("персоны камеры %s: %w", cameraID, err)
	}
	return people, nil
}
