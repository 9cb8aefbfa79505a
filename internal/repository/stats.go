// stats.go — агрегационные запросы поверх таблицы alerts:
// KPI-статистика дашборда, time-series, сводки по персонам и камерам.
// Mongo aggregation pipeline оригинального пайплайна здесь выражен
// обычным GROUP BY.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/facewatch/dashboard-module/internal/domain/model"
)

// StatsRepository — агрегационные выборки по событиям детекции.
type StatsRepository interface {
	// Stats возвращает KPI-статистику дашборда.
	Stats(ctx context.Context) (*model.Stats, error)
	// AlertsOverTime возвращает time-series событий за послединие days дней,
	// сгруппированных не более чем в buckets интервалов.
	AlertsOverTime(ctx context.Context, days, buckets int) ([]*model.TimeBucket, error)
	// People возвращает сводки по всем персонам, последняя активность первой.
	People(ctx context.Context) ([]*model.PersonSummary, error)
	// PersonByID возвращает расширенную сводку по персоне или ErrNotFound.
	PersonByID(ctx context.Context, personID string) (*model.PersonDetail, error)
	// PersonImages возвращает снимки персоны, новые первыми.
	PersonImages(ctx context.Context, personID string) ([]*model.PersonImage, error)
	// Cameras возвращает сводки по камерам, по убыванию числа детекций.
	Cameras(ctx context.Context) ([]*model.CameraSummary, error)
	// CameraPeople возвращает персон, зафиксированных камерой.
	CameraPeople(ctx context.Context, cameraID string, limit int) ([]*model.CameraPerson, error)
}

// statsRepo — реализация StatsRepository через pgx.
type statsRepo struct {
	db DBTX
}

// NewStatsRepository создаёт репозиторий агрегаций.
func NewStatsRepository(db DBTX) StatsRepository {
	return &statsRepo{db: db}
}

// Stats возвращает KPI-статистику одним запросом:
// общее число событий, события за 24 часа, уникальные персоны и камеры.
func (r *statsRepo) Stats(ctx context.Context) (*model.Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE time >= $1),
			COUNT(DISTINCT person_id),
			COUNT(DISTINCT camera_id)
		FROM alerts`

	since := time.Now().UTC().Add(-24 * time.Hour)

	s := &model.Stats{}
	err := r.db.QueryRow(ctx, query, since).Scan(
		&s.TotalAlerts, &s.Alerts24h, &s.DistinctPeople, &s.ActiveCameras,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка агрегации статистики: %w", err)
	}
	return s, nil
}

// AlertsOverTime группирует события за последние days дней в не более чем
// buckets равных интервалов. Ширина интервала вычисляется из диапазона,
// пустые интервалы не возвращаются.
func (r *statsRepo) AlertsOverTime(ctx context.Context, days, buckets int) ([]*model.TimeBucket, error) {
	if buckets <= 0 {
		buckets = 100
	}
	start := time.Now().UTC().AddDate(0, 0, -days)
	bucketSize := time.Duration(days) * 24 * time.Hour / time.Duration(buckets)

	// date_bin выравнивает время события по сетке интервалов от start
	query := `
		SELECT date_bin($1::interval, time, $2::timestamptz) AS bucket, COUNT(*)
		FROM alerts
		WHERE time >= $2
		GROUP BY bucket
		ORDER BY bucket`

	rows, err := r.db.Query(ctx, query, bucketSize, start)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки time-series: %w", err)
	}
	defer rows.Close()

	var result []*model.TimeBucket
	for rows.Next() {
		tb := &model.TimeBucket{}
		if err := rows.Scan(&tb.TimeBucket, &tb.Count); err != nil {
			return nil, fmt.Errorf("ошибка сканирования интервала: %w", err)
		}
		result = append(result, tb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// personAggColumns — агрегатные выражения сводки по персоне.
// image_ids собираются в порядке времени события, sample — самый ранний снимок.
const personAggColumns = `
	person_id,
	COUNT(*),
	MIN(time),
	MAX(time),
	ARRAY_REMOVE(ARRAY_AGG(image_id ORDER BY time), NULL),
	(ARRAY_REMOVE(ARRAY_AGG(image_id ORDER BY time), NULL))[1]`

// People возвращает сводки по всем персонам, последняя активность первой.
func (r *statsRepo) People(ctx context.Context) ([]*model.PersonSummary, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM alerts
		GROUP BY person_id
		ORDER BY MAX(time) DESC`, personAggColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки персон: %w", err)
	}
	defer rows.Close()

	var result []*model.PersonSummary
	for rows.Next() {
		p := &model.PersonSummary{}
		if err := rows.Scan(
			&p.PersonID, &p.AlertCount, &p.FirstSeen, &p.LastSeen, &p.ImageIDs, &p.SampleImageID,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования персоны: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// PersonByID возвращает расширенную сводку по персоне или ErrNotFound.
func (r *statsRepo) PersonByID(ctx context.Context, personID string) (*model.PersonDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			ARRAY_AGG(DISTINCT camera_id),
			ARRAY_AGG(DISTINCT level)
		FROM alerts
		WHERE person_id = $1
		GROUP BY person_id`, personAggColumns)

	p := &model.PersonDetail{}
	err := r.db.QueryRow(ctx, query, personID).Scan(
		&p.PersonID, &p.AlertCount, &p.FirstSeen, &p.LastSeen, &p.ImageIDs, &p.SampleImageID,
		&p.CamerasDetected, &p.AlertLevels,
	)
	if err != nil {
		// GROUP BY по несуществующей персоне не возвращает строк
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения персоны: %w", err)
	}
	return p, nil
}

// PersonImages возвращает снимки персоны с контекстом события, новые первыми.
// Возвращает ErrNotFound, если у персоны нет ни одного события.
func (r *statsRepo) PersonImages(ctx context.Context, personID string) ([]*model.PersonImage, error) {
	query := `
		SELECT image_id, time, camera_id, level, message
		FROM alerts
		WHERE person_id = $1 AND image_id IS NOT NULL AND image_id != ''
		ORDER BY time DESC`

	rows, err := r.db.Query(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки снимков персоны: %w", err)
	}
	defer rows.Close()

	var result []*model.PersonImage
	for rows.Next() {
		img := &model.PersonImage{}
		if err := rows.Scan(&img.ImageID, &img.AlertTime, &img.CameraID, &img.AlertLevel, &img.Message); err != nil {
			return nil, fmt.Errorf("ошибка сканирования снимка: %w", err)
		}
		result = append(result, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Cameras возвращает сводки по камерам, по убыванию числа детекций.
func (r *statsRepo) Cameras(ctx context.Context) ([]*model.CameraSummary, error) {
	query := `
		SELECT camera_id, COUNT(*), COUNT(DISTINCT person_id), MIN(time), MAX(time)
		FROM alerts
		WHERE camera_id IS NOT NULL AND camera_id != ''
		GROUP BY camera_id
		ORDER BY COUNT(*) DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки камер: %w", err)
	}
	defer rows.Close()

	var result []*model.CameraSummary
	for rows.Next() {
		c := &model.CameraSummary{}
		if err := rows.Scan(&c.CameraID, &c.TotalDetections, &c.UniquePeople, &c.FirstDetection, &c.LastDetection); err != nil {
			return nil, fmt.Errorf("ошибка сканирования камеры: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// CameraPeople возвращает персон, зафиксированных камерой,
// по убыванию числа детекций.
func (r *statsRepo) CameraPeople(ctx context.Context, cameraID string, limit int) ([]*model.CameraPerson, error) {
	query := `
		SELECT person_id, COUNT(*), MIN(time), MAX(time)
		FROM alerts
		WHERE camera_id = $1 AND person_id IS NOT NULL AND person_id != ''
		GROUP BY person_id
		ORDER BY COUNT(*) DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, cameraID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки персон камеры: %w", err)
	}
	defer rows.Close()

	var result []*model.CameraPerson
	for rows.Next() {
		p := &model.CameraPerson{}
		if err := rows.Scan(&p.PersonID, &p.DetectionCount, &p.FirstDetection, &p.LastDetection); err != nil {
			return nil, fmt.Errorf("ошибка сканирования персоны: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}
