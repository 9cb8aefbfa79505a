// alerts.go — репозиторий событий детекции.
// Фильтрация, пагинация и выборка по ID поверх таблицы alerts.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/facewatch/dashboard-module/internal/domain/model"
)

// alertColumns — список столбцов таблицы alerts для SELECT-запросов.
// DRY: одно место для всех SELECT'ов.
const alertColumns = `id, person_id, time, level, image_id, camera_id, message`

// AlertFilter — фильтры списка событий.
// Все поля — указатели, nil = фильтр не применяется.
type AlertFilter struct {
	// StartTime — начало временного диапазона
	StartTime *time.Time
	// EndTime — конец временного диапазона
	EndTime *time.Time
	// Level — фильтр по уровню события (alert, warning, info)
	Level *string
	// CameraID — фильтр по камере (exact match)
	CameraID *string
	// PersonID — фильтр по персоне (exact match)
	PersonID *string
	// MessageSearch — подстрочный поиск по тексту сообщения (ILIKE)
	MessageSearch *string
	// Limit — количество результатов
	Limit int
	// Offset — смещение
	Offset int
}

// AlertRepository — интерфейс доступа к событиям детекции.
type AlertRepository interface {
	// List возвращает события по фильтрам, новые первыми.
	List(ctx context.Context, filter AlertFilter) ([]*model.Alert, error)
	// GetByID возвращает событие по UUID или ErrNotFound.
	GetByID(ctx context.Context, alertID string) (*model.Alert, error)
}

// alertRepo — реализация AlertRepository через pgx.
type alertRepo struct {
	db DBTX
}

// NewAlertRepository создаёт репозиторий событий.
func NewAlertRepository(db DBTX) AlertRepository {
	return &alertRepo{db: db}
}

// List возвращает события по фильтрам с пагинацией,
// отсортированные по времени (новые первые).
func (r *alertRepo) List(ctx context.Context, filter AlertFilter) ([]*model.Alert, error) {
	where, args := buildAlertWhere(filter, 1)
	argNum := len(args) + 1

	query := fmt.Sprintf(
		`SELECT %s FROM alerts %s ORDER BY time DESC LIMIT $%d OFFSET $%d`,
		alertColumns, where, argNum, argNum+1,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки событий: %w", err)
	}
	defer rows.Close()

	var result []*model.Alert
	for rows.Next() {
		a := &model.Alert{}
		if err := rows.Scan(&a.ID, &a.PersonID, &a.Time, &a.Level, &a.ImageID, &a.CameraID, &a.Message); err != nil {
			return nil, fmt.Errorf("ошибка сканирования события: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}

	return result, nil
}

// GetByID возвращает событие по UUID или ErrNotFound.
func (r *alertRepo) GetByID(ctx context.Context, alertID string) (*model.Alert, error) {
	query := fmt.Sprintf(`SELECT %s FROM alerts WHERE id = $1`, alertColumns)

	a := &model.Alert{}
	err := r.db.QueryRow(ctx, query, alertID).Scan(
		&a.ID, &a.PersonID, &a.Time, &a.Level, &a.ImageID, &a.CameraID, &a.Message,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения события: %w", err)
	}
	return a, nil
}

// buildAlertWhere строит WHERE-условие и аргументы для выборки событий.
// startArg — номер первого $-параметра (для корректной нумерации).
func buildAlertWhere(filter AlertFilter, startArg int) (whereClause string, args []any) {
	var conditions []string
	argNum := startArg

	// Временной диапазон
	if filter.StartTime != nil {
		conditions = append(conditions, fmt.Sprintf("time >= $%d", argNum))
		args = append(args, *filter.StartTime)
		argNum++
	}
	if filter.EndTime != nil {
		conditions = append(conditions, fmt.Sprintf("time <= $%d", argNum))
		args = append(args, *filter.EndTime)
		argNum++
	}

	// Фильтр по уровню события
	if filter.Level != nil && *filter.Level != "" {
		conditions = append(conditions, fmt.Sprintf("level = $%d", argNum))
		args = append(args, *filter.Level)
		argNum++
	}

	// Фильтр по камере
	if filter.CameraID != nil && *filter.CameraID != "" {
		conditions = append(conditions, fmt.Sprintf("camera_id = $%d", argNum))
		args = append(args, *filter.CameraID)
		argNum++
	}

	// Фильтр по персоне
	if filter.PersonID != nil && *filter.PersonID != "" {
		conditions = append(conditions, fmt.Sprintf("person_id = $%d", argNum))
		args = append(args, *filter.PersonID)
		argNum++
	}

	// Подстрочный поиск по сообщению
	if filter.MessageSearch != nil && *filter.MessageSearch != "" {
		conditions = append(conditions, fmt.Sprintf("message ILIKE $%d", argNum))
		args = append(args, "%"+*filter.MessageSearch+"%")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	return where, args
}
