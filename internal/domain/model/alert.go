// Пакет model — доменные модели Dashboard Module.
// Alert — запись события детекции, создаётся пайплайном распознавания,
// Dashboard Module — read-only потребитель таблицы alerts.
package model

import (
	"time"
)

// AlertLevel — уровень события детекции.
type AlertLevel string

const (
	// LevelAlert — тревожное событие (детекция цели)
	LevelAlert AlertLevel = "alert"
	// LevelWarning — предупреждение
	LevelWarning AlertLevel = "warning"
	// LevelInfo — информационное событие
	LevelInfo AlertLevel = "info"
)

// ValidLevel проверяет допустимость значения уровня события.
func ValidLevel(level string) bool {
	switch AlertLevel(level) {
	case LevelAlert, LevelWarning, LevelInfo:
		return true
	}
	return false
}

// Alert — событие детекции с привязкой к камере, персоне и снимку.
type Alert struct {
	// ID — уникальный идентификатор события (UUID v4)
	ID string `json:"id"`
	// PersonID — идентификатор распознанной персоны
	PersonID string `json:"person_id"`
	// Time — время события (UTC)
	Time time.Time `json:"time"`
	// Level — уровень события (alert, warning, info)
	Level AlertLevel `json:"level"`
	// ImageID — бизнес-идентификатор снимка (metadata.image_id в blob-хранилище)
	ImageID string `json:"image_id"`
	// CameraID — идентификатор камеры
	CameraID string `json:"camera_id"`
	// Message — текстовое описание события
	Message string `json:"message"`
}

// Stats — агрегированная статистика для KPI-карточек дашборда.
type Stats struct {
	// TotalAlerts — общее количество событий
	TotalAlerts int `json:"total_alerts"`
	// Alerts24h — количество событий за последние 24 часа
	Alerts24h int `json:"alerts_24h"`
	// DistinctPeople — количество уникальных персон
	DistinctPeople int `json:"distinct_people"`
	// ActiveCameras — количество камер с событиями
	ActiveCameras int `json:"active_cameras"`
}

// TimeBucket — точка time-series графика событий.
type TimeBucket struct {
	// TimeBucket — начало интервала
	TimeBucket time.Time `json:"time_bucket"`
	// Count — количество событий в интервале
	Count int `json:"count"`
}

// PersonSummary — сводка по персоне на основе её событий.
type PersonSummary struct {
	PersonID      string    `json:"person_id"`
	AlertCount    int       `json:"alert_count"`
	FirstSeen     time.Time `json:"first_seen"`
	LastSeen      time.Time `json:"last_seen"`
	ImageIDs      []string  `json:"image_ids"`
	SampleImageID *string   `json:"sample_image_id"`
}

// PersonDetail — расширенная сводка по персоне.
type PersonDetail struct {
	PersonSummary
	// CamerasDetected — камеры, зафиксировавшие персону
	CamerasDetected []string `json:"cameras_detected"`
	// AlertLevels — уровни событий персоны
	AlertLevels []string `json:"alert_levels"`
}

// PersonImage — снимок персоны с контекстом события.
type PersonImage struct {
	ImageID    string    `json:"image_id"`
	AlertTime  time.Time `json:"alert_time"`
	CameraID   string    `json:"camera_id"`
	AlertLevel string    `json:"alert_level"`
	Message    string    `json:"message"`
}

// CameraSummary — сводка по камере.
type CameraSummary struct {
	CameraID        string     `json:"camera_id"`
	TotalDetections int        `json:"total_detections"`
	UniquePeople    int        `json:"unique_people"`
	FirstDetection  *time.Time `json:"first_detection"`
	LastDetection   *time.Time `json:"last_detection"`
}

// CameraPerson — персона, зафиксированная конкретной камерой.
type CameraPerson struct {
	PersonID       string     `json:"person_id"`
	DetectionCount int        `json:"detection_count"`
	FirstDetection *time.Time `json:"first_detection"`
	LastDetection  *time.Time `json:"last_detection"`
}
