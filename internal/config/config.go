// Пакет config — загрузка и валидация конфигурации Dashboard Module
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Dashboard Module.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Пользователь БД
	DBUser string
	// Пароль пользователя БД
	DBPassword string
	// Режим SSL (disable, require, verify-ca, verify-full)
	DBSSLMode string

	// --- Blob-хранилище ---

	// Каталог хранения payload-файлов
	DataDir string
	// Максимальный размер загружаемого оригинала в байтах
	MaxUploadSize int64

	// --- Превью ---

	// Ширина bounding box превью в пикселях
	ThumbWidth int
	// Высота bounding box превью в пикселях
	ThumbHeight int
	// Качество JPEG превью (1..100)
	ThumbQuality int

	// --- LRU-кэш резолвера ---

	// Максимальное количество записей в кэше
	CacheSize int
	// TTL записи кэша
	CacheTTL time.Duration

	// --- Фоновая очистка ---

	// Интервал запуска очистки хранилища
	JanitorInterval time.Duration
	// Возраст файла, до которого очистка его не трогает
	JanitorGrace time.Duration

	// --- Dephealth (topologymetrics) ---

	// Имя вершины графа зависимостей
	DephealthServiceID string
	// Имя группы в метриках
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration
	// Лейбл isentry=yes для entry-point сервисов
	DephealthIsEntry bool

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера (по умолчанию 30s)
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера (по умолчанию 60s)
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера (по умолчанию 120s)
	HTTPIdleTimeout time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// DM_PORT — порт HTTP-сервера (по умолчанию 8040)
	cfg.Port, err = getEnvInt("DM_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("DM_PORT: %w", err)
	}

	// DM_LOG_LEVEL — уровень логирования (по умолчанию info)
	logLevel := getEnvDefault("DM_LOG_LEVEL", "info")
	cfg.LogLevel, err = parseLogLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("DM_LOG_LEVEL: %w", err)
	}

	// DM_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("DM_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("DM_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- PostgreSQL ---

	// DM_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("DM_DB_HOST")
	if err != nil {
		return nil, err
	}

	// DM_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("DM_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("DM_DB_PORT: %w", err)
	}

	// DM_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("DM_DB_NAME")
	if err != nil {
		return nil, err
	}

	// DM_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("DM_DB_USER")
	if err != nil {
		return nil, err
	}

	// DM_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("DM_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// DM_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("DM_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("DM_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Blob-хранилище ---

	// DM_DATA_DIR — обязательный, каталог payload-файлов
	cfg.DataDir, err = getEnvRequired("DM_DATA_DIR")
	if err != nil {
		return nil, err
	}

	// DM_MAX_UPLOAD_SIZE — лимит размера оригинала (по умолчанию 32 MiB)
	maxUpload, err := getEnvInt("DM_MAX_UPLOAD_SIZE", 32<<20)
	if err != nil {
		return nil, fmt.Errorf("DM_MAX_UPLOAD_SIZE: %w", err)
	}
	if maxUpload <= 0 {
		return nil, fmt.Errorf("DM_MAX_UPLOAD_SIZE: значение должно быть > 0")
	}
	cfg.MaxUploadSize = int64(maxUpload)

	// --- Превью ---

	// DM_THUMB_WIDTH / DM_THUMB_HEIGHT — bounding box превью (по умолчанию 200x200)
	cfg.ThumbWidth, err = getEnvInt("DM_THUMB_WIDTH", 200)
	if err != nil {
		return nil, fmt.Errorf("DM_THUMB_WIDTH: %w", err)
	}
	cfg.ThumbHeight, err = getEnvInt("DM_THUMB_HEIGHT", 200)
	if err != nil {
		return nil, fmt.Errorf("DM_THUMB_HEIGHT: %w", err)
	}
	if cfg.ThumbWidth < 1 || cfg.ThumbHeight < 1 {
		return nil, fmt.Errorf("DM_THUMB_WIDTH/DM_THUMB_HEIGHT: значения должны быть > 0")
	}

	// DM_THUMB_QUALITY — качество JPEG (по умолчанию 90)
	cfg.ThumbQuality, err = getEnvInt("DM_THUMB_QUALITY", 90)
	if err != nil {
		return nil, fmt.Errorf("DM_THUMB_QUALITY: %w", err)
	}
	if cfg.ThumbQuality < 1 || cfg.ThumbQuality > 100 {
		return nil, fmt.Errorf("DM_THUMB_QUALITY: значение должно быть в диапазоне 1..100")
	}

	// --- LRU-кэш резолвера ---

	// DM_CACHE_SIZE — размер кэша (по умолчанию 10000)
	cfg.CacheSize, err = getEnvInt("DM_CACHE_SIZE", 10000)
	if err != nil {
		return nil, fmt.Errorf("DM_CACHE_SIZE: %w", err)
	}

	// DM_CACHE_TTL — TTL записи (по умолчанию 5m)
	cfg.CacheTTL, err = getEnvDuration("DM_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("DM_CACHE_TTL: %w", err)
	}

	// --- Фоновая очистка ---

	// DM_JANITOR_INTERVAL — интервал очистки (по умолчанию 1h)
	cfg.JanitorInterval, err = getEnvDuration("DM_JANITOR_INTERVAL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("DM_JANITOR_INTERVAL: %w", err)
	}

	// DM_JANITOR_GRACE — grace-период очистки (по умолчанию 1h)
	cfg.JanitorGrace, err = getEnvDuration("DM_JANITOR_GRACE", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("DM_JANITOR_GRACE: %w", err)
	}

	// --- Dephealth ---

	// DM_DEPHEALTH_SERVICE_ID — имя вершины графа (по умолчанию dashboard-module)
	cfg.DephealthServiceID = getEnvDefault("DM_DEPHEALTH_SERVICE_ID", "dashboard-module")

	// DM_DEPHEALTH_GROUP — имя группы (по умолчанию facewatch)
	cfg.DephealthGroup = getEnvDefault("DM_DEPHEALTH_GROUP", "facewatch")

	// DM_DEPHEALTH_CHECK_INTERVAL — интервал проверки (по умолчанию 30s)
	cfg.DephealthCheckInterval, err = getEnvDuration("DM_DEPHEALTH_CHECK_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DM_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// DEPHEALTH_ISENTRY — лейбл entry-point (по умолчанию true: модуль обслуживает UI)
	cfg.DephealthIsEntry, err = getEnvBool("DEPHEALTH_ISENTRY", true)
	if err != nil {
		return nil, fmt.Errorf("DEPHEALTH_ISENTRY: %w", err)
	}

	// --- HTTP Server Timeouts ---

	// DM_HTTP_READ_TIMEOUT — таймаут чтения (по умолчанию 30s)
	cfg.HTTPReadTimeout, err = getEnvDuration("DM_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DM_HTTP_READ_TIMEOUT: %w", err)
	}

	// DM_HTTP_WRITE_TIMEOUT — таймаут записи (по умолчанию 60s)
	cfg.HTTPWriteTimeout, err = getEnvDuration("DM_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DM_HTTP_WRITE_TIMEOUT: %w", err)
	}

	// DM_HTTP_IDLE_TIMEOUT — таймаут простоя (по умолчанию 120s)
	cfg.HTTPIdleTimeout, err = getEnvDuration("DM_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DM_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- Graceful shutdown ---

	// DM_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("DM_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DM_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL
// (для лейблов dephealth).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%d/%s?sslmode=%s", c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
