// handler.go — общие вспомогательные функции HTTP-обработчиков.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	apierrors "github.com/bigkaa/facewatch/dashboard-module/internal/api/errors"
	"github.com/bigkaa/facewatch/dashboard-module/internal/service"
)

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// listResponse — обёртка списочных ответов.
type listResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
}

// writeList записывает списочный ответ. items должен быть слайсом.
func writeList(w http.ResponseWriter, items any, count int) {
	writeJSON(w, http.StatusOK, listResponse{Items: items, Count: count})
}

// queryInt извлекает целочисленный query-параметр.
// Возвращает defaultVal, если параметр отсутствует.
func queryInt(r *http.Request, key string, defaultVal int) (int, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(val)
}

// queryTime извлекает query-параметр времени в формате RFC3339.
// Возвращает nil, если параметр отсутствует.
func queryTime(r *http.Request, key string) (*time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// queryString извлекает строковый query-параметр.
// Возвращает nil, если параметр отсутствует или пуст.
func queryString(r *http.Request, key string) *string {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	return &val
}

// writeServiceError отображает ошибку сервисного слоя в HTTP-ответ.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, "Ресурс не найден")
	case errors.Is(err, service.ErrAmbiguousIdentifier):
		apierrors.AmbiguousIdentifier(w, "Идентификатору соответствует несколько снимков")
	case errors.Is(err, service.ErrUnsupportedFormat):
		apierrors.UnsupportedMedia(w, "Оригинал не декодируется как изображение")
	case errors.Is(err, service.ErrStorageUnavailable):
		apierrors.InternalError(w, "Хранилище недоступно")
	default:
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}
