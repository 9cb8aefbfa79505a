// alerts.go — HTTP handlers событий детекции.
// GET /api/v1/alerts — список с фильтрами и пагинацией
// GET /api/v1/alerts/{alert_id} — одно событие
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/facewatch/dashboard-module/internal/api/errors"
	"github.com/bigkaa/facewatch/dashboard-module/internal/repository"
	"github.com/bigkaa/facewatch/dashboard-module/internal/service"
)

// AlertsHandler — обработчик endpoints событий детекции.
type AlertsHandler struct {
	alerts *service.AlertService
}

// NewAlertsHandler создаёт обработчик событий.
func NewAlertsHandler(alerts *service.AlertService) *AlertsHandler {
	return &AlertsHandler{alerts: alerts}
}

// ListAlerts обрабатывает GET /api/v1/alerts.
// Фильтры: start_time, end_time (RFC3339), level, camera_id, person_id,
// search (подстрока в message). Пагинация: limit, offset.
func (h *AlertsHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	var filter repository.AlertFilter
	var err error

	filter.StartTime, err = queryTime(r, "start_time")
	if err != nil {
		apierrors.ValidationError(w, "Параметр start_time должен быть в формате RFC3339")
		return
	}
	filter.EndTime, err = queryTime(r, "end_time")
	if err != nil {
		apierrors.ValidationError(w, "Параметр end_time должен быть в формате RFC3339")
		return
	}

	filter.Level = queryString(r, "level")
	filter.CameraID = queryString(r, "camera_id")
	filter.PersonID = queryString(r, "person_id")
	filter.MessageSearch = queryString(r, "search")

	filter.Limit, err = queryInt(r, "limit", 0)
	if err != nil {
		apierrors.ValidationError(w, "Параметр limit должен быть целым числом")
		return
	}
	filter.Offset, err = queryInt(r, "offset", 0)
	if err != nil {
		apierrors.ValidationError(w, "Параметр offset должен быть целым числом")
		return
	}

	alerts, err := h.alerts.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeList(w, alerts, len(alerts))
}

// GetAlert обрабатывает GET /api/v1/alerts/{alert_id}.
func (h *AlertsHandler) GetAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alert_id")

	alert, err := h.alerts.GetByID(r.Context(), alertID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, alert)
}
