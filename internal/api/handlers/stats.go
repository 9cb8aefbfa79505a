// stats.go — HTTP handlers сводных показателей дашборда.
// GET /api/v1/stats — KPI (события за сутки/неделю, всего, по уровням)
// GET /api/v1/stats/over-time — распределение событий по времени
package handlers

import (
	"net/http"

	apierrors "github.com/bigkaa/facewatch/dashboard-module/internal/api/errors"
	"github.com/bigkaa/facewatch/dashboard-module/internal/service"
)

// StatsHandler — обработчик endpoints сводных показателей.
type StatsHandler struct {
	alerts *service.AlertService
}

// NewStatsHandler создаёт обработчик сводных показателей.
func NewStatsHandler(alerts *service.AlertService) *StatsHandler {
	return &StatsHandler{alerts: alerts}
}

// GetStats обрабатывает GET /api/v1/stats.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.alerts.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// GetAlertsOverTime обрабатывает GET /api/v1/stats/over-time.
// Параметры: days (по умолчанию 7), buckets (по умолчанию 24).
func (h *StatsHandler) GetAlertsOverTime(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 7)
	if err != nil {
		apierrors.ValidationError(w, "Параметр days должен быть целым числом")
		return
	}
	buckets, err := queryInt(r, "buckets", 24)
	if err != nil {
		apierrors.ValidationError(w, "Параметр buckets должен быть целым числом")
		return
	}

	series, err := h.alerts.AlertsOverTime(r.Context(), days, buckets)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeList(w, series, len(series))
}
