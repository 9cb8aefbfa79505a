// cameras.go — HTTP handlers сводок по камерам.
// GET /api/v1/cameras — сводка по всем камерам
// GET /api/v1/cameras/{camera_id}/people — персоны, замеченные камерой
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/facewatch/dashboard-module/internal/api/errors"
	"github.com/bigkaa/facewatch/dashboard-module/internal/service"
)

// CamerasHandler — обработчик endpoints камер.
type CamerasHandler struct {
	alerts *service.AlertService
}

// NewCamerasHandler создаёт обработчик камер.
func NewCamerasHandler(alerts *service.AlertService) *CamerasHandler {
	return &CamerasHandler{alerts: alerts}
}

// ListCameras обрабатывает GET /api/v1/cameras.
func (h *CamerasHandler) ListCameras(w http.ResponseWriter, r *http.Request) {
	cameras, err := h.alerts.Cameras(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeList(w, cameras, len(cameras))
}

// GetCameraPeople обрабатывает GET /api/v1/cameras/{camera_id}/people.
// Параметр limit ограничивает количество персон в ответе.
func (h *CamerasHandler) GetCameraPeople(w http.ResponseWriter, r *http.Request) {
	cameraID := chi.URLParam(r, "camera_id")

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		apierrors.ValidationError(w, "Параметр limit должен быть целым числом")
		return
	}

	people, err := h.alerts.CameraPeople(r.Context(), cameraID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeList(w, people, len(people))
}
