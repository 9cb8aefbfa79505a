// people.go — HTTP handlers сводок по распознанным персонам.
// GET /api/v1/people — сводка по всем персонам
// GET /api/v1/people/{person_id} — детальная сводка
// GET /api/v1/people/{person_id}/images — снимки персоны
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/facewatch/dashboard-module/internal/service"
)

// PeopleHandler — обработчик endpoints персон.
type PeopleHandler struct {
	alerts *service.AlertService
}

// NewPeopleHandler создаёт обработчик персон.
func NewPeopleHandler(alerts *service.AlertService) *PeopleHandler {
	return &PeopleHandler{alerts: alerts}
}

// ListPeople обрабатывает GET /api/v1/people.
func (h *PeopleHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.alerts.People(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeList(w, people, len(people))
}

// GetPerson обрабатывает GET /api/v1/people/{person_id}.
func (h *PeopleHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "person_id")

	person, err := h.alerts.PersonByID(r.Context(), personID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, person)
}

// GetPersonImages обрабатывает GET /api/v1/people/{person_id}/images.
func (h *PeopleHandler) GetPersonImages(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "person_id")

	images, err := h.alerts.PersonImages(r.Context(), personID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeList(w, images, len(images))
}
