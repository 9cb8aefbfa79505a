package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/facewatch/dashboard-module/internal/domain/model"
	"github.com/bigkaa/facewatch/dashboard-module/internal/repository"
	"github.com/bigkaa/facewatch/dashboard-module/internal/service"
)

// fakeAlertRepo — тестовая реализация AlertRepository.
type fakeAlertRepo struct {
	lastFilter repository.AlertFilter
	alerts     []*model.Alert
}

func (f *fakeAlertRepo) List(_ context.Context, filter repository.AlertFilter) ([]*model.Alert, error) {
	f.lastFilter = filter
	return f.alerts, nil
}

func (f *fakeAlertRepo) GetByID(_ context.Context, alertID string) (*model.Alert, error) {
	for _, a := range f.alerts {
		if a.ID == alertID {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

// fakeStatsRepo — заглушка StatsRepository (в этих тестах не вызывается).
type fakeStatsRepo struct {
	repository.StatsRepository
}

func newAlertsRouter(repo *fakeAlertRepo) *chi.Mux {
	logger := slog.New(slog.DiscardHandler)
	svc := service.NewAlertService(repo, &fakeStatsRepo{}, logger)
	h := NewAlertsHandler(svc)

	router := chi.NewRouter()
	router.Get("/api/v1/alerts", h.ListAlerts)
	router.Get("/api/v1/alerts/{alert_id}", h.GetAlert)
	return router
}

// TestAlertsHandler_List проверяет передачу фильтров в репозиторий
// и формат списочного ответа.
func TestAlertsHandler_List(t *testing.T) {
	repo := &fakeAlertRepo{
		alerts: []*model.Alert{
			{ID: "a-1", Level: model.LevelAlert, Message: "цель обнаружена"},
			{ID: "a-2", Level: model.LevelInfo, Message: "движение в кадре"},
		},
	}
	router := newAlertsRouter(repo)

	rec := httptest.NewRecorder()
	url := "/api/v1/alerts?level=alert&camera_id=cam-1&search=цель&start_time=2026-03-01T00:00:00Z&limit=10&offset=20"
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Items []*model.Alert `json:"items"`
		Count int            `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("ошибка разбора ответа: %v", err)
	}
	if resp.Count != 2 || len(resp.Items) != 2 {
		t.Errorf("count = %d, items = %d, ожидалось 2/2", resp.Count, len(resp.Items))
	}

	// Фильтры дошли до репозитория
	f := repo.lastFilter
	if f.Level == nil || *f.Level != "alert" {
		t.Errorf("Level = %v, ожидался alert", f.Level)
	}
	if f.CameraID == nil || *f.CameraID != "cam-1" {
		t.Errorf("CameraID = %v, ожидался cam-1", f.CameraID)
	}
	if f.MessageSearch == nil || *f.MessageSearch != "цель" {
		t.Errorf("MessageSearch = %v", f.MessageSearch)
	}
	wantStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if f.StartTime == nil || !f.StartTime.Equal(wantStart) {
		t.Errorf("StartTime = %v, ожидался %v", f.StartTime, wantStart)
	}
	if f.Limit != 10 || f.Offset != 20 {
		t.Errorf("Limit/Offset = %d/%d, ожидалось 10/20", f.Limit, f.Offset)
	}
}

// TestAlertsHandler_ListValidation проверяет 400 для некорректных
// параметров.
func TestAlertsHandler_ListValidation(t *testing.T) {
	router := newAlertsRouter(&fakeAlertRepo{})

	cases := []struct {
		name string
		url  string
	}{
		{"некорректный start_time", "/api/v1/alerts?start_time=вчера"},
		{"некорректный limit", "/api/v1/alerts?limit=many"},
		{"недопустимый level", "/api/v1/alerts?level=critical"},
		{"отрицательный offset", "/api/v1/alerts?offset=-5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.url, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("статус = %d, ожидался 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

// TestAlertsHandler_GetAlert проверяет получение события и 404.
func TestAlertsHandler_GetAlert(t *testing.T) {
	router := newAlertsRouter(&fakeAlertRepo{
		alerts: []*model.Alert{{ID: "a-1", Message: "цель обнаружена"}},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alerts/a-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alerts/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("статус = %d, ожидался 404", rec.Code)
	}
}
