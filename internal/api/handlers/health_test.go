package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// staticChecker — тестовая реализация ReadinessChecker.
type staticChecker struct {
	status  string
	message string
}

func (c *staticChecker) CheckReady() (string, string) {
	return c.status, c.message
}

// TestHealthLive проверяет liveness probe.
func TestHealthLive(t *testing.T) {
	h := NewHealthHandler(nil, nil)

	rec := httptest.NewRecorder()
	h.HealthLive(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидался 200", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("ошибка разбора ответа: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %v, ожидался ok", resp["status"])
	}
	if resp["service"] != "dashboard-module" {
		t.Errorf("service = %v", resp["service"])
	}
}

// TestHealthReady проверяет readiness probe для разных состояний
// зависимостей.
func TestHealthReady(t *testing.T) {
	cases := []struct {
		name       string
		pg, blob   ReadinessChecker
		wantCode   int
		wantStatus string
	}{
		{
			name:       "всё ok",
			pg:         &staticChecker{status: "ok"},
			blob:       &staticChecker{status: "ok"},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name:       "postgres fail",
			pg:         &staticChecker{status: "fail", message: "connection refused"},
			blob:       &staticChecker{status: "ok"},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "fail",
		},
		{
			name:       "blobstore fail",
			pg:         &staticChecker{status: "ok"},
			blob:       &staticChecker{status: "fail", message: "диск недоступен"},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "fail",
		},
		{
			name:       "postgres degraded",
			pg:         &staticChecker{status: "degraded", message: "высокая задержка"},
			blob:       &staticChecker{status: "ok"},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
		},
		{
			name:       "checker не инициализирован",
			pg:         nil,
			blob:       &staticChecker{status: "ok"},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "fail",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHealthHandler(tc.pg, tc.blob)

			rec := httptest.NewRecorder()
			h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tc.wantCode {
				t.Errorf("статус = %d, ожидался %d", rec.Code, tc.wantCode)
			}

			var resp map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("ошибка разбора ответа: %v", err)
			}
			if resp["status"] != tc.wantStatus {
				t.Errorf("status = %v, ожидался %s", resp["status"], tc.wantStatus)
			}
		})
	}
}
