package repository

import (
	"strings"
	"testing"
	"time"
)

// --- Тесты buildAlertWhere ---

// TestBuildAlertWhere_Empty проверяет пустые фильтры.
func TestBuildAlertWhere_Empty(t *testing.T) {
	where, args := buildAlertWhere(AlertFilter{}, 1)

	if where != "" {
		t.Errorf("where = %q, ожидалась пустая строка", where)
	}
	if len(args) != 0 {
		t.Errorf("args count = %d, ожидался 0", len(args))
	}
}

// TestBuildAlertWhere_TimeRange проверяет фильтрацию по временному диапазону.
func TestBuildAlertWhere_TimeRange(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	filter := AlertFilter{StartTime: &start, EndTime: &end}

	where, args := buildAlertWhere(filter, 1)

	if !strings.Contains(where, "time >= $1") {
		t.Errorf("where = %q, ожидалось содержание 'time >= $1'", where)
	}
	if !strings.Contains(where, "time <= $2") {
		t.Errorf("where = %q, ожидалось содержание 'time <= $2'", where)
	}
	if len(args) != 2 {
		t.Fatalf("args count = %d, ожидался 2", len(args))
	}
	if args[0] != start || args[1] != end {
		t.Errorf("args = %v, ожидались границы диапазона", args)
	}
}

// TestBuildAlertWhere_LevelOnly проверяет фильтрацию по уровню.
func TestBuildAlertWhere_LevelOnly(t *testing.T) {
	level := "alert"
	where, args := buildAlertWhere(AlertFilter{Level: &level}, 1)

	if !strings.Contains(where, "level = $1") {
		t.Errorf("where = %q, ожидалось содержание 'level = $1'", where)
	}
	if len(args) != 1 || args[0] != "alert" {
		t.Errorf("args = %v, ожидался ['alert']", args)
	}
}

// TestBuildAlertWhere_MessageSearch проверяет подстрочный поиск по сообщению.
func TestBuildAlertWhere_MessageSearch(t *testing.T) {
	search := "camera 123"
	where, args := buildAlertWhere(AlertFilter{MessageSearch: &search}, 1)

	if !strings.Contains(where, "message ILIKE $1") {
		t.Errorf("where = %q, ожидался ILIKE по сообщению", where)
	}
	if len(args) != 1 {
		t.Fatalf("args count = %d, ожидался 1", len(args))
	}
	// Должен быть обёрнут в %...%
	if args[0] != "%camera 123%" {
		t.Errorf("args[0] = %v, ожидался '%%camera 123%%'", args[0])
	}
}

// TestBuildAlertWhere_AllFilters проверяет нумерацию параметров
// при комбинировании всех фильтров.
func TestBuildAlertWhere_AllFilters(t *testing.T) {
	start := time.Now().UTC().Add(-time.Hour)
	end := time.Now().UTC()
	level := "warning"
	camera := "cam-7"
	person := "person-42"
	search := "detected"

	filter := AlertFilter{
		StartTime:     &start,
		EndTime:       &end,
		Level:         &level,
		CameraID:      &camera,
		PersonID:      &person,
		MessageSearch: &search,
	}

	where, args := buildAlertWhere(filter, 1)

	if len(args) != 6 {
		t.Fatalf("args count = %d, ожидался 6", len(args))
	}
	for i := 1; i <= 6; i++ {
		placeholder := "$" + string(rune('0'+i))
		if !strings.Contains(where, placeholder) {
			t.Errorf("where = %q, не содержит параметр %s", where, placeholder)
		}
	}
	if !strings.HasPrefix(where, "WHERE ") {
		t.Errorf("where = %q, ожидался префикс 'WHERE '", where)
	}
	if strings.Count(where, " AND ") != 5 {
		t.Errorf("where = %q, ожидалось 5 соединений AND", where)
	}
}

// TestBuildAlertWhere_EmptyStrings проверяет, что пустые строки
// не добавляют условий.
func TestBuildAlertWhere_EmptyStrings(t *testing.T) {
	empty := ""
	filter := AlertFilter{Level: &empty, CameraID: &empty, PersonID: &empty, MessageSearch: &empty}

	where, args := buildAlertWhere(filter, 1)

	if where != "" {
		t.Errorf("where = %q, ожидалась пустая строка", where)
	}
	if len(args) != 0 {
		t.Errorf("args count = %d, ожидался 0", len(args))
	}
}
