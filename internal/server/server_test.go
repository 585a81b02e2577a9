package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/homehub/internal/access"
	"github.com/Veraticus/homehub/internal/expenses"
	"github.com/Veraticus/homehub/internal/recurrence"
	"github.com/Veraticus/homehub/internal/reminders"
	"github.com/Veraticus/homehub/internal/storage"
)

var testToday = recurrence.Date(2025, time.October, 16)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	clock := func() time.Time { return testToday.Add(15 * time.Hour) }
	policy := access.NewPolicy("alex")
	srv := New(":0",
		reminders.NewService(store, policy),
		expenses.NewService(store, policy, expenses.WithClock(clock)),
		WithClock(clock))
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), w.Body.String())
	}
	return w, decoded
}

func TestHealthAndRequestID(t *testing.T) {
	h := newTestServer(t)

	w, body := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestReminders_CreateAndList(t *testing.T) {
	h := newTestServer(t)

	w, body := do(t, h, http.MethodPost, "/api/reminders", map[string]any{
		"title":     "Bins",
		"date":      "2025-10-03",
		"creator":   "sam",
		"recurring": map[string]any{"interval": "1", "unit": "week"},
	})
	require.Equal(t, http.StatusCreated, w.Code, body)
	rule := body["rule"].(map[string]any)
	assert.Equal(t, "week", rule["unit"])

	w, body = do(t, h, http.MethodPost, "/api/reminders", map[string]any{
		"title": "Dentist", "date": "2025-10-10", "time": "09:30", "creator": "sam", "category": "health",
	})
	require.Equal(t, http.StatusCreated, w.Code, body)

	w, body = do(t, h, http.MethodGet, "/api/reminders?scope=month&date=2025-10-20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "month", body["scope"])
	assert.Equal(t, "2025-10-20", body["date"])

	list := body["reminders"].([]any)
	assert.Len(t, list, 6)
	counts := body["counts"].(map[string]any)
	assert.Equal(t, float64(2), counts["2025-10-10"])

	first := list[0].(map[string]any)
	assert.Equal(t, "2025-10-03", first["date"])
	assert.Equal(t, true, first["synthetic"])
	assert.Equal(t, float64(0), first["id"])

	w, body = do(t, h, http.MethodGet, "/api/reminders?date=not-a-date", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "day", body["scope"])
	assert.Equal(t, "2025-10-16", body["date"])
}

func TestReminders_ErrorStatuses(t *testing.T) {
	h := newTestServer(t)

	w, body := do(t, h, http.MethodPost, "/api/reminders", map[string]any{"title": "x", "date": "10/03/2025"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["ok"])
	assert.Contains(t, body["error"], "date")

	w, _ = do(t, h, http.MethodPost, "/api/reminders", map[string]any{
		"title": "x", "date": "2025-10-03", "recurring": map[string]any{"unit": "fortnight"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, body = do(t, h, http.MethodPost, "/api/reminders", map[string]any{"title": "Mine", "date": "2025-10-03", "creator": "sam"})
	id := body["reminder"].(map[string]any)["id"].(float64)
	path := "/api/reminders/" + jsonInt(id)

	w, _ = do(t, h, http.MethodPatch, path, map[string]any{"title": "Theirs", "user": "jo"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = do(t, h, http.MethodPatch, path, map[string]any{"title": "Renamed", "user": "sam"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Renamed", body["reminder"].(map[string]any)["title"])

	w, _ = do(t, h, http.MethodPatch, "/api/reminders/999", map[string]any{"title": "x", "user": "alex"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, h, http.MethodPatch, "/api/reminders/abc", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = do(t, h, http.MethodDelete, "/api/reminders", map[string]any{"ids": []any{id, "999"}, "creator": "sam"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["deleted"])
	assert.Equal(t, []any{"2025-10-03"}, body["dates"])
}

func TestReminderRuleEndpoints(t *testing.T) {
	h := newTestServer(t)

	_, body := do(t, h, http.MethodPost, "/api/reminders", map[string]any{
		"title": "Plants", "date": "2025-10-01", "creator": "sam", "recurring": map[string]any{"frequency": "daily"},
	})
	id := jsonInt(body["rule"].(map[string]any)["id"].(float64))

	w, body := do(t, h, http.MethodPatch, "/api/reminders/rules/"+id, map[string]any{"interval": 3, "user": "admin"})
	require.Equal(t, http.StatusOK, w.Code, body)
	assert.Equal(t, float64(3), body["rule"].(map[string]any)["interval"])

	w, _ = do(t, h, http.MethodDelete, "/api/reminders/rules/"+id+"?creator=jo", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = do(t, h, http.MethodDelete, "/api/reminders/rules/"+id, map[string]any{"creator": "sam"})
	assert.Equal(t, http.StatusOK, w.Code)

	_, body = do(t, h, http.MethodGet, "/api/reminders?scope=week&date=2025-10-16", nil)
	assert.Empty(t, body["reminders"])
}

func TestExpenses_RuleLifecycle(t *testing.T) {
	h := newTestServer(t)

	w, body := do(t, h, http.MethodPost, "/api/expenses/rules", map[string]any{
		"title": "Milk", "category": "food", "unit_price": 30, "start_date": "2025-10-14", "creator": "sam",
	})
	require.Equal(t, http.StatusCreated, w.Code, body)
	rule := body["rule"].(map[string]any)
	id := jsonInt(rule["id"].(float64))
	assert.Equal(t, "2025-10-16", rule["last_generated_date"])

	w, body = do(t, h, http.MethodGet, "/api/expenses/month?year=2025&month=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2025), body["year"])
	assert.Equal(t, float64(10), body["month"])
	assert.Len(t, body["by_date"], 3)
	summary := body["summary"].(map[string]any)
	assert.Equal(t, "90", summary["total_this_month"])
	assert.Equal(t, "food", summary["top_category"])

	w, _ = do(t, h, http.MethodGet, "/api/expenses/month?year=2025&month=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, body = do(t, h, http.MethodGet, "/api/expenses/month", nil)
	assert.Equal(t, "90", body["summary"].(map[string]any)["total_this_month"], "sweeps stay idempotent")

	w, _ = do(t, h, http.MethodPost, "/api/expenses/rules/"+id+"/edit", map[string]any{"unit_price": "40", "user": "jo"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = do(t, h, http.MethodPost, "/api/expenses/rules/"+id+"/edit", map[string]any{
		"unit_price": "40", "start_date": "2025-10-15", "user": "sam",
	})
	require.Equal(t, http.StatusOK, w.Code, body)
	assert.Equal(t, float64(1), body["pruned"])
	assert.Equal(t, float64(2), body["updated"])

	_, body = do(t, h, http.MethodGet, "/api/expenses/month?year=2025&month=13", nil)
	assert.Equal(t, float64(10), body["month"])
	assert.Equal(t, "80", body["summary"].(map[string]any)["total_this_month"])

	w, body = do(t, h, http.MethodPost, "/api/expenses/rules/"+id+"/delete", map[string]any{"delete_entries": "on", "user": "sam"})
	require.Equal(t, http.StatusOK, w.Code, body)
	assert.Equal(t, float64(2), body["entries_removed"])

	_, body = do(t, h, http.MethodGet, "/api/expenses/rules", nil)
	assert.Empty(t, body["rules"])
}

func TestExpenses_Entries(t *testing.T) {
	h := newTestServer(t)

	w, body := do(t, h, http.MethodPost, "/api/expenses/entries", map[string]any{
		"title": "Bread", "unit_price": 2.5, "quantity": 2, "payer": "jo",
	})
	require.Equal(t, http.StatusCreated, w.Code, body)
	entry := body["entry"].(map[string]any)
	assert.Equal(t, "5", entry["amount"])
	assert.Equal(t, "2025-10-16", entry["date"])
	assert.Equal(t, false, entry["recurring"])
	assert.Nil(t, entry["category"])
	id := jsonInt(entry["id"].(float64))

	w, _ = do(t, h, http.MethodPost, "/api/expenses/entries", map[string]any{"title": "Nothing"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, h, http.MethodPatch, "/api/expenses/entries/"+id, map[string]any{"amount": 7, "user": "sam"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = do(t, h, http.MethodPatch, "/api/expenses/entries/"+id, map[string]any{"amount": 7, "user": "jo"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", body["entry"].(map[string]any)["amount"])

	w, _ = do(t, h, http.MethodDelete, "/api/expenses/entries/"+id, map[string]any{"user": "Administrator"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, h, http.MethodDelete, "/api/expenses/entries/"+id, map[string]any{"user": "Administrator"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExpenses_Settings(t *testing.T) {
	h := newTestServer(t)

	_, body := do(t, h, http.MethodGet, "/api/expenses/settings", nil)
	settings := body["settings"].(map[string]any)
	assert.Equal(t, "₹", settings["currency"])
	assert.Equal(t, []any{}, settings["categories"])

	w, _ := do(t, h, http.MethodPost, "/api/expenses/settings", map[string]any{"user": "admin", "currency": "$"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = do(t, h, http.MethodPost, "/api/expenses/settings", map[string]any{
		"user": "alex", "currency": "$", "categories": "food, rent",
	})
	require.Equal(t, http.StatusOK, w.Code)
	settings = body["settings"].(map[string]any)
	assert.Equal(t, "$", settings["currency"])
	assert.Equal(t, []any{"food", "rent"}, settings["categories"])
}

func TestFlexString(t *testing.T) {
	var v struct {
		A flexString `json:"a"`
		B flexString `json:"b"`
		C flexString `json:"c"`
		D flexString `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12.50","b":3,"c":true,"d":null}`), &v))
	assert.Equal(t, "12.50", v.A.String())
	assert.Equal(t, "3", v.B.String())
	assert.Equal(t, "true", v.C.String())
	assert.Empty(t, v.D.String())

	n, err := v.B.Int("b")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	_, err = v.A.Int("a")
	assert.Error(t, err)
}

func jsonInt(f float64) string {
	return strconv.FormatInt(int64(f), 10)
}
