package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"garageflow/internal/booking"
	"garageflow/internal/mechanic"
	"garageflow/internal/parts"
	"garageflow/internal/workflow"
	"garageflow/pkg/config"
	"garageflow/pkg/logger"
	"garageflow/pkg/metrics"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	directory := mechanic.NewMemoryDirectory([]mechanic.Mechanic{
		{ID: "mech-1", Name: "Ravi Kumar", Phone: "+91-98", Specialization: "AC System", Available: true},
		{ID: "mech-busy", Name: "Busy Mechanic", Available: false},
	})
	catalog := parts.NewMemoryCatalog([]parts.Part{
		{ID: "part-compressor", Name: "AC Compressor", Category: "AC System", Cost: decimal.NewFromInt(15000), InStock: true},
	})

	engine := workflow.NewEngine(directory, catalog)
	svc := workflow.NewService(booking.NewMemoryStore(), engine, nil, logger.Nop(), metrics.NewForTest())

	cfg := config.Config{
		Portal: config.PortalConfig{
			Secret:        "test-secret",
			BaseURL:       "http://localhost:3000",
			TokenTTLHours: 1,
		},
	}
	return NewRouter(Dependencies{Cfg: cfg, Bookings: svc, Mechanics: directory})
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, want int) map[string]any {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int) string {
	t.Helper()
	out := decode(t, rec, wantStatus)
	e, ok := out["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	code, _ := e["code"].(string)
	return code
}

func createTestBooking(t *testing.T, r http.Handler) string {
	t.Helper()
	rec := do(t, r, http.MethodPost, "/v1/bookings", map[string]any{
		"customerName":  "Asha Verma",
		"customerPhone": "+91-99",
		"customerEmail": "asha@example.com",
		"vehicleModel":  "Honda City",
		"vehiclePlate":  "MH12AB1234",
	})
	out := decode(t, rec, http.StatusCreated)
	id, _ := out["id"].(string)
	if id == "" {
		t.Fatalf("no booking id in response: %s", rec.Body.String())
	}
	return id
}

func TestHealthz(t *testing.T) {
	rec := do(t, testRouter(t), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	r := testRouter(t)
	id := createTestBooking(t, r)

	rec := do(t, r, http.MethodPost, "/v1/bookings/"+id+"/assign", map[string]any{"mechanicId": "mech-1"})
	out := decode(t, rec, http.StatusOK)
	if out["status"] != "assigned" {
		t.Fatalf("expected assigned, got %v", out["status"])
	}

	rec = do(t, r, http.MethodPost, "/v1/bookings/"+id+"/inspection", map[string]any{
		"issues": []map[string]any{{
			"category":    "AC System",
			"description": "Compressor not engaging",
			"severity":    "high",
			"parts":       []map[string]any{{"partId": "part-compressor", "quantity": 1}},
			"laborHours":  "4",
			"laborRate":   "500",
		}},
		"notes":         "compressor replacement",
		"estimatedDays": 2,
	})
	out = decode(t, rec, http.StatusOK)
	if out["status"] != "inspection_completed" {
		t.Fatalf("expected inspection_completed, got %v", out["status"])
	}

	rec = do(t, r, http.MethodPost, "/v1/bookings/"+id+"/quotation", nil)
	out = decode(t, rec, http.StatusOK)
	q, _ := out["quotation"].(map[string]any)
	if q == nil || fmt.Sprint(q["total"]) != "20060" {
		t.Fatalf("unexpected quotation: %v", out["quotation"])
	}

	rec = do(t, r, http.MethodPost, "/v1/bookings/"+id+"/approval", map[string]any{"decision": "approved"})
	decode(t, rec, http.StatusOK)

	rec = do(t, r, http.MethodPost, "/v1/bookings/"+id+"/progress", map[string]any{
		"status": "work_in_progress", "note": "teardown", "actor": "mech-1",
	})
	decode(t, rec, http.StatusOK)

	rec = do(t, r, http.MethodPost, "/v1/bookings/"+id+"/progress", map[string]any{
		"status": "work_completed", "actor": "mech-1",
	})
	decode(t, rec, http.StatusOK)

	rec = do(t, r, http.MethodPost, "/v1/bookings/"+id+"/expenses", map[string]any{
		"type": "part", "description": "Extra refrigerant", "amount": "500", "quantity": 2, "actor": "mech-1",
	})
	decode(t, rec, http.StatusOK)

	rec = do(t, r, http.MethodPost, "/v1/bookings/"+id+"/invoice", nil)
	out = decode(t, rec, http.StatusOK)
	inv, _ := out["invoice"].(map[string]any)
	if inv == nil || fmt.Sprint(inv["total"]) != "21240" {
		t.Fatalf("unexpected invoice: %v", out["invoice"])
	}

	rec = do(t, r, http.MethodPost, "/v1/bookings/"+id+"/payment", nil)
	out = decode(t, rec, http.StatusOK)
	if out["status"] != "payment_completed" {
		t.Fatalf("expected payment_completed, got %v", out["status"])
	}

	// Detail view includes allowed next transitions (none once terminal).
	rec = do(t, r, http.MethodGet, "/v1/bookings/"+id, nil)
	out = decode(t, rec, http.StatusOK)
	if out["allowedNext"] != nil {
		t.Fatalf("terminal booking should have no next transitions: %v", out["allowedNext"])
	}
}

func TestErrorMapping(t *testing.T) {
	r := testRouter(t)
	id := createTestBooking(t, r)

	t.Run("invalid transition is 409", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/v1/bookings/"+id+"/invoice", nil)
		if code := errorCode(t, rec, http.StatusConflict); code != workflow.CodeInvalidTransition {
			t.Fatalf("expected INVALID_TRANSITION, got %s", code)
		}
	})

	t.Run("unknown booking is 404", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/v1/bookings/bk-missing", nil)
		if code := errorCode(t, rec, http.StatusNotFound); code != workflow.CodeNotFound {
			t.Fatalf("expected NOT_FOUND, got %s", code)
		}
	})

	t.Run("unavailable mechanic is 409", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/v1/bookings/"+id+"/assign", map[string]any{"mechanicId": "mech-busy"})
		if code := errorCode(t, rec, http.StatusConflict); code != workflow.CodeMechanicUnavailable {
			t.Fatalf("expected MECHANIC_UNAVAILABLE, got %s", code)
		}
	})

	t.Run("validation failure is 400", func(t *testing.T) {
		rec := do(t, r, http.MethodPost, "/v1/bookings", map[string]any{"customerName": "Orphan"})
		if code := errorCode(t, rec, http.StatusBadRequest); code != workflow.CodeValidationFailed {
			t.Fatalf("expected VALIDATION_FAILED, got %s", code)
		}
	})

	t.Run("bad json is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/bookings", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestMechanicEndpoints(t *testing.T) {
	r := testRouter(t)

	rec := do(t, r, http.MethodGet, "/v1/mechanics", nil)
	out := decode(t, rec, http.StatusOK)
	items, _ := out["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 mechanics, got %d", len(items))
	}

	rec = do(t, r, http.MethodPatch, "/v1/mechanics/mech-busy/availability", map[string]any{"available": true})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, r, http.MethodPatch, "/v1/mechanics/mech-missing/availability", map[string]any{"available": true})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListStatusesEndpoint(t *testing.T) {
	rec := do(t, testRouter(t), http.MethodGet, "/v1/statuses", nil)
	out := decode(t, rec, http.StatusOK)
	items, _ := out["items"].([]any)
	if len(items) != 13 {
		t.Fatalf("expected 13 statuses, got %d", len(items))
	}
}

func TestPortalFlow(t *testing.T) {
	r := testRouter(t)
	id := createTestBooking(t, r)

	do(t, r, http.MethodPost, "/v1/bookings/"+id+"/assign", map[string]any{"mechanicId": "mech-1"})
	do(t, r, http.MethodPost, "/v1/bookings/"+id+"/inspection", map[string]any{
		"issues": []map[string]any{{
			"category": "AC System", "description": "leak", "severity": "medium",
			"laborHours": "2", "laborRate": "500",
		}},
		"estimatedDays": 1,
	})
	do(t, r, http.MethodPost, "/v1/bookings/"+id+"/quotation", nil)

	rec := do(t, r, http.MethodPost, "/v1/bookings/"+id+"/portal-link", nil)
	out := decode(t, rec, http.StatusCreated)
	token, _ := out["token"].(string)
	if token == "" {
		t.Fatalf("no token minted: %s", rec.Body.String())
	}

	rec = do(t, r, http.MethodGet, "/v1/portal/"+token, nil)
	view := decode(t, rec, http.StatusOK)
	if view["bookingId"] != id || view["status"] != "quotation_sent" {
		t.Fatalf("unexpected portal view: %v", view)
	}
	if _, internal := view["workProgressLog"]; internal {
		t.Fatalf("portal view must not expose internal records")
	}

	rec = do(t, r, http.MethodPost, "/v1/portal/"+token+"/approve", nil)
	out = decode(t, rec, http.StatusOK)
	if out["status"] != "approved" {
		t.Fatalf("expected approved, got %v", out["status"])
	}

	rec = do(t, r, http.MethodGet, "/v1/portal/garbage-token", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for bad token, got %d", rec.Code)
	}
}
