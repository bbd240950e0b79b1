package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"

	"kaycrm/internal/bookings/availability"
	"kaycrm/internal/bookings/repository"
	"kaycrm/internal/bookings/service"
	"kaycrm/internal/bookings/validator"
	"kaycrm/internal/directory"
	apperrors "kaycrm/pkg/errors"
	"kaycrm/pkg/logger"
	"kaycrm/pkg/model"
)

func newTestRouter(t *testing.T) *httprouter.Router {
	t.Helper()
	log := logger.Discard()

	dir := directory.NewMemoryDirectory()
	dir.AddCustomer(model.Customer{ID: "C1", FullName: "Dana Levi"})
	dir.AddVehicle(model.Vehicle{ID: "V1", Plate: "12-345-67", Category: "compact"})

	svc := service.NewBookingService(
		repository.NewMemoryBookingRepository(),
		dir,
		availability.NewIndex(),
		validator.NewBookingValidator(log),
		log,
	)

	router := httprouter.New()
	NewBookingHandler(svc, log).RegisterRoutes(router)
	return router
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details map[string]any  `json:"details"`
}

func do(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func createBooking(t *testing.T, router http.Handler, start, end string) *model.Booking {
	t.Helper()
	rec, env := do(t, router, http.MethodPost, "/api/v1/bookings",
		`{"customer_id":"C1","vehicle_id":"V1","start_date":"`+start+`","end_date":"`+end+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var b model.Booking
	if err := json.Unmarshal(env.Data, &b); err != nil {
		t.Fatalf("decode booking: %v", err)
	}
	return &b
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	first := createBooking(t, router, "2025-06-01", "2025-06-05")
	if first.Status != model.StatusPending {
		t.Errorf("status = %q, want pending", first.Status)
	}
	if got := first.Range.Start.String(); got != "2025-06-01" {
		t.Errorf("start_date = %q", got)
	}

	rec, env := do(t, router, http.MethodGet, "/api/v1/vehicles/V1/availability?start_date=2025-06-05&end_date=2025-06-08", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("availability status = %d", rec.Code)
	}
	var avail AvailabilityResponse
	if err := json.Unmarshal(env.Data, &avail); err != nil {
		t.Fatal(err)
	}
	if !avail.Available || avail.Authoritative {
		t.Errorf("availability = %+v, want available and not authoritative", avail)
	}

	rec, env = do(t, router, http.MethodPost, "/api/v1/bookings",
		`{"customer_id":"C1","vehicle_id":"V1","start_date":"2025-06-03","end_date":"2025-06-06"}`)
	if rec.Code != http.StatusConflict || env.Code != apperrors.CodeConflict {
		t.Fatalf("overlapping create = %d %q, want 409 CONFLICT", rec.Code, env.Code)
	}
	if conflicts, _ := env.Details["conflicts"].([]any); len(conflicts) != 1 {
		t.Errorf("conflicts = %v, want one entry", env.Details["conflicts"])
	}

	rec, _ = do(t, router, http.MethodPatch, "/api/v1/bookings/id/"+first.ID+"/status", `{"status":"cancelled"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d, body = %s", rec.Code, rec.Body.String())
	}

	second := createBooking(t, router, "2025-06-03", "2025-06-06")

	for _, status := range []string{"active", "completed"} {
		rec, _ = do(t, router, http.MethodPatch, "/api/v1/bookings/id/"+second.ID+"/status", `{"status":"`+status+`"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", status, rec.Code)
		}
	}

	rec, env = do(t, router, http.MethodPatch, "/api/v1/bookings/id/"+second.ID+"/status", `{"status":"active"}`)
	if rec.Code != http.StatusConflict || env.Code != apperrors.CodeIllegalTransition {
		t.Fatalf("completed->active = %d %q, want 409 ILLEGAL_TRANSITION", rec.Code, env.Code)
	}

	rec, env = do(t, router, http.MethodGet, "/api/v1/vehicles/V1/bookings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list []model.Booking
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("vehicle bookings = %d, want 2", len(list))
	}
}

func TestCreate_Errors(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed json", `{"customer_id":`, http.StatusBadRequest, ""},
		{"inverted range", `{"customer_id":"C1","vehicle_id":"V1","start_date":"2025-06-05","end_date":"2025-06-01"}`, http.StatusUnprocessableEntity, apperrors.CodeValidation},
		{"missing fields", `{"vehicle_id":"V1"}`, http.StatusUnprocessableEntity, apperrors.CodeValidation},
		{"unknown customer", `{"customer_id":"C9","vehicle_id":"V1","start_date":"2025-06-01","end_date":"2025-06-02"}`, http.StatusNotFound, apperrors.CodeNotFound},
		{"unknown vehicle", `{"customer_id":"C1","vehicle_id":"V9","start_date":"2025-06-01","end_date":"2025-06-02"}`, http.StatusNotFound, apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, router, http.MethodPost, "/api/v1/bookings", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if env.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", env.Code, tt.wantCode)
			}
		})
	}
}

func TestGetByID_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec, env := do(t, router, http.MethodGet, "/api/v1/bookings/id/0b8f2f61-6c1c-4f59-9c55-1a8d3b1b4c11", "")
	if rec.Code != http.StatusNotFound || env.Code != apperrors.CodeNotFound {
		t.Errorf("got %d %q, want 404 NOT_FOUND", rec.Code, env.Code)
	}
}

func TestAvailability_InvalidRange(t *testing.T) {
	router := newTestRouter(t)

	rec, env := do(t, router, http.MethodGet, "/api/v1/vehicles/V1/availability?start_date=2025-06-08&end_date=2025-06-08", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	if env.Details["reason"] == nil {
		t.Errorf("expected a reason in details, got %v", env.Details)
	}
}

type stubService struct {
	service.BookingService
	getAll func(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
}

func (s *stubService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	return s.getAll(ctx, limit, offset)
}

func TestGetAll_QueryParameters(t *testing.T) {
	var gotLimit int
	var gotOffset int64
	svc := &stubService{getAll: func(_ context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
		gotLimit, gotOffset = limit, offset
		return []*model.Booking{}, 0, nil
	}}
	router := httprouter.New()
	NewBookingHandler(svc, logger.Discard()).RegisterRoutes(router)

	tests := []struct {
		query      string
		wantStatus int
		wantLimit  int
		wantOffset int64
	}{
		{"", http.StatusOK, 10, 0},
		{"?limit=5&offset=20", http.StatusOK, 5, 20},
		{"?limit=1000", http.StatusOK, 100, 0},
		{"?offset=-3", http.StatusOK, 10, 0},
		{"?limit=abc", http.StatusBadRequest, 0, 0},
		{"?offset=1.5", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			gotLimit, gotOffset = 0, 0
			rec, _ := do(t, router, http.MethodGet, "/api/v1/bookings"+tt.query, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotLimit != tt.wantLimit || gotOffset != tt.wantOffset {
				t.Errorf("service got limit=%d offset=%d, want %d/%d", gotLimit, gotOffset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestGetAll_InternalErrorHidden(t *testing.T) {
	svc := &stubService{getAll: func(context.Context, int, int64) ([]*model.Booking, int64, error) {
		return nil, 0, apperrors.Internal("Failed to count bookings", errors.New("connection reset by peer"))
	}}
	router := httprouter.New()
	NewBookingHandler(svc, logger.Discard()).RegisterRoutes(router)

	rec, env := do(t, router, http.MethodGet, "/api/v1/bookings", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if env.Error != "Internal server error" {
		t.Errorf("error = %q, cause must not leak", env.Error)
	}
}

func TestHealth(t *testing.T) {
	router := httprouter.New()
	NewHealthHandler(nil, logger.Discard()).RegisterRoutes(router)

	for path, want := range map[string]string{"/health": "ok", "/ready": "ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
		var body HealthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Status != want {
			t.Errorf("%s status = %q, want %q", path, body.Status, want)
		}
	}
}
