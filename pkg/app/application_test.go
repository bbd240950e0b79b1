package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kaycrm/internal/bookings/availability"
	"kaycrm/internal/bookings/handler"
	"kaycrm/internal/bookings/repository"
	"kaycrm/internal/bookings/service"
	"kaycrm/internal/bookings/validator"
	"kaycrm/internal/directory"
	"kaycrm/pkg/client"
	"kaycrm/pkg/config"
	"kaycrm/pkg/logger"
	"kaycrm/pkg/middleware"
	"kaycrm/pkg/model"
)

func testConfig() *config.Config {
	return &config.Config{
		StorageBackend:    config.StorageMemory,
		Port:              "0",
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1 << 16,
		ReadTimeout:       time.Second,
		WriteTimeout:      time.Second,
		IdleTimeout:       time.Second,
		ShutdownTimeout:   time.Second,
		Log:               logger.Discard(),
		Client:            client.NewClient(),
	}
}

func newTestApp(t *testing.T) *Application {
	t.Helper()
	cfg := testConfig()

	dir := directory.NewMemoryDirectory()
	dir.AddCustomer(model.Customer{ID: "C1", FullName: "Dana Levi"})
	dir.AddVehicle(model.Vehicle{ID: "V1", Plate: "7ABC123", Category: "suv"})
	svc := service.NewBookingService(
		repository.NewMemoryBookingRepository(),
		dir,
		availability.NewIndex(),
		validator.NewBookingValidator(cfg.Log),
		cfg.Log,
	)

	a := NewApplication()
	a.SetApp(cfg, handler.NewBookingHandler(svc, cfg.Log))
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})
	return a
}

func TestApplication_HealthAndReady(t *testing.T) {
	h := newTestApp(t).Handler()

	for _, path := range []string{"/health", "/ready"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
}

func TestApplication_IdempotentCreate(t *testing.T) {
	h := newTestApp(t).Handler()
	body := `{"customer_id":"C1","vehicle_id":"V1","start_date":"2025-06-01","end_date":"2025-06-05"}`

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.DefaultIdempotencyHeader, "retry-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	if first.Code != http.StatusCreated {
		t.Fatalf("first status = %d, body = %s", first.Code, first.Body.String())
	}
	if first.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("response should carry a request id")
	}

	second := send()
	if second.Code != http.StatusCreated {
		t.Fatalf("replay status = %d, want the original 201 (a retry must not hit the conflict check)", second.Code)
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Error("replay header missing")
	}
	if second.Body.String() != first.Body.String() {
		t.Error("replayed body differs")
	}
}

func TestApplication_RejectsWrongContentType(t *testing.T) {
	h := newTestApp(t).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString(`customer_id=C1`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}

func TestApplication_ShutdownHooksRunInReverse(t *testing.T) {
	a := newTestApp(t)
	var order []string
	a.OnShutdown("first", func(context.Context) { order = append(order, "first") })
	a.OnShutdown("second", func(context.Context) { order = append(order, "second") })

	a.gracefulShutdown()

	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("order = %v", order)
	}
}
