package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"kaycrm/internal/bookings/service"
	"kaycrm/internal/bookings/validator"
	apperrors "kaycrm/pkg/errors"
	httputil "kaycrm/pkg/http"
	"kaycrm/pkg/logger"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// AvailabilityResponse is advisory: a later create may still conflict.
type AvailabilityResponse struct {
	VehicleID     string `json:"vehicle_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Available     bool   `json:"available"`
	Authoritative bool   `json:"authoritative"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in validator.CreateBookingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeBadBody(w, "Create")
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), &in)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) ChangeStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var in validator.ChangeStatusInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeBadBody(w, "ChangeStatus")
		return
	}

	booking, err := h.service.ChangeStatus(r.Context(), id, in.Status)
	if err != nil {
		h.writeError(w, "ChangeStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "ChangeStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	bookings, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) ListByVehicle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookings, err := h.service.ListByVehicle(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "ListByVehicle", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByVehicle", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	vehicleID := ps.ByName("id")
	query := r.URL.Query()
	start := query.Get("start_date")
	end := query.Get("end_date")

	available, err := h.service.CheckAvailability(r.Context(), vehicleID, start, end)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	if err := httputil.WriteSuccess(w, AvailabilityResponse{
		VehicleID: vehicleID,
		StartDate: start,
		EndDate:   end,
		Available: available,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeBadBody(w http.ResponseWriter, handler string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if !apperrors.IsAppError(err) || apperrors.HasCode(err, apperrors.CodeInternal) {
		h.log.Error("request failed", "handler", handler, "error", err)
	}
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.GetAll)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id/status", h.ChangeStatus)
	router.GET("/api/v1/vehicles/:id/bookings", h.ListByVehicle)
	router.GET("/api/v1/vehicles/:id/availability", h.Availability)
}
