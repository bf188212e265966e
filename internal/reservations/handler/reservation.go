package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"roomtime/internal/reservations/service"
	apperrors "roomtime/pkg/errors"
	httputil "roomtime/pkg/http"
	"roomtime/pkg/logger"
	"roomtime/pkg/model"
	"roomtime/pkg/sanitizer"

	"github.com/julienschmidt/httprouter"
)

const actorHeader = "X-Actor-ID"

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) RequestBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "RequestBooking", apperrors.InvalidInput("Invalid request body"))
		return
	}

	reservation, err := h.service.RequestBooking(r.Context(), &req)
	if err != nil {
		h.writeError(w, "RequestBooking", err)
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "RequestBooking", "error", err)
	}
}

func (h *ReservationHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	actor := sanitizer.NormalizeActor(r.Header.Get(actorHeader))

	reservation, err := h.service.Confirm(r.Context(), id, actor)
	if err != nil {
		h.writeError(w, "Confirm", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "Confirm", "error", err)
	}
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	actor := sanitizer.NormalizeActor(r.Header.Get(actorHeader))

	reservation, err := h.service.Cancel(r.Context(), id, actor)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *ReservationHandler) ListForOwner(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		h.writeError(w, "ListForOwner", apperrors.InvalidInput("'owner_id' query parameter is required"))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListForOwner", err)
		return
	}

	reservations, total, err := h.service.ListForOwner(r.Context(), ownerID, limit, offset)
	if err != nil {
		h.writeError(w, "ListForOwner", err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListForOwner", "error", err)
	}
}

func (h *ReservationHandler) ListForResource(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resourceID := ps.ByName("id")
	query := r.URL.Query()

	interval, err := parseRangeParams(query.Get("from"), query.Get("to"))
	if err != nil {
		h.writeError(w, "ListForResource", err)
		return
	}

	reservations, err := h.service.ListForResource(r.Context(), resourceID, interval)
	if err != nil {
		h.writeError(w, "ListForResource", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservations); err != nil {
		h.log.Error("failed to write success response", "handler", "ListForResource", "error", err)
	}
}

func (h *ReservationHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resourceID := ps.ByName("id")

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.writeError(w, "Availability", apperrors.InvalidInput("'date' query parameter is required (YYYY-MM-DD)"))
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		h.writeError(w, "Availability", apperrors.InvalidInput("invalid date format, must be YYYY-MM-DD"))
		return
	}

	availability, err := h.service.GetBusyIntervals(r.Context(), resourceID, date)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "error", err)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.RequestBooking)
	router.GET("/api/v1/reservations", h.ListForOwner)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.POST("/api/v1/reservations/id/:id/confirm", h.Confirm)
	router.POST("/api/v1/reservations/id/:id/cancel", h.Cancel)
	router.GET("/api/v1/reservations/resource/:id", h.ListForResource)
	router.GET("/api/v1/resources/:id/availability", h.Availability)
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

// parseRangeParams turns optional from/to query params into a query window.
// Missing bounds default to a wide-open range.
func parseRangeParams(fromStr, toStr string) (model.Interval, error) {
	from := time.Unix(0, 0).UTC()
	to := time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

	if fromStr != "" {
		parsed, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return model.Interval{}, apperrors.InvalidInput("invalid 'from' format, must be RFC3339")
		}
		from = parsed
	}
	if toStr != "" {
		parsed, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return model.Interval{}, apperrors.InvalidInput("invalid 'to' format, must be RFC3339")
		}
		to = parsed
	}

	return model.NewInterval(from, to), nil
}
