package handler

import (
	"net/http"
	"strconv"

	"roadbook/internal/admin/service"
	bookingsservice "roadbook/internal/bookings/service"
	apperrors "roadbook/pkg/errors"
	httputil "roadbook/pkg/http"
	"roadbook/pkg/logger"
	"roadbook/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type AdminHandler struct {
	stats    service.StatsService
	bookings bookingsservice.BookingService
	log      *logger.Logger
	admin    func(httprouter.Handle) httprouter.Handle
}

func NewAdminHandler(
	stats service.StatsService,
	bookings bookingsservice.BookingService,
	log *logger.Logger,
	admin func(httprouter.Handle) httprouter.Handle,
) *AdminHandler {
	return &AdminHandler{
		stats:    stats,
		bookings: bookings,
		log:      log,
		admin:    admin,
	}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snapshot, err := h.stats.Snapshot(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Stats", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, snapshot); err != nil {
		h.log.Error("failed to write success response", "handler", "Stats", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdminHandler) RecentBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		var err error
		limit, err = strconv.Atoi(s)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid limit parameter: "+s)); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "RecentBookings", "operation", "WriteError", "error", writeErr)
			}
			return
		}
	}

	bookings, err := h.bookings.ListRecent(r.Context(), limit)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "RecentBookings", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "RecentBookings", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdminHandler) GetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	id := ps.ByName("id")

	booking, err := h.bookings.GetByID(r.Context(), id, identity.UserID, true)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetBooking", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdminHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/admin/stats", h.admin(h.Stats))
	router.GET("/api/v1/admin/bookings", h.admin(h.RecentBookings))
	router.GET("/api/v1/admin/bookings/id/:id", h.admin(h.GetBooking))
}
