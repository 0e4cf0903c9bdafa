package handler

import (
	"encoding/json"
	"net/http"

	"roadbook/internal/availability/service"
	httputil "roadbook/pkg/http"
	"roadbook/pkg/logger"
	"roadbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
	protect func(httprouter.Handle) httprouter.Handle
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger, protect func(httprouter.Handle) httprouter.Handle) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
		protect: protect,
	}
}

func (h *AvailabilityHandler) Query(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Query", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	availability, err := h.service.Query(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Query", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "Query", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/availability", h.protect(h.Query))
}
