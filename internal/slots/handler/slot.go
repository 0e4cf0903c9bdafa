package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"roadbook/internal/slots/repository"
	"roadbook/internal/slots/service"
	apperrors "roadbook/pkg/errors"
	httputil "roadbook/pkg/http"
	"roadbook/pkg/logger"
	"roadbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SlotHandler struct {
	service service.SlotService
	log     *logger.Logger
	admin   func(httprouter.Handle) httprouter.Handle
}

func NewSlotHandler(service service.SlotService, log *logger.Logger, admin func(httprouter.Handle) httprouter.Handle) *SlotHandler {
	return &SlotHandler{
		service: service,
		log:     log,
		admin:   admin,
	}
}

func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, perPage, err := httputil.ExtractPagination(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	filter, err := buildFilter(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	offset := int64(page-1) * int64(perPage)
	slots, total, err := h.service.GetFiltered(r.Context(), filter, perPage, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, slots, total, page, perPage); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func buildFilter(r *http.Request) (repository.SlotFilter, error) {
	query := r.URL.Query()
	filter := repository.SlotFilter{RoadID: query.Get("road_id")}

	if s := query.Get("date_from"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return filter, apperrors.InvalidInput("invalid date_from format, must be RFC3339")
		}
		filter.DateFrom = &parsed
	}
	if s := query.Get("date_to"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return filter, apperrors.InvalidInput("invalid date_to format, must be RFC3339")
		}
		filter.DateTo = &parsed
	}
	return filter, nil
}

func (h *SlotHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	slot, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slot); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SlotHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.SlotUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.UpdateCapacity(r.Context(), id, &updates); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SlotHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SlotHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/admin/slots", h.admin(h.List))
	router.GET("/api/v1/admin/slots/id/:id", h.admin(h.GetByID))
	router.PUT("/api/v1/admin/slots/id/:id", h.admin(h.Update))
	router.DELETE("/api/v1/admin/slots/id/:id", h.admin(h.Delete))
}
