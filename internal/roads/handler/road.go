package handler

import (
	"encoding/json"
	"net/http"

	"roadbook/internal/roads/service"
	httputil "roadbook/pkg/http"
	"roadbook/pkg/logger"
	"roadbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RoadHandler struct {
	service service.RoadService
	log     *logger.Logger
	admin   func(httprouter.Handle) httprouter.Handle
}

func NewRoadHandler(service service.RoadService, log *logger.Logger, admin func(httprouter.Handle) httprouter.Handle) *RoadHandler {
	return &RoadHandler{
		service: service,
		log:     log,
		admin:   admin,
	}
}

func (h *RoadHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var road model.Road
	if err := json.NewDecoder(r.Body).Decode(&road); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &road); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, road); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *RoadHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	road, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, road); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RoadHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, perPage, err := httputil.ExtractPagination(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	search := r.URL.Query().Get("search")

	offset := int64(page-1) * int64(perPage)
	roads, total, err := h.service.GetAll(r.Context(), search, perPage, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, roads, total, page, perPage); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *RoadHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.RoadUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Update(r.Context(), id, &updates); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *RoadHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *RoadHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/admin/roads", h.admin(h.List))
	router.GET("/api/v1/admin/roads/id/:id", h.admin(h.GetByID))
	router.POST("/api/v1/admin/roads", h.admin(h.Create))
	router.PUT("/api/v1/admin/roads/id/:id", h.admin(h.Update))
	router.DELETE("/api/v1/admin/roads/id/:id", h.admin(h.Delete))
}
