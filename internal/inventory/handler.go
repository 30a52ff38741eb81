package inventory

import (
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/plantnet-market/internal/auth"
	"github.com/joao-fontenele/plantnet-market/internal/web"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) HandleListPlants(w http.ResponseWriter, r *http.Request) {
	plants, err := h.service.List(r.Context())
	if err != nil {
		web.WriteDomainError(w, h.logger, err, "failed to list plants")
		return
	}

	h.logger.Info("plants listed", "count", len(plants))
	web.WriteJSON(w, h.logger, http.StatusOK, plants)
}

func (h *Handler) HandleGetPlant(w http.ResponseWriter, r *http.Request) {
	plantID := r.PathValue("id")
	if plantID == "" {
		web.WriteError(w, h.logger, http.StatusBadRequest, "missing plant id")
		return
	}

	plant, err := h.service.Get(r.Context(), plantID)
	if err != nil {
		web.WriteDomainError(w, h.logger, err, "failed to get plant", "plant_id", plantID)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, plant)
}

func (h *Handler) HandleCreatePlant(w http.ResponseWriter, r *http.Request) {
	seller, ok := auth.UserFrom(r.Context())
	if !ok {
		web.WriteError(w, h.logger, http.StatusUnauthorized, "unauthorized access")
		return
	}

	var req NewPlant
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	plant, err := h.service.CreatePlant(r.Context(), seller, req)
	if err != nil {
		web.WriteDomainError(w, h.logger, err, "failed to create plant", "seller", seller.Email)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusCreated, plant)
}

func (h *Handler) HandleSellerPlants(w http.ResponseWriter, r *http.Request) {
	seller, ok := auth.UserFrom(r.Context())
	if !ok {
		web.WriteError(w, h.logger, http.StatusUnauthorized, "unauthorized access")
		return
	}

	plants, err := h.service.ListBySeller(r.Context(), seller.Email)
	if err != nil {
		web.WriteDomainError(w, h.logger, err, "failed to list seller plants", "seller", seller.Email)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, plants)
}

func (h *Handler) HandleDeletePlant(w http.ResponseWriter, r *http.Request) {
	seller, ok := auth.UserFrom(r.Context())
	if !ok {
		web.WriteError(w, h.logger, http.StatusUnauthorized, "unauthorized access")
		return
	}
	plantID := r.PathValue("id")

	if err := h.service.DeletePlant(r.Context(), plantID, seller.Email); err != nil {
		web.WriteDomainError(w, h.logger, err, "failed to delete plant", "plant_id", plantID)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, map[string]any{"deletedCount": 1})
}

type quantityRequest struct {
	UpdatedQuantity int    `json:"updatedQuantity"`
	Status          string `json:"status"`
}

func (h *Handler) HandleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	plantID := r.PathValue("id")

	var req quantityRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	stock, err := h.service.AdjustStock(r.Context(), plantID, req.UpdatedQuantity, req.Status == "increase")
	if err != nil {
		web.WriteDomainError(w, h.logger, err, "failed to update quantity", "plant_id", plantID, "quantity", req.UpdatedQuantity)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, stock)
}
