package orders

import (
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/plantnet-market/internal/auth"
	"github.com/joao-fontenele/plantnet-market/internal/domain"
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

type createOrderRequest struct {
	PlantID         string `json:"plantId"`
	Quantity        int    `json:"quantity"`
	ShippingAddress string `json:"shippingAddress"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		web.WriteError(w, h.logger, http.StatusUnauthorized, "unauthorized access")
		return
	}

	var req createOrderRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.service.CreateOrder(r.Context(), id.Email, req.PlantID, req.Quantity, req.ShippingAddress)
	if err != nil {
		web.WriteDomainError(w, h.logger, err, "failed to create order", "plant_id", req.PlantID, "customer", id.Email)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusCreated, order)
}

func (h *Handler) HandleListCustomer(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		web.WriteError(w, h.logger, http.StatusUnauthorized, "unauthorized access")
		return
	}
	if id.Email != email {
		web.WriteError(w, h.logger, http.StatusForbidden, "forbidden access")
		return
	}

	orders, err := h.service.ListForCustomer(r.Context(), email)
	if err != nil {
		web.WriteDomainError(w, h.logger, err, "failed to list orders", "customer", email)
		return
	}

	h.logger.Info("orders listed", "customer", email, "count", len(orders))
	web.WriteJSON(w, h.logger, http.StatusOK, orders)
}

func (h *Handler) HandleListSeller(w http.ResponseWriter, r *http.Request) {
	seller, ok := auth.UserFrom(r.Context())
	if !ok {
		web.WriteError(w, h.logger, http.StatusUnauthorized, "unauthorized access")
		return
	}

	orders, err := h.service.ListForSeller(r.Context(), seller.Email)
	if err != nil {
		web.WriteDomainError(w, h.logger, err, "failed to list orders", "seller", seller.Email)
		return
	}

	h.logger.Info("orders listed", "seller", seller.Email, "count", len(orders))
	web.WriteJSON(w, h.logger, http.StatusOK, orders)
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		web.WriteError(w, h.logger, http.StatusUnauthorized, "unauthorized access")
		return
	}

	if err := h.service.CancelOrder(r.Context(), orderID, id.Email); err != nil {
		web.WriteDomainError(w, h.logger, err, "failed to cancel order", "order_id", orderID)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, map[string]any{"deletedCount": 1})
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")
	seller, ok := auth.UserFrom(r.Context())
	if !ok {
		web.WriteError(w, h.logger, http.StatusUnauthorized, "unauthorized access")
		return
	}

	var req updateStatusRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.service.ChangeStatus(r.Context(), orderID, req.Status, seller.Email)
	if err != nil {
		web.WriteDomainError(w, h.logger, err, "failed to update order status", "order_id", orderID)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, order)
}
