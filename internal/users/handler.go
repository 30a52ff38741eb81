package users

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

type registerRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	var req registerRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	user, created, err := h.service.Register(r.Context(), email, req.Name, req.Image)
	if err != nil {
		web.WriteDomainError(w, h.logger, err, "failed to register user", "email", email)
		return
	}
	if !created {
		web.WriteJSON(w, h.logger, http.StatusOK, map[string]string{"message": "user already exist"})
		return
	}

	web.WriteJSON(w, h.logger, http.StatusCreated, user)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	users, err := h.service.ListExcept(r.Context(), email)
	if err != nil {
		web.WriteDomainError(w, h.logger, err, "failed to list users")
		return
	}

	h.logger.Info("users listed", "count", len(users))
	web.WriteJSON(w, h.logger, http.StatusOK, users)
}

func (h *Handler) HandleGetRole(w http.ResponseWriter, r *http.Request) {
	email, ok := h.callerOwns(w, r)
	if !ok {
		return
	}

	role, err := h.service.Role(r.Context(), email)
	if err != nil {
		web.WriteDomainError(w, h.logger, err, "failed to get role", "email", email)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, map[string]domain.Role{"role": role})
}

type setRoleRequest struct {
	Role domain.Role `json:"role"`
}

func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")

	var req setRoleRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.ApprovePromotion(r.Context(), email, req.Role); err != nil {
		web.WriteDomainError(w, h.logger, err, "failed to set role", "email", email)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, map[string]any{"email": email, "role": req.Role, "status": domain.UserStatusVerified})
}

func (h *Handler) HandleRequestPromotion(w http.ResponseWriter, r *http.Request) {
	email, ok := h.callerOwns(w, r)
	if !ok {
		return
	}

	if err := h.service.RequestPromotion(r.Context(), email); err != nil {
		if web.StatusFor(err) == http.StatusConflict {
			web.WriteError(w, h.logger, http.StatusConflict, "You have already requested, please wait some time")
			return
		}
		web.WriteDomainError(w, h.logger, err, "failed to request promotion", "email", email)
		return
	}

	web.WriteJSON(w, h.logger, http.StatusOK, map[string]any{"email": email, "status": domain.UserStatusRequested})
}

// callerOwns checks that the {email} path segment names the authenticated
// caller.
func (h *Handler) callerOwns(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := r.PathValue("email")
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		web.WriteError(w, h.logger, http.StatusUnauthorized, "unauthorized access")
		return "", false
	}
	if id.Email != email {
		web.WriteError(w, h.logger, http.StatusForbidden, "forbidden access")
		return "", false
	}
	return email, true
}
