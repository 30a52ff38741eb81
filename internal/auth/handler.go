package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/plantnet-market/internal/web"
)

type Handler struct {
	verifier *Verifier
	cookies  Cookies
	logger   *slog.Logger
}

func NewHandler(verifier *Verifier, cookies Cookies, logger *slog.Logger) *Handler {
	return &Handler{
		verifier: verifier,
		cookies:  cookies,
		logger:   logger,
	}
}

type issueRequest struct {
	Email string `json:"email"`
}

func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		web.WriteError(w, h.logger, http.StatusBadRequest, "missing email")
		return
	}

	token, expires, err := h.verifier.Issue(email)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err)
		web.WriteError(w, h.logger, http.StatusInternalServerError, "internal server error")
		return
	}

	h.cookies.Set(w, token, expires)
	h.logger.Info("token issued", "email", email)
	web.WriteJSON(w, h.logger, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	web.WriteJSON(w, h.logger, http.StatusOK, map[string]bool{"success": true})
}
