package email

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/joao-fontenele/plantnet-market/internal/web"
)

// Handler accepts notification mails and logs them instead of delivering.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type sendResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := web.DecodeJSON(r, &msg); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := mail.ParseAddress(msg.To); err != nil {
		web.WriteError(w, h.logger, http.StatusBadRequest, "invalid recipient")
		return
	}
	if strings.TrimSpace(msg.Subject) == "" {
		web.WriteError(w, h.logger, http.StatusBadRequest, "missing subject")
		return
	}

	id := uuid.New().String()
	h.logger.Info("email sent", "id", id, "to", msg.To, "subject", msg.Subject)

	web.WriteJSON(w, h.logger, http.StatusOK, sendResponse{Status: "sent", ID: id})
}
