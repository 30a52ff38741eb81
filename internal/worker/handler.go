package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/plantnet-market/internal/domain"
	"github.com/joao-fontenele/plantnet-market/internal/email"
)

// NotificationHandler turns order events into mails for the customer and the
// seller.
type NotificationHandler struct {
	emailServiceURL string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewNotificationHandler(emailServiceURL string, client *http.Client, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		emailServiceURL: emailServiceURL,
		httpClient:      client,
		logger:          logger,
	}
}

// Handle attempts every mail for the event and returns the joined failures.
// A failed event is redelivered whole, so recipients whose mail already went
// out may receive it again.
func (h *NotificationHandler) Handle(ctx context.Context, event domain.OrderEvent) error {
	h.logger.Info("processing order event", "order_id", event.OrderID, "type", event.Type)

	var errs []error
	for _, msg := range messagesFor(event) {
		if err := h.sendEmail(ctx, msg); err != nil {
			h.logger.Error("failed to send email", "error", err, "order_id", event.OrderID, "to", msg.To)
			errs = append(errs, fmt.Errorf("mail to %s: %w", msg.To, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("send %s email: %w", event.Type, err)
	}

	h.logger.Info("order event processed", "order_id", event.OrderID, "type", event.Type)
	return nil
}

func messagesFor(event domain.OrderEvent) []email.Message {
	switch event.Type {
	case domain.OrderCreated:
		return []email.Message{
			{
				To:      event.Customer.Email,
				Subject: "Order placed: " + event.OrderID,
				Body:    fmt.Sprintf("Your order of %d plant(s) was placed and is pending.", event.Quantity),
			},
			{
				To:      event.Seller.Email,
				Subject: "New order: " + event.OrderID,
				Body:    fmt.Sprintf("%s ordered %d of your plant %s.", event.Customer.Name, event.Quantity, event.PlantID),
			},
		}
	case domain.OrderStatusChanged:
		return []email.Message{{
			To:      event.Customer.Email,
			Subject: "Order update: " + event.OrderID,
			Body:    fmt.Sprintf("Your order moved from %s to %s.", event.PrevStatus, event.Status),
		}}
	case domain.OrderCancelled:
		return []email.Message{{
			To:      event.Seller.Email,
			Subject: "Order cancelled: " + event.OrderID,
			Body:    fmt.Sprintf("%s cancelled an order of %d plant(s). The stock was restored.", event.Customer.Name, event.Quantity),
		}}
	}
	return nil
}

func (h *NotificationHandler) sendEmail(ctx context.Context, msg email.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}
