package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joao-fontenele/plantnet-market/internal/domain"
	"github.com/joao-fontenele/plantnet-market/internal/email"
)

type mailbox struct {
	mu       sync.Mutex
	messages []email.Message
	status   int
	rejects  string
}

func (m *mailbox) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var msg email.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	if msg.To == m.rejects {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(m.status)
}

func (m *mailbox) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	to := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		to = append(to, msg.To)
	}
	return to
}

func newEvent(t domain.OrderEventType) domain.OrderEvent {
	order := &domain.Order{
		ID:       "order-1",
		PlantID:  "plant-1",
		Quantity: 2,
		Customer: domain.Party{Name: "Cam", Email: "customer@example.com"},
		Seller:   domain.Party{Name: "Sid", Email: "seller@example.com"},
		Status:   domain.OrderStatusInProgress,
	}
	return domain.NewOrderEvent(t, order, time.Now().UTC())
}

func TestNotificationHandler_Handle(t *testing.T) {
	tests := []struct {
		name           string
		eventType      domain.OrderEventType
		wantRecipients []string
	}{
		{name: "created notifies both parties", eventType: domain.OrderCreated, wantRecipients: []string{"customer@example.com", "seller@example.com"}},
		{name: "status change notifies customer", eventType: domain.OrderStatusChanged, wantRecipients: []string{"customer@example.com"}},
		{name: "cancellation notifies seller", eventType: domain.OrderCancelled, wantRecipients: []string{"seller@example.com"}},
		{name: "unknown event sends nothing", eventType: domain.OrderEventType("order.archived"), wantRecipients: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := &mailbox{status: http.StatusOK}
			server := httptest.NewServer(box)
			defer server.Close()

			handler := NewNotificationHandler(server.URL, server.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))

			if err := handler.Handle(context.Background(), newEvent(tt.eventType)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := box.recipients()
			if len(got) != len(tt.wantRecipients) {
				t.Fatalf("expected recipients %v, got %v", tt.wantRecipients, got)
			}
			for i := range got {
				if got[i] != tt.wantRecipients[i] {
					t.Errorf("expected recipient %s, got %s", tt.wantRecipients[i], got[i])
				}
			}
		})
	}
}

func TestNotificationHandler_EmailFailure(t *testing.T) {
	t.Run("every mail is attempted", func(t *testing.T) {
		box := &mailbox{status: http.StatusInternalServerError}
		server := httptest.NewServer(box)
		defer server.Close()

		handler := NewNotificationHandler(server.URL, server.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))

		if err := handler.Handle(context.Background(), newEvent(domain.OrderCreated)); err == nil {
			t.Fatal("expected error when the email service fails")
		}
		if got := len(box.recipients()); got != 2 {
			t.Errorf("expected both mails to be attempted, got %d attempts", got)
		}
	})

	t.Run("later failure still reports after earlier success", func(t *testing.T) {
		box := &mailbox{status: http.StatusOK, rejects: "seller@example.com"}
		server := httptest.NewServer(box)
		defer server.Close()

		handler := NewNotificationHandler(server.URL, server.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))

		err := handler.Handle(context.Background(), newEvent(domain.OrderCreated))
		if err == nil {
			t.Fatal("expected error when the seller mail fails")
		}
		if !strings.Contains(err.Error(), "seller@example.com") {
			t.Errorf("expected error to name the failed recipient, got %v", err)
		}
		if strings.Contains(err.Error(), "customer@example.com") {
			t.Errorf("expected delivered customer mail to be absent from error, got %v", err)
		}
		got := box.recipients()
		if len(got) != 2 || got[0] != "customer@example.com" || got[1] != "seller@example.com" {
			t.Errorf("expected customer then seller attempts, got %v", got)
		}
	})
}
