package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joao-fontenele/plantnet-market/internal/domain"
	"github.com/joao-fontenele/plantnet-market/internal/telemetry"
)

type Repository interface {
	Place(ctx context.Context, p Placement) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error)
	Cancel(ctx context.Context, order *domain.Order) (bool, error)
	ListByCustomer(ctx context.Context, email string) ([]domain.OrderView, error)
	ListBySeller(ctx context.Context, email string) ([]domain.OrderView, error)
}

type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

type Publisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}

// Service runs the order lifecycle. Stock and status changes are delegated to
// the repository so each of them is a single atomic step.
type Service struct {
	repo      Repository
	users     UserLookup
	publisher Publisher
	metrics   *telemetry.Marketplace
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds a Service. publisher may be nil, in which case no events
// are emitted.
func NewService(repo Repository, users UserLookup, publisher Publisher, metrics *telemetry.Marketplace, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) CreateOrder(ctx context.Context, customerEmail, plantID string, quantity int, address string) (*domain.Order, error) {
	address = strings.TrimSpace(address)
	switch {
	case quantity < 1:
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	case quantity > domain.MaxQuantity:
		return nil, fmt.Errorf("%w: quantity exceeds %d", domain.ErrValidation, domain.MaxQuantity)
	case address == "":
		return nil, fmt.Errorf("%w: missing shipping address", domain.ErrValidation)
	}

	customer, err := s.users.FindByEmail(ctx, customerEmail)
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: unknown customer %s", domain.ErrForbidden, customerEmail)
	}

	order, err := s.repo.Place(ctx, Placement{
		PlantID:         plantID,
		Quantity:        quantity,
		ShippingAddress: address,
		Customer:        customer.Party(),
		CreatedAt:       s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	s.metrics.OrderCreated(ctx, order.Quantity)
	s.logger.Info("order created", "order_id", order.ID, "plant_id", plantID, "customer", customerEmail, "quantity", quantity)
	s.publish(ctx, domain.NewOrderEvent(domain.OrderCreated, order, s.now()))
	return order, nil
}

// ChangeStatus applies a seller's status update. The write is conditional on
// the status read here, so a concurrent update makes this one fail.
func (s *Service) ChangeStatus(ctx context.Context, orderID string, next domain.OrderStatus, sellerEmail string) (*domain.Order, error) {
	order, err := s.get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Seller.Email != sellerEmail {
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrForbidden)
	}
	// Delivered is final whatever the requested status is.
	if order.Status == domain.OrderStatusDelivered {
		return nil, fmt.Errorf("%w: order %s is %s", domain.ErrInvalidTransition, orderID, order.Status)
	}
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, next)
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, order.Status, next)
	}

	updated, err := s.repo.UpdateStatus(ctx, orderID, order.Status, next)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if !updated {
		return nil, fmt.Errorf("%w: order %s changed concurrently", domain.ErrInvalidTransition, orderID)
	}

	prev := order.Status
	order.Status = next

	s.metrics.OrderStatusChanged(ctx, string(next))
	s.logger.Info("order status updated", "order_id", orderID, "from", prev, "to", next)

	event := domain.NewOrderEvent(domain.OrderStatusChanged, order, s.now())
	event.PrevStatus = prev
	s.publish(ctx, event)
	return order, nil
}

// CancelOrder deletes the customer's order and restores its stock. Delivered
// orders cannot be cancelled.
func (s *Service) CancelOrder(ctx context.Context, orderID, customerEmail string) error {
	order, err := s.get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Customer.Email != customerEmail {
		return fmt.Errorf("order %s: %w", orderID, domain.ErrForbidden)
	}
	if !order.Status.Cancellable() {
		return fmt.Errorf("%w: order %s is %s", domain.ErrInvalidTransition, orderID, order.Status)
	}

	cancelled, err := s.repo.Cancel(ctx, order)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	if !cancelled {
		// Delivered or removed between the read and the delete.
		current, err := s.repo.Get(ctx, orderID)
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		if current == nil {
			return fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
		}
		return fmt.Errorf("%w: order %s is %s", domain.ErrInvalidTransition, orderID, current.Status)
	}

	s.metrics.OrderCancelled(ctx)
	s.logger.Info("order cancelled", "order_id", orderID, "plant_id", order.PlantID, "quantity", order.Quantity)
	s.publish(ctx, domain.NewOrderEvent(domain.OrderCancelled, order, s.now()))
	return nil
}

func (s *Service) ListForCustomer(ctx context.Context, email string) ([]domain.OrderView, error) {
	orders, err := s.repo.ListByCustomer(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	return orders, nil
}

func (s *Service) ListForSeller(ctx context.Context, email string) ([]domain.OrderView, error) {
	orders, err := s.repo.ListBySeller(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list seller orders: %w", err)
	}
	return orders, nil
}

func (s *Service) get(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	return order, nil
}

// publish is best effort: the order is already committed.
func (s *Service) publish(ctx context.Context, event domain.OrderEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish order event", "error", err, "order_id", event.OrderID, "type", event.Type)
	}
}
