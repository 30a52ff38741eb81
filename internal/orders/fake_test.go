package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/plantnet-market/internal/domain"
)

type memoryPlant struct {
	name     string
	price    decimal.Decimal
	quantity int
	seller   domain.Party
}

// memoryStore mirrors the transactional behaviour of OrderRepository under a
// single mutex.
type memoryStore struct {
	mu     sync.Mutex
	plants map[string]*memoryPlant
	orders map[string]*domain.Order
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		plants: make(map[string]*memoryPlant),
		orders: make(map[string]*domain.Order),
	}
}

func (s *memoryStore) addPlant(seller domain.Party, price string, quantity int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	s.plants[id] = &memoryPlant{name: "Monstera", price: decimal.RequireFromString(price), quantity: quantity, seller: seller}
	return id
}

func (s *memoryStore) stock(plantID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plants[plantID].quantity
}

func (s *memoryStore) Place(_ context.Context, p Placement) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	plant, ok := s.plants[p.PlantID]
	if !ok {
		return nil, fmt.Errorf("plant %s: %w", p.PlantID, domain.ErrNotFound)
	}
	if plant.seller.Email == p.Customer.Email {
		return nil, domain.ErrForbidden
	}
	if plant.quantity-p.Quantity < 0 {
		return nil, domain.ErrInsufficientStock
	}
	plant.quantity -= p.Quantity

	order := &domain.Order{
		ID:              uuid.New().String(),
		PlantID:         p.PlantID,
		UnitPrice:       plant.price,
		Quantity:        p.Quantity,
		Total:           plant.price.Mul(decimal.NewFromInt(int64(p.Quantity))),
		ShippingAddress: p.ShippingAddress,
		Customer:        p.Customer,
		Seller:          plant.seller,
		Status:          domain.OrderStatusPending,
		CreatedAt:       p.CreatedAt,
	}
	copied := *order
	s.orders[order.ID] = &copied
	return order, nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	copied := *o
	return &copied, nil
}

func (s *memoryStore) UpdateStatus(_ context.Context, id string, from, to domain.OrderStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (s *memoryStore) Cancel(_ context.Context, order *domain.Order) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[order.ID]
	if !ok || o.Status == domain.OrderStatusDelivered {
		return false, nil
	}
	delete(s.orders, order.ID)
	if plant, ok := s.plants[o.PlantID]; ok {
		plant.quantity += o.Quantity
	}
	return true, nil
}

func (s *memoryStore) ListByCustomer(_ context.Context, email string) ([]domain.OrderView, error) {
	return s.list(func(o *domain.Order) bool { return o.Customer.Email == email }), nil
}

func (s *memoryStore) ListBySeller(_ context.Context, email string) ([]domain.OrderView, error) {
	return s.list(func(o *domain.Order) bool { return o.Seller.Email == email }), nil
}

func (s *memoryStore) list(match func(*domain.Order) bool) []domain.OrderView {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := []domain.OrderView{}
	for _, o := range s.orders {
		if !match(o) {
			continue
		}
		view := domain.OrderView{Order: *o}
		if plant, ok := s.plants[o.PlantID]; ok {
			view.Name = plant.name
		}
		views = append(views, view)
	}
	return views
}

type memoryUsers map[string]*domain.User

func (u memoryUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := u[email]
	if !ok {
		return nil, nil
	}
	return user, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.OrderEvent
	fail   bool
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []domain.OrderEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]domain.OrderEventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}
