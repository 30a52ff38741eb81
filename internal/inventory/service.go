package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/plantnet-market/internal/domain"
)

type Plants interface {
	Create(ctx context.Context, plant *domain.Plant) error
	Get(ctx context.Context, id string) (*domain.Plant, error)
	List(ctx context.Context) ([]domain.Plant, error)
	ListBySeller(ctx context.Context, sellerEmail string) ([]domain.Plant, error)
	Delete(ctx context.Context, id, sellerEmail string) (bool, error)
}

type Stock interface {
	Adjust(ctx context.Context, plantID string, delta int) (domain.StockLevel, error)
}

type NewPlant struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Image       string          `json:"image"`
}

func (p NewPlant) validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: missing plant name", domain.ErrValidation)
	case !p.Price.IsPositive():
		return fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	case p.Quantity < 0:
		return fmt.Errorf("%w: quantity must not be negative", domain.ErrValidation)
	case p.Quantity > domain.MaxQuantity:
		return fmt.Errorf("%w: quantity exceeds %d", domain.ErrValidation, domain.MaxQuantity)
	}
	return nil
}

// Service manages seller listings and routes quantity changes through the
// ledger.
type Service struct {
	plants Plants
	stock  Stock
	logger *slog.Logger
	now    func() time.Time
}

func NewService(plants Plants, stock Stock, logger *slog.Logger) *Service {
	return &Service{
		plants: plants,
		stock:  stock,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreatePlant lists a plant owned by seller. The seller snapshot is copied
// from the stored user record and never changes afterwards.
func (s *Service) CreatePlant(ctx context.Context, seller *domain.User, input NewPlant) (*domain.Plant, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	plant := &domain.Plant{
		Name:        strings.TrimSpace(input.Name),
		Category:    input.Category,
		Description: input.Description,
		Price:       input.Price.Round(2),
		Quantity:    input.Quantity,
		Image:       input.Image,
		Seller:      seller.Party(),
		CreatedAt:   s.now(),
	}
	if err := s.plants.Create(ctx, plant); err != nil {
		return nil, fmt.Errorf("create plant: %w", err)
	}

	s.logger.Info("plant created", "plant_id", plant.ID, "seller", seller.Email)
	return plant, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Plant, error) {
	plant, err := s.plants.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get plant: %w", err)
	}
	if plant == nil {
		return nil, fmt.Errorf("plant %s: %w", id, domain.ErrNotFound)
	}
	return plant, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Plant, error) {
	plants, err := s.plants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	return plants, nil
}

func (s *Service) ListBySeller(ctx context.Context, sellerEmail string) ([]domain.Plant, error) {
	plants, err := s.plants.ListBySeller(ctx, sellerEmail)
	if err != nil {
		return nil, fmt.Errorf("list seller plants: %w", err)
	}
	return plants, nil
}

// DeletePlant removes a listing. Only the owning seller may delete it.
func (s *Service) DeletePlant(ctx context.Context, id, sellerEmail string) error {
	plant, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if plant.Seller.Email != sellerEmail {
		return fmt.Errorf("plant %s: %w", id, domain.ErrForbidden)
	}

	deleted, err := s.plants.Delete(ctx, id, sellerEmail)
	if err != nil {
		return fmt.Errorf("delete plant: %w", err)
	}
	if !deleted {
		return fmt.Errorf("plant %s: %w", id, domain.ErrNotFound)
	}

	s.logger.Info("plant deleted", "plant_id", id, "seller", sellerEmail)
	return nil
}

// AdjustStock applies amount to the plant quantity, adding when increase is
// set and subtracting otherwise.
func (s *Service) AdjustStock(ctx context.Context, id string, amount int, increase bool) (domain.StockLevel, error) {
	if amount <= 0 {
		return domain.StockLevel{}, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	if amount > domain.MaxQuantity {
		return domain.StockLevel{}, fmt.Errorf("%w: quantity exceeds %d", domain.ErrValidation, domain.MaxQuantity)
	}

	delta := -amount
	if increase {
		delta = amount
	}
	return s.stock.Adjust(ctx, id, delta)
}
