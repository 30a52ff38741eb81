package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/joao-fontenele/plantnet-market/internal/domain"
)

// memoryCatalog implements both Plants and Stock over a map.
type memoryCatalog struct {
	mu     sync.Mutex
	plants map[string]*domain.Plant
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{plants: make(map[string]*domain.Plant)}
}

func (c *memoryCatalog) Create(_ context.Context, plant *domain.Plant) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	plant.ID = uuid.New().String()
	copied := *plant
	c.plants[plant.ID] = &copied
	return nil
}

func (c *memoryCatalog) Get(_ context.Context, id string) (*domain.Plant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.plants[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (c *memoryCatalog) List(_ context.Context) ([]domain.Plant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	plants := []domain.Plant{}
	for _, p := range c.plants {
		plants = append(plants, *p)
	}
	return plants, nil
}

func (c *memoryCatalog) ListBySeller(_ context.Context, sellerEmail string) ([]domain.Plant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	plants := []domain.Plant{}
	for _, p := range c.plants {
		if p.Seller.Email == sellerEmail {
			plants = append(plants, *p)
		}
	}
	return plants, nil
}

func (c *memoryCatalog) Delete(_ context.Context, id, sellerEmail string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.plants[id]
	if !ok || p.Seller.Email != sellerEmail {
		return false, nil
	}
	delete(c.plants, id)
	return true, nil
}

func (c *memoryCatalog) Adjust(_ context.Context, plantID string, delta int) (domain.StockLevel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.plants[plantID]
	if !ok {
		return domain.StockLevel{}, fmt.Errorf("plant %s: %w", plantID, domain.ErrNotFound)
	}
	if p.Quantity+delta < 0 {
		return domain.StockLevel{}, domain.ErrInsufficientStock
	}
	p.Quantity += delta
	return domain.StockLevel{PlantID: plantID, Quantity: p.Quantity}, nil
}
