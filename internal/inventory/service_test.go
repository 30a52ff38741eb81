package inventory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/plantnet-market/internal/domain"
)

var seller = &domain.User{Email: "seller@example.com", Name: "Seller", Image: "s.png", Role: domain.RoleSeller}

func setup() (*Service, *memoryCatalog) {
	catalog := newMemoryCatalog()
	return NewService(catalog, catalog, slog.New(slog.NewTextHandler(io.Discard, nil))), catalog
}

func createPlant(t *testing.T, service *Service, quantity int) *domain.Plant {
	t.Helper()
	plant, err := service.CreatePlant(context.Background(), seller, NewPlant{
		Name:     "Monstera",
		Category: "Indoor",
		Price:    decimal.RequireFromString("12.50"),
		Quantity: quantity,
	})
	require.NoError(t, err)
	return plant
}

func TestCreatePlant(t *testing.T) {
	ctx := context.Background()

	t.Run("Snapshots seller", func(t *testing.T) {
		service, catalog := setup()

		plant := createPlant(t, service, 10)

		stored, _ := catalog.Get(ctx, plant.ID)
		require.NotNil(t, stored)
		assert.Equal(t, seller.Party(), stored.Seller)
		assert.Equal(t, 10, stored.Quantity)
		assert.True(t, decimal.RequireFromString("12.5").Equal(stored.Price))
	})

	invalid := map[string]NewPlant{
		"missing name":       {Price: decimal.NewFromInt(1), Quantity: 1},
		"zero price":         {Name: "Fern", Price: decimal.Zero, Quantity: 1},
		"negative price":     {Name: "Fern", Price: decimal.NewFromInt(-3), Quantity: 1},
		"negative quantity":  {Name: "Fern", Price: decimal.NewFromInt(3), Quantity: -1},
		"oversized quantity": {Name: "Fern", Price: decimal.NewFromInt(3), Quantity: domain.MaxQuantity + 1},
	}
	for name, input := range invalid {
		t.Run("Fail on "+name, func(t *testing.T) {
			service, _ := setup()
			_, err := service.CreatePlant(ctx, seller, input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestDeletePlant(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner deletes", func(t *testing.T) {
		service, catalog := setup()
		plant := createPlant(t, service, 1)

		require.NoError(t, service.DeletePlant(ctx, plant.ID, seller.Email))

		stored, _ := catalog.Get(ctx, plant.ID)
		assert.Nil(t, stored)
	})

	t.Run("Other seller is forbidden", func(t *testing.T) {
		service, catalog := setup()
		plant := createPlant(t, service, 1)

		err := service.DeletePlant(ctx, plant.ID, "other@example.com")

		assert.ErrorIs(t, err, domain.ErrForbidden)
		stored, _ := catalog.Get(ctx, plant.ID)
		assert.NotNil(t, stored)
	})

	t.Run("Missing plant", func(t *testing.T) {
		service, _ := setup()
		assert.ErrorIs(t, service.DeletePlant(ctx, "missing", seller.Email), domain.ErrNotFound)
	})
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()
	service, _ := setup()
	plant := createPlant(t, service, 10)

	stock, err := service.AdjustStock(ctx, plant.ID, 3, false)
	require.NoError(t, err)
	assert.Equal(t, 7, stock.Quantity)

	stock, err = service.AdjustStock(ctx, plant.ID, 2, true)
	require.NoError(t, err)
	assert.Equal(t, 9, stock.Quantity)

	_, err = service.AdjustStock(ctx, plant.ID, 10, false)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := service.Get(ctx, plant.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Quantity)

	_, err = service.AdjustStock(ctx, plant.ID, 0, true)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = service.AdjustStock(ctx, plant.ID, domain.MaxQuantity+1, true)
	assert.ErrorIs(t, err, domain.ErrValidation)
	got, err = service.Get(ctx, plant.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Quantity)

	_, err = service.AdjustStock(ctx, "missing", 1, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "insufficient", Outcome(domain.ErrInsufficientStock))
	assert.Equal(t, "not_found", Outcome(domain.ErrNotFound))
	assert.Equal(t, "invalid", Outcome(domain.ErrValidation))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}
