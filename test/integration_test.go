//go:build integration

package test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/plantnet-market/internal/domain"
	"github.com/joao-fontenele/plantnet-market/internal/inventory"
	"github.com/joao-fontenele/plantnet-market/internal/messaging"
	"github.com/joao-fontenele/plantnet-market/internal/orders"
	"github.com/joao-fontenele/plantnet-market/internal/telemetry"
	"github.com/joao-fontenele/plantnet-market/internal/users"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type marketplace struct {
	db      *sqlx.DB
	users   *users.Service
	plants  *inventory.Service
	orders  *orders.Service
	seller  *domain.User
	buyer   *domain.User
	plantID string
}

// newMarketplace wires the real repositories against db and seeds one seller,
// one customer and a plant with the given stock.
func newMarketplace(ctx context.Context, t *testing.T, db *sqlx.DB, stock int) *marketplace {
	t.Helper()

	userRepo := users.NewUserRepository(db)
	userService := users.NewService(userRepo, discard)
	metrics := telemetry.NopMarketplace()

	m := &marketplace{
		db:    db,
		users: userService,
		plants: inventory.NewService(
			inventory.NewPlantRepository(db),
			inventory.NewLedger(db, metrics, discard),
			discard,
		),
		orders: orders.NewService(orders.NewOrderRepository(db), userRepo, nil, metrics, discard),
	}

	suffix := time.Now().Format("150405.000000000")
	sellerEmail := "seller-" + suffix + "@example.com"
	buyerEmail := "buyer-" + suffix + "@example.com"

	var err error
	m.seller, _, err = userService.Register(ctx, sellerEmail, "Sid", "sid.png")
	require.NoError(t, err)
	require.NoError(t, userService.ApprovePromotion(ctx, sellerEmail, domain.RoleSeller))
	m.seller.Role = domain.RoleSeller

	m.buyer, _, err = userService.Register(ctx, buyerEmail, "Cam", "cam.png")
	require.NoError(t, err)

	plant, err := m.plants.CreatePlant(ctx, m.seller, inventory.NewPlant{
		Name:     "Monstera",
		Category: "Indoor",
		Price:    decimal.RequireFromString("12.50"),
		Quantity: stock,
	})
	require.NoError(t, err)
	m.plantID = plant.ID

	return m
}

func (m *marketplace) stock(ctx context.Context, t *testing.T) int {
	t.Helper()
	plant, err := m.plants.Get(ctx, m.plantID)
	require.NoError(t, err)
	return plant.Quantity
}

func TestPostgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	db := StartPostgres(ctx, t)

	t.Run("Concurrent ledger adjustments never oversell", func(t *testing.T) {
		m := newMarketplace(ctx, t, db, 10)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = inventory.AdjustQuantity(ctx, db, m.plantID, -5)
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}
		assert.Equal(t, 0, m.stock(ctx, t))

		_, err := inventory.AdjustQuantity(ctx, db, m.plantID, -5)
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		assert.Equal(t, 0, m.stock(ctx, t))

		_, err = inventory.AdjustQuantity(ctx, db, "00000000-0000-0000-0000-000000000000", 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Order lifecycle restores stock on cancel", func(t *testing.T) {
		m := newMarketplace(ctx, t, db, 10)

		order, err := m.orders.CreateOrder(ctx, m.buyer.Email, m.plantID, 3, "1 Garden Way")
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPending, order.Status)
		assert.True(t, decimal.RequireFromString("37.50").Equal(order.Total))
		assert.Equal(t, 7, m.stock(ctx, t))

		_, err = m.orders.ChangeStatus(ctx, order.ID, domain.OrderStatusInProgress, m.seller.Email)
		require.NoError(t, err)
		assert.Equal(t, 7, m.stock(ctx, t))

		views, err := m.orders.ListForCustomer(ctx, m.buyer.Email)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "Monstera", views[0].Name)
		assert.Equal(t, domain.OrderStatusInProgress, views[0].Status)

		require.NoError(t, m.orders.CancelOrder(ctx, order.ID, m.buyer.Email))
		assert.Equal(t, 10, m.stock(ctx, t))

		views, err = m.orders.ListForCustomer(ctx, m.buyer.Email)
		require.NoError(t, err)
		assert.Empty(t, views)
	})

	t.Run("Delivered orders are final", func(t *testing.T) {
		m := newMarketplace(ctx, t, db, 10)

		order, err := m.orders.CreateOrder(ctx, m.buyer.Email, m.plantID, 2, "1 Garden Way")
		require.NoError(t, err)
		_, err = m.orders.ChangeStatus(ctx, order.ID, domain.OrderStatusDelivered, m.seller.Email)
		require.NoError(t, err)

		err = m.orders.CancelOrder(ctx, order.ID, m.buyer.Email)
		assert.ErrorIs(t, err, domain.ErrConflict)

		_, err = m.orders.ChangeStatus(ctx, order.ID, domain.OrderStatusInProgress, m.seller.Email)
		assert.ErrorIs(t, err, domain.ErrConflict)

		views, err := m.orders.ListForSeller(ctx, m.seller.Email)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, domain.OrderStatusDelivered, views[0].Status)
		assert.Equal(t, 8, m.stock(ctx, t))
	})

	t.Run("Concurrent orders never oversell", func(t *testing.T) {
		m := newMarketplace(ctx, t, db, 10)

		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			placed int
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := m.orders.CreateOrder(ctx, m.buyer.Email, m.plantID, 1, "1 Garden Way"); err == nil {
					mu.Lock()
					placed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 10, placed)
		assert.Equal(t, 0, m.stock(ctx, t))
	})

	t.Run("Promotion workflow", func(t *testing.T) {
		m := newMarketplace(ctx, t, db, 1)

		require.NoError(t, m.users.RequestPromotion(ctx, m.buyer.Email))
		assert.ErrorIs(t, m.users.RequestPromotion(ctx, m.buyer.Email), domain.ErrPromotionPending)

		require.NoError(t, m.users.ApprovePromotion(ctx, m.buyer.Email, domain.RoleSeller))
		role, err := m.users.Role(ctx, m.buyer.Email)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleSeller, role)

		existing, created, err := m.users.Register(ctx, m.buyer.Email, "Other", "")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Nil(t, existing)
	})
}

func TestKafkaOrderEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	brokers := StartKafka(ctx, t)
	topic := "plantnet.orders.test"

	producer := messaging.NewProducer(brokers, topic)
	defer func() { _ = producer.Close() }()

	order := &domain.Order{
		ID:       "order-1",
		PlantID:  "plant-1",
		Quantity: 2,
		Customer: domain.Party{Email: "c@example.com"},
		Seller:   domain.Party{Email: "s@example.com"},
		Status:   domain.OrderStatusPending,
	}
	require.NoError(t, producer.Publish(ctx, domain.NewOrderEvent(domain.OrderCreated, order, time.Now().UTC())))

	consumer := messaging.NewConsumer(brokers, topic, "plantnet-test", discard, messaging.WithStartOffset(kafka.FirstOffset))
	defer func() { _ = consumer.Close() }()

	consumeCtx, stop := context.WithCancel(ctx)
	defer stop()

	received := make(chan domain.OrderEvent, 1)
	go func() {
		_ = consumer.Consume(consumeCtx, func(_ context.Context, event domain.OrderEvent) error {
			received <- event
			stop()
			return nil
		})
	}()

	select {
	case event := <-received:
		assert.Equal(t, domain.OrderCreated, event.Type)
		assert.Equal(t, "order-1", event.OrderID)
		assert.Equal(t, "s@example.com", event.Seller.Email)
	case <-ctx.Done():
		t.Fatal("timed out waiting for order event")
	}
}
