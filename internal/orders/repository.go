package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/plantnet-market/internal/domain"
	"github.com/joao-fontenele/plantnet-market/internal/inventory"
)

const orderColumns = `id, plant_id, unit_price, quantity, total, shipping_address,
	customer_name, customer_email, customer_image,
	seller_name, seller_email, seller_image, status, created_at`

type orderRow struct {
	ID              string             `db:"id"`
	PlantID         string             `db:"plant_id"`
	UnitPrice       decimal.Decimal    `db:"unit_price"`
	Quantity        int                `db:"quantity"`
	Total           decimal.Decimal    `db:"total"`
	ShippingAddress string             `db:"shipping_address"`
	CustomerName    string             `db:"customer_name"`
	CustomerEmail   string             `db:"customer_email"`
	CustomerImage   string             `db:"customer_image"`
	SellerName      string             `db:"seller_name"`
	SellerEmail     string             `db:"seller_email"`
	SellerImage     string             `db:"seller_image"`
	Status          domain.OrderStatus `db:"status"`
	CreatedAt       time.Time          `db:"created_at"`
}

func (o orderRow) toDomain() domain.Order {
	return domain.Order{
		ID:              o.ID,
		PlantID:         o.PlantID,
		UnitPrice:       o.UnitPrice,
		Quantity:        o.Quantity,
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		Customer:        domain.Party{Name: o.CustomerName, Email: o.CustomerEmail, Image: o.CustomerImage},
		Seller:          domain.Party{Name: o.SellerName, Email: o.SellerEmail, Image: o.SellerImage},
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
	}
}

func rowFromOrder(o *domain.Order) orderRow {
	return orderRow{
		ID:              o.ID,
		PlantID:         o.PlantID,
		UnitPrice:       o.UnitPrice,
		Quantity:        o.Quantity,
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		CustomerName:    o.Customer.Name,
		CustomerEmail:   o.Customer.Email,
		CustomerImage:   o.Customer.Image,
		SellerName:      o.Seller.Name,
		SellerEmail:     o.Seller.Email,
		SellerImage:     o.Seller.Image,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
	}
}

// Placement is a validated purchase request.
type Placement struct {
	PlantID         string
	Quantity        int
	ShippingAddress string
	Customer        domain.Party
	CreatedAt       time.Time
}

type plantSnapshot struct {
	Price       decimal.Decimal `db:"price"`
	SellerName  string          `db:"seller_name"`
	SellerEmail string          `db:"seller_email"`
	SellerImage string          `db:"seller_image"`
}

type plantLabel struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Category string `db:"category"`
	Image    string `db:"image"`
}

type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Place decrements stock and inserts the order in one transaction. The unit
// price and seller are read from the stored plant.
func (r *OrderRepository) Place(ctx context.Context, p Placement) (*domain.Order, error) {
	if _, err := uuid.Parse(p.PlantID); err != nil {
		return nil, fmt.Errorf("plant %s: %w", p.PlantID, domain.ErrNotFound)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var plant plantSnapshot
	err = tx.GetContext(ctx, &plant, `
		SELECT price, seller_name, seller_email, seller_image
		FROM plants
		WHERE id = $1
	`, p.PlantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plant %s: %w", p.PlantID, domain.ErrNotFound)
		}
		return nil, err
	}
	if plant.SellerEmail == p.Customer.Email {
		return nil, fmt.Errorf("%w: cannot order your own plant", domain.ErrForbidden)
	}

	if _, err := inventory.AdjustQuantity(ctx, tx, p.PlantID, -p.Quantity); err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:              uuid.New().String(),
		PlantID:         p.PlantID,
		UnitPrice:       plant.Price,
		Quantity:        p.Quantity,
		Total:           plant.Price.Mul(decimal.NewFromInt(int64(p.Quantity))),
		ShippingAddress: p.ShippingAddress,
		Customer:        p.Customer,
		Seller:          domain.Party{Name: plant.SellerName, Email: plant.SellerEmail, Image: plant.SellerImage},
		Status:          domain.OrderStatusPending,
		CreatedAt:       p.CreatedAt,
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`, updated_at)
		VALUES (:id, :plant_id, :unit_price, :quantity, :total, :shipping_address,
			:customer_name, :customer_email, :customer_image,
			:seller_name, :seller_email, :seller_image, :status, :created_at, :created_at)
	`, rowFromOrder(order))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return order, nil
}

// Get returns nil, nil when the order does not exist.
func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	var row orderRow
	err := r.db.GetContext(ctx, &row, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	order := row.toDomain()
	return &order, nil
}

// UpdateStatus moves the order from one status to another. It returns false
// when the stored status no longer equals from.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

// Cancel deletes an undelivered order and returns its quantity to stock in
// one transaction. It returns false when the order is gone or already
// delivered.
func (r *OrderRepository) Cancel(ctx context.Context, order *domain.Order) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var quantity int
	err = tx.GetContext(ctx, &quantity, `
		DELETE FROM orders
		WHERE id = $1 AND status <> $2
		RETURNING quantity
	`, order.ID, domain.OrderStatusDelivered)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	// The listing may have been removed since; the order still goes away.
	if _, err := inventory.AdjustQuantity(ctx, tx, order.PlantID, quantity); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, email string) ([]domain.OrderView, error) {
	return r.listViews(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE customer_email = $1
		ORDER BY created_at DESC
	`, email)
}

func (r *OrderRepository) ListBySeller(ctx context.Context, email string) ([]domain.OrderView, error) {
	return r.listViews(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE seller_email = $1
		ORDER BY created_at DESC
	`, email)
}

// listViews loads the orders and joins the current plant labels with a
// single batched query.
func (r *OrderRepository) listViews(ctx context.Context, query string, args ...any) ([]domain.OrderView, error) {
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []domain.OrderView{}, nil
	}

	seen := make(map[string]struct{}, len(rows))
	var plantIDs []string
	for _, row := range rows {
		if _, ok := seen[row.PlantID]; !ok {
			seen[row.PlantID] = struct{}{}
			plantIDs = append(plantIDs, row.PlantID)
		}
	}

	var labels []plantLabel
	err := r.db.SelectContext(ctx, &labels, `
		SELECT id, name, category, image
		FROM plants
		WHERE id = ANY($1::uuid[])
	`, pq.Array(plantIDs))
	if err != nil {
		return nil, err
	}

	byID := make(map[string]plantLabel, len(labels))
	for _, l := range labels {
		byID[l.ID] = l
	}

	views := make([]domain.OrderView, 0, len(rows))
	for _, row := range rows {
		label := byID[row.PlantID]
		views = append(views, domain.OrderView{
			Order:    row.toDomain(),
			Name:     label.Name,
			Category: label.Category,
			Image:    label.Image,
		})
	}
	return views, nil
}
