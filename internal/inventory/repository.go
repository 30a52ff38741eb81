package inventory

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/plantnet-market/internal/domain"
)

const plantColumns = `id, name, category, description, price, quantity, image,
	seller_name, seller_email, seller_image, created_at`

type plantRow struct {
	ID          string          `db:"id"`
	Name        string          `db:"name"`
	Category    string          `db:"category"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Quantity    int             `db:"quantity"`
	Image       string          `db:"image"`
	SellerName  string          `db:"seller_name"`
	SellerEmail string          `db:"seller_email"`
	SellerImage string          `db:"seller_image"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (p plantRow) toDomain() domain.Plant {
	return domain.Plant{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Image:       p.Image,
		Seller:      domain.Party{Name: p.SellerName, Email: p.SellerEmail, Image: p.SellerImage},
		CreatedAt:   p.CreatedAt,
	}
}

func rowFromPlant(p *domain.Plant) plantRow {
	return plantRow{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Image:       p.Image,
		SellerName:  p.Seller.Name,
		SellerEmail: p.Seller.Email,
		SellerImage: p.Seller.Image,
		CreatedAt:   p.CreatedAt,
	}
}

type PlantRepository struct {
	db *sqlx.DB
}

func NewPlantRepository(db *sqlx.DB) *PlantRepository {
	return &PlantRepository{db: db}
}

func (r *PlantRepository) Create(ctx context.Context, plant *domain.Plant) error {
	plant.ID = uuid.New().String()

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO plants (`+plantColumns+`)
		VALUES (:id, :name, :category, :description, :price, :quantity, :image,
			:seller_name, :seller_email, :seller_image, :created_at)
	`, rowFromPlant(plant))
	return err
}

// Get returns nil, nil when the plant does not exist.
func (r *PlantRepository) Get(ctx context.Context, id string) (*domain.Plant, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	var row plantRow
	err := r.db.GetContext(ctx, &row, `
		SELECT `+plantColumns+`
		FROM plants
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	plant := row.toDomain()
	return &plant, nil
}

func (r *PlantRepository) List(ctx context.Context) ([]domain.Plant, error) {
	return r.selectPlants(ctx, `
		SELECT `+plantColumns+`
		FROM plants
		ORDER BY created_at DESC
	`)
}

func (r *PlantRepository) ListBySeller(ctx context.Context, sellerEmail string) ([]domain.Plant, error) {
	return r.selectPlants(ctx, `
		SELECT `+plantColumns+`
		FROM plants
		WHERE seller_email = $1
		ORDER BY created_at DESC
	`, sellerEmail)
}

// Delete removes the plant only if sellerEmail owns it. It reports whether a
// row was removed.
func (r *PlantRepository) Delete(ctx context.Context, id, sellerEmail string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM plants
		WHERE id = $1 AND seller_email = $2
	`, id, sellerEmail)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *PlantRepository) selectPlants(ctx context.Context, query string, args ...any) ([]domain.Plant, error) {
	var rows []plantRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	plants := make([]domain.Plant, 0, len(rows))
	for _, row := range rows {
		plants = append(plants, row.toDomain())
	}
	return plants, nil
}
