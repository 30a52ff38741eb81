package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest stock or order quantity the store can hold.
const MaxQuantity = math.MaxInt32

type Plant struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Image       string          `json:"image"`
	Seller      Party           `json:"seller"`
	CreatedAt   time.Time       `json:"created_at"`
}

// StockLevel is the ledger's view of a plant after an adjustment.
type StockLevel struct {
	PlantID  string `json:"plant_id"`
	Quantity int    `json:"quantity"`
}
