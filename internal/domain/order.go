package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "In Progress"
	OrderStatusDelivered  OrderStatus = "Delivered"
)

// orderTransitions lists every legal forward step. Delivered is absorbing.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusInProgress, OrderStatusDelivered},
	OrderStatusInProgress: {OrderStatusDelivered},
	OrderStatusDelivered:  nil,
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in this status may still be deleted.
func (s OrderStatus) Cancellable() bool {
	return s.Valid() && s != OrderStatusDelivered
}

type Order struct {
	ID              string          `json:"_id"`
	PlantID         string          `json:"plantId"`
	UnitPrice       decimal.Decimal `json:"plantPerPrice"`
	Quantity        int             `json:"quantity"`
	Total           decimal.Decimal `json:"price"`
	ShippingAddress string          `json:"shippingAddress"`
	Customer        Party           `json:"customer"`
	Seller          Party           `json:"seller"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// OrderView is an order joined with the current plant listing for display.
type OrderView struct {
	Order
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Image    string `json:"image,omitempty"`
}
