package domain

import "time"

type OrderEventType string

const (
	OrderCreated       OrderEventType = "order.created"
	OrderStatusChanged OrderEventType = "order.status_changed"
	OrderCancelled     OrderEventType = "order.cancelled"
)

type OrderEvent struct {
	Type       OrderEventType `json:"type"`
	OrderID    string         `json:"order_id"`
	PlantID    string         `json:"plant_id"`
	Quantity   int            `json:"quantity"`
	Customer   Party          `json:"customer"`
	Seller     Party          `json:"seller"`
	Status     OrderStatus    `json:"status"`
	PrevStatus OrderStatus    `json:"prev_status,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

func NewOrderEvent(t OrderEventType, o *Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:      t,
		OrderID:   o.ID,
		PlantID:   o.PlantID,
		Quantity:  o.Quantity,
		Customer:  o.Customer,
		Seller:    o.Seller,
		Status:    o.Status,
		Timestamp: at,
	}
}
