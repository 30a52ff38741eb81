package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Marketplace holds the domain counters shared by the API components.
type Marketplace struct {
	ordersCreated      otelmetric.Int64Counter
	ordersCancelled    otelmetric.Int64Counter
	orderStatusChanges otelmetric.Int64Counter
	stockAdjustments   otelmetric.Int64Counter
	authzDenials       otelmetric.Int64Counter
}

func NewMarketplace(meter otelmetric.Meter) (*Marketplace, error) {
	m := &Marketplace{}
	var err error

	if m.ordersCreated, err = meter.Int64Counter("orders_created_total",
		otelmetric.WithDescription("Orders placed")); err != nil {
		return nil, err
	}
	if m.ordersCancelled, err = meter.Int64Counter("orders_cancelled_total",
		otelmetric.WithDescription("Orders cancelled by customers")); err != nil {
		return nil, err
	}
	if m.orderStatusChanges, err = meter.Int64Counter("order_status_changes_total",
		otelmetric.WithDescription("Order status transitions applied by sellers")); err != nil {
		return nil, err
	}
	if m.stockAdjustments, err = meter.Int64Counter("stock_adjustments_total",
		otelmetric.WithDescription("Inventory ledger adjustments by outcome")); err != nil {
		return nil, err
	}
	if m.authzDenials, err = meter.Int64Counter("authz_denials_total",
		otelmetric.WithDescription("Requests rejected by the authorization gate")); err != nil {
		return nil, err
	}

	return m, nil
}

// NopMarketplace returns counters that record nothing.
func NopMarketplace() *Marketplace {
	m, _ := NewMarketplace(noop.NewMeterProvider().Meter("noop"))
	return m
}

func (m *Marketplace) OrderCreated(ctx context.Context, quantity int) {
	m.ordersCreated.Add(ctx, 1, otelmetric.WithAttributes(attribute.Int("quantity", quantity)))
}

func (m *Marketplace) OrderCancelled(ctx context.Context) {
	m.ordersCancelled.Add(ctx, 1)
}

func (m *Marketplace) OrderStatusChanged(ctx context.Context, status string) {
	m.orderStatusChanges.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("status", status)))
}

func (m *Marketplace) StockAdjusted(ctx context.Context, outcome string) {
	m.stockAdjustments.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Marketplace) AuthzDenied(ctx context.Context, reason string) {
	m.authzDenials.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("reason", reason)))
}
