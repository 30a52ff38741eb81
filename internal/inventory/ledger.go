package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/joao-fontenele/plantnet-market/internal/domain"
	"github.com/joao-fontenele/plantnet-market/internal/telemetry"
)

// AdjustQuantity adds delta to the plant's stock in a single conditional
// statement and returns the new quantity. The row lock serializes concurrent
// adjustments, and the guard keeps quantity from going negative.
//
// ext may be a *sqlx.DB or a *sqlx.Tx, so order transactions share the same
// statement.
func AdjustQuantity(ctx context.Context, ext sqlx.ExtContext, plantID string, delta int) (int, error) {
	if _, err := uuid.Parse(plantID); err != nil {
		return 0, fmt.Errorf("plant %s: %w", plantID, domain.ErrNotFound)
	}

	var quantity int
	err := ext.QueryRowxContext(ctx, `
		UPDATE plants
		SET quantity = quantity + $2
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING quantity
	`, plantID, delta).Scan(&quantity)
	if err == nil {
		return quantity, nil
	}
	if outOfRange(err) {
		return 0, fmt.Errorf("%w: plant %s quantity out of range", domain.ErrValidation, plantID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	var exists bool
	if err := ext.QueryRowxContext(ctx, `SELECT EXISTS (SELECT 1 FROM plants WHERE id = $1)`, plantID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("plant %s: %w", plantID, domain.ErrNotFound)
	}
	return 0, domain.ErrInsufficientStock
}

// outOfRange reports a numeric_value_out_of_range from the INTEGER quantity
// column.
func outOfRange(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22003"
}

// Ledger applies standalone stock adjustments and records their outcome.
type Ledger struct {
	db      *sqlx.DB
	metrics *telemetry.Marketplace
	logger  *slog.Logger
}

func NewLedger(db *sqlx.DB, metrics *telemetry.Marketplace, logger *slog.Logger) *Ledger {
	return &Ledger{
		db:      db,
		metrics: metrics,
		logger:  logger,
	}
}

func (l *Ledger) Adjust(ctx context.Context, plantID string, delta int) (domain.StockLevel, error) {
	quantity, err := AdjustQuantity(ctx, l.db, plantID, delta)
	l.metrics.StockAdjusted(ctx, Outcome(err))
	if err != nil {
		return domain.StockLevel{}, err
	}

	l.logger.Info("stock adjusted", "plant_id", plantID, "delta", delta, "quantity", quantity)
	return domain.StockLevel{PlantID: plantID, Quantity: quantity}, nil
}

// Outcome labels an adjustment result for the stock_adjustments_total counter.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
