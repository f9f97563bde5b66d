package feasibility

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderhub/orderhub-backend/internal/schedule"
	"github.com/orderhub/orderhub-backend/internal/suppliers"
)

// Result is the per-supplier delivery feasibility answer consumed by checkout
// derivation. A nil Result means feasibility is still unresolved for that
// supplier and downstream status must degrade to pending rather than block.
type Result struct {
	SupplierID       uuid.UUID        `json:"supplier_id"`
	DeliveryCost     decimal.Decimal  `json:"delivery_cost"`
	UnderMinimum     bool             `json:"under_minimum"`
	Minimum          *decimal.Decimal `json:"minimum,omitempty"`
	Shortfall        *decimal.Decimal `json:"shortfall,omitempty"`
	NextDeliveryDate *time.Time       `json:"next_delivery_date,omitempty"`
}

// Engine resolves delivery feasibility for one supplier at a time.
type Engine interface {
	Evaluate(ctx context.Context, supplier *suppliers.SupplierDTO, pricedSubtotal decimal.Decimal, subtotalKnown bool, ref time.Time) *Result
}

type engine struct {
	resolver *schedule.Resolver
}

// NewEngine builds a feasibility engine on top of the slot resolver.
func NewEngine(resolver *schedule.Resolver) (Engine, error) {
	if resolver == nil {
		return nil, fmt.Errorf("slot resolver required")
	}
	return &engine{resolver: resolver}, nil
}

// Evaluate computes cost, minimum compliance and the next delivery date for
// the supplier. The minimum check only applies when the subtotal is fully
// priced: an unknown spend cannot be judged against a threshold.
func (e *engine) Evaluate(ctx context.Context, supplier *suppliers.SupplierDTO, pricedSubtotal decimal.Decimal, subtotalKnown bool, ref time.Time) *Result {
	if supplier == nil {
		return nil
	}

	result := &Result{
		SupplierID:   supplier.ID,
		DeliveryCost: supplier.DeliveryCost,
		Minimum:      supplier.DeliveryMinimum,
	}

	if supplier.DeliveryMinimum != nil && subtotalKnown {
		if pricedSubtotal.LessThan(*supplier.DeliveryMinimum) {
			shortfall := supplier.DeliveryMinimum.Sub(pricedSubtotal)
			result.UnderMinimum = true
			result.Shortfall = &shortfall
		}
	}

	if next, ok := e.resolver.NextDeliveryDate(supplier.DeliveryRule(), ref); ok {
		result.NextDeliveryDate = &next
	}

	return result
}
