package templating

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/orderhub/orderhub-backend/pkg/enums"
	"github.com/orderhub/orderhub-backend/pkg/types"
)

// Line is one itemized order position as it appears in the rendered text.
type Line struct {
	Name      string
	Quantity  int
	PackSize  string
	UnitLabel string
	UnitPrice *decimal.Decimal
	LineTotal *decimal.Decimal
}

// OrderPayload is the structured order content handed to the renderer.
// Totals stay nil when the section contains unpriced items: the template
// prints a placeholder instead of a partial sum.
type OrderPayload struct {
	OrderRef     string
	SupplierName string
	Lines        []Line
	Subtotal     *decimal.Decimal
	DeliveryCost decimal.Decimal
	Total        *decimal.Decimal
	VATMode      enums.VATMode

	Contact         *types.ContactInfo
	DeliveryDate    *time.Time
	DeliveryAddress *types.Address
	Notes           string
}

// Rendered is the outcome of templating: ready-to-send subject and body text.
type Rendered struct {
	Subject  string
	Body     string
	Language string
}
