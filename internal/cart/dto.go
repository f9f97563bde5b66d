package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderhub/orderhub-backend/pkg/db/models"
)

// LineItemDTO is one supplier-scoped cart position as consumed by checkout
// derivation. Prices stay nil until the supplier has confirmed them.
type LineItemDTO struct {
	ID             uuid.UUID        `json:"id"`
	SupplierID     uuid.UUID        `json:"supplier_id"`
	ItemRef        string           `json:"item_ref"`
	Name           string           `json:"name"`
	Quantity       int              `json:"quantity"`
	UnitPriceNet   *decimal.Decimal `json:"unit_price_net,omitempty"`
	UnitPriceGross *decimal.Decimal `json:"unit_price_gross,omitempty"`
	PackSize       string           `json:"pack_size,omitempty"`
	UnitLabel      string           `json:"unit_label,omitempty"`
}

// HasPrice reports whether the line carries a confirmed net price.
func (l *LineItemDTO) HasPrice() bool {
	return l.UnitPriceNet != nil
}

// CartDTO is the buyer's full cart across suppliers.
type CartDTO struct {
	ID        uuid.UUID     `json:"id"`
	BuyerID   uuid.UUID     `json:"buyer_id"`
	Items     []LineItemDTO `json:"items"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// SupplierIDs returns the distinct supplier IDs present in the cart, in
// first-appearance order.
func (c *CartDTO) SupplierIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(c.Items))
	var out []uuid.UUID
	for _, item := range c.Items {
		if _, ok := seen[item.SupplierID]; ok {
			continue
		}
		seen[item.SupplierID] = struct{}{}
		out = append(out, item.SupplierID)
	}
	return out
}

func lineItemFromModel(m *models.CartLineItem) LineItemDTO {
	return LineItemDTO{
		ID:             m.ID,
		SupplierID:     m.SupplierID,
		ItemRef:        m.ItemRef,
		Name:           m.Name,
		Quantity:       m.Quantity,
		UnitPriceNet:   m.UnitPriceNet,
		UnitPriceGross: m.UnitPriceGross,
		PackSize:       m.PackSize,
		UnitLabel:      m.UnitLabel,
	}
}

// FromModel maps the persisted cart into a DTO.
func FromModel(m *models.CartRecord) *CartDTO {
	if m == nil {
		return nil
	}
	dto := &CartDTO{
		ID:        m.ID,
		BuyerID:   m.BuyerID,
		Items:     make([]LineItemDTO, 0, len(m.Items)),
		UpdatedAt: m.UpdatedAt,
	}
	for i := range m.Items {
		dto.Items = append(dto.Items, lineItemFromModel(&m.Items[i]))
	}
	return dto
}
