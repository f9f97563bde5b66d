package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLineItem is one supplier-scoped article position in the buyer's cart.
// Prices are nullable until the supplier has confirmed them.
type CartLineItem struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID         uuid.UUID        `gorm:"column:cart_id;type:uuid;not null;index"`
	SupplierID     uuid.UUID        `gorm:"column:supplier_id;type:uuid;not null;index"`
	ItemRef        string           `gorm:"column:item_ref;not null"`
	Name           string           `gorm:"column:name;not null"`
	Quantity       int              `gorm:"column:quantity;not null"`
	UnitPriceNet   *decimal.Decimal `gorm:"column:unit_price_net;type:numeric(12,2)"`
	UnitPriceGross *decimal.Decimal `gorm:"column:unit_price_gross;type:numeric(12,2)"`
	PackSize       string           `gorm:"column:pack_size"`
	UnitLabel      string           `gorm:"column:unit_label"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
