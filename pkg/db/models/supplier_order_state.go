package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/orderhub/orderhub-backend/pkg/enums"
	"github.com/orderhub/orderhub-backend/pkg/types"
)

// SupplierOrderState is the single per-(buyer, supplier) record that outlives
// a checkout derivation: the status override, the buyer-edited contact block,
// notes, delivery overrides and the remembered dispatch channel. Everything
// else about a supplier section is recomputed from the cart on every read.
type SupplierOrderState struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID    uuid.UUID `gorm:"column:buyer_id;type:uuid;not null;uniqueIndex:ux_supplier_order_states_buyer_supplier"`
	SupplierID uuid.UUID `gorm:"column:supplier_id;type:uuid;not null;uniqueIndex:ux_supplier_order_states_buyer_supplier"`

	Override            *enums.StatusOverride `gorm:"column:override"`
	OverrideSetAt       *time.Time            `gorm:"column:override_set_at"`
	PendingConfirmation bool                  `gorm:"column:pending_confirmation;not null;default:false"`

	Contact         *types.ContactInfo     `gorm:"column:contact;type:jsonb;serializer:json"`
	Notes           *string                `gorm:"column:notes"`
	DeliveryDate    *time.Time             `gorm:"column:delivery_date"`
	DeliveryAddress *types.Address         `gorm:"column:delivery_address;type:jsonb;serializer:json"`
	ChannelPref     *enums.DispatchChannel `gorm:"column:channel_pref"`
	Language        *string                `gorm:"column:language"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
