package models

import (
	"time"

	"github.com/google/uuid"
)

// CartRecord is the buyer's single active cart; items span multiple suppliers.
type CartRecord struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID   uuid.UUID      `gorm:"column:buyer_id;type:uuid;not null;uniqueIndex:ux_cart_records_buyer"`
	Items     []CartLineItem `gorm:"foreignKey:CartID"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
