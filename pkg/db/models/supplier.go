package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Supplier is a directory entry: how to reach the supplier and how it delivers.
// DeliveryDays holds ISO weekday numbers (1 = Monday .. 7 = Sunday).
type Supplier struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string           `gorm:"column:name;not null"`
	OrderEmail      *string          `gorm:"column:order_email"`
	ContactName     *string          `gorm:"column:contact_name"`
	ContactPhone    *string          `gorm:"column:contact_phone"`
	DeliveryDays    []int            `gorm:"column:delivery_days;type:jsonb;serializer:json"`
	CutoffHour      *int             `gorm:"column:cutoff_hour"`
	CutoffMinute    *int             `gorm:"column:cutoff_minute"`
	DeliveryCost    decimal.Decimal  `gorm:"column:delivery_cost;type:numeric(12,2);not null;default:0"`
	DeliveryMinimum *decimal.Decimal `gorm:"column:delivery_minimum;type:numeric(12,2)"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
