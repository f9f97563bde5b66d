package suppliers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderhub/orderhub-backend/internal/schedule"
	"github.com/orderhub/orderhub-backend/pkg/db/models"
)

// SupplierDTO exposes directory data consumed by checkout derivation.
type SupplierDTO struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	OrderEmail      *string          `json:"order_email,omitempty"`
	ContactName     *string          `json:"contact_name,omitempty"`
	ContactPhone    *string          `json:"contact_phone,omitempty"`
	DeliveryDays    []int            `json:"delivery_days,omitempty"`
	CutoffHour      *int             `json:"cutoff_hour,omitempty"`
	CutoffMinute    *int             `json:"cutoff_minute,omitempty"`
	DeliveryCost    decimal.Decimal  `json:"delivery_cost"`
	DeliveryMinimum *decimal.Decimal `json:"delivery_minimum,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// DeliveryRule maps the supplier's recurrence settings into a schedule rule.
func (d *SupplierDTO) DeliveryRule() schedule.Rule {
	return schedule.Rule{
		Days:         d.DeliveryDays,
		CutoffHour:   d.CutoffHour,
		CutoffMinute: d.CutoffMinute,
	}
}

// HasOrderEmail reports whether the supplier can receive direct email channels.
func (d *SupplierDTO) HasOrderEmail() bool {
	return d.OrderEmail != nil && *d.OrderEmail != ""
}

// FromModel maps the persisted supplier into a DTO.
func FromModel(m *models.Supplier) *SupplierDTO {
	if m == nil {
		return nil
	}
	return &SupplierDTO{
		ID:              m.ID,
		Name:            m.Name,
		OrderEmail:      m.OrderEmail,
		ContactName:     m.ContactName,
		ContactPhone:    m.ContactPhone,
		DeliveryDays:    m.DeliveryDays,
		CutoffHour:      m.CutoffHour,
		CutoffMinute:    m.CutoffMinute,
		DeliveryCost:    m.DeliveryCost,
		DeliveryMinimum: m.DeliveryMinimum,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
