package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderhub/orderhub-backend/internal/cart"
	"github.com/orderhub/orderhub-backend/internal/feasibility"
	"github.com/orderhub/orderhub-backend/internal/suppliers"
	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"github.com/orderhub/orderhub-backend/pkg/enums"
	"github.com/orderhub/orderhub-backend/pkg/types"
)

// Group is the raw per-supplier slice of the cart before feasibility and
// state are folded in: the item subset plus the priced subtotal.
type Group struct {
	SupplierID       uuid.UUID
	Items            []cart.LineItemDTO
	Subtotal         decimal.Decimal
	HasUnknownPrices bool
}

// Section is the fully derived per-supplier checkout view. It is recomputed
// on every read and never persisted.
type Section struct {
	SupplierID   uuid.UUID          `json:"supplier_id"`
	SupplierName string             `json:"supplier_name"`
	OrderEmail   *string            `json:"order_email,omitempty"`
	Items        []cart.LineItemDTO `json:"items"`

	Subtotal         *decimal.Decimal `json:"subtotal,omitempty"`
	DeliveryCost     decimal.Decimal  `json:"delivery_cost"`
	Total            *decimal.Decimal `json:"total,omitempty"`
	HasUnknownPrices bool             `json:"has_unknown_prices"`
	Shortfall        *decimal.Decimal `json:"shortfall,omitempty"`
	NextDeliveryDate *time.Time       `json:"next_delivery_date,omitempty"`

	BaseStatus          enums.ReadinessStatus  `json:"base_status"`
	EffectiveStatus     enums.ReadinessStatus  `json:"effective_status"`
	PendingConfirmation bool                   `json:"pending_confirmation"`
	ChannelPref         *enums.DispatchChannel `json:"channel_pref,omitempty"`

	Contact         *types.ContactInfo `json:"contact,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	DeliveryDate    *time.Time         `json:"delivery_date,omitempty"`
	DeliveryAddress *types.Address     `json:"delivery_address,omitempty"`
	Language        string             `json:"language,omitempty"`
}

// GroupBySupplier partitions cart items by supplier in first-appearance
// order. Partitioning is total and disjoint: every line lands in exactly one
// group. The subtotal sums priced items only under the given VAT mode; any
// unpriced line marks the group so downstream reporting stays indeterminate
// instead of presenting a partial sum.
func GroupBySupplier(items []cart.LineItemDTO, vatMode enums.VATMode) []Group {
	index := make(map[uuid.UUID]int, len(items))
	var groups []Group

	for _, item := range items {
		pos, ok := index[item.SupplierID]
		if !ok {
			pos = len(groups)
			index[item.SupplierID] = pos
			groups = append(groups, Group{SupplierID: item.SupplierID})
		}
		g := &groups[pos]
		g.Items = append(g.Items, item)

		price := unitPriceFor(&item, vatMode)
		if price == nil {
			g.HasUnknownPrices = true
			continue
		}
		line := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		g.Subtotal = g.Subtotal.Add(line)
	}
	return groups
}

// unitPriceFor picks the net or gross unit price depending on the VAT display
// mode, falling back to the net price when only one is known.
func unitPriceFor(item *cart.LineItemDTO, vatMode enums.VATMode) *decimal.Decimal {
	if vatMode == enums.VATModeGross && item.UnitPriceGross != nil {
		return item.UnitPriceGross
	}
	return item.UnitPriceNet
}

// BuildSection folds directory data, feasibility and persisted state into the
// derived section for one group.
func BuildSection(group Group, supplier *suppliers.SupplierDTO, state *models.SupplierOrderState, feas *feasibility.Result) Section {
	section := Section{
		SupplierID:       group.SupplierID,
		Items:            group.Items,
		HasUnknownPrices: group.HasUnknownPrices,
	}

	if supplier != nil {
		section.SupplierName = supplier.Name
		section.OrderEmail = supplier.OrderEmail
	}

	if feas != nil {
		section.DeliveryCost = feas.DeliveryCost
		section.Shortfall = feas.Shortfall
		section.NextDeliveryDate = feas.NextDeliveryDate
	}

	if !group.HasUnknownPrices {
		subtotal := group.Subtotal
		section.Subtotal = &subtotal
		if feas != nil {
			total := subtotal.Add(feas.DeliveryCost)
			section.Total = &total
		}
	}

	var override *enums.StatusOverride
	if state != nil {
		override = state.Override
		section.PendingConfirmation = state.PendingConfirmation
		section.ChannelPref = state.ChannelPref
		section.Contact = state.Contact
		if state.Notes != nil {
			section.Notes = *state.Notes
		}
		section.DeliveryDate = state.DeliveryDate
		section.DeliveryAddress = state.DeliveryAddress
		if state.Language != nil {
			section.Language = *state.Language
		}
	}
	if section.DeliveryDate == nil && feas != nil {
		section.DeliveryDate = feas.NextDeliveryDate
	}
	if section.Contact == nil && supplier != nil {
		section.Contact = contactFromSupplier(supplier)
	}

	section.BaseStatus = DeriveBaseStatus(group.HasUnknownPrices, feas)
	section.EffectiveStatus = EffectiveStatus(section.BaseStatus, override)
	return section
}

func contactFromSupplier(supplier *suppliers.SupplierDTO) *types.ContactInfo {
	if supplier.ContactName == nil && supplier.OrderEmail == nil && supplier.ContactPhone == nil {
		return nil
	}
	contact := &types.ContactInfo{
		Phone: supplier.ContactPhone,
	}
	if supplier.ContactName != nil {
		contact.Name = *supplier.ContactName
	}
	if supplier.OrderEmail != nil {
		contact.Email = *supplier.OrderEmail
	}
	return contact
}
