package checkout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderhub/orderhub-backend/internal/cart"
	"github.com/orderhub/orderhub-backend/internal/feasibility"
	"github.com/orderhub/orderhub-backend/internal/suppliers"
	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"github.com/orderhub/orderhub-backend/pkg/enums"
)

func priceOf(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestGroupBySupplierIsTotalAndDisjoint(t *testing.T) {
	supplierA := uuid.New()
	supplierB := uuid.New()
	items := []cart.LineItemDTO{
		{ID: uuid.New(), SupplierID: supplierA, Name: "Flour", Quantity: 2, UnitPriceNet: priceOf("10.00")},
		{ID: uuid.New(), SupplierID: supplierB, Name: "Butter", Quantity: 1, UnitPriceNet: priceOf("4.50")},
		{ID: uuid.New(), SupplierID: supplierA, Name: "Yeast", Quantity: 3, UnitPriceNet: priceOf("1.10")},
	}

	groups := GroupBySupplier(items, enums.VATModeNet)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].SupplierID != supplierA || groups[1].SupplierID != supplierB {
		t.Fatalf("expected first-appearance order")
	}

	total := 0
	seen := map[uuid.UUID]bool{}
	for _, g := range groups {
		total += len(g.Items)
		for _, item := range g.Items {
			if seen[item.ID] {
				t.Fatalf("item %s assigned twice", item.ID)
			}
			seen[item.ID] = true
			if item.SupplierID != g.SupplierID {
				t.Fatalf("item %s landed in the wrong group", item.ID)
			}
		}
	}
	if total != len(items) {
		t.Fatalf("partition dropped items: %d of %d", total, len(items))
	}

	if !groups[0].Subtotal.Equal(decimal.RequireFromString("23.30")) {
		t.Fatalf("expected subtotal 23.30, got %s", groups[0].Subtotal)
	}
}

func TestGroupBySupplierUnknownPrices(t *testing.T) {
	supplierA := uuid.New()
	items := []cart.LineItemDTO{
		{ID: uuid.New(), SupplierID: supplierA, Name: "Flour", Quantity: 2, UnitPriceNet: priceOf("10.00")},
		{ID: uuid.New(), SupplierID: supplierA, Name: "Seasonal greens", Quantity: 1},
	}

	groups := GroupBySupplier(items, enums.VATModeNet)
	if !groups[0].HasUnknownPrices {
		t.Fatalf("expected unknown-prices flag")
	}

	section := BuildSection(groups[0], &suppliers.SupplierDTO{ID: supplierA, Name: "Farm"}, nil, &feasibility.Result{})
	if section.Subtotal != nil || section.Total != nil {
		t.Fatalf("unpriced section must report indeterminate totals, got subtotal=%v total=%v", section.Subtotal, section.Total)
	}
	if section.BaseStatus != enums.ReadinessStatusPricingPending {
		t.Fatalf("expected pricing_pending, got %s", section.BaseStatus)
	}
}

func TestGroupBySupplierGrossMode(t *testing.T) {
	supplierA := uuid.New()
	items := []cart.LineItemDTO{
		{ID: uuid.New(), SupplierID: supplierA, Quantity: 2, UnitPriceNet: priceOf("10.00"), UnitPriceGross: priceOf("11.90")},
	}

	groups := GroupBySupplier(items, enums.VATModeGross)
	if !groups[0].Subtotal.Equal(decimal.RequireFromString("23.80")) {
		t.Fatalf("expected gross subtotal 23.80, got %s", groups[0].Subtotal)
	}
}

func TestBuildSectionFoldsStateAndFeasibility(t *testing.T) {
	supplierID := uuid.New()
	email := "orders@farm.example"
	notes := "Ring the back bell."
	override := enums.StatusOverrideDraftCreated
	cost := decimal.RequireFromString("5.00")

	group := GroupBySupplier([]cart.LineItemDTO{
		{ID: uuid.New(), SupplierID: supplierID, Quantity: 1, UnitPriceNet: priceOf("60.00")},
	}, enums.VATModeNet)[0]

	section := BuildSection(group,
		&suppliers.SupplierDTO{ID: supplierID, Name: "Farm", OrderEmail: &email},
		&models.SupplierOrderState{SupplierID: supplierID, Override: &override, Notes: &notes},
		&feasibility.Result{SupplierID: supplierID, DeliveryCost: cost},
	)

	if section.EffectiveStatus != enums.ReadinessStatusDraftCreated {
		t.Fatalf("expected draft_created, got %s", section.EffectiveStatus)
	}
	if section.Total == nil || !section.Total.Equal(decimal.RequireFromString("65.00")) {
		t.Fatalf("expected total 65.00, got %v", section.Total)
	}
	if section.Notes != notes {
		t.Fatalf("expected notes fold-in")
	}
	if section.Contact == nil || section.Contact.Email != email {
		t.Fatalf("expected contact defaulted from the directory")
	}
}
