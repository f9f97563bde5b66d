package checkout

import (
	"github.com/orderhub/orderhub-backend/internal/feasibility"
	"github.com/orderhub/orderhub-backend/pkg/enums"
)

// DeriveBaseStatus computes a section's status from pricing completeness and
// the feasibility result, ignoring any override.
//
// Unpriced items win over the minimum check: a supplier cannot be blocked on
// minimum spend while the actual spend is still unknown. An unresolved
// feasibility result also degrades to pricing_pending so the section never
// reports ready on incomplete data.
func DeriveBaseStatus(hasUnknownPrices bool, feas *feasibility.Result) enums.ReadinessStatus {
	if hasUnknownPrices {
		return enums.ReadinessStatusPricingPending
	}
	if feas == nil {
		return enums.ReadinessStatusPricingPending
	}
	if feas.UnderMinimum {
		return enums.ReadinessStatusMinimumNotMet
	}
	return enums.ReadinessStatusReady
}

// EffectiveStatus layers the buyer-driven override on top of the base status.
//
// A sent override always wins. A draft_created override wins unless the base
// status is minimum_not_met: an item added after drafting that drops the
// order below the minimum must resurface that block.
func EffectiveStatus(base enums.ReadinessStatus, override *enums.StatusOverride) enums.ReadinessStatus {
	if override == nil {
		return base
	}
	switch *override {
	case enums.StatusOverrideSent:
		return enums.ReadinessStatusSent
	case enums.StatusOverrideDraftCreated:
		if base == enums.ReadinessStatusMinimumNotMet {
			return base
		}
		return enums.ReadinessStatusDraftCreated
	default:
		return base
	}
}
