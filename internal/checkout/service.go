package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/orderhub/orderhub-backend/internal/cart"
	"github.com/orderhub/orderhub-backend/internal/feasibility"
	"github.com/orderhub/orderhub-backend/internal/suppliers"
	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"github.com/orderhub/orderhub-backend/pkg/enums"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
	"github.com/orderhub/orderhub-backend/pkg/logger"
	"github.com/orderhub/orderhub-backend/pkg/metrics"
	"github.com/orderhub/orderhub-backend/pkg/outbox"
	"github.com/orderhub/orderhub-backend/pkg/types"
)

type cartReader interface {
	GetCart(ctx context.Context, buyerID uuid.UUID) (*cart.CartDTO, error)
}

type supplierDirectory interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*suppliers.SupplierDTO, error)
}

type stateStore interface {
	FindByBuyer(ctx context.Context, buyerID uuid.UUID) (map[uuid.UUID]*models.SupplierOrderState, error)
	GetOrCreate(ctx context.Context, buyerID, supplierID uuid.UUID) (*models.SupplierOrderState, error)
	SaveTx(tx *gorm.DB, state *models.SupplierOrderState) error
	DeleteStale(ctx context.Context, buyerID uuid.UUID, activeSupplierIDs []uuid.UUID) error
}

type telemetryEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// View is the full derived checkout state for a buyer: one section per
// supplier currently in the cart plus the bulk-send gate.
type View struct {
	BuyerID  uuid.UUID     `json:"buyer_id"`
	VATMode  enums.VATMode `json:"vat_mode"`
	Sections []Section     `json:"sections"`
	AllReady bool          `json:"all_ready"`
}

// DispatchResult is the outcome of a single-channel dispatch.
type DispatchResult struct {
	Section  Section `json:"section"`
	Action   *Action `json:"action"`
	OrderRef string  `json:"order_ref"`
	Resend   bool    `json:"resend"`
}

// UpdateSectionInput carries the buyer-editable fields of a section.
type UpdateSectionInput struct {
	Contact         *types.ContactInfo `json:"contact,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
	DeliveryDate    *time.Time         `json:"delivery_date,omitempty"`
	DeliveryAddress *types.Address     `json:"delivery_address,omitempty"`
	Language        *string            `json:"language,omitempty"`
}

// Service exposes the checkout orchestration operations.
type Service interface {
	GetView(ctx context.Context, buyerID uuid.UUID, vatMode enums.VATMode) (*View, error)
	Dispatch(ctx context.Context, buyerID, supplierID uuid.UUID, channel *enums.DispatchChannel, vatMode enums.VATMode) (*DispatchResult, error)
	MarkSent(ctx context.Context, buyerID, supplierID uuid.UUID, vatMode enums.VATMode) (*Section, error)
	MarkUnsent(ctx context.Context, buyerID, supplierID uuid.UUID, vatMode enums.VATMode) (*Section, error)
	ConfirmDraft(ctx context.Context, buyerID, supplierID uuid.UUID, vatMode enums.VATMode) (*Section, error)
	UpdateSection(ctx context.Context, buyerID, supplierID uuid.UUID, input UpdateSectionInput, vatMode enums.VATMode) (*Section, error)
	UpdateChannelPreference(ctx context.Context, buyerID, supplierID uuid.UUID, channel enums.DispatchChannel) error
	SendAllPreview(ctx context.Context, buyerID uuid.UUID, vatMode enums.VATMode) (*BulkPreview, error)
	SendAll(ctx context.Context, buyerID uuid.UUID, vatMode enums.VATMode) (*BulkResult, error)
}

// ServiceParams bundles the collaborators the checkout service needs.
type ServiceParams struct {
	Cart      cartReader
	Suppliers supplierDirectory
	Engine    feasibility.Engine
	States    stateStore
	Composer  *Composer
	Router    *Router
	Outbox    telemetryEmitter
	Tx        txRunner
	Metrics   *metrics.DispatchMetrics
	Logger    *logger.Logger
	Clock     func() time.Time
}

type service struct {
	cart      cartReader
	suppliers supplierDirectory
	engine    feasibility.Engine
	states    stateStore
	composer  *Composer
	router    *Router
	outbox    telemetryEmitter
	tx        txRunner
	metrics   *metrics.DispatchMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService validates the collaborators and builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Cart == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Suppliers == nil {
		return nil, fmt.Errorf("supplier directory required")
	}
	if params.Engine == nil {
		return nil, fmt.Errorf("feasibility engine required")
	}
	if params.States == nil {
		return nil, fmt.Errorf("state repository required")
	}
	if params.Composer == nil {
		return nil, fmt.Errorf("composer required")
	}
	if params.Router == nil {
		return nil, fmt.Errorf("dispatch router required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		cart:      params.Cart,
		suppliers: params.Suppliers,
		engine:    params.Engine,
		states:    params.States,
		composer:  params.Composer,
		router:    params.Router,
		outbox:    params.Outbox,
		tx:        params.Tx,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       now,
	}, nil
}

// GetView derives the checkout view and records the modal-open telemetry
// event. Derivation is pure; the only writes are stale-state cleanup and the
// telemetry row.
func (s *service) GetView(ctx context.Context, buyerID uuid.UUID, vatMode enums.VATMode) (*View, error) {
	started := s.now()
	view, _, err := s.derive(ctx, buyerID, vatMode)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDerivation("checkout_view", s.now().Sub(started))

	if err := s.emitTelemetry(ctx, buyerID, nil, enums.TelemetryEventOpenModal, map[string]any{
		"sections": len(view.Sections),
	}); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "telemetry emit failed")
	}
	return view, nil
}

// derive recomputes the full view from cart, directory, feasibility and
// persisted per-supplier state.
func (s *service) derive(ctx context.Context, buyerID uuid.UUID, vatMode enums.VATMode) (*View, map[uuid.UUID]*suppliers.SupplierDTO, error) {
	cartDTO, err := s.cart.GetCart(ctx, buyerID)
	if err != nil {
		return nil, nil, err
	}

	supplierIDs := cartDTO.SupplierIDs()
	if err := s.states.DeleteStale(ctx, buyerID, supplierIDs); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "discard stale order state")
	}

	directory, err := s.suppliers.GetByIDs(ctx, supplierIDs)
	if err != nil {
		return nil, nil, err
	}
	states, err := s.states.FindByBuyer(ctx, buyerID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order state")
	}

	ref := s.now()
	groups := GroupBySupplier(cartDTO.Items, vatMode)
	view := &View{
		BuyerID:  buyerID,
		VATMode:  vatMode,
		Sections: make([]Section, 0, len(groups)),
		AllReady: len(groups) > 0,
	}
	for _, group := range groups {
		supplier := directory[group.SupplierID]
		var feas *feasibility.Result
		if supplier != nil {
			feas = s.engine.Evaluate(ctx, supplier, group.Subtotal, !group.HasUnknownPrices, ref)
		}
		section := BuildSection(group, supplier, states[group.SupplierID], feas)
		if section.EffectiveStatus != enums.ReadinessStatusReady {
			view.AllReady = false
		}
		view.Sections = append(view.Sections, section)
	}
	return view, directory, nil
}

func (s *service) sectionFor(view *View, supplierID uuid.UUID) (*Section, error) {
	for i := range view.Sections {
		if view.Sections[i].SupplierID == supplierID {
			return &view.Sections[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier has no items in the cart")
}

// Dispatch composes the section's order and prepares the chosen channel's
// action, recording the draft transition and telemetry on success.
func (s *service) Dispatch(ctx context.Context, buyerID, supplierID uuid.UUID, channel *enums.DispatchChannel, vatMode enums.VATMode) (*DispatchResult, error) {
	view, _, err := s.derive(ctx, buyerID, vatMode)
	if err != nil {
		return nil, err
	}
	section, err := s.sectionFor(view, supplierID)
	if err != nil {
		return nil, err
	}

	if err := s.guardDispatch(ctx, buyerID, section); err != nil {
		return nil, err
	}

	kind := s.resolveChannel(section, channel)
	rendered, orderRef, err := s.composer.Compose(section, vatMode, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compose order content")
	}
	action, err := s.router.Prepare(section, rendered, orderRef, kind)
	if err != nil {
		return nil, err
	}
	ch, err := s.router.Channel(kind)
	if err != nil {
		return nil, err
	}

	resend := section.EffectiveStatus == enums.ReadinessStatusSent

	state, err := s.states.GetOrCreate(ctx, buyerID, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order state")
	}
	override := enums.StatusOverrideDraftCreated
	at := s.now()
	state.Override = &override
	state.OverrideSetAt = &at
	state.PendingConfirmation = ch.NeedsConfirmation()
	state.ChannelPref = &kind

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.states.SaveTx(tx, state); err != nil {
			return err
		}
		data := map[string]any{"channel": kind.String(), "order_ref": orderRef}
		if err := s.emitTelemetryTx(ctx, tx, buyerID, &supplierID, enums.TelemetryEventOpenEmailMethod, data); err != nil {
			return err
		}
		if resend {
			return s.emitTelemetryTx(ctx, tx, buyerID, &supplierID, enums.TelemetryEventResend, data)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record dispatch")
	}

	s.metrics.IncDispatched(kind.String())

	section.PendingConfirmation = state.PendingConfirmation
	section.ChannelPref = state.ChannelPref
	section.EffectiveStatus = EffectiveStatus(section.BaseStatus, state.Override)

	logCtx := s.logg.WithSupplierID(s.logg.WithChannel(ctx, kind.String()), supplierID.String())
	s.logg.Info(logCtx, "supplier order dispatched")

	return &DispatchResult{
		Section:  *section,
		Action:   action,
		OrderRef: orderRef,
		Resend:   resend,
	}, nil
}

// guardDispatch enforces the readiness blocks and emits the matching
// telemetry event. Blocked sections surface guidance, never a hard failure.
func (s *service) guardDispatch(ctx context.Context, buyerID uuid.UUID, section *Section) error {
	switch section.EffectiveStatus {
	case enums.ReadinessStatusPricingPending:
		s.metrics.IncBlocked(enums.ReadinessStatusPricingPending.String())
		if err := s.emitTelemetry(ctx, buyerID, &section.SupplierID, enums.TelemetryEventBlockedPricing, nil); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "telemetry emit failed")
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "section has items awaiting price confirmation")
	case enums.ReadinessStatusMinimumNotMet:
		s.metrics.IncBlocked(enums.ReadinessStatusMinimumNotMet.String())
		if err := s.emitTelemetry(ctx, buyerID, &section.SupplierID, enums.TelemetryEventBlockedMinimum, nil); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "telemetry emit failed")
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is below the supplier's delivery minimum")
	default:
		return nil
	}
}

func (s *service) resolveChannel(section *Section, requested *enums.DispatchChannel) enums.DispatchChannel {
	if requested != nil {
		return *requested
	}
	if section.ChannelPref != nil {
		return *section.ChannelPref
	}
	return enums.DispatchChannelMailto
}

// MarkSent records the buyer's confirmation that the order actually went out.
func (s *service) MarkSent(ctx context.Context, buyerID, supplierID uuid.UUID, vatMode enums.VATMode) (*Section, error) {
	return s.mutateState(ctx, buyerID, supplierID, vatMode, func(state *models.SupplierOrderState) *enums.TelemetryEventType {
		override := enums.StatusOverrideSent
		at := s.now()
		state.Override = &override
		state.OverrideSetAt = &at
		state.PendingConfirmation = false
		event := enums.TelemetryEventMarkSent
		return &event
	})
}

// MarkUnsent clears the override so the section falls back to whatever its
// base status currently derives to.
func (s *service) MarkUnsent(ctx context.Context, buyerID, supplierID uuid.UUID, vatMode enums.VATMode) (*Section, error) {
	return s.mutateState(ctx, buyerID, supplierID, vatMode, func(state *models.SupplierOrderState) *enums.TelemetryEventType {
		state.Override = nil
		state.OverrideSetAt = nil
		state.PendingConfirmation = false
		return nil
	})
}

// ConfirmDraft resolves the pending-confirmation flag a file export leaves
// behind.
func (s *service) ConfirmDraft(ctx context.Context, buyerID, supplierID uuid.UUID, vatMode enums.VATMode) (*Section, error) {
	return s.mutateState(ctx, buyerID, supplierID, vatMode, func(state *models.SupplierOrderState) *enums.TelemetryEventType {
		state.PendingConfirmation = false
		return nil
	})
}

// UpdateSection applies the buyer-editable fields.
func (s *service) UpdateSection(ctx context.Context, buyerID, supplierID uuid.UUID, input UpdateSectionInput, vatMode enums.VATMode) (*Section, error) {
	if input.Language != nil && *input.Language != "" {
		if _, err := language.Parse(*input.Language); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid language tag")
		}
	}
	return s.mutateState(ctx, buyerID, supplierID, vatMode, func(state *models.SupplierOrderState) *enums.TelemetryEventType {
		if input.Contact != nil {
			state.Contact = input.Contact
		}
		if input.Notes != nil {
			state.Notes = input.Notes
		}
		if input.DeliveryDate != nil {
			state.DeliveryDate = input.DeliveryDate
		}
		if input.DeliveryAddress != nil {
			state.DeliveryAddress = input.DeliveryAddress
		}
		if input.Language != nil {
			state.Language = input.Language
		}
		return nil
	})
}

// UpdateChannelPreference remembers the buyer's channel choice for the
// supplier across sessions.
func (s *service) UpdateChannelPreference(ctx context.Context, buyerID, supplierID uuid.UUID, channel enums.DispatchChannel) error {
	if !channel.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown dispatch channel")
	}
	state, err := s.states.GetOrCreate(ctx, buyerID, supplierID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order state")
	}
	state.ChannelPref = &channel
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.states.SaveTx(tx, state)
	})
}

// mutateState loads the pair's state row, applies fn, persists it (plus an
// optional telemetry event) and returns the freshly derived section.
func (s *service) mutateState(ctx context.Context, buyerID, supplierID uuid.UUID, vatMode enums.VATMode, fn func(*models.SupplierOrderState) *enums.TelemetryEventType) (*Section, error) {
	view, _, err := s.derive(ctx, buyerID, vatMode)
	if err != nil {
		return nil, err
	}
	section, err := s.sectionFor(view, supplierID)
	if err != nil {
		return nil, err
	}

	state, err := s.states.GetOrCreate(ctx, buyerID, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order state")
	}
	event := fn(state)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.states.SaveTx(tx, state); err != nil {
			return err
		}
		if event != nil {
			return s.emitTelemetryTx(ctx, tx, buyerID, &supplierID, *event, nil)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order state")
	}

	section.PendingConfirmation = state.PendingConfirmation
	section.ChannelPref = state.ChannelPref
	section.Contact = state.Contact
	if state.Notes != nil {
		section.Notes = *state.Notes
	}
	if state.DeliveryDate != nil {
		section.DeliveryDate = state.DeliveryDate
	}
	section.DeliveryAddress = state.DeliveryAddress
	if state.Language != nil {
		section.Language = *state.Language
	}
	section.EffectiveStatus = EffectiveStatus(section.BaseStatus, state.Override)
	return section, nil
}

func (s *service) emitTelemetry(ctx context.Context, buyerID uuid.UUID, supplierID *uuid.UUID, event enums.TelemetryEventType, data map[string]any) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.emitTelemetryTx(ctx, tx, buyerID, supplierID, event, data)
	})
}

func (s *service) emitTelemetryTx(ctx context.Context, tx *gorm.DB, buyerID uuid.UUID, supplierID *uuid.UUID, event enums.TelemetryEventType, data map[string]any) error {
	aggregateType := enums.AggregateCheckout
	aggregateID := buyerID
	if supplierID != nil {
		aggregateType = enums.AggregateSupplierOrder
		aggregateID = *supplierID
	}
	if data == nil {
		data = map[string]any{}
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     event,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Actor:         &outbox.ActorRef{BuyerID: buyerID, SupplierID: supplierID},
		Data:          data,
		Version:       1,
		OccurredAt:    s.now(),
	})
}
