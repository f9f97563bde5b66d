package checkout

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/orderhub/orderhub-backend/pkg/enums"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
)

// BulkPreview describes the confirmation step before a send-all run: which
// suppliers would be contacted and whether the run is currently permitted.
type BulkPreview struct {
	Enabled   bool               `json:"enabled"`
	Suppliers []BulkPreviewEntry `json:"suppliers"`
}

type BulkPreviewEntry struct {
	SupplierID   uuid.UUID             `json:"supplier_id"`
	SupplierName string                `json:"supplier_name"`
	Channel      enums.DispatchChannel `json:"channel"`
}

// BulkEntry is the per-supplier outcome of a send-all run.
type BulkEntry struct {
	SupplierID   uuid.UUID             `json:"supplier_id"`
	SupplierName string                `json:"supplier_name"`
	Channel      enums.DispatchChannel `json:"channel"`
	Action       *Action               `json:"action,omitempty"`
	OrderRef     string                `json:"order_ref,omitempty"`
	Error        string                `json:"error,omitempty"`
}

// BulkResult aggregates a send-all run. Partial failure is reported, never
// escalated to a hard failure of the whole operation.
type BulkResult struct {
	Requested int         `json:"requested"`
	Succeeded int         `json:"succeeded"`
	Entries   []BulkEntry `json:"entries"`
}

// SendAllPreview lists the sections a send-all run would dispatch, in
// partition order, with the channel each would use.
func (s *service) SendAllPreview(ctx context.Context, buyerID uuid.UUID, vatMode enums.VATMode) (*BulkPreview, error) {
	view, _, err := s.derive(ctx, buyerID, vatMode)
	if err != nil {
		return nil, err
	}

	preview := &BulkPreview{Enabled: view.AllReady}
	for i := range view.Sections {
		section := &view.Sections[i]
		preview.Suppliers = append(preview.Suppliers, BulkPreviewEntry{
			SupplierID:   section.SupplierID,
			SupplierName: section.SupplierName,
			Channel:      s.resolveChannel(section, nil),
		})
	}
	return preview, nil
}

// SendAll dispatches every section with its remembered channel preference.
// The run is permitted only when every section is ready; once running,
// individual failures are collected and the rest proceed.
func (s *service) SendAll(ctx context.Context, buyerID uuid.UUID, vatMode enums.VATMode) (*BulkResult, error) {
	view, _, err := s.derive(ctx, buyerID, vatMode)
	if err != nil {
		return nil, err
	}

	if err := s.emitTelemetry(ctx, buyerID, nil, enums.TelemetryEventSendAllClicked, map[string]any{
		"sections": len(view.Sections),
	}); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "telemetry emit failed")
	}

	if !view.AllReady {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "send-all requires every supplier section to be ready")
	}

	result := &BulkResult{Requested: len(view.Sections)}
	var failures error

	for i := range view.Sections {
		section := &view.Sections[i]
		kind := s.resolveChannel(section, nil)
		entry := BulkEntry{
			SupplierID:   section.SupplierID,
			SupplierName: section.SupplierName,
			Channel:      kind,
		}

		dispatched, err := s.Dispatch(ctx, buyerID, section.SupplierID, &kind, vatMode)
		if err != nil {
			entry.Error = dispatchErrorMessage(err)
			failures = multierr.Append(failures, err)
			result.Entries = append(result.Entries, entry)
			continue
		}

		entry.Action = dispatched.Action
		entry.OrderRef = dispatched.OrderRef
		result.Entries = append(result.Entries, entry)
		result.Succeeded++
	}

	if err := s.emitTelemetry(ctx, buyerID, nil, enums.TelemetryEventSendAllCompleted, map[string]any{
		"requested": result.Requested,
		"succeeded": result.Succeeded,
	}); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "telemetry emit failed")
	}
	s.metrics.ObserveSendAllBatch(result.Succeeded)

	if result.Succeeded == 0 && failures != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStateConflict, failures, "no supplier order could be dispatched")
	}
	return result, nil
}

func dispatchErrorMessage(err error) string {
	if appErr := pkgerrors.As(err); appErr != nil {
		return appErr.Message()
	}
	return err.Error()
}
