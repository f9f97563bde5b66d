package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/orderhub/orderhub-backend/api/responses"
	"github.com/orderhub/orderhub-backend/api/validators"
	"github.com/orderhub/orderhub-backend/internal/checkout"
	"github.com/orderhub/orderhub-backend/pkg/enums"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
	"github.com/orderhub/orderhub-backend/pkg/logger"
)

func supplierIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "supplierId")
	supplierID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id")
	}
	return supplierID, nil
}

// CheckoutView returns the derived checkout state: one section per supplier
// in the cart plus the send-all gate.
func CheckoutView(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vatMode, err := validators.VATModeFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetView(r.Context(), buyerID, vatMode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CheckoutDispatch prepares a supplier order on the requested channel and
// marks the section's draft as created.
func CheckoutDispatch(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := supplierIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vatMode, err := validators.VATModeFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		channel, err := validators.ChannelFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Dispatch(r.Context(), buyerID, supplierID, channel, vatMode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CheckoutExport dispatches on the file-export channel and streams the
// resulting .eml document as a download.
func CheckoutExport(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := supplierIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vatMode, err := validators.VATModeFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		channel := enums.DispatchChannelEmlExport
		result, err := svc.Dispatch(r.Context(), buyerID, supplierID, &channel, vatMode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if result.Action == nil || result.Action.File == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export produced no file"))
			return
		}

		file := result.Action.File
		responses.WriteFile(w, file.Filename, file.ContentType, []byte(file.Content))
	}
}

func sectionMutation(logg *logger.Logger, mutate func(r *http.Request, buyerID, supplierID uuid.UUID, vatMode enums.VATMode) (*checkout.Section, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := supplierIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vatMode, err := validators.VATModeFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		section, err := mutate(r, buyerID, supplierID, vatMode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, section)
	}
}

// CheckoutMarkSent records that the buyer sent the supplier order outside the
// platform.
func CheckoutMarkSent(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return sectionMutation(logg, func(r *http.Request, buyerID, supplierID uuid.UUID, vatMode enums.VATMode) (*checkout.Section, error) {
		return svc.MarkSent(r.Context(), buyerID, supplierID, vatMode)
	})
}

// CheckoutMarkUnsent clears the sent override and returns the section to its
// derived status.
func CheckoutMarkUnsent(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return sectionMutation(logg, func(r *http.Request, buyerID, supplierID uuid.UUID, vatMode enums.VATMode) (*checkout.Section, error) {
		return svc.MarkUnsent(r.Context(), buyerID, supplierID, vatMode)
	})
}

// CheckoutConfirmDraft resolves the pending confirmation left by clipboard
// and file-export dispatches.
func CheckoutConfirmDraft(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return sectionMutation(logg, func(r *http.Request, buyerID, supplierID uuid.UUID, vatMode enums.VATMode) (*checkout.Section, error) {
		return svc.ConfirmDraft(r.Context(), buyerID, supplierID, vatMode)
	})
}

// CheckoutUpdateSection edits the buyer-controlled fields of a section:
// contact, notes, delivery date, delivery address and template language.
func CheckoutUpdateSection(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return sectionMutation(logg, func(r *http.Request, buyerID, supplierID uuid.UUID, vatMode enums.VATMode) (*checkout.Section, error) {
		var input checkout.UpdateSectionInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			return nil, err
		}
		return svc.UpdateSection(r.Context(), buyerID, supplierID, input, vatMode)
	})
}

type channelPreferenceRequest struct {
	Channel string `json:"channel" validate:"required"`
}

// CheckoutUpdateChannel stores the buyer's preferred dispatch channel for a
// supplier.
func CheckoutUpdateChannel(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := supplierIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req channelPreferenceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		channel, err := enums.ParseDispatchChannel(req.Channel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid channel"))
			return
		}

		if err := svc.UpdateChannelPreference(r.Context(), buyerID, supplierID, channel); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"channel_pref": channel})
	}
}

// CheckoutSendAllPreview lists the suppliers a send-all run would dispatch
// to, without side effects.
func CheckoutSendAllPreview(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vatMode, err := validators.VATModeFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		preview, err := svc.SendAllPreview(r.Context(), buyerID, vatMode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

// CheckoutSendAll dispatches every section on its preferred channel. The run
// only starts when every section is ready; per-supplier failures are reported
// in the result instead of aborting the run.
func CheckoutSendAll(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vatMode, err := validators.VATModeFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SendAll(r.Context(), buyerID, vatMode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
