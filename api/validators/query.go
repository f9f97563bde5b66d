package validators

import (
	"net/http"
	"strings"

	"github.com/orderhub/orderhub-backend/pkg/enums"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
)

// VATModeFromQuery reads the optional vat_mode query parameter, defaulting to
// net pricing.
func VATModeFromQuery(r *http.Request) (enums.VATMode, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("vat_mode"))
	if raw == "" {
		return enums.VATModeNet, nil
	}
	mode, err := enums.ParseVATMode(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vat_mode")
	}
	return mode, nil
}

// ChannelFromQuery reads the optional channel query parameter. A nil result
// means the caller did not request a specific channel.
func ChannelFromQuery(r *http.Request) (*enums.DispatchChannel, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("channel"))
	if raw == "" {
		return nil, nil
	}
	channel, err := enums.ParseDispatchChannel(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid channel")
	}
	return &channel, nil
}
