package checkout

import (
	"fmt"

	"github.com/orderhub/orderhub-backend/internal/templating"
	"github.com/orderhub/orderhub-backend/pkg/enums"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
)

// Router resolves a dispatch channel and prepares its action for a composed
// order. Status side effects belong to the service; the router stays pure.
type Router struct {
	channels map[enums.DispatchChannel]Channel
}

// NewRouter wires the default channel set. Additional capabilities (for
// example a server-side transport) can be passed in as extras and replace a
// default with the same kind.
func NewRouter(extras ...Channel) *Router {
	defaults := []Channel{
		mailtoChannel{},
		gmailChannel{},
		outlookChannel{},
		clipboardChannel{},
		emlExportChannel{},
	}
	channels := make(map[enums.DispatchChannel]Channel, len(defaults))
	for _, ch := range defaults {
		channels[ch.Kind()] = ch
	}
	for _, ch := range extras {
		if ch != nil {
			channels[ch.Kind()] = ch
		}
	}
	return &Router{channels: channels}
}

// Channel returns the registered capability for the given kind.
func (r *Router) Channel(kind enums.DispatchChannel) (Channel, error) {
	ch, ok := r.channels[kind]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown dispatch channel %q", kind))
	}
	return ch, nil
}

// Prepare guards the channel's requirements against the section and builds
// the action from the rendered content. A missing supplier order email on an
// email channel is a blocked-by-data condition, not a fatal error.
func (r *Router) Prepare(section *Section, rendered *templating.Rendered, orderRef string, kind enums.DispatchChannel) (*Action, error) {
	ch, err := r.Channel(kind)
	if err != nil {
		return nil, err
	}

	recipient := ""
	if section.OrderEmail != nil {
		recipient = *section.OrderEmail
	}
	if ch.RequiresEmail() && recipient == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("supplier %s has no order email on file", section.SupplierName))
	}

	return ch.Prepare(ChannelRequest{
		Recipient:    recipient,
		Subject:      rendered.Subject,
		Body:         rendered.Body,
		SupplierName: section.SupplierName,
		OrderRef:     orderRef,
	})
}
