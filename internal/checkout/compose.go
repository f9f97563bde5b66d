package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orderhub/orderhub-backend/internal/templating"
	"github.com/orderhub/orderhub-backend/pkg/config"
	"github.com/orderhub/orderhub-backend/pkg/enums"
)

// Composer assembles the structured order payload for a section and hands it
// to the templating renderer. It generates no text itself.
type Composer struct {
	renderer    Renderer
	refPrefix   string
	defaultLang string
}

// Renderer is the templating boundary the composer talks to.
type Renderer interface {
	Render(payload templating.OrderPayload, lang string) (*templating.Rendered, error)
}

// NewComposer builds a composer on top of the renderer.
func NewComposer(renderer Renderer, cfg config.CheckoutConfig) (*Composer, error) {
	if renderer == nil {
		return nil, fmt.Errorf("renderer required")
	}
	prefix := strings.TrimSpace(cfg.OrderRefPrefix)
	if prefix == "" {
		prefix = "OH"
	}
	lang := strings.TrimSpace(cfg.DefaultLanguage)
	if lang == "" {
		lang = "en"
	}
	return &Composer{renderer: renderer, refPrefix: prefix, defaultLang: lang}, nil
}

// OrderRef derives a stable human-readable reference for the section on the
// given day. The supplier fragment keeps references distinct across a
// multi-supplier send-all run.
func (c *Composer) OrderRef(section *Section, at time.Time) string {
	fragment := strings.ToUpper(strings.ReplaceAll(section.SupplierID.String(), "-", ""))
	if len(fragment) > 6 {
		fragment = fragment[:6]
	}
	return fmt.Sprintf("%s-%s-%s", c.refPrefix, at.Format("20060102"), fragment)
}

// Compose builds the payload from the derived section and renders subject and
// body in the section's language, falling back to the configured default.
func (c *Composer) Compose(section *Section, vatMode enums.VATMode, at time.Time) (*templating.Rendered, string, error) {
	orderRef := c.OrderRef(section, at)

	lines := make([]templating.Line, 0, len(section.Items))
	for _, item := range section.Items {
		line := templating.Line{
			Name:      item.Name,
			Quantity:  item.Quantity,
			PackSize:  item.PackSize,
			UnitLabel: item.UnitLabel,
		}
		price := unitPriceFor(&item, vatMode)
		if price != nil {
			line.UnitPrice = price
			total := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			line.LineTotal = &total
		}
		lines = append(lines, line)
	}

	payload := templating.OrderPayload{
		OrderRef:        orderRef,
		SupplierName:    section.SupplierName,
		Lines:           lines,
		Subtotal:        section.Subtotal,
		DeliveryCost:    section.DeliveryCost,
		Total:           section.Total,
		VATMode:         vatMode,
		Contact:         section.Contact,
		DeliveryDate:    section.DeliveryDate,
		DeliveryAddress: section.DeliveryAddress,
		Notes:           section.Notes,
	}

	lang := section.Language
	if lang == "" {
		lang = c.defaultLang
	}
	rendered, err := c.renderer.Render(payload, lang)
	if err != nil {
		return nil, "", err
	}
	return rendered, orderRef, nil
}
