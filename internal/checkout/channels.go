package checkout

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/orderhub/orderhub-backend/pkg/enums"
)

// ChannelRequest carries everything a channel needs to prepare its action.
type ChannelRequest struct {
	Recipient    string
	Subject      string
	Body         string
	SupplierName string
	OrderRef     string
}

// FileDownload is a prepared message file served to the client.
type FileDownload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

// Action is the prepared outcome of a dispatch: exactly one of the payload
// fields is set depending on the channel. The server never transports mail
// itself; it hands the client something to open, copy or download.
type Action struct {
	Channel       enums.DispatchChannel `json:"channel"`
	URI           string                `json:"uri,omitempty"`
	ClipboardText string                `json:"clipboard_text,omitempty"`
	File          *FileDownload         `json:"file,omitempty"`
}

/// Channel is one dispatch capability. Implementations are pure: preparing an
// action has no side effects on order state.
type Channel interface {
	Kind() enums.DispatchChannel
	RequiresEmail() bool
	// NeedsConfirmation marks channels whose drafts require an explicit
	// buyer confirmation before they count as handled.
	NeedsConfirmation() bool
	Prepare(req ChannelRequest) (*Action, error)
}

// queryEscape percent-encodes a value for use in mailto and compose URLs.
// url.Values encodes spaces as "+", which mail clients do not decode.
func queryEscape(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

type mailtoChannel struct{}

func (mailtoChannel) Kind() enums.DispatchChannel { return enums.DispatchChannelMailto }
func (mailtoChannel) RequiresEmail() bool         { return true }
func (mailtoChannel) NeedsConfirmation() bool     { return false }

func (mailtoChannel) Prepare(req ChannelRequest) (*Action, error) {
	uri := fmt.Sprintf("mailto:%s?subject=%s&body=%s",
		queryEscape(req.Recipient), queryEscape(req.Subject), queryEscape(req.Body))
	return &Action{Channel: enums.DispatchChannelMailto, URI: uri}, nil
}

type gmailChannel struct{}

func (gmailChannel) Kind() enums.DispatchChannel { return enums.DispatchChannelGmail }
func (gmailChannel) RequiresEmail() bool         { return true }
func (gmailChannel) NeedsConfirmation() bool     { return false }

func (gmailChannel) Prepare(req ChannelRequest) (*Action, error) {
	uri := fmt.Sprintf("https://mail.google.com/mail/?view=cm&fs=1&to=%s&su=%s&body=%s",
		queryEscape(req.Recipient), queryEscape(req.Subject), queryEscape(req.Body))
	return &Action{Channel: enums.DispatchChannelGmail, URI: uri}, nil
}

type outlookChannel struct{}

func (outlookChannel) Kind() enums.DispatchChannel { return enums.DispatchChannelOutlook }
func (outlookChannel) RequiresEmail() bool         { return true }
func (outlookChannel) NeedsConfirmation() bool     { return false }

func (outlookChannel) Prepare(req ChannelRequest) (*Action, error) {
	uri := fmt.Sprintf("https://outlook.office.com/mail/deeplink/compose?to=%s&subject=%s&body=%s",
		queryEscape(req.Recipient), queryEscape(req.Subject), queryEscape(req.Body))
	return &Action{Channel: enums.DispatchChannelOutlook, URI: uri}, nil
}

type clipboardChannel struct{}

func (clipboardChannel) Kind() enums.DispatchChannel { return enums.DispatchChannelClipboard }
func (clipboardChannel) RequiresEmail() bool         { return false }
func (clipboardChannel) NeedsConfirmation() bool     { return false }

func (clipboardChannel) Prepare(req ChannelRequest) (*Action, error) {
	text := req.Subject + "\n\n" + req.Body
	return &Action{Channel: enums.DispatchChannelClipboard, ClipboardText: text}, nil
}

type emlExportChannel struct{}

func (emlExportChannel) Kind() enums.DispatchChannel { return enums.DispatchChannelEmlExport }
func (emlExportChannel) RequiresEmail() bool         { return false }
func (emlExportChannel) NeedsConfirmation() bool     { return true }

func (emlExportChannel) Prepare(req ChannelRequest) (*Action, error) {
	var b strings.Builder
	if req.Recipient != "" {
		fmt.Fprintf(&b, "To: %s\r\n", req.Recipient)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n\r\n", req.Subject)
	b.WriteString(strings.ReplaceAll(req.Body, "\n", "\r\n"))

	return &Action{
		Channel: enums.DispatchChannelEmlExport,
		File: &FileDownload{
			Filename:    exportFilename(req.SupplierName, req.OrderRef),
			ContentType: "message/rfc822",
			Content:     b.String(),
		},
	}, nil
}

var filenameSanitizeRe = regexp.MustCompile(`[^a-z0-9]+`)

// exportFilename derives a safe .eml filename from the supplier name and the
// order reference.
func exportFilename(supplierName, orderRef string) string {
	slug := strings.ToLower(strings.TrimSpace(supplierName))
	slug = filenameSanitizeRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "order"
	}
	ref := strings.ToLower(strings.TrimSpace(orderRef))
	ref = filenameSanitizeRe.ReplaceAllString(ref, "-")
	ref = strings.Trim(ref, "-")
	if ref == "" {
		return slug + ".eml"
	}
	return slug + "-" + ref + ".eml"
}
