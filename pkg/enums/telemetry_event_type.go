package enums

import "fmt"

// TelemetryEventType enumerates the checkout funnel events shipped to the
// analytics pipeline.
type TelemetryEventType string

const (
	TelemetryEventOpenModal        TelemetryEventType = "open_modal"
	TelemetryEventOpenEmailMethod  TelemetryEventType = "open_email_method"
	TelemetryEventMarkSent         TelemetryEventType = "mark_sent"
	TelemetryEventBlockedPricing   TelemetryEventType = "blocked_pricing"
	TelemetryEventBlockedMinimum   TelemetryEventType = "blocked_minimum"
	TelemetryEventSendAllClicked   TelemetryEventType = "send_all_clicked"
	TelemetryEventSendAllCompleted TelemetryEventType = "send_all_completed_count"
	TelemetryEventResend           TelemetryEventType = "resend"
)

var validTelemetryEventTypes = []TelemetryEventType{
	TelemetryEventOpenModal,
	TelemetryEventOpenEmailMethod,
	TelemetryEventMarkSent,
	TelemetryEventBlockedPricing,
	TelemetryEventBlockedMinimum,
	TelemetryEventSendAllClicked,
	TelemetryEventSendAllCompleted,
	TelemetryEventResend,
}

// String implements fmt.Stringer.
func (t TelemetryEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TelemetryEventType.
func (t TelemetryEventType) IsValid() bool {
	for _, candidate := range validTelemetryEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTelemetryEventType converts raw input into a TelemetryEventType.
func ParseTelemetryEventType(value string) (TelemetryEventType, error) {
	for _, candidate := range validTelemetryEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid telemetry event type %q", value)
}
