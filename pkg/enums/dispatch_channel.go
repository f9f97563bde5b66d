package enums

import "fmt"

// DispatchChannel identifies how a composed supplier order is handed off.
type DispatchChannel string

const (
	DispatchChannelMailto    DispatchChannel = "mailto"
	DispatchChannelGmail     DispatchChannel = "gmail"
	DispatchChannelOutlook   DispatchChannel = "outlook"
	DispatchChannelClipboard DispatchChannel = "clipboard"
	DispatchChannelEmlExport DispatchChannel = "eml_export"
)

var validDispatchChannels = []DispatchChannel{
	DispatchChannelMailto,
	DispatchChannelGmail,
	DispatchChannelOutlook,
	DispatchChannelClipboard,
	DispatchChannelEmlExport,
}

// String implements fmt.Stringer.
func (c DispatchChannel) String() string {
	return string(c)
}

// IsValid reports whether the value is a known DispatchChannel.
func (c DispatchChannel) IsValid() bool {
	for _, candidate := range validDispatchChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseDispatchChannel converts raw input into a DispatchChannel.
func ParseDispatchChannel(value string) (DispatchChannel, error) {
	for _, candidate := range validDispatchChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispatch channel %q", value)
}
