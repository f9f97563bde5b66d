package enums

import "fmt"

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateSupplierOrder OutboxAggregateType = "supplier_order"
	AggregateCheckout      OutboxAggregateType = "checkout"
)

var validOutboxAggregateTypes = []OutboxAggregateType{
	AggregateSupplierOrder,
	AggregateCheckout,
}

// String implements fmt.Stringer.
func (a OutboxAggregateType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, valid := range validOutboxAggregateTypes {
		if a == valid {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType validates and converts a raw string.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	candidate := OutboxAggregateType(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid outbox aggregate type %q", value)
	}
	return candidate, nil
}
