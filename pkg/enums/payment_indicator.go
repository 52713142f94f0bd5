package enums

import "fmt"

// PaymentIndicator is the order-level settlement flag set by the bank-transfer
// rail. It is orthogonal to OrderStatus and to invoice status.
type PaymentIndicator string

const (
	PaymentIndicatorUnpaid PaymentIndicator = "unpaid"
	PaymentIndicatorPaid   PaymentIndicator = "paid"
)

var validPaymentIndicators = []PaymentIndicator{
	PaymentIndicatorUnpaid,
	PaymentIndicatorPaid,
}

// String implements fmt.Stringer.
func (p PaymentIndicator) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentIndicator.
func (p PaymentIndicator) IsValid() bool {
	for _, candidate := range validPaymentIndicators {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentIndicator converts raw input into a PaymentIndicator.
func ParsePaymentIndicator(value string) (PaymentIndicator, error) {
	for _, candidate := range validPaymentIndicators {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment indicator %q", value)
}
