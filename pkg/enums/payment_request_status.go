package enums

import "fmt"

// PaymentRequestStatus tracks a bank-transfer submission through admin review.
// verified and rejected are terminal.
type PaymentRequestStatus string

const (
	PaymentRequestStatusPending  PaymentRequestStatus = "pending"
	PaymentRequestStatusVerified PaymentRequestStatus = "verified"
	PaymentRequestStatusRejected PaymentRequestStatus = "rejected"
)

var validPaymentRequestStatuses = []PaymentRequestStatus{
	PaymentRequestStatusPending,
	PaymentRequestStatusVerified,
	PaymentRequestStatusRejected,
}

// String implements fmt.Stringer.
func (p PaymentRequestStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentRequestStatus.
func (p PaymentRequestStatus) IsValid() bool {
	for _, candidate := range validPaymentRequestStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsDecided reports whether the request has reached a terminal decision.
func (p PaymentRequestStatus) IsDecided() bool {
	return p == PaymentRequestStatusVerified || p == PaymentRequestStatusRejected
}

// ParsePaymentRequestStatus converts raw input into a PaymentRequestStatus.
func ParsePaymentRequestStatus(value string) (PaymentRequestStatus, error) {
	for _, candidate := range validPaymentRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment request status %q", value)
}
