package bankpayments

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigboard/gigboard-backend/pkg/enums"
	"github.com/gigboard/gigboard-backend/pkg/pagination"
)

// SubmitInput is a buyer's proof of an out-of-band bank transfer.
type SubmitInput struct {
	OrderID         uuid.UUID
	AmountCents     int64
	TxnRef          string
	ReceiptImageURL string
}

// ListPendingInput pages the admin review queue.
type ListPendingInput struct {
	Params pagination.Params
}

// PendingRequest is one review-queue row: the raw submission joined with
// enough buyer and order context for an admin to decide without extra
// lookups.
type PendingRequest struct {
	ID              uuid.UUID                  `gorm:"column:id"`
	OrderID         uuid.UUID                  `gorm:"column:order_id"`
	UserID          uuid.UUID                  `gorm:"column:user_id"`
	AmountCents     int64                      `gorm:"column:amount_cents"`
	TxnRef          string                     `gorm:"column:txn_ref"`
	ReceiptImageURL string                     `gorm:"column:receipt_image_url"`
	Status          enums.PaymentRequestStatus `gorm:"column:status"`
	CreatedAt       time.Time                  `gorm:"column:created_at"`

	BuyerEmail      string            `gorm:"column:buyer_email"`
	BuyerName       string            `gorm:"column:buyer_name"`
	OrderStatus     enums.OrderStatus `gorm:"column:order_status"`
	OrderTotalCents int64             `gorm:"column:order_total_cents"`
	OrderBuyerID    uuid.UUID         `gorm:"column:order_buyer_id"`
}

// PendingList is one page of the review queue.
type PendingList struct {
	Requests   []PendingRequest
	NextCursor string
}
