package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigboard/gigboard-backend/pkg/enums"
)

// PaymentRequest is a buyer-submitted bank-transfer proof awaiting admin
// review. It references an order but nothing enforces a 1:1 mapping; TxnRef is
// the external bank reference and is not required to be unique.
type PaymentRequest struct {
	ID              uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID                  `gorm:"column:order_id;type:uuid;not null;index"`
	UserID          uuid.UUID                  `gorm:"column:user_id;type:uuid;not null;index"`
	AmountCents     int64                      `gorm:"column:amount_cents;not null"`
	TxnRef          string                     `gorm:"column:txn_ref;not null"`
	ReceiptImageURL string                     `gorm:"column:receipt_image_url;not null"`
	Status          enums.PaymentRequestStatus `gorm:"column:status;type:payment_request_status;not null;default:'pending'"`
	VerifiedBy      *uuid.UUID                 `gorm:"column:verified_by;type:uuid"`
	VerifiedAt      *time.Time                 `gorm:"column:verified_at"`
	CreatedAt       time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
