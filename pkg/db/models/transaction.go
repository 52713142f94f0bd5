package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigboard/gigboard-backend/pkg/enums"
)

// Transaction records one settled card authorization. The unique Stripe intent
// id guarantees at most one row per authorization even under retried confirms.
type Transaction struct {
	ID                    uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	StripePaymentIntentID string                  `gorm:"column:stripe_payment_intent_id;not null;unique"`
	AmountCents           int64                   `gorm:"column:amount_cents;not null"`
	Currency              enums.Currency          `gorm:"column:currency;not null;default:'usd'"`
	Status                enums.TransactionStatus `gorm:"column:status;type:transaction_status;not null"`
	Description           *string                 `gorm:"column:description"`
	CreatedAt             time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
