package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/gigboard/gigboard-backend/pkg/enums"
)

// Invoice is user-level billing paper. Two lifecycles share this type: an
// invoice created ahead of payment and marked paid on confirmation, and an
// already-paid invoice synthesized when a confirmation carried no invoice id.
type Invoice struct {
	ID            uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	InvoiceNumber string              `gorm:"column:invoice_number;not null;unique"`
	AmountCents   int64               `gorm:"column:amount_cents;not null"`
	Currency      enums.Currency      `gorm:"column:currency;not null;default:'usd'"`
	Status        enums.InvoiceStatus `gorm:"column:status;type:invoice_status;not null;default:'unpaid'"`
	TransactionID *uuid.UUID          `gorm:"column:transaction_id;type:uuid"`
	Description   *string             `gorm:"column:description"`
	Metadata      json.RawMessage     `gorm:"column:metadata;type:jsonb"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
