package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/gigboard/gigboard-backend/pkg/enums"
)

// Order owns the fulfillment lifecycle of one gig purchase. SellerID and
// TotalPriceCents are copied from the gig at creation and never change.
// PaymentStatus is the bank-rail settlement indicator, orthogonal to Status.
type Order struct {
	ID              uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	GigID           uuid.UUID              `gorm:"column:gig_id;type:uuid;not null;index"`
	SellerID        uuid.UUID              `gorm:"column:seller_id;type:uuid;not null;index"`
	BuyerID         uuid.UUID              `gorm:"column:buyer_id;type:uuid;not null;index"`
	Status          enums.OrderStatus      `gorm:"column:status;type:order_status;not null;default:'pending'"`
	TotalPriceCents int64                  `gorm:"column:total_price_cents;not null"`
	Currency        enums.Currency         `gorm:"column:currency;not null;default:'usd'"`
	DeliveryMessage *string                `gorm:"column:delivery_message"`
	DeliveryFiles   json.RawMessage        `gorm:"column:delivery_files;type:jsonb"`
	DeliveredAt     *time.Time             `gorm:"column:delivered_at"`
	PaymentStatus   enums.PaymentIndicator `gorm:"column:payment_status;type:payment_indicator;not null;default:'unpaid'"`
	Revisions       []OrderRevision        `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderRevision is an append-only record of a buyer revision request.
type OrderRevision struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	Message   string    `gorm:"column:message;not null"`
	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
