package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigboard/gigboard-backend/pkg/enums"
)

// Gig is the fixed-scope service listing an order snapshots at creation time.
// The catalog itself is owned elsewhere; this core only reads it.
type Gig struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID   uuid.UUID      `gorm:"column:seller_id;type:uuid;not null;index"`
	Title      string         `gorm:"column:title;not null"`
	PriceCents int64          `gorm:"column:price_cents;not null"`
	Currency   enums.Currency `gorm:"column:currency;not null;default:'usd'"`
	IsActive   bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
