package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigboard/gigboard-backend/pkg/enums"
)

// User represents the canonical identity entity. StripeCustomerID is the
// processor-side identity created lazily on the first billing operation.
type User struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email            string         `gorm:"type:text;not null;uniqueIndex"`
	FullName         string         `gorm:"column:full_name;not null"`
	Role             enums.UserRole `gorm:"column:role;type:user_role;not null;default:'user'"`
	StripeCustomerID *string        `gorm:"column:stripe_customer_id"`
	IsActive         bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
