package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/gigboard/gigboard-backend/pkg/enums"
	"github.com/gigboard/gigboard-backend/pkg/pagination"
)

// Perspective selects which side of the order the list query runs for.
type Perspective string

const (
	PerspectiveBuyer  Perspective = "buyer"
	PerspectiveSeller Perspective = "seller"
)

// IsValid reports whether the perspective is a known value.
func (p Perspective) IsValid() bool {
	return p == PerspectiveBuyer || p == PerspectiveSeller
}

// CreateOrderInput captures the data required to open an order.
type CreateOrderInput struct {
	GigID   uuid.UUID
	BuyerID uuid.UUID
}

// ListOrdersInput describes the supported list query.
type ListOrdersInput struct {
	UserID      uuid.UUID
	Perspective Perspective
	Status      *enums.OrderStatus
	Params      pagination.Params
}

// UpdateStatusInput carries a requested lifecycle transition.
type UpdateStatusInput struct {
	OrderID   uuid.UUID
	Target    enums.OrderStatus
	ActorID   uuid.UUID
	ActorRole enums.UserRole
}

// DeliverInput carries the seller's delivery payload.
type DeliverInput struct {
	OrderID uuid.UUID
	ActorID uuid.UUID
	Message string
	Files   []string
}

// RevisionInput carries a buyer revision request.
type RevisionInput struct {
	OrderID uuid.UUID
	ActorID uuid.UUID
	Message string
}

// OrderSummary exposes the aggregated fields returned in order lists.
type OrderSummary struct {
	ID              uuid.UUID              `json:"id"`
	GigID           uuid.UUID              `json:"gig_id"`
	GigTitle        string                 `json:"gig_title"`
	SellerID        uuid.UUID              `json:"seller_id"`
	BuyerID         uuid.UUID              `json:"buyer_id"`
	Status          enums.OrderStatus      `json:"status"`
	TotalPriceCents int64                  `json:"total_price_cents"`
	Currency        enums.Currency         `json:"currency"`
	PaymentStatus   enums.PaymentIndicator `json:"payment_status"`
	DeliveredAt     *time.Time             `json:"delivered_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
