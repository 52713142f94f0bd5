package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigboard/gigboard-backend/pkg/db/models"
	"github.com/gigboard/gigboard-backend/pkg/enums"
	"github.com/gigboard/gigboard-backend/pkg/pagination"
)

// Repository defines persistence operations for the order ledger.
//
// UpdateStatusFrom is the single write path for lifecycle transitions: the
// UPDATE carries the expected current status in its WHERE clause and the
// returned row count tells the caller whether the guard held.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, userID uuid.UUID, perspective Perspective, status *enums.OrderStatus, params pagination.Params) (*OrderList, error)
	UpdateStatusFrom(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, extra map[string]any) (int64, error)
	AppendRevision(ctx context.Context, revision *models.OrderRevision) error
	SetPaymentIndicator(ctx context.Context, orderID uuid.UUID, indicator enums.PaymentIndicator) error
}
