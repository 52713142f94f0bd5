package bankpayments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigboard/gigboard-backend/pkg/db/models"
	"github.com/gigboard/gigboard-backend/pkg/enums"
	"github.com/gigboard/gigboard-backend/pkg/pagination"
)

// Repository defines persistence operations for bank-transfer submissions.
//
// UpdateStatusFrom mirrors the order ledger's conditional-write discipline:
// the pending status rides in the WHERE clause so of two racing reviewers
// exactly one observes a row count of one.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.PaymentRequest) error
	FindByID(ctx context.Context, requestID uuid.UUID) (*models.PaymentRequest, error)
	ListPending(ctx context.Context, params pagination.Params) (*PendingList, error)
	UpdateStatusFrom(ctx context.Context, requestID uuid.UUID, from, to enums.PaymentRequestStatus, reviewerID uuid.UUID, reviewedAt time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bank payment repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.PaymentRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) FindByID(ctx context.Context, requestID uuid.UUID) (*models.PaymentRequest, error) {
	var request models.PaymentRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", requestID).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) ListPending(ctx context.Context, params pagination.Params) (*PendingList, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Table("payment_requests").
		Select(`payment_requests.id,
			payment_requests.order_id,
			payment_requests.user_id,
			payment_requests.amount_cents,
			payment_requests.txn_ref,
			payment_requests.receipt_image_url,
			payment_requests.status,
			payment_requests.created_at,
			users.email AS buyer_email,
			users.full_name AS buyer_name,
			orders.status AS order_status,
			orders.total_price_cents AS order_total_cents,
			orders.buyer_id AS order_buyer_id`).
		Joins("JOIN users ON users.id = payment_requests.user_id").
		Joins("JOIN orders ON orders.id = payment_requests.order_id").
		Where("payment_requests.status = ?", enums.PaymentRequestStatusPending)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"payment_requests.created_at < ? OR (payment_requests.created_at = ? AND payment_requests.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var requests []PendingRequest
	err = query.
		Order("payment_requests.created_at DESC, payment_requests.id DESC").
		Limit(limit + 1).
		Scan(&requests).Error
	if err != nil {
		return nil, err
	}

	list := &PendingList{Requests: requests}
	if len(requests) > limit {
		list.Requests = requests[:limit]
		last := list.Requests[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) UpdateStatusFrom(ctx context.Context, requestID uuid.UUID, from, to enums.PaymentRequestStatus, reviewerID uuid.UUID, reviewedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PaymentRequest{}).
		Where("id = ? AND status = ?", requestID, from).
		Updates(map[string]any{
			"status":      to,
			"verified_by": reviewerID,
			"verified_at": reviewedAt,
			"updated_at":  time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}
