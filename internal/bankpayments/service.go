package bankpayments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigboard/gigboard-backend/internal/notifications"
	"github.com/gigboard/gigboard-backend/internal/orders"
	"github.com/gigboard/gigboard-backend/pkg/config"
	"github.com/gigboard/gigboard-backend/pkg/db"
	"github.com/gigboard/gigboard-backend/pkg/db/models"
	"github.com/gigboard/gigboard-backend/pkg/enums"
	pkgerrors "github.com/gigboard/gigboard-backend/pkg/errors"
)

// Service drives the admin-verified bank-transfer rail.
type Service interface {
	Submit(ctx context.Context, actorID uuid.UUID, input SubmitInput) (*models.PaymentRequest, error)
	ListPending(ctx context.Context, input ListPendingInput) (*PendingList, error)
	Verify(ctx context.Context, adminID, requestID uuid.UUID) (*models.PaymentRequest, error)
	Reject(ctx context.Context, adminID, requestID uuid.UUID) (*models.PaymentRequest, error)
}

// OrderStore is the narrow order surface this rail needs. WithTx rebinds the
// store so the payment-indicator write commits or rolls back with the review.
type OrderStore interface {
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	SetPaymentIndicator(ctx context.Context, orderID uuid.UUID, indicator enums.PaymentIndicator) error
	WithTx(tx *gorm.DB) OrderStore
}

type ordersAdapter struct {
	repo orders.Repository
}

// NewOrderStore adapts the orders repository to the OrderStore surface.
func NewOrderStore(repo orders.Repository) OrderStore {
	return ordersAdapter{repo: repo}
}

func (a ordersAdapter) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return a.repo.FindByID(ctx, orderID)
}

func (a ordersAdapter) SetPaymentIndicator(ctx context.Context, orderID uuid.UUID, indicator enums.PaymentIndicator) error {
	return a.repo.SetPaymentIndicator(ctx, orderID, indicator)
}

func (a ordersAdapter) WithTx(tx *gorm.DB) OrderStore {
	return ordersAdapter{repo: a.repo.WithTx(tx)}
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the bank payment service.
type ServiceParams struct {
	Repo    Repository
	Orders  OrderStore
	Emitter notifications.Emitter
	Tx      txRunner
	Policy  config.BankTransferConfig
}

type service struct {
	repo    Repository
	orders  OrderStore
	emitter notifications.Emitter
	tx      txRunner
	policy  config.BankTransferConfig
}

// NewService constructs a bank payment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "bank payments repo required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order store required")
	}
	if params.Emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notification emitter required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tx runner required")
	}
	return &service{
		repo:    params.Repo,
		orders:  params.Orders,
		emitter: params.Emitter,
		tx:      params.Tx,
		policy:  params.Policy,
	}, nil
}

// Submit records a bank-transfer proof for admin review. The order must
// exist; the buyer-match and amount-match checks only run when the
// corresponding policy flags are enabled.
func (s *service) Submit(ctx context.Context, actorID uuid.UUID, input SubmitInput) (*models.PaymentRequest, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_id is required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount_cents must be positive")
	}
	txnRef := strings.TrimSpace(input.TxnRef)
	if txnRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "txn_ref is required")
	}
	receiptURL := strings.TrimSpace(input.ReceiptImageURL)
	if receiptURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receipt_image_url is required")
	}

	order, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if s.policy.RequireBuyerMatch && order.BuyerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the order's buyer may submit payment for it")
	}
	if s.policy.RequireAmountMatch && order.TotalPriceCents != input.AmountCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount does not match order total")
	}

	request := &models.PaymentRequest{
		ID:              uuid.New(),
		OrderID:         order.ID,
		UserID:          actorID,
		AmountCents:     input.AmountCents,
		TxnRef:          txnRef,
		ReceiptImageURL: receiptURL,
		Status:          enums.PaymentRequestStatusPending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment request")
	}
	return request, nil
}

// ListPending returns the admin review queue, newest submissions first. Role
// enforcement happens at the route layer.
func (s *service) ListPending(ctx context.Context, input ListPendingInput) (*PendingList, error) {
	list, err := s.repo.ListPending(ctx, input.Params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending payment requests")
	}
	return list, nil
}

// Verify settles a pending submission. The conditional status flip is the
// idempotency anchor: a second verify of the same request updates zero rows
// and reports a conflict, so the order's payment indicator is written at most
// once per request.
func (s *service) Verify(ctx context.Context, adminID, requestID uuid.UUID) (*models.PaymentRequest, error) {
	request, err := s.reviewRequest(ctx, adminID, requestID, enums.PaymentRequestStatusVerified)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, notifications.Event{
		Type:        notifications.EventBankRequestVerified,
		OrderID:     request.OrderID,
		ActorID:     adminID,
		RecipientID: request.UserID,
		Data: map[string]any{
			"payment_request_id": request.ID.String(),
			"amount_cents":       request.AmountCents,
		},
	})
	return request, nil
}

// Reject closes a pending submission without touching the order.
func (s *service) Reject(ctx context.Context, adminID, requestID uuid.UUID) (*models.PaymentRequest, error) {
	request, err := s.reviewRequest(ctx, adminID, requestID, enums.PaymentRequestStatusRejected)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, notifications.Event{
		Type:        notifications.EventBankRequestRejected,
		OrderID:     request.OrderID,
		ActorID:     adminID,
		RecipientID: request.UserID,
		Data: map[string]any{
			"payment_request_id": request.ID.String(),
		},
	})
	return request, nil
}

func (s *service) reviewRequest(ctx context.Context, adminID, requestID uuid.UUID, verdict enums.PaymentRequestStatus) (*models.PaymentRequest, error) {
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "reviewer identity missing")
	}
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment request id is required")
	}

	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment request")
	}

	reviewedAt := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rows, err := repo.UpdateStatusFrom(ctx, requestID, enums.PaymentRequestStatusPending, verdict, adminID, reviewedAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment request status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "payment request already reviewed")
		}

		if verdict == enums.PaymentRequestStatusVerified {
			if err := s.orders.WithTx(tx).SetPaymentIndicator(ctx, request.OrderID, enums.PaymentIndicatorPaid); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
			}
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "review payment request")
	}

	request.Status = verdict
	request.VerifiedBy = &adminID
	request.VerifiedAt = &reviewedAt
	return request, nil
}
