package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigboard/gigboard-backend/internal/gigs"
	"github.com/gigboard/gigboard-backend/internal/notifications"
	"github.com/gigboard/gigboard-backend/pkg/db/models"
	"github.com/gigboard/gigboard-backend/pkg/enums"
	pkgerrors "github.com/gigboard/gigboard-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the order lifecycle operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	ListUserOrders(ctx context.Context, input ListOrdersInput) (*OrderList, error)
	GetOrder(ctx context.Context, orderID, actorID uuid.UUID, actorRole enums.UserRole) (*models.Order, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	Deliver(ctx context.Context, input DeliverInput) (*models.Order, error)
	RequestRevision(ctx context.Context, input RevisionInput) (*models.Order, error)
}

type service struct {
	repo    Repository
	gigs    gigs.Repository
	tx      txRunner
	emitter notifications.Emitter
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, gigRepo gigs.Repository, tx txRunner, emitter notifications.Emitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if gigRepo == nil {
		return nil, fmt.Errorf("gigs repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("notification emitter required")
	}
	return &service{
		repo:    repo,
		gigs:    gigRepo,
		tx:      tx,
		emitter: emitter,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.GigID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing gig id")
	}
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	gig, err := s.gigs.FindByID(ctx, input.GigID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gig not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gig")
	}
	if !gig.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gig is not active")
	}

	// Seller and price are snapshotted here and never change, even if the gig
	// is later edited or deactivated.
	order := &models.Order{
		GigID:           gig.ID,
		SellerID:        gig.SellerID,
		BuyerID:         input.BuyerID,
		Status:          enums.OrderStatusPending,
		TotalPriceCents: gig.PriceCents,
		Currency:        gig.Currency,
		PaymentStatus:   enums.PaymentIndicatorUnpaid,
	}
	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.emitter.Emit(ctx, notifications.Event{
		Type:        notifications.EventOrderCreated,
		OrderID:     created.ID,
		ActorID:     input.BuyerID,
		RecipientID: created.SellerID,
	})
	return created, nil
}

func (s *service) ListUserOrders(ctx context.Context, input ListOrdersInput) (*OrderList, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Perspective.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "perspective must be buyer or seller")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter")
	}

	list, err := s.repo.List(ctx, input.UserID, input.Perspective, input.Status, input.Params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) GetOrder(ctx context.Context, orderID, actorID uuid.UUID, actorRole enums.UserRole) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing order id")
	}
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isParty(order, actorID) && actorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "requester is not a party to this order")
	}
	return order, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing order id")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}
	switch input.Target {
	case enums.OrderStatusPending:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders start pending; no transition leads back")
	case enums.OrderStatusDelivered:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "use the deliver operation to submit work")
	case enums.OrderStatusRevisionRequested:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "use the revision operation to request changes")
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if !isParty(order, input.ActorID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "requester is not a party to this order")
	}
	if err := allowTransition(order, input.Target, input.ActorID); err != nil {
		return nil, err
	}

	previous := order.Status
	rows, err := s.repo.UpdateStatusFrom(ctx, order.ID, previous, input.Target, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order changed concurrently, retry")
	}

	order.Status = input.Target
	s.emitStatusChange(ctx, order, previous, input.ActorID)
	return order, nil
}

func (s *service) Deliver(ctx context.Context, input DeliverInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing order id")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != input.ActorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the seller may deliver")
	}
	if !isDeliverable(order.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be delivered in current state")
	}

	files := input.Files
	if files == nil {
		files = []string{}
	}
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode delivery files")
	}

	now := time.Now().UTC()
	previous := order.Status
	// Re-delivery replaces the previous payload wholesale; revision history
	// lives in order_revisions and is untouched here.
	extra := map[string]any{
		"delivery_message": input.Message,
		"delivery_files":   filesJSON,
		"delivered_at":     now,
	}
	rows, err := s.repo.UpdateStatusFrom(ctx, order.ID, previous, enums.OrderStatusDelivered, extra)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record delivery")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order changed concurrently, retry")
	}

	order.Status = enums.OrderStatusDelivered
	order.DeliveryMessage = &input.Message
	order.DeliveryFiles = filesJSON
	order.DeliveredAt = &now

	s.emitter.Emit(ctx, notifications.Event{
		Type:        notifications.EventOrderDelivered,
		OrderID:     order.ID,
		ActorID:     input.ActorID,
		RecipientID: order.BuyerID,
		Data:        map[string]any{"previous_status": previous},
	})
	return order, nil
}

func (s *service) RequestRevision(ctx context.Context, input RevisionInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing order id")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "revision message required")
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != input.ActorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer may request a revision")
	}
	if order.Status != enums.OrderStatusDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "revisions can only be requested on delivered orders")
	}

	revision := &models.OrderRevision{
		OrderID:   order.ID,
		Message:   input.Message,
		CreatedBy: input.ActorID,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.UpdateStatusFrom(ctx, order.ID, enums.OrderStatusDelivered, enums.OrderStatusRevisionRequested, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "order changed concurrently, retry")
		}
		if err := repo.AppendRevision(ctx, revision); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append revision")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = enums.OrderStatusRevisionRequested
	order.Revisions = append(order.Revisions, *revision)

	s.emitter.Emit(ctx, notifications.Event{
		Type:        notifications.EventOrderRevisionRequested,
		OrderID:     order.ID,
		ActorID:     input.ActorID,
		RecipientID: order.SellerID,
	})
	return order, nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) emitStatusChange(ctx context.Context, order *models.Order, previous enums.OrderStatus, actorID uuid.UUID) {
	recipient := order.BuyerID
	if actorID == order.BuyerID {
		recipient = order.SellerID
	}
	s.emitter.Emit(ctx, notifications.Event{
		Type:        notifications.EventOrderStatusChanged,
		OrderID:     order.ID,
		ActorID:     actorID,
		RecipientID: recipient,
		Data: map[string]any{
			"previous_status": previous,
			"status":          order.Status,
		},
	})
}

func isParty(order *models.Order, actorID uuid.UUID) bool {
	return order.BuyerID == actorID || order.SellerID == actorID
}
