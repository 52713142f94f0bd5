package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gigboard/gigboard-backend/internal/gigs"
	"github.com/gigboard/gigboard-backend/internal/notifications"
	"github.com/gigboard/gigboard-backend/pkg/db/models"
	"github.com/gigboard/gigboard-backend/pkg/enums"
	pkgerrors "github.com/gigboard/gigboard-backend/pkg/errors"
	"github.com/gigboard/gigboard-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	orders    map[uuid.UUID]*models.Order
	revisions []models.OrderRevision

	updateErr error
	// forceStale makes every conditional update report zero affected rows.
	forceStale bool
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *stubOrdersRepo) List(ctx context.Context, userID uuid.UUID, perspective Perspective, status *enums.OrderStatus, params pagination.Params) (*OrderList, error) {
	list := &OrderList{}
	for _, order := range s.orders {
		if perspective == PerspectiveBuyer && order.BuyerID != userID {
			continue
		}
		if perspective == PerspectiveSeller && order.SellerID != userID {
			continue
		}
		list.Orders = append(list.Orders, OrderSummary{ID: order.ID, Status: order.Status})
	}
	return list, nil
}

func (s *stubOrdersRepo) UpdateStatusFrom(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, extra map[string]any) (int64, error) {
	if s.updateErr != nil {
		return 0, s.updateErr
	}
	if s.forceStale {
		return 0, nil
	}
	order, ok := s.orders[orderID]
	if !ok || order.Status != from {
		return 0, nil
	}
	order.Status = to
	if msg, ok := extra["delivery_message"].(string); ok {
		order.DeliveryMessage = &msg
	}
	if files, ok := extra["delivery_files"].([]byte); ok {
		order.DeliveryFiles = files
	}
	return 1, nil
}

func (s *stubOrdersRepo) AppendRevision(ctx context.Context, revision *models.OrderRevision) error {
	if revision.ID == uuid.Nil {
		revision.ID = uuid.New()
	}
	s.revisions = append(s.revisions, *revision)
	return nil
}

func (s *stubOrdersRepo) SetPaymentIndicator(ctx context.Context, orderID uuid.UUID, indicator enums.PaymentIndicator) error {
	order, ok := s.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.PaymentStatus = indicator
	return nil
}

type stubGigsRepo struct {
	gigs map[uuid.UUID]*models.Gig
}

func (s *stubGigsRepo) WithTx(tx *gorm.DB) gigs.Repository { return s }

func (s *stubGigsRepo) FindByID(ctx context.Context, gigID uuid.UUID) (*models.Gig, error) {
	gig, ok := s.gigs[gigID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return gig, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type recordingEmitter struct {
	events []notifications.Event
}

func (r *recordingEmitter) Emit(ctx context.Context, event notifications.Event) {
	r.events = append(r.events, event)
}

func newTestService(t *testing.T, repo *stubOrdersRepo, gigs map[uuid.UUID]*models.Gig) (Service, *recordingEmitter) {
	t.Helper()
	emitter := &recordingEmitter{}
	svc, err := NewService(repo, &stubGigsRepo{gigs: gigs}, stubTxRunner{}, emitter)
	require.NoError(t, err)
	return svc, emitter
}

func seedOrder(repo *stubOrdersRepo, buyer, seller uuid.UUID, status enums.OrderStatus) *models.Order {
	order := &models.Order{
		ID:              uuid.New(),
		GigID:           uuid.New(),
		BuyerID:         buyer,
		SellerID:        seller,
		Status:          status,
		TotalPriceCents: 5000,
		Currency:        enums.CurrencyUSD,
		PaymentStatus:   enums.PaymentIndicatorUnpaid,
	}
	repo.orders[order.ID] = order
	return order
}

func TestCreateOrderSnapshotsGig(t *testing.T) {
	repo := newStubOrdersRepo()
	seller := uuid.New()
	buyer := uuid.New()
	gig := &models.Gig{ID: uuid.New(), SellerID: seller, PriceCents: 12500, Currency: enums.CurrencyUSD, IsActive: true}

	svc, emitter := newTestService(t, repo, map[uuid.UUID]*models.Gig{gig.ID: gig})

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{GigID: gig.ID, BuyerID: buyer})
	require.NoError(t, err)
	assert.Equal(t, seller, order.SellerID)
	assert.Equal(t, int64(12500), order.TotalPriceCents)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.PaymentIndicatorUnpaid, order.PaymentStatus)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, notifications.EventOrderCreated, emitter.events[0].Type)
	assert.Equal(t, seller, emitter.events[0].RecipientID)
}

func TestCreateOrderInactiveGig(t *testing.T) {
	repo := newStubOrdersRepo()
	gig := &models.Gig{ID: uuid.New(), SellerID: uuid.New(), PriceCents: 1000, IsActive: false}
	svc, _ := newTestService(t, repo, map[uuid.UUID]*models.Gig{gig.ID: gig})

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{GigID: gig.ID, BuyerID: uuid.New()})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateOrderGigNotFound(t *testing.T) {
	repo := newStubOrdersRepo()
	svc, _ := newTestService(t, repo, map[uuid.UUID]*models.Gig{})

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{GigID: uuid.New(), BuyerID: uuid.New()})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUpdateStatusBuyerCannotStartProgress(t *testing.T) {
	repo := newStubOrdersRepo()
	buyer := uuid.New()
	seller := uuid.New()
	order := seedOrder(repo, buyer, seller, enums.OrderStatusPending)
	svc, _ := newTestService(t, repo, nil)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusInProgress,
		ActorID: buyer,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
	assert.Equal(t, enums.OrderStatusPending, repo.orders[order.ID].Status)
}

func TestUpdateStatusSellerStartsProgress(t *testing.T) {
	repo := newStubOrdersRepo()
	buyer := uuid.New()
	seller := uuid.New()
	order := seedOrder(repo, buyer, seller, enums.OrderStatusPending)
	svc, emitter := newTestService(t, repo, nil)

	updated, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusInProgress,
		ActorID: seller,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusInProgress, updated.Status)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, notifications.EventOrderStatusChanged, emitter.events[0].Type)
	assert.Equal(t, buyer, emitter.events[0].RecipientID)
}

func TestUpdateStatusNonPartyForbidden(t *testing.T) {
	repo := newStubOrdersRepo()
	order := seedOrder(repo, uuid.New(), uuid.New(), enums.OrderStatusPending)
	svc, _ := newTestService(t, repo, nil)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusCancelled,
		ActorID: uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestUpdateStatusDeliveredNeedsDeliverOperation(t *testing.T) {
	repo := newStubOrdersRepo()
	order := seedOrder(repo, uuid.New(), uuid.New(), enums.OrderStatusPending)
	svc, _ := newTestService(t, repo, nil)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusDelivered,
		ActorID: order.SellerID,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUpdateStatusConcurrentChangeConflicts(t *testing.T) {
	repo := newStubOrdersRepo()
	repo.forceStale = true
	order := seedOrder(repo, uuid.New(), uuid.New(), enums.OrderStatusPending)
	svc, _ := newTestService(t, repo, nil)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusInProgress,
		ActorID: order.SellerID,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestDeliverSellerOnly(t *testing.T) {
	repo := newStubOrdersRepo()
	order := seedOrder(repo, uuid.New(), uuid.New(), enums.OrderStatusInProgress)
	svc, _ := newTestService(t, repo, nil)

	_, err := svc.Deliver(context.Background(), DeliverInput{
		OrderID: order.ID,
		ActorID: order.BuyerID,
		Message: "done",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestDeliverWrongState(t *testing.T) {
	repo := newStubOrdersRepo()
	order := seedOrder(repo, uuid.New(), uuid.New(), enums.OrderStatusCompleted)
	svc, _ := newTestService(t, repo, nil)

	_, err := svc.Deliver(context.Background(), DeliverInput{
		OrderID: order.ID,
		ActorID: order.SellerID,
		Message: "done",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestRequestRevisionBuyerOnDelivered(t *testing.T) {
	repo := newStubOrdersRepo()
	order := seedOrder(repo, uuid.New(), uuid.New(), enums.OrderStatusDelivered)
	svc, emitter := newTestService(t, repo, nil)

	updated, err := svc.RequestRevision(context.Background(), RevisionInput{
		OrderID: order.ID,
		ActorID: order.BuyerID,
		Message: "please adjust the colors",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusRevisionRequested, updated.Status)
	require.Len(t, repo.revisions, 1)
	assert.Equal(t, order.BuyerID, repo.revisions[0].CreatedBy)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, notifications.EventOrderRevisionRequested, emitter.events[0].Type)
	assert.Equal(t, order.SellerID, emitter.events[0].RecipientID)
}

func TestRequestRevisionRequiresDeliveredState(t *testing.T) {
	repo := newStubOrdersRepo()
	order := seedOrder(repo, uuid.New(), uuid.New(), enums.OrderStatusInProgress)
	svc, _ := newTestService(t, repo, nil)

	_, err := svc.RequestRevision(context.Background(), RevisionInput{
		OrderID: order.ID,
		ActorID: order.BuyerID,
		Message: "too early",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

// Full fulfillment round trip: deliver, revision, re-deliver, complete. The
// revision trail must survive the second delivery.
func TestFulfillmentRoundTrip(t *testing.T) {
	repo := newStubOrdersRepo()
	buyer := uuid.New()
	seller := uuid.New()
	order := seedOrder(repo, buyer, seller, enums.OrderStatusPending)
	svc, _ := newTestService(t, repo, nil)

	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Target: enums.OrderStatusInProgress, ActorID: seller})
	require.NoError(t, err)

	delivered, err := svc.Deliver(ctx, DeliverInput{OrderID: order.ID, ActorID: seller, Message: "first cut", Files: []string{"v1.zip"}})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, delivered.Status)

	_, err = svc.RequestRevision(ctx, RevisionInput{OrderID: order.ID, ActorID: buyer, Message: "wrong aspect ratio"})
	require.NoError(t, err)

	redelivered, err := svc.Deliver(ctx, DeliverInput{OrderID: order.ID, ActorID: seller, Message: "second cut", Files: []string{"v2.zip"}})
	require.NoError(t, err)
	require.NotNil(t, redelivered.DeliveryMessage)
	assert.Equal(t, "second cut", *redelivered.DeliveryMessage)

	completed, err := svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Target: enums.OrderStatusCompleted, ActorID: buyer})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCompleted, completed.Status)
	require.Len(t, repo.revisions, 1)

	// completed is terminal
	_, err = svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: order.ID, Target: enums.OrderStatusCancelled, ActorID: buyer})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestGetOrderPartyOnly(t *testing.T) {
	repo := newStubOrdersRepo()
	order := seedOrder(repo, uuid.New(), uuid.New(), enums.OrderStatusPending)
	svc, _ := newTestService(t, repo, nil)

	_, err := svc.GetOrder(context.Background(), order.ID, uuid.New(), enums.UserRoleUser)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	got, err := svc.GetOrder(context.Background(), order.ID, order.BuyerID, enums.UserRoleUser)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	// admins can inspect any order
	_, err = svc.GetOrder(context.Background(), order.ID, uuid.New(), enums.UserRoleAdmin)
	require.NoError(t, err)
}
