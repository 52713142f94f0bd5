package orders

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigboard/gigboard-backend/pkg/db/models"
	"github.com/gigboard/gigboard-backend/pkg/enums"
	pkgerrors "github.com/gigboard/gigboard-backend/pkg/errors"
)

func TestAllowTransitionEdges(t *testing.T) {
	buyer := uuid.New()
	seller := uuid.New()
	stranger := uuid.New()

	order := func(status enums.OrderStatus) *models.Order {
		return &models.Order{
			ID:       uuid.New(),
			BuyerID:  buyer,
			SellerID: seller,
			Status:   status,
		}
	}

	cases := []struct {
		name     string
		from     enums.OrderStatus
		to       enums.OrderStatus
		actor    uuid.UUID
		wantCode pkgerrors.Code
		allowed  bool
	}{
		{name: "seller starts progress", from: enums.OrderStatusPending, to: enums.OrderStatusInProgress, actor: seller, allowed: true},
		{name: "buyer cannot start progress", from: enums.OrderStatusPending, to: enums.OrderStatusInProgress, actor: buyer, wantCode: pkgerrors.CodeForbidden},
		{name: "buyer cannot start progress from delivered", from: enums.OrderStatusDelivered, to: enums.OrderStatusInProgress, actor: buyer, wantCode: pkgerrors.CodeForbidden},
		{name: "buyer cannot start progress from completed", from: enums.OrderStatusCompleted, to: enums.OrderStatusInProgress, actor: buyer, wantCode: pkgerrors.CodeForbidden},
		{name: "buyer completes delivered", from: enums.OrderStatusDelivered, to: enums.OrderStatusCompleted, actor: buyer, allowed: true},
		{name: "seller cannot complete", from: enums.OrderStatusDelivered, to: enums.OrderStatusCompleted, actor: seller, wantCode: pkgerrors.CodeForbidden},
		{name: "complete requires delivered", from: enums.OrderStatusPending, to: enums.OrderStatusCompleted, actor: buyer, wantCode: pkgerrors.CodeStateConflict},
		{name: "buyer cancels pending", from: enums.OrderStatusPending, to: enums.OrderStatusCancelled, actor: buyer, allowed: true},
		{name: "seller cancels in progress", from: enums.OrderStatusInProgress, to: enums.OrderStatusCancelled, actor: seller, allowed: true},
		{name: "buyer cancels delivered", from: enums.OrderStatusDelivered, to: enums.OrderStatusCancelled, actor: buyer, allowed: true},
		{name: "seller cancels revision requested", from: enums.OrderStatusRevisionRequested, to: enums.OrderStatusCancelled, actor: seller, allowed: true},
		{name: "stranger cannot cancel", from: enums.OrderStatusPending, to: enums.OrderStatusCancelled, actor: stranger, wantCode: pkgerrors.CodeForbidden},
		{name: "completed is closed", from: enums.OrderStatusCompleted, to: enums.OrderStatusCancelled, actor: buyer, wantCode: pkgerrors.CodeStateConflict},
		{name: "cancelled is closed", from: enums.OrderStatusCancelled, to: enums.OrderStatusInProgress, actor: seller, wantCode: pkgerrors.CodeStateConflict},
		{name: "no-op transition rejected", from: enums.OrderStatusInProgress, to: enums.OrderStatusInProgress, actor: seller, wantCode: pkgerrors.CodeStateConflict},
		{name: "seller redelivers after revision", from: enums.OrderStatusRevisionRequested, to: enums.OrderStatusDelivered, actor: seller, allowed: true},
		{name: "buyer requests revision", from: enums.OrderStatusDelivered, to: enums.OrderStatusRevisionRequested, actor: buyer, allowed: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := allowTransition(order(tc.from), tc.to, tc.actor)
			if tc.allowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			domainErr := pkgerrors.As(err)
			require.NotNil(t, domainErr)
			assert.Equal(t, tc.wantCode, domainErr.Code())
		})
	}
}

func TestIsDeliverable(t *testing.T) {
	assert.True(t, isDeliverable(enums.OrderStatusPending))
	assert.True(t, isDeliverable(enums.OrderStatusInProgress))
	assert.True(t, isDeliverable(enums.OrderStatusRevisionRequested))
	assert.False(t, isDeliverable(enums.OrderStatusDelivered))
	assert.False(t, isDeliverable(enums.OrderStatusCompleted))
	assert.False(t, isDeliverable(enums.OrderStatusCancelled))
}
