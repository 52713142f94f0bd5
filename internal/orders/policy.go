package orders

import (
	"github.com/google/uuid"

	"github.com/gigboard/gigboard-backend/pkg/db/models"
	"github.com/gigboard/gigboard-backend/pkg/enums"
	pkgerrors "github.com/gigboard/gigboard-backend/pkg/errors"
)

// transition identifies one edge of the order lifecycle graph.
type transition struct {
	from enums.OrderStatus
	to   enums.OrderStatus
}

// transitionPredicate decides whether the actor may walk the edge. A nil
// return means allowed.
type transitionPredicate func(order *models.Order, actorID uuid.UUID) error

func sellerOnly(order *models.Order, actorID uuid.UUID) error {
	if order.SellerID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the seller may perform this transition")
	}
	return nil
}

func buyerOnly(order *models.Order, actorID uuid.UUID) error {
	if order.BuyerID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer may perform this transition")
	}
	return nil
}

func partyOnly(order *models.Order, actorID uuid.UUID) error {
	if order.BuyerID != actorID && order.SellerID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "requester is not a party to this order")
	}
	return nil
}

// transitionPolicy is the full edge table of the lifecycle. Edges absent from
// the table do not exist; in particular nothing leaves completed or cancelled.
var transitionPolicy = map[transition]struct{}{
	{enums.OrderStatusPending, enums.OrderStatusInProgress}: {},

	{enums.OrderStatusPending, enums.OrderStatusDelivered}:           {},
	{enums.OrderStatusInProgress, enums.OrderStatusDelivered}:        {},
	{enums.OrderStatusRevisionRequested, enums.OrderStatusDelivered}: {},

	{enums.OrderStatusDelivered, enums.OrderStatusRevisionRequested}: {},

	{enums.OrderStatusDelivered, enums.OrderStatusCompleted}: {},

	{enums.OrderStatusPending, enums.OrderStatusCancelled}:           {},
	{enums.OrderStatusInProgress, enums.OrderStatusCancelled}:        {},
	{enums.OrderStatusDelivered, enums.OrderStatusCancelled}:         {},
	{enums.OrderStatusRevisionRequested, enums.OrderStatusCancelled}: {},
}

// targetActor maps each target state to the actor class that may ever request
// it. Checked before edge existence so an unauthorized requester gets the same
// answer from every state instead of leaking lifecycle position.
var targetActor = map[enums.OrderStatus]transitionPredicate{
	enums.OrderStatusInProgress:        sellerOnly,
	enums.OrderStatusDelivered:         sellerOnly,
	enums.OrderStatusRevisionRequested: buyerOnly,
	enums.OrderStatusCompleted:         buyerOnly,
	enums.OrderStatusCancelled:         partyOnly,
}

// allowTransition validates the requested edge against the policy table using
// the loaded order snapshot. The caller still re-checks the current status at
// write time via the conditional update.
func allowTransition(order *models.Order, target enums.OrderStatus, actorID uuid.UUID) error {
	if actorCheck, ok := targetActor[target]; ok {
		if err := actorCheck(order, actorID); err != nil {
			return err
		}
	}
	if order.Status == target {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already in the requested state")
	}
	if _, ok := transitionPolicy[transition{from: order.Status, to: target}]; !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "transition not allowed from current state")
	}
	return nil
}

// deliverableFrom lists the states a seller may deliver out of. Re-delivery
// after a revision request walks the same edge as the first delivery.
var deliverableFrom = []enums.OrderStatus{
	enums.OrderStatusPending,
	enums.OrderStatusInProgress,
	enums.OrderStatusRevisionRequested,
}

func isDeliverable(status enums.OrderStatus) bool {
	for _, s := range deliverableFrom {
		if s == status {
			return true
		}
	}
	return false
}
