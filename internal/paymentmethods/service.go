package paymentmethods

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/gigboard/gigboard-backend/pkg/db"
	"github.com/gigboard/gigboard-backend/pkg/db/models"
	pkgerrors "github.com/gigboard/gigboard-backend/pkg/errors"
	"github.com/gigboard/gigboard-backend/pkg/stripe"
)

// Service orchestrates card-on-file persistence.
type Service interface {
	AddMethod(ctx context.Context, userID uuid.UUID, input AddMethodInput) (*models.PaymentMethod, error)
	ListMethods(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error)
}

// AddMethodInput captures the payload required to vault a card.
type AddMethodInput struct {
	PaymentMethodID string
}

type cardGateway interface {
	AttachPaymentMethod(ctx context.Context, pmID, customerID string) error
	RetrievePaymentMethod(ctx context.Context, pmID string) (*stripe.CardDetails, error)
}

type customerEnsurer interface {
	EnsureCustomer(ctx context.Context, userID uuid.UUID) (string, error)
}

// ServiceParams groups dependencies for the payment method service.
type ServiceParams struct {
	Repo      Repository
	Customers customerEnsurer
	Gateway   cardGateway
}

type service struct {
	repo      Repository
	customers customerEnsurer
	gateway   cardGateway
}

// NewService constructs a payment method service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment methods repo required")
	}
	if params.Customers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "customer service required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe gateway required")
	}
	return &service{
		repo:      params.Repo,
		customers: params.Customers,
		gateway:   params.Gateway,
	}, nil
}

// AddMethod attaches the tokenized card at the gateway first; nothing is
// persisted unless the attach succeeded. The unique constraint on the Stripe
// payment method id collapses retried saves into one row.
func (s *service) AddMethod(ctx context.Context, userID uuid.UUID, input AddMethodInput) (*models.PaymentMethod, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	pmID := strings.TrimSpace(input.PaymentMethodID)
	if pmID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment_method_id is required")
	}

	customerID, err := s.customers.EnsureCustomer(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.AttachPaymentMethod(ctx, pmID, customerID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach payment method")
	}

	card, err := s.gateway.RetrievePaymentMethod(ctx, pmID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retrieve payment method")
	}

	existing, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count payment methods")
	}

	method := &models.PaymentMethod{
		UserID:                userID,
		StripePaymentMethodID: pmID,
		// Only the very first stored card becomes the default; later
		// additions never demote it.
		IsDefault: existing == 0,
	}
	if card != nil {
		if card.Brand != "" {
			brand := card.Brand
			method.CardBrand = &brand
		}
		if card.Last4 != "" {
			last4 := card.Last4
			method.CardLast4 = &last4
		}
		if card.ExpMonth > 0 {
			month := int(card.ExpMonth)
			method.CardExpMonth = &month
		}
		if card.ExpYear > 0 {
			year := int(card.ExpYear)
			method.CardExpYear = &year
		}
	}

	if err := s.repo.Create(ctx, method); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment method already saved")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment method")
	}
	return method, nil
}

func (s *service) ListMethods(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	methods, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment methods")
	}
	return methods, nil
}
