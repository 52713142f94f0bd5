package stripecustomers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigboard/gigboard-backend/internal/users"
	pkgerrors "github.com/gigboard/gigboard-backend/pkg/errors"
)

// Gateway is the slice of the processor client needed to vault customers.
type Gateway interface {
	CreateCustomer(ctx context.Context, email string) (string, error)
}

// Service resolves the Stripe customer id for a user, creating one lazily on
// the first billing operation.
type Service interface {
	EnsureCustomer(ctx context.Context, userID uuid.UUID) (string, error)
}

type service struct {
	users   users.Repository
	gateway Gateway
}

// NewService builds the customer service with the required dependencies.
func NewService(userRepo users.Repository, gateway Gateway) (Service, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("stripe gateway required")
	}
	return &service{users: userRepo, gateway: gateway}, nil
}

// EnsureCustomer is idempotent per user. Two concurrent first calls can both
// reach the gateway; the conditional write lets exactly one id win and the
// loser re-reads the stored value, leaving its gateway customer orphaned.
func (s *service) EnsureCustomer(ctx context.Context, userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "missing user id")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.StripeCustomerID != nil && strings.TrimSpace(*user.StripeCustomerID) != "" {
		return *user.StripeCustomerID, nil
	}

	customerID, err := s.gateway.CreateCustomer(ctx, user.Email)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe customer")
	}
	if strings.TrimSpace(customerID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "stripe customer id missing")
	}

	rows, err := s.users.SetStripeCustomerID(ctx, userID, customerID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist stripe customer id")
	}
	if rows == 0 {
		reloaded, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload user")
		}
		if reloaded.StripeCustomerID != nil && *reloaded.StripeCustomerID != "" {
			return *reloaded.StripeCustomerID, nil
		}
		return "", pkgerrors.New(pkgerrors.CodeInternal, "stripe customer id write lost without a stored value")
	}
	return customerID, nil
}
