package paymentmethods

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gigboard/gigboard-backend/pkg/db/models"
	pkgerrors "github.com/gigboard/gigboard-backend/pkg/errors"
	"github.com/gigboard/gigboard-backend/pkg/stripe"
)

type stubMethodsRepo struct {
	methods   []models.PaymentMethod
	createErr error
}

func (s *stubMethodsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubMethodsRepo) Create(ctx context.Context, method *models.PaymentMethod) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, m := range s.methods {
		if m.StripePaymentMethodID == method.StripePaymentMethodID {
			return errors.New(`duplicate key value violates unique constraint "idx_payment_methods_stripe_id"`)
		}
	}
	if method.ID == uuid.Nil {
		method.ID = uuid.New()
	}
	s.methods = append(s.methods, *method)
	return nil
}

func (s *stubMethodsRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error) {
	var out []models.PaymentMethod
	for _, m := range s.methods {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubMethodsRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	list, _ := s.ListByUser(ctx, userID)
	return int64(len(list)), nil
}

type stubEnsurer struct {
	customerID string
	err        error
}

func (s *stubEnsurer) EnsureCustomer(ctx context.Context, userID uuid.UUID) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.customerID, nil
}

type stubCardGateway struct {
	attached  []string
	attachErr error
	card      *stripe.CardDetails
}

func (s *stubCardGateway) AttachPaymentMethod(ctx context.Context, pmID, customerID string) error {
	if s.attachErr != nil {
		return s.attachErr
	}
	s.attached = append(s.attached, pmID)
	return nil
}

func (s *stubCardGateway) RetrievePaymentMethod(ctx context.Context, pmID string) (*stripe.CardDetails, error) {
	return s.card, nil
}

func newMethodsService(t *testing.T, repo *stubMethodsRepo, gateway *stubCardGateway) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Customers: &stubEnsurer{customerID: "cus_123"},
		Gateway:   gateway,
	})
	require.NoError(t, err)
	return svc
}

func TestAddMethodFirstCardBecomesDefault(t *testing.T) {
	repo := &stubMethodsRepo{}
	gateway := &stubCardGateway{card: &stripe.CardDetails{Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2030}}
	svc := newMethodsService(t, repo, gateway)
	userID := uuid.New()

	first, err := svc.AddMethod(context.Background(), userID, AddMethodInput{PaymentMethodID: "pm_first"})
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	require.NotNil(t, first.CardBrand)
	assert.Equal(t, "visa", *first.CardBrand)
	assert.Equal(t, []string{"pm_first"}, gateway.attached)

	second, err := svc.AddMethod(context.Background(), userID, AddMethodInput{PaymentMethodID: "pm_second"})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	// the original default is never demoted
	methods, err := svc.ListMethods(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, methods, 2)
	defaults := 0
	for _, m := range methods {
		if m.IsDefault {
			defaults++
			assert.Equal(t, "pm_first", m.StripePaymentMethodID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestAddMethodDuplicateConflicts(t *testing.T) {
	repo := &stubMethodsRepo{}
	gateway := &stubCardGateway{card: &stripe.CardDetails{Brand: "visa", Last4: "4242"}}
	svc := newMethodsService(t, repo, gateway)
	userID := uuid.New()

	_, err := svc.AddMethod(context.Background(), userID, AddMethodInput{PaymentMethodID: "pm_dup"})
	require.NoError(t, err)

	_, err = svc.AddMethod(context.Background(), userID, AddMethodInput{PaymentMethodID: "pm_dup"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	assert.Len(t, repo.methods, 1)
}

func TestAddMethodAttachFailureSkipsPersist(t *testing.T) {
	repo := &stubMethodsRepo{}
	gateway := &stubCardGateway{attachErr: assert.AnError}
	svc := newMethodsService(t, repo, gateway)

	_, err := svc.AddMethod(context.Background(), uuid.New(), AddMethodInput{PaymentMethodID: "pm_x"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
	assert.Empty(t, repo.methods)
}

func TestAddMethodValidation(t *testing.T) {
	svc := newMethodsService(t, &stubMethodsRepo{}, &stubCardGateway{})

	_, err := svc.AddMethod(context.Background(), uuid.New(), AddMethodInput{PaymentMethodID: "  "})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.AddMethod(context.Background(), uuid.Nil, AddMethodInput{PaymentMethodID: "pm_x"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}
