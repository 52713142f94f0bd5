package stripecustomers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gigboard/gigboard-backend/internal/users"
	"github.com/gigboard/gigboard-backend/pkg/db/models"
	pkgerrors "github.com/gigboard/gigboard-backend/pkg/errors"
)

type stubUsersRepo struct {
	users map[uuid.UUID]*models.User
	// lostWrite simulates another writer winning the conditional update;
	// winnerID is what any reload after the lost write observes.
	lostWrite bool
	winnerID  *string
	findCount int
}

func (s *stubUsersRepo) WithTx(tx *gorm.DB) users.Repository { return s }

func (s *stubUsersRepo) FindByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	s.findCount++
	copied := *user
	if s.lostWrite && s.findCount > 1 {
		copied.StripeCustomerID = s.winnerID
	}
	return &copied, nil
}

func (s *stubUsersRepo) SetStripeCustomerID(ctx context.Context, userID uuid.UUID, customerID string) (int64, error) {
	if s.lostWrite {
		return 0, nil
	}
	user, ok := s.users[userID]
	if !ok || user.StripeCustomerID != nil {
		return 0, nil
	}
	user.StripeCustomerID = &customerID
	return 1, nil
}

type stubGateway struct {
	created  []string
	customer string
	err      error
}

func (s *stubGateway) CreateCustomer(ctx context.Context, email string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.created = append(s.created, email)
	return s.customer, nil
}

func TestEnsureCustomerCreatesOnce(t *testing.T) {
	userID := uuid.New()
	repo := &stubUsersRepo{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Email: "buyer@example.com"},
	}}
	gateway := &stubGateway{customer: "cus_123"}
	svc, err := NewService(repo, gateway)
	require.NoError(t, err)

	id, err := svc.EnsureCustomer(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "cus_123", id)
	assert.Equal(t, []string{"buyer@example.com"}, gateway.created)

	// second call short-circuits on the stored id
	id, err = svc.EnsureCustomer(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "cus_123", id)
	assert.Len(t, gateway.created, 1)
}

func TestEnsureCustomerLostRaceReusesStoredID(t *testing.T) {
	userID := uuid.New()
	winner := "cus_winner"
	repo := &stubUsersRepo{
		users:     map[uuid.UUID]*models.User{userID: {ID: userID, Email: "buyer@example.com"}},
		lostWrite: true,
		winnerID:  &winner,
	}
	gateway := &stubGateway{customer: "cus_loser"}
	svc, err := NewService(repo, gateway)
	require.NoError(t, err)

	id, err := svc.EnsureCustomer(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, winner, id)
	// the gateway was still called; its customer is simply orphaned
	assert.Len(t, gateway.created, 1)
}

func TestEnsureCustomerUserNotFound(t *testing.T) {
	repo := &stubUsersRepo{users: map[uuid.UUID]*models.User{}}
	svc, err := NewService(repo, &stubGateway{customer: "cus_1"})
	require.NoError(t, err)

	_, err = svc.EnsureCustomer(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestEnsureCustomerGatewayFailure(t *testing.T) {
	userID := uuid.New()
	repo := &stubUsersRepo{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Email: "buyer@example.com"},
	}}
	svc, err := NewService(repo, &stubGateway{err: assert.AnError})
	require.NoError(t, err)

	_, err = svc.EnsureCustomer(context.Background(), userID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}
