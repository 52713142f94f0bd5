package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigboard/gigboard-backend/internal/orders"
	pkgauth "github.com/gigboard/gigboard-backend/pkg/auth"
	"github.com/gigboard/gigboard-backend/pkg/config"
	"github.com/gigboard/gigboard-backend/pkg/db/models"
	"github.com/gigboard/gigboard-backend/pkg/enums"
)

type fakeOrdersService struct {
	list *orders.OrderList
}

func (f *fakeOrdersService) CreateOrder(context.Context, orders.CreateOrderInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New()}, nil
}

func (f *fakeOrdersService) ListUserOrders(context.Context, orders.ListOrdersInput) (*orders.OrderList, error) {
	return f.list, nil
}

func (f *fakeOrdersService) GetOrder(context.Context, uuid.UUID, uuid.UUID, enums.UserRole) (*models.Order, error) {
	return &models.Order{ID: uuid.New()}, nil
}

func (f *fakeOrdersService) UpdateStatus(context.Context, orders.UpdateStatusInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New()}, nil
}

func (f *fakeOrdersService) Deliver(context.Context, orders.DeliverInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New()}, nil
}

func (f *fakeOrdersService) RequestRevision(context.Context, orders.RevisionInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New()}, nil
}

func testRouter() http.Handler {
	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "gigboard-test",
			ExpirationMinutes: 30,
		},
	}
	return NewRouter(RouterParams{
		Config: cfg,
		Orders: &fakeOrdersService{list: &orders.OrderList{}},
	})
}

func routerToken(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(config.JWTConfig{
		Secret:            "router-test-secret",
		Issuer:            "gigboard-test",
		ExpirationMinutes: 30,
	}, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	require.NoError(t, err)
	return token
}

func TestRouterHealthLive(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Gigboard-Env"))
	assert.Contains(t, rec.Body.String(), "live")
}

func TestRouterRequiresAuth(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterListOrdersWithToken(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+routerToken(t, enums.UserRoleUser))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data")
}

func TestRouterAdminRoutesRequireAdminRole(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/payment-requests", nil)
	req.Header.Set("Authorization", "Bearer "+routerToken(t, enums.UserRoleUser))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
