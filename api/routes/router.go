package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gigboard/gigboard-backend/api/controllers"
	"github.com/gigboard/gigboard-backend/api/middleware"
	"github.com/gigboard/gigboard-backend/internal/bankpayments"
	"github.com/gigboard/gigboard-backend/internal/orders"
	"github.com/gigboard/gigboard-backend/internal/paymentmethods"
	"github.com/gigboard/gigboard-backend/internal/payments"
	"github.com/gigboard/gigboard-backend/pkg/config"
	"github.com/gigboard/gigboard-backend/pkg/enums"
	"github.com/gigboard/gigboard-backend/pkg/logger"
	"github.com/gigboard/gigboard-backend/pkg/metrics"
	"github.com/gigboard/gigboard-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config       *config.Config
	Logger       *logger.Logger
	Metrics      *metrics.HTTPMetrics
	MetricsReg   *prometheus.Registry
	Redis        *redis.Client
	Readiness    map[string]controllers.Pinger
	Orders       orders.Service
	Methods      paymentmethods.Service
	Payments     payments.Service
	BankPayments bankpayments.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.Metrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Readiness))
	})

	if p.MetricsReg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.MetricsReg, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore(p.Redis), logg))

		r.Post("/orders", controllers.CreateOrder(p.Orders, logg))
		r.Get("/orders", controllers.ListOrders(p.Orders, logg))
		r.Get("/orders/{orderId}", controllers.OrderDetail(p.Orders, logg))
		r.Patch("/orders/{orderId}/status", controllers.UpdateOrderStatus(p.Orders, logg))
		r.Post("/orders/{orderId}/deliver", controllers.DeliverOrder(p.Orders, logg))
		r.Post("/orders/{orderId}/revision", controllers.RequestOrderRevision(p.Orders, logg))

		r.Post("/payment-methods", controllers.AddPaymentMethod(p.Methods, logg))
		r.Get("/payment-methods", controllers.ListPaymentMethods(p.Methods, logg))

		r.Post("/payments/intent", controllers.CreatePaymentIntent(p.Payments, logg))
		r.Post("/payments/confirm", controllers.ConfirmPayment(p.Payments, logg))
		r.Get("/invoices", controllers.ListInvoices(p.Payments, logg))

		r.Post("/bank-payments", controllers.SubmitBankPayment(p.BankPayments, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
			r.Get("/payment-requests", controllers.ListPendingPaymentRequests(p.BankPayments, logg))
			r.Post("/payment-requests/{requestId}/verify", controllers.VerifyPaymentRequest(p.BankPayments, logg))
			r.Post("/payment-requests/{requestId}/reject", controllers.RejectPaymentRequest(p.BankPayments, logg))
		})
	})

	return r
}

func idempotencyStore(client *redis.Client) redis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}
