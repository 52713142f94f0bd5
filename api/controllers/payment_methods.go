package controllers

import (
	"net/http"

	"github.com/gigboard/gigboard-backend/api/responses"
	"github.com/gigboard/gigboard-backend/api/validators"
	"github.com/gigboard/gigboard-backend/internal/paymentmethods"
	"github.com/gigboard/gigboard-backend/pkg/logger"
)

type addPaymentMethodRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required,min=1,max=255"`
}

func AddPaymentMethod(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req addPaymentMethodRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := svc.AddMethod(r.Context(), userID, paymentmethods.AddMethodInput{
			PaymentMethodID: req.PaymentMethodID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, method)
	}
}

func ListPaymentMethods(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		methods, err := svc.ListMethods(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, methods)
	}
}
