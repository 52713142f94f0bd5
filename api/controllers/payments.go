package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gigboard/gigboard-backend/api/responses"
	"github.com/gigboard/gigboard-backend/api/validators"
	"github.com/gigboard/gigboard-backend/internal/payments"
	pkgerrors "github.com/gigboard/gigboard-backend/pkg/errors"
	"github.com/gigboard/gigboard-backend/pkg/logger"
)

type createIntentRequest struct {
	UserID      string `json:"user_id" validate:"required,uuid"`
	AmountCents int64  `json:"amount_cents" validate:"required,min=1"`
	Currency    string `json:"currency" validate:"required,oneof=usd eur gbp USD EUR GBP"`
	InvoiceID   string `json:"invoice_id" validate:"omitempty,uuid"`
}

type confirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required,min=1,max=255"`
}

func CreatePaymentIntent(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createIntentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		input := payments.CreateIntentInput{
			UserID:      userID,
			AmountCents: req.AmountCents,
			Currency:    req.Currency,
		}
		if req.InvoiceID != "" {
			invoiceID, err := uuid.Parse(req.InvoiceID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid invoice id"))
				return
			}
			input.InvoiceID = &invoiceID
		}

		result, err := svc.CreateIntent(r.Context(), callerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func ConfirmPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req confirmPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Confirm(r.Context(), callerID, payments.ConfirmInput{
			PaymentIntentID: req.PaymentIntentID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ListInvoices(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListInvoices(r.Context(), payments.ListInvoicesInput{
			UserID: userID,
			Params: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
