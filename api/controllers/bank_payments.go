package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gigboard/gigboard-backend/api/responses"
	"github.com/gigboard/gigboard-backend/api/validators"
	"github.com/gigboard/gigboard-backend/internal/bankpayments"
	pkgerrors "github.com/gigboard/gigboard-backend/pkg/errors"
	"github.com/gigboard/gigboard-backend/pkg/logger"
)

type submitBankPaymentRequest struct {
	OrderID         string `json:"order_id" validate:"required,uuid"`
	AmountCents     int64  `json:"amount_cents" validate:"required,min=1"`
	TxnRef          string `json:"txn_ref" validate:"required,min=1,max=255"`
	ReceiptImageURL string `json:"receipt_image_url" validate:"required,url,max=2048"`
}

func SubmitBankPayment(svc bankpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req submitBankPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		request, err := svc.Submit(r.Context(), userID, bankpayments.SubmitInput{
			OrderID:         orderID,
			AmountCents:     req.AmountCents,
			TxnRef:          req.TxnRef,
			ReceiptImageURL: req.ReceiptImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

func ListPendingPaymentRequests(svc bankpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListPending(r.Context(), bankpayments.ListPendingInput{Params: params})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func VerifyPaymentRequest(svc bankpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		requestID, err := pathUUID(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Verify(r.Context(), adminID, requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

func RejectPaymentRequest(svc bankpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		requestID, err := pathUUID(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Reject(r.Context(), adminID, requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}
