package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigboard/gigboard-backend/pkg/db"
	"github.com/gigboard/gigboard-backend/pkg/db/models"
	"github.com/gigboard/gigboard-backend/pkg/enums"
	pkgerrors "github.com/gigboard/gigboard-backend/pkg/errors"
	"github.com/gigboard/gigboard-backend/pkg/stripe"
)

// Metadata keys stamped onto every intent so confirmation can recover the
// payer and the invoice without trusting the request body.
const (
	metadataKeyUserID    = "user_id"
	metadataKeyInvoiceID = "invoice_id"
)

// Service drives the card settlement rail.
type Service interface {
	CreateIntent(ctx context.Context, actorID uuid.UUID, input CreateIntentInput) (*IntentResult, error)
	Confirm(ctx context.Context, actorID uuid.UUID, input ConfirmInput) (*ConfirmResult, error)
	ListInvoices(ctx context.Context, input ListInvoicesInput) (*InvoiceList, error)
}

type intentGateway interface {
	CreateIntent(ctx context.Context, in stripe.IntentCreateParams) (*stripe.Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*stripe.Intent, error)
}

type customerEnsurer interface {
	EnsureCustomer(ctx context.Context, userID uuid.UUID) (string, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the payments service.
type ServiceParams struct {
	Repo      Repository
	Customers customerEnsurer
	Gateway   intentGateway
	Tx        txRunner
}

type service struct {
	repo      Repository
	customers customerEnsurer
	gateway   intentGateway
	tx        txRunner
}

// NewService constructs a payments service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments repo required")
	}
	if params.Customers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "customer service required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe gateway required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tx runner required")
	}
	return &service{
		repo:      params.Repo,
		customers: params.Customers,
		gateway:   params.Gateway,
		tx:        params.Tx,
	}, nil
}

// CreateIntent registers an authorization at the processor. Nothing is
// persisted here; local rows only appear once Confirm observes a succeeded
// intent.
func (s *service) CreateIntent(ctx context.Context, actorID uuid.UUID, input CreateIntentInput) (*IntentResult, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.UserID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot create payments for another user")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount_cents must be positive")
	}
	currency, err := enums.ParseCurrency(input.Currency)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}

	metadata := map[string]string{
		metadataKeyUserID: actorID.String(),
	}
	if input.InvoiceID != nil {
		invoice, err := s.repo.FindInvoiceByID(ctx, *input.InvoiceID)
		if err != nil {
			if db.IsNotFound(err) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
		if invoice.UserID != actorID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "invoice belongs to another user")
		}
		if invoice.Status == enums.InvoiceStatusPaid {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invoice is already paid")
		}
		if invoice.AmountCents != input.AmountCents {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount does not match invoice")
		}
		metadata[metadataKeyInvoiceID] = invoice.ID.String()
	}

	customerID, err := s.customers.EnsureCustomer(ctx, actorID)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, stripe.IntentCreateParams{
		CustomerID:  customerID,
		AmountCents: input.AmountCents,
		Currency:    currency.String(),
		Metadata:    metadata,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}

	return &IntentResult{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       intent.Status,
		AmountCents:  intent.AmountCents,
		Currency:     intent.Currency,
	}, nil
}

// Confirm settles a succeeded intent exactly once. The transaction row keyed
// by the Stripe intent id is the idempotency anchor: a second confirm of the
// same intent hits the unique constraint and reports a conflict instead of
// double-recording funds.
func (s *service) Confirm(ctx context.Context, actorID uuid.UUID, input ConfirmInput) (*ConfirmResult, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	intentID := strings.TrimSpace(input.PaymentIntentID)
	if intentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment_intent_id is required")
	}

	intent, err := s.gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retrieve payment intent")
	}

	payerID, err := payerFromIntent(intent)
	if err != nil {
		return nil, err
	}
	if payerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payment intent belongs to another user")
	}

	if intent.Status != stripe.IntentStatusSucceeded {
		return &ConfirmResult{Completed: false, Status: intent.Status}, nil
	}

	currency := enums.Currency(intent.Currency)
	if !currency.IsValid() {
		currency = enums.CurrencyUSD
	}

	txn := &models.Transaction{
		ID:                    uuid.New(),
		UserID:                payerID,
		StripePaymentIntentID: intent.ID,
		AmountCents:           intent.AmountCents,
		Currency:              currency,
		Status:                enums.TransactionStatusSucceeded,
	}

	var invoice *models.Invoice
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.CreateTransaction(ctx, txn); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "payment already recorded for this intent")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist transaction")
		}

		resolved, err := s.resolveInvoice(ctx, repo, intent, txn)
		if err != nil {
			return err
		}
		invoice = resolved
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm payment")
	}

	return &ConfirmResult{
		Completed:   true,
		Status:      intent.Status,
		Transaction: txn,
		Invoice:     invoice,
	}, nil
}

// resolveInvoice links the settlement to billing paper. An intent carrying an
// invoice id marks that invoice paid; one without gets an already-paid
// invoice synthesized so every settlement has paper behind it.
func (s *service) resolveInvoice(ctx context.Context, repo Repository, intent *stripe.Intent, txn *models.Transaction) (*models.Invoice, error) {
	raw, ok := intent.Metadata[metadataKeyInvoiceID]
	if !ok || strings.TrimSpace(raw) == "" {
		return s.synthesizeInvoice(ctx, repo, intent, txn)
	}

	invoiceID, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "intent carries a malformed invoice reference")
	}

	rows, err := repo.MarkInvoicePaid(ctx, invoiceID, txn.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark invoice paid")
	}
	if rows == 0 {
		if _, err := repo.FindInvoiceByID(ctx, invoiceID); err != nil {
			if db.IsNotFound(err) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "invoice is already paid")
	}

	invoice, err := repo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload invoice")
	}
	return invoice, nil
}

func (s *service) synthesizeInvoice(ctx context.Context, repo Repository, intent *stripe.Intent, txn *models.Transaction) (*models.Invoice, error) {
	metadata, err := json.Marshal(map[string]any{
		"stripe_payment_intent_id": intent.ID,
		"synthesized":              true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode invoice metadata")
	}

	invoice := &models.Invoice{
		ID:            uuid.New(),
		UserID:        txn.UserID,
		InvoiceNumber: generateInvoiceNumber(),
		AmountCents:   txn.AmountCents,
		Currency:      txn.Currency,
		Status:        enums.InvoiceStatusPaid,
		TransactionID: &txn.ID,
		Metadata:      metadata,
	}
	if err := repo.CreateInvoice(ctx, invoice); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist invoice")
	}
	return invoice, nil
}

func (s *service) ListInvoices(ctx context.Context, input ListInvoicesInput) (*InvoiceList, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListInvoicesByUser(ctx, input.UserID, input.Params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}
	return list, nil
}

func payerFromIntent(intent *stripe.Intent) (uuid.UUID, error) {
	raw, ok := intent.Metadata[metadataKeyUserID]
	if !ok || strings.TrimSpace(raw) == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeInternal, "intent carries no user reference")
	}
	payerID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeInternal, "intent carries a malformed user reference")
	}
	return payerID, nil
}

func generateInvoiceNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:10]
	return fmt.Sprintf("INV-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
