package payments

import (
	"github.com/google/uuid"

	"github.com/gigboard/gigboard-backend/pkg/db/models"
	"github.com/gigboard/gigboard-backend/pkg/pagination"
)

// CreateIntentInput describes a new card authorization request.
type CreateIntentInput struct {
	UserID      uuid.UUID
	AmountCents int64
	Currency    string
	InvoiceID   *uuid.UUID
}

// IntentResult is the client-facing view of a freshly created authorization.
type IntentResult struct {
	IntentID     string
	ClientSecret string
	Status       string
	AmountCents  int64
	Currency     string
}

// ConfirmInput identifies the authorization to settle.
type ConfirmInput struct {
	PaymentIntentID string
}

// ConfirmResult reports the outcome of a settlement attempt. When the
// processor has not succeeded yet, Completed is false and no rows were
// written; Status carries the processor state so callers can poll.
type ConfirmResult struct {
	Completed   bool
	Status      string
	Transaction *models.Transaction
	Invoice     *models.Invoice
}

// ListInvoicesInput pages through a user's invoices, newest first.
type ListInvoicesInput struct {
	UserID uuid.UUID
	Params pagination.Params
}

// InvoiceList is one page of invoices plus the cursor for the next page.
type InvoiceList struct {
	Invoices   []models.Invoice
	NextCursor string
}
