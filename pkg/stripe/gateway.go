package stripe

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/customer"
	"github.com/stripe/stripe-go/v84/paymentintent"
	"github.com/stripe/stripe-go/v84/paymentmethod"
)

// IntentStatusSucceeded is the only processor status that settles funds.
const IntentStatusSucceeded = string(stripe.PaymentIntentStatusSucceeded)

// CardDetails carries the vault-safe card metadata Stripe exposes.
type CardDetails struct {
	Brand    string
	Last4    string
	ExpMonth int64
	ExpYear  int64
}

// IntentCreateParams describes a new payment authorization request.
type IntentCreateParams struct {
	CustomerID  string
	AmountCents int64
	Currency    string
	Metadata    map[string]string
}

// Intent is the processor-side view of an authorization.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountCents  int64
	Currency     string
	Metadata     map[string]string
}

// CreateCustomer registers a billing customer and returns its processor id.
func (c *Client) CreateCustomer(ctx context.Context, email string) (string, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	params := &stripe.CustomerParams{
		Email: stripe.String(strings.TrimSpace(email)),
	}
	params.Context = callCtx

	cust, err := customer.New(params)
	if err != nil {
		return "", err
	}
	return cust.ID, nil
}

// AttachPaymentMethod binds a tokenized payment method to a customer.
func (c *Client) AttachPaymentMethod(ctx context.Context, pmID, customerID string) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	params := &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	}
	params.Context = callCtx

	_, err := paymentmethod.Attach(pmID, params)
	return err
}

// RetrievePaymentMethod fetches card metadata for a tokenized method.
func (c *Client) RetrievePaymentMethod(ctx context.Context, pmID string) (*CardDetails, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	params := &stripe.PaymentMethodParams{}
	params.Context = callCtx

	pm, err := paymentmethod.Get(pmID, params)
	if err != nil {
		return nil, err
	}

	details := &CardDetails{}
	if pm.Card != nil {
		details.Brand = string(pm.Card.Brand)
		details.Last4 = pm.Card.Last4
		details.ExpMonth = pm.Card.ExpMonth
		details.ExpYear = pm.Card.ExpYear
	}
	return details, nil
}

// CreateIntent requests a new authorization for the given amount.
func (c *Client) CreateIntent(ctx context.Context, in IntentCreateParams) (*Intent, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(in.AmountCents),
		Currency: stripe.String(in.Currency),
	}
	if in.CustomerID != "" {
		params.Customer = stripe.String(in.CustomerID)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = callCtx

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return fromStripeIntent(intent), nil
}

// RetrieveIntent loads the current processor-side state of an authorization.
func (c *Client) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = callCtx

	intent, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, err
	}
	return fromStripeIntent(intent), nil
}

func fromStripeIntent(intent *stripe.PaymentIntent) *Intent {
	if intent == nil {
		return nil
	}
	return &Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
		AmountCents:  intent.Amount,
		Currency:     string(intent.Currency),
		Metadata:     intent.Metadata,
	}
}
