// Package payment integrates the external payment gateway: checkout session
// creation on the way out, signature-verified confirmation on the way back.
package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// SessionInput carries everything the gateway needs to price and later
// attribute a payment. The metadata round-trips through the confirmation
// callback untouched.
type SessionInput struct {
	EventID    int64
	EventTitle string
	Price      int64
	UserID     int64
	UserEmail  string
}

type Session struct {
	ID  string
	URL string
}

// Gateway creates hosted checkout sessions. The rest of the workflow never
// talks to the provider directly.
type Gateway interface {
	CreateSession(ctx context.Context, in SessionInput) (*Session, error)
}

// NewGateway returns a Stripe-backed gateway.
func NewGateway(secretKey, currency, successURL, cancelURL string) Gateway {
	stripe.Key = secretKey
	return &stripeGateway{
		currency:   currency,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

type stripeGateway struct {
	currency   string
	successURL string
	cancelURL  string
}

func (g *stripeGateway) CreateSession(ctx context.Context, in SessionInput) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(g.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(in.EventTitle),
					},
					// gateway amounts are in minor units
					UnitAmount: stripe.Int64(in.Price * 100),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(g.successURL),
		CancelURL:  stripe.String(g.cancelURL),
	}
	params.Context = ctx
	params.AddMetadata(metadataEventID, strconv.FormatInt(in.EventID, 10))
	params.AddMetadata(metadataUserID, strconv.FormatInt(in.UserID, 10))
	params.AddMetadata(metadataUserEmail, in.UserEmail)

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("createSession: error creating checkout session: %w", err)
	}

	return &Session{ID: s.ID, URL: s.URL}, nil
}
