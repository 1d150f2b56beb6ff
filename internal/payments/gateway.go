package payments

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// CheckoutParams describes one hosted-checkout handoff. Amount is in major
// currency units; conversion to cents happens at the gateway boundary.
type CheckoutParams struct {
	AttendeeID  string
	EventID     string
	Description string
	Amount      decimal.Decimal
	RedirectURL string
}

// CheckoutSession is the gateway's answer: a hosted URL to send the buyer
// to, and the order identifier later used to correlate webhook deliveries.
type CheckoutSession struct {
	OrderID string
	URL     string
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error)
}

// StripeGateway creates Stripe Checkout sessions.
type StripeGateway struct{}

func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	amountCents := p.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(amountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.RedirectURL),
		CancelURL:  stripe.String(p.RedirectURL),
	}
	params.Context = ctx
	params.AddMetadata("attendee_id", p.AttendeeID)
	params.AddMetadata("event_id", p.EventID)

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutSession{OrderID: sess.ID, URL: sess.URL}, nil
}
