package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sony/gobreaker/v2"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeProcessor implements Processor on Stripe hosted checkout sessions.
// All calls run through a circuit breaker so a dead processor fails fast
// instead of stacking up request timeouts.
type StripeProcessor struct {
	api *client.API
	cb  *gobreaker.CircuitBreaker[*Session]
}

func NewStripeProcessor(apiKey string) *StripeProcessor {
	api := &client.API{}
	api.Init(apiKey, nil)

	cb := gobreaker.NewCircuitBreaker[*Session](gobreaker.Settings{
		Name: "stripe",
	})

	return &StripeProcessor{api: api, cb: cb}
}

func (p *StripeProcessor) CreateSession(ctx context.Context, params SessionParams) (*Session, error) {
	return p.cb.Execute(func() (*Session, error) {
		sp := &stripe.CheckoutSessionParams{
			Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
			SuccessURL: stripe.String(params.SuccessURL),
			CancelURL:  stripe.String(params.CancelURL),
			LineItems:  buildLineItems(params),
		}
		sp.Context = ctx
		sp.AddMetadata("order_id", strconv.FormatInt(params.OrderID, 10))

		s, err := p.api.CheckoutSessions.New(sp)
		if err != nil {
			return nil, fmt.Errorf("create checkout session: %w", err)
		}

		return &Session{ID: s.ID, URL: s.URL, OrderID: params.OrderID}, nil
	})
}

func (p *StripeProcessor) RetrieveSession(ctx context.Context, id string) (*Session, error) {
	return p.cb.Execute(func() (*Session, error) {
		gp := &stripe.CheckoutSessionParams{}
		gp.Context = ctx

		s, err := p.api.CheckoutSessions.Get(id, gp)
		if err != nil {
			return nil, fmt.Errorf("retrieve checkout session: %w", err)
		}

		return fromStripeSession(s)
	})
}

// buildLineItems emits one entry per cart line, a tax line, and a shipping
// line when shipping is charged, so the hosted page shows the same totals
// the order stores.
func buildLineItems(params SessionParams) []*stripe.CheckoutSessionLineItemParams {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(params.Lines)+2)
	for _, l := range params.Lines {
		items = append(items, lineItem(l.Name, l.UnitPrice, l.Quantity))
	}
	items = append(items, lineItem("Sales Tax", params.Tax, 1))
	if params.Shipping > 0 {
		items = append(items, lineItem("Shipping", params.Shipping, 1))
	}
	return items
}

func lineItem(name string, unitAmount, quantity int64) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		Quantity: stripe.Int64(quantity),
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(string(stripe.CurrencyUSD)),
			UnitAmount: stripe.Int64(unitAmount),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(name),
			},
		},
	}
}

func fromStripeSession(s *stripe.CheckoutSession) (*Session, error) {
	orderID, err := strconv.ParseInt(s.Metadata["order_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: session %s", ErrNoOrderRef, s.ID)
	}

	sess := &Session{
		ID:          s.ID,
		URL:         s.URL,
		Paid:        s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal: s.AmountTotal,
		OrderID:     orderID,
	}
	if s.PaymentIntent != nil {
		sess.PaymentRef = s.PaymentIntent.ID
	}
	return sess, nil
}
