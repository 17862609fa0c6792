// Package checkout orchestrates the order flow: cart → totals → persisted
// order → hosted payment session → reconciliation back to a terminal status.
package checkout

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/Addisaurus/Tallow-Website/internal/cart"
	"github.com/Addisaurus/Tallow-Website/internal/order"
	"github.com/Addisaurus/Tallow-Website/internal/payment"
	"github.com/Addisaurus/Tallow-Website/internal/pricing"
)

type Service struct {
	carts     *cart.Service
	orders    order.Repository
	processor payment.Processor

	successURL string
	cancelURL  string

	sfg singleflight.Group // dedupes concurrent session confirmations
}

func NewService(carts *cart.Service, orders order.Repository, processor payment.Processor, successURL, cancelURL string) *Service {
	return &Service{
		carts:      carts,
		orders:     orders,
		processor:  processor,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// PlacedOrder is the result of a successful checkout submission: the
// pending order and the processor page the customer must be sent to.
type PlacedOrder struct {
	Order       *order.Order
	CheckoutURL string
}

// PlaceOrder creates a pending order from the session's cart and opens a
// hosted payment session for it. The cart is cleared only after the payment
// session exists; any failure before that leaves the cart untouched so the
// customer never loses the cart without getting a payment link.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, form Form) (*PlacedOrder, error) {
	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(c.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	totals := pricing.Compute(c.Lines)
	ord := buildOrder(form, c, totals)

	if err := s.orders.CreateOrder(ctx, ord); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	sess, err := s.processor.CreateSession(ctx, s.sessionParams(ord))
	if err != nil {
		// Order stays pending, cart stays intact; the customer can retry.
		return nil, fmt.Errorf("%w: %v", ErrProcessor, err)
	}

	if err := s.orders.AttachPaymentSession(ctx, ord.ID, sess.ID); err != nil {
		return nil, fmt.Errorf("attach payment session: %w", err)
	}
	ord.CheckoutSessionID = sess.ID

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		// The order and payment link already exist; a stale cart is the
		// lesser problem. Log and move on.
		log.Printf("failed to clear cart for session %s: %v", sessionID, err)
	}

	return &PlacedOrder{Order: ord, CheckoutURL: sess.URL}, nil
}

// ConfirmSession resolves a hosted session back to its order and applies
// pending → paid. Both the success redirect and the webhook land here, in
// any order, possibly concurrently; the repository compare-and-set makes
// the transition take effect at most once.
func (s *Service) ConfirmSession(ctx context.Context, checkoutSessionID string) (*order.Order, error) {
	v, err, _ := s.sfg.Do(checkoutSessionID, func() (interface{}, error) {
		return s.confirmSession(ctx, checkoutSessionID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*order.Order), nil
}

func (s *Service) confirmSession(ctx context.Context, checkoutSessionID string) (*order.Order, error) {
	// Always re-fetch the canonical session state. The caller only hands us
	// an opaque session id; payment status and amount come from the
	// processor, never from the client.
	sess, err := s.processor.RetrieveSession(ctx, checkoutSessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessor, err)
	}

	ord, err := s.orders.GetByID(ctx, sess.OrderID)
	if err != nil {
		return nil, fmt.Errorf("load order %d: %w", sess.OrderID, err)
	}

	if !sess.Paid {
		return nil, ErrPaymentIncomplete
	}

	if sess.AmountTotal != ord.Total {
		log.Printf("ALERT: amount mismatch on order %d: processor charged %d, order total %d (session %s)",
			ord.ID, sess.AmountTotal, ord.Total, sess.ID)
		return nil, ErrAmountMismatch
	}

	applied, err := s.orders.MarkPaid(ctx, ord.ID, sess.PaymentRef)
	if err != nil {
		return nil, fmt.Errorf("mark order %d paid: %w", ord.ID, err)
	}
	if !applied {
		// The other confirmation path won the race. Re-read and make sure
		// the order really is paid rather than, say, cancelled under us.
		current, e2 := s.orders.GetByID(ctx, ord.ID)
		if e2 != nil {
			return nil, fmt.Errorf("reload order %d: %w", ord.ID, e2)
		}
		if current.Status != order.StatusPaid {
			return nil, fmt.Errorf("order %d is %s, cannot confirm payment", ord.ID, current.Status)
		}
		return current, nil
	}

	ord.Status = order.StatusPaid
	ord.PaymentRef = sess.PaymentRef
	return ord, nil
}

// HandleEvent processes a processor push notification. Event types other
// than a completed checkout are acknowledged and ignored.
func (s *Service) HandleEvent(ctx context.Context, ev *payment.Event) error {
	if ev.Type != payment.EventCheckoutCompleted {
		log.Printf("ignoring payment event type %s", ev.Type)
		return nil
	}

	_, err := s.ConfirmSession(ctx, ev.SessionID)
	return err
}

// Cancel moves a pending order to cancelled. The caller authenticates with
// the order's confirmation token, the same credential used for lookups; a
// paid order cannot be cancelled here.
func (s *Service) Cancel(ctx context.Context, confirmationToken string) (*order.Order, error) {
	ord, err := s.orders.GetByConfirmationToken(ctx, confirmationToken)
	if err != nil {
		return nil, err
	}

	applied, err := s.orders.CancelPending(ctx, ord.ID)
	if err != nil {
		return nil, fmt.Errorf("cancel order %d: %w", ord.ID, err)
	}
	if !applied {
		return nil, ErrNotCancellable
	}

	ord.Status = order.StatusCancelled
	return ord, nil
}

// LookupByToken fetches an order for the confirmation page. Token-only
// lookup keeps sequential order ids unusable to outsiders.
func (s *Service) LookupByToken(ctx context.Context, confirmationToken string) (*order.Order, error) {
	return s.orders.GetByConfirmationToken(ctx, confirmationToken)
}

func buildOrder(form Form, c *cart.Cart, totals pricing.Totals) *order.Order {
	items := make([]order.Item, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, order.Item{
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			Size:        l.Size,
			Quantity:    l.Quantity,
			Subtotal:    l.UnitPrice * int64(l.Quantity),
		})
	}

	return &order.Order{
		CustomerName:  form.CustomerName,
		CustomerEmail: form.CustomerEmail,
		CustomerPhone: form.CustomerPhone,
		Shipping: order.Address{
			Street: form.ShippingStreet,
			City:   form.ShippingCity,
			State:  form.ShippingState,
			Zip:    form.ShippingZip,
		},
		Subtotal:          totals.Subtotal,
		Tax:               totals.Tax,
		ShippingCost:      totals.Shipping,
		Total:             totals.Total,
		Status:            order.StatusPending,
		ConfirmationToken: order.NewConfirmationToken(),
		Items:             items,
	}
}

func (s *Service) sessionParams(ord *order.Order) payment.SessionParams {
	lines := make([]payment.ChargeLine, 0, len(ord.Items))
	for _, item := range ord.Items {
		lines = append(lines, payment.ChargeLine{
			Name:      item.ProductName,
			UnitPrice: item.UnitPrice,
			Quantity:  int64(item.Quantity),
		})
	}

	return payment.SessionParams{
		OrderID:    ord.ID,
		Lines:      lines,
		Tax:        ord.Tax,
		Shipping:   ord.ShippingCost,
		SuccessURL: s.successURL,
		CancelURL:  s.cancelURL,
	}
}
