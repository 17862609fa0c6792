// Package payment bridges orders to an external hosted-payment processor.
// The processor collects card details on its own pages; this package only
// creates sessions, re-fetches their canonical state, and verifies the
// processor's push notifications.
package payment

import (
	"context"
	"errors"
)

// EventCheckoutCompleted is the processor event announcing a finished
// hosted-checkout session.
const EventCheckoutCompleted = "checkout.session.completed"

var (
	ErrBadSignature = errors.New("invalid event signature")
	// ErrNoOrderRef means a session came back without the order id this
	// system put in its metadata; it cannot be reconciled.
	ErrNoOrderRef = errors.New("session metadata carries no order reference")
)

// ChargeLine is one entry in the charge description sent to the processor.
// Amounts are integer cents.
type ChargeLine struct {
	Name      string
	UnitPrice int64
	Quantity  int64
}

// SessionParams describes the hosted session to create. The order id is
// embedded in session metadata so confirmation never has to trust a
// client-supplied order id.
type SessionParams struct {
	OrderID    int64
	Lines      []ChargeLine
	Tax        int64
	Shipping   int64
	SuccessURL string
	CancelURL  string
}

// Session is the processor's canonical view of a hosted session.
type Session struct {
	ID          string
	URL         string
	Paid        bool
	AmountTotal int64
	OrderID     int64
	PaymentRef  string
}

// Processor is the external payment service boundary.
type Processor interface {
	CreateSession(ctx context.Context, params SessionParams) (*Session, error)
	// RetrieveSession fetches the canonical session state. Confirmation
	// always goes through this; a client saying "it succeeded" is never
	// trusted.
	RetrieveSession(ctx context.Context, id string) (*Session, error)
}

// Event is a verified (or explicitly unverified, see EventParser) processor
// notification.
type Event struct {
	Type      string
	SessionID string
}
