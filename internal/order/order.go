// Package order holds the persisted order entities and their lifecycle.
// An order is created pending at checkout, moved to paid or cancelled by
// payment reconciliation, and never deleted.
package order

import (
	"time"

	"github.com/google/uuid"
)

type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// Order is one placed order. All monetary fields are integer cents and
// Total == Subtotal + Tax + ShippingCost always; the database enforces the
// same invariant with a CHECK constraint.
type Order struct {
	ID            int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Shipping      Address

	Subtotal     int64
	Tax          int64
	ShippingCost int64
	Total        int64

	Status Status

	// PaymentRef is the processor's payment id, set when the order is paid.
	PaymentRef string
	// CheckoutSessionID links the order to its hosted payment session.
	CheckoutSessionID string
	// ConfirmationToken is the only credential an unauthenticated caller may
	// use to look this order up. Unguessable, unique across all orders.
	ConfirmationToken string

	CreatedAt time.Time
	UpdatedAt time.Time

	Items []Item
}

// Item is a snapshot of one cart line at purchase time. Prices are frozen
// here so later catalog changes never alter a placed order.
type Item struct {
	ID          int64
	OrderID     int64
	ProductName string
	UnitPrice   int64
	Size        string
	Quantity    int
	Subtotal    int64
}

// NewConfirmationToken mints an opaque lookup credential for a new order.
func NewConfirmationToken() string {
	return uuid.NewString()
}
