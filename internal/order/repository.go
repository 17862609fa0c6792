package order

import (
	"context"
	"errors"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateToken = errors.New("confirmation token already exists")
)

// Repository is the persistence boundary for orders. The store is the sole
// arbiter of order status: MarkPaid and CancelPending are compare-and-set
// writes so racing confirmation paths cannot both apply a transition.
type Repository interface {
	// CreateOrder persists the order and its items in one transaction.
	CreateOrder(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByConfirmationToken(ctx context.Context, token string) (*Order, error)
	// AttachPaymentSession records the hosted payment session created for
	// the order.
	AttachPaymentSession(ctx context.Context, orderID int64, sessionID string) error
	// MarkPaid applies pending → paid. Returns false when the order was not
	// pending anymore, without touching it.
	MarkPaid(ctx context.Context, orderID int64, paymentRef string) (bool, error)
	// CancelPending applies pending → cancelled under the same rule.
	CancelPending(ctx context.Context, orderID int64) (bool, error)
	Close() error
}

// Credentials hold everything needed to reach the orders database.
type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}
