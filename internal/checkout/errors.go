package checkout

import "errors"

var (
	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")
	// ErrProcessor wraps a failed call to the payment processor. The order
	// stays pending and the cart stays intact so the customer can retry.
	ErrProcessor = errors.New("payment processor request failed")
	// ErrPaymentIncomplete means the processor has not (yet) collected
	// payment for the session.
	ErrPaymentIncomplete = errors.New("payment not completed for session")
	// ErrAmountMismatch means the processor charged a different amount than
	// the order total. The order is left unpaid; this is an operator-level
	// anomaly, not an ordinary failure.
	ErrAmountMismatch = errors.New("processor amount does not match order total")
	// ErrNotCancellable is returned for cancel requests on orders that left
	// the pending state.
	ErrNotCancellable = errors.New("order can no longer be cancelled")
)
