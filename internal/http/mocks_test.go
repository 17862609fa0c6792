package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Addisaurus/Tallow-Website/internal/cart"
	"github.com/Addisaurus/Tallow-Website/internal/checkout"
	"github.com/Addisaurus/Tallow-Website/internal/order"
	"github.com/Addisaurus/Tallow-Website/internal/payment"
)

// memStore implements cart.Store in memory for handler tests
type memStore struct {
	mu    sync.Mutex
	carts map[string]*cart.Cart
}

func newMemStore() *memStore {
	return &memStore{carts: make(map[string]*cart.Cart)}
}

func (m *memStore) Get(_ context.Context, sessionID string) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[sessionID]
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	copied := *c
	copied.Lines = append([]cart.Line(nil), c.Lines...)
	return &copied, nil
}

func (m *memStore) Save(_ context.Context, c *cart.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *c
	copied.Lines = append([]cart.Line(nil), c.Lines...)
	m.carts[c.SessionID] = &copied
	return nil
}

func (m *memStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

// memRepo implements order.Repository in memory for handler tests
type memRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*order.Order
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, orders: make(map[int64]*order.Order)}
}

func (m *memRepo) CreateOrder(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = m.nextID
	m.nextID++
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	copied := *o
	m.orders[o.ID] = &copied
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *memRepo) GetByConfirmationToken(_ context.Context, token string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ConfirmationToken == token {
			copied := *o
			return &copied, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (m *memRepo) AttachPaymentSession(_ context.Context, orderID int64, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return order.ErrOrderNotFound
	}
	o.CheckoutSessionID = sessionID
	return nil
}

func (m *memRepo) MarkPaid(_ context.Context, orderID int64, paymentRef string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.Status != order.StatusPending {
		return false, nil
	}
	o.Status = order.StatusPaid
	o.PaymentRef = paymentRef
	return true, nil
}

func (m *memRepo) CancelPending(_ context.Context, orderID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.Status != order.StatusPending {
		return false, nil
	}
	o.Status = order.StatusCancelled
	return true, nil
}

func (m *memRepo) Close() error { return nil }

// fakeProcessor implements payment.Processor for handler tests
type fakeProcessor struct {
	mu        sync.Mutex
	createErr error
	sessions  map[string]*payment.Session
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{sessions: make(map[string]*payment.Session)}
}

func (f *fakeProcessor) CreateSession(_ context.Context, params payment.SessionParams) (*payment.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	sess := &payment.Session{
		ID:      "cs_test_1",
		URL:     "https://pay.example.com/cs_test_1",
		OrderID: params.OrderID,
	}
	f.sessions[sess.ID] = sess
	return sess, nil
}

func (f *fakeProcessor) RetrieveSession(_ context.Context, sessionID string) (*payment.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[sessionID]
	if !ok {
		return nil, payment.ErrNoOrderRef
	}
	copied := *sess
	return &copied, nil
}

func (f *fakeProcessor) setPaid(sessionID, paymentRef string, amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess := f.sessions[sessionID]
	sess.Paid = true
	sess.PaymentRef = paymentRef
	sess.AmountTotal = amount
}

type testEnv struct {
	carts     *cart.Service
	repo      *memRepo
	processor *fakeProcessor
	service   *checkout.Service
}

func newTestEnv() *testEnv {
	carts := cart.NewService(newMemStore())
	repo := newMemRepo()
	processor := newFakeProcessor()
	service := checkout.NewService(carts, repo, processor,
		"https://shop.example.com/success?session_id={CHECKOUT_SESSION_ID}",
		"https://shop.example.com/cart")
	return &testEnv{carts: carts, repo: repo, processor: processor, service: service}
}

// withSession injects a session id the way SessionMiddleware would.
func withSession(r *http.Request, sessionID string) *http.Request {
	ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
	return r.WithContext(ctx)
}

func checkoutFormFixture() checkout.Form {
	return checkout.Form{
		CustomerName:   "Jordan Smith",
		CustomerEmail:  "jordan@example.com",
		CustomerPhone:  "555-123-4567",
		ShippingStreet: "123 Main Street",
		ShippingCity:   "Austin",
		ShippingState:  "TX",
		ShippingZip:    "78701",
	}
}

func validCheckoutBody() string {
	return `{
		"customer_name": "Jordan Smith",
		"customer_email": "jordan@example.com",
		"customer_phone": "555-123-4567",
		"shipping_street": "123 Main Street",
		"shipping_city": "Austin",
		"shipping_state": "TX",
		"shipping_zip": "78701"
	}`
}
