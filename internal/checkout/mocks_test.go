package checkout

import (
	"context"
	"sync"

	"github.com/Addisaurus/Tallow-Website/internal/cart"
	"github.com/Addisaurus/Tallow-Website/internal/order"
	"github.com/Addisaurus/Tallow-Website/internal/payment"
)

// MemStore implements cart.Store in memory for testing
type MemStore struct {
	mu    sync.Mutex
	carts map[string]*cart.Cart
}

func NewMemStore() *MemStore {
	return &MemStore{carts: make(map[string]*cart.Cart)}
}

func (m *MemStore) Get(_ context.Context, sessionID string) (*cart.Cart, error) {
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

func (m *MemStore) Save(_ context.Context, c *cart.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *c
	copied.Lines = append([]cart.Line(nil), c.Lines...)
	m.carts[c.SessionID] = &copied
	return nil
}

func (m *MemStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

func (m *MemStore) Has(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.carts[sessionID]
	return ok
}

// MockRepository implements order.Repository for testing
type MockRepository struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*order.Order

	CreateErr    error
	MarkPaidErr  error
	MarkPaidByID map[int64]int // counts applied MarkPaid calls per order
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		nextID:       1,
		orders:       make(map[int64]*order.Order),
		MarkPaidByID: make(map[int64]int),
	}
}

func (m *MockRepository) CreateOrder(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	o.ID = m.nextID
	m.nextID++
	copied := *o
	m.orders[o.ID] = &copied
	return nil
}

func (m *MockRepository) GetByID(_ context.Context, id int64) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *MockRepository) GetByConfirmationToken(_ context.Context, token string) (*order.Order, error) {
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

func (m *MockRepository) AttachPaymentSession(_ context.Context, orderID int64, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return order.ErrOrderNotFound
	}
	o.CheckoutSessionID = sessionID
	return nil
}

func (m *MockRepository) MarkPaid(_ context.Context, orderID int64, paymentRef string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarkPaidErr != nil {
		return false, m.MarkPaidErr
	}
	o, ok := m.orders[orderID]
	if !ok || o.Status != order.StatusPending {
		return false, nil
	}
	o.Status = order.StatusPaid
	o.PaymentRef = paymentRef
	m.MarkPaidByID[orderID]++
	return true, nil
}

func (m *MockRepository) CancelPending(_ context.Context, orderID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.Status != order.StatusPending {
		return false, nil
	}
	o.Status = order.StatusCancelled
	return true, nil
}

func (m *MockRepository) Close() error {
	return nil
}

// MockProcessor implements payment.Processor for testing
type MockProcessor struct {
	mu sync.Mutex

	CreateErr     error
	RetrieveErr   error
	Sessions      map[string]*payment.Session
	CreatedParams *payment.SessionParams // captures the last CreateSession call
}

func NewMockProcessor() *MockProcessor {
	return &MockProcessor{Sessions: make(map[string]*payment.Session)}
}

func (m *MockProcessor) CreateSession(_ context.Context, params payment.SessionParams) (*payment.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.CreatedParams = &params
	sess := &payment.Session{
		ID:      "cs_test_1",
		URL:     "https://pay.example.com/cs_test_1",
		OrderID: params.OrderID,
	}
	m.Sessions[sess.ID] = sess
	return sess, nil
}

func (m *MockProcessor) RetrieveSession(_ context.Context, sessionID string) (*payment.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RetrieveErr != nil {
		return nil, m.RetrieveErr
	}
	sess, ok := m.Sessions[sessionID]
	if !ok {
		return nil, payment.ErrNoOrderRef
	}
	copied := *sess
	return &copied, nil
}

// SetPaid marks the stored session as settled by the processor.
func (m *MockProcessor) SetPaid(sessionID, paymentRef string, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := m.Sessions[sessionID]
	sess.Paid = true
	sess.PaymentRef = paymentRef
	sess.AmountTotal = amount
}

// newTestService wires a checkout service onto in-memory collaborators.
func newTestService(store *MemStore, repo *MockRepository, processor *MockProcessor) *Service {
	carts := cart.NewService(store)
	return NewService(carts, repo, processor,
		"https://shop.example.com/success?session_id={CHECKOUT_SESSION_ID}",
		"https://shop.example.com/cart")
}

func validForm() Form {
	return Form{
		CustomerName:   "Jordan Smith",
		CustomerEmail:  "jordan@example.com",
		CustomerPhone:  "555-123-4567",
		ShippingStreet: "123 Main Street",
		ShippingCity:   "Austin",
		ShippingState:  "TX",
		ShippingZip:    "78701",
	}
}
