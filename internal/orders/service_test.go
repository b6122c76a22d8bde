package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLedger mirrors the postgres repo's reservation semantics for tests: the
// snapshot, validation, pricing and decrements all happen under one lock, so
// competing reservations of the same product serialize just like rows locked
// FOR UPDATE.
type memLedger struct {
	mu       sync.Mutex
	users    map[string]User
	products map[string]*Product
	orders   map[string]Order
}

func newMemLedger() *memLedger {
	return &memLedger{
		users:    make(map[string]User),
		products: make(map[string]*Product),
		orders:   make(map[string]Order),
	}
}

func (m *memLedger) addUser(u User)        { m.users[u.ID] = u }
func (m *memLedger) addProduct(p Product)  { m.products[p.ID] = &p }
func (m *memLedger) stockOf(id string) int { return m.products[id].Stock }

func (m *memLedger) UserByID(ctx context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (m *memLedger) PlaceOrder(ctx context.Context, user *User, productIDs []string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(productIDs))
	var available []Product
	for _, id := range productIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := m.products[id]; ok && p.Stock > 0 {
			available = append(available, *p)
		}
	}

	if err := validateSnapshot(productIDs, available); err != nil {
		return nil, err
	}
	total, err := totalPrice(available)
	if err != nil {
		return nil, err
	}

	for i := range available {
		m.products[available[i].ID].Stock--
		available[i].Stock--
	}

	o := Order{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		User:      user.Snapshot(),
		Detail:    OrderDetail{ID: uuid.NewString(), Price: total, Products: available},
	}
	m.orders[o.ID] = o
	return &o, nil
}

func (m *memLedger) OrderByID(ctx context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

type capturedPublisher struct {
	mu       sync.Mutex
	messages [][]byte
}

func (c *capturedPublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, value)
}

func newTestService() (*Service, *memLedger, *capturedPublisher) {
	ledger := newMemLedger()
	pub := &capturedPublisher{}
	svc := &Service{Store: ledger, Producer: pub, ServiceName: "test"}
	return svc, ledger, pub
}

func TestPlaceOrderSuccess(t *testing.T) {
	svc, ledger, pub := newTestService()
	ledger.addUser(User{ID: "U1", Name: "Ann", Email: "ann@example.com", Password: "hash", IsAdmin: true})
	ledger.addProduct(Product{ID: "P1", Name: "Laptop", Price: dec("19.99"), Stock: 5})

	order, err := svc.PlaceOrder(context.Background(), "U1", []string{"P1"}, "")
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "19.99", order.Detail.Price.StringFixed(2))
	require.Len(t, order.Detail.Products, 1)
	assert.Equal(t, 4, ledger.stockOf("P1"))

	// The embedded user is a snapshot without secrets.
	assert.Equal(t, "U1", order.User.ID)
	assert.Equal(t, "ann@example.com", order.User.Email)

	assert.Len(t, pub.messages, 1)
}

func TestPlaceOrderDecrementsEachProductOnce(t *testing.T) {
	svc, ledger, _ := newTestService()
	ledger.addUser(User{ID: "U1"})
	ledger.addProduct(Product{ID: "P1", Price: dec("10.00"), Stock: 3})
	ledger.addProduct(Product{ID: "P2", Price: dec("2.50"), Stock: 7})

	order, err := svc.PlaceOrder(context.Background(), "U1", []string{"P1", "P2"}, "")
	require.NoError(t, err)

	assert.Equal(t, "12.50", order.Detail.Price.StringFixed(2))
	assert.Equal(t, 2, ledger.stockOf("P1"))
	assert.Equal(t, 6, ledger.stockOf("P2"))
}

func TestPlaceOrderUserNotFound(t *testing.T) {
	svc, ledger, pub := newTestService()
	ledger.addProduct(Product{ID: "P1", Price: dec("10.00"), Stock: 3})

	_, err := svc.PlaceOrder(context.Background(), "nobody", []string{"P1"}, "")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, pub.messages)
}

func TestPlaceOrderEmptyOrder(t *testing.T) {
	svc, ledger, _ := newTestService()
	ledger.addUser(User{ID: "U1"})

	_, err := svc.PlaceOrder(context.Background(), "U1", nil, "")
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestPlaceOrderOutOfStockProductFailsWhole(t *testing.T) {
	svc, ledger, pub := newTestService()
	ledger.addUser(User{ID: "U1"})
	ledger.addProduct(Product{ID: "P1", Price: dec("19.99"), Stock: 5})
	ledger.addProduct(Product{ID: "P2", Price: dec("5.00"), Stock: 0})

	_, err := svc.PlaceOrder(context.Background(), "U1", []string{"P1", "P2"}, "")
	assert.ErrorIs(t, err, ErrProductNotFound)

	// No partial success: P1 keeps its full stock.
	assert.Equal(t, 5, ledger.stockOf("P1"))
	assert.Empty(t, pub.messages)
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	svc, ledger, _ := newTestService()
	ledger.addUser(User{ID: "U1"})
	ledger.addProduct(Product{ID: "P1", Price: dec("19.99"), Stock: 5})

	_, err := svc.PlaceOrder(context.Background(), "U1", []string{"P1", "ghost"}, "")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 5, ledger.stockOf("P1"))
}

func TestPlaceOrderNothingAvailable(t *testing.T) {
	svc, ledger, _ := newTestService()
	ledger.addUser(User{ID: "U1"})
	ledger.addProduct(Product{ID: "P1", Price: dec("19.99"), Stock: 0})

	_, err := svc.PlaceOrder(context.Background(), "U1", []string{"P1"}, "")
	assert.ErrorIs(t, err, ErrNoAvailableProducts)
}

func TestPlaceOrderDuplicateIDsRejected(t *testing.T) {
	svc, ledger, _ := newTestService()
	ledger.addUser(User{ID: "U1"})
	ledger.addProduct(Product{ID: "P1", Price: dec("19.99"), Stock: 5})

	// A duplicated id resolves to one product, so the snapshot comes up
	// short of the requested count.
	_, err := svc.PlaceOrder(context.Background(), "U1", []string{"P1", "P1"}, "")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 5, ledger.stockOf("P1"))
}

func TestPlaceOrderInvalidPriceRollsBack(t *testing.T) {
	svc, ledger, _ := newTestService()
	ledger.addUser(User{ID: "U1"})
	ledger.addProduct(Product{ID: "P1", Price: dec("0"), Stock: 5})

	_, err := svc.PlaceOrder(context.Background(), "U1", []string{"P1"}, "")
	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.Equal(t, 5, ledger.stockOf("P1"))
}

func TestConcurrentPlacementsLastUnit(t *testing.T) {
	svc, ledger, _ := newTestService()
	ledger.addUser(User{ID: "U1"})
	ledger.addUser(User{ID: "U2"})
	ledger.addProduct(Product{ID: "P1", Price: dec("19.99"), Stock: 1})

	type result struct{ err error }
	results := make(chan result, 2)
	var wg sync.WaitGroup
	for _, uid := range []string{"U1", "U2"} {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), uid, []string{"P1"}, "")
			results <- result{err}
		}(uid)
	}
	wg.Wait()
	close(results)

	var ok, failed int
	for r := range results {
		if r.err == nil {
			ok++
			continue
		}
		failed++
		assert.True(t,
			errors.Is(r.err, ErrProductNotFound) || errors.Is(r.err, ErrNoAvailableProducts),
			"unexpected error: %v", r.err)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 0, ledger.stockOf("P1"))
}

func TestGetOrderIdempotentReads(t *testing.T) {
	svc, ledger, _ := newTestService()
	ledger.addUser(User{ID: "U1"})
	ledger.addProduct(Product{ID: "P1", Price: dec("19.99"), Stock: 5})

	placed, err := svc.PlaceOrder(context.Background(), "U1", []string{"P1"}, "")
	require.NoError(t, err)

	first, err := svc.GetOrder(context.Background(), placed.ID)
	require.NoError(t, err)
	second, err := svc.GetOrder(context.Background(), placed.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetOrderNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
