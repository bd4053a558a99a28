package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront-client/internal/model"
	"github.com/fairyhunter13/storefront-client/internal/obs"
)

func init() { obs.InitLogger() }

// fakeClient scripts the remote facade: canned snapshots, per-op error
// injection, and a call log.
type fakeClient struct {
	mu       sync.Mutex
	products []model.Product
	cart     []model.CartLine
	orders   []model.Order

	failAdd    error
	failRemove error
	failAdjust error
	failSubmit error

	calls []string

	// When gated, the first ListProducts call signals entered and then
	// blocks until the gate is closed.
	gated        atomic.Bool
	entered      chan struct{}
	productsGate chan struct{}
}

func (f *fakeClient) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeClient) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeClient) ListProducts(ctx context.Context) ([]model.Product, error) {
	f.record("list_products")
	f.mu.Lock()
	out := make([]model.Product, len(f.products))
	copy(out, f.products)
	f.mu.Unlock()
	// A gated call reads its payload first, then stalls in flight, so its
	// response arrives after any refresh issued while it was blocked.
	if f.gated.CompareAndSwap(true, false) {
		f.entered <- struct{}{}
		<-f.productsGate
	}
	return out, nil
}

func (f *fakeClient) ListCart(ctx context.Context) ([]model.CartLine, error) {
	f.record("list_cart")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.CartLine, len(f.cart))
	copy(out, f.cart)
	return out, nil
}

func (f *fakeClient) ListOrders(ctx context.Context) ([]model.Order, error) {
	f.record("list_orders")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Order, len(f.orders))
	copy(out, f.orders)
	return out, nil
}

func (f *fakeClient) AddToCart(ctx context.Context, p model.Product, quantity int64) error {
	f.record("add")
	return f.failAdd
}

func (f *fakeClient) RemoveFromCart(ctx context.Context, productID int64) error {
	f.record("remove")
	return f.failRemove
}

func (f *fakeClient) AdjustCart(ctx context.Context, productID, quantity int64) error {
	f.record("adjust")
	return f.failAdjust
}

func (f *fakeClient) SubmitOrder(ctx context.Context, line model.CartLine) error {
	f.record("submit")
	return f.failSubmit
}

func product(id int64, name string, stock int64) model.Product {
	return model.Product{ProductRemote: model.ProductRemote{ID: id, Name: name, Stock: stock}}
}

func cartLine(productID, quantity int64) model.CartLine {
	return model.CartLine{CartLineRemote: model.CartLineRemote{
		ClientID: 1, ProductID: productID, ProductName: "X", AvailableStock: 10, Quantity: quantity,
	}}
}

func TestRefreshStampsOriginalStock(t *testing.T) {
	f := &fakeClient{products: []model.Product{product(1, "X", 10)}}
	r := New(f)
	require.NoError(t, r.Refresh(context.Background(), ScopeProducts))
	got := r.Products()
	require.Len(t, got, 1)
	assert.Equal(t, int64(10), got[0].Stock)
	assert.Equal(t, int64(10), got[0].OriginalStock)
}

func TestRefreshIdempotence(t *testing.T) {
	f := &fakeClient{products: []model.Product{product(1, "X", 10), product(2, "Y", 3)}}
	r := New(f)
	require.NoError(t, r.Refresh(context.Background(), ScopeProducts))
	first := r.Products()
	require.NoError(t, r.Refresh(context.Background(), ScopeProducts))
	second := r.Products()
	assert.Equal(t, first, second)
}

func TestRefreshClearsPendingEdits(t *testing.T) {
	f := &fakeClient{cart: []model.CartLine{cartLine(1, 3)}}
	r := New(f)
	require.NoError(t, r.Refresh(context.Background(), ScopeCart))
	require.True(t, r.SetUpdated(1, 5))
	require.NotNil(t, r.Cart()[0].Updated)

	require.NoError(t, r.Refresh(context.Background(), ScopeCart))
	assert.Nil(t, r.Cart()[0].Updated, "pending edits must not survive a refresh")
}

func TestRefreshFailureLeavesSnapshot(t *testing.T) {
	f := &fakeClient{products: []model.Product{product(1, "X", 10)}}
	r := New(f)
	require.NoError(t, r.Refresh(context.Background(), ScopeProducts))

	boom := errors.New("boom")
	fc := &failingLister{err: boom}
	r2 := New(fc)
	require.ErrorIs(t, r2.Refresh(context.Background(), ScopeProducts), boom)
	assert.Empty(t, r2.Products())
}

type failingLister struct{ err error }

func (f *failingLister) ListProducts(ctx context.Context) ([]model.Product, error) {
	return nil, f.err
}
func (f *failingLister) ListCart(ctx context.Context) ([]model.CartLine, error) {
	return nil, f.err
}
func (f *failingLister) ListOrders(ctx context.Context) ([]model.Order, error) {
	return nil, f.err
}
func (f *failingLister) AddToCart(ctx context.Context, p model.Product, q int64) error { return f.err }
func (f *failingLister) RemoveFromCart(ctx context.Context, id int64) error            { return f.err }
func (f *failingLister) AdjustCart(ctx context.Context, id, q int64) error             { return f.err }
func (f *failingLister) SubmitOrder(ctx context.Context, l model.CartLine) error       { return f.err }

func TestStaleRefreshDiscarded(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeClient{
		products:     []model.Product{product(1, "stale", 1)},
		entered:      make(chan struct{}, 1),
		productsGate: gate,
	}
	f.gated.Store(true)
	r := New(f)

	slow := make(chan error, 1)
	go func() { slow <- r.Refresh(context.Background(), ScopeProducts) }()

	// Wait until the slow refresh holds its token and is blocked in flight.
	<-f.entered

	f.mu.Lock()
	f.products = []model.Product{product(1, "fresh", 9)}
	f.mu.Unlock()
	require.NoError(t, r.Refresh(context.Background(), ScopeProducts))

	close(gate)
	require.NoError(t, <-slow)

	got := r.Products()
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].Name, "an out-of-order response must not clobber a newer snapshot")
	assert.Equal(t, int64(9), got[0].Stock)
}

func TestAddTriggersProductsAndCartRefresh(t *testing.T) {
	f := &fakeClient{products: []model.Product{product(1, "X", 8)}}
	r := New(f)
	require.NoError(t, r.Add(context.Background(), product(1, "X", 10), 2))
	assert.Equal(t, []string{"add", "list_products", "list_cart"}, f.callLog())

	// The displayed stock is whatever the server reports, never a local
	// decrement; the baseline follows it.
	got := r.Products()
	require.Len(t, got, 1)
	assert.Equal(t, int64(8), got[0].Stock)
	assert.Equal(t, int64(8), got[0].OriginalStock)
}

func TestFailedAddSkipsRefresh(t *testing.T) {
	boom := errors.New("rejected")
	f := &fakeClient{failAdd: boom}
	r := New(f)
	require.ErrorIs(t, r.Add(context.Background(), product(1, "X", 10), 2), boom)
	assert.Equal(t, []string{"add"}, f.callLog())
}

func TestResolveCartActionLaw(t *testing.T) {
	zero := int64(0)
	five := int64(5)
	cases := []struct {
		name    string
		updated *int64
		want    []string
	}{
		{"no pending edit removes", nil, []string{"remove", "list_cart"}},
		{"pending edit of zero removes", &zero, []string{"remove", "list_cart"}},
		{"pending edit adjusts", &five, []string{"adjust", "list_cart"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeClient{}
			r := New(f)
			line := cartLine(1, 3)
			line.Updated = tc.updated
			require.NoError(t, r.ResolveCartAction(context.Background(), line))
			assert.Equal(t, tc.want, f.callLog())
		})
	}
}

func TestPaySubmitsThenRemovesThenRefreshesProducts(t *testing.T) {
	f := &fakeClient{}
	r := New(f)
	require.NoError(t, r.Pay(context.Background(), cartLine(1, 3)))
	assert.Equal(t, []string{"submit", "remove", "list_cart", "list_products"}, f.callLog())
}

func TestPayRemoveFailureReported(t *testing.T) {
	boom := errors.New("not found")
	f := &fakeClient{failRemove: boom}
	r := New(f)
	err := r.Pay(context.Background(), cartLine(1, 3))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "order submitted but cart line")
	// The order was created and nothing compensates for it.
	assert.Equal(t, []string{"submit", "remove"}, f.callLog())
}

func TestSetUpdatedUnknownLine(t *testing.T) {
	f := &fakeClient{}
	r := New(f)
	assert.False(t, r.SetUpdated(99, 1))
}
