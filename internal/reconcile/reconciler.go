// Package reconcile keeps the client's product, cart, and order snapshots
// consistent with the remote storefront service. The remote service is the
// authority for all persisted state; the reconciler only ever replaces a
// snapshot wholesale and layers the two local annotations on top: the
// original-stock baseline on products and the pending quantity edit on cart
// lines. Both exist only between refreshes.
package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/fairyhunter13/storefront-client/internal/model"
	"github.com/fairyhunter13/storefront-client/internal/obs"
)

// Scope selects which snapshot a refresh targets.
type Scope int

const (
	ScopeProducts Scope = iota
	ScopeCart
	ScopeOrders
)

// String returns the lowercase name of the scope.
func (s Scope) String() string {
	switch s {
	case ScopeProducts:
		return "products"
	case ScopeCart:
		return "cart"
	case ScopeOrders:
		return "orders"
	}
	return "unknown"
}

// StoreClient is the slice of the remote facade the reconciler drives.
type StoreClient interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	ListCart(ctx context.Context) ([]model.CartLine, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	AddToCart(ctx context.Context, p model.Product, quantity int64) error
	RemoveFromCart(ctx context.Context, productID int64) error
	AdjustCart(ctx context.Context, productID, quantity int64) error
	SubmitOrder(ctx context.Context, line model.CartLine) error
}

// Reconciler owns the three snapshots. A failed remote call never touches
// them: the mutation simply does not trigger its follow-up refresh, so the
// visible state stays at the last successful fetch. There is no retry at
// this layer; every retry is a fresh caller-initiated action.
type Reconciler struct {
	client StoreClient

	mu       sync.RWMutex
	products []model.Product
	cart     []model.CartLine
	orders   []model.Order

	// Per-scope refresh tokens. Overlapping refreshes for one scope can
	// complete out of order; only the holder of the latest issued token
	// installs its result.
	seq [3]Sequencer
}

// New creates a Reconciler over client with empty snapshots.
func New(client StoreClient) *Reconciler {
	return &Reconciler{client: client}
}

// Refresh fetches the snapshot for scope and installs it, replacing the
// prior one in full. Products get OriginalStock stamped from Stock; cart
// lines come back with no pending edit. A response that has been superseded
// by a newer refresh of the same scope is discarded.
func (r *Reconciler) Refresh(ctx context.Context, scope Scope) error {
	token := r.seq[scope].Next()
	switch scope {
	case ScopeProducts:
		prods, err := r.client.ListProducts(ctx)
		if err != nil {
			obs.Logger.Error("refresh_failed", "scope", scope.String(), "error", err)
			return err
		}
		for i := range prods {
			prods[i].OriginalStock = prods[i].Stock
		}
		r.install(scope, token, func() { r.products = prods })
		return nil
	case ScopeCart:
		lines, err := r.client.ListCart(ctx)
		if err != nil {
			obs.Logger.Error("refresh_failed", "scope", scope.String(), "error", err)
			return err
		}
		for i := range lines {
			lines[i].Updated = nil
		}
		r.install(scope, token, func() { r.cart = lines })
		return nil
	case ScopeOrders:
		orders, err := r.client.ListOrders(ctx)
		if err != nil {
			obs.Logger.Error("refresh_failed", "scope", scope.String(), "error", err)
			return err
		}
		r.install(scope, token, func() { r.orders = orders })
		return nil
	}
	return fmt.Errorf("reconcile: unknown scope %d", scope)
}

func (r *Reconciler) install(scope Scope, token uint64, set func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token != r.seq[scope].Latest() {
		obs.Logger.Warn("refresh_superseded", "scope", scope.String(), "token", token, "latest", r.seq[scope].Latest())
		return
	}
	set()
}

// Products returns a copy of the products snapshot.
func (r *Reconciler) Products() []model.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Product, len(r.products))
	copy(out, r.products)
	return out
}

// Cart returns a copy of the cart snapshot.
func (r *Reconciler) Cart() []model.CartLine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.CartLine, len(r.cart))
	copy(out, r.cart)
	return out
}

// Orders returns a copy of the orders snapshot.
func (r *Reconciler) Orders() []model.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Order, len(r.orders))
	copy(out, r.orders)
	return out
}

// SetUpdated records a pending quantity edit on the cart line for
// productID. The edit stays local until ResolveCartAction sends it, and the
// next cart refresh discards it. It reports whether the line exists.
func (r *Reconciler) SetUpdated(productID, quantity int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.cart {
		if r.cart[i].ProductID == productID {
			q := quantity
			r.cart[i].Updated = &q
			return true
		}
	}
	return false
}

// Add puts quantity units of p into the cart, then re-reads products and
// the cart so both reflect the server's new authoritative state.
func (r *Reconciler) Add(ctx context.Context, p model.Product, quantity int64) error {
	if err := r.client.AddToCart(ctx, p, quantity); err != nil {
		obs.Logger.Error("add_to_cart_failed", "product_id", p.ID, "error", err)
		return err
	}
	obs.Logger.Info("added_to_cart", "product_id", p.ID, "quantity", quantity)
	if err := r.Refresh(ctx, ScopeProducts); err != nil {
		return err
	}
	return r.Refresh(ctx, ScopeCart)
}

// Remove deletes the cart line for productID, then re-reads the cart.
func (r *Reconciler) Remove(ctx context.Context, productID int64) error {
	if err := r.client.RemoveFromCart(ctx, productID); err != nil {
		obs.Logger.Error("remove_from_cart_failed", "product_id", productID, "error", err)
		return err
	}
	obs.Logger.Info("removed_from_cart", "product_id", productID)
	return r.Refresh(ctx, ScopeCart)
}

// Adjust replaces the committed quantity of line with quantity, then
// re-reads the cart.
func (r *Reconciler) Adjust(ctx context.Context, line model.CartLine, quantity int64) error {
	if err := r.client.AdjustCart(ctx, line.ProductID, quantity); err != nil {
		obs.Logger.Error("adjust_cart_failed", "product_id", line.ProductID, "quantity", quantity, "error", err)
		return err
	}
	obs.Logger.Info("cart_adjusted", "product_id", line.ProductID, "quantity", quantity)
	return r.Refresh(ctx, ScopeCart)
}

// ResolveCartAction decides what the cart's action button does for line: a
// missing or zero pending edit removes the line, anything else adjusts the
// committed quantity to exactly the pending value. Conflating "no edit"
// with "edit to zero" is deliberate product behavior.
func (r *Reconciler) ResolveCartAction(ctx context.Context, line model.CartLine) error {
	if line.Updated == nil || *line.Updated == 0 {
		return r.Remove(ctx, line.ProductID)
	}
	return r.Adjust(ctx, line, *line.Updated)
}

// Pay submits an order for line, then evicts the line from the cart and
// re-reads products. The two remote calls are independent: when the removal
// fails after the order was created, the order stands, the line stays in
// the cart, and the caller sees the removal error. That gap is reported,
// never reconciled automatically.
func (r *Reconciler) Pay(ctx context.Context, line model.CartLine) error {
	if err := r.client.SubmitOrder(ctx, line); err != nil {
		obs.Logger.Error("submit_order_failed", "product_id", line.ProductID, "error", err)
		return err
	}
	obs.Logger.Info("order_submitted", "product_id", line.ProductID, "quantity", line.Quantity)
	if err := r.Remove(ctx, line.ProductID); err != nil {
		return fmt.Errorf("order submitted but cart line %d not removed: %w", line.ProductID, err)
	}
	return r.Refresh(ctx, ScopeProducts)
}
