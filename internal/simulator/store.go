// Package simulator is an in-memory stand-in for the remote storefront
// service: the catalog/cart/order API plus the notification stream. It
// exists so the client can be exercised end-to-end without the real
// deployment.
package simulator

import (
	"errors"
	"sort"
	"sync"

	"github.com/fairyhunter13/storefront-client/internal/model"
)

var (
	// ErrNotFound marks operations on a product or cart line that does
	// not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock marks quantity changes that exceed the line's
	// available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
)

type cartKey struct {
	clientID  int64
	productID int64
}

// Store holds the simulator's catalog, cart, and orders. All reads copy out.
type Store struct {
	mu       sync.RWMutex
	products map[int64]model.Product
	cart     map[cartKey]model.CartLine
	orders   []model.Order
	orderSeq int64
}

// NewStore creates a Store seeded with the given catalog.
func NewStore(seed []model.Product) *Store {
	s := &Store{
		products: make(map[int64]model.Product, len(seed)),
		cart:     make(map[cartKey]model.CartLine),
	}
	for _, p := range seed {
		s.products[p.ID] = p
	}
	return s
}

// Products returns the catalog ordered by id.
func (s *Store) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Product looks up one catalog entry.
func (s *Store) Product(id int64) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

// Cart returns all cart lines ordered by (client_id, product_id).
func (s *Store) Cart() []model.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.CartLine, 0, len(s.cart))
	for _, l := range s.cart {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ClientID != out[j].ClientID {
			return out[i].ClientID < out[j].ClientID
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

// Orders returns the order history in creation order.
func (s *Store) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// AddToCart merges quantity units of the product into the client's line.
// A new line captures the product's current stock as its available stock,
// and the catalog stock drops by the added quantity.
func (s *Store) AddToCart(clientID, productID, quantity int64) (model.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return model.CartLine{}, ErrNotFound
	}
	if quantity > p.Stock {
		return model.CartLine{}, ErrInsufficientStock
	}
	k := cartKey{clientID, productID}
	line, ok := s.cart[k]
	if !ok {
		line = model.CartLine{CartLineRemote: model.CartLineRemote{
			ClientID:       clientID,
			ProductID:      productID,
			ProductName:    p.Name,
			AvailableStock: p.Stock,
		}}
	}
	line.Quantity += quantity
	s.cart[k] = line
	p.Stock -= quantity
	s.products[productID] = p
	return line, nil
}

// RemoveFromCart deletes the client's line for the product and returns its
// committed quantity to the catalog stock.
func (s *Store) RemoveFromCart(clientID, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := cartKey{clientID, productID}
	line, ok := s.cart[k]
	if !ok {
		return ErrNotFound
	}
	delete(s.cart, k)
	if p, ok := s.products[productID]; ok {
		p.Stock += line.Quantity
		s.products[productID] = p
	}
	return nil
}

// AdjustCart atomically replaces the committed quantity of the client's
// line and rebalances the catalog stock against the line's available-stock
// baseline.
func (s *Store) AdjustCart(clientID, productID, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := cartKey{clientID, productID}
	line, ok := s.cart[k]
	if !ok {
		return ErrNotFound
	}
	if quantity > line.AvailableStock {
		return ErrInsufficientStock
	}
	old := line.Quantity
	line.Quantity = quantity
	s.cart[k] = line
	if p, ok := s.products[productID]; ok {
		p.Stock += old - quantity
		s.products[productID] = p
	}
	return nil
}

// CreateOrder appends a pending order, assigning its id.
func (s *Store) CreateOrder(o model.Order) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderSeq++
	o.ID = s.orderSeq
	o.Status = model.StatusPending
	s.orders = append(s.orders, o)
	return o
}

// SetOrderStatus updates one order's status. It reports whether the order
// exists.
func (s *Store) SetOrderStatus(id int64, status model.OrderStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			return true
		}
	}
	return false
}

// PendingOrders returns the orders still awaiting a payment decision.
func (s *Store) PendingOrders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Order
	for _, o := range s.orders {
		if o.Status == model.StatusPending {
			out = append(out, o)
		}
	}
	return out
}
