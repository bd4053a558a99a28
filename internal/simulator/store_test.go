package simulator

import (
	"errors"
	"testing"

	"github.com/fairyhunter13/storefront-client/internal/model"
)

func seed() []model.Product {
	return []model.Product{
		{ProductRemote: model.ProductRemote{ID: 1, Name: "Teclado", Stock: 10}},
		{ProductRemote: model.ProductRemote{ID: 2, Name: "Mouse", Stock: 5}},
	}
}

func TestAddToCartDecrementsStock(t *testing.T) {
	s := NewStore(seed())
	line, err := s.AddToCart(1, 1, 3)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if line.Quantity != 3 || line.AvailableStock != 10 {
		t.Fatalf("unexpected line: %+v", line)
	}
	p, _ := s.Product(1)
	if p.Stock != 7 {
		t.Fatalf("expected stock 7, got %d", p.Stock)
	}
}

func TestAddToCartMergesQuantity(t *testing.T) {
	s := NewStore(seed())
	if _, err := s.AddToCart(1, 1, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	line, err := s.AddToCart(1, 1, 3)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if line.Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", line.Quantity)
	}
	if got := len(s.Cart()); got != 1 {
		t.Fatalf("expected one line, got %d", got)
	}
}

func TestAddToCartRejections(t *testing.T) {
	s := NewStore(seed())
	if _, err := s.AddToCart(1, 99, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.AddToCart(1, 2, 6); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
}

func TestRemoveFromCartRestoresStock(t *testing.T) {
	s := NewStore(seed())
	if _, err := s.AddToCart(1, 1, 4); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.RemoveFromCart(1, 1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	p, _ := s.Product(1)
	if p.Stock != 10 {
		t.Fatalf("expected stock restored to 10, got %d", p.Stock)
	}
	// Removing the same line again is a not-found rejection.
	if err := s.RemoveFromCart(1, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdjustCartRebalances(t *testing.T) {
	s := NewStore(seed())
	if _, err := s.AddToCart(1, 1, 4); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AdjustCart(1, 1, 2); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	line := s.Cart()[0]
	if line.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", line.Quantity)
	}
	p, _ := s.Product(1)
	if p.Stock != 8 {
		t.Fatalf("expected stock 8, got %d", p.Stock)
	}
	if err := s.AdjustCart(1, 1, 11); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if err := s.AdjustCart(1, 99, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateOrderAssignsIDAndPendingStatus(t *testing.T) {
	s := NewStore(seed())
	o := s.CreateOrder(model.Order{ClientID: 1, ProductID: 1, ProductName: "Teclado", Quantity: 2, Status: "aprovado"})
	if o.ID != 1 {
		t.Fatalf("expected id 1, got %d", o.ID)
	}
	if o.Status != model.StatusPending {
		t.Fatalf("orders are always created pending, got %s", o.Status)
	}
	o2 := s.CreateOrder(model.Order{ClientID: 1, ProductID: 2, Quantity: 1})
	if o2.ID != 2 {
		t.Fatalf("expected id 2, got %d", o2.ID)
	}
	if got := len(s.PendingOrders()); got != 2 {
		t.Fatalf("expected 2 pending, got %d", got)
	}
	if !s.SetOrderStatus(1, model.StatusApproved) {
		t.Fatalf("expected order 1 to exist")
	}
	if got := len(s.PendingOrders()); got != 1 {
		t.Fatalf("expected 1 pending, got %d", got)
	}
}
