// Package model defines the domain records shared by the storefront client.
package model

import (
	"encoding/json"
	"time"
)

// ProductRemote holds the server-authoritative fields of a catalog product.
type ProductRemote struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Stock    int64  `json:"stock"`
	Quantity int64  `json:"quantity"`
}

// Product is one catalog entry of the products snapshot. OriginalStock is
// the local baseline stamped from Stock when the snapshot is fetched; it is
// never written by a mutation response.
type Product struct {
	ProductRemote
	OriginalStock int64 `json:"-"`
}

// CartLineRemote holds the server-authoritative fields of a cart line.
// Identity is the (ClientID, ProductID) pair.
type CartLineRemote struct {
	ClientID       int64  `json:"client_id"`
	ProductID      int64  `json:"product_id"`
	ProductName    string `json:"product_name"`
	AvailableStock int64  `json:"available_stock"`
	Quantity       int64  `json:"quantity"`
}

// CartLine is one entry of the cart snapshot. Updated is the local-only
// pending quantity edit: nil means no pending edit, which is a different
// state than a pending edit of zero. Updated is discarded by the next cart
// refresh and only ever reaches the server through an explicit adjust call.
type CartLine struct {
	CartLineRemote
	Updated *int64 `json:"-"`
}

// OrderStatus is assigned exclusively by the remote service; the client
// only ever creates orders as StatusPending.
type OrderStatus string

const (
	StatusPending  OrderStatus = "pendente"
	StatusApproved OrderStatus = "aprovado"
	StatusRejected OrderStatus = "recusado"
)

// Order is one entry of the orders snapshot.
type Order struct {
	ID          int64       `json:"id"`
	ClientID    int64       `json:"client_id"`
	ProductID   int64       `json:"product_id"`
	ProductName string      `json:"product_name"`
	Quantity    int64       `json:"quantity"`
	Status      OrderStatus `json:"status"`
}

// NotificationRecord is one server-pushed payload. Data is kept opaque:
// the client requires valid JSON and imposes no schema beyond that.
type NotificationRecord struct {
	Data       json.RawMessage
	ReceivedAt time.Time
}
