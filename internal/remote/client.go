// Package remote implements the request/response facade over the storefront
// service. Each operation is a single exchange: no retries, no caching, no
// interpretation of error bodies.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/storefront-client/internal/model"
)

// Client is the stateless facade over the remote catalog/cart/order
// service. All cart operations act on behalf of the fixed client id given
// at construction.
type Client struct {
	baseURL  string
	clientID int64
	hc       *http.Client
}

// New creates a Client for the service at baseURL. A zero timeout means
// requests never time out.
func New(baseURL string, clientID int64, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		hc:       &http.Client{Timeout: timeout},
	}
}

// ClientID returns the fixed client identity used for cart operations.
func (c *Client) ClientID() int64 { return c.clientID }

func (c *Client) do(ctx context.Context, op, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return &Error{Op: op, Err: err}
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	// Authorization is not wired in; the service runs unauthenticated.
	resp, err := c.hc.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &Error{Op: op, Status: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Op: op, Err: err}
		}
	}
	return nil
}

// ListProducts fetches the product catalog.
func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	if err := c.do(ctx, "list_products", http.MethodGet, "/produtos", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCart fetches the cart lines.
func (c *Client) ListCart(ctx context.Context) ([]model.CartLine, error) {
	var out []model.CartLine
	if err := c.do(ctx, "list_cart", http.MethodGet, "/carrinho", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOrders fetches the order history.
func (c *Client) ListOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	if err := c.do(ctx, "list_orders", http.MethodGet, "/pedidos", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type addPayload struct {
	ClientID       int64  `json:"client_id"`
	ProductName    string `json:"product_name"`
	ProductID      int64  `json:"product_id"`
	AvailableStock int64  `json:"available_stock"`
	Quantity       int64  `json:"quantity"`
}

// AddToCart puts quantity units of p into the cart. The server rejects an
// unknown product or a quantity of zero or less. Available stock is sent as
// zero and filled in by the server from the catalog.
func (c *Client) AddToCart(ctx context.Context, p model.Product, quantity int64) error {
	pl := addPayload{
		ClientID:    c.clientID,
		ProductName: p.Name,
		ProductID:   p.ID,
		Quantity:    quantity,
	}
	return c.do(ctx, "add_to_cart", http.MethodPost, "/carrinho", pl, nil)
}

// RemoveFromCart deletes the client's cart line for productID. Removing a
// line that is already gone fails with a not-found rejection.
func (c *Client) RemoveFromCart(ctx context.Context, productID int64) error {
	path := fmt.Sprintf("/carrinho/%d/%d", c.clientID, productID)
	return c.do(ctx, "remove_from_cart", http.MethodDelete, path, nil, nil)
}

// AdjustCart replaces the committed quantity of the client's cart line for
// productID atomically at the server. Quantities above the line's available
// stock are rejected.
func (c *Client) AdjustCart(ctx context.Context, productID, quantity int64) error {
	path := fmt.Sprintf("/carrinho/%d/%d/%d", c.clientID, productID, quantity)
	return c.do(ctx, "adjust_cart", http.MethodPatch, path, nil, nil)
}

type orderPayload struct {
	ID          int64             `json:"id"`
	ClientID    int64             `json:"client_id"`
	ProductID   int64             `json:"product_id"`
	ProductName string            `json:"product_name"`
	Quantity    int64             `json:"quantity"`
	Status      model.OrderStatus `json:"status"`
}

// SubmitOrder creates a pending order for the cart line's product and
// quantity. The id is sent as zero; the server assigns the real one.
func (c *Client) SubmitOrder(ctx context.Context, line model.CartLine) error {
	pl := orderPayload{
		ClientID:    c.clientID,
		ProductID:   line.ProductID,
		ProductName: line.ProductName,
		Quantity:    line.Quantity,
		Status:      model.StatusPending,
	}
	return c.do(ctx, "submit_order", http.MethodPost, "/pedidos", pl, nil)
}
