package simulator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/storefront-client/internal/config"
	"github.com/fairyhunter13/storefront-client/internal/model"
	"github.com/fairyhunter13/storefront-client/internal/obs"
)

// Event routing keys published on the notification stream.
const (
	EventOrderCreated    = "pedido.criado"
	EventPaymentApproved = "pagamento.aprovado"
	EventPaymentRejected = "pagamento.recusado"
)

// App wires the simulator's store and hub into HTTP handlers.
type App struct {
	Cfg     config.Config
	Store   *Store
	Hub     *Hub
	started time.Time
}

// NewApp constructs an App over the given store and hub.
func NewApp(cfg config.Config, st *Store, hub *Hub) *App {
	return &App{Cfg: cfg, Store: st, Hub: hub, started: time.Now()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Store.Products())
}

func (a *App) listCartHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Store.Cart())
}

func (a *App) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Store.Orders())
}

type addRequest struct {
	ClientID       int64  `json:"client_id"`
	ProductName    string `json:"product_name"`
	ProductID      int64  `json:"product_id"`
	AvailableStock int64  `json:"available_stock"`
	Quantity       int64  `json:"quantity"`
}

func (a *App) addToCartHandler(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return
	}
	var req addRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Quantity <= 0 {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "quantity must be > 0")
		return
	}
	line, err := a.Store.AddToCart(req.ClientID, req.ProductID, req.Quantity)
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", "unknown product")
		return
	case errors.Is(err, ErrInsufficientStock):
		writeJSONError(w, http.StatusConflict, "insufficient_stock", "")
		return
	case err != nil:
		writeJSONError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	obs.Logger.Info("cart_line_added", "client_id", line.ClientID, "product_id", line.ProductID, "quantity", line.Quantity)
	writeJSON(w, http.StatusOK, line)
}

func pathInt64(r *http.Request, name string) (int64, error) {
	v := chi.URLParam(r, name)
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

func (a *App) removeFromCartHandler(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathInt64(r, "clientID")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	productID, err := pathInt64(r, "productID")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if err := a.Store.RemoveFromCart(clientID, productID); err != nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "cart line not found")
		return
	}
	obs.Logger.Info("cart_line_removed", "client_id", clientID, "product_id", productID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (a *App) adjustCartHandler(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathInt64(r, "clientID")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	productID, err := pathInt64(r, "productID")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	quantity, err := pathInt64(r, "quantity")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if quantity <= 0 {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "quantity must be > 0")
		return
	}
	switch err := a.Store.AdjustCart(clientID, productID, quantity); {
	case errors.Is(err, ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", "cart line not found")
		return
	case errors.Is(err, ErrInsufficientStock):
		writeJSONError(w, http.StatusConflict, "insufficient_stock", "")
		return
	case err != nil:
		writeJSONError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	obs.Logger.Info("cart_line_adjusted", "client_id", clientID, "product_id", productID, "quantity", quantity)
	writeJSON(w, http.StatusOK, map[string]string{"status": "adjusted"})
}

func (a *App) submitOrderHandler(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return
	}
	var o model.Order
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&o); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if o.Quantity <= 0 {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "quantity must be > 0")
		return
	}
	created := a.Store.CreateOrder(o)
	obs.Logger.Info("order_created", "order_id", created.ID, "client_id", created.ClientID, "product_id", created.ProductID)
	a.Hub.PublishEvent(EventOrderCreated, created)
	writeJSON(w, http.StatusOK, created)
}

// notificationsHandler serves the server-push event stream. Each event body
// is one JSON document in the data field; delivery is in publish order per
// connection.
func (a *App) notificationsHandler(w http.ResponseWriter, r *http.Request) {
	fl, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming_unsupported", "")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fl.Flush()

	sub := a.Hub.Subscribe(a.Cfg.NotifyBuffer)
	defer a.Hub.Unsubscribe(sub)
	for {
		select {
		case payload, ok := <-sub:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			fl.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"subscribers": a.Hub.Subscribers(),
		"uptime_sec":  time.Since(a.started).Seconds(),
	})
}
