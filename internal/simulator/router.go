package simulator

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fairyhunter13/storefront-client/internal/obs"
)

// NewRouter registers the storefront routes and returns the handler with
// request-id and logging middleware applied.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(withLogging)
	r.Get("/produtos", app.listProductsHandler)
	r.Get("/carrinho", app.listCartHandler)
	r.Get("/pedidos", app.listOrdersHandler)
	r.Post("/carrinho", app.addToCartHandler)
	r.Delete("/carrinho/{clientID}/{productID}", app.removeFromCartHandler)
	r.Patch("/carrinho/{clientID}/{productID}/{quantity}", app.adjustCartHandler)
	r.Post("/pedidos", app.submitOrderHandler)
	r.Get("/notificacoes", app.notificationsHandler)
	r.Get("/healthz", app.healthHandler)
	return r
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		lat := time.Since(start)
		obs.Logger.Info("http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"latency_ms", float64(lat.Microseconds())/1000.0,
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}
