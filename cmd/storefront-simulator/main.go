// Package main boots the storefront service simulator: the catalog, cart,
// and order API plus the notification stream the client connects to.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/storefront-client/internal/config"
	"github.com/fairyhunter13/storefront-client/internal/model"
	"github.com/fairyhunter13/storefront-client/internal/obs"
	"github.com/fairyhunter13/storefront-client/internal/simulator"
)

func seedCatalog() []model.Product {
	return []model.Product{
		{ProductRemote: model.ProductRemote{ID: 1, Name: "Teclado", Stock: 25}},
		{ProductRemote: model.ProductRemote{ID: 2, Name: "Mouse", Stock: 40}},
		{ProductRemote: model.ProductRemote{ID: 3, Name: "Monitor", Stock: 10}},
		{ProductRemote: model.ProductRemote{ID: 4, Name: "Headset", Stock: 15}},
	}
}

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("simulator_starting")

	st := simulator.NewStore(seedCatalog())
	hub := simulator.NewHub(cfg.NotifyBuffer)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx)
	simulator.NewPaymentProcessor(st, hub, cfg.PaymentInterval).Start(ctx)

	app := simulator.NewApp(cfg, st, hub)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           simulator.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
		// No WriteTimeout: the notification stream is long-lived.
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	obs.Logger.Info("simulator_stopped")
}
