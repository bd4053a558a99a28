// Package main boots the storefront client: it syncs the product snapshot
// from the remote service and streams push notifications until interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fairyhunter13/storefront-client/internal/config"
	"github.com/fairyhunter13/storefront-client/internal/controller"
	"github.com/fairyhunter13/storefront-client/internal/obs"
	"github.com/fairyhunter13/storefront-client/internal/reconcile"
	"github.com/fairyhunter13/storefront-client/internal/remote"
)

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("client_starting", "store_url", cfg.StoreURL, "notify_url", cfg.NotifyURL, "client_id", cfg.ClientID)

	client := remote.New(cfg.StoreURL, cfg.ClientID, cfg.HTTPTimeout)
	rec := reconcile.New(client)
	ctrl := controller.New(rec, cfg.NotifyURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := ctrl.Start(ctx); err != nil {
		obs.Logger.Error("client_start_failed", "error", err)
		os.Exit(1)
	}
	obs.Logger.Info("client_ready", "products", len(rec.Products()))

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	ctrl.Stop()
	obs.Logger.Info("client_stopped", "notifications", len(ctrl.Notifications()))
}
