// Package controller orchestrates the storefront views: which snapshot is
// active, when it refreshes, and the push-notification log.
package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/fairyhunter13/storefront-client/internal/model"
	"github.com/fairyhunter13/storefront-client/internal/notify"
	"github.com/fairyhunter13/storefront-client/internal/obs"
	"github.com/fairyhunter13/storefront-client/internal/reconcile"
)

// Tab names a storefront view.
type Tab string

const (
	TabProducts Tab = "products"
	TabCart     Tab = "cart"
	TabOrders   Tab = "orders"
)

func (t Tab) scope() (reconcile.Scope, bool) {
	switch t {
	case TabProducts:
		return reconcile.ScopeProducts, true
	case TabCart:
		return reconcile.ScopeCart, true
	case TabOrders:
		return reconcile.ScopeOrders, true
	}
	return 0, false
}

// Controller ties the reconciler to the notification channel for the
// lifetime of the view. It owns the single open stream connection and
// releases it exactly once on Stop.
type Controller struct {
	rec       *reconcile.Reconciler
	notifyURL string

	mu      sync.Mutex
	tab     Tab
	log     []model.NotificationRecord
	channel *notify.Channel
	drained chan struct{}
}

// New creates a Controller starting on the products tab.
func New(rec *reconcile.Reconciler, notifyURL string) *Controller {
	return &Controller{rec: rec, notifyURL: notifyURL, tab: TabProducts}
}

// Start performs the initial products refresh and opens the notification
// channel, pumping records into the log in arrival order until the stream
// terminates. A failed initial refresh is logged, not fatal; a failed
// stream open is returned because the view cannot receive notifications
// without it.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.rec.Refresh(ctx, reconcile.ScopeProducts); err != nil {
		obs.Logger.Error("initial_refresh_failed", "error", err)
	}
	ch, err := notify.Open(ctx, c.notifyURL)
	if err != nil {
		return err
	}
	drained := make(chan struct{})
	c.mu.Lock()
	c.channel = ch
	c.drained = drained
	c.mu.Unlock()
	go c.pump(ch, drained)
	return nil
}

func (c *Controller) pump(ch *notify.Channel, drained chan struct{}) {
	defer close(drained)
	for rec := range ch.Records() {
		obs.Logger.Info("notification_received", "payload", string(rec.Data))
		c.mu.Lock()
		c.log = append(c.log, rec)
		c.mu.Unlock()
	}
}

// SetActiveTab switches the view and refreshes its snapshot.
func (c *Controller) SetActiveTab(ctx context.Context, tab Tab) error {
	scope, ok := tab.scope()
	if !ok {
		return fmt.Errorf("controller: unknown tab %q", tab)
	}
	c.mu.Lock()
	c.tab = tab
	c.mu.Unlock()
	return c.rec.Refresh(ctx, scope)
}

// ActiveTab returns the currently selected view.
func (c *Controller) ActiveTab() Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tab
}

// Reconciler exposes the underlying reconciler for mutation actions.
func (c *Controller) Reconciler() *reconcile.Reconciler { return c.rec }

// Notifications returns a copy of the notification log, in arrival order.
func (c *Controller) Notifications() []model.NotificationRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.NotificationRecord, len(c.log))
	copy(out, c.log)
	return out
}

// Stop closes the notification channel and waits for the log pump to
// drain. Safe to call multiple times and before Start.
func (c *Controller) Stop() {
	c.mu.Lock()
	ch, drained := c.channel, c.drained
	c.mu.Unlock()
	if ch == nil {
		return
	}
	ch.Close()
	<-drained
}
