package simulator

import (
	"context"
	"math/rand"
	"time"

	"github.com/fairyhunter13/storefront-client/internal/model"
	"github.com/fairyhunter13/storefront-client/internal/obs"
)

// PaymentProcessor settles pending orders in the background, approving or
// rejecting each one and publishing the decision on the notification
// stream. It stands in for the payment system behind the real service.
type PaymentProcessor struct {
	st       *Store
	hub      *Hub
	interval time.Duration
}

// NewPaymentProcessor creates a processor sweeping pending orders every
// interval.
func NewPaymentProcessor(st *Store, hub *Hub, interval time.Duration) *PaymentProcessor {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &PaymentProcessor{st: st, hub: hub, interval: interval}
}

// Start runs the settlement loop until ctx is done.
func (p *PaymentProcessor) Start(ctx context.Context) {
	go p.run(ctx)
}

func (p *PaymentProcessor) run(ctx context.Context) {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.settleOnce()
		}
	}
}

func (p *PaymentProcessor) settleOnce() {
	for _, o := range p.st.PendingOrders() {
		status := model.StatusApproved
		key := EventPaymentApproved
		if rand.Intn(2) == 0 {
			status = model.StatusRejected
			key = EventPaymentRejected
		}
		if !p.st.SetOrderStatus(o.ID, status) {
			continue
		}
		o.Status = status
		obs.Logger.Info("order_settled", "order_id", o.ID, "status", string(status))
		p.hub.PublishEvent(key, o)
	}
}
