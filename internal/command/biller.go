package command

import (
	"context"
	"sync"
	"time"

	"github.com/appetiteclub/apt"

	"github.com/comandaclub/comanda/internal/cart"
)

// DefaultBillReset is how long a bill request keeps the table locked before
// the orders are closed and the table resets for the next guests.
const DefaultBillReset = 5 * time.Minute

// Biller coordinates the bill flow: requesting the bill deactivates the
// table immediately, and after the configured delay the table's orders are
// closed on the backend and the local aggregate resets. Identity survives
// the reset; only cart, history and table orders are cleared.
type Biller struct {
	client Client
	cart   *cart.Store
	logger apt.Logger
	delay  time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	settled chan struct{}
}

func NewBiller(client Client, cartStore *cart.Store, delay time.Duration, logger apt.Logger) *Biller {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if client == nil {
		client = NewNoopClient()
	}
	if delay <= 0 {
		delay = DefaultBillReset
	}
	return &Biller{
		client: client,
		cart:   cartStore,
		logger: logger,
		delay:  delay,
	}
}

// Request locks the table for further ordering and schedules the close and
// reset. Calling it again restarts the countdown.
func (b *Biller) Request() {
	state := b.cart.Dispatch(cart.RequestBill{})

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}
	settled := make(chan struct{})
	b.settled = settled
	b.timer = time.AfterFunc(b.delay, func() {
		b.settle(state.TableID)
		close(settled)
	})

	b.logger.Info("bill requested", "table_id", state.TableID, "reset_in", b.delay.String())
}

// Cancel stops a pending close/reset, for when the owning view goes away.
func (b *Biller) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// Wait blocks until the pending reset has fired or the context ends. It is
// what keeps a short-lived process alive through the countdown.
func (b *Biller) Wait(ctx context.Context) error {
	b.mu.Lock()
	settled := b.settled
	b.mu.Unlock()
	if settled == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-settled:
		return nil
	}
}

// settle closes the table's orders and resets the local aggregate. A close
// failure does not stop the reset.
func (b *Biller) settle(tableID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if tableID != "" {
		if err := b.client.Close(ctx, tableID); err != nil {
			b.logger.Error("cannot close table orders", "table_id", tableID, "error", err)
		}
	}

	b.cart.Dispatch(cart.ResetTable{})
	b.logger.Info("table reset", "table_id", tableID)
}
