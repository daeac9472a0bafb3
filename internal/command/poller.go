package command

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/appetiteclub/apt"

	"github.com/comandaclub/comanda/internal/cart"
)

// DefaultPollInterval is the cadence of the table-orders poll while a
// table-wide view is open.
const DefaultPollInterval = 10 * time.Second

// Poller keeps the cart's table-wide order view roughly in sync with the
// backend and detects a server-initiated bill request. Each applied response
// replaces the view wholesale; responses are sequence-stamped when the
// request is issued and a reply older than the last applied one is dropped,
// so two polls in flight cannot regress the display.
type Poller struct {
	client   Client
	cart     *cart.Store
	logger   apt.Logger
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	seq     uint64
	applied uint64
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewPoller(client Client, cartStore *cart.Store, interval time.Duration, logger apt.Logger) *Poller {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if client == nil {
		client = NewNoopClient()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		client:   client,
		cart:     cartStore,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// Start polls once immediately, then on every interval tick until the
// context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return fmt.Errorf("poller already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	done := make(chan struct{})
	p.done = done
	p.mu.Unlock()

	go func() {
		defer close(done)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		if err := p.PollOnce(ctx); err != nil {
			p.logger.Debug("table orders poll failed", "error", err)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := p.PollOnce(ctx); err != nil {
					p.logger.Debug("table orders poll failed", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop cancels the polling loop and waits for it to drain.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// PollOnce fetches the table's orders and merges the response into the cart
// state. A failed fetch leaves the previous view untouched.
func (p *Poller) PollOnce(ctx context.Context) error {
	state := p.cart.State()
	if state.TableID == "" {
		p.logger.Debug("skipping table orders poll, no table resolved")
		return nil
	}

	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	resp, err := p.client.TableOrders(ctx, state.TableID)
	if err != nil {
		return fmt.Errorf("cannot fetch table orders: %w", err)
	}

	p.mu.Lock()
	if seq <= p.applied {
		p.mu.Unlock()
		p.logger.Debug("dropping stale table orders response", "seq", seq)
		return nil
	}
	p.applied = seq

	if resp.BillRequested && state.IsTableActive {
		p.cart.Dispatch(cart.SetBillRequested{Requested: true})
	}
	p.cart.Dispatch(cart.SetTableOrders{Orders: p.flatten(resp.Orders)})
	p.mu.Unlock()

	return nil
}

// flatten maps backend order records into the cart's display shape, turning
// nested menu-item quantity records into flat cart items.
func (p *Poller) flatten(orders []Order) []cart.Order {
	now := p.now().UnixMilli()

	flattened := make([]cart.Order, 0, len(orders))
	for _, order := range orders {
		items := make([]cart.CartItem, 0, len(order.MenuItemsWithQuantities))
		var total float64
		for _, line := range order.MenuItemsWithQuantities {
			item := cart.CartItem{
				ID:       line.MenuItem.ID,
				Name:     line.MenuItem.Name,
				Price:    line.MenuItem.Price,
				Quantity: line.Quantity,
			}
			if line.AdditionalNotes != nil {
				item.Notes = *line.AdditionalNotes
			}
			items = append(items, item)
			total += line.MenuItem.Price * float64(line.Quantity)
		}

		flattened = append(flattened, cart.Order{
			ID:        order.ID,
			TableID:   strconv.Itoa(order.Table.ID),
			Timestamp: now,
			Items:     items,
			Total:     total,
		})
	}

	return flattened
}
