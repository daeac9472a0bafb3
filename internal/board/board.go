package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/appetiteclub/apt"

	"github.com/comandaclub/comanda/internal/command"
)

// DefaultPollInterval is the staff board refresh cadence.
const DefaultPollInterval = 10 * time.Second

// Order types as shown on the board, split between kitchen and bar.
const (
	TypeFood   = "Mancare"
	TypeDrinks = "Bauturi"
)

// Item is one line of a board order.
type Item struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Notes    string  `json:"notes,omitempty"`
	Price    float64 `json:"price"`
}

// Order is an active order as staff see it.
type Order struct {
	ID         int       `json:"id"`
	Table      string    `json:"tableId"`
	Items      []Item    `json:"items"`
	Status     string    `json:"status"`
	Type       string    `json:"type"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Board mirrors the backend's active orders for the kitchen/bar workflow.
// It refreshes on a fixed cadence, drops closed orders, classifies each
// order food vs drinks, and can progress an order's status. A failed
// refresh keeps the previous snapshot.
type Board struct {
	client   command.Client
	logger   apt.Logger
	interval time.Duration
	now      func() time.Time

	// onNew fires once per newly arrived order, so the UI can ring.
	onNew func(Order)

	mu     sync.RWMutex
	orders []Order
	seen   map[int]bool
	cancel context.CancelFunc
	done   chan struct{}
}

func New(client command.Client, interval time.Duration, logger apt.Logger) *Board {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if client == nil {
		client = command.NewNoopClient()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Board{
		client:   client,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		seen:     make(map[int]bool),
	}
}

// OnNewOrder registers the new-order notification hook. Set it before Start.
func (b *Board) OnNewOrder(fn func(Order)) {
	b.onNew = fn
}

// Start refreshes once immediately, then on every tick until the context is
// cancelled or Stop is called.
func (b *Board) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.cancel != nil {
		b.mu.Unlock()
		return fmt.Errorf("board already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	done := make(chan struct{})
	b.done = done
	b.mu.Unlock()

	go func() {
		defer close(done)

		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		if err := b.RefreshOnce(ctx); err != nil {
			b.logger.Debug("board refresh failed", "error", err)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := b.RefreshOnce(ctx); err != nil {
					b.logger.Debug("board refresh failed", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop cancels the refresh loop and waits for it to drain.
func (b *Board) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	done := b.done
	b.cancel = nil
	b.done = nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// RefreshOnce fetches all orders and replaces the active snapshot.
func (b *Board) RefreshOnce(ctx context.Context) error {
	records, err := b.client.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("cannot fetch orders: %w", err)
	}

	received := b.now()
	active := make([]Order, 0, len(records))
	for _, record := range records {
		if record.Status == command.StatusClosed {
			continue
		}
		active = append(active, mapOrder(record, received))
	}

	b.mu.Lock()
	var fresh []Order
	for _, order := range active {
		if !b.seen[order.ID] {
			b.seen[order.ID] = true
			fresh = append(fresh, order)
		}
	}
	notify := b.onNew
	hadAny := len(b.orders) > 0
	b.orders = active
	b.mu.Unlock()

	if notify != nil && hadAny {
		for _, order := range fresh {
			notify(order)
		}
	}

	return nil
}

// Orders returns the current active snapshot.
func (b *Board) Orders() []Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Order(nil), b.orders...)
}

// Filtered returns active orders of one type, optionally narrowed to one
// status.
func (b *Board) Filtered(orderType, status string) []Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var filtered []Order
	for _, order := range b.orders {
		if order.Type != orderType {
			continue
		}
		if status != "" && order.Status != status {
			continue
		}
		filtered = append(filtered, order)
	}
	return filtered
}

// Advance moves an order to its next workflow status
// (PENDING -> IN_PROGRESS -> CLOSED) and updates the local snapshot.
func (b *Board) Advance(ctx context.Context, orderID int) (string, error) {
	b.mu.RLock()
	var current string
	found := false
	for _, order := range b.orders {
		if order.ID == orderID {
			current = order.Status
			found = true
			break
		}
	}
	b.mu.RUnlock()

	if !found {
		return "", fmt.Errorf("order %d not on the board", orderID)
	}

	next, err := nextStatus(current)
	if err != nil {
		return "", err
	}

	if err := b.client.UpdateStatus(ctx, orderID, next); err != nil {
		return "", fmt.Errorf("cannot update order %d: %w", orderID, err)
	}

	b.mu.Lock()
	if next == command.StatusClosed {
		kept := b.orders[:0]
		for _, order := range b.orders {
			if order.ID != orderID {
				kept = append(kept, order)
			}
		}
		b.orders = kept
	} else {
		for i := range b.orders {
			if b.orders[i].ID == orderID {
				b.orders[i].Status = next
			}
		}
	}
	b.mu.Unlock()

	return next, nil
}

func nextStatus(status string) (string, error) {
	switch status {
	case command.StatusPending:
		return command.StatusInProgress, nil
	case command.StatusInProgress:
		return command.StatusClosed, nil
	default:
		return "", fmt.Errorf("order status %q cannot advance", status)
	}
}

// mapOrder flattens a backend record into the board shape. The order is
// classified by its first item's speciality class; a mixed order follows
// its first item.
func mapOrder(record command.Order, received time.Time) Order {
	items := make([]Item, 0, len(record.MenuItemsWithQuantities))
	for _, line := range record.MenuItemsWithQuantities {
		item := Item{
			ID:       line.ID,
			Name:     line.MenuItem.Name,
			Quantity: line.Quantity,
			Price:    line.MenuItem.Price,
		}
		if line.AdditionalNotes != nil {
			item.Notes = *line.AdditionalNotes
		}
		items = append(items, item)
	}

	orderType := TypeFood
	if len(record.MenuItemsWithQuantities) > 0 {
		line := record.MenuItemsWithQuantities[0]
		if line.MenuItem.Speciality != nil && line.MenuItem.Speciality.SpecialityClass != nil {
			if name := line.MenuItem.Speciality.SpecialityClass.Name; name != "" {
				orderType = name
			}
		}
	}

	return Order{
		ID:         record.ID,
		Table:      record.Table.TableName,
		Items:      items,
		Status:     record.Status,
		Type:       orderType,
		ReceivedAt: received,
	}
}
