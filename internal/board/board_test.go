package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/comandaclub/comanda/internal/command"
)

// scriptedClient serves canned order lists and records status updates.
type scriptedClient struct {
	mu      sync.Mutex
	orders  []command.Order
	listErr error
	updates []struct {
		OrderID int
		Status  string
	}
	updateErr error
}

var _ command.Client = (*scriptedClient)(nil)

func (c *scriptedClient) Create(context.Context, command.CreateOrderRequest) error { return nil }

func (c *scriptedClient) TableOrders(context.Context, string) (*command.TableOrdersResponse, error) {
	return &command.TableOrdersResponse{}, nil
}

func (c *scriptedClient) Close(context.Context, string) error { return nil }

func (c *scriptedClient) ListAll(context.Context) ([]command.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listErr != nil {
		return nil, c.listErr
	}
	return append([]command.Order(nil), c.orders...), nil
}

func (c *scriptedClient) UpdateStatus(_ context.Context, orderID int, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.updateErr != nil {
		return c.updateErr
	}
	c.updates = append(c.updates, struct {
		OrderID int
		Status  string
	}{orderID, status})
	return nil
}

func (c *scriptedClient) setOrders(orders []command.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders = orders
}

func notes(s string) *string { return &s }

func backendOrder(id int, table, status, class string, lines ...command.OrderLine) command.Order {
	if len(lines) == 0 {
		lines = []command.OrderLine{
			{ID: id * 10, MenuItem: command.MenuItemRef{ID: id, Name: "Item"}, Quantity: 1},
		}
	}
	for i := range lines {
		lines[i].MenuItem.Speciality = &command.SpecialityRef{
			ID:              1,
			Name:            "whatever",
			SpecialityClass: &command.SpecialityClassRef{ID: 1, Name: class},
		}
	}
	return command.Order{
		ID:                      id,
		Table:                   command.TableRef{ID: id, TableName: table},
		Status:                  status,
		MenuItemsWithQuantities: lines,
	}
}

func TestBoardRefreshOnce(t *testing.T) {
	t.Run("dropsClosedAndClassifies", func(t *testing.T) {
		client := &scriptedClient{orders: []command.Order{
			backendOrder(1, "Masa 1", command.StatusPending, TypeFood,
				command.OrderLine{ID: 10, MenuItem: command.MenuItemRef{ID: 7, Name: "Mici", Price: 3.5}, Quantity: 4, AdditionalNotes: notes("extra mustard")}),
			backendOrder(2, "Masa 2", command.StatusInProgress, TypeDrinks,
				command.OrderLine{ID: 11, MenuItem: command.MenuItemRef{ID: 9, Name: "Bere", Price: 2}, Quantity: 2}),
			backendOrder(3, "Masa 3", command.StatusClosed, TypeFood),
		}}
		b := New(client, time.Minute, nil)
		at := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
		b.now = func() time.Time { return at }

		if err := b.RefreshOnce(context.Background()); err != nil {
			t.Fatalf("RefreshOnce() error = %v", err)
		}

		orders := b.Orders()
		if len(orders) != 2 {
			t.Fatalf("orders = %d, want 2 (closed dropped)", len(orders))
		}
		first := orders[0]
		if first.Type != TypeFood || first.Table != "Masa 1" || !first.ReceivedAt.Equal(at) {
			t.Errorf("first order = %+v, want classified food order for Masa 1", first)
		}
		if len(first.Items) != 1 || first.Items[0].Notes != "extra mustard" {
			t.Errorf("first order items = %+v, want mapped line with notes", first.Items)
		}
		if orders[1].Type != TypeDrinks {
			t.Errorf("second order type = %q, want %q", orders[1].Type, TypeDrinks)
		}
	})

	t.Run("missingSpecialityDefaultsToFood", func(t *testing.T) {
		client := &scriptedClient{orders: []command.Order{
			{
				ID:     5,
				Table:  command.TableRef{ID: 5, TableName: "Masa 5"},
				Status: command.StatusPending,
				MenuItemsWithQuantities: []command.OrderLine{
					{ID: 1, MenuItem: command.MenuItemRef{ID: 2, Name: "Paine"}, Quantity: 1},
				},
			},
		}}
		b := New(client, time.Minute, nil)

		if err := b.RefreshOnce(context.Background()); err != nil {
			t.Fatalf("RefreshOnce() error = %v", err)
		}
		if got := b.Orders()[0].Type; got != TypeFood {
			t.Errorf("Type = %q, want default %q", got, TypeFood)
		}
	})

	t.Run("failureKeepsPreviousSnapshot", func(t *testing.T) {
		client := &scriptedClient{orders: []command.Order{
			backendOrder(1, "Masa 1", command.StatusPending, TypeFood),
		}}
		b := New(client, time.Minute, nil)
		if err := b.RefreshOnce(context.Background()); err != nil {
			t.Fatalf("RefreshOnce() error = %v", err)
		}

		client.mu.Lock()
		client.listErr = errors.New("backend down")
		client.mu.Unlock()

		if err := b.RefreshOnce(context.Background()); err == nil {
			t.Fatal("RefreshOnce() should surface the fetch failure")
		}
		if len(b.Orders()) != 1 {
			t.Error("a failed refresh should keep the previous snapshot")
		}
	})
}

func TestBoardNewOrderNotification(t *testing.T) {
	client := &scriptedClient{orders: []command.Order{
		backendOrder(1, "Masa 1", command.StatusPending, TypeFood),
	}}
	b := New(client, time.Minute, nil)

	var notified []int
	b.OnNewOrder(func(o Order) { notified = append(notified, o.ID) })

	// The first refresh seeds the board without ringing for existing orders.
	if err := b.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("RefreshOnce() error = %v", err)
	}
	if len(notified) != 0 {
		t.Fatalf("notified = %v, want none on the seeding refresh", notified)
	}

	client.setOrders([]command.Order{
		backendOrder(1, "Masa 1", command.StatusPending, TypeFood),
		backendOrder(2, "Masa 2", command.StatusPending, TypeDrinks),
	})
	if err := b.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("RefreshOnce() error = %v", err)
	}
	if len(notified) != 1 || notified[0] != 2 {
		t.Fatalf("notified = %v, want just the new order 2", notified)
	}

	// A repeated refresh does not ring twice for the same order.
	if err := b.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("RefreshOnce() error = %v", err)
	}
	if len(notified) != 1 {
		t.Errorf("notified = %v, want no repeat notifications", notified)
	}
}

func TestBoardFiltered(t *testing.T) {
	client := &scriptedClient{orders: []command.Order{
		backendOrder(1, "Masa 1", command.StatusPending, TypeFood),
		backendOrder(2, "Masa 2", command.StatusInProgress, TypeFood),
		backendOrder(3, "Masa 3", command.StatusPending, TypeDrinks),
	}}
	b := New(client, time.Minute, nil)
	if err := b.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("RefreshOnce() error = %v", err)
	}

	if got := b.Filtered(TypeFood, ""); len(got) != 2 {
		t.Errorf("Filtered(food) = %d orders, want 2", len(got))
	}
	if got := b.Filtered(TypeFood, command.StatusPending); len(got) != 1 || got[0].ID != 1 {
		t.Errorf("Filtered(food, pending) = %+v, want order 1", got)
	}
	if got := b.Filtered(TypeDrinks, command.StatusInProgress); len(got) != 0 {
		t.Errorf("Filtered(drinks, in progress) = %+v, want none", got)
	}
}

func TestBoardAdvance(t *testing.T) {
	newBoard := func(t *testing.T, status string) (*Board, *scriptedClient) {
		t.Helper()
		client := &scriptedClient{orders: []command.Order{
			backendOrder(1, "Masa 1", status, TypeFood),
		}}
		b := New(client, time.Minute, nil)
		if err := b.RefreshOnce(context.Background()); err != nil {
			t.Fatalf("RefreshOnce() error = %v", err)
		}
		return b, client
	}

	t.Run("pendingToInProgress", func(t *testing.T) {
		b, client := newBoard(t, command.StatusPending)

		next, err := b.Advance(context.Background(), 1)
		if err != nil {
			t.Fatalf("Advance() error = %v", err)
		}
		if next != command.StatusInProgress {
			t.Errorf("next = %q, want %q", next, command.StatusInProgress)
		}
		if len(client.updates) != 1 || client.updates[0].Status != command.StatusInProgress {
			t.Errorf("updates = %+v, want one IN_PROGRESS update", client.updates)
		}
		if got := b.Orders()[0].Status; got != command.StatusInProgress {
			t.Errorf("local status = %q, want %q", got, command.StatusInProgress)
		}
	})

	t.Run("inProgressToClosedLeavesBoard", func(t *testing.T) {
		b, _ := newBoard(t, command.StatusInProgress)

		next, err := b.Advance(context.Background(), 1)
		if err != nil {
			t.Fatalf("Advance() error = %v", err)
		}
		if next != command.StatusClosed {
			t.Errorf("next = %q, want %q", next, command.StatusClosed)
		}
		if got := b.Orders(); len(got) != 0 {
			t.Errorf("orders = %+v, want the closed order dropped", got)
		}
	})

	t.Run("unknownOrder", func(t *testing.T) {
		b, _ := newBoard(t, command.StatusPending)
		if _, err := b.Advance(context.Background(), 99); err == nil {
			t.Error("Advance() should fail for an order not on the board")
		}
	})

	t.Run("backendFailureKeepsLocalStatus", func(t *testing.T) {
		b, client := newBoard(t, command.StatusPending)
		client.mu.Lock()
		client.updateErr = errors.New("backend down")
		client.mu.Unlock()

		if _, err := b.Advance(context.Background(), 1); err == nil {
			t.Fatal("Advance() should surface the update failure")
		}
		if got := b.Orders()[0].Status; got != command.StatusPending {
			t.Errorf("local status = %q, want unchanged %q", got, command.StatusPending)
		}
	})
}
