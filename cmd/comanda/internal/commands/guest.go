package commands

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/comandaclub/comanda/internal/cart"
	"github.com/comandaclub/comanda/internal/menu"
)

// Scan binds this device to a table, either from a raw table id or from a
// scanned QR code URL carrying a tableId query parameter.
func (d *Deps) Scan(arg string) error {
	tableID := arg

	if u, err := url.Parse(arg); err == nil && u.RawQuery != "" {
		if id, ok := d.Session.Resolve(u.Query()); ok {
			tableID = id
		}
	} else {
		d.Session.Bind(tableID)
	}

	if tableID == "" {
		return fmt.Errorf("no table id in %q", arg)
	}

	d.Cart.Dispatch(cart.SetTableID{ID: tableID})
	fmt.Printf("Bound to table %s\n", tableID)
	return nil
}

// ClearSession releases the table binding.
func (d *Deps) ClearSession() error {
	d.Session.Clear()
	fmt.Println("Table session cleared")
	return nil
}

// ShowMenu prints one side of the menu grouped by category.
func (d *Deps) ShowMenu(ctx context.Context, class int) error {
	items, err := d.Menu.ItemsByClass(ctx, class)
	if err != nil {
		return err
	}

	for _, section := range menu.GroupByCategory(items) {
		fmt.Printf("\n%s\n", section.Title)
		for _, item := range section.Items {
			fmt.Printf("  [%d] %s — %.2f\n", item.ID, item.Name, item.Price)
			if item.Description != "" {
				fmt.Printf("      %s\n", item.Description)
			}
		}
	}
	return nil
}

// Add looks the item up on the menu and puts it in the cart.
func (d *Deps) Add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: add <item-id> [quantity] [notes]")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid item id %q", args[0])
	}

	quantity := 1
	if len(args) > 1 {
		quantity, err = strconv.Atoi(args[1])
		if err != nil || quantity < 1 {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
	}
	notes := strings.Join(args[2:], " ")

	items, err := d.Menu.ListItems(ctx)
	if err != nil {
		return err
	}

	for _, item := range items {
		if item.ID != id {
			continue
		}
		state := d.Cart.Add(cart.CartItem{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: quantity,
			Notes:    notes,
		})
		if !state.IsTableActive {
			return fmt.Errorf("the bill has been requested, the table no longer accepts orders")
		}
		fmt.Printf("Added %dx %s — cart total %.2f\n", quantity, item.Name, state.Total)
		return nil
	}

	return fmt.Errorf("menu item %d not found", id)
}

// Remove drops an item from the cart.
func (d *Deps) Remove(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: remove <item-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid item id %q", args[0])
	}

	state := d.Cart.Remove(id)
	fmt.Printf("Removed item %d — cart total %.2f\n", id, state.Total)
	return nil
}

// Quantity changes an item's quantity; below one it removes the item.
func (d *Deps) Quantity(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: qty <item-id> <quantity>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid item id %q", args[0])
	}
	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}

	state := d.Cart.ChangeQuantity(id, quantity)
	fmt.Printf("Cart total %.2f\n", state.Total)
	return nil
}

// Note replaces the free-text note on a cart item.
func (d *Deps) Note(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: note <item-id> <text>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid item id %q", args[0])
	}

	d.Cart.Dispatch(cart.UpdateNotes{ID: id, Notes: strings.Join(args[1:], " ")})
	return nil
}

// ShowCart prints the unconfirmed cart and the device's order history.
func (d *Deps) ShowCart() error {
	state := d.Cart.State()

	if len(state.Items) == 0 {
		fmt.Println("Cart is empty")
	}
	for _, item := range state.Items {
		fmt.Printf("  %dx [%d] %s — %.2f\n", item.Quantity, item.ID, item.Name, item.Price*float64(item.Quantity))
		if item.Notes != "" {
			fmt.Printf("      note: %s\n", item.Notes)
		}
	}
	fmt.Printf("Total: %.2f\n", state.Total)

	if len(state.OrderHistory) > 0 {
		fmt.Printf("\nConfirmed orders: %d\n", len(state.OrderHistory))
		for _, order := range state.OrderHistory {
			at := time.UnixMilli(order.Timestamp).Format("15:04")
			fmt.Printf("  %s — %d items, %.2f\n", at, len(order.Items), order.Total)
		}
	}
	return nil
}

// SendOrder submits the cart, then lingers until the transient confirmation
// clears so the persisted snapshot is settled when the process exits.
func (d *Deps) SendOrder(ctx context.Context) error {
	if err := d.Sender.Send(ctx); err != nil {
		return err
	}
	fmt.Println("Order submitted")

	select {
	case <-ctx.Done():
	case <-time.After(d.ConfirmReset + 100*time.Millisecond):
	}
	return nil
}

// TableOrders polls once and prints every order on this table.
func (d *Deps) TableOrders(ctx context.Context) error {
	if err := d.Poller.PollOnce(ctx); err != nil {
		return err
	}

	state := d.Cart.State()
	if !state.IsTableActive {
		fmt.Println("The bill has been requested for this table")
	}
	if len(state.TableOrders) == 0 {
		fmt.Println("No orders on this table yet")
		return nil
	}

	for _, order := range state.TableOrders {
		mine := ""
		if order.UserID != "" && order.UserID == state.UserID {
			mine = " (mine)"
		}
		fmt.Printf("Order #%d%s — %.2f\n", order.ID, mine, order.Total)
		for _, item := range order.Items {
			fmt.Printf("  %dx %s\n", item.Quantity, item.Name)
		}
	}
	return nil
}

// Watch keeps the table-wide view refreshing until interrupted.
func (d *Deps) Watch(ctx context.Context) error {
	if err := d.Poller.Start(ctx); err != nil {
		return err
	}
	defer d.Poller.Stop()

	<-ctx.Done()
	return nil
}

// Bill requests the bill and stays alive through the reset countdown so the
// table closes and resets even if the guest walks away.
func (d *Deps) Bill(ctx context.Context) error {
	state := d.Cart.State()
	if state.TableID == "" {
		return fmt.Errorf("no table resolved for this session")
	}

	d.Biller.Request()
	fmt.Println("Bill requested — the table will reset shortly")

	if err := d.Biller.Wait(ctx); err != nil {
		d.Biller.Cancel()
		return err
	}
	fmt.Println("Table reset")
	return nil
}
