package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/appetiteclub/apt"

	"github.com/comandaclub/comanda/internal/board"
	"github.com/comandaclub/comanda/internal/command"
)

// Board runs the staff order board until interrupted, printing the active
// snapshot on every refresh and announcing newly arrived orders.
func Board(ctx context.Context, deps *Deps, config *apt.Config, logger apt.Logger) error {
	interval := durationOrDef(config, "board.poll", board.DefaultPollInterval)
	b := board.New(deps.Orders, interval, logger)
	b.OnNewOrder(func(order board.Order) {
		fmt.Printf("\a* New order #%d (%s, table %s)\n", order.ID, order.Type, order.Table)
	})

	if err := b.Start(ctx); err != nil {
		return err
	}
	defer b.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	printBoard(b)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			printBoard(b)
		}
	}
}

// Advance moves one order to its next workflow status.
func Advance(ctx context.Context, deps *Deps, args []string, logger apt.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: advance <order-id>")
	}
	orderID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid order id %q", args[0])
	}

	b := board.New(deps.Orders, board.DefaultPollInterval, logger)
	if err := b.RefreshOnce(ctx); err != nil {
		return err
	}

	status, err := b.Advance(ctx, orderID)
	if err != nil {
		return err
	}
	fmt.Printf("Order #%d is now %s\n", orderID, status)
	return nil
}

func printBoard(b *board.Board) {
	for _, orderType := range []string{board.TypeFood, board.TypeDrinks} {
		fmt.Printf("\n== %s ==\n", orderType)
		for _, status := range []string{command.StatusPending, command.StatusInProgress} {
			for _, order := range b.Filtered(orderType, status) {
				fmt.Printf("#%d table %s [%s]\n", order.ID, order.Table, order.Status)
				for _, item := range order.Items {
					fmt.Printf("  %dx %s\n", item.Quantity, item.Name)
					if item.Notes != "" {
						fmt.Printf("      note: %s\n", item.Notes)
					}
				}
			}
		}
	}
}
