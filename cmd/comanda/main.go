package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/appetiteclub/apt"

	"github.com/comandaclub/comanda/cmd/comanda/internal/commands"
	"github.com/comandaclub/comanda/internal/menu"
)

const (
	appNamespace = "COMANDA"
	appName      = "comanda"
	appVersion   = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args, flags := splitArgs(os.Args[2:])

	config, err := apt.LoadConfig(appNamespace, flags)
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	if logLevel == "" {
		logLevel = "info"
	}
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	deps := commands.Build(config, logger)
	defer deps.Cart.Close()

	switch cmd {
	case "scan":
		if len(args) == 0 {
			fail(fmt.Errorf("usage: scan <table-id | qr-url>"))
		}
		fail(deps.Scan(args[0]))

	case "clear-session":
		fail(deps.ClearSession())

	case "menu":
		fail(deps.ShowMenu(ctx, menu.ClassFood))

	case "drinks":
		fail(deps.ShowMenu(ctx, menu.ClassDrinks))

	case "add":
		fail(deps.Add(ctx, args))

	case "remove":
		fail(deps.Remove(args))

	case "qty":
		fail(deps.Quantity(args))

	case "note":
		fail(deps.Note(args))

	case "cart":
		fail(deps.ShowCart())

	case "order":
		fail(deps.SendOrder(ctx))

	case "orders":
		fail(deps.TableOrders(ctx))

	case "watch":
		fail(deps.Watch(ctx))

	case "bill":
		fail(deps.Bill(ctx))

	case "board":
		fail(commands.Board(ctx, deps, config, logger))

	case "advance":
		fail(commands.Advance(ctx, deps, args, logger))

	case "version":
		fmt.Printf("%s version %s\n", appName, appVersion)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func fail(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// splitArgs separates positional arguments from config flags.
func splitArgs(raw []string) (args, flags []string) {
	for _, a := range raw {
		if strings.HasPrefix(a, "-") {
			flags = append(flags, a)
		} else if len(flags) > 0 {
			flags = append(flags, a)
		} else {
			args = append(args, a)
		}
	}
	return args, flags
}

func printUsage() {
	fmt.Printf(`%s — QR table ordering client

Usage: %s <command> [args] [flags]

Guest commands:
  scan <table-id | qr-url>   bind this device to a table
  menu                       show the food menu
  drinks                     show the drinks menu
  add <id> [qty] [notes]     add a menu item to the cart
  remove <id>                remove an item from the cart
  qty <id> <n>               change an item quantity
  note <id> <text>           set the note on an item
  cart                       show the cart and order history
  order                      submit the cart as an order
  orders                     show all orders on this table
  watch                      keep the table view refreshing
  bill                       request the bill
  clear-session              release the table binding

Staff commands:
  board                      run the kitchen/bar order board
  advance <order-id>         progress an order's status

Flags are read from config (COMANDA_* env), e.g. api.url, log.level,
session.ttl, confirm.reset, bill.reset, poll.interval, board.poll.
`, appName, appName)
}
