package commands

import (
	"os"
	"path/filepath"
	"time"

	"github.com/appetiteclub/apt"

	"github.com/comandaclub/comanda/internal/cart"
	"github.com/comandaclub/comanda/internal/command"
	"github.com/comandaclub/comanda/internal/menu"
	"github.com/comandaclub/comanda/internal/session"
	"github.com/comandaclub/comanda/internal/storage"
)

// Deps is the wired client core shared by every command.
type Deps struct {
	Cart         *cart.Store
	Session      *session.Store
	Orders       command.Client
	Menu         menu.Client
	Sender       *command.Sender
	Poller       *command.Poller
	Biller       *command.Biller
	ConfirmReset time.Duration
}

// Build wires storage, session, cart and the backend collaborators from
// config. Without a writable data directory the stores degrade to no-ops
// and the session lives only for this process.
func Build(config *apt.Config, logger apt.Logger) *Deps {
	apiURL := config.GetStringOrDef("api.url", "https://lmndev.com")

	durable, scoped := openStores(config, logger)

	confirmReset := durationOrDef(config, "confirm.reset", cart.DefaultConfirmReset)
	billReset := durationOrDef(config, "bill.reset", command.DefaultBillReset)
	pollInterval := durationOrDef(config, "poll.interval", command.DefaultPollInterval)
	sessionTTL := durationOrDef(config, "session.ttl", session.DefaultTTL)

	cartStore := cart.NewStore(durable, confirmReset, logger)
	sessionStore := session.NewStore(scoped, sessionTTL, logger)

	if current, ok := sessionStore.Current(); ok {
		cartStore.Dispatch(cart.SetTableID{ID: current.TableID})
	}

	orders := command.NewHTTPClient(apiURL)

	return &Deps{
		Cart:         cartStore,
		Session:      sessionStore,
		Orders:       orders,
		Menu:         menu.NewHTTPClient(apiURL),
		Sender:       command.NewSender(orders, cartStore, logger),
		Poller:       command.NewPoller(orders, cartStore, pollInterval, logger),
		Biller:       command.NewBiller(orders, cartStore, billReset, logger),
		ConfirmReset: confirmReset,
	}
}

// openStores resolves the durable and session-scoped stores. Any failure to
// find a writable location falls back to no-op storage rather than failing.
func openStores(config *apt.Config, logger apt.Logger) (storage.Store, storage.Store) {
	dataDir, _ := config.GetString("data.dir")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Info("no writable data dir, state will not persist")
			return storage.NewNoopStore(), storage.NewNoopStore()
		}
		dataDir = filepath.Join(home, ".comanda")
	}

	durable := storage.NewFileStore(filepath.Join(dataDir, "state.json"))
	scoped := storage.NewFileStore(filepath.Join(dataDir, "session.json"))
	return durable, scoped
}

func durationOrDef(config *apt.Config, key string, def time.Duration) time.Duration {
	raw, _ := config.GetString(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
