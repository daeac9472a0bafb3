package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/appetiteclub/apt"

	"github.com/comandaclub/comanda/internal/cart"
)

// Validation failures reported before any network call.
var (
	ErrEmptyCart = errors.New("cart is empty")
	ErrNoTable   = errors.New("no table resolved for this session")
	ErrInFlight  = errors.New("an order submission is already in flight")
)

// Sender translates the confirmed cart into an order-creation call and folds
// the outcome back into the cart store. A failed submission leaves the cart
// untouched so the guest can retry; submissions are not idempotent, so only
// one may run at a time.
type Sender struct {
	client Client
	cart   *cart.Store
	logger apt.Logger

	mu       sync.Mutex
	inFlight bool
}

func NewSender(client Client, cartStore *cart.Store, logger apt.Logger) *Sender {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if client == nil {
		client = NewNoopClient()
	}
	return &Sender{
		client: client,
		cart:   cartStore,
		logger: logger,
	}
}

// Send submits the current cart. On success the cart is confirmed into the
// history and the transient confirmation flag is scheduled to clear.
func (s *Sender) Send(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrInFlight
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	state := s.cart.State()
	if len(state.Items) == 0 {
		return ErrEmptyCart
	}
	if state.TableID == "" {
		return ErrNoTable
	}

	tableID, err := strconv.Atoi(state.TableID)
	if err != nil {
		return fmt.Errorf("%w: invalid table id %q", ErrNoTable, state.TableID)
	}

	req := CreateOrderRequest{
		TableID:                 tableID,
		MenuItemsWithQuantities: make([]CreateOrderItem, 0, len(state.Items)),
	}
	for _, item := range state.Items {
		line := CreateOrderItem{
			MenuItemID: item.ID,
			Quantity:   item.Quantity,
		}
		if item.Notes != "" {
			notes := item.Notes
			line.AdditionalNotes = &notes
		}
		req.MenuItemsWithQuantities = append(req.MenuItemsWithQuantities, line)
	}

	if err := s.client.Create(ctx, req); err != nil {
		s.logger.Error("order submission failed", "table_id", state.TableID, "error", err)
		return fmt.Errorf("cannot submit order: %w", err)
	}

	s.cart.Confirm()
	s.logger.Info("order submitted", "table_id", state.TableID, "items", len(state.Items), "total", state.Total)
	return nil
}
