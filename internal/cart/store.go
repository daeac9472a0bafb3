package cart

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/comandaclub/comanda/internal/storage"
)

const (
	stateKey = "cartState"
	userKey  = "userId"

	// DefaultConfirmReset is how long the confirmed flag stays up before
	// the transient confirmation clears.
	DefaultConfirmReset = 3 * time.Second
)

// Store owns the cart aggregate for this device: it loads and sanitizes the
// persisted snapshot, funnels every mutation through the reducer, and writes
// the new state back after each transition. Persistence failures are logged
// and swallowed; the in-memory state stays authoritative for the session.
type Store struct {
	mu     sync.Mutex
	state  State
	kv     storage.Store
	logger apt.Logger
	now    func() time.Time

	confirmReset time.Duration
	confirmTimer *time.Timer
}

func NewStore(kv storage.Store, confirmReset time.Duration, logger apt.Logger) *Store {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if kv == nil {
		kv = storage.NewNoopStore()
	}
	if confirmReset <= 0 {
		confirmReset = DefaultConfirmReset
	}

	s := &Store{
		kv:           kv,
		logger:       logger,
		now:          time.Now,
		confirmReset: confirmReset,
		state:        DefaultState(),
	}

	if raw, ok := kv.Get(stateKey); ok {
		s.state = Sanitize([]byte(raw))
	}
	s.ensureUserID()

	return s
}

// State returns a snapshot. The slices are copied so readers can never
// reach into reducer-owned data.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.state)
}

// Dispatch runs one action through the reducer and persists the result.
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(action)
}

// Add puts an item in the cart, merging quantities on repeated ids.
func (s *Store) Add(item CartItem) State {
	return s.Dispatch(AddItem{Item: item})
}

// Remove drops the item with the given id.
func (s *Store) Remove(id int) State {
	return s.Dispatch(RemoveItem{ID: id})
}

// ChangeQuantity sets an item's quantity. Anything below one removes the
// item instead; the reducer itself does not clamp.
func (s *Store) ChangeQuantity(id, quantity int) State {
	if quantity < 1 {
		return s.Dispatch(RemoveItem{ID: id})
	}
	return s.Dispatch(UpdateQuantity{ID: id, Quantity: quantity})
}

// Confirm snapshots the cart into the history and raises the transient
// confirmed flag, which clears itself after the configured delay. It
// reports whether anything was confirmed.
func (s *Store) Confirm() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.state.Items) == 0 || !s.state.IsTableActive {
		return false
	}

	s.apply(ConfirmOrder{At: s.now()})

	if s.confirmTimer != nil {
		s.confirmTimer.Stop()
	}
	s.confirmTimer = time.AfterFunc(s.confirmReset, func() {
		s.Dispatch(ResetOrderConfirmation{})
	})

	return true
}

// Close stops the pending confirmation timer.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmTimer != nil {
		s.confirmTimer.Stop()
		s.confirmTimer = nil
	}
}

// apply reduces and persists. Callers hold the lock.
func (s *Store) apply(action Action) State {
	s.state = Reduce(s.state, action)
	s.persist()
	return snapshot(s.state)
}

func (s *Store) persist() {
	raw, err := json.Marshal(s.state)
	if err == nil {
		err = s.kv.Set(stateKey, string(raw))
	}
	if err != nil {
		s.logger.Error("cannot persist cart state", "error", err)
	}
}

// ensureUserID makes sure this device carries a stable pseudo-identity: the
// durable store wins, then the snapshot, then a freshly generated id.
func (s *Store) ensureUserID() {
	if id, ok := s.kv.Get(userKey); ok && id != "" {
		if s.state.UserID != id {
			s.apply(SetUserID{ID: id})
		}
		return
	}

	id := s.state.UserID
	if id == "" {
		id = fmt.Sprintf("user_%s", uuid.NewString())
		s.apply(SetUserID{ID: id})
	}

	if err := s.kv.Set(userKey, id); err != nil {
		s.logger.Error("cannot persist user id", "error", err)
	}
}

func snapshot(state State) State {
	state.Items = append(make([]CartItem, 0, len(state.Items)), state.Items...)
	state.OrderHistory = append(make([]Order, 0, len(state.OrderHistory)), state.OrderHistory...)
	state.TableOrders = append(make([]Order, 0, len(state.TableOrders)), state.TableOrders...)
	return state
}
