package cart

import "time"

// Action is a cart state transition request. The concrete types below form
// the full action set; anything else leaves the state untouched.
type Action interface {
	isAction()
}

type AddItem struct {
	Item CartItem
}

type RemoveItem struct {
	ID int
}

// UpdateQuantity sets the quantity of the matching item as given. It does
// not clamp; callers translate quantity < 1 into RemoveItem.
type UpdateQuantity struct {
	ID       int
	Quantity int
}

type UpdateNotes struct {
	ID    int
	Notes string
}

type ClearCart struct{}

// ConfirmOrder snapshots the cart into the order history. At is the
// confirmation instant, supplied by the dispatcher so the transition itself
// stays deterministic.
type ConfirmOrder struct {
	At time.Time
}

type ResetOrderConfirmation struct{}

type RequestBill struct{}

type SetBillRequested struct {
	Requested bool
}

// ResetTable returns the aggregate to empty while keeping the table and
// user identity.
type ResetTable struct{}

type SetTableID struct {
	ID string
}

type SetUserID struct {
	ID string
}

type SetTableOrders struct {
	Orders []Order
}

func (AddItem) isAction()                {}
func (RemoveItem) isAction()             {}
func (UpdateQuantity) isAction()         {}
func (UpdateNotes) isAction()            {}
func (ClearCart) isAction()              {}
func (ConfirmOrder) isAction()           {}
func (ResetOrderConfirmation) isAction() {}
func (RequestBill) isAction()            {}
func (SetBillRequested) isAction()       {}
func (ResetTable) isAction()             {}
func (SetTableID) isAction()             {}
func (SetUserID) isAction()              {}
func (SetTableOrders) isAction()         {}

// Reduce applies one action to the state and returns the next state. It is
// pure: no persistence, no clocks, no logging. Cart mutations are no-ops
// once the bill has been requested; identity, table-orders and bill/reset
// actions stay permitted so the session can still converge and recover.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case SetTableID:
		state.TableID = a.ID
		return state

	case SetUserID:
		state.UserID = a.ID
		return state

	case SetTableOrders:
		state.TableOrders = a.Orders
		return state

	case AddItem:
		if !state.IsTableActive {
			return state
		}
		return withItems(state, addItem(state.Items, a.Item))

	case RemoveItem:
		if !state.IsTableActive {
			return state
		}
		items := make([]CartItem, 0, len(state.Items))
		for _, item := range state.Items {
			if item.ID != a.ID {
				items = append(items, item)
			}
		}
		return withItems(state, items)

	case UpdateQuantity:
		if !state.IsTableActive {
			return state
		}
		items := mapItem(state.Items, a.ID, func(item CartItem) CartItem {
			item.Quantity = a.Quantity
			return item
		})
		return withItems(state, items)

	case UpdateNotes:
		if !state.IsTableActive {
			return state
		}
		state.Items = mapItem(state.Items, a.ID, func(item CartItem) CartItem {
			item.Notes = a.Notes
			return item
		})
		return state

	case ClearCart:
		if !state.IsTableActive {
			return state
		}
		return withItems(state, []CartItem{})

	case ConfirmOrder:
		if !state.IsTableActive || len(state.Items) == 0 {
			return state
		}
		order := Order{
			Items:     state.Items,
			Timestamp: a.At.UnixMilli(),
			Total:     itemsTotal(state.Items),
			TableID:   state.TableID,
			UserID:    state.UserID,
		}
		history := make([]Order, 0, len(state.OrderHistory)+1)
		history = append(history, state.OrderHistory...)
		history = append(history, order)

		state.OrderHistory = history
		state.Items = []CartItem{}
		state.Total = 0
		state.IsOrderConfirmed = true
		return state

	case ResetOrderConfirmation:
		state.IsOrderConfirmed = false
		return state

	case RequestBill:
		state.IsTableActive = false
		return state

	case SetBillRequested:
		state.IsTableActive = !a.Requested
		return state

	case ResetTable:
		return State{
			Items:         []CartItem{},
			OrderHistory:  []Order{},
			TableOrders:   []Order{},
			IsTableActive: true,
			TableID:       state.TableID,
			UserID:        state.UserID,
		}
	}

	return state
}

// addItem merges the payload into an existing line with the same id, or
// appends a new line. Merging adds quantities and replaces notes only when
// the payload carries some.
func addItem(items []CartItem, payload CartItem) []CartItem {
	for _, item := range items {
		if item.ID != payload.ID {
			continue
		}
		return mapItem(items, payload.ID, func(item CartItem) CartItem {
			item.Quantity += payload.Quantity
			if payload.Notes != "" {
				item.Notes = payload.Notes
			}
			return item
		})
	}

	merged := make([]CartItem, 0, len(items)+1)
	merged = append(merged, items...)
	merged = append(merged, payload)
	return merged
}

// mapItem rewrites the item with the given id through fn, copying the slice.
func mapItem(items []CartItem, id int, fn func(CartItem) CartItem) []CartItem {
	mapped := make([]CartItem, len(items))
	for i, item := range items {
		if item.ID == id {
			item = fn(item)
		}
		mapped[i] = item
	}
	return mapped
}

func withItems(state State, items []CartItem) State {
	state.Items = items
	state.Total = itemsTotal(items)
	return state
}
