package cart

// CartItem is one line of the in-progress order. Items are never mutated in
// place; every reducer transition produces fresh records.
type CartItem struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Notes    string  `json:"notes,omitempty"`
}

// Order is an immutable snapshot of a cart at confirmation time. Timestamp
// is unix milliseconds. ID stays zero until the backend assigns one.
type Order struct {
	ID        int        `json:"id,omitempty"`
	Items     []CartItem `json:"items"`
	Timestamp int64      `json:"timestamp"`
	Total     float64    `json:"total"`
	TableID   string     `json:"tableId,omitempty"`
	UserID    string     `json:"userId,omitempty"`
}

// State is the root aggregate for a table session: the unconfirmed cart,
// the confirmation history of this device, and the table-wide view reported
// by the backend. It is owned exclusively by the reducer; everything else
// reads snapshots and mutates by dispatching actions.
type State struct {
	Items            []CartItem `json:"items"`
	Total            float64    `json:"total"`
	OrderHistory     []Order    `json:"orderHistory"`
	TableOrders      []Order    `json:"tableOrders"`
	IsOrderConfirmed bool       `json:"isOrderConfirmed"`
	IsTableActive    bool       `json:"isTableActive"`
	TableID          string     `json:"tableId,omitempty"`
	UserID           string     `json:"userId,omitempty"`
}

// DefaultState is the state of a device that has never ordered.
func DefaultState() State {
	return State{
		Items:         []CartItem{},
		OrderHistory:  []Order{},
		TableOrders:   []Order{},
		IsTableActive: true,
	}
}

// itemsTotal folds price*quantity over items. State.Total is always exactly
// this value; no action sets it independently.
func itemsTotal(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
