package cart

import (
	"encoding/json"
	"errors"
	"time"
)

// persistedState mirrors State with every field left raw so each one can be
// validated independently. Persisted snapshots survive application updates,
// so the shape on disk is never trusted.
type persistedState struct {
	Items            json.RawMessage `json:"items"`
	Total            json.RawMessage `json:"total"`
	OrderHistory     json.RawMessage `json:"orderHistory"`
	TableOrders      json.RawMessage `json:"tableOrders"`
	IsOrderConfirmed json.RawMessage `json:"isOrderConfirmed"`
	IsTableActive    json.RawMessage `json:"isTableActive"`
	TableID          json.RawMessage `json:"tableId"`
	UserID           json.RawMessage `json:"userId"`
}

// Sanitize decodes a persisted snapshot, substituting safe defaults for any
// missing or malformed field. It never fails: the worst input yields
// DefaultState.
func Sanitize(raw []byte) State {
	state := DefaultState()

	var persisted persistedState
	if err := json.Unmarshal(raw, &persisted); err != nil {
		return state
	}

	if items, ok := decodeItems(persisted.Items); ok {
		state.Items = items
	}
	if total, ok := decodeNumber(persisted.Total); ok {
		state.Total = total
	}
	state.OrderHistory = decodeOrders(persisted.OrderHistory)
	state.TableOrders = decodeOrders(persisted.TableOrders)

	var confirmed bool
	if persisted.IsOrderConfirmed != nil && json.Unmarshal(persisted.IsOrderConfirmed, &confirmed) == nil {
		state.IsOrderConfirmed = confirmed
	}

	// The table counts as active unless the snapshot explicitly says false.
	var active bool
	if persisted.IsTableActive != nil && json.Unmarshal(persisted.IsTableActive, &active) == nil {
		state.IsTableActive = active
	}

	if id, ok := decodeString(persisted.TableID); ok {
		state.TableID = id
	}
	if id, ok := decodeString(persisted.UserID); ok {
		state.UserID = id
	}

	return state
}

func decodeItems(raw json.RawMessage) ([]CartItem, bool) {
	if raw == nil {
		return nil, false
	}
	var items []CartItem
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}
	return items, true
}

// decodeOrders keeps every decodable order, defaulting the fields the
// display layer depends on.
func decodeOrders(raw json.RawMessage) []Order {
	orders := []Order{}
	if raw == nil {
		return orders
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return orders
	}

	for _, entry := range entries {
		var order Order
		if err := json.Unmarshal(entry, &order); err != nil {
			// A mistyped field zeroes out and the rest survives;
			// anything worse drops the order.
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				continue
			}
		}
		if order.Items == nil {
			order.Items = []CartItem{}
		}
		if order.Timestamp == 0 {
			order.Timestamp = time.Now().UnixMilli()
		}
		orders = append(orders, order)
	}

	return orders
}

func decodeNumber(raw json.RawMessage) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

func decodeString(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
