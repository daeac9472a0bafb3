package command

import (
	"context"
	"sync"
	"time"

	"github.com/comandaclub/comanda/internal/cart"
	"github.com/comandaclub/comanda/internal/storage"
)

// MockClient lets tests script the backend per call.
type MockClient struct {
	mu sync.Mutex

	CreateFunc       func(ctx context.Context, req CreateOrderRequest) error
	TableOrdersFunc  func(ctx context.Context, tableID string) (*TableOrdersResponse, error)
	CloseFunc        func(ctx context.Context, tableID string) error
	ListAllFunc      func(ctx context.Context) ([]Order, error)
	UpdateStatusFunc func(ctx context.Context, orderID int, status string) error

	CreateCalls      []CreateOrderRequest
	TableOrdersCalls []string
	CloseCalls       []string
	ListAllCalls     int
	UpdateCalls      []struct {
		OrderID int
		Status  string
	}
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) Create(ctx context.Context, req CreateOrderRequest) error {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, req)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil
}

func (m *MockClient) TableOrders(ctx context.Context, tableID string) (*TableOrdersResponse, error) {
	m.mu.Lock()
	m.TableOrdersCalls = append(m.TableOrdersCalls, tableID)
	m.mu.Unlock()
	if m.TableOrdersFunc != nil {
		return m.TableOrdersFunc(ctx, tableID)
	}
	return &TableOrdersResponse{Orders: []Order{}}, nil
}

func (m *MockClient) Close(ctx context.Context, tableID string) error {
	m.mu.Lock()
	m.CloseCalls = append(m.CloseCalls, tableID)
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx, tableID)
	}
	return nil
}

func (m *MockClient) ListAll(ctx context.Context) ([]Order, error) {
	m.mu.Lock()
	m.ListAllCalls++
	m.mu.Unlock()
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return []Order{}, nil
}

func (m *MockClient) UpdateStatus(ctx context.Context, orderID int, status string) error {
	m.mu.Lock()
	m.UpdateCalls = append(m.UpdateCalls, struct {
		OrderID int
		Status  string
	}{orderID, status})
	m.mu.Unlock()
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, orderID, status)
	}
	return nil
}

func (m *MockClient) closedTables() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.CloseCalls...)
}

// newTestCart builds a cart store with the given table already bound. The
// confirm reset is kept long so tests never observe the flag clearing on
// its own.
func newTestCart(tableID string) *cart.Store {
	s := cart.NewStore(storage.NewNoopStore(), time.Hour, nil)
	if tableID != "" {
		s.Dispatch(cart.SetTableID{ID: tableID})
	}
	return s
}
