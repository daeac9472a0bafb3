package gateway

import (
	"context"

	"github.com/comandaclub/comanda/internal/menu"
)

// MockMenuClient lets tests script the upstream menu service per call.
type MockMenuClient struct {
	ListItemsFunc        func(ctx context.Context) ([]menu.MenuItem, error)
	ItemsByClassFunc     func(ctx context.Context, class int) ([]menu.MenuItem, error)
	CreateItemFunc       func(ctx context.Context, input menu.ItemInput) error
	UpdateItemFunc       func(ctx context.Context, id int, input menu.ItemInput) error
	DeleteItemFunc       func(ctx context.Context, id int) error
	ListSpecialitiesFunc func(ctx context.Context) ([]menu.Speciality, error)
	CreateSpecialityFunc func(ctx context.Context, name string) error
}

var _ menu.Client = (*MockMenuClient)(nil)

func NewMockMenuClient() *MockMenuClient {
	return &MockMenuClient{}
}

func (m *MockMenuClient) ListItems(ctx context.Context) ([]menu.MenuItem, error) {
	if m.ListItemsFunc != nil {
		return m.ListItemsFunc(ctx)
	}
	return []menu.MenuItem{}, nil
}

func (m *MockMenuClient) ItemsByClass(ctx context.Context, class int) ([]menu.MenuItem, error) {
	if m.ItemsByClassFunc != nil {
		return m.ItemsByClassFunc(ctx, class)
	}
	return []menu.MenuItem{}, nil
}

func (m *MockMenuClient) CreateItem(ctx context.Context, input menu.ItemInput) error {
	if m.CreateItemFunc != nil {
		return m.CreateItemFunc(ctx, input)
	}
	return nil
}

func (m *MockMenuClient) UpdateItem(ctx context.Context, id int, input menu.ItemInput) error {
	if m.UpdateItemFunc != nil {
		return m.UpdateItemFunc(ctx, id, input)
	}
	return nil
}

func (m *MockMenuClient) DeleteItem(ctx context.Context, id int) error {
	if m.DeleteItemFunc != nil {
		return m.DeleteItemFunc(ctx, id)
	}
	return nil
}

func (m *MockMenuClient) ListSpecialities(ctx context.Context) ([]menu.Speciality, error) {
	if m.ListSpecialitiesFunc != nil {
		return m.ListSpecialitiesFunc(ctx)
	}
	return []menu.Speciality{}, nil
}

func (m *MockMenuClient) CreateSpeciality(ctx context.Context, name string) error {
	if m.CreateSpecialityFunc != nil {
		return m.CreateSpecialityFunc(ctx, name)
	}
	return nil
}
