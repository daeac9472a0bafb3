package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Order statuses used by the kitchen/bar workflow.
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusClosed     = "CLOSED"
)

// CreateOrderItem is one line of an order-creation request.
type CreateOrderItem struct {
	MenuItemID      int     `json:"menuItemId"`
	Quantity        int     `json:"quantity"`
	AdditionalNotes *string `json:"additionalNotes"`
}

// CreateOrderRequest is the payload for POST /command.
type CreateOrderRequest struct {
	TableID                 int               `json:"tableId"`
	MenuItemsWithQuantities []CreateOrderItem `json:"menuItemsWithQuantities"`
}

// TableRef identifies the table an order belongs to.
type TableRef struct {
	ID        int    `json:"id"`
	TableName string `json:"tableName"`
}

// SpecialityClassRef names the coarse menu class (food or drinks).
type SpecialityClassRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SpecialityRef is the category a menu item belongs to.
type SpecialityRef struct {
	ID              int                 `json:"id"`
	Name            string              `json:"name"`
	SpecialityClass *SpecialityClassRef `json:"specialityClass,omitempty"`
}

// MenuItemRef is the menu item embedded in an order record.
type MenuItemRef struct {
	ID         int            `json:"id"`
	Name       string         `json:"name"`
	Price      float64        `json:"price"`
	Speciality *SpecialityRef `json:"speciality,omitempty"`
}

// OrderLine is one quantity record inside a backend order.
type OrderLine struct {
	ID              int         `json:"id"`
	MenuItem        MenuItemRef `json:"menuItem"`
	Quantity        int         `json:"quantity"`
	AdditionalNotes *string     `json:"additionalNotes"`
}

// Order is the backend's order record.
type Order struct {
	ID                      int         `json:"id"`
	Table                   TableRef    `json:"table"`
	MenuItemsWithQuantities []OrderLine `json:"menuItemsWithQuantities"`
	Status                  string      `json:"status"`
}

// TableOrdersResponse is the table-wide view returned for one table.
type TableOrdersResponse struct {
	Orders        []Order `json:"orders"`
	BillRequested bool    `json:"billRequested"`
}

// Client is the outbound contract with the order-management backend.
type Client interface {
	Create(ctx context.Context, req CreateOrderRequest) error
	TableOrders(ctx context.Context, tableID string) (*TableOrdersResponse, error)
	Close(ctx context.Context, tableID string) error
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID int, status string) error
}

// HTTPClient implements Client over the backend's REST surface.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Create submits a confirmed cart. Only the status matters; the response
// body is discarded.
func (c *HTTPClient) Create(ctx context.Context, req CreateOrderRequest) error {
	return c.do(ctx, http.MethodPost, "/command", req, nil)
}

// TableOrders fetches every order for a table plus the bill-requested flag.
func (c *HTTPClient) TableOrders(ctx context.Context, tableID string) (*TableOrdersResponse, error) {
	var resp TableOrdersResponse
	path := fmt.Sprintf("/command/table/%s", tableID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Close marks the table's orders closed once the bill has been settled.
func (c *HTTPClient) Close(ctx context.Context, tableID string) error {
	path := fmt.Sprintf("/command/close/%s", tableID)
	return c.do(ctx, http.MethodPut, path, nil, nil)
}

// ListAll fetches every order across tables for the staff board.
func (c *HTTPClient) ListAll(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/command/viewAllCommand", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves an order through the kitchen/bar workflow.
func (c *HTTPClient) UpdateStatus(ctx context.Context, orderID int, status string) error {
	path := fmt.Sprintf("/command/%d", orderID)
	payload := struct {
		Status string `json:"status"`
	}{Status: status}
	return c.do(ctx, http.MethodPatch, path, payload, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request failed: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("order service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("order service returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// NoopClient is a no-op implementation for testing or offline operation.
type NoopClient struct{}

func NewNoopClient() *NoopClient {
	return &NoopClient{}
}

func (c *NoopClient) Create(context.Context, CreateOrderRequest) error { return nil }

func (c *NoopClient) TableOrders(context.Context, string) (*TableOrdersResponse, error) {
	return &TableOrdersResponse{Orders: []Order{}}, nil
}

func (c *NoopClient) Close(context.Context, string) error { return nil }

func (c *NoopClient) ListAll(context.Context) ([]Order, error) { return []Order{}, nil }

func (c *NoopClient) UpdateStatus(context.Context, int, string) error { return nil }
