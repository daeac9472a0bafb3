package menu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// Client is the outbound contract with the menu side of the backend:
// browsing for guests, item and category CRUD for staff.
type Client interface {
	ListItems(ctx context.Context) ([]MenuItem, error)
	ItemsByClass(ctx context.Context, class int) ([]MenuItem, error)
	CreateItem(ctx context.Context, input ItemInput) error
	UpdateItem(ctx context.Context, id int, input ItemInput) error
	DeleteItem(ctx context.Context, id int) error
	ListSpecialities(ctx context.Context) ([]Speciality, error)
	CreateSpeciality(ctx context.Context, name string) error
}

// HTTPClient implements Client against the backend menu endpoints.
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

// ListItems fetches the whole menu.
func (c *HTTPClient) ListItems(ctx context.Context) ([]MenuItem, error) {
	var items []MenuItem
	if err := c.getJSON(ctx, "/menuItem/viewAllMenuItems", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ItemsByClass fetches one side of the menu (ClassFood or ClassDrinks).
func (c *HTTPClient) ItemsByClass(ctx context.Context, class int) ([]MenuItem, error) {
	var items []MenuItem
	path := fmt.Sprintf("/menuItem/viewMenuItemsBySpecialityClass/%d", class)
	if err := c.getJSON(ctx, path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateItem adds a menu item. The backend takes these writes as multipart
// form fields.
func (c *HTTPClient) CreateItem(ctx context.Context, input ItemInput) error {
	return c.submitItemForm(ctx, http.MethodPost, "/menuItem/submitCreateMenuItem", input)
}

// UpdateItem rewrites an existing menu item.
func (c *HTTPClient) UpdateItem(ctx context.Context, id int, input ItemInput) error {
	path := fmt.Sprintf("/menuItem/updateMenuItem/%d", id)
	return c.submitItemForm(ctx, http.MethodPut, path, input)
}

// DeleteItem removes a menu item.
func (c *HTTPClient) DeleteItem(ctx context.Context, id int) error {
	path := fmt.Sprintf("/menuItem/deleteMenuItem/%d", id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	return c.expectSuccess(req)
}

// ListSpecialities fetches all menu categories.
func (c *HTTPClient) ListSpecialities(ctx context.Context) ([]Speciality, error) {
	var specialities []Speciality
	if err := c.getJSON(ctx, "/speciality/allSpeciality", &specialities); err != nil {
		return nil, err
	}
	return specialities, nil
}

// CreateSpeciality adds a menu category.
func (c *HTTPClient) CreateSpeciality(ctx context.Context, name string) error {
	payload := struct {
		Name string `json:"name"`
	}{Name: name}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/speciality/create", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.expectSuccess(req)
}

func (c *HTTPClient) submitItemForm(ctx context.Context, method, path string, input ItemInput) error {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	fields := map[string]string{
		"name":         input.Name,
		"description":  input.Description,
		"price":        strconv.FormatFloat(input.Price, 'f', -1, 64),
		"specialityId": strconv.Itoa(input.SpecialityID),
		"ingredients":  input.Ingredients,
	}
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return fmt.Errorf("encode form failed: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("encode form failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &body)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	return c.expectSuccess(req)
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("menu service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("menu service returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) expectSuccess(req *http.Request) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("menu service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("menu service returned status %d", resp.StatusCode)
	}
	return nil
}

// NoopClient is a no-op implementation for testing or offline operation.
type NoopClient struct{}

func NewNoopClient() *NoopClient {
	return &NoopClient{}
}

func (c *NoopClient) ListItems(context.Context) ([]MenuItem, error) { return []MenuItem{}, nil }

func (c *NoopClient) ItemsByClass(context.Context, int) ([]MenuItem, error) {
	return []MenuItem{}, nil
}

func (c *NoopClient) CreateItem(context.Context, ItemInput) error { return nil }

func (c *NoopClient) UpdateItem(context.Context, int, ItemInput) error { return nil }

func (c *NoopClient) DeleteItem(context.Context, int) error { return nil }

func (c *NoopClient) ListSpecialities(context.Context) ([]Speciality, error) {
	return []Speciality{}, nil
}

func (c *NoopClient) CreateSpeciality(context.Context, string) error { return nil }
