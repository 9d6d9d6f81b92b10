package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aegis/userkit/internal/domain"
	"github.com/aegis/userkit/internal/port"
)

// Client talks to the user API served by Handler
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Register creates a user on the server and returns its ID
func (c *Client) Register(ctx context.Context, name, email, password string) (int, error) {
	body, err := json.Marshal(map[string]string{"name": name, "email": email, "password": password})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/users", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return 0, statusError(resp.StatusCode)
	}
	var r struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return 0, err
	}
	if r.ID == 0 {
		return 0, fmt.Errorf("server returned empty user id")
	}
	return r.ID, nil
}

// Validate returns the display name of a valid user
func (c *Client) Validate(ctx context.Context, id int) (string, error) {
	url := fmt.Sprintf("%s/api/users/%d/validate", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode)
	}
	var r struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", err
	}
	return r.DisplayName, nil
}

func statusError(code int) error {
	switch code {
	case http.StatusNotFound:
		return port.ErrNotFound
	case http.StatusConflict:
		return port.ErrAlreadyExists
	case http.StatusUnprocessableEntity:
		return domain.ErrInvalidUser
	}
	return fmt.Errorf("unexpected status: %d", code)
}
