package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/bergason/inventory"
)

const defaultTimeout = 10 * time.Second

// Client is a typed HTTP client for an inventory server. Locked verification
// records are immutable, so they are cached locally once seen.
type Client struct {
	client    *http.Client
	cache     *cache.Cache
	baseURL   string
	userAgent string
}

func New(baseURL string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:    &httpClient,
		cache:     cache.New(10*time.Minute, 15*time.Minute),
		baseURL:   baseURL,
		userAgent: "inventory-client",
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

func (c *Client) request(ctx context.Context, method, path string, body, response any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if response == nil {
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}

	return nil
}

func (c *Client) CreateInventory(ctx context.Context, content inventory.Content) (inventory.InventoryView, error) {
	var view inventory.InventoryView
	err := c.request(ctx, http.MethodPost, "/api/inventories", content, &view)
	if err != nil {
		return inventory.InventoryView{}, fmt.Errorf("failed to create inventory: %v", err)
	}
	return view, nil
}

func (c *Client) Inventory(ctx context.Context, id string) (inventory.InventoryView, error) {
	var view inventory.InventoryView
	err := c.request(ctx, http.MethodGet, "/api/inventories/"+id, nil, &view)
	if err != nil {
		return inventory.InventoryView{}, fmt.Errorf("failed to get inventory: %v", err)
	}
	return view, nil
}

func (c *Client) Inventories(ctx context.Context) ([]inventory.InventoryView, error) {
	var views []inventory.InventoryView
	err := c.request(ctx, http.MethodGet, "/api/inventories", nil, &views)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventories: %v", err)
	}
	return views, nil
}

func (c *Client) UpdateInventory(ctx context.Context, id string, content inventory.Content) (inventory.InventoryView, error) {
	var view inventory.InventoryView
	err := c.request(ctx, http.MethodPut, "/api/inventories/"+id, content, &view)
	if err != nil {
		return inventory.InventoryView{}, fmt.Errorf("failed to update inventory: %v", err)
	}
	return view, nil
}

func (c *Client) DeleteInventory(ctx context.Context, id string) error {
	err := c.request(ctx, http.MethodDelete, "/api/inventories/"+id, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to delete inventory: %v", err)
	}
	return nil
}

// GenerateLink issues the share link for an inventory. Calling it again
// returns the same link; the server never rotates a token once issued.
func (c *Client) GenerateLink(ctx context.Context, id string) (inventory.ShareLink, error) {
	var link inventory.ShareLink
	err := c.request(ctx, http.MethodPost, "/api/inventories/"+id+"/generate-link", nil, &link)
	if err != nil {
		return inventory.ShareLink{}, fmt.Errorf("failed to generate link: %v", err)
	}
	return link, nil
}

func (c *Client) SigningView(ctx context.Context, token string) (inventory.SigningView, error) {
	var view inventory.SigningView
	err := c.request(ctx, http.MethodGet, "/api/sign/"+token, nil, &view)
	if err != nil {
		return inventory.SigningView{}, fmt.Errorf("failed to get signing view: %v", err)
	}
	return view, nil
}

func (c *Client) SubmitSignature(ctx context.Context, token string, sub inventory.SignatureSubmission) (inventory.SignatureView, error) {
	var resp struct {
		Entry inventory.SignatureView `json:"entry"`
	}
	err := c.request(ctx, http.MethodPost, "/api/sign/"+token+"/submit", sub, &resp)
	if err != nil {
		return inventory.SignatureView{}, fmt.Errorf("failed to submit signature: %v", err)
	}
	return resp.Entry, nil
}

func (c *Client) Lock(ctx context.Context, token string) error {
	err := c.request(ctx, http.MethodPost, "/api/sign/"+token+"/lock", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to lock inventory: %v", err)
	}
	return nil
}

func (c *Client) Verify(ctx context.Context, token string) (inventory.VerificationRecord, error) {
	cacheKey := inventory.TokenCacheKey("client-verify", token)
	x, found := c.cache.Get(cacheKey)
	if found {
		return x.(inventory.VerificationRecord), nil
	}

	var rec inventory.VerificationRecord
	err := c.request(ctx, http.MethodGet, "/api/verify/"+token, nil, &rec)
	if err != nil {
		return inventory.VerificationRecord{}, fmt.Errorf("failed to verify: %v", err)
	}

	// Only a locked record is final; unlocked ones can still change.
	if rec.Locked {
		c.cache.Set(cacheKey, rec, cache.DefaultExpiration)
	}

	return rec, nil
}
