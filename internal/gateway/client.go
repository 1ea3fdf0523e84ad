package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jaldistore/cart-engine/pkg/config"
	pkgerrors "github.com/jaldistore/cart-engine/pkg/errors"
)

// Client talks to the remote cart service. It is a thin JSON transport: it
// does not retry, cache, or reorder calls; sequencing is owned by the caller.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ API = (*Client)(nil)

// NewClient builds a remote cart client from configuration.
func NewClient(cfg config.GatewayConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("gateway base url is required")
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// AddItem creates a new line on the server cart and returns the created
// record, including the server-assigned id and prices.
func (c *Client) AddItem(ctx context.Context, token string, req AddItemRequest) (*CartItemRecord, error) {
	if strings.TrimSpace(req.StoreID) == "" || strings.TrimSpace(req.Slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id and slug are required")
	}
	if req.Qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must be at least 1")
	}

	var record CartItemRecord
	url := c.baseURL + "/v1/cart/items"
	if err := c.do(ctx, token, http.MethodPost, url, req, &record); err != nil {
		return nil, err
	}
	if strings.TrimSpace(record.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart service returned item without id")
	}
	return &record, nil
}

// UpdateQty sets the absolute quantity of an existing server cart line.
func (c *Client) UpdateQty(ctx context.Context, token, cartItemID string, qty int) error {
	if strings.TrimSpace(cartItemID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required")
	}
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "qty must be at least 1")
	}

	url := fmt.Sprintf("%s/v1/cart/items/%s", c.baseURL, cartItemID)
	body := updateQtyRequest{Qty: qty, UpdateTarget: "qty"}
	return c.do(ctx, token, http.MethodPatch, url, body, nil)
}

// RemoveItems deletes the given lines from the server cart in one call.
func (c *Client) RemoveItems(ctx context.Context, token string, cartItemIDs []string) error {
	if len(cartItemIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one cart item id is required")
	}
	for _, id := range cartItemIDs {
		if strings.TrimSpace(id) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart item ids must be non-empty")
		}
	}

	url := c.baseURL + "/v1/cart/items/remove"
	return c.do(ctx, token, http.MethodPost, url, removeItemsRequest{CartItemIDs: cartItemIDs}, nil)
}

// RemoveCart drops the whole per-store cart on the server.
func (c *Client) RemoveCart(ctx context.Context, token, storeID string) error {
	if strings.TrimSpace(storeID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}

	url := fmt.Sprintf("%s/v1/cart/%s", c.baseURL, storeID)
	return c.do(ctx, token, http.MethodDelete, url, nil, nil)
}

// FetchCart returns the full authoritative cart state, all stores at once.
func (c *Client) FetchCart(ctx context.Context, token string) ([]RemoteCart, error) {
	var payload fetchCartResponse
	url := c.baseURL + "/v1/cart"
	if err := c.do(ctx, token, http.MethodGet, url, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Carts, nil
}

func (c *Client) do(ctx context.Context, token, method, url string, body, dest any) error {
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "cart credential is required")
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build cart request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart service request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "cart credential rejected")
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart resource not found")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("cart service returned status %d", resp.StatusCode))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode cart response")
	}
	return nil
}
