package gateway

import (
	"context"

	"github.com/jaldistore/cart-engine/pkg/types"
)

// API is the remote cart service surface the engine depends on. Every call
// carries the caller-supplied bearer credential; the authoritative cart lives
// on the server and these calls never partially apply.
type API interface {
	AddItem(ctx context.Context, token string, req AddItemRequest) (*CartItemRecord, error)
	UpdateQty(ctx context.Context, token, cartItemID string, qty int) error
	RemoveItems(ctx context.Context, token string, cartItemIDs []string) error
	RemoveCart(ctx context.Context, token, storeID string) error
	FetchCart(ctx context.Context, token string) ([]RemoteCart, error)
}

// AddItemRequest mirrors the add-item endpoint body.
type AddItemRequest struct {
	StoreID        string               `json:"store_id"`
	Slug           string               `json:"slug"`
	CatalogID      string               `json:"catalog_id"`
	Qty            int                  `json:"qty"`
	Customizable   bool                 `json:"customizable"`
	Customizations types.Customizations `json:"customizations"`
}

// CartItemRecord is the server's view of one cart line.
type CartItemRecord struct {
	ID                string               `json:"id"`
	Slug              string               `json:"slug"`
	CatalogID         string               `json:"catalog_id"`
	Qty               int                  `json:"qty"`
	UnitPriceCents    int64                `json:"unit_price_cents"`
	UnitMaxPriceCents int64                `json:"unit_max_price_cents"`
	LineTotalCents    int64                `json:"line_total_cents"`
	Customizable      bool                 `json:"customizable"`
	Customizations    types.Customizations `json:"customizations,omitempty"`
}

// RemoteCart is the server's view of one per-store cart.
type RemoteCart struct {
	StoreID string           `json:"store_id"`
	Items   []CartItemRecord `json:"items"`
}

type updateQtyRequest struct {
	Qty          int    `json:"qty"`
	UpdateTarget string `json:"update_target"`
}

type removeItemsRequest struct {
	CartItemIDs []string `json:"cart_item_ids"`
}

type fetchCartResponse struct {
	Carts []RemoteCart `json:"carts"`
}
