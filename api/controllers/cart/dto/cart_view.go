package dto

// CartView is the wire form of one per-store cart with its computed totals.
type CartView struct {
	StoreID       string         `json:"store_id"`
	Items         []CartItemView `json:"items"`
	OfferID       string         `json:"offer_id,omitempty"`
	SubtotalCents int64          `json:"subtotal_cents"`
	DiscountCents int64          `json:"discount_cents"`
	TotalCents    int64          `json:"total_cents"`
}

// CartItemView is the wire form of one cart line.
type CartItemView struct {
	ID                string          `json:"id"`
	Slug              string          `json:"slug"`
	CatalogID         string          `json:"catalog_id"`
	Qty               int             `json:"qty"`
	UnitPriceCents    int64           `json:"unit_price_cents"`
	UnitMaxPriceCents int64           `json:"unit_max_price_cents"`
	LineTotalCents    int64           `json:"line_total_cents"`
	Customizable      bool            `json:"customizable"`
	Customizations    []Customization `json:"customizations,omitempty"`
}

// CartList wraps all carts for GET /api/v1/cart.
type CartList struct {
	Carts []CartView `json:"carts"`
}
