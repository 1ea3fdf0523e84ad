package dto

// AddItemRequest is the body of POST /api/v1/cart/items.
type AddItemRequest struct {
	StoreID        string          `json:"store_id" validate:"required"`
	Slug           string          `json:"slug" validate:"required"`
	CatalogID      string          `json:"catalog_id"`
	Qty            int             `json:"qty" validate:"required,min=1"`
	Customizable   bool            `json:"customizable"`
	Customizations []Customization `json:"customizations,omitempty" validate:"dive"`
}

// Customization is one selected {group, option} pair.
type Customization struct {
	Group  string `json:"group" validate:"required"`
	Option string `json:"option" validate:"required"`
}

// UpdateQtyRequest is the body of PATCH /api/v1/cart/items/{itemID}.
type UpdateQtyRequest struct {
	Qty int `json:"qty" validate:"required,min=1"`
}

// RemoveItemsRequest is the body of POST /api/v1/cart/items/remove.
type RemoveItemsRequest struct {
	CartItemIDs []string `json:"cart_item_ids" validate:"required,min=1,dive,required"`
}

// ApplyOfferRequest is the body of POST /api/v1/cart/{storeID}/offer.
type ApplyOfferRequest struct {
	OfferID string `json:"offer_id" validate:"required"`
}
