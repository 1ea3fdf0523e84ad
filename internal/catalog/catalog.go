package catalog

import (
	"context"

	"github.com/jaldistore/cart-engine/internal/offers"
)

// OfferSource resolves offer definitions for a store. Offers are owned by the
// catalog collaborator; the cart engine only reads them.
type OfferSource interface {
	GetOffer(ctx context.Context, storeID, offerID string) (*offers.Offer, error)
}

// LimitSource provides per-product purchase limits derived from stock and
// purchase-limit metadata. A limit of 0 means unbounded.
type LimitSource interface {
	MaxQty(ctx context.Context, catalogID string) (int, error)
}
