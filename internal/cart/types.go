package cart

import (
	"github.com/jaldistore/cart-engine/internal/offers"
	"github.com/jaldistore/cart-engine/pkg/types"
)

// Item is one purchasable line entry within a per-store cart. Identity within
// a store is the (slug, customizations fingerprint) pair: the same product
// added with different customizations is a distinct line. The ID is assigned
// by the remote cart service.
type Item struct {
	ID                string               `json:"id"`
	Slug              string               `json:"slug"`
	CatalogID         string               `json:"catalog_id"`
	Qty               int                  `json:"qty"`
	UnitPriceCents    int64                `json:"unit_price_cents"`
	UnitMaxPriceCents int64                `json:"unit_max_price_cents"`
	Customizable      bool                 `json:"customizable"`
	Customizations    types.Customizations `json:"customizations,omitempty"`
}

// LineTotalCents is the derived unit price times quantity.
func (i *Item) LineTotalCents() int64 {
	return i.UnitPriceCents * int64(i.Qty)
}

func (i *Item) identity() string {
	return itemIdentity(i.Slug, i.Customizations)
}

func itemIdentity(slug string, customizations types.Customizations) string {
	return slug + "\x00" + customizations.Fingerprint()
}

// AppliedOffer is the cart's reference to the one selected offer plus its
// last-computed effect. Qualified records whether the offer has met its
// minimum since selection: an offer selected below the minimum sits dormant
// at discount 0, while a qualified offer that later drops below the minimum
// is cleared.
type AppliedOffer struct {
	Offer         *offers.Offer `json:"offer"`
	DiscountCents int64         `json:"discount_cents"`
	Qualified     bool          `json:"qualified"`
}

// Cart is the per-store collection of selected items. It exists only while it
// has at least one item; subtotal, discount, and total are always derived.
type Cart struct {
	StoreID string        `json:"store_id"`
	Items   []*Item       `json:"items"`
	Applied *AppliedOffer `json:"applied_offer,omitempty"`
}

// SubtotalCents sums the line totals of all items.
func (c *Cart) SubtotalCents() int64 {
	var subtotal int64
	for _, item := range c.Items {
		subtotal += item.LineTotalCents()
	}
	return subtotal
}

func (c *Cart) findByIdentity(identity string) *Item {
	for _, item := range c.Items {
		if item.identity() == identity {
			return item
		}
	}
	return nil
}

func (c *Cart) findByID(cartItemID string) *Item {
	for _, item := range c.Items {
		if item.ID == cartItemID {
			return item
		}
	}
	return nil
}

func (c *Cart) removeByID(cartItemID string) bool {
	for idx, item := range c.Items {
		if item.ID == cartItemID {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			return true
		}
	}
	return false
}

// revalidateOffer recomputes the selected offer's effect against the current
// subtotal. A selection that has qualified before and now sits below the
// minimum is cleared; one that has never qualified stays dormant at
// discount 0 until the subtotal crosses the threshold.
func (c *Cart) revalidateOffer() {
	if c.Applied == nil {
		return
	}
	if c.Applied.Offer == nil {
		c.Applied = nil
		return
	}
	subtotal := c.SubtotalCents()
	if c.Applied.Offer.Qualifies(subtotal) {
		c.Applied.Qualified = true
		c.Applied.DiscountCents = offers.Evaluate(subtotal, c.Applied.Offer)
		return
	}
	if c.Applied.Qualified {
		c.Applied = nil
		return
	}
	c.Applied.DiscountCents = 0
}

// View is the read surface handed to UI collaborators: a deep copy of one
// cart plus its computed totals. total always equals subtotal minus discount.
type View struct {
	StoreID       string     `json:"store_id"`
	Items         []ItemView `json:"items"`
	OfferID       string     `json:"offer_id,omitempty"`
	SubtotalCents int64      `json:"subtotal_cents"`
	DiscountCents int64      `json:"discount_cents"`
	TotalCents    int64      `json:"total_cents"`
}

// ItemView is the read-only projection of one cart line.
type ItemView struct {
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

func (c *Cart) view() View {
	subtotal := c.SubtotalCents()
	view := View{
		StoreID:       c.StoreID,
		Items:         make([]ItemView, 0, len(c.Items)),
		SubtotalCents: subtotal,
		TotalCents:    subtotal,
	}
	for _, item := range c.Items {
		view.Items = append(view.Items, ItemView{
			ID:                item.ID,
			Slug:              item.Slug,
			CatalogID:         item.CatalogID,
			Qty:               item.Qty,
			UnitPriceCents:    item.UnitPriceCents,
			UnitMaxPriceCents: item.UnitMaxPriceCents,
			LineTotalCents:    item.LineTotalCents(),
			Customizable:      item.Customizable,
			Customizations:    item.Customizations.Clone(),
		})
	}
	if c.Applied != nil && c.Applied.Offer != nil {
		view.OfferID = c.Applied.Offer.ID
		view.DiscountCents = c.Applied.DiscountCents
		view.TotalCents = subtotal - c.Applied.DiscountCents
	}
	return view
}
