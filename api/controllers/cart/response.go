package cart

import (
	"github.com/jaldistore/cart-engine/api/controllers/cart/dto"
	cartsvc "github.com/jaldistore/cart-engine/internal/cart"
	"github.com/jaldistore/cart-engine/pkg/types"
)

func newCartView(view cartsvc.View) dto.CartView {
	items := make([]dto.CartItemView, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, dto.CartItemView{
			ID:                item.ID,
			Slug:              item.Slug,
			CatalogID:         item.CatalogID,
			Qty:               item.Qty,
			UnitPriceCents:    item.UnitPriceCents,
			UnitMaxPriceCents: item.UnitMaxPriceCents,
			LineTotalCents:    item.LineTotalCents,
			Customizable:      item.Customizable,
			Customizations:    toCustomizations(item.Customizations),
		})
	}

	return dto.CartView{
		StoreID:       view.StoreID,
		Items:         items,
		OfferID:       view.OfferID,
		SubtotalCents: view.SubtotalCents,
		DiscountCents: view.DiscountCents,
		TotalCents:    view.TotalCents,
	}
}

func newCartList(views []cartsvc.View) dto.CartList {
	carts := make([]dto.CartView, 0, len(views))
	for _, view := range views {
		carts = append(carts, newCartView(view))
	}
	return dto.CartList{Carts: carts}
}

func toCustomizations(customizations types.Customizations) []dto.Customization {
	if len(customizations) == 0 {
		return nil
	}
	out := make([]dto.Customization, 0, len(customizations))
	for _, c := range customizations {
		out = append(out, dto.Customization{Group: c.Group, Option: c.Option})
	}
	return out
}
