package cart

import (
	"github.com/jaldistore/cart-engine/api/controllers/cart/dto"
	cartsvc "github.com/jaldistore/cart-engine/internal/cart"
	"github.com/jaldistore/cart-engine/pkg/types"
)

func toAddItemInput(payload dto.AddItemRequest) cartsvc.AddItemInput {
	customizations := make(types.Customizations, 0, len(payload.Customizations))
	for _, c := range payload.Customizations {
		customizations = append(customizations, types.Customization{
			Group:  c.Group,
			Option: c.Option,
		})
	}

	return cartsvc.AddItemInput{
		StoreID:        payload.StoreID,
		Slug:           payload.Slug,
		CatalogID:      payload.CatalogID,
		Qty:            payload.Qty,
		Customizable:   payload.Customizable,
		Customizations: customizations,
	}
}
