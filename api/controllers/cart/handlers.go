package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jaldistore/cart-engine/api/controllers/cart/dto"
	"github.com/jaldistore/cart-engine/api/middleware"
	"github.com/jaldistore/cart-engine/api/responses"
	"github.com/jaldistore/cart-engine/api/validators"
	cartsvc "github.com/jaldistore/cart-engine/internal/cart"
	pkgerrors "github.com/jaldistore/cart-engine/pkg/errors"
	"github.com/jaldistore/cart-engine/pkg/logger"
)

// Service is the cart engine surface the handlers drive.
type Service interface {
	Carts() []cartsvc.View
	CartFor(storeID string) (cartsvc.View, bool)
	AddItem(ctx context.Context, token string, in cartsvc.AddItemInput) error
	UpdateQty(ctx context.Context, token, cartItemID string, qty int) error
	RemoveItems(ctx context.Context, token string, cartItemIDs []string) error
	RemoveCart(ctx context.Context, token, storeID string) error
	ApplyOffer(ctx context.Context, storeID, offerID string) error
	ClearOffer(ctx context.Context, storeID string) error
	SyncFromRemote(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// List returns every cart with computed totals.
func List(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		responses.WriteSuccess(w, newCartList(svc.Carts()))
	}
}

// Fetch returns one store's cart.
func Fetch(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		storeID := chi.URLParam(r, "storeID")
		view, ok := svc.CartFor(storeID)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found for store"))
			return
		}
		responses.WriteSuccess(w, newCartView(view))
	}
}

// AddItem adds a product line; an identical line is incremented instead.
func AddItem(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := tokenFromRequest(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload dto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithStoreID(ctx, payload.StoreID)
		}
		if err := svc.AddItem(ctx, token, toAddItemInput(payload)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, _ := svc.CartFor(payload.StoreID)
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartView(view))
	}
}

// UpdateQty sets an item's absolute quantity.
func UpdateQty(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := tokenFromRequest(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cartItemID := chi.URLParam(r, "itemID")

		var payload dto.UpdateQtyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithCartItemID(ctx, cartItemID)
		}
		if err := svc.UpdateQty(ctx, token, cartItemID, payload.Qty); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartList(svc.Carts()))
	}
}

// RemoveItems deletes the given lines in one batch.
func RemoveItems(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := tokenFromRequest(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload dto.RemoveItemsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveItems(r.Context(), token, payload.CartItemIDs); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartList(svc.Carts()))
	}
}

// RemoveCart drops the whole per-store cart.
func RemoveCart(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := tokenFromRequest(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		storeID := chi.URLParam(r, "storeID")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithStoreID(ctx, storeID)
		}
		if err := svc.RemoveCart(ctx, token, storeID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartList(svc.Carts()))
	}
}

// ApplyOffer selects an offer for the store's cart.
func ApplyOffer(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		storeID := chi.URLParam(r, "storeID")

		var payload dto.ApplyOfferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithStoreID(ctx, storeID)
		}
		if err := svc.ApplyOffer(ctx, storeID, payload.OfferID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, _ := svc.CartFor(storeID)
		responses.WriteSuccess(w, newCartView(view))
	}
}

// ClearOffer deselects the store cart's offer.
func ClearOffer(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		storeID := chi.URLParam(r, "storeID")
		if err := svc.ClearOffer(r.Context(), storeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, _ := svc.CartFor(storeID)
		responses.WriteSuccess(w, newCartView(view))
	}
}

// Sync forces an authoritative refresh from the remote cart service.
func Sync(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := tokenFromRequest(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SyncFromRemote(r.Context(), token); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartList(svc.Carts()))
	}
}

// Logout tears down all local cart state.
func Logout(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		if err := svc.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

func tokenFromRequest(r *http.Request, svc Service) (string, error) {
	if svc == nil {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable")
	}
	token := middleware.AccessTokenFromContext(r.Context())
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return token, nil
}
