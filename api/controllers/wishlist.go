package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/ecofinds-backend/api/middleware"
	"github.com/angelmondragon/ecofinds-backend/api/responses"
	"github.com/angelmondragon/ecofinds-backend/api/validators"
	"github.com/angelmondragon/ecofinds-backend/internal/cart"
	"github.com/angelmondragon/ecofinds-backend/internal/products"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

// WishlistService manages saved products per session.
type WishlistService interface {
	List(ctx context.Context, sessionID string) []products.Product
	Add(ctx context.Context, sessionID string, product products.Product) ([]products.Product, error)
	Remove(ctx context.Context, sessionID string, id products.ID) ([]products.Product, error)
	MoveToCart(ctx context.Context, sessionID string, id products.ID, store *cart.Store) error
}

func WishlistList(svc WishlistService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}
		items := svc.List(r.Context(), middleware.SessionIDFromContext(r.Context()))
		responses.WriteSuccess(w, newProductResponses(items))
	}
}

type addWishlistItemRequest struct {
	Product products.Product `json:"product"`
}

func WishlistAddItem(svc WishlistService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}
		var payload addWishlistItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.Add(r.Context(), middleware.SessionIDFromContext(r.Context()), payload.Product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newProductResponses(items))
	}
}

func WishlistRemoveItem(svc WishlistService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}
		items, err := svc.Remove(r.Context(), middleware.SessionIDFromContext(r.Context()), productIDParam(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductResponses(items))
	}
}

// WishlistMoveToCart moves one wishlist product into the cart and returns the cart.
func WishlistMoveToCart(svc WishlistService, carts CartProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}
		store, err := sessionCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.MoveToCart(r.Context(), middleware.SessionIDFromContext(r.Context()), productIDParam(r), store); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(store))
	}
}
