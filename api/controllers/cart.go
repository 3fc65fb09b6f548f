package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/ecofinds-backend/api/middleware"
	"github.com/angelmondragon/ecofinds-backend/api/responses"
	"github.com/angelmondragon/ecofinds-backend/api/validators"
	"github.com/angelmondragon/ecofinds-backend/internal/cart"
	"github.com/angelmondragon/ecofinds-backend/internal/checkout"
	"github.com/angelmondragon/ecofinds-backend/internal/products"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

// CartProvider hands out the cart for a session.
type CartProvider interface {
	Get(ctx context.Context, sessionID string) (*cart.Store, error)
}

// CartRegistry is the session cart collaborator mounted by the router.
type CartRegistry interface {
	CartProvider
	IdentityNotifier
}

// SummaryQuoter prices a cart subtotal.
type SummaryQuoter interface {
	Quote(ctx context.Context, subtotal decimal.Decimal, couponCode string) (checkout.Summary, error)
}

func sessionCart(r *http.Request, carts CartProvider) (*cart.Store, error) {
	if carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart registry unavailable")
	}
	return carts.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
}

// CartFetch returns the session cart with derived totals.
func CartFetch(carts CartProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(store))
	}
}

// CartMini returns the mini-cart preview.
func CartMini(carts CartProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", cart.DefaultPreviewLimit, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store, err := sessionCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		preview := store.Preview(limit)
		responses.WriteSuccess(w, miniCartResponse{
			Entries:  newEntryResponses(preview.Entries),
			Overflow: preview.Overflow,
			Count:    preview.Totals.Count,
			Subtotal: money(preview.Totals.Subtotal),
		})
	}
}

type addCartItemRequest struct {
	Product  products.Product `json:"product"`
	Quantity *int             `json:"quantity" validate:"omitempty,min=1,max=9999"`
}

// CartAddItem adds a product to the cart, merging with an existing entry.
func CartAddItem(carts CartProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := payload.Product.Validate(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity := 1
		if payload.Quantity != nil {
			quantity = *payload.Quantity
		}

		store, err := sessionCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.Add(r.Context(), payload.Product, quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(store))
	}
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=9999"`
}

// CartUpdateItem replaces an entry quantity; zero or less removes the entry.
func CartUpdateItem(carts CartProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store, err := sessionCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store.UpdateQuantity(r.Context(), productIDParam(r), *payload.Quantity)
		responses.WriteSuccess(w, newCartResponse(store))
	}
}

// CartRemoveItem drops an entry; unknown ids are ignored.
func CartRemoveItem(carts CartProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store.Remove(r.Context(), productIDParam(r))
		responses.WriteSuccess(w, newCartResponse(store))
	}
}

// CartClear empties the cart.
func CartClear(carts CartProvider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store.Clear(r.Context())
		responses.WriteSuccess(w, newCartResponse(store))
	}
}

type couponRequest struct {
	CouponCode string `json:"coupon_code" validate:"omitempty,max=64"`
}

// CartSummary quotes subtotal, shipping, discount and total for the cart.
func CartSummary(carts CartProvider, quoter SummaryQuoter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if quoter == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		payload, err := decodeOptionalCoupon(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store, err := sessionCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := quoter.Quote(r.Context(), store.Subtotal(), payload.CouponCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSummaryResponse(summary))
	}
}

// decodeOptionalCoupon accepts an empty body as "no coupon".
func decodeOptionalCoupon(r *http.Request) (couponRequest, error) {
	var payload couponRequest
	if r.Body == nil || r.ContentLength == 0 {
		return payload, nil
	}
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		if errors.Is(err, io.EOF) {
			return payload, nil
		}
		return payload, err
	}
	payload.CouponCode = validators.SanitizeString(payload.CouponCode, 64)
	return payload, nil
}

func productIDParam(r *http.Request) products.ID {
	return products.ID(validators.SanitizeString(chi.URLParam(r, "productID"), 128))
}
