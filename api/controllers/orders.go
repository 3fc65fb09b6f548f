package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/ecofinds-backend/api/middleware"
	"github.com/angelmondragon/ecofinds-backend/api/responses"
	"github.com/angelmondragon/ecofinds-backend/internal/cart"
	"github.com/angelmondragon/ecofinds-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

// OrdersService places and lists session orders.
type OrdersService interface {
	Place(ctx context.Context, sessionID string, store *cart.Store, couponCode string) (*orders.Order, error)
	List(ctx context.Context, sessionID string) []orders.Order
}

// CartCheckout turns the cart into an order and empties it.
func CartCheckout(carts CartProvider, svc OrdersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
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
		order, err := svc.Place(r.Context(), middleware.SessionIDFromContext(r.Context()), store, payload.CouponCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(*order))
	}
}

// OrdersList returns the session's orders, newest first.
func OrdersList(svc OrdersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		list := svc.List(r.Context(), middleware.SessionIDFromContext(r.Context()))
		out := make([]orderResponse, 0, len(list))
		for _, o := range list {
			out = append(out, newOrderResponse(o))
		}
		responses.WriteSuccess(w, out)
	}
}
