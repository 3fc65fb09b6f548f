package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/ecofinds-backend/api/responses"
	"github.com/angelmondragon/ecofinds-backend/internal/coupons"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

type CouponResolver interface {
	Resolve(ctx context.Context, code string, now time.Time) (*coupons.Coupon, error)
}

// CouponCatalog resolves single codes and lists the available coupons.
type CouponCatalog interface {
	CouponResolver
	List(ctx context.Context) ([]coupons.Coupon, error)
}

// CouponsList returns every coupon with its expiry state.
func CouponsList(svc CouponCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}
		list, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		now := time.Now().UTC()
		out := make([]couponResponse, 0, len(list))
		for _, c := range list {
			out = append(out, newCouponResponse(c, now))
		}
		responses.WriteSuccess(w, out)
	}
}

// CouponResolve looks up a coupon code.
func CouponResolve(svc CouponResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}
		now := time.Now().UTC()
		coupon, err := svc.Resolve(ctx, chi.URLParam(r, "code"), now)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCouponResponse(*coupon, now))
	}
}
