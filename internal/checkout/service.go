package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/ecofinds-backend/internal/coupons"
	"github.com/shopspring/decimal"
)

// CouponResolver turns a code into a usable coupon.
type CouponResolver interface {
	Resolve(ctx context.Context, code string, now time.Time) (*coupons.Coupon, error)
}

// Service quotes order summaries.
type Service struct {
	coupons CouponResolver
	policy  ShippingPolicy
	now     func() time.Time
}

func NewService(resolver CouponResolver, policy ShippingPolicy) (*Service, error) {
	if resolver == nil {
		return nil, errors.New("coupon resolver is required")
	}
	return &Service{coupons: resolver, policy: policy, now: time.Now}, nil
}

// Policy returns the shipping policy in use.
func (s *Service) Policy() ShippingPolicy {
	return s.policy
}

// Quote summarises subtotal, applying couponCode when it is not blank. Coupon
// resolution errors are returned unchanged.
func (s *Service) Quote(ctx context.Context, subtotal decimal.Decimal, couponCode string) (Summary, error) {
	if strings.TrimSpace(couponCode) == "" {
		return Summarize(subtotal, nil, s.policy), nil
	}
	coupon, err := s.coupons.Resolve(ctx, couponCode, s.now().UTC())
	if err != nil {
		return Summary{}, err
	}
	return Summarize(subtotal, coupon, s.policy), nil
}
