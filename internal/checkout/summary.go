package checkout

import (
	"github.com/angelmondragon/ecofinds-backend/internal/coupons"
	"github.com/angelmondragon/ecofinds-backend/pkg/config"
	"github.com/shopspring/decimal"
)

// ShippingPolicy charges Fee while the subtotal is at or below FreeThreshold.
type ShippingPolicy struct {
	Fee           decimal.Decimal
	FreeThreshold decimal.Decimal
}

// DefaultShippingPolicy is 5.99 shipping up to a 50.00 subtotal.
func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		Fee:           decimal.RequireFromString("5.99"),
		FreeThreshold: decimal.NewFromInt(50),
	}
}

func PolicyFromConfig(cfg config.ShippingConfig) ShippingPolicy {
	return ShippingPolicy{Fee: cfg.Fee, FreeThreshold: cfg.FreeThreshold}
}

// FeeFor returns the shipping fee for subtotal.
func (p ShippingPolicy) FeeFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(p.FreeThreshold) {
		return decimal.Zero
	}
	return p.Fee
}

// Summary is the checkout-ready breakdown of a cart subtotal.
type Summary struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	CouponCode  string          `json:"couponCode,omitempty"`
}

// Summarize computes subtotal + shipping - discount, never below zero. coupon may be nil.
func Summarize(subtotal decimal.Decimal, coupon *coupons.Coupon, policy ShippingPolicy) Summary {
	summary := Summary{
		Subtotal:    subtotal,
		ShippingFee: policy.FeeFor(subtotal),
		Discount:    decimal.Zero,
	}
	if coupon != nil {
		summary.Discount = coupon.Discount(subtotal).Round(2)
		summary.CouponCode = coupon.Code
	}
	total := summary.Subtotal.Add(summary.ShippingFee).Sub(summary.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	summary.Total = total
	return summary
}
