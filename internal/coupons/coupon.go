package coupons

import (
	"strings"
	"time"

	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Coupon is a redeemable discount code.
type Coupon struct {
	ID        uuid.UUID        `json:"id"`
	Code      string           `json:"code"`
	Type      enums.CouponType `json:"type"`
	Value     decimal.Decimal  `json:"value"`
	ExpiresAt *time.Time       `json:"expiresAt,omitempty"`
}

// NormalizeCode trims and upper-cases a code so lookups are case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Expired reports whether the coupon expired before now.
func (c Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// Discount is the raw amount the coupon takes off subtotal, before rounding or clamping.
func (c Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	switch c.Type {
	case enums.CouponTypePercent:
		return subtotal.Mul(c.Value).Div(hundred)
	case enums.CouponTypeFixed:
		return c.Value
	default:
		return decimal.Zero
	}
}

// Validate checks the coupon value against its type: percent in (0,100], fixed above zero.
func (c Coupon) Validate() error {
	details := map[string]any{"code": c.Code, "type": c.Type, "value": c.Value.String()}
	switch c.Type {
	case enums.CouponTypePercent:
		if !c.Value.IsPositive() || c.Value.GreaterThan(hundred) {
			return pkgerrors.New(pkgerrors.CodeValidation, "percent coupon value must be within (0,100]").WithDetails(details)
		}
	case enums.CouponTypeFixed:
		if !c.Value.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "fixed coupon value must be positive").WithDetails(details)
		}
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown coupon type").WithDetails(details)
	}
	return nil
}

// DefaultCoupons is the seed set for fresh installs.
func DefaultCoupons() []Coupon {
	return []Coupon{
		{ID: uuid.MustParse("7f0b3f5e-3c1d-4d7a-9a8e-0c5a1f1e0a10"), Code: "ECO10", Type: enums.CouponTypePercent, Value: decimal.NewFromInt(10)},
		{ID: uuid.MustParse("2c6e9a41-8b0f-4a5e-b7d2-5e3c9f6a1b05"), Code: "GREEN5", Type: enums.CouponTypeFixed, Value: decimal.NewFromInt(5)},
	}
}
