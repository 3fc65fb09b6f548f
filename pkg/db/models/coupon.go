package models

import (
	"time"

	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Coupon is a redeemable discount code.
type Coupon struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Code      string           `gorm:"column:code;size:64;not null;uniqueIndex:coupons_code_key"`
	Type      enums.CouponType `gorm:"column:type;size:16;not null"`
	Value     decimal.Decimal  `gorm:"column:value;type:numeric(12,2);not null"`
	ExpiresAt *time.Time       `gorm:"column:expires_at"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (Coupon) TableName() string {
	return "coupons"
}

// BeforeCreate assigns an id so inserts work without a database-side default.
func (c *Coupon) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
