package coupon

import (
	"time"

	"gorm.io/datatypes"
)

// Coupon statuses and discount types.
const (
	StatusActive   = "active"
	StatusExpired  = "expired"
	StatusDisabled = "disabled"

	TypePercentage = "percentage"
	TypeFixed      = "fixed"
)

// Coupon is a limited-use discount code. UsedCount is mutated only through
// the engine's atomic consume/release operations.
type Coupon struct {
	ID                 uint                      `gorm:"primaryKey" json:"id"`
	Code               string                    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Type               string                    `gorm:"type:varchar(20);not null" json:"type"` // percentage/fixed
	Value              float64                   `gorm:"type:decimal(10,2);not null" json:"value"`
	MinAmount          float64                   `gorm:"type:decimal(10,2);default:0" json:"min_amount"`
	MaxDiscount        float64                   `gorm:"type:decimal(10,2);default:0" json:"max_discount"` // 0 = uncapped
	UsageLimit         int                       `gorm:"not null" json:"usage_limit"`
	UsedCount          int                       `gorm:"default:0" json:"used_count"`
	ValidFrom          time.Time                 `json:"valid_from"`
	ValidTo            time.Time                 `json:"valid_to"`
	Status             string                    `gorm:"type:varchar(20);default:'active';index" json:"status"` // active/expired/disabled
	ApplicableServices datatypes.JSONSlice[uint] `gorm:"type:jsonb" json:"applicable_services,omitempty"`       // empty = all services
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

// Redemption records one consumed usage unit. Its token allows the booking
// manager to reverse the consumption if the booking is cancelled before
// payment; once finalized (payment captured) the unit can never be restored.
type Redemption struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Token          string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"token"`
	CouponID       uint       `gorm:"not null;index" json:"coupon_id"`
	Code           string     `gorm:"type:varchar(50);not null" json:"code"`
	DiscountAmount float64    `gorm:"type:decimal(10,2);not null" json:"discount_amount"`
	Released       bool       `gorm:"default:false" json:"released"`
	Finalized      bool       `gorm:"default:false" json:"finalized"`
	ReleasedAt     *time.Time `json:"released_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (Redemption) TableName() string {
	return "coupon_redemptions"
}

// CouponFilter narrows operator listings.
type CouponFilter struct {
	Status string
	Code   string
	Limit  int
	Offset int
}
