package booking

import (
	"time"

	"gorm.io/datatypes"
)

// Booking lifecycle states. A booking only moves forward, or sideways to
// cancelled from any non-terminal state.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Payment states.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Address is where the van shows up. Owned by the booking, embedded per row.
type Address struct {
	Street    string   `gorm:"type:varchar(255)" json:"street"`
	City      string   `gorm:"type:varchar(100)" json:"city"`
	State     string   `gorm:"type:varchar(100)" json:"state"`
	Pincode   string   `gorm:"type:varchar(10)" json:"pincode"`
	Landmark  string   `gorm:"type:varchar(255)" json:"landmark,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Booking ties a customer, a van, a time slot and an order together.
// Bookings are never hard-deleted; cancellation is a terminal state.
type Booking struct {
	ID         uint                      `gorm:"primaryKey" json:"id"`
	UserID     uint                      `gorm:"not null;index" json:"user_id"`
	VanID      uint                      `gorm:"not null;index:idx_bookings_van_date" json:"van_id"`
	ServiceIDs datatypes.JSONSlice[uint] `gorm:"type:jsonb" json:"service_ids"`
	PackageID  *uint                     `json:"package_id,omitempty"`
	Date       string                    `gorm:"type:varchar(10);not null;index:idx_bookings_van_date" json:"date"` // 2006-01-02
	TimeSlotID uint                      `gorm:"not null;index" json:"time_slot_id"`

	Address Address `gorm:"embedded;embeddedPrefix:addr_" json:"address"`

	Status        string  `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	TotalAmount   float64 `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	DiscountAmount float64 `gorm:"type:decimal(10,2);default:0" json:"discount_amount,omitempty"`
	CouponCode    string  `gorm:"type:varchar(50)" json:"coupon_code,omitempty"`
	PaymentStatus string  `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`
	PaymentID     string  `gorm:"type:varchar(100)" json:"payment_id,omitempty"`
	OrderID       string  `gorm:"type:varchar(100)" json:"order_id,omitempty"`
	Notes         string  `gorm:"type:text" json:"notes,omitempty"`
	CancelReason  string  `gorm:"type:varchar(255)" json:"cancel_reason,omitempty"`

	// compensation handles, set at creation time
	ReservationToken string `gorm:"type:varchar(36)" json:"-"`
	CouponToken      string `gorm:"type:varchar(36)" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PayableAmount is what the customer actually owes.
func (b *Booking) PayableAmount() float64 {
	return b.TotalAmount - b.DiscountAmount
}

// Terminal reports whether the booking can change state at all.
func (b *Booking) Terminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled
}

// BookingFilter narrows admin booking searches.
type BookingFilter struct {
	VanID     *uint
	UserID    *uint
	Status    string
	FromDate  string
	ToDate    string
	Limit     int
	Offset    int
}

// StatusCounts feeds the operator dashboard cards.
type StatusCounts struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Confirmed  int64 `json:"confirmed"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
}
