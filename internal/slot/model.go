package slot

import (
	"time"
)

// TimeSlot is a fixed (van, date, time-window) capacity bucket that
// bookings compete for. Booked is mutated only by the allocator, through
// its atomic reserve/release operations.
type TimeSlot struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VanID     uint      `gorm:"not null;index:idx_time_slots_van_date" json:"van_id"`
	Date      string    `gorm:"type:varchar(10);not null;index:idx_time_slots_van_date" json:"date"` // 2006-01-02
	StartTime string    `gorm:"type:varchar(5);not null" json:"start_time"`                          // 15:04
	EndTime   string    `gorm:"type:varchar(5);not null" json:"end_time"`                            // 15:04
	Capacity  int       `gorm:"not null" json:"capacity"`
	Booked    int       `gorm:"default:0" json:"booked"`
	Archived  bool      `gorm:"default:false" json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TimeSlot) TableName() string {
	return "time_slots"
}

// Available reports whether the slot can still take a reservation.
func (t *TimeSlot) Available() bool {
	return !t.Archived && t.Booked < t.Capacity
}

// Reservation is the persisted token for held capacity units. Keeping the
// token as a row makes release idempotent: a retried release finds the row
// already flagged and does nothing.
type Reservation struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Token      string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"token"`
	TimeSlotID uint       `gorm:"not null;index" json:"time_slot_id"`
	Units      int        `gorm:"not null" json:"units"`
	Released   bool       `gorm:"default:false" json:"released"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (Reservation) TableName() string {
	return "slot_reservations"
}
