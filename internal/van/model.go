package van

import (
	"time"

	"gorm.io/datatypes"
)

// Van operating statuses.
const (
	StatusActive      = "active"
	StatusMaintenance = "maintenance"
	StatusOffline     = "offline"
)

// Van is a mobile wash unit. Revenue is derived state: only the booking
// manager credits it, on completed bookings.
type Van struct {
	ID         uint                      `gorm:"primaryKey" json:"id"`
	Name       string                    `gorm:"type:varchar(255);not null" json:"name"`
	AdminID    uint                      `gorm:"index" json:"admin_id"`
	Location   string                    `gorm:"type:varchar(255)" json:"location"`
	Status     string                    `gorm:"type:varchar(20);default:'active';index" json:"status"` // active/maintenance/offline
	Latitude   *float64                  `json:"latitude,omitempty"`
	Longitude  *float64                  `json:"longitude,omitempty"`
	Capacity   int                       `gorm:"default:1" json:"capacity"` // concurrent jobs per slot
	ServiceIDs datatypes.JSONSlice[uint] `gorm:"type:jsonb" json:"service_ids"`
	Revenue    float64                   `gorm:"type:decimal(12,2);default:0" json:"revenue"`
	CreatedAt  time.Time                 `json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// CanServe reports whether the van is capable of performing every
// requested service.
func (v *Van) CanServe(serviceIDs []uint) bool {
	capability := make(map[uint]struct{}, len(v.ServiceIDs))
	for _, id := range v.ServiceIDs {
		capability[id] = struct{}{}
	}
	for _, id := range serviceIDs {
		if _, ok := capability[id]; !ok {
			return false
		}
	}
	return true
}

// ValidStatus reports whether s is a recognised van status.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusMaintenance || s == StatusOffline
}
