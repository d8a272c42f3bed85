package catalog

import (
	"time"

	"gorm.io/datatypes"
)

// WashService is a single bookable wash offering (exterior wash, interior
// detailing, wax coat...). Read-only to the booking engine.
type WashService struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       float64        `gorm:"type:decimal(10,2);not null" json:"price"`
	Duration    int            `json:"duration"` // in minutes
	Image       string         `gorm:"type:text" json:"image"`
	Category    string         `gorm:"type:varchar(20);default:'basic'" json:"category"` // basic/premium/addon
	Features    datatypes.JSON `gorm:"type:jsonb" json:"features"`
	Available   bool           `gorm:"default:true" json:"available"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (WashService) TableName() string {
	return "wash_services"
}

// Package bundles several wash services at a single price.
type Package struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	Price         float64        `gorm:"type:decimal(10,2);not null" json:"price"`
	OriginalPrice *float64       `gorm:"type:decimal(10,2)" json:"original_price,omitempty"`
	Duration      int            `json:"duration"` // in days
	ServiceIDs    datatypes.JSONSlice[uint] `gorm:"type:jsonb" json:"service_ids"`
	Features      datatypes.JSON `gorm:"type:jsonb" json:"features"`
	Popular       bool           `gorm:"default:false" json:"popular"`
	MaxBookings   int            `gorm:"default:0" json:"max_bookings"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Banner is promotional home-screen content managed by super admins.
type Banner struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"type:text;not null" json:"image"`
	Link        string    `gorm:"type:text" json:"link,omitempty"`
	Position    string    `gorm:"type:varchar(10);default:'hero'" json:"position"` // hero/middle/footer
	Active      bool      `gorm:"default:true" json:"active"`
	Order       int       `gorm:"column:display_order;default:0" json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
