package reports

import "time"

// Report type identifiers accepted by the export endpoint.
const (
	ReportTypeBookings = "bookings"
	ReportTypeRevenue  = "revenue"
)

// Export formats.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

// ReportFilter narrows report rows by van and date range. Dates use the
// same "2006-01-02" representation as bookings.
type ReportFilter struct {
	VanID    *uint
	FromDate string
	ToDate   string
	Status   string
}

// BookingReportRow is one exported line of the bookings report.
type BookingReportRow struct {
	ID             uint      `json:"id"`
	Date           string    `json:"date"`
	StartTime      string    `json:"start_time"`
	VanName        string    `json:"van_name"`
	UserID         uint      `json:"user_id"`
	Status         string    `json:"status"`
	PaymentStatus  string    `json:"payment_status"`
	TotalAmount    float64   `json:"total_amount"`
	DiscountAmount float64   `json:"discount_amount"`
	CouponCode     string    `json:"coupon_code"`
	CreatedAt      time.Time `json:"created_at"`
}

// RevenueReportRow aggregates paid bookings per van per day.
type RevenueReportRow struct {
	Date          string  `json:"date"`
	VanID         uint    `json:"van_id"`
	VanName       string  `json:"van_name"`
	Bookings      int64   `json:"bookings"`
	GrossAmount   float64 `json:"gross_amount"`
	DiscountTotal float64 `json:"discount_total"`
	NetAmount     float64 `json:"net_amount"`
}

// ReceiptData feeds the single-booking PDF receipt.
type ReceiptData struct {
	BookingID      uint
	UserID         uint
	VanID          uint
	Date           string
	StartTime      string
	EndTime        string
	VanName        string
	ServiceNames   []string
	PackageName    string
	TotalAmount    float64
	DiscountAmount float64
	CouponCode     string
	PaymentID      string
	AddressLine    string
	City           string
	Pincode        string
}

// ReportData wraps whichever rows the requested report needs.
type ReportData struct {
	Bookings []BookingReportRow
	Revenue  []RevenueReportRow
}
