package reports

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	GetBookingRows(ctx context.Context, filter ReportFilter) ([]BookingReportRow, error)
	GetRevenueRows(ctx context.Context, filter ReportFilter) ([]RevenueReportRow, error)
	GetReceiptData(ctx context.Context, bookingID uint) (*ReceiptData, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetBookingRows(ctx context.Context, filter ReportFilter) ([]BookingReportRow, error) {
	q := r.db.WithContext(ctx).
		Table("bookings").
		Select(`bookings.id, bookings.date, time_slots.start_time, vans.name AS van_name,
			bookings.user_id, bookings.status, bookings.payment_status,
			bookings.total_amount, bookings.discount_amount, bookings.coupon_code,
			bookings.created_at`).
		Joins("JOIN vans ON vans.id = bookings.van_id").
		Joins("JOIN time_slots ON time_slots.id = bookings.time_slot_id")

	q = applyFilter(q, filter)

	var rows []BookingReportRow
	err := q.Order("bookings.date, time_slots.start_time").Scan(&rows).Error
	return rows, err
}

func (r *repository) GetRevenueRows(ctx context.Context, filter ReportFilter) ([]RevenueReportRow, error) {
	q := r.db.WithContext(ctx).
		Table("bookings").
		Select(`bookings.date, bookings.van_id, vans.name AS van_name,
			COUNT(*) AS bookings,
			COALESCE(SUM(bookings.total_amount), 0) AS gross_amount,
			COALESCE(SUM(bookings.discount_amount), 0) AS discount_total,
			COALESCE(SUM(bookings.total_amount - bookings.discount_amount), 0) AS net_amount`).
		Joins("JOIN vans ON vans.id = bookings.van_id").
		Where("bookings.payment_status = ?", "paid")

	q = applyFilter(q, filter)

	var rows []RevenueReportRow
	err := q.Group("bookings.date, bookings.van_id, vans.name").
		Order("bookings.date, bookings.van_id").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) GetReceiptData(ctx context.Context, bookingID uint) (*ReceiptData, error) {
	var d ReceiptData
	err := r.db.WithContext(ctx).
		Table("bookings").
		Select(`bookings.id AS booking_id, bookings.user_id, bookings.van_id,
			bookings.date, time_slots.start_time,
			time_slots.end_time, vans.name AS van_name,
			bookings.total_amount, bookings.discount_amount, bookings.coupon_code,
			bookings.payment_id, bookings.addr_street AS address_line,
			bookings.addr_city AS city, bookings.addr_pincode AS pincode`).
		Joins("JOIN vans ON vans.id = bookings.van_id").
		Joins("JOIN time_slots ON time_slots.id = bookings.time_slot_id").
		Where("bookings.id = ?", bookingID).
		Scan(&d).Error
	if err != nil {
		return nil, err
	}
	if d.BookingID == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	// Service and package names come from the jsonb id sets on the booking.
	err = r.db.WithContext(ctx).
		Table("wash_services").
		Where("id IN (SELECT jsonb_array_elements_text(bookings.service_ids)::int FROM bookings WHERE bookings.id = ?)", bookingID).
		Pluck("name", &d.ServiceNames).Error
	if err != nil {
		return nil, err
	}

	var pkgName []string
	err = r.db.WithContext(ctx).
		Table("packages").
		Where("id = (SELECT package_id FROM bookings WHERE id = ?)", bookingID).
		Pluck("name", &pkgName).Error
	if err != nil {
		return nil, err
	}
	if len(pkgName) > 0 {
		d.PackageName = pkgName[0]
	}

	return &d, nil
}

func applyFilter(q *gorm.DB, filter ReportFilter) *gorm.DB {
	if filter.VanID != nil {
		q = q.Where("bookings.van_id = ?", *filter.VanID)
	}
	if filter.FromDate != "" {
		q = q.Where("bookings.date >= ?", filter.FromDate)
	}
	if filter.ToDate != "" {
		q = q.Where("bookings.date <= ?", filter.ToDate)
	}
	if filter.Status != "" {
		q = q.Where("bookings.status = ?", filter.Status)
	}
	return q
}
