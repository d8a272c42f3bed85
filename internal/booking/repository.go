package booking

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uint) (*Booking, error)
	ListByUser(ctx context.Context, userID uint) ([]Booking, error)
	ListByVanAndDate(ctx context.Context, vanID uint, date string) ([]Booking, error)
	Search(ctx context.Context, filter BookingFilter) ([]Booking, int64, error)
	CountByStatus(ctx context.Context, vanID *uint) (StatusCounts, error)

	// Guarded transitions. ok=false means the booking was not in the
	// required source state (or does not exist).
	MarkConfirmed(ctx context.Context, id uint, paymentID string) (ok bool, err error)
	MarkInProgress(ctx context.Context, id uint) (ok bool, err error)
	MarkCompleted(ctx context.Context, id uint) (ok bool, err error)

	// MarkCancelled moves any non-terminal booking to cancelled, flipping
	// paymentStatus to refunded when it was paid. Returns the booking as
	// it was before the transition so the caller can run compensations.
	MarkCancelled(ctx context.Context, id uint, reason string) (prior *Booking, ok bool, err error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) ListByVanAndDate(ctx context.Context, vanID uint, date string) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("van_id = ? AND date = ?", vanID, date).
		Order("time_slot_id ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) Search(ctx context.Context, filter BookingFilter) ([]Booking, int64, error) {
	var bookings []Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&Booking{})
	if filter.VanID != nil {
		query = query.Where("van_id = ?", *filter.VanID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.FromDate != "" {
		query = query.Where("date >= ?", filter.FromDate)
	}
	if filter.ToDate != "" {
		query = query.Where("date <= ?", filter.ToDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	err := query.Order("created_at DESC").Find(&bookings).Error
	return bookings, total, err
}

func (r *repository) CountByStatus(ctx context.Context, vanID *uint) (StatusCounts, error) {
	var counts StatusCounts

	type row struct {
		Status string
		Count  int64
	}
	var rows []row

	query := r.db.WithContext(ctx).Model(&Booking{}).
		Select("status, COUNT(*) as count").
		Group("status")
	if vanID != nil {
		query = query.Where("van_id = ?", *vanID)
	}
	if err := query.Find(&rows).Error; err != nil {
		return counts, err
	}

	for _, rw := range rows {
		counts.Total += rw.Count
		switch rw.Status {
		case StatusPending:
			counts.Pending = rw.Count
		case StatusConfirmed:
			counts.Confirmed = rw.Count
		case StatusInProgress:
			counts.InProgress = rw.Count
		case StatusCompleted:
			counts.Completed = rw.Count
		case StatusCancelled:
			counts.Cancelled = rw.Count
		}
	}

	return counts, nil
}

// The single-statement guarded UPDATEs below make every forward transition
// race-safe: of two concurrent calls only one finds the source state.

func (r *repository) MarkConfirmed(ctx context.Context, id uint, paymentID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":         StatusConfirmed,
			"payment_status": PaymentPaid,
			"payment_id":     paymentID,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) MarkInProgress(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusConfirmed).
		Update("status", StatusInProgress)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) MarkCompleted(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusInProgress).
		Update("status", StatusCompleted)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) MarkCancelled(ctx context.Context, id uint, reason string) (*Booking, bool, error) {
	var prior Booking
	cancelled := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&prior, id).Error; err != nil {
			return err
		}
		if prior.Terminal() {
			return nil
		}

		updates := map[string]interface{}{
			"status":        StatusCancelled,
			"cancel_reason": reason,
		}
		if prior.PaymentStatus == PaymentPaid {
			updates["payment_status"] = PaymentRefunded
		}

		if err := tx.Model(&Booking{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		cancelled = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return &prior, cancelled, nil
}
