package slot

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CreateSlot(ctx context.Context, s *TimeSlot) error
	GetSlotByID(ctx context.Context, id uint) (*TimeSlot, error)
	ListByVanAndDate(ctx context.Context, vanID uint, date string, availableOnly bool) ([]TimeSlot, error)
	ArchiveSlot(ctx context.Context, id uint) error

	// Reserve atomically checks capacity and van status, increments the
	// booked counter and records the reservation row, all in one unit.
	// ok=false means the slot had no room or the van is not active.
	Reserve(ctx context.Context, slotID uint, units int, token string) (ok bool, err error)

	// Release idempotently returns a reservation's units. ok=false means
	// the token was unknown or already released.
	Release(ctx context.Context, token string) (ok bool, err error)

	GetReservation(ctx context.Context, token string) (*Reservation, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSlot(ctx context.Context, s *TimeSlot) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) GetSlotByID(ctx context.Context, id uint) (*TimeSlot, error) {
	var s TimeSlot
	err := r.db.WithContext(ctx).First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListByVanAndDate(ctx context.Context, vanID uint, date string, availableOnly bool) ([]TimeSlot, error) {
	var slots []TimeSlot

	query := r.db.WithContext(ctx).
		Where("van_id = ? AND date = ? AND archived = false", vanID, date)
	if availableOnly {
		query = query.Where("booked < capacity")
	}

	err := query.Order("start_time ASC").Find(&slots).Error
	return slots, err
}

func (r *repository) ArchiveSlot(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&TimeSlot{}).
		Where("id = ?", id).
		Update("archived", true).Error
}

// Reserve relies on a single conditional UPDATE for the check-then-increment,
// so two concurrent calls against the same slot serialize on the row lock and
// can never push booked past capacity. The van-status subquery keeps
// maintenance/offline vans from taking new reservations.
func (r *repository) Reserve(ctx context.Context, slotID uint, units int, token string) (bool, error) {
	reserved := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`
			UPDATE time_slots
			SET booked = booked + ?, updated_at = NOW()
			WHERE id = ?
			  AND archived = false
			  AND booked + ? <= capacity
			  AND EXISTS (
				SELECT 1 FROM vans
				WHERE vans.id = time_slots.van_id AND vans.status = 'active'
			  )`,
			units, slotID, units,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		reservation := &Reservation{
			Token:      token,
			TimeSlotID: slotID,
			Units:      units,
		}
		if err := tx.Create(reservation).Error; err != nil {
			return err
		}

		reserved = true
		return nil
	})

	return reserved, err
}

func (r *repository) Release(ctx context.Context, token string) (bool, error) {
	released := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&Reservation{}).
			Where("token = ? AND released = false", token).
			Updates(map[string]interface{}{"released": true, "released_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// unknown or already released, nothing to undo
			return nil
		}

		var reservation Reservation
		if err := tx.Where("token = ?", token).First(&reservation).Error; err != nil {
			return err
		}

		res = tx.Exec(`
			UPDATE time_slots
			SET booked = booked - ?, updated_at = NOW()
			WHERE id = ? AND booked >= ?`,
			reservation.Units, reservation.TimeSlotID, reservation.Units,
		)
		if res.Error != nil {
			return res.Error
		}

		released = true
		return nil
	})

	return released, err
}

func (r *repository) GetReservation(ctx context.Context, token string) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}
