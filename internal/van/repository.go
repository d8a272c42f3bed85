package van

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, v *Van) error
	GetByID(ctx context.Context, id uint) (*Van, error)
	ListActiveForService(ctx context.Context, serviceID uint, date string) ([]Van, error)
	ListAll(ctx context.Context) ([]Van, error)
	UpdateStatus(ctx context.Context, id uint, status string) (bool, error)
	AddRevenue(ctx context.Context, id uint, amount float64) error
	Update(ctx context.Context, v *Van) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, v *Van) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Van, error) {
	var v Van
	err := r.db.WithContext(ctx).First(&v, id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repository) ListActiveForService(ctx context.Context, serviceID uint, date string) ([]Van, error) {
	var vans []Van
	// capability set is a jsonb array of service IDs
	q := r.db.WithContext(ctx).
		Where("status = ?", StatusActive).
		Where("service_ids @> ?", fmt.Sprintf("[%d]", serviceID))
	if date != "" {
		q = q.Where(`EXISTS (
			SELECT 1 FROM time_slots
			WHERE time_slots.van_id = vans.id
			  AND time_slots.date = ?
			  AND time_slots.archived = false
			  AND time_slots.booked < time_slots.capacity)`, date)
	}
	err := q.Order("name ASC").Find(&vans).Error
	return vans, err
}

func (r *repository) ListAll(ctx context.Context) ([]Van, error) {
	var vans []Van
	err := r.db.WithContext(ctx).Order("id ASC").Find(&vans).Error
	return vans, err
}

// UpdateStatus flips the operating status. The returned bool reports
// whether the van existed.
func (r *repository) UpdateStatus(ctx context.Context, id uint, status string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Van{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) AddRevenue(ctx context.Context, id uint, amount float64) error {
	return r.db.WithContext(ctx).Model(&Van{}).
		Where("id = ?", id).
		Update("revenue", gorm.Expr("revenue + ?", amount)).Error
}

func (r *repository) Update(ctx context.Context, v *Van) error {
	return r.db.WithContext(ctx).Save(v).Error
}
