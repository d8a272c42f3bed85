package coupon

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, c *Coupon) error
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	List(ctx context.Context, filter CouponFilter) ([]Coupon, int64, error)
	Update(ctx context.Context, c *Coupon) error
	UpdateStatus(ctx context.Context, id uint, status string) error

	// Consume atomically takes one usage unit and records the redemption.
	// ok=false means the usage limit was hit (or the coupon was disabled
	// concurrently).
	Consume(ctx context.Context, couponID uint, redemption *Redemption) (ok bool, err error)

	// ReleaseRedemption idempotently restores a consumed unit. Finalized
	// redemptions are never released. ok=false when nothing changed.
	ReleaseRedemption(ctx context.Context, token string) (ok bool, err error)

	// FinalizeRedemption pins a redemption after payment capture so a
	// later cancel-and-rebook cycle cannot restore the unit.
	FinalizeRedemption(ctx context.Context, token string) error

	GetRedemption(ctx context.Context, token string) (*Redemption, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Coupon) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	var c Coupon
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, filter CouponFilter) ([]Coupon, int64, error) {
	var coupons []Coupon
	var total int64

	query := r.db.WithContext(ctx).Model(&Coupon{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Code != "" {
		query = query.Where("code ILIKE ?", "%"+filter.Code+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	err := query.Order("created_at DESC").Find(&coupons).Error
	return coupons, total, err
}

func (r *repository) Update(ctx context.Context, c *Coupon) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&Coupon{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Consume uses a conditional UPDATE for the check-then-increment, so
// concurrent validations of the same code serialize on the coupon row and
// used_count can never pass usage_limit.
func (r *repository) Consume(ctx context.Context, couponID uint, redemption *Redemption) (bool, error) {
	consumed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`
			UPDATE coupons
			SET used_count = used_count + 1, updated_at = NOW()
			WHERE id = ?
			  AND status = 'active'
			  AND used_count < usage_limit`,
			couponID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := tx.Create(redemption).Error; err != nil {
			return err
		}

		consumed = true
		return nil
	})

	return consumed, err
}

func (r *repository) ReleaseRedemption(ctx context.Context, token string) (bool, error) {
	released := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&Redemption{}).
			Where("token = ? AND released = false AND finalized = false", token).
			Updates(map[string]interface{}{"released": true, "released_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var redemption Redemption
		if err := tx.Where("token = ?", token).First(&redemption).Error; err != nil {
			return err
		}

		res = tx.Exec(`
			UPDATE coupons
			SET used_count = used_count - 1, updated_at = NOW()
			WHERE id = ? AND used_count > 0`,
			redemption.CouponID,
		)
		if res.Error != nil {
			return res.Error
		}

		released = true
		return nil
	})

	return released, err
}

func (r *repository) FinalizeRedemption(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Model(&Redemption{}).
		Where("token = ? AND released = false", token).
		Update("finalized", true).Error
}

func (r *repository) GetRedemption(ctx context.Context, token string) (*Redemption, error) {
	var redemption Redemption
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&redemption).Error
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}
