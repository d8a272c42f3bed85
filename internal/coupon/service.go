package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sparklewash/carwash-backend/internal/storage"
	"github.com/sparklewash/carwash-backend/utils"
)

var (
	ErrCouponInvalid  = errors.New("coupon code is invalid")
	ErrCouponExpired  = errors.New("coupon is outside its validity window")
	ErrCouponDisabled = errors.New("coupon is disabled")
	ErrUsageExceeded  = errors.New("coupon usage limit reached")
	ErrMinAmountNotMet = errors.New("order subtotal below coupon minimum")
	ErrNotApplicable  = errors.New("coupon does not apply to the selected services")
)

type Service interface {
	// ValidateAndConsume runs the full validation chain against a
	// prospective order and, on success, atomically takes one usage unit.
	ValidateAndConsume(ctx context.Context, code string, subtotal float64, serviceIDs []uint, now time.Time) (*Redemption, error)

	// Release restores a consumed unit. No-op for unknown, already
	// released, or finalized tokens.
	Release(ctx context.Context, token string) error

	// Finalize pins a redemption once payment is captured.
	Finalize(ctx context.Context, token string) error

	// Operator management
	CreateCoupon(ctx context.Context, c *Coupon) error
	GetCoupon(ctx context.Context, code string) (*Coupon, error)
	ListCoupons(ctx context.Context, filter CouponFilter) ([]Coupon, int64, error)
	UpdateCoupon(ctx context.Context, c *Coupon) error
	DisableCoupon(ctx context.Context, code string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// ValidateAndConsume evaluates the checks in a fixed order; the first
// failing check wins. The final usage increment is conditional at the
// store level, so parallel consumers of the same code cannot push
// used_count past the limit even when they all pass the read-side checks.
func (s *service) ValidateAndConsume(ctx context.Context, code string, subtotal float64, serviceIDs []uint, now time.Time) (*Redemption, error) {
	c, err := s.getByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	switch c.Status {
	case StatusActive:
	case StatusDisabled:
		return nil, ErrCouponDisabled
	case StatusExpired:
		return nil, ErrCouponExpired
	default:
		return nil, ErrCouponInvalid
	}

	if now.Before(c.ValidFrom) || now.After(c.ValidTo) {
		return nil, ErrCouponExpired
	}

	if c.UsedCount >= c.UsageLimit {
		return nil, ErrUsageExceeded
	}

	if !appliesTo(c, serviceIDs) {
		return nil, ErrNotApplicable
	}

	if subtotal < c.MinAmount {
		return nil, ErrMinAmountNotMet
	}

	redemption := &Redemption{
		Token:          uuid.New().String(),
		CouponID:       c.ID,
		Code:           c.Code,
		DiscountAmount: computeDiscount(c, subtotal),
	}

	ok, err := s.repo.Consume(ctx, c.ID, redemption)
	if err != nil {
		return nil, fmt.Errorf("coupon consume failed: %w: %w", storage.ErrUnavailable, err)
	}
	if !ok {
		// lost the race for the last usage unit
		return nil, ErrUsageExceeded
	}

	utils.GetLogger().Debug("coupon consumed",
		zap.String("code", c.Code),
		zap.Float64("discount", redemption.DiscountAmount),
	)

	return redemption, nil
}

// appliesTo reports whether the coupon covers at least one of the
// requested services. An empty restriction list covers everything.
func appliesTo(c *Coupon, serviceIDs []uint) bool {
	if len(c.ApplicableServices) == 0 {
		return true
	}
	applicable := make(map[uint]struct{}, len(c.ApplicableServices))
	for _, id := range c.ApplicableServices {
		applicable[id] = struct{}{}
	}
	for _, id := range serviceIDs {
		if _, ok := applicable[id]; ok {
			return true
		}
	}
	return false
}

// computeDiscount applies the coupon's discount rule to the subtotal.
// A fixed discount never exceeds the subtotal itself.
func computeDiscount(c *Coupon, subtotal float64) float64 {
	switch c.Type {
	case TypePercentage:
		discount := subtotal * c.Value / 100
		if c.MaxDiscount > 0 && discount > c.MaxDiscount {
			discount = c.MaxDiscount
		}
		return discount
	case TypeFixed:
		if c.Value > subtotal {
			return subtotal
		}
		return c.Value
	default:
		return 0
	}
}

// getByCode resolves a code, telling a missing coupon apart from a store
// failure.
func (s *service) getByCode(ctx context.Context, code string) (*Coupon, error) {
	c, err := s.repo.GetByCode(ctx, strings.TrimSpace(strings.ToUpper(code)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCouponInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("coupon lookup failed: %w: %w", storage.ErrUnavailable, err)
	}
	return c, nil
}

func (s *service) Release(ctx context.Context, token string) error {
	released, err := s.repo.ReleaseRedemption(ctx, token)
	if err != nil {
		return fmt.Errorf("coupon release failed: %w: %w", storage.ErrUnavailable, err)
	}
	if released {
		utils.GetLogger().Debug("coupon redemption released", zap.String("token", token))
	}
	return nil
}

func (s *service) Finalize(ctx context.Context, token string) error {
	if err := s.repo.FinalizeRedemption(ctx, token); err != nil {
		return fmt.Errorf("coupon finalize failed: %w: %w", storage.ErrUnavailable, err)
	}
	return nil
}

func (s *service) CreateCoupon(ctx context.Context, c *Coupon) error {
	c.Code = strings.TrimSpace(strings.ToUpper(c.Code))
	if c.Code == "" {
		return errors.New("coupon code is required")
	}
	if c.Type != TypePercentage && c.Type != TypeFixed {
		return errors.New("coupon type must be 'percentage' or 'fixed'")
	}
	if c.Value <= 0 {
		return errors.New("coupon value must be positive")
	}
	if c.UsageLimit <= 0 {
		return errors.New("usage limit must be positive")
	}
	if !c.ValidFrom.Before(c.ValidTo) {
		return errors.New("validity window is empty")
	}
	if c.Status == "" {
		c.Status = StatusActive
	}
	c.UsedCount = 0

	return s.repo.Create(ctx, c)
}

func (s *service) GetCoupon(ctx context.Context, code string) (*Coupon, error) {
	return s.getByCode(ctx, code)
}

func (s *service) ListCoupons(ctx context.Context, filter CouponFilter) ([]Coupon, int64, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) UpdateCoupon(ctx context.Context, c *Coupon) error {
	return s.repo.Update(ctx, c)
}

func (s *service) DisableCoupon(ctx context.Context, code string) error {
	c, err := s.getByCode(ctx, code)
	if err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, c.ID, StatusDisabled)
}
