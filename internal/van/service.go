package van

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sparklewash/carwash-backend/internal/auditlog"
	"github.com/sparklewash/carwash-backend/internal/storage"
	"github.com/sparklewash/carwash-backend/utils"
)

var (
	ErrVanNotFound    = errors.New("van not found")
	ErrVanUnavailable = errors.New("van is not available")
	ErrInvalidStatus  = errors.New("invalid van status")
)

type Service interface {
	RegisterVan(ctx context.Context, v *Van, operatorID uint, ip string) error
	GetVan(ctx context.Context, id uint) (*Van, error)
	ListActiveVansFor(ctx context.Context, serviceID uint, date string) ([]Van, error)
	ListVans(ctx context.Context) ([]Van, error)
	SetStatus(ctx context.Context, id uint, newStatus string, operatorID uint, ip string) error
	CreditRevenue(ctx context.Context, id uint, amount float64) error
	UpdateVan(ctx context.Context, v *Van) error
}

type service struct {
	repo     Repository
	auditSvc auditlog.Service
}

func NewService(repo Repository, auditSvc auditlog.Service) Service {
	return &service{repo: repo, auditSvc: auditSvc}
}

func (s *service) RegisterVan(ctx context.Context, v *Van, operatorID uint, ip string) error {
	if v.Status == "" {
		v.Status = StatusActive
	}
	if !ValidStatus(v.Status) {
		return ErrInvalidStatus
	}
	if v.Capacity <= 0 {
		v.Capacity = 1
	}

	if err := s.repo.Create(ctx, v); err != nil {
		return fmt.Errorf("failed to register van: %w: %w", storage.ErrUnavailable, err)
	}

	s.auditSvc.LogAction(ctx, &operatorID, &v.ID, "VAN_REGISTERED", map[string]interface{}{
		"name":     v.Name,
		"location": v.Location,
		"capacity": v.Capacity,
	}, ip, "success")

	return nil
}

func (s *service) GetVan(ctx context.Context, id uint) (*Van, error) {
	v, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("van lookup failed: %w: %w", storage.ErrUnavailable, err)
	}
	return v, nil
}

// ListActiveVansFor returns the active vans able to perform a service.
// With a date given, vans with no open slot that day are filtered out.
func (s *service) ListActiveVansFor(ctx context.Context, serviceID uint, date string) ([]Van, error) {
	return s.repo.ListActiveForService(ctx, serviceID, date)
}

func (s *service) ListVans(ctx context.Context) ([]Van, error) {
	return s.repo.ListAll(ctx)
}

// SetStatus changes a van's operating status. Moving to maintenance or
// offline stops the slot allocator from issuing new reservations for the
// van (the allocator checks van status inside its atomic reserve), while
// bookings already confirmed stay untouched.
func (s *service) SetStatus(ctx context.Context, id uint, newStatus string, operatorID uint, ip string) error {
	if !ValidStatus(newStatus) {
		return ErrInvalidStatus
	}

	updated, err := s.repo.UpdateStatus(ctx, id, newStatus)
	if err != nil {
		s.auditSvc.LogAction(ctx, &operatorID, &id, "VAN_STATUS_CHANGE_FAILED", map[string]interface{}{
			"new_status": newStatus,
			"error":      err.Error(),
		}, ip, "failure")
		return fmt.Errorf("failed to update van status: %w: %w", storage.ErrUnavailable, err)
	}
	if !updated {
		return ErrVanNotFound
	}

	utils.GetLogger().Info("van status changed",
		zap.Uint("van_id", id),
		zap.String("status", newStatus),
	)

	s.auditSvc.LogAction(ctx, &operatorID, &id, "VAN_STATUS_CHANGED", map[string]interface{}{
		"new_status": newStatus,
	}, ip, "success")

	return nil
}

func (s *service) CreditRevenue(ctx context.Context, id uint, amount float64) error {
	if err := s.repo.AddRevenue(ctx, id, amount); err != nil {
		return fmt.Errorf("failed to credit revenue: %w: %w", storage.ErrUnavailable, err)
	}
	return nil
}

func (s *service) UpdateVan(ctx context.Context, v *Van) error {
	return s.repo.Update(ctx, v)
}
