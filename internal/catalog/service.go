package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sparklewash/carwash-backend/internal/storage"
)

var (
	ErrServiceNotFound     = errors.New("wash service not found")
	ErrServiceUnavailable  = errors.New("wash service is not available")
	ErrPackageNotFound     = errors.New("package not found")
	ErrEmptyOrder          = errors.New("order must contain at least one service or a package")
)

type Service interface {
	// Pricing
	PriceOrder(ctx context.Context, serviceIDs []uint, packageID *uint) (float64, error)

	// Wash services
	CreateService(ctx context.Context, svc *WashService) error
	GetService(ctx context.Context, id uint) (*WashService, error)
	ListServices(ctx context.Context, category string, availableOnly bool) ([]WashService, error)
	UpdateService(ctx context.Context, svc *WashService) error

	// Packages
	CreatePackage(ctx context.Context, pkg *Package) error
	GetPackage(ctx context.Context, id uint) (*Package, error)
	ListPackages(ctx context.Context) ([]Package, error)

	// Banners
	CreateBanner(ctx context.Context, banner *Banner) error
	ListBanners(ctx context.Context, position string, activeOnly bool) ([]Banner, error)
	UpdateBanner(ctx context.Context, banner *Banner) error
	DeleteBanner(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// PriceOrder computes the subtotal for a prospective booking: the package
// price when a package is chosen, otherwise the sum of the chosen services.
// Every referenced service must exist and be bookable.
func (s *service) PriceOrder(ctx context.Context, serviceIDs []uint, packageID *uint) (float64, error) {
	if packageID != nil {
		pkg, err := s.GetPackage(ctx, *packageID)
		if err != nil {
			return 0, err
		}
		return pkg.Price, nil
	}

	if len(serviceIDs) == 0 {
		return 0, ErrEmptyOrder
	}

	services, err := s.repo.GetServicesByIDs(ctx, serviceIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to load services: %w: %w", storage.ErrUnavailable, err)
	}

	found := make(map[uint]WashService, len(services))
	for _, svc := range services {
		found[svc.ID] = svc
	}

	var subtotal float64
	for _, id := range serviceIDs {
		svc, ok := found[id]
		if !ok {
			return 0, ErrServiceNotFound
		}
		if !svc.Available {
			return 0, ErrServiceUnavailable
		}
		subtotal += svc.Price
	}

	return subtotal, nil
}

func (s *service) CreateService(ctx context.Context, svc *WashService) error {
	validCategories := map[string]bool{"basic": true, "premium": true, "addon": true}
	if svc.Category == "" {
		svc.Category = "basic"
	} else if !validCategories[svc.Category] {
		return fmt.Errorf("invalid category %q, must be 'basic', 'premium', or 'addon'", svc.Category)
	}
	return s.repo.CreateService(ctx, svc)
}

func (s *service) GetService(ctx context.Context, id uint) (*WashService, error) {
	svc, err := s.repo.GetServiceByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("service lookup failed: %w: %w", storage.ErrUnavailable, err)
	}
	return svc, nil
}

func (s *service) ListServices(ctx context.Context, category string, availableOnly bool) ([]WashService, error) {
	return s.repo.ListServices(ctx, category, availableOnly)
}

func (s *service) UpdateService(ctx context.Context, svc *WashService) error {
	return s.repo.UpdateService(ctx, svc)
}

func (s *service) CreatePackage(ctx context.Context, pkg *Package) error {
	// every constituent service must exist
	for _, id := range pkg.ServiceIDs {
		if _, err := s.repo.GetServiceByID(ctx, id); err != nil {
			return ErrServiceNotFound
		}
	}
	return s.repo.CreatePackage(ctx, pkg)
}

func (s *service) GetPackage(ctx context.Context, id uint) (*Package, error) {
	pkg, err := s.repo.GetPackageByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("package lookup failed: %w: %w", storage.ErrUnavailable, err)
	}
	return pkg, nil
}

func (s *service) ListPackages(ctx context.Context) ([]Package, error) {
	return s.repo.ListPackages(ctx)
}

func (s *service) CreateBanner(ctx context.Context, banner *Banner) error {
	validPositions := map[string]bool{"hero": true, "middle": true, "footer": true}
	if banner.Position == "" {
		banner.Position = "hero"
	} else if !validPositions[banner.Position] {
		return fmt.Errorf("invalid position %q, must be 'hero', 'middle', or 'footer'", banner.Position)
	}
	return s.repo.CreateBanner(ctx, banner)
}

func (s *service) ListBanners(ctx context.Context, position string, activeOnly bool) ([]Banner, error) {
	return s.repo.ListBanners(ctx, position, activeOnly)
}

func (s *service) UpdateBanner(ctx context.Context, banner *Banner) error {
	return s.repo.UpdateBanner(ctx, banner)
}

func (s *service) DeleteBanner(ctx context.Context, id uint) error {
	return s.repo.DeleteBanner(ctx, id)
}
