package catalog

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// Wash services
	CreateService(ctx context.Context, svc *WashService) error
	GetServiceByID(ctx context.Context, id uint) (*WashService, error)
	GetServicesByIDs(ctx context.Context, ids []uint) ([]WashService, error)
	ListServices(ctx context.Context, category string, availableOnly bool) ([]WashService, error)
	UpdateService(ctx context.Context, svc *WashService) error

	// Packages
	CreatePackage(ctx context.Context, pkg *Package) error
	GetPackageByID(ctx context.Context, id uint) (*Package, error)
	ListPackages(ctx context.Context) ([]Package, error)
	UpdatePackage(ctx context.Context, pkg *Package) error

	// Banners
	CreateBanner(ctx context.Context, banner *Banner) error
	ListBanners(ctx context.Context, position string, activeOnly bool) ([]Banner, error)
	UpdateBanner(ctx context.Context, banner *Banner) error
	DeleteBanner(ctx context.Context, id uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// -----------------------------------------
// Wash services
// -----------------------------------------

func (r *repository) CreateService(ctx context.Context, svc *WashService) error {
	return r.db.WithContext(ctx).Create(svc).Error
}

func (r *repository) GetServiceByID(ctx context.Context, id uint) (*WashService, error) {
	var svc WashService
	err := r.db.WithContext(ctx).First(&svc, id).Error
	return &svc, err
}

func (r *repository) GetServicesByIDs(ctx context.Context, ids []uint) ([]WashService, error) {
	var services []WashService
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&services).Error
	return services, err
}

func (r *repository) ListServices(ctx context.Context, category string, availableOnly bool) ([]WashService, error) {
	var services []WashService

	query := r.db.WithContext(ctx).Model(&WashService{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if availableOnly {
		query = query.Where("available = true")
	}

	err := query.Order("price ASC").Find(&services).Error
	return services, err
}

func (r *repository) UpdateService(ctx context.Context, svc *WashService) error {
	return r.db.WithContext(ctx).Save(svc).Error
}

// -----------------------------------------
// Packages
// -----------------------------------------

func (r *repository) CreatePackage(ctx context.Context, pkg *Package) error {
	return r.db.WithContext(ctx).Create(pkg).Error
}

func (r *repository) GetPackageByID(ctx context.Context, id uint) (*Package, error) {
	var pkg Package
	err := r.db.WithContext(ctx).First(&pkg, id).Error
	return &pkg, err
}

func (r *repository) ListPackages(ctx context.Context) ([]Package, error) {
	var packages []Package
	err := r.db.WithContext(ctx).Order("price ASC").Find(&packages).Error
	return packages, err
}

func (r *repository) UpdatePackage(ctx context.Context, pkg *Package) error {
	return r.db.WithContext(ctx).Save(pkg).Error
}

// -----------------------------------------
// Banners
// -----------------------------------------

func (r *repository) CreateBanner(ctx context.Context, banner *Banner) error {
	return r.db.WithContext(ctx).Create(banner).Error
}

func (r *repository) ListBanners(ctx context.Context, position string, activeOnly bool) ([]Banner, error) {
	var banners []Banner

	query := r.db.WithContext(ctx).Model(&Banner{})
	if position != "" {
		query = query.Where("position = ?", position)
	}
	if activeOnly {
		query = query.Where("active = true")
	}

	err := query.Order("display_order ASC").Find(&banners).Error
	return banners, err
}

func (r *repository) UpdateBanner(ctx context.Context, banner *Banner) error {
	return r.db.WithContext(ctx).Save(banner).Error
}

func (r *repository) DeleteBanner(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&Banner{}, id).Error
}
