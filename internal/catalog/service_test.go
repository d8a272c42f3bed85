package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepository struct {
	services map[uint]*WashService
	packages map[uint]*Package
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		services: make(map[uint]*WashService),
		packages: make(map[uint]*Package),
	}
}

func (f *fakeRepository) CreateService(ctx context.Context, svc *WashService) error {
	svc.ID = uint(len(f.services) + 1)
	f.services[svc.ID] = svc
	return nil
}

func (f *fakeRepository) GetServiceByID(ctx context.Context, id uint) (*WashService, error) {
	svc, ok := f.services[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return svc, nil
}

func (f *fakeRepository) GetServicesByIDs(ctx context.Context, ids []uint) ([]WashService, error) {
	var out []WashService
	for _, id := range ids {
		if svc, ok := f.services[id]; ok {
			out = append(out, *svc)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListServices(ctx context.Context, category string, availableOnly bool) ([]WashService, error) {
	var out []WashService
	for _, svc := range f.services {
		if category != "" && svc.Category != category {
			continue
		}
		if availableOnly && !svc.Available {
			continue
		}
		out = append(out, *svc)
	}
	return out, nil
}

func (f *fakeRepository) UpdateService(ctx context.Context, svc *WashService) error {
	f.services[svc.ID] = svc
	return nil
}

func (f *fakeRepository) CreatePackage(ctx context.Context, pkg *Package) error {
	pkg.ID = uint(len(f.packages) + 1)
	f.packages[pkg.ID] = pkg
	return nil
}

func (f *fakeRepository) GetPackageByID(ctx context.Context, id uint) (*Package, error) {
	pkg, ok := f.packages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return pkg, nil
}

func (f *fakeRepository) ListPackages(ctx context.Context) ([]Package, error) { return nil, nil }
func (f *fakeRepository) UpdatePackage(ctx context.Context, pkg *Package) error {
	f.packages[pkg.ID] = pkg
	return nil
}

func (f *fakeRepository) CreateBanner(ctx context.Context, banner *Banner) error { return nil }
func (f *fakeRepository) ListBanners(ctx context.Context, position string, activeOnly bool) ([]Banner, error) {
	return nil, nil
}
func (f *fakeRepository) UpdateBanner(ctx context.Context, banner *Banner) error { return nil }
func (f *fakeRepository) DeleteBanner(ctx context.Context, id uint) error        { return nil }

func seedCatalog(t *testing.T, repo *fakeRepository) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.CreateService(ctx, &WashService{Name: "Exterior Wash", Category: "basic", Price: 300, Available: true}))
	require.NoError(t, repo.CreateService(ctx, &WashService{Name: "Interior Detail", Category: "premium", Price: 700, Available: true}))
	require.NoError(t, repo.CreateService(ctx, &WashService{Name: "Wax Coat", Category: "addon", Price: 200, Available: false}))
	require.NoError(t, repo.CreatePackage(ctx, &Package{Name: "Full Shine", Price: 850, ServiceIDs: []uint{1, 2}}))
}

func TestPriceOrderSumsServices(t *testing.T) {
	repo := newFakeRepository()
	seedCatalog(t, repo)
	svc := NewService(repo)

	total, err := svc.PriceOrder(context.Background(), []uint{1, 2}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1000, total, 0.001)
}

func TestPriceOrderUsesPackagePrice(t *testing.T) {
	repo := newFakeRepository()
	seedCatalog(t, repo)
	svc := NewService(repo)

	pkgID := uint(1)
	// the package price wins over the sum of its services
	total, err := svc.PriceOrder(context.Background(), []uint{1, 2}, &pkgID)
	require.NoError(t, err)
	assert.InDelta(t, 850, total, 0.001)
}

func TestPriceOrderRejectsUnknownPackage(t *testing.T) {
	repo := newFakeRepository()
	seedCatalog(t, repo)
	svc := NewService(repo)

	pkgID := uint(42)
	_, err := svc.PriceOrder(context.Background(), nil, &pkgID)
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestPriceOrderRejectsMissingService(t *testing.T) {
	repo := newFakeRepository()
	seedCatalog(t, repo)
	svc := NewService(repo)

	_, err := svc.PriceOrder(context.Background(), []uint{1, 42}, nil)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestPriceOrderRejectsUnavailableService(t *testing.T) {
	repo := newFakeRepository()
	seedCatalog(t, repo)
	svc := NewService(repo)

	_, err := svc.PriceOrder(context.Background(), []uint{1, 3}, nil)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestPriceOrderRejectsEmptyOrder(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	_, err := svc.PriceOrder(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestCreateServiceValidatesCategory(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	err := svc.CreateService(context.Background(), &WashService{Name: "X", Category: "luxury"})
	assert.Error(t, err)

	created := &WashService{Name: "X"}
	require.NoError(t, svc.CreateService(context.Background(), created))
	assert.Equal(t, "basic", created.Category)
}
