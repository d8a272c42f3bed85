package van

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sparklewash/carwash-backend/internal/auditlog"
)

type fakeRepository struct {
	vans   map[uint]*Van
	nextID uint
	// vanID -> dates with at least one open slot
	openDates map[uint][]string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		vans:      make(map[uint]*Van),
		openDates: make(map[uint][]string),
	}
}

func (f *fakeRepository) Create(ctx context.Context, v *Van) error {
	f.nextID++
	v.ID = f.nextID
	copied := *v
	f.vans[v.ID] = &copied
	return nil
}

func (f *fakeRepository) GetByID(ctx context.Context, id uint) (*Van, error) {
	v, ok := f.vans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *v
	return &copied, nil
}

func (f *fakeRepository) ListActiveForService(ctx context.Context, serviceID uint, date string) ([]Van, error) {
	var out []Van
	for _, v := range f.vans {
		if v.Status != StatusActive || !v.CanServe([]uint{serviceID}) {
			continue
		}
		if date != "" && !f.hasOpenSlot(v.ID, date) {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (f *fakeRepository) hasOpenSlot(vanID uint, date string) bool {
	for _, d := range f.openDates[vanID] {
		if d == date {
			return true
		}
	}
	return false
}

func (f *fakeRepository) ListAll(ctx context.Context) ([]Van, error) {
	var out []Van
	for _, v := range f.vans {
		out = append(out, *v)
	}
	return out, nil
}

func (f *fakeRepository) UpdateStatus(ctx context.Context, id uint, status string) (bool, error) {
	v, ok := f.vans[id]
	if !ok {
		return false, nil
	}
	v.Status = status
	return true, nil
}

func (f *fakeRepository) AddRevenue(ctx context.Context, id uint, amount float64) error {
	if v, ok := f.vans[id]; ok {
		v.Revenue += amount
	}
	return nil
}

func (f *fakeRepository) Update(ctx context.Context, v *Van) error {
	copied := *v
	f.vans[v.ID] = &copied
	return nil
}

type fakeAuditService struct{}

func (fakeAuditService) LogAction(ctx context.Context, userID *uint, vanID *uint, action string, details map[string]interface{}, ip string, status string) error {
	return nil
}
func (fakeAuditService) GetAuditLogs(ctx context.Context, filter auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return nil, nil
}
func (fakeAuditService) GetAuditLogByID(ctx context.Context, id uint) (*auditlog.AuditLog, error) {
	return nil, nil
}

func TestRegisterVanDefaults(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, fakeAuditService{})

	v := &Van{Name: "Van One", Location: "Andheri East"}
	require.NoError(t, svc.RegisterVan(context.Background(), v, 1, "10.0.0.1"))

	assert.Equal(t, StatusActive, v.Status)
	assert.Equal(t, 1, v.Capacity)
	assert.NotZero(t, v.ID)
}

func TestRegisterVanRejectsBadStatus(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, fakeAuditService{})

	err := svc.RegisterVan(context.Background(), &Van{Name: "X", Status: "parked"}, 1, "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSetStatus(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, fakeAuditService{})

	v := &Van{Name: "Van One"}
	require.NoError(t, svc.RegisterVan(context.Background(), v, 1, ""))

	require.NoError(t, svc.SetStatus(context.Background(), v.ID, StatusMaintenance, 1, ""))
	got, err := svc.GetVan(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusMaintenance, got.Status)

	assert.ErrorIs(t, svc.SetStatus(context.Background(), v.ID, "parked", 1, ""), ErrInvalidStatus)
	assert.ErrorIs(t, svc.SetStatus(context.Background(), 99, StatusActive, 1, ""), ErrVanNotFound)
}

func TestListActiveVansForService(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, fakeAuditService{})

	ctx := context.Background()
	require.NoError(t, svc.RegisterVan(ctx, &Van{Name: "A", ServiceIDs: []uint{1, 2}}, 1, ""))
	require.NoError(t, svc.RegisterVan(ctx, &Van{Name: "B", ServiceIDs: []uint{2}}, 1, ""))
	require.NoError(t, svc.RegisterVan(ctx, &Van{Name: "C", Status: StatusOffline, ServiceIDs: []uint{1}}, 1, ""))

	vans, err := svc.ListActiveVansFor(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, vans, 1)
	assert.Equal(t, "A", vans[0].Name)
}

func TestListActiveVansForServiceHonorsDate(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, fakeAuditService{})

	ctx := context.Background()
	a := &Van{Name: "A", ServiceIDs: []uint{1}}
	b := &Van{Name: "B", ServiceIDs: []uint{1}}
	require.NoError(t, svc.RegisterVan(ctx, a, 1, ""))
	require.NoError(t, svc.RegisterVan(ctx, b, 1, ""))
	repo.openDates[a.ID] = []string{"2026-09-01"}

	vans, err := svc.ListActiveVansFor(ctx, 1, "2026-09-01")
	require.NoError(t, err)
	require.Len(t, vans, 1)
	assert.Equal(t, "A", vans[0].Name)

	// without a date the schedule is not consulted
	vans, err = svc.ListActiveVansFor(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, vans, 2)
}

func TestCanServe(t *testing.T) {
	v := &Van{ServiceIDs: []uint{1, 2, 3}}
	assert.True(t, v.CanServe(nil))
	assert.True(t, v.CanServe([]uint{1, 3}))
	assert.False(t, v.CanServe([]uint{1, 4}))

	empty := &Van{}
	assert.True(t, empty.CanServe(nil))
	assert.False(t, empty.CanServe([]uint{1}))
}

func TestCreditRevenueAccumulates(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, fakeAuditService{})

	v := &Van{Name: "Van One"}
	require.NoError(t, svc.RegisterVan(context.Background(), v, 1, ""))

	require.NoError(t, svc.CreditRevenue(context.Background(), v.ID, 450))
	require.NoError(t, svc.CreditRevenue(context.Background(), v.ID, 300))

	got, err := svc.GetVan(context.Background(), v.ID)
	require.NoError(t, err)
	assert.InDelta(t, 750, got.Revenue, 0.001)
}
