package booking

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sparklewash/carwash-backend/config"
	"github.com/sparklewash/carwash-backend/internal/auditlog"
	"github.com/sparklewash/carwash-backend/internal/catalog"
	"github.com/sparklewash/carwash-backend/internal/coupon"
	"github.com/sparklewash/carwash-backend/internal/slot"
	"github.com/sparklewash/carwash-backend/internal/storage"
	"github.com/sparklewash/carwash-backend/internal/van"
)

// ---------------------------------------------------------------------------
// In-memory collaborators
// ---------------------------------------------------------------------------

type fakeBookingRepo struct {
	mu        sync.Mutex
	bookings  map[uint]*Booking
	nextID    uint
	createErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uint]*Booking)}
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	b.ID = f.nextID
	copied := *b
	f.bookings[b.ID] = &copied
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id uint) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) ListByUser(ctx context.Context, userID uint) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListByVanAndDate(ctx context.Context, vanID uint, date string) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.bookings {
		if b.VanID == vanID && b.Date == date {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) Search(ctx context.Context, filter BookingFilter) ([]Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (f *fakeBookingRepo) CountByStatus(ctx context.Context, vanID *uint) (StatusCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var counts StatusCounts
	for _, b := range f.bookings {
		if vanID != nil && b.VanID != *vanID {
			continue
		}
		counts.Total++
		switch b.Status {
		case StatusPending:
			counts.Pending++
		case StatusConfirmed:
			counts.Confirmed++
		case StatusInProgress:
			counts.InProgress++
		case StatusCompleted:
			counts.Completed++
		case StatusCancelled:
			counts.Cancelled++
		}
	}
	return counts, nil
}

func (f *fakeBookingRepo) transition(id uint, from, to string, apply func(*Booking)) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	if apply != nil {
		apply(b)
	}
	return true, nil
}

func (f *fakeBookingRepo) MarkConfirmed(ctx context.Context, id uint, paymentID string) (bool, error) {
	return f.transition(id, StatusPending, StatusConfirmed, func(b *Booking) {
		b.PaymentStatus = PaymentPaid
		b.PaymentID = paymentID
	})
}

func (f *fakeBookingRepo) MarkInProgress(ctx context.Context, id uint) (bool, error) {
	return f.transition(id, StatusConfirmed, StatusInProgress, nil)
}

func (f *fakeBookingRepo) MarkCompleted(ctx context.Context, id uint) (bool, error) {
	return f.transition(id, StatusInProgress, StatusCompleted, nil)
}

func (f *fakeBookingRepo) MarkCancelled(ctx context.Context, id uint, reason string) (*Booking, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, false, gorm.ErrRecordNotFound
	}
	if b.Terminal() {
		return nil, false, nil
	}
	prior := *b
	b.Status = StatusCancelled
	b.CancelReason = reason
	if b.PaymentStatus == PaymentPaid {
		b.PaymentStatus = PaymentRefunded
	}
	return &prior, true, nil
}

// fakeVanService serves one van and records revenue credits.
type fakeVanService struct {
	mu      sync.Mutex
	van     *van.Van
	credits []float64
}

func (f *fakeVanService) GetVan(ctx context.Context, id uint) (*van.Van, error) {
	if f.van == nil || f.van.ID != id {
		return nil, van.ErrVanNotFound
	}
	copied := *f.van
	return &copied, nil
}

func (f *fakeVanService) CreditRevenue(ctx context.Context, id uint, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credits = append(f.credits, amount)
	return nil
}

func (f *fakeVanService) RegisterVan(ctx context.Context, v *van.Van, operatorID uint, ip string) error {
	return nil
}
func (f *fakeVanService) ListActiveVansFor(ctx context.Context, serviceID uint, date string) ([]van.Van, error) {
	return nil, nil
}
func (f *fakeVanService) ListVans(ctx context.Context) ([]van.Van, error) { return nil, nil }
func (f *fakeVanService) SetStatus(ctx context.Context, id uint, newStatus string, operatorID uint, ip string) error {
	return nil
}
func (f *fakeVanService) UpdateVan(ctx context.Context, v *van.Van) error { return nil }

// fakeSlotService enforces one slot's capacity with the allocator's
// reserve/release contract.
type fakeSlotService struct {
	mu       sync.Mutex
	slot     slot.TimeSlot
	booked   int
	held     map[string]bool // token -> released
	releases int
}

func newFakeSlotService(vanID uint, date string, capacity int) *fakeSlotService {
	return &fakeSlotService{
		slot: slot.TimeSlot{ID: 10, VanID: vanID, Date: date, StartTime: "09:00", EndTime: "10:00", Capacity: capacity},
		held: make(map[string]bool),
	}
}

func (f *fakeSlotService) Reserve(ctx context.Context, vanID uint, date string, slotID uint, units int) (*slot.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if slotID != f.slot.ID || vanID != f.slot.VanID || date != f.slot.Date {
		return nil, slot.ErrSlotMismatch
	}
	if f.booked+units > f.slot.Capacity {
		return nil, slot.ErrSlotUnavailable
	}
	f.booked += units
	token := uuid.New().String()
	f.held[token] = false
	return &slot.Reservation{Token: token, TimeSlotID: slotID, Units: units}, nil
}

func (f *fakeSlotService) Release(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	released, ok := f.held[token]
	if !ok || released {
		return nil
	}
	f.held[token] = true
	f.booked--
	f.releases++
	return nil
}

func (f *fakeSlotService) ListAvailable(ctx context.Context, vanID uint, date string) ([]slot.TimeSlot, error) {
	return nil, nil
}
func (f *fakeSlotService) CreateSlot(ctx context.Context, s *slot.TimeSlot) error { return nil }
func (f *fakeSlotService) GenerateDay(ctx context.Context, vanID uint, date, openTime, closeTime string, slotMinutes, capacity int) ([]slot.TimeSlot, error) {
	return nil, nil
}
func (f *fakeSlotService) GetSlot(ctx context.Context, id uint) (*slot.TimeSlot, error) {
	copied := f.slot
	return &copied, nil
}
func (f *fakeSlotService) ArchiveSlot(ctx context.Context, id uint) error { return nil }

// fakeCouponService hands out a fixed discount, or fails with failErr.
type fakeCouponService struct {
	mu             sync.Mutex
	discount       float64
	failErr        error
	released       map[string]bool
	finalized      map[string]bool
	lastServiceIDs []uint
}

func newFakeCouponService(discount float64) *fakeCouponService {
	return &fakeCouponService{
		discount:  discount,
		released:  make(map[string]bool),
		finalized: make(map[string]bool),
	}
}

func (f *fakeCouponService) ValidateAndConsume(ctx context.Context, code string, subtotal float64, serviceIDs []uint, now time.Time) (*coupon.Redemption, error) {
	f.mu.Lock()
	f.lastServiceIDs = serviceIDs
	f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	return &coupon.Redemption{
		Token:          uuid.New().String(),
		Code:           code,
		DiscountAmount: f.discount,
	}, nil
}

func (f *fakeCouponService) Release(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finalized[token] {
		return nil
	}
	f.released[token] = true
	return nil
}

func (f *fakeCouponService) Finalize(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalized[token] = true
	return nil
}

func (f *fakeCouponService) CreateCoupon(ctx context.Context, c *coupon.Coupon) error { return nil }
func (f *fakeCouponService) GetCoupon(ctx context.Context, code string) (*coupon.Coupon, error) {
	return nil, coupon.ErrCouponInvalid
}
func (f *fakeCouponService) ListCoupons(ctx context.Context, filter coupon.CouponFilter) ([]coupon.Coupon, int64, error) {
	return nil, 0, nil
}
func (f *fakeCouponService) UpdateCoupon(ctx context.Context, c *coupon.Coupon) error { return nil }
func (f *fakeCouponService) DisableCoupon(ctx context.Context, code string) error     { return nil }

// fakeCatalogService prices every order at a flat subtotal and can serve
// one package.
type fakeCatalogService struct {
	subtotal float64
	priceErr error
	pkg      *catalog.Package
}

func (f *fakeCatalogService) PriceOrder(ctx context.Context, serviceIDs []uint, packageID *uint) (float64, error) {
	if f.priceErr != nil {
		return 0, f.priceErr
	}
	return f.subtotal, nil
}

func (f *fakeCatalogService) CreateService(ctx context.Context, svc *catalog.WashService) error {
	return nil
}
func (f *fakeCatalogService) GetService(ctx context.Context, id uint) (*catalog.WashService, error) {
	return nil, catalog.ErrServiceNotFound
}
func (f *fakeCatalogService) ListServices(ctx context.Context, category string, availableOnly bool) ([]catalog.WashService, error) {
	return nil, nil
}
func (f *fakeCatalogService) UpdateService(ctx context.Context, svc *catalog.WashService) error {
	return nil
}
func (f *fakeCatalogService) CreatePackage(ctx context.Context, pkg *catalog.Package) error {
	return nil
}
func (f *fakeCatalogService) GetPackage(ctx context.Context, id uint) (*catalog.Package, error) {
	if f.pkg != nil && f.pkg.ID == id {
		copied := *f.pkg
		return &copied, nil
	}
	return nil, catalog.ErrPackageNotFound
}
func (f *fakeCatalogService) ListPackages(ctx context.Context) ([]catalog.Package, error) {
	return nil, nil
}
func (f *fakeCatalogService) CreateBanner(ctx context.Context, banner *catalog.Banner) error {
	return nil
}
func (f *fakeCatalogService) ListBanners(ctx context.Context, position string, activeOnly bool) ([]catalog.Banner, error) {
	return nil, nil
}
func (f *fakeCatalogService) UpdateBanner(ctx context.Context, banner *catalog.Banner) error {
	return nil
}
func (f *fakeCatalogService) DeleteBanner(ctx context.Context, id uint) error { return nil }

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

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	svc     Service
	repo    *fakeBookingRepo
	vans    *fakeVanService
	slots   *fakeSlotService
	coupons *fakeCouponService
	catalog *fakeCatalogService
}

func newFixture(t *testing.T, slotCapacity int) *fixture {
	t.Helper()
	f := &fixture{
		repo:    newFakeBookingRepo(),
		vans:    &fakeVanService{van: &van.Van{ID: 1, Name: "Van One", Status: van.StatusActive, Capacity: slotCapacity, ServiceIDs: []uint{1}}},
		slots:   newFakeSlotService(1, "2026-09-01", slotCapacity),
		coupons: newFakeCouponService(50),
		catalog: &fakeCatalogService{subtotal: 500},
	}
	f.svc = NewService(f.repo, f.vans, f.slots, f.coupons, f.catalog, fakeAuditService{}, nil)
	return f
}

func (f *fixture) createRequest() CreateBookingRequest {
	return CreateBookingRequest{
		UserID:     7,
		VanID:      1,
		ServiceIDs: []uint{1},
		Date:       "2026-09-01",
		TimeSlotID: 10,
		Address:    Address{Street: "12 Marine Drive", City: "Mumbai", Pincode: "400001"},
	}
}

// ---------------------------------------------------------------------------
// CreateBooking
// ---------------------------------------------------------------------------

func TestCreateBookingHappyPath(t *testing.T) {
	f := newFixture(t, 2)

	req := f.createRequest()
	req.CouponCode = "SAVE50"

	b, err := f.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, PaymentPending, b.PaymentStatus)
	assert.InDelta(t, 500, b.TotalAmount, 0.001)
	assert.InDelta(t, 50, b.DiscountAmount, 0.001)
	assert.InDelta(t, 450, b.PayableAmount(), 0.001)
	assert.NotEmpty(t, b.ReservationToken)
	assert.NotEmpty(t, b.CouponToken)
	assert.Equal(t, 1, f.slots.booked)
}

func TestCreateBookingWithoutCoupon(t *testing.T) {
	f := newFixture(t, 2)

	b, err := f.svc.CreateBooking(context.Background(), f.createRequest())
	require.NoError(t, err)

	assert.Zero(t, b.DiscountAmount)
	assert.Empty(t, b.CouponToken)
	assert.InDelta(t, 500, b.PayableAmount(), 0.001)
}

func TestCreateBookingRejectsUnknownVan(t *testing.T) {
	f := newFixture(t, 2)
	req := f.createRequest()
	req.VanID = 99

	_, err := f.svc.CreateBooking(context.Background(), req)
	assert.ErrorIs(t, err, van.ErrVanNotFound)
	assert.Zero(t, f.slots.booked)
}

func TestCreateBookingRejectsInactiveVan(t *testing.T) {
	f := newFixture(t, 2)
	f.vans.van.Status = van.StatusMaintenance

	_, err := f.svc.CreateBooking(context.Background(), f.createRequest())
	assert.ErrorIs(t, err, van.ErrVanUnavailable)
	assert.Zero(t, f.slots.booked)
}

func TestCreateBookingRejectsUncoveredService(t *testing.T) {
	f := newFixture(t, 2)
	f.vans.van.ServiceIDs = []uint{2, 3}

	req := f.createRequest() // asks for service 1
	_, err := f.svc.CreateBooking(context.Background(), req)
	assert.ErrorIs(t, err, van.ErrVanUnavailable)
}

func TestCreateBookingFailsWhenSlotFull(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.svc.CreateBooking(context.Background(), f.createRequest())
	require.NoError(t, err)

	_, err = f.svc.CreateBooking(context.Background(), f.createRequest())
	assert.ErrorIs(t, err, slot.ErrSlotUnavailable)
	assert.Equal(t, 1, f.slots.booked)
}

// A coupon rejection after the slot was held must hand the capacity back.
func TestCreateBookingCouponFailureReleasesSlot(t *testing.T) {
	f := newFixture(t, 2)
	f.coupons.failErr = coupon.ErrUsageExceeded

	req := f.createRequest()
	req.CouponCode = "SAVE50"

	_, err := f.svc.CreateBooking(context.Background(), req)
	assert.ErrorIs(t, err, coupon.ErrUsageExceeded)
	assert.Zero(t, f.slots.booked)
	assert.Equal(t, 1, f.slots.releases)
}

// A pricing failure happens after the reservation; same compensation rule.
func TestCreateBookingPricingFailureReleasesSlot(t *testing.T) {
	f := newFixture(t, 2)
	f.svc = NewService(f.repo, f.vans, f.slots, f.coupons, &fakeCatalogService{priceErr: catalog.ErrServiceUnavailable}, fakeAuditService{}, nil)

	_, err := f.svc.CreateBooking(context.Background(), f.createRequest())
	assert.ErrorIs(t, err, catalog.ErrServiceUnavailable)
	assert.Zero(t, f.slots.booked)
}

// When the final persist fails both the slot unit and the coupon unit
// must come back, and the failure reads as a store outage.
func TestCreateBookingPersistFailureReleasesEverything(t *testing.T) {
	f := newFixture(t, 2)
	f.repo.createErr = errors.New("connection reset")

	req := f.createRequest()
	req.CouponCode = "SAVE50"

	_, err := f.svc.CreateBooking(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.Zero(t, f.slots.booked)
	assert.Len(t, f.coupons.released, 1)
}

// A package booking is checked against the services the package bundles:
// a van that cannot perform them must refuse it, and an applicable coupon
// must see the member set rather than an empty list.
func TestCreateBookingPackageUsesMemberServices(t *testing.T) {
	f := newFixture(t, 2)
	pkgID := uint(5)
	f.catalog.pkg = &catalog.Package{ID: pkgID, Name: "Monsoon Combo", ServiceIDs: []uint{1, 4}, Price: 850}

	req := f.createRequest()
	req.ServiceIDs = nil
	req.PackageID = &pkgID
	req.CouponCode = "SAVE50"

	// van serves only service 1, the package needs 1 and 4
	_, err := f.svc.CreateBooking(context.Background(), req)
	assert.ErrorIs(t, err, van.ErrVanUnavailable)
	assert.Zero(t, f.slots.booked)

	f.vans.van.ServiceIDs = []uint{1, 4}
	b, err := f.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, []uint{1, 4}, f.coupons.lastServiceIDs)
}

func TestCreateBookingRejectsUnknownPackage(t *testing.T) {
	f := newFixture(t, 2)
	pkgID := uint(99)

	req := f.createRequest()
	req.ServiceIDs = nil
	req.PackageID = &pkgID

	_, err := f.svc.CreateBooking(context.Background(), req)
	assert.ErrorIs(t, err, catalog.ErrPackageNotFound)
	assert.Zero(t, f.slots.booked)
}

// Three concurrent bookings against a capacity-2 slot: exactly two come
// back pending, one gets a capacity error, and the counter is exact.
func TestCreateBookingConcurrentOverCapacity(t *testing.T) {
	f := newFixture(t, 2)

	var wg sync.WaitGroup
	results := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateBooking(context.Background(), f.createRequest())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, slot.ErrSlotUnavailable)
			losses++
		}
	}
	assert.Equal(t, 2, wins)
	assert.Equal(t, 1, losses)
	assert.Equal(t, 2, f.slots.booked)

	counts, err := f.svc.GetStatusCounts(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.Pending)
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func TestLifecycleHappyPath(t *testing.T) {
	f := newFixture(t, 2)

	b, err := f.svc.CreateBooking(context.Background(), f.createRequest())
	require.NoError(t, err)

	b, err = f.svc.ConfirmPayment(context.Background(), b.ID, "", "pay_123")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, PaymentPaid, b.PaymentStatus)
	assert.Equal(t, "pay_123", b.PaymentID)

	b, err = f.svc.StartService(context.Background(), b.ID, 2, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, b.Status)

	b, err = f.svc.CompleteService(context.Background(), b.ID, 2, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, b.Status)
}

func TestIllegalTransitionsAreRejected(t *testing.T) {
	f := newFixture(t, 2)

	b, err := f.svc.CreateBooking(context.Background(), f.createRequest())
	require.NoError(t, err)

	// pending bookings cannot start or complete
	_, err = f.svc.StartService(context.Background(), b.ID, 2, "")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	_, err = f.svc.CompleteService(context.Background(), b.ID, 2, "")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	// double confirmation is rejected
	_, err = f.svc.ConfirmPayment(context.Background(), b.ID, "", "pay_1")
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(context.Background(), b.ID, "", "pay_2")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	// a failed transition must not have mutated anything
	got, err := f.svc.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
	assert.Equal(t, "pay_1", got.PaymentID)
}

func TestCancelCompletedBookingFails(t *testing.T) {
	f := newFixture(t, 2)

	b, err := f.svc.CreateBooking(context.Background(), f.createRequest())
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(context.Background(), b.ID, "", "pay_1")
	require.NoError(t, err)
	_, err = f.svc.StartService(context.Background(), b.ID, 2, "")
	require.NoError(t, err)
	_, err = f.svc.CompleteService(context.Background(), b.ID, 2, "")
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), b.ID, "too late", 7, "")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestCompleteServiceCreditsVanRevenue(t *testing.T) {
	f := newFixture(t, 2)

	req := f.createRequest()
	req.CouponCode = "SAVE50"

	b, err := f.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(context.Background(), b.ID, "", "pay_1")
	require.NoError(t, err)
	_, err = f.svc.StartService(context.Background(), b.ID, 2, "")
	require.NoError(t, err)
	_, err = f.svc.CompleteService(context.Background(), b.ID, 2, "")
	require.NoError(t, err)

	// the van earns what the customer actually paid, not the list price
	require.Len(t, f.vans.credits, 1)
	assert.InDelta(t, 450, f.vans.credits[0], 0.001)
}

func TestConfirmPaymentFinalizesCoupon(t *testing.T) {
	f := newFixture(t, 2)

	req := f.createRequest()
	req.CouponCode = "SAVE50"

	b, err := f.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(context.Background(), b.ID, "", "pay_1")
	require.NoError(t, err)

	assert.True(t, f.coupons.finalized[b.CouponToken])
}

// A valid signature for some other gateway order must not confirm this
// booking; the capture has to reference the order created for it.
func TestConfirmPaymentRejectsForeignOrder(t *testing.T) {
	f := newFixture(t, 2)

	b, err := f.svc.CreateBooking(context.Background(), f.createRequest())
	require.NoError(t, err)

	f.repo.mu.Lock()
	f.repo.bookings[b.ID].OrderID = "order_own"
	f.repo.mu.Unlock()

	_, err = f.svc.ConfirmPayment(context.Background(), b.ID, "order_foreign", "pay_1")
	assert.ErrorIs(t, err, ErrPaymentOrderMismatch)

	got, err := f.svc.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, PaymentPending, got.PaymentStatus)

	confirmed, err := f.svc.ConfirmPayment(context.Background(), b.ID, "order_own", "pay_1")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)
}

// ---------------------------------------------------------------------------
// Cancellation
// ---------------------------------------------------------------------------

func TestCancelPendingRestoresSlotAndCoupon(t *testing.T) {
	f := newFixture(t, 2)

	req := f.createRequest()
	req.CouponCode = "SAVE50"

	b, err := f.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), b.ID, "changed plans", 7, "")
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, "changed plans", cancelled.CancelReason)
	assert.Equal(t, PaymentPending, cancelled.PaymentStatus)
	assert.Zero(t, f.slots.booked)
	assert.True(t, f.coupons.released[b.CouponToken])
}

func TestCancelPaidBookingRefundsButKeepsCoupon(t *testing.T) {
	f := newFixture(t, 2)

	req := f.createRequest()
	req.CouponCode = "SAVE50"

	b, err := f.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(context.Background(), b.ID, "", "pay_1")
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), b.ID, "rain", 7, "")
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, PaymentRefunded, cancelled.PaymentStatus)
	// the slot always comes back, the finalized coupon unit never does
	assert.Zero(t, f.slots.booked)
	assert.False(t, f.coupons.released[b.CouponToken])
}

func TestCancelUnknownBookingFails(t *testing.T) {
	f := newFixture(t, 2)
	_, err := f.svc.Cancel(context.Background(), 404, "", 7, "")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

// ---------------------------------------------------------------------------
// Payment signature
// ---------------------------------------------------------------------------

func TestVerifyPaymentSignature(t *testing.T) {
	f := newFixture(t, 2)
	cfg := &config.Config{RazorpaySecret: "test-secret"}
	f.svc = NewService(f.repo, f.vans, f.slots, f.coupons, &fakeCatalogService{subtotal: 500}, fakeAuditService{}, cfg)

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write([]byte("order_1|pay_1"))
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.NoError(t, f.svc.VerifyPaymentSignature("order_1", "pay_1", valid))
	assert.ErrorIs(t, f.svc.VerifyPaymentSignature("order_1", "pay_1", "tampered"),
		ErrInvalidPaymentSignature)
	assert.ErrorIs(t, f.svc.VerifyPaymentSignature("order_2", "pay_1", valid),
		ErrInvalidPaymentSignature)
}

func TestVerifyPaymentSignatureSkippedWithoutSecret(t *testing.T) {
	f := newFixture(t, 2)
	assert.NoError(t, f.svc.VerifyPaymentSignature("order_1", "pay_1", "anything"))
}
