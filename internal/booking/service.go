package booking

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sparklewash/carwash-backend/config"
	"github.com/sparklewash/carwash-backend/internal/auditlog"
	"github.com/sparklewash/carwash-backend/internal/catalog"
	"github.com/sparklewash/carwash-backend/internal/coupon"
	"github.com/sparklewash/carwash-backend/internal/slot"
	"github.com/sparklewash/carwash-backend/internal/storage"
	"github.com/sparklewash/carwash-backend/internal/van"
	"github.com/sparklewash/carwash-backend/utils"
)

var (
	ErrBookingNotFound          = errors.New("booking not found")
	ErrInvalidStatusTransition  = errors.New("invalid booking status transition")
	ErrInvalidPaymentSignature  = errors.New("invalid payment signature")
	ErrPaymentOrderMismatch     = errors.New("payment order does not belong to this booking")
)

// CreateBookingRequest carries everything the manager needs to place a
// booking. Exactly one of ServiceIDs / PackageID drives pricing.
type CreateBookingRequest struct {
	UserID     uint
	VanID      uint
	ServiceIDs []uint
	PackageID  *uint
	Date       string
	TimeSlotID uint
	Address    Address
	CouponCode string
	Notes      string
	IPAddress  string
}

type Service interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error)
	ConfirmPayment(ctx context.Context, bookingID uint, orderID, paymentID string) (*Booking, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) error
	StartService(ctx context.Context, bookingID uint, operatorID uint, ip string) (*Booking, error)
	CompleteService(ctx context.Context, bookingID uint, operatorID uint, ip string) (*Booking, error)
	Cancel(ctx context.Context, bookingID uint, reason string, actorID uint, ip string) (*Booking, error)

	GetBooking(ctx context.Context, id uint) (*Booking, error)
	ListForUser(ctx context.Context, userID uint) ([]Booking, error)
	ListForVan(ctx context.Context, vanID uint, date string) ([]Booking, error)
	Search(ctx context.Context, filter BookingFilter) ([]Booking, int64, error)
	GetStatusCounts(ctx context.Context, vanID *uint) (StatusCounts, error)
}

type service struct {
	repo      Repository
	vans      van.Service
	slots     slot.Service
	coupons   coupon.Service
	catalog   catalog.Service
	auditSvc  auditlog.Service
	payClient *razorpay.Client
	cfg       *config.Config
}

func NewService(
	repo Repository,
	vans van.Service,
	slots slot.Service,
	coupons coupon.Service,
	catalogSvc catalog.Service,
	auditSvc auditlog.Service,
	cfg *config.Config,
) Service {
	s := &service{
		repo:     repo,
		vans:     vans,
		slots:    slots,
		coupons:  coupons,
		catalog:  catalogSvc,
		auditSvc: auditSvc,
		cfg:      cfg,
	}
	if cfg != nil && cfg.RazorpayKey != "" {
		s.payClient = razorpay.NewClient(cfg.RazorpayKey, cfg.RazorpaySecret)
	}
	return s
}

// CreateBooking runs the ordered placement sequence: van check, slot
// reservation, pricing, optional coupon, persist. There is no wrapping
// transaction across the three engines; instead any failure after the
// reservation compensates by releasing it (and the coupon unit), so the
// caller never observes a leaked resource alongside an error.
func (s *service) CreateBooking(ctx context.Context, req CreateBookingRequest) (booking *Booking, err error) {
	// step 1: the van must exist, be active, and cover the requested services
	v, err := s.vans.GetVan(ctx, req.VanID)
	if err != nil {
		return nil, van.ErrVanNotFound
	}
	if v.Status != van.StatusActive {
		return nil, van.ErrVanUnavailable
	}

	// a package order is checked against the services it bundles, both
	// here and for coupon applicability below
	orderServices := req.ServiceIDs
	if req.PackageID != nil {
		pkg, pErr := s.catalog.GetPackage(ctx, *req.PackageID)
		if pErr != nil {
			return nil, pErr
		}
		orderServices = []uint(pkg.ServiceIDs)
	}
	if len(orderServices) > 0 && !v.CanServe(orderServices) {
		return nil, van.ErrVanUnavailable
	}

	// step 2: hold one capacity unit on the slot
	reservation, err := s.slots.Reserve(ctx, req.VanID, req.Date, req.TimeSlotID, 1)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			// compensating release; idempotent, so a retry after a
			// partial failure cannot double-decrement the counter
			if relErr := s.slots.Release(context.WithoutCancel(ctx), reservation.Token); relErr != nil {
				utils.GetLogger().Error("failed to roll back slot reservation",
					zap.String("token", reservation.Token),
					zap.Error(relErr),
				)
			}
		}
	}()

	// step 3: price the order from the catalog
	subtotal, err := s.catalog.PriceOrder(ctx, req.ServiceIDs, req.PackageID)
	if err != nil {
		return nil, err
	}

	// step 4: optionally consume a coupon usage unit
	var discount float64
	var couponToken, couponCode string
	if req.CouponCode != "" {
		redemption, cErr := s.coupons.ValidateAndConsume(ctx, req.CouponCode, subtotal, orderServices, time.Now())
		if cErr != nil {
			err = cErr
			return nil, err
		}
		discount = redemption.DiscountAmount
		couponToken = redemption.Token
		couponCode = redemption.Code
		defer func() {
			if err != nil {
				if relErr := s.coupons.Release(context.WithoutCancel(ctx), couponToken); relErr != nil {
					utils.GetLogger().Error("failed to roll back coupon redemption",
						zap.String("token", couponToken),
						zap.Error(relErr),
					)
				}
			}
		}()
	}

	b := &Booking{
		UserID:           req.UserID,
		VanID:            req.VanID,
		ServiceIDs:       datatypes.JSONSlice[uint](req.ServiceIDs),
		PackageID:        req.PackageID,
		Date:             req.Date,
		TimeSlotID:       req.TimeSlotID,
		Address:          req.Address,
		Status:           StatusPending,
		TotalAmount:      subtotal,
		DiscountAmount:   discount,
		CouponCode:       couponCode,
		PaymentStatus:    PaymentPending,
		Notes:            req.Notes,
		ReservationToken: reservation.Token,
		CouponToken:      couponToken,
	}

	// collect the payable amount through the gateway; the order is created
	// up front so the client can open the checkout right away
	if s.payClient != nil {
		orderData := map[string]interface{}{
			"amount":          int(b.PayableAmount() * 100), // paise
			"currency":        "INR",
			"payment_capture": 1,
			"notes": map[string]interface{}{
				"user_id": req.UserID,
				"van_id":  req.VanID,
				"date":    req.Date,
			},
		}
		order, oErr := s.payClient.Order.Create(orderData, nil)
		if oErr != nil {
			err = fmt.Errorf("payment order creation failed: %w", oErr)
			return nil, err
		}
		if orderID, ok := order["id"].(string); ok {
			b.OrderID = orderID
		}
	}

	// step 5: persist in pending/pending
	if err = s.repo.Create(ctx, b); err != nil {
		err = fmt.Errorf("failed to persist booking: %w: %w", storage.ErrUnavailable, err)
		return nil, err
	}

	s.auditSvc.LogAction(ctx, &req.UserID, &req.VanID, "BOOKING_CREATED", map[string]interface{}{
		"booking_id":   b.ID,
		"time_slot_id": req.TimeSlotID,
		"date":         req.Date,
		"total":        b.TotalAmount,
		"discount":     b.DiscountAmount,
		"coupon_code":  couponCode,
	}, req.IPAddress, "success")

	publishEvent(EventCreated, b)
	return b, nil
}

// VerifyPaymentSignature checks the gateway callback HMAC. With no secret
// configured (local development) verification is skipped.
func (s *service) VerifyPaymentSignature(orderID, paymentID, signature string) error {
	if s.cfg == nil || s.cfg.RazorpaySecret == "" {
		return nil
	}
	mac := hmac.New(sha256.New, []byte(s.cfg.RazorpaySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	if hex.EncodeToString(mac.Sum(nil)) != signature {
		return ErrInvalidPaymentSignature
	}
	return nil
}

// ConfirmPayment moves pending -> confirmed and records the capture. The
// capture must reference the gateway order created for this booking, so a
// signature minted for some other order cannot confirm it. The coupon
// redemption (if any) is finalized at this point: from here on a
// cancellation can no longer restore the usage unit.
func (s *service) ConfirmPayment(ctx context.Context, bookingID uint, orderID, paymentID string) (*Booking, error) {
	b, err := s.getByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.OrderID != "" && b.OrderID != orderID {
		return nil, ErrPaymentOrderMismatch
	}

	ok, err := s.repo.MarkConfirmed(ctx, bookingID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w: %w", storage.ErrUnavailable, err)
	}
	if !ok {
		return nil, ErrInvalidStatusTransition
	}

	b, err = s.getByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if b.CouponToken != "" {
		if err := s.coupons.Finalize(ctx, b.CouponToken); err != nil {
			utils.GetLogger().Warn("failed to finalize coupon redemption",
				zap.Uint("booking_id", bookingID),
				zap.Error(err),
			)
		}
	}

	s.auditSvc.LogAction(ctx, &b.UserID, &b.VanID, "BOOKING_PAYMENT_CONFIRMED", map[string]interface{}{
		"booking_id": b.ID,
		"payment_id": paymentID,
		"amount":     b.PayableAmount(),
	}, "", "success")

	publishEvent(EventConfirmed, b)
	return b, nil
}

// StartService moves confirmed -> in_progress, operator-triggered.
func (s *service) StartService(ctx context.Context, bookingID uint, operatorID uint, ip string) (*Booking, error) {
	ok, err := s.repo.MarkInProgress(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to start service: %w: %w", storage.ErrUnavailable, err)
	}
	if !ok {
		return nil, ErrInvalidStatusTransition
	}

	b, err := s.getByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAction(ctx, &operatorID, &b.VanID, "BOOKING_SERVICE_STARTED", map[string]interface{}{
		"booking_id": b.ID,
	}, ip, "success")

	publishEvent(EventStarted, b)
	return b, nil
}

// CompleteService moves in_progress -> completed and credits the van's
// revenue with the amount actually paid.
func (s *service) CompleteService(ctx context.Context, bookingID uint, operatorID uint, ip string) (*Booking, error) {
	ok, err := s.repo.MarkCompleted(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to complete service: %w: %w", storage.ErrUnavailable, err)
	}
	if !ok {
		return nil, ErrInvalidStatusTransition
	}

	b, err := s.getByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.vans.CreditRevenue(ctx, b.VanID, b.PayableAmount()); err != nil {
		utils.GetLogger().Error("failed to credit van revenue",
			zap.Uint("booking_id", b.ID),
			zap.Uint("van_id", b.VanID),
			zap.Error(err),
		)
	}

	s.auditSvc.LogAction(ctx, &operatorID, &b.VanID, "BOOKING_COMPLETED", map[string]interface{}{
		"booking_id": b.ID,
		"revenue":    b.PayableAmount(),
	}, ip, "success")

	publishEvent(EventCompleted, b)
	return b, nil
}

// Cancel terminates a non-terminal booking. The slot reservation is always
// returned; the coupon unit only when payment had not been captured yet.
// Paid bookings are marked refunded; executing the refund is the payment
// collaborator's job, the engine only records the outcome.
func (s *service) Cancel(ctx context.Context, bookingID uint, reason string, actorID uint, ip string) (*Booking, error) {
	prior, ok, err := s.repo.MarkCancelled(ctx, bookingID, reason)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w: %w", storage.ErrUnavailable, err)
	}
	if !ok {
		return nil, ErrInvalidStatusTransition
	}

	if prior.ReservationToken != "" {
		if err := s.slots.Release(ctx, prior.ReservationToken); err != nil {
			utils.GetLogger().Error("failed to release slot on cancel",
				zap.Uint("booking_id", bookingID),
				zap.Error(err),
			)
		}
	}

	if prior.CouponToken != "" && prior.PaymentStatus != PaymentPaid {
		if err := s.coupons.Release(ctx, prior.CouponToken); err != nil {
			utils.GetLogger().Error("failed to release coupon on cancel",
				zap.Uint("booking_id", bookingID),
				zap.Error(err),
			)
		}
	}

	b, err := s.getByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAction(ctx, &actorID, &b.VanID, "BOOKING_CANCELLED", map[string]interface{}{
		"booking_id": b.ID,
		"reason":     reason,
		"refunded":   b.PaymentStatus == PaymentRefunded,
	}, ip, "success")

	publishEvent(EventCancelled, b)
	return b, nil
}

func (s *service) GetBooking(ctx context.Context, id uint) (*Booking, error) {
	return s.getByID(ctx, id)
}

func (s *service) getByID(ctx context.Context, id uint) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("booking lookup failed: %w: %w", storage.ErrUnavailable, err)
	}
	return b, nil
}

func (s *service) ListForUser(ctx context.Context, userID uint) ([]Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListForVan(ctx context.Context, vanID uint, date string) ([]Booking, error) {
	return s.repo.ListByVanAndDate(ctx, vanID, date)
}

func (s *service) Search(ctx context.Context, filter BookingFilter) ([]Booking, int64, error) {
	return s.repo.Search(ctx, filter)
}

func (s *service) GetStatusCounts(ctx context.Context, vanID *uint) (StatusCounts, error) {
	return s.repo.CountByStatus(ctx, vanID)
}
