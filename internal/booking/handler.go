package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sparklewash/carwash-backend/internal/catalog"
	"github.com/sparklewash/carwash-backend/internal/coupon"
	"github.com/sparklewash/carwash-backend/internal/slot"
	"github.com/sparklewash/carwash-backend/internal/storage"
	"github.com/sparklewash/carwash-backend/internal/van"
	"github.com/sparklewash/carwash-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type CreateBookingRequestBody struct {
	VanID      uint    `json:"van_id" binding:"required"`
	ServiceIDs []uint  `json:"service_ids"`
	PackageID  *uint   `json:"package_id"`
	Date       string  `json:"date" binding:"required"`
	TimeSlotID uint    `json:"time_slot_id" binding:"required"`
	Address    Address `json:"address" binding:"required"`
	CouponCode string  `json:"coupon_code"`
	Notes      string  `json:"notes"`
}

type VerifyPaymentRequest struct {
	BookingID   uint   `json:"booking_id" binding:"required"`
	OrderID     string `json:"razorpay_order_id"`
	PaymentID   string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySig string `json:"razorpay_signature"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

// CreateBooking - POST /bookings (customer)
func (h *Handler) CreateBooking(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var input CreateBookingRequestBody
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), CreateBookingRequest{
		UserID:     authCtx.UserID,
		VanID:      input.VanID,
		ServiceIDs: input.ServiceIDs,
		PackageID:  input.PackageID,
		Date:       input.Date,
		TimeSlotID: input.TimeSlotID,
		Address:    input.Address,
		CouponCode: input.CouponCode,
		Notes:      input.Notes,
		IPAddress:  middleware.GetIPFromContext(c),
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// VerifyPayment - POST /bookings/payment/verify
// Called by the client after gateway checkout; the signature ties the
// payment to the order created at booking time.
func (h *Handler) VerifyPayment(c *gin.Context) {
	var input VerifyPaymentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	if err := h.service.VerifyPaymentSignature(input.OrderID, input.PaymentID, input.RazorpaySig); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment signature"})
		return
	}

	b, err := h.service.ConfirmPayment(c.Request.Context(), input.BookingID, input.OrderID, input.PaymentID)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// StartService - PATCH /bookings/:id/start (operator)
func (h *Handler) StartService(c *gin.Context) {
	h.operatorTransition(c, func(authCtx middleware.AuthContext, id uint) (*Booking, error) {
		return h.service.StartService(c.Request.Context(), id, authCtx.UserID, middleware.GetIPFromContext(c))
	})
}

// CompleteService - PATCH /bookings/:id/complete (operator)
func (h *Handler) CompleteService(c *gin.Context) {
	h.operatorTransition(c, func(authCtx middleware.AuthContext, id uint) (*Booking, error) {
		return h.service.CompleteService(c.Request.Context(), id, authCtx.UserID, middleware.GetIPFromContext(c))
	})
}

func (h *Handler) operatorTransition(c *gin.Context, fn func(middleware.AuthContext, uint) (*Booking, error)) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	if !authCtx.CanManageVan(b.VanID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to manage this van"})
		return
	}

	updated, err := fn(authCtx, uint(id))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// CancelBooking - PATCH /bookings/:id/cancel
// Customers may cancel their own bookings; operators any on their van.
func (h *Handler) CancelBooking(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	if b.UserID != authCtx.UserID && !authCtx.CanManageVan(b.VanID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to cancel this booking"})
		return
	}

	var input CancelRequest
	_ = c.ShouldBindJSON(&input)

	cancelled, err := h.service.Cancel(c.Request.Context(), uint(id), input.Reason, authCtx.UserID, middleware.GetIPFromContext(c))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, cancelled)
}

// GetBooking - GET /bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	if b.UserID != authCtx.UserID && !authCtx.CanManageVan(b.VanID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	c.JSON(http.StatusOK, b)
}

// ListMyBookings - GET /bookings/my (customer)
func (h *Handler) ListMyBookings(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	bookings, err := h.service.ListForUser(c.Request.Context(), authCtx.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ListVanBookings - GET /bookings/van/:vanID?date=2006-01-02 (operator)
func (h *Handler) ListVanBookings(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	vanID, err := strconv.ParseUint(c.Param("vanID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid van id"})
		return
	}
	if !authCtx.CanManageVan(uint(vanID)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to view this van"})
		return
	}

	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}

	bookings, err := h.service.ListForVan(c.Request.Context(), uint(vanID), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// SearchBookings - GET /bookings?van_id=&user_id=&status=&from=&to=&limit=&offset= (super admin)
func (h *Handler) SearchBookings(c *gin.Context) {
	var filter BookingFilter

	if v := c.Query("van_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid van_id"})
			return
		}
		uid := uint(id)
		filter.VanID = &uid
	}
	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		uid := uint(id)
		filter.UserID = &uid
	}
	filter.Status = c.Query("status")
	filter.FromDate = c.Query("from")
	filter.ToDate = c.Query("to")
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, total, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total})
}

// GetStatusCounts - GET /bookings/counts?van_id=N (operator dashboard)
func (h *Handler) GetStatusCounts(c *gin.Context) {
	var vanID *uint
	if v := c.Query("van_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid van_id"})
			return
		}
		uid := uint(id)
		vanID = &uid
	}

	counts, err := h.service.GetStatusCounts(c.Request.Context(), vanID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch counts"})
		return
	}
	c.JSON(http.StatusOK, counts)
}

// writeBookingError maps engine sentinels onto HTTP statuses. Coupon
// rejections are 422 so clients can retry without the coupon; capacity
// and state conflicts are 409.
func writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, slot.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "time slot has no remaining capacity"})
	case errors.Is(err, slot.ErrSlotNotFound), errors.Is(err, slot.ErrSlotMismatch):
		c.JSON(http.StatusNotFound, gin.H{"error": "time slot not found for van and date"})
	case errors.Is(err, van.ErrVanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "van not found"})
	case errors.Is(err, van.ErrVanUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "van cannot take this booking"})
	case errors.Is(err, coupon.ErrCouponInvalid),
		errors.Is(err, coupon.ErrCouponExpired),
		errors.Is(err, coupon.ErrCouponDisabled),
		errors.Is(err, coupon.ErrUsageExceeded),
		errors.Is(err, coupon.ErrMinAmountNotMet),
		errors.Is(err, coupon.ErrNotApplicable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrServiceNotFound),
		errors.Is(err, catalog.ErrPackageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrServiceUnavailable),
		errors.Is(err, catalog.ErrEmptyOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidStatusTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid booking status transition"})
	case errors.Is(err, ErrPaymentOrderMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment order does not belong to this booking"})
	case errors.Is(err, ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, storage.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
