package coupon

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type CreateCouponRequest struct {
	Code               string  `json:"code" binding:"required"`
	Type               string  `json:"type" binding:"required"`
	Value              float64 `json:"value" binding:"required"`
	MinAmount          float64 `json:"min_amount"`
	MaxDiscount        float64 `json:"max_discount"`
	UsageLimit         int     `json:"usage_limit" binding:"required"`
	ValidFrom          string  `json:"valid_from" binding:"required"` // RFC 3339
	ValidTo            string  `json:"valid_to" binding:"required"`
	ApplicableServices []uint  `json:"applicable_services"`
}

type PreviewRequest struct {
	Code       string  `json:"code" binding:"required"`
	Subtotal   float64 `json:"subtotal" binding:"required"`
	ServiceIDs []uint  `json:"service_ids"`
}

// CreateCoupon - POST /coupons (super admin)
func (h *Handler) CreateCoupon(c *gin.Context) {
	var input CreateCouponRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	validFrom, err := time.Parse(time.RFC3339, input.ValidFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid valid_from, expected RFC 3339"})
		return
	}
	validTo, err := time.Parse(time.RFC3339, input.ValidTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid valid_to, expected RFC 3339"})
		return
	}

	coupon := &Coupon{
		Code:               input.Code,
		Type:               input.Type,
		Value:              input.Value,
		MinAmount:          input.MinAmount,
		MaxDiscount:        input.MaxDiscount,
		UsageLimit:         input.UsageLimit,
		ValidFrom:          validFrom,
		ValidTo:            validTo,
		ApplicableServices: datatypes.JSONSlice[uint](input.ApplicableServices),
	}

	if err := h.service.CreateCoupon(c.Request.Context(), coupon); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

// ListCoupons - GET /coupons (super admin)
func (h *Handler) ListCoupons(c *gin.Context) {
	var filter CouponFilter
	filter.Status = c.Query("status")
	filter.Code = c.Query("code")
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	filter.Offset = (page - 1) * filter.Limit

	coupons, total, err := h.service.ListCoupons(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch coupons"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons, "total": total})
}

// Preview - POST /coupons/preview
// Dry-run validation for the checkout screen: computes the discount the
// order would get without consuming a usage unit.
func (h *Handler) Preview(c *gin.Context) {
	var input PreviewRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	coupon, err := h.service.GetCoupon(c.Request.Context(), input.Code)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "coupon code is invalid"})
		return
	}

	now := time.Now()
	switch {
	case coupon.Status == StatusDisabled:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ErrCouponDisabled.Error()})
	case coupon.Status == StatusExpired, now.Before(coupon.ValidFrom), now.After(coupon.ValidTo):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ErrCouponExpired.Error()})
	case coupon.UsedCount >= coupon.UsageLimit:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ErrUsageExceeded.Error()})
	case !appliesTo(coupon, input.ServiceIDs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ErrNotApplicable.Error()})
	case input.Subtotal < coupon.MinAmount:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ErrMinAmountNotMet.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{
			"code":            coupon.Code,
			"discount_amount": computeDiscount(coupon, input.Subtotal),
		})
	}
}

// DisableCoupon - PATCH /coupons/:code/disable (super admin)
func (h *Handler) DisableCoupon(c *gin.Context) {
	code := c.Param("code")

	if err := h.service.DisableCoupon(c.Request.Context(), code); err != nil {
		if errors.Is(err, ErrCouponInvalid) {
			c.JSON(http.StatusNotFound, gin.H{"error": "coupon not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to disable coupon"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "coupon disabled"})
}
