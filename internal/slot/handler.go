package slot

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sparklewash/carwash-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type CreateSlotRequest struct {
	VanID     uint   `json:"van_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Capacity  int    `json:"capacity"`
}

type GenerateDayRequest struct {
	VanID       uint   `json:"van_id" binding:"required"`
	Date        string `json:"date" binding:"required"`
	OpenTime    string `json:"open_time" binding:"required"`
	CloseTime   string `json:"close_time" binding:"required"`
	SlotMinutes int    `json:"slot_minutes" binding:"required"`
	Capacity    int    `json:"capacity"`
}

// ListAvailable - GET /slots?van_id=N&date=2006-01-02
func (h *Handler) ListAvailable(c *gin.Context) {
	vanID, err := strconv.ParseUint(c.Query("van_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "van_id is required"})
		return
	}
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}

	slots, err := h.service.ListAvailable(c.Request.Context(), uint(vanID), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch slots"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// CreateSlot - POST /slots (operator)
func (h *Handler) CreateSlot(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var input CreateSlotRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	if !authCtx.CanManageVan(input.VanID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to manage this van"})
		return
	}

	ts := &TimeSlot{
		VanID:     input.VanID,
		Date:      input.Date,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Capacity:  input.Capacity,
	}

	if err := h.service.CreateSlot(c.Request.Context(), ts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ts)
}

// GenerateDay - POST /slots/generate (operator)
func (h *Handler) GenerateDay(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var input GenerateDayRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	if !authCtx.CanManageVan(input.VanID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to manage this van"})
		return
	}

	slots, err := h.service.GenerateDay(
		c.Request.Context(),
		input.VanID, input.Date,
		input.OpenTime, input.CloseTime,
		input.SlotMinutes, input.Capacity,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"slots": slots, "count": len(slots)})
}

// ArchiveSlot - PATCH /slots/:id/archive (operator)
func (h *Handler) ArchiveSlot(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id"})
		return
	}

	ts, err := h.service.GetSlot(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "slot not found"})
		return
	}
	if !authCtx.CanManageVan(ts.VanID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to manage this van"})
		return
	}

	if err := h.service.ArchiveSlot(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "slot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to archive slot"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "slot archived"})
}
