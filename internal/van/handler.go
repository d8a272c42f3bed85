package van

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/sparklewash/carwash-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type RegisterVanRequest struct {
	Name       string   `json:"name" binding:"required"`
	AdminID    uint     `json:"admin_id" binding:"required"`
	Location   string   `json:"location"`
	Capacity   int      `json:"capacity"`
	ServiceIDs []uint   `json:"service_ids"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// RegisterVan - POST /vans (super admin)
func (h *Handler) RegisterVan(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var input RegisterVanRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	v := &Van{
		Name:       input.Name,
		AdminID:    input.AdminID,
		Location:   input.Location,
		Capacity:   input.Capacity,
		ServiceIDs: datatypes.JSONSlice[uint](input.ServiceIDs),
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
	}

	if err := h.service.RegisterVan(c.Request.Context(), v, authCtx.UserID, middleware.GetIPFromContext(c)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, v)
}

// GetVan - GET /vans/:id
func (h *Handler) GetVan(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid van id"})
		return
	}

	v, err := h.service.GetVan(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "van not found"})
		return
	}
	c.JSON(http.StatusOK, v)
}

// ListVans - GET /vans?service_id=N&date=2006-01-02
// With service_id present, only active vans capable of that service; an
// optional date narrows to vans with an open slot that day.
func (h *Handler) ListVans(c *gin.Context) {
	if v := c.Query("service_id"); v != "" {
		serviceID, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service_id"})
			return
		}
		vans, err := h.service.ListActiveVansFor(c.Request.Context(), uint(serviceID), c.Query("date"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch vans"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"vans": vans})
		return
	}

	vans, err := h.service.ListVans(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch vans"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vans": vans})
}

// SetStatus - PATCH /vans/:id/status (operator)
func (h *Handler) SetStatus(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid van id"})
		return
	}

	if !authCtx.CanManageVan(uint(id)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to manage this van"})
		return
	}

	var input SetStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	err = h.service.SetStatus(c.Request.Context(), uint(id), input.Status, authCtx.UserID, middleware.GetIPFromContext(c))
	switch {
	case errors.Is(err, ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be 'active', 'maintenance', or 'offline'"})
	case errors.Is(err, ErrVanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "van not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "van status updated", "status": input.Status})
	}
}
