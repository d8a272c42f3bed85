package catalog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListServices - GET /catalog/services
func (h *Handler) ListServices(c *gin.Context) {
	category := c.Query("category")
	availableOnly := c.DefaultQuery("available", "true") == "true"

	services, err := h.service.ListServices(c.Request.Context(), category, availableOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch services"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

// GetService - GET /catalog/services/:id
func (h *Handler) GetService(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	svc, err := h.service.GetService(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
		return
	}
	c.JSON(http.StatusOK, svc)
}

// CreateService - POST /catalog/services (super admin)
func (h *Handler) CreateService(c *gin.Context) {
	var svc WashService
	if err := c.ShouldBindJSON(&svc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	if err := h.service.CreateService(c.Request.Context(), &svc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// UpdateService - PUT /catalog/services/:id (super admin)
func (h *Handler) UpdateService(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	existing, err := h.service.GetService(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
		return
	}

	var svc WashService
	if err := c.ShouldBindJSON(&svc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}
	svc.ID = existing.ID
	svc.CreatedAt = existing.CreatedAt

	if err := h.service.UpdateService(c.Request.Context(), &svc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update service"})
		return
	}
	c.JSON(http.StatusOK, svc)
}

// ListPackages - GET /catalog/packages
func (h *Handler) ListPackages(c *gin.Context) {
	packages, err := h.service.ListPackages(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch packages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": packages})
}

// CreatePackage - POST /catalog/packages (super admin)
func (h *Handler) CreatePackage(c *gin.Context) {
	var pkg Package
	if err := c.ShouldBindJSON(&pkg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	if err := h.service.CreatePackage(c.Request.Context(), &pkg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, pkg)
}

// ListBanners - GET /catalog/banners
func (h *Handler) ListBanners(c *gin.Context) {
	position := c.Query("position")
	activeOnly := c.DefaultQuery("active", "true") == "true"

	banners, err := h.service.ListBanners(c.Request.Context(), position, activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch banners"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"banners": banners})
}

// CreateBanner - POST /catalog/banners (super admin)
func (h *Handler) CreateBanner(c *gin.Context) {
	var banner Banner
	if err := c.ShouldBindJSON(&banner); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	if err := h.service.CreateBanner(c.Request.Context(), &banner); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, banner)
}

// DeleteBanner - DELETE /catalog/banners/:id (super admin)
func (h *Handler) DeleteBanner(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid banner id"})
		return
	}

	if err := h.service.DeleteBanner(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete banner"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "banner deleted"})
}
