package reports

import (
	"errors"
	"fmt"
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

// ExportReport - GET /reports/:type?format=csv&van_id=&from=&to=&status= (operator)
func (h *Handler) ExportReport(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var filter ReportFilter
	if v := c.Query("van_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid van_id"})
			return
		}
		uid := uint(id)
		filter.VanID = &uid
	}
	filter.FromDate = c.Query("from")
	filter.ToDate = c.Query("to")
	filter.Status = c.Query("status")

	// Van admins only see their own van's numbers.
	if authCtx.Role == middleware.RoleVanAdmin {
		if authCtx.VanID == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "no van assigned"})
			return
		}
		if filter.VanID != nil && *filter.VanID != *authCtx.VanID {
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to view this van"})
			return
		}
		filter.VanID = authCtx.VanID
	}

	content, fname, mime, err := h.service.ExportReport(
		c.Request.Context(), c.Param("type"), c.DefaultQuery("format", FormatCSV), filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fname))
	c.Data(http.StatusOK, mime, content)
}

// DownloadReceipt - GET /reports/receipt/:bookingID
func (h *Handler) DownloadReceipt(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	id, err := strconv.ParseUint(c.Param("bookingID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	content, fname, mime, err := h.service.ExportReceipt(c.Request.Context(), uint(id), authCtx)
	if err != nil {
		switch {
		case errors.Is(err, ErrReceiptNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, ErrReceiptForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build receipt"})
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fname))
	c.Data(http.StatusOK, mime, content)
}
