package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sparklewash/carwash-backend/config"
)

// Roles issued by the identity provider. The platform has exactly three.
const (
	RoleCustomer   = "customer"
	RoleVanAdmin   = "van_admin"
	RoleSuperAdmin = "super_admin"
)

// AuthContext carries the authenticated caller through the request. Identity
// itself lives in an external service; the token claims are all we hold.
type AuthContext struct {
	UserID uint
	Role   string
	VanID  *uint // set only for van admins
}

// IsOperator reports whether the caller may perform operator actions
// (van status, slot scheduling, coupon management, service progression).
func (a AuthContext) IsOperator() bool {
	return a.Role == RoleVanAdmin || a.Role == RoleSuperAdmin
}

// CanManageVan reports whether the caller may operate the given van.
// Super admins manage every van; a van admin only their own.
func (a AuthContext) CanManageVan(vanID uint) bool {
	if a.Role == RoleSuperAdmin {
		return true
	}
	return a.Role == RoleVanAdmin && a.VanID != nil && *a.VanID == vanID
}

// AuthMiddleware validates the bearer token and sets up the auth context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTAccessSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id missing in token"})
			return
		}

		role, ok := claims["role"].(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "role missing in token"})
			return
		}
		switch role {
		case RoleCustomer, RoleVanAdmin, RoleSuperAdmin:
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unsupported role"})
			return
		}

		authCtx := AuthContext{
			UserID: uint(userIDFloat),
			Role:   role,
		}
		if vanIDFloat, ok := claims["van_id"].(float64); ok {
			vanID := uint(vanIDFloat)
			authCtx.VanID = &vanID
		}

		c.Set("auth_context", authCtx)
		c.Set("user_id", authCtx.UserID)
		c.Next()
	}
}

// GetAuthContext retrieves the auth context set by AuthMiddleware.
func GetAuthContext(c *gin.Context) (AuthContext, bool) {
	val, exists := c.Get("auth_context")
	if !exists {
		return AuthContext{}, false
	}
	authCtx, ok := val.(AuthContext)
	return authCtx, ok
}
