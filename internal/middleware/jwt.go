package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var secret = []byte(getJWTSecret())

func getJWTSecret() string {
	if val := os.Getenv("JWT_SECRET"); val != "" {
		return val
	}
	return "supersecret" // fallback
}

// SetSecret installs the signing key from the loaded configuration. The
// package-init default only sees the process environment; this hook runs
// after godotenv so a secret set in .env takes effect too.
func SetSecret(s string) {
	if s != "" {
		secret = []byte(s)
	}
}

// Claims is the verified actor identity attached to every request: who is
// acting, in which role, scoped to which organization.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	OrgID  uint   `json:"org_id"`
	jwt.RegisteredClaims
}

func GenerateToken(userID uint, role string, orgID uint) (string, error) {
	claims := Claims{
		UserID: userID,
		Role:   role,
		OrgID:  orgID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(72 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and verifies a token string, returning its claims.
func ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// RequireAuth ensures a valid JWT is present and stores the claims in the
// context for downstream handlers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("org_id", claims.OrgID)
		c.Next()
	}
}

// RequireAuthWithRole ensures the JWT is valid and the user has a specific role
func RequireAuthWithRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := RequireAuth()
		req(c)
		if c.IsAborted() {
			return
		}

		roleIfc, exists := c.Get("role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Role not found in token"})
			return
		}
		if role, ok := roleIfc.(string); !ok || role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		c.Next()
	}
}

// RequireAuthWithRoles allows any of the listed roles.
func RequireAuthWithRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := RequireAuth()
		req(c)
		if c.IsAborted() {
			return
		}

		role := c.GetString("role")
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}
