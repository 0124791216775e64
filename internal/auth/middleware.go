package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"qbank/internal/authz"
	"qbank/internal/identity"
	"qbank/internal/models"
)

const userKey = "user"

// CurrentUser returns the resolved caller placed in the context by JWT.
func CurrentUser(c *gin.Context) (*authz.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*authz.User)
	return user, ok
}

// Claims represents the JWT claims structure.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWT returns a Gin middleware that validates JWT tokens from either the
// Authorization header or a "token" cookie, resolves the caller's identity
// (bindings included) and stores it in the request context. Everything
// behind this middleware receives a fully-resolved user; no handler reads
// session state on its own.
func JWT(ids *identity.Service, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader("Authorization")

		// Fallback: read from cookie if no Authorization header
		if tokenStr == "" {
			if cookie, err := c.Cookie("token"); err == nil {
				tokenStr = "Bearer " + cookie
			}
		}

		if tokenStr == "" {
			reject(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		tokenStr = strings.TrimSpace(strings.TrimPrefix(tokenStr, "Bearer "))

		token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			reject(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		claims, ok := token.Claims.(*Claims)
		if !ok {
			reject(c, http.StatusUnauthorized, "invalid claims")
			return
		}

		user, err := ids.Resolve(c.Request.Context(), claims.UserID)
		if err != nil {
			reject(c, http.StatusUnauthorized, "user not found")
			return
		}
		if user.Status != models.UserActive {
			reject(c, http.StatusForbidden, "account suspended")
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func reject(c *gin.Context, status int, msg string) {
	accept := c.GetHeader("Accept")
	if strings.Contains(accept, "text/html") && c.Request.Method == "GET" {
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
		return
	}
	c.JSON(status, gin.H{"error": msg})
	c.Abort()
}
