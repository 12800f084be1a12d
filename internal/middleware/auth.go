package middleware

import (
	"net/http"
	"strings"

	"github.com/coachlog/api/internal/auth"
	"github.com/gin-gonic/gin"
)

const coachKey = "coach"

// CoachIdentity is the authenticated caller, resolved once per request by
// RequireAuth and carried as an explicit context value.
type CoachIdentity struct {
	ID       int64
	Username string
}

// RequireAuth rejects requests without a valid bearer token. The failure
// body is the plain-text "Not authenticated" the API contract promises.
func RequireAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.String(http.StatusUnauthorized, "Not authenticated")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.String(http.StatusUnauthorized, "Not authenticated")
			c.Abort()
			return
		}

		claims, err := auth.ValidateAccessToken(parts[1], jwtSecret)
		if err != nil {
			c.String(http.StatusUnauthorized, "Not authenticated")
			c.Abort()
			return
		}

		c.Set(coachKey, CoachIdentity{ID: claims.UserID, Username: claims.Username})
		c.Next()
	}
}

// CurrentCoach returns the identity stored by RequireAuth.
func CurrentCoach(c *gin.Context) (CoachIdentity, bool) {
	v, ok := c.Get(coachKey)
	if !ok {
		return CoachIdentity{}, false
	}
	coach, ok := v.(CoachIdentity)
	return coach, ok
}
