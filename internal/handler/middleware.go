package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/traveldesk/travel-approval/internal/application/port"
	"github.com/traveldesk/travel-approval/internal/domain/entity"
	"github.com/traveldesk/travel-approval/pkg/signer"
	"go.uber.org/zap"
)

const currentUserKey = "currentUser"

// BearerAuth resolves the Authorization bearer token to a user and
// stores it on the context. Requests without a valid token are rejected
// with 401.
func BearerAuth(users port.UserRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing bearer token",
			})
			return
		}

		user, err := users.GetByAPIToken(c.Request.Context(), token)
		if err != nil {
			logger.Error("Failed to resolve API token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
				Success: false,
				Error:   "internal error",
			})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid bearer token",
			})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// currentUser returns the authenticated user stored by BearerAuth
func currentUser(c *gin.Context) *entity.User {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*entity.User)
	return user
}

// VerifySignedLink checks the sig and expires query parameters against
// the request path before the handler runs. Routes reached through
// emailed links use this on top of bearer auth.
func VerifySignedLink(s *signer.Signer, clock port.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Verify(c.Request.URL.Path, c.Request.URL.Query(), clock.Now()) {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{
				Success: false,
				Error:   "invalid or expired link signature",
			})
			return
		}
		c.Next()
	}
}

// RequestLogging logs one line per request
func RequestLogging(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// CORS allows browser clients on other origins to call the API
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
