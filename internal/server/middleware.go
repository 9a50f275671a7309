package server

import (
	"net/http"
	"strings"
	"time"

	"auction-marketplace/internal/auth"
	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/metrics"
	"auction-marketplace/services/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

const requestIDHeader = "X-Request-ID"

// RequestLoggerMiddleware logs incoming requests with timing and records their latency
func RequestLoggerMiddleware(m *metrics.AuctionMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = utils.GenerateID()
		}
		c.Header(requestIDHeader, requestID)

		c.Next() // process request

		latency := time.Since(start)
		route := c.FullPath()
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), latency)

		fields := map[string]any{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"route":      route,
			"status":     c.Writer.Status(),
			"latency":    latency.String(),
		}
		if id, ok := helpers.CurrentIdentity(c); ok {
			fields["user_id"] = id.UserID
		}
		utils.Info("HTTP Request", fields)
	}
}

// AuthMiddleware attaches the caller identity from a Bearer token.
// With required unset, anonymous requests pass through; a malformed or expired token is always rejected.
func AuthMiddleware(tokens *auth.TokenManager, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				helpers.HandleServiceError(c, "AuthMiddleware", biddingerrors.ErrUnauthorized, nil)
				c.Abort()
				return
			}
			c.Next()
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			helpers.HandleServiceError(c, "AuthMiddleware", biddingerrors.ErrUnauthorized, nil)
			c.Abort()
			return
		}

		identity, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			helpers.HandleServiceError(c, "AuthMiddleware", err, nil)
			c.Abort()
			return
		}

		helpers.SetIdentity(c, identity)
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. Must run after AuthMiddleware.
func RequireAdmin(c *gin.Context) {
	identity, ok := helpers.CurrentIdentity(c)
	if !ok {
		helpers.HandleServiceError(c, "RequireAdmin", biddingerrors.ErrUnauthorized, nil)
		c.Abort()
		return
	}
	if !identity.IsAdmin() {
		helpers.HandleServiceError(c, "RequireAdmin", biddingerrors.ErrForbidden, map[string]any{"user_id": identity.UserID})
		c.Abort()
		return
	}
	c.Next()
}

// healthHandler reports whether the database answers
func healthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			utils.Error("healthHandler: database unreachable", map[string]any{"error": err.Error()})
			utils.JSONError(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		utils.JSONResponse(c, http.StatusOK, gin.H{"database": "ok"}, "healthy")
	}
}
