package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"auction-marketplace/internal/auth"
	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// HandleServiceError maps err, writes the error response and logs it.
// Server-side failures are logged at error level, client errors at warn.
func HandleServiceError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, message)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["error"] = err.Error()
	fields["status"] = status
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", fields)
		return
	}
	utils.Warn(handlerName+": request rejected", fields)
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	var tooLow *biddingerrors.BidTooLowError
	switch {
	case errors.As(err, &tooLow):
		return http.StatusConflict, fmt.Sprintf("Bid must be at least %s", tooLow.Minimum.StringFixed(2))
	case errors.Is(err, biddingerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, biddingerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, biddingerrors.ErrNotificationNotFound):
		return http.StatusNotFound, "notification not found"
	case errors.Is(err, biddingerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for auction"
	case errors.Is(err, biddingerrors.ErrInvalidAmount):
		return http.StatusBadRequest, "bid amount must be greater than zero"
	case errors.Is(err, biddingerrors.ErrInvalidIncrement):
		return http.StatusBadRequest, "minimum increment must be at least 0.01"
	case errors.Is(err, biddingerrors.ErrInvalidInput):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, biddingerrors.ErrNotStarted):
		return http.StatusUnprocessableEntity, "auction has not started yet"
	case errors.Is(err, biddingerrors.ErrAlreadyEnded):
		return http.StatusUnprocessableEntity, "auction has already ended"
	case errors.Is(err, biddingerrors.ErrAuctionNotActive):
		return http.StatusUnprocessableEntity, "auction is not active"
	case errors.Is(err, biddingerrors.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, "auction status transition not allowed"
	case errors.Is(err, biddingerrors.ErrAlreadySettled):
		return http.StatusUnprocessableEntity, "auction already settled"
	case errors.Is(err, biddingerrors.ErrNoWinner):
		return http.StatusUnprocessableEntity, "auction has no winner"
	case errors.Is(err, biddingerrors.ErrSelfBidForbidden):
		return http.StatusForbidden, "You cannot bid on your own auction"
	case errors.Is(err, biddingerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, biddingerrors.ErrUserExists):
		return http.StatusConflict, "username already taken"
	case errors.Is(err, biddingerrors.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "insufficient wallet balance"
	case errors.Is(err, biddingerrors.ErrUnauthorized):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, biddingerrors.ErrForbidden):
		return http.StatusForbidden, "access denied"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// ParseIDParam reads a positive int64 path parameter
func ParseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w - %s must be a positive integer", biddingerrors.ErrInvalidInput, name)
	}
	return id, nil
}

// SetIdentity stores the authenticated caller on the gin and request contexts
func SetIdentity(c *gin.Context, id auth.Identity) {
	c.Set(identityKey, id)
	c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
}

// CurrentIdentity returns the caller set by the auth middleware
func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := value.(auth.Identity)
	return id, ok && id.UserID > 0
}

// RequireIdentity returns the caller or writes a 401 and reports false
func RequireIdentity(c *gin.Context, handlerName string) (auth.Identity, bool) {
	id, ok := CurrentIdentity(c)
	if !ok {
		HandleServiceError(c, handlerName, biddingerrors.ErrUnauthorized, nil)
		return auth.Identity{}, false
	}
	return id, true
}
