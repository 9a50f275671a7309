package handler

//go:generate mockgen -source=accounts_handler.go -destination=mock_accounts_handler.go -package=handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"auction-marketplace/internal/models"
	"auction-marketplace/internal/users"
	"auction-marketplace/services/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type AccountServiceInterface interface {
	Register(ctx context.Context, username, password string) (models.User, error)
	Login(ctx context.Context, username, password string) (users.Session, error)
	Approve(ctx context.Context, userID int64) (models.User, error)
}

type NotificationServiceInterface interface {
	List(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type AccountsHandler struct {
	accounts      AccountServiceInterface
	notifications NotificationServiceInterface
}

func NewAccountsHandler(accounts AccountServiceInterface, notifications NotificationServiceInterface) *AccountsHandler {
	return &AccountsHandler{accounts: accounts, notifications: notifications}
}

// RegisterHandler handles POST /auth/register
func (h *AccountsHandler) RegisterHandler(c *gin.Context) {
	var req helpers.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		helpers.HandleServiceError(c, "RegisterHandler", err, map[string]any{"username": req.Username})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewUserResponse(user), "Registration received, awaiting approval")
	helpers.LogSuccess("RegisterHandler", "user registered", map[string]any{"user_id": user.ID})
}

// LoginHandler handles POST /auth/login
func (h *AccountsHandler) LoginHandler(c *gin.Context) {
	var req helpers.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	session, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		helpers.HandleServiceError(c, "LoginHandler", err, map[string]any{"username": req.Username})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
		User:      helpers.NewUserResponse(session.User),
	}, "Login successful")
}

// ApproveUserHandler handles POST /admin/users/:user_id/approve
func (h *AccountsHandler) ApproveUserHandler(c *gin.Context) {
	userID, err := helpers.ParseIDParam(c, "user_id")
	if err != nil {
		helpers.HandleServiceError(c, "ApproveUserHandler", err, nil)
		return
	}

	user, err := h.accounts.Approve(c.Request.Context(), userID)
	if err != nil {
		helpers.HandleServiceError(c, "ApproveUserHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewUserResponse(user), "User approved")
	helpers.LogSuccess("ApproveUserHandler", "user approved", map[string]any{"user_id": userID})
}

// ListNotificationsHandler handles GET /notifications?unread=true&limit=
func (h *AccountsHandler) ListNotificationsHandler(c *gin.Context) {
	identity, ok := helpers.RequireIdentity(c, "ListNotificationsHandler")
	if !ok {
		return
	}

	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	ctx := c.Request.Context()
	rows, err := h.notifications.List(ctx, identity.UserID, unreadOnly, limit)
	if err != nil {
		helpers.HandleServiceError(c, "ListNotificationsHandler", err, map[string]any{"user_id": identity.UserID})
		return
	}
	unread, err := h.notifications.UnreadCount(ctx, identity.UserID)
	if err != nil {
		helpers.HandleServiceError(c, "ListNotificationsHandler", err, map[string]any{"user_id": identity.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewNotificationsResponse(unread, rows), "notifications retrieved successfully")
}

// MarkNotificationReadHandler handles POST /notifications/:id/read
func (h *AccountsHandler) MarkNotificationReadHandler(c *gin.Context) {
	identity, ok := helpers.RequireIdentity(c, "MarkNotificationReadHandler")
	if !ok {
		return
	}
	notificationID, err := helpers.ParseIDParam(c, "id")
	if err != nil {
		helpers.HandleServiceError(c, "MarkNotificationReadHandler", err, nil)
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), identity.UserID, notificationID); err != nil {
		helpers.HandleServiceError(c, "MarkNotificationReadHandler", err, map[string]any{
			"user_id":         identity.UserID,
			"notification_id": notificationID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"id": notificationID}, "Notification marked as read")
}

// MarkAllNotificationsReadHandler handles POST /notifications/read-all
func (h *AccountsHandler) MarkAllNotificationsReadHandler(c *gin.Context) {
	identity, ok := helpers.RequireIdentity(c, "MarkAllNotificationsReadHandler")
	if !ok {
		return
	}

	count, err := h.notifications.MarkAllRead(c.Request.Context(), identity.UserID)
	if err != nil {
		helpers.HandleServiceError(c, "MarkAllNotificationsReadHandler", err, map[string]any{"user_id": identity.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"marked": count}, "Notifications marked as read")
}
