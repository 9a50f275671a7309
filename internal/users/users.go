package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"auction-marketplace/internal/auth"
	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 64
	minPasswordLen = 8
)

// Session is the result of a successful login
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// Service manages accounts and logins
type Service struct {
	repo   repository.UserDB
	tokens *auth.TokenManager
}

// NewService creates an account service
func NewService(repo repository.UserDB, tokens *auth.TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates a pending account that an administrator has to approve
func (s *Service) Register(ctx context.Context, username, password string) (models.User, error) {
	return s.create(ctx, username, password, models.RoleUser, models.UserPending)
}

// CreateAdmin creates an approved administrator account
func (s *Service) CreateAdmin(ctx context.Context, username, password string) (models.User, error) {
	return s.create(ctx, username, password, models.RoleAdmin, models.UserApproved)
}

func (s *Service) create(ctx context.Context, username, password string, role models.UserRole, status models.UserStatus) (models.User, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		return models.User{}, fmt.Errorf("users: %w - username must be %d to %d characters", biddingerrors.ErrInvalidInput, minUsernameLen, maxUsernameLen)
	}
	if len(password) < minPasswordLen {
		return models.User{}, fmt.Errorf("users: %w - password must be at least %d characters", biddingerrors.ErrInvalidInput, minPasswordLen)
	}

	_, err := s.repo.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return models.User{}, fmt.Errorf("users: %w - %s", biddingerrors.ErrUserExists, username)
	case !errors.Is(err, biddingerrors.ErrUserNotFound):
		return models.User{}, fmt.Errorf("users: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("users: %w", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Status:       status,
	}
	if err := s.repo.CreateUser(ctx, &user); err != nil {
		return models.User{}, fmt.Errorf("users: %w", err)
	}

	utils.Info("users: account created", map[string]any{"user_id": user.ID, "username": user.Username, "role": user.Role})
	return user, nil
}

// Approve activates a pending account
func (s *Service) Approve(ctx context.Context, userID int64) (models.User, error) {
	if userID <= 0 {
		return models.User{}, fmt.Errorf("users: %w - empty user ID", biddingerrors.ErrInvalidInput)
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("users: %w", err)
	}
	if user.Status == models.UserApproved {
		return user, nil
	}
	if err := s.repo.UpdateUserStatus(ctx, userID, models.UserApproved); err != nil {
		return models.User{}, fmt.Errorf("users: %w", err)
	}
	user.Status = models.UserApproved

	utils.Info("users: account approved", map[string]any{"user_id": userID})
	return user, nil
}

// Login checks the credentials of an approved account and issues an access token
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, biddingerrors.ErrUserNotFound) {
			return Session{}, fmt.Errorf("users: %w - invalid credentials", biddingerrors.ErrUnauthorized)
		}
		return Session{}, fmt.Errorf("users: %w", err)
	}
	if !auth.ComparePassword(password, user.PasswordHash) {
		utils.Warn("users: failed login", map[string]any{"user_id": user.ID})
		return Session{}, fmt.Errorf("users: %w - invalid credentials", biddingerrors.ErrUnauthorized)
	}
	if user.Status != models.UserApproved {
		return Session{}, fmt.Errorf("users: %w - account is %s", biddingerrors.ErrUnauthorized, user.Status)
	}

	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return Session{}, fmt.Errorf("users: %w", err)
	}
	return Session{Token: token, ExpiresAt: expires, User: user}, nil
}
