package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	auctions "auction-marketplace/internal/auctionService"
	"auction-marketplace/internal/auth"
	bidding "auction-marketplace/internal/biddingService"
	"auction-marketplace/internal/database"
	"auction-marketplace/internal/locker"
	"auction-marketplace/internal/metrics"
	"auction-marketplace/internal/notifications"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/server"
	"auction-marketplace/internal/sweep"
	"auction-marketplace/internal/users"
	"auction-marketplace/internal/wallet"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testPassword = "integration-pass"

// stack is the full application wired against an isolated sqlite database
type stack struct {
	router   *gin.Engine
	db       *database.Client
	accounts *users.Service
}

// SetupTestStack wires every service the way main does, with a 5% commission.
func SetupTestStack(t *testing.T) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SetOutput(io.Discard)

	dbClient := database.NewTestClient(t)
	db := dbClient.DB()
	repo := repository.NewGormRepo(db)

	tokens, err := auth.NewTokenManager("integration-secret", "auction-marketplace", time.Hour)
	require.NoError(t, err)

	notificationRepo := notifications.NewRepository(db)
	notifier, err := notifications.NewService(notificationRepo)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	auctionMetrics := metrics.New(reg)

	locks := locker.NewKeyed()
	biddingService := bidding.NewBiddingService(repo,
		bidding.WithLocker(locks),
		bidding.WithNotifier(notifier),
		bidding.WithMetrics(auctionMetrics),
	)
	accounts := users.NewService(repo, tokens)
	sweeper, err := sweep.NewAuctionJob(repo, biddingService)
	require.NoError(t, err)

	router := server.SetupRouter(server.Deps{
		Bidding:       biddingService,
		Auctions:      auctions.NewAuctionService(repo, locks),
		MinimumBid:    biddingService,
		Sweeper:       sweeper,
		Wallet:        wallet.NewService(db, decimal.RequireFromString("0.05"), wallet.WithNotifier(notifier)),
		Accounts:      accounts,
		Notifications: notifier,
		Tokens:        tokens,
		Metrics:       auctionMetrics,
		Gatherer:      reg,
		DB:            dbClient,
	})
	return &stack{router: router, db: dbClient, accounts: accounts}
}

// AdminToken creates the admin account directly and logs in through the API
func (s *stack) AdminToken(t *testing.T) string {
	t.Helper()
	_, err := s.accounts.CreateAdmin(context.Background(), "admin", testPassword)
	require.NoError(t, err)
	return s.Login(t, "admin")
}

// ApprovedUser registers through the API, approves as admin and returns the user id and token
func (s *stack) ApprovedUser(t *testing.T, adminToken, username string) (int64, string) {
	t.Helper()

	resp, w := s.Do(t, http.MethodPost, "/auth/register", "", map[string]any{"username": username, "password": testPassword})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	userID := int64(Data(t, resp)["user_id"].(float64))

	_, w = s.Do(t, http.MethodPost, "/auth/login", "", map[string]any{"username": username, "password": testPassword})
	require.Equal(t, http.StatusUnauthorized, w.Code, "pending accounts cannot log in")

	_, w = s.Do(t, http.MethodPost, fmt.Sprintf("/admin/users/%d/approve", userID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return userID, s.Login(t, username)
}

func (s *stack) Login(t *testing.T, username string) string {
	t.Helper()
	resp, w := s.Do(t, http.MethodPost, "/auth/login", "", map[string]any{"username": username, "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return Data(t, resp)["token"].(string)
}

// Do executes an HTTP request on the router and parses the JSON envelope
func (s *stack) Do(t *testing.T, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		var err error
		reqBody, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp map[string]any
	if bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return resp, w
}

// Data returns the envelope payload as an object
func Data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no object payload: %v", resp)
	return data
}
