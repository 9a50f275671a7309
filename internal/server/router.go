package server

import (
	"context"

	"auction-marketplace/internal/auth"
	"auction-marketplace/internal/metrics"
	accounts "auction-marketplace/services/accounts/handler"
	auctions "auction-marketplace/services/auctions/handler"
	bidding "auction-marketplace/services/bidding/handler"
	"auction-marketplace/services/helpers"
	wallet "auction-marketplace/services/wallet/handler"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger checks database connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds everything the HTTP layer talks to
type Deps struct {
	Bidding       bidding.BiddingServiceInterface
	Auctions      auctions.AuctionServiceInterface
	MinimumBid    auctions.MinimumBidder
	Sweeper       auctions.Sweeper
	Wallet        wallet.WalletServiceInterface
	Accounts      accounts.AccountServiceInterface
	Notifications accounts.NotificationServiceInterface
	Tokens        *auth.TokenManager
	Metrics       *metrics.AuctionMetrics
	Gatherer      prometheus.Gatherer
	DB            Pinger
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(deps Deps) *gin.Engine {
	if err := helpers.RegisterValidators(); err != nil {
		utils.Fatal("SetupRouter: registering validators failed", map[string]any{"error": err.Error()})
	}

	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())                        // recover from panics
	router.Use(RequestLoggerMiddleware(deps.Metrics)) // custom request logging
	router.Use(AuthMiddleware(deps.Tokens, false))    // identity when a token is present

	biddingHandler := bidding.NewBiddingHandler(deps.Bidding)
	auctionHandler := auctions.NewAuctionHandler(deps.Auctions, deps.MinimumBid, deps.Sweeper)
	walletHandler := wallet.NewWalletHandler(deps.Wallet)
	accountsHandler := accounts.NewAccountsHandler(deps.Accounts, deps.Notifications)

	if deps.DB != nil {
		router.GET("/healthz", healthHandler(deps.DB))
	}
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", accountsHandler.RegisterHandler)
		authGroup.POST("/login", accountsHandler.LoginHandler)
	}

	bids := router.Group("/bids")
	{
		bids.POST("", biddingHandler.PlaceBidHandler)
	}

	auctionGroup := router.Group("/auctions")
	{
		auctionGroup.GET("", auctionHandler.ListAuctionsHandler)
		auctionGroup.POST("", auctionHandler.CreateAuctionHandler)
		auctionGroup.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctionGroup.GET("/:auction_id/bids", biddingHandler.GetBidHistoryHandler)
		auctionGroup.GET("/:auction_id/winning-bid", biddingHandler.GetWinningBidHandler)
		auctionGroup.GET("/:auction_id/winner", biddingHandler.GetAuctionWinnerHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/auctions", biddingHandler.GetAuctionsByUserHandler)
	}

	walletGroup := router.Group("/wallet")
	{
		walletGroup.GET("", walletHandler.GetBalanceHandler)
		walletGroup.GET("/transactions", walletHandler.GetTransactionsHandler)
		walletGroup.POST("/deposit", walletHandler.DepositHandler)
		walletGroup.POST("/withdraw", walletHandler.WithdrawHandler)
	}

	notifications := router.Group("/notifications")
	{
		notifications.GET("", accountsHandler.ListNotificationsHandler)
		notifications.POST("/read-all", accountsHandler.MarkAllNotificationsReadHandler)
		notifications.POST("/:id/read", accountsHandler.MarkNotificationReadHandler)
	}

	admin := router.Group("/admin", RequireAdmin)
	{
		admin.POST("/auctions/close", biddingHandler.CloseAuctionHandler)
		admin.POST("/auctions/min-increment", biddingHandler.UpdateMinIncrementHandler)
		admin.POST("/auctions/:auction_id/approve", auctionHandler.ApproveAuctionHandler)
		admin.POST("/auctions/:auction_id/reject", auctionHandler.RejectAuctionHandler)
		admin.POST("/auctions/:auction_id/pause", auctionHandler.PauseAuctionHandler)
		admin.POST("/auctions/:auction_id/resume", auctionHandler.ResumeAuctionHandler)
		admin.POST("/auctions/:auction_id/settle", walletHandler.SettleAuctionHandler)
		admin.POST("/users/:user_id/approve", accountsHandler.ApproveUserHandler)
		admin.POST("/sweep", auctionHandler.RunSweepHandler)
	}

	return router
}
