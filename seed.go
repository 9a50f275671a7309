package main

import (
	"context"
	"errors"
	"time"

	"auction-marketplace/internal/biddingerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/users"
	"auction-marketplace/internal/wallet"
	"auction-marketplace/utils"

	"github.com/shopspring/decimal"
)

const demoPassword = "demo-password"

// seedDemo adds an admin, a seller, a bidder and a few running auctions. Skipped when the admin already exists.
func seedDemo(ctx context.Context, repo *repository.GormRepo, accounts *users.Service, wallets *wallet.Service) error {
	if _, err := accounts.CreateAdmin(ctx, "admin", demoPassword); err != nil {
		if errors.Is(err, biddingerrors.ErrUserExists) {
			utils.Info("seed: demo data already present", nil)
			return nil
		}
		return err
	}

	seller, err := approvedUser(ctx, accounts, "seller")
	if err != nil {
		return err
	}
	bidder, err := approvedUser(ctx, accounts, "bidder")
	if err != nil {
		return err
	}
	if _, err := wallets.Deposit(ctx, bidder.ID, decimal.NewFromInt(1000), "demo balance"); err != nil {
		return err
	}

	now := time.Now().UTC()
	items := []struct {
		title, description string
		price, increment   int64
		runsFor            time.Duration
	}{
		{"Vintage film camera", "35mm rangefinder, fully working", 100, 10, 24 * time.Hour},
		{"Mechanical keyboard", "Tenkeyless, brown switches", 200, 5, 48 * time.Hour},
		{"Signed poster", "Framed tour poster", 150, 1, time.Hour},
	}
	for _, item := range items {
		start, end := now, now.Add(item.runsFor)
		auction := model.Auction{
			Title:           item.title,
			Description:     item.description,
			SellerID:        seller.ID,
			StartingPrice:   decimal.NewFromInt(item.price),
			CurrentPrice:    decimal.NewFromInt(item.price),
			MinBidIncrement: decimal.NewFromInt(item.increment),
			Status:          model.AuctionOngoing,
			StartDate:       &start,
			EndDate:         &end,
		}
		if err := repo.CreateAuction(ctx, &auction); err != nil {
			return err
		}
	}

	utils.Warn("seed: demo accounts created with a shared default password", map[string]any{
		"usernames": []string{"admin", "seller", "bidder"},
		"auctions":  len(items),
	})
	return nil
}

func approvedUser(ctx context.Context, accounts *users.Service, username string) (model.User, error) {
	user, err := accounts.Register(ctx, username, demoPassword)
	if err != nil {
		return model.User{}, err
	}
	return accounts.Approve(ctx, user.ID)
}
