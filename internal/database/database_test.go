package database

import (
	"context"
	"errors"
	"testing"

	"auction-marketplace/internal/config"
	"auction-marketplace/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	client := NewTestClient(t)
	ctx := context.Background()

	err := WithTx(ctx, client.DB(), func(tx *gorm.DB) error {
		return tx.Create(&models.User{Username: "committed", PasswordHash: "x"}).Error
	})
	require.NoError(t, err)

	err = WithTx(ctx, client.DB(), func(tx *gorm.DB) error {
		if err := tx.Create(&models.User{Username: "rolled", PasswordHash: "x"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, client.DB().Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	client := NewTestClient(t)

	require.Panics(t, func() {
		_ = WithTx(context.Background(), client.DB(), func(tx *gorm.DB) error {
			tx.Create(&models.User{Username: "panicked", PasswordHash: "x"})
			panic("boom")
		})
	})

	var count int64
	require.NoError(t, client.DB().Model(&models.User{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestNew_RejectsUnknownDriver(t *testing.T) {
	_, err := New(config.DBConfig{Driver: "mysql", DSN: "x"})
	require.Error(t, err)

	_, err = New(config.DBConfig{Driver: config.DriverSQLite})
	require.Error(t, err)
}

func TestPing(t *testing.T) {
	client := NewTestClient(t)
	require.NoError(t, client.Ping(context.Background()))
}
