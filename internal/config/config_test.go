package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUCTION_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.App.Addr())
	require.Equal(t, DriverSQLite, cfg.DB.Driver)
	require.True(t, cfg.DB.AutoMigrate)
	require.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	require.Zero(t, cfg.Sweep.Interval)

	rate, err := cfg.Wallet.Commission()
	require.NoError(t, err)
	require.Equal(t, "0.05", rate.String())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUCTION_JWT_SECRET", "secret")
	t.Setenv("AUCTION_PORT", ":9090")
	t.Setenv("AUCTION_DB_DRIVER", "POSTGRES")
	t.Setenv("AUCTION_DB_DSN", "postgres://localhost/auction")
	t.Setenv("AUCTION_SWEEP_INTERVAL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.App.Addr())
	require.Equal(t, DriverPostgres, cfg.DB.Driver)
	require.Equal(t, 30*time.Second, cfg.Sweep.Interval)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing_jwt_secret", env: map[string]string{}},
		{name: "unknown_driver", env: map[string]string{"AUCTION_JWT_SECRET": "s", "AUCTION_DB_DRIVER": "mysql"}},
		{name: "commission_out_of_range", env: map[string]string{"AUCTION_JWT_SECRET": "s", "AUCTION_COMMISSION_RATE": "1.5"}},
		{name: "commission_not_a_number", env: map[string]string{"AUCTION_JWT_SECRET": "s", "AUCTION_COMMISSION_RATE": "abc"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("AUCTION_JWT_SECRET", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}
