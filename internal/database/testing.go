package database

import (
	"context"
	"fmt"
	"testing"

	"auction-marketplace/internal/config"

	"github.com/google/uuid"
)

// NewTestClient opens an isolated, migrated in-memory sqlite database for tests
func NewTestClient(t testing.TB) *Client {
	t.Helper()

	client, err := New(config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return client
}
