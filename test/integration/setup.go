package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"greenmarket/internal/config"
	"greenmarket/internal/model"
	"greenmarket/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and
// the checkout schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := repository.NewPool(ctx, connStr, config.DatabaseConfig{
		MaxConnections:  20,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedCart inserts a cart with the given items for a user.
func SeedCart(t *testing.T, pool *pgxpool.Pool, userID string, items []model.CartItem) {
	t.Helper()

	ctx := context.Background()

	_, err := pool.Exec(ctx,
		"INSERT INTO carts (user_id) VALUES ($1) ON CONFLICT (user_id) DO UPDATE SET updated_at = now()",
		userID,
	)
	if err != nil {
		t.Fatalf("failed to seed cart for %s: %v", userID, err)
	}

	for _, item := range items {
		_, err := pool.Exec(ctx,
			`INSERT INTO cart_items (user_id, product_id, seller_id, category_id, quantity, unit_price)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			userID, item.ProductID, item.SellerID, item.CategoryID, item.Quantity, item.UnitPrice,
		)
		if err != nil {
			t.Fatalf("failed to seed cart item %s: %v", item.ProductID, err)
		}
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"payments", "order_items", "orders",
		"cart_items", "carts",
		"voucher_usages", "user_vouchers", "vouchers",
		"wallet_transactions", "wallets",
		"inventory_transactions", "inventories",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

func yesterday() time.Time { return time.Now().Add(-24 * time.Hour) }

func tomorrow() time.Time { return time.Now().Add(24 * time.Hour) }
