package repository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/order-service/internal/domain"
	"github.com/spec-kit/order-service/internal/persistence"
)

func openPoolForIntegrationTest(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("ORDER_SERVICE_TEST_DSN"))
	if dsn == "" {
		t.Skip("ORDER_SERVICE_TEST_DSN not set; skipping postgres integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()))
	_, err = pool.Exec(ctx, `TRUNCATE TABLE orders, users RESTART IDENTITY`)
	require.NoError(t, err)
	return pool
}

func TestOrderRepository_CreateGetUpdateList(t *testing.T) {
	pool := openPoolForIntegrationTest(t)
	repo := NewOrderRepository(pool)
	ctx := context.Background()

	order := &domain.Order{UserID: 7, StatusID: 1, Total: decimal.RequireFromString("42.50")}
	require.NoError(t, repo.Create(ctx, order))
	require.NotZero(t, order.ID)
	require.False(t, order.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, got.Total.Equal(order.Total))
	require.Equal(t, int64(1), got.StatusID)

	require.NoError(t, repo.UpdateStatus(ctx, got, 3))
	require.Equal(t, int64(3), got.StatusID)

	orders, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, int64(3), orders[0].StatusID)

	_, err = repo.GetByID(ctx, order.ID+100)
	require.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestUserRepository_GetAndFilter(t *testing.T) {
	pool := openPoolForIntegrationTest(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `INSERT INTO users (name, email) VALUES ('Ana', 'ana@example.com'), ('Luis', 'luis@example.com')`)
	require.NoError(t, err)

	user, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Ana", user.Name)

	email := "luis@example.com"
	users, err := repo.FindByFilter(ctx, UserFilter{Email: &email})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, int64(2), users[0].ID)

	missing := int64(99)
	users, err = repo.FindByFilter(ctx, UserFilter{ID: &missing})
	require.NoError(t, err)
	require.Empty(t, users)

	_, err = repo.GetByID(ctx, missing)
	require.ErrorIs(t, err, pgx.ErrNoRows)
}
