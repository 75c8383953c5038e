package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/stock-transfer-api/internal/application/inventory"
	"github.com/jhoicas/stock-transfer-api/internal/domain"
	"github.com/jhoicas/stock-transfer-api/internal/domain/entity"
	"github.com/jhoicas/stock-transfer-api/internal/domain/transfer"
	"github.com/jhoicas/stock-transfer-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-transfer-api/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Corre contra una base real: TEST_DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres/
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = postgres.Migrate(ctx, pool)
	require.NoError(t, err)
	return pool
}

type fixture struct {
	product, source, destination string
}

func seed(t *testing.T, pool *pgxpool.Pool, stock int64) fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	fx := fixture{product: uuid.NewString(), source: uuid.NewString(), destination: uuid.NewString()}

	require.NoError(t, postgres.NewProductRepository(pool).Create(ctx, &entity.Product{
		ID: fx.product, SKU: "IT-" + fx.product[:8], Name: "Integración", Category: entity.CategoryToys,
		Price: decimal.NewFromInt(12), CreatedAt: now, UpdatedAt: now,
	}))
	locations := postgres.NewLocationRepository(pool)
	for _, id := range []string{fx.source, fx.destination} {
		require.NoError(t, locations.Create(ctx, &entity.Location{ID: id, Name: "Tienda " + id[:4], Address: "Calle", CreatedAt: now, UpdatedAt: now}))
	}
	require.NoError(t, postgres.NewLedgerRepository(pool).Create(ctx, &entity.LedgerEntry{
		ProductID: fx.product, LocationID: fx.source, Quantity: stock, MinThreshold: 5,
	}))
	return fx
}

func newEngine(pool *pgxpool.Pool) *inventory.TransferUseCase {
	return inventory.NewTransferUseCase(postgres.NewTxRunner(pool, 2*time.Second),
		postgres.NewProductRepository(pool), postgres.NewLocationRepository(pool),
		nil, nil, inventory.DefaultTransferConfig())
}

// transferWithRetry reintenta lo que el motor devuelve como reintentable, como haría un cliente.
func transferWithRetry(ctx context.Context, engine *inventory.TransferUseCase, req transfer.Request) error {
	for {
		_, err := engine.Transfer(ctx, req)
		if err == nil || !domain.IsRetryable(err) {
			return err
		}
	}
}

func TestIntegration_ConcurrentTransfersConserveStock(t *testing.T) {
	pool := openTestPool(t)
	fx := seed(t, pool, 100)
	engine := newEngine(pool)
	ctx := context.Background()

	req, err := transfer.NewRequest(fx.product, fx.source, fx.destination, 3)
	require.NoError(t, err)

	const workers = 40
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := transferWithRetry(ctx, engine, req)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("resultado inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 33, ok)
	assert.Equal(t, workers-33, rejected)

	ledger := postgres.NewLedgerRepository(pool)
	src, err := ledger.Get(ctx, fx.product, fx.source)
	require.NoError(t, err)
	dst, err := ledger.Get(ctx, fx.product, fx.destination)
	require.NoError(t, err)
	assert.Equal(t, int64(1), src.Quantity)
	assert.Equal(t, int64(99), dst.Quantity)

	total, err := ledger.SumByProduct(ctx, fx.product)
	require.NoError(t, err)
	assert.Equal(t, int64(100), total)

	movements, err := postgres.NewMovementRepository(pool).List(ctx, entity.MovementFilter{ProductID: fx.product, Limit: 500})
	require.NoError(t, err)
	assert.Len(t, movements, ok)
}

func TestIntegration_OpposingTransfersDoNotDeadlock(t *testing.T) {
	pool := openTestPool(t)
	fx := seed(t, pool, 50)
	ctx := context.Background()
	require.NoError(t, postgres.NewLedgerRepository(pool).Create(ctx, &entity.LedgerEntry{
		ProductID: fx.product, LocationID: fx.destination, Quantity: 50, MinThreshold: 5,
	}))
	engine := newEngine(pool)

	forward, err := transfer.NewRequest(fx.product, fx.source, fx.destination, 1)
	require.NoError(t, err)
	backward, err := transfer.NewRequest(fx.product, fx.destination, fx.source, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		for _, req := range []transfer.Request{forward, backward} {
			wg.Add(1)
			go func(req transfer.Request) {
				defer wg.Done()
				assert.NoError(t, transferWithRetry(ctx, engine, req))
			}(req)
		}
	}
	wg.Wait()

	total, err := postgres.NewLedgerRepository(pool).SumByProduct(ctx, fx.product)
	require.NoError(t, err)
	assert.Equal(t, int64(100), total)
}
