package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jhoicas/stock-transfer-api/internal/domain/entity"
	"github.com/jhoicas/stock-transfer-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Mocks de repositorios (testify/mock)
// ──────────────────────────────────────────────────────────────────────────────

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) Create(ctx context.Context, p *entity.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*entity.Product)
	return p, args.Error(1)
}

func (m *mockProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	args := m.Called(ctx, sku)
	p, _ := args.Get(0).(*entity.Product)
	return p, args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, p *entity.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) List(ctx context.Context, f entity.ProductFilter) ([]*entity.ProductWithStock, int, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]*entity.ProductWithStock)
	return list, args.Int(1), args.Error(2)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockLocationRepo struct{ mock.Mock }

func (m *mockLocationRepo) Create(ctx context.Context, l *entity.Location) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockLocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(*entity.Location)
	return l, args.Error(1)
}

func (m *mockLocationRepo) Update(ctx context.Context, l *entity.Location) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockLocationRepo) List(ctx context.Context, limit, offset int) ([]*entity.Location, error) {
	args := m.Called(ctx, limit, offset)
	list, _ := args.Get(0).([]*entity.Location)
	return list, args.Error(1)
}

// mockLedgerRepo implementa solo lo que usan los casos de uso de catálogo.
type mockLedgerRepo struct {
	repository.LedgerRepository
	mock.Mock
}

func (m *mockLedgerRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockLedgerRepo) UpdateThreshold(ctx context.Context, productID, locationID string, threshold int64) (*entity.LedgerEntry, error) {
	args := m.Called(ctx, productID, locationID, threshold)
	e, _ := args.Get(0).(*entity.LedgerEntry)
	return e, args.Error(1)
}

func (m *mockLedgerRepo) ListByLocation(ctx context.Context, locationID string) ([]*entity.LedgerEntry, error) {
	args := m.Called(ctx, locationID)
	list, _ := args.Get(0).([]*entity.LedgerEntry)
	return list, args.Error(1)
}

func (m *mockLedgerRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.LedgerEntry, error) {
	args := m.Called(ctx, productID)
	list, _ := args.Get(0).([]*entity.LedgerEntry)
	return list, args.Error(1)
}

func (m *mockLedgerRepo) SumByProduct(ctx context.Context, productID string) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

// inlineTx ejecuta fn con los mismos mocks, sin transacción real.
type inlineTx struct {
	products repository.ProductRepository
	ledger   repository.LedgerRepository
	calls    int
}

func (r *inlineTx) RunCatalog(ctx context.Context, fn func(repository.ProductRepository, repository.LedgerRepository) error) error {
	r.calls++
	return fn(r.products, r.ledger)
}
